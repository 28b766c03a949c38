// Package codec implements the byte formats the console persists with:
// raw little-endian values, NUL-terminated strings, labeled property records
// and the compact cursor format of static level definitions.
//
// Strings are stored in code page 437, the character set of the console
// font. ASCII text is byte-for-byte identical in both encodings.
package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrEmbeddedNUL is returned when a string to be written contains a zero byte.
var ErrEmbeddedNUL = errors.New("codec: string contains NUL byte")

// ReadValue reads exactly binary.Size(T) bytes and decodes them as T.
// T must be a fixed-size value: a number, bool, array or struct of those.
func ReadValue[T any](r io.Reader) (T, error) {
	var v T
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return v, err
	}
	return v, nil
}

// WriteValue writes the raw little-endian bytes of v.
func WriteValue[T any](w io.Writer, v T) error {
	return binary.Write(w, binary.LittleEndian, v)
}

// ReadString reads bytes up to a terminating zero byte, which is consumed
// but not returned. io.EOF is returned only when nothing was read.
func ReadString(r io.Reader) (string, error) {
	var buf bytes.Buffer
	var b [1]byte
	for {
		n, err := r.Read(b[:])
		if n == 1 {
			if b[0] == 0 {
				return decodeText(buf.Bytes()), nil
			}
			buf.WriteByte(b[0])
			continue
		}
		if err == io.EOF {
			if buf.Len() == 0 {
				return "", io.EOF
			}
			return "", io.ErrUnexpectedEOF
		}
		if err != nil {
			return "", err
		}
	}
}

// WriteString writes s followed by a zero byte.
func WriteString(w io.Writer, s string) error {
	raw, err := encodeText(s)
	if err != nil {
		return err
	}
	raw = append(raw, 0)
	_, err = w.Write(raw)
	return err
}

// WriteProperty writes one property record in the legacy format:
// the label string followed by the raw value.
func WriteProperty[T any](w io.Writer, label string, v T) error {
	if err := WriteString(w, label); err != nil {
		return err
	}
	return WriteValue(w, v)
}

func encodeText(s string) ([]byte, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmbeddedNUL, s)
	}
	if isASCII(s) {
		return []byte(s), nil
	}
	// Encoders carry transform state, so each call gets its own.
	enc := encoding.ReplaceUnsupported(charmap.CodePage437.NewEncoder())
	out, err := enc.Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("codec: encode %q: %w", s, err)
	}
	return out, nil
}

func decodeText(raw []byte) string {
	if isASCII(string(raw)) {
		return string(raw)
	}
	out, err := charmap.CodePage437.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
