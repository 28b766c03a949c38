package codec

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
)

var (
	// ErrUnknownProperty means a legacy stream contained a label the reader
	// had no type for. The record size is unknown, so reading stops there.
	ErrUnknownProperty = errors.New("codec: unknown property")

	// ErrPropertyType means a tagged record did not match the type it was
	// scanned into. The record is skipped.
	ErrPropertyType = errors.New("codec: property type mismatch")
)

// Format selects the property record layout.
type Format uint8

const (
	// Legacy is label, NUL, raw value. Reader and writer must agree on the
	// type behind every label.
	Legacy Format = iota
	// Tagged is label, NUL, one kind byte, a little-endian u16 payload length,
	// then the raw value. Unknown labels can be skipped.
	Tagged
)

// ParseFormat parses "legacy" or "tagged".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "legacy":
		return Legacy, nil
	case "tagged":
		return Tagged, nil
	}
	return Legacy, fmt.Errorf("codec: unknown property format %q", s)
}

// String returns the config name of the format.
func (f Format) String() string {
	if f == Tagged {
		return "tagged"
	}
	return "legacy"
}

// Kind is the value type stored in a tagged record header.
type Kind uint8

const (
	KindBlob Kind = iota
	KindBool
	KindU8
	KindI8
	KindU16
	KindI16
	KindU32
	KindI32
	KindU64
	KindI64
	KindF32
	KindF64
)

var reflectKinds = map[reflect.Kind]Kind{
	reflect.Bool:    KindBool,
	reflect.Uint8:   KindU8,
	reflect.Int8:    KindI8,
	reflect.Uint16:  KindU16,
	reflect.Int16:   KindI16,
	reflect.Uint32:  KindU32,
	reflect.Int32:   KindI32,
	reflect.Uint64:  KindU64,
	reflect.Int64:   KindI64,
	reflect.Float32: KindF32,
	reflect.Float64: KindF64,
}

func kindOf(v any) Kind {
	k, ok := reflectKinds[reflect.Indirect(reflect.ValueOf(v)).Kind()]
	if !ok {
		return KindBlob
	}
	return k
}

// PropertyWriter writes a flat stream of property records.
// The first error sticks and is reported by Err.
type PropertyWriter struct {
	w      io.Writer
	format Format
	err    error
}

// NewPropertyWriter creates a writer for the given format.
func NewPropertyWriter(w io.Writer, format Format) *PropertyWriter {
	return &PropertyWriter{w: w, format: format}
}

// Write appends one record.
func (pw *PropertyWriter) Write(label string, v any) {
	if pw.err != nil {
		return
	}
	if err := WriteString(pw.w, label); err != nil {
		pw.err = err
		return
	}
	if pw.format == Tagged {
		size := binary.Size(v)
		if size < 0 || size > 0xFFFF {
			pw.err = fmt.Errorf("codec: property %q: value is not fixed-size", label)
			return
		}
		header := [3]byte{byte(kindOf(v))}
		binary.LittleEndian.PutUint16(header[1:], uint16(size))
		if _, err := pw.w.Write(header[:]); err != nil {
			pw.err = err
			return
		}
	}
	if err := binary.Write(pw.w, binary.LittleEndian, v); err != nil {
		pw.err = fmt.Errorf("codec: property %q: %w", label, err)
	}
}

// Err returns the first error hit while writing.
func (pw *PropertyWriter) Err() error {
	return pw.err
}

// PropertyReader iterates the records of a property stream.
//
//	for pr.Next() {
//		switch pr.Label() {
//		case "money":
//			pr.Scan(&money)
//		}
//	}
//
// A record that is neither scanned nor skipped before the next call to Next
// is treated as unknown.
type PropertyReader struct {
	r       *bufio.Reader
	format  Format
	label   string
	kind    Kind
	size    int
	pending bool
	err     error
}

// NewPropertyReader creates a reader for the given format.
func NewPropertyReader(r io.Reader, format Format) *PropertyReader {
	return &PropertyReader{r: bufio.NewReader(r), format: format}
}

// Next advances to the next record. It returns false at end of stream or
// after a fatal error.
func (pr *PropertyReader) Next() bool {
	if pr.err != nil {
		return false
	}
	if pr.pending {
		pr.Skip()
		if pr.err != nil {
			return false
		}
	}

	label, err := ReadString(pr.r)
	if err == io.EOF {
		return false
	}
	if err != nil {
		pr.err = fmt.Errorf("codec: read label: %w", err)
		return false
	}
	pr.label = label

	if pr.format == Tagged {
		var header [3]byte
		if _, err := io.ReadFull(pr.r, header[:]); err != nil {
			pr.err = fmt.Errorf("codec: property %q header: %w", label, noEOF(err))
			return false
		}
		pr.kind = Kind(header[0])
		pr.size = int(binary.LittleEndian.Uint16(header[1:]))
	}
	pr.pending = true
	return true
}

// Label returns the label of the current record.
func (pr *PropertyReader) Label() string {
	return pr.label
}

// Scan decodes the current record's value into v, which must be a pointer
// to a fixed-size value. A mismatch in a tagged stream returns
// ErrPropertyType and leaves the stream usable.
func (pr *PropertyReader) Scan(v any) error {
	if pr.err != nil {
		return pr.err
	}
	if !pr.pending {
		return fmt.Errorf("codec: property %q already consumed", pr.label)
	}
	pr.pending = false

	if pr.format == Tagged {
		want := binary.Size(v)
		if kind := kindOf(v); kind != pr.kind || want != pr.size {
			pr.discard(pr.size)
			return fmt.Errorf("%w: %q has kind %d size %d, want kind %d size %d",
				ErrPropertyType, pr.label, pr.kind, pr.size, kind, want)
		}
	}

	if err := binary.Read(pr.r, binary.LittleEndian, v); err != nil {
		pr.err = fmt.Errorf("codec: property %q: %w", pr.label, noEOF(err))
		return pr.err
	}
	return nil
}

// Skip drops the current record. In the legacy format the size of an unknown
// record cannot be known, so Skip ends the stream with ErrUnknownProperty.
func (pr *PropertyReader) Skip() {
	if !pr.pending || pr.err != nil {
		return
	}
	pr.pending = false
	if pr.format == Tagged {
		pr.discard(pr.size)
		return
	}
	pr.err = fmt.Errorf("%w: %q", ErrUnknownProperty, pr.label)
}

func (pr *PropertyReader) discard(n int) {
	if _, err := pr.r.Discard(n); err != nil {
		pr.err = fmt.Errorf("codec: skip property %q: %w", pr.label, noEOF(err))
	}
}

// Err returns the error that stopped the reader, if any.
func (pr *PropertyReader) Err() error {
	return pr.err
}

func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
