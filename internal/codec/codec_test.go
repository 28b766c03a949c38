package codec

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

type buf struct {
	Timer      float32
	Multiplier float32
}

func TestValueRoundTrip(t *testing.T) {
	var b bytes.Buffer
	if err := WriteValue(&b, int16(-3)); err != nil {
		t.Fatal(err)
	}
	if err := WriteValue(&b, buf{Timer: 10, Multiplier: 2}); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 2+8 {
		t.Fatalf("wrote %d bytes, expected 10", b.Len())
	}
	if b.Bytes()[0] != 0xFD || b.Bytes()[1] != 0xFF {
		t.Errorf("int16 should be little-endian, got % x", b.Bytes()[:2])
	}

	v, err := ReadValue[int16](&b)
	if err != nil || v != -3 {
		t.Fatalf("ReadValue[int16] = %d, %v", v, err)
	}
	got, err := ReadValue[buf](&b)
	if err != nil || got != (buf{Timer: 10, Multiplier: 2}) {
		t.Fatalf("ReadValue[buf] = %+v, %v", got, err)
	}
	if _, err := ReadValue[uint32](&b); err != io.EOF {
		t.Errorf("read at end = %v, expected io.EOF", err)
	}
}

func TestStrings(t *testing.T) {
	var b bytes.Buffer
	for _, s := range []string{"Coffee", "", "Café"} {
		if err := WriteString(&b, s); err != nil {
			t.Fatalf("WriteString(%q): %v", s, err)
		}
	}
	for _, want := range []string{"Coffee", "", "Café"} {
		got, err := ReadString(&b)
		if err != nil || got != want {
			t.Errorf("ReadString = %q, %v; expected %q", got, err, want)
		}
	}
	if _, err := ReadString(&b); err != io.EOF {
		t.Errorf("ReadString at end = %v, expected io.EOF", err)
	}

	if err := WriteString(&b, "bad\x00name"); !errors.Is(err, ErrEmbeddedNUL) {
		t.Errorf("embedded NUL: err = %v", err)
	}

	if _, err := ReadString(bytes.NewReader([]byte("open"))); err != io.ErrUnexpectedEOF {
		t.Errorf("unterminated: err = %v, expected io.ErrUnexpectedEOF", err)
	}
}

func TestStringCodePage(t *testing.T) {
	var b bytes.Buffer
	if err := WriteString(&b, "é"); err != nil {
		t.Fatal(err)
	}
	// é is 0x82 in code page 437
	if !bytes.Equal(b.Bytes(), []byte{0x82, 0}) {
		t.Errorf("encoded = % x, expected 82 00", b.Bytes())
	}
}

func TestCursor(t *testing.T) {
	var bl Builder
	bl.WriteU16(7)
	bl.WriteI32(-12)
	bl.WriteF32(1.5)
	bl.WriteString("Tito")
	bl.WriteU8(9)
	data, err := bl.Bytes()
	if err != nil {
		t.Fatal(err)
	}

	c := NewCursor(data)
	if v, _ := c.ReadU16(); v != 7 {
		t.Errorf("ReadU16 = %d", v)
	}
	if v, _ := c.ReadI32(); v != -12 {
		t.Errorf("ReadI32 = %d", v)
	}
	if v, _ := c.ReadF32(); v != 1.5 {
		t.Errorf("ReadF32 = %v", v)
	}
	if v, _ := c.ReadString(); v != "Tito" {
		t.Errorf("ReadString = %q", v)
	}
	if v, _ := c.ReadU8(); v != 9 {
		t.Errorf("ReadU8 = %d", v)
	}
	if c.Remaining() != 0 {
		t.Errorf("Remaining = %d", c.Remaining())
	}
	if _, err := c.ReadI32(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("read past end = %v", err)
	}
}
