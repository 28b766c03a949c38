package codec

import (
	"bytes"
	"errors"
	"testing"
)

func writeScenario(t *testing.T, f Format) []byte {
	t.Helper()
	var b bytes.Buffer
	pw := NewPropertyWriter(&b, f)
	pw.Write("nGames", uint8(3))
	pw.Write("money", uint32(2000))
	pw.Write("inventory.Coffee", uint32(5))
	if err := pw.Err(); err != nil {
		t.Fatal(err)
	}
	return b.Bytes()
}

func TestLegacyLayout(t *testing.T) {
	data := writeScenario(t, Legacy)

	var want bytes.Buffer
	want.WriteString("nGames\x00")
	want.WriteByte(3)
	want.WriteString("money\x00")
	want.Write([]byte{0xD0, 0x07, 0, 0})
	want.WriteString("inventory.Coffee\x00")
	want.Write([]byte{5, 0, 0, 0})

	if !bytes.Equal(data, want.Bytes()) {
		t.Errorf("legacy stream = % x\nexpected       % x", data, want.Bytes())
	}

	// WriteProperty is the same layout
	var b bytes.Buffer
	_ = WriteProperty(&b, "nGames", uint8(3))
	if !bytes.Equal(b.Bytes(), want.Bytes()[:8]) {
		t.Errorf("WriteProperty = % x", b.Bytes())
	}
}

func TestPropertyRoundTrip(t *testing.T) {
	for _, f := range []Format{Legacy, Tagged} {
		t.Run(f.String(), func(t *testing.T) {
			pr := NewPropertyReader(bytes.NewReader(writeScenario(t, f)), f)

			var nGames uint8
			var money, coffee uint32
			for pr.Next() {
				switch pr.Label() {
				case "nGames":
					_ = pr.Scan(&nGames)
				case "money":
					_ = pr.Scan(&money)
				case "inventory.Coffee":
					_ = pr.Scan(&coffee)
				}
			}
			if err := pr.Err(); err != nil {
				t.Fatal(err)
			}
			if nGames != 3 || money != 2000 || coffee != 5 {
				t.Errorf("got nGames=%d money=%d coffee=%d", nGames, money, coffee)
			}
		})
	}
}

func TestUnknownLabel(t *testing.T) {
	tests := []struct {
		format    Format
		wantMoney uint32
		wantErr   error
	}{
		// legacy cannot know how long "nGames" is and stops
		{Legacy, 0, ErrUnknownProperty},
		// tagged skips it and keeps going
		{Tagged, 2000, nil},
	}

	for _, tc := range tests {
		t.Run(tc.format.String(), func(t *testing.T) {
			pr := NewPropertyReader(bytes.NewReader(writeScenario(t, tc.format)), tc.format)
			var money uint32
			for pr.Next() {
				if pr.Label() == "money" {
					_ = pr.Scan(&money)
				}
			}
			if !errors.Is(pr.Err(), tc.wantErr) && pr.Err() != tc.wantErr {
				t.Errorf("Err() = %v, expected %v", pr.Err(), tc.wantErr)
			}
			if money != tc.wantMoney {
				t.Errorf("money = %d, expected %d", money, tc.wantMoney)
			}
		})
	}
}

func TestTaggedTypeMismatch(t *testing.T) {
	var b bytes.Buffer
	pw := NewPropertyWriter(&b, Tagged)
	pw.Write("money", uint16(7))
	pw.Write("nGames", uint8(4))

	pr := NewPropertyReader(&b, Tagged)
	var money uint32
	var nGames uint8
	for pr.Next() {
		switch pr.Label() {
		case "money":
			if err := pr.Scan(&money); !errors.Is(err, ErrPropertyType) {
				t.Errorf("Scan(money) = %v, expected ErrPropertyType", err)
			}
		case "nGames":
			_ = pr.Scan(&nGames)
		}
	}
	if pr.Err() != nil {
		t.Fatal(pr.Err())
	}
	if money != 0 || nGames != 4 {
		t.Errorf("money=%d nGames=%d, expected 0 and 4", money, nGames)
	}
}

func TestTruncatedStream(t *testing.T) {
	data := writeScenario(t, Legacy)
	pr := NewPropertyReader(bytes.NewReader(data[:len(data)-2]), Legacy)
	var v uint32
	for pr.Next() {
		switch pr.Label() {
		case "nGames":
			var n uint8
			_ = pr.Scan(&n)
		default:
			_ = pr.Scan(&v)
		}
	}
	if pr.Err() == nil {
		t.Error("truncated value should report an error")
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": Legacy, "legacy": Legacy, "Tagged": Tagged} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("json"); err == nil {
		t.Error("ParseFormat(json) should fail")
	}
}
