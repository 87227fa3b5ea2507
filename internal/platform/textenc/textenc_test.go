package textenc

import (
	"testing"
	"unicode/utf8"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", nil, ""},
		{"plain ascii", []byte("hello"), "hello"},
		{"valid utf8", []byte("caf\xc3\xa9"), "café"},
		{"latin1 e-acute", []byte("caf\xe9"), "café"},
		{"latin1 degrees", []byte("98.6\xb0F"), "98.6°F"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Decode(c.in)
			if got != c.want {
				t.Fatalf("Decode(%q) = %q, want %q", c.in, got, c.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("Decode(%q) produced invalid UTF-8", c.in)
			}
		})
	}
}

func TestDecodeAlwaysValid(t *testing.T) {
	t.Parallel()

	// every single-byte value must decode to something valid
	for b := 0; b < 256; b++ {
		got := Decode([]byte{byte(b)})
		if !utf8.ValidString(got) {
			t.Fatalf("Decode(0x%02x) produced invalid UTF-8: %q", b, got)
		}
	}
}
