package font8x8

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		code byte
		want Glyph
	}{
		{"space", ' ', Glyph{}},
		{"A", 'A', Glyph{0x0C, 0x1E, 0x33, 0x33, 0x3F, 0x33, 0x33, 0x00}},
		{"zero", '0', Glyph{0x3E, 0x63, 0x73, 0x7B, 0x6F, 0x67, 0x3E, 0x00}},
		{"tilde", '~', Glyph{0x6E, 0x3B, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"control", 0x07, Glyph{}},
		{"delete", 0x7F, Glyph{}},
		{"high", 0xC8, Glyph{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lookup(tt.code); got != tt.want {
				t.Errorf("Lookup(0x%02X) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestPrintableHaveInk(t *testing.T) {
	for code := 0; code < 256; code++ {
		c := byte(code)
		g := Lookup(c)
		blank := g == Glyph{}
		switch {
		case !Printable(c) && !blank:
			t.Errorf("code 0x%02X is not printable but has a bitmap", c)
		case Printable(c) && c != ' ' && blank:
			t.Errorf("code 0x%02X (%q) is printable but blank", c, c)
		}
	}
}
