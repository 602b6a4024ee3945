package pixelbasher

import "testing"

func TestColourFor(t *testing.T) {
	tests := []struct {
		kind DiffKind
		want [4]byte
	}{
		{Red, [4]byte{0, 0, 255, 255}},
		{Yellow, [4]byte{0, 197, 255, 255}},
		{DarkYellow, [4]byte{0, 128, 139, 255}},
		{Blue, [4]byte{255, 0, 0, 255}},
		{Green, [4]byte{0, 255, 0, 255}},
		{Unchanged, [4]byte{}},
	}
	for _, tt := range tests {
		if got := ColourFor(tt.kind); got != tt.want {
			t.Errorf("ColourFor(%v) = %v, want %v", tt.kind, got, tt.want)
		}
	}
	if _, ok := DefaultPalette().For(Unchanged); ok {
		t.Error("Unchanged should have no marker colour")
	}
}

func TestDiffKindString(t *testing.T) {
	if DarkYellow.String() != "dark_yellow" {
		t.Errorf("Expected dark_yellow, got %s", DarkYellow)
	}
	if DiffKind(42).String() != "DiffKind(42)" {
		t.Errorf("Unexpected name for unknown kind: %s", DiffKind(42))
	}
}

func TestParseHexColour(t *testing.T) {
	got, err := ParseHexColour("#ffc500")
	if err != nil {
		t.Fatal(err)
	}
	if got != ColourYellow {
		t.Errorf("Expected %v, got %v", ColourYellow, got)
	}
	if _, err := ParseHexColour("yellow"); err == nil {
		t.Error("Expected an error for a colour name")
	}
}

func TestHexColourRoundTrip(t *testing.T) {
	p := DefaultPalette()
	for _, c := range [][4]byte{p.Red, p.Yellow, p.DarkYellow, p.Blue, p.Green} {
		back, err := ParseHexColour(HexColour(c))
		if err != nil {
			t.Fatal(err)
		}
		if back != c {
			t.Errorf("Expected %v after round trip, got %v", c, back)
		}
	}
	if HexColour(ColourDarkYellow) != "#8b8000" {
		t.Errorf("Expected #8b8000, got %s", HexColour(ColourDarkYellow))
	}
}
