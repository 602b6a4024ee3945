package pixelbasher

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mso-test/pixelbasher/bitmap"
)

// DiffKind classifies a single pixel of a diff or regression image.
type DiffKind int

const (
	// Unchanged pixels keep the colour of the original image.
	Unchanged DiffKind = iota
	// Red marks a significant difference.
	Red
	// Yellow marks a minor difference near an edge.
	Yellow
	// DarkYellow marks a difference on a long vertical edge.
	DarkYellow
	// Blue marks a regression present in both the current and previous run.
	Blue
	// Green marks a regression of the previous run that is now gone.
	Green
)

var diffKindNames = map[DiffKind]string{
	Unchanged:  "unchanged",
	Red:        "red",
	Yellow:     "yellow",
	DarkYellow: "dark_yellow",
	Blue:       "blue",
	Green:      "green",
}

func (k DiffKind) String() string {
	if name, ok := diffKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("DiffKind(%d)", int(k))
}

// Marker colours in BGRA byte order.
var (
	ColourRed        = [4]byte{0, 0, 255, 255}
	ColourYellow     = [4]byte{0, 197, 255, 255}
	ColourDarkYellow = [4]byte{0, 128, 139, 255}
	ColourBlue       = [4]byte{255, 0, 0, 255}
	ColourGreen      = [4]byte{0, 255, 0, 255}
)

// ColourFor returns the default marker colour of kind. Unchanged has no
// marker colour and yields the zero value.
func ColourFor(kind DiffKind) [4]byte {
	c, _ := DefaultPalette().For(kind)
	return c
}

// Palette holds the BGRA marker colour of every diff kind.
type Palette struct {
	Red        [4]byte
	Yellow     [4]byte
	DarkYellow [4]byte
	Blue       [4]byte
	Green      [4]byte
}

// DefaultPalette returns the standard marker colours.
func DefaultPalette() Palette {
	return Palette{
		Red:        ColourRed,
		Yellow:     ColourYellow,
		DarkYellow: ColourDarkYellow,
		Blue:       ColourBlue,
		Green:      ColourGreen,
	}
}

// For returns the marker colour of kind and whether it has one.
func (p Palette) For(kind DiffKind) ([4]byte, bool) {
	switch kind {
	case Red:
		return p.Red, true
	case Yellow:
		return p.Yellow, true
	case DarkYellow:
		return p.DarkYellow, true
	case Blue:
		return p.Blue, true
	case Green:
		return p.Green, true
	}
	return [4]byte{}, false
}

func (p Palette) pixel(kind DiffKind) bitmap.Pixel {
	c, _ := p.For(kind)
	return bitmap.PixelFromBGRA(c)
}

// ParseHexColour parses "#rrggbb" into an opaque BGRA colour.
func ParseHexColour(s string) ([4]byte, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return [4]byte{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return [4]byte{b, g, r, 255}, nil
}

// HexColour formats a BGRA colour as "#rrggbb".
func HexColour(c [4]byte) string {
	return colorful.Color{
		R: float64(c[2]) / 255,
		G: float64(c[1]) / 255,
		B: float64(c[0]) / 255,
	}.Hex()
}
