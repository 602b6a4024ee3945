package pixelbasher

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Panel is one named image of a composite.
type Panel struct {
	Name  string
	Image image.Image
}

// CompositeOptions controls the composite layout. Zero values select
// the defaults.
type CompositeOptions struct {
	// Height of every panel; 0 uses the tallest panel.
	Height      int
	Gap         int
	LabelHeight int
	FontSize    float64
	// Legend adds a row of marker swatches drawn with Palette.
	Legend  bool
	Palette Palette
}

func (o CompositeOptions) withDefaults() CompositeOptions {
	if o.Gap <= 0 {
		o.Gap = 10
	}
	if o.FontSize <= 0 {
		o.FontSize = 14
	}
	if o.LabelHeight <= 0 {
		o.LabelHeight = int(math.Ceil(o.FontSize * 2))
	}
	if o.Palette == (Palette{}) {
		o.Palette = DefaultPalette()
	}
	return o
}

var (
	labelFontOnce sync.Once
	labelFont     *truetype.Font
	labelFontErr  error
)

func labelFace(size float64) (font.Face, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = freetype.ParseFont(goregular.TTF)
	})
	if labelFontErr != nil {
		return nil, fmt.Errorf("parsing label font: %w", labelFontErr)
	}
	return truetype.NewFace(labelFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// scaleToHeight resizes m to height h, keeping its aspect ratio.
func scaleToHeight(m image.Image, h int) *image.RGBA {
	b := m.Bounds()
	w := 1
	if b.Dy() > 0 {
		w = max(1, int(math.Round(float64(b.Dx())*float64(h)/float64(b.Dy()))))
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if b.Dx() == w && b.Dy() == h {
		draw.Draw(dst, dst.Bounds(), m, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), m, b, draw.Src, nil)
	return dst
}

var legendEntries = []struct {
	kind  DiffKind
	label string
}{
	{Red, "significant"},
	{Yellow, "minor"},
	{DarkYellow, "vertical edge"},
	{Blue, "persistent"},
	{Green, "fixed"},
}

// Composite lays panels out left to right, scaled to a common height,
// with the panel name stamped above each one.
func Composite(panels []Panel, opts CompositeOptions) (*image.RGBA, error) {
	if len(panels) == 0 {
		return nil, errors.New("composite: no panels")
	}
	opts = opts.withDefaults()

	height := opts.Height
	if height <= 0 {
		for _, p := range panels {
			height = max(height, p.Image.Bounds().Dy())
		}
	}
	if height <= 0 {
		return nil, errors.New("composite: panels are empty")
	}

	scaled := make([]*image.RGBA, len(panels))
	width := opts.Gap
	for i, p := range panels {
		scaled[i] = scaleToHeight(p.Image, height)
		width += scaled[i].Bounds().Dx() + opts.Gap
	}
	legendHeight := 0
	if opts.Legend {
		legendHeight = opts.LabelHeight
	}
	top := opts.LabelHeight
	canvasHeight := top + height + opts.Gap + legendHeight

	face, err := labelFace(opts.FontSize)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContext(width, canvasHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(face)
	dc.SetLineWidth(1)

	x := opts.Gap
	for i, p := range panels {
		w := scaled[i].Bounds().Dx()
		dc.DrawImage(scaled[i], x, top)
		dc.SetRGB(0.5, 0.5, 0.5)
		dc.DrawRectangle(float64(x)-0.5, float64(top)-0.5, float64(w)+1, float64(height)+1)
		dc.Stroke()
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(p.Name, float64(x)+float64(w)/2, float64(top)/2, 0.5, 0.5)
		x += w + opts.Gap
	}

	if opts.Legend {
		y := float64(top + height + opts.Gap)
		swatch := float64(opts.LabelHeight) / 2
		lx := float64(opts.Gap)
		for _, e := range legendEntries {
			c, _ := opts.Palette.For(e.kind)
			dc.SetRGB255(int(c[2]), int(c[1]), int(c[0]))
			dc.DrawRectangle(lx, y+swatch/2, swatch, swatch)
			dc.Fill()
			lx += swatch + 4
			dc.SetRGB(0, 0, 0)
			dc.DrawStringAnchored(e.label, lx, y+swatch, 0, 0.5)
			tw, _ := dc.MeasureString(e.label)
			lx += tw + float64(opts.Gap)*2
		}
	}

	if rgba, ok := dc.Image().(*image.RGBA); ok {
		return rgba, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, width, canvasHeight))
	draw.Draw(out, out.Bounds(), dc.Image(), image.Point{}, draw.Src)
	return out, nil
}

// SaveComposite renders panels with Composite and writes a PNG file.
func SaveComposite(path string, panels []Panel, opts CompositeOptions) error {
	img, err := Composite(panels, opts)
	if err != nil {
		return err
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("saving composite: %w", err)
	}
	return nil
}
