package bitmap

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	_ "golang.org/x/image/bmp"  // Register BMP decoder for non-32-bit files
	_ "golang.org/x/image/tiff" // Register TIFF decoder
)

// Decode reads a complete 32-bit BMP from r and analyzes it with opts.
func Decode(r io.Reader, opts Options) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading bitmap: %w", ErrIO, err)
	}
	return decodeBytes(data, opts)
}

func decodeBytes(data []byte, opts Options) (*Image, error) {
	fh, ih, ch, pix, err := parse(data)
	if err != nil {
		return nil, err
	}
	// Headers are normalized to the layout Encode writes. parse bounds the
	// pixel region below MaxUint32-HeaderSize, so the sizes fit in uint32.
	ih.Size = InfoHeaderSize + ColourHeaderSize
	ih.ImageSize = uint32(rowStride(int(ih.Width)) * int(ih.Height))
	fh.DataOffset = HeaderSize
	fh.FileSize = HeaderSize + ih.ImageSize
	ch.ColourSpace = ColourSpaceSRGB

	img := &Image{
		fileHeader:   fh,
		infoHeader:   ih,
		colourHeader: ch,
		data:         pix,
	}
	img.Analyze(opts)
	return img, nil
}

// Read loads and analyzes the BMP file at path.
func Read(path string, opts Options) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	img, err := Decode(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Encode writes the image as a 32-bit BMP with a 124-byte info header.
func (img *Image) Encode(w io.Writer) error {
	out := marshal(img.fileHeader, img.infoHeader, img.colourHeader, img.data)
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("%w: writing bitmap: %w", ErrIO, err)
	}
	return nil
}

// Write saves the image to path, replacing any existing file.
func (img *Image) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := img.Encode(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// FromImage converts any image.Image into an analyzed Image. Rows are
// stored bottom-up, as a BMP writer would store them.
func FromImage(m image.Image, opts Options) *Image {
	return fromImage(m, opts, false)
}

// FromImageGray is FromImage with every pixel reduced to its BT.601
// luminance, which is the form rendered pages are compared in.
func FromImageGray(m image.Image, opts Options) *Image {
	return fromImage(m, opts, true)
}

func fromImage(m image.Image, opts Options, gray bool) *Image {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	img := New(w, h, true)
	for y := 0; y < h; y++ {
		row := h - 1 - y
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(m.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			p := Pixel{B: c.B, G: c.G, R: c.R, A: c.A}
			if gray {
				lum := luminance(c.R, c.G, c.B)
				p.B, p.G, p.R = lum, lum, lum
			}
			img.SetPixel(x, row, p)
		}
	}
	img.Analyze(opts)
	return img
}

// luminance uses the BT.601 weights with integer rounding.
func luminance(r, g, b uint8) uint8 {
	lum := (299*int(r) + 587*int(g) + 114*int(b) + 500) / 1000
	if lum > 255 {
		lum = 255
	}
	return uint8(lum)
}

// LoadAny reads a 32-bit BMP directly and falls back to the registered
// image decoders (PNG, JPEG, GIF, TIFF and other BMP depths) for anything
// else. A malformed 32-bit BMP is rejected rather than handed to the
// fallback. Images that go through the fallback are converted to grayscale.
func LoadAny(path string, opts Options) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	img, err := decodeBytes(data, opts)
	if err == nil {
		return img, nil
	}
	if isNativeBMP(data) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormat, path, err)
	}
	return FromImageGray(m, opts), nil
}
