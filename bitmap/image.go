// Package bitmap reads and writes 32-bit BGRA BMP files and derives the
// per-image state a visual diff needs: the background level, the amount
// of ink on the page and a set of Sobel edge masks.
//
// Pixel rows are kept in the order they are stored in the file. For a
// normal bottom-up BMP this means row 0 of the buffer is the bottom row
// of the picture. The image.Image view flips rows so that At(x, 0) is
// the top of the picture.
package bitmap

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

var (
	// ErrFormat reports a file that is not a supported BMP.
	ErrFormat = errors.New("bitmap: unsupported format")
	// ErrSizeMismatch reports a pixel buffer of the wrong length.
	ErrSizeMismatch = errors.New("bitmap: buffer size mismatch")
	// ErrIO reports a failure of the underlying reader, writer or file.
	ErrIO = errors.New("bitmap: i/o error")
)

// Pixel is one BGRA pixel in buffer byte order.
type Pixel struct {
	B, G, R, A uint8
}

// PixelFromBGRA builds a Pixel from four bytes in B, G, R, A order.
func PixelFromBGRA(c [4]byte) Pixel {
	return Pixel{B: c[0], G: c[1], R: c[2], A: c[3]}
}

// BGRA returns the pixel as four bytes in buffer order.
func (p Pixel) BGRA() [4]byte {
	return [4]byte{p.B, p.G, p.R, p.A}
}

// Options tunes the analysis run on every decoded image.
type Options struct {
	// BackgroundTolerance is how far from the background a blue value
	// must be to count as ink.
	BackgroundTolerance int
	// EdgeThreshold is the minimum Sobel magnitude of an edge pixel.
	EdgeThreshold int
	// VerticalEdgeThreshold is the minimum |Gx| of a vertical edge pixel.
	VerticalEdgeThreshold int
	// MinVerticalRun is the shortest vertical edge run that survives
	// filtering.
	MinVerticalRun int
	// DilationRadius is the Chebyshev radius used to blur the edge mask.
	DilationRadius int
}

// DefaultOptions returns the analysis settings used for rendered documents.
func DefaultOptions() Options {
	return Options{
		BackgroundTolerance:   10,
		EdgeThreshold:         60,
		VerticalEdgeThreshold: 100,
		MinVerticalRun:        10,
		DilationRadius:        3,
	}
}

// Image is a decoded 32-bit bitmap together with its analysis results
// and the counters a comparison accumulates on it.
type Image struct {
	fileHeader   FileHeader
	infoHeader   InfoHeader
	colourHeader ColourHeader
	data         []byte

	background    uint8
	nonBackground int

	sobel            Mask
	blurred          Mask
	vertical         Mask
	filteredVertical Mask

	redCount    int
	yellowCount int
	blueCount   int
	greenCount  int
}

// New creates a width by height image filled with zero pixels. Unless
// transparent is set the alpha byte of every pixel is 255. No analysis is
// run; the background is 0 and every mask is empty.
func New(width, height int, transparent bool) *Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	data := make([]byte, width*height*BytesPerPixel)
	if !transparent {
		for i := 3; i < len(data); i += BytesPerPixel {
			data[i] = 0xff
		}
	}
	ih := newInfoHeader(width, height)
	return &Image{
		fileHeader:   newFileHeader(int(ih.ImageSize)),
		infoHeader:   ih,
		colourHeader: DefaultColourHeader(),
		data:         data,
	}
}

// NewFromPixels wraps a copy of pix, laid out in buffer order, and runs
// the analysis with opts.
func NewFromPixels(width, height int, pix []byte, opts Options) (*Image, error) {
	img := New(width, height, true)
	if err := img.SetData(pix); err != nil {
		return nil, err
	}
	img.Analyze(opts)
	return img, nil
}

// Analyze recomputes the background statistics and edge masks from the
// current pixel buffer.
func (img *Image) Analyze(opts Options) {
	w, h := img.Width(), img.Height()
	img.background, img.nonBackground = backgroundStats(img.data, opts.BackgroundTolerance)
	img.sobel = SobelEdges(img.data, w, h, opts.EdgeThreshold)
	img.blurred = Dilate(img.sobel, opts.DilationRadius)
	img.vertical = VerticalEdges(img.data, w, h, opts.VerticalEdgeThreshold)
	img.filteredVertical = FilterVerticalRuns(img.vertical, opts.MinVerticalRun)
}

// Derive returns an image with the same headers and a copy of the pixel
// buffer. The background value is carried over, while counters start at
// zero and every mask is empty.
func (img *Image) Derive() *Image {
	data := make([]byte, len(img.data))
	copy(data, img.data)
	return &Image{
		fileHeader:   img.fileHeader,
		infoHeader:   img.infoHeader,
		colourHeader: img.colourHeader,
		data:         data,
		background:   img.background,
	}
}

// Clone creates a deep copy of the image, including masks and counters.
func (img *Image) Clone() *Image {
	clone := img.Derive()
	clone.nonBackground = img.nonBackground
	clone.sobel = img.sobel.Clone()
	clone.blurred = img.blurred.Clone()
	clone.vertical = img.vertical.Clone()
	clone.filteredVertical = img.filteredVertical.Clone()
	clone.redCount = img.redCount
	clone.yellowCount = img.yellowCount
	clone.blueCount = img.blueCount
	clone.greenCount = img.greenCount
	return clone
}

// Width returns the image width in pixels.
func (img *Image) Width() int {
	return int(img.infoHeader.Width)
}

// Height returns the image height in pixels.
func (img *Image) Height() int {
	return int(img.infoHeader.Height)
}

// Headers returns copies of the three file headers.
func (img *Image) Headers() (FileHeader, InfoHeader, ColourHeader) {
	return img.fileHeader, img.infoHeader, img.colourHeader
}

// BackgroundValue is the integer mean of the blue channel.
func (img *Image) BackgroundValue() uint8 {
	return img.background
}

// NonBackgroundCount is the number of pixels whose blue value differs
// from the background by more than the tolerance.
func (img *Image) NonBackgroundCount() int {
	return img.nonBackground
}

// Data returns a copy of the pixel buffer.
func (img *Image) Data() []byte {
	data := make([]byte, len(img.data))
	copy(data, img.data)
	return data
}

// Pix returns the pixel buffer itself. Callers must not modify it; use
// SetData or SetPixel instead.
func (img *Image) Pix() []byte {
	return img.data
}

// SetData replaces the pixel buffer with a copy of data, which must have
// exactly the current length. Analysis results are not refreshed.
func (img *Image) SetData(data []byte) error {
	if len(data) != len(img.data) {
		return fmt.Errorf("%w: new pixel buffer of %d bytes differs from "+
			"the current %d bytes", ErrSizeMismatch, len(data), len(img.data))
	}
	copy(img.data, data)
	return nil
}

// PixelAt returns the pixel at column x of buffer row y.
func (img *Image) PixelAt(x, y int) Pixel {
	i := (y*img.Width() + x) * BytesPerPixel
	d := img.data[i : i+BytesPerPixel : i+BytesPerPixel]
	return Pixel{B: d[0], G: d[1], R: d[2], A: d[3]}
}

// SetPixel writes the pixel at column x of buffer row y.
func (img *Image) SetPixel(x, y int, p Pixel) {
	i := (y*img.Width() + x) * BytesPerPixel
	d := img.data[i : i+BytesPerPixel : i+BytesPerPixel]
	d[0], d[1], d[2], d[3] = p.B, p.G, p.R, p.A
}

// ColorModel implements image.Image.
func (img *Image) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements image.Image.
func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width(), img.Height())
}

// At implements image.Image with y = 0 at the top of the picture.
func (img *Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return color.NRGBA{}
	}
	p := img.PixelAt(x, img.Height()-1-y)
	return color.NRGBA{R: p.R, G: p.G, B: p.B, A: p.A}
}

// RedCount is the number of pixels marked as a significant difference.
func (img *Image) RedCount() int { return img.redCount }

// YellowCount is the number of pixels marked as a minor difference.
func (img *Image) YellowCount() int { return img.yellowCount }

// BlueCount is the number of persistent regression pixels.
func (img *Image) BlueCount() int { return img.blueCount }

// GreenCount is the number of fixed regression pixels.
func (img *Image) GreenCount() int { return img.greenCount }

// IncreaseRedCount adds n to the red counter.
func (img *Image) IncreaseRedCount(n int) { img.redCount += n }

// IncreaseYellowCount adds n to the yellow counter.
func (img *Image) IncreaseYellowCount(n int) { img.yellowCount += n }

// IncreaseBlueCount adds n to the blue counter.
func (img *Image) IncreaseBlueCount(n int) { img.blueCount += n }

// IncreaseGreenCount adds n to the green counter.
func (img *Image) IncreaseGreenCount(n int) { img.greenCount += n }

// SobelEdges returns a copy of the thresholded Sobel edge mask.
func (img *Image) SobelEdges() Mask { return img.sobel.Clone() }

// BlurredEdges returns a copy of the dilated edge mask.
func (img *Image) BlurredEdges() Mask { return img.blurred.Clone() }

// VerticalEdges returns a copy of the vertical edge mask.
func (img *Image) VerticalEdges() Mask { return img.vertical.Clone() }

// FilteredVerticalEdges returns a copy of the vertical edge mask with
// short runs removed.
func (img *Image) FilteredVerticalEdges() Mask { return img.filteredVertical.Clone() }

// NearEdge reports whether (x, y) lies in the dilated edge mask.
func (img *Image) NearEdge(x, y int) bool {
	return img.blurred.At(x, y)
}

// OnVerticalEdge reports whether (x, y) lies on a filtered vertical edge.
func (img *Image) OnVerticalEdge(x, y int) bool {
	return img.filteredVertical.At(x, y)
}
