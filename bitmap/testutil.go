package bitmap

// GrayPixels builds an opaque buffer in buffer order where every channel
// of pixel (x, y) is set to f(x, y).
func GrayPixels(width, height int, f func(x, y int) uint8) []byte {
	pix := make([]byte, width*height*BytesPerPixel)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := f(x, y)
			i := (y*width + x) * BytesPerPixel
			pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, 0xff
		}
	}
	return pix
}

func mustFromPixels(width, height int, pix []byte, opts Options) *Image {
	img, err := NewFromPixels(width, height, pix, opts)
	if err != nil {
		panic(err)
	}
	return img
}

// CreateSolidImage creates a uniform gray image.
func CreateSolidImage(width, height int, v uint8, opts Options) *Image {
	pix := GrayPixels(width, height, func(int, int) uint8 { return v })
	return mustFromPixels(width, height, pix, opts)
}

// CreateHalfImage creates an image whose lower half of buffer rows is
// black and upper half white.
func CreateHalfImage(width, height int, opts Options) *Image {
	pix := GrayPixels(width, height, func(_, y int) uint8 {
		if y < height/2 {
			return 0
		}
		return 255
	})
	return mustFromPixels(width, height, pix, opts)
}

// CreateRectangleImage creates a white page with a filled black
// rectangle spanning [x0, x1) by [y0, y1).
func CreateRectangleImage(width, height, x0, y0, x1, y1 int, opts Options) *Image {
	pix := GrayPixels(width, height, func(x, y int) uint8 {
		if x >= x0 && x < x1 && y >= y0 && y < y1 {
			return 0
		}
		return 255
	})
	return mustFromPixels(width, height, pix, opts)
}

// CreateVerticalLineImage creates a white page with a one pixel wide
// black line in column x covering buffer rows [y0, y1).
func CreateVerticalLineImage(width, height, x, y0, y1 int, opts Options) *Image {
	pix := GrayPixels(width, height, func(px, py int) uint8 {
		if px == x && py >= y0 && py < y1 {
			return 0
		}
		return 255
	})
	return mustFromPixels(width, height, pix, opts)
}

// CreateCheckerboardImage creates a black and white checkerboard.
func CreateCheckerboardImage(width, height, squareSize int, opts Options) *Image {
	pix := GrayPixels(width, height, func(x, y int) uint8 {
		if ((x/squareSize)+(y/squareSize))%2 == 0 {
			return 255
		}
		return 0
	})
	return mustFromPixels(width, height, pix, opts)
}

// CreateGradientImage creates a horizontal gradient from black to white.
func CreateGradientImage(width, height int, opts Options) *Image {
	pix := GrayPixels(width, height, func(x, _ int) uint8 {
		if width < 2 {
			return 0
		}
		return uint8(255 * x / (width - 1))
	})
	return mustFromPixels(width, height, pix, opts)
}

// CountDiffPixels returns how many pixels differ between two buffers of
// equal length.
func CountDiffPixels(a, b []byte) int {
	n := 0
	for i := 0; i+BytesPerPixel <= len(a) && i+BytesPerPixel <= len(b); i += BytesPerPixel {
		if a[i] != b[i] || a[i+1] != b[i+1] || a[i+2] != b[i+2] || a[i+3] != b[i+3] {
			n++
		}
	}
	return n
}
