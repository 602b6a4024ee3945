package bitmap

import "math"

// Sobel kernels indexed [row][col] with row 0 holding the pixels of
// buffer row y-1.
var (
	sobelX = [3][3]int{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]int{
		{1, 2, 1},
		{0, 0, 0},
		{-1, -2, -1},
	}
)

// sobelGradients applies both kernels to the blue channel around the
// interior pixel (x, y).
func sobelGradients(pix []byte, width, x, y int) (gx, gy int) {
	for ky := 0; ky < 3; ky++ {
		row := (y + ky - 1) * width
		for kx := 0; kx < 3; kx++ {
			v := int(pix[(row+x+kx-1)*BytesPerPixel])
			gx += sobelX[ky][kx] * v
			gy += sobelY[ky][kx] * v
		}
	}
	return gx, gy
}

func magnitude(gx, gy int) uint8 {
	m := math.Round(math.Sqrt(float64(gx*gx + gy*gy)))
	if m > 255 {
		return 255
	}
	return uint8(m)
}

// SobelMagnitude computes the clipped gradient magnitude of the blue
// channel for every interior pixel. Border pixels are left at 0.
func SobelMagnitude(pix []byte, width, height int) []uint8 {
	out := make([]uint8, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			gx, gy := sobelGradients(pix, width, x, y)
			out[y*width+x] = magnitude(gx, gy)
		}
	}
	return out
}

// SobelEdges marks interior pixels whose gradient magnitude is at least
// threshold.
func SobelEdges(pix []byte, width, height, threshold int) Mask {
	m := NewMask(width, height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			gx, gy := sobelGradients(pix, width, x, y)
			if int(magnitude(gx, gy)) >= threshold {
				m.bits[y*width+x] = true
			}
		}
	}
	return m
}

// VerticalEdges marks interior pixels whose horizontal gradient |Gx| is
// at least threshold.
func VerticalEdges(pix []byte, width, height, threshold int) Mask {
	m := NewMask(width, height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			gx, _ := sobelGradients(pix, width, x, y)
			if gx < 0 {
				gx = -gx
			}
			if gx >= threshold {
				m.bits[y*width+x] = true
			}
		}
	}
	return m
}

// FilterVerticalRuns keeps only the maximal vertical runs of set pixels
// that are at least minRun long, scanning each column independently.
func FilterVerticalRuns(m Mask, minRun int) Mask {
	out := NewMask(m.width, m.height)
	for x := 0; x < m.width; x++ {
		start, run := 0, 0
		flush := func() {
			if run > 0 && run >= minRun {
				for y := start; y < start+run; y++ {
					out.bits[y*m.width+x] = true
				}
			}
			run = 0
		}
		for y := 0; y < m.height; y++ {
			if m.At(x, y) {
				if run == 0 {
					start = y
				}
				run++
				continue
			}
			flush()
		}
		flush()
	}
	return out
}

// Dilate sets every pixel within Chebyshev distance radius of a set pixel,
// clipped to the mask bounds.
func Dilate(m Mask, radius int) Mask {
	out := NewMask(m.width, m.height)
	if radius < 0 {
		radius = 0
	}
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if !m.At(x, y) {
				continue
			}
			y0, y1 := max(0, y-radius), min(m.height-1, y+radius)
			x0, x1 := max(0, x-radius), min(m.width-1, x+radius)
			for ny := y0; ny <= y1; ny++ {
				row := out.bits[ny*m.width : (ny+1)*m.width]
				for nx := x0; nx <= x1; nx++ {
					row[nx] = true
				}
			}
		}
	}
	return out
}
