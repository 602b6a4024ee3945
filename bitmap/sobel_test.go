package bitmap

import "testing"

func TestSobelUniformImage(t *testing.T) {
	pix := GrayPixels(10, 10, func(int, int) uint8 { return 128 })
	for i, v := range SobelMagnitude(pix, 10, 10) {
		if v != 0 {
			t.Fatalf("Expected zero magnitude at %d, got %d", i, v)
		}
	}
	if m := SobelEdges(pix, 10, 10, 0); m.Count() != 8*8 {
		t.Errorf("Expected threshold 0 to mark all 64 interior pixels, got %d", m.Count())
	}
}

func TestSobelHorizontalBoundary(t *testing.T) {
	img := CreateHalfImage(10, 10, DefaultOptions())
	edges := img.SobelEdges()

	if edges.Count() != 16 {
		t.Fatalf("Expected 16 edge pixels, got %d", edges.Count())
	}
	for x := 1; x < 9; x++ {
		if !edges.At(x, 4) || !edges.At(x, 5) {
			t.Errorf("Expected edges on rows 4 and 5 at column %d", x)
		}
	}
	if img.VerticalEdges().Count() != 0 {
		t.Errorf("A horizontal boundary has no vertical edges, got %d",
			img.VerticalEdges().Count())
	}
}

func TestSobelMagnitudeClipsAndSkipsBorder(t *testing.T) {
	pix := GrayPixels(10, 10, func(_, y int) uint8 {
		if y < 5 {
			return 0
		}
		return 255
	})
	mag := SobelMagnitude(pix, 10, 10)
	if mag[4*10+5] != 255 {
		t.Errorf("Expected clipped magnitude 255, got %d", mag[4*10+5])
	}
	for x := 0; x < 10; x++ {
		if mag[x] != 0 || mag[9*10+x] != 0 {
			t.Errorf("Expected zero magnitude on the border at column %d", x)
		}
	}
	for y := 0; y < 10; y++ {
		if mag[y*10] != 0 || mag[y*10+9] != 0 {
			t.Errorf("Expected zero magnitude on the border at row %d", y)
		}
	}
}

func TestSobelGradientSigns(t *testing.T) {
	// Brighter row above y (buffer row y-1) gives a positive Gy.
	pix := GrayPixels(3, 3, func(_, y int) uint8 {
		if y == 0 {
			return 10
		}
		return 0
	})
	gx, gy := sobelGradients(pix, 3, 1, 1)
	if gx != 0 || gy != 40 {
		t.Errorf("Expected gx 0 gy 40, got gx %d gy %d", gx, gy)
	}

	// Brighter column to the right gives a positive Gx.
	pix = GrayPixels(3, 3, func(x, _ int) uint8 {
		if x == 2 {
			return 10
		}
		return 0
	})
	gx, gy = sobelGradients(pix, 3, 1, 1)
	if gx != 40 || gy != 0 {
		t.Errorf("Expected gx 40 gy 0, got gx %d gy %d", gx, gy)
	}
}

func TestVerticalLineEdges(t *testing.T) {
	img := CreateVerticalLineImage(20, 30, 10, 0, 30, DefaultOptions())
	vertical := img.VerticalEdges()
	if vertical.Count() != 2*28 {
		t.Fatalf("Expected 56 vertical edge pixels, got %d", vertical.Count())
	}
	for y := 1; y < 29; y++ {
		if !vertical.At(9, y) || !vertical.At(11, y) {
			t.Errorf("Expected vertical edges beside the line on row %d", y)
		}
		if vertical.At(10, y) {
			t.Errorf("Line centre should not be a vertical edge on row %d", y)
		}
	}
	if img.FilteredVerticalEdges().Count() != 56 {
		t.Errorf("Expected long runs to survive filtering, got %d",
			img.FilteredVerticalEdges().Count())
	}
	if !img.OnVerticalEdge(9, 15) {
		t.Error("Expected (9, 15) on a filtered vertical edge")
	}
}

func TestShortVerticalLineIsFiltered(t *testing.T) {
	// Rows 5..11 produce |Gx| >= 100 on rows 4..12: a run of 9.
	img := CreateVerticalLineImage(20, 30, 10, 5, 12, DefaultOptions())
	if img.VerticalEdges().Count() != 2*9 {
		t.Fatalf("Expected 18 vertical edge pixels, got %d", img.VerticalEdges().Count())
	}
	if img.FilteredVerticalEdges().Count() != 0 {
		t.Errorf("Expected short runs to be removed, got %d",
			img.FilteredVerticalEdges().Count())
	}
}

func TestFilterVerticalRuns(t *testing.T) {
	m := NewMask(3, 30)
	for y := 0; y < 9; y++ {
		m.Set(0, y, true)
	}
	for y := 15; y < 25; y++ {
		m.Set(0, y, true)
	}
	for y := 20; y < 30; y++ {
		m.Set(2, y, true)
	}

	out := FilterVerticalRuns(m, 10)
	if out.Count() != 20 {
		t.Fatalf("Expected 20 pixels kept, got %d", out.Count())
	}
	if out.At(0, 3) {
		t.Error("Run of 9 should be removed")
	}
	if !out.At(0, 15) || !out.At(0, 24) {
		t.Error("Run of 10 should be kept")
	}
	if !out.At(2, 29) {
		t.Error("Run touching the last row should be kept")
	}

	if FilterVerticalRuns(m, 0).Count() != m.Count() {
		t.Error("Minimum run 0 should keep every pixel")
	}
}

func TestDilate(t *testing.T) {
	m := NewMask(20, 20)
	m.Set(10, 10, true)
	out := Dilate(m, 3)
	if out.Count() != 49 {
		t.Errorf("Expected 49 pixels, got %d", out.Count())
	}
	if !out.At(7, 13) || out.At(6, 10) {
		t.Error("Expected a 7x7 square around (10, 10)")
	}

	corner := NewMask(20, 20)
	corner.Set(0, 0, true)
	if got := Dilate(corner, 3).Count(); got != 16 {
		t.Errorf("Expected dilation clipped to 16 pixels, got %d", got)
	}

	if got := Dilate(m, 0).Count(); got != 1 {
		t.Errorf("Expected radius 0 to copy the mask, got %d", got)
	}
}

func TestMaskBounds(t *testing.T) {
	m := NewMask(4, 4)
	m.Set(-1, 0, true)
	m.Set(4, 4, true)
	if m.Count() != 0 {
		t.Error("Out of range writes should be ignored")
	}
	if m.At(-1, -1) || m.At(10, 0) {
		t.Error("Out of range reads should be false")
	}
	var zero Mask
	if zero.At(0, 0) || !zero.Empty() || zero.Count() != 0 {
		t.Error("Zero mask should be empty")
	}
}
