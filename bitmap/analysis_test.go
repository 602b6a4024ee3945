package bitmap

import "testing"

func TestBackgroundOfSolidImage(t *testing.T) {
	img := CreateSolidImage(8, 8, 200, DefaultOptions())
	if img.BackgroundValue() != 200 {
		t.Errorf("Expected background 200, got %d", img.BackgroundValue())
	}
	if img.NonBackgroundCount() != 0 {
		t.Errorf("Expected no ink, got %d", img.NonBackgroundCount())
	}
	if img.InkRatio() != 0 {
		t.Errorf("Expected ink ratio 0, got %f", img.InkRatio())
	}
}

func TestBackgroundIsTruncatedMean(t *testing.T) {
	img := CreateHalfImage(10, 10, DefaultOptions())
	// (50*0 + 50*255) / 100 = 127.5
	if img.BackgroundValue() != 127 {
		t.Errorf("Expected background 127, got %d", img.BackgroundValue())
	}
	if img.NonBackgroundCount() != 100 {
		t.Errorf("Expected 100 ink pixels, got %d", img.NonBackgroundCount())
	}
}

func TestBackgroundTolerance(t *testing.T) {
	pix := GrayPixels(10, 1, func(x, _ int) uint8 {
		if x == 0 {
			return 110
		}
		return 100
	})
	opts := DefaultOptions()
	img, err := NewFromPixels(10, 1, pix, opts)
	if err != nil {
		t.Fatal(err)
	}
	// mean is 101, the odd pixel is 9 away
	if img.NonBackgroundCount() != 0 {
		t.Errorf("Expected pixel within tolerance, got %d ink pixels", img.NonBackgroundCount())
	}

	opts.BackgroundTolerance = 5
	img, _ = NewFromPixels(10, 1, pix, opts)
	if img.NonBackgroundCount() != 1 {
		t.Errorf("Expected 1 ink pixel with tighter tolerance, got %d", img.NonBackgroundCount())
	}
}

func TestAnalysisInvariants(t *testing.T) {
	opts := DefaultOptions()
	images := map[string]*Image{
		"checkerboard": CreateCheckerboardImage(40, 40, 5, opts),
		"rectangle":    CreateRectangleImage(40, 40, 10, 5, 30, 35, opts),
		"gradient":     CreateGradientImage(40, 40, opts),
		"line":         CreateVerticalLineImage(40, 40, 20, 0, 40, opts),
	}
	for name, img := range images {
		sobel := img.SobelEdges()
		blurred := img.BlurredEdges()
		vertical := img.VerticalEdges()
		filtered := img.FilteredVerticalEdges()

		if !sobel.Subset(blurred) {
			t.Errorf("%s: edge mask should be inside the dilated mask", name)
		}
		if !filtered.Subset(vertical) {
			t.Errorf("%s: filtered vertical edges should be inside vertical edges", name)
		}
		if vertical.Count() > blurred.Count() {
			t.Errorf("%s: %d vertical edge pixels exceed %d dilated edge pixels",
				name, vertical.Count(), blurred.Count())
		}
		if img.NonBackgroundCount() > img.Width()*img.Height() {
			t.Errorf("%s: ink count exceeds pixel count", name)
		}
	}
}
