package pixelbasher

import "github.com/mso-test/pixelbasher/bitmap"

// CompareRegressions compares two diff images with the default colours.
func CompareRegressions(original, currentDiff, previousDiff *bitmap.Image) *bitmap.Image {
	return NewComparer().CompareRegressions(original, currentDiff, previousDiff)
}

// CompareRegressions contrasts the significant differences of the
// current run with those of a previous run. A pixel is significant when
// its colour equals the red marker exactly. Pixels red in both diffs are
// marked blue, red only now stay red and red only before turn green. All
// other pixels keep the colour of original. The result carries the
// headers of original with its red, blue and green counters set.
func (c *Comparer) CompareRegressions(original, currentDiff, previousDiff *bitmap.Image) *bitmap.Image {
	width := min(original.Width(), currentDiff.Width(), previousDiff.Width())
	height := min(original.Height(), currentDiff.Height(), previousDiff.Height())
	marker := bitmap.PixelFromBGRA(c.Palette.Red)

	out := original.Derive()
	counts := map[DiffKind]int{}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			kind := regressionKind(
				currentDiff.PixelAt(x, y) == marker,
				previousDiff.PixelAt(x, y) == marker,
			)
			if kind == Unchanged {
				continue
			}
			counts[kind]++
			out.SetPixel(x, y, c.Palette.pixel(kind))
		}
	}
	out.IncreaseRedCount(counts[Red])
	out.IncreaseBlueCount(counts[Blue])
	out.IncreaseGreenCount(counts[Green])
	return out
}

func regressionKind(current, previous bool) DiffKind {
	switch {
	case current && previous:
		return Blue
	case current:
		return Red
	case previous:
		return Green
	}
	return Unchanged
}
