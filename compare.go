// Package pixelbasher compares renderings of document pages and marks
// the pixels that differ, using the marker colours of a Palette. Two diffs
// of the same page can be compared again to see which regressions persist
// and which were fixed.
package pixelbasher

import "github.com/mso-test/pixelbasher/bitmap"

// Comparer produces diff images from analyzed bitmaps. A Comparer holds
// no per-comparison state and may be shared between goroutines.
type Comparer struct {
	Thresholds Thresholds
	Palette    Palette
}

// ComparerOption is a functional option for configuring a Comparer.
type ComparerOption func(*Comparer)

// NewComparer creates a Comparer with default thresholds and colours.
func NewComparer(opts ...ComparerOption) *Comparer {
	c := &Comparer{
		Thresholds: DefaultThresholds(),
		Palette:    DefaultPalette(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithThresholds sets the classification thresholds.
func WithThresholds(t Thresholds) ComparerOption {
	return func(c *Comparer) {
		c.Thresholds = t
	}
}

// WithPalette sets the marker colours.
func WithPalette(p Palette) ComparerOption {
	return func(c *Comparer) {
		c.Palette = p
	}
}

// Compare compares original and target with the default settings.
func Compare(original, target *bitmap.Image, enableMinorDifferences bool) *bitmap.Image {
	return NewComparer().Compare(original, target, enableMinorDifferences)
}

// Compare marks every pixel of the overlapping region that differs
// between original and target. The result starts as a copy of original,
// carries its headers and background value, and has its red and yellow
// counters set. Neither input is modified.
//
// Pixels on a long vertical edge in either image are only ever marked
// dark yellow. Elsewhere the threshold widens near the background and
// near edges present in both images; differences near such edges are
// minor and are reported only when enableMinorDifferences is set.
func (c *Comparer) Compare(original, target *bitmap.Image, enableMinorDifferences bool) *bitmap.Image {
	width := min(original.Width(), target.Width())
	height := min(original.Height(), target.Height())
	background := int(original.BackgroundValue())

	diff := original.Derive()
	red, yellow := 0, 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			kind := c.classify(
				original.PixelAt(x, y),
				target.PixelAt(x, y),
				background,
				original.NearEdge(x, y) && target.NearEdge(x, y),
				original.OnVerticalEdge(x, y) || target.OnVerticalEdge(x, y),
				enableMinorDifferences,
			)
			switch kind {
			case Unchanged:
				continue
			case Red:
				red++
			default:
				yellow++
			}
			diff.SetPixel(x, y, c.Palette.pixel(kind))
		}
	}
	diff.IncreaseRedCount(red)
	diff.IncreaseYellowCount(yellow)
	return diff
}

// classify decides the marker of one pixel pair. Only the blue channel
// is compared.
func (c *Comparer) classify(orig, target bitmap.Pixel, background int,
	nearEdge, verticalEdge, minor bool) DiffKind {
	t := c.Thresholds
	delta := absInt(int(orig.B) - int(target.B))
	strict := delta > t.PixelThreshold

	if verticalEdge {
		if strict {
			return DarkYellow
		}
		return Unchanged
	}

	threshold := t.PixelThreshold
	if absInt(int(orig.B)-background) < t.NearBackgroundDistance {
		threshold += t.NearBackgroundWidening
	}
	if nearEdge {
		threshold += t.NearEdgeWidening
	}

	switch {
	case delta > threshold && !nearEdge:
		return Red
	case delta > threshold && minor:
		return Yellow
	case delta > threshold:
		return Unchanged
	case minor && nearEdge && strict:
		return Yellow
	}
	return Unchanged
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
