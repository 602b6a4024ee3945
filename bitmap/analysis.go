package bitmap

// backgroundStats returns the integer mean of the blue channel and the
// number of pixels whose blue value is more than tolerance away from it.
func backgroundStats(pix []byte, tolerance int) (uint8, int) {
	n := len(pix) / BytesPerPixel
	if n == 0 {
		return 0, 0
	}
	sum := 0
	for i := 0; i < len(pix); i += BytesPerPixel {
		sum += int(pix[i])
	}
	bg := sum / n

	count := 0
	for i := 0; i < len(pix); i += BytesPerPixel {
		d := int(pix[i]) - bg
		if d < 0 {
			d = -d
		}
		if d > tolerance {
			count++
		}
	}
	return uint8(bg), count
}

// InkRatio is the fraction of pixels that are not background.
func (img *Image) InkRatio() float64 {
	total := img.Width() * img.Height()
	if total == 0 {
		return 0
	}
	return float64(img.nonBackground) / float64(total)
}
