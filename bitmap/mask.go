package bitmap

// Mask is a per-pixel boolean plane laid out in buffer order: index
// y*Width+x, where row 0 is the first row stored in the file.
//
// A zero Mask is empty and reports false for every coordinate.
type Mask struct {
	width, height int
	bits          []bool
}

// NewMask creates an all-false mask with the given dimensions.
func NewMask(width, height int) Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return Mask{
		width:  width,
		height: height,
		bits:   make([]bool, width*height),
	}
}

// Width returns the mask width.
func (m Mask) Width() int {
	return m.width
}

// Height returns the mask height.
func (m Mask) Height() int {
	return m.height
}

// Empty reports whether the mask carries no pixels at all.
func (m Mask) Empty() bool {
	return len(m.bits) == 0
}

// At reports whether (x, y) is set. Out of range coordinates are unset.
func (m Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height || m.bits == nil {
		return false
	}
	return m.bits[y*m.width+x]
}

// Set marks (x, y). Out of range coordinates are ignored.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height || m.bits == nil {
		return
	}
	m.bits[y*m.width+x] = v
}

// Count returns the number of set pixels.
func (m Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the mask.
func (m Mask) Clone() Mask {
	if m.bits == nil {
		return Mask{width: m.width, height: m.height}
	}
	bits := make([]bool, len(m.bits))
	copy(bits, m.bits)
	return Mask{width: m.width, height: m.height, bits: bits}
}

// Subset reports whether every pixel set in m is also set in other.
func (m Mask) Subset(other Mask) bool {
	if m.bits == nil {
		return true
	}
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.bits[y*m.width+x] && !other.At(x, y) {
				return false
			}
		}
	}
	return true
}
