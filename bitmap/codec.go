package bitmap

import (
	"encoding/binary"
	"fmt"
	"math"
)

// On-disk layout of the headers this package reads and writes.
const (
	FileHeaderSize   = 14
	InfoHeaderSize   = 40
	ColourHeaderSize = 84

	// HeaderSize is the total header length of every file written by Encode.
	HeaderSize = FileHeaderSize + InfoHeaderSize + ColourHeaderSize

	// Signature is the little-endian "BM" magic.
	Signature uint16 = 0x4D42

	// ColourSpaceSRGB is the "sRGB" colour space tag.
	ColourSpaceSRGB uint32 = 0x73524742

	BitsPerPixel  = 32
	BytesPerPixel = BitsPerPixel / 8

	compressionRGB       uint32 = 0
	compressionBitfields uint32 = 3

	// Offsets inside the optional colour header, relative to its start.
	masksEnd       = 16
	colourSpaceEnd = 20
)

// FileHeader is the 14-byte BMP file header.
type FileHeader struct {
	Type       uint16
	FileSize   uint32
	Reserved1  uint16
	Reserved2  uint16
	DataOffset uint32
}

// InfoHeader is the 40-byte BITMAPINFOHEADER. Size covers any extension
// that follows it, so it is 124 for every file written by this package.
type InfoHeader struct {
	Size             uint32
	Width            int32
	Height           int32
	Planes           uint16
	BitCount         uint16
	Compression      uint32
	ImageSize        uint32
	XPixelsPerMeter  int32
	YPixelsPerMeter  int32
	ColoursUsed      uint32
	ColoursImportant uint32
}

// ColourHeader holds the channel masks and colour space of a 32-bit file.
type ColourHeader struct {
	RedMask     uint32
	GreenMask   uint32
	BlueMask    uint32
	AlphaMask   uint32
	ColourSpace uint32
	Unused      [16]uint32
}

// DefaultColourHeader returns the BGRA masks with the sRGB colour space.
func DefaultColourHeader() ColourHeader {
	return ColourHeader{
		RedMask:     0x00ff0000,
		GreenMask:   0x0000ff00,
		BlueMask:    0x000000ff,
		AlphaMask:   0xff000000,
		ColourSpace: ColourSpaceSRGB,
	}
}

func newFileHeader(dataSize int) FileHeader {
	return FileHeader{
		Type:       Signature,
		FileSize:   uint32(HeaderSize + dataSize),
		DataOffset: HeaderSize,
	}
}

func newInfoHeader(width, height int) InfoHeader {
	return InfoHeader{
		Size:        InfoHeaderSize + ColourHeaderSize,
		Width:       int32(width),
		Height:      int32(height),
		Planes:      1,
		BitCount:    BitsPerPixel,
		Compression: compressionBitfields,
		ImageSize:   uint32(rowStride(width) * height),
	}
}

// rowStride is the on-disk length of one row, padded to four bytes.
func rowStride(width int) int {
	return (width*BitsPerPixel/8 + 3) &^ 3
}

func decodeFileHeader(b []byte) FileHeader {
	le := binary.LittleEndian
	return FileHeader{
		Type:       le.Uint16(b[0:2]),
		FileSize:   le.Uint32(b[2:6]),
		Reserved1:  le.Uint16(b[6:8]),
		Reserved2:  le.Uint16(b[8:10]),
		DataOffset: le.Uint32(b[10:14]),
	}
}

func (h FileHeader) put(b []byte) {
	le := binary.LittleEndian
	le.PutUint16(b[0:2], h.Type)
	le.PutUint32(b[2:6], h.FileSize)
	le.PutUint16(b[6:8], h.Reserved1)
	le.PutUint16(b[8:10], h.Reserved2)
	le.PutUint32(b[10:14], h.DataOffset)
}

func decodeInfoHeader(b []byte) InfoHeader {
	le := binary.LittleEndian
	return InfoHeader{
		Size:             le.Uint32(b[0:4]),
		Width:            int32(le.Uint32(b[4:8])),
		Height:           int32(le.Uint32(b[8:12])),
		Planes:           le.Uint16(b[12:14]),
		BitCount:         le.Uint16(b[14:16]),
		Compression:      le.Uint32(b[16:20]),
		ImageSize:        le.Uint32(b[20:24]),
		XPixelsPerMeter:  int32(le.Uint32(b[24:28])),
		YPixelsPerMeter:  int32(le.Uint32(b[28:32])),
		ColoursUsed:      le.Uint32(b[32:36]),
		ColoursImportant: le.Uint32(b[36:40]),
	}
}

func (h InfoHeader) put(b []byte) {
	le := binary.LittleEndian
	le.PutUint32(b[0:4], h.Size)
	le.PutUint32(b[4:8], uint32(h.Width))
	le.PutUint32(b[8:12], uint32(h.Height))
	le.PutUint16(b[12:14], h.Planes)
	le.PutUint16(b[14:16], h.BitCount)
	le.PutUint32(b[16:20], h.Compression)
	le.PutUint32(b[20:24], h.ImageSize)
	le.PutUint32(b[24:28], uint32(h.XPixelsPerMeter))
	le.PutUint32(b[28:32], uint32(h.YPixelsPerMeter))
	le.PutUint32(b[32:36], h.ColoursUsed)
	le.PutUint32(b[36:40], h.ColoursImportant)
}

// decodeColourHeader reads whatever part of the colour header is present;
// missing fields keep their defaults.
func decodeColourHeader(b []byte) ColourHeader {
	le := binary.LittleEndian
	h := DefaultColourHeader()
	if len(b) >= masksEnd {
		h.RedMask = le.Uint32(b[0:4])
		h.GreenMask = le.Uint32(b[4:8])
		h.BlueMask = le.Uint32(b[8:12])
		h.AlphaMask = le.Uint32(b[12:16])
	}
	if len(b) >= colourSpaceEnd {
		h.ColourSpace = le.Uint32(b[16:20])
	}
	for i := range h.Unused {
		off := colourSpaceEnd + i*4
		if len(b) < off+4 {
			break
		}
		h.Unused[i] = le.Uint32(b[off : off+4])
	}
	return h
}

func (h ColourHeader) put(b []byte) {
	le := binary.LittleEndian
	le.PutUint32(b[0:4], h.RedMask)
	le.PutUint32(b[4:8], h.GreenMask)
	le.PutUint32(b[8:12], h.BlueMask)
	le.PutUint32(b[12:16], h.AlphaMask)
	le.PutUint32(b[16:20], h.ColourSpace)
	for i, v := range h.Unused {
		off := colourSpaceEnd + i*4
		le.PutUint32(b[off:off+4], v)
	}
}

func (h ColourHeader) check(headerSize uint32) error {
	want := DefaultColourHeader()
	if headerSize >= InfoHeaderSize+masksEnd {
		if h.RedMask != want.RedMask || h.GreenMask != want.GreenMask ||
			h.BlueMask != want.BlueMask || h.AlphaMask != want.AlphaMask {
			return fmt.Errorf("%w: unexpected colour mask format "+
				"(r=%#08x g=%#08x b=%#08x a=%#08x), expected BGRA",
				ErrFormat, h.RedMask, h.GreenMask, h.BlueMask, h.AlphaMask)
		}
	}
	if headerSize >= InfoHeaderSize+colourSpaceEnd {
		if h.ColourSpace != ColourSpaceSRGB {
			return fmt.Errorf("%w: unexpected colour space type %#08x, "+
				"expected sRGB", ErrFormat, h.ColourSpace)
		}
	}
	return nil
}

// isNativeBMP reports whether data claims to be a 32-bit BMP, the only
// kind parse accepts.
func isNativeBMP(data []byte) bool {
	if len(data) < FileHeaderSize+16 {
		return false
	}
	return binary.LittleEndian.Uint16(data[0:2]) == Signature &&
		binary.LittleEndian.Uint16(data[FileHeaderSize+14:]) == BitsPerPixel
}

// parse validates a complete BMP file and returns its headers and the
// unpadded pixel rows in file order.
func parse(data []byte) (FileHeader, InfoHeader, ColourHeader, []byte, error) {
	var (
		fh FileHeader
		ih InfoHeader
		ch ColourHeader
	)
	if len(data) < 2 || binary.LittleEndian.Uint16(data[0:2]) != Signature {
		return fh, ih, ch, nil, fmt.Errorf(
			"%w: Not a BMP file, missing \"BM\" signature", ErrFormat)
	}
	if len(data) < FileHeaderSize+InfoHeaderSize {
		return fh, ih, ch, nil, fmt.Errorf(
			"%w: truncated header, %d bytes", ErrFormat, len(data))
	}
	fh = decodeFileHeader(data[:FileHeaderSize])
	ih = decodeInfoHeader(data[FileHeaderSize : FileHeaderSize+InfoHeaderSize])

	if ih.Size < InfoHeaderSize {
		return fh, ih, ch, nil, fmt.Errorf(
			"%w: info header size %d is too small", ErrFormat, ih.Size)
	}
	if ih.BitCount != BitsPerPixel {
		return fh, ih, ch, nil, fmt.Errorf(
			"%w: %d bits per pixel, only 32 bits per pixel (RGBA) "+
				"images are supported", ErrFormat, ih.BitCount)
	}
	if ih.Height < 0 {
		return fh, ih, ch, nil, fmt.Errorf(
			"%w: top-down images (negative height) are not supported",
			ErrFormat)
	}
	if ih.Width <= 0 || ih.Height == 0 {
		return fh, ih, ch, nil, fmt.Errorf(
			"%w: invalid dimensions %dx%d", ErrFormat, ih.Width, ih.Height)
	}
	if ih.Compression != compressionRGB && ih.Compression != compressionBitfields {
		return fh, ih, ch, nil, fmt.Errorf(
			"%w: unsupported compression %d", ErrFormat, ih.Compression)
	}

	extStart := FileHeaderSize + InfoHeaderSize
	extEnd := FileHeaderSize + int(ih.Size)
	if extEnd > extStart+ColourHeaderSize {
		extEnd = extStart + ColourHeaderSize
	}
	if extEnd > len(data) {
		return fh, ih, ch, nil, fmt.Errorf(
			"%w: truncated colour header", ErrFormat)
	}
	ch = decodeColourHeader(data[extStart:extEnd])
	if err := ch.check(ih.Size); err != nil {
		return fh, ih, ch, nil, err
	}

	width, height := int(ih.Width), int(ih.Height)
	wideStride := (uint64(width)*BytesPerPixel + 3) &^ 3
	need := wideStride * uint64(height)
	if need > math.MaxUint32-HeaderSize {
		return fh, ih, ch, nil, fmt.Errorf(
			"%w: dimensions too large %dx%d", ErrFormat, width, height)
	}
	offset := int(fh.DataOffset)
	if offset < FileHeaderSize+InfoHeaderSize || offset > len(data) ||
		uint64(len(data)-offset) < need {
		return fh, ih, ch, nil, fmt.Errorf(
			"%w: truncated pixel data, need %d bytes at offset %d, file has %d",
			ErrFormat, need, offset, len(data))
	}

	stride := rowStride(width)
	rowBytes := width * BytesPerPixel
	pix := make([]byte, rowBytes*height)
	for y := 0; y < height; y++ {
		src := data[offset+y*stride : offset+y*stride+rowBytes]
		copy(pix[y*rowBytes:], src)
	}
	return fh, ih, ch, pix, nil
}

// marshal serializes headers and rows, padding each row to four bytes.
func marshal(fh FileHeader, ih InfoHeader, ch ColourHeader, pix []byte) []byte {
	width, height := int(ih.Width), int(ih.Height)
	stride := rowStride(width)
	rowBytes := width * BytesPerPixel

	out := make([]byte, int(fh.DataOffset)+stride*height)
	fh.put(out[0:FileHeaderSize])
	ih.put(out[FileHeaderSize : FileHeaderSize+InfoHeaderSize])
	ch.put(out[FileHeaderSize+InfoHeaderSize : HeaderSize])
	for y := 0; y < height; y++ {
		dst := out[int(fh.DataOffset)+y*stride:]
		copy(dst[:rowBytes], pix[y*rowBytes:(y+1)*rowBytes])
	}
	return out
}
