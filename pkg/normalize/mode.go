package normalize

import (
	"fmt"
	"image"
)

// Mode is the colour layout of a decoded image. The set is closed: every
// decoded image maps to exactly one of these.
type Mode int

const (
	ModeGray Mode = iota
	ModeGrayAlpha
	ModePaletted
	ModeRGB
	ModeRGBA
)

func (m Mode) String() string {
	switch m {
	case ModeGray:
		return "L"
	case ModeGrayAlpha:
		return "LA"
	case ModePaletted:
		return "P"
	case ModeRGB:
		return "RGB"
	case ModeRGBA:
		return "RGBA"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// HasAlpha reports whether images of this mode carry a transparency channel
// that must be flattened before encoding. Palettes can hold transparent
// entries, so they count.
func (m Mode) HasAlpha() bool {
	switch m {
	case ModeGrayAlpha, ModeRGBA, ModePaletted:
		return true
	}
	return false
}

// ModeOf classifies a decoded image by its concrete type. Go's decoders
// return gray+alpha sources as NRGBA, so ModeGrayAlpha is only produced when
// the caller knows the source layout (see converter.Decode).
func ModeOf(img image.Image) Mode {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return ModeGray
	case *image.Paletted:
		return ModePaletted
	case *image.RGBA, *image.RGBA64, *image.NRGBA, *image.NRGBA64, *image.NYCbCrA, *image.Alpha, *image.Alpha16:
		return ModeRGBA
	case *RGB, *image.YCbCr, *image.CMYK:
		return ModeRGB
	}
	// Unknown implementations: trust Opaque when available.
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return ModeRGB
	}
	return ModeRGBA
}
