// Package normalize converts decoded images of any colour mode into opaque
// three-channel RGB, the only layout the JPEG encoder accepts unchanged.
// Transparency is flattened onto a white background.
package normalize

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Background is the colour transparent pixels are composited onto.
var Background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Image normalizes img using the mode reported by ModeOf.
func Image(img image.Image) *RGB {
	return Normalize(img, ModeOf(img))
}

// Normalize converts img, whose source layout is mode, to RGB.
func Normalize(img image.Image, mode Mode) *RGB {
	switch mode {
	case ModePaletted:
		return flatten(expandPalette(img))
	case ModeGrayAlpha, ModeRGBA:
		return flatten(img)
	case ModeRGB:
		return passThrough(img)
	case ModeGray:
		return replicateGray(img)
	}
	panic(fmt.Sprintf("normalize: unknown mode %v", mode))
}

// expandPalette resolves palette indices into straight-alpha pixels.
func expandPalette(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(b)

	p, ok := img.(*image.Paletted)
	if !ok {
		draw.Draw(dst, b, img, b.Min, draw.Src)
		return dst
	}

	lut := make([]color.NRGBA, len(p.Palette))
	for i, c := range p.Palette {
		lut[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			idx := int(p.ColorIndexAt(x, y))
			if idx < len(lut) {
				dst.SetNRGBA(x, y, lut[idx])
			} else {
				dst.SetNRGBA(x, y, color.NRGBA{A: 0xff})
			}
		}
	}
	return dst
}

// flatten composites img over Background using each pixel's alpha as the
// blend weight.
func flatten(img image.Image) *RGB {
	b := img.Bounds()
	dst := NewRGB(b)

	if src, ok := img.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			si := src.PixOffset(b.Min.X, y)
			di := dst.PixOffset(b.Min.X, y)
			for x := b.Min.X; x < b.Max.X; x++ {
				a := src.Pix[si+3]
				dst.Pix[di+0] = over(src.Pix[si+0], a, Background.R)
				dst.Pix[di+1] = over(src.Pix[si+1], a, Background.G)
				dst.Pix[di+2] = over(src.Pix[si+2], a, Background.B)
				si += 4
				di += 3
			}
		}
		return dst
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.SetRGB(x, y,
				over(c.R, c.A, Background.R),
				over(c.G, c.A, Background.G),
				over(c.B, c.A, Background.B),
			)
		}
	}
	return dst
}

// over blends a straight-alpha sample c with weight a onto bg, rounded to
// nearest. a=0 yields bg and a=255 yields c exactly.
func over(c, a, bg uint8) uint8 {
	v := uint32(c)*uint32(a) + uint32(bg)*(0xff-uint32(a))
	return uint8((v + 0x7f) / 0xff)
}

func passThrough(img image.Image) *RGB {
	if rgb, ok := img.(*RGB); ok {
		return rgb
	}

	b := img.Bounds()
	dst := NewRGB(b)

	if src, ok := img.(*image.RGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			si := src.PixOffset(b.Min.X, y)
			di := dst.PixOffset(b.Min.X, y)
			for x := b.Min.X; x < b.Max.X; x++ {
				copy(dst.Pix[di:di+3], src.Pix[si:si+3])
				si += 4
				di += 3
			}
		}
		return dst
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			dst.SetRGB(x, y, c.R, c.G, c.B)
		}
	}
	return dst
}

func replicateGray(img image.Image) *RGB {
	b := img.Bounds()
	dst := NewRGB(b)

	if src, ok := img.(*image.Gray); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			si := src.PixOffset(b.Min.X, y)
			di := dst.PixOffset(b.Min.X, y)
			for x := b.Min.X; x < b.Max.X; x++ {
				v := src.Pix[si]
				dst.Pix[di+0], dst.Pix[di+1], dst.Pix[di+2] = v, v, v
				si++
				di += 3
			}
		}
		return dst
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
			dst.SetRGB(x, y, v, v, v)
		}
	}
	return dst
}
