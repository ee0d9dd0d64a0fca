// Package jpeg encodes normalized images to baseline JPEG.
//
// Builds with cgo encode through libjpeg with optimized Huffman tables. The
// standard library encoder is the fallback when cgo is off or the purego tag
// is set; it always uses the default tables, so its files are larger.
package jpeg

import (
	"image"

	"github.com/pkg/errors"
)

const (
	// MinQuality is the minimum quality
	MinQuality = 1
	// MaxQuality is the maximum quality
	MaxQuality = 100
)

// ErrEmptyImage is returned for images with no pixels.
var ErrEmptyImage = errors.New("jpeg: image has no pixels")

// Encoder satisfies quality.Encoder.
type Encoder struct{}

// Encode encodes img at quality q.
func (Encoder) Encode(img image.Image, q int) ([]byte, error) {
	return Encode(img, q)
}

// Encode encodes any image.Image to JPEG. Quality is clamped to
// [MinQuality, MaxQuality].
func Encode(img image.Image, quality int) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	if quality < MinQuality {
		quality = MinQuality
	}
	if quality > MaxQuality {
		quality = MaxQuality
	}
	return encode(img, quality)
}
