//go:build !cgo || purego

package jpeg

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/pkg/errors"
)

// Backend names the encoder compiled into this binary.
const Backend = "stdlib"

// OptimizedHuffman reports whether the backend computes per-image Huffman
// tables. The standard library always uses the default tables.
const OptimizedHuffman = false

func encode(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(512 * 1024)
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, errors.Wrap(err, "jpeg encode failed")
	}
	return buf.Bytes(), nil
}
