package converter

import (
	"image"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	// ErrInvalidImageDimensions is returned when image dimensions are invalid
	ErrInvalidImageDimensions = errors.New("invalid image dimensions")
	// ErrImageTooLarge is returned when image dimensions exceed limits
	ErrImageTooLarge = errors.New("image dimensions exceed maximum allowed")
)

// Validation limits
const (
	MaxImageWidth  = 20000       // 20K pixels max width
	MaxImageHeight = 20000       // 20K pixels max height
	MaxImagePixels = 250_000_000 // 250 megapixels max total pixels
)

// ValidateImage checks decoded image dimensions are within acceptable limits
func ValidateImage(img image.Image) error {
	if img == nil {
		return ErrInvalidImageDimensions
	}
	bounds := img.Bounds()
	return ValidateDimensions(bounds.Dx(), bounds.Dy())
}

// ValidateDimensions checks width and height against the limits. Decode calls
// it with header dimensions before any pixel is allocated.
func ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		log.Debug().Int("width", width).Int("height", height).Msg("Invalid dimensions")
		return ErrInvalidImageDimensions
	}

	if width > MaxImageWidth || height > MaxImageHeight {
		log.Debug().Int("width", width).Int("height", height).Msg("Dimensions too large")
		return ErrImageTooLarge
	}

	totalPixels := int64(width) * int64(height)
	if totalPixels > MaxImagePixels {
		log.Debug().Int64("pixels", totalPixels).Msg("Too many pixels")
		return ErrImageTooLarge
	}

	return nil
}

// IsHEIFMagic checks if the data has HEIF magic bytes
func IsHEIFMagic(data []byte) bool {
	if len(data) < 12 {
		return false
	}

	// ISO Base Media File Format: [4 bytes size] + "ftyp" + [brand]
	if string(data[4:8]) != "ftyp" {
		return false
	}

	switch string(data[8:12]) {
	case "heic", "heix", "heim", "heis", "hevc", "hevx", "mif1", "msf1":
		return true
	}
	return false
}

// IsWebPMagic checks for a RIFF container holding WebP data.
func IsWebPMagic(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}
