package converter

import (
	"bytes"
	"image"
	"strings"

	// Register stdlib and x/image decoders with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/adrium/goheif"
	webp "github.com/chai2010/webp"
	"github.com/evanoberholster/imagemeta"
	"github.com/harliandi/imgshrink/pkg/normalize"
	"github.com/pkg/errors"
)

// ErrUnsupportedFormat is returned when no decoder recognises the input.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// pngColorTypeGrayAlpha is the IHDR colour type for 8/16-bit gray+alpha.
const pngColorTypeGrayAlpha = 4

// RawImage is a decoded image and its source colour layout.
type RawImage struct {
	Image  image.Image
	Mode   normalize.Mode
	Format string
}

// Width returns the pixel width.
func (r *RawImage) Width() int { return r.Image.Bounds().Dx() }

// Height returns the pixel height.
func (r *RawImage) Height() int { return r.Image.Bounds().Dy() }

// Decode decodes JPEG, PNG, GIF, BMP, TIFF, WebP and HEIF/HEIC bytes. A
// panic inside a decoder is reported as an error.
func Decode(data []byte) (raw *RawImage, err error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrUnsupportedFormat, "empty input")
	}

	defer func() {
		if r := recover(); r != nil {
			raw = nil
			err = errors.Errorf("decoder panic: %v", r)
		}
	}()

	format := sniff(data)

	cfg, format, err := decodeConfig(format, data)
	if err != nil {
		return nil, decodeError(err, format)
	}
	if err := ValidateDimensions(cfg.Width, cfg.Height); err != nil {
		return nil, errors.Wrapf(err, "%dx%d %s", cfg.Width, cfg.Height, formatOrUnknown(format))
	}

	var img image.Image
	switch format {
	case "heic":
		img, err = goheif.Decode(bytes.NewReader(data))
	case "webp":
		img, err = webp.Decode(bytes.NewReader(data))
	default:
		img, format, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, decodeError(err, format)
	}
	if err := ValidateImage(img); err != nil {
		b := img.Bounds()
		return nil, errors.Wrapf(err, "%dx%d %s", b.Dx(), b.Dy(), format)
	}

	mode := normalize.ModeOf(img)
	if format == "png" && pngColorType(data) == pngColorTypeGrayAlpha {
		mode = normalize.ModeGrayAlpha
	}

	return &RawImage{Image: img, Mode: mode, Format: format}, nil
}

// sniff names the formats routed to a dedicated decoder. Everything else is
// left to the image package registry.
func sniff(data []byte) string {
	switch {
	case IsHEIFMagic(data):
		return "heic"
	case IsWebPMagic(data):
		return "webp"
	}
	return ""
}

// decodeConfig reads only the header dimensions and reports the format name.
func decodeConfig(format string, data []byte) (image.Config, string, error) {
	var (
		cfg image.Config
		err error
	)
	switch format {
	case "heic":
		cfg, err = goheif.DecodeConfig(bytes.NewReader(data))
	case "webp":
		cfg, err = webp.DecodeConfig(bytes.NewReader(data))
	default:
		cfg, format, err = image.DecodeConfig(bytes.NewReader(data))
	}
	return cfg, format, err
}

func decodeError(err error, format string) error {
	if errors.Is(err, image.ErrFormat) {
		return ErrUnsupportedFormat
	}
	return errors.Wrapf(err, "decode %s", formatOrUnknown(format))
}

// pngColorType reads the colour type byte from the IHDR chunk, or -1.
func pngColorType(data []byte) int {
	// 8-byte signature, 4-byte length, "IHDR", width, height, bit depth.
	if len(data) < 26 || string(data[12:16]) != "IHDR" {
		return -1
	}
	return int(data[25])
}

func formatOrUnknown(format string) string {
	if format == "" {
		return "image"
	}
	return format
}

// CameraInfo returns the EXIF camera make and model, if present. Errors are
// ignored since metadata is informational only.
func CameraInfo(data []byte) (cameraMake, cameraModel string) {
	defer func() {
		if r := recover(); r != nil {
			cameraMake, cameraModel = "", ""
		}
	}()

	exifData, err := imagemeta.Decode(bytes.NewReader(data))
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(exifData.Make), strings.TrimSpace(exifData.Model)
}
