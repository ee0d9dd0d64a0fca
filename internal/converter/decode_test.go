package converter

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"testing"

	webp "github.com/chai2010/webp"
	"github.com/harliandi/imgshrink/pkg/normalize"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func encodeWith(t *testing.T, img image.Image, enc func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, enc(&buf, img))
	return buf.Bytes()
}

func TestDecode_Formats(t *testing.T) {
	rgb := gradientImage(20, 10)
	gray := image.NewGray(image.Rect(0, 0, 20, 10))
	pal := image.NewPaletted(image.Rect(0, 0, 20, 10), color.Palette{color.White, color.Transparent})

	tests := []struct {
		name       string
		data       []byte
		wantFormat string
		wantMode   normalize.Mode
	}{
		{
			name: "JPEG",
			data: encodeWith(t, rgb, func(b *bytes.Buffer, m image.Image) error {
				return jpeg.Encode(b, m, &jpeg.Options{Quality: 90})
			}),
			wantFormat: "jpeg",
			wantMode:   normalize.ModeRGB,
		},
		{
			name:       "Gray PNG",
			data:       encodeWith(t, gray, func(b *bytes.Buffer, m image.Image) error { return png.Encode(b, m) }),
			wantFormat: "png",
			wantMode:   normalize.ModeGray,
		},
		{
			name:       "Paletted PNG",
			data:       encodeWith(t, pal, func(b *bytes.Buffer, m image.Image) error { return png.Encode(b, m) }),
			wantFormat: "png",
			wantMode:   normalize.ModePaletted,
		},
		{
			name:       "GIF",
			data:       encodeWith(t, pal, func(b *bytes.Buffer, m image.Image) error { return gif.Encode(b, m, nil) }),
			wantFormat: "gif",
			wantMode:   normalize.ModePaletted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Decode(tt.data)
			require.NoError(t, err)

			assert.Equal(t, tt.wantFormat, raw.Format)
			assert.Equal(t, tt.wantMode, raw.Mode)
			assert.Equal(t, 20, raw.Width())
			assert.Equal(t, 10, raw.Height())
		})
	}
}

func TestDecode_XImageFormats(t *testing.T) {
	img := gradientImage(8, 6)
	tests := []struct {
		name string
		enc  func(*bytes.Buffer, image.Image) error
	}{
		{"bmp", func(b *bytes.Buffer, m image.Image) error { return bmp.Encode(b, m) }},
		{"tiff", func(b *bytes.Buffer, m image.Image) error { return tiff.Encode(b, m, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Decode(encodeWith(t, img, tt.enc))
			require.NoError(t, err)
			assert.Equal(t, tt.name, raw.Format)
			assert.Equal(t, 8, raw.Width())
			assert.Equal(t, 6, raw.Height())
		})
	}
}

// pngChunk frames data as a PNG chunk with its CRC.
func pngChunk(typ string, data []byte) []byte {
	out := make([]byte, 4, 12+len(data))
	binary.BigEndian.PutUint32(out, uint32(len(data)))
	out = append(out, typ...)
	out = append(out, data...)
	crc := crc32.ChecksumIEEE(append([]byte(typ), data...))
	return binary.BigEndian.AppendUint32(out, crc)
}

func pngIHDR(width, height int, colorType byte) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:], uint32(height))
	ihdr[8] = 8 // bit depth
	ihdr[9] = colorType
	return pngChunk("IHDR", ihdr)
}

// grayAlphaPNG builds an 8-bit gray+alpha PNG, which image/png never writes.
// Pixels left of the midline are opaque black, the rest fully transparent.
func grayAlphaPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	var raw bytes.Buffer
	for y := 0; y < height; y++ {
		raw.WriteByte(0) // filter: none
		for x := 0; x < width; x++ {
			if x < width/2 {
				raw.Write([]byte{0, 255})
			} else {
				raw.Write([]byte{0, 0})
			}
		}
	}
	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	_, err := zw.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	data := []byte("\x89PNG\r\n\x1a\n")
	data = append(data, pngIHDR(width, height, pngColorTypeGrayAlpha)...)
	data = append(data, pngChunk("IDAT", idat.Bytes())...)
	return append(data, pngChunk("IEND", nil)...)
}

func TestDecode_GrayAlphaPNG(t *testing.T) {
	raw, err := Decode(grayAlphaPNG(t, 10, 4))
	require.NoError(t, err)

	assert.Equal(t, "png", raw.Format)
	assert.Equal(t, normalize.ModeGrayAlpha, raw.Mode)
	assert.Equal(t, 10, raw.Width())
	assert.Equal(t, 4, raw.Height())

	out := normalize.Normalize(raw.Image, raw.Mode)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, out.RGBAt(0, 0))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, out.RGBAt(9, 3))
}

func TestDecode_WebP(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, webp.Encode(&buf, gradientImage(20, 10), &webp.Options{Lossless: true}))
	require.True(t, IsWebPMagic(buf.Bytes()))

	raw, err := Decode(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, "webp", raw.Format)
	assert.Equal(t, normalize.ModeRGBA, raw.Mode)
	assert.Equal(t, 20, raw.Width())
	assert.Equal(t, 10, raw.Height())
}

func TestDecode_HEIF(t *testing.T) {
	data, err := os.ReadFile("testdata/camel.heic")
	require.NoError(t, err)
	require.True(t, IsHEIFMagic(data))

	cfg, format, err := decodeConfig(sniff(data), data)
	require.NoError(t, err)
	assert.Equal(t, "heic", format)
	assert.Equal(t, 1596, cfg.Width)
	assert.Equal(t, 1064, cfg.Height)

	raw, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, "heic", raw.Format)
	assert.Equal(t, normalize.ModeRGB, raw.Mode)
	assert.Equal(t, 1596, raw.Width())
	assert.Equal(t, 1064, raw.Height())
}

func TestDecode_OversizedHeaderRejectedBeforeDecode(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantErr       error
	}{
		{"Too wide", MaxImageWidth + 1, 1, ErrImageTooLarge},
		{"Too many pixels", 20000, 13000, ErrImageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Header only: a full decode would fail on the missing IDAT.
			data := []byte("\x89PNG\r\n\x1a\n")
			data = append(data, pngIHDR(tt.width, tt.height, 2)...)

			raw, err := Decode(data)
			assert.Nil(t, raw)
			assert.True(t, errors.Is(err, tt.wantErr), "err = %v", err)
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	validPNG := encodeWith(t, gradientImage(8, 8), func(b *bytes.Buffer, m image.Image) error { return png.Encode(b, m) })

	tests := []struct {
		name        string
		data        []byte
		unsupported bool
	}{
		{"Empty input", nil, true},
		{"Invalid data", []byte("not an image file at all"), true},
		{"Truncated PNG", validPNG[:len(validPNG)/2], false},
		{"Fake HEIF", append([]byte{0, 0, 0, 24}, []byte("ftypheic\x00\x00\x00\x00mif1heic")...), false},
		{"Fake WebP", []byte("RIFF\x10\x00\x00\x00WEBPVP8 garbage"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Decode(tt.data)
			require.Error(t, err)
			assert.Nil(t, raw)
			assert.Equal(t, tt.unsupported, errors.Is(err, ErrUnsupportedFormat), "err = %v", err)
		})
	}
}

func TestPNGColorType(t *testing.T) {
	header := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x04")
	assert.Equal(t, pngColorTypeGrayAlpha, pngColorType(header))

	header[25] = 6
	assert.Equal(t, 6, pngColorType(header))

	assert.Equal(t, -1, pngColorType([]byte("short")))
}

func TestMagic(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantHEIF bool
		wantWebP bool
	}{
		{"HEIC brand", []byte("\x00\x00\x00\x18ftypheic"), true, false},
		{"MIF1 brand", []byte("\x00\x00\x00\x18ftypmif1"), true, false},
		{"MP4 brand", []byte("\x00\x00\x00\x18ftypisom"), false, false},
		{"WebP", []byte("RIFF\x00\x00\x00\x00WEBP"), false, true},
		{"WAV", []byte("RIFF\x00\x00\x00\x00WAVE"), false, false},
		{"Too short", []byte("ftyp"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantHEIF, IsHEIFMagic(tt.data))
			assert.Equal(t, tt.wantWebP, IsWebPMagic(tt.data))
		})
	}
}

func TestCameraInfo_NoExif(t *testing.T) {
	cameraMake, cameraModel := CameraInfo([]byte("nothing here"))
	assert.Empty(t, cameraMake)
	assert.Empty(t, cameraModel)
}

// boundsOnly reports bounds without allocating pixels.
type boundsOnly struct{ r image.Rectangle }

func (b boundsOnly) ColorModel() color.Model { return color.RGBAModel }
func (b boundsOnly) Bounds() image.Rectangle { return b.r }
func (b boundsOnly) At(int, int) color.Color { return color.RGBA{} }

func TestValidateDimensions(t *testing.T) {
	assert.NoError(t, ValidateDimensions(4032, 3024))
	assert.Equal(t, ErrInvalidImageDimensions, ValidateDimensions(0, 10))
	assert.Equal(t, ErrInvalidImageDimensions, ValidateDimensions(10, -1))
	assert.Equal(t, ErrImageTooLarge, ValidateDimensions(10, MaxImageHeight+1))
}

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name    string
		img     image.Image
		wantErr error
	}{
		{"Nil", nil, ErrInvalidImageDimensions},
		{"Zero width", boundsOnly{image.Rect(0, 0, 0, 10)}, ErrInvalidImageDimensions},
		{"Single pixel", boundsOnly{image.Rect(0, 0, 1, 1)}, nil},
		{"Normal photo", boundsOnly{image.Rect(0, 0, 3000, 2000)}, nil},
		{"Too wide", boundsOnly{image.Rect(0, 0, MaxImageWidth+1, 10)}, ErrImageTooLarge},
		{"Too many pixels", boundsOnly{image.Rect(0, 0, 20000, 13000)}, ErrImageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImage(tt.img)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantErr, err)
		})
	}
}
