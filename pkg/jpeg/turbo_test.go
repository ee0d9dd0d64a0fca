//go:build cgo && !purego

package jpeg

import (
	"bytes"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCgoBuildUsesLibjpeg(t *testing.T) {
	assert.True(t, OptimizedHuffman)
	assert.Equal(t, "libjpeg", Backend)
}

func TestEncode_ComparedWithStdlib(t *testing.T) {
	img := gradientRGB(640, 480)

	turboData, err := Encode(img, 85)
	require.NoError(t, err)

	var stdBuf bytes.Buffer
	require.NoError(t, jpeg.Encode(&stdBuf, img, &jpeg.Options{Quality: 85}))

	turboConfig, err := jpeg.DecodeConfig(bytes.NewReader(turboData))
	require.NoError(t, err)
	stdConfig, err := jpeg.DecodeConfig(bytes.NewReader(stdBuf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, stdConfig.Width, turboConfig.Width)
	assert.Equal(t, stdConfig.Height, turboConfig.Height)

	t.Logf("libjpeg size: %d bytes, stdlib size: %d bytes", len(turboData), stdBuf.Len())
}
