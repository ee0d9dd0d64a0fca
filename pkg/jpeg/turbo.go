//go:build cgo && !purego

package jpeg

/*
#cgo pkg-config: libjpeg
#include <stdio.h>
#include <jpeglib.h>
#include <jerror.h>
#include <stdlib.h>
#include <string.h>
#include <setjmp.h>

typedef struct {
    struct jpeg_error_mgr pub;
    jmp_buf setjmp_buffer;
    char msg[JMSG_LENGTH_MAX];
} shrink_error_mgr;

static void shrink_error_exit(j_common_ptr cinfo) {
    shrink_error_mgr *err = (shrink_error_mgr *)cinfo->err;
    (*cinfo->err->format_message)(cinfo, err->msg);
    longjmp(err->setjmp_buffer, 1);
}

// Encode packed 8-bit RGB rows with per-image Huffman tables.
static int encode_rgb(
    const unsigned char *pix, int stride,
    int width, int height, int quality,
    unsigned char **out_buffer, unsigned long *out_size,
    char **error_msg) {

    struct jpeg_compress_struct cinfo;
    shrink_error_mgr *jerr = NULL;
    JSAMPROW row[1];
    int result = 0;

    *out_buffer = NULL;
    *out_size = 0;
    *error_msg = NULL;

    jerr = (shrink_error_mgr *)malloc(sizeof(shrink_error_mgr));
    cinfo.err = jpeg_std_error(&jerr->pub);
    jerr->pub.error_exit = shrink_error_exit;
    if (setjmp(jerr->setjmp_buffer)) {
        *error_msg = strdup(jerr->msg);
        result = -1;
        goto cleanup;
    }

    jpeg_create_compress(&cinfo);
    jpeg_mem_dest(&cinfo, out_buffer, out_size);

    cinfo.image_width = width;
    cinfo.image_height = height;
    cinfo.input_components = 3;
    cinfo.in_color_space = JCS_RGB;

    jpeg_set_defaults(&cinfo);
    jpeg_set_quality(&cinfo, quality, TRUE);
    cinfo.optimize_coding = TRUE;

    jpeg_start_compress(&cinfo, TRUE);
    while (cinfo.next_scanline < cinfo.image_height) {
        row[0] = (JSAMPROW)(pix + cinfo.next_scanline * stride);
        jpeg_write_scanlines(&cinfo, row, 1);
    }
    jpeg_finish_compress(&cinfo);

cleanup:
    jpeg_destroy_compress(&cinfo);
    free(jerr);
    return result;
}
*/
import "C"
import (
	"image"
	"image/color"
	"unsafe"

	"github.com/harliandi/imgshrink/pkg/normalize"
	"github.com/pkg/errors"
)

// Backend names the encoder compiled into this binary.
const Backend = "libjpeg"

// OptimizedHuffman reports whether the backend computes per-image Huffman
// tables.
const OptimizedHuffman = true

func encode(img image.Image, quality int) ([]byte, error) {
	rgb := packRGB(img)

	var (
		outBuffer *C.uchar
		outSize   C.ulong
		errorMsg  *C.char
	)

	result := C.encode_rgb(
		(*C.uchar)(&rgb.Pix[0]),
		C.int(rgb.Stride),
		C.int(rgb.Rect.Dx()),
		C.int(rgb.Rect.Dy()),
		C.int(quality),
		&outBuffer,
		&outSize,
		&errorMsg,
	)

	if result != 0 || outBuffer == nil {
		err := errors.New("jpeg encode failed")
		if errorMsg != nil {
			err = errors.Errorf("jpeg encode failed: %s", C.GoString(errorMsg))
			C.free(unsafe.Pointer(errorMsg))
		}
		if outBuffer != nil {
			C.free(unsafe.Pointer(outBuffer))
		}
		return nil, err
	}

	data := C.GoBytes(unsafe.Pointer(outBuffer), C.int(outSize))
	C.free(unsafe.Pointer(outBuffer))

	return data, nil
}

// packRGB returns img as tightly addressed RGB rows, copying only when img
// is not already a normalize.RGB.
func packRGB(img image.Image) *normalize.RGB {
	if rgb, ok := img.(*normalize.RGB); ok {
		return rgb
	}
	b := img.Bounds()
	rgb := normalize.NewRGB(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			rgb.SetRGB(x, y, c.R, c.G, c.B)
		}
	}
	return rgb
}
