package vpx

// https://chromium.googlesource.com/webm/libvpx/+/master/examples/simple_decoder.c

/*
#cgo pkg-config: vpx
#include <stdlib.h>
#include "vpx/vpx_decoder.h"
#include "vpx/vp8dx.h"

vpx_codec_err_t call_vpx_codec_dec_init(vpx_codec_ctx_t *codec) {
	return vpx_codec_dec_init(codec, vpx_codec_vp8_dx(), NULL, 0);
}
*/
import "C"
import (
	"fmt"
	"unsafe"

	"github.com/lenscoach/lenscoach/pkg/frame"
)

// Vpx is a VP8 decoder on top of libvpx.
type Vpx struct {
	codecCtx  C.vpx_codec_ctx_t
	codecIter C.vpx_codec_iter_t
	closed    bool
}

func NewDecoder() (*Vpx, error) {
	vpx := Vpx{}
	if C.call_vpx_codec_dec_init(&vpx.codecCtx) != 0 {
		return nil, fmt.Errorf("failed to initialize decoder")
	}
	return &vpx, nil
}

// Decode pushes one encoded frame into the decoder and pulls
// the next decoded image, if any.
func (vpx *Vpx) Decode(payload []byte) (*frame.YCbCr, error) {
	if vpx.closed || len(payload) == 0 {
		return nil, nil
	}
	if C.vpx_codec_decode(&vpx.codecCtx, (*C.uint8_t)(unsafe.Pointer(&payload[0])), C.uint(len(payload)), nil, 0) != 0 {
		return nil, fmt.Errorf("failed to decode frame")
	}

	vpx.codecIter = nil
	img := C.vpx_codec_get_frame(&vpx.codecCtx, &vpx.codecIter)
	if img == nil {
		return nil, nil
	}

	w, h := int(img.d_w), int(img.d_h)
	yStride, cStride := int(img.stride[0]), int(img.stride[1])
	ch := (h + 1) / 2
	return &frame.YCbCr{
		Y:       C.GoBytes(unsafe.Pointer(img.planes[0]), C.int(yStride*h)),
		Cb:      C.GoBytes(unsafe.Pointer(img.planes[1]), C.int(cStride*ch)),
		Cr:      C.GoBytes(unsafe.Pointer(img.planes[2]), C.int(cStride*ch)),
		YStride: yStride,
		CStride: cStride,
		W:       w,
		H:       h,
	}, nil
}

func (vpx *Vpx) Close() error {
	if vpx.closed {
		return nil
	}
	vpx.closed = true
	if C.vpx_codec_destroy(&vpx.codecCtx) != 0 {
		return fmt.Errorf("failed to destroy codec")
	}
	return nil
}
