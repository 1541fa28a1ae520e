package frame

import "time"

// Video is one decoded video frame with 8-bit RGB pixels
// packed row by row, three bytes per pixel.
type Video struct {
	Pix  []byte
	W, H int
	At   time.Time
}

func (v *Video) Stride() int { return v.W * 3 }

// YCbCr is one decoded frame in planar 4:2:0 form,
// the way it comes out of the video decoder.
type YCbCr struct {
	Y, Cb, Cr        []byte
	YStride, CStride int
	W, H             int
}
