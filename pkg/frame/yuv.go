package frame

import "time"

// ToRGB converts an I420 frame into packed RGB with BT.601 coefficients.
func (f *YCbCr) ToRGB(at time.Time) *Video {
	w, h := f.W, f.H
	out := &Video{Pix: make([]byte, w*h*3), W: w, H: h, At: at}
	for y := 0; y < h; y++ {
		yRow := y * f.YStride
		cRow := (y / 2) * f.CStride
		oRow := y * w * 3
		for x := 0; x < w; x++ {
			c := int(f.Y[yRow+x]) - 16
			d := int(f.Cb[cRow+x/2]) - 128
			e := int(f.Cr[cRow+x/2]) - 128

			o := oRow + x*3
			out.Pix[o] = clamp((298*c + 409*e + 128) >> 8)
			out.Pix[o+1] = clamp((298*c - 100*d - 208*e + 128) >> 8)
			out.Pix[o+2] = clamp((298*c + 516*d + 128) >> 8)
		}
	}
	return out
}

func clamp(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
