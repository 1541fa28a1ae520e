package analyze

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/lenscoach/lenscoach/pkg/frame"
)

// grayscale converts packed RGB pixels into a gray image
// with Rec.601 luma weights.
func grayscale(f *frame.Video) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.W, f.H))
	for y := 0; y < f.H; y++ {
		row := y * f.Stride()
		out := y * img.Stride
		for x := 0; x < f.W; x++ {
			o := row + x*3
			r, g, b := uint32(f.Pix[o]), uint32(f.Pix[o+1]), uint32(f.Pix[o+2])
			img.Pix[out+x] = uint8((19595*r + 38470*g + 7471*b + 1<<15) >> 16)
		}
	}
	return img
}

// downscale keeps the analysis cost bounded for high resolution tracks.
func downscale(img *image.Gray, maxWidth int) *image.Gray {
	w := img.Rect.Dx()
	if maxWidth <= 0 || w <= maxWidth {
		return img
	}
	h := img.Rect.Dy() * maxWidth / w
	dst := image.NewGray(image.Rect(0, 0, maxWidth, h))
	draw.ApproxBiLinear.Scale(dst, dst.Rect, img, img.Rect, draw.Src, nil)
	return dst
}

// meanIntensity returns the average pixel value normalized to [0,1].
func meanIntensity(img *image.Gray) float64 {
	if len(img.Pix) == 0 {
		return 0
	}
	var sum uint64
	for _, v := range img.Pix {
		sum += uint64(v)
	}
	return float64(sum) / float64(len(img.Pix)) / 255
}
