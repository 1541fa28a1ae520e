package analyze

import "image"

// edge magnitude cutoff for the |gx|+|gy| approximation
const sobelThreshold = 100

// sobelEdges runs a 3x3 Sobel operator over the image and returns
// a binary edge mask of the same dimensions. Border pixels are never edges.
func sobelEdges(img *image.Gray) []bool {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	edges := make([]bool, w*h)
	if w < 3 || h < 3 {
		return edges
	}
	at := func(x, y int) int { return int(img.Pix[y*img.Stride+x]) }
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) +
				-2*at(x-1, y) + 2*at(x+1, y) +
				-at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			if gx < 0 {
				gx = -gx
			}
			if gy < 0 {
				gy = -gy
			}
			if gx+gy > sobelThreshold {
				edges[y*w+x] = true
			}
		}
	}
	return edges
}
