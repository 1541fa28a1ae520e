package analyze

import (
	"math"
	"sort"
)

const thetaSteps = 180 // 1 degree resolution

type polarLine struct {
	theta int // normal angle, degrees
	rho   int // distance from origin, pixels
	votes int
}

var (
	sinTab, cosTab [thetaSteps]float64
)

func init() {
	for t := 0; t < thetaSteps; t++ {
		rad := float64(t) * math.Pi / thetaSteps
		sinTab[t] = math.Sin(rad)
		cosTab[t] = math.Cos(rad)
	}
}

// houghLines finds up to maxLines near-straight lines in the edge mask
// with a standard Hough transform. Cells below minVotes are ignored.
func houghLines(edges []bool, w, h, maxLines, minVotes int) []polarLine {
	if maxLines <= 0 {
		return nil
	}
	diag := int(math.Hypot(float64(w), float64(h))) + 1
	nRho := 2*diag + 1
	acc := make([]int, thetaSteps*nRho)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !edges[y*w+x] {
				continue
			}
			for t := 0; t < thetaSteps; t++ {
				rho := int(math.Round(float64(x)*cosTab[t] + float64(y)*sinTab[t]))
				acc[t*nRho+rho+diag]++
			}
		}
	}

	var peaks []polarLine
	for t := 0; t < thetaSteps; t++ {
		for r := 0; r < nRho; r++ {
			if v := acc[t*nRho+r]; v >= minVotes {
				peaks = append(peaks, polarLine{theta: t, rho: r - diag, votes: v})
			}
		}
	}
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].votes > peaks[j].votes })
	if len(peaks) > maxLines {
		peaks = peaks[:maxLines]
	}
	return peaks
}

// angle returns the line direction in degrees. The accumulator stores
// the normal angle, the line itself is perpendicular to it.
func (l polarLine) angle() float64 { return float64(l.theta - 90) }

// deviationFromHorizontal measures the angular distance from the nearest
// horizontal reference (0, 180 or 360 degrees), a value in [0, 90].
func deviationFromHorizontal(lineDeg float64) float64 {
	a := math.Mod(math.Abs(lineDeg), 180)
	return math.Min(a, 180-a)
}
