package analyze

import "github.com/lenscoach/lenscoach/pkg/config"

const (
	TipWellExposed  = "Exposure looks well balanced, keep this light"
	TipTooDark      = "Too dark, move to brighter light or raise sensitivity"
	TipTooBright    = "Highlights too strong, reduce angle or soften light"
	TipLevelHorizon = "Horizon looks tilted, level the camera"
)

// exposureTip maps normalized luminance onto exactly one of the three
// exposure bands. The bands are exhaustive and mutually exclusive.
func exposureTip(luma float64, conf *config.Coach) string {
	switch {
	case luma < conf.DarkMax:
		return TipTooDark
	case luma > conf.BrightMin:
		return TipTooBright
	default:
		return TipWellExposed
	}
}
