package image_service

import (
	"image"
	"image/color"
	"math"
	"math/rand"
)

type GradientStyle int

const (
	GradientVertical GradientStyle = iota
	GradientHorizontal
	GradientRadial
)

var gradientStyles = []GradientStyle{GradientVertical, GradientHorizontal, GradientRadial}

func (g GradientStyle) String() string {
	switch g {
	case GradientHorizontal:
		return "horizontal"
	case GradientRadial:
		return "radial"
	default:
		return "vertical"
	}
}

func randomGradientStyle(rng *rand.Rand) GradientStyle {
	return gradientStyles[rng.Intn(len(gradientStyles))]
}

// Gradient fills a w×h canvas blending from c1 to c2. Vertical and
// horizontal styles interpolate by position over the full edge; radial
// interpolates by distance from the centre normalised by the half diagonal.
func Gradient(w, h int, c1, c2 color.RGBA, style GradientStyle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	cx, cy := w/2, h/2
	maxDist := math.Sqrt(float64(cx*cx + cy*cy))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var ratio float64
			switch style {
			case GradientHorizontal:
				ratio = float64(x) / float64(w)
			case GradientRadial:
				if maxDist > 0 {
					dx, dy := float64(x-cx), float64(y-cy)
					ratio = math.Min(math.Sqrt(dx*dx+dy*dy)/maxDist, 1.0)
				}
			default:
				ratio = float64(y) / float64(h)
			}
			i := img.PixOffset(x, y)
			img.Pix[i] = lerp(c1.R, c2.R, ratio)
			img.Pix[i+1] = lerp(c1.G, c2.G, ratio)
			img.Pix[i+2] = lerp(c1.B, c2.B, ratio)
			img.Pix[i+3] = 255
		}
	}
	return img
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}
