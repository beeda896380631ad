package image_service

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/fogleman/gg"
)

var (
	trunkColor  = rgb(80, 50, 20)
	windowColor = rgb(200, 200, 255)
	snowColor   = rgb(240, 240, 255)
	cloudColor  = rgb(240, 240, 255)
	black       = rgb(0, 0, 0)
)

// randInt returns an integer in [lo, hi], both ends included.
func randInt(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

func randFloat(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func pick(rng *rand.Rand, colors []color.RGBA) color.RGBA {
	return colors[rng.Intn(len(colors))]
}

func fillRect(dc *gg.Context, x0, y0, x1, y1 float64, c color.Color) {
	dc.SetColor(c)
	dc.DrawRectangle(x0, y0, x1-x0, y1-y0)
	dc.Fill()
}

func fillCircle(dc *gg.Context, x, y, r float64, c color.Color) {
	dc.SetColor(c)
	dc.DrawCircle(x, y, r)
	dc.Fill()
}

func fillPolygon(dc *gg.Context, c color.Color, pts ...gg.Point) {
	if len(pts) < 3 {
		return
	}
	dc.SetColor(c)
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.ClosePath()
	dc.Fill()
}

func drawTree(dc *gg.Context, x, y, size float64, c color.Color) {
	trunkW := size * 0.2
	trunkH := size * 0.6
	fillRect(dc, x-trunkW/2, y-trunkH, x+trunkW/2, y, trunkColor)
	fillCircle(dc, x, y-trunkH, size*0.4, c)
}

// drawBuilding draws a block with a 3×3 window grid, skipping windows that
// would spill outside the facade.
func drawBuilding(dc *gg.Context, x, y, size float64, c color.Color) {
	h := size * 1.5
	left, right := x-size/2, x+size/2
	fillRect(dc, left, y-h, right, y, c)

	win := size * 0.15
	spacing := size * 0.25
	for floor := 0; floor < 3; floor++ {
		for col := 0; col < 3; col++ {
			wx := left + spacing/2 + float64(col)*spacing
			wy := y - h + spacing/2 + float64(floor)*spacing
			if wx+win <= right && wy+win <= y {
				fillRect(dc, wx, wy, wx+win, wy+win, windowColor)
			}
		}
	}
}

func drawMountain(dc *gg.Context, x, y, size float64, c color.Color) {
	base := size * 1.2
	fillPolygon(dc, c,
		gg.Point{X: x - base/2, Y: y},
		gg.Point{X: x, Y: y - size},
		gg.Point{X: x + base/2, Y: y})

	snow := size * 0.3
	fillPolygon(dc, snowColor,
		gg.Point{X: x - base*0.2, Y: y - size + snow},
		gg.Point{X: x, Y: y - size},
		gg.Point{X: x + base*0.2, Y: y - size + snow})
}

// drawCloud overlaps 3 to 5 puffs around (x, y).
func drawCloud(dc *gg.Context, rng *rand.Rand, x, y, size int) {
	parts := randInt(rng, 3, 5)
	for i := 0; i < parts; i++ {
		px := x + (i-parts/2)*(size/3)
		py := y - randInt(rng, 0, size/4)
		puff := randInt(rng, int(float64(size)*0.3), int(float64(size)*0.5))
		fillCircle(dc, float64(px), float64(py), float64(puff)/2, cloudColor)
	}
}

func drawLightRays(dc *gg.Context, rng *rand.Rand, x, y, length float64, c color.Color) {
	rays := randInt(rng, 5, 8)
	dc.SetColor(c)
	dc.SetLineWidth(3)
	for i := 0; i < rays; i++ {
		angle := 2 * math.Pi * float64(i) / float64(rays)
		dc.DrawLine(x, y, x+length*math.Cos(angle), y+length*math.Sin(angle))
		dc.Stroke()
	}
}

// drawPortal is a ring in c with an inner disc at half brightness.
func drawPortal(dc *gg.Context, x, y, size float64, c color.RGBA) {
	fillCircle(dc, x, y, size/2, c)
	fillCircle(dc, x, y, size*0.35, darken(c))
}

// drawShape draws a circle, square or triangle centred on (x, y).
func drawShape(dc *gg.Context, rng *rand.Rand, x, y, size float64, c color.Color) {
	half := size / 2
	switch rng.Intn(3) {
	case 0:
		fillCircle(dc, x, y, half, c)
	case 1:
		fillRect(dc, x-half, y-half, x+half, y+half, c)
	default:
		fillPolygon(dc, c,
			gg.Point{X: x, Y: y - half},
			gg.Point{X: x - half, Y: y + half},
			gg.Point{X: x + half, Y: y + half})
	}
}
