package image_service

import (
	"math"
	"math/rand"

	"github.com/fogleman/gg"
)

func drawSetting(dc *gg.Context, rng *rand.Rand, w, h int, layout Layout, p Palette) {
	switch layout.Setting {
	case SettingExterior:
		drawExterior(dc, rng, w, h, layout, p)
	case SettingInterior:
		drawInterior(dc, rng, w, h, layout, p)
	case SettingMagical:
		drawMagical(dc, rng, w, h, p)
	default:
		drawAbstract(dc, rng, w, h, p)
	}
}

func drawExterior(dc *gg.Context, rng *rand.Rand, w, h int, layout Layout, p Palette) {
	horizon := int(float64(h) * randFloat(rng, 0.5, 0.7))
	fillRect(dc, 0, float64(horizon), float64(w), float64(h), p.Foreground[0])

	// Sun or moon, by a fair coin.
	skyX := randInt(rng, w/4, 3*w/4)
	skyY := randInt(rng, h/5, horizon-h/5)
	if rng.Float64() > 0.5 {
		size := randInt(rng, w/10, w/6)
		fillCircle(dc, float64(skyX), float64(skyY), float64(size)/2, p.Accent[0])
		drawLightRays(dc, rng, float64(skyX), float64(skyY), float64(size*2), p.Accent[0])
	} else {
		size := randInt(rng, w/12, w/8)
		fillCircle(dc, float64(skyX), float64(skyY), float64(size)/2, p.Accent[1])
	}

	for i := 0; i < 3; i++ {
		x := float64(randInt(rng, w/6, 5*w/6))
		size := float64(randInt(rng, w/5, w/3))
		c := p.Foreground[i%len(p.Foreground)]
		if layout.Mountains {
			drawMountain(dc, x, float64(horizon), size, c)
		} else {
			drawBuilding(dc, x, float64(horizon), size, c)
		}
	}

	if layout.Trees {
		for i := 0; i < 5; i++ {
			x := randInt(rng, w/8, 7*w/8)
			y := randInt(rng, horizon, h)
			size := randInt(rng, h/6, h/4)
			drawTree(dc, float64(x), float64(y), float64(size), p.Foreground[i%len(p.Foreground)])
		}
	}

	for i := 0; i < 3; i++ {
		x := randInt(rng, w/8, 7*w/8)
		y := randInt(rng, h/8, horizon/2)
		size := randInt(rng, w/10, w/6)
		drawCloud(dc, rng, x, y, size)
	}
}

func drawInterior(dc *gg.Context, rng *rand.Rand, w, h int, layout Layout, p Palette) {
	floor := float64(h) * 0.7
	fillRect(dc, 0, floor, float64(w), float64(h), p.Foreground[0])
	fillRect(dc, 0, 0, float64(w), floor, p.Background[1])

	x := float64(randInt(rng, w/4, 3*w/4))
	y := floor * 0.5
	size := math.Min(float64(w/4), floor/2)

	if layout.Window || rng.Float64() > 0.5 {
		ww, wh := size, size*1.5
		fillRect(dc, x-ww/2, y-wh/2, x+ww/2, y+wh/2, p.Accent[0])

		dc.SetColor(p.Foreground[1])
		dc.SetLineWidth(ww * 0.1)
		dc.DrawLine(x, y-wh/2, x, y+wh/2)
		dc.Stroke()
		dc.DrawLine(x-ww/2, y, x+ww/2, y)
		dc.Stroke()
	} else {
		fillRect(dc, x-size/2, y-size/2, x+size/2, y+size/2, p.Accent[1])

		frame := size * 0.1
		dc.SetColor(p.Foreground[1])
		dc.SetLineWidth(frame)
		dc.DrawRectangle(x-size/2-frame/2, y-size/2-frame/2, size+frame, size+frame)
		dc.Stroke()
	}

	furnitureBottom := floor - float64(h/10)
	fw, fh := float64(w/3), float64(h/6)
	fillRect(dc, float64(w)/2-fw/2, furnitureBottom-fh, float64(w)/2+fw/2, furnitureBottom, p.Foreground[1])
}

func drawMagical(dc *gg.Context, rng *rand.Rand, w, h int, p Palette) {
	cx, cy := float64(w/2), float64(h/2)
	drawLightRays(dc, rng, cx, cy, float64(max(w, h)), p.Accent[0])
	drawPortal(dc, cx, cy, float64(min(w, h)/2), p.Accent[1])

	for i := 0; i < 20; i++ {
		x := randInt(rng, 0, w)
		y := randInt(rng, 0, h)
		size := randInt(rng, 5, 15)
		fillCircle(dc, float64(x), float64(y), float64(size)/2, pick(rng, p.Foreground))
	}
}

func drawAbstract(dc *gg.Context, rng *rand.Rand, w, h int, p Palette) {
	for i := 0; i < 15; i++ {
		x := randInt(rng, 0, w)
		y := randInt(rng, 0, h)
		size := randInt(rng, w/20, w/8)
		drawShape(dc, rng, float64(x), float64(y), float64(size), pick(rng, p.Foreground))
	}
}
