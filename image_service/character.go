package image_service

import (
	"math/rand"

	"github.com/fogleman/gg"
)

// drawCharacter draws a black humanoid silhouette whose feet rest near
// (x, y). size is used for both width and height.
func drawCharacter(dc *gg.Context, x, y, size float64, posture Posture) {
	w, h := size, size
	headR := w * 0.1
	bodyW := w * 0.2
	limbW := w * 0.08

	switch posture {
	case PostureSitting:
		headY := y - h*0.6
		fillCircle(dc, x, headY, headR, black)

		bodyH := h * 0.3
		bodyY := headY + headR
		fillRect(dc, x-bodyW/2, bodyY, x+bodyW/2, bodyY+bodyH, black)

		legH := h * 0.2
		legY := bodyY + bodyH
		fillRect(dc, x-bodyW/2, legY, x-bodyW/2+limbW, legY+legH/2, black)
		fillRect(dc, x+bodyW/2-limbW, legY, x+bodyW/2, legY+legH/2, black)
		// Legs folded forward.
		fillRect(dc, x-bodyW/2+limbW/2, legY+legH/2, x+bodyW/2-limbW/2, legY+legH, black)

	case PostureAction:
		headY := y - h + h*0.15
		fillCircle(dc, x, headY, headR, black)

		bodyH := h * 0.4
		bodyY := headY + headR
		tilt := bodyH / 4
		fillPolygon(dc, black,
			gg.Point{X: x - bodyW/2, Y: bodyY},
			gg.Point{X: x + bodyW/2, Y: bodyY - tilt},
			gg.Point{X: x + bodyW/2, Y: bodyY + bodyH - tilt},
			gg.Point{X: x - bodyW/2, Y: bodyY + bodyH})

		legH := h * 0.35
		legY := bodyY + bodyH
		fillPolygon(dc, black,
			gg.Point{X: x - bodyW/2, Y: legY},
			gg.Point{X: x - bodyW/2 - limbW, Y: legY + legH},
			gg.Point{X: x - bodyW/2 + limbW, Y: legY + legH})
		fillPolygon(dc, black,
			gg.Point{X: x + bodyW/2, Y: legY - tilt},
			gg.Point{X: x + bodyW/2 + limbW, Y: legY + legH/2},
			gg.Point{X: x + bodyW/2 - limbW, Y: legY + legH/2})

		armH := h * 0.25
		armY := bodyY + bodyH*0.1
		fillPolygon(dc, black,
			gg.Point{X: x - bodyW/2, Y: armY},
			gg.Point{X: x - bodyW/2 - limbW, Y: armY - armH/2},
			gg.Point{X: x - bodyW/2 - limbW/2, Y: armY + armH/2})
		fillPolygon(dc, black,
			gg.Point{X: x + bodyW/2, Y: armY - tilt},
			gg.Point{X: x + bodyW/2 + limbW, Y: armY + armH},
			gg.Point{X: x + bodyW/2 + limbW/2, Y: armY - armH/3})

	default:
		headY := y - h + h*0.15
		fillCircle(dc, x, headY, headR, black)

		bodyH := h * 0.45
		bodyY := headY + headR
		fillRect(dc, x-bodyW/2, bodyY, x+bodyW/2, bodyY+bodyH, black)

		legH := h * 0.4
		legY := bodyY + bodyH
		fillRect(dc, x-bodyW/2, legY, x-bodyW/2+limbW, legY+legH, black)
		fillRect(dc, x+bodyW/2-limbW, legY, x+bodyW/2, legY+legH, black)

		armH := h * 0.3
		armY := bodyY + bodyH*0.1
		fillRect(dc, x-bodyW/2-limbW, armY, x-bodyW/2, armY+armH, black)
		fillRect(dc, x+bodyW/2, armY, x+bodyW/2+limbW, armY+armH, black)
	}
}

// drawCharacters places the main silhouette by framing and, for groups or
// by chance, a second standing or sitting one to its right.
func drawCharacters(dc *gg.Context, rng *rand.Rand, w, h int, layout Layout) {
	if !layout.HasCharacter {
		return
	}

	x, y, size := w/3, h-h/6, w/3
	if layout.CloseUp {
		x, y, size = w/2, h-h/4, w/2
	}
	drawCharacter(dc, float64(x), float64(y), float64(size), layout.Posture)

	if layout.Group || rng.Float64() > 0.7 {
		second := PostureStanding
		if rng.Intn(2) == 1 {
			second = PostureSitting
		}
		drawCharacter(dc, float64(2*w/3), float64(h-h/6), float64(w/3), second)
	}
}
