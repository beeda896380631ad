package video

import (
	"image"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	"github.com/serisow/storystudio/image_service"
)

const (
	CaptionHeight     = 200
	captionMaxRunes   = 100
	captionFontSize   = 24
	captionMargin     = 40
	captionTop        = 20
	captionLineHeight = 30
)

var captionBackground = color.RGBA{0, 0, 0, 128}

// CaptionText truncates narration to what fits on a caption strip.
func CaptionText(narration string) string {
	r := []rune(narration)
	if len(r) > captionMaxRunes {
		return string(r[:captionMaxRunes]) + "..."
	}
	return narration
}

// WrapCaption breaks text greedily so that no line is wider than maxWidth,
// as measured by measure. A single word wider than maxWidth gets a line of
// its own.
func WrapCaption(text string, maxWidth float64, measure func(string) float64) []string {
	var lines []string
	var line []string
	for _, word := range strings.Fields(text) {
		line = append(line, word)
		if measure(strings.Join(line, " ")) > maxWidth && len(line) > 1 {
			lines = append(lines, strings.Join(line[:len(line)-1], " "))
			line = []string{word}
		}
	}
	if len(line) > 0 {
		lines = append(lines, strings.Join(line, " "))
	}
	return lines
}

// RenderCaption draws the semi-transparent strip shown under a scene.
func RenderCaption(narration string, width int) image.Image {
	dc := gg.NewContext(width, CaptionHeight)
	dc.SetColor(captionBackground)
	dc.DrawRectangle(0, 0, float64(width), CaptionHeight)
	dc.Fill()

	dc.SetFontFace(image_service.FontFace(captionFontSize))
	dc.SetColor(color.White)
	measure := func(s string) float64 {
		w, _ := dc.MeasureString(s)
		return w
	}

	lines := WrapCaption(CaptionText(narration), float64(width-captionMargin), measure)
	for i, line := range lines {
		y := float64(captionTop + i*captionLineHeight)
		dc.DrawStringAnchored(line, float64(width)/2, y, 0.5, 1)
	}
	return dc.Image()
}
