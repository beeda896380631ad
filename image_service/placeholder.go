package image_service

import (
	"image"

	"github.com/fogleman/gg"
)

const (
	StudioTitle = "AI ShortStory Studio"

	placeholderMaxChars  = 200
	placeholderLineChars = 40
)

var placeholderBackground = rgb(73, 109, 137)

// RenderPlaceholder draws a solid card with the text cut into fixed-width
// lines around the vertical centre and the studio title on top.
func RenderPlaceholder(text string, w, h int) image.Image {
	dc := gg.NewContext(w, h)
	dc.SetColor(placeholderBackground)
	dc.Clear()

	dc.SetFontFace(FontFace(32))
	dc.SetRGB255(255, 255, 255)

	lines := chunkRunes(truncateWithEllipsis(text, placeholderMaxChars), placeholderLineChars)
	y := float64(h/2 - len(lines)*20)
	for _, line := range lines {
		dc.DrawStringAnchored(line, float64(w)/2, y, 0.5, 0.5)
		y += 40
	}

	dc.DrawStringAnchored(StudioTitle, float64(w)/2, 50, 0.5, 0.5)
	return dc.Image()
}

// truncateWithEllipsis keeps the first n runes and appends "..." when text
// was longer.
func truncateWithEllipsis(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}

func chunkRunes(text string, size int) []string {
	r := []rune(text)
	var chunks []string
	for i := 0; i < len(r); i += size {
		end := min(i+size, len(r))
		chunks = append(chunks, string(r[i:end]))
	}
	return chunks
}
