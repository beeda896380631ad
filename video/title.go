package video

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/serisow/storystudio/image_service"
)

const (
	TitleSeconds     = 3.0
	titleFadeSeconds = 1.0
	titleFontSize    = 70
	titleLineSpacing = 1.3
)

// RenderTitleCard draws the story title in white on black, wrapped to the
// frame and centred vertically.
func RenderTitleCard(title string, w, h int) image.Image {
	dc := gg.NewContext(w, h)
	dc.SetColor(color.Black)
	dc.Clear()

	dc.SetFontFace(image_service.FontFace(titleFontSize))
	dc.SetColor(color.White)
	dc.DrawStringWrapped(title, float64(w)/2, float64(h)/2, 0.5, 0.5,
		float64(w-2*captionMargin), titleLineSpacing, gg.AlignCenter)
	return dc.Image()
}
