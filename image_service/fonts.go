package image_service

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	regularFont     *truetype.Font
	regularFontErr  error
	regularFontOnce sync.Once
)

// FontFace returns the embedded Go Regular face at size points. If the font
// cannot be parsed the fixed 7x13 face is returned so text is still drawn.
func FontFace(size float64) font.Face {
	regularFontOnce.Do(func() {
		regularFont, regularFontErr = truetype.Parse(goregular.TTF)
	})
	if regularFontErr != nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(regularFont, &truetype.Options{Size: size})
}
