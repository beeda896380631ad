package image_service

import (
	"image/color"
	"strings"

	"github.com/serisow/storystudio/pipeline_type"
)

// Palette is the colour set derived from a scene tone. Background holds the
// gradient endpoints, Foreground the structural colours and Accent the focal
// ones.
type Palette struct {
	Background [2]color.RGBA
	Foreground []color.RGBA
	Accent     [2]color.RGBA
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

var tonePalettes = map[string]Palette{
	pipeline_type.ToneMysterious: {
		Background: [2]color.RGBA{rgb(20, 0, 40), rgb(60, 30, 110)},
		Foreground: []color.RGBA{rgb(120, 0, 200), rgb(200, 150, 255), rgb(80, 30, 80)},
		Accent:     [2]color.RGBA{rgb(0, 200, 255), rgb(255, 50, 200)},
	},
	pipeline_type.ToneJoyful: {
		Background: [2]color.RGBA{rgb(100, 200, 255), rgb(200, 255, 220)},
		Foreground: []color.RGBA{rgb(255, 200, 0), rgb(255, 150, 0), rgb(0, 180, 120)},
		Accent:     [2]color.RGBA{rgb(255, 100, 100), rgb(255, 50, 50)},
	},
	pipeline_type.ToneSomber: {
		Background: [2]color.RGBA{rgb(50, 50, 70), rgb(80, 80, 120)},
		Foreground: []color.RGBA{rgb(130, 130, 180), rgb(70, 70, 70), rgb(120, 120, 170)},
		Accent:     [2]color.RGBA{rgb(200, 200, 255), rgb(150, 120, 200)},
	},
	pipeline_type.ToneTense: {
		Background: [2]color.RGBA{rgb(70, 10, 10), rgb(150, 30, 30)},
		Foreground: []color.RGBA{rgb(200, 50, 30), rgb(100, 0, 0), rgb(150, 50, 50)},
		Accent:     [2]color.RGBA{rgb(255, 200, 50), rgb(255, 150, 0)},
	},
	pipeline_type.ToneRomantic: {
		Background: [2]color.RGBA{rgb(150, 50, 100), rgb(255, 200, 220)},
		Foreground: []color.RGBA{rgb(255, 150, 150), rgb(200, 100, 150), rgb(255, 200, 180)},
		Accent:     [2]color.RGBA{rgb(255, 220, 200), rgb(255, 150, 200)},
	},
	pipeline_type.ToneAdventurous: {
		Background: [2]color.RGBA{rgb(0, 50, 0), rgb(100, 150, 100)},
		Foreground: []color.RGBA{rgb(150, 200, 50), rgb(200, 180, 0), rgb(120, 100, 0)},
		Accent:     [2]color.RGBA{rgb(255, 200, 0), rgb(200, 255, 100)},
	},
	pipeline_type.ToneDramatic: {
		Background: [2]color.RGBA{rgb(20, 0, 40), rgb(80, 10, 30)},
		Foreground: []color.RGBA{rgb(150, 0, 0), rgb(50, 0, 100), rgb(100, 50, 50)},
		Accent:     [2]color.RGBA{rgb(255, 200, 0), rgb(200, 0, 0)},
	},
	pipeline_type.TonePeaceful: {
		Background: [2]color.RGBA{rgb(50, 100, 200), rgb(200, 240, 255)},
		Foreground: []color.RGBA{rgb(100, 200, 255), rgb(150, 200, 200), rgb(100, 180, 200)},
		Accent:     [2]color.RGBA{rgb(255, 255, 200), rgb(200, 255, 255)},
	},
}

// PaletteFor returns the palette for tone, case-insensitively. Unknown tones,
// the neutral sentinel included, get the mysterious palette. The returned
// value is a copy.
func PaletteFor(tone string) Palette {
	p, ok := tonePalettes[strings.ToLower(strings.TrimSpace(tone))]
	if !ok {
		p = tonePalettes[pipeline_type.ToneMysterious]
	}
	p.Foreground = append([]color.RGBA(nil), p.Foreground...)
	return p
}

// darken halves every channel, keeping alpha.
func darken(c color.RGBA) color.RGBA {
	return color.RGBA{R: c.R / 2, G: c.G / 2, B: c.B / 2, A: c.A}
}
