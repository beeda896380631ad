package image_service

import (
	"fmt"
	"image"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/serisow/storystudio/pipeline_type"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 1024

	blurSigma       = 2.0
	contrastPercent = 20.0 // ×1.2
	titleFontSize   = 48
)

// Synthesizer draws illustrative scene images from a prompt and a tone. All
// random choices come from the injected source.
type Synthesizer struct {
	logger *slog.Logger
	mu     sync.Mutex
	rng    *rand.Rand
}

func NewSynthesizer(logger *slog.Logger, rng *rand.Rand) *Synthesizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Synthesizer{logger: logger, rng: rng}
}

// Render composes gradient, setting, characters, filters and title. A panic
// in any drawing step is returned as an error.
func (s *Synthesizer) Render(prompt, tone string, w, h int) (img image.Image, err error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", w, h)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = fmt.Errorf("render panicked: %v", r)
		}
	}()

	palette := PaletteFor(tone)
	layout := LayoutFor(prompt)

	canvas := Gradient(w, h, palette.Background[0], palette.Background[1], randomGradientStyle(s.rng))
	dc := gg.NewContextForRGBA(canvas)
	drawSetting(dc, s.rng, w, h, layout, palette)
	drawCharacters(dc, s.rng, w, h, layout)

	filtered := imaging.AdjustContrast(imaging.Blur(dc.Image(), blurSigma), contrastPercent)

	out := gg.NewContextForImage(filtered)
	out.SetFontFace(FontFace(titleFontSize))
	out.SetRGB255(255, 255, 255)
	out.DrawStringAnchored(StudioTitle, float64(w)/2, 50, 0.5, 1)
	return out.Image(), nil
}

// Generate renders and saves an image. A failed render degrades to the
// placeholder card; if that cannot be written either the result is absent.
func (s *Synthesizer) Generate(prompt, tone, outputPath string, w, h int) pipeline_type.MediaResult {
	img, err := s.Render(prompt, tone, w, h)
	if err == nil {
		if err = SavePNG(img, outputPath); err == nil {
			return pipeline_type.ProducedAt(outputPath)
		}
	}
	s.logger.Warn("Procedural image failed, drawing placeholder",
		slog.String("path", outputPath),
		slog.String("error", err.Error()))

	if err := s.generatePlaceholder(prompt, outputPath, w, h); err != nil {
		s.logger.Error("Placeholder image failed",
			slog.String("path", outputPath),
			slog.String("error", err.Error()))
		return pipeline_type.NoMedia()
	}
	return pipeline_type.PlaceholderAt(outputPath)
}

func (s *Synthesizer) generatePlaceholder(text, outputPath string, w, h int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("placeholder panicked: %v", r)
		}
	}()
	if w <= 0 || h <= 0 {
		w, h = DefaultWidth, DefaultHeight
	}
	return SavePNG(RenderPlaceholder(text, w, h), outputPath)
}

// SavePNG writes img to path, creating parent directories.
func SavePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}
