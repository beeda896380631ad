package image_service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/serisow/storystudio/pipeline_type"
)

type ImageService struct {
	logger      *slog.Logger
	backend     ImageBackend
	synthesizer *Synthesizer
	width       int
	height      int
	callDelay   time.Duration
}

// NewImageService wires image generation. backend may be nil, in which case
// every image is drawn procedurally.
func NewImageService(logger *slog.Logger, backend ImageBackend, synthesizer *Synthesizer, width, height int, callDelay time.Duration) *ImageService {
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	return &ImageService{
		logger:      logger,
		backend:     backend,
		synthesizer: synthesizer,
		width:       width,
		height:      height,
		callDelay:   callDelay,
	}
}

// ImagePath is the file the image for the i-th scene (0-based) is written to.
func ImagePath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("scene_%d.png", i+1))
}

// GenerateForScenes produces one result per scene, in scene order.
func (s *ImageService) GenerateForScenes(ctx context.Context, scenes []pipeline_type.Scene, dir string) []pipeline_type.MediaResult {
	results := make([]pipeline_type.MediaResult, len(scenes))
	for i, scene := range scenes {
		results[i] = s.GenerateImage(ctx, scene, ImagePath(dir, i))

		s.logger.Info("Scene image ready",
			slog.Int("scene", i+1),
			slog.String("kind", results[i].Kind.String()))

		if s.backend != nil && i < len(scenes)-1 && s.callDelay > 0 {
			time.Sleep(s.callDelay)
		}
	}
	return results
}

// GenerateImage tries the backend once, then draws the image locally.
func (s *ImageService) GenerateImage(ctx context.Context, scene pipeline_type.Scene, outputPath string) pipeline_type.MediaResult {
	prompt := scene.PromptText()
	tone := scene.ResolvedTone()
	if tone == pipeline_type.ToneNeutral {
		tone = pipeline_type.ToneFromText(prompt, pipeline_type.ToneMysterious)
	}

	if s.backend != nil {
		if err := s.fromBackend(ctx, prompt, outputPath); err != nil {
			s.logger.Warn("Image backend failed, using procedural synthesis",
				slog.String("error", err.Error()))
		} else {
			return pipeline_type.ProducedAt(outputPath)
		}
	}

	return s.synthesizer.Generate(prompt, tone, outputPath, s.width, s.height)
}

func (s *ImageService) fromBackend(ctx context.Context, prompt, outputPath string) error {
	data, err := s.backend.GenerateImage(ctx, prompt, s.width, s.height)
	if err != nil {
		return err
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("backend returned an unreadable image: %w", err)
	}
	return SavePNG(img, outputPath)
}
