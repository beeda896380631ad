package scene_service

import (
	"context"
	"log/slog"

	"github.com/davecgh/go-spew/spew"

	"github.com/serisow/storystudio/pipeline_type"
)

// SceneSource turns story text into an ordered scene list.
type SceneSource interface {
	GenerateScenes(ctx context.Context, story string, n int) ([]pipeline_type.Scene, error)
}

// GenerateScenes lets the Segmenter serve as a SceneSource.
func (s *Segmenter) GenerateScenes(_ context.Context, story string, n int) ([]pipeline_type.Scene, error) {
	return s.Segment(story, n), nil
}

// SceneService tries the remote source once and falls back to the offline
// segmenter. It never returns an empty list for a non-empty story.
type SceneService struct {
	logger    *slog.Logger
	remote    SceneSource
	segmenter *Segmenter
}

// NewSceneService wires the scene service. remote may be nil.
func NewSceneService(logger *slog.Logger, remote SceneSource, segmenter *Segmenter) *SceneService {
	if segmenter == nil {
		segmenter = NewSegmenter(logger, nil)
	}
	return &SceneService{
		logger:    logger,
		remote:    remote,
		segmenter: segmenter,
	}
}

func (s *SceneService) Scenes(ctx context.Context, story string, n int) []pipeline_type.Scene {
	var scenes []pipeline_type.Scene

	if s.remote != nil {
		remoteScenes, err := s.remote.GenerateScenes(ctx, story, n)
		if err != nil {
			s.logger.Warn("Scene source failed, using offline segmenter",
				slog.String("error", err.Error()))
		} else {
			scenes = remoteScenes
		}
	}

	if len(scenes) == 0 {
		scenes = s.segmenter.Segment(story, n)
	}

	scenes = pipeline_type.NormalizeScenes(scenes)
	if s.logger.Enabled(ctx, slog.LevelDebug) {
		s.logger.Debug("Scene list", slog.String("scenes", spew.Sdump(scenes)))
	}
	return scenes
}
