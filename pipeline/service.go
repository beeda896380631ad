package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/serisow/storystudio/media_step"
	"github.com/serisow/storystudio/pipeline_type"
	"github.com/serisow/storystudio/plugin_registry"
	"github.com/serisow/storystudio/video"
)

var (
	SegmentSteps = []string{media_step.SegmentStepType}
	MediaSteps   = []string{
		media_step.ImageStepType,
		media_step.VoiceStepType,
		media_step.MusicStepType,
		media_step.VideoStepType,
	}
)

const (
	StageCompleted = "completed"
	StageFailed    = "failed"
)

// Service runs stories through the registered steps. Runs share the output
// directory, so callers must not run two at once (Runner serialises them).
type Service struct {
	logger     *slog.Logger
	registry   *plugin_registry.PluginRegistry
	cleanup    *video.CleanupService
	layout     pipeline_type.Layout
	sceneCount int
}

func NewService(logger *slog.Logger, registry *plugin_registry.PluginRegistry, cleanup *video.CleanupService, layout pipeline_type.Layout, sceneCount int) *Service {
	return &Service{
		logger:     logger,
		registry:   registry,
		cleanup:    cleanup,
		layout:     layout,
		sceneCount: sceneCount,
	}
}

// Segment produces the script only: scenes.json and story.txt.
func (s *Service) Segment(ctx context.Context, story string) (string, []pipeline_type.Scene) {
	return s.SegmentN(ctx, story, s.sceneCount)
}

// SegmentN is Segment with an explicit scene count. A count of zero or less
// uses the configured one.
func (s *Service) SegmentN(ctx context.Context, story string, sceneCount int) (string, []pipeline_type.Scene) {
	if sceneCount <= 0 {
		sceneCount = s.sceneCount
	}
	state, _ := s.Run(ctx, pipeline_type.NewState("", story, sceneCount), SegmentSteps...)
	return state.ScenesPath, state.Scenes
}

// SynthesizeMedia renders images, narration, music and video for an
// approved scene list.
func (s *Service) SynthesizeMedia(ctx context.Context, scenes []pipeline_type.Scene) pipeline_type.OutputPaths {
	state := pipeline_type.NewState("", "", len(scenes)).WithScenes(scenes, "")
	state, _ = s.MediaState(ctx, state)
	return state.OutputPaths()
}

// ProcessStory runs the whole pipeline from story text to video.
func (s *Service) ProcessStory(ctx context.Context, story string) pipeline_type.OutputPaths {
	state, _ := s.StoryState(ctx, pipeline_type.NewState("", story, s.sceneCount))
	return state.OutputPaths()
}

// StoryState clears the previous run and executes every step.
func (s *Service) StoryState(ctx context.Context, state pipeline_type.State) (pipeline_type.State, error) {
	if state.SceneCount <= 0 {
		state.SceneCount = s.sceneCount
	}
	s.cleanPreviousRun()
	steps := append(append([]string{}, SegmentSteps...), MediaSteps...)
	return s.Run(ctx, state, steps...)
}

// MediaState clears the previous run, saves the given scenes as the script
// and executes the media steps.
func (s *Service) MediaState(ctx context.Context, state pipeline_type.State) (pipeline_type.State, error) {
	s.cleanPreviousRun()

	scenes := pipeline_type.NormalizeScenes(state.Scenes)
	scenesPath := s.layout.ScenesPath()
	if err := media_step.SaveScenes(scenesPath, scenes); err != nil {
		s.logger.Warn("Scene list not saved", slog.String("error", err.Error()))
		scenesPath = ""
	}
	state = state.WithScenes(scenes, scenesPath)

	return s.Run(ctx, state, MediaSteps...)
}

func (s *Service) cleanPreviousRun() {
	if s.cleanup != nil {
		s.cleanup.CleanRunArtifacts()
	}
}

// Run executes the named steps in order. The context is checked between
// steps; a started step runs to completion. The first failing step ends
// the run.
func (s *Service) Run(ctx context.Context, state pipeline_type.State, stepTypes ...string) (pipeline_type.State, error) {
	start := time.Now()

	steps, err := s.registry.Steps(stepTypes...)
	if err != nil {
		return state, err
	}

	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("Run cancelled",
				slog.String("execution_id", state.ExecutionID),
				slog.String("next_step", st.GetType()))
			return state, err
		}

		stepStart := time.Now()
		s.logger.Info("Starting step",
			slog.String("execution_id", state.ExecutionID),
			slog.String("step", st.GetType()))

		next, err := st.Execute(ctx, state)
		if err != nil {
			state = next.RecordStage(st.GetType(), StageFailed, err.Error(), time.Since(stepStart))
			s.logger.Error("Step failed",
				slog.String("execution_id", state.ExecutionID),
				slog.String("step", st.GetType()),
				slog.String("error", err.Error()))
			s.logSummary(state, start)
			return state, fmt.Errorf("error executing step %s: %w", st.GetType(), err)
		}
		state = next.RecordStage(st.GetType(), StageCompleted, "", time.Since(stepStart))
	}

	s.logSummary(state, start)
	return state, nil
}

func (s *Service) logSummary(state pipeline_type.State, start time.Time) {
	summary := Summarize(state)
	s.logger.Info("Run summary",
		slog.String("execution_id", state.ExecutionID),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("scenes", summary.Scenes),
		slog.Any("images", summary.Images),
		slog.Any("voice", summary.Voice),
		slog.String("music", summary.Music),
		slog.String("video", summary.Video))
}

// RunSummary counts the media of a run by kind.
type RunSummary struct {
	Scenes int            `json:"scenes"`
	Images map[string]int `json:"images"`
	Voice  map[string]int `json:"voice"`
	Music  string         `json:"music"`
	Video  string         `json:"video"`
}

func Summarize(state pipeline_type.State) RunSummary {
	return RunSummary{
		Scenes: len(state.Scenes),
		Images: countKinds(state.Images),
		Voice:  countKinds(state.Voice),
		Music:  state.Music.Kind.String(),
		Video:  state.Video.Kind.String(),
	}
}

func countKinds(results []pipeline_type.MediaResult) map[string]int {
	counts := make(map[string]int)
	for _, r := range results {
		counts[r.Kind.String()]++
	}
	return counts
}
