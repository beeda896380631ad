package media_step

import (
	"context"
	"errors"
	"log/slog"

	"github.com/serisow/storystudio/audio_service"
	"github.com/serisow/storystudio/image_service"
	"github.com/serisow/storystudio/pipeline_type"
	"github.com/serisow/storystudio/scene_service"
	"github.com/serisow/storystudio/video"
)

const (
	SegmentStepType = "segment"
	ImageStepType   = "image_generation"
	VoiceStepType   = "voice_generation"
	MusicStepType   = "music_generation"
	VideoStepType   = "video_assembly"
)

// ErrNoVideo is returned by the video step when assembly produced nothing.
var ErrNoVideo = errors.New("video assembly produced no video")

// SegmentStep splits the story into scenes and saves the script.
type SegmentStep struct {
	logger *slog.Logger
	scenes *scene_service.SceneService
	layout pipeline_type.Layout
}

func NewSegmentStep(logger *slog.Logger, scenes *scene_service.SceneService, layout pipeline_type.Layout) *SegmentStep {
	return &SegmentStep{logger: logger, scenes: scenes, layout: layout}
}

func (s *SegmentStep) GetType() string { return SegmentStepType }

func (s *SegmentStep) Execute(ctx context.Context, state pipeline_type.State) (pipeline_type.State, error) {
	if err := ctx.Err(); err != nil {
		return state, err
	}

	scenes := s.scenes.Scenes(ctx, state.Story, state.SceneCount)

	if err := SaveStory(s.layout.StoryPath(), state.Story); err != nil {
		s.logger.Warn("Story text not saved", slog.String("error", err.Error()))
	} else {
		state.StoryPath = s.layout.StoryPath()
	}

	scenesPath := s.layout.ScenesPath()
	if err := SaveScenes(scenesPath, scenes); err != nil {
		s.logger.Warn("Scene list not saved", slog.String("error", err.Error()))
		scenesPath = ""
	}

	s.logger.Info("Story segmented", slog.Int("scenes", len(scenes)))
	return state.WithScenes(scenes, scenesPath), nil
}

// ImageStep renders one image per scene.
type ImageStep struct {
	images *image_service.ImageService
	layout pipeline_type.Layout
}

func NewImageStep(images *image_service.ImageService, layout pipeline_type.Layout) *ImageStep {
	return &ImageStep{images: images, layout: layout}
}

func (s *ImageStep) GetType() string { return ImageStepType }

func (s *ImageStep) Execute(ctx context.Context, state pipeline_type.State) (pipeline_type.State, error) {
	if err := ctx.Err(); err != nil {
		return state, err
	}
	return state.WithImages(s.images.GenerateForScenes(ctx, state.Scenes, s.layout.ImagesDir())), nil
}

// VoiceStep narrates every scene.
type VoiceStep struct {
	voice  *audio_service.VoiceService
	layout pipeline_type.Layout
}

func NewVoiceStep(voice *audio_service.VoiceService, layout pipeline_type.Layout) *VoiceStep {
	return &VoiceStep{voice: voice, layout: layout}
}

func (s *VoiceStep) GetType() string { return VoiceStepType }

func (s *VoiceStep) Execute(ctx context.Context, state pipeline_type.State) (pipeline_type.State, error) {
	if err := ctx.Err(); err != nil {
		return state, err
	}
	return state.WithVoice(s.voice.GenerateForScenes(ctx, state.Scenes, s.layout.VoiceDir())), nil
}

// MusicStep produces the background track for the whole story.
type MusicStep struct {
	music  *audio_service.MusicService
	layout pipeline_type.Layout
}

func NewMusicStep(music *audio_service.MusicService, layout pipeline_type.Layout) *MusicStep {
	return &MusicStep{music: music, layout: layout}
}

func (s *MusicStep) GetType() string { return MusicStepType }

func (s *MusicStep) Execute(ctx context.Context, state pipeline_type.State) (pipeline_type.State, error) {
	if err := ctx.Err(); err != nil {
		return state, err
	}
	if len(state.Scenes) == 0 {
		return state.WithMusic(pipeline_type.NoMedia()), nil
	}
	return state.WithMusic(s.music.GenerateForScenes(ctx, state.Scenes, s.layout.MusicDir())), nil
}

// VideoStep assembles everything into the final video.
type VideoStep struct {
	assembler *video.Assembler
	layout    pipeline_type.Layout
}

func NewVideoStep(assembler *video.Assembler, layout pipeline_type.Layout) *VideoStep {
	return &VideoStep{assembler: assembler, layout: layout}
}

func (s *VideoStep) GetType() string { return VideoStepType }

func (s *VideoStep) Execute(ctx context.Context, state pipeline_type.State) (pipeline_type.State, error) {
	if err := ctx.Err(); err != nil {
		return state, err
	}

	result := s.assembler.Assemble(ctx, video.AssemblyRequest{
		Title:      state.Title,
		Scenes:     state.Scenes,
		Images:     state.Images,
		Voice:      state.Voice,
		Music:      state.Music,
		OutputPath: s.layout.VideoPath(),
	})

	state = state.WithVideo(result)
	if !result.Available() {
		return state, ErrNoVideo
	}
	return state, nil
}
