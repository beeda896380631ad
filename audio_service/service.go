package audio_service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/serisow/storystudio/pipeline_type"
)

const MusicFileName = "bg_music.wav"

// VoicePath is the narration file for the i-th scene (0-based).
func VoicePath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("scene_%d.wav", i+1))
}

func MusicPath(dir string) string {
	return filepath.Join(dir, MusicFileName)
}

type VoiceService struct {
	logger    *slog.Logger
	backend   VoiceBackend
	synth     *VoiceSynthesizer
	callDelay time.Duration
}

// NewVoiceService wires narration. backend may be nil.
func NewVoiceService(logger *slog.Logger, backend VoiceBackend, synth *VoiceSynthesizer, callDelay time.Duration) *VoiceService {
	if synth == nil {
		synth = NewVoiceSynthesizer(logger)
	}
	return &VoiceService{
		logger:    logger,
		backend:   backend,
		synth:     synth,
		callDelay: callDelay,
	}
}

// GenerateForScenes narrates every scene in order. Scenes without narration
// get an absent result.
func (s *VoiceService) GenerateForScenes(ctx context.Context, scenes []pipeline_type.Scene, dir string) []pipeline_type.MediaResult {
	results := make([]pipeline_type.MediaResult, len(scenes))
	for i, scene := range scenes {
		results[i] = s.GenerateVoice(ctx, scene.Narration, VoicePath(dir, i))

		s.logger.Info("Scene narration ready",
			slog.Int("scene", i+1),
			slog.String("kind", results[i].Kind.String()))

		if s.backend != nil && i < len(scenes)-1 && s.callDelay > 0 {
			time.Sleep(s.callDelay)
		}
	}
	return results
}

// GenerateVoice tries the backend once and otherwise synthesizes locally.
// Backend audio is stored as 44.1 kHz stereo like synthesized audio.
func (s *VoiceService) GenerateVoice(ctx context.Context, text, outputPath string) pipeline_type.MediaResult {
	if text == "" {
		return pipeline_type.NoMedia()
	}

	if s.backend != nil {
		wave, err := s.backend.Speak(ctx, text)
		if err == nil {
			err = WriteWAV(outputPath, wave.Resample(SampleRate).Stereo())
		}
		if err == nil {
			return pipeline_type.ProducedAt(outputPath)
		}
		s.logger.Warn("Voice backend failed, using procedural synthesis",
			slog.String("error", err.Error()))
	}

	return s.synth.Generate(text, outputPath)
}

// MusicBackend is an optional generative music service.
type MusicBackend interface {
	Compose(ctx context.Context, theme string, duration float64) (Waveform, error)
}

type MusicService struct {
	logger   *slog.Logger
	backend  MusicBackend
	cache    *FallbackCache
	synth    *MusicSynthesizer
	duration float64
}

// NewMusicService wires background music. backend and cache may be nil.
func NewMusicService(logger *slog.Logger, backend MusicBackend, cache *FallbackCache, synth *MusicSynthesizer, duration float64) *MusicService {
	if synth == nil {
		synth = NewMusicSynthesizer(logger, nil)
	}
	if duration <= 0 {
		duration = DefaultMusicSeconds
	}
	return &MusicService{
		logger:   logger,
		backend:  backend,
		cache:    cache,
		synth:    synth,
		duration: duration,
	}
}

// GenerateForScenes writes the story's background music into dir.
func (s *MusicService) GenerateForScenes(ctx context.Context, scenes []pipeline_type.Scene, dir string) pipeline_type.MediaResult {
	theme := ThemeForScenes(scenes)
	s.logger.Info("Music theme selected", slog.String("theme", theme))
	return s.GenerateMusic(ctx, theme, MusicPath(dir))
}

// GenerateMusic walks backend, fallback cache and fresh synthesis in that
// order. A cached file unrelated to the theme counts as a placeholder.
func (s *MusicService) GenerateMusic(ctx context.Context, theme, outputPath string) pipeline_type.MediaResult {
	if s.backend != nil {
		wave, err := s.backend.Compose(ctx, theme, s.duration)
		if err == nil {
			err = WriteWAV(outputPath, wave)
		}
		if err == nil {
			return pipeline_type.ProducedAt(outputPath)
		}
		s.logger.Warn("Music backend failed, using fallback music",
			slog.String("error", err.Error()))
	}

	if s.cache != nil {
		src, matched, err := s.cache.Choose(theme)
		if err == nil {
			err = copyFile(src, outputPath)
		}
		if err == nil {
			s.logger.Info("Using fallback music", slog.String("file", filepath.Base(src)))
			if matched {
				return pipeline_type.ProducedAt(outputPath)
			}
			return pipeline_type.PlaceholderAt(outputPath)
		}
		s.logger.Warn("Fallback music unavailable, synthesizing",
			slog.String("error", err.Error()))
	}

	if err := s.synthesizeTo(theme, outputPath); err != nil {
		s.logger.Error("Music synthesis failed",
			slog.String("path", outputPath),
			slog.String("error", err.Error()))
		return pipeline_type.NoMedia()
	}
	return pipeline_type.ProducedAt(outputPath)
}

func (s *MusicService) synthesizeTo(theme, outputPath string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("music synthesis panicked: %v", r)
		}
	}()
	return WriteWAV(outputPath, s.synth.Synthesize(theme, s.duration))
}
