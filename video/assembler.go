package video

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/serisow/storystudio/audio_service"
	"github.com/serisow/storystudio/image_service"
	"github.com/serisow/storystudio/pipeline_type"
)

const (
	DefaultClipSeconds = 8.0
	DefaultFadeSeconds = 1.0
	DefaultMusicVolume = 0.2
	DefaultFPS         = 24
	FinalVideoName     = "final_video.mp4"

	durationTolerance = 0.5
)

var solidFallbackColor = color.NRGBA{0, 0, 128, 255}

type Options struct {
	Width              int
	Height             int
	FPS                int
	DefaultClipSeconds float64
	FadeSeconds        float64
	MusicVolume        float64
	TitleScreen        bool
}

func DefaultOptions() Options {
	return Options{
		Width:              image_service.DefaultWidth,
		Height:             image_service.DefaultHeight,
		FPS:                DefaultFPS,
		DefaultClipSeconds: DefaultClipSeconds,
		FadeSeconds:        DefaultFadeSeconds,
		MusicVolume:        DefaultMusicVolume,
	}
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 || o.Height <= 0 {
		o.Width, o.Height = d.Width, d.Height
	}
	if o.FPS <= 0 {
		o.FPS = d.FPS
	}
	if o.DefaultClipSeconds <= 0 {
		o.DefaultClipSeconds = d.DefaultClipSeconds
	}
	if o.FadeSeconds <= 0 {
		o.FadeSeconds = d.FadeSeconds
	}
	if o.MusicVolume <= 0 {
		o.MusicVolume = d.MusicVolume
	}
	return o
}

// AssemblyRequest holds everything produced upstream. Images and Voice are
// indexed like Scenes; missing entries count as absent.
type AssemblyRequest struct {
	Title      string
	Scenes     []pipeline_type.Scene
	Images     []pipeline_type.MediaResult
	Voice      []pipeline_type.MediaResult
	Music      pipeline_type.MediaResult
	OutputPath string
}

// clip is one planned scene of the timeline.
type clip struct {
	ClipSpec
	Narration audio_service.Waveform
}

type Assembler struct {
	logger   *slog.Logger
	executor FFmpegExecutor
	opts     Options
}

func NewAssembler(logger *slog.Logger, executor FFmpegExecutor, opts Options) *Assembler {
	if executor == nil {
		executor = NewFFmpegExecutor(logger)
	}
	return &Assembler{
		logger:   logger,
		executor: executor,
		opts:     opts.withDefaults(),
	}
}

// Assemble renders the final video. It never returns an error: any failure
// is logged and reported as an absent result.
func (a *Assembler) Assemble(ctx context.Context, req AssemblyRequest) (result pipeline_type.MediaResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Video assembly panicked", slog.Any("panic", r))
			result = pipeline_type.NoMedia()
		}
	}()

	if err := ctx.Err(); err != nil {
		a.logger.Warn("Video assembly cancelled", slog.String("error", err.Error()))
		return pipeline_type.NoMedia()
	}
	if len(req.Scenes) == 0 {
		a.logger.Warn("No scenes to assemble")
		return pipeline_type.NoMedia()
	}

	if err := a.assemble(req); err != nil {
		a.logger.Error("Video assembly failed",
			slog.String("output_path", req.OutputPath),
			slog.String("error", err.Error()))
		return pipeline_type.NoMedia()
	}

	a.logger.Info("Video assembled",
		slog.String("output_path", req.OutputPath),
		slog.Int("scenes", len(req.Scenes)),
		slog.Duration("elapsed", time.Since(start)))
	return pipeline_type.ProducedAt(req.OutputPath)
}

func (a *Assembler) assemble(req AssemblyRequest) error {
	outDir := filepath.Dir(req.OutputPath)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return stageError("prepare", fmt.Errorf("failed to create output directory: %w", err))
	}
	workDir, err := os.MkdirTemp(outDir, ".assembly-*")
	if err != nil {
		return stageError("prepare", fmt.Errorf("failed to create work directory: %w", err))
	}
	defer os.RemoveAll(workDir)

	clips, err := a.planClips(req, workDir)
	if err != nil {
		return err
	}

	var clipPaths []string
	var tracks []audio_service.Waveform

	if a.opts.TitleScreen && strings.TrimSpace(req.Title) != "" {
		titlePath, err := a.renderTitle(req.Title, workDir)
		if err != nil {
			a.logger.Warn("Skipping title screen", slog.String("error", err.Error()))
		} else {
			clipPaths = append(clipPaths, titlePath)
			tracks = append(tracks, audio_service.Silence(TitleSeconds, stereo))
		}
	}

	for _, c := range clips {
		if err := a.executor.RenderClip(c.ClipSpec); err != nil {
			return stageError("render_clip", err)
		}
		clipPaths = append(clipPaths, c.OutputPath)
		tracks = append(tracks, c.Narration)
	}

	timelinePath := filepath.Join(workDir, "timeline.mp4")
	if err := a.executor.Concat(clipPaths, timelinePath); err != nil {
		return stageError("concat", err)
	}

	soundtrack := a.soundtrack(tracks, req.Music)
	soundtrackPath := filepath.Join(workDir, "soundtrack.wav")
	if err := audio_service.WriteWAV(soundtrackPath, soundtrack); err != nil {
		return stageError("soundtrack", err)
	}

	if err := a.executor.Mux(MuxSpec{VideoPath: timelinePath, AudioPath: soundtrackPath, OutputPath: req.OutputPath}); err != nil {
		return stageError("mux", err)
	}

	a.checkDuration(req.OutputPath, soundtrack.Duration())
	return nil
}

// checkDuration measures the muxed video. A failed measurement is only logged.
func (a *Assembler) checkDuration(path string, expected float64) {
	duration, err := a.executor.GetDuration(path)
	if err != nil {
		a.logger.Warn("Could not measure final video duration",
			slog.String("output_path", path),
			slog.String("error", err.Error()))
		return
	}
	if diff := duration - expected; diff > durationTolerance || diff < -durationTolerance {
		a.logger.Warn("Final video duration differs from soundtrack",
			slog.Float64("duration", duration),
			slog.Float64("expected", expected))
		return
	}
	a.logger.Debug("Final video duration", slog.Float64("duration", duration))
}

// planClips resolves the image, caption and narration of every scene.
func (a *Assembler) planClips(req AssemblyRequest, workDir string) ([]clip, error) {
	clips := make([]clip, 0, len(req.Scenes))
	for i, scene := range req.Scenes {
		imagePath, err := a.sceneImage(i, scene, mediaAt(req.Images, i), workDir)
		if err != nil {
			return nil, stageError("image", err)
		}

		narration, hasVoice := a.sceneNarration(i, mediaAt(req.Voice, i))
		duration := narration.Duration()

		c := clip{
			ClipSpec: ClipSpec{
				ImagePath:  imagePath,
				OutputPath: filepath.Join(workDir, fmt.Sprintf("clip_%d.mp4", i+1)),
				Duration:   duration,
				FadeIn:     a.opts.FadeSeconds,
				FadeOut:    a.opts.FadeSeconds,
				Width:      a.opts.Width,
				Height:     a.opts.Height,
				FPS:        a.opts.FPS,
			},
			Narration: narration,
		}

		if strings.TrimSpace(scene.Narration) != "" {
			captionPath := filepath.Join(workDir, fmt.Sprintf("caption_%d.png", i+1))
			if err := image_service.SavePNG(RenderCaption(scene.Narration, a.opts.Width), captionPath); err != nil {
				a.logger.Warn("Caption unavailable",
					slog.Int("scene", i+1),
					slog.String("error", err.Error()))
			} else {
				c.OverlayPath = captionPath
			}
		}

		a.logger.Debug("Clip planned",
			slog.Int("scene", i+1),
			slog.Float64("duration", duration),
			slog.Bool("voice", hasVoice))
		clips = append(clips, c)
	}
	return clips, nil
}

// sceneImage walks the image ladder: the generated image, a placeholder
// with the scene description, then a solid colour frame.
func (a *Assembler) sceneImage(i int, scene pipeline_type.Scene, img pipeline_type.MediaResult, workDir string) (string, error) {
	if img.Available() {
		if _, err := os.Stat(img.Path); err == nil {
			return img.Path, nil
		}
		a.logger.Warn("Scene image missing on disk", slog.Int("scene", i+1), slog.String("path", img.Path))
	}

	description := scene.Description
	if strings.TrimSpace(description) == "" {
		description = fmt.Sprintf("Scene %d", i+1)
	}

	placeholderPath := filepath.Join(workDir, fmt.Sprintf("placeholder_%d.png", i+1))
	err := a.savePlaceholder(description, placeholderPath)
	if err == nil {
		return placeholderPath, nil
	}
	a.logger.Warn("Placeholder image failed, using a solid frame",
		slog.Int("scene", i+1),
		slog.String("error", err.Error()))

	solidPath := filepath.Join(workDir, fmt.Sprintf("solid_%d.png", i+1))
	if err := image_service.SavePNG(imaging.New(a.opts.Width, a.opts.Height, solidFallbackColor), solidPath); err != nil {
		return "", fmt.Errorf("scene %d has no usable image: %w", i+1, err)
	}
	return solidPath, nil
}

func (a *Assembler) savePlaceholder(description, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("placeholder rendering panicked: %v", r)
		}
	}()
	return image_service.SavePNG(image_service.RenderPlaceholder(description, a.opts.Width, a.opts.Height), path)
}

// sceneNarration loads the voice track and fits it to the clip: the clip
// lasts at least the default duration and never cuts the narration short.
func (a *Assembler) sceneNarration(i int, voice pipeline_type.MediaResult) (audio_service.Waveform, bool) {
	if voice.Available() {
		w, err := audio_service.ReadWAV(voice.Path)
		if err == nil && w.Frames() > 0 {
			duration := max(a.opts.DefaultClipSeconds, w.Duration())
			return ApplyGain(FitToDuration(w, duration), NarrationGain), true
		}
		if err != nil {
			a.logger.Warn("Narration unreadable, using silence",
				slog.Int("scene", i+1),
				slog.String("error", err.Error()))
		}
	}
	return audio_service.Silence(a.opts.DefaultClipSeconds, stereo), false
}

// soundtrack joins the narration tracks and lays the music under them.
func (a *Assembler) soundtrack(tracks []audio_service.Waveform, music pipeline_type.MediaResult) audio_service.Waveform {
	narration := Concatenate(tracks...)
	if !music.Available() {
		return narration
	}

	bed, err := audio_service.ReadWAV(music.Path)
	if err != nil {
		a.logger.Warn("Background music unreadable, narration only",
			slog.String("path", music.Path),
			slog.String("error", err.Error()))
		return narration
	}
	return MixMusic(narration, bed, a.opts.MusicVolume)
}

func (a *Assembler) renderTitle(title, workDir string) (string, error) {
	imagePath := filepath.Join(workDir, "title.png")
	if err := image_service.SavePNG(RenderTitleCard(title, a.opts.Width, a.opts.Height), imagePath); err != nil {
		return "", err
	}

	clipPath := filepath.Join(workDir, "title.mp4")
	err := a.executor.RenderClip(ClipSpec{
		ImagePath:  imagePath,
		OutputPath: clipPath,
		Duration:   TitleSeconds,
		FadeOut:    titleFadeSeconds,
		Width:      a.opts.Width,
		Height:     a.opts.Height,
		FPS:        a.opts.FPS,
	})
	if err != nil {
		return "", err
	}
	return clipPath, nil
}

func mediaAt(results []pipeline_type.MediaResult, i int) pipeline_type.MediaResult {
	if i < len(results) {
		return results[i]
	}
	return pipeline_type.NoMedia()
}
