package video

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// FFmpegExecutorImpl implements the FFmpegExecutor interface
type FFmpegExecutorImpl struct {
	logger *slog.Logger
}

// NewFFmpegExecutor creates a new FFmpeg executor instance
func NewFFmpegExecutor(logger *slog.Logger) FFmpegExecutor {
	return &FFmpegExecutorImpl{logger: logger}
}

// GetDuration gets the duration of a media file using ffprobe
func (fe *FFmpegExecutorImpl) GetDuration(filePath string) (float64, error) {
	cmd := exec.Command("ffprobe", "-i", filePath, "-show_entries", "format=duration", "-v", "quiet", "-of", "csv=p=0")
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe execution failed: %w", err)
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return duration, nil
}

// RenderClip turns a still image into a silent H.264 clip with fades and an
// optional caption strip.
func (fe *FFmpegExecutorImpl) RenderClip(spec ClipSpec) error {
	args := []string{"-y",
		"-loop", "1", "-framerate", strconv.Itoa(spec.FPS),
		"-t", formatSeconds(spec.Duration), "-i", spec.ImagePath,
	}
	if spec.OverlayPath != "" {
		args = append(args, "-loop", "1", "-framerate", strconv.Itoa(spec.FPS),
			"-t", formatSeconds(spec.Duration), "-i", spec.OverlayPath)
	}

	args = append(args,
		"-filter_complex", clipFilter(spec),
		"-map", "[v]",
		"-r", strconv.Itoa(spec.FPS),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-an",
		spec.OutputPath)

	return fe.run(args, spec.OutputPath)
}

// clipFilter scales the image into the frame, overlays the caption and
// applies the fades.
func clipFilter(spec ClipSpec) string {
	filter := fmt.Sprintf(
		"[0:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
		spec.Width, spec.Height, spec.Width, spec.Height)

	if spec.OverlayPath != "" {
		filter += "[base];[base][1:v]overlay=0:H-h"
	}

	fadeIn, fadeOut := clampFades(spec.Duration, spec.FadeIn, spec.FadeOut)
	if fadeIn > 0 {
		filter += fmt.Sprintf(",fade=t=in:st=0:d=%s", formatSeconds(fadeIn))
	}
	if fadeOut > 0 {
		filter += fmt.Sprintf(",fade=t=out:st=%s:d=%s", formatSeconds(spec.Duration-fadeOut), formatSeconds(fadeOut))
	}

	return filter + ",format=yuv420p[v]"
}

// clampFades keeps both fades inside the clip.
func clampFades(duration, fadeIn, fadeOut float64) (float64, float64) {
	if total := fadeIn + fadeOut; total > duration && total > 0 {
		scale := duration / total
		return fadeIn * scale, fadeOut * scale
	}
	return fadeIn, fadeOut
}

// Concat joins clips that share codec and frame size without re-encoding.
func (fe *FFmpegExecutorImpl) Concat(clipPaths []string, outputPath string) error {
	if len(clipPaths) == 0 {
		return fmt.Errorf("no clips to concatenate")
	}

	listPath := outputPath + ".txt"
	if err := writeConcatList(listPath, clipPaths); err != nil {
		return err
	}
	defer os.Remove(listPath)

	args := []string{"-y", "-f", "concat", "-safe", "0", "-i", listPath, "-c", "copy", outputPath}
	return fe.run(args, outputPath)
}

func writeConcatList(listPath string, clipPaths []string) error {
	var b strings.Builder
	for _, p := range clipPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve clip path: %w", err)
		}
		fmt.Fprintf(&b, "file '%s'\n", escapeConcatPath(abs))
	}
	if err := os.WriteFile(listPath, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	return nil
}

// escapeConcatPath quotes a path for the concat demuxer, where a single
// quote has to leave and re-enter the quoted string.
func escapeConcatPath(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}

// Mux attaches the soundtrack, encoding it to AAC.
func (fe *FFmpegExecutorImpl) Mux(spec MuxSpec) error {
	args := []string{"-y",
		"-i", spec.VideoPath,
		"-i", spec.AudioPath,
		"-map", "0:v", "-map", "1:a",
		"-c:v", "copy",
		"-c:a", "aac", "-b:a", "192k",
		"-movflags", "+faststart",
		"-shortest",
		spec.OutputPath,
	}
	return fe.run(args, spec.OutputPath)
}

func (fe *FFmpegExecutorImpl) run(args []string, outputPath string) error {
	fe.logger.Debug("Executing FFmpeg command", slog.Any("args", args))

	cmd := exec.Command("ffmpeg", args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to get stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start FFmpeg: %w", err)
	}

	stderrOutput, _ := io.ReadAll(stderr)

	if err := cmd.Wait(); err != nil {
		fe.logger.Error("FFmpeg execution failed",
			slog.String("error", err.Error()),
			slog.String("stderr", string(stderrOutput)))
		return fmt.Errorf("FFmpeg execution failed: %w", err)
	}

	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		return fmt.Errorf("FFmpeg did not create an output file")
	}

	return nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
