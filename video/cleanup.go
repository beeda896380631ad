package video

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// runArtifactPatterns are the files a new run overwrites, relative to the
// output directory.
var runArtifactPatterns = []string{
	"*.json",
	filepath.Join("images", "scene_*.png"),
	filepath.Join("voice", "scene_*"),
	"*.mp4",
}

// CleanupService removes stale run artifacts and old videos.
type CleanupService struct {
	logger        *slog.Logger
	outputDir     string
	retentionDays int
	now           func() time.Time
}

func NewCleanupService(logger *slog.Logger, outputDir string, retentionDays int) *CleanupService {
	return &CleanupService{
		logger:        logger,
		outputDir:     outputDir,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

// CleanRunArtifacts deletes the previous run's scene list, images, voice
// tracks and videos. Missing files are ignored. It returns how many files
// were removed.
func (s *CleanupService) CleanRunArtifacts() int {
	removed := 0
	for _, pattern := range runArtifactPatterns {
		matches, err := filepath.Glob(filepath.Join(s.outputDir, pattern))
		if err != nil {
			continue
		}
		for _, path := range matches {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				s.logger.Warn("Failed to remove previous artifact",
					slog.String("path", path),
					slog.String("error", err.Error()))
				continue
			}
			removed++
		}
	}

	s.logger.Debug("Previous run artifacts removed", slog.Int("count", removed))
	return removed
}

// StartCleanupSchedule begins regular cleanup of old video files until ctx
// is done.
func (s *CleanupService) StartCleanupSchedule(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.PerformCleanup()
			}
		}
	}()

	s.logger.Info("Video cleanup service started",
		slog.Int("retention_days", s.retentionDays),
		slog.Duration("interval", interval))
}

// PerformCleanup removes videos older than the retention period
func (s *CleanupService) PerformCleanup() {
	if s.retentionDays <= 0 {
		return
	}
	cutoffTime := s.now().AddDate(0, 0, -s.retentionDays)

	err := filepath.WalkDir(s.outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		switch filepath.Ext(path) {
		case ".mp4", ".mov", ".webm":
		default:
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoffTime) {
			s.logger.Info("Removing old video file",
				slog.String("path", path),
				slog.Time("modified_time", info.ModTime()),
				slog.Time("cutoff_time", cutoffTime))

			if err := os.Remove(path); err != nil {
				s.logger.Error("Failed to remove video file",
					slog.String("path", path),
					slog.String("error", err.Error()))
			}
		}

		return nil
	})

	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Error("Error during video cleanup",
			slog.String("error", err.Error()))
	}
}
