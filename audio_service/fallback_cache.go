package audio_service

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// seeded on first use when the cache holds no WAV file
var fallbackThemes = []string{"adventure", "mysterious", "happy", "sad"}

// FallbackCache keeps pre-rendered music keyed by theme word.
type FallbackCache struct {
	logger   *slog.Logger
	dir      string
	synth    *MusicSynthesizer
	duration float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewFallbackCache(logger *slog.Logger, dir string, synth *MusicSynthesizer, duration float64, rng *rand.Rand) *FallbackCache {
	if duration <= 0 {
		duration = DefaultMusicSeconds
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &FallbackCache{
		logger:   logger,
		dir:      dir,
		synth:    synth,
		duration: duration,
		rng:      rng,
	}
}

func (c *FallbackCache) files() ([]string, error) {
	return filepath.Glob(filepath.Join(c.dir, "*.wav"))
}

// ensure populates an empty cache with one file per fallback theme.
func (c *FallbackCache) ensure() error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create fallback directory: %w", err)
	}
	files, err := c.files()
	if err != nil {
		return err
	}
	if len(files) > 0 {
		return nil
	}

	for _, theme := range fallbackThemes {
		path := filepath.Join(c.dir, theme+".wav")
		if err := WriteWAV(path, c.synth.Synthesize(theme, c.duration)); err != nil {
			return fmt.Errorf("failed to seed fallback %s: %w", theme, err)
		}
	}
	c.logger.Info("Fallback music cache created", slog.String("dir", c.dir))
	return nil
}

// Choose returns a cached file for theme. matched is false when no file
// name relates to the theme and an arbitrary file was picked.
func (c *FallbackCache) Choose(theme string) (path string, matched bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensure(); err != nil {
		return "", false, err
	}
	files, err := c.files()
	if err != nil {
		return "", false, err
	}
	if len(files) == 0 {
		return "", false, fmt.Errorf("fallback cache %s is empty", c.dir)
	}

	lower := strings.ToLower(theme)
	words := strings.Fields(lower)
	var matches []string
	for _, f := range files {
		stem := strings.ToLower(strings.TrimSuffix(filepath.Base(f), filepath.Ext(f)))
		if strings.Contains(lower, stem) || anyContains(words, stem) {
			matches = append(matches, f)
		}
	}

	if len(matches) > 0 {
		return matches[c.rng.Intn(len(matches))], true, nil
	}
	return files[c.rng.Intn(len(files))], false, nil
}

func anyContains(words []string, sub string) bool {
	for _, w := range words {
		if strings.Contains(w, sub) {
			return true
		}
	}
	return false
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
