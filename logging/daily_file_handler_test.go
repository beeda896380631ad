package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func TestDailyFileHandler_WritesAndRotates(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)}
	var stdout bytes.Buffer

	h, err := newDailyFileHandler(dir, &stdout, nil, clock.Now)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	logger := slog.New(h).With(slog.String("execution_id", "exec-1"))
	logger.Info("Run started", slog.Int("scenes", 3))

	clock.Set(time.Date(2024, 3, 10, 0, 1, 0, 0, time.UTC))
	logger.Warn("Voice backend failed")

	first, err := os.ReadFile(filepath.Join(dir, "storystudio-2024-03-09.log"))
	if err != nil {
		t.Fatalf("first day's file missing: %v", err)
	}
	if !strings.Contains(string(first), "Run started execution_id=exec-1 scenes=3") {
		t.Errorf("unexpected first log %q", first)
	}

	second, err := os.ReadFile(filepath.Join(dir, "storystudio-2024-03-10.log"))
	if err != nil {
		t.Fatalf("rotated file missing: %v", err)
	}
	if !strings.Contains(string(second), "WARN  Voice backend failed") {
		t.Errorf("unexpected second log %q", second)
	}
	if strings.Contains(string(second), "Run started") {
		t.Error("first record leaked into the rotated file")
	}

	if !strings.Contains(stdout.String(), "Run started") || !strings.Contains(stdout.String(), "Voice backend failed") {
		t.Errorf("records not mirrored to stdout: %q", stdout.String())
	}
}

func TestDailyFileHandler_EnabledFollowsLevel(t *testing.T) {
	h, err := newDailyFileHandler(t.TempDir(), &bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}, time.Now)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}
