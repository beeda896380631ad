package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const filePrefix = "storystudio"

// dailyFile is shared by a handler and every handler derived from it.
type dailyFile struct {
	mutex           sync.Mutex
	logDir          string
	currentFile     *os.File
	currentFileName string
	now             func() time.Time
}

type DailyFileHandler struct {
	file           *dailyFile
	attrs          string
	defaultHandler slog.Handler
}

// NewDailyFileHandler writes records to LOG_DIR/storystudio-YYYY-MM-DD.log
// and mirrors them to stdout.
func NewDailyFileHandler(logDir string, opts *slog.HandlerOptions) (*DailyFileHandler, error) {
	return newDailyFileHandler(logDir, os.Stdout, opts, time.Now)
}

func newDailyFileHandler(logDir string, stdout io.Writer, opts *slog.HandlerOptions, now func() time.Time) (*DailyFileHandler, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	h := &DailyFileHandler{
		file:           &dailyFile{logDir: logDir, now: now},
		defaultHandler: slog.NewTextHandler(stdout, opts),
	}

	if err := h.file.rotateIfNeeded(); err != nil {
		return nil, err
	}

	return h, nil
}

func fileNameFor(t time.Time) string {
	return fmt.Sprintf("%s-%s.log", filePrefix, t.Format("2006-01-02"))
}

// rotateIfNeeded must be called with the mutex held.
func (f *dailyFile) rotateIfNeeded() error {
	fileName := fileNameFor(f.now())
	if fileName == f.currentFileName {
		return nil
	}

	if f.currentFile != nil {
		f.currentFile.Close()
	}

	file, err := os.OpenFile(filepath.Join(f.logDir, fileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		f.currentFile = nil
		f.currentFileName = ""
		return fmt.Errorf("failed to open log file: %w", err)
	}

	f.currentFile = file
	f.currentFileName = fileName
	return nil
}

func (f *dailyFile) write(line string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if err := f.rotateIfNeeded(); err != nil {
		return err
	}
	_, err := f.currentFile.WriteString(line)
	return err
}

func (f *dailyFile) Close() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.currentFile == nil {
		return nil
	}
	err := f.currentFile.Close()
	f.currentFile = nil
	f.currentFileName = ""
	return err
}

func (h *DailyFileHandler) Handle(ctx context.Context, r slog.Record) error {
	timeStr := r.Time.Format("2006/01/02 15:04:05.000")
	level := r.Level.String()

	attrs := h.attrs
	r.Attrs(func(a slog.Attr) bool {
		attrs += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		return true
	})

	logLine := fmt.Sprintf("[%s] %-5s %s%s\n", timeStr, level, r.Message, attrs)

	err := h.file.write(logLine)

	if err2 := h.defaultHandler.Handle(ctx, r); err2 != nil {
		if err == nil {
			err = err2
		}
	}

	return err
}

func (h *DailyFileHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := h.attrs
	for _, a := range attrs {
		prefix += fmt.Sprintf(" %s=%v", a.Key, a.Value)
	}
	return &DailyFileHandler{
		file:           h.file,
		attrs:          prefix,
		defaultHandler: h.defaultHandler.WithAttrs(attrs),
	}
}

func (h *DailyFileHandler) WithGroup(name string) slog.Handler {
	return &DailyFileHandler{
		file:           h.file,
		attrs:          h.attrs,
		defaultHandler: h.defaultHandler.WithGroup(name),
	}
}

func (h *DailyFileHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.defaultHandler.Enabled(ctx, level)
}

// Close closes the current log file.
func (h *DailyFileHandler) Close() error {
	return h.file.Close()
}
