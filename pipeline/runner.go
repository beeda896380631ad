package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/serisow/storystudio/pipeline_type"
)

// RunRecorder persists finished runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, result ExecutionResult) error
}

// Notifier tells an operator that a run failed.
type Notifier interface {
	NotifyFailure(ctx context.Context, executionID, message string) error
}

// Runner executes runs in the background, one at a time, and keeps their
// results in the execution store.
type Runner struct {
	logger   *slog.Logger
	service  *Service
	store    *ExecutionStore
	recorder RunRecorder
	notifier Notifier
	mu       sync.Mutex
	wg       sync.WaitGroup
	newID    func() string
}

func NewRunner(logger *slog.Logger, service *Service, store *ExecutionStore, recorder RunRecorder, notifier Notifier) *Runner {
	return &Runner{
		logger:   logger,
		service:  service,
		store:    store,
		recorder: recorder,
		notifier: notifier,
		newID:    uuid.New().String,
	}
}

func (r *Runner) Store() *ExecutionStore {
	return r.store
}

// SubmitStory starts a full story-to-video run and returns its execution ID.
func (r *Runner) SubmitStory(story, title string, sceneCount int) string {
	execID := r.newID()
	r.store.Start(execID, KindStory, title)

	state := pipeline_type.NewState(execID, story, sceneCount)
	state.Title = title
	r.submit(execID, func(ctx context.Context) (pipeline_type.State, error) {
		return r.service.StoryState(ctx, state)
	})
	return execID
}

// SubmitMedia starts media synthesis for an approved scene list.
func (r *Runner) SubmitMedia(scenes []pipeline_type.Scene, title string) string {
	execID := r.newID()
	r.store.Start(execID, KindMedia, title)

	state := pipeline_type.NewState(execID, "", len(scenes)).WithScenes(scenes, "")
	state.Title = title
	r.submit(execID, func(ctx context.Context) (pipeline_type.State, error) {
		return r.service.MediaState(ctx, state)
	})
	return execID
}

// RunStory executes a story run synchronously.
func (r *Runner) RunStory(ctx context.Context, story, title string, sceneCount int) ExecutionResult {
	execID := r.newID()
	r.store.Start(execID, KindStory, title)

	state := pipeline_type.NewState(execID, story, sceneCount)
	state.Title = title
	return r.execute(ctx, execID, func(ctx context.Context) (pipeline_type.State, error) {
		return r.service.StoryState(ctx, state)
	})
}

// RunMedia executes media synthesis synchronously.
func (r *Runner) RunMedia(ctx context.Context, scenes []pipeline_type.Scene, title string) ExecutionResult {
	execID := r.newID()
	r.store.Start(execID, KindMedia, title)

	state := pipeline_type.NewState(execID, "", len(scenes)).WithScenes(scenes, "")
	state.Title = title
	return r.execute(ctx, execID, func(ctx context.Context) (pipeline_type.State, error) {
		return r.service.MediaState(ctx, state)
	})
}

// SegmentN writes the script for a story. It waits for any run in progress
// since both share the output directory.
func (r *Runner) SegmentN(ctx context.Context, story string, sceneCount int) (string, []pipeline_type.Scene) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.service.SegmentN(ctx, story, sceneCount)
}

// Wait blocks until every submitted run has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) submit(execID string, run func(ctx context.Context) (pipeline_type.State, error)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.execute(context.Background(), execID, run)
	}()
}

func (r *Runner) execute(ctx context.Context, execID string, run func(ctx context.Context) (pipeline_type.State, error)) (result ExecutionResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Run panicked",
				slog.String("execution_id", execID),
				slog.String("panic", fmt.Sprint(rec)))
			result = r.finish(ctx, execID, pipeline_type.NewState(execID, "", 0), fmt.Errorf("run panicked: %v", rec))
		}
	}()

	r.logger.Info("Run started", slog.String("execution_id", execID))
	state, err := run(ctx)
	return r.finish(ctx, execID, state, err)
}

func (r *Runner) finish(ctx context.Context, execID string, state pipeline_type.State, runErr error) ExecutionResult {
	result := r.store.Finish(execID, state, runErr)

	if r.recorder != nil {
		if err := r.recorder.RecordRun(ctx, result); err != nil {
			r.logger.Warn("Run history not recorded",
				slog.String("execution_id", execID),
				slog.String("error", err.Error()))
		}
	}

	if result.Status == StatusFailed {
		r.logger.Error("Run failed",
			slog.String("execution_id", execID),
			slog.String("error", result.ErrorMessage))
		if r.notifier != nil {
			if err := r.notifier.NotifyFailure(ctx, execID, result.ErrorMessage); err != nil {
				r.logger.Warn("Failure notification not sent",
					slog.String("execution_id", execID),
					slog.String("error", err.Error()))
			}
		}
		return result
	}

	r.logger.Info("Run completed",
		slog.String("execution_id", execID),
		slog.String("video", result.Outputs.Video))
	return result
}
