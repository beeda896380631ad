package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/serisow/storystudio/media_step"
	"github.com/serisow/storystudio/pipeline"
	"github.com/serisow/storystudio/pipeline_type"
	"github.com/serisow/storystudio/plugin_registry"
	"github.com/serisow/storystudio/scene_service"
	"github.com/serisow/storystudio/step"
	"github.com/serisow/storystudio/video"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockMediaStep fills one media slot of the state and records the order it
// was called in.
type MockMediaStep struct {
	stepType string
	calls    *[]string
	mu       *sync.Mutex
	apply    func(state pipeline_type.State) (pipeline_type.State, error)
}

func (s *MockMediaStep) Execute(ctx context.Context, state pipeline_type.State) (pipeline_type.State, error) {
	s.mu.Lock()
	*s.calls = append(*s.calls, s.stepType)
	s.mu.Unlock()
	return s.apply(state)
}

func (s *MockMediaStep) GetType() string {
	return s.stepType
}

type MockRecorder struct {
	mu      sync.Mutex
	results []pipeline.ExecutionResult
}

func (m *MockRecorder) RecordRun(ctx context.Context, result pipeline.ExecutionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
	return nil
}

type MockNotifier struct {
	mu       sync.Mutex
	messages []string
	Error    error
}

func (m *MockNotifier) NotifyFailure(ctx context.Context, executionID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, executionID+": "+message)
	return m.Error
}

type testEnv struct {
	layout   pipeline_type.Layout
	registry *plugin_registry.PluginRegistry
	service  *pipeline.Service
	calls    []string
	mu       sync.Mutex
	noVideo  bool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		layout:   pipeline_type.NewLayout(t.TempDir()),
		registry: plugin_registry.NewPluginRegistry(),
	}
	logger := testLogger()

	scenes := scene_service.NewSceneService(logger, nil, nil)
	env.registry.RegisterStepType(media_step.SegmentStepType, func() step.Step {
		return media_step.NewSegmentStep(logger, scenes, env.layout)
	})

	env.register(media_step.ImageStepType, func(state pipeline_type.State) (pipeline_type.State, error) {
		images := make([]pipeline_type.MediaResult, len(state.Scenes))
		for i := range images {
			images[i] = pipeline_type.ProducedAt(filepath.Join(env.layout.ImagesDir(), "scene.png"))
		}
		return state.WithImages(images), nil
	})
	env.register(media_step.VoiceStepType, func(state pipeline_type.State) (pipeline_type.State, error) {
		voice := make([]pipeline_type.MediaResult, len(state.Scenes))
		return state.WithVoice(voice), nil
	})
	env.register(media_step.MusicStepType, func(state pipeline_type.State) (pipeline_type.State, error) {
		return state.WithMusic(pipeline_type.PlaceholderAt(filepath.Join(env.layout.MusicDir(), "bg_music.wav"))), nil
	})
	env.register(media_step.VideoStepType, func(state pipeline_type.State) (pipeline_type.State, error) {
		if env.noVideo {
			return state.WithVideo(pipeline_type.NoMedia()), media_step.ErrNoVideo
		}
		if err := os.WriteFile(env.layout.VideoPath(), []byte("video"), 0644); err != nil {
			return state, err
		}
		return state.WithVideo(pipeline_type.ProducedAt(env.layout.VideoPath())), nil
	})

	cleanup := video.NewCleanupService(logger, env.layout.Root, 7)
	env.service = pipeline.NewService(logger, env.registry, cleanup, env.layout, 3)
	return env
}

func (e *testEnv) register(stepType string, apply func(pipeline_type.State) (pipeline_type.State, error)) {
	e.registry.RegisterStepType(stepType, func() step.Step {
		return &MockMediaStep{stepType: stepType, calls: &e.calls, mu: &e.mu, apply: apply}
	})
}

const testStory = `The keeper climbed the lighthouse stairs as the storm rolled in.

Far below, a small boat fought the waves near the rocks.

At dawn the sea was calm and the boat rested safely in the harbour.`

func TestProcessStory(t *testing.T) {
	env := newTestEnv(t)

	outputs := env.service.ProcessStory(context.Background(), testStory)

	if outputs.Video != env.layout.VideoPath() {
		t.Errorf("expected video at %s, got %q", env.layout.VideoPath(), outputs.Video)
	}
	if outputs.Story != env.layout.StoryPath() || outputs.Scenes != env.layout.ScenesPath() {
		t.Errorf("unexpected script paths: %+v", outputs)
	}
	if len(outputs.Images) != 3 {
		t.Errorf("expected 3 images, got %d", len(outputs.Images))
	}
	if len(outputs.Voice) != 0 {
		t.Errorf("absent narration should not be listed, got %v", outputs.Voice)
	}

	wantOrder := []string{
		media_step.ImageStepType,
		media_step.VoiceStepType,
		media_step.MusicStepType,
		media_step.VideoStepType,
	}
	if strings.Join(env.calls, ",") != strings.Join(wantOrder, ",") {
		t.Errorf("media steps ran as %v, want %v", env.calls, wantOrder)
	}

	story, err := os.ReadFile(env.layout.StoryPath())
	if err != nil || string(story) != testStory {
		t.Errorf("story.txt not saved verbatim: %v", err)
	}
	saved, err := media_step.LoadScenes(env.layout.ScenesPath())
	if err != nil {
		t.Fatalf("LoadScenes: %v", err)
	}
	if len(saved) != 3 {
		t.Errorf("expected 3 saved scenes, got %d", len(saved))
	}
}

func TestSegmentOnly(t *testing.T) {
	env := newTestEnv(t)

	scenesPath, scenes := env.service.Segment(context.Background(), testStory)
	if scenesPath != env.layout.ScenesPath() {
		t.Errorf("unexpected scenes path %q", scenesPath)
	}
	if len(scenes) != 3 {
		t.Fatalf("expected 3 scenes, got %d", len(scenes))
	}
	for i, s := range scenes {
		if !pipeline_type.IsKnownTone(s.Tone) {
			t.Errorf("scene %d has tone %q outside the vocabulary", i+1, s.Tone)
		}
	}
	if len(env.calls) != 0 {
		t.Errorf("segment should not run media steps, ran %v", env.calls)
	}
}

func TestSynthesizeMedia_CleansPreviousRun(t *testing.T) {
	env := newTestEnv(t)

	stale := filepath.Join(env.layout.ImagesDir(), "scene_9.png")
	if err := os.MkdirAll(env.layout.ImagesDir(), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	scenes := []pipeline_type.Scene{
		{Description: "A harbour at dawn", Narration: "The boat was safe.", Tone: "Peaceful"},
		{Description: "A storm", Narration: "Waves crashed.", Tone: "unknown"},
	}
	outputs := env.service.SynthesizeMedia(context.Background(), scenes)

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("expected stale image to be removed, stat err = %v", err)
	}
	if outputs.Scenes != env.layout.ScenesPath() {
		t.Errorf("approved scenes not saved, got %q", outputs.Scenes)
	}
	saved, err := media_step.LoadScenes(outputs.Scenes)
	if err != nil {
		t.Fatal(err)
	}
	if saved[0].Tone != pipeline_type.TonePeaceful || saved[1].Tone != pipeline_type.ToneNeutral {
		t.Errorf("tones not normalised: %q, %q", saved[0].Tone, saved[1].Tone)
	}
	if outputs.Video == "" {
		t.Error("expected a video path")
	}
}

func TestRun_StopsAtFailingStep(t *testing.T) {
	env := newTestEnv(t)
	env.noVideo = true

	state, err := env.service.StoryState(context.Background(), pipeline_type.NewState("exec-1", testStory, 2))
	if !errors.Is(err, media_step.ErrNoVideo) {
		t.Fatalf("expected ErrNoVideo, got %v", err)
	}

	last := state.Stages[len(state.Stages)-1]
	if last.Name != media_step.VideoStepType || last.Status != pipeline.StageFailed {
		t.Errorf("unexpected last stage %+v", last)
	}
	if len(state.Stages) != 5 {
		t.Errorf("expected 5 stage records, got %d", len(state.Stages))
	}
}

func TestRun_Cancelled(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state, err := env.service.Run(ctx, pipeline_type.NewState("exec-1", testStory, 2), pipeline.MediaSteps...)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(state.Stages) != 0 || len(env.calls) != 0 {
		t.Errorf("no step should have run: %v", env.calls)
	}
}

func TestRun_UnknownStep(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Run(context.Background(), pipeline_type.NewState("", "", 1), "publish")
	if err == nil || err.Error() != "unknown step type: publish" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestRunner(t *testing.T) {
	tests := []struct {
		name       string
		noVideo    bool
		notifyErr  error
		wantStatus pipeline.ExecutionStatus
		wantNotice bool
	}{
		{name: "completed", wantStatus: pipeline.StatusCompleted},
		{name: "failed", noVideo: true, wantStatus: pipeline.StatusFailed, wantNotice: true},
		{name: "notifier error", noVideo: true, notifyErr: errors.New("sms down"), wantStatus: pipeline.StatusFailed, wantNotice: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.noVideo = tt.noVideo

			recorder := &MockRecorder{}
			notifier := &MockNotifier{Error: tt.notifyErr}
			store := pipeline.NewExecutionStore(testLogger(), nil)
			runner := pipeline.NewRunner(testLogger(), env.service, store, recorder, notifier)

			execID := runner.SubmitStory(testStory, "The Lighthouse", 2)
			if execID == "" {
				t.Fatal("expected an execution id")
			}
			runner.Wait()

			result, ok := store.Get(execID)
			if !ok {
				t.Fatal("result not stored")
			}
			if result.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", result.Status, tt.wantStatus)
			}
			if result.Title != "The Lighthouse" || result.Kind != pipeline.KindStory {
				t.Errorf("unexpected result fields %+v", result)
			}
			if result.Summary == nil || result.Summary.Scenes != 2 {
				t.Errorf("unexpected summary %+v", result.Summary)
			}
			if len(recorder.results) != 1 || recorder.results[0].ExecutionID != execID {
				t.Errorf("run not recorded: %+v", recorder.results)
			}
			if got := len(notifier.messages) > 0; got != tt.wantNotice {
				t.Errorf("notified = %v, want %v", got, tt.wantNotice)
			}
		})
	}
}

func TestRunner_SubmitMediaSerialised(t *testing.T) {
	env := newTestEnv(t)
	store := pipeline.NewExecutionStore(testLogger(), nil)
	runner := pipeline.NewRunner(testLogger(), env.service, store, nil, nil)

	scenes := []pipeline_type.Scene{{Description: "A harbour", Narration: "Calm water."}}
	first := runner.SubmitMedia(scenes, "")
	second := runner.SubmitMedia(scenes, "")
	runner.Wait()

	for _, id := range []string{first, second} {
		result, ok := store.Get(id)
		if !ok || result.Status != pipeline.StatusCompleted {
			t.Errorf("run %s: %+v", id, result)
		}
	}
	if len(env.calls) != 2*len(pipeline.MediaSteps) {
		t.Errorf("expected %d step calls, got %d", 2*len(pipeline.MediaSteps), len(env.calls))
	}
	for i := 0; i < len(env.calls); i += len(pipeline.MediaSteps) {
		if env.calls[i] != media_step.ImageStepType {
			t.Errorf("runs interleaved: %v", env.calls)
			break
		}
	}
}

func TestRunner_RunStorySync(t *testing.T) {
	env := newTestEnv(t)
	store := pipeline.NewExecutionStore(testLogger(), nil)
	runner := pipeline.NewRunner(testLogger(), env.service, store, nil, nil)

	result := runner.RunStory(context.Background(), testStory, "", 0)
	if result.Status != pipeline.StatusCompleted {
		t.Fatalf("unexpected status %s: %s", result.Status, result.ErrorMessage)
	}
	if result.Outputs == nil || result.Outputs.Video != env.layout.VideoPath() {
		t.Errorf("unexpected outputs %+v", result.Outputs)
	}
}

func TestRunner_SegmentWaitsForRun(t *testing.T) {
	env := newTestEnv(t)
	started := make(chan struct{})
	release := make(chan struct{})
	env.register(media_step.ImageStepType, func(state pipeline_type.State) (pipeline_type.State, error) {
		close(started)
		<-release
		return state.WithImages(make([]pipeline_type.MediaResult, len(state.Scenes))), nil
	})

	store := pipeline.NewExecutionStore(testLogger(), nil)
	runner := pipeline.NewRunner(testLogger(), env.service, store, nil, nil)

	runner.SubmitMedia([]pipeline_type.Scene{{Description: "A harbour", Narration: "Calm water."}}, "")
	<-started

	segmented := make(chan []pipeline_type.Scene)
	go func() {
		_, scenes := runner.SegmentN(context.Background(), testStory, 2)
		segmented <- scenes
	}()

	select {
	case <-segmented:
		t.Fatal("segmentation ran while a run held the output directory")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	scenes := <-segmented
	runner.Wait()

	if len(scenes) != 2 {
		t.Errorf("expected 2 scenes, got %d", len(scenes))
	}
	if _, err := os.Stat(env.layout.ScenesPath()); err != nil {
		t.Errorf("scenes.json not written: %v", err)
	}
}
