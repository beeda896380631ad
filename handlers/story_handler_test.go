package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/serisow/storystudio/handlers"
	"github.com/serisow/storystudio/pipeline"
	"github.com/serisow/storystudio/pipeline_type"
	"github.com/serisow/storystudio/server"
)

type MockRunner struct {
	story      string
	title      string
	sceneCount int
	scenes     []pipeline_type.Scene
}

func (m *MockRunner) SubmitStory(story, title string, sceneCount int) string {
	m.story, m.title, m.sceneCount = story, title, sceneCount
	return "exec-story"
}

func (m *MockRunner) SubmitMedia(scenes []pipeline_type.Scene, title string) string {
	m.scenes, m.title = scenes, title
	return "exec-media"
}

type MockScriptWriter struct {
	sceneCount int
}

func (m *MockScriptWriter) SegmentN(ctx context.Context, story string, sceneCount int) (string, []pipeline_type.Scene) {
	m.sceneCount = sceneCount
	return "outputs/scenes.json", []pipeline_type.Scene{{Description: "A scene", Narration: story, Tone: pipeline_type.ToneNeutral}}
}

type MockRunLister struct {
	runs []pipeline.ExecutionResult
	err  error
}

func (m *MockRunLister) RecentRuns(ctx context.Context, limit int) ([]pipeline.ExecutionResult, error) {
	return m.runs, m.err
}

type MockLoader struct {
	text string
	err  error
}

func (m *MockLoader) Load(filename string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.text + string(data), nil
}

type testServer struct {
	handler http.Handler
	runner  *MockRunner
	script  *MockScriptWriter
	store   *pipeline.ExecutionStore
}

func newTestServer(history handlers.RunLister, loader handlers.DocumentLoader) *testServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := &testServer{
		runner: &MockRunner{},
		script: &MockScriptWriter{},
		store:  pipeline.NewExecutionStore(logger, nil),
	}
	h := handlers.NewStoryHandler(logger, ts.runner, ts.script, ts.store, history, loader)
	ts.handler = server.SetupRoutes(h)
	return ts
}

func (ts *testServer) do(method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestSubmitStory(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"story":"Once upon a time.","title":"Tale","scene_count":4}`, http.StatusAccepted},
		{"empty story", `{"story":"   "}`, http.StatusBadRequest},
		{"invalid json", `{"story":`, http.StatusBadRequest},
		{"too many scenes", `{"story":"x","scene_count":50}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(nil, &MockLoader{})
			rr := ts.do(http.MethodPost, "/stories", "application/json", strings.NewReader(tt.body))
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantStatus != http.StatusAccepted {
				return
			}

			var resp map[string]string
			decodeBody(t, rr, &resp)
			if resp["execution_id"] != "exec-story" {
				t.Errorf("unexpected response %v", resp)
			}
			if ts.runner.story != "Once upon a time." || ts.runner.title != "Tale" || ts.runner.sceneCount != 4 {
				t.Errorf("runner got %+v", ts.runner)
			}
		})
	}
}

func uploadBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(content))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func TestUploadStory(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		ts := newTestServer(nil, &MockLoader{text: "loaded: "})
		body, contentType := uploadBody(t, "story.txt", "The tale.", map[string]string{"title": "Tale", "scene_count": "2"})

		rr := ts.do(http.MethodPost, "/stories/upload", contentType, body)
		if rr.Code != http.StatusAccepted {
			t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
		}
		if ts.runner.story != "loaded: The tale." || ts.runner.sceneCount != 2 || ts.runner.title != "Tale" {
			t.Errorf("runner got %+v", ts.runner)
		}
	})

	t.Run("extraction fails", func(t *testing.T) {
		ts := newTestServer(nil, &MockLoader{err: errors.New("unsupported story format: .exe")})
		body, contentType := uploadBody(t, "story.exe", "x", nil)

		rr := ts.do(http.MethodPost, "/stories/upload", contentType, body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rr.Code)
		}
		if ts.runner.story != "" {
			t.Error("no run should start")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		ts := newTestServer(nil, &MockLoader{})
		rr := ts.do(http.MethodPost, "/stories/upload", "application/json", strings.NewReader(`{}`))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rr.Code)
		}
	})

	t.Run("bad scene count", func(t *testing.T) {
		ts := newTestServer(nil, &MockLoader{})
		body, contentType := uploadBody(t, "story.txt", "x", map[string]string{"scene_count": "many"})
		rr := ts.do(http.MethodPost, "/stories/upload", contentType, body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rr.Code)
		}
	})
}

func TestSegmentStory(t *testing.T) {
	ts := newTestServer(nil, &MockLoader{})
	rr := ts.do(http.MethodPost, "/stories/segment", "application/json", strings.NewReader(`{"story":"A short tale.","scene_count":2}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		ScenesPath string                `json:"scenes_path"`
		Scenes     []pipeline_type.Scene `json:"scenes"`
	}
	decodeBody(t, rr, &resp)
	if resp.ScenesPath != "outputs/scenes.json" || len(resp.Scenes) != 1 || resp.Scenes[0].Narration != "A short tale." {
		t.Errorf("unexpected response %+v", resp)
	}
	if ts.script.sceneCount != 2 {
		t.Errorf("scene count not passed through: %d", ts.script.sceneCount)
	}
}

func TestSubmitMedia(t *testing.T) {
	ts := newTestServer(nil, &MockLoader{})

	rr := ts.do(http.MethodPost, "/stories/media", "application/json", strings.NewReader(`{"scenes":[]}`))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty scenes: status = %d", rr.Code)
	}

	rr = ts.do(http.MethodPost, "/stories/media", "application/json",
		strings.NewReader(`{"title":"Tale","scenes":[{"description":"A lake","narration":"Still water.","tone":"peaceful"}]}`))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if len(ts.runner.scenes) != 1 || ts.runner.scenes[0].Narration != "Still water." {
		t.Errorf("runner got %+v", ts.runner.scenes)
	}
}

func TestExecutionEndpoints(t *testing.T) {
	ts := newTestServer(nil, &MockLoader{})
	ts.store.Start("running", pipeline.KindStory, "")
	ts.store.Start("done", pipeline.KindStory, "")
	ts.store.Finish("done", pipeline_type.NewState("done", "", 1), nil)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantState  pipeline.ExecutionStatus
	}{
		{"status running", "/executions/running/status", http.StatusOK, pipeline.StatusStarted},
		{"status failed", "/executions/done/status", http.StatusOK, pipeline.StatusFailed},
		{"status unknown", "/executions/missing/status", http.StatusNotFound, ""},
		{"results running", "/executions/running/results", http.StatusAccepted, pipeline.StatusStarted},
		{"results done", "/executions/done/results", http.StatusOK, pipeline.StatusFailed},
		{"results unknown", "/executions/missing/results", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(http.MethodGet, tt.path, "", nil)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantState == "" {
				return
			}
			var resp struct {
				Status pipeline.ExecutionStatus `json:"status"`
			}
			decodeBody(t, rr, &resp)
			if resp.Status != tt.wantState {
				t.Errorf("execution status = %s, want %s", resp.Status, tt.wantState)
			}
		})
	}
}

func TestListExecutions(t *testing.T) {
	t.Run("from history", func(t *testing.T) {
		history := &MockRunLister{runs: []pipeline.ExecutionResult{{ExecutionID: "db-run"}}}
		ts := newTestServer(history, &MockLoader{})

		rr := ts.do(http.MethodGet, "/executions?limit=5", "", nil)
		var runs []pipeline.ExecutionResult
		decodeBody(t, rr, &runs)
		if len(runs) != 1 || runs[0].ExecutionID != "db-run" {
			t.Errorf("unexpected runs %+v", runs)
		}
	})

	t.Run("history error falls back to memory", func(t *testing.T) {
		ts := newTestServer(&MockRunLister{err: errors.New("connection refused")}, &MockLoader{})
		ts.store.Start("mem-run", pipeline.KindMedia, "")

		rr := ts.do(http.MethodGet, "/executions", "", nil)
		var runs []pipeline.ExecutionResult
		decodeBody(t, rr, &runs)
		if len(runs) != 1 || runs[0].ExecutionID != "mem-run" {
			t.Errorf("unexpected runs %+v", runs)
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		ts := newTestServer(nil, &MockLoader{})
		rr := ts.do(http.MethodGet, "/executions?limit=-1", "", nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rr.Code)
		}
	})
}
