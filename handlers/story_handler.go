package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/serisow/storystudio/pipeline"
	"github.com/serisow/storystudio/pipeline_type"
)

const (
	maxUploadSize      = 10 << 20
	defaultRecentLimit = 20
	maxSceneCount      = 20
)

// StoryRunner starts background runs.
type StoryRunner interface {
	SubmitStory(story, title string, sceneCount int) string
	SubmitMedia(scenes []pipeline_type.Scene, title string) string
}

// ScriptWriter produces the scene list for a story without rendering media.
type ScriptWriter interface {
	SegmentN(ctx context.Context, story string, sceneCount int) (string, []pipeline_type.Scene)
}

type ExecutionLookup interface {
	Get(execID string) (pipeline.ExecutionResult, bool)
	Recent(limit int) []pipeline.ExecutionResult
}

// RunLister reads persisted run history.
type RunLister interface {
	RecentRuns(ctx context.Context, limit int) ([]pipeline.ExecutionResult, error)
}

// DocumentLoader extracts story text from an uploaded file.
type DocumentLoader interface {
	Load(filename string, data []byte) (string, error)
}

type StoryHandler struct {
	logger     *slog.Logger
	runner     StoryRunner
	script     ScriptWriter
	executions ExecutionLookup
	history    RunLister
	loader     DocumentLoader
}

// NewStoryHandler wires the story endpoints. history may be nil, in which
// case run listings come from the in-memory store.
func NewStoryHandler(logger *slog.Logger, runner StoryRunner, script ScriptWriter, executions ExecutionLookup, history RunLister, loader DocumentLoader) *StoryHandler {
	return &StoryHandler{
		logger:     logger,
		runner:     runner,
		script:     script,
		executions: executions,
		history:    history,
		loader:     loader,
	}
}

type storyRequest struct {
	Story      string `json:"story"`
	Title      string `json:"title"`
	SceneCount int    `json:"scene_count"`
}

type mediaRequest struct {
	Scenes []pipeline_type.Scene `json:"scenes"`
	Title  string                `json:"title"`
}

type segmentResponse struct {
	ScenesPath string                `json:"scenes_path"`
	Scenes     []pipeline_type.Scene `json:"scenes"`
}

type statusResponse struct {
	ExecutionID  string                   `json:"execution_id"`
	Status       pipeline.ExecutionStatus `json:"status"`
	ErrorMessage string                   `json:"error_message,omitempty"`
}

// SubmitStory accepts story text and starts a full run.
func (h *StoryHandler) SubmitStory(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeStory(w, r)
	if !ok {
		return
	}

	execID := h.runner.SubmitStory(req.Story, req.Title, req.SceneCount)
	h.logger.Info("Story submitted", slog.String("execution_id", execID))
	writeAccepted(w, execID)
}

// UploadStory accepts a story document (txt, pdf, docx, html) as the
// multipart field "file" and starts a full run.
func (h *StoryHandler) UploadStory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSONError(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "Failed to get file from form", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		writeJSONError(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	story, err := h.loader.Load(header.Filename, buf.Bytes())
	if err != nil {
		h.logger.Error("Text extraction failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to extract story text: "+err.Error(), http.StatusBadRequest)
		return
	}

	sceneCount, err := parseSceneCount(r.FormValue("scene_count"))
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	execID := h.runner.SubmitStory(story, r.FormValue("title"), sceneCount)
	h.logger.Info("Story uploaded",
		slog.String("execution_id", execID),
		slog.String("filename", header.Filename))
	writeAccepted(w, execID)
}

// SegmentStory returns the scene list for a story so it can be reviewed
// before media is rendered.
func (h *StoryHandler) SegmentStory(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeStory(w, r)
	if !ok {
		return
	}

	scenesPath, scenes := h.script.SegmentN(r.Context(), req.Story, req.SceneCount)
	writeJSON(w, http.StatusOK, segmentResponse{ScenesPath: scenesPath, Scenes: scenes})
}

// SubmitMedia starts media synthesis for an approved scene list.
func (h *StoryHandler) SubmitMedia(w http.ResponseWriter, r *http.Request) {
	var req mediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Scenes) == 0 {
		writeJSONError(w, "scenes must not be empty", http.StatusBadRequest)
		return
	}

	execID := h.runner.SubmitMedia(req.Scenes, req.Title)
	h.logger.Info("Scenes submitted",
		slog.String("execution_id", execID),
		slog.Int("scenes", len(req.Scenes)))
	writeAccepted(w, execID)
}

func (h *StoryHandler) GetExecutionStatus(w http.ResponseWriter, r *http.Request) {
	execID := mux.Vars(r)["execution_id"]

	result, ok := h.executions.Get(execID)
	if !ok {
		writeJSONError(w, "Execution not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		ExecutionID:  result.ExecutionID,
		Status:       result.Status,
		ErrorMessage: result.ErrorMessage,
	})
}

// GetExecutionResults returns the full result of a finished run. A run that
// is still going answers 202 with its status.
func (h *StoryHandler) GetExecutionResults(w http.ResponseWriter, r *http.Request) {
	execID := mux.Vars(r)["execution_id"]

	result, ok := h.executions.Get(execID)
	if !ok {
		writeJSONError(w, "Execution not found", http.StatusNotFound)
		return
	}

	if result.Status == pipeline.StatusStarted {
		writeJSON(w, http.StatusAccepted, statusResponse{
			ExecutionID: result.ExecutionID,
			Status:      result.Status,
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListExecutions lists recent runs, from the database when one is
// configured.
func (h *StoryHandler) ListExecutions(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	if h.history != nil {
		runs, err := h.history.RecentRuns(r.Context(), limit)
		if err == nil {
			writeJSON(w, http.StatusOK, runs)
			return
		}
		h.logger.Warn("Run history unavailable, using in-memory results",
			slog.String("error", err.Error()))
	}

	writeJSON(w, http.StatusOK, h.executions.Recent(limit))
}

func (h *StoryHandler) decodeStory(w http.ResponseWriter, r *http.Request) (storyRequest, bool) {
	var req storyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return req, false
	}
	if strings.TrimSpace(req.Story) == "" {
		writeJSONError(w, "story must not be empty", http.StatusBadRequest)
		return req, false
	}
	if req.SceneCount < 0 || req.SceneCount > maxSceneCount {
		writeJSONError(w, "scene_count must be between 0 and 20", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func parseSceneCount(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > maxSceneCount {
		return 0, errInvalidSceneCount
	}
	return n, nil
}
