package pipeline

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/serisow/storystudio/pipeline_type"
)

type ExecutionStatus string

const (
	StatusStarted   ExecutionStatus = "started"
	StatusCompleted ExecutionStatus = "completed"
	StatusFailed    ExecutionStatus = "failed"
)

const (
	KindStory = "story"
	KindMedia = "media"
)

type ExecutionResult struct {
	ExecutionID  string                      `json:"execution_id"`
	Kind         string                      `json:"kind"`
	Title        string                      `json:"title,omitempty"`
	Status       ExecutionStatus             `json:"status"`
	StartTime    int64                       `json:"start_time"`
	EndTime      int64                       `json:"end_time,omitempty"`
	Outputs      *pipeline_type.OutputPaths  `json:"outputs,omitempty"`
	Summary      *RunSummary                 `json:"summary,omitempty"`
	Stages       []pipeline_type.StageRecord `json:"stages,omitempty"`
	ErrorMessage string                      `json:"error_message,omitempty"`
	SubmittedAt  string                      `json:"submitted_at"`
	CompletedAt  string                      `json:"completed_at,omitempty"`
}

// ExecutionStore keeps recent run results in memory. Finished results are
// dropped once they are older than the cleanup threshold.
type ExecutionStore struct {
	mu           sync.RWMutex
	executions   map[string]*ExecutionResult
	logger       *slog.Logger
	timeProvider TimeProvider
	stop         chan struct{}
	stopOnce     sync.Once
}

func NewExecutionStore(logger *slog.Logger, timeProvider TimeProvider) *ExecutionStore {
	if timeProvider == nil {
		timeProvider = RealTimeProvider{}
	}
	return &ExecutionStore{
		executions:   make(map[string]*ExecutionResult),
		logger:       logger,
		timeProvider: timeProvider,
		stop:         make(chan struct{}),
	}
}

// StartCleanup starts a goroutine that periodically removes expired results.
// - threshold: Duration after which finished results are considered expired.
// - cleanupInterval: How often the cleanup process runs.
func (s *ExecutionStore) StartCleanup(threshold, cleanupInterval time.Duration) {
	ticker := time.NewTicker(cleanupInterval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.performCleanup(threshold)
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *ExecutionStore) StopCleanup() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *ExecutionStore) performCleanup(threshold time.Duration) {
	now := s.timeProvider.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for execID, execResult := range s.executions {
		if execResult.CompletedAt == "" {
			continue
		}
		completedAt, err := time.Parse(time.RFC3339, execResult.CompletedAt)
		if err == nil && now.Sub(completedAt) > threshold {
			delete(s.executions, execID)
			s.logger.Debug("Deleted expired execution result", slog.String("execution_id", execID))
		}
	}
}

// Start records a newly submitted run.
func (s *ExecutionStore) Start(execID, kind, title string) ExecutionResult {
	now := s.timeProvider.Now()
	result := &ExecutionResult{
		ExecutionID: execID,
		Kind:        kind,
		Title:       title,
		Status:      StatusStarted,
		StartTime:   now.Unix(),
		SubmittedAt: now.Format(time.RFC3339),
	}

	s.mu.Lock()
	s.executions[execID] = result
	s.mu.Unlock()
	return *result
}

// Finish stores the outcome of a run. A run without a video is a failure.
func (s *ExecutionStore) Finish(execID string, state pipeline_type.State, runErr error) ExecutionResult {
	now := s.timeProvider.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.executions[execID]
	if !ok {
		result = &ExecutionResult{ExecutionID: execID, SubmittedAt: now.Format(time.RFC3339)}
		s.executions[execID] = result
	}

	outputs := state.OutputPaths()
	summary := Summarize(state)
	result.Outputs = &outputs
	result.Summary = &summary
	result.Stages = append([]pipeline_type.StageRecord(nil), state.Stages...)
	result.EndTime = now.Unix()
	result.CompletedAt = now.Format(time.RFC3339)

	switch {
	case runErr != nil:
		result.Status = StatusFailed
		result.ErrorMessage = runErr.Error()
	case !state.Video.Available():
		result.Status = StatusFailed
		result.ErrorMessage = "no video was produced"
	default:
		result.Status = StatusCompleted
	}
	return *result
}

// Add stores a result as is.
func (s *ExecutionStore) Add(result ExecutionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executions[result.ExecutionID] = &result
}

func (s *ExecutionStore) Get(execID string) (ExecutionResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, exists := s.executions[execID]
	if !exists {
		return ExecutionResult{}, false
	}
	return *result, true
}

// Recent lists stored results, newest first.
func (s *ExecutionStore) Recent(limit int) []ExecutionResult {
	s.mu.RLock()
	results := make([]ExecutionResult, 0, len(s.executions))
	for _, r := range s.executions {
		results = append(results, *r)
	}
	s.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].StartTime != results[j].StartTime {
			return results[i].StartTime > results[j].StartTime
		}
		return results[i].ExecutionID < results[j].ExecutionID
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
