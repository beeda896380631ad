package db

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/serisow/storystudio/pipeline"
	"github.com/serisow/storystudio/pipeline_type"
)

func TestConnect_MissingURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := Connect(context.Background(), logger, ""); err == nil {
		t.Error("expected an error for an empty database URL")
	}
	if _, err := Connect(context.Background(), logger, "postgres://%zz"); err == nil {
		t.Error("expected an error for an unparsable database URL")
	}
}

func TestRunHistory(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := Connect(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), dbURL)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	history := NewRunHistory(pool)
	if err := history.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}
	defer pool.Exec(ctx, "DELETE FROM story_runs WHERE execution_id = 'test-run'")

	outputs := pipeline_type.OutputPaths{Video: "outputs/final_video.mp4"}
	result := pipeline.ExecutionResult{
		ExecutionID: "test-run",
		Kind:        pipeline.KindStory,
		Status:      pipeline.StatusCompleted,
		StartTime:   1700000000,
		EndTime:     1700000060,
		Outputs:     &outputs,
	}
	if err := history.RecordRun(ctx, result); err != nil {
		t.Fatal(err)
	}

	runs, err := history.RecentRuns(ctx, 50)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range runs {
		if r.ExecutionID == "test-run" {
			if r.Outputs == nil || r.Outputs.Video != outputs.Video {
				t.Errorf("outputs not restored: %+v", r.Outputs)
			}
			return
		}
	}
	t.Error("recorded run not found")
}
