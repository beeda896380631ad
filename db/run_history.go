package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/serisow/storystudio/pipeline"
)

const schema = `
CREATE TABLE IF NOT EXISTS story_runs (
	execution_id  TEXT PRIMARY KEY,
	kind          TEXT NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	start_time    BIGINT NOT NULL,
	end_time      BIGINT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	outputs       JSONB,
	summary       JSONB,
	stages        JSONB,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// RunHistory keeps finished runs in Postgres.
type RunHistory struct {
	pool *pgxpool.Pool
}

func NewRunHistory(pool *pgxpool.Pool) *RunHistory {
	return &RunHistory{pool: pool}
}

func (h *RunHistory) EnsureSchema(ctx context.Context) error {
	if _, err := h.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("unable to create story_runs table: %w", err)
	}
	return nil
}

func (h *RunHistory) RecordRun(ctx context.Context, result pipeline.ExecutionResult) error {
	outputs, err := json.Marshal(result.Outputs)
	if err != nil {
		return fmt.Errorf("error marshaling outputs: %w", err)
	}
	summary, err := json.Marshal(result.Summary)
	if err != nil {
		return fmt.Errorf("error marshaling summary: %w", err)
	}
	stages, err := json.Marshal(result.Stages)
	if err != nil {
		return fmt.Errorf("error marshaling stages: %w", err)
	}

	_, err = h.pool.Exec(ctx, `
		INSERT INTO story_runs (execution_id, kind, title, status, start_time, end_time, error_message, outputs, summary, stages)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (execution_id) DO UPDATE SET
			status = EXCLUDED.status,
			end_time = EXCLUDED.end_time,
			error_message = EXCLUDED.error_message,
			outputs = EXCLUDED.outputs,
			summary = EXCLUDED.summary,
			stages = EXCLUDED.stages`,
		result.ExecutionID, result.Kind, result.Title, string(result.Status),
		result.StartTime, result.EndTime, result.ErrorMessage,
		outputs, summary, stages)
	if err != nil {
		return fmt.Errorf("error recording run %s: %w", result.ExecutionID, err)
	}
	return nil
}

// RecentRuns lists the latest runs, newest first.
func (h *RunHistory) RecentRuns(ctx context.Context, limit int) ([]pipeline.ExecutionResult, error) {
	rows, err := h.pool.Query(ctx, `
		SELECT execution_id, kind, title, status, start_time, end_time, error_message, outputs, summary, stages
		FROM story_runs
		ORDER BY start_time DESC, execution_id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying runs: %w", err)
	}

	results, err := pgx.CollectRows(rows, scanRun)
	if err != nil {
		return nil, fmt.Errorf("error reading runs: %w", err)
	}
	return results, nil
}

func scanRun(row pgx.CollectableRow) (pipeline.ExecutionResult, error) {
	var (
		r                        pipeline.ExecutionResult
		status                   string
		outputs, summary, stages []byte
	)
	err := row.Scan(&r.ExecutionID, &r.Kind, &r.Title, &status, &r.StartTime, &r.EndTime,
		&r.ErrorMessage, &outputs, &summary, &stages)
	if err != nil {
		return r, err
	}
	r.Status = pipeline.ExecutionStatus(status)

	if err := unmarshalColumn(outputs, &r.Outputs); err != nil {
		return r, err
	}
	if err := unmarshalColumn(summary, &r.Summary); err != nil {
		return r, err
	}
	if err := unmarshalColumn(stages, &r.Stages); err != nil {
		return r, err
	}
	return r, nil
}

func unmarshalColumn(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
