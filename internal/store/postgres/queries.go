package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/groblegark/loom/internal/model"
	"github.com/groblegark/loom/internal/store"
)

// runColumns is the column list used for SELECT statements on the runs table.
const runColumns = `invocation_id, project, target, started_at, completed_at,
	status, models_total, models_errored, models_skipped`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryInsertRun(ctx context.Context, db executor, r *model.Run) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO runs (
			invocation_id, project, target, started_at, completed_at,
			status, models_total, models_errored, models_skipped
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9
		)`,
		r.InvocationID,
		r.Project,
		r.Target,
		r.StartedAt,
		r.CompletedAt,
		string(r.Status),
		r.ModelsTotal,
		r.ModelsErrored,
		r.ModelsSkipped,
	)
	return err
}

func queryInsertRunResult(ctx context.Context, db executor, invocationID string, position int, res *model.RunResult) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO run_results (
			invocation_id, position, model, materialized, status, error, duration_ms
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`,
		invocationID,
		position,
		res.ModelName,
		string(res.Materialized),
		string(res.Status),
		nullString(res.Error),
		res.DurationMS,
	)
	return err
}

func queryGetRun(ctx context.Context, db executor, invocationID string) (*model.Run, error) {
	row := db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE invocation_id = $1`, invocationID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	results, err := queryGetRunResults(ctx, db, invocationID)
	if err != nil {
		return nil, err
	}
	r.Results = results

	return r, nil
}

func queryGetRunResults(ctx context.Context, db executor, invocationID string) ([]*model.RunResult, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT model, materialized, status, error, duration_ms
		FROM run_results
		WHERE invocation_id = $1
		ORDER BY position`, invocationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRunResults(rows)
}

func queryListRuns(ctx context.Context, db executor, limit int) ([]*model.Run, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRuns(rows)
}
