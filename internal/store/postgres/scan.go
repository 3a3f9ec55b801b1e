package postgres

import (
	"database/sql"

	"github.com/groblegark/loom/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanRun scans a single row into a model.Run.
// The row must contain columns in the order defined by runColumns.
func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	err := row.Scan(
		&r.InvocationID,
		&r.Project,
		&r.Target,
		&r.StartedAt,
		&r.CompletedAt,
		&r.Status,
		&r.ModelsTotal,
		&r.ModelsErrored,
		&r.ModelsSkipped,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// scanRuns scans multiple rows into a slice of model.Run pointers.
func scanRuns(rows *sql.Rows) ([]*model.Run, error) {
	var runs []*model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// scanRunResult scans a single row into a model.RunResult.
func scanRunResult(row scannable) (*model.RunResult, error) {
	var res model.RunResult
	var errMsg sql.NullString
	err := row.Scan(
		&res.ModelName,
		&res.Materialized,
		&res.Status,
		&errMsg,
		&res.DurationMS,
	)
	if err != nil {
		return nil, err
	}
	res.Error = errMsg.String
	return &res, nil
}

// scanRunResults scans multiple rows into a slice of model.RunResult pointers.
func scanRunResults(rows *sql.Rows) ([]*model.RunResult, error) {
	var results []*model.RunResult
	for rows.Next() {
		res, err := scanRunResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
