// Package artifacts renders run records into shippable files and writes
// them to a destination (local target directory or object storage).
package artifacts

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/groblegark/loom/internal/model"
)

// Artifact file names written for every run.
const (
	RunResultsName = "run_results.json"
	TimingName     = "timing.csv"
)

// Destination is the interface for an artifact target (local dir, S3, etc.).
type Destination interface {
	// Write stores data under the given key.
	Write(ctx context.Context, key, contentType string, data []byte) error
}

// DirDestination writes artifacts into a local directory.
type DirDestination struct {
	Dir string
}

func (d *DirDestination) Write(ctx context.Context, key, contentType string, data []byte) error {
	dest := filepath.Join(d.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", key, err)
	}
	return nil
}

// RunResultsJSON renders the full run record as indented JSON.
func RunResultsJSON(run *model.Run) ([]byte, error) {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal run results: %w", err)
	}
	return append(data, '\n'), nil
}

// TimingCSV renders one row per model with its status and duration.
func TimingCSV(run *model.Run) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"model", "materialized", "status", "duration_ms"}); err != nil {
		return nil, fmt.Errorf("write timing header: %w", err)
	}
	for _, res := range run.Results {
		row := []string{
			res.ModelName,
			res.Materialized.String(),
			res.Status.String(),
			strconv.FormatInt(res.DurationMS, 10),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write timing row for %s: %w", res.ModelName, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush timing csv: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteAll renders both artifacts and writes them under the run's
// invocation ID. It returns the keys written.
func WriteAll(ctx context.Context, dst Destination, run *model.Run) ([]string, error) {
	results, err := RunResultsJSON(run)
	if err != nil {
		return nil, err
	}
	timing, err := TimingCSV(run)
	if err != nil {
		return nil, err
	}

	files := []struct {
		name        string
		contentType string
		data        []byte
	}{
		{RunResultsName, "application/json", results},
		{TimingName, "text/csv", timing},
	}

	var keys []string
	for _, f := range files {
		key := path.Join(run.InvocationID, f.name)
		if err := dst.Write(ctx, key, f.contentType, f.data); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
