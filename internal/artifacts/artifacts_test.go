package artifacts

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/groblegark/loom/internal/model"
)

func testRun() *model.Run {
	started := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	return &model.Run{
		InvocationID: "run-abc1234567",
		Project:      "perf_scatter",
		Target:       "dev",
		StartedAt:    started,
		CompletedAt:  started.Add(time.Second),
		Status:       model.RunStatusSuccess,
		ModelsTotal:  2,
		Results: []*model.RunResult{
			{ModelName: "node_0_0", Materialized: model.MaterializationView, Status: model.RunStatusSuccess, DurationMS: 12},
			{ModelName: "root_scatter", Materialized: model.MaterializationView, Status: model.RunStatusSuccess, DurationMS: 31},
		},
	}
}

func TestRunResultsJSON(t *testing.T) {
	data, err := RunResultsJSON(testRun())
	if err != nil {
		t.Fatalf("RunResultsJSON() error: %v", err)
	}

	var decoded model.Run
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.InvocationID != "run-abc1234567" {
		t.Errorf("InvocationID = %q", decoded.InvocationID)
	}
	if len(decoded.Results) != 2 {
		t.Errorf("got %d results, want 2", len(decoded.Results))
	}
	if data[len(data)-1] != '\n' {
		t.Error("output should end with a newline")
	}
}

func TestTimingCSV(t *testing.T) {
	data, err := TimingCSV(testRun())
	if err != nil {
		t.Fatalf("TimingCSV() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows: %q", len(lines), data)
	}
	if lines[0] != "model,materialized,status,duration_ms" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != "root_scatter,view,success,31" {
		t.Errorf("row = %q", lines[2])
	}
}

func TestWriteAll_DirDestination(t *testing.T) {
	dir := t.TempDir()
	dst := &DirDestination{Dir: dir}

	keys, err := WriteAll(context.Background(), dst, testRun())
	if err != nil {
		t.Fatalf("WriteAll() error: %v", err)
	}

	want := []string{
		"run-abc1234567/run_results.json",
		"run-abc1234567/timing.csv",
	}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i, k := range keys {
		if k != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, k, want[i])
		}
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(k))); err != nil {
			t.Errorf("artifact %s not written: %v", k, err)
		}
	}
}

// captureDestination records writes for inspection.
type captureDestination struct {
	writes map[string]string // key -> content type
}

func (c *captureDestination) Write(ctx context.Context, key, contentType string, data []byte) error {
	if c.writes == nil {
		c.writes = make(map[string]string)
	}
	c.writes[key] = contentType
	return nil
}

func TestWriteAll_ContentTypes(t *testing.T) {
	dst := &captureDestination{}
	if _, err := WriteAll(context.Background(), dst, testRun()); err != nil {
		t.Fatalf("WriteAll() error: %v", err)
	}

	if ct := dst.writes["run-abc1234567/run_results.json"]; ct != "application/json" {
		t.Errorf("json content type = %q", ct)
	}
	if ct := dst.writes["run-abc1234567/timing.csv"]; ct != "text/csv" {
		t.Errorf("csv content type = %q", ct)
	}
}

func TestS3Destination_Key(t *testing.T) {
	d := &S3Destination{bucket: "perf", prefix: "loom/artifacts"}
	if got, want := d.Key("run-x/timing.csv"), "loom/artifacts/run-x/timing.csv"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}
