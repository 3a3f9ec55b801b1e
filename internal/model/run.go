package model

import "time"

// RunStatus represents the outcome of a run or of a single model within it.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusError   RunStatus = "error"
	RunStatusSkipped RunStatus = "skipped"
)

// String returns the string representation of the run status.
func (s RunStatus) String() string {
	return string(s)
}

// IsValid checks whether the run status is a known value.
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusSuccess, RunStatusError, RunStatusSkipped:
		return true
	}
	return false
}

// RunResult is the outcome of materializing a single model.
type RunResult struct {
	ModelName    string          `json:"model"`
	Materialized Materialization `json:"materialized"`
	Status       RunStatus       `json:"status"`
	Error        string          `json:"error,omitempty"`
	DurationMS   int64           `json:"duration_ms"`
}

// Run is the record of one invocation of `loom run`.
type Run struct {
	InvocationID  string    `json:"invocation_id"`
	Project       string    `json:"project"`
	Target        string    `json:"target"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
	Status        RunStatus `json:"status"`
	ModelsTotal   int       `json:"models_total"`
	ModelsErrored int       `json:"models_errored"`
	ModelsSkipped int       `json:"models_skipped"`

	// Relational data -- populated by queries, not stored in the runs table.
	Results []*RunResult `json:"results,omitempty"`
}

// Summarize fills the aggregate counts and overall status from Results.
func (r *Run) Summarize() {
	r.ModelsTotal = len(r.Results)
	r.ModelsErrored = 0
	r.ModelsSkipped = 0
	for _, res := range r.Results {
		switch res.Status {
		case RunStatusError:
			r.ModelsErrored++
		case RunStatusSkipped:
			r.ModelsSkipped++
		}
	}
	if r.ModelsErrored > 0 {
		r.Status = RunStatusError
	} else {
		r.Status = RunStatusSuccess
	}
}
