package model

import "testing"

func TestMaterialization_IsValid(t *testing.T) {
	for _, tc := range []struct {
		mat  Materialization
		want bool
	}{
		{MaterializationView, true},
		{MaterializationTable, true},
		{MaterializationEphemeral, true},
		{Materialization(""), false},
		{Materialization("incremental"), false},
	} {
		if got := tc.mat.IsValid(); got != tc.want {
			t.Errorf("Materialization(%q).IsValid() = %v, want %v", tc.mat, got, tc.want)
		}
	}
}

func TestMaterialization_String(t *testing.T) {
	for _, tc := range []struct {
		mat  Materialization
		want string
	}{
		{MaterializationView, "view"},
		{MaterializationTable, "table"},
		{MaterializationEphemeral, "ephemeral"},
	} {
		if got := tc.mat.String(); got != tc.want {
			t.Errorf("Materialization(%q).String() = %q, want %q", tc.mat, got, tc.want)
		}
	}
}

func TestRunStatus_IsValid(t *testing.T) {
	for _, tc := range []struct {
		status RunStatus
		want   bool
	}{
		{RunStatusSuccess, true},
		{RunStatusError, true},
		{RunStatusSkipped, true},
		{RunStatus(""), false},
		{RunStatus("partial"), false},
	} {
		if got := tc.status.IsValid(); got != tc.want {
			t.Errorf("RunStatus(%q).IsValid() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestDatabaseSpec_Resolve(t *testing.T) {
	for _, tc := range []struct {
		name       string
		spec       DatabaseSpec
		targetType string
		want       string
	}{
		{"zero spec", DatabaseSpec{}, "postgres", ""},
		{"fixed", DatabaseSpec{Fixed: "analytics"}, "postgres", "analytics"},
		{"conditional match", DatabaseSpec{MatchType: "presto", IfMatch: "alt", Else: "main"}, "presto", "alt"},
		{"conditional no match", DatabaseSpec{MatchType: "presto", IfMatch: "alt", Else: "main"}, "postgres", "main"},
	} {
		if got := tc.spec.Resolve(tc.targetType); got != tc.want {
			t.Errorf("%s: Resolve(%q) = %q, want %q", tc.name, tc.targetType, got, tc.want)
		}
	}
}

func TestDatabaseSpec_IsZero(t *testing.T) {
	if !(DatabaseSpec{}).IsZero() {
		t.Error("empty DatabaseSpec should be zero")
	}
	if (DatabaseSpec{Fixed: "x"}).IsZero() {
		t.Error("fixed DatabaseSpec should not be zero")
	}
	if (DatabaseSpec{MatchType: "presto", IfMatch: "a", Else: "b"}).IsZero() {
		t.Error("conditional DatabaseSpec should not be zero")
	}
}

func TestRun_Summarize(t *testing.T) {
	run := &Run{
		Results: []*RunResult{
			{ModelName: "a", Status: RunStatusSuccess},
			{ModelName: "b", Status: RunStatusError, Error: "boom"},
			{ModelName: "c", Status: RunStatusSkipped},
			{ModelName: "d", Status: RunStatusSuccess},
		},
	}
	run.Summarize()

	if run.ModelsTotal != 4 {
		t.Errorf("ModelsTotal = %d, want 4", run.ModelsTotal)
	}
	if run.ModelsErrored != 1 {
		t.Errorf("ModelsErrored = %d, want 1", run.ModelsErrored)
	}
	if run.ModelsSkipped != 1 {
		t.Errorf("ModelsSkipped = %d, want 1", run.ModelsSkipped)
	}
	if run.Status != RunStatusError {
		t.Errorf("Status = %q, want %q", run.Status, RunStatusError)
	}

	run.Results = run.Results[:1]
	run.Summarize()
	if run.Status != RunStatusSuccess {
		t.Errorf("Status = %q, want %q", run.Status, RunStatusSuccess)
	}
}
