// Package events is loom's structured event system: every user-visible
// occurrence is a typed event fired through a Manager, which fans it out to
// line loggers, callbacks, and an optional NATS publisher.
package events

import (
	"fmt"
	"strings"
	"unicode"
)

// Level is the severity of an event.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// String returns the string representation of the level.
func (l Level) String() string {
	return string(l)
}

// IsValid checks whether the level is a known value.
func (l Level) IsValid() bool {
	switch l {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return true
	}
	return false
}

var levelSeverity = map[Level]int{
	LevelDebug: 10,
	LevelInfo:  20,
	LevelWarn:  30,
	LevelError: 40,
}

// Covers reports whether an event at level other passes a logger whose
// minimum level is l.
func (l Level) Covers(other Level) bool {
	return levelSeverity[l] <= levelSeverity[other]
}

// Event is a single structured occurrence.
type Event interface {
	Name() string
	Level() Level
	Message() string
	Data() map[string]any
}

// Subject returns the NATS subject an event is published to.
func Subject(e Event) string {
	return "loom.events." + snakeCase(e.Name())
}

// snakeCase converts an event name like DanglingRefFound to dangling_ref_found.
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RunStarted fires at the beginning of a run invocation.
type RunStarted struct {
	Project string
	Target  string
}

func (RunStarted) Name() string { return "RunStarted" }
func (RunStarted) Level() Level { return LevelInfo }
func (e RunStarted) Message() string {
	return fmt.Sprintf("Running project %s against target %s", e.Project, e.Target)
}
func (e RunStarted) Data() map[string]any {
	return map[string]any{"project": e.Project, "target": e.Target}
}

// ModelsParsed fires after the fixture tree has been read.
type ModelsParsed struct {
	Count int
}

func (ModelsParsed) Name() string { return "ModelsParsed" }
func (ModelsParsed) Level() Level { return LevelDebug }
func (e ModelsParsed) Message() string {
	return fmt.Sprintf("Parsed %d models", e.Count)
}
func (e ModelsParsed) Data() map[string]any {
	return map[string]any{"count": e.Count}
}

// DanglingRefFound fires for each reference that does not resolve.
type DanglingRefFound struct {
	Model string
	Ref   string
}

func (DanglingRefFound) Name() string { return "DanglingRefFound" }
func (DanglingRefFound) Level() Level { return LevelError }
func (e DanglingRefFound) Message() string {
	return fmt.Sprintf("Model %s references non-existent model %s", e.Model, e.Ref)
}
func (e DanglingRefFound) Data() map[string]any {
	return map[string]any{"model": e.Model, "ref": e.Ref}
}

// CycleFound fires when the reference graph is cyclic.
type CycleFound struct {
	Path []string
}

func (CycleFound) Name() string { return "CycleFound" }
func (CycleFound) Level() Level { return LevelError }
func (e CycleFound) Message() string {
	return "Dependency cycle: " + strings.Join(e.Path, " -> ")
}
func (e CycleFound) Data() map[string]any {
	return map[string]any{"path": e.Path}
}

// ValidationFinished summarizes a validate invocation.
type ValidationFinished struct {
	Models   int
	Dangling int
	Cyclic   bool
}

func (ValidationFinished) Name() string { return "ValidationFinished" }
func (e ValidationFinished) Level() Level {
	if e.Dangling > 0 || e.Cyclic {
		return LevelError
	}
	return LevelInfo
}
func (e ValidationFinished) Message() string {
	if e.Dangling == 0 && !e.Cyclic {
		return fmt.Sprintf("Validated %d models, no issues found", e.Models)
	}
	return fmt.Sprintf("Validated %d models: %d dangling references, cyclic=%t", e.Models, e.Dangling, e.Cyclic)
}
func (e ValidationFinished) Data() map[string]any {
	return map[string]any{"models": e.Models, "dangling": e.Dangling, "cyclic": e.Cyclic}
}

// CompilingModel fires before each model compiles.
type CompilingModel struct {
	Model string
}

func (CompilingModel) Name() string { return "CompilingModel" }
func (CompilingModel) Level() Level { return LevelDebug }
func (e CompilingModel) Message() string {
	return "Compiling " + e.Model
}
func (e CompilingModel) Data() map[string]any {
	return map[string]any{"model": e.Model}
}

// CompileFinished summarizes a compile invocation.
type CompileFinished struct {
	Compiled int
	Skipped  int
}

func (CompileFinished) Name() string { return "CompileFinished" }
func (CompileFinished) Level() Level { return LevelInfo }
func (e CompileFinished) Message() string {
	return fmt.Sprintf("Compiled %d models (%d skipped)", e.Compiled, e.Skipped)
}
func (e CompileFinished) Data() map[string]any {
	return map[string]any{"compiled": e.Compiled, "skipped": e.Skipped}
}

// MaterializedModel fires after each model materializes (or fails).
type MaterializedModel struct {
	Model      string
	Status     string
	DurationMS int64
	Err        string
}

func (MaterializedModel) Name() string { return "MaterializedModel" }
func (e MaterializedModel) Level() Level {
	if e.Err != "" {
		return LevelError
	}
	return LevelInfo
}
func (e MaterializedModel) Message() string {
	if e.Err != "" {
		return fmt.Sprintf("%s failed after %dms: %s", e.Model, e.DurationMS, e.Err)
	}
	return fmt.Sprintf("%s %s in %dms", e.Model, e.Status, e.DurationMS)
}
func (e MaterializedModel) Data() map[string]any {
	return map[string]any{"model": e.Model, "status": e.Status, "duration_ms": e.DurationMS, "error": e.Err}
}

// RunFinished fires at the end of a run invocation.
type RunFinished struct {
	Status  string
	Models  int
	Errored int
	Skipped int
}

func (RunFinished) Name() string { return "RunFinished" }
func (e RunFinished) Level() Level {
	if e.Errored > 0 {
		return LevelError
	}
	return LevelInfo
}
func (e RunFinished) Message() string {
	return fmt.Sprintf("Run %s: %d models, %d errored, %d skipped", e.Status, e.Models, e.Errored, e.Skipped)
}
func (e RunFinished) Data() map[string]any {
	return map[string]any{"status": e.Status, "models": e.Models, "errored": e.Errored, "skipped": e.Skipped}
}

// FixtureGenerated fires after `loom generate` writes a fixture tree.
type FixtureGenerated struct {
	Topology string
	Models   int
	Dir      string
}

func (FixtureGenerated) Name() string { return "FixtureGenerated" }
func (FixtureGenerated) Level() Level { return LevelInfo }
func (e FixtureGenerated) Message() string {
	return fmt.Sprintf("Generated %d %s models in %s", e.Models, e.Topology, e.Dir)
}
func (e FixtureGenerated) Data() map[string]any {
	return map[string]any{"topology": e.Topology, "models": e.Models, "dir": e.Dir}
}

// CheckCleanPath fires before a clean target is considered.
type CheckCleanPath struct {
	Path string
}

func (CheckCleanPath) Name() string { return "CheckCleanPath" }
func (CheckCleanPath) Level() Level { return LevelDebug }
func (e CheckCleanPath) Message() string {
	return "Checking " + e.Path
}
func (e CheckCleanPath) Data() map[string]any {
	return map[string]any{"path": e.Path}
}

// ConfirmCleanPath fires after a clean target has been removed.
type ConfirmCleanPath struct {
	Path string
}

func (ConfirmCleanPath) Name() string { return "ConfirmCleanPath" }
func (ConfirmCleanPath) Level() Level { return LevelInfo }
func (e ConfirmCleanPath) Message() string {
	return "Cleaned " + e.Path
}
func (e ConfirmCleanPath) Data() map[string]any {
	return map[string]any{"path": e.Path}
}

// ProtectedCleanPath fires when a clean target is protected and kept.
type ProtectedCleanPath struct {
	Path string
}

func (ProtectedCleanPath) Name() string { return "ProtectedCleanPath" }
func (ProtectedCleanPath) Level() Level { return LevelWarn }
func (e ProtectedCleanPath) Message() string {
	return "Protected path, skipping " + e.Path
}
func (e ProtectedCleanPath) Data() map[string]any {
	return map[string]any{"path": e.Path}
}

// FinishedCleanPaths fires after all clean targets are processed.
type FinishedCleanPaths struct{}

func (FinishedCleanPaths) Name() string         { return "FinishedCleanPaths" }
func (FinishedCleanPaths) Level() Level         { return LevelInfo }
func (FinishedCleanPaths) Message() string      { return "Finished cleaning all paths" }
func (FinishedCleanPaths) Data() map[string]any { return nil }

// ArtifactUploaded fires after an artifact lands in object storage.
type ArtifactUploaded struct {
	Bucket string
	Key    string
}

func (ArtifactUploaded) Name() string { return "ArtifactUploaded" }
func (ArtifactUploaded) Level() Level { return LevelInfo }
func (e ArtifactUploaded) Message() string {
	return fmt.Sprintf("Uploaded s3://%s/%s", e.Bucket, e.Key)
}
func (e ArtifactUploaded) Data() map[string]any {
	return map[string]any{"bucket": e.Bucket, "key": e.Key}
}
