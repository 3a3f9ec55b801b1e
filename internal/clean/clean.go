// Package clean removes the build output paths a project lists as clean
// targets. Model directories, the project root, and anything outside the
// project are protected and never removed.
package clean

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/groblegark/loom/internal/events"
	"github.com/groblegark/loom/internal/project"
)

// resolve joins a clean target onto the project directory unless it is
// already absolute.
func resolve(p *project.Project, target string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(p.Dir, target)
}

// IsProtected reports whether a clean target must not be removed: the
// project directory itself, any model path, or a path escaping the project.
func IsProtected(p *project.Project, target string) bool {
	abs, err := filepath.Abs(resolve(p, target))
	if err != nil {
		return true
	}
	projDir, err := filepath.Abs(p.Dir)
	if err != nil {
		return true
	}

	if abs == projDir {
		return true
	}
	for _, mp := range p.AbsModelPaths() {
		mpAbs, err := filepath.Abs(mp)
		if err != nil {
			return true
		}
		if abs == mpAbs {
			return true
		}
	}

	rel, err := filepath.Rel(projDir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return true
	}
	return false
}

// Run removes every unprotected clean target, firing an event per path.
func Run(p *project.Project, mgr *events.Manager) error {
	for _, target := range p.CleanTargets {
		mgr.Fire(events.CheckCleanPath{Path: target})
		if IsProtected(p, target) {
			mgr.Fire(events.ProtectedCleanPath{Path: target})
			continue
		}
		if err := os.RemoveAll(resolve(p, target)); err != nil {
			return fmt.Errorf("clean %s: %w", target, err)
		}
		mgr.Fire(events.ConfirmCleanPath{Path: target})
	}
	mgr.Fire(events.FinishedCleanPaths{})
	return nil
}
