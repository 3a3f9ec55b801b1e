// Package project loads the loom.toml project file that describes a fixture
// project: where its models live, where compiled output goes, and the set of
// named warehouse targets it can be compiled against.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/groblegark/loom/internal/model"
)

// FileName is the project file looked up in the project directory.
const FileName = "loom.toml"

// Target is a named warehouse destination. Type is an opaque platform type
// used by conditional database clauses in model config blocks; loom never
// validates the set of platform types.
type Target struct {
	Type     string `toml:"type"`
	Database string `toml:"database"`
	Schema   string `toml:"schema"`
	Threads  int    `toml:"threads,omitempty"`
}

// Project is the decoded loom.toml plus the directory it was loaded from.
type Project struct {
	Name          string            `toml:"name"`
	Version       string            `toml:"version,omitempty"`
	ModelPaths    []string          `toml:"model_paths,omitempty"`
	TargetPath    string            `toml:"target_path,omitempty"`
	CleanTargets  []string          `toml:"clean_targets,omitempty"`
	DefaultTarget string            `toml:"default_target,omitempty"`
	Targets       map[string]Target `toml:"targets"`

	Dir string `toml:"-"`
}

// Load reads and decodes the project file in dir, applying defaults for
// optional fields.
func Load(dir string) (*Project, error) {
	path := filepath.Join(dir, FileName)
	var p Project
	if _, err := toml.DecodeFile(path, &p); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no %s found in %s", FileName, dir)
		}
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	p.Dir = dir
	p.applyDefaults()

	if p.Name == "" {
		return nil, fmt.Errorf("%s: name is required", path)
	}
	if !model.ValidIdentifier(p.Name) {
		return nil, fmt.Errorf("%s: invalid project name %q", path, p.Name)
	}
	if len(p.Targets) == 0 {
		return nil, fmt.Errorf("%s: at least one [targets.<name>] is required", path)
	}
	for name, tgt := range p.Targets {
		if tgt.Database == "" {
			return nil, fmt.Errorf("%s: target %q: database is required", path, name)
		}
		if tgt.Schema == "" {
			return nil, fmt.Errorf("%s: target %q: schema is required", path, name)
		}
	}
	if p.DefaultTarget != "" {
		if _, ok := p.Targets[p.DefaultTarget]; !ok {
			return nil, fmt.Errorf("%s: default_target %q is not defined", path, p.DefaultTarget)
		}
	}

	return &p, nil
}

func (p *Project) applyDefaults() {
	if len(p.ModelPaths) == 0 {
		p.ModelPaths = []string{"models"}
	}
	if p.TargetPath == "" {
		p.TargetPath = "target"
	}
	if len(p.CleanTargets) == 0 {
		p.CleanTargets = []string{p.TargetPath}
	}
	for name, tgt := range p.Targets {
		if tgt.Threads == 0 {
			tgt.Threads = 1
			p.Targets[name] = tgt
		}
	}
}

// TargetNames returns the defined target names in lexical order.
func (p *Project) TargetNames() []string {
	names := make([]string, 0, len(p.Targets))
	for name := range p.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveTarget returns the named target, or the project's default when name
// is empty: default_target if set, then "dev" if defined, then the lexically
// first target.
func (p *Project) ResolveTarget(name string) (string, Target, error) {
	if name == "" {
		switch {
		case p.DefaultTarget != "":
			name = p.DefaultTarget
		default:
			if _, ok := p.Targets["dev"]; ok {
				name = "dev"
			} else {
				name = p.TargetNames()[0]
			}
		}
	}
	tgt, ok := p.Targets[name]
	if !ok {
		return "", Target{}, fmt.Errorf("target %q is not defined (have: %v)", name, p.TargetNames())
	}
	return name, tgt, nil
}

// AbsModelPaths returns the model paths joined onto the project directory.
func (p *Project) AbsModelPaths() []string {
	out := make([]string, len(p.ModelPaths))
	for i, mp := range p.ModelPaths {
		out[i] = filepath.Join(p.Dir, mp)
	}
	return out
}

// AbsTargetPath returns the target path joined onto the project directory.
func (p *Project) AbsTargetPath() string {
	return filepath.Join(p.Dir, p.TargetPath)
}
