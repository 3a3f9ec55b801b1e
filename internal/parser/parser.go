// Package parser reads fixture model files: an optional {{ config(...) }}
// block followed by a SQL body containing {{ ref('name') }} expressions.
// Reference resolution is left to the compiler; the parser only extracts
// structure.
package parser

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/groblegark/loom/internal/model"
)

// Error is a parse failure with file and line context.
type Error struct {
	Path string
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// block is one {{ ... }} template expression found in a source file.
type block struct {
	start   int // byte offset of "{{"
	end     int // byte offset just past "}}"
	content string
}

// errAt builds an *Error for the given byte offset in src.
func errAt(path string, src string, off int, format string, args ...any) *Error {
	line := 1 + strings.Count(src[:off], "\n")
	return &Error{Path: path, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// scanBlocks finds every {{ ... }} expression in src. Quoted strings inside
// an expression may contain braces.
func scanBlocks(path, src string) ([]block, error) {
	var blocks []block
	i := 0
	for {
		start := strings.Index(src[i:], "{{")
		if start < 0 {
			return blocks, nil
		}
		start += i

		end := -1
		var quote byte
		for j := start + 2; j < len(src) && end < 0; j++ {
			c := src[j]
			if quote != 0 {
				if c == quote {
					quote = 0
				}
				continue
			}
			switch c {
			case '\'', '"':
				quote = c
			case '}':
				if j+1 < len(src) && src[j+1] == '}' {
					end = j + 2
				}
			}
		}
		if end < 0 {
			return nil, errAt(path, src, start, "unterminated template expression")
		}
		blocks = append(blocks, block{
			start:   start,
			end:     end,
			content: strings.TrimSpace(src[start+2 : end-2]),
		})
		i = end
	}
}

// splitCall breaks "fn(args)" into the function name and its raw argument
// string. It requires the closing paren to end the expression.
func splitCall(expr string) (fn, args string, ok bool) {
	open := strings.IndexByte(expr, '(')
	if open < 0 || !strings.HasSuffix(expr, ")") {
		return "", "", false
	}
	fn = strings.TrimSpace(expr[:open])
	args = expr[open+1 : len(expr)-1]
	return fn, args, true
}

// splitArgs splits a raw argument string at top-level commas, respecting
// quotes and nested parens. A trailing comma is tolerated.
func splitArgs(raw string) []string {
	var (
		parts []string
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(raw[start:i]))
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(raw[start:]); tail != "" {
		parts = append(parts, tail)
	}
	return parts
}

// unquote strips matching single or double quotes from s.
func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	if (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		inner := s[1 : len(s)-1]
		if strings.ContainsRune(inner, rune(s[0])) {
			return "", false
		}
		return inner, true
	}
	return "", false
}

// parseRef extracts the model name from a ref(...) argument list.
func parseRef(path, src string, b block) (string, error) {
	_, args, ok := splitCall(b.content)
	if !ok {
		return "", errAt(path, src, b.start, "malformed ref expression %q", b.content)
	}
	parts := splitArgs(args)
	if len(parts) != 1 {
		return "", errAt(path, src, b.start, "ref takes exactly one argument, got %d", len(parts))
	}
	name, ok := unquote(parts[0])
	if !ok || name == "" {
		return "", errAt(path, src, b.start, "ref argument must be a quoted model name, got %s", parts[0])
	}
	return name, nil
}

// parseDatabaseValue parses the value of the database key: either a quoted
// name or the conditional form if_target('<type>', '<if-match>', '<else>').
func parseDatabaseValue(path, src string, b block, val string) (model.DatabaseSpec, error) {
	if fixed, ok := unquote(val); ok {
		return model.DatabaseSpec{Fixed: fixed}, nil
	}
	fn, args, ok := splitCall(val)
	if !ok || fn != "if_target" {
		return model.DatabaseSpec{}, errAt(path, src, b.start,
			"database must be a quoted name or if_target(type, if_match, else), got %s", val)
	}
	parts := splitArgs(args)
	if len(parts) != 3 {
		return model.DatabaseSpec{}, errAt(path, src, b.start,
			"if_target takes exactly three arguments, got %d", len(parts))
	}
	strs := make([]string, 3)
	for i, p := range parts {
		s, ok := unquote(p)
		if !ok {
			return model.DatabaseSpec{}, errAt(path, src, b.start,
				"if_target arguments must be quoted strings, got %s", p)
		}
		strs[i] = s
	}
	return model.DatabaseSpec{MatchType: strs[0], IfMatch: strs[1], Else: strs[2]}, nil
}

// parseConfig decodes a config(...) block into a model.Config, starting from
// the defaults.
func parseConfig(path, src string, b block) (model.Config, error) {
	cfg := model.DefaultConfig()

	_, args, ok := splitCall(b.content)
	if !ok {
		return cfg, errAt(path, src, b.start, "malformed config block %q", b.content)
	}

	seen := make(map[string]bool)
	for _, part := range splitArgs(args) {
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			return cfg, errAt(path, src, b.start, "config argument %q is not key=value", part)
		}
		key := strings.TrimSpace(part[:eq])
		val := strings.TrimSpace(part[eq+1:])
		if seen[key] {
			return cfg, errAt(path, src, b.start, "duplicate config key %q", key)
		}
		seen[key] = true

		switch key {
		case "enabled":
			switch val {
			case "true":
				cfg.Enabled = true
			case "false":
				cfg.Enabled = false
			default:
				return cfg, errAt(path, src, b.start, "enabled must be true or false, got %s", val)
			}
		case "schema":
			s, ok := unquote(val)
			if !ok {
				return cfg, errAt(path, src, b.start, "schema must be a quoted string, got %s", val)
			}
			cfg.Schema = s
		case "materialized":
			s, ok := unquote(val)
			if !ok {
				return cfg, errAt(path, src, b.start, "materialized must be a quoted string, got %s", val)
			}
			cfg.Materialized = model.Materialization(s)
		case "database":
			spec, err := parseDatabaseValue(path, src, b, val)
			if err != nil {
				return cfg, err
			}
			cfg.Database = spec
		default:
			return cfg, errAt(path, src, b.start, "unknown config key %q", key)
		}
	}
	return cfg, nil
}

// Parse reads one model source. The model name is the file's base name
// without the .sql extension.
func Parse(path string, src []byte) (*model.Model, error) {
	text := string(src)
	blocks, err := scanBlocks(path, text)
	if err != nil {
		return nil, err
	}

	m := &model.Model{
		Name:   strings.TrimSuffix(filepath.Base(path), ".sql"),
		Path:   path,
		Config: model.DefaultConfig(),
	}

	body := text
	seenRefs := make(map[string]bool)
	for i, b := range blocks {
		fn, _, ok := splitCall(b.content)
		if !ok {
			return nil, errAt(path, text, b.start, "malformed template expression %q", b.content)
		}
		switch fn {
		case "config":
			if i != 0 || strings.TrimSpace(text[:b.start]) != "" {
				return nil, errAt(path, text, b.start, "config block must be the first content in the file")
			}
			cfg, err := parseConfig(path, text, b)
			if err != nil {
				return nil, err
			}
			m.Config = cfg
			body = text[b.end:]
		case "ref":
			name, err := parseRef(path, text, b)
			if err != nil {
				return nil, err
			}
			if !seenRefs[name] {
				seenRefs[name] = true
				m.Refs = append(m.Refs, name)
			}
		default:
			return nil, errAt(path, text, b.start, "unknown function %q (expected config or ref)", fn)
		}
	}

	m.RawSQL = strings.TrimSpace(body)
	if m.RawSQL == "" {
		return nil, &Error{Path: path, Line: 1, Msg: "model has no query body"}
	}
	return m, nil
}

// ParseFile reads and parses a single model file.
func ParseFile(path string) (*model.Model, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return Parse(path, src)
}

// ParseDir walks the given model directories and parses every .sql file.
// Models are validated and returned sorted by name; duplicate model names
// anywhere in the tree are an error.
func ParseDir(dirs ...string) ([]*model.Model, error) {
	var models []*model.Model
	byName := make(map[string]string) // name -> path, for duplicate detection

	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("model path %s: %w", dir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("model path %s is not a directory", dir)
		}

		err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".sql") {
				return nil
			}
			m, err := ParseFile(path)
			if err != nil {
				return err
			}
			if err := model.ValidateModel(m); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if prev, ok := byName[m.Name]; ok {
				return fmt.Errorf("duplicate model name %q (%s and %s)", m.Name, prev, path)
			}
			byName[m.Name] = path
			models = append(models, m)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, nil
}

// ReplaceRefs rewrites every {{ ref('name') }} expression in body using the
// resolve callback. The body must not contain config blocks.
func ReplaceRefs(path, body string, resolve func(name string) (string, error)) (string, error) {
	blocks, err := scanBlocks(path, body)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	last := 0
	for _, b := range blocks {
		fn, _, ok := splitCall(b.content)
		if !ok || fn != "ref" {
			return "", errAt(path, body, b.start, "unexpected template expression %q in model body", b.content)
		}
		name, err := parseRef(path, body, b)
		if err != nil {
			return "", err
		}
		replacement, err := resolve(name)
		if err != nil {
			return "", err
		}
		out.WriteString(body[last:b.start])
		out.WriteString(replacement)
		last = b.end
	}
	out.WriteString(body[last:])
	return out.String(), nil
}
