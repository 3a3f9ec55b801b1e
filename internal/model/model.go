package model

// Materialization is the strategy used to persist a model's output in the
// target warehouse.
type Materialization string

const (
	MaterializationView      Materialization = "view"
	MaterializationTable     Materialization = "table"
	MaterializationEphemeral Materialization = "ephemeral"
)

// String returns the string representation of the materialization.
func (m Materialization) String() string {
	return string(m)
}

// IsValid checks whether the materialization is a known value.
func (m Materialization) IsValid() bool {
	switch m {
	case MaterializationView, MaterializationTable, MaterializationEphemeral:
		return true
	}
	return false
}

// DatabaseSpec selects the destination database for a model. Either Fixed is
// set, or the conditional triple is: when the target's platform type equals
// MatchType the database is IfMatch, otherwise Else. Platform types are an
// opaque external enumeration; loom only compares strings.
type DatabaseSpec struct {
	Fixed string `json:"fixed,omitempty"`

	MatchType string `json:"match_type,omitempty"`
	IfMatch   string `json:"if_match,omitempty"`
	Else      string `json:"else,omitempty"`
}

// IsZero reports whether the spec selects no database at all.
func (d DatabaseSpec) IsZero() bool {
	return d.Fixed == "" && d.MatchType == ""
}

// IsConditional reports whether the spec depends on the target platform type.
func (d DatabaseSpec) IsConditional() bool {
	return d.MatchType != ""
}

// Resolve returns the database name for the given target platform type.
// It returns an empty string when the spec is zero; the caller falls back to
// the target's own database.
func (d DatabaseSpec) Resolve(targetType string) string {
	if d.MatchType == "" {
		return d.Fixed
	}
	if targetType == d.MatchType {
		return d.IfMatch
	}
	return d.Else
}

// Config is the declarative configuration block of a model file.
type Config struct {
	Enabled      bool            `json:"enabled"`
	Schema       string          `json:"schema,omitempty"`
	Database     DatabaseSpec    `json:"database,omitzero"`
	Materialized Materialization `json:"materialized"`
}

// DefaultConfig returns the configuration applied to a model file with no
// config block: enabled, materialized as a view, database and schema
// inherited from the target.
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		Materialized: MaterializationView,
	}
}

// Model is one node in the fixture dependency graph. Models are static:
// parsed from disk, never mutated at runtime.
type Model struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Config Config `json:"config"`

	// Refs lists referenced model names in order of first appearance,
	// deduplicated. References are resolved by name at compile time.
	Refs []string `json:"refs,omitempty"`

	// RawSQL is the query body with the config block stripped and ref
	// expressions left in place.
	RawSQL string `json:"-"`
}
