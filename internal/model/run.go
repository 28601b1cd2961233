package model

import "go-etl-pipeline/internal/valspec"

// RunSpec is the per-run configuration accepted by the API and CLI. Zero
// values fall back to the process-level defaults.
type RunSpec struct {
	MaxRecords int      `json:"maxRecords"`          // per-resource fetch ceiling, 0 = all
	WriteMode  string   `json:"writeMode"`           // "overwrite" (default) or "append"
	Resources  []string `json:"resources,omitempty"` // subset of the catalog, empty = all

	// Rules are per-resource validation overrides, keyed by resource name.
	// They are compiled with valspec.FromRules and merged over the catalog
	// spec for the run; a compiled rule replaces the catalog rule for the
	// same field.
	Rules map[string]valspec.ValidationRules `json:"rules,omitempty"`
}

// Run statuses persisted in the store.
const (
	RunPending   = "pending"
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)
