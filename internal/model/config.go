package model

import (
	"fmt"

	"go-etl-pipeline/internal/valspec"
)

// FieldType is the warehouse-facing type of an output column.
type FieldType string

const (
	FieldInteger FieldType = "INTEGER"
	FieldString  FieldType = "STRING"
	FieldNumeric FieldType = "NUMERIC"
)

// Field is one column of a resource's output schema.
type Field struct {
	Name string    `json:"name" validate:"required"`
	Type FieldType `json:"type" validate:"required,oneof=INTEGER STRING NUMERIC"`
}

// ResourceConfig declares one data resource: where it comes from, how its
// records are validated, how the transformed rows are shaped, and where the
// published file goes. Name is the join key used by SummaryConfig.Deps and
// must be unique across the resource table.
type ResourceConfig struct {
	Name         string       `json:"name" validate:"required"`
	SourceURL    string       `json:"sourceUrl" validate:"required,url"`
	MaxRecords   int          `json:"maxRecords" validate:"min=0"` // 0 means fetch everything
	Validation   valspec.Spec `json:"-"`
	TransformRef string       `json:"transformRef" validate:"required"` // SQL artifact, relative to the sql dir
	StorageName  string       `json:"storageName" validate:"required"`  // object name in the publish bucket
	OutputFields []Field      `json:"outputFields" validate:"required,min=1,dive"`
}

// TableName is the destination warehouse table for the resource's cleaned
// rows.
func (r ResourceConfig) TableName() string {
	return r.Name + "_table"
}

// SummaryConfig declares a cross-resource aggregate. Every entry in Deps must
// name an existing ResourceConfig; the summary only runs once all of them
// have finished loading.
type SummaryConfig struct {
	Name          string   `json:"name" validate:"required"`
	DefinitionRef string   `json:"definitionRef" validate:"required"` // SQL artifact, relative to the sql dir
	Destination   string   `json:"destination" validate:"required"`   // warehouse table
	Deps          []string `json:"deps" validate:"required,min=1"`
}

// WriteMode controls how load and summary write their destination tables.
type WriteMode string

const (
	// WriteOverwrite truncates the destination first. It keeps re-runs
	// idempotent but is unsuitable for production history; see WriteAppend.
	WriteOverwrite WriteMode = "overwrite"
	WriteAppend    WriteMode = "append"
)

// ParseWriteMode parses a write mode, defaulting empty to overwrite.
func ParseWriteMode(s string) (WriteMode, error) {
	switch WriteMode(s) {
	case "", WriteOverwrite:
		return WriteOverwrite, nil
	case WriteAppend:
		return WriteAppend, nil
	}
	return "", fmt.Errorf("unknown write mode %q", s)
}
