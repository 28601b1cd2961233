package pipeline

import (
	"go-etl-pipeline/internal/model"
	"go-etl-pipeline/internal/valspec"
)

// Validate filters the raw batch through the resource's validation spec and
// materializes the survivors. Invalid records are dropped, never fatal; only
// an unreadable input handle is an error. Returns the new handle plus
// kept/dropped counts.
func Validate(res model.ResourceConfig, rawHandle, dir string) (string, int, int, error) {
	records, err := readRecords(rawHandle)
	if err != nil {
		return "", 0, 0, &model.IOError{Path: rawHandle, Err: err}
	}

	kept, dropped := valspec.Filter(res.Validation, records)

	handle, err := writeRecords(dir, "validated_"+res.Name, kept)
	if err != nil {
		return "", 0, 0, &model.IOError{Path: dir, Err: err}
	}
	return handle, len(kept), dropped, nil
}
