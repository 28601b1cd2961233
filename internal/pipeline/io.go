package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go-etl-pipeline/internal/valspec"
)

// writeRecords materializes a batch under the run's dataset dir and returns
// the file path, the opaque handle downstream stages receive.
func writeRecords(dir, name string, records []valspec.GenericRecord) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create dataset dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, name+".json")
	data, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// readRecords reads a batch back from a handle written by writeRecords.
func readRecords(path string) ([]valspec.GenericRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []valspec.GenericRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}
