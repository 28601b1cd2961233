package pipeline

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"go-etl-pipeline/internal/model"
)

// Transform runs the resource's SQL artifact over the validated batch and
// materializes the result as CSV (header row first), returning the handle.
//
// The artifact receives the whole JSON document through the named parameter
// :input and reads it with the JSON1 table functions, so one-level array
// flattening (one row per nested sub-object, primary fields repeated) is
// expressed in the SQL itself rather than in Go.
func Transform(ctx context.Context, res model.ResourceConfig, validatedHandle, sqlDir, dir string) (string, error) {
	query, err := os.ReadFile(filepath.Join(sqlDir, res.TransformRef))
	if err != nil {
		return "", &model.TransformError{Resource: res.Name, Err: err}
	}
	doc, err := os.ReadFile(validatedHandle)
	if err != nil {
		return "", &model.IOError{Path: validatedHandle, Err: err}
	}

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return "", &model.TransformError{Resource: res.Name, Err: err}
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, string(query), sql.Named("input", string(doc)))
	if err != nil {
		return "", &model.TransformError{Resource: res.Name, Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", &model.TransformError{Resource: res.Name, Err: err}
	}
	if len(columns) == 0 {
		return "", &model.TransformError{Resource: res.Name, Err: fmt.Errorf("transformation %s projects no columns", res.TransformRef)}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &model.TransformError{Resource: res.Name, Err: err}
	}
	outPath := filepath.Join(dir, "cleaned_"+res.Name+".csv")
	out, err := os.Create(outPath)
	if err != nil {
		return "", &model.TransformError{Resource: res.Name, Err: err}
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err := writer.Write(columns); err != nil {
		return "", &model.TransformError{Resource: res.Name, Err: err}
	}

	values := make([]interface{}, len(columns))
	scan := make([]interface{}, len(columns))
	for i := range values {
		scan[i] = &values[i]
	}
	record := make([]string, len(columns))
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return "", &model.TransformError{Resource: res.Name, Err: err}
		}
		for i, v := range values {
			record[i] = formatCell(v)
		}
		if err := writer.Write(record); err != nil {
			return "", &model.TransformError{Resource: res.Name, Err: err}
		}
	}
	if err := rows.Err(); err != nil {
		return "", &model.TransformError{Resource: res.Name, Err: err}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", &model.TransformError{Resource: res.Name, Err: err}
	}
	return outPath, nil
}

func formatCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
