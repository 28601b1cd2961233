package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"go-etl-pipeline/internal/model"
	"go-etl-pipeline/internal/warehouse"
)

// Load ingests the published CSV into the resource's destination table using
// the run's write mode. Overwrite is the default so re-running a graph over
// the same source data leaves identical table contents.
func Load(ctx context.Context, wh warehouse.Warehouse, res model.ResourceConfig, locator string, mode model.WriteMode) error {
	if err := wh.Load(ctx, res.TableName(), res.OutputFields, locator, mode); err != nil {
		return &model.LoadError{Resource: res.Name, Table: res.TableName(), Err: err}
	}
	return nil
}

// Summarize runs a summary's SQL artifact into its destination table. The
// query reads the tables its dependency resources loaded; the graph
// guarantees those loads completed first.
func Summarize(ctx context.Context, wh warehouse.Warehouse, sum model.SummaryConfig, sqlDir string, mode model.WriteMode) error {
	query, err := os.ReadFile(filepath.Join(sqlDir, sum.DefinitionRef))
	if err != nil {
		return &model.SummaryError{Summary: sum.Name, Err: err}
	}
	if err := wh.Exec(ctx, string(query), sum.Destination, mode); err != nil {
		return &model.SummaryError{Summary: sum.Name, Err: err}
	}
	return nil
}
