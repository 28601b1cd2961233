package warehouse

import (
	"context"

	"go-etl-pipeline/internal/model"
)

// Warehouse is the destination for cleaned resource tables and summary
// tables. Load ingests a published CSV (with header row) into a table with
// the declared schema; Exec runs a SQL statement and writes its result set
// into destTable. Both honor the write mode: overwrite truncates first,
// append adds to existing contents.
type Warehouse interface {
	Load(ctx context.Context, table string, schema []model.Field, locator string, mode model.WriteMode) error
	Exec(ctx context.Context, query, destTable string, mode model.WriteMode) error
}
