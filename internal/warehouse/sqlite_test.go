package warehouse

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-etl-pipeline/internal/model"
)

const sqlDir = "../../sql"

var productFields = []model.Field{
	{Name: "product_id", Type: model.FieldInteger},
	{Name: "name", Type: model.FieldString},
	{Name: "category", Type: model.FieldString},
	{Name: "brand", Type: model.FieldString},
	{Name: "price", Type: model.FieldNumeric},
}

var cartFields = []model.Field{
	{Name: "cart_id", Type: model.FieldInteger},
	{Name: "user_id", Type: model.FieldInteger},
	{Name: "product_id", Type: model.FieldInteger},
	{Name: "quantity", Type: model.FieldInteger},
	{Name: "price", Type: model.FieldNumeric},
	{Name: "total_cart_value", Type: model.FieldNumeric},
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestWarehouse(t *testing.T) *SQLite {
	t.Helper()
	wh, err := NewSQLite(filepath.Join(t.TempDir(), "warehouse.db"))
	require.NoError(t, err)
	t.Cleanup(func() { wh.Close() })
	return wh
}

func loadFixtures(t *testing.T, wh *SQLite) {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()

	products := writeCSV(t, dir, "products.csv",
		"product_id,name,category,brand,price\n"+
			"1,widget,beauty,acme,10\n"+
			"2,crackers,groceries,acme,5\n"+
			"3,sofa,furniture,comfyco,200\n"+
			"4,lamp,beauty,acme,20\n")
	require.NoError(t, wh.Load(ctx, "products_table", productFields, products, model.WriteOverwrite))

	carts := writeCSV(t, dir, "carts.csv",
		"cart_id,user_id,product_id,quantity,price,total_cart_value\n"+
			"1,1,1,2,10,25\n"+
			"1,1,2,1,5,25\n"+
			"2,2,4,3,20,60\n")
	require.NoError(t, wh.Load(ctx, "carts_table", cartFields, carts, model.WriteOverwrite))
}

func TestSummarizeCategories(t *testing.T) {
	wh := newTestWarehouse(t)
	loadFixtures(t, wh)
	ctx := context.Background()

	query, err := os.ReadFile(filepath.Join(sqlDir, "summarize_category.sql"))
	require.NoError(t, err)
	require.NoError(t, wh.Exec(ctx, string(query), "category_summary_table", model.WriteOverwrite))

	rows, err := wh.DB().QueryContext(ctx,
		"SELECT category, items_sold, total_sales FROM category_summary_table")
	require.NoError(t, err)
	defer rows.Close()

	type summary struct {
		category  string
		itemsSold int
		sales     float64
	}
	var got []summary
	for rows.Next() {
		var s summary
		require.NoError(t, rows.Scan(&s.category, &s.itemsSold, &s.sales))
		got = append(got, s)
	}
	require.NoError(t, rows.Err())

	// furniture never sold, so it leads the ascending order with zeros
	want := []summary{
		{"furniture", 0, 0},
		{"groceries", 1, 5},
		{"beauty", 5, 80},
	}
	assert.Equal(t, want, got)
}

func TestLoadOverwriteIsIdempotent(t *testing.T) {
	wh := newTestWarehouse(t)
	ctx := context.Background()
	dir := t.TempDir()

	csvPath := writeCSV(t, dir, "products.csv",
		"product_id,name,category,brand,price\n"+
			"1,widget,beauty,acme,10\n"+
			"2,crackers,groceries,acme,5\n")

	countRows := func() int {
		var n int
		require.NoError(t, wh.DB().QueryRowContext(ctx,
			"SELECT COUNT(*) FROM products_table").Scan(&n))
		return n
	}

	require.NoError(t, wh.Load(ctx, "products_table", productFields, csvPath, model.WriteOverwrite))
	require.NoError(t, wh.Load(ctx, "products_table", productFields, csvPath, model.WriteOverwrite))
	assert.Equal(t, 2, countRows(), "overwrite load replaces prior contents")

	require.NoError(t, wh.Load(ctx, "products_table", productFields, csvPath, model.WriteAppend))
	assert.Equal(t, 4, countRows(), "append load stacks on prior contents")
}

func TestExecWriteModes(t *testing.T) {
	wh := newTestWarehouse(t)
	loadFixtures(t, wh)
	ctx := context.Background()

	query := "SELECT category, COUNT(*) AS n FROM products_table GROUP BY category"

	countRows := func() int {
		var n int
		require.NoError(t, wh.DB().QueryRowContext(ctx,
			"SELECT COUNT(*) FROM category_counts").Scan(&n))
		return n
	}

	require.NoError(t, wh.Exec(ctx, query, "category_counts", model.WriteOverwrite))
	require.NoError(t, wh.Exec(ctx, query, "category_counts", model.WriteOverwrite))
	assert.Equal(t, 3, countRows())

	require.NoError(t, wh.Exec(ctx, query, "category_counts", model.WriteAppend))
	assert.Equal(t, 6, countRows())
}

func TestLoadRejectsRaggedRows(t *testing.T) {
	wh := newTestWarehouse(t)
	dir := t.TempDir()

	// schema has 5 columns, the data row only 2
	csvPath := writeCSV(t, dir, "bad.csv",
		"product_id,name,category,brand,price\n"+
			"1,widget,beauty,acme,10\n"+
			"2,crackers\n")

	err := wh.Load(context.Background(), "products_table", productFields, csvPath, model.WriteOverwrite)
	require.Error(t, err)
}
