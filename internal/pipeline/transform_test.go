package pipeline

import (
	"context"
	"encoding/csv"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-etl-pipeline/internal/model"
	"go-etl-pipeline/internal/valspec"
)

const sqlDir = "../../sql"

func cartsConfig() model.ResourceConfig {
	return model.ResourceConfig{
		Name:         "carts",
		SourceURL:    "https://dummyjson.com/carts",
		TransformRef: "transform_carts.sql",
		StorageName:  "carts.csv",
		OutputFields: []model.Field{
			{Name: "cart_id", Type: model.FieldInteger},
			{Name: "user_id", Type: model.FieldInteger},
			{Name: "product_id", Type: model.FieldInteger},
			{Name: "quantity", Type: model.FieldInteger},
			{Name: "price", Type: model.FieldNumeric},
			{Name: "total_cart_value", Type: model.FieldNumeric},
		},
	}
}

func TestTransformFlattensLineItems(t *testing.T) {
	dir := t.TempDir()

	cart := valspec.GenericRecord{
		"id":     float64(7),
		"userId": float64(42),
		"total":  float64(260),
		"products": []interface{}{
			map[string]interface{}{"id": float64(1), "quantity": float64(2), "price": float64(30)},
			map[string]interface{}{"id": float64(2), "quantity": float64(1), "price": float64(100)},
			map[string]interface{}{"id": float64(3), "quantity": float64(5), "price": float64(20)},
		},
	}
	handle, err := writeRecords(dir, "validated_carts", []valspec.GenericRecord{cart})
	require.NoError(t, err)

	outPath, err := Transform(context.Background(), cartsConfig(), handle, sqlDir, dir)
	require.NoError(t, err)

	rows := readCSV(t, outPath)
	require.Len(t, rows, 4, "header plus one row per line item")
	assert.Equal(t, []string{"cart_id", "user_id", "product_id", "quantity", "price", "total_cart_value"}, rows[0])

	for _, row := range rows[1:] {
		assert.Equal(t, "7", row[0], "cart_id repeated across the expansion")
		assert.Equal(t, "42", row[1], "user_id repeated across the expansion")
	}
	assert.Equal(t, []string{"1", "2", "3"}, []string{rows[1][2], rows[2][2], rows[3][2]})
	assert.Equal(t, []string{"2", "1", "5"}, []string{rows[1][3], rows[2][3], rows[3][3]})
}

func TestTransformMissingArtifact(t *testing.T) {
	dir := t.TempDir()
	handle, err := writeRecords(dir, "validated_carts", nil)
	require.NoError(t, err)

	res := cartsConfig()
	res.TransformRef = "transform_ghost.sql"

	_, err = Transform(context.Background(), res, handle, sqlDir, dir)
	var transformErr *model.TransformError
	require.ErrorAs(t, err, &transformErr)
}

func TestValidateStage(t *testing.T) {
	dir := t.TempDir()

	res := model.ResourceConfig{
		Name: "products",
		Validation: valspec.Spec{
			"id":    valspec.IsInt,
			"price": valspec.Positive,
		},
	}

	records := []valspec.GenericRecord{
		{"id": float64(1), "price": float64(55)},
		{"id": float64(2), "price": float64(-3)},
		{"id": float64(3)}, // missing price
		{"id": float64(4), "price": float64(80)},
	}
	rawHandle, err := writeRecords(dir, "raw_products", records)
	require.NoError(t, err)

	handle, kept, dropped, err := Validate(res, rawHandle, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, kept)
	assert.Equal(t, 2, dropped)

	survivors, err := readRecords(handle)
	require.NoError(t, err)
	require.Len(t, survivors, 2)
	assert.Equal(t, float64(1), survivors[0]["id"])
	assert.Equal(t, float64(4), survivors[1]["id"])
}

func TestValidateUnreadableHandle(t *testing.T) {
	res := model.ResourceConfig{Name: "products"}
	_, _, _, err := Validate(res, "/nonexistent/raw_products.json", t.TempDir())
	var ioErr *model.IOError
	require.ErrorAs(t, err, &ioErr)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
