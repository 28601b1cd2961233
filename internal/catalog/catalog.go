// Package catalog holds the built-in configuration tables: one entry per
// data resource and one per cross-resource summary. Adding a resource or a
// summary means adding a row here plus its SQL artifact, no new pipeline
// code.
package catalog

import (
	"go-etl-pipeline/internal/model"
	"go-etl-pipeline/internal/valspec"
)

// Resources returns the resource configuration table.
func Resources() []model.ResourceConfig {
	return []model.ResourceConfig{
		{
			Name:         "users",
			SourceURL:    "https://dummyjson.com/users",
			TransformRef: "transform_users.sql",
			StorageName:  "users.csv",
			Validation: valspec.Spec{
				"id":        valspec.IsInt,
				"firstName": valspec.IsString,
				"lastName":  valspec.IsString,
				"age":       valspec.PositiveInt,
				"gender":    valspec.IsString,
				"address": valspec.Spec{
					"address":    valspec.IsString,
					"city":       valspec.IsString,
					"postalCode": valspec.Matches(`^[0-9]{5}`),
				},
			},
			OutputFields: []model.Field{
				{Name: "user_id", Type: model.FieldInteger},
				{Name: "first_name", Type: model.FieldString},
				{Name: "last_name", Type: model.FieldString},
				{Name: "gender", Type: model.FieldString},
				{Name: "age", Type: model.FieldInteger},
				{Name: "street", Type: model.FieldString},
				{Name: "city", Type: model.FieldString},
				{Name: "postal_code", Type: model.FieldString},
			},
		},
		{
			Name:         "products",
			SourceURL:    "https://dummyjson.com/products",
			TransformRef: "transform_products.sql",
			StorageName:  "products.csv",
			Validation: valspec.Spec{
				"id":       valspec.IsInt,
				"title":    valspec.IsString,
				"category": valspec.IsString,
				"brand":    valspec.IsString,
				"price":    valspec.Positive,
			},
			OutputFields: []model.Field{
				{Name: "product_id", Type: model.FieldInteger},
				{Name: "name", Type: model.FieldString},
				{Name: "category", Type: model.FieldString},
				{Name: "brand", Type: model.FieldString},
				{Name: "price", Type: model.FieldNumeric},
			},
		},
		{
			Name:         "carts",
			SourceURL:    "https://dummyjson.com/carts",
			TransformRef: "transform_carts.sql",
			StorageName:  "carts.csv",
			Validation: valspec.Spec{
				"id":     valspec.IsInt,
				"userId": valspec.IsInt,
				// applied element-wise over the nested line items
				"products": valspec.Spec{
					"id":       valspec.IsInt,
					"quantity": valspec.PositiveInt,
					"price":    valspec.Positive,
				},
			},
			OutputFields: []model.Field{
				{Name: "cart_id", Type: model.FieldInteger},
				{Name: "user_id", Type: model.FieldInteger},
				{Name: "product_id", Type: model.FieldInteger},
				{Name: "quantity", Type: model.FieldInteger},
				{Name: "price", Type: model.FieldNumeric},
				{Name: "total_cart_value", Type: model.FieldNumeric},
			},
		},
	}
}

// Summaries returns the summary configuration table.
func Summaries() []model.SummaryConfig {
	return []model.SummaryConfig{
		{
			Name:          "user_summary",
			DefinitionRef: "summarize_user.sql",
			Destination:   "user_summary_table",
			Deps:          []string{"users", "carts"},
		},
		{
			Name:          "category_summary",
			DefinitionRef: "summarize_category.sql",
			Destination:   "category_summary_table",
			Deps:          []string{"products", "carts"},
		},
	}
}
