package warehouse

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/option"

	"go-etl-pipeline/internal/model"
)

// BigQuery loads published gs:// objects into dataset tables and runs
// summary queries with a destination table. Locators must be gs:// URIs, so
// it pairs with the GCS object store.
type BigQuery struct {
	client  *bigquery.Client
	dataset string
}

func NewBigQuery(ctx context.Context, project, dataset, credentialsFile string) (*BigQuery, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := bigquery.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("create BigQuery client: %w", err)
	}
	return &BigQuery{client: client, dataset: dataset}, nil
}

func (b *BigQuery) Close() error {
	return b.client.Close()
}

func bqFieldType(t model.FieldType) bigquery.FieldType {
	switch t {
	case model.FieldInteger:
		return bigquery.IntegerFieldType
	case model.FieldNumeric:
		return bigquery.NumericFieldType
	default:
		return bigquery.StringFieldType
	}
}

func disposition(mode model.WriteMode) bigquery.TableWriteDisposition {
	if mode == model.WriteAppend {
		return bigquery.WriteAppend
	}
	return bigquery.WriteTruncate
}

func (b *BigQuery) Load(ctx context.Context, table string, schema []model.Field, locator string, mode model.WriteMode) error {
	bqSchema := make(bigquery.Schema, len(schema))
	for i, field := range schema {
		bqSchema[i] = &bigquery.FieldSchema{Name: field.Name, Type: bqFieldType(field.Type)}
	}

	gcsRef := bigquery.NewGCSReference(locator)
	gcsRef.SourceFormat = bigquery.CSV
	gcsRef.SkipLeadingRows = 1
	gcsRef.Schema = bqSchema

	loader := b.client.Dataset(b.dataset).Table(table).LoaderFrom(gcsRef)
	loader.WriteDisposition = disposition(mode)

	job, err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("start load of %s into %s: %w", locator, table, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait for load of %s: %w", locator, err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("load %s into %s: %w", locator, table, err)
	}
	return nil
}

func (b *BigQuery) Exec(ctx context.Context, query, destTable string, mode model.WriteMode) error {
	q := b.client.Query(query)
	q.DefaultDatasetID = b.dataset
	q.Dst = b.client.Dataset(b.dataset).Table(destTable)
	q.WriteDisposition = disposition(mode)

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("start query into %s: %w", destTable, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait for query into %s: %w", destTable, err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("query into %s: %w", destTable, err)
	}
	return nil
}
