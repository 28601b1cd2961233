package pipeline

import (
	"context"

	"go-etl-pipeline/internal/model"
	"go-etl-pipeline/internal/objstore"
)

// Publish copies the transformed CSV to durable object storage and returns
// its locator. Publish failures are retryable; the executor owns the policy.
func Publish(ctx context.Context, store objstore.Store, res model.ResourceConfig, csvHandle string) (string, error) {
	locator, err := store.Upload(ctx, csvHandle, res.StorageName)
	if err != nil {
		return "", &model.PublishError{Resource: res.Name, Err: err}
	}
	return locator, nil
}
