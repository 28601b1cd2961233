package objstore

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS publishes files to a Google Cloud Storage bucket. The returned locator
// is a gs:// URI, which BigQuery can load from directly.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS creates a GCS store. credentialsFile may be empty, in which case
// application default credentials are used.
func NewGCS(ctx context.Context, bucket, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err != nil {
			return nil, fmt.Errorf("service account key not found at %s: %w", credentialsFile, err)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

func (g *GCS) Upload(ctx context.Context, localPath, name string) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer src.Close()

	writer := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	writer.ContentType = "text/csv"

	if err := copyAndClose(writer, src); err != nil {
		return "", fmt.Errorf("upload %s to gs://%s/%s: %w", localPath, g.bucket, name, err)
	}
	return fmt.Sprintf("gs://%s/%s", g.bucket, name), nil
}

// copyAndClose streams src into w, closing w on both paths so a failed copy
// does not leave the upload session pending.
func copyAndClose(w io.WriteCloser, src io.Reader) error {
	if _, err := io.Copy(w, src); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (g *GCS) Close() error {
	return g.client.Close()
}
