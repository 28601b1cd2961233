package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"go-etl-pipeline/internal/model"
	"go-etl-pipeline/internal/valspec"
)

// Fetch pulls every page of a JSON collection and materializes the raw batch
// to the dataset dir, returning the file handle. The API shape follows
// dummyjson-style endpoints: the response is an object whose items live under
// a key equal to the last URL path segment, and pagination uses limit/skip
// query parameters. maxRecords caps the total; 0 means fetch everything.
func Fetch(ctx context.Context, client *http.Client, res model.ResourceConfig, dir string, pageSize, maxRecords int) (string, error) {
	parsed, err := url.Parse(res.SourceURL)
	if err != nil {
		return "", &model.FetchError{Resource: res.Name, Err: err}
	}
	resourceKey := path.Base(parsed.Path)

	var results []valspec.GenericRecord
	skip := 0
	for maxRecords == 0 || len(results) < maxRecords {
		items, err := fetchPage(ctx, client, parsed, resourceKey, pageSize, skip)
		if err != nil {
			return "", &model.FetchError{Resource: res.Name, Err: err}
		}
		if len(items) == 0 {
			break
		}
		skip += len(items)
		results = append(results, items...)
	}
	if maxRecords > 0 && len(results) > maxRecords {
		results = results[:maxRecords]
	}

	handle, err := writeRecords(dir, "raw_"+res.Name, results)
	if err != nil {
		return "", &model.FetchError{Resource: res.Name, Err: err}
	}
	return handle, nil
}

func fetchPage(ctx context.Context, client *http.Client, base *url.URL, resourceKey string, limit, skip int) ([]valspec.GenericRecord, error) {
	pageURL := *base
	q := pageURL.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(skip))
	pageURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: unexpected status %s", pageURL.String(), resp.Status)
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", pageURL.String(), err)
	}

	raw, ok := payload[resourceKey]
	if !ok {
		return nil, fmt.Errorf("response from %s has no %q field", pageURL.String(), resourceKey)
	}
	var items []valspec.GenericRecord
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s items: %w", resourceKey, err)
	}
	return items, nil
}
