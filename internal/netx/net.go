// Package netx holds small HTTP client helpers.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// PutPresigned uploads body to a presigned S3 PUT URL. Any status other than
// 200 is an error carrying the response body.
func PutPresigned(ctx context.Context, client *http.Client, url, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}
