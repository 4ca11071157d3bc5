package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxDownloadSize caps the size of a remote image.
const maxDownloadSize = 16 << 20

// ErrImageTooLarge is returned when the remote image exceeds the download limit.
var ErrImageTooLarge = errors.New("image too large")

// DownloadImage fetches a remote image and returns its content.
// A nil client falls back to http.DefaultClient.
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid image URI %s: %w", url, err)
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to download image file from URI %s: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to download image file from URI: %s, status %v", url, res.Status)
	}

	// Read one byte past the limit to tell a truncated body from a full one.
	data, err := io.ReadAll(io.LimitReader(res.Body, maxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}
	if len(data) > maxDownloadSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrImageTooLarge, url, maxDownloadSize)
	}

	if !IsImage(data) {
		return nil, fmt.Errorf("the downloaded file is not a valid image type")
	}
	return data, nil
}
