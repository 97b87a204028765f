package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ErrDownload is returned when a transfer fails. Transfers are not retried:
// a single failure aborts the whole operation.
var ErrDownload = errors.New("download failed")

// ErrNotFound wraps ErrDownload for 404 responses, so callers can tell an
// absent remote file from a transport failure. Optional files such as the
// checksum manifest are allowed to be missing; broken transfers are not.
var ErrNotFound = fmt.Errorf("%w: resource not found", ErrDownload)

// Downloader fetches release artifacts over HTTP.
type Downloader struct {
	client *http.Client
}

// NewDownloader creates a downloader. A zero timeout means no limit.
func NewDownloader(timeout time.Duration) *Downloader {
	return &Downloader{
		client: &http.Client{Timeout: timeout},
	}
}

// ToFile downloads url into destPath.
func (d *Downloader) ToFile(ctx context.Context, url, destPath string) error {
	body, err := d.open(ctx, url)
	if err != nil {
		return err
	}

	defer func() {
		_ = body.Close()
	}()

	out, err := os.Create(filepath.Clean(destPath))
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}

	if _, err = io.Copy(out, body); err != nil {
		_ = out.Close()

		return fmt.Errorf("%w: write %s: %s", ErrDownload, destPath, err)
	}

	if err = out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", destPath, err)
	}

	return nil
}

// ToString downloads url and returns the body as a string. Meant for the
// small checksum manifest, not for archives.
func (d *Downloader) ToString(ctx context.Context, url string) (string, error) {
	body, err := d.open(ctx, url)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = body.Close()
	}()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %s", ErrDownload, url, err)
	}

	return string(data), nil
}

// open issues the GET request and validates the status code.
func (d *Downloader) open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}

	response, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrDownload, url, err)
	}

	if response.StatusCode == http.StatusNotFound {
		_ = response.Body.Close()

		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}

	if response.StatusCode != http.StatusOK {
		_ = response.Body.Close()

		return nil, fmt.Errorf("%w: %s: %s", ErrDownload, url, response.Status)
	}

	return response.Body, nil
}
