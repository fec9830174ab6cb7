package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/lehigh-university-libraries/imagesearch/internal/apperr"
)

// Fetcher downloads images to local files
type Fetcher struct {
	HTTPClient *http.Client
	UserAgent  string
}

// NewFetcher creates a new image fetcher. A zero timeout leaves requests
// unbounded apart from the caller's context.
func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		UserAgent: userAgent,
	}
}

// Download saves the image at url as directory/filename and returns the
// absolute path written. The directory and its parents are created when
// missing, and an existing file with the same name is replaced.
func (f *Fetcher) Download(ctx context.Context, url, directory, filename string) (string, error) {
	const op = "download image"
	slog.Info("Downloading image", "url", url)

	if filename == "" {
		return "", apperr.Newf(apperr.KindValidation, op, "filename must not be empty")
	}

	if err := os.MkdirAll(directory, 0755); err != nil {
		return "", apperr.New(apperr.KindIO, op, fmt.Errorf("failed to create directory %s: %w", directory, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", apperr.New(apperr.KindValidation, op, fmt.Errorf("invalid image url: %w", err))
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return "", apperr.New(apperr.KindUpstream, op, fmt.Errorf("failed to fetch image: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperr.Upstream(op, resp.StatusCode, fmt.Errorf("image URL returned %s", resp.Status))
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.New(apperr.KindUpstream, op, fmt.Errorf("failed to read image data: %w", err))
	}

	fullPath := filepath.Join(directory, filename)
	if err := os.WriteFile(fullPath, imageData, 0644); err != nil {
		return "", apperr.New(apperr.KindIO, op, fmt.Errorf("failed to write image file: %w", err))
	}

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", apperr.New(apperr.KindIO, op, fmt.Errorf("failed to resolve %s: %w", fullPath, err))
	}

	slog.Info("Image downloaded", "path", absPath, "bytes", len(imageData))
	return absPath, nil
}
