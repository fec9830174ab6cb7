package providers

import (
	"context"

	"github.com/lehigh-university-libraries/imagesearch/internal/models"
)

// ImageSource defines the interface for an image search provider
type ImageSource interface {
	// Search returns at most limit records in provider order
	Search(ctx context.Context, query string, limit int) ([]models.ImageRecord, error)
	// Download saves url as directory/filename and returns the absolute path
	Download(ctx context.Context, url, directory, filename string) (string, error)
}
