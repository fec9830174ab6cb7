// Package tools exposes image search, download and analysis as MCP tools.
//
// Every tool returns an envelope: a successful call carries one or more text
// items, a failed call carries a single text item and IsError set. Errors are
// never returned to the MCP server itself.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lehigh-university-libraries/imagesearch/internal/apperr"
	"github.com/lehigh-university-libraries/imagesearch/internal/images"
	"github.com/lehigh-university-libraries/imagesearch/internal/json"
	"github.com/lehigh-university-libraries/imagesearch/internal/models"
	"github.com/lehigh-university-libraries/imagesearch/internal/providers"
	"github.com/lehigh-university-libraries/imagesearch/internal/relevance"
)

// Dispatcher adapts an ImageSource to the three image tools.
type Dispatcher struct {
	source providers.ImageSource
}

// New returns a Dispatcher backed by source.
func New(source providers.ImageSource) *Dispatcher {
	return &Dispatcher{source: source}
}

// SearchImages searches the provider and returns at most limit records.
func (d *Dispatcher) SearchImages(ctx context.Context, query string, limit int) *mcp.CallToolResult {
	return d.call(ctx, ToolSearchImages, "Failed to search for images", func(ctx context.Context) ([]mcp.Content, error) {
		results, err := d.source.Search(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		body, err := encodeRecords(results)
		if err != nil {
			return nil, err
		}
		return []mcp.Content{
			mcp.NewTextContent(fmt.Sprintf("Found %d images for query '%s':", len(results), query)),
			mcp.NewTextContent(body),
		}, nil
	})
}

// DownloadImage saves imageURL as outputPath/filename.
func (d *Dispatcher) DownloadImage(ctx context.Context, imageURL, outputPath, filename string) *mcp.CallToolResult {
	return d.call(ctx, ToolDownloadImage, "Failed to download image", func(ctx context.Context) ([]mcp.Content, error) {
		savedPath, err := d.source.Download(ctx, imageURL, outputPath, filename)
		if err != nil {
			return nil, err
		}
		content := []mcp.Content{
			mcp.NewTextContent(fmt.Sprintf("Image successfully downloaded to: %s", savedPath)),
		}
		// best effort: a non-image body is still saved
		if info, err := images.Inspect(savedPath); err == nil {
			content = append(content, mcp.NewTextContent(fmt.Sprintf("Detected %s", info)))
		} else {
			slog.Debug("Downloaded file is not a recognized image", "path", savedPath, "err", err)
		}
		return content, nil
	})
}

// AnalyzeImages scores, sorts and labels records against criteria.
func (d *Dispatcher) AnalyzeImages(ctx context.Context, records []models.ImageRecord, criteria string) *mcp.CallToolResult {
	return d.call(ctx, ToolAnalyzeImages, "Failed to analyze images", func(ctx context.Context) ([]mcp.Content, error) {
		analyzed := relevance.Analyze(records, criteria)
		body, err := encodeRecords(analyzed)
		if err != nil {
			return nil, err
		}
		return []mcp.Content{
			mcp.NewTextContent(fmt.Sprintf("Analyzed %d images based on criteria: '%s'", len(analyzed), criteria)),
			mcp.NewTextContent(body),
		}, nil
	})
}

// call runs fn and wraps its outcome in an envelope. Panics are reported as
// failures too.
func (d *Dispatcher) call(ctx context.Context, tool, failure string, fn func(context.Context) ([]mcp.Content, error)) (result *mcp.CallToolResult) {
	logger := slog.With("tool", tool, "call_id", uuid.NewString())
	start := time.Now()
	logger.Info("Executing tool")

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Tool panicked", "panic", r)
			result = mcp.NewToolResultError(fmt.Sprintf("%s: %v", failure, r))
		}
	}()

	content, err := fn(ctx)
	if err != nil {
		logger.Error("Tool failed", "kind", apperr.KindOf(err), "err", err, "duration", time.Since(start))
		return failureResult(failure, err)
	}

	logger.Info("Tool finished", "duration", time.Since(start))
	return &mcp.CallToolResult{Content: content}
}

func failureResult(failure string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %s", failure, err))
}

func encodeRecords(records []models.ImageRecord) (string, error) {
	if records == nil {
		records = []models.ImageRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to encode results: %w", err)
	}
	return string(data), nil
}
