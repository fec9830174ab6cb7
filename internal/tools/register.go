package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/lehigh-university-libraries/imagesearch/internal/apperr"
	"github.com/lehigh-university-libraries/imagesearch/internal/json"
	"github.com/lehigh-university-libraries/imagesearch/internal/models"
	"github.com/lehigh-university-libraries/imagesearch/internal/serpapi"
)

const (
	ServerName = "google-image-search"

	ToolSearchImages  = "search_images"
	ToolDownloadImage = "download_image"
	ToolAnalyzeImages = "analyze_images"
)

// NewServer returns an MCP server with the image tools registered.
func NewServer(d *Dispatcher, version string) *server.MCPServer {
	s := server.NewMCPServer(ServerName, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	d.Register(s)
	return s
}

// Register adds the image tools to s.
func (d *Dispatcher) Register(s *server.MCPServer) {
	s.AddTool(searchImagesTool(), d.handleSearchImages)
	s.AddTool(downloadImageTool(), d.handleDownloadImage)
	s.AddTool(analyzeImagesTool(), d.handleAnalyzeImages)
}

func searchImagesTool() mcp.Tool {
	return mcp.NewTool(ToolSearchImages,
		mcp.WithDescription("Search for images using Google Image Search"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query for finding images"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 10)"),
			mcp.DefaultNumber(serpapi.DefaultLimit),
			mcp.Min(0),
		),
	)
}

func downloadImageTool() mcp.Tool {
	return mcp.NewTool(ToolDownloadImage,
		mcp.WithDescription("Download an image to a local directory"),
		mcp.WithString("image_url",
			mcp.Required(),
			mcp.Description("URL of the image to download"),
		),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description("Directory path where the image should be saved"),
		),
		mcp.WithString("filename",
			mcp.Required(),
			mcp.Description("Filename for the downloaded image (including extension)"),
		),
	)
}

func analyzeImagesTool() mcp.Tool {
	return mcp.NewTool(ToolAnalyzeImages,
		mcp.WithDescription("Analyze image search results to find the most relevant ones"),
		mcp.WithArray("search_results",
			mcp.Required(),
			mcp.Description("Array of image search results to analyze"),
			mcp.Items(map[string]any{"type": "object"}),
		),
		mcp.WithString("criteria",
			mcp.Required(),
			mcp.Description("Criteria for selecting the best images (e.g., 'professional', 'colorful', etc.)"),
		),
	)
}

func (d *Dispatcher) handleSearchImages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	query, err := requiredString(args, "query")
	if err != nil {
		return failureResult("Failed to search for images", err), nil
	}

	limit := serpapi.DefaultLimit
	if v, ok := args["limit"]; ok && v != nil {
		limit, err = cast.ToIntE(v)
		if err != nil || limit < 0 {
			return failureResult("Failed to search for images",
				apperr.Newf(apperr.KindValidation, "decode arguments", "limit must be a non-negative integer, got %v", v)), nil
		}
	}

	return d.SearchImages(ctx, query, limit), nil
}

func (d *Dispatcher) handleDownloadImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	var values [3]string
	for i, key := range []string{"image_url", "output_path", "filename"} {
		v, err := requiredString(args, key)
		if err != nil {
			return failureResult("Failed to download image", err), nil
		}
		values[i] = v
	}

	return d.DownloadImage(ctx, values[0], values[1], values[2]), nil
}

func (d *Dispatcher) handleAnalyzeImages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	records, err := decodeRecords(args["search_results"])
	if err != nil {
		return failureResult("Failed to analyze images", err), nil
	}

	// an explicit "" is valid criteria; an absent one is not
	rawCriteria, ok := args["criteria"]
	if !ok || rawCriteria == nil {
		return failureResult("Failed to analyze images",
			apperr.Newf(apperr.KindValidation, "decode arguments", "criteria is required")), nil
	}
	criteria, err := cast.ToStringE(rawCriteria)
	if err != nil {
		return failureResult("Failed to analyze images",
			apperr.Newf(apperr.KindValidation, "decode arguments", "criteria must be a string")), nil
	}

	return d.AnalyzeImages(ctx, records, criteria), nil
}

func requiredString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", apperr.Newf(apperr.KindValidation, "decode arguments", "%s is required", key)
	}
	s, err := cast.ToStringE(v)
	if err != nil || strings.TrimSpace(s) == "" {
		return "", apperr.Newf(apperr.KindValidation, "decode arguments", "%s must be a non-empty string", key)
	}
	return s, nil
}

// decodeRecords accepts the search_results argument either as a JSON array
// or as a string holding one, as some hosts stringify nested arguments.
func decodeRecords(raw any) ([]models.ImageRecord, error) {
	const op = "decode arguments"

	if s, ok := raw.(string); ok {
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			return nil, apperr.Newf(apperr.KindValidation, op, "search_results is not a valid JSON array")
		}
		raw = parsed
	}

	if raw == nil {
		return nil, apperr.Newf(apperr.KindValidation, op, "search_results is required")
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, apperr.Newf(apperr.KindValidation, op, "search_results must be an array, got %T", raw)
	}

	records := make([]models.ImageRecord, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, apperr.Newf(apperr.KindValidation, op, "search_results[%d] must be an object, got %T", i, item)
		}
		if err := models.CheckFields(obj); err != nil {
			return nil, apperr.New(apperr.KindValidation, op, fmt.Errorf("search_results[%d].%w", i, err))
		}
		record, err := decodeRecord(obj)
		if err != nil {
			return nil, apperr.Newf(apperr.KindValidation, op, "search_results[%d] is not a valid image record", i)
		}
		records = append(records, record)
	}

	return records, nil
}

func decodeRecord(obj map[string]any) (models.ImageRecord, error) {
	var record models.ImageRecord
	data, err := json.Marshal(obj)
	if err != nil {
		return record, err
	}
	err = json.Unmarshal(data, &record)
	return record, err
}
