package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/imagesearch/internal/apperr"
	"github.com/lehigh-university-libraries/imagesearch/internal/json"
	"github.com/lehigh-university-libraries/imagesearch/internal/models"
	"github.com/lehigh-university-libraries/imagesearch/internal/relevance"
)

type fakeSource struct {
	records []models.ImageRecord
	err     error

	downloadBody []byte
	downloadErr  error

	gotQuery string
	gotLimit int
}

func (f *fakeSource) Search(_ context.Context, query string, limit int) ([]models.ImageRecord, error) {
	f.gotQuery, f.gotLimit = query, limit
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.records) {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func (f *fakeSource) Download(_ context.Context, _, directory, filename string) (string, error) {
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	if err := os.MkdirAll(directory, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(directory, filename)
	return path, os.WriteFile(path, f.downloadBody, 0644)
}

func sampleRecords(n int) []models.ImageRecord {
	records := make([]models.ImageRecord, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, models.ImageRecord{
			Position: i,
			Title:    fmt.Sprintf("image %d", i),
			Original: fmt.Sprintf("https://example.com/%d.jpg", i),
		})
	}
	return records
}

func texts(t *testing.T, result *mcp.CallToolResult) []string {
	t.Helper()
	out := make([]string, 0, len(result.Content))
	for _, c := range result.Content {
		tc, ok := c.(mcp.TextContent)
		require.True(t, ok, "unexpected content %T", c)
		assert.Equal(t, "text", tc.Type)
		out = append(out, tc.Text)
	}
	return out
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func TestSearchImagesSuccessEnvelope(t *testing.T) {
	src := &fakeSource{records: sampleRecords(5)}
	d := New(src)

	result := d.SearchImages(context.Background(), "red shoes", 2)
	require.False(t, result.IsError)

	got := texts(t, result)
	require.Len(t, got, 2)
	assert.Equal(t, "Found 2 images for query 'red shoes':", got[0])

	var records []models.ImageRecord
	require.NoError(t, json.Unmarshal([]byte(got[1]), &records))
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Position)
	assert.Equal(t, 2, records[1].Position)
}

func TestSearchImagesZeroLimitEncodesEmptyArray(t *testing.T) {
	d := New(&fakeSource{records: sampleRecords(3)})

	got := texts(t, d.SearchImages(context.Background(), "cats", 0))
	assert.Equal(t, "Found 0 images for query 'cats':", got[0])
	assert.Equal(t, "[]", got[1])
}

func TestSearchImagesFailureEnvelope(t *testing.T) {
	d := New(&fakeSource{err: apperr.Newf(apperr.KindNoResults, "search images", "no image results found")})

	result := d.SearchImages(context.Background(), "zzzz", 10)
	require.True(t, result.IsError)

	got := texts(t, result)
	require.Len(t, got, 1)
	assert.Equal(t, "Failed to search for images: NoResultsError: search images: no image results found", got[0])
}

func TestDownloadImageReportsPathAndFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 2))))
	d := New(&fakeSource{downloadBody: buf.Bytes()})

	dir := filepath.Join(t.TempDir(), "out")
	result := d.DownloadImage(context.Background(), "https://example.com/x.png", dir, "x.png")
	require.False(t, result.IsError)

	got := texts(t, result)
	require.Len(t, got, 2)
	assert.Equal(t, "Image successfully downloaded to: "+filepath.Join(dir, "x.png"), got[0])
	assert.Equal(t, "Detected png image, 3x2 pixels", got[1])
}

func TestDownloadImageNonImageBody(t *testing.T) {
	d := New(&fakeSource{downloadBody: []byte("<html>blocked</html>")})

	got := texts(t, d.DownloadImage(context.Background(), "https://example.com/x.png", t.TempDir(), "x.png"))
	assert.Len(t, got, 1)
}

func TestDownloadImageFailureEnvelope(t *testing.T) {
	d := New(&fakeSource{downloadErr: apperr.Upstream("download image", 404, errors.New("image URL returned 404 Not Found"))})

	result := d.DownloadImage(context.Background(), "https://example.com/missing.png", t.TempDir(), "x.png")
	require.True(t, result.IsError)
	assert.Equal(t, []string{"Failed to download image: UpstreamError: download image: status 404: image URL returned 404 Not Found"}, texts(t, result))
}

func TestAnalyzeImagesEnvelope(t *testing.T) {
	records := sampleRecords(7)
	records[4].Title = "Professional portrait"
	d := New(&fakeSource{})

	result := d.AnalyzeImages(context.Background(), records, "professional")
	require.False(t, result.IsError)

	got := texts(t, result)
	require.Len(t, got, 2)
	assert.Equal(t, "Analyzed 7 images based on criteria: 'professional'", got[0])

	var analyzed []models.ImageRecord
	require.NoError(t, json.Unmarshal([]byte(got[1]), &analyzed))
	require.Len(t, analyzed, 7)
	assert.Equal(t, 5, analyzed[0].Position)
	assert.Equal(t, 3.0, *analyzed[0].RelevanceScore)
	assert.Equal(t, relevance.HighlyRecommended, *analyzed[2].Recommendation)
	assert.Equal(t, relevance.Recommended, *analyzed[3].Recommendation)
	assert.Equal(t, relevance.StandardOption, *analyzed[6].Recommendation)
}

func TestCallRecoversFromPanic(t *testing.T) {
	d := New(nil)

	result := d.SearchImages(context.Background(), "boom", 1)
	require.True(t, result.IsError)
	assert.Contains(t, texts(t, result)[0], "Failed to search for images:")
}

func TestHandleSearchImagesArguments(t *testing.T) {
	tests := []struct {
		name      string
		args      map[string]any
		isError   bool
		wantLimit int
	}{
		{name: "default limit", args: map[string]any{"query": "cats"}, wantLimit: 10},
		{name: "numeric limit", args: map[string]any{"query": "cats", "limit": float64(3)}, wantLimit: 3},
		{name: "string limit", args: map[string]any{"query": "cats", "limit": "4"}, wantLimit: 4},
		{name: "missing query", args: map[string]any{"limit": float64(3)}, isError: true},
		{name: "blank query", args: map[string]any{"query": "  "}, isError: true},
		{name: "negative limit", args: map[string]any{"query": "cats", "limit": float64(-1)}, isError: true},
		{name: "non-numeric limit", args: map[string]any{"query": "cats", "limit": "many"}, isError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{records: sampleRecords(12)}
			d := New(src)

			result, err := d.handleSearchImages(context.Background(), callRequest(ToolSearchImages, tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.isError, result.IsError)
			if tt.isError {
				assert.Contains(t, texts(t, result)[0], "ValidationError")
				return
			}
			assert.Equal(t, "cats", src.gotQuery)
			assert.Equal(t, tt.wantLimit, src.gotLimit)
		})
	}
}

func TestHandleDownloadImageRequiresArguments(t *testing.T) {
	d := New(&fakeSource{downloadBody: []byte("x")})

	result, err := d.handleDownloadImage(context.Background(), callRequest(ToolDownloadImage, map[string]any{
		"image_url":   "https://example.com/a.jpg",
		"output_path": t.TempDir(),
	}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Equal(t, "Failed to download image: ValidationError: decode arguments: filename is required", texts(t, result)[0])
}

func TestHandleAnalyzeImagesArguments(t *testing.T) {
	valid := []any{
		map[string]any{"position": float64(1), "title": "plain photo", "is_product": true},
		map[string]any{"position": float64(2), "title": "Colorful photo", "original_width": float64(2000), "original_height": float64(1000)},
	}
	encoded, err := json.Marshal(valid)
	require.NoError(t, err)

	tests := []struct {
		name    string
		args    map[string]any
		isError bool
	}{
		{name: "array of objects", args: map[string]any{"search_results": valid, "criteria": "colorful"}},
		{name: "stringified array", args: map[string]any{"search_results": string(encoded), "criteria": "colorful"}},
		{name: "empty array", args: map[string]any{"search_results": []any{}, "criteria": "colorful"}},
		{name: "missing results", args: map[string]any{"criteria": "colorful"}, isError: true},
		{name: "not an array", args: map[string]any{"search_results": map[string]any{"title": "x"}, "criteria": "x"}, isError: true},
		{name: "element not an object", args: map[string]any{"search_results": []any{"nope"}, "criteria": "x"}, isError: true},
		{name: "wrong field type", args: map[string]any{"search_results": []any{map[string]any{"position": "first"}}, "criteria": "x"}, isError: true},
		{name: "invalid json string", args: map[string]any{"search_results": "[{", "criteria": "x"}, isError: true},
		{name: "criteria not a string", args: map[string]any{"search_results": valid, "criteria": []any{"a"}}, isError: true},
		{name: "missing criteria", args: map[string]any{"search_results": valid}, isError: true},
		{name: "null criteria", args: map[string]any{"search_results": valid, "criteria": nil}, isError: true},
		{name: "empty criteria", args: map[string]any{"search_results": valid, "criteria": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(&fakeSource{})

			result, err := d.handleAnalyzeImages(context.Background(), callRequest(ToolAnalyzeImages, tt.args))
			require.NoError(t, err)
			require.Equal(t, tt.isError, result.IsError, texts(t, result))
			if tt.isError {
				assert.Contains(t, texts(t, result)[0], "Failed to analyze images: ValidationError")
			}
		})
	}
}

func TestHandleAnalyzeImagesRanksColorfulFirst(t *testing.T) {
	d := New(&fakeSource{})
	args := map[string]any{
		"search_results": []any{
			map[string]any{"position": float64(1), "title": "plain photo", "is_product": true},
			map[string]any{"position": float64(2), "title": "Colorful photo", "original_width": float64(2000), "original_height": float64(1000)},
		},
		"criteria": "colorful",
	}

	result, err := d.handleAnalyzeImages(context.Background(), callRequest(ToolAnalyzeImages, args))
	require.NoError(t, err)

	var analyzed []models.ImageRecord
	require.NoError(t, json.Unmarshal([]byte(texts(t, result)[1]), &analyzed))
	require.Len(t, analyzed, 2)
	assert.Equal(t, 2, analyzed[0].Position)
	assert.Equal(t, 6.0, *analyzed[0].RelevanceScore)
	assert.Equal(t, 0.0, *analyzed[1].RelevanceScore)
}

func TestHandleAnalyzeImagesFieldTypeMessages(t *testing.T) {
	tests := []struct {
		name    string
		record  map[string]any
		message string
	}{
		{
			name:    "string position",
			record:  map[string]any{"position": "1", "title": "a"},
			message: "Failed to analyze images: ValidationError: decode arguments: search_results[0].position must be an integer, got string",
		},
		{
			name:    "fractional width",
			record:  map[string]any{"title": "a", "width": 12.5},
			message: "Failed to analyze images: ValidationError: decode arguments: search_results[0].width must be an integer, got number",
		},
		{
			name:    "numeric title",
			record:  map[string]any{"title": float64(7)},
			message: "Failed to analyze images: ValidationError: decode arguments: search_results[0].title must be a string, got integer",
		},
		{
			name:    "string product flag",
			record:  map[string]any{"title": "a", "is_product": "yes"},
			message: "Failed to analyze images: ValidationError: decode arguments: search_results[0].is_product must be a boolean, got string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(&fakeSource{})
			args := map[string]any{"search_results": []any{tt.record}, "criteria": "x"}

			result, err := d.handleAnalyzeImages(context.Background(), callRequest(ToolAnalyzeImages, args))
			require.NoError(t, err)
			require.True(t, result.IsError)
			assert.Equal(t, []string{tt.message}, texts(t, result))
		})
	}
}

func TestHandleAnalyzeImagesKeepsUnnamedFields(t *testing.T) {
	d := New(&fakeSource{})
	args := map[string]any{
		"search_results": []any{
			map[string]any{"position": float64(1), "title": "sunset", "tag": "keepme", "source_logo": "https://s/logo.png"},
		},
		"criteria": "sunset",
	}

	result, err := d.handleAnalyzeImages(context.Background(), callRequest(ToolAnalyzeImages, args))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var analyzed []map[string]any
	require.NoError(t, json.Unmarshal([]byte(texts(t, result)[1]), &analyzed))
	require.Len(t, analyzed, 1)
	assert.Equal(t, "keepme", analyzed[0]["tag"])
	assert.Equal(t, "https://s/logo.png", analyzed[0]["source_logo"])
	assert.Equal(t, "sunset", analyzed[0]["title"])
	assert.Equal(t, 3.0, analyzed[0]["relevanceScore"])
}
