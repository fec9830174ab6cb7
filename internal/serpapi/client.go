// Package serpapi searches Google Images through SerpAPI.
package serpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/lehigh-university-libraries/imagesearch/internal/apperr"
	"github.com/lehigh-university-libraries/imagesearch/internal/config"
	"github.com/lehigh-university-libraries/imagesearch/internal/images"
	"github.com/lehigh-university-libraries/imagesearch/internal/json"
	"github.com/lehigh-university-libraries/imagesearch/internal/models"
)

const (
	Engine       = "google_images"
	DefaultLimit = 10
)

// Client issues provider searches and image downloads.
type Client struct {
	apiKey    string
	endpoint  string
	userAgent string

	httpClient *http.Client
	limiter    *rate.Limiter
	fetcher    *images.Fetcher
}

// NewClient creates a client from cfg. The API key is read from cfg only.
func NewClient(cfg *config.Config) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		endpoint:   cfg.Endpoint,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		limiter:    rate.NewLimiter(limit, 1),
		fetcher:    images.NewFetcher(cfg.HTTPTimeout, cfg.UserAgent),
	}
}

// Search runs query against the google_images engine and returns the first
// limit results in provider order. The provider's default page is always
// fetched; limit only truncates.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.ImageRecord, error) {
	const op = "search images"
	slog.Info("Searching for images", "query", query, "limit", limit)

	if limit < 0 {
		return nil, apperr.Newf(apperr.KindValidation, op, "limit must not be negative, got %d", limit)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperr.New(apperr.KindUpstream, op, fmt.Errorf("rate limiter: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(query), nil)
	if err != nil {
		return nil, apperr.New(apperr.KindUpstream, op, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.New(apperr.KindUpstream, op, redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.Upstream(op, resp.StatusCode, errors.New(providerMessage(resp)))
	}

	var data models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, apperr.New(apperr.KindUpstream, op, fmt.Errorf("failed to decode provider response: %w", err))
	}

	if len(data.ImagesResults) == 0 {
		if data.Error != "" {
			return nil, apperr.New(apperr.KindNoResults, op, errors.New(data.Error))
		}
		return nil, apperr.Newf(apperr.KindNoResults, op, "no image results found for %q", query)
	}

	results := data.ImagesResults
	if limit < len(results) {
		results = results[:limit]
	}

	slog.Debug("Provider search complete", "query", query, "received", len(data.ImagesResults), "returned", len(results), "search_id", data.SearchMetadata.ID)
	return results, nil
}

// Download saves the image at imageURL. No provider credentials are sent.
func (c *Client) Download(ctx context.Context, imageURL, directory, filename string) (string, error) {
	return c.fetcher.Download(ctx, imageURL, directory, filename)
}

func (c *Client) searchURL(query string) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("engine", Engine)
	params.Set("api_key", c.apiKey)
	return c.endpoint + "?" + params.Encode()
}

// providerMessage extracts the provider's error text from a failed response.
func providerMessage(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			return payload.Error
		}
	}
	return fmt.Sprintf("provider returned %s", resp.Status)
}

// redact keeps the API key out of transport errors, which quote the URL.
func redact(err error, apiKey string) error {
	var urlErr *url.Error
	if apiKey != "" && errors.As(err, &urlErr) {
		return fmt.Errorf("%s request failed: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
