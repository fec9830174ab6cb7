package models

// ImageRecord represents a single image returned by the provider
type ImageRecord struct {
	Position  int    `json:"position" yaml:"position"`
	Thumbnail string `json:"thumbnail" yaml:"thumbnail"`
	Source    string `json:"source" yaml:"source"`
	Title     string `json:"title" yaml:"title"`
	Link      string `json:"link" yaml:"link"`
	Original  string `json:"original" yaml:"original"`
	IsProduct bool   `json:"is_product" yaml:"is_product"`

	Size   *string `json:"size,omitempty" yaml:"size,omitempty"`
	Width  *int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height *int    `json:"height,omitempty" yaml:"height,omitempty"`

	// Google Images reports the full-size dimensions under these names
	OriginalWidth  *int `json:"original_width,omitempty" yaml:"original_width,omitempty"`
	OriginalHeight *int `json:"original_height,omitempty" yaml:"original_height,omitempty"`

	// Set only by analysis
	RelevanceScore *float64 `json:"relevanceScore,omitempty" yaml:"relevanceScore,omitempty"`
	Recommendation *string  `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`

	// Provider or host keys this struct does not name, passed through as-is
	Extra map[string]any `json:"-" yaml:",inline"`
}

// Dimensions returns the pixel size of the image. ok is false unless both
// sides are known and non-zero.
func (r ImageRecord) Dimensions() (width, height int, ok bool) {
	if w, h := deref(r.OriginalWidth), deref(r.OriginalHeight); w > 0 && h > 0 {
		return w, h, true
	}
	if w, h := deref(r.Width), deref(r.Height); w > 0 && h > 0 {
		return w, h, true
	}
	return 0, 0, false
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// SearchResponse is the provider payload for a google_images search
type SearchResponse struct {
	SearchMetadata   SearchMetadata   `json:"search_metadata"`
	SearchParameters SearchParameters `json:"search_parameters"`
	ImagesResults    []ImageRecord    `json:"images_results"`
	Error            string           `json:"error,omitempty"`
}

// SearchMetadata describes how the provider processed the request
type SearchMetadata struct {
	ID              string  `json:"id"`
	Status          string  `json:"status"`
	JSONEndpoint    string  `json:"json_endpoint"`
	CreatedAt       string  `json:"created_at"`
	ProcessedAt     string  `json:"processed_at"`
	GoogleImagesURL string  `json:"google_images_url"`
	TotalTimeTaken  float64 `json:"total_time_taken"`
}

// SearchParameters echoes the query the provider ran
type SearchParameters struct {
	Engine       string `json:"engine"`
	Q            string `json:"q"`
	GoogleDomain string `json:"google_domain"`
	Device       string `json:"device"`
}
