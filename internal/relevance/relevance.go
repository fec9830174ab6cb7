// Package relevance ranks image search results against free-text criteria.
package relevance

import (
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/imagesearch/internal/models"
)

const (
	HighlyRecommended = "Highly recommended"
	Recommended       = "Recommended"
	StandardOption    = "Standard option"
)

// Score rates how well an image fits the criteria. Each criteria word found
// in the title adds 2, larger images add 1 to 3, and non-product images add 1.
func Score(image models.ImageRecord, criteria string) float64 {
	score := 0.0

	title := strings.ToLower(image.Title)
	for _, keyword := range strings.Fields(strings.ToLower(criteria)) {
		if strings.Contains(title, keyword) {
			score += 2
		}
	}

	if w, h, ok := image.Dimensions(); ok {
		score += resolutionScore(w * h)
	}

	if !image.IsProduct {
		score++
	}

	return score
}

func resolutionScore(pixels int) float64 {
	switch {
	case pixels > 1_000_000:
		return 3
	case pixels > 500_000:
		return 2
	default:
		return 1
	}
}

// Recommendation maps a zero-based rank to its label.
func Recommendation(rank int) string {
	switch {
	case rank < 3:
		return HighlyRecommended
	case rank < 6:
		return Recommended
	default:
		return StandardOption
	}
}

// Analyze scores every record, sorts them best first and labels each one by
// its final rank. Records with equal scores keep their input order. The
// slice is sorted in place and returned.
func Analyze(records []models.ImageRecord, criteria string) []models.ImageRecord {
	for i := range records {
		score := Score(records[i], criteria)
		records[i].RelevanceScore = &score
	}

	sort.SliceStable(records, func(i, j int) bool {
		return *records[i].RelevanceScore > *records[j].RelevanceScore
	})

	for i := range records {
		label := Recommendation(i)
		records[i].Recommendation = &label
	}

	return records
}
