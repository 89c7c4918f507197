// Package reviews serves clinic review data through a prioritized fallback
// chain: cache, live Google Places API, legacy Places API, static defaults.
// The chain always terminates in a usable payload; callers never see an
// error, only a source tag disclosing where the data came from.
package reviews

import "time"

type Review struct {
	Author          string    `json:"author"`
	Rating          int       `json:"rating"`
	Text            string    `json:"text"`
	TimeDescription string    `json:"timeDescription"`
	CreatedAt       time.Time `json:"createdAt"`
}

type Payload struct {
	Source        string   `json:"source"`
	Reviews       []Review `json:"reviews"`
	AverageRating float64  `json:"averageRating"`
	TotalCount    int      `json:"totalCount"`
}

const (
	SourceCache    = "cache"
	SourceGoogle   = "google"
	SourceLegacy   = "google-legacy"
	SourceMock     = "mock"
	SourceFallback = "fallback"
)

func clampRating(rating int) int {
	if rating < 1 {
		return 1
	}
	if rating > 5 {
		return 5
	}
	return rating
}

// averageRating is the arithmetic mean of the review ratings, 5.0 when
// there are none.
func averageRating(items []Review) float64 {
	if len(items) == 0 {
		return 5.0
	}
	sum := 0
	for _, item := range items {
		sum += item.Rating
	}
	return float64(sum) / float64(len(items))
}
