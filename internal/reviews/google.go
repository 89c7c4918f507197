package reviews

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Fetcher resolves reviews from one external source.
type Fetcher interface {
	Fetch(ctx context.Context, placeID string) (Payload, error)
}

const fetchTimeout = 5 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: fetchTimeout}
}

// GoogleFetcher reads reviews from the Places API (New), v1.
type GoogleFetcher struct {
	apiKey  string
	baseURL string
	client  *http.Client
	now     func() time.Time
}

func NewGoogleFetcher(apiKey string) *GoogleFetcher {
	return &GoogleFetcher{
		apiKey:  apiKey,
		baseURL: "https://places.googleapis.com/v1",
		client:  newHTTPClient(),
		now:     time.Now,
	}
}

type googlePlace struct {
	Rating          float64 `json:"rating"`
	UserRatingCount int     `json:"userRatingCount"`
	Reviews         []struct {
		Rating            int `json:"rating"`
		Text              struct {
			Text string `json:"text"`
		} `json:"text"`
		AuthorAttribution struct {
			DisplayName string `json:"displayName"`
		} `json:"authorAttribution"`
		PublishTime time.Time `json:"publishTime"`
	} `json:"reviews"`
}

func (f *GoogleFetcher) Fetch(ctx context.Context, placeID string) (Payload, error) {
	endpoint := fmt.Sprintf("%s/places/%s", f.baseURL, url.PathEscape(placeID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("build places request: %w", err)
	}
	req.Header.Set("X-Goog-Api-Key", f.apiKey)
	req.Header.Set("X-Goog-FieldMask", "rating,userRatingCount,reviews")

	resp, err := f.client.Do(req)
	if err != nil {
		return Payload{}, fmt.Errorf("call places api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Payload{}, fmt.Errorf("places api status %d", resp.StatusCode)
	}

	var place googlePlace
	if err := json.NewDecoder(resp.Body).Decode(&place); err != nil {
		return Payload{}, fmt.Errorf("decode places response: %w", err)
	}

	now := f.now()
	items := make([]Review, 0, len(place.Reviews))
	for _, raw := range place.Reviews {
		ageDays := int(now.Sub(raw.PublishTime).Hours() / 24)
		items = append(items, Review{
			Author:          raw.AuthorAttribution.DisplayName,
			Rating:          clampRating(raw.Rating),
			Text:            raw.Text.Text,
			TimeDescription: RelativeTime(ageDays),
			CreatedAt:       raw.PublishTime,
		})
	}

	payload := Payload{
		Source:        SourceGoogle,
		Reviews:       items,
		AverageRating: place.Rating,
		TotalCount:    place.UserRatingCount,
	}
	if payload.AverageRating == 0 {
		payload.AverageRating = averageRating(items)
	}
	if payload.TotalCount == 0 {
		payload.TotalCount = len(items)
	}
	return payload, nil
}

// LegacyFetcher reads reviews from the classic Place Details endpoint,
// kept as the second rung of the fallback chain for keys that predate the
// v1 API.
type LegacyFetcher struct {
	apiKey  string
	baseURL string
	client  *http.Client
	now     func() time.Time
}

func NewLegacyFetcher(apiKey string) *LegacyFetcher {
	return &LegacyFetcher{
		apiKey:  apiKey,
		baseURL: "https://maps.googleapis.com/maps/api/place/details/json",
		client:  newHTTPClient(),
		now:     time.Now,
	}
}

type legacyDetails struct {
	Status string `json:"status"`
	Result struct {
		Rating           float64 `json:"rating"`
		UserRatingsTotal int     `json:"user_ratings_total"`
		Reviews          []struct {
			AuthorName string `json:"author_name"`
			Rating     int    `json:"rating"`
			Text       string `json:"text"`
			Time       int64  `json:"time"`
		} `json:"reviews"`
	} `json:"result"`
}

func (f *LegacyFetcher) Fetch(ctx context.Context, placeID string) (Payload, error) {
	query := url.Values{}
	query.Set("place_id", placeID)
	query.Set("fields", "rating,user_ratings_total,reviews")
	query.Set("key", f.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return Payload{}, fmt.Errorf("build details request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Payload{}, fmt.Errorf("call details api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Payload{}, fmt.Errorf("details api status %d", resp.StatusCode)
	}

	var details legacyDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return Payload{}, fmt.Errorf("decode details response: %w", err)
	}
	if details.Status != "OK" {
		return Payload{}, fmt.Errorf("details api status %q", details.Status)
	}

	now := f.now()
	items := make([]Review, 0, len(details.Result.Reviews))
	for _, raw := range details.Result.Reviews {
		createdAt := time.Unix(raw.Time, 0)
		ageDays := int(now.Sub(createdAt).Hours() / 24)
		items = append(items, Review{
			Author:          raw.AuthorName,
			Rating:          clampRating(raw.Rating),
			Text:            raw.Text,
			TimeDescription: RelativeTime(ageDays),
			CreatedAt:       createdAt,
		})
	}

	payload := Payload{
		Source:        SourceLegacy,
		Reviews:       items,
		AverageRating: details.Result.Rating,
		TotalCount:    details.Result.UserRatingsTotal,
	}
	if payload.AverageRating == 0 {
		payload.AverageRating = averageRating(items)
	}
	if payload.TotalCount == 0 {
		payload.TotalCount = len(items)
	}
	return payload, nil
}
