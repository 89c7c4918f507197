package reviews

import (
	"context"
	"log"
	"time"
)

// Service walks the fallback chain. Every rung that fails is logged and
// skipped; the chain bottoms out in static defaults so the public site
// always has something to render.
type Service struct {
	cache   *Cache
	primary Fetcher
	legacy  Fetcher
	apiKey  string
	ttl     time.Duration
}

func NewService(cache *Cache, apiKey string, ttl time.Duration) *Service {
	return &Service{
		cache:   cache,
		primary: NewGoogleFetcher(apiKey),
		legacy:  NewLegacyFetcher(apiKey),
		apiKey:  apiKey,
		ttl:     ttl,
	}
}

// NewServiceWithFetchers wires explicit fetchers, used by tests.
func NewServiceWithFetchers(cache *Cache, primary, legacy Fetcher, apiKey string, ttl time.Duration) *Service {
	return &Service{
		cache:   cache,
		primary: primary,
		legacy:  legacy,
		apiKey:  apiKey,
		ttl:     ttl,
	}
}

// Fetch resolves reviews for the place. It never returns an error: the
// worst case is the static fallback payload.
func (s *Service) Fetch(ctx context.Context, placeID string) Payload {
	if s.cache != nil {
		payload, ok, err := s.cache.Get(ctx, placeID)
		if err != nil {
			log.Printf("review cache read failed: %v", err)
		} else if ok {
			payload.Source = SourceCache
			return payload
		}
	}

	if s.apiKey == "" {
		payload := defaultPayload()
		payload.Source = SourceMock
		return payload
	}

	if payload, err := s.primary.Fetch(ctx, placeID); err == nil {
		s.writeThrough(ctx, placeID, payload)
		return payload
	} else {
		log.Printf("primary review fetch failed: %v", err)
	}

	if payload, err := s.legacy.Fetch(ctx, placeID); err == nil {
		s.writeThrough(ctx, placeID, payload)
		return payload
	} else {
		log.Printf("legacy review fetch failed: %v", err)
	}

	return defaultPayload()
}

// writeThrough caches a successful fetch; failures are logged, never fatal.
func (s *Service) writeThrough(ctx context.Context, placeID string, payload Payload) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, placeID, payload, s.ttl); err != nil {
		log.Printf("review cache write failed: %v", err)
	}
}

func defaultPayload() Payload {
	items := []Review{
		{
			Author:          "Lise P.",
			Rating:          5,
			Text:            "Fantastisk klinik. Vores hund blev behandlet med stor omsorg, og vi fik grundig vejledning med hjem.",
			TimeDescription: "for 2 uger siden",
		},
		{
			Author:          "Henrik M.",
			Rating:          5,
			Text:            "Søde og kompetente dyrlæger. Der er altid tid til et ekstra spørgsmål.",
			TimeDescription: "for 1 måned siden",
		},
		{
			Author:          "Anna S.",
			Rating:          4,
			Text:            "Hurtig tid til vaccination og fair priser. Katten var helt rolig under besøget.",
			TimeDescription: "for 2 måneder siden",
		},
	}
	return Payload{
		Source:        SourceFallback,
		Reviews:       items,
		AverageRating: averageRating(items),
		TotalCount:    len(items),
	}
}
