// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"math"

	"github.com/pdxmaps/pdxmaps/geocoding"
	"github.com/pdxmaps/pdxmaps/portlandmaps"
	"github.com/pdxmaps/pdxmaps/spatial"
	"golang.org/x/sync/errgroup"
)

// Scoring constants for suggestion rank.
const (
	topScore   = 100
	rankStep   = 5
	floorScore = 50
)

// AddressGeocoder resolves address text to a match. It never fails: a nil
// match means no tier could place the address.
type AddressGeocoder interface {
	Geocode(ctx context.Context, address string) (*geocoding.Match, geocoding.Outcome)
}

// Enricher geocodes suggestions and scores them.
type Enricher struct {
	geocoder AddressGeocoder
	fallback spatial.Point
}

// NewEnricher creates an Enricher that places unmatched candidates on fallback.
func NewEnricher(geocoder AddressGeocoder, fallback spatial.Point) *Enricher {
	return &Enricher{geocoder: geocoder, fallback: fallback}
}

// Enrich geocodes every suggestion concurrently and returns the candidates in
// suggestion order once all of them are done.
func (e *Enricher) Enrich(ctx context.Context, suggestions []portlandmaps.Suggestion, includeRaw bool) []AddressCandidate {
	candidates := make([]AddressCandidate, len(suggestions))

	var g errgroup.Group

	for i, s := range suggestions {
		g.Go(func() error {
			candidates[i] = e.enrichOne(ctx, i, s, includeRaw)

			return nil
		})
	}

	// Geocoding failures are absorbed per candidate, so Wait never errors.
	_ = g.Wait()

	return candidates
}

func (e *Enricher) enrichOne(ctx context.Context, rank int, s portlandmaps.Suggestion, includeRaw bool) AddressCandidate {
	base := BaseScore(rank)

	c := AddressCandidate{
		NormalizedAddress: s.Label,
		PropertyID:        s.Value,
		Score:             base,
		Longitude:         e.fallback.Lng,
		Latitude:          e.fallback.Lat,
		Source:            SourceFallbackDefault,
	}

	if includeRaw {
		c.Raw = s.Raw
	}

	if match, _ := e.geocoder.Geocode(ctx, s.Label); match != nil {
		c.Score = BlendScore(base, match.Score)
		c.Longitude = match.Point.Lng
		c.Latitude = match.Point.Lat
		c.Source = SourceGeocoderMatch
	}

	return c
}

// BaseScore scores the suggestion at zero-based rank: 100, 95, 90... floored at 50.
func BaseScore(rank int) int {
	return max(topScore-rank*rankStep, floorScore)
}

// BlendScore averages a rank score with a geocoder score, rounding half away
// from zero, and clamps the result to [0, 100].
func BlendScore(base int, geocodeScore float64) int {
	if math.IsNaN(geocodeScore) {
		return base
	}

	blended := math.Round((float64(base) + geocodeScore) / 2)

	return int(min(max(blended, 0), topScore))
}
