// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/pdxmaps/pdxmaps/geocoding"
	"github.com/pdxmaps/pdxmaps/portlandmaps"
	"github.com/pdxmaps/pdxmaps/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fallback = spatial.Point{Lng: -122.6765, Lat: 45.5231}

// fakeGeocoder answers from a table keyed by address; unknown addresses fail.
type fakeGeocoder struct {
	mu      sync.Mutex
	matches map[string]*geocoding.Match
	delays  map[string]time.Duration
	calls   []string
}

func (f *fakeGeocoder) Geocode(_ context.Context, address string) (*geocoding.Match, geocoding.Outcome) {
	f.mu.Lock()
	f.calls = append(f.calls, address)
	delay := f.delays[address]
	m := f.matches[address]
	f.mu.Unlock()

	time.Sleep(delay)

	if m == nil {
		return nil, geocoding.OutcomeFailed
	}

	return m, geocoding.OutcomeMatched
}

func suggestions(labels ...string) []portlandmaps.Suggestion {
	out := make([]portlandmaps.Suggestion, 0, len(labels))
	for i, l := range labels {
		raw, _ := json.Marshal(map[string]any{"label": l, "value": i})
		out = append(out, portlandmaps.Suggestion{Label: l, Value: string(rune('A' + i)), Type: "address", Raw: raw})
	}

	return out
}

func TestBaseScore(t *testing.T) {
	for rank, want := range []int{100, 95, 90, 85, 80, 75, 70, 65, 60, 55, 50, 50, 50} {
		assert.Equal(t, want, BaseScore(rank), "rank %d", rank)
	}
}

func TestBlendScore(t *testing.T) {
	tests := []struct {
		base     int
		geocode  float64
		expected int
	}{
		{100, 100, 100},
		{95, 90, 93}, // 92.5 rounds up
		{90, 85.2, 88},
		{50, 0, 25},
		{100, 250, 100},
		{50, -200, 0},
		{70, math.NaN(), 70},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, BlendScore(tc.base, tc.geocode), "BlendScore(%d, %v)", tc.base, tc.geocode)
	}
}

func TestEnrichPreservesOrderAndScores(t *testing.T) {
	geo := &fakeGeocoder{
		matches: map[string]*geocoding.Match{
			"A ST": {Point: spatial.Point{Lng: -122.1, Lat: 45.1}, Score: 100},
			"B ST": {Point: spatial.Point{Lng: -122.2, Lat: 45.2}, Score: 80},
		},
		// The first candidate finishes last.
		delays: map[string]time.Duration{"A ST": 50 * time.Millisecond},
	}

	got := NewEnricher(geo, fallback).Enrich(context.Background(), suggestions("A ST", "B ST", "C ST"), false)

	require.Len(t, got, 3)
	assert.Equal(t, AddressCandidate{
		NormalizedAddress: "A ST", PropertyID: "A", Score: 100,
		Longitude: -122.1, Latitude: 45.1, Source: SourceGeocoderMatch,
	}, got[0])
	assert.Equal(t, AddressCandidate{
		NormalizedAddress: "B ST", PropertyID: "B", Score: 88, // round((95+80)/2)
		Longitude: -122.2, Latitude: 45.2, Source: SourceGeocoderMatch,
	}, got[1])
	assert.Equal(t, AddressCandidate{
		NormalizedAddress: "C ST", PropertyID: "C", Score: 90,
		Longitude: fallback.Lng, Latitude: fallback.Lat, Source: SourceFallbackDefault,
	}, got[2])
	assert.ElementsMatch(t, []string{"A ST", "B ST", "C ST"}, geo.calls)
}

func TestEnrichIncludeRaw(t *testing.T) {
	in := suggestions("A ST")

	got := NewEnricher(&fakeGeocoder{}, fallback).Enrich(context.Background(), in, true)
	require.Len(t, got, 1)
	assert.JSONEq(t, string(in[0].Raw), string(got[0].Raw))

	got = NewEnricher(&fakeGeocoder{}, fallback).Enrich(context.Background(), in, false)
	assert.Nil(t, got[0].Raw)
}

func TestEnrichEmpty(t *testing.T) {
	got := NewEnricher(&fakeGeocoder{}, fallback).Enrich(context.Background(), nil, false)
	assert.Empty(t, got)
}

func TestFilterBBoxAndTruncate(t *testing.T) {
	in := []AddressCandidate{
		{NormalizedAddress: "in 1", Longitude: -122.6, Latitude: 45.5},
		{NormalizedAddress: "out", Longitude: -121.0, Latitude: 45.5},
		{NormalizedAddress: "in 2", Longitude: -122.7, Latitude: 45.6},
		{NormalizedAddress: "in 3", Longitude: -122.8, Latitude: 45.4},
	}
	bbox := &spatial.BBox{MinLon: -122.8, MinLat: 45.4, MaxLon: -122.5, MaxLat: 45.6}

	filtered := FilterBBox(in, bbox)
	require.Len(t, filtered, 3)
	assert.Equal(t, "in 1", filtered[0].NormalizedAddress)
	assert.Equal(t, "in 2", filtered[1].NormalizedAddress)
	assert.Equal(t, "in 3", filtered[2].NormalizedAddress)

	assert.Len(t, Truncate(filtered, 2), 2)
	assert.Len(t, Truncate(filtered, 10), 3)
	assert.Equal(t, in, FilterBBox(in, nil))
}
