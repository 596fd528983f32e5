// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/pdxmaps/pdxmaps/spatial"
	"github.com/pdxmaps/pdxmaps/utils/httputils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeArcGIS serves a fixed findAddressCandidates answer and counts calls.
type fakeArcGIS struct {
	*httptest.Server
	status    int
	body      string
	calls     atomic.Int32
	lastQuery atomic.Value
}

func newFakeArcGIS(t *testing.T, status int, body string) *fakeArcGIS {
	t.Helper()

	f := &fakeArcGIS{status: status, body: body}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		f.lastQuery.Store(r.URL.Query())
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.body))
	}))
	t.Cleanup(f.Close)

	return f
}

func (f *fakeArcGIS) query() url.Values {
	q, _ := f.lastQuery.Load().(url.Values)

	return q
}

const (
	regionHit = `{"candidates":[{"address":"1234 SW MAIN ST","location":{"x":-122.68,"y":45.51},"score":96}]}`
	worldHit  = `{"candidates":[{"address":"1234 SW Main St, Portland, Oregon","location":{"x":-122.6801,"y":45.5102},"score":88.5}]}`
	empty     = `{"candidates":[]}`
)

func newTestResolver(region, world *fakeArcGIS) *Resolver {
	client := httputils.NewClient(httputils.ClientOptions{})

	return NewResolver("Portland, OR",
		NewRegionGeocoder(client, region.URL),
		NewWorldGeocoder(client, world.URL),
	)
}

func TestResolverRegionShortCircuits(t *testing.T) {
	region := newFakeArcGIS(t, http.StatusOK, regionHit)
	world := newFakeArcGIS(t, http.StatusOK, worldHit)

	match, outcome := newTestResolver(region, world).Geocode(context.Background(), "1234 SW Main St")

	require.NotNil(t, match)
	assert.Equal(t, OutcomeMatched, outcome)
	assert.Equal(t, spatial.Point{Lng: -122.68, Lat: 45.51}, match.Point)
	assert.InDelta(t, 96, match.Score, 0)
	assert.Equal(t, ProviderRegion, match.Provider)
	assert.EqualValues(t, 1, region.calls.Load())
	assert.EqualValues(t, 0, world.calls.Load(), "the world geocoder must not be called")

	q := region.query()
	assert.Equal(t, "1234 SW Main St, Portland, OR", q.Get("SingleLine"))
	assert.Equal(t, "4326", q.Get("outSR"))
	assert.Equal(t, "json", q.Get("f"))
	assert.Equal(t, "1", q.Get("maxLocations"))
}

func TestResolverFallsThroughToWorld(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"region unavailable", http.StatusServiceUnavailable, ""},
		{"region empty", http.StatusOK, empty},
		{"region malformed", http.StatusOK, "{"},
		{"region error object", http.StatusOK, `{"error":{"code":400,"message":"Unable to complete operation."}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			region := newFakeArcGIS(t, tc.status, tc.body)
			world := newFakeArcGIS(t, http.StatusOK, worldHit)

			match, outcome := newTestResolver(region, world).Geocode(context.Background(), "1234 SW Main St")

			require.NotNil(t, match)
			assert.Equal(t, OutcomeMatched, outcome)
			assert.Equal(t, spatial.Point{Lng: -122.6801, Lat: 45.5102}, match.Point)
			assert.InDelta(t, 88.5, match.Score, 0)
			assert.Equal(t, ProviderWorld, match.Provider)

			q := world.query()
			assert.Equal(t, "1234 SW Main St, Portland, OR", q.Get("singleLine"))
			assert.Equal(t, "Match_addr", q.Get("outFields"))
			assert.Equal(t, "1", q.Get("maxLocations"))
		})
	}
}

func TestResolverNoMatch(t *testing.T) {
	tests := []struct {
		name     string
		region   *fakeArcGIS
		world    *fakeArcGIS
		expected Outcome
	}{
		{"both unavailable", newFakeArcGIS(t, http.StatusServiceUnavailable, ""), newFakeArcGIS(t, http.StatusServiceUnavailable, ""), OutcomeFailed},
		{"both empty", newFakeArcGIS(t, http.StatusOK, empty), newFakeArcGIS(t, http.StatusOK, empty), OutcomeNoCandidates},
		{"empty then unavailable", newFakeArcGIS(t, http.StatusOK, empty), newFakeArcGIS(t, http.StatusBadGateway, ""), OutcomeFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			match, outcome := newTestResolver(tc.region, tc.world).Geocode(context.Background(), "nowhere")

			assert.Nil(t, match)
			assert.Equal(t, tc.expected, outcome)
			assert.EqualValues(t, 1, tc.world.calls.Load())
		})
	}
}

func TestArcGISGeocoderRejectsInvalidLocation(t *testing.T) {
	srv := newFakeArcGIS(t, http.StatusOK, `{"candidates":[{"location":{"x":-13656000,"y":5700000},"score":100}]}`)

	_, err := NewRegionGeocoder(httputils.NewClient(httputils.ClientOptions{}), srv.URL).
		Geocode(context.Background(), "1234 SW Main St")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoCandidates))
}

func TestArcGISGeocoderNoCandidates(t *testing.T) {
	srv := newFakeArcGIS(t, http.StatusOK, empty)

	_, err := NewWorldGeocoder(httputils.NewClient(httputils.ClientOptions{}), srv.URL).
		Geocode(context.Background(), "nowhere")
	require.ErrorIs(t, err, ErrNoCandidates)
}

func TestQualify(t *testing.T) {
	r := NewResolver("Portland, OR")

	assert.Equal(t, "1234 SW Main St, Portland, OR", r.Qualify("1234 SW Main St"))
	assert.Equal(t, "1234 SW Main St, portland, or", r.Qualify("1234  SW Main St, portland, or"))
	assert.Equal(t, "1234 SW Main St", NewResolver("").Qualify(" 1234 SW Main St "))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "matched", OutcomeMatched.String())
	assert.Equal(t, "no_candidates", OutcomeNoCandidates.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}

// captureLog redirects the standard logger to a buffer for the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer

	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })

	return &buf
}

func TestResolverLogsTierOutcomes(t *testing.T) {
	t.Run("transient failure then match", func(t *testing.T) {
		logs := captureLog(t)
		region := newFakeArcGIS(t, http.StatusServiceUnavailable, "")
		world := newFakeArcGIS(t, http.StatusOK, worldHit)

		match, outcome := newTestResolver(region, world).Geocode(context.Background(), "1234 SW Main St")
		require.NotNil(t, match)
		assert.Equal(t, OutcomeMatched, outcome)

		assert.Contains(t, logs.String(), ProviderRegion+" failed (transient)")
		assert.Contains(t, logs.String(), ProviderWorld+` matched "1234 SW Main St, Portland, Oregon" (score 88.5)`)
	})

	t.Run("permanent failure", func(t *testing.T) {
		logs := captureLog(t)
		region := newFakeArcGIS(t, http.StatusNotFound, "")
		world := newFakeArcGIS(t, http.StatusOK, empty)

		match, outcome := newTestResolver(region, world).Geocode(context.Background(), "1234 SW Main St")
		assert.Nil(t, match)
		assert.Equal(t, OutcomeFailed, outcome)

		assert.Contains(t, logs.String(), ProviderRegion+" failed: ")
		assert.NotContains(t, logs.String(), "transient")
		assert.Contains(t, logs.String(), ProviderWorld+" found nothing")
	})
}
