// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdxmaps/pdxmaps/spatial"
	"github.com/pdxmaps/pdxmaps/utils/httputils"
)

// Provider names reported in Match.Provider.
const (
	ProviderRegion = "portland_geocoder"
	ProviderWorld  = "arcgis_world"
)

// ArcGISGeocoder calls a findAddressCandidates endpoint. Both tiers speak this
// protocol and only differ in endpoint and parameter spelling.
type ArcGISGeocoder struct {
	name       string
	endpoint   string
	addrParam  string
	params     url.Values
	httpClient *http.Client
}

// NewRegionGeocoder creates the city geocoder tier, asking for a single WGS84 match.
func NewRegionGeocoder(httpClient *http.Client, endpoint string) *ArcGISGeocoder {
	return &ArcGISGeocoder{
		name:      ProviderRegion,
		endpoint:  endpoint,
		addrParam: "SingleLine",
		params: url.Values{
			"outSR":        {"4326"},
			"f":            {"json"},
			"maxLocations": {"1"},
		},
		httpClient: httpClient,
	}
}

// NewWorldGeocoder creates the general purpose geocoder tier.
func NewWorldGeocoder(httpClient *http.Client, endpoint string) *ArcGISGeocoder {
	return &ArcGISGeocoder{
		name:      ProviderWorld,
		endpoint:  endpoint,
		addrParam: "singleLine",
		params: url.Values{
			"outFields":    {"Match_addr"},
			"f":            {"json"},
			"maxLocations": {"1"},
		},
		httpClient: httpClient,
	}
}

type arcgisResponse struct {
	Candidates []struct {
		Address  string `json:"address"`
		Location struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"location"`
		Score float64 `json:"score"`
	} `json:"candidates"`
	// ArcGIS reports some failures with a 200 and an error object.
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Name implements Geocoder.
func (g *ArcGISGeocoder) Name() string {
	return g.name
}

// Geocode implements Geocoder.
func (g *ArcGISGeocoder) Geocode(ctx context.Context, address string) (*Match, error) {
	u, err := url.Parse(g.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s: parsing endpoint: %w", g.name, err)
	}

	params := u.Query()
	for k, v := range g.params {
		params[k] = v
	}

	params.Set(g.addrParam, address)
	u.RawQuery = params.Encode()

	var resp arcgisResponse
	if err := httputils.GetJSON(ctx, g.httpClient, u.String(), &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", g.name, err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("%s: error %d: %s", g.name, resp.Error.Code, resp.Error.Message)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%s: %w", g.name, ErrNoCandidates)
	}

	best := resp.Candidates[0]

	p := spatial.Point{Lng: best.Location.X, Lat: best.Location.Y}
	if !p.Valid() {
		return nil, fmt.Errorf("%s: candidate location %s is not WGS84", g.name, p)
	}

	return &Match{
		Point:    p,
		Score:    best.Score,
		Address:  best.Address,
		Provider: g.name,
	}, nil
}
