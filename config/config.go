// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

// Package config holds the static configuration of the resolver and its surfaces.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pdxmaps/pdxmaps/spatial"
)

// Default upstream endpoints.
const (
	DefaultSuggestURL        = "https://www.portlandmaps.com/api/suggest/"
	DefaultRegionGeocoderURL = "https://www.portlandmaps.com/arcgis/rest/services/Public/Address_Geocoding_PDX/GeocodeServer/findAddressCandidates"
	DefaultWorldGeocoderURL  = "https://geocode.arcgis.com/arcgis/rest/services/World/GeocodeServer/findAddressCandidates"
	DefaultPagesURL          = "https://www.portlandmaps.com"
)

// DefaultFallback is downtown Portland, used when no geocoder tier matches.
var DefaultFallback = spatial.Point{Lng: -122.6765, Lat: 45.5231}

const envPrefix = "PDXMAPS_"

// Options configures every component. It is read once at start up.
type Options struct {
	// SuggestURL is the address suggestion endpoint
	SuggestURL string

	// RegionGeocoderURL is the first geocoder tier
	RegionGeocoderURL string

	// WorldGeocoderURL is the second geocoder tier
	WorldGeocoderURL string

	// PagesURL is the root of the official property pages linked by the tools
	PagesURL string

	// City restricts the suggestion service
	City string

	// Region is appended to addresses sent to the geocoders
	Region string

	// APIKey is sent to the suggestion service when set
	APIKey string

	// Fallback is the point given to candidates no geocoder could place
	Fallback spatial.Point

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// HTTPTimeout bounds each outbound request
	HTTPTimeout time.Duration

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool

	// ListenAddr is where the JSON API listens
	ListenAddr string
}

// Default returns the built-in configuration.
func Default() *Options {
	return &Options{
		SuggestURL:        DefaultSuggestURL,
		RegionGeocoderURL: DefaultRegionGeocoderURL,
		WorldGeocoderURL:  DefaultWorldGeocoderURL,
		PagesURL:          DefaultPagesURL,
		City:              "PORTLAND",
		Region:            "Portland, OR",
		Fallback:          DefaultFallback,
		HTTPTimeout:       30 * time.Second,
		ListenAddr:        "localhost:8080",
	}
}

// Load returns the defaults overridden by the given .env files (when they
// exist) and then by the process environment.
func Load(envFiles ...string) (*Options, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	opts := Default()
	if err := opts.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return opts, nil
}

func (o *Options) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("SUGGEST_URL", &o.SuggestURL)
	str("REGION_GEOCODER_URL", &o.RegionGeocoderURL)
	str("WORLD_GEOCODER_URL", &o.WorldGeocoderURL)
	str("PAGES_URL", &o.PagesURL)
	str("CITY", &o.City)
	str("REGION", &o.Region)
	str("API_KEY", &o.APIKey)
	str("USER_AGENT", &o.UserAgent)
	str("LISTEN_ADDR", &o.ListenAddr)

	if v, ok := lookup(envPrefix + "HTTP_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sHTTP_TIMEOUT: %w", envPrefix, err)
		}

		o.HTTPTimeout = d
	}

	if v, ok := lookup(envPrefix + "HTTP_TRACE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sHTTP_TRACE: %w", envPrefix, err)
		}

		o.EnableHTTPTrace = b
	}

	if v, ok := lookup(envPrefix + "FALLBACK"); ok && v != "" {
		p, err := ParsePoint(v)
		if err != nil {
			return fmt.Errorf("%sFALLBACK: %w", envPrefix, err)
		}

		o.Fallback = p
	}

	return nil
}

// ParsePoint parses "lon,lat".
func ParsePoint(s string) (spatial.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return spatial.Point{}, fmt.Errorf("point %q must be lon,lat", s)
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return spatial.Point{}, fmt.Errorf("point %q: %w", s, err)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return spatial.Point{}, fmt.Errorf("point %q: %w", s, err)
	}

	p := spatial.Point{Lng: lng, Lat: lat}
	if !p.Valid() {
		return spatial.Point{}, fmt.Errorf("point %q is out of range", s)
	}

	return p, nil
}

// Validate checks the endpoints and the fallback point.
func (o *Options) Validate() error {
	var errs []error

	for name, raw := range map[string]string{
		"suggest url":         o.SuggestURL,
		"region geocoder url": o.RegionGeocoderURL,
		"world geocoder url":  o.WorldGeocoderURL,
		"pages url":           o.PagesURL,
	} {
		u, err := url.Parse(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))

			continue
		}

		if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s: %q is not an absolute http(s) URL", name, raw))
		}
	}

	if !o.Fallback.Valid() {
		errs = append(errs, fmt.Errorf("fallback point %s is out of range", o.Fallback))
	}

	if o.HTTPTimeout < 0 {
		errs = append(errs, errors.New("http timeout must not be negative"))
	}

	return errors.Join(errs...)
}
