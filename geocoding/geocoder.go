// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocoding turns address text into coordinates through an ordered
// chain of geocoder tiers.
package geocoding

import (
	"context"
	"errors"

	"github.com/pdxmaps/pdxmaps/spatial"
)

// ErrNoCandidates is returned by a Geocoder that answered but matched nothing.
var ErrNoCandidates = errors.New("geocoder returned no candidates")

// Match is the best candidate of a single geocoder tier.
type Match struct {
	Point    spatial.Point
	Score    float64 // 0-100 as reported by the geocoder
	Address  string
	Provider string
}

// Geocoder is one geocoder tier.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, address string) (*Match, error)
}
