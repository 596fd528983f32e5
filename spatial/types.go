// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

// Package spatial holds the WGS84 primitives shared by the resolver and its surfaces.
package spatial

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidBBox is returned when a bounding box cannot be parsed or is not a rectangle.
var ErrInvalidBBox = errors.New("invalid bounding box")

// Point represents a geographical point with longitude and latitude.
type Point struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Valid reports whether the point lies within WGS84 bounds.
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lng) && !math.IsNaN(p.Lat) &&
		p.Lng >= -180 && p.Lng <= 180 &&
		p.Lat >= -90 && p.Lat <= 90
}

// BBox is a longitude/latitude rectangle, inclusive on every edge.
type BBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// NewBBox builds a BBox from the [minLon, minLat, maxLon, maxLat] wire form.
func NewBBox(v []float64) (*BBox, error) {
	if len(v) != 4 {
		return nil, fmt.Errorf("%w: expected 4 values, got %d", ErrInvalidBBox, len(v))
	}

	b := &BBox{MinLon: v[0], MinLat: v[1], MaxLon: v[2], MaxLat: v[3]}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	return b, nil
}

// ParseBBox parses "minLon,minLat,maxLon,maxLat".
func ParseBBox(s string) (*BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: %q must have 4 comma separated values", ErrInvalidBBox, s)
	}

	v := make([]float64, 0, 4)

	for _, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidBBox, part, err)
		}

		v = append(v, f)
	}

	return NewBBox(v)
}

// Validate checks that the corners are in range and ordered.
func (b *BBox) Validate() error {
	lo, hi := Point{Lng: b.MinLon, Lat: b.MinLat}, Point{Lng: b.MaxLon, Lat: b.MaxLat}
	if !lo.Valid() || !hi.Valid() {
		return fmt.Errorf("%w: corners out of range", ErrInvalidBBox)
	}

	if b.MinLon > b.MaxLon || b.MinLat > b.MaxLat {
		return fmt.Errorf("%w: min corner exceeds max corner", ErrInvalidBBox)
	}

	return nil
}

// Contains reports whether p lies inside the box, edges included.
func (b *BBox) Contains(p Point) bool {
	return b.MinLon <= p.Lng && p.Lng <= b.MaxLon &&
		b.MinLat <= p.Lat && p.Lat <= b.MaxLat
}

// Slice returns the [minLon, minLat, maxLon, maxLat] wire form.
func (b *BBox) Slice() []float64 {
	return []float64{b.MinLon, b.MinLat, b.MaxLon, b.MaxLat}
}
