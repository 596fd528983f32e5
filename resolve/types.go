// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

// Package resolve turns free text into ranked, geocoded address candidates.
//
// A request flows one way: suggestion lookup, concurrent per-candidate
// geocoding (enrichment), optional bounding-box filter, truncation.
package resolve

import (
	"encoding/json"
)

// Source records where a candidate's coordinates came from.
type Source string

const (
	// SourceAPISuggestion marks coordinates taken from the suggestion record
	// itself. The current suggestion service sends none, so it is not assigned.
	SourceAPISuggestion Source = "api_suggestion"
	// SourceGeocoderMatch marks coordinates returned by a geocoder tier.
	SourceGeocoderMatch Source = "geocoder_match"
	// SourceFallbackDefault marks the configured fallback point, used when no
	// geocoder tier matched, whether it answered empty or failed.
	SourceFallbackDefault Source = "fallback_default"
)

// AddressCandidate is one resolved address.
type AddressCandidate struct {
	NormalizedAddress string `json:"normalized_address"`
	Score             int    `json:"score"`
	PropertyID        string `json:"property_id,omitempty"`
	// TaxlotID is always empty with the current suggestion service.
	TaxlotID  string          `json:"taxlot_id,omitempty"`
	Longitude float64         `json:"longitude"`
	Latitude  float64         `json:"latitude"`
	Source    Source          `json:"source"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

// ResolveResult is the answer to a ResolveRequest.
type ResolveResult struct {
	Query      string             `json:"query"`
	MaxResults int                `json:"max_results"`
	BBox       []float64          `json:"bbox,omitempty"`
	Candidates []AddressCandidate `json:"candidates"`
}
