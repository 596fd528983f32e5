// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"fmt"
	"log"

	"github.com/pdxmaps/pdxmaps/portlandmaps"
	"github.com/pdxmaps/pdxmaps/spatial"
)

// Suggester is the suggestion service.
type Suggester interface {
	Suggest(ctx context.Context, text string, limit int) ([]portlandmaps.Suggestion, error)
}

// Service runs the resolve pipeline. It keeps no state between calls.
type Service struct {
	suggester Suggester
	enricher  *Enricher
}

// NewService wires the pipeline.
func NewService(suggester Suggester, geocoder AddressGeocoder, fallback spatial.Point) *Service {
	return &Service{
		suggester: suggester,
		enricher:  NewEnricher(geocoder, fallback),
	}
}

// Resolve answers req. Only an invalid request or a suggestion service
// failure return an error; geocoding problems degrade candidates instead.
func (s *Service) Resolve(ctx context.Context, req ResolveRequest) (*ResolveResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	suggestions, err := s.suggester.Suggest(ctx, req.Query, req.limit())
	if err != nil {
		return nil, fmt.Errorf("looking up suggestions for %q: %w", req.Query, err)
	}

	candidates := s.enricher.Enrich(ctx, suggestions, req.IncludeRaw)
	candidates = Truncate(FilterBBox(candidates, req.bbox()), req.limit())

	log.Printf("Resolved %q - %d suggestions, %d candidates", req.Query, len(suggestions), len(candidates))

	return &ResolveResult{
		Query:      req.Query,
		MaxResults: req.limit(),
		BBox:       req.BBox,
		Candidates: candidates,
	}, nil
}
