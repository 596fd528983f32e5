// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"errors"
	"log"

	"github.com/pdxmaps/pdxmaps/utils/httputils"
	"github.com/pdxmaps/pdxmaps/utils/textutils"
)

// Outcome tells how a Resolver call ended.
type Outcome int

const (
	// OutcomeMatched means some tier returned a candidate.
	OutcomeMatched Outcome = iota
	// OutcomeNoCandidates means every tier answered and none matched.
	OutcomeNoCandidates
	// OutcomeFailed means no tier matched and at least one could not be reached.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeNoCandidates:
		return "no_candidates"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resolver tries its tiers in order and stops at the first match. Tier
// failures are logged and never returned.
type Resolver struct {
	region string
	tiers  []Geocoder
}

// NewResolver creates a resolver that qualifies every address with region
// (e.g. "Portland, OR") before handing it to tiers, in order.
func NewResolver(region string, tiers ...Geocoder) *Resolver {
	return &Resolver{region: region, tiers: tiers}
}

// Qualify appends the region to address unless it already ends with it.
func (r *Resolver) Qualify(address string) string {
	address = textutils.CollapseSpaces(address)
	if r.region == "" || textutils.HasSuffixFold(address, r.region) {
		return address
	}

	return address + ", " + r.region
}

// Geocode returns the first tier match for address, or nil when no tier
// matched. It is safe for concurrent use.
func (r *Resolver) Geocode(ctx context.Context, address string) (*Match, Outcome) {
	qualified := r.Qualify(address)
	outcome := OutcomeNoCandidates

	for _, tier := range r.tiers {
		match, err := tier.Geocode(ctx, qualified)
		if err == nil {
			log.Printf("geocoding %q: %s matched %q (score %.1f)", qualified, match.Provider, match.Address, match.Score)

			return match, OutcomeMatched
		}

		if errors.Is(err, ErrNoCandidates) {
			log.Printf("geocoding %q: %s found nothing", qualified, tier.Name())

			continue
		}

		outcome = OutcomeFailed

		kind := "failed"
		if httputils.IsTemporary(err) {
			kind = "failed (transient)"
		}

		log.Printf("geocoding %q: %s %s: %v", qualified, tier.Name(), kind, err)
	}

	return nil, outcome
}
