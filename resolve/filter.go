// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"github.com/pdxmaps/pdxmaps/spatial"
)

// FilterBBox keeps the candidates inside bbox, in order. A nil bbox keeps all.
func FilterBBox(candidates []AddressCandidate, bbox *spatial.BBox) []AddressCandidate {
	if bbox == nil {
		return candidates
	}

	kept := make([]AddressCandidate, 0, len(candidates))

	for _, c := range candidates {
		if bbox.Contains(spatial.Point{Lng: c.Longitude, Lat: c.Latitude}) {
			kept = append(kept, c)
		}
	}

	return kept
}

// Truncate returns at most n candidates.
func Truncate(candidates []AddressCandidate, n int) []AddressCandidate {
	if n >= 0 && len(candidates) > n {
		return candidates[:n]
	}

	return candidates
}
