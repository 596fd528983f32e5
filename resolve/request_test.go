// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRequestValidate(t *testing.T) {
	tests := []struct {
		name      string
		req       ResolveRequest
		wantField string
	}{
		{"minimal", ResolveRequest{Query: "Main"}, ""},
		{"exactly three runes", ResolveRequest{Query: "Añu"}, ""},
		{"full", ResolveRequest{Query: "1234 SW Main St", MaxResults: Limit(25), BBox: []float64{-123, 45, -122, 46}, IncludeRaw: true}, ""},
		{"empty bbox", ResolveRequest{Query: "Main", BBox: []float64{}}, ""},
		{"short query", ResolveRequest{Query: "ab"}, "query"},
		{"blank query", ResolveRequest{Query: "     "}, "query"},
		{"too many results", ResolveRequest{Query: "Main", MaxResults: Limit(26)}, "max_results"},
		{"explicit zero results", ResolveRequest{Query: "Main", MaxResults: Limit(0)}, "max_results"},
		{"negative results", ResolveRequest{Query: "Main", MaxResults: Limit(-1)}, "max_results"},
		{"bbox wrong length", ResolveRequest{Query: "Main", BBox: []float64{1, 2, 3}}, "bbox"},
		{"bbox inverted", ResolveRequest{Query: "Main", BBox: []float64{-122, 45, -123, 46}}, "bbox"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			req.Normalize()

			err := req.Validate()
			if tc.wantField == "" {
				require.NoError(t, err)

				return
			}

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "got %v", err)
			assert.Equal(t, tc.wantField, validationErr.Field)
		})
	}
}

func TestResolveRequestNormalize(t *testing.T) {
	req := ResolveRequest{Query: "  1234   SW Main  "}
	req.Normalize()

	assert.Equal(t, "1234 SW Main", req.Query)
	require.NotNil(t, req.MaxResults)
	assert.Equal(t, DefaultMaxResults, *req.MaxResults)
	assert.Nil(t, req.bbox())

	req = ResolveRequest{Query: "Main", MaxResults: Limit(3), BBox: []float64{-123, 45, -122, 46}}
	req.Normalize()
	assert.Equal(t, 3, *req.MaxResults)

	req = ResolveRequest{Query: "Main", MaxResults: Limit(0)}
	req.Normalize()
	assert.Equal(t, 0, *req.MaxResults, "an explicit zero is kept and left to Validate")
	require.NotNil(t, req.bbox())
	assert.InDelta(t, -123, req.bbox().MinLon, 0)
}
