// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pdxmaps/pdxmaps/spatial"
	"github.com/pdxmaps/pdxmaps/utils/textutils"
)

// Request bounds.
const (
	MinQueryLength    = 3
	DefaultMaxResults = 10
	MaxMaxResults     = 25
)

// ResolveRequest is one resolve_address call. A nil MaxResults means
// DefaultMaxResults; any supplied value must lie in [1, MaxMaxResults].
type ResolveRequest struct {
	Query      string    `json:"query" validate:"required,min=3"`
	MaxResults *int      `json:"max_results,omitempty" validate:"omitnil,min=1,max=25"`
	BBox       []float64 `json:"bbox,omitempty" validate:"omitempty,bbox"`
	IncludeRaw bool      `json:"include_raw,omitempty"`
}

// ValidationError reports a request field that breaks its constraints.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.RegisterValidation("bbox", func(fl validator.FieldLevel) bool {
		b, ok := fl.Field().Interface().([]float64)
		if !ok {
			return false
		}

		if len(b) == 0 {
			return true
		}

		_, err := spatial.NewBBox(b)

		return err == nil
	}); err != nil {
		panic(err)
	}

	return v
}

// Normalize collapses whitespace in the query and applies defaults.
func (r *ResolveRequest) Normalize() {
	r.Query = textutils.CollapseSpaces(r.Query)
	if r.MaxResults == nil {
		r.MaxResults = Limit(DefaultMaxResults)
	}
}

// Limit returns n as a ResolveRequest.MaxResults value.
func Limit(n int) *int {
	return &n
}

// limit is the effective result cap.
func (r *ResolveRequest) limit() int {
	if r.MaxResults == nil {
		return DefaultMaxResults
	}

	return *r.MaxResults
}

// Validate checks the request against its bounds.
func (r *ResolveRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validating request: %w", err)
	}

	fe := fieldErrs[0]
	switch fe.Field() {
	case "Query":
		return &ValidationError{Field: "query", Message: fmt.Sprintf("must be at least %d characters", MinQueryLength)}
	case "MaxResults":
		return &ValidationError{Field: "max_results", Message: fmt.Sprintf("must be between 1 and %d", MaxMaxResults)}
	case "BBox":
		return &ValidationError{Field: "bbox", Message: "must be [minLon, minLat, maxLon, maxLat] with min <= max"}
	default:
		return &ValidationError{Field: fe.Field(), Message: fe.Error()}
	}
}

// bbox returns the parsed bounding box, or nil when none was supplied.
func (r *ResolveRequest) bbox() *spatial.BBox {
	if len(r.BBox) == 0 {
		return nil
	}

	b, err := spatial.NewBBox(r.BBox)
	if err != nil {
		return nil
	}

	return b
}
