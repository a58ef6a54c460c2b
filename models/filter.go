package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError reports a malformed FilterSpec or SortSpec. It is raised
// at construction time, before any remote call, so a bad spec is never
// partially applied.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// FilterSpec describes which properties qualify. Nil pointers and zero
// values mean the predicate is not applied; all supplied predicates are
// AND-combined by the engine.
type FilterSpec struct {
	Location       string         `json:"location"`
	Type           PropertyType   `json:"type" validate:"omitempty,oneof=apartment villa studio house penthouse condo"`
	MinPrice       *float64       `json:"minPrice" validate:"omitempty,gte=0"`
	MaxPrice       *float64       `json:"maxPrice" validate:"omitempty,gte=0"`
	MinBedrooms    *int           `json:"minBedrooms" validate:"omitempty,gte=0"`
	MinBathrooms   *int           `json:"minBathrooms" validate:"omitempty,gte=0"`
	Status         PropertyStatus `json:"status" validate:"omitempty,oneof=available pending rented sold"`
	Amenities      []string       `json:"amenities"`
	NearUniversity *bool          `json:"nearUniversity"`
}

// Validate rejects a malformed spec before it reaches the store or the
// engine.
func (f FilterSpec) Validate() error {
	if err := validate.Struct(f); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return &ValidationError{Field: errs[0].Field(), Reason: "failed " + errs[0].Tag() + " constraint"}
		}
		return &ValidationError{Field: "filter", Reason: err.Error()}
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return &ValidationError{Field: "MinPrice", Reason: "greater than MaxPrice"}
	}
	return nil
}

// SortSpec names one of the fixed presentation orders. Every order has a
// stable tie-break: records with equal keys keep their input order.
type SortSpec string

const (
	SortPriceLow     SortSpec = "price-low"
	SortPriceHigh    SortSpec = "price-high"
	SortMostViewed   SortSpec = "most-viewed"
	SortHighestRated SortSpec = "highest-rated"
	SortNewest       SortSpec = "newest"
)

func (s SortSpec) Validate() error {
	switch s {
	case SortPriceLow, SortPriceHigh, SortMostViewed, SortHighestRated, SortNewest:
		return nil
	}
	return &ValidationError{Field: "sort", Reason: fmt.Sprintf("unknown sort key %q", string(s))}
}
