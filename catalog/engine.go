// Package catalog derives the presented property view: a pure filter/sort
// engine plus a session that composes it with the remote store and the
// saved-property synchronizer.
package catalog

import (
	"sort"
	"strings"

	"github.com/Mekimak/efoyta-sub000/models"
)

// Apply filters and orders properties according to the given specs. It is
// pure: the input slice is never mutated and identical inputs always yield
// identical output. Equal sort keys keep their input order for every sort
// variant.
//
// Predicates are AND-combined. A property whose price string carries no
// digits fails closed out of any price-bounded filter, and sorts after all
// priced properties under the price orders.
func Apply(properties []models.Property, filter models.FilterSpec, sortSpec models.SortSpec) []models.Property {
	result := make([]models.Property, 0, len(properties))
	for _, p := range properties {
		if matches(p, filter) {
			result = append(result, p)
		}
	}
	sortProperties(result, sortSpec)
	return result
}

func matches(p models.Property, f models.FilterSpec) bool {
	if f.Location != "" && !strings.Contains(strings.ToLower(p.Location), strings.ToLower(f.Location)) {
		return false
	}
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	// Rented and sold listings are terminal: they only match when the
	// filter asks for that status explicitly.
	if f.Status != "" {
		if p.Status != f.Status {
			return false
		}
	} else if p.Status == models.StatusRented || p.Status == models.StatusSold {
		return false
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price, ok := models.ParsePrice(p.Price)
		if !ok {
			return false
		}
		if f.MinPrice != nil && price < *f.MinPrice {
			return false
		}
		if f.MaxPrice != nil && price > *f.MaxPrice {
			return false
		}
	}
	if f.MinBedrooms != nil && p.Bedrooms < *f.MinBedrooms {
		return false
	}
	if f.MinBathrooms != nil && p.Bathrooms < *f.MinBathrooms {
		return false
	}
	if !p.HasAmenities(f.Amenities) {
		return false
	}
	if f.NearUniversity != nil && p.NearUniversity != *f.NearUniversity {
		return false
	}
	return true
}

func sortProperties(properties []models.Property, spec models.SortSpec) {
	switch spec {
	case models.SortPriceLow:
		sort.SliceStable(properties, func(i, j int) bool {
			return lessByPrice(properties[i], properties[j], true)
		})
	case models.SortPriceHigh:
		sort.SliceStable(properties, func(i, j int) bool {
			return lessByPrice(properties[i], properties[j], false)
		})
	case models.SortMostViewed:
		sort.SliceStable(properties, func(i, j int) bool {
			return properties[i].Views > properties[j].Views
		})
	case models.SortHighestRated:
		sort.SliceStable(properties, func(i, j int) bool {
			return properties[i].Rating > properties[j].Rating
		})
	case models.SortNewest:
		sort.SliceStable(properties, func(i, j int) bool {
			return properties[i].CreatedAt.After(properties[j].CreatedAt)
		})
	}
}

// lessByPrice orders parseable prices numerically and pushes unparseable
// ones to the end, where stability preserves their input order.
func lessByPrice(a, b models.Property, ascending bool) bool {
	pa, okA := models.ParsePrice(a.Price)
	pb, okB := models.ParsePrice(b.Price)
	if !okA || !okB {
		return okA && !okB
	}
	if ascending {
		return pa < pb
	}
	return pa > pb
}
