package models

import (
	"strings"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PropertyType string

const (
	TypeApartment PropertyType = "apartment"
	TypeVilla     PropertyType = "villa"
	TypeStudio    PropertyType = "studio"
	TypeHouse     PropertyType = "house"
	TypePenthouse PropertyType = "penthouse"
	TypeCondo     PropertyType = "condo"
)

type PropertyStatus string

const (
	StatusAvailable PropertyStatus = "available"
	StatusPending   PropertyStatus = "pending"
	StatusRented    PropertyStatus = "rented"
	StatusSold      PropertyStatus = "sold"
)

// Property is a listing as the remote store holds it. Records are read-only
// on this side: edits and status changes arrive only through a fresh fetch.
// Price keeps the owner-entered currency string (e.g. "12,000 ETB/month");
// ParsePrice is the single place it becomes a number.
type Property struct {
	ExternalID     string              `bson:"_id" json:"externalId"`
	Title          string              `bson:"title" json:"title"`
	Price          string              `bson:"price" json:"price"`
	Location       string              `bson:"location" json:"location"`
	City           string              `bson:"city" json:"city"`
	Bedrooms       int                 `bson:"bedrooms" json:"bedrooms"`
	Bathrooms      int                 `bson:"bathrooms" json:"bathrooms"`
	AreaSqFt       float64             `bson:"areaSqFt" json:"areaSqFt"`
	Type           PropertyType        `bson:"type" json:"type"`
	Status         PropertyStatus      `bson:"status" json:"status"`
	Images         []string            `bson:"images" json:"images"`
	Amenities      []string            `bson:"amenities" json:"amenities"`
	NearUniversity bool                `bson:"nearUniversity" json:"nearUniversity"`
	Views          int64               `bson:"views" json:"views"`
	Inquiries      int64               `bson:"inquiries" json:"inquiries"`
	Rating         float64             `bson:"rating" json:"rating"`
	OwnerID        *primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// ParsePrice extracts the numeric value from a currency-formatted price
// string by dropping every non-digit rune. ok is false when the string
// carries no digits at all; callers must then exclude the record from any
// price comparison rather than guess a value.
func ParsePrice(price string) (float64, bool) {
	var digits strings.Builder
	for _, r := range price {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	var v float64
	for _, r := range digits.String() {
		v = v*10 + float64(r-'0')
	}
	return v, true
}

// HasAmenities reports whether the property's amenity set contains every
// requested tag. An empty request matches any property.
func (p Property) HasAmenities(required []string) bool {
	if len(required) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(p.Amenities))
	for _, a := range p.Amenities {
		have[strings.ToLower(a)] = struct{}{}
	}
	for _, want := range required {
		if _, ok := have[strings.ToLower(want)]; !ok {
			return false
		}
	}
	return true
}
