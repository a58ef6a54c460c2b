package catalog

import (
	"testing"
	"time"

	"github.com/Mekimak/efoyta-sub000/models"
)

func prop(id, price string) models.Property {
	return models.Property{
		ExternalID: id,
		Price:      price,
		Status:     models.StatusAvailable,
	}
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestApplyPriceRangeWithFormattedPrices(t *testing.T) {
	properties := []models.Property{
		prop("PROP1001", "12,000 ETB/month"),
		prop("PROP1002", "35,000 ETB/month"),
		prop("PROP1003", "8,000 ETB/month"),
		prop("PROP1004", "18,000 ETB/month"),
		prop("PROP1005", "25,000 ETB/month"),
		prop("PROP1006", "10,000 ETB/month"),
	}
	filter := models.FilterSpec{MinPrice: floatPtr(5000), MaxPrice: floatPtr(15000)}

	got := Apply(properties, filter, models.SortPriceLow)

	want := []string{"PROP1003", "PROP1006", "PROP1001"}
	if len(got) != len(want) {
		t.Fatalf("result count: got %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ExternalID != id {
			t.Errorf("result[%d]: got %s, want %s", i, got[i].ExternalID, id)
		}
	}
}

func TestApplyPriceBoundsInclusive(t *testing.T) {
	properties := []models.Property{
		prop("PROP1001", "5,000 ETB"),
		prop("PROP1002", "15,000 ETB"),
		prop("PROP1003", "4,999 ETB"),
		prop("PROP1004", "15,001 ETB"),
	}
	filter := models.FilterSpec{MinPrice: floatPtr(5000), MaxPrice: floatPtr(15000)}

	got := Apply(properties, filter, models.SortPriceLow)
	if len(got) != 2 {
		t.Fatalf("result count: got %d, want 2", len(got))
	}
	if got[0].ExternalID != "PROP1001" || got[1].ExternalID != "PROP1002" {
		t.Errorf("both boundary prices should match, got %s, %s", got[0].ExternalID, got[1].ExternalID)
	}
}

func TestApplyMalformedPriceFailsClosed(t *testing.T) {
	properties := []models.Property{
		prop("PROP1001", "Contact owner"),
		prop("PROP1002", "10,000 ETB/month"),
		prop("PROP1003", ""),
	}
	filter := models.FilterSpec{MinPrice: floatPtr(0)}

	got := Apply(properties, filter, models.SortNewest)
	if len(got) != 1 {
		t.Fatalf("result count: got %d, want 1", len(got))
	}
	if got[0].ExternalID != "PROP1002" {
		t.Errorf("only the parseable price should pass, got %s", got[0].ExternalID)
	}
}

func TestApplyMalformedPriceSortsLast(t *testing.T) {
	properties := []models.Property{
		prop("PROP1001", "negotiable"),
		prop("PROP1002", "20,000 ETB"),
		prop("PROP1003", "5,000 ETB"),
	}

	got := Apply(properties, models.FilterSpec{}, models.SortPriceLow)
	if len(got) != 3 {
		t.Fatalf("result count: got %d, want 3", len(got))
	}
	if got[0].ExternalID != "PROP1003" || got[1].ExternalID != "PROP1002" || got[2].ExternalID != "PROP1001" {
		t.Errorf("unparseable price should sort last: got %s, %s, %s",
			got[0].ExternalID, got[1].ExternalID, got[2].ExternalID)
	}
}

func TestApplyLocationSubstringCaseInsensitive(t *testing.T) {
	properties := []models.Property{
		{ExternalID: "PROP1001", Location: "Bole, Addis Ababa", Status: models.StatusAvailable},
		{ExternalID: "PROP1002", Location: "Kazanchis", Status: models.StatusAvailable},
	}

	got := Apply(properties, models.FilterSpec{Location: "addis"}, models.SortNewest)
	if len(got) != 1 || got[0].ExternalID != "PROP1001" {
		t.Fatalf("case-insensitive substring match failed, got %d results", len(got))
	}

	got = Apply(properties, models.FilterSpec{}, models.SortNewest)
	if len(got) != 2 {
		t.Errorf("empty location filter should match all, got %d", len(got))
	}
}

func TestApplyTypeAndStatus(t *testing.T) {
	properties := []models.Property{
		{ExternalID: "PROP1001", Type: models.TypeVilla, Status: models.StatusAvailable},
		{ExternalID: "PROP1002", Type: models.TypeStudio, Status: models.StatusAvailable},
		{ExternalID: "PROP1003", Type: models.TypeVilla, Status: models.StatusRented},
	}

	got := Apply(properties, models.FilterSpec{Type: models.TypeVilla}, models.SortNewest)
	if len(got) != 1 || got[0].ExternalID != "PROP1001" {
		t.Errorf("type filter without status should keep available villas only, got %d results", len(got))
	}

	got = Apply(properties, models.FilterSpec{Type: models.TypeVilla, Status: models.StatusRented}, models.SortNewest)
	if len(got) != 1 || got[0].ExternalID != "PROP1003" {
		t.Errorf("explicit rented status should include terminal listings, got %d results", len(got))
	}
}

func TestApplyExcludesTerminalStatusByDefault(t *testing.T) {
	properties := []models.Property{
		{ExternalID: "PROP1001", Status: models.StatusAvailable},
		{ExternalID: "PROP1002", Status: models.StatusPending},
		{ExternalID: "PROP1003", Status: models.StatusRented},
		{ExternalID: "PROP1004", Status: models.StatusSold},
	}

	got := Apply(properties, models.FilterSpec{}, models.SortNewest)
	if len(got) != 2 {
		t.Fatalf("default filter should drop rented and sold, got %d results", len(got))
	}
}

func TestApplyAmenitySuperset(t *testing.T) {
	properties := []models.Property{
		{ExternalID: "PROP1001", Amenities: []string{"WiFi", "Parking", "Generator"}, Status: models.StatusAvailable},
		{ExternalID: "PROP1002", Amenities: []string{"WiFi"}, Status: models.StatusAvailable},
		{ExternalID: "PROP1003", Amenities: nil, Status: models.StatusAvailable},
	}

	got := Apply(properties, models.FilterSpec{Amenities: []string{"wifi", "parking"}}, models.SortNewest)
	if len(got) != 1 || got[0].ExternalID != "PROP1001" {
		t.Errorf("amenity superset filter failed, got %d results", len(got))
	}

	got = Apply(properties, models.FilterSpec{Amenities: []string{}}, models.SortNewest)
	if len(got) != 3 {
		t.Errorf("empty amenity filter should match all, got %d", len(got))
	}
}

func TestApplyBooleanFacet(t *testing.T) {
	properties := []models.Property{
		{ExternalID: "PROP1001", NearUniversity: true, Status: models.StatusAvailable},
		{ExternalID: "PROP1002", NearUniversity: false, Status: models.StatusAvailable},
	}

	got := Apply(properties, models.FilterSpec{NearUniversity: boolPtr(true)}, models.SortNewest)
	if len(got) != 1 || got[0].ExternalID != "PROP1001" {
		t.Errorf("near-university facet failed, got %d results", len(got))
	}

	got = Apply(properties, models.FilterSpec{NearUniversity: boolPtr(false)}, models.SortNewest)
	if len(got) != 1 || got[0].ExternalID != "PROP1002" {
		t.Errorf("negative facet should match only false, got %d results", len(got))
	}
}

func TestApplyMinBedroomsAndBathrooms(t *testing.T) {
	properties := []models.Property{
		{ExternalID: "PROP1001", Bedrooms: 3, Bathrooms: 2, Status: models.StatusAvailable},
		{ExternalID: "PROP1002", Bedrooms: 1, Bathrooms: 1, Status: models.StatusAvailable},
	}

	got := Apply(properties, models.FilterSpec{MinBedrooms: intPtr(2), MinBathrooms: intPtr(2)}, models.SortNewest)
	if len(got) != 1 || got[0].ExternalID != "PROP1001" {
		t.Errorf("minimum bedroom/bathroom filter failed, got %d results", len(got))
	}
}

func TestApplySortStability(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	properties := []models.Property{
		{ExternalID: "PROP1001", Price: "10,000", Views: 50, Rating: 4.5, CreatedAt: base, Status: models.StatusAvailable},
		{ExternalID: "PROP1002", Price: "10,000", Views: 50, Rating: 4.5, CreatedAt: base, Status: models.StatusAvailable},
		{ExternalID: "PROP1003", Price: "10,000", Views: 50, Rating: 4.5, CreatedAt: base, Status: models.StatusAvailable},
	}

	for _, spec := range []models.SortSpec{
		models.SortPriceLow, models.SortPriceHigh,
		models.SortMostViewed, models.SortHighestRated, models.SortNewest,
	} {
		got := Apply(properties, models.FilterSpec{}, spec)
		for i, want := range []string{"PROP1001", "PROP1002", "PROP1003"} {
			if got[i].ExternalID != want {
				t.Errorf("%s: equal keys must keep input order, pos %d got %s", spec, i, got[i].ExternalID)
			}
		}
	}
}

func TestApplySortOrders(t *testing.T) {
	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	properties := []models.Property{
		{ExternalID: "PROP1001", Price: "30,000", Views: 10, Rating: 3.0, CreatedAt: t1, Status: models.StatusAvailable},
		{ExternalID: "PROP1002", Price: "10,000", Views: 90, Rating: 5.0, CreatedAt: t2, Status: models.StatusAvailable},
		{ExternalID: "PROP1003", Price: "20,000", Views: 40, Rating: 4.0, CreatedAt: t1.Add(time.Hour), Status: models.StatusAvailable},
	}

	cases := []struct {
		spec  models.SortSpec
		first string
	}{
		{models.SortPriceLow, "PROP1002"},
		{models.SortPriceHigh, "PROP1001"},
		{models.SortMostViewed, "PROP1002"},
		{models.SortHighestRated, "PROP1002"},
		{models.SortNewest, "PROP1002"},
	}
	for _, tc := range cases {
		got := Apply(properties, models.FilterSpec{}, tc.spec)
		if got[0].ExternalID != tc.first {
			t.Errorf("%s: first result got %s, want %s", tc.spec, got[0].ExternalID, tc.first)
		}
	}
}

func TestApplyEmptyInput(t *testing.T) {
	got := Apply(nil, models.FilterSpec{MinPrice: floatPtr(100)}, models.SortPriceLow)
	if len(got) != 0 {
		t.Errorf("empty input must yield empty output, got %d", len(got))
	}
}

func TestApplyNoMatchesIsEmptyNotError(t *testing.T) {
	properties := []models.Property{prop("PROP1001", "10,000 ETB")}
	got := Apply(properties, models.FilterSpec{MinPrice: floatPtr(99999)}, models.SortPriceLow)
	if len(got) != 0 {
		t.Errorf("unmatched filter must yield empty output, got %d", len(got))
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	properties := []models.Property{
		prop("PROP1002", "20,000"),
		prop("PROP1001", "10,000"),
	}
	Apply(properties, models.FilterSpec{}, models.SortPriceLow)
	if properties[0].ExternalID != "PROP1002" {
		t.Error("Apply must not reorder the input slice")
	}
}
