package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func ptr[T any](v T) *T { return &v }

func TestProductFilter_Matches(t *testing.T) {
	product := Product{ID: 1, Name: "Go Guide", CategoryID: 1, VendorID: 3}

	tests := []struct {
		name   string
		filter ProductFilter
		want   bool
	}{
		{name: "empty filter", filter: ProductFilter{}, want: true},
		{name: "category match", filter: ProductFilter{CategoryID: ptr(int64(1))}, want: true},
		{name: "category mismatch", filter: ProductFilter{CategoryID: ptr(int64(2))}, want: false},
		{name: "exact name", filter: ProductFilter{Name: ptr("Go Guide")}, want: true},
		{name: "name is case sensitive", filter: ProductFilter{Name: ptr("go guide")}, want: false},
		{name: "name prefix is not a match", filter: ProductFilter{Name: ptr("Go")}, want: false},
		{name: "both match", filter: ProductFilter{CategoryID: ptr(int64(1)), Name: ptr("Go Guide")}, want: true},
		{name: "one of two mismatches", filter: ProductFilter{CategoryID: ptr(int64(1)), Name: ptr("Rust")}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(product); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProductDraft_ApplyKeepsIdentity(t *testing.T) {
	current := Product{ID: 7, Name: "old", Version: 3, VendorID: 1}
	draft := ProductDraft{
		Name:        "new",
		Description: "desc",
		Price:       decimal.RequireFromString("1.50"),
		CategoryID:  2,
		VendorID:    4,
	}

	updated := draft.Apply(current)

	if updated.ID != 7 || updated.Version != 3 {
		t.Fatalf("identity fields must survive Apply: %+v", updated)
	}
	if updated.Name != "new" || updated.VendorID != 4 || updated.CategoryID != 2 {
		t.Fatalf("draft fields were not applied: %+v", updated)
	}
	if !updated.Price.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("unexpected price %s", updated.Price)
	}
	if current.Name != "old" {
		t.Fatal("Apply must not mutate the original value")
	}
}
