package brick

import (
	"errors"
	"testing"
)

func TestNewCatalogValidation(t *testing.T) {
	cases := []struct {
		name  string
		sizes []Footprint
	}{
		{"empty", nil},
		{"missing 1x1", []Footprint{{2, 2}}},
		{"not rotation-closed", []Footprint{{1, 1}, {1, 4}}},
		{"non-positive dimension", []Footprint{{1, 1}, {0, 3}, {3, 0}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCatalog(tc.sizes)
			if err == nil {
				t.Fatal("expected an error")
			}
			var ce *CatalogError
			if !errors.As(err, &ce) {
				t.Errorf("expected a CatalogError, got %T: %v", err, err)
			}
		})
	}
}

func TestNewCatalogOrdering(t *testing.T) {
	c, err := NewCatalog([]Footprint{
		{1, 1}, {1, 2}, {2, 1}, {2, 2}, {1, 4}, {4, 1},
	})
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	got := c.Footprints()
	want := []Footprint{
		{1, 4}, // area 4, length 4
		{2, 2}, // area 4, length 2
		{4, 1}, // area 4, length 1
		{1, 2}, // area 2, length 2
		{2, 1}, // area 2, length 1
		{1, 1},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d footprints, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestLengthsForWidth(t *testing.T) {
	c, err := NewCatalog(DefaultFootprints())
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	got := c.LengthsForWidth(1)
	want := []int{8, 6, 4, 3, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestMaxLength(t *testing.T) {
	c, err := NewCatalog(DefaultFootprints())
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	if got := c.MaxLength(); got != 8 {
		t.Errorf("expected max length 8, got %d", got)
	}
}

func TestDefaultFootprintsRotationClosed(t *testing.T) {
	if _, err := NewCatalog(DefaultFootprints()); err != nil {
		t.Fatalf("default inventory must validate: %v", err)
	}
}
