// Package brick converts voxel layers into placed brick assemblies
// drawn from a finite footprint catalog, and holds the layout types
// shared by the cost function and the solver.
package brick

import (
	"fmt"
	"sort"
)

// Footprint is a brick's in-plane size in cells. Length runs along the
// X axis, Width along Y; a rotated part is a distinct footprint.
type Footprint struct {
	Width  int
	Length int
}

// Area returns the number of cells the footprint covers.
func (f Footprint) Area() int { return f.Width * f.Length }

func (f Footprint) String() string { return fmt.Sprintf("%dx%d", f.Width, f.Length) }

// CatalogError reports an invalid brick catalog. Catalog problems are
// configuration errors and surface at construction time, never during
// merging.
type CatalogError struct {
	Reason string
}

func (e *CatalogError) Error() string {
	return "brick catalog invalid: " + e.Reason
}

// Catalog is the set of brick footprints available to the merge
// engine. A valid catalog contains the 1x1 footprint (the tiling
// fallback) and is closed under rotation.
type Catalog struct {
	sizes   map[Footprint]bool
	ordered []Footprint
}

// NewCatalog validates the footprint set and fixes the deterministic
// placement order: larger area first, then longer X extent. The 1x1
// footprint must be present so a tiling always completes, and every
// footprint's rotation must also be present so both orientations are
// searchable.
func NewCatalog(sizes []Footprint) (*Catalog, error) {
	if len(sizes) == 0 {
		return nil, &CatalogError{Reason: "no footprints configured"}
	}
	set := make(map[Footprint]bool, len(sizes))
	for _, f := range sizes {
		if f.Width < 1 || f.Length < 1 {
			return nil, &CatalogError{Reason: fmt.Sprintf("footprint %s has non-positive dimensions", f)}
		}
		set[f] = true
	}
	if !set[Footprint{1, 1}] {
		return nil, &CatalogError{Reason: "mandatory 1x1 footprint missing"}
	}
	for f := range set {
		if !set[Footprint{Width: f.Length, Length: f.Width}] {
			return nil, &CatalogError{Reason: fmt.Sprintf("not rotation-closed: %s present but %dx%d missing", f, f.Length, f.Width)}
		}
	}

	ordered := make([]Footprint, 0, len(set))
	for f := range set {
		ordered = append(ordered, f)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Area() != ordered[j].Area() {
			return ordered[i].Area() > ordered[j].Area()
		}
		if ordered[i].Length != ordered[j].Length {
			return ordered[i].Length > ordered[j].Length
		}
		return ordered[i].Width > ordered[j].Width
	})

	return &Catalog{sizes: set, ordered: ordered}, nil
}

// Has reports whether the footprint is available.
func (c *Catalog) Has(f Footprint) bool { return c.sizes[f] }

// Footprints returns the footprints in placement order (area
// descending, then length descending).
func (c *Catalog) Footprints() []Footprint {
	out := make([]Footprint, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// LengthsForWidth returns the available X extents for bricks of the
// given Y extent, longest first. Used by stripe partitioning.
func (c *Catalog) LengthsForWidth(width int) []int {
	var lengths []int
	for f := range c.sizes {
		if f.Width == width {
			lengths = append(lengths, f.Length)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(lengths)))
	return lengths
}

// MaxLength returns the longest available extent in either axis.
func (c *Catalog) MaxLength() int {
	max := 1
	for f := range c.sizes {
		if f.Length > max {
			max = f.Length
		}
		if f.Width > max {
			max = f.Width
		}
	}
	return max
}

// DefaultFootprints is the standard buildable inventory: 1xN bricks up
// to 1x8 and 2xN bricks up to 2x6, both orientations.
func DefaultFootprints() []Footprint {
	base := []Footprint{
		{1, 1}, {1, 2}, {1, 3}, {1, 4}, {1, 6}, {1, 8},
		{2, 2}, {2, 3}, {2, 4}, {2, 6},
	}
	seen := make(map[Footprint]bool)
	var out []Footprint
	for _, f := range base {
		for _, r := range []Footprint{f, {Width: f.Length, Length: f.Width}} {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	return out
}
