// Package structure turns a raw voxel grid into a buildable one. It
// models the grid as an explicit coordinate-keyed voxel arena with
// 6-connected adjacency (4 in-plane neighbours plus the cells directly
// above and below) and applies the structural passes in a fixed order:
// classification repair, semantic filtering, ground-connectivity
// pruning, foundation consolidation, vertical hole filling. Later
// passes rely on the invariants established by earlier ones.
package structure

import (
	"errors"
	"fmt"
	"sort"

	"github.com/DanQue69/LiDAR-2-LEGO/internal/voxelgrid"
)

// ErrNoAnchor reports that ground-connectivity pruning was requested on
// a grid holding no voxel of the anchor class. Pruning is undefined
// without a seed, so the pipeline must abort rather than skip it.
var ErrNoAnchor = errors.New("no ground-anchor voxel found - cannot prune")

// Key addresses one voxel in the arena.
type Key struct {
	X int
	Y int
	Z int
}

// neighbors6 is the 6-connected stencil: in-plane 4-connectivity plus
// the vertical neighbours.
var neighbors6 = [6]Key{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// neighbors8 is the in-plane 8-connected stencil used by foundation
// growth, where diagonal support counts.
var neighbors8 = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Graph is the structural voxel arena. Edges are implicit: two voxels
// are adjacent iff their keys differ by one step of the 6-connected
// stencil, so adjacency queries are O(1) map lookups and no separate
// edge store has to be kept consistent through mutation.
type Graph struct {
	voxels map[Key]*voxelgrid.Voxel
}

// FromGrid builds the arena from a voxel grid. The grid's voxels are
// referenced, not copied; the structural passes own them from here on.
func FromGrid(g *voxelgrid.Grid) *Graph {
	gr := &Graph{voxels: make(map[Key]*voxelgrid.Voxel, g.NumVoxels())}
	for _, z := range g.ZIndexes() {
		for _, v := range g.Layer(z).Voxels() {
			gr.voxels[Key{v.X, v.Y, v.Z}] = v
		}
	}
	return gr
}

// ToGrid converts the arena back into the layered grid form consumed
// by the merge engine.
func (g *Graph) ToGrid() *voxelgrid.Grid {
	out := voxelgrid.NewGrid()
	for k, v := range g.voxels {
		out.EnsureLayer(k.Z).Put(v)
	}
	return out
}

// Len returns the number of voxels in the arena.
func (g *Graph) Len() int { return len(g.voxels) }

// At returns the voxel at the given coordinates, or nil.
func (g *Graph) At(x, y, z int) *voxelgrid.Voxel {
	return g.voxels[Key{x, y, z}]
}

// Keys returns all voxel keys sorted by (z, y, x). Iteration over the
// sorted keys keeps every pass deterministic.
func (g *Graph) Keys() []Key {
	keys := make([]Key, 0, len(g.voxels))
	for k := range g.voxels {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Z != keys[j].Z {
			return keys[i].Z < keys[j].Z
		}
		if keys[i].Y != keys[j].Y {
			return keys[i].Y < keys[j].Y
		}
		return keys[i].X < keys[j].X
	})
	return keys
}

func (g *Graph) put(v *voxelgrid.Voxel) {
	g.voxels[Key{v.X, v.Y, v.Z}] = v
}

func (g *Graph) bounds() (min, max Key, ok bool) {
	first := true
	for k := range g.voxels {
		if first {
			min, max = k, k
			first = false
			continue
		}
		if k.X < min.X {
			min.X = k.X
		}
		if k.X > max.X {
			max.X = k.X
		}
		if k.Y < min.Y {
			min.Y = k.Y
		}
		if k.Y > max.Y {
			max.Y = k.Y
		}
		if k.Z < min.Z {
			min.Z = k.Z
		}
		if k.Z > max.Z {
			max.Z = k.Z
		}
	}
	return min, max, !first
}

// RepairParams configures iterative classification repair.
type RepairParams struct {
	// Unknown is the label eligible for rewriting.
	Unknown voxelgrid.Class

	// Propagate lists the labels allowed to overwrite Unknown.
	Propagate []voxelgrid.Class

	// MaxIter caps the relaxation passes. The fixed point is not
	// guaranteed: an isolated unknown voxel with no propagating
	// neighbour never changes, so the cap bounds the work instead.
	MaxIter int
}

// RepairClassification relabels unknown voxels from their 6-connected
// neighbours. Each pass scans every unknown voxel and, when at least
// one neighbour carries a propagating class, adopts the most frequent
// such class (lowest code on ties). Passes repeat until nothing
// changes or MaxIter is reached.
//
// Returns the number of voxels relabelled and whether a fixed point
// was reached within the cap.
func (g *Graph) RepairClassification(p RepairParams) (relabelled int, converged bool) {
	propagate := make(map[voxelgrid.Class]bool, len(p.Propagate))
	for _, c := range p.Propagate {
		propagate[c] = true
	}

	for iter := 0; iter < p.MaxIter; iter++ {
		var unknown []Key
		for _, k := range g.Keys() {
			if g.voxels[k].Class == p.Unknown {
				unknown = append(unknown, k)
			}
		}
		if len(unknown) == 0 {
			return relabelled, true
		}

		changed := 0
		for _, k := range unknown {
			counts := make(map[voxelgrid.Class]int)
			for _, d := range neighbors6 {
				n := g.voxels[Key{k.X + d.X, k.Y + d.Y, k.Z + d.Z}]
				if n != nil && propagate[n.Class] {
					counts[n.Class]++
				}
			}
			if len(counts) == 0 {
				continue
			}
			g.voxels[k].Class = dominantClass(counts)
			changed++
		}
		relabelled += changed
		if changed == 0 {
			return relabelled, true
		}
	}

	// The cap was hit; a residual unknown voxel may still have gained
	// a propagating neighbour in the last pass.
	for _, v := range g.voxels {
		if v.Class == p.Unknown {
			return relabelled, false
		}
	}
	return relabelled, true
}

func dominantClass(counts map[voxelgrid.Class]int) voxelgrid.Class {
	var best voxelgrid.Class
	bestN := -1
	for c, n := range counts {
		if n > bestN || (n == bestN && c < best) {
			best = c
			bestN = n
		}
	}
	return best
}

// FilterClasses deletes every voxel whose class is outside the keep
// set and returns the number removed.
func (g *Graph) FilterClasses(keep []voxelgrid.Class) int {
	keepSet := make(map[voxelgrid.Class]bool, len(keep))
	for _, c := range keep {
		keepSet[c] = true
	}
	removed := 0
	for k, v := range g.voxels {
		if !keepSet[v.Class] {
			delete(g.voxels, k)
			removed++
		}
	}
	return removed
}

// PruneToAnchor removes every voxel with no 6-connected path to a
// voxel of the anchor class. It seeds a breadth-first traversal from
// all anchor voxels at once and deletes whatever the frontier never
// reaches. Returns ErrNoAnchor when the grid holds no anchor voxel.
func (g *Graph) PruneToAnchor(anchor voxelgrid.Class) (removed int, err error) {
	var frontier []Key
	for k, v := range g.voxels {
		if v.Class == anchor {
			frontier = append(frontier, k)
		}
	}
	if len(frontier) == 0 {
		return 0, fmt.Errorf("prune to class %d: %w", anchor, ErrNoAnchor)
	}

	reached := make(map[Key]bool, len(g.voxels))
	for _, k := range frontier {
		reached[k] = true
	}
	for len(frontier) > 0 {
		k := frontier[0]
		frontier = frontier[1:]
		for _, d := range neighbors6 {
			nk := Key{k.X + d.X, k.Y + d.Y, k.Z + d.Z}
			if reached[nk] {
				continue
			}
			if _, ok := g.voxels[nk]; !ok {
				continue
			}
			reached[nk] = true
			frontier = append(frontier, nk)
		}
	}

	for k := range g.voxels {
		if !reached[k] {
			delete(g.voxels, k)
			removed++
		}
	}
	return removed, nil
}

// FillParams configures vertical hole filling.
type FillParams struct {
	// WallClasses restricts filling to columns of these classes.
	WallClasses []voxelgrid.Class

	// MaxGap is the largest gap length (in layers) that gets closed.
	// A survey rarely sees the inside of a wall, so short vertical
	// gaps between two wall voxels are assumed to be solid; a long
	// gap more likely separates unrelated structures.
	MaxGap int
}

// FillVerticalGaps closes vertical gaps between same-column wall-class
// voxels. For each (x,y) column, consecutive wall voxels along z with
// a gap of at most MaxGap empty layers between them get the gap filled
// with new voxels carrying the upper voxel's class. Returns the number
// of voxels added.
func (g *Graph) FillVerticalGaps(p FillParams) int {
	wall := make(map[voxelgrid.Class]bool, len(p.WallClasses))
	for _, c := range p.WallClasses {
		wall[c] = true
	}

	type colKey struct{ x, y int }
	type colEntry struct {
		z     int
		class voxelgrid.Class
	}
	columns := make(map[colKey][]colEntry)
	for k, v := range g.voxels {
		if wall[v.Class] {
			columns[colKey{k.X, k.Y}] = append(columns[colKey{k.X, k.Y}], colEntry{k.Z, v.Class})
		}
	}

	added := 0
	for ck, entries := range columns {
		if len(entries) < 2 {
			continue
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].z < entries[j].z })
		for i := 1; i < len(entries); i++ {
			lower, upper := entries[i-1], entries[i]
			gap := upper.z - lower.z - 1
			if gap < 1 || gap > p.MaxGap {
				continue
			}
			for z := lower.z + 1; z < upper.z; z++ {
				k := Key{ck.x, ck.y, z}
				if _, occupied := g.voxels[k]; occupied {
					continue
				}
				g.put(&voxelgrid.Voxel{X: ck.x, Y: ck.y, Z: z, Class: upper.class, Points: 1})
				added++
			}
		}
	}
	return added
}
