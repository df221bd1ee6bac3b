// Package voxelgrid quantizes classified LiDAR point samples into a
// layered 3D occupancy grid. Each occupied cell (voxel) carries the
// majority classification of the points that fell inside it; cells
// below the configured point-density threshold are dropped.
package voxelgrid

import (
	"math"
	"sort"

	"github.com/DanQue69/LiDAR-2-LEGO/internal/pointcloud"
)

// Class is a LiDAR classification code (ASPRS convention).
type Class uint8

// Standard classification codes used by the processing pipeline.
const (
	ClassUnclassified Class = 1
	ClassGround       Class = 2
	ClassLowVeg       Class = 3
	ClassMediumVeg    Class = 4
	ClassHighVeg      Class = 5
	ClassBuilding     Class = 6
	ClassWater        Class = 9
	ClassBridgeDeck   Class = 17
	ClassOverground   Class = 64
	ClassVirtual      Class = 66
	ClassMiscBuilt    Class = 67
)

// Coord is an in-plane grid position within a layer.
type Coord struct {
	X int
	Y int
}

// Voxel is one occupied grid cell. Coordinates are grid indices; Points
// is the number of samples that contributed to the cell. Class is the
// only field the structural stage is allowed to rewrite.
type Voxel struct {
	X      int
	Y      int
	Z      int
	Class  Class
	Points int
}

// Layer holds all voxels sharing one z index plus the in-plane lookup
// used for 4-connected adjacency. A (x,y) position appears at most once
// per layer.
type Layer struct {
	Z     int
	cells map[Coord]*Voxel
}

// NewLayer creates an empty layer at the given z index.
func NewLayer(z int) *Layer {
	return &Layer{Z: z, cells: make(map[Coord]*Voxel)}
}

// Put inserts or replaces the voxel at its (x,y) position.
func (l *Layer) Put(v *Voxel) {
	l.cells[Coord{v.X, v.Y}] = v
}

// At returns the voxel at (x,y), or nil if the cell is empty.
func (l *Layer) At(x, y int) *Voxel {
	return l.cells[Coord{x, y}]
}

// Delete removes the voxel at (x,y) if present.
func (l *Layer) Delete(x, y int) {
	delete(l.cells, Coord{x, y})
}

// Len returns the number of occupied cells in the layer.
func (l *Layer) Len() int { return len(l.cells) }

// Voxels returns the layer's voxels sorted by (y, x). The sort keeps
// downstream raster scans and exports deterministic.
func (l *Layer) Voxels() []*Voxel {
	out := make([]*Voxel, 0, len(l.cells))
	for _, v := range l.cells {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// Grid is the layered voxel model produced from a point sample set.
type Grid struct {
	layers map[int]*Layer

	// NX, NY, NZ are the grid dimensions implied by the input extent.
	NX int
	NY int
	NZ int
}

// NewGrid creates an empty grid.
func NewGrid() *Grid {
	return &Grid{layers: make(map[int]*Layer)}
}

// Layer returns the layer at z, or nil if no voxel exists there.
func (g *Grid) Layer(z int) *Layer { return g.layers[z] }

// EnsureLayer returns the layer at z, creating it when missing.
func (g *Grid) EnsureLayer(z int) *Layer {
	l, ok := g.layers[z]
	if !ok {
		l = NewLayer(z)
		g.layers[z] = l
	}
	return l
}

// DropEmptyLayers removes layers that no longer hold any voxel.
func (g *Grid) DropEmptyLayers() {
	for z, l := range g.layers {
		if l.Len() == 0 {
			delete(g.layers, z)
		}
	}
}

// ZIndexes returns the occupied layer indexes in ascending order.
func (g *Grid) ZIndexes() []int {
	zs := make([]int, 0, len(g.layers))
	for z := range g.layers {
		zs = append(zs, z)
	}
	sort.Ints(zs)
	return zs
}

// NumLayers returns the number of occupied layers.
func (g *Grid) NumLayers() int { return len(g.layers) }

// NumVoxels returns the total voxel count across all layers.
func (g *Grid) NumVoxels() int {
	n := 0
	for _, l := range g.layers {
		n += l.Len()
	}
	return n
}

// At returns the voxel at (x,y,z), or nil.
func (g *Grid) At(x, y, z int) *Voxel {
	l := g.layers[z]
	if l == nil {
		return nil
	}
	return l.At(x, y)
}

// Params controls quantization.
type Params struct {
	// CellSizeM is the horizontal voxel edge length in metres.
	CellSizeM float64

	// VerticalRatio scales the layer thickness relative to CellSizeM.
	// LDraw bricks are 1.2 times taller than they are wide; classic
	// LEGO geometry uses 6/5 of a plate stack (5/3 for raw layers).
	VerticalRatio float64

	// MinDensity is the minimum number of points a cell must receive
	// to become a voxel.
	MinDensity int

	// UnknownClass is the classification ignored by the majority vote
	// whenever any other class contributed points to the cell.
	UnknownClass Class
}

// Build quantizes the samples into a layered grid. Empty input yields
// an empty grid and no error.
//
// Each cell's classification is the majority label among contributing
// points, with two fixed rules that keep the output deterministic:
// the unknown class loses to any other class present in the cell, and
// exact ties are broken toward the lowest class code.
func Build(points []pointcloud.Point, p Params) *Grid {
	g := NewGrid()
	if len(points) == 0 {
		return g
	}

	layerHeight := p.CellSizeM * p.VerticalRatio

	minX, minY, minZ := points[0].X, points[0].Y, points[0].Z
	maxX, maxY, maxZ := minX, minY, minZ
	for _, pt := range points[1:] {
		minX = math.Min(minX, pt.X)
		maxX = math.Max(maxX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxY = math.Max(maxY, pt.Y)
		minZ = math.Min(minZ, pt.Z)
		maxZ = math.Max(maxZ, pt.Z)
	}

	g.NX = gridSpan(maxX-minX, p.CellSizeM)
	g.NY = gridSpan(maxY-minY, p.CellSizeM)
	g.NZ = gridSpan(maxZ-minZ, layerHeight)

	type cellKey struct{ x, y, z int }
	counts := make(map[cellKey]map[Class]int)

	for _, pt := range points {
		// Points exactly on the max boundary land in the last cell.
		ix := clampIndex(math.Floor((pt.X-minX)/p.CellSizeM), g.NX)
		iy := clampIndex(math.Floor((pt.Y-minY)/p.CellSizeM), g.NY)
		iz := clampIndex(math.Floor((pt.Z-minZ)/layerHeight), g.NZ)
		k := cellKey{ix, iy, iz}
		m := counts[k]
		if m == nil {
			m = make(map[Class]int)
			counts[k] = m
		}
		m[Class(pt.Class)]++
	}

	for k, classCounts := range counts {
		total := 0
		for _, n := range classCounts {
			total += n
		}
		if total < p.MinDensity {
			continue
		}
		layer := g.EnsureLayer(k.z)
		layer.Put(&Voxel{
			X:      k.x,
			Y:      k.y,
			Z:      k.z,
			Class:  majorityClass(classCounts, p.UnknownClass),
			Points: total,
		})
	}

	return g
}

func clampIndex(i float64, n int) int {
	idx := int(i)
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}

func gridSpan(extent, step float64) int {
	n := int(math.Ceil(extent / step))
	if n < 1 {
		n = 1
	}
	return n
}

// majorityClass picks the winning classification for one cell. The
// unknown class only wins when it is the sole class present; ties break
// toward the lowest code so that identical inputs always map to
// identical voxels.
func majorityClass(classCounts map[Class]int, unknown Class) Class {
	var best Class
	bestN := -1
	for c, n := range classCounts {
		if c == unknown && len(classCounts) > 1 {
			continue
		}
		if n > bestN || (n == bestN && c < best) {
			best = c
			bestN = n
		}
	}
	return best
}
