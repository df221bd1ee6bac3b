package brick

import (
	"sync"

	"github.com/DanQue69/LiDAR-2-LEGO/internal/voxelgrid"
)

// MergeEngine tiles voxel layers into non-overlapping brick placements
// from a validated catalog. The tiling is a greedy largest-first scan:
// deterministic and complete, but not guaranteed brick-count-optimal
// (that problem is NP-hard); the solver refines its output.
type MergeEngine struct {
	catalog *Catalog
}

// NewMergeEngine creates an engine over the given catalog.
func NewMergeEngine(c *Catalog) *MergeEngine {
	return &MergeEngine{catalog: c}
}

// Catalog returns the engine's footprint catalog.
func (e *MergeEngine) Catalog() *Catalog { return e.catalog }

// TileLayer covers every voxel of the layer with exactly one brick.
// The scan walks cells in raster order (y-major); at each uncovered
// voxel it places the first catalog footprint, largest area first,
// that fits entirely on uncovered voxels of the same class. The 1x1
// fallback means the loop always terminates with full coverage.
func (e *MergeEngine) TileLayer(layer *voxelgrid.Layer) []*Brick {
	if layer == nil || layer.Len() == 0 {
		return nil
	}

	covered := make(map[voxelgrid.Coord]bool, layer.Len())
	var bricks []*Brick

	for _, v := range layer.Voxels() {
		anchor := voxelgrid.Coord{X: v.X, Y: v.Y}
		if covered[anchor] {
			continue
		}
		fp := e.bestFit(layer, covered, v)
		for dx := 0; dx < fp.Length; dx++ {
			for dy := 0; dy < fp.Width; dy++ {
				covered[voxelgrid.Coord{X: v.X + dx, Y: v.Y + dy}] = true
			}
		}
		bricks = append(bricks, New(v.X, v.Y, layer.Z, fp.Length, fp.Width, v.Class))
	}
	return bricks
}

// bestFit returns the largest footprint anchored at the voxel that
// covers only uncovered cells of the voxel's class.
func (e *MergeEngine) bestFit(layer *voxelgrid.Layer, covered map[voxelgrid.Coord]bool, v *voxelgrid.Voxel) Footprint {
	for _, fp := range e.catalog.ordered {
		if e.fits(layer, covered, v, fp) {
			return fp
		}
	}
	// Unreachable with a valid catalog: 1x1 always fits at an
	// uncovered voxel.
	return Footprint{1, 1}
}

func (e *MergeEngine) fits(layer *voxelgrid.Layer, covered map[voxelgrid.Coord]bool, v *voxelgrid.Voxel, fp Footprint) bool {
	for dx := 0; dx < fp.Length; dx++ {
		for dy := 0; dy < fp.Width; dy++ {
			cell := layer.At(v.X+dx, v.Y+dy)
			if cell == nil || cell.Class != v.Class {
				return false
			}
			if covered[voxelgrid.Coord{X: v.X + dx, Y: v.Y + dy}] {
				return false
			}
		}
	}
	return true
}

// TileGrid tiles every layer of the grid. Layers are independent for
// merging, so they are tiled concurrently; results are assembled by z
// index so the layout is identical to a serial run.
func (e *MergeEngine) TileGrid(g *voxelgrid.Grid) *Layout {
	layout := NewLayout()
	zs := g.ZIndexes()
	results := make([][]*Brick, len(zs))

	var wg sync.WaitGroup
	for i, z := range zs {
		wg.Add(1)
		go func(i, z int) {
			defer wg.Done()
			results[i] = e.TileLayer(g.Layer(z))
		}(i, z)
	}
	wg.Wait()

	for i, z := range zs {
		layout.SetLayer(z, results[i])
	}
	return layout
}
