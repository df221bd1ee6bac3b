package solver

import (
	"sort"

	"github.com/DanQue69/LiDAR-2-LEGO/internal/brick"
	"github.com/DanQue69/LiDAR-2-LEGO/internal/voxelgrid"
)

// maxPhases bounds how many seam offsets are tried per orientation.
// Larger phase counts buy little: shifting the first brick by more
// than a few cells revisits seam positions already covered.
const maxPhases = 4

// candidates enumerates alternative complete tilings of one layer: the
// raster greedy tiling plus striped tilings in both orientations with
// several seam phases. Every candidate covers exactly the layer's
// voxel set, so they are interchangeable under the layout invariants.
func (s *Solver) candidates(layer *voxelgrid.Layer) [][]*brick.Brick {
	out := [][]*brick.Brick{s.engine.TileLayer(layer)}
	phases := s.engine.Catalog().MaxLength()
	if phases > maxPhases {
		phases = maxPhases
	}
	for phase := 0; phase < phases; phase++ {
		out = append(out, s.stripeTile(layer, brick.Horizontal, phase))
		out = append(out, s.stripeTile(layer, brick.Vertical, phase))
	}
	return out
}

type run struct {
	x, y  int // anchor cell
	n     int // length in cells along the stripe axis
	class voxelgrid.Class
}

// stripeTile tiles the layer with 1-wide stripes along one axis,
// partitions each same-class run into catalog lengths, then widens
// paired stripes into 2-wide bricks where the catalog allows. phase
// caps the first segment of every run, shifting all following seams so
// consecutive layers can stagger their joints.
func (s *Solver) stripeTile(layer *voxelgrid.Layer, o brick.Orientation, phase int) []*brick.Brick {
	if layer == nil || layer.Len() == 0 {
		return nil
	}

	runs := collectRuns(layer, o)
	lengths := s.engine.Catalog().LengthsForWidth(1)

	var bricks []*brick.Brick
	for _, r := range runs {
		offset := 0
		for _, seg := range partitionRun(r.n, phase, lengths) {
			if o == brick.Horizontal {
				bricks = append(bricks, brick.New(r.x+offset, r.y, layer.Z, seg, 1, r.class))
			} else {
				bricks = append(bricks, brick.New(r.x, r.y+offset, layer.Z, 1, seg, r.class))
			}
			offset += seg
		}
	}

	return s.widen(bricks, o)
}

// collectRuns splits the layer into maximal same-class 1-wide runs
// along the stripe axis, in deterministic scan order.
func collectRuns(layer *voxelgrid.Layer, o brick.Orientation) []run {
	voxels := layer.Voxels()
	if o == brick.Vertical {
		sort.Slice(voxels, func(i, j int) bool {
			if voxels[i].X != voxels[j].X {
				return voxels[i].X < voxels[j].X
			}
			return voxels[i].Y < voxels[j].Y
		})
	}

	var runs []run
	for _, v := range voxels {
		if len(runs) > 0 {
			last := &runs[len(runs)-1]
			if o == brick.Horizontal && v.Y == last.y && v.X == last.x+last.n && v.Class == last.class {
				last.n++
				continue
			}
			if o == brick.Vertical && v.X == last.x && v.Y == last.y+last.n && v.Class == last.class {
				last.n++
				continue
			}
		}
		runs = append(runs, run{x: v.X, y: v.Y, n: 1, class: v.Class})
	}
	return runs
}

// partitionRun splits a run length into valid brick lengths, largest
// first. A non-zero phase caps the first segment, offsetting the seams
// of the rest of the run. The 1-length is always available, so the
// partition always completes.
func partitionRun(n, phase int, lengths []int) []int {
	var segs []int
	remaining := n
	first := true
	for remaining > 0 {
		limit := remaining
		if first && phase > 0 && phase < limit {
			limit = phase
		}
		pick := 1
		for _, l := range lengths {
			if l <= limit {
				pick = l
				break
			}
		}
		segs = append(segs, pick)
		remaining -= pick
		first = false
	}
	return segs
}

// widen merges pairs of adjacent 1-wide stripes of equal extent into a
// single 2-wide brick when that footprint exists in the catalog.
func (s *Solver) widen(bricks []*brick.Brick, o brick.Orientation) []*brick.Brick {
	type anchor struct{ x, y int }
	byAnchor := make(map[anchor]int, len(bricks))
	for i, b := range bricks {
		byAnchor[anchor{b.X, b.Y}] = i
	}

	consumed := make([]bool, len(bricks))
	var out []*brick.Brick
	for i, b := range bricks {
		if consumed[i] {
			continue
		}
		var partnerAt anchor
		if o == brick.Horizontal {
			partnerAt = anchor{b.X, b.Y + 1}
		} else {
			partnerAt = anchor{b.X + 1, b.Y}
		}
		if j, ok := byAnchor[partnerAt]; ok && !consumed[j] {
			p := bricks[j]
			if o == brick.Horizontal && p.Length == b.Length && p.Width == 1 && b.Width == 1 && p.Class == b.Class &&
				s.engine.Catalog().Has(brick.Footprint{Width: 2, Length: b.Length}) {
				consumed[i], consumed[j] = true, true
				out = append(out, brick.New(b.X, b.Y, b.Z, b.Length, 2, b.Class))
				continue
			}
			if o == brick.Vertical && p.Width == b.Width && p.Length == 1 && b.Length == 1 && p.Class == b.Class &&
				s.engine.Catalog().Has(brick.Footprint{Width: b.Width, Length: 2}) {
				consumed[i], consumed[j] = true, true
				out = append(out, brick.New(b.X, b.Y, b.Z, 2, b.Width, b.Class))
				continue
			}
		}
		consumed[i] = true
		out = append(out, b)
	}
	return out
}
