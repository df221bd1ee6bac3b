// Package cost scores brick layouts for structural soundness. Lower is
// better. The score combines inter-layer bonding terms (orientation
// crossing, aligned seams), an unsupported-span term, an in-plane
// T-junction term, and a brick-count term. All weights are caller
// configuration, not fixed policy.
package cost

import (
	"math"

	"github.com/DanQue69/LiDAR-2-LEGO/internal/brick"
)

// Weights are the penalty multipliers. A zero weight disables a term.
type Weights struct {
	// Orientation penalizes a brick resting on a same-orientation
	// brick: stacked parallel bricks do not interlock.
	Orientation float64

	// Seam penalizes a brick end aligned exactly with an edge of the
	// bricks below, the classic stacked-joint weak line.
	Seam float64

	// Junction penalizes in-plane T-junctions landing off-centre on a
	// brick, scaled by distance from the brick's midpoint.
	Junction float64

	// Support penalizes covered cells with nothing directly beneath,
	// proportional to the unsupported share of each brick.
	Support float64

	// BrickCount rewards layouts with fewer, larger bricks.
	BrickCount float64
}

// DefaultWeights mirror the tuning the pipeline ships with: unit
// weights on the structural terms and a light brick-count incentive.
func DefaultWeights() Weights {
	return Weights{Orientation: 1, Seam: 1, Junction: 1, Support: 1, BrickCount: 0.1}
}

// Record is the ephemeral score attached to a candidate layout.
type Record struct {
	Total    float64
	PerLayer map[int]float64
	Bricks   int
}

// Evaluator scores layouts under one weight set.
type Evaluator struct {
	w Weights
}

// NewEvaluator creates an evaluator with the given weights.
func NewEvaluator(w Weights) *Evaluator {
	return &Evaluator{w: w}
}

// Evaluate scores the whole layout and returns the per-layer
// breakdown. A layer's cost covers its own in-plane junctions, its
// brick count, and its bonding against the layer directly below.
func (e *Evaluator) Evaluate(l *brick.Layout) Record {
	rec := Record{PerLayer: make(map[int]float64), Bricks: l.NumBricks()}
	zs := l.ZIndexes()
	if len(zs) == 0 {
		return rec
	}
	idx := l.CellIndex()
	minZ := zs[0]
	for _, z := range zs {
		c := e.layerCost(l.Layer(z), idx, z, minZ)
		rec.PerLayer[z] = c
		rec.Total += c
	}
	return rec
}

// EvaluateLayers scores only the given layers, with an optional layer
// replacement applied first. This is the solver's incremental path: a
// change at layer z only moves the cost of z (its own terms and its
// bonding to z-1) and of z+1 (whose bonding reads z), so candidates
// are compared on those two layers alone.
func (e *Evaluator) EvaluateLayers(l *brick.Layout, replace map[int][]*brick.Brick, layers []int) float64 {
	zs := l.ZIndexes()
	if len(zs) == 0 && len(replace) == 0 {
		return 0
	}
	minZ := math.MaxInt
	for _, z := range zs {
		if z < minZ {
			minZ = z
		}
	}
	for z := range replace {
		if z < minZ {
			minZ = z
		}
	}

	layerBricks := func(z int) []*brick.Brick {
		if b, ok := replace[z]; ok {
			return b
		}
		return l.Layer(z)
	}

	// Index only the layers the requested costs can read: each target
	// layer and the one beneath it.
	need := make(map[int]bool, len(layers)*2)
	for _, z := range layers {
		need[z] = true
		need[z-1] = true
	}
	idx := make(map[brick.CellKey]*brick.Brick)
	for z := range need {
		for _, b := range layerBricks(z) {
			for dx := 0; dx < b.Length; dx++ {
				for dy := 0; dy < b.Width; dy++ {
					idx[brick.CellKey{X: b.X + dx, Y: b.Y + dy, Z: b.Z}] = b
				}
			}
		}
	}

	total := 0.0
	for _, z := range layers {
		total += e.layerCost(layerBricks(z), idx, z, minZ)
	}
	return total
}

func (e *Evaluator) layerCost(bricks []*brick.Brick, idx map[brick.CellKey]*brick.Brick, z, minZ int) float64 {
	if len(bricks) == 0 {
		return 0
	}
	c := e.w.BrickCount * float64(len(bricks))
	c += e.w.Junction * junctionPenalty(bricks, idx, z)
	if z > minZ {
		c += e.w.Orientation * orientationPenalty(bricks, idx, z)
		c += e.w.Seam * seamPenalty(bricks, idx, z)
		c += e.w.Support * supportPenalty(bricks, idx, z)
	}
	return c
}

// orientationPenalty counts brick pairs stacked with the same
// orientation. Crossed bricks (H on V, V on H) interlock; parallel
// ones stack without bonding.
func orientationPenalty(bricks []*brick.Brick, idx map[brick.CellKey]*brick.Brick, z int) float64 {
	penalty := 0.0
	for _, b := range bricks {
		x1, y1, x2, y2 := b.BBox()
		seen := make(map[*brick.Brick]bool)
		for ix := x1; ix < x2; ix++ {
			for iy := y1; iy < y2; iy++ {
				below := idx[brick.CellKey{X: ix, Y: iy, Z: z - 1}]
				if below == nil || seen[below] {
					continue
				}
				seen[below] = true
				if below.Orientation == b.Orientation {
					penalty++
				}
			}
		}
	}
	return penalty
}

// seamPenalty counts brick ends whose edge lands exactly on an edge of
// the bricks below. An end at a position where the brick beneath
// changes produces a continuous vertical joint through both layers.
func seamPenalty(bricks []*brick.Brick, idx map[brick.CellKey]*brick.Brick, z int) float64 {
	penalty := 0.0
	at := func(x, y int) *brick.Brick { return idx[brick.CellKey{X: x, Y: y, Z: z - 1}] }
	for _, b := range bricks {
		x1, y1, x2, y2 := b.BBox()
		if b.Orientation == brick.Horizontal {
			if at(x1, y1) != at(x1-1, y1) {
				penalty++
			}
			if at(x2-1, y1) != at(x2, y1) {
				penalty++
			}
		} else {
			if at(x1, y1) != at(x1, y1-1) {
				penalty++
			}
			if at(x1, y2-1) != at(x1, y2) {
				penalty++
			}
		}
	}
	return penalty
}

// junctionPenalty scores in-plane T-junctions. A neighbour edge
// meeting a brick near its centre braces it; an edge near the end adds
// little. The penalty grows linearly with the junction's distance from
// the brick midpoint, normalized by the half-length.
func junctionPenalty(bricks []*brick.Brick, idx map[brick.CellKey]*brick.Brick, z int) float64 {
	penalty := 0.0
	for _, b := range bricks {
		x1, y1, x2, y2 := b.BBox()
		centerX := float64(x1+x2) / 2
		centerY := float64(y1+y2) / 2

		neighbors := make(map[*brick.Brick]bool)
		if b.Orientation == brick.Horizontal {
			for ix := x1; ix < x2; ix++ {
				for _, ny := range []int{y1 - 1, y2} {
					if n := idx[brick.CellKey{X: ix, Y: ny, Z: z}]; n != nil {
						neighbors[n] = true
					}
				}
			}
			for n := range neighbors {
				nx1, _, nx2, _ := n.BBox()
				for _, edge := range []int{nx1, nx2} {
					if x1 < edge && edge < x2 {
						penalty += math.Abs(float64(edge)-centerX) / (float64(x2-x1) / 2)
					}
				}
			}
		} else {
			for iy := y1; iy < y2; iy++ {
				for _, nx := range []int{x1 - 1, x2} {
					if n := idx[brick.CellKey{X: nx, Y: iy, Z: z}]; n != nil {
						neighbors[n] = true
					}
				}
			}
			for n := range neighbors {
				_, ny1, _, ny2 := n.BBox()
				for _, edge := range []int{ny1, ny2} {
					if y1 < edge && edge < y2 {
						penalty += math.Abs(float64(edge)-centerY) / (float64(y2-y1) / 2)
					}
				}
			}
		}
	}
	return penalty
}

// supportPenalty charges each brick its unsupported cell fraction: a
// brick floating entirely over air costs 1, a brick half held up costs
// 0.5, a fully supported brick costs nothing.
func supportPenalty(bricks []*brick.Brick, idx map[brick.CellKey]*brick.Brick, z int) float64 {
	penalty := 0.0
	for _, b := range bricks {
		x1, y1, x2, y2 := b.BBox()
		unsupported := 0
		for ix := x1; ix < x2; ix++ {
			for iy := y1; iy < y2; iy++ {
				if idx[brick.CellKey{X: ix, Y: iy, Z: z - 1}] == nil {
					unsupported++
				}
			}
		}
		penalty += float64(unsupported) / float64(b.Area())
	}
	return penalty
}
