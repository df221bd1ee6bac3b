// Package solver refines an initial brick tiling by cost-guided local
// search. One sweep visits every layer, enumerates alternative tilings
// of that layer's cells, and keeps the cheapest; sweeps repeat until
// none of them improves the layout (converged) or the iteration/time
// budget runs out. This is local search without backtracking: it can
// settle in a local minimum, and that is accepted.
package solver

import (
	"sync"
	"time"

	"github.com/DanQue69/LiDAR-2-LEGO/internal/brick"
	"github.com/DanQue69/LiDAR-2-LEGO/internal/cost"
	"github.com/DanQue69/LiDAR-2-LEGO/internal/voxelgrid"
)

// State tracks the solver lifecycle.
type State int

const (
	StateInitialized State = iota
	StateIterating
	StateConverged
	StateBudgetExhausted
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateIterating:
		return "iterating"
	case StateConverged:
		return "converged"
	case StateBudgetExhausted:
		return "budget_exhausted"
	}
	return "unknown"
}

// Config bounds the search.
type Config struct {
	// MaxSweeps caps full passes over the layers.
	MaxSweeps int

	// Budget caps wall-clock time; zero means no time limit.
	Budget time.Duration

	// Epsilon is the minimum cost improvement worth accepting.
	Epsilon float64

	// ComputeCost toggles scoring. When false the solver returns the
	// initial merge-engine tiling unscored and skips refinement
	// entirely; large models use this to trade soundness for speed.
	ComputeCost bool
}

// DefaultConfig returns the shipped search bounds.
func DefaultConfig() Config {
	return Config{MaxSweeps: 8, Epsilon: 1e-9, ComputeCost: true}
}

// Result is the solver's terminal output. Layout is never worse than
// the initial tiling: only strict improvements are accepted.
type Result struct {
	Layout   *brick.Layout
	Cost     cost.Record
	State    State
	Sweeps   int
	Accepted int
}

// Solver runs the local search.
type Solver struct {
	engine *brick.MergeEngine
	eval   *cost.Evaluator
	cfg    Config
	state  State
}

// New creates a solver over the given merge engine and evaluator.
func New(engine *brick.MergeEngine, eval *cost.Evaluator, cfg Config) *Solver {
	return &Solver{engine: engine, eval: eval, cfg: cfg, state: StateInitialized}
}

// State returns the solver's current lifecycle state.
func (s *Solver) State() State { return s.state }

// Solve tiles the grid and refines the tiling layer by layer. Candidate
// evaluations within a layer are read-only against the layout, so they
// run concurrently; the single winning mutation is applied afterwards.
func (s *Solver) Solve(g *voxelgrid.Grid) Result {
	layout := s.engine.TileGrid(g)
	if !s.cfg.ComputeCost {
		s.state = StateConverged
		return Result{Layout: layout, State: s.state}
	}

	s.state = StateIterating
	start := time.Now()
	res := Result{Layout: layout}

	overBudget := func() bool {
		return s.cfg.Budget > 0 && time.Since(start) >= s.cfg.Budget
	}

sweeps:
	for sweep := 0; sweep < s.cfg.MaxSweeps; sweep++ {
		res.Sweeps = sweep + 1
		improved := false

		for _, z := range layout.ZIndexes() {
			if overBudget() {
				s.state = StateBudgetExhausted
				break sweeps
			}

			layer := g.Layer(z)
			if layer == nil {
				continue
			}
			candidates := s.candidates(layer)
			if len(candidates) == 0 {
				continue
			}

			affected := []int{z, z + 1}
			current := s.eval.EvaluateLayers(layout, nil, affected)

			costs := make([]float64, len(candidates))
			var wg sync.WaitGroup
			for i := range candidates {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					costs[i] = s.eval.EvaluateLayers(layout, map[int][]*brick.Brick{z: candidates[i]}, affected)
				}(i)
			}
			wg.Wait()

			best, bestCost := -1, current
			for i, c := range costs {
				if bestCost-c > s.cfg.Epsilon {
					best, bestCost = i, c
				}
			}
			if best >= 0 {
				layout.SetLayer(z, candidates[best])
				res.Accepted++
				improved = true
			}
		}

		if s.state == StateBudgetExhausted {
			break
		}
		if !improved {
			s.state = StateConverged
			break
		}
	}

	if s.state == StateIterating {
		s.state = StateBudgetExhausted
	}

	res.State = s.state
	res.Cost = s.eval.Evaluate(layout)
	return res
}
