package structure

import (
	"fmt"

	"github.com/DanQue69/LiDAR-2-LEGO/internal/voxelgrid"
)

// Strategy selects how foundation consolidation synthesizes ground
// material beneath the model.
type Strategy int

const (
	// StrategyNone leaves the grid untouched.
	StrategyNone Strategy = iota

	// StrategyShell keeps only a thin shell of the synthesized ground
	// volume, eroding fully-enclosed interior voxels.
	StrategyShell

	// StrategyShellWithPillars keeps the shell plus a regular grid of
	// square support pillars so large shells cannot sag.
	StrategyShellWithPillars

	// StrategyFilled keeps the full synthesized ground volume.
	StrategyFilled
)

var strategyNames = map[Strategy]string{
	StrategyNone:             "none",
	StrategyShell:            "shell",
	StrategyShellWithPillars: "pillars",
	StrategyFilled:           "filled",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy maps a configuration string to its Strategy.
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return StrategyNone, fmt.Errorf("unknown consolidation strategy %q (none, shell, pillars, filled)", name)
}

// ConsolidateParams configures foundation synthesis.
type ConsolidateParams struct {
	Strategy Strategy

	// Ground is the class written into synthesized foundation voxels.
	Ground voxelgrid.Class

	// Mask marks columns whose occupancy must not be overwritten by
	// outward growth (typically buildings); ground is still filled
	// beneath them.
	Mask voxelgrid.Class

	// Smoothing is the minimum number of ground-bearing 8-connected
	// neighbour columns a column needs before the footprint grows
	// into it. Higher values grow the foundation less aggressively.
	Smoothing int

	// PillarStep and PillarWidth place square PillarWidth-wide pillars
	// every PillarStep columns. Only used by StrategyShellWithPillars.
	PillarStep  int
	PillarWidth int
}

// Consolidate synthesizes a foundation under the model following the
// configured strategy and returns the net voxel count change. The
// passes are: fill each ground-bearing column down from its highest
// ground voxel, grow the footprint outward column by column where
// enough neighbours already bear ground, fill beneath mask-class
// footprints, then (shell strategies) erode the enclosed interior.
func (g *Graph) Consolidate(p ConsolidateParams) int {
	if p.Strategy == StrategyNone {
		return 0
	}
	min, max, ok := g.bounds()
	if !ok {
		return 0
	}

	nx := max.X - min.X + 1
	ny := max.Y - min.Y + 1
	nz := max.Z - min.Z + 1
	before := len(g.voxels)

	// Dense working copy in local coordinates; class 0 means empty.
	dense := make([][][]voxelgrid.Class, nx)
	for x := range dense {
		dense[x] = make([][]voxelgrid.Class, ny)
		for y := range dense[x] {
			dense[x][y] = make([]voxelgrid.Class, nz)
		}
	}
	for k, v := range g.voxels {
		dense[k.X-min.X][k.Y-min.Y][k.Z-min.Z] = v.Class
	}

	// Per-column ground surface height and occupancy flags.
	height := make([][]int, nx)
	hasGround := make([][]bool, nx)
	interior := make([][]bool, nx)
	for x := 0; x < nx; x++ {
		height[x] = make([]int, ny)
		hasGround[x] = make([]bool, ny)
		interior[x] = make([]bool, ny)
		for y := 0; y < ny; y++ {
			for z := nz - 1; z >= 0; z-- {
				if dense[x][y][z] == p.Ground {
					height[x][y] = z
					hasGround[x][y] = true
					break
				}
			}
			for z := 0; z < nz; z++ {
				if dense[x][y][z] == p.Mask {
					interior[x][y] = true
					break
				}
			}
		}
	}

	fillColumn := func(x, y, top int) {
		for z := 0; z <= top && z < nz; z++ {
			if dense[x][y][z] == 0 {
				dense[x][y][z] = p.Ground
			}
		}
	}

	// Pass 1: solidify existing ground columns down to the base.
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			if hasGround[x][y] {
				fillColumn(x, y, height[x][y])
			}
		}
	}

	// Pass 2: grow the footprint outward. A bare column joins the
	// foundation when at least Smoothing of its 8 neighbours already
	// bear ground; it inherits the tallest neighbouring surface.
	processed := make([][]bool, nx)
	for x := range processed {
		processed[x] = make([]bool, ny)
	}
	type growth struct{ x, y, top int }
	for {
		var round []growth
		for x := 0; x < nx; x++ {
			for y := 0; y < ny; y++ {
				if hasGround[x][y] || interior[x][y] || processed[x][y] {
					continue
				}
				count, top := 0, -1
				for _, d := range neighbors8 {
					ax, ay := x+d[0], y+d[1]
					if ax < 0 || ax >= nx || ay < 0 || ay >= ny {
						continue
					}
					if hasGround[ax][ay] {
						count++
						if height[ax][ay] > top {
							top = height[ax][ay]
						}
					}
				}
				if count >= p.Smoothing && top >= 0 {
					round = append(round, growth{x, y, top})
				}
			}
		}
		if len(round) == 0 {
			break
		}
		for _, gr := range round {
			processed[gr.x][gr.y] = true
			fillColumn(gr.x, gr.y, gr.top)
			height[gr.x][gr.y] = gr.top
			hasGround[gr.x][gr.y] = true
		}
	}

	// Pass 3: propagate the surface height into mask-class footprints
	// so buildings get a foundation too, without overwriting them.
	for {
		changed := false
		for x := 0; x < nx; x++ {
			for y := 0; y < ny; y++ {
				if !interior[x][y] || height[x][y] != 0 {
					continue
				}
				top := 0
				for _, d := range neighbors8 {
					ax, ay := x+d[0], y+d[1]
					if ax < 0 || ax >= nx || ay < 0 || ay >= ny {
						continue
					}
					if height[ax][ay] > top {
						top = height[ax][ay]
					}
				}
				if top > 0 {
					height[x][y] = top
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			if interior[x][y] && height[x][y] > 0 {
				fillColumn(x, y, height[x][y])
			}
		}
	}

	// Pass 4 (shell strategies): erode ground voxels whose six
	// neighbours are all ground. Border cells and pillar columns are
	// never eroded.
	if p.Strategy == StrategyShell || p.Strategy == StrategyShellWithPillars {
		pillar := func(x, y int) bool {
			if p.Strategy != StrategyShellWithPillars || p.PillarStep <= 0 {
				return false
			}
			return x%p.PillarStep < p.PillarWidth && y%p.PillarStep < p.PillarWidth
		}
		isGround := func(x, y, z int) bool {
			return x >= 0 && x < nx && y >= 0 && y < ny && z >= 0 && z < nz && dense[x][y][z] == p.Ground
		}
		var erode []Key
		for x := 1; x < nx-1; x++ {
			for y := 1; y < ny-1; y++ {
				if pillar(x, y) {
					continue
				}
				for z := 1; z < nz-1; z++ {
					if dense[x][y][z] != p.Ground {
						continue
					}
					if isGround(x-1, y, z) && isGround(x+1, y, z) &&
						isGround(x, y-1, z) && isGround(x, y+1, z) &&
						isGround(x, y, z-1) && isGround(x, y, z+1) {
						erode = append(erode, Key{x, y, z})
					}
				}
			}
		}
		for _, k := range erode {
			dense[k.X][k.Y][k.Z] = 0
		}
	}

	// Rebuild the arena: existing voxels survive where still occupied,
	// synthesized cells become fresh ground voxels.
	rebuilt := make(map[Key]*voxelgrid.Voxel, before)
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			for z := 0; z < nz; z++ {
				class := dense[x][y][z]
				if class == 0 {
					continue
				}
				k := Key{x + min.X, y + min.Y, z + min.Z}
				if v, ok := g.voxels[k]; ok && v.Class == class {
					rebuilt[k] = v
					continue
				}
				rebuilt[k] = &voxelgrid.Voxel{X: k.X, Y: k.Y, Z: k.Z, Class: class, Points: 1}
			}
		}
	}
	g.voxels = rebuilt

	return len(g.voxels) - before
}
