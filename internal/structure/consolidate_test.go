package structure

import (
	"testing"

	"github.com/DanQue69/LiDAR-2-LEGO/internal/voxelgrid"
)

func TestParseStrategy(t *testing.T) {
	cases := map[string]Strategy{
		"none":    StrategyNone,
		"shell":   StrategyShell,
		"pillars": StrategyShellWithPillars,
		"filled":  StrategyFilled,
	}
	for name, want := range cases {
		got, err := ParseStrategy(name)
		if err != nil {
			t.Errorf("ParseStrategy(%q) failed: %v", name, err)
		}
		if got != want {
			t.Errorf("ParseStrategy(%q) = %v, want %v", name, got, want)
		}
	}

	if _, err := ParseStrategy("solid"); err == nil {
		t.Error("expected an error for an unknown strategy name")
	}
}

func TestConsolidateNoneIsNoOp(t *testing.T) {
	g := FromGrid(gridOf(
		[4]int{0, 0, 3, 2},
	))
	delta := g.Consolidate(ConsolidateParams{Strategy: StrategyNone, Ground: voxelgrid.ClassGround})
	if delta != 0 || g.Len() != 1 {
		t.Errorf("none strategy must not change the grid, delta=%d len=%d", delta, g.Len())
	}
}

func TestConsolidateFilledSolidifiesColumns(t *testing.T) {
	// A ground surface at z=2 gets filled down to the base layer.
	g := FromGrid(gridOf(
		[4]int{0, 0, 0, 2},
		[4]int{0, 0, 2, 2},
		[4]int{1, 0, 2, 2},
	))

	delta := g.Consolidate(ConsolidateParams{
		Strategy: StrategyFilled,
		Ground:   voxelgrid.ClassGround,
		Mask:     voxelgrid.ClassBuilding,
	})
	if delta != 3 {
		t.Errorf("expected 3 synthesized voxels, got %+d", delta)
	}
	for x := 0; x <= 1; x++ {
		for z := 0; z <= 2; z++ {
			v := g.At(x, 0, z)
			if v == nil || v.Class != voxelgrid.ClassGround {
				t.Errorf("column (%d,0) must be solid ground at z=%d, got %+v", x, z, v)
			}
		}
	}
}

func TestConsolidateFillsUnderBuildings(t *testing.T) {
	// A building column adjacent to terrain gets a foundation beneath
	// it without the building voxel being overwritten.
	g := FromGrid(gridOf(
		[4]int{0, 0, 0, 2},
		[4]int{0, 0, 2, 2},
		[4]int{1, 0, 4, 6},
	))

	g.Consolidate(ConsolidateParams{
		Strategy: StrategyFilled,
		Ground:   voxelgrid.ClassGround,
		Mask:     voxelgrid.ClassBuilding,
	})

	if v := g.At(1, 0, 4); v == nil || v.Class != voxelgrid.ClassBuilding {
		t.Fatalf("building voxel must survive, got %+v", v)
	}
	for z := 0; z <= 2; z++ {
		v := g.At(1, 0, z)
		if v == nil || v.Class != voxelgrid.ClassGround {
			t.Errorf("expected foundation under the building at z=%d, got %+v", z, v)
		}
	}
	if g.At(1, 0, 3) != nil {
		t.Error("the gap between foundation and building must stay open")
	}
}

func TestConsolidateShellErodesInterior(t *testing.T) {
	// A 5x5 ground surface over a base voxel solidifies into a cube,
	// which keeps its shell and loses the fully-enclosed core.
	voxels := [][4]int{{0, 0, 0, 2}}
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			voxels = append(voxels, [4]int{x, y, 4, 2})
		}
	}
	g := FromGrid(gridOf(voxels...))

	g.Consolidate(ConsolidateParams{
		Strategy: StrategyShell,
		Ground:   voxelgrid.ClassGround,
		Mask:     voxelgrid.ClassBuilding,
	})

	// 5x5x5 minus the 3x3x3 interior.
	want := 125 - 27
	if g.Len() != want {
		t.Errorf("expected %d voxels after erosion, got %d", want, g.Len())
	}
	if g.At(2, 2, 2) != nil {
		t.Error("core voxel must be eroded")
	}
	if g.At(0, 0, 0) == nil || g.At(4, 4, 4) == nil {
		t.Error("shell voxels must survive")
	}
}

func TestConsolidatePillarsKeepInterior(t *testing.T) {
	voxels := [][4]int{{0, 0, 0, 2}}
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			voxels = append(voxels, [4]int{x, y, 4, 2})
		}
	}
	g := FromGrid(gridOf(voxels...))

	g.Consolidate(ConsolidateParams{
		Strategy:    StrategyShellWithPillars,
		Ground:      voxelgrid.ClassGround,
		Mask:        voxelgrid.ClassBuilding,
		PillarStep:  2,
		PillarWidth: 1,
	})

	// Column (2,2) is on the pillar lattice and must stay solid.
	for z := 0; z <= 4; z++ {
		if g.At(2, 2, z) == nil {
			t.Errorf("pillar voxel at z=%d must survive erosion", z)
		}
	}
	// Column (3,3) is off the lattice; its enclosed voxels erode.
	if g.At(3, 3, 2) != nil {
		t.Error("non-pillar interior voxel must be eroded")
	}
}

func TestConsolidateGrowsFootprint(t *testing.T) {
	// A bare column flanked by two ground columns joins the foundation
	// when Smoothing is 2.
	g := FromGrid(gridOf(
		[4]int{0, 0, 1, 2},
		[4]int{2, 0, 1, 2},
	))

	g.Consolidate(ConsolidateParams{
		Strategy:  StrategyFilled,
		Ground:    voxelgrid.ClassGround,
		Mask:      voxelgrid.ClassBuilding,
		Smoothing: 2,
	})

	if g.At(1, 0, 1) == nil {
		t.Error("flanked column should have been claimed by footprint growth")
	}
}
