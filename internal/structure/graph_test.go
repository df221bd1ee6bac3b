package structure

import (
	"errors"
	"testing"

	"github.com/DanQue69/LiDAR-2-LEGO/internal/voxelgrid"
)

// gridOf builds a grid from (x, y, z, class) tuples.
func gridOf(voxels ...[4]int) *voxelgrid.Grid {
	g := voxelgrid.NewGrid()
	for _, v := range voxels {
		g.EnsureLayer(v[2]).Put(&voxelgrid.Voxel{
			X: v[0], Y: v[1], Z: v[2], Class: voxelgrid.Class(v[3]), Points: 1,
		})
	}
	return g
}

func repairParams() RepairParams {
	return RepairParams{
		Unknown:   voxelgrid.ClassUnclassified,
		Propagate: []voxelgrid.Class{voxelgrid.ClassBuilding},
		MaxIter:   5,
	}
}

func TestRepairAdoptsNeighbourClass(t *testing.T) {
	g := FromGrid(gridOf(
		[4]int{0, 0, 0, 6},
		[4]int{1, 0, 0, 1},
		[4]int{2, 0, 0, 6},
	))

	relabelled, converged := g.RepairClassification(repairParams())
	if relabelled != 1 {
		t.Errorf("expected 1 relabelled voxel, got %d", relabelled)
	}
	if !converged {
		t.Error("expected convergence")
	}
	if got := g.At(1, 0, 0).Class; got != voxelgrid.ClassBuilding {
		t.Errorf("expected class %d, got %d", voxelgrid.ClassBuilding, got)
	}
}

func TestRepairPropagatesThroughChains(t *testing.T) {
	// A run of unknowns next to one building voxel fills in over
	// successive passes.
	g := FromGrid(gridOf(
		[4]int{0, 0, 0, 6},
		[4]int{1, 0, 0, 1},
		[4]int{2, 0, 0, 1},
		[4]int{3, 0, 0, 1},
	))

	relabelled, converged := g.RepairClassification(repairParams())
	if relabelled != 3 {
		t.Errorf("expected 3 relabelled voxels, got %d", relabelled)
	}
	if !converged {
		t.Error("expected convergence within the pass cap")
	}
	for x := 1; x <= 3; x++ {
		if got := g.At(x, 0, 0).Class; got != voxelgrid.ClassBuilding {
			t.Errorf("voxel x=%d: expected class %d, got %d", x, voxelgrid.ClassBuilding, got)
		}
	}
}

func TestRepairIsolatedUnknownStaysUnknown(t *testing.T) {
	g := FromGrid(gridOf([4]int{0, 0, 0, 1}))

	relabelled, converged := g.RepairClassification(repairParams())
	if relabelled != 0 {
		t.Errorf("expected 0 relabelled voxels, got %d", relabelled)
	}
	if !converged {
		t.Error("a pass that changes nothing is a fixed point")
	}
	if got := g.At(0, 0, 0).Class; got != voxelgrid.ClassUnclassified {
		t.Errorf("isolated unknown must keep its class, got %d", got)
	}
}

func TestRepairIsIdempotent(t *testing.T) {
	g := FromGrid(gridOf(
		[4]int{0, 0, 0, 6},
		[4]int{1, 0, 0, 1},
	))

	first, _ := g.RepairClassification(repairParams())
	if first != 1 {
		t.Fatalf("expected 1 relabelled voxel on the first run, got %d", first)
	}
	second, converged := g.RepairClassification(repairParams())
	if second != 0 || !converged {
		t.Errorf("second run must be a no-op, got relabelled=%d converged=%v", second, converged)
	}
}

func TestRepairIgnoresNonPropagatingNeighbours(t *testing.T) {
	// Ground is not in the propagate set, so the unknown stays.
	g := FromGrid(gridOf(
		[4]int{0, 0, 0, 2},
		[4]int{1, 0, 0, 1},
	))

	relabelled, _ := g.RepairClassification(repairParams())
	if relabelled != 0 {
		t.Errorf("expected 0 relabelled voxels, got %d", relabelled)
	}
	if got := g.At(1, 0, 0).Class; got != voxelgrid.ClassUnclassified {
		t.Errorf("unknown next to a non-propagating class must stay, got %d", got)
	}
}

func TestFilterClasses(t *testing.T) {
	g := FromGrid(gridOf(
		[4]int{0, 0, 0, 2},
		[4]int{1, 0, 0, 6},
		[4]int{2, 0, 0, 9},
		[4]int{3, 0, 0, 64},
	))

	removed := g.FilterClasses([]voxelgrid.Class{voxelgrid.ClassGround, voxelgrid.ClassBuilding})
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	if g.Len() != 2 {
		t.Errorf("expected 2 voxels left, got %d", g.Len())
	}
	if g.At(2, 0, 0) != nil || g.At(3, 0, 0) != nil {
		t.Error("filtered voxels must be gone")
	}
}

func TestPruneToAnchorKeepsConnected(t *testing.T) {
	// A ground voxel with a column above it, plus a floating voxel.
	g := FromGrid(gridOf(
		[4]int{0, 0, 0, 2},
		[4]int{0, 0, 1, 6},
		[4]int{0, 0, 2, 6},
		[4]int{5, 5, 5, 6},
	))

	removed, err := g.PruneToAnchor(voxelgrid.ClassGround)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed voxel, got %d", removed)
	}
	if g.At(5, 5, 5) != nil {
		t.Error("floating voxel must be pruned")
	}
	for z := 0; z <= 2; z++ {
		if g.At(0, 0, z) == nil {
			t.Errorf("connected voxel at z=%d must survive", z)
		}
	}
}

func TestPruneToAnchorDiagonalNotConnected(t *testing.T) {
	// Diagonal contact is not 6-connected adjacency.
	g := FromGrid(gridOf(
		[4]int{0, 0, 0, 2},
		[4]int{1, 1, 0, 6},
	))

	removed, err := g.PruneToAnchor(voxelgrid.ClassGround)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("diagonal voxel must be pruned, removed=%d", removed)
	}
}

func TestPruneToAnchorNoAnchor(t *testing.T) {
	g := FromGrid(gridOf([4]int{0, 0, 0, 6}))

	_, err := g.PruneToAnchor(voxelgrid.ClassGround)
	if err == nil {
		t.Fatal("expected an error when no anchor voxel exists")
	}
	if !errors.Is(err, ErrNoAnchor) {
		t.Errorf("expected ErrNoAnchor, got %v", err)
	}
	if g.Len() != 1 {
		t.Error("a failed prune must not mutate the arena")
	}
}

func TestFillVerticalGaps(t *testing.T) {
	g := FromGrid(gridOf(
		[4]int{0, 0, 0, 6},
		[4]int{0, 0, 2, 6}, // gap of 1 at z=1
		[4]int{5, 0, 0, 6},
		[4]int{5, 0, 3, 6}, // gap of 2 at z=1,2
	))

	added := g.FillVerticalGaps(FillParams{
		WallClasses: []voxelgrid.Class{voxelgrid.ClassBuilding},
		MaxGap:      1,
	})
	if added != 1 {
		t.Errorf("expected 1 added voxel, got %d", added)
	}
	if g.At(0, 0, 1) == nil {
		t.Error("1-layer gap must be filled")
	}
	if g.At(5, 0, 1) != nil || g.At(5, 0, 2) != nil {
		t.Error("gap wider than MaxGap must stay open")
	}
}

func TestFillVerticalGapsUsesUpperClass(t *testing.T) {
	g := FromGrid(gridOf(
		[4]int{0, 0, 0, 6},
		[4]int{0, 0, 2, 67},
	))

	added := g.FillVerticalGaps(FillParams{
		WallClasses: []voxelgrid.Class{voxelgrid.ClassBuilding, voxelgrid.ClassMiscBuilt},
		MaxGap:      2,
	})
	if added != 1 {
		t.Fatalf("expected 1 added voxel, got %d", added)
	}
	if got := g.At(0, 0, 1).Class; got != voxelgrid.ClassMiscBuilt {
		t.Errorf("filled voxel must take the upper voxel's class, got %d", got)
	}
}

func TestFillVerticalGapsIgnoresOtherClasses(t *testing.T) {
	g := FromGrid(gridOf(
		[4]int{0, 0, 0, 3},
		[4]int{0, 0, 2, 3},
	))

	added := g.FillVerticalGaps(FillParams{
		WallClasses: []voxelgrid.Class{voxelgrid.ClassBuilding},
		MaxGap:      3,
	})
	if added != 0 {
		t.Errorf("vegetation columns must not be filled, added=%d", added)
	}
}

func TestToGridRoundTrip(t *testing.T) {
	src := gridOf(
		[4]int{0, 0, 0, 2},
		[4]int{1, 0, 0, 6},
		[4]int{0, 0, 1, 6},
	)
	out := FromGrid(src).ToGrid()

	if out.NumVoxels() != 3 {
		t.Fatalf("expected 3 voxels, got %d", out.NumVoxels())
	}
	if v := out.At(1, 0, 0); v == nil || v.Class != voxelgrid.ClassBuilding {
		t.Errorf("voxel (1,0,0) lost in round trip: %+v", v)
	}
}
