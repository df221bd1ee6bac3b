package units

import "testing"

func TestGridToLDU(t *testing.T) {
	if got := GridToLDU(0); got != 0 {
		t.Errorf("GridToLDU(0) = %v", got)
	}
	if got := GridToLDU(3); got != 60 {
		t.Errorf("GridToLDU(3) = %v, want 60", got)
	}
}

func TestLayerToLDUPointsDown(t *testing.T) {
	if got := LayerToLDU(2); got != -48 {
		t.Errorf("LayerToLDU(2) = %v, want -48", got)
	}
}

func TestRoundTrip(t *testing.T) {
	for i := -5; i <= 5; i++ {
		if got := LDUToGrid(GridToLDU(i)); got != i {
			t.Errorf("grid round trip %d -> %d", i, got)
		}
		if got := LDUToLayer(LayerToLDU(i)); got != i {
			t.Errorf("layer round trip %d -> %d", i, got)
		}
	}
}

func TestLDUToGridRounds(t *testing.T) {
	if got := LDUToGrid(29.9); got != 1 {
		t.Errorf("LDUToGrid(29.9) = %d, want 1", got)
	}
	if got := LDUToGrid(30.1); got != 2 {
		t.Errorf("LDUToGrid(30.1) = %d, want 2", got)
	}
	if got := LDUToGrid(-29.9); got != -1 {
		t.Errorf("LDUToGrid(-29.9) = %d, want -1", got)
	}
}

func TestRatios(t *testing.T) {
	if LDrawRatio != 1.2 {
		t.Errorf("LDrawRatio = %v, want 1.2", LDrawRatio)
	}
	if LegoRatio <= 1.66 || LegoRatio >= 1.67 {
		t.Errorf("LegoRatio = %v, want 5/3", LegoRatio)
	}
}
