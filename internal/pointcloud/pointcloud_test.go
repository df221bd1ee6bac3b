package pointcloud

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestComputeBounds(t *testing.T) {
	points := []Point{
		{X: 1, Y: -2, Z: 3},
		{X: -4, Y: 5, Z: 0},
		{X: 2, Y: 0, Z: -1},
	}
	b, ok := ComputeBounds(points)
	if !ok {
		t.Fatal("expected bounds for non-empty input")
	}
	want := Bounds{MinX: -4, MaxX: 2, MinY: -2, MaxY: 5, MinZ: -1, MaxZ: 3}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Errorf("bounds mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeBoundsEmpty(t *testing.T) {
	if _, ok := ComputeBounds(nil); ok {
		t.Error("expected ok=false for empty input")
	}
}

func TestSampleRectangle(t *testing.T) {
	points := []Point{
		{X: 0.5, Y: 0.5},
		{X: 1.5, Y: 0.5},
		{X: 2.5, Y: 0.5}, // outside: x >= 2
		{X: 0.5, Y: 3.5}, // outside: y >= 2
		{X: 0, Y: 0},     // inclusive lower edge
		{X: 2, Y: 0},     // exclusive upper edge
	}
	got := SampleRectangle(points, 0, 0, 2, 2, 0)
	if len(got) != 3 {
		t.Fatalf("expected 3 points inside, got %d", len(got))
	}
}

func TestSampleRectangleMaxPoints(t *testing.T) {
	points := []Point{{X: 0.1}, {X: 0.2}, {X: 0.3}}
	got := SampleRectangle(points, 0, 0, 1, 1, 2)
	if len(got) != 2 {
		t.Fatalf("expected cap at 2 points, got %d", len(got))
	}
}

func TestSampleRandomSquareReproducible(t *testing.T) {
	points := make([]Point, 0, 100)
	for i := 0; i < 100; i++ {
		points = append(points, Point{X: float64(i % 10), Y: float64(i / 10)})
	}

	a := SampleRandomSquare(points, 3, 0, 42)
	b := SampleRandomSquare(points, 3, 0, 42)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed should pick the same zone (-a +b):\n%s", diff)
	}
	if len(a) == 0 {
		t.Error("expected a non-empty sample")
	}
}

func TestClassHistogram(t *testing.T) {
	points := []Point{
		{Class: 6}, {Class: 2}, {Class: 6}, {Class: 6}, {Class: 2},
	}
	got := ClassHistogram(points)
	want := []ClassCount{{Class: 2, Count: 2}, {Class: 6, Count: 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("histogram mismatch (-want +got):\n%s", diff)
	}
}
