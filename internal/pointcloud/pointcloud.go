// Package pointcloud holds the raw classified sample type consumed by
// the voxelization stage, plus spatial samplers for carving test zones
// out of a full survey tile.
package pointcloud

import (
	"math/rand"
	"sort"
)

// Point is one classified LiDAR return in world coordinates (metres).
type Point struct {
	X     float64
	Y     float64
	Z     float64
	Class uint8
}

// Bounds is the axis-aligned extent of a sample set.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// ComputeBounds returns the extent of the given points. The second
// return is false for an empty slice.
func ComputeBounds(points []Point) (Bounds, bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b := Bounds{
		MinX: points[0].X, MaxX: points[0].X,
		MinY: points[0].Y, MaxY: points[0].Y,
		MinZ: points[0].Z, MaxZ: points[0].Z,
	}
	for _, p := range points[1:] {
		if p.X < b.MinX {
			b.MinX = p.X
		}
		if p.X > b.MaxX {
			b.MaxX = p.X
		}
		if p.Y < b.MinY {
			b.MinY = p.Y
		}
		if p.Y > b.MaxY {
			b.MaxY = p.Y
		}
		if p.Z < b.MinZ {
			b.MinZ = p.Z
		}
		if p.Z > b.MaxZ {
			b.MaxZ = p.Z
		}
	}
	return b, true
}

// SampleRectangle keeps the points falling inside the rectangle whose
// lower-left corner is (minX, minY) with the given side lengths,
// capped at maxPoints. Order of the surviving points is preserved.
func SampleRectangle(points []Point, minX, minY, lengthX, lengthY float64, maxPoints int) []Point {
	var out []Point
	for _, p := range points {
		if p.X < minX || p.X >= minX+lengthX {
			continue
		}
		if p.Y < minY || p.Y >= minY+lengthY {
			continue
		}
		out = append(out, p)
		if maxPoints > 0 && len(out) >= maxPoints {
			break
		}
	}
	return out
}

// SampleRandomSquare picks a random square zone of the given side
// length inside the point set's extent and returns the points inside
// it, capped at maxPoints. The zone choice is driven by the seed so
// repeated runs are reproducible.
func SampleRandomSquare(points []Point, side float64, maxPoints int, seed int64) []Point {
	b, ok := ComputeBounds(points)
	if !ok {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))
	spanX := b.MaxX - b.MinX - side
	spanY := b.MaxY - b.MinY - side
	originX := b.MinX
	originY := b.MinY
	if spanX > 0 {
		originX += rng.Float64() * spanX
	}
	if spanY > 0 {
		originY += rng.Float64() * spanY
	}

	return SampleRectangle(points, originX, originY, side, side, maxPoints)
}

// ClassHistogram counts points per classification code, returned as a
// sorted slice so log output is stable.
func ClassHistogram(points []Point) []ClassCount {
	counts := make(map[uint8]int)
	for _, p := range points {
		counts[p.Class]++
	}
	out := make([]ClassCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, ClassCount{Class: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Class < out[j].Class })
	return out
}

// ClassCount is one entry of a classification histogram.
type ClassCount struct {
	Class uint8
	Count int
}
