// Package report produces the build summary artifacts: a text bill of
// materials, an HTML inventory chart and per-layer occupancy plots.
package report

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/DanQue69/LiDAR-2-LEGO/internal/brick"
	"github.com/DanQue69/LiDAR-2-LEGO/internal/ldraw"
)

// InventoryLine aggregates one footprint across the whole layout.
type InventoryLine struct {
	Footprint brick.Footprint
	Part      string
	Count     int
}

// Inventory counts bricks per normalized footprint. Lines come out
// largest footprint first.
func Inventory(l *brick.Layout) []InventoryLine {
	counts := map[brick.Footprint]int{}
	for _, b := range l.Bricks() {
		counts[normalize(b.Footprint())]++
	}

	lines := make([]InventoryLine, 0, len(counts))
	for fp, n := range counts {
		part, ok := ldraw.Parts[fp]
		if !ok {
			part = "?"
		}
		lines = append(lines, InventoryLine{Footprint: fp, Part: part, Count: n})
	}
	sort.Slice(lines, func(i, j int) bool {
		a, b := lines[i].Footprint, lines[j].Footprint
		if a.Area() != b.Area() {
			return a.Area() > b.Area()
		}
		if a.Length != b.Length {
			return a.Length > b.Length
		}
		return a.Width > b.Width
	})
	return lines
}

func normalize(fp brick.Footprint) brick.Footprint {
	if fp.Width > fp.Length {
		return brick.Footprint{Width: fp.Length, Length: fp.Width}
	}
	return fp
}

// Summary carries the headline numbers of a build.
type Summary struct {
	Bricks     int
	Cells      int
	Layers     int
	Reduction  float64 // fraction of unit bricks saved by merging
	MeanArea   float64
	StdDevArea float64
}

// Summarize computes the layout summary. Reduction compares the brick
// count against the one-brick-per-cell baseline.
func Summarize(l *brick.Layout) Summary {
	s := Summary{
		Bricks: l.NumBricks(),
		Cells:  l.NumCells(),
		Layers: len(l.ZIndexes()),
	}
	if s.Cells > 0 {
		s.Reduction = 1 - float64(s.Bricks)/float64(s.Cells)
	}

	areas := make([]float64, 0, s.Bricks)
	for _, b := range l.Bricks() {
		areas = append(areas, float64(b.Area()))
	}
	if len(areas) > 0 {
		s.MeanArea = stat.Mean(areas, nil)
		s.StdDevArea = stat.StdDev(areas, nil)
	}
	return s
}

// WriteBOM prints the bill of materials as an aligned text table.
func WriteBOM(w io.Writer, l *brick.Layout) error {
	lines := Inventory(l)
	sum := Summarize(l)

	if _, err := fmt.Fprintf(w, "%-8s %-10s %8s\n", "BRICK", "PART", "COUNT"); err != nil {
		return err
	}
	for _, ln := range lines {
		if _, err := fmt.Fprintf(w, "%-8s %-10s %8d\n", ln.Footprint.String(), ln.Part, ln.Count); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\ntotal bricks: %d  cells: %d  layers: %d  merge reduction: %.1f%%\nmean area: %.2f studs (stddev %.2f)\n",
		sum.Bricks, sum.Cells, sum.Layers, sum.Reduction*100, sum.MeanArea, sum.StdDevArea)
	return err
}
