package report

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/DanQue69/LiDAR-2-LEGO/internal/voxelgrid"
)

// layerGrid adapts one voxel layer to plotter.GridXYZ. Z values are
// the classification codes so the palette separates classes.
type layerGrid struct {
	layer      *voxelgrid.Layer
	minX, minY int
	nx, ny     int
}

func newLayerGrid(l *voxelgrid.Layer) *layerGrid {
	minX, minY := 0, 0
	maxX, maxY := 0, 0
	first := true
	for _, v := range l.Voxels() {
		if first {
			minX, maxX = v.X, v.X
			minY, maxY = v.Y, v.Y
			first = false
			continue
		}
		if v.X < minX {
			minX = v.X
		}
		if v.X > maxX {
			maxX = v.X
		}
		if v.Y < minY {
			minY = v.Y
		}
		if v.Y > maxY {
			maxY = v.Y
		}
	}
	return &layerGrid{layer: l, minX: minX, minY: minY, nx: maxX - minX + 1, ny: maxY - minY + 1}
}

func (g *layerGrid) Dims() (c, r int) { return g.nx, g.ny }
func (g *layerGrid) X(c int) float64  { return float64(g.minX + c) }
func (g *layerGrid) Y(r int) float64  { return float64(g.minY + r) }

func (g *layerGrid) Z(c, r int) float64 {
	v := g.layer.At(g.minX+c, g.minY+r)
	if v == nil {
		return 0
	}
	return float64(v.Class)
}

// SaveLayerPlots writes one occupancy heatmap PNG per layer into
// outputDir, named layer_<z>.png.
func SaveLayerPlots(g *voxelgrid.Grid, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	for _, z := range g.ZIndexes() {
		layer := g.Layer(z)
		if layer == nil || layer.Len() == 0 {
			continue
		}

		p := plot.New()
		p.Title.Text = fmt.Sprintf("layer %d (%d voxels)", z, layer.Len())
		p.X.Label.Text = "x (cells)"
		p.Y.Label.Text = "y (cells)"

		hm := plotter.NewHeatMap(newLayerGrid(layer), palette.Heat(16, 1))
		p.Add(hm)

		file := filepath.Join(outputDir, fmt.Sprintf("layer_%03d.png", z))
		if err := p.Save(8*vg.Inch, 8*vg.Inch, file); err != nil {
			return fmt.Errorf("failed to save %s: %w", file, err)
		}
	}
	return nil
}
