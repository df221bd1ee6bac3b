package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/DanQue69/LiDAR-2-LEGO/internal/brick"
	"github.com/DanQue69/LiDAR-2-LEGO/internal/config"
	"github.com/DanQue69/LiDAR-2-LEGO/internal/cost"
	"github.com/DanQue69/LiDAR-2-LEGO/internal/layoutdb"
	"github.com/DanQue69/LiDAR-2-LEGO/internal/ldraw"
	"github.com/DanQue69/LiDAR-2-LEGO/internal/pointcloud"
	"github.com/DanQue69/LiDAR-2-LEGO/internal/report"
	"github.com/DanQue69/LiDAR-2-LEGO/internal/solver"
	"github.com/DanQue69/LiDAR-2-LEGO/internal/structure"
	"github.com/DanQue69/LiDAR-2-LEGO/internal/version"
	"github.com/DanQue69/LiDAR-2-LEGO/internal/voxelgrid"
)

var (
	inputFile    = flag.String("input", "", "Path to the input LAS point cloud (required)")
	configFile   = flag.String("config", "", "Path to a JSON build configuration")
	outputFile   = flag.String("out", "model.ldr", "Path to the output LDraw model")
	stagesDir    = flag.String("stages", "", "Directory for intermediate .ldr exports after each pipeline stage")
	reportDir    = flag.String("report-dir", "", "Directory for the inventory chart and layer plots")
	dbFile       = flag.String("db", "", "Path to a SQLite database for run persistence")
	mono         = flag.Bool("mono", false, "Export every brick in the default color instead of per-class colors")
	sampleRect   = flag.String("sample-rect", "", "Crop to a rectangle: minX,minY,lengthX,lengthY (metres)")
	sampleSquare = flag.Float64("sample-square", 0, "Crop to a random square of this side length (metres)")
	maxPoints    = flag.Int("max-points", 0, "Cap the number of points kept after cropping (0 = no cap)")
	seed         = flag.Int64("seed", 0, "Seed for the random square sampler (0 = time-based)")
	showVersion  = flag.Bool("version", false, "Print version information and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("lidar2lego %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *inputFile == "" {
		flag.Usage()
		log.Fatal("missing required -input flag")
	}

	cfg := config.EmptyBuildConfig()
	if *configFile != "" {
		loaded, err := config.LoadBuildConfig(*configFile)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.BuildConfig) error {
	start := time.Now()

	points, header, err := pointcloud.ReadLASFile(*inputFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", *inputFile, err)
	}
	log.Printf("read %d points (LAS %d.%d, format %d)", len(points), header.VersionMajor, header.VersionMinor, header.PointFormat)

	points, err = applySampling(points)
	if err != nil {
		return err
	}

	grid := voxelgrid.Build(points, voxelgrid.Params{
		CellSizeM:     cfg.GetCellSizeM(),
		VerticalRatio: cfg.GetVerticalRatio(),
		MinDensity:    cfg.GetMinDensity(),
		UnknownClass:  voxelgrid.Class(cfg.GetUnknownClass()),
	})
	log.Printf("voxelized %d points into %d voxels over %d layers", len(points), grid.NumVoxels(), grid.NumLayers())

	graph := structure.FromGrid(grid)
	if err := exportStage(graph, "01_voxelized"); err != nil {
		return err
	}

	relabelled, converged := graph.RepairClassification(structure.RepairParams{
		Unknown:   voxelgrid.Class(cfg.GetUnknownClass()),
		Propagate: toClasses(cfg.GetPropagateClasses()),
		MaxIter:   cfg.GetRepairMaxIter(),
	})
	log.Printf("repair relabelled %d voxels (converged=%v)", relabelled, converged)

	dropped := graph.FilterClasses(toClasses(cfg.GetKeepClasses()))
	log.Printf("class filter dropped %d voxels", dropped)
	if err := exportStage(graph, "02_filtered"); err != nil {
		return err
	}

	removed, err := graph.PruneToAnchor(voxelgrid.Class(cfg.GetGroundClass()))
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	log.Printf("prune removed %d floating voxels", removed)

	strategy, err := structure.ParseStrategy(cfg.GetConsolidation())
	if err != nil {
		return err
	}
	delta := graph.Consolidate(structure.ConsolidateParams{
		Strategy:    strategy,
		Ground:      voxelgrid.Class(cfg.GetGroundClass()),
		Mask:        voxelgrid.Class(cfg.GetMaskClass()),
		Smoothing:   cfg.GetSmoothing(),
		PillarStep:  cfg.GetPillarStep(),
		PillarWidth: cfg.GetPillarWidth(),
	})
	log.Printf("consolidation (%s) changed voxel count by %+d", strategy, delta)

	added := graph.FillVerticalGaps(structure.FillParams{
		WallClasses: toClasses(cfg.GetWallClasses()),
		MaxGap:      cfg.GetMaxGap(),
	})
	log.Printf("vertical fill added %d voxels", added)
	if err := exportStage(graph, "03_consolidated"); err != nil {
		return err
	}

	grid = graph.ToGrid()

	catalog, err := buildCatalog(cfg)
	if err != nil {
		return err
	}

	engine := brick.NewMergeEngine(catalog)
	eval := cost.NewEvaluator(cost.Weights{
		Orientation: cfg.GetWeightOrientation(),
		Seam:        cfg.GetWeightSeam(),
		Junction:    cfg.GetWeightJunction(),
		Support:     cfg.GetWeightSupport(),
		BrickCount:  cfg.GetWeightBrickCount(),
	})
	s := solver.New(engine, eval, solver.Config{
		MaxSweeps:   cfg.GetMaxSweeps(),
		Budget:      time.Duration(cfg.GetBudgetSeconds() * float64(time.Second)),
		Epsilon:     cfg.GetEpsilon(),
		ComputeCost: cfg.GetComputeCost(),
	})

	result := s.Solve(grid)
	log.Printf("solver finished: %d bricks, cost %.3f, state %s after %d sweeps (%d improvements)",
		result.Layout.NumBricks(), result.Cost.Total, result.State, result.Sweeps, result.Accepted)

	if err := writeModel(result.Layout); err != nil {
		return err
	}

	if err := report.WriteBOM(os.Stdout, result.Layout); err != nil {
		return err
	}

	if *reportDir != "" {
		if err := writeReports(grid, result.Layout); err != nil {
			return err
		}
	}

	if *dbFile != "" {
		if err := persistRun(cfg, &result, len(points), grid.NumVoxels()); err != nil {
			return err
		}
	}

	log.Printf("done in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

// applySampling crops the cloud per the -sample-rect / -sample-square
// flags. Both at once is rejected.
func applySampling(points []pointcloud.Point) ([]pointcloud.Point, error) {
	if *sampleRect != "" && *sampleSquare > 0 {
		return nil, fmt.Errorf("-sample-rect and -sample-square are mutually exclusive")
	}

	switch {
	case *sampleRect != "":
		parts := strings.Split(*sampleRect, ",")
		if len(parts) != 4 {
			return nil, fmt.Errorf("-sample-rect wants minX,minY,lengthX,lengthY, got %q", *sampleRect)
		}
		vals := make([]float64, 4)
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("bad -sample-rect value %q: %w", p, err)
			}
			vals[i] = v
		}
		points = pointcloud.SampleRectangle(points, vals[0], vals[1], vals[2], vals[3], *maxPoints)
		log.Printf("rectangle crop kept %d points", len(points))

	case *sampleSquare > 0:
		s := *seed
		if s == 0 {
			s = time.Now().UnixNano()
		}
		points = pointcloud.SampleRandomSquare(points, *sampleSquare, *maxPoints, s)
		log.Printf("random square crop kept %d points (seed %d)", len(points), s)

	case *maxPoints > 0 && len(points) > *maxPoints:
		points = points[:*maxPoints]
		log.Printf("truncated cloud to %d points", len(points))
	}

	return points, nil
}

// exportStage writes the current voxel set as unit bricks when a
// stages directory was requested.
func exportStage(g *structure.Graph, name string) error {
	if *stagesDir == "" {
		return nil
	}
	if err := os.MkdirAll(*stagesDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(*stagesDir, name+".ldr")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := ldraw.NewWriter(*mono)
	if err := w.WriteGrid(f, g.ToGrid(), name); err != nil {
		return fmt.Errorf("failed to export stage %s: %w", name, err)
	}
	log.Printf("wrote stage export %s", path)
	return nil
}

func buildCatalog(cfg *config.BuildConfig) (*brick.Catalog, error) {
	sizes := brick.DefaultFootprints()
	if raw := cfg.GetCatalog(); raw != nil {
		sizes = make([]brick.Footprint, 0, len(raw))
		for _, wl := range raw {
			sizes = append(sizes, brick.Footprint{Width: wl[0], Length: wl[1]})
		}
	}
	return brick.NewCatalog(sizes)
}

func writeModel(l *brick.Layout) error {
	f, err := os.Create(*outputFile)
	if err != nil {
		return err
	}
	defer f.Close()

	w := ldraw.NewWriter(*mono)
	name := strings.TrimSuffix(filepath.Base(*outputFile), filepath.Ext(*outputFile))
	if err := w.WriteLayout(f, l, name); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	log.Printf("wrote %d bricks to %s", l.NumBricks(), *outputFile)
	return nil
}

func writeReports(grid *voxelgrid.Grid, l *brick.Layout) error {
	if err := os.MkdirAll(*reportDir, 0755); err != nil {
		return err
	}

	chartPath := filepath.Join(*reportDir, "inventory.html")
	f, err := os.Create(chartPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := report.RenderInventoryChart(f, l, "Brick Inventory"); err != nil {
		return fmt.Errorf("failed to render inventory chart: %w", err)
	}
	log.Printf("wrote inventory chart %s", chartPath)

	plotsDir := filepath.Join(*reportDir, "layers")
	if err := report.SaveLayerPlots(grid, plotsDir); err != nil {
		return err
	}
	log.Printf("wrote layer plots to %s", plotsDir)
	return nil
}

func persistRun(cfg *config.BuildConfig, result *solver.Result, pointCount, voxelCount int) error {
	db, err := layoutdb.NewLayoutDB(*dbFile)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	paramsJSON, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	runID, err := db.SaveResult(result, *inputFile, string(paramsJSON), pointCount, voxelCount)
	if err != nil {
		return fmt.Errorf("failed to persist run: %w", err)
	}
	log.Printf("persisted run %d to %s", runID, *dbFile)
	return nil
}

func toClasses(codes []int) []voxelgrid.Class {
	out := make([]voxelgrid.Class, len(codes))
	for i, c := range codes {
		out[i] = voxelgrid.Class(c)
	}
	return out
}
