// Package config holds the pipeline build configuration. The schema is
// a flat JSON object with every field optional: values omitted from
// the file fall back to the documented defaults through the Get*
// accessors, so partial configs are safe and tests can run several
// configurations side by side without shared state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// BuildConfig is the root configuration for a model build. Pointer
// fields distinguish "absent" from zero values.
type BuildConfig struct {
	// Voxelization params
	CellSizeM     *float64 `json:"cell_size_m,omitempty"`
	VerticalRatio *float64 `json:"vertical_ratio,omitempty"`
	MinDensity    *int     `json:"min_density,omitempty"`

	// Classification params
	UnknownClass     *int  `json:"unknown_class,omitempty"`
	PropagateClasses []int `json:"propagate_classes,omitempty"`
	KeepClasses      []int `json:"keep_classes,omitempty"`
	GroundClass      *int  `json:"ground_class,omitempty"`
	MaskClass        *int  `json:"mask_class,omitempty"`
	WallClasses      []int `json:"wall_classes,omitempty"`
	RepairMaxIter    *int  `json:"repair_max_iter,omitempty"`

	// Consolidation params
	Consolidation *string `json:"consolidation,omitempty"` // none, shell, pillars, filled
	Smoothing     *int    `json:"smoothing,omitempty"`
	PillarStep    *int    `json:"pillar_step,omitempty"`
	PillarWidth   *int    `json:"pillar_width,omitempty"`
	MaxGap        *int    `json:"max_gap,omitempty"`

	// Brick catalog: (width, length) pairs. Must include 1x1 and be
	// rotation-closed; validated by the brick package at startup.
	Catalog [][2]int `json:"catalog,omitempty"`

	// Cost weights
	WeightOrientation *float64 `json:"weight_orientation,omitempty"`
	WeightSeam        *float64 `json:"weight_seam,omitempty"`
	WeightJunction    *float64 `json:"weight_junction,omitempty"`
	WeightSupport     *float64 `json:"weight_support,omitempty"`
	WeightBrickCount  *float64 `json:"weight_brick_count,omitempty"`

	// Solver params
	MaxSweeps     *int     `json:"max_sweeps,omitempty"`
	BudgetSeconds *float64 `json:"budget_seconds,omitempty"`
	Epsilon       *float64 `json:"epsilon,omitempty"`
	ComputeCost   *bool    `json:"compute_cost,omitempty"`
}

// EmptyBuildConfig returns a BuildConfig with all fields unset; every
// accessor then returns its default.
func EmptyBuildConfig() *BuildConfig {
	return &BuildConfig{}
}

// LoadBuildConfig loads a BuildConfig from a JSON file. The path must
// carry a .json extension and stay under the size cap; fields omitted
// from the file keep their defaults.
func LoadBuildConfig(path string) (*BuildConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyBuildConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks value ranges. Catalog structure (1x1 presence,
// rotation closure) is validated by the brick package, which owns that
// invariant.
func (c *BuildConfig) Validate() error {
	if c.CellSizeM != nil && *c.CellSizeM <= 0 {
		return fmt.Errorf("cell_size_m must be positive, got %f", *c.CellSizeM)
	}
	if c.VerticalRatio != nil && *c.VerticalRatio <= 0 {
		return fmt.Errorf("vertical_ratio must be positive, got %f", *c.VerticalRatio)
	}
	if c.MinDensity != nil && *c.MinDensity < 1 {
		return fmt.Errorf("min_density must be at least 1, got %d", *c.MinDensity)
	}
	if c.RepairMaxIter != nil && *c.RepairMaxIter < 0 {
		return fmt.Errorf("repair_max_iter must be non-negative, got %d", *c.RepairMaxIter)
	}
	if c.Consolidation != nil {
		switch *c.Consolidation {
		case "none", "shell", "pillars", "filled":
		default:
			return fmt.Errorf("unknown consolidation strategy %q (none, shell, pillars, filled)", *c.Consolidation)
		}
	}
	if c.MaxGap != nil && *c.MaxGap < 0 {
		return fmt.Errorf("max_gap must be non-negative, got %d", *c.MaxGap)
	}
	if c.MaxSweeps != nil && *c.MaxSweeps < 1 {
		return fmt.Errorf("max_sweeps must be at least 1, got %d", *c.MaxSweeps)
	}
	if c.BudgetSeconds != nil && *c.BudgetSeconds < 0 {
		return fmt.Errorf("budget_seconds must be non-negative, got %f", *c.BudgetSeconds)
	}
	if c.Epsilon != nil && *c.Epsilon < 0 {
		return fmt.Errorf("epsilon must be non-negative, got %f", *c.Epsilon)
	}
	for _, wl := range c.Catalog {
		if wl[0] < 1 || wl[1] < 1 {
			return fmt.Errorf("catalog footprint %dx%d has non-positive dimensions", wl[0], wl[1])
		}
	}
	return nil
}

// GetCellSizeM returns the horizontal voxel size in metres.
func (c *BuildConfig) GetCellSizeM() float64 {
	if c.CellSizeM == nil {
		return 1.0
	}
	return *c.CellSizeM
}

// GetVerticalRatio returns the layer height as a multiple of the cell
// size. The default matches LDraw brick geometry.
func (c *BuildConfig) GetVerticalRatio() float64 {
	if c.VerticalRatio == nil {
		return 1.2
	}
	return *c.VerticalRatio
}

// GetMinDensity returns the minimum points per occupied voxel.
func (c *BuildConfig) GetMinDensity() int {
	if c.MinDensity == nil {
		return 1
	}
	return *c.MinDensity
}

// GetUnknownClass returns the classification code treated as unknown.
func (c *BuildConfig) GetUnknownClass() int {
	if c.UnknownClass == nil {
		return 1
	}
	return *c.UnknownClass
}

// GetPropagateClasses returns the classes allowed to overwrite the
// unknown class during repair. Default: buildings only.
func (c *BuildConfig) GetPropagateClasses() []int {
	if c.PropagateClasses == nil {
		return []int{6}
	}
	return c.PropagateClasses
}

// GetKeepClasses returns the classes surviving semantic filtering.
func (c *BuildConfig) GetKeepClasses() []int {
	if c.KeepClasses == nil {
		return []int{1, 2, 3, 4, 5, 6}
	}
	return c.KeepClasses
}

// GetGroundClass returns the ground-anchor classification code.
func (c *BuildConfig) GetGroundClass() int {
	if c.GroundClass == nil {
		return 2
	}
	return *c.GroundClass
}

// GetMaskClass returns the class whose columns consolidation must not
// overwrite (buildings).
func (c *BuildConfig) GetMaskClass() int {
	if c.MaskClass == nil {
		return 6
	}
	return *c.MaskClass
}

// GetWallClasses returns the classes eligible for vertical hole
// filling.
func (c *BuildConfig) GetWallClasses() []int {
	if c.WallClasses == nil {
		return []int{6}
	}
	return c.WallClasses
}

// GetRepairMaxIter returns the classification repair pass cap.
func (c *BuildConfig) GetRepairMaxIter() int {
	if c.RepairMaxIter == nil {
		return 5
	}
	return *c.RepairMaxIter
}

// GetConsolidation returns the consolidation strategy name.
func (c *BuildConfig) GetConsolidation() string {
	if c.Consolidation == nil {
		return "pillars"
	}
	return *c.Consolidation
}

// GetSmoothing returns the neighbour count required before foundation
// growth claims a column.
func (c *BuildConfig) GetSmoothing() int {
	if c.Smoothing == nil {
		return 2
	}
	return *c.Smoothing
}

// GetPillarStep returns the pillar grid interval in cells.
func (c *BuildConfig) GetPillarStep() int {
	if c.PillarStep == nil {
		return 4
	}
	return *c.PillarStep
}

// GetPillarWidth returns the pillar side length in cells.
func (c *BuildConfig) GetPillarWidth() int {
	if c.PillarWidth == nil {
		return 2
	}
	return *c.PillarWidth
}

// GetMaxGap returns the largest vertical gap hole filling closes.
func (c *BuildConfig) GetMaxGap() int {
	if c.MaxGap == nil {
		return 3
	}
	return *c.MaxGap
}

// GetCatalog returns the configured footprints as (width, length)
// pairs, or nil to use the built-in default inventory.
func (c *BuildConfig) GetCatalog() [][2]int {
	return c.Catalog
}

// GetWeightOrientation returns the orientation-crossing penalty weight.
func (c *BuildConfig) GetWeightOrientation() float64 {
	if c.WeightOrientation == nil {
		return 1.0
	}
	return *c.WeightOrientation
}

// GetWeightSeam returns the aligned-seam penalty weight.
func (c *BuildConfig) GetWeightSeam() float64 {
	if c.WeightSeam == nil {
		return 1.0
	}
	return *c.WeightSeam
}

// GetWeightJunction returns the T-junction penalty weight.
func (c *BuildConfig) GetWeightJunction() float64 {
	if c.WeightJunction == nil {
		return 1.0
	}
	return *c.WeightJunction
}

// GetWeightSupport returns the unsupported-span penalty weight.
func (c *BuildConfig) GetWeightSupport() float64 {
	if c.WeightSupport == nil {
		return 1.0
	}
	return *c.WeightSupport
}

// GetWeightBrickCount returns the per-brick cost weight.
func (c *BuildConfig) GetWeightBrickCount() float64 {
	if c.WeightBrickCount == nil {
		return 0.1
	}
	return *c.WeightBrickCount
}

// GetMaxSweeps returns the solver sweep cap.
func (c *BuildConfig) GetMaxSweeps() int {
	if c.MaxSweeps == nil {
		return 8
	}
	return *c.MaxSweeps
}

// GetBudgetSeconds returns the solver wall-clock budget; zero disables
// the time limit.
func (c *BuildConfig) GetBudgetSeconds() float64 {
	if c.BudgetSeconds == nil {
		return 0
	}
	return *c.BudgetSeconds
}

// GetEpsilon returns the minimum accepted cost improvement.
func (c *BuildConfig) GetEpsilon() float64 {
	if c.Epsilon == nil {
		return 1e-9
	}
	return *c.Epsilon
}

// GetComputeCost reports whether cost scoring and refinement run.
func (c *BuildConfig) GetComputeCost() bool {
	if c.ComputeCost == nil {
		return true
	}
	return *c.ComputeCost
}
