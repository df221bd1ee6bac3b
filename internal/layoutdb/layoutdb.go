// Package layoutdb persists build runs and their brick layouts to a
// local sqlite database so successive runs over the same cloud can be
// compared.
package layoutdb

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"time"

	"github.com/DanQue69/LiDAR-2-LEGO/internal/brick"
	"github.com/DanQue69/LiDAR-2-LEGO/internal/cost"
	"github.com/DanQue69/LiDAR-2-LEGO/internal/solver"
	"github.com/DanQue69/LiDAR-2-LEGO/internal/voxelgrid"

	_ "modernc.org/sqlite"
)

type LayoutDB struct {
	*sql.DB
}

// schema.sql creates the runs, bricks and layer_costs tables.
//
//go:embed schema.sql
var schemaSQL string

func NewLayoutDB(path string) (*LayoutDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(schemaSQL)
	if err != nil {
		return nil, err
	}

	log.Println("initialized layout database schema")

	return &LayoutDB{db}, nil
}

// RunRecord describes one pipeline execution.
type RunRecord struct {
	RunID      int64
	Started    time.Time
	SourcePath string
	ParamsJSON string
	PointCount int
	VoxelCount int
	BrickCount int
	TotalCost  float64
	State      string
	Sweeps     int
}

// InsertRun persists a run header and returns the new run_id.
func (ldb *LayoutDB) InsertRun(r *RunRecord) (int64, error) {
	if r == nil {
		return 0, nil
	}
	stmt := `INSERT INTO runs (started_unix, source_path, params_json, point_count, voxel_count, brick_count, total_cost, solver_state, sweeps)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := ldb.Exec(stmt, r.Started.Unix(), r.SourcePath, r.ParamsJSON, r.PointCount, r.VoxelCount, r.BrickCount, r.TotalCost, r.State, r.Sweeps)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertLayout stores every brick of a layout under the given run,
// inside a single transaction.
func (ldb *LayoutDB) InsertLayout(runID int64, l *brick.Layout) error {
	if l == nil {
		return nil
	}
	tx, err := ldb.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO bricks (brick_id, run_id, x, y, z, length, width, class, orient)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range l.Bricks() {
		_, err := stmt.Exec(b.ID, runID, b.X, b.Y, b.Z, b.Length, b.Width, int(b.Class), b.Orientation.String())
		if err != nil {
			return fmt.Errorf("insert brick %s: %w", b.ID, err)
		}
	}
	return tx.Commit()
}

// InsertCosts stores the per-layer cost breakdown of a run.
func (ldb *LayoutDB) InsertCosts(runID int64, rec cost.Record) error {
	if len(rec.PerLayer) == 0 {
		return nil
	}
	tx, err := ldb.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO layer_costs (run_id, z, cost) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for z, c := range rec.PerLayer {
		if _, err := stmt.Exec(runID, z, c); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveResult persists a complete solver result as a new run and
// returns its run_id.
func (ldb *LayoutDB) SaveResult(res *solver.Result, sourcePath, paramsJSON string, pointCount, voxelCount int) (int64, error) {
	rec := &RunRecord{
		Started:    time.Now(),
		SourcePath: sourcePath,
		ParamsJSON: paramsJSON,
		PointCount: pointCount,
		VoxelCount: voxelCount,
		BrickCount: res.Layout.NumBricks(),
		TotalCost:  res.Cost.Total,
		State:      res.State.String(),
		Sweeps:     res.Sweeps,
	}
	runID, err := ldb.InsertRun(rec)
	if err != nil {
		return 0, err
	}
	if err := ldb.InsertLayout(runID, res.Layout); err != nil {
		return 0, err
	}
	if err := ldb.InsertCosts(runID, res.Cost); err != nil {
		return 0, err
	}
	return runID, nil
}

// LoadLayout reconstructs the brick layout of a stored run.
func (ldb *LayoutDB) LoadLayout(runID int64) (*brick.Layout, error) {
	rows, err := ldb.Query(`SELECT brick_id, x, y, z, length, width, class, orient FROM bricks WHERE run_id = ? ORDER BY z, y, x`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byLayer := map[int][]*brick.Brick{}
	for rows.Next() {
		var b brick.Brick
		var class int
		var orient string
		if err := rows.Scan(&b.ID, &b.X, &b.Y, &b.Z, &b.Length, &b.Width, &class, &orient); err != nil {
			return nil, err
		}
		b.Class = voxelgrid.Class(class)
		if orient == "V" {
			b.Orientation = brick.Vertical
		}
		bb := b
		byLayer[b.Z] = append(byLayer[b.Z], &bb)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	layout := brick.NewLayout()
	for z, bricks := range byLayer {
		layout.SetLayer(z, bricks)
	}
	return layout, nil
}
