package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := EmptyBuildConfig()

	if got := cfg.GetCellSizeM(); got != 1.0 {
		t.Errorf("GetCellSizeM() = %v, want 1.0", got)
	}
	if got := cfg.GetVerticalRatio(); got != 1.2 {
		t.Errorf("GetVerticalRatio() = %v, want 1.2", got)
	}
	if got := cfg.GetUnknownClass(); got != 1 {
		t.Errorf("GetUnknownClass() = %d, want 1", got)
	}
	if got := cfg.GetGroundClass(); got != 2 {
		t.Errorf("GetGroundClass() = %d, want 2", got)
	}
	if got := cfg.GetConsolidation(); got != "pillars" {
		t.Errorf("GetConsolidation() = %q, want pillars", got)
	}
	if got := cfg.GetPropagateClasses(); len(got) != 1 || got[0] != 6 {
		t.Errorf("GetPropagateClasses() = %v, want [6]", got)
	}
	if got := cfg.GetKeepClasses(); len(got) != 6 {
		t.Errorf("GetKeepClasses() = %v, want six classes", got)
	}
	if got := cfg.GetMaxSweeps(); got != 8 {
		t.Errorf("GetMaxSweeps() = %d, want 8", got)
	}
	if !cfg.GetComputeCost() {
		t.Error("GetComputeCost() must default to true")
	}
	if cfg.GetCatalog() != nil {
		t.Error("GetCatalog() must default to nil (built-in inventory)")
	}
}

func TestLoadBuildConfig(t *testing.T) {
	path := writeConfig(t, "build.json", `{
		"cell_size_m": 0.5,
		"vertical_ratio": 1.2,
		"consolidation": "shell",
		"keep_classes": [2, 6],
		"weight_seam": 2.5,
		"compute_cost": false
	}`)

	cfg, err := LoadBuildConfig(path)
	if err != nil {
		t.Fatalf("LoadBuildConfig failed: %v", err)
	}
	if got := cfg.GetCellSizeM(); got != 0.5 {
		t.Errorf("GetCellSizeM() = %v, want 0.5", got)
	}
	if got := cfg.GetConsolidation(); got != "shell" {
		t.Errorf("GetConsolidation() = %q, want shell", got)
	}
	if got := cfg.GetKeepClasses(); len(got) != 2 || got[0] != 2 || got[1] != 6 {
		t.Errorf("GetKeepClasses() = %v, want [2 6]", got)
	}
	if got := cfg.GetWeightSeam(); got != 2.5 {
		t.Errorf("GetWeightSeam() = %v, want 2.5", got)
	}
	if cfg.GetComputeCost() {
		t.Error("compute_cost=false must be honored")
	}
	// Untouched fields keep their defaults.
	if got := cfg.GetMaxSweeps(); got != 8 {
		t.Errorf("GetMaxSweeps() = %d, want default 8", got)
	}
}

func TestLoadBuildConfigRejectsNonJSON(t *testing.T) {
	path := writeConfig(t, "build.yaml", "cell_size_m: 0.5")
	if _, err := LoadBuildConfig(path); err == nil {
		t.Fatal("expected an error for a non-json extension")
	}
}

func TestLoadBuildConfigMissingFile(t *testing.T) {
	if _, err := LoadBuildConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadBuildConfigBadJSON(t *testing.T) {
	path := writeConfig(t, "bad.json", "{not json")
	if _, err := LoadBuildConfig(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestValidate(t *testing.T) {
	bad := []string{
		`{"cell_size_m": 0}`,
		`{"cell_size_m": -1}`,
		`{"vertical_ratio": -0.5}`,
		`{"min_density": 0}`,
		`{"consolidation": "solid"}`,
		`{"max_sweeps": 0}`,
		`{"budget_seconds": -1}`,
		`{"epsilon": -0.1}`,
		`{"repair_max_iter": -1}`,
		`{"max_gap": -2}`,
		`{"catalog": [[0, 2]]}`,
	}
	for _, content := range bad {
		path := writeConfig(t, "bad.json", content)
		if _, err := LoadBuildConfig(path); err == nil {
			t.Errorf("expected validation error for %s", content)
		}
	}

	good := writeConfig(t, "good.json", `{"catalog": [[1, 1], [1, 2], [2, 1]], "max_gap": 0}`)
	if _, err := LoadBuildConfig(good); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
