package config

import "testing"

func TestLoad_RequiresProject(t *testing.T) {
	t.Setenv("GCP_PROJECT_ID", "")

	if _, err := Load(); err == nil {
		t.Error("Expected error when GCP_PROJECT_ID is unset, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GCP_PROJECT_ID", "test-project")
	t.Setenv("BQ_DATASET", "")
	t.Setenv("SALES_TABLE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ProjectID != "test-project" {
		t.Errorf("ProjectID = %q, want %q", cfg.ProjectID, "test-project")
	}
	if cfg.DatasetID != defaultDataset {
		t.Errorf("DatasetID = %q, want default %q", cfg.DatasetID, defaultDataset)
	}
	if cfg.SalesTable != defaultTable {
		t.Errorf("SalesTable = %q, want default %q", cfg.SalesTable, defaultTable)
	}
}

func TestLoad_ExplicitValues(t *testing.T) {
	t.Setenv("GCP_PROJECT_ID", "test-project")
	t.Setenv("BQ_DATASET", "warehouse")
	t.Setenv("SALES_TABLE", "walmart_sales")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DatasetID != "warehouse" {
		t.Errorf("DatasetID = %q, want %q", cfg.DatasetID, "warehouse")
	}
	if cfg.SalesTable != "walmart_sales" {
		t.Errorf("SalesTable = %q, want %q", cfg.SalesTable, "walmart_sales")
	}
}
