package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the warehouse coordinates for the pipeline and the
// analytics catalogue. A .env file is honoured when present so local
// runs don't need exported variables.
type Config struct {
	ProjectID  string
	DatasetID  string
	SalesTable string
}

const (
	defaultDataset = "retail"
	defaultTable   = "sales"
)

// Load reads configuration from the environment (optionally seeded from
// a .env file in the working directory). GCP_PROJECT_ID is required.
func Load() (Config, error) {
	// Missing .env is fine; system env wins either way.
	_ = godotenv.Load()

	cfg := Config{
		ProjectID:  strings.TrimSpace(os.Getenv("GCP_PROJECT_ID")),
		DatasetID:  strings.TrimSpace(os.Getenv("BQ_DATASET")),
		SalesTable: strings.TrimSpace(os.Getenv("SALES_TABLE")),
	}

	if cfg.ProjectID == "" {
		return Config{}, fmt.Errorf("config: GCP_PROJECT_ID is not set")
	}
	if cfg.DatasetID == "" {
		cfg.DatasetID = defaultDataset
	}
	if cfg.SalesTable == "" {
		cfg.SalesTable = defaultTable
	}

	return cfg, nil
}
