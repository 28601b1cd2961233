package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"go-etl-pipeline/internal/model"
	"go-etl-pipeline/pkg/utils"
)

// Backends for publish/load. Local keeps everything on disk and in sqlite;
// gcp publishes to a GCS bucket and loads into BigQuery.
const (
	BackendLocal = "local"
	BackendGCP   = "gcp"
)

// Config is the process-level configuration, read from the environment.
// The GCP_* / BQ_* names match the deployment convention of the warehouse
// those tables live in.
type Config struct {
	DatasetDir string `validate:"required"` // intermediate files, one subdir per run
	SQLDir     string `validate:"required"` // transform/summary artifacts
	DBPath     string `validate:"required"` // run-state store (and local warehouse)

	Backend         string `validate:"oneof=local gcp"`
	Project         string `validate:"required_if=Backend gcp"` // GCP_PROJECT
	Bucket          string `validate:"required_if=Backend gcp"` // GCP_BUCKET
	Dataset         string `validate:"required_if=Backend gcp"` // BQ_DATASET
	CredentialsFile string // service account key path, optional with ADC

	WriteMode  model.WriteMode `validate:"oneof=overwrite append"`
	PageSize   int             `validate:"min=1"` // fetch pagination size
	MaxRecords int             `validate:"min=0"` // default per-resource ceiling, 0 = all
	Workers    int             `validate:"min=1"` // executor parallelism
	RunTimeout time.Duration   `validate:"min=0"` // wall-clock bound per run, for API-triggered runs
	ListenAddr string          `validate:"required"`
}

// FromEnv builds a Config from environment variables with local-friendly
// defaults and validates it.
func FromEnv() (Config, error) {
	cfg := Config{
		DatasetDir:      envOr("ETL_DATASET_DIR", "datasets"),
		SQLDir:          envOr("ETL_SQL_DIR", "sql"),
		DBPath:          envOr("ETL_DB_PATH", "etl.db"),
		Backend:         envOr("ETL_BACKEND", BackendLocal),
		Project:         os.Getenv("GCP_PROJECT"),
		Bucket:          os.Getenv("GCP_BUCKET"),
		Dataset:         os.Getenv("BQ_DATASET"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		PageSize:        envIntOr("ETL_PAGE_SIZE", 20),
		MaxRecords:      envIntOr("ETL_MAX_RECORDS", 0),
		Workers:         envIntOr("ETL_WORKERS", 4),
		RunTimeout:      utils.ParseDuration(os.Getenv("ETL_RUN_TIMEOUT"), 30*time.Minute),
		ListenAddr:      envOr("ETL_LISTEN_ADDR", ":8080"),
	}

	mode, err := model.ParseWriteMode(os.Getenv("ETL_WRITE_MODE"))
	if err != nil {
		return Config{}, err
	}
	cfg.WriteMode = mode

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
