package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"go-etl-pipeline/internal/api"
	"go-etl-pipeline/internal/api/handler"
	"go-etl-pipeline/internal/catalog"
	"go-etl-pipeline/internal/config"
	"go-etl-pipeline/internal/graph"
	"go-etl-pipeline/internal/model"
	"go-etl-pipeline/internal/pipeline"
	"go-etl-pipeline/internal/store"
	"go-etl-pipeline/pkg/router"
)

// @title ETL Pipeline API
// @version 1.0
// @description Trigger and inspect config-driven ETL pipeline runs.
// @BasePath /api/v1

func main() {
	var (
		maxRecords int
		writeMode  string
		resources  []string
	)

	rootCmd := &cobra.Command{
		Use:   "etl",
		Short: "Config-driven ETL pipeline over remote JSON resources",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Expand the task graph and execute one pipeline run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if err := store.InitDB(cfg.DBPath); err != nil {
				return err
			}

			spec := model.RunSpec{
				MaxRecords: maxRecords,
				WriteMode:  writeMode,
				Resources:  resources,
			}
			runID := uuid.New().String()
			if err := store.SaveRun(runID, spec); err != nil {
				return err
			}

			fmt.Printf("🚀 Starting run %s\n", runID)
			if err := pipeline.Run(cmd.Context(), runID, spec, cfg); err != nil {
				return err
			}
			fmt.Printf("🏁 Run %s completed\n", runID)
			return nil
		},
	}
	runCmd.Flags().IntVar(&maxRecords, "max-records", 0, "per-resource fetch ceiling, 0 fetches everything")
	runCmd.Flags().StringVar(&writeMode, "write-mode", "", "overwrite (default) or append")
	runCmd.Flags().StringSliceVar(&resources, "resources", nil, "subset of catalog resources to run")

	graphCmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the expanded task graph without executing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graph.Expand(catalog.Resources(), catalog.Summaries())
			if err != nil {
				return err
			}
			for _, task := range g.Tasks() {
				deps := g.Deps(task.ID)
				if len(deps) == 0 {
					fmt.Println(task.ID)
					continue
				}
				fmt.Printf("%s <- %v\n", task.ID, deps)
			}
			return nil
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if err := store.InitDB(cfg.DBPath); err != nil {
				return err
			}
			handler.Cfg = cfg

			r := router.New()
			api.RegisterRoutes(r)
			return r.Start(cfg.ListenAddr)
		},
	}

	rootCmd.AddCommand(runCmd, graphCmd, serveCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
