package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go-etl-pipeline/internal/catalog"
	"go-etl-pipeline/internal/config"
	"go-etl-pipeline/internal/graph"
	"go-etl-pipeline/internal/model"
	"go-etl-pipeline/internal/objstore"
	"go-etl-pipeline/internal/scheduler"
	"go-etl-pipeline/internal/store"
	"go-etl-pipeline/internal/valspec"
	"go-etl-pipeline/internal/warehouse"
)

// ------------------- Pipeline Runner -------------------

// Run executes one full pipeline run: select configuration, expand the task
// graph, wire the backends, and hand the graph to the executor. Task state
// transitions and failures are persisted to the run store as they happen.
func Run(ctx context.Context, runID string, spec model.RunSpec, cfg config.Config) (err error) {
	start := time.Now()
	logger := slog.Default().With("run", runID)
	logger.Info("starting pipeline run")

	store.UpdateRunStatus(runID, model.RunRunning)
	defer func() {
		if err != nil {
			store.UpdateRunStatus(runID, model.RunFailed)
			store.SaveRunError(runID, err)
		}
	}()

	resources, summaries, err := selectConfig(spec)
	if err != nil {
		return err
	}

	g, err := graph.Expand(resources, summaries)
	if err != nil {
		return err
	}
	logger.Info("expanded task graph", "tasks", g.Len(), "resources", len(resources), "summaries", len(summaries))

	mode := cfg.WriteMode
	if spec.WriteMode != "" {
		if mode, err = model.ParseWriteMode(spec.WriteMode); err != nil {
			return err
		}
	}

	runner := NewRunner(runID, resources, summaries)
	runner.DatasetDir = cfg.DatasetDir
	runner.SQLDir = cfg.SQLDir
	runner.PageSize = cfg.PageSize
	runner.MaxRecords = spec.MaxRecords
	if runner.MaxRecords == 0 {
		runner.MaxRecords = cfg.MaxRecords
	}
	runner.WriteMode = mode
	runner.Logger = logger
	runner.OnCounts = func(taskID string, kept, dropped int) {
		store.SaveTaskCounts(runID, taskID, kept, dropped)
	}

	cleanup, err := wireBackends(ctx, cfg, runner)
	if err != nil {
		return err
	}
	defer cleanup()

	executor := scheduler.New(scheduler.Options{
		Workers: cfg.Workers,
		Logger:  logger,
		OnUpdate: func(taskID string, status scheduler.Status, taskErr error) {
			msg := ""
			if taskErr != nil {
				msg = taskErr.Error()
			}
			store.SaveTaskState(runID, taskID, string(status), msg)
		},
	})

	if err := executor.Run(ctx, g, runner.Execute); err != nil {
		return err
	}

	logger.Info("pipeline run completed", "duration", time.Since(start))
	store.UpdateRunStatus(runID, model.RunCompleted)
	return nil
}

// selectConfig narrows the catalog to the requested resource subset and
// applies the run's validation rule overrides. Summaries whose dependencies
// are not all selected are dropped rather than failing expansion, since the
// omission was explicit.
func selectConfig(spec model.RunSpec) ([]model.ResourceConfig, []model.SummaryConfig, error) {
	resources := catalog.Resources()
	summaries := catalog.Summaries()

	if len(spec.Resources) > 0 {
		wanted := make(map[string]bool, len(spec.Resources))
		for _, name := range spec.Resources {
			wanted[name] = true
		}

		var selected []model.ResourceConfig
		names := make(map[string]bool)
		for _, res := range resources {
			if wanted[res.Name] {
				selected = append(selected, res)
				names[res.Name] = true
			}
		}
		for name := range wanted {
			if !names[name] {
				return nil, nil, fmt.Errorf("unknown resource %q requested", name)
			}
		}

		var kept []model.SummaryConfig
		for _, sum := range summaries {
			all := true
			for _, dep := range sum.Deps {
				if !names[dep] {
					all = false
					break
				}
			}
			if all {
				kept = append(kept, sum)
			}
		}
		resources, summaries = selected, kept
	}

	if err := applyRuleOverrides(resources, spec.Rules); err != nil {
		return nil, nil, err
	}
	return resources, summaries, nil
}

// applyRuleOverrides compiles the run's declarative rules and merges them
// over each targeted resource's validation spec. A compiled rule replaces the
// catalog rule for the same field; fields it does not name keep theirs.
func applyRuleOverrides(resources []model.ResourceConfig, overrides map[string]valspec.ValidationRules) error {
	if len(overrides) == 0 {
		return nil
	}

	byName := make(map[string]int, len(resources))
	for i, res := range resources {
		byName[res.Name] = i
	}

	for name, rules := range overrides {
		i, ok := byName[name]
		if !ok {
			return fmt.Errorf("validation rules target unknown resource %q", name)
		}
		base := resources[i].Validation
		merged := make(valspec.Spec, len(base))
		for field, rule := range base {
			merged[field] = rule
		}
		for field, rule := range valspec.FromRules(rules) {
			merged[field] = rule
		}
		resources[i].Validation = merged
	}
	return nil
}

// wireBackends attaches object storage and warehouse implementations per the
// configured backend and returns a cleanup func.
func wireBackends(ctx context.Context, cfg config.Config, runner *Runner) (func(), error) {
	switch cfg.Backend {
	case config.BackendGCP:
		gcs, err := objstore.NewGCS(ctx, cfg.Bucket, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		bq, err := warehouse.NewBigQuery(ctx, cfg.Project, cfg.Dataset, cfg.CredentialsFile)
		if err != nil {
			gcs.Close()
			return nil, err
		}
		runner.Objects = gcs
		runner.Warehouse = bq
		return func() {
			bq.Close()
			gcs.Close()
		}, nil

	default:
		local, err := objstore.NewLocal(filepath.Join(cfg.DatasetDir, "published"))
		if err != nil {
			return nil, err
		}
		wh := warehouse.NewSQLiteFromDB(store.DB())
		runner.Objects = local
		runner.Warehouse = wh
		return func() {}, nil
	}
}
