package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"

	"go-etl-pipeline/internal/graph"
	"go-etl-pipeline/internal/model"
	"go-etl-pipeline/internal/objstore"
	"go-etl-pipeline/internal/warehouse"
)

// Runner binds an expanded task graph to one run: it resolves each task to
// its stage implementation and carries stage outputs (file handles, storage
// locators) from one task to the next. Chains for different resources touch
// disjoint keys, so concurrent execution needs no coordination beyond the
// output map's own lock.
type Runner struct {
	RunID      string
	Resources  map[string]model.ResourceConfig
	Summaries  map[string]model.SummaryConfig
	DatasetDir string // per-run scratch dir
	SQLDir     string
	PageSize   int
	MaxRecords int // overrides per-resource ceiling when > 0
	WriteMode  model.WriteMode

	Client    *http.Client
	Objects   objstore.Store
	Warehouse warehouse.Warehouse
	Logger    *slog.Logger

	// OnCounts, when set, receives the validate stage's kept/dropped counts.
	OnCounts func(taskID string, kept, dropped int)

	mu      sync.Mutex
	outputs map[string]string
}

// NewRunner builds a Runner over the given configuration tables.
func NewRunner(runID string, resources []model.ResourceConfig, summaries []model.SummaryConfig) *Runner {
	r := &Runner{
		RunID:     runID,
		Resources: make(map[string]model.ResourceConfig, len(resources)),
		Summaries: make(map[string]model.SummaryConfig, len(summaries)),
		Client:    http.DefaultClient,
		Logger:    slog.Default(),
		WriteMode: model.WriteOverwrite,
		outputs:   make(map[string]string),
	}
	for _, res := range resources {
		r.Resources[res.Name] = res
	}
	for _, sum := range summaries {
		r.Summaries[sum.Name] = sum
	}
	return r
}

func (r *Runner) setOutput(taskID, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs[taskID] = value
}

func (r *Runner) output(taskID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.outputs[taskID]
	if !ok {
		return "", fmt.Errorf("no output recorded for task %s", taskID)
	}
	return v, nil
}

// Execute runs a single task. It is the TaskFunc handed to the scheduler.
func (r *Runner) Execute(ctx context.Context, task *graph.Task) error {
	switch task.Kind {
	case graph.KindSummary:
		sum, ok := r.Summaries[task.Summary]
		if !ok {
			return fmt.Errorf("task %s: unknown summary %q", task.ID, task.Summary)
		}
		r.Logger.Info("generating summary", "run", r.RunID, "summary", sum.Name, "destination", sum.Destination)
		return Summarize(ctx, r.Warehouse, sum, r.SQLDir, r.WriteMode)
	default:
		res, ok := r.Resources[task.Resource]
		if !ok {
			return fmt.Errorf("task %s: unknown resource %q", task.ID, task.Resource)
		}
		return r.executeStage(ctx, task, res)
	}
}

func (r *Runner) executeStage(ctx context.Context, task *graph.Task, res model.ResourceConfig) error {
	dir := filepath.Join(r.DatasetDir, r.RunID)

	switch task.Kind {
	case graph.KindFetch:
		max := res.MaxRecords
		if r.MaxRecords > 0 {
			max = r.MaxRecords
		}
		handle, err := Fetch(ctx, r.Client, res, dir, r.PageSize, max)
		if err != nil {
			return err
		}
		r.Logger.Info("fetched resource", "run", r.RunID, "resource", res.Name, "handle", handle)
		r.setOutput(task.ID, handle)
		return nil

	case graph.KindValidate:
		rawHandle, err := r.output(graph.TaskID(res.Name, graph.KindFetch))
		if err != nil {
			return err
		}
		handle, kept, dropped, err := Validate(res, rawHandle, dir)
		if err != nil {
			return err
		}
		// count-only diagnostics: rejected records are not retained
		r.Logger.Info("validated resource", "run", r.RunID, "resource", res.Name, "kept", kept, "dropped", dropped)
		if r.OnCounts != nil {
			r.OnCounts(task.ID, kept, dropped)
		}
		r.setOutput(task.ID, handle)
		return nil

	case graph.KindTransform:
		validated, err := r.output(graph.TaskID(res.Name, graph.KindValidate))
		if err != nil {
			return err
		}
		handle, err := Transform(ctx, res, validated, r.SQLDir, dir)
		if err != nil {
			return err
		}
		r.Logger.Info("transformed resource", "run", r.RunID, "resource", res.Name, "handle", handle)
		r.setOutput(task.ID, handle)
		return nil

	case graph.KindPublish:
		csvHandle, err := r.output(graph.TaskID(res.Name, graph.KindTransform))
		if err != nil {
			return err
		}
		locator, err := Publish(ctx, r.Objects, res, csvHandle)
		if err != nil {
			return err
		}
		r.Logger.Info("published resource", "run", r.RunID, "resource", res.Name, "locator", locator)
		r.setOutput(task.ID, locator)
		return nil

	case graph.KindLoad:
		locator, err := r.output(graph.TaskID(res.Name, graph.KindPublish))
		if err != nil {
			return err
		}
		if err := Load(ctx, r.Warehouse, res, locator, r.WriteMode); err != nil {
			return err
		}
		r.Logger.Info("loaded resource", "run", r.RunID, "resource", res.Name, "table", res.TableName(), "mode", string(r.WriteMode))
		return nil

	default:
		return fmt.Errorf("task %s: unhandled kind %s", task.ID, task.Kind)
	}
}
