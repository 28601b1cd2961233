package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-etl-pipeline/internal/config"
	"go-etl-pipeline/internal/model"
	"go-etl-pipeline/internal/pipeline"
	"go-etl-pipeline/internal/store"
)

// Cfg is the process configuration runs are executed under. Set once at
// startup before the router starts serving.
var Cfg config.Config

// CreateRun starts a new pipeline run
// @Summary Create a new run
// @Description Expand the configured task graph and start executing it
// @Tags runs
// @Accept json
// @Produce json
// @Param run body model.RunSpec true "Run options"
// @Success 200 {object} map[string]interface{} "Run created successfully"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [post]
func CreateRun(w http.ResponseWriter, r *http.Request) {
	var spec model.RunSpec
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
			http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
			return
		}
	}

	if _, err := model.ParseWriteMode(spec.WriteMode); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	runID := uuid.New().String()

	if err := store.SaveRun(runID, spec); err != nil {
		http.Error(w, "Failed to save run", http.StatusInternalServerError)
		return
	}

	// pipeline.Run persists its own status transitions and failures
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), Cfg.RunTimeout)
		defer cancel()
		pipeline.Run(ctx, runID, spec, Cfg)
	}()

	resp := map[string]interface{}{
		"message":   "Run created successfully!",
		"runID":     runID,
		"status":    model.RunPending,
		"createdAt": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListRuns retrieves all pipeline runs
// @Summary List all runs
// @Description Get a list of all pipeline runs with their current status
// @Tags runs
// @Produce json
// @Success 200 {array} map[string]interface{} "List of runs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [get]
func ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := store.ListRuns()
	if err != nil {
		http.Error(w, "Failed to fetch runs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// GetRun retrieves a specific pipeline run
// @Summary Get run
// @Description Retrieve details of a specific pipeline run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run details"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /runs/{id} [get]
func GetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(w, r, "")
	if !ok {
		return
	}

	run, err := store.GetRun(runID)
	if err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

// GetRunTasks retrieves per-task state for a run
// @Summary Get run tasks
// @Description Retrieve the state of every task in a run's graph
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Task states"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/tasks [get]
func GetRunTasks(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(w, r, "/tasks")
	if !ok {
		return
	}

	tasks, err := store.GetTaskStates(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve tasks", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id": runID,
		"tasks":  tasks,
		"count":  len(tasks),
	})
}

// GetRunErrors retrieves errors for a run
// @Summary Get run errors
// @Description Retrieve all errors that occurred during run execution
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run errors"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/errors [get]
func GetRunErrors(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(w, r, "/errors")
	if !ok {
		return
	}

	errs, err := store.GetRunErrors(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id": runID,
		"errors": errs,
		"count":  len(errs),
	})
}

// runIDFromPath extracts the run ID from /api/v1/runs/{id}{suffix} URLs.
func runIDFromPath(w http.ResponseWriter, r *http.Request, suffix string) (string, bool) {
	path := r.URL.Path
	prefix := "/api/v1/runs/"

	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return "", false
	}

	runID := path[len(prefix) : len(path)-len(suffix)]
	if runID == "" || strings.Contains(runID, "/") {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return "", false
	}
	return runID, true
}
