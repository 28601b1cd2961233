package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"go-etl-pipeline/internal/model"
)

var db *sql.DB

// InitDB opens the run-state database and creates the tables.
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	runTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		spec TEXT,
		status TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		error_message TEXT,
		created_at DATETIME
	);
	`
	taskTable := `
	CREATE TABLE IF NOT EXISTS task_states (
		run_id TEXT,
		task_id TEXT,
		status TEXT,
		error TEXT,
		records_kept INTEGER,
		records_dropped INTEGER,
		updated_at DATETIME,
		PRIMARY KEY (run_id, task_id)
	);
	`

	for _, stmt := range []string{runTable, errorTable, taskTable} {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// DB exposes the run-state handle so a local warehouse can share it.
func DB() *sql.DB {
	return db
}

// SaveRun stores a new pipeline run.
func SaveRun(runID string, spec model.RunSpec) error {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO runs (id, spec, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		runID, specJSON, model.RunPending, now, now)
	return err
}

// SaveRunError records an error for a run.
func SaveRunError(runID string, err error) error {
	if err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := db.Exec(`INSERT INTO run_errors (run_id, error_message, created_at) VALUES (?, ?, ?)`,
		runID, err.Error(), now)
	return e
}

// ListRuns returns all runs with basic info.
func ListRuns() ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT id, status, created_at, updated_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []map[string]interface{}
	for rows.Next() {
		var id, status string
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, map[string]interface{}{
			"id":        id,
			"status":    status,
			"createdAt": createdAt,
			"updatedAt": updatedAt,
		})
	}
	return runs, rows.Err()
}

// GetRun fetches full run spec and status.
func GetRun(runID string) (map[string]interface{}, error) {
	var specJSON string
	var status string
	var createdAt, updatedAt time.Time

	err := db.QueryRow(`SELECT spec, status, created_at, updated_at FROM runs WHERE id = ?`, runID).
		Scan(&specJSON, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var spec model.RunSpec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":        runID,
		"spec":      spec,
		"status":    status,
		"createdAt": createdAt,
		"updatedAt": updatedAt,
	}, nil
}

// UpdateRunStatus updates run status.
func UpdateRunStatus(runID string, status string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`, status, now, runID)
	return err
}

// SaveTaskState upserts the state of one task within a run.
func SaveTaskState(runID, taskID, status, errMsg string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO task_states (run_id, task_id, status, error, records_kept, records_dropped, updated_at)
		VALUES (?, ?, ?, ?, 0, 0, ?)
		ON CONFLICT(run_id, task_id) DO UPDATE SET status = excluded.status, error = excluded.error, updated_at = excluded.updated_at`,
		runID, taskID, status, errMsg, now)
	return err
}

// SaveTaskCounts records the validate stage's kept/dropped counts.
func SaveTaskCounts(runID, taskID string, kept, dropped int) error {
	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO task_states (run_id, task_id, status, error, records_kept, records_dropped, updated_at)
		VALUES (?, ?, '', '', ?, ?, ?)
		ON CONFLICT(run_id, task_id) DO UPDATE SET records_kept = excluded.records_kept, records_dropped = excluded.records_dropped, updated_at = excluded.updated_at`,
		runID, taskID, kept, dropped, now)
	return err
}

// GetTaskStates returns per-task state for a run.
func GetTaskStates(runID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`
		SELECT task_id, status, error, records_kept, records_dropped, updated_at
		FROM task_states WHERE run_id = ? ORDER BY task_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []map[string]interface{}
	for rows.Next() {
		var taskID, status, errMsg string
		var kept, dropped int
		var updatedAt time.Time
		if err := rows.Scan(&taskID, &status, &errMsg, &kept, &dropped, &updatedAt); err != nil {
			return nil, err
		}
		state := map[string]interface{}{
			"taskId":    taskID,
			"status":    status,
			"updatedAt": updatedAt,
		}
		if errMsg != "" {
			state["error"] = errMsg
		}
		if kept > 0 || dropped > 0 {
			state["recordsKept"] = kept
			state["recordsDropped"] = dropped
		}
		states = append(states, state)
	}
	return states, rows.Err()
}

// GetRunErrors returns the errors recorded for a run.
func GetRunErrors(runID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT error_message, created_at FROM run_errors WHERE run_id = ? ORDER BY created_at`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errs []map[string]interface{}
	for rows.Next() {
		var msg string
		var createdAt time.Time
		if err := rows.Scan(&msg, &createdAt); err != nil {
			return nil, err
		}
		errs = append(errs, map[string]interface{}{
			"message":   msg,
			"createdAt": createdAt,
		})
	}
	return errs, rows.Err()
}
