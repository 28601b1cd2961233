package warehouse

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"go-etl-pipeline/internal/model"
	"go-etl-pipeline/pkg/utils"
)

// SQLite is a file-backed warehouse for local runs and tests. Locators must
// be filesystem paths, so it pairs with the local object store.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open warehouse db %s: %w", path, err)
	}
	return &SQLite{db: db}, nil
}

// NewSQLiteFromDB wraps an existing connection, used when the warehouse
// shares the run-state database.
func NewSQLiteFromDB(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for queries over loaded tables.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

func sqliteType(t model.FieldType) string {
	switch t {
	case model.FieldInteger:
		return "INTEGER"
	case model.FieldNumeric:
		return "REAL"
	default:
		return "TEXT"
	}
}

func (s *SQLite) Load(ctx context.Context, table string, schema []model.Field, locator string, mode model.WriteMode) error {
	f, err := os.Open(locator)
	if err != nil {
		return fmt.Errorf("open %s: %w", locator, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("read %s: %w", locator, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s: missing header row", locator)
	}
	data := rows[1:] // skip header

	cols := make([]string, len(schema))
	defs := make([]string, len(schema))
	marks := make([]string, len(schema))
	for i, field := range schema {
		cols[i] = field.Name
		defs[i] = field.Name + " " + sqliteType(field.Type)
		marks[i] = "?"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if mode == model.WriteOverwrite {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return err
		}
	}
	createStmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, createStmt); err != nil {
		return err
	}

	insertStmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(marks, ", "))
	stmt, err := tx.PrepareContext(ctx, insertStmt)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range data {
		if len(row) != len(schema) {
			return fmt.Errorf("%s: row has %d columns, schema has %d", locator, len(row), len(schema))
		}
		args := make([]interface{}, len(row))
		for i, cell := range row {
			args[i] = cellValue(cell, schema[i].Type)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func cellValue(cell string, t model.FieldType) interface{} {
	if cell == "" {
		return nil
	}
	switch t {
	case model.FieldInteger, model.FieldNumeric:
		return utils.ParseValue(cell)
	default:
		return cell
	}
}

func (s *SQLite) Exec(ctx context.Context, query, destTable string, mode model.WriteMode) error {
	query = strings.TrimRight(strings.TrimSpace(query), ";")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if mode == model.WriteOverwrite {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+destTable); err != nil {
			return err
		}
	}

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", destTable).Scan(&exists)
	if err != nil {
		return err
	}

	if exists == 0 {
		_, err = tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s AS %s", destTable, query))
	} else {
		_, err = tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s %s", destTable, query))
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}
