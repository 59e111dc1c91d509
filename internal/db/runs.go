package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/optics.report/internal/lom"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Run is a stored table of array-valued columns, typically the rigid body
// motions of one simulation.
type Run struct {
	ID        string    `json:"run_id"`
	Label     string    `json:"label"`
	Rows      int       `json:"row_count"`
	CreatedAt time.Time `json:"created_at"`
}

// ColumnSource is a table whose columns can be listed.
type ColumnSource interface {
	lom.Table
	Names() []string
}

// CreateRun stores every column of t under a new run id.
func (db *DB) CreateRun(label string, t ColumnSource) (*Run, error) {
	run := &Run{ID: uuid.NewString(), Label: label, Rows: t.NumRows()}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, label, row_count) VALUES (?, ?, ?)`,
		run.ID, run.Label, run.Rows,
	); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_cells (run_id, column_name, row_index, values_json)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare cell insert: %w", err)
	}
	defer stmt.Close()

	for _, name := range t.Names() {
		rows, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		for i, row := range rows {
			var cell sql.NullString
			if row != nil {
				b, err := json.Marshal(row)
				if err != nil {
					return nil, fmt.Errorf("failed to encode %s row %d: %w", name, i, err)
				}
				cell = sql.NullString{String: string(b), Valid: true}
			}
			if _, err := stmt.Exec(run.ID, name, i, cell); err != nil {
				return nil, fmt.Errorf("failed to insert %s row %d: %w", name, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}
	return run, nil
}

// CreateMotionRun stores a motion series with the write-back column labels.
func (db *DB) CreateMotionRun(label string, m *lom.MotionSeries) (*Run, error) {
	return db.CreateRun(label, lom.ToTable(m, lom.WriteM1Column, lom.WriteM2Column))
}

// GetRun retrieves a run by id.
func (db *DB) GetRun(id string) (*Run, error) {
	var run Run
	var createdAtUnix int64
	err := db.QueryRow(
		`SELECT run_id, label, row_count, created_at FROM runs WHERE run_id = ?`, id,
	).Scan(&run.ID, &run.Label, &run.Rows, &createdAtUnix)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.CreatedAt = time.Unix(createdAtUnix, 0).UTC()
	return &run, nil
}

// ListRuns returns every run, newest first.
func (db *DB) ListRuns() ([]Run, error) {
	rows, err := db.Query(`SELECT run_id, label, row_count, created_at FROM runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var createdAtUnix int64
		if err := rows.Scan(&run.ID, &run.Label, &run.Rows, &createdAtUnix); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.CreatedAt = time.Unix(createdAtUnix, 0).UTC()
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run with its cells and metric series.
func (db *DB) DeleteRun(id string) error {
	res, err := db.Exec(`DELETE FROM runs WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// Table returns the columns of a run. Columns are read on demand.
func (db *DB) Table(id string) (*RunTable, error) {
	run, err := db.GetRun(id)
	if err != nil {
		return nil, err
	}
	return &RunTable{db: db, run: *run}, nil
}

// RunTable is a lom.Table backed by the cells of a stored run.
type RunTable struct {
	db  *DB
	run Run
}

// Run returns the run metadata.
func (t *RunTable) Run() Run { return t.run }

func (t *RunTable) NumRows() int { return t.run.Rows }

// Names lists the stored column names in lexical order.
func (t *RunTable) Names() ([]string, error) {
	rows, err := t.db.Query(
		`SELECT DISTINCT column_name FROM run_cells WHERE run_id = ? ORDER BY column_name`, t.run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of run %s: %w", t.run.ID, err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Column returns the rows of a column; null cells are nil rows.
func (t *RunTable) Column(name string) ([][]float64, error) {
	rows, err := t.db.Query(`
		SELECT row_index, values_json FROM run_cells
		WHERE run_id = ? AND column_name = ?
		ORDER BY row_index
	`, t.run.ID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read column %q: %w", name, err)
	}
	defer rows.Close()

	out := make([][]float64, t.run.Rows)
	found := false
	for rows.Next() {
		var (
			i    int
			cell sql.NullString
		)
		if err := rows.Scan(&i, &cell); err != nil {
			return nil, fmt.Errorf("failed to scan column %q: %w", name, err)
		}
		found = true
		if !cell.Valid {
			continue
		}
		if i < 0 || i >= len(out) {
			return nil, fmt.Errorf("column %q row %d out of range", name, i)
		}
		var v []float64
		if err := json.Unmarshal([]byte(cell.String), &v); err != nil {
			return nil, fmt.Errorf("failed to decode column %q row %d: %w", name, i, err)
		}
		out[i] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", lom.ErrMissingColumn, name)
	}
	return out, nil
}
