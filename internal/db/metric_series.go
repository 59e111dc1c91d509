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

// ErrSeriesNotFound is returned when a metric series id is unknown.
var ErrSeriesNotFound = errors.New("metric series not found")

// SeriesInfo describes a stored metric series.
type SeriesInfo struct {
	ID        string    `json:"series_id"`
	RunID     string    `json:"run_id,omitempty"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	Width     int       `json:"width"`
	Samples   int       `json:"samples"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveMetricSeries stores s with one time stamp per sample. runID may be
// empty for series not derived from a stored run.
func (db *DB) SaveMetricSeries(runID string, s *lom.MetricSeries, times []float64) (*SeriesInfo, error) {
	n := s.Len()
	if len(times) != n {
		return nil, fmt.Errorf("metric %q has %d samples but %d time stamps", s.Name, n, len(times))
	}
	info := &SeriesInfo{ID: uuid.NewString(), RunID: runID, Name: s.Name, Unit: s.Unit, Width: s.Width, Samples: n}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	run := sql.NullString{String: runID, Valid: runID != ""}
	if _, err := tx.Exec(`
		INSERT INTO metric_series (series_id, run_id, name, unit, width, samples)
		VALUES (?, ?, ?, ?, ?, ?)
	`, info.ID, run, info.Name, info.Unit, info.Width, info.Samples); err != nil {
		return nil, fmt.Errorf("failed to create metric series: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO metric_samples (series_id, sample_index, time, values_json)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for k, sample := range s.Items() {
		b, err := json.Marshal(sample)
		if err != nil {
			return nil, fmt.Errorf("failed to encode sample %d: %w", k, err)
		}
		if _, err := stmt.Exec(info.ID, k, times[k], string(b)); err != nil {
			return nil, fmt.Errorf("failed to insert sample %d: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit metric series: %w", err)
	}
	return info, nil
}

// LoadMetricSeries reads a stored series and its sample times.
func (db *DB) LoadMetricSeries(id string) (*lom.MetricSeries, []float64, error) {
	var info SeriesInfo
	var runID sql.NullString
	var createdAtUnix int64
	err := db.QueryRow(`
		SELECT series_id, run_id, name, unit, width, samples, created_at
		FROM metric_series WHERE series_id = ?
	`, id).Scan(&info.ID, &runID, &info.Name, &info.Unit, &info.Width, &info.Samples, &createdAtUnix)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", ErrSeriesNotFound, id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get metric series: %w", err)
	}

	rows, err := db.Query(`
		SELECT time, values_json FROM metric_samples
		WHERE series_id = ? ORDER BY sample_index
	`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read samples: %w", err)
	}
	defer rows.Close()

	values := make([]float64, 0, info.Width*info.Samples)
	times := make([]float64, 0, info.Samples)
	for rows.Next() {
		var (
			t    float64
			cell string
		)
		if err := rows.Scan(&t, &cell); err != nil {
			return nil, nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		var sample []float64
		if err := json.Unmarshal([]byte(cell), &sample); err != nil {
			return nil, nil, fmt.Errorf("failed to decode sample: %w", err)
		}
		if len(sample) != info.Width {
			return nil, nil, fmt.Errorf("sample %d has %d values, want %d", len(times), len(sample), info.Width)
		}
		values = append(values, sample...)
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	s, err := lom.NewMetricSeries(info.Name, info.Unit, info.Width, values)
	if err != nil {
		return nil, nil, err
	}
	return s, times, nil
}

// ListMetricSeries returns the series stored for a run, or every series when
// runID is empty.
func (db *DB) ListMetricSeries(runID string) ([]SeriesInfo, error) {
	query := `SELECT series_id, run_id, name, unit, width, samples, created_at FROM metric_series`
	var args []any
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY name, rowid`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list metric series: %w", err)
	}
	defer rows.Close()

	var out []SeriesInfo
	for rows.Next() {
		var info SeriesInfo
		var run sql.NullString
		var createdAtUnix int64
		if err := rows.Scan(&info.ID, &run, &info.Name, &info.Unit, &info.Width, &info.Samples, &createdAtUnix); err != nil {
			return nil, fmt.Errorf("failed to scan metric series: %w", err)
		}
		info.RunID = run.String
		info.CreatedAt = time.Unix(createdAtUnix, 0).UTC()
		out = append(out, info)
	}
	return out, rows.Err()
}
