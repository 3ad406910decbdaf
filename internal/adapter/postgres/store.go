// Package postgres stores daily observation series and completed analysis
// runs in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"github.com/couchcryptid/climate-extremes/internal/climate"
	"github.com/couchcryptid/climate-extremes/internal/pipeline"
)

// schema bootstraps the two tables the service needs. Aggregations are kept
// as JSONB documents: runs are written once, read whole, and never queried
// by metric value.
const schema = `
CREATE TABLE IF NOT EXISTS daily_observations (
	station_id       TEXT             NOT NULL,
	observation_date DATE             NOT NULL,
	tmax             DOUBLE PRECISION,
	tmin             DOUBLE PRECISION,
	rh_max           DOUBLE PRECISION,
	rh_min           DOUBLE PRECISION,
	p_max            DOUBLE PRECISION,
	p_min            DOUBLE PRECISION,
	PRIMARY KEY (station_id, observation_date)
);

CREATE TABLE IF NOT EXISTS analysis_runs (
	id          TEXT        PRIMARY KEY,
	kind        TEXT        NOT NULL,
	station_id  TEXT        NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	events      JSONB       NOT NULL,
	yearly      JSONB       NOT NULL,
	seasonal    JSONB       NOT NULL,
	intensities JSONB       NOT NULL
);
`

// Store implements pipeline.SeriesSource, pipeline.RunStore, and
// pipeline.Pinger on PostgreSQL.
type Store struct {
	db *sqlx.DB
}

// New connects to Postgres and verifies the connection.
func New(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{db: db}, nil
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// observationRow maps one daily_observations row; NULL measurements become
// NaN in the series.
type observationRow struct {
	ObservationDate time.Time       `db:"observation_date"`
	TMax            sql.NullFloat64 `db:"tmax"`
	TMin            sql.NullFloat64 `db:"tmin"`
	RHMax           sql.NullFloat64 `db:"rh_max"`
	RHMin           sql.NullFloat64 `db:"rh_min"`
	PMax            sql.NullFloat64 `db:"p_max"`
	PMin            sql.NullFloat64 `db:"p_min"`
}

// LoadSeries returns a station's daily series for an inclusive year range,
// ordered by date. The series is raw: gap-filling and leap-day removal are
// the engine's job.
func (s *Store) LoadSeries(ctx context.Context, stationID string, fromYear, toYear int) (climate.Series, error) {
	const q = `
		SELECT observation_date, tmax, tmin, rh_max, rh_min, p_max, p_min
		FROM daily_observations
		WHERE station_id = $1
		  AND observation_date >= $2
		  AND observation_date <= $3
		ORDER BY observation_date`

	from := time.Date(fromYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(toYear, time.December, 31, 0, 0, 0, 0, time.UTC)

	var rows []observationRow
	if err := s.db.SelectContext(ctx, &rows, q, stationID, from, to); err != nil {
		return climate.Series{}, fmt.Errorf("load series for %s: %w", stationID, err)
	}
	if len(rows) == 0 {
		return climate.Series{}, fmt.Errorf("no observations for station %s in %d..%d", stationID, fromYear, toYear)
	}

	series := climate.Series{
		Dates: make([]time.Time, len(rows)),
		Columns: map[string][]float64{
			"tmax":   make([]float64, len(rows)),
			"tmin":   make([]float64, len(rows)),
			"rh_max": make([]float64, len(rows)),
			"rh_min": make([]float64, len(rows)),
			"p_max":  make([]float64, len(rows)),
			"p_min":  make([]float64, len(rows)),
		},
	}
	for i, r := range rows {
		series.Dates[i] = r.ObservationDate.UTC()
		series.Columns["tmax"][i] = nullToNaN(r.TMax)
		series.Columns["tmin"][i] = nullToNaN(r.TMin)
		series.Columns["rh_max"][i] = nullToNaN(r.RHMax)
		series.Columns["rh_min"][i] = nullToNaN(r.RHMin)
		series.Columns["p_max"][i] = nullToNaN(r.PMax)
		series.Columns["p_min"][i] = nullToNaN(r.PMin)
	}
	return series, nil
}

// UpsertObservation writes one daily observation, replacing any existing
// row for the same station and date.
func (s *Store) UpsertObservation(ctx context.Context, stationID string, date time.Time, values map[string]float64) error {
	const q = `
		INSERT INTO daily_observations
			(station_id, observation_date, tmax, tmin, rh_max, rh_min, p_max, p_min)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (station_id, observation_date) DO UPDATE SET
			tmax = EXCLUDED.tmax, tmin = EXCLUDED.tmin,
			rh_max = EXCLUDED.rh_max, rh_min = EXCLUDED.rh_min,
			p_max = EXCLUDED.p_max, p_min = EXCLUDED.p_min`

	_, err := s.db.ExecContext(ctx, q, stationID, midnight(date),
		naNToNull(values["tmax"]), naNToNull(values["tmin"]),
		naNToNull(values["rh_max"]), naNToNull(values["rh_min"]),
		naNToNull(values["p_max"]), naNToNull(values["p_min"]))
	if err != nil {
		return fmt.Errorf("upsert observation: %w", err)
	}
	return nil
}

// runRow maps one analysis_runs row.
type runRow struct {
	ID          string    `db:"id"`
	Kind        string    `db:"kind"`
	StationID   string    `db:"station_id"`
	CreatedAt   time.Time `db:"created_at"`
	Events      []byte    `db:"events"`
	Yearly      []byte    `db:"yearly"`
	Seasonal    []byte    `db:"seasonal"`
	Intensities []byte    `db:"intensities"`
}

// SaveRun persists a completed analysis run.
func (s *Store) SaveRun(ctx context.Context, run *pipeline.Run) error {
	events, err := json.Marshal(run.Events)
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}
	yearly, err := json.Marshal(run.Yearly)
	if err != nil {
		return fmt.Errorf("marshal yearly metrics: %w", err)
	}
	seasonal, err := json.Marshal(run.Seasonal)
	if err != nil {
		return fmt.Errorf("marshal seasonal metrics: %w", err)
	}
	intensities, err := json.Marshal(run.Intensities)
	if err != nil {
		return fmt.Errorf("marshal intensities: %w", err)
	}

	const q = `
		INSERT INTO analysis_runs
			(id, kind, station_id, created_at, events, yearly, seasonal, intensities)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := s.db.ExecContext(ctx, q, run.ID, run.Kind, run.StationID, run.CreatedAt,
		events, yearly, seasonal, intensities); err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun retrieves a run by ID, returning pipeline.ErrRunNotFound when
// absent.
func (s *Store) GetRun(ctx context.Context, id string) (*pipeline.Run, error) {
	const q = `
		SELECT id, kind, station_id, created_at, events, yearly, seasonal, intensities
		FROM analysis_runs WHERE id = $1`

	var row runRow
	if err := s.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pipeline.ErrRunNotFound
		}
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	run := &pipeline.Run{
		ID:        row.ID,
		Kind:      row.Kind,
		StationID: row.StationID,
		CreatedAt: row.CreatedAt,
	}
	if err := json.Unmarshal(row.Events, &run.Events); err != nil {
		return nil, fmt.Errorf("unmarshal events: %w", err)
	}
	if err := json.Unmarshal(row.Yearly, &run.Yearly); err != nil {
		return nil, fmt.Errorf("unmarshal yearly metrics: %w", err)
	}
	if err := json.Unmarshal(row.Seasonal, &run.Seasonal); err != nil {
		return nil, fmt.Errorf("unmarshal seasonal metrics: %w", err)
	}
	if err := json.Unmarshal(row.Intensities, &run.Intensities); err != nil {
		return nil, fmt.Errorf("unmarshal intensities: %w", err)
	}
	return run, nil
}

func nullToNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func naNToNull(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
