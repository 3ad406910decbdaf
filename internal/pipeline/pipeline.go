// Package pipeline orchestrates one detection run end to end: load the
// target and reference series, run the climate engine, persist the run, and
// publish detected events. All I/O goes through the small interfaces below
// so adapters and tests can swap implementations freely.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/climate-extremes/internal/climate"
	"github.com/couchcryptid/climate-extremes/internal/observability"
)

// ErrRunNotFound is returned when a requested analysis run does not exist.
var ErrRunNotFound = errors.New("analysis run not found")

// SeriesSource loads a station's daily series for an inclusive year range.
type SeriesSource interface {
	LoadSeries(ctx context.Context, stationID string, fromYear, toYear int) (climate.Series, error)
}

// RunStore persists and retrieves completed analysis runs.
type RunStore interface {
	SaveRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
}

// EventPublisher pushes a run's detected events to downstream consumers.
type EventPublisher interface {
	PublishEvents(ctx context.Context, run *Run) error
}

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Request describes one analysis to perform. The climatic normal and the
// scanned database may come from the same station and even the same years.
type Request struct {
	Kind      string `json:"kind" validate:"required"`
	StationID string `json:"station_id" validate:"required"`

	DatabaseFromYear int `json:"database_from_year" validate:"required"`
	DatabaseToYear   int `json:"database_to_year" validate:"required,gtefield=DatabaseFromYear"`
	NormalFromYear   int `json:"normal_from_year" validate:"required"`
	NormalToYear     int `json:"normal_to_year" validate:"required,gtefield=NormalFromYear"`

	// Percentile and WindowSize override the kind default and the service
	// default when non-zero.
	Percentile float64 `json:"percentile,omitempty" validate:"gte=0,lte=1"`
	WindowSize int     `json:"window_size,omitempty" validate:"gte=0"`
}

// Run is a completed analysis: the request echo, the detected events, and
// their aggregations.
type Run struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	StationID string    `json:"station_id"`
	CreatedAt time.Time `json:"created_at"`

	Events      []climate.WaveEvent      `json:"events"`
	Yearly      []climate.YearMetrics    `json:"yearly_metrics"`
	Seasonal    []climate.SeasonMetrics  `json:"seasonal_metrics"`
	Intensities []climate.EventIntensity `json:"intensities"`
}

// Analyzer executes analysis requests against a series source, a run store,
// and an optional event publisher.
type Analyzer struct {
	source    SeriesSource
	store     RunStore
	publisher EventPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics

	windowSize int
	ready      atomic.Bool
}

// New creates an Analyzer. publisher may be nil to disable event publishing;
// defaultWindowSize is used when a request does not set one.
func New(source SeriesSource, store RunStore, publisher EventPublisher, logger *slog.Logger, metrics *observability.Metrics, defaultWindowSize int) *Analyzer {
	return &Analyzer{
		source:     source,
		store:      store,
		publisher:  publisher,
		logger:     logger,
		metrics:    metrics,
		windowSize: defaultWindowSize,
	}
}

// CheckReadiness reports ready once the backing store is reachable.
func (a *Analyzer) CheckReadiness(ctx context.Context) error {
	if p, ok := a.store.(Pinger); ok {
		return p.Ping(ctx)
	}
	if !a.ready.Load() {
		return errors.New("no analysis has completed yet")
	}
	return nil
}

// Analyze runs a single detection request end to end and returns the
// persisted run.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Run, error) {
	start := time.Now()

	kind, err := climate.ParseEventKind(req.Kind)
	if err != nil {
		a.metrics.AnalysesRun.WithLabelValues(req.Kind, "error").Inc()
		return nil, err
	}

	run, err := a.analyze(ctx, kind, req)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	a.metrics.AnalysesRun.WithLabelValues(kind.String(), outcome).Inc()
	a.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		a.logger.Error("analysis failed", "kind", kind.String(), "station", req.StationID, "error", err)
		return nil, err
	}

	a.ready.Store(true)
	a.logger.Info("analysis complete",
		"run_id", run.ID,
		"kind", kind.String(),
		"station", req.StationID,
		"events", len(run.Events),
		"duration", time.Since(start),
	)
	return run, nil
}

func (a *Analyzer) analyze(ctx context.Context, kind climate.EventKind, req Request) (*Run, error) {
	maxCol, minCol := variableColumns(kind)

	database, err := a.source.LoadSeries(ctx, req.StationID, req.DatabaseFromYear, req.DatabaseToYear)
	if err != nil {
		return nil, fmt.Errorf("load database series: %w", err)
	}
	normal, err := a.source.LoadSeries(ctx, req.StationID, req.NormalFromYear, req.NormalToYear)
	if err != nil {
		return nil, fmt.Errorf("load climatic normal: %w", err)
	}

	windowSize := req.WindowSize
	if windowSize == 0 {
		windowSize = a.windowSize
	}

	params := climate.Params{
		Kind:              kind,
		Database:          database,
		DatabaseMaxColumn: maxCol,
		DatabaseMinColumn: minCol,
		Normal:            normal,
		NormalMaxColumn:   maxCol,
		NormalMinColumn:   minCol,
		Percentile:        req.Percentile,
		WindowSize:        windowSize,
	}

	tableStart := time.Now()
	table, err := climate.BuildTable(params)
	if err != nil {
		return nil, fmt.Errorf("calibrate %s thresholds: %w", kind, err)
	}
	a.metrics.TableBuildDuration.Observe(time.Since(tableStart).Seconds())

	params.Table = table
	detection, err := climate.Detect(params)
	if err != nil {
		return nil, fmt.Errorf("detect %s: %w", kind, err)
	}
	a.metrics.WaveEventsDetected.WithLabelValues(kind.String()).Add(float64(len(detection.Events)))

	intensities, err := detection.Intensity(maxCol, false)
	if err != nil {
		return nil, fmt.Errorf("compute intensities: %w", err)
	}

	run := &Run{
		ID:          uuid.NewString(),
		Kind:        kind.String(),
		StationID:   req.StationID,
		CreatedAt:   detection.DetectedAt,
		Events:      detection.Events,
		Yearly:      detection.YearlyMetrics(),
		Seasonal:    detection.SeasonalMetrics(),
		Intensities: intensities,
	}

	if err := a.store.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}

	if a.publisher != nil && len(run.Events) > 0 {
		if err := a.publisher.PublishEvents(ctx, run); err != nil {
			// The run is already persisted; a publish failure is surfaced in
			// metrics and logs but does not fail the analysis.
			a.metrics.PublishErrors.Inc()
			a.logger.Error("publish events failed", "run_id", run.ID, "error", err)
		} else {
			a.metrics.EventsPublished.Add(float64(len(run.Events)))
		}
	}

	return run, nil
}

// GetRun retrieves a previously completed run.
func (a *Analyzer) GetRun(ctx context.Context, id string) (*Run, error) {
	return a.store.GetRun(ctx, id)
}

// variableColumns maps an event kind to the observation columns of its
// tracked variable.
func variableColumns(k climate.EventKind) (maxCol, minCol string) {
	switch k {
	case climate.HighHumidityWave, climate.LowHumidityWave, climate.HumidityRange, climate.HumidityDifference:
		return "rh_max", "rh_min"
	case climate.HighPressureWave, climate.LowPressureWave, climate.PressureRange, climate.PressureDifference:
		return "p_max", "p_min"
	default:
		return "tmax", "tmin"
	}
}
