package climate

import (
	"time"
)

// DefaultWindowSize is the conventional percentile window width in days.
const DefaultWindowSize = 15

// Derived column names attached to the climatic normal for single-threshold
// policies. The target series never grows these columns; classification
// derives the same quantities on the fly.
const (
	rangeColumn  = "range"
	difMaxColumn = "dif_max"
	difMinColumn = "dif_min"
)

// Params describes one detection request. Database is the target series
// scanned for events; Normal is the climatic normal used only to calibrate
// thresholds. They may be the same physical series. Column names identify
// the daily maximum and minimum of the tracked variable in each series.
type Params struct {
	Kind EventKind

	Database          Series
	DatabaseMaxColumn string
	DatabaseMinColumn string
	// DatabaseHasDay365 indicates Database already carries day-of-year
	// ordinals; DatabaseComplete indicates it has no missing dates.
	DatabaseHasDay365 bool
	DatabaseComplete  bool

	Normal          Series
	NormalMaxColumn string
	NormalMinColumn string
	NormalHasDay365 bool

	// Table, when non-nil, is a precomputed threshold table; Normal and its
	// columns are then ignored, letting callers calibrate once and detect
	// many times.
	Table *PercentileTable

	// Percentile overrides the kind's default (0.9 above / 0.1 below) when
	// non-zero. WindowSize defaults to DefaultWindowSize when zero.
	Percentile float64
	WindowSize int
}

// Detection is the result of one detection run: the normalized target
// series, its per-day exceedance and inside-wave labels, the threshold
// table used, and the discrete events found.
type Detection struct {
	Kind       EventKind
	Series     Series
	Exceedance []int
	Wave       []int
	Table      *PercentileTable
	Events     []WaveEvent
	DetectedAt time.Time
}

// YearlyMetrics aggregates the detection's events per calendar year.
func (d *Detection) YearlyMetrics() []YearMetrics {
	return YearlyMetrics(d.Series, d.Wave)
}

// SeasonalMetrics aggregates the detection's events per (year, season).
func (d *Detection) SeasonalMetrics() []SeasonMetrics {
	return SeasonalMetrics(d.Series, d.Wave)
}

// Intensity computes per-event peak anomalies against the detection's own
// threshold table, using the max-variable column as the peak variable.
func (d *Detection) Intensity(peakColumn string, seasonalYear bool) ([]EventIntensity, error) {
	return Intensity(d.Series, d.Wave, peakColumn, d.Table, seasonalYear)
}

// Detect runs the full pipeline for one event kind: normalize the target
// series, calibrate (or reuse) the percentile table, classify exceedance
// days, extract qualifying runs, and group them into events. Inputs are
// never mutated.
func Detect(p Params) (*Detection, error) {
	q := p.Percentile
	if q == 0 {
		q = p.Kind.DefaultPercentile()
	}
	windowSize := p.WindowSize
	if windowSize == 0 {
		windowSize = DefaultWindowSize
	}
	if err := validatePercentileParams(q, windowSize); err != nil {
		return nil, err
	}
	if p.Database.Len() == 0 {
		return nil, invalidInputf("database series is empty")
	}
	if _, err := p.Database.Column(p.DatabaseMaxColumn); err != nil {
		return nil, err
	}
	if _, err := p.Database.Column(p.DatabaseMinColumn); err != nil {
		return nil, err
	}

	db, err := Normalize(p.Database, NormalizeOptions{
		HasDay365: p.DatabaseHasDay365,
		Complete:  p.DatabaseComplete,
	})
	if err != nil {
		return nil, err
	}

	table := p.Table
	if table == nil {
		table, err = BuildTable(p)
		if err != nil {
			return nil, err
		}
	}

	exceedance, err := Classify(db, p.DatabaseMaxColumn, p.DatabaseMinColumn, table, p.Kind)
	if err != nil {
		return nil, err
	}
	wave := MarkWaves(exceedance)

	return &Detection{
		Kind:       p.Kind,
		Series:     db,
		Exceedance: exceedance,
		Wave:       wave,
		Table:      table,
		Events:     ExtractEvents(db, wave),
		DetectedAt: clock.Now(),
	}, nil
}

// BuildTable normalizes the climatic normal, derives any policy columns,
// and calibrates the threshold table for the request's kind. Detect calls
// it implicitly when Params.Table is nil; callers wanting to reuse or time
// the calibration step can invoke it directly.
func BuildTable(p Params) (*PercentileTable, error) {
	q := p.Percentile
	if q == 0 {
		q = p.Kind.DefaultPercentile()
	}
	windowSize := p.WindowSize
	if windowSize == 0 {
		windowSize = DefaultWindowSize
	}
	if p.Normal.Len() == 0 {
		return nil, invalidInputf("climatic normal is empty and no precomputed table was given")
	}
	normal, err := Normalize(p.Normal, NormalizeOptions{
		HasDay365: p.NormalHasDay365,
		Complete:  false,
	})
	if err != nil {
		return nil, err
	}

	switch p.Kind.Policy() {
	case PolicyRange:
		normal, err = DeriveRange(normal, p.NormalMaxColumn, p.NormalMinColumn, rangeColumn)
		if err != nil {
			return nil, err
		}
		return BuildPercentileTable(normal, rangeColumn, "", q, windowSize)
	case PolicyDifference:
		normal, err = DeriveDifferences(normal, p.NormalMaxColumn, p.NormalMinColumn, difMaxColumn, difMinColumn)
		if err != nil {
			return nil, err
		}
		return BuildPercentileTable(normal, difMaxColumn, difMinColumn, q, windowSize)
	default:
		return BuildPercentileTable(normal, p.NormalMaxColumn, p.NormalMinColumn, q, windowSize)
	}
}
