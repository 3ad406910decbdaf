package climate

import (
	"math"
)

// Policy selects how a day's variables are compared against the threshold
// table.
type Policy int

const (
	// PolicyDual requires both the maximum and minimum variables to exceed
	// their respective thresholds.
	PolicyDual Policy = iota
	// PolicyRange compares the derived max−min range against a single
	// threshold.
	PolicyRange
	// PolicyDifference compares the absolute day-over-day changes of both
	// variables against their thresholds and additionally requires the
	// signed changes to agree in direction.
	PolicyDifference
)

// Direction distinguishes "above" events (heat, high humidity/pressure) from
// "below" events (cold, low humidity/pressure).
type Direction int

const (
	Above Direction = iota
	Below
)

// EventKind enumerates every supported extreme-event type. The kind carries
// its comparator policy, direction, and default percentile so callers never
// dispatch on column-name conventions.
type EventKind int

const (
	HeatWave EventKind = iota
	ColdWave
	HighHumidityWave
	LowHumidityWave
	HighPressureWave
	LowPressureWave
	TemperatureRange
	HumidityRange
	PressureRange
	TemperatureDifference
	HumidityDifference
	PressureDifference
)

// kindInfo is the static metadata behind an EventKind.
type kindInfo struct {
	name       string
	code       string
	policy     Policy
	direction  Direction
	percentile float64
}

var kinds = map[EventKind]kindInfo{
	HeatWave:              {"heat_wave", "HW", PolicyDual, Above, 0.9},
	ColdWave:              {"cold_wave", "CW", PolicyDual, Below, 0.1},
	HighHumidityWave:      {"high_humidity_wave", "HHW", PolicyDual, Above, 0.9},
	LowHumidityWave:       {"low_humidity_wave", "LHW", PolicyDual, Below, 0.1},
	HighPressureWave:      {"high_pressure_wave", "HPW", PolicyDual, Above, 0.9},
	LowPressureWave:       {"low_pressure_wave", "LPW", PolicyDual, Below, 0.1},
	TemperatureRange:      {"temperature_range", "TAR", PolicyRange, Above, 0.9},
	HumidityRange:         {"humidity_range", "HAR", PolicyRange, Above, 0.9},
	PressureRange:         {"pressure_range", "PAR", PolicyRange, Above, 0.9},
	TemperatureDifference: {"temperature_difference", "TDD", PolicyDifference, Above, 0.9},
	HumidityDifference:    {"humidity_difference", "HDD", PolicyDifference, Above, 0.9},
	PressureDifference:    {"pressure_difference", "PDD", PolicyDifference, Above, 0.9},
}

// String returns the snake_case kind name, e.g. "heat_wave".
func (k EventKind) String() string { return kinds[k].name }

// Code returns the short metric prefix, e.g. "HW" yielding HWN/HWD/HWF.
func (k EventKind) Code() string { return kinds[k].code }

// Policy returns the comparator policy for the kind.
func (k EventKind) Policy() Policy { return kinds[k].policy }

// Direction returns Above or Below.
func (k EventKind) Direction() Direction { return kinds[k].direction }

// DefaultPercentile returns the conventional percentile for the kind: 0.9
// for "above" events, 0.1 for "below" events.
func (k EventKind) DefaultPercentile() float64 { return kinds[k].percentile }

// EventKinds lists every supported kind in declaration order.
func EventKinds() []EventKind {
	out := make([]EventKind, 0, len(kinds))
	for k := HeatWave; k <= PressureDifference; k++ {
		out = append(out, k)
	}
	return out
}

// ParseEventKind resolves a snake_case kind name to its EventKind.
func ParseEventKind(name string) (EventKind, error) {
	for k, info := range kinds {
		if info.name == name {
			return k, nil
		}
	}
	return 0, invalidInputf("unknown event kind %q", name)
}

// Classify labels each row of a normalized target series 1 if it exceeds
// its day-of-year threshold under the kind's policy, 0 otherwise. Rows with
// missing inputs (NaN observations, or the first row under the difference
// policy) always classify 0, never error.
func Classify(db Series, maxColumn, minColumn string, table *PercentileTable, kind EventKind) ([]int, error) {
	maxVals, err := db.Column(maxColumn)
	if err != nil {
		return nil, err
	}
	minVals, err := db.Column(minColumn)
	if err != nil {
		return nil, err
	}
	if len(db.Day365) != db.Len() {
		return nil, invalidInputf("series has no day-of-year ordinals; normalize it first")
	}

	labels := make([]int, db.Len())
	for i := range labels {
		day := db.Day365[i]
		if day < 1 || day > daysInTable {
			continue
		}
		th := table.At(day)

		exceeds := false
		switch kind.Policy() {
		case PolicyDual:
			exceeds = dualExceeds(maxVals[i], minVals[i], th, kind.Direction())
		case PolicyRange:
			exceeds = rangeExceeds(maxVals[i], minVals[i], th)
		case PolicyDifference:
			if i > 0 {
				exceeds = differenceExceeds(maxVals[i], maxVals[i-1], minVals[i], minVals[i-1], th)
			}
		}
		if exceeds {
			labels[i] = 1
		}
	}
	return labels, nil
}

// dualExceeds applies the dual-bound wave rule: both variables at or beyond
// their thresholds, on the side given by the direction. Any NaN operand
// fails the comparison.
func dualExceeds(maxV, minV float64, th Threshold, dir Direction) bool {
	if math.IsNaN(maxV) || math.IsNaN(minV) || math.IsNaN(th.Max) || math.IsNaN(th.Min) {
		return false
	}
	if dir == Above {
		return maxV >= th.Max && minV >= th.Min
	}
	return maxV <= th.Max && minV <= th.Min
}

// rangeExceeds compares the derived daily range (max − min) against the
// single threshold.
func rangeExceeds(maxV, minV float64, th Threshold) bool {
	if math.IsNaN(maxV) || math.IsNaN(minV) || math.IsNaN(th.Max) {
		return false
	}
	return maxV-minV >= th.Max
}

// differenceExceeds applies the day-to-day difference rule: the absolute
// changes of both variables at or beyond their thresholds, with the signed
// changes agreeing in direction (both rising, both falling, or both flat).
func differenceExceeds(maxV, prevMax, minV, prevMin float64, th Threshold) bool {
	if math.IsNaN(maxV) || math.IsNaN(prevMax) || math.IsNaN(minV) || math.IsNaN(prevMin) ||
		math.IsNaN(th.Max) || math.IsNaN(th.Min) {
		return false
	}
	difMax := maxV - prevMax
	difMin := minV - prevMin
	control := difMax*difMin > 0 || (difMax == 0 && difMin == 0)
	return control && math.Abs(difMax) >= th.Max && math.Abs(difMin) >= th.Min
}

// DeriveRange appends a derived max−min range column to a copy of the
// series. It is applied identically to the climatic normal (before
// percentile estimation) and to the target series (before classification)
// for range event kinds.
func DeriveRange(s Series, maxColumn, minColumn, rangeColumn string) (Series, error) {
	maxVals, err := s.Column(maxColumn)
	if err != nil {
		return Series{}, err
	}
	minVals, err := s.Column(minColumn)
	if err != nil {
		return Series{}, err
	}
	out := s.Clone()
	rng := make([]float64, s.Len())
	for i := range rng {
		rng[i] = maxVals[i] - minVals[i]
	}
	out.Columns[rangeColumn] = rng
	return out, nil
}

// DeriveDifferences appends absolute day-over-day difference columns for the
// max and min variables to a copy of the series. The first row has no
// predecessor and receives NaN, which downstream classification treats as
// not exceeding.
func DeriveDifferences(s Series, maxColumn, minColumn, difMaxColumn, difMinColumn string) (Series, error) {
	maxVals, err := s.Column(maxColumn)
	if err != nil {
		return Series{}, err
	}
	minVals, err := s.Column(minColumn)
	if err != nil {
		return Series{}, err
	}
	out := s.Clone()
	difMax := make([]float64, s.Len())
	difMin := make([]float64, s.Len())
	for i := range difMax {
		if i == 0 {
			difMax[i] = math.NaN()
			difMin[i] = math.NaN()
			continue
		}
		difMax[i] = math.Abs(maxVals[i] - maxVals[i-1])
		difMin[i] = math.Abs(minVals[i] - minVals[i-1])
	}
	out.Columns[difMaxColumn] = difMax
	out.Columns[difMinColumn] = difMin
	return out, nil
}
