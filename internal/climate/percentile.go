package climate

import (
	"math"
	"time"
)

// daysInTable is the number of canonical day-of-year entries: a full year
// with the leap day removed.
const daysInTable = 365

// Threshold holds the percentile threshold(s) for one day of the year. For
// dual-bound event kinds Max and Min carry the thresholds of the maximum and
// minimum variables; single-bound kinds use Max only and leave Min NaN.
type Threshold struct {
	Max float64
	Min float64
}

// PercentileTable maps each canonical day-of-year (1..365) to its threshold,
// derived from the climatic normal. Tables are immutable once built and may
// be reused across detections on the same climatology.
type PercentileTable struct {
	Quantile   float64
	WindowSize int
	Dual       bool

	thresholds [daysInTable]Threshold
}

// At returns the threshold for a canonical day-of-year in [1, 365].
func (t *PercentileTable) At(day365 int) Threshold {
	return t.thresholds[day365-1]
}

// Len returns the number of entries, always 365 for a built table.
func (t *PercentileTable) Len() int { return daysInTable }

// dateIndex is a date-keyed view of one measurement column, precomputed so
// window extraction is a map lookup per day instead of a scan per call.
type dateIndex struct {
	values map[time.Time]float64
	years  []int
}

func newDateIndex(s Series, column string) (*dateIndex, error) {
	col, err := s.Column(column)
	if err != nil {
		return nil, err
	}
	idx := &dateIndex{
		values: make(map[time.Time]float64, s.Len()),
		years:  s.Years(),
	}
	for i, d := range s.Dates {
		idx.values[midnightUTC(d)] = col[i]
	}
	return idx, nil
}

// windowSample pools the values of the centered window around the given
// day-of-year, one window occurrence per reference year. Windows crossing a
// year boundary wrap into the adjacent calendar year by plain date
// arithmetic; dates outside the reference span simply contribute nothing,
// so edge years yield a smaller sample rather than an error.
func (idx *dateIndex) windowSample(day365, windowSize int) []float64 {
	half := (windowSize - 1) / 2
	sample := make([]float64, 0, windowSize*len(idx.years))
	for _, year := range idx.years {
		center := DateOfDay365(day365, year)
		for off := -half; off <= half; off++ {
			v, ok := idx.values[center.AddDate(0, 0, off)]
			if ok && !math.IsNaN(v) {
				sample = append(sample, v)
			}
		}
	}
	return sample
}

func validatePercentileParams(q float64, windowSize int) error {
	if q < 0 || q > 1 {
		return invalidInputf("percentile value %v outside [0, 1]", q)
	}
	if windowSize < 1 || windowSize%2 == 0 {
		return invalidInputf("window size %d must be a positive odd number", windowSize)
	}
	return nil
}

// PercentileForDay computes the q-quantile of one column of the climatic
// normal for a single canonical day-of-year, pooling the centered window
// across every year of the reference series.
func PercentileForDay(normal Series, day365 int, column string, q float64, windowSize int) (float64, error) {
	if err := validatePercentileParams(q, windowSize); err != nil {
		return math.NaN(), err
	}
	if day365 < 1 || day365 > daysInTable {
		return math.NaN(), invalidInputf("day of year %d outside [1, 365]", day365)
	}
	if normal.Len() == 0 {
		return math.NaN(), invalidInputf("climatic normal is empty")
	}
	idx, err := newDateIndex(normal, column)
	if err != nil {
		return math.NaN(), err
	}
	return quantile(idx.windowSample(day365, windowSize), q), nil
}

// BuildPercentileTable derives the full 365-entry threshold table from the
// climatic normal. maxColumn is always required; pass an empty minColumn for
// single-threshold (range) kinds. This is the expensive calibration step,
// O(365 * years * window) lookups, so callers reusing a climatology should
// build once and pass the table to subsequent detections.
func BuildPercentileTable(normal Series, maxColumn, minColumn string, q float64, windowSize int) (*PercentileTable, error) {
	if err := validatePercentileParams(q, windowSize); err != nil {
		return nil, err
	}
	if normal.Len() == 0 {
		return nil, invalidInputf("climatic normal is empty")
	}

	maxIdx, err := newDateIndex(normal, maxColumn)
	if err != nil {
		return nil, err
	}
	var minIdx *dateIndex
	if minColumn != "" {
		minIdx, err = newDateIndex(normal, minColumn)
		if err != nil {
			return nil, err
		}
	}

	table := &PercentileTable{
		Quantile:   q,
		WindowSize: windowSize,
		Dual:       minIdx != nil,
	}
	for day := 1; day <= daysInTable; day++ {
		th := Threshold{
			Max: quantile(maxIdx.windowSample(day, windowSize), q),
			Min: math.NaN(),
		}
		if minIdx != nil {
			th.Min = quantile(minIdx.windowSample(day, windowSize), q)
		}
		table.thresholds[day-1] = th
	}
	return table, nil
}
