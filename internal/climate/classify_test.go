package climate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constantTable builds a table with the same threshold every day.
func constantTable(maxTh, minTh float64) *PercentileTable {
	table := &PercentileTable{Quantile: 0.9, WindowSize: 15, Dual: !math.IsNaN(minTh)}
	for day := 1; day <= daysInTable; day++ {
		table.thresholds[day-1] = Threshold{Max: maxTh, Min: minTh}
	}
	return table
}

// seriesOf builds a normalized series starting January 1, 2003 with the
// given max/min values.
func seriesOf(maxVals, minVals []float64) Series {
	s := Series{
		Dates:   make([]time.Time, len(maxVals)),
		Day365:  make([]int, len(maxVals)),
		Columns: map[string][]float64{"tmax": maxVals, "tmin": minVals},
	}
	start := date(2003, time.January, 1)
	for i := range maxVals {
		s.Dates[i] = start.AddDate(0, 0, i)
		s.Day365[i] = i + 1
	}
	return s
}

func TestClassifyDual(t *testing.T) {
	nan := math.NaN()
	table := constantTable(20, 10)

	t.Run("above direction needs both variables at or over threshold", func(t *testing.T) {
		s := seriesOf(
			[]float64{25, 20, 19, 25, nan},
			[]float64{15, 10, 15, 9, 15},
		)
		labels, err := Classify(s, "tmax", "tmin", table, HeatWave)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 1, 0, 0, 0}, labels)
	})

	t.Run("below direction inverts both comparisons", func(t *testing.T) {
		s := seriesOf(
			[]float64{15, 20, 21, 15},
			[]float64{5, 10, 5, 11},
		)
		labels, err := Classify(s, "tmax", "tmin", table, ColdWave)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 1, 0, 0}, labels)
	})

	t.Run("NaN threshold never exceeds", func(t *testing.T) {
		s := seriesOf([]float64{25}, []float64{15})
		labels, err := Classify(s, "tmax", "tmin", constantTable(20, nan), HeatWave)
		require.NoError(t, err)
		assert.Equal(t, []int{0}, labels)
	})
}

func TestClassifyRange(t *testing.T) {
	// Single threshold on the max-min spread.
	table := constantTable(12, math.NaN())

	s := seriesOf(
		[]float64{25, 25, 25, math.NaN()},
		[]float64{13, 12, 14, 10},
	)
	labels, err := Classify(s, "tmax", "tmin", table, TemperatureRange)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 0, 0}, labels)
}

func TestClassifyDifference(t *testing.T) {
	table := constantTable(5, 5)

	t.Run("both jumps past threshold with agreeing sign", func(t *testing.T) {
		s := seriesOf(
			[]float64{20, 26, 26, 20, 26},
			[]float64{10, 16, 16, 10, 4},
		)
		// Row 0 has no predecessor. Row 1 jumps +6/+6. Row 2 is flat. Row 3
		// drops -6/-6. Row 4 moves +6/-6, signs disagree.
		labels, err := Classify(s, "tmax", "tmin", table, TemperatureDifference)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 0, 1, 0}, labels)
	})

	t.Run("flat days agree but fail the magnitude bound", func(t *testing.T) {
		s := seriesOf(
			[]float64{20, 20},
			[]float64{10, 10},
		)
		labels, err := Classify(s, "tmax", "tmin", constantTable(0, 0), TemperatureDifference)
		require.NoError(t, err)
		// Zero thresholds make the flat day qualify: |0| >= 0 with both
		// changes zero.
		assert.Equal(t, []int{0, 1}, labels)
	})

	t.Run("NaN neighbor blocks both adjacent rows", func(t *testing.T) {
		s := seriesOf(
			[]float64{20, math.NaN(), 26},
			[]float64{10, math.NaN(), 16},
		)
		labels, err := Classify(s, "tmax", "tmin", table, TemperatureDifference)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 0, 0}, labels)
	})
}

func TestClassifyInputErrors(t *testing.T) {
	table := constantTable(20, 10)

	t.Run("missing column", func(t *testing.T) {
		s := seriesOf([]float64{25}, []float64{15})
		_, err := Classify(s, "bogus", "tmin", table, HeatWave)
		assert.Error(t, err)
	})

	t.Run("missing day-of-year ordinals", func(t *testing.T) {
		s := seriesOf([]float64{25}, []float64{15})
		s.Day365 = nil
		_, err := Classify(s, "tmax", "tmin", table, HeatWave)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "day-of-year")
	})
}

func TestDeriveRange(t *testing.T) {
	s := seriesOf([]float64{25, math.NaN()}, []float64{13, 10})

	out, err := DeriveRange(s, "tmax", "tmin", "range")
	require.NoError(t, err)

	rng := out.Columns["range"]
	assert.Equal(t, 12.0, rng[0])
	assert.True(t, math.IsNaN(rng[1]))
	_, hasOriginal := s.Columns["range"]
	assert.False(t, hasOriginal, "input untouched")
}

func TestDeriveDifferences(t *testing.T) {
	s := seriesOf([]float64{20, 26, 23}, []float64{10, 16, 18})

	out, err := DeriveDifferences(s, "tmax", "tmin", "dif_max", "dif_min")
	require.NoError(t, err)

	difMax := out.Columns["dif_max"]
	difMin := out.Columns["dif_min"]
	assert.True(t, math.IsNaN(difMax[0]), "first row has no predecessor")
	assert.True(t, math.IsNaN(difMin[0]))
	assert.Equal(t, 6.0, difMax[1])
	assert.Equal(t, 6.0, difMin[1])
	assert.Equal(t, 3.0, difMax[2], "differences are absolute")
	assert.Equal(t, 2.0, difMin[2])
}

func TestEventKindMetadata(t *testing.T) {
	assert.Len(t, EventKinds(), 12)

	assert.Equal(t, "heat_wave", HeatWave.String())
	assert.Equal(t, "HW", HeatWave.Code())
	assert.Equal(t, PolicyDual, HeatWave.Policy())
	assert.Equal(t, Above, HeatWave.Direction())
	assert.Equal(t, 0.9, HeatWave.DefaultPercentile())

	assert.Equal(t, Below, ColdWave.Direction())
	assert.Equal(t, 0.1, ColdWave.DefaultPercentile())
	assert.Equal(t, PolicyRange, PressureRange.Policy())
	assert.Equal(t, PolicyDifference, HumidityDifference.Policy())

	k, err := ParseEventKind("low_humidity_wave")
	require.NoError(t, err)
	assert.Equal(t, LowHumidityWave, k)

	_, err = ParseEventKind("firenado")
	require.Error(t, err)
	var invalid *InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}
