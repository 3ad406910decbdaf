package climate

import (
	"math"
	"sort"
)

// quantile returns the q-quantile (q in [0, 1]) of sample using linear
// interpolation between order statistics, the R-7 definition shared by most
// statistics packages. NaN values are skipped; an empty or all-NaN sample
// yields NaN.
func quantile(sample []float64, q float64) float64 {
	vals := make([]float64, 0, len(sample))
	for _, v := range sample {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)

	if len(vals) == 1 {
		return vals[0]
	}

	h := float64(len(vals)-1) * q
	lo := int(math.Floor(h))
	if lo >= len(vals)-1 {
		return vals[len(vals)-1]
	}
	return vals[lo] + (h-float64(lo))*(vals[lo+1]-vals[lo])
}
