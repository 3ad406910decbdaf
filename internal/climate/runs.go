package climate

// minRunLength is the minimum number of consecutive exceedance days that
// qualifies as a wave.
const minRunLength = 3

// MarkWaves scans a 0/1 exceedance sequence and returns a same-length 0/1
// sequence marking every day inside a wave: a maximal run of at least three
// consecutive exceedance days. Overlapping qualifying windows merge, so five
// consecutive exceedance days yield one five-day block. Runs of one or two
// days mark nothing, and a single non-exceedance day terminates a run.
func MarkWaves(exceedance []int) []int {
	wave := make([]int, len(exceedance))
	runStart := -1
	for i, v := range exceedance {
		if v == 1 {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		markRun(wave, runStart, i)
		runStart = -1
	}
	markRun(wave, runStart, len(exceedance))
	return wave
}

// markRun marks [start, end) if the run is long enough. A negative start
// means no run is open.
func markRun(wave []int, start, end int) {
	if start < 0 || end-start < minRunLength {
		return
	}
	for i := start; i < end; i++ {
		wave[i] = 1
	}
}
