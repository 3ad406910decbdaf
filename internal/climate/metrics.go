package climate

import (
	"math"
	"sort"
	"time"
)

// YearMetrics summarizes the wave events attributed to one calendar year:
// event count (N), longest single event (D), and total days inside events
// (F). Years without events report zeros.
type YearMetrics struct {
	Year        int
	Count       int
	MaxDuration int
	TotalDays   int
}

// YearlyMetrics aggregates inside-wave days into events and reports N/D/F
// per calendar year of the series span. Every year in the span gets a row,
// zero-filled when no event started in it. An event is attributed to the
// year of its first day, even when it runs across New Year.
func YearlyMetrics(s Series, wave []int) []YearMetrics {
	byYear := make(map[int]*YearMetrics)
	var out []YearMetrics
	for _, year := range s.Years() {
		out = append(out, YearMetrics{Year: year})
	}
	for i := range out {
		byYear[out[i].Year] = &out[i]
	}

	for _, ev := range ExtractEvents(s, wave) {
		m, ok := byYear[ev.Year]
		if !ok {
			continue
		}
		m.Count++
		m.TotalDays += ev.Duration
		if ev.Duration > m.MaxDuration {
			m.MaxDuration = ev.Duration
		}
	}
	return out
}

// SeasonMetrics summarizes the wave events of one (year, season) bucket.
type SeasonMetrics struct {
	Year        int
	Season      Season
	Count       int
	MaxDuration int
	TotalDays   int
}

// SeasonalMetrics aggregates events into meteorological (year, season)
// buckets. An event is bucketed by the season of its first day's month and
// by its SeasonYear, so December events roll into the following year. The
// output covers the full year×season cross-product of the series span
// (extended by one year when a December event rolls past the last year),
// zero-filled, ordered by year then season.
func SeasonalMetrics(s Series, wave []int) []SeasonMetrics {
	years := s.Years()
	present := make(map[int]bool, len(years))
	for _, y := range years {
		present[y] = true
	}

	events := ExtractEvents(s, wave)
	for _, ev := range events {
		if !present[ev.SeasonYear] {
			present[ev.SeasonYear] = true
			years = append(years, ev.SeasonYear)
		}
	}
	sort.Ints(years)

	byBucket := make(map[[2]int]*SeasonMetrics, len(years)*4)
	out := make([]SeasonMetrics, 0, len(years)*4)
	for _, year := range years {
		for season := Season(1); season <= 4; season++ {
			out = append(out, SeasonMetrics{Year: year, Season: season})
		}
	}
	for i := range out {
		byBucket[[2]int{out[i].Year, int(out[i].Season)}] = &out[i]
	}

	for _, ev := range events {
		m, ok := byBucket[[2]int{ev.SeasonYear, int(ev.Season)}]
		if !ok {
			continue
		}
		m.Count++
		m.TotalDays += ev.Duration
		if ev.Duration > m.MaxDuration {
			m.MaxDuration = ev.Duration
		}
	}
	return out
}

// EventIntensity reports the peak observation inside one wave event and its
// anomaly above the percentile threshold on the peak day.
type EventIntensity struct {
	Event     WaveEvent
	PeakDate  time.Time
	PeakValue float64
	// Anomaly is the peak value minus the threshold for the peak day's
	// canonical day-of-year.
	Anomaly float64
	// Year and Season bucket the peak day; with seasonal-year attribution a
	// December peak shifts to the following year.
	Year   int
	Season Season
}

// Intensity computes, for every wave event, the day with the maximum value
// of peakColumn inside the event and its anomaly relative to the table's
// max-variable threshold on that day. With seasonalYear set, December peaks
// are attributed to the following year and peaks falling in the final,
// necessarily incomplete season year of the series are dropped, since that
// year's winter cannot be completed. A series with no events yields an
// empty result.
func Intensity(s Series, wave []int, peakColumn string, table *PercentileTable, seasonalYear bool) ([]EventIntensity, error) {
	col, err := s.Column(peakColumn)
	if err != nil {
		return nil, err
	}

	rowForDate := make(map[time.Time]int, s.Len())
	for i, d := range s.Dates {
		rowForDate[d] = i
	}

	years := s.Years()
	lastYear := 0
	if len(years) > 0 {
		lastYear = years[len(years)-1]
	}

	var out []EventIntensity
	for _, ev := range ExtractEvents(s, wave) {
		first, lastRow := rowForDate[ev.Start], rowForDate[ev.End]
		peakRow := -1
		peak := math.Inf(-1)
		for i := first; i <= lastRow; i++ {
			if !math.IsNaN(col[i]) && col[i] > peak {
				peak = col[i]
				peakRow = i
			}
		}
		if peakRow < 0 {
			continue
		}

		peakDate := s.Dates[peakRow]
		year := peakDate.Year()
		if seasonalYear && peakDate.Month() == time.December {
			year++
		}
		if seasonalYear && year > lastYear {
			continue
		}

		out = append(out, EventIntensity{
			Event:     ev,
			PeakDate:  peakDate,
			PeakValue: peak,
			Anomaly:   peak - table.At(s.Day365[peakRow]).Max,
			Year:      year,
			Season:    SeasonOf(peakDate.Month()),
		})
	}
	return out, nil
}
