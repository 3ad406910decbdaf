package climate

import "time"

// Season is a meteorological season: 1 = Dec–Feb, 2 = Mar–May, 3 = Jun–Aug,
// 4 = Sep–Nov.
type Season int

// seasonByMonth is the fixed month→season map.
var seasonByMonth = map[time.Month]Season{
	time.January:   1,
	time.February:  1,
	time.March:     2,
	time.April:     2,
	time.May:       2,
	time.June:      3,
	time.July:      3,
	time.August:    3,
	time.September: 4,
	time.October:   4,
	time.November:  4,
	time.December:  1,
}

// SeasonOf returns the meteorological season of a month.
func SeasonOf(m time.Month) Season { return seasonByMonth[m] }

// WaveEvent is one maximal qualifying run of exceedance days.
type WaveEvent struct {
	Start    time.Time
	End      time.Time
	Duration int

	// Year is the calendar year of the first day; yearly metrics group by it.
	Year int
	// Season is the meteorological season of the first day's month.
	Season Season
	// SeasonYear is the year used for seasonal grouping: the calendar year
	// of the first day, plus one when the event starts in December. The
	// meteorological year begins in December, so a late-December event
	// belongs to the following year's winter.
	SeasonYear int
}

// ExtractEvents groups inside-wave days into discrete events: maximal
// contiguous blocks of wave==1 over the whole series, so a run crossing a
// year boundary is a single event attributed by its first day.
func ExtractEvents(s Series, wave []int) []WaveEvent {
	var events []WaveEvent
	start := -1
	for i := 0; i <= len(wave); i++ {
		inWave := i < len(wave) && wave[i] == 1
		if inWave {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			events = append(events, newWaveEvent(s, start, i-1))
			start = -1
		}
	}
	return events
}

func newWaveEvent(s Series, first, last int) WaveEvent {
	startDate := s.Dates[first]
	ev := WaveEvent{
		Start:      startDate,
		End:        s.Dates[last],
		Duration:   last - first + 1,
		Year:       startDate.Year(),
		Season:     SeasonOf(startDate.Month()),
		SeasonYear: startDate.Year(),
	}
	if startDate.Month() == time.December {
		ev.SeasonYear++
	}
	return ev
}
