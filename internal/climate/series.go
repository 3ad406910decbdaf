package climate

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Series is a column-oriented daily time series: one row per calendar date,
// ordered by date, with named float64 measurement columns. Missing
// observations are NaN. Day365 holds the day-of-year ordinal for each row;
// after DropLeapDay it is the canonical leap-adjusted ordinal in [1, 365].
type Series struct {
	Dates   []time.Time
	Day365  []int
	Columns map[string][]float64
}

// InvalidInputError reports malformed caller input: an empty series, a
// missing column, or out-of-range detection parameters. It is returned
// eagerly so a bad input fails at the entry point rather than as a confusing
// downstream panic.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

func invalidInputf(format string, args ...any) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

// Len returns the number of rows.
func (s Series) Len() int { return len(s.Dates) }

// Column returns the named measurement column or an error if absent.
func (s Series) Column(name string) ([]float64, error) {
	col, ok := s.Columns[name]
	if !ok {
		return nil, invalidInputf("series has no column %q", name)
	}
	return col, nil
}

// Years returns the distinct calendar years covered by the series, ascending.
func (s Series) Years() []int {
	seen := make(map[int]bool)
	var years []int
	for _, d := range s.Dates {
		y := d.Year()
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

// Clone returns a deep copy. Mutating the copy never affects the original.
func (s Series) Clone() Series {
	out := Series{
		Dates:   append([]time.Time(nil), s.Dates...),
		Day365:  append([]int(nil), s.Day365...),
		Columns: make(map[string][]float64, len(s.Columns)),
	}
	for name, col := range s.Columns {
		out.Columns[name] = append([]float64(nil), col...)
	}
	return out
}

// midnightUTC truncates a timestamp to its calendar date in UTC. All series
// dates are stored in this form so date equality is exact.
func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DayOfYear365 returns the canonical leap-adjusted day-of-year for a date:
// the naive ordinal, minus one for dates after February 29 in a leap year.
// February 29 itself has no canonical ordinal and must be removed first.
func DayOfYear365(d time.Time) int {
	yd := d.YearDay()
	if isLeapYear(d.Year()) && yd > 60 {
		return yd - 1
	}
	return yd
}

// DateOfDay365 maps a day-of-year ordinal back to a calendar date by naive
// date arithmetic from January 1, mirroring how reference windows are
// anchored during percentile estimation.
func DateOfDay365(day365, year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day365-1)
}

// FillMissingDates returns a copy of the series with one row per calendar
// date from January 1 of its first year through December 31 of its last
// year. Inserted rows carry NaN in every measurement column and a naive
// day-of-year ordinal; rows already present are untouched.
func FillMissingDates(s Series) (Series, error) {
	if s.Len() == 0 {
		return Series{}, invalidInputf("cannot fill dates of an empty series")
	}

	index := make(map[time.Time]int, s.Len())
	minYear, maxYear := s.Dates[0].Year(), s.Dates[0].Year()
	for i, d := range s.Dates {
		d = midnightUTC(d)
		index[d] = i
		if d.Year() < minYear {
			minYear = d.Year()
		}
		if d.Year() > maxYear {
			maxYear = d.Year()
		}
	}

	begin := time.Date(minYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(maxYear, time.December, 31, 0, 0, 0, 0, time.UTC)

	out := Series{Columns: make(map[string][]float64, len(s.Columns))}
	for d := begin; !d.After(end); d = d.AddDate(0, 0, 1) {
		row, present := index[d]
		out.Dates = append(out.Dates, d)
		if present && s.Day365 != nil {
			out.Day365 = append(out.Day365, s.Day365[row])
		} else {
			out.Day365 = append(out.Day365, d.YearDay())
		}
		for name, col := range s.Columns {
			if present {
				out.Columns[name] = append(out.Columns[name], col[row])
			} else {
				out.Columns[name] = append(out.Columns[name], math.NaN())
			}
		}
	}
	return out, nil
}

// AssignDayOfYear returns a copy with Day365 set to the naive calendar
// ordinal of each row's date (1..365, or 1..366 in leap years).
func AssignDayOfYear(s Series) Series {
	out := s.Clone()
	out.Day365 = make([]int, s.Len())
	for i, d := range s.Dates {
		out.Day365[i] = d.YearDay()
	}
	return out
}

// DropLeapDay returns a copy with every February 29 row removed. For each
// leap year that actually contained a February 29 row, the Day365 ordinal of
// that year's rows dated March 1 or later is decremented by one, yielding
// the canonical [1, 365] range. Applying DropLeapDay to an already
// normalized series is a no-op.
func DropLeapDay(s Series) Series {
	removed := make(map[int]bool)
	for _, d := range s.Dates {
		if d.Month() == time.February && d.Day() == 29 {
			removed[d.Year()] = true
		}
	}

	out := Series{Columns: make(map[string][]float64, len(s.Columns))}
	for i, d := range s.Dates {
		if d.Month() == time.February && d.Day() == 29 {
			continue
		}
		out.Dates = append(out.Dates, d)
		if s.Day365 != nil {
			day := s.Day365[i]
			if removed[d.Year()] && d.Month() >= time.March {
				day--
			}
			out.Day365 = append(out.Day365, day)
		}
		for name, col := range s.Columns {
			out.Columns[name] = append(out.Columns[name], col[i])
		}
	}
	return out
}

// NormalizeOptions describes what preprocessing a caller-supplied series
// still needs before detection.
type NormalizeOptions struct {
	// HasDay365 indicates the series already carries a day-of-year column.
	HasDay365 bool
	// Complete indicates the series has no missing calendar dates.
	Complete bool
}

// Normalize prepares a raw series for detection: gap-fills missing dates
// unless the caller vouches the series is complete, assigns the naive
// day-of-year unless one was supplied, and removes the leap day. The result
// satisfies the detection preconditions: contiguous full-year span, no
// February 29, Day365 in [1, 365].
func Normalize(s Series, opts NormalizeOptions) (Series, error) {
	var err error
	if !opts.Complete {
		s, err = FillMissingDates(s)
		if err != nil {
			return Series{}, err
		}
	} else if s.Len() == 0 {
		return Series{}, invalidInputf("cannot normalize an empty series")
	} else {
		s = s.Clone()
		for i, d := range s.Dates {
			s.Dates[i] = midnightUTC(d)
		}
	}
	if !opts.HasDay365 {
		s = AssignDayOfYear(s)
	}
	return DropLeapDay(s), nil
}
