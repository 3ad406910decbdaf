package climate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeasonOf(t *testing.T) {
	cases := []struct {
		month time.Month
		want  Season
	}{
		{time.December, 1}, {time.January, 1}, {time.February, 1},
		{time.March, 2}, {time.April, 2}, {time.May, 2},
		{time.June, 3}, {time.July, 3}, {time.August, 3},
		{time.September, 4}, {time.October, 4}, {time.November, 4},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SeasonOf(c.month), c.month.String())
	}
}

func TestExtractEvents(t *testing.T) {
	t.Run("contiguous blocks become discrete events", func(t *testing.T) {
		s := AssignDayOfYear(makeConstantSeries(2003, 2003, 20, 10))
		wave := make([]int, s.Len())
		for i := 10; i < 15; i++ { // Jan 11..15
			wave[i] = 1
		}
		for i := 200; i < 203; i++ { // Jul 20..22
			wave[i] = 1
		}

		events := ExtractEvents(s, wave)
		require.Len(t, events, 2)

		assert.Equal(t, date(2003, time.January, 11), events[0].Start)
		assert.Equal(t, date(2003, time.January, 15), events[0].End)
		assert.Equal(t, 5, events[0].Duration)
		assert.Equal(t, 2003, events[0].Year)
		assert.Equal(t, Season(1), events[0].Season)
		assert.Equal(t, 2003, events[0].SeasonYear)

		assert.Equal(t, date(2003, time.July, 20), events[1].Start)
		assert.Equal(t, 3, events[1].Duration)
		assert.Equal(t, Season(3), events[1].Season)
	})

	t.Run("wave reaching the last row closes", func(t *testing.T) {
		s := AssignDayOfYear(makeConstantSeries(2003, 2003, 20, 10))
		wave := make([]int, s.Len())
		for i := s.Len() - 4; i < s.Len(); i++ {
			wave[i] = 1
		}

		events := ExtractEvents(s, wave)
		require.Len(t, events, 1)
		assert.Equal(t, date(2003, time.December, 31), events[0].End)
		assert.Equal(t, 4, events[0].Duration)
	})

	t.Run("event crossing New Year is one event owned by its first day", func(t *testing.T) {
		s, err := Normalize(makeConstantSeries(1999, 2000, 20, 10), NormalizeOptions{})
		require.NoError(t, err)

		wave := make([]int, s.Len())
		// December 30, 1999 through January 2, 2000.
		for i := 363; i < 367; i++ {
			wave[i] = 1
		}

		events := ExtractEvents(s, wave)
		require.Len(t, events, 1)

		ev := events[0]
		assert.Equal(t, date(1999, time.December, 30), ev.Start)
		assert.Equal(t, date(2000, time.January, 2), ev.End)
		assert.Equal(t, 4, ev.Duration)
		assert.Equal(t, 1999, ev.Year, "calendar attribution keeps the start year")
		assert.Equal(t, Season(1), ev.Season)
		assert.Equal(t, 2000, ev.SeasonYear, "December start rolls into next winter")
	})

	t.Run("no wave days yields no events", func(t *testing.T) {
		s := AssignDayOfYear(makeConstantSeries(2003, 2003, 20, 10))
		assert.Empty(t, ExtractEvents(s, make([]int, s.Len())))
	})
}
