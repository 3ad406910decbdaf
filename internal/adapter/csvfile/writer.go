package csvfile

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/couchcryptid/climate-extremes/internal/climate"
)

// WriteDetection writes the per-day detection trace: date, the series value
// columns in sorted order, the exceedance flag, and the wave flag.
func WriteDetection(path string, det *climate.Detection) error {
	names := make([]string, 0, len(det.Series.Columns))
	for name := range det.Series.Columns {
		names = append(names, name)
	}
	sort.Strings(names)

	header := append([]string{"date"}, names...)
	header = append(header, "exceedance", "wave")

	rows := make([][]string, 0, det.Series.Len())
	for i := 0; i < det.Series.Len(); i++ {
		row := make([]string, 0, len(header))
		row = append(row, det.Series.Dates[i].Format(dateLayout))
		for _, name := range names {
			row = append(row, formatCell(det.Series.Columns[name][i]))
		}
		row = append(row,
			strconv.Itoa(det.Exceedance[i]),
			strconv.Itoa(det.Wave[i]))
		rows = append(rows, row)
	}
	return writeAll(path, header, rows)
}

// WriteYearlyMetrics writes one row per year: count, max duration, total
// days.
func WriteYearlyMetrics(path string, metrics []climate.YearMetrics) error {
	header := []string{"year", "count", "max_duration", "total_days"}
	rows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, []string{
			strconv.Itoa(m.Year),
			strconv.Itoa(m.Count),
			strconv.Itoa(m.MaxDuration),
			strconv.Itoa(m.TotalDays),
		})
	}
	return writeAll(path, header, rows)
}

// WriteSeasonalMetrics writes one row per year and season.
func WriteSeasonalMetrics(path string, metrics []climate.SeasonMetrics) error {
	header := []string{"year", "season", "count", "max_duration", "total_days"}
	rows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, []string{
			strconv.Itoa(m.Year),
			strconv.Itoa(int(m.Season)),
			strconv.Itoa(m.Count),
			strconv.Itoa(m.MaxDuration),
			strconv.Itoa(m.TotalDays),
		})
	}
	return writeAll(path, header, rows)
}

// WriteIntensities writes one row per event with its peak and anomaly.
func WriteIntensities(path string, intensities []climate.EventIntensity) error {
	header := []string{"start", "end", "duration", "year", "season", "peak_date", "peak_value", "anomaly"}
	rows := make([][]string, 0, len(intensities))
	for _, in := range intensities {
		rows = append(rows, []string{
			in.Event.Start.Format(dateLayout),
			in.Event.End.Format(dateLayout),
			strconv.Itoa(in.Event.Duration),
			strconv.Itoa(in.Year),
			strconv.Itoa(int(in.Season)),
			in.PeakDate.Format(dateLayout),
			formatCell(in.PeakValue),
			formatCell(in.Anomaly),
		})
	}
	return writeAll(path, header, rows)
}

func writeAll(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close() //nolint:errcheck // returning the write error
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close() //nolint:errcheck // returning the write error
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close() //nolint:errcheck // returning the write error
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
