// Package csvfile reads daily climate series from CSV files and writes
// detection results back out, for batch use outside the service.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/climate-extremes/internal/climate"
)

// dateLayout is the expected format of the date column.
const dateLayout = "2006-01-02"

// ReadSeries loads a daily series from a CSV file. The header row must name
// dateColumn and every requested value column; empty cells and the markers
// NA, NaN, and null become missing values.
func ReadSeries(path, dateColumn string, valueColumns []string) (climate.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return climate.Series{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return climate.Series{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 2 {
		return climate.Series{}, fmt.Errorf("%s: need a header row and at least one data row", path)
	}

	header := records[0]
	dateIdx := -1
	valueIdx := make(map[string]int, len(valueColumns))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == dateColumn {
			dateIdx = i
		}
		for _, want := range valueColumns {
			if name == want {
				valueIdx[want] = i
			}
		}
	}
	if dateIdx < 0 {
		return climate.Series{}, fmt.Errorf("%s: missing date column %q", path, dateColumn)
	}
	for _, want := range valueColumns {
		if _, ok := valueIdx[want]; !ok {
			return climate.Series{}, fmt.Errorf("%s: missing value column %q", path, want)
		}
	}

	rows := records[1:]
	series := climate.Series{
		Dates:   make([]time.Time, len(rows)),
		Columns: make(map[string][]float64, len(valueColumns)),
	}
	for _, name := range valueColumns {
		series.Columns[name] = make([]float64, len(rows))
	}

	for i, rec := range rows {
		date, err := time.ParseInLocation(dateLayout, strings.TrimSpace(rec[dateIdx]), time.UTC)
		if err != nil {
			return climate.Series{}, fmt.Errorf("%s row %d: bad date %q: %w", path, i+2, rec[dateIdx], err)
		}
		series.Dates[i] = date

		for name, idx := range valueIdx {
			v, err := parseCell(rec[idx])
			if err != nil {
				return climate.Series{}, fmt.Errorf("%s row %d, column %s: %w", path, i+2, name, err)
			}
			series.Columns[name][i] = v
		}
	}
	return series, nil
}

func parseCell(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "", "na", "nan", "null":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", raw)
	}
	return v, nil
}
