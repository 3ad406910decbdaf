// Command genclimate generates synthetic daily climate CSV fixtures with a
// seasonal cycle, noise, and an optional injected extreme spell, for
// exercising the detection pipeline without real station data.
//
// Usage:
//
//	go run ./cmd/genclimate -out normal.csv -from 1961 -to 1990
//	go run ./cmd/genclimate -out target.csv -from 2003 -to 2003 \
//	  -spike-start 2003-07-28 -spike-days 6 -spike-delta 8
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output CSV path")
	fromYear := flag.Int("from", 1961, "first year")
	toYear := flag.Int("to", 1990, "last year")
	seed := flag.Int64("seed", 42, "random seed")
	meanTMax := flag.Float64("mean-tmax", 22, "annual mean daily maximum temperature")
	amplitude := flag.Float64("amplitude", 8, "annual cycle amplitude")
	noise := flag.Float64("noise", 2, "noise standard deviation")
	missing := flag.Float64("missing", 0, "fraction of days with missing values")
	spikeStart := flag.String("spike-start", "", "first day of injected extreme spell (2006-01-02)")
	spikeDays := flag.Int("spike-days", 0, "length of injected extreme spell")
	spikeDelta := flag.Float64("spike-delta", 0, "degrees added during the spell")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *toYear < *fromYear {
		return fmt.Errorf("-to must be >= -from")
	}

	var spike time.Time
	if *spikeStart != "" {
		var err error
		spike, err = time.ParseInLocation("2006-01-02", *spikeStart, time.UTC)
		if err != nil {
			return fmt.Errorf("bad -spike-start: %w", err)
		}
	}

	rng := rand.New(rand.NewSource(*seed))

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	defer f.Close() //nolint:errcheck // flushed and closed below

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", "tmax", "tmin", "rh_max", "rh_min", "p_max", "p_min"}); err != nil {
		return err
	}

	start := time.Date(*fromYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(*toYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if *missing > 0 && rng.Float64() < *missing {
			if err := w.Write([]string{d.Format("2006-01-02"), "", "", "", "", "", ""}); err != nil {
				return err
			}
			days++
			continue
		}

		// Annual cycle peaking in late July for a northern hemisphere
		// station, phase-shifted by day of year.
		phase := 2 * math.Pi * (float64(d.YearDay()) - 209) / 365
		tmax := *meanTMax + *amplitude*math.Cos(phase) + rng.NormFloat64()**noise
		tmin := tmax - 8 - rng.Float64()*4

		if *spikeDays > 0 && !spike.IsZero() {
			offset := int(d.Sub(spike).Hours() / 24)
			if offset >= 0 && offset < *spikeDays {
				tmax += *spikeDelta
				tmin += *spikeDelta
			}
		}

		// Humidity runs against temperature; pressure is near-constant
		// with weather noise.
		rhMax := clamp(95-1.5*(tmax-*meanTMax)+rng.NormFloat64()*5, 20, 100)
		rhMin := clamp(rhMax-30-rng.Float64()*10, 5, 100)
		pMax := 1015 + rng.NormFloat64()*6
		pMin := pMax - 2 - rng.Float64()*4

		record := []string{
			d.Format("2006-01-02"),
			formatValue(tmax), formatValue(tmin),
			formatValue(rhMax), formatValue(rhMin),
			formatValue(pMax), formatValue(pMin),
		}
		if err := w.Write(record); err != nil {
			return err
		}
		days++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("wrote %d days to %s\n", days, *out)
	return nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
