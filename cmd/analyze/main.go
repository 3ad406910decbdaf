// Command analyze runs extreme event detection over CSV series described
// by a YAML job file, without needing the service or a database.
//
// Usage:
//
//	go run ./cmd/analyze -job jobs.yaml
//
// A job file holds one or more analyses:
//
//	analyses:
//	  - name: lisbon-heat
//	    kind: heat_wave
//	    normal_file: data/lisbon_1961_1990.csv
//	    database_file: data/lisbon_2003.csv
//	    max_column: tmax
//	    min_column: tmin
//	    output_dir: out/lisbon-heat
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/climate-extremes/internal/adapter/csvfile"
	"github.com/couchcryptid/climate-extremes/internal/climate"
)

// jobFile is the top-level YAML document.
type jobFile struct {
	Analyses []jobSpec `yaml:"analyses"`
}

// jobSpec describes one detection over a pair of CSV series.
type jobSpec struct {
	Name         string `yaml:"name"`
	Kind         string `yaml:"kind"`
	NormalFile   string `yaml:"normal_file"`
	DatabaseFile string `yaml:"database_file"`

	// DateColumn defaults to "date"; MinColumn may be empty for
	// single-variable kinds where MaxColumn carries the whole signal.
	DateColumn string `yaml:"date_column"`
	MaxColumn  string `yaml:"max_column"`
	MinColumn  string `yaml:"min_column"`

	Percentile float64 `yaml:"percentile"`
	WindowSize int     `yaml:"window_size"`

	// SeasonalYear shifts December events into the following year's
	// intensity bucket and drops the trailing partial year.
	SeasonalYear bool   `yaml:"seasonal_year"`
	OutputDir    string `yaml:"output_dir"`
}

func main() {
	jobPath := flag.String("job", "", "path to YAML job file")
	flag.Parse()

	if *jobPath == "" {
		flag.Usage()
		os.Exit(1)
	}
	if err := run(*jobPath); err != nil {
		fmt.Fprintln(os.Stderr, "analyze:", err)
		os.Exit(1)
	}
}

func run(jobPath string) error {
	raw, err := os.ReadFile(jobPath)
	if err != nil {
		return fmt.Errorf("read job file: %w", err)
	}

	var jobs jobFile
	if err := yaml.Unmarshal(raw, &jobs); err != nil {
		return fmt.Errorf("parse job file: %w", err)
	}
	if len(jobs.Analyses) == 0 {
		return fmt.Errorf("job file %s has no analyses", jobPath)
	}

	for i, job := range jobs.Analyses {
		if job.Name == "" {
			job.Name = fmt.Sprintf("analysis-%d", i+1)
		}
		if err := runJob(job); err != nil {
			return fmt.Errorf("%s: %w", job.Name, err)
		}
	}
	return nil
}

func runJob(job jobSpec) error {
	kind, err := climate.ParseEventKind(job.Kind)
	if err != nil {
		return err
	}
	if job.DateColumn == "" {
		job.DateColumn = "date"
	}
	if job.MaxColumn == "" {
		return fmt.Errorf("max_column is required")
	}
	if job.OutputDir == "" {
		job.OutputDir = job.Name
	}

	columns := []string{job.MaxColumn}
	if job.MinColumn != "" {
		columns = append(columns, job.MinColumn)
	}

	normal, err := csvfile.ReadSeries(job.NormalFile, job.DateColumn, columns)
	if err != nil {
		return err
	}
	database, err := csvfile.ReadSeries(job.DatabaseFile, job.DateColumn, columns)
	if err != nil {
		return err
	}

	det, err := climate.Detect(climate.Params{
		Kind:              kind,
		Database:          database,
		DatabaseMaxColumn: job.MaxColumn,
		DatabaseMinColumn: job.MinColumn,
		Normal:            normal,
		NormalMaxColumn:   job.MaxColumn,
		NormalMinColumn:   job.MinColumn,
		Percentile:        job.Percentile,
		WindowSize:        job.WindowSize,
	})
	if err != nil {
		return err
	}

	intensities, err := det.Intensity(job.MaxColumn, job.SeasonalYear)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := csvfile.WriteDetection(filepath.Join(job.OutputDir, "detection.csv"), det); err != nil {
		return err
	}
	if err := csvfile.WriteYearlyMetrics(filepath.Join(job.OutputDir, "yearly.csv"), det.YearlyMetrics()); err != nil {
		return err
	}
	if err := csvfile.WriteSeasonalMetrics(filepath.Join(job.OutputDir, "seasonal.csv"), det.SeasonalMetrics()); err != nil {
		return err
	}
	if err := csvfile.WriteIntensities(filepath.Join(job.OutputDir, "intensity.csv"), intensities); err != nil {
		return err
	}

	fmt.Printf("%s: %s, %d events, results in %s\n",
		job.Name, kind.String(), len(det.Events), job.OutputDir)
	return nil
}
