package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-extremes/internal/climate"
	"github.com/couchcryptid/climate-extremes/internal/observability"
	"github.com/couchcryptid/climate-extremes/internal/pipeline"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubSource serves a constant climatology and a target year with one spell.
type stubSource struct {
	err error
}

func (s *stubSource) LoadSeries(_ context.Context, _ string, fromYear, toYear int) (climate.Series, error) {
	if s.err != nil {
		return climate.Series{}, s.err
	}

	var dates []time.Time
	begin := time.Date(fromYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(toYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	for d := begin; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}

	target := fromYear == toYear
	maxCol := make([]float64, len(dates))
	minCol := make([]float64, len(dates))
	for i, d := range dates {
		maxCol[i], minCol[i] = 20, 10
		if target {
			maxCol[i], minCol[i] = 19, 9
			if d.Month() == time.July && d.Day() >= 20 && d.Day() <= 24 {
				maxCol[i], minCol[i] = 25, 15
			}
		}
	}
	return climate.Series{
		Dates:   dates,
		Columns: map[string][]float64{"tmax": maxCol, "tmin": minCol},
	}, nil
}

type memStore struct {
	runs map[string]*pipeline.Run
}

func (m *memStore) SaveRun(_ context.Context, run *pipeline.Run) error {
	m.runs[run.ID] = run
	return nil
}

func (m *memStore) GetRun(_ context.Context, id string) (*pipeline.Run, error) {
	run, ok := m.runs[id]
	if !ok {
		return nil, pipeline.ErrRunNotFound
	}
	return run, nil
}

func (m *memStore) Ping(context.Context) error { return nil }

func newTestServer(source pipeline.SeriesSource) (*Server, *memStore) {
	store := &memStore{runs: make(map[string]*pipeline.Run)}
	analyzer := pipeline.New(source, store, nil, discardLogger(), observability.NewMetricsForTesting(), climate.DefaultWindowSize)
	return NewServer(":0", analyzer, discardLogger()), store
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func analysisRequest() pipeline.Request {
	return pipeline.Request{
		Kind:             "heat_wave",
		StationID:        "LIS001",
		DatabaseFromYear: 2003,
		DatabaseToYear:   2003,
		NormalFromYear:   1961,
		NormalToYear:     1990,
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(&stubSource{})

	t.Run("healthz", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	})

	t.Run("readyz with a pingable store", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/readyz", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/metrics", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestKindsEndpoint(t *testing.T) {
	srv, _ := newTestServer(&stubSource{})

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/kinds", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var kinds []kindDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kinds))
	require.Len(t, kinds, 12)
	assert.Equal(t, kindDescriptor{Name: "heat_wave", Code: "HW", DefaultPercentile: 0.9}, kinds[0])
	assert.Equal(t, kindDescriptor{Name: "cold_wave", Code: "CW", DefaultPercentile: 0.1}, kinds[1])
}

func TestAnalyzeEndpoint(t *testing.T) {
	t.Run("successful analysis", func(t *testing.T) {
		srv, store := newTestServer(&stubSource{})

		rec := doJSON(t, srv, http.MethodPost, "/api/v1/analyses", analysisRequest())
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var run pipeline.Run
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
		assert.NotEmpty(t, run.ID)
		require.Len(t, run.Events, 1)
		assert.Equal(t, 5, run.Events[0].Duration)
		assert.Contains(t, store.runs, run.ID)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv, _ := newTestServer(&stubSource{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation failure", func(t *testing.T) {
		srv, _ := newTestServer(&stubSource{})

		body := analysisRequest()
		body.DatabaseToYear = 1999 // before DatabaseFromYear
		rec := doJSON(t, srv, http.MethodPost, "/api/v1/analyses", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid request")
	})

	t.Run("unknown kind is a bad request", func(t *testing.T) {
		srv, _ := newTestServer(&stubSource{})

		body := analysisRequest()
		body.Kind = "firenado"
		rec := doJSON(t, srv, http.MethodPost, "/api/v1/analyses", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("source failure is a server error", func(t *testing.T) {
		srv, _ := newTestServer(&stubSource{err: errors.New("connection refused")})

		rec := doJSON(t, srv, http.MethodPost, "/api/v1/analyses", analysisRequest())
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestGetRunEndpoint(t *testing.T) {
	srv, _ := newTestServer(&stubSource{})

	created := doJSON(t, srv, http.MethodPost, "/api/v1/analyses", analysisRequest())
	require.Equal(t, http.StatusCreated, created.Code)
	var run pipeline.Run
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &run))

	t.Run("existing run", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/v1/analyses/"+run.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var got pipeline.Run
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, run.ID, got.ID)
		assert.Equal(t, "heat_wave", got.Kind)
	})

	t.Run("missing run", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/v1/analyses/nope", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
