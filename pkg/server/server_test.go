//nolint:funlen // ok for tests
package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/iracelog-tirestrategy/log"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/config"
	"github.com/mpapenbr/iracelog-tirestrategy/testsupport/basedata"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := NewServer(
		WithDefaults(config.DefaultStrategy()),
		WithLogger(log.New(io.Discard, log.DebugLevel)))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestAnalyze(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name        string
		query       string
		body        string
		wantStatus  int
		wantType    string
		wantContent string
	}{
		{
			name:        "json by default",
			body:        basedata.SampleRaceCSV(),
			wantStatus:  http.StatusOK,
			wantType:    "application/json",
			wantContent: `"pitLaps"`,
		},
		{
			name:        "text",
			query:       "?format=text",
			body:        basedata.SampleRaceCSV(),
			wantStatus:  http.StatusOK,
			wantType:    "text/plain; charset=utf-8",
			wantContent: "Planned pitstop around lap 21",
		},
		{
			name:        "yaml",
			query:       "?format=yaml",
			body:        basedata.SampleRaceCSV(),
			wantStatus:  http.StatusOK,
			wantType:    "application/yaml",
			wantContent: "pitLaps:",
		},
		{
			name:        "override parameters",
			query:       "?format=text&race-laps=30&pitstops=1&wear-threshold=50",
			body:        basedata.SampleRaceCSV(),
			wantStatus:  http.StatusOK,
			wantContent: "Strategy (30 laps, 1 stops, threshold 50%)",
		},
		{
			name:        "unknown format",
			query:       "?format=xml",
			body:        basedata.SampleRaceCSV(),
			wantStatus:  http.StatusBadRequest,
			wantContent: "unknown output format",
		},
		{
			name:       "invalid csv",
			body:       "Lap,Laptime\n1,90\n",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed parameter",
			query:      "?race-laps=many",
			body:       basedata.SampleRaceCSV(),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid strategy parameter",
			query:      "?pitstops=-1",
			body:       basedata.SampleRaceCSV(),
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/analyze"+tt.query, "text/csv",
				strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode, string(body))
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, resp.Header.Get("Content-Type"))
			}
			if tt.wantContent != "" {
				assert.Contains(t, string(body), tt.wantContent)
			}
		})
	}
}

func TestAnalyzeQuery(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/analyze?query=$.strategy.pitLaps", "text/csv",
		strings.NewReader(basedata.SampleRaceCSV()))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	doc, err := oj.Parse(body)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(18), int64(28)}, doc)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(ts.URL + "/analyze")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}

func TestAnalyzeReusesReport(t *testing.T) {
	ts := newTestServer(t)
	reportID := func(query string) any {
		t.Helper()
		resp, err := http.Post(ts.URL+"/analyze?query=$.id"+query, "text/csv",
			strings.NewReader(basedata.SampleRaceCSV()))
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		doc, err := oj.Parse(body)
		require.NoError(t, err)
		return doc
	}
	first := reportID("")
	assert.NotEmpty(t, first)
	assert.Equal(t, first, reportID(""))
	assert.NotEqual(t, first, reportID("&race-laps=30"))
}
