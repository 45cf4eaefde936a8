package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiendata/inselmap/internal/chart"
	"github.com/wiendata/inselmap/internal/fetcher"
)

const sampleCSV = `FID,SHAPE,TYP,TYP_TXT
1,POINT (16.40 48.20),1,Play
2,POINT (16.42 48.22),2,Sport
`

func newTestServer(t *testing.T, upstream string) *Server {
	t.Helper()
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: 5 * time.Second, MaxRetries: 1})
	return New(f, Options{
		SourceURL:    upstream,
		ChartOptions: chart.Options{Title: "test", WidthCm: 10, HeightCm: 6},
		Port:         0,
	})
}

func TestServer_ServesSnapshot(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleCSV))
	}))
	defer upstream.Close()

	s := newTestServer(t, upstream.URL)
	require.NoError(t, s.Refresh(context.Background()))

	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	// health
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// report
	resp, err = http.Get(ts.URL + "/report.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report struct {
		Rows int `json:"rows"`
		Cols int `json:"cols"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, 2, report.Rows)
	assert.Equal(t, 4, report.Cols)

	// chart
	resp, err = http.Get(ts.URL + "/chart.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\x89PNG"))

	// geojson
	resp, err = http.Get(ts.URL + "/facilities.geojson")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/geo+json", resp.Header.Get("Content-Type"))
}

func TestServer_BeforeFirstRefresh(t *testing.T) {
	s := newTestServer(t, "http://unused.invalid")
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	for _, path := range []string{"/report.json", "/chart.png", "/facilities.geojson"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, path)
	}
}

func TestServer_RefreshHitsUpstreamOncePerCycle(t *testing.T) {
	const changedCSV = sampleCSV + "3,POINT (16.44 48.24),1,Play\n"

	var requests atomic.Int32
	var etag atomic.Value
	var payload atomic.Value
	etag.Store(`"v1"`)
	payload.Store(sampleCSV)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		current := etag.Load().(string)
		if r.Header.Get("If-None-Match") == current {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", current)
		w.Write([]byte(payload.Load().(string)))
	}))
	defer upstream.Close()

	s := newTestServer(t, upstream.URL)
	ctx := context.Background()

	// First refresh: one GET, snapshot populated, ETag recorded.
	require.NoError(t, s.Refresh(ctx))
	assert.Equal(t, int32(1), requests.Load())
	assert.Equal(t, 2, s.report.Rows)

	// Unchanged upstream: one 304, snapshot kept.
	require.NoError(t, s.Refresh(ctx))
	assert.Equal(t, int32(2), requests.Load())
	assert.Equal(t, 2, s.report.Rows)

	// Changed upstream: still exactly one GET, whose body feeds the
	// reload directly, and the new ETag is recorded from it.
	etag.Store(`"v2"`)
	payload.Store(changedCSV)
	require.NoError(t, s.Refresh(ctx))
	assert.Equal(t, int32(3), requests.Load())
	assert.Equal(t, 3, s.report.Rows)
	assert.Equal(t, `"v2"`, s.etag)

	// And the recorded ETag keeps skipping reloads afterwards.
	require.NoError(t, s.Refresh(ctx))
	assert.Equal(t, int32(4), requests.Load())
	assert.Equal(t, 3, s.report.Rows)
}

func TestServer_RefreshEndpoint_FailurePropagates(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	s := newTestServer(t, upstream.URL)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/refresh", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
