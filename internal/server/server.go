// Package server exposes the loaded dataset, its quality report, and
// the rendered chart over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wiendata/inselmap/internal/chart"
	"github.com/wiendata/inselmap/internal/dataset"
	"github.com/wiendata/inselmap/internal/export"
	"github.com/wiendata/inselmap/internal/fetcher"
)

// Options configures the server.
type Options struct {
	SourceURL       string
	Encoding        string
	ChartOptions    chart.Options
	Port            int
	RefreshInterval time.Duration
	ShutdownTimeout time.Duration
}

// Server serves the latest dataset snapshot. A background refresher
// re-fetches the source on an interval, skipping the reload when the
// upstream ETag is unchanged.
type Server struct {
	opts  Options
	fetch *fetcher.HTTPFetcher

	mu       sync.RWMutex
	table    *dataset.Table
	report   *dataset.Report
	chartPNG []byte
	etag     string
}

// New creates a Server. Call Refresh or Run to populate the snapshot.
func New(fetch *fetcher.HTTPFetcher, opts Options) *Server {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = time.Hour
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &Server{opts: opts, fetch: fetch}
}

// Refresh fetches the dataset and re-renders the chart. The fetch is a
// conditional GET: a 304 against the recorded ETag keeps the snapshot,
// and a changed payload is streamed straight into the loader so the
// source is hit exactly once per refresh.
func (s *Server) Refresh(ctx context.Context) error {
	s.mu.RLock()
	etag := s.etag
	s.mu.RUnlock()

	body, newETag, changed, err := s.fetch.DownloadIfChanged(ctx, s.opts.SourceURL, etag)
	if err != nil {
		return eris.Wrap(err, "server: fetch upstream")
	}
	if !changed {
		zap.L().Debug("dataset unchanged, keeping snapshot", zap.String("etag", etag))
		return nil
	}
	defer body.Close() //nolint:errcheck

	table, report, err := dataset.LoadReader(ctx, body, s.opts.SourceURL, dataset.LoadOptions{Encoding: s.opts.Encoding})
	if err != nil {
		return err
	}

	png, err := chart.RenderPNG(table, s.opts.ChartOptions)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.table = table
	s.report = report
	s.chartPNG = png
	s.etag = newETag
	s.mu.Unlock()

	zap.L().Info("snapshot refreshed", zap.Int("rows", table.NumRows()))
	return nil
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/report.json", s.handleReport)
	r.Get("/chart.png", s.handleChart)
	r.Get("/facilities.geojson", s.handleGeoJSON)
	r.Post("/refresh", s.handleRefresh)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"}) //nolint:errcheck
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	report := s.report
	s.mu.RUnlock()

	if report == nil {
		http.Error(w, `{"error":"no dataset loaded yet"}`, http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report) //nolint:errcheck
}

func (s *Server) handleChart(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	png := s.chartPNG
	s.mu.RUnlock()

	if len(png) == 0 {
		http.Error(w, "no chart rendered yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png) //nolint:errcheck
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	table := s.table
	s.mu.RUnlock()

	if table == nil {
		http.Error(w, `{"error":"no dataset loaded yet"}`, http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteGeoJSON(table, &buf); err != nil {
		zap.L().Error("geojson encode failed", zap.Error(err))
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(buf.Bytes()) //nolint:errcheck
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.Refresh(r.Context()); err != nil {
		zap.L().Error("refresh failed", zap.Error(err))
		http.Error(w, `{"error":"refresh failed"}`, http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "refreshed"}) //nolint:errcheck
}

// Run performs an initial refresh, then serves HTTP and refreshes on an
// interval until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.opts.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zap.L().Info("http server listening", zap.Int("port", s.opts.Port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server: listen")
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(s.opts.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := s.Refresh(ctx); err != nil {
					// A failed periodic refresh keeps the last snapshot.
					zap.L().Warn("periodic refresh failed", zap.Error(err))
				}
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		return eris.Wrap(httpSrv.Shutdown(shutdownCtx), "server: shutdown")
	})

	return g.Wait()
}
