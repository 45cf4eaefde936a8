package main

import (
	"context"
	"time"

	"github.com/wiendata/inselmap/internal/dataset"
	"github.com/wiendata/inselmap/internal/fetcher"
	"github.com/wiendata/inselmap/internal/store"
)

// loadTable fetches and validates the dataset. An empty url falls back
// to the configured source.
func loadTable(ctx context.Context, url string) (*dataset.Table, *dataset.Report, error) {
	if url == "" {
		url = cfg.Source.URL
	}

	f, err := fetcher.ForURL(url, fetcher.Options{
		UserAgent:  cfg.HTTP.UserAgent,
		Timeout:    time.Duration(cfg.HTTP.TimeoutSecs) * time.Second,
		MaxRetries: cfg.HTTP.MaxRetries,
	})
	if err != nil {
		return nil, nil, err
	}

	return dataset.Load(ctx, f, url, dataset.LoadOptions{Encoding: cfg.Source.Encoding})
}

// initStore opens the configured run-history store. Returns nil when
// no driver is configured.
func initStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store)
}
