package main

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobcrawl-engine/internal/config"
	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/logger"
	"jobcrawl-engine/internal/scrape"
)

func TestServe_ShutdownWaitsForBackgroundCrawl(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.App.DataDir = dir
	cfgPath := filepath.Join(dir, "config.yml")
	require.NoError(t, config.SaveAtomic(cfgPath, cfg))
	a := &app{cfgPath: cfgPath, cfg: cfg, log: logger.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := a.openStore(ctx)
	require.NoError(t, err)
	defer st.Close()

	started := make(chan struct{})
	var (
		crawlCancelled atomic.Bool
		lateInsertOK   atomic.Bool
	)
	crawl := func(cctx context.Context, _ config.Config, _ func(domain.JobRecord)) []scrape.SourceResult {
		close(started)
		<-cctx.Done()
		crawlCancelled.Store(true)

		// the unit in flight still completes against an open store
		time.Sleep(100 * time.Millisecond)
		_, err := st.Insert(context.Background(), domain.NormalizedCandidate{Source: "vagas", Title: "Dev Go", Company: "Acme"})
		lateInsertOK.Store(err == nil)
		return []scrape.SourceResult{{Summary: domain.RunSummary{Source: "vagas"}, Err: cctx.Err()}}
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() { served <- serveOn(ctx, a, st, ln, crawl) }()

	res, err := http.Post("http://"+ln.Addr().String()+"/scrape/run", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusAccepted, res.StatusCode)

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("crawl never started")
	}

	cancel()
	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}

	assert.True(t, crawlCancelled.Load(), "crawl context follows the server context")
	assert.True(t, lateInsertOK.Load(), "serve returned before the crawl finished")

	n, err := st.Count(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDrainTimeout_CoversRetries(t *testing.T) {
	cfg := config.Defaults()
	cfg.Crawl.RequestTimeoutSeconds = 10
	cfg.Crawl.MaxFetchRetries = 2
	cfg.Crawl.RetryBackoffMS = 500
	assert.Equal(t, 30*time.Second+time.Second+10*time.Second, drainTimeout(cfg))
}

