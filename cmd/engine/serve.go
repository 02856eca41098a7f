package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"jobcrawl-engine/internal/config"
	"jobcrawl-engine/internal/events"
	"jobcrawl-engine/internal/httpapi"
	"jobcrawl-engine/internal/logger"
	"jobcrawl-engine/internal/scrape"
	"jobcrawl-engine/internal/store"
)

func newServeCmd(rf *rootFlags) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local HTTP API",
		Long:  "Serves the stored jobs, run status and live events on 127.0.0.1. POST /scrape/run starts a crawl in the background.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(rf)
			if err != nil {
				return err
			}
			defer a.close()
			if port > 0 {
				a.cfg.App.Port = port
			}
			return runServe(cmd.Context(), a)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default: app.port)")
	return cmd
}

func runServe(ctx context.Context, a *app) error {
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	addr := fmt.Sprintf("127.0.0.1:%d", a.cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return serveOn(ctx, a, st, ln, crawlFunc(st, a.log))
}

// serveOn serves until ctx ends or the listener fails, then stops accepting,
// waits for a background crawl to stop at its next unit boundary and
// checkpoints the store. The caller closes st.
func serveOn(ctx context.Context, a *app, st *store.Store, ln net.Listener, crawl httpapi.CrawlFunc) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(a.cfg)
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(a.cfgPath)
		if err != nil {
			return cfg, err
		}
		cfg.App.DataDir = a.cfg.App.DataDir
		return cfg, nil
	}

	tracker := &scrape.StatusTracker{}
	handler := httpapi.NewHandler(httpapi.Deps{
		Store:       st,
		Hub:         events.NewHub(),
		CfgVal:      &cfgVal,
		UserCfgPath: a.cfgPath,
		LoadCfg:     loadCfg,
		Status:      tracker,
		BaseCtx:     ctx,
		RunCrawl:    crawl,
		Logger:      a.log,
	})

	a.log.Info("engine listening",
		logger.String("addr", "http://"+ln.Addr().String()),
		logger.String("db", a.cfg.DBPath()),
		logger.String("config", a.cfgPath),
	)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		// open SSE streams end when ctx does, so Shutdown does not wait on them
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
	}
	stop()

	a.log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil && serveErr == nil {
		serveErr = err
	}

	dctx, dcancel := context.WithTimeout(context.Background(), drainTimeout(a.cfg))
	defer dcancel()
	if err := tracker.Wait(dctx); err != nil {
		a.log.Warn("background crawl still running at shutdown", logger.Error(err))
	}

	cctx, ccancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer ccancel()
	if err := st.Checkpoint(cctx); err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}

// drainTimeout bounds one fetch unit with all its retries.
func drainTimeout(cfg config.Config) time.Duration {
	retries := time.Duration(cfg.Crawl.MaxFetchRetries)
	return cfg.RequestTimeout()*(retries+1) + cfg.RetryBackoff()*retries + 10*time.Second
}
