package httpapi

import (
	"context"
	"sync/atomic"

	"jobcrawl-engine/internal/config"
	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/events"
	"jobcrawl-engine/internal/logger"
	"jobcrawl-engine/internal/scrape"
)

// JobStore is the read side of the job store the API serves from.
type JobStore interface {
	Query(ctx context.Context, keyword, source string) ([]domain.JobRecord, error)
	Latest(ctx context.Context, limit int) ([]domain.JobRecord, error)
	ExportAll(ctx context.Context) ([]domain.JobRecord, error)
	CountBySource(ctx context.Context) ([]domain.SourceCount, error)
	Count(ctx context.Context, source string) (int, error)
	Ping(ctx context.Context) error
	Checkpoint(ctx context.Context) error
}

// CrawlFunc runs one crawl over the configured sources.
type CrawlFunc func(ctx context.Context, cfg config.Config, onInserted func(domain.JobRecord)) []scrape.SourceResult

type Deps struct {
	Store JobStore
	Hub   *events.Hub

	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	Status  *scrape.StatusTracker
	// BaseCtx is the server's lifetime; background crawls run under it.
	BaseCtx context.Context

	// Crawl entrypoint (inject for testability)
	RunCrawl CrawlFunc

	Logger logger.Logger
}
