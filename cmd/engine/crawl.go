package main

import (
	"context"

	"github.com/spf13/cobra"

	"jobcrawl-engine/internal/config"
	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/httpapi"
	"jobcrawl-engine/internal/logger"
	"jobcrawl-engine/internal/report"
	"jobcrawl-engine/internal/scrape"
	"jobcrawl-engine/internal/store"
)

type crawlFlags struct {
	sources  []string
	keywords []string
	pages    int
}

func newCrawlCmd(rf *rootFlags) *cobra.Command {
	var f crawlFlags
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Fetch listings from the enabled sources into the store",
		Long:  "Runs every keyword over every result page of each source, saving new jobs and skipping ones already stored. Sources run in parallel; one failing source does not stop the others.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(rf)
			if err != nil {
				return err
			}
			defer a.close()
			return runCrawl(cmd, a, f)
		},
	}
	cmd.Flags().StringSliceVarP(&f.sources, "source", "s", nil, "Sources to crawl (default: enabled sources in config)")
	cmd.Flags().StringSliceVarP(&f.keywords, "keyword", "k", nil, "Search keywords (default: crawl.keywords)")
	cmd.Flags().IntVarP(&f.pages, "pages", "p", 0, "Result pages per keyword (default: crawl.pages)")
	return cmd
}

func runCrawl(cmd *cobra.Command, a *app, f crawlFlags) error {
	ctx := cmd.Context()

	lock, err := store.AcquireRunLock(a.cfg.DBPath())
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	cfg := a.cfg
	if len(f.keywords) > 0 {
		cfg.Crawl.Keywords = f.keywords
	}
	if f.pages > 0 {
		cfg.Crawl.Pages = f.pages
	}

	extractors, err := scrape.Extractors(cfg, f.sources)
	if err != nil {
		return err
	}

	a.log.Info("crawl starting",
		logger.Strings("sources", f.sources),
		logger.Strings("keywords", cfg.Crawl.Keywords),
		logger.Int("pages", cfg.Crawl.Pages),
		logger.String("db", cfg.DBPath()),
	)

	r := scrape.NewRunner(st, scrape.OptionsFromConfig(cfg, a.log))
	results := r.RunAll(ctx, extractors, cfg.Crawl.Keywords, cfg.Crawl.Pages)
	report.SummaryTable(cmd.OutOrStdout(), results)

	_, err = scrape.Combine(results)
	return err
}

// crawlFunc is the background crawl behind POST /scrape/run. It shares the
// server's store and takes the same run lock as the crawl command.
func crawlFunc(st *store.Store, lg logger.Logger) httpapi.CrawlFunc {
	return func(ctx context.Context, cfg config.Config, onInserted func(domain.JobRecord)) []scrape.SourceResult {
		fail := func(err error) []scrape.SourceResult {
			return []scrape.SourceResult{{Summary: domain.RunSummary{Source: "all"}, Err: err}}
		}

		lock, err := store.AcquireRunLock(cfg.DBPath())
		if err != nil {
			return fail(err)
		}
		defer func() { _ = lock.Unlock() }()

		extractors, err := scrape.Extractors(cfg, nil)
		if err != nil {
			return fail(err)
		}
		opts := scrape.OptionsFromConfig(cfg, lg)
		opts.OnInserted = onInserted
		return scrape.NewRunner(st, opts).RunAll(ctx, extractors, cfg.Crawl.Keywords, cfg.Crawl.Pages)
	}
}
