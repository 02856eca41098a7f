package scrape

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/logger"
	"jobcrawl-engine/internal/scrape/types"
)

// SourceResult is one source's outcome inside RunAll.
type SourceResult struct {
	Summary domain.RunSummary `json:"summary"`
	Err     error             `json:"-"`
}

// RunAll runs every extractor concurrently, at most MaxParallelSources at a time.
// Results come back in extractor order. One source failing never cancels the others.
func (r *Runner) RunAll(ctx context.Context, extractors []types.Extractor, keywords []string, pages int) []SourceResult {
	results := make([]SourceResult, len(extractors))

	var g errgroup.Group
	g.SetLimit(r.opts.MaxParallelSources)

	for i, ex := range extractors {
		g.Go(func() error {
			sum, err := r.Run(ctx, ex, keywords, pages)
			if err != nil {
				r.log.Error("source run failed", logger.String("source", sum.Source), logger.Error(err))
			}
			results[i] = SourceResult{Summary: sum, Err: err}
			return nil // best-effort: don't cancel siblings
		})
	}
	_ = g.Wait()

	return results
}

// Combine folds per-source summaries into one. The first error is returned.
func Combine(results []SourceResult) (domain.RunSummary, error) {
	var (
		total    domain.RunSummary
		firstErr error
	)
	for i, res := range results {
		if i == 0 {
			total.StartedAt = res.Summary.StartedAt
		}
		total.Add(res.Summary)
		if res.Summary.StartedAt.Before(total.StartedAt) {
			total.StartedAt = res.Summary.StartedAt
		}
		if res.Summary.FinishedAt.After(total.FinishedAt) {
			total.FinishedAt = res.Summary.FinishedAt
		}
		if res.Err != nil && firstErr == nil {
			firstErr = res.Err
		}
	}
	total.Source = "all"
	return total, firstErr
}

func (r SourceResult) String() string {
	s := r.Summary
	line := fmt.Sprintf("%s: saved=%d duplicates=%d filtered=%d errors=%d total=%d",
		s.Source, s.Saved, s.Duplicates, s.Filtered, s.Errors, s.Total)
	if r.Err != nil {
		line += " err=" + r.Err.Error()
	}
	return line
}
