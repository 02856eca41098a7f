package scrape

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/filter"
	"jobcrawl-engine/internal/logger"
	"jobcrawl-engine/internal/scrape/types"
	"jobcrawl-engine/internal/scrape/util"
	"jobcrawl-engine/internal/store"
)

// JobStore is the part of *store.Store the runner writes through.
type JobStore interface {
	InsertWithFingerprint(ctx context.Context, c domain.NormalizedCandidate, fp string) (store.InsertResult, error)
	Count(ctx context.Context, source string) (int, error)
}

type Options struct {
	// FilterKeywords decide relevance. Empty means the keywords passed to Run.
	FilterKeywords []string

	FetchTimeout    time.Duration
	MaxFetchRetries int
	RetryBackoff    time.Duration

	// Limiter spaces requests to one source. Nil means no delay.
	Limiter *util.SourceLimiter

	// MaxStoreFailures consecutive store failures stop the run.
	MaxStoreFailures   int
	MaxParallelSources int

	// OnInserted is called once per newly stored job, from the run's goroutine.
	OnInserted func(domain.JobRecord)

	Logger logger.Logger
}

type Runner struct {
	store JobStore
	opts  Options
	log   logger.Logger
	now   func() time.Time
}

func NewRunner(st JobStore, opts Options) *Runner {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = util.DefaultTimeout
	}
	if opts.MaxFetchRetries < 0 {
		opts.MaxFetchRetries = 0
	}
	if opts.MaxStoreFailures <= 0 {
		opts.MaxStoreFailures = 3
	}
	if opts.MaxParallelSources <= 0 {
		opts.MaxParallelSources = 1
	}
	lg := opts.Logger
	if lg == nil {
		lg = logger.NewNop()
	}
	return &Runner{store: st, opts: opts, log: lg, now: time.Now}
}

// Run ingests pages 1..pages of every keyword from ex, in order. It always returns a
// summary; the error is non-nil only for invalid arguments, cancellation, or a store
// that keeps failing.
func (r *Runner) Run(ctx context.Context, ex types.Extractor, keywords []string, pages int) (domain.RunSummary, error) {
	sum := domain.RunSummary{RunID: uuid.NewString(), StartedAt: r.now().UTC()}
	if ex == nil {
		return r.finish(ctx, sum, domain.Invalidf("nil extractor"))
	}
	sum.Source = ex.Name()

	keywords = cleanKeywords(keywords)
	if len(keywords) == 0 {
		return r.finish(ctx, sum, domain.Invalidf("no search keywords"))
	}
	if pages < 1 {
		return r.finish(ctx, sum, domain.Invalidf("pages must be >= 1, got %d", pages))
	}
	relevance := r.opts.FilterKeywords
	if len(relevance) == 0 {
		relevance = keywords
	}
	matcher, err := filter.NewMatcher(relevance)
	if err != nil {
		return r.finish(ctx, sum, err)
	}

	log := r.log.With(logger.String("run_id", sum.RunID), logger.String("source", sum.Source))
	log.Info("run started", logger.Strings("keywords", keywords), logger.Int("pages", pages))

	storeFailures := 0
	for _, kw := range keywords {
		for page := 1; page <= pages; page++ {
			if err := ctx.Err(); err != nil {
				return r.finish(ctx, sum, err)
			}
			ulog := log.With(logger.String("keyword", kw), logger.Int("page", page))

			p, err := r.fetch(ctx, ex, kw, page, ulog)
			if err != nil {
				if ctx.Err() != nil {
					return r.finish(ctx, sum, ctx.Err())
				}
				ulog.Error("page aborted", logger.Error(err))
				sum.Errors++
				continue
			}

			for _, raw := range p.Candidates {
				out, err := r.process(ctx, matcher, sum.Source, raw)
				switch out {
				case outcomeSaved:
					sum.Saved++
					storeFailures = 0
				case outcomeDuplicate:
					sum.Duplicates++
					storeFailures = 0
				case outcomeFiltered:
					sum.Filtered++
				case outcomeInvalid:
					sum.Errors++
					ulog.Debug("candidate skipped", logger.String("title", raw.Title), logger.Error(err))
				case outcomeStoreFailure:
					sum.Errors++
					storeFailures++
					ulog.Error("store insert failed", logger.Int("consecutive", storeFailures), logger.Error(err))
					if storeFailures >= r.opts.MaxStoreFailures {
						return r.finish(ctx, sum, fmt.Errorf("%s: stopped after %d consecutive store failures: %w",
							sum.Source, storeFailures, err))
					}
				}
			}
			ulog.Info("page done",
				logger.Int("candidates", len(p.Candidates)),
				logger.Int("saved", sum.Saved),
				logger.Int("duplicates", sum.Duplicates),
				logger.Int("filtered", sum.Filtered),
				logger.Int("errors", sum.Errors),
			)

			if p.Last {
				break
			}
		}
	}
	return r.finish(ctx, sum, nil)
}

// finish stamps the end time and the store total. The total is read even when ctx is
// already cancelled so a partial summary still reports it.
func (r *Runner) finish(ctx context.Context, sum domain.RunSummary, runErr error) (domain.RunSummary, error) {
	sum.FinishedAt = r.now().UTC()
	if r.store == nil || errors.Is(runErr, domain.ErrInvalidInput) {
		return sum, runErr
	}

	total, err := r.store.Count(context.WithoutCancel(ctx), "")
	if err != nil {
		r.log.Warn("count after run failed", logger.String("run_id", sum.RunID), logger.Error(err))
		if runErr == nil {
			runErr = err
		}
		return sum, runErr
	}
	sum.Total = total

	lg := r.log.With(
		logger.String("run_id", sum.RunID),
		logger.String("source", sum.Source),
		logger.Int("saved", sum.Saved),
		logger.Int("duplicates", sum.Duplicates),
		logger.Int("filtered", sum.Filtered),
		logger.Int("errors", sum.Errors),
		logger.Int("total", sum.Total),
		logger.Duration("took", sum.FinishedAt.Sub(sum.StartedAt)),
	)
	if runErr != nil {
		lg.Warn("run stopped", logger.Error(runErr))
	} else {
		lg.Info("run finished")
	}
	return sum, runErr
}

// fetch loads one page, waiting on the source limiter before every attempt and
// retrying retryable failures up to MaxFetchRetries times.
func (r *Runner) fetch(ctx context.Context, ex types.Extractor, kw string, page int, log logger.Logger) (types.Page, error) {
	var (
		out     types.Page
		attempt int
	)
	op := func() error {
		attempt++
		if err := r.opts.Limiter.Wait(ctx, ex.Name()); err != nil {
			return backoff.Permanent(err)
		}

		fctx, cancel := context.WithTimeout(ctx, r.opts.FetchTimeout)
		defer cancel()

		p, err := ex.FetchPage(fctx, kw, page)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			log.Warn("fetch failed", logger.Int("attempt", attempt), logger.Error(err))
			return err
		}
		out = p
		return nil
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.opts.RetryBackoff), uint64(r.opts.MaxFetchRetries)),
		ctx,
	)
	if err := backoff.Retry(op, b); err != nil {
		return types.Page{}, err
	}
	return out, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return fe.Retryable()
	}
	return !errors.Is(err, domain.ErrUnknownLayout)
}

func cleanKeywords(in []string) []string {
	var out []string
	for _, k := range in {
		if k = util.CleanText(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

