package scrape

import (
	"context"
	"errors"

	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/filter"
	"jobcrawl-engine/internal/fingerprint"
	"jobcrawl-engine/internal/store"
)

type outcome int

const (
	outcomeSaved outcome = iota
	outcomeDuplicate
	outcomeFiltered
	outcomeInvalid
	outcomeStoreFailure
)

// process runs one candidate through normalize, filter, fingerprint and store.
// Relevance is judged on the title only; filtered candidates never reach the store.
func (r *Runner) process(ctx context.Context, m *filter.Matcher, source string, raw domain.RawCandidate) (outcome, error) {
	if raw.Source == "" {
		raw.Source = source
	}

	c, err := filter.Normalize(raw)
	if err != nil {
		return outcomeInvalid, err
	}

	if !m.Match(c.Title) {
		return outcomeFiltered, nil
	}

	fp, err := fingerprint.Candidate(c)
	if err != nil {
		return outcomeInvalid, err
	}

	res, err := r.store.InsertWithFingerprint(ctx, c, fp)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return outcomeStoreFailure, err
		}
		return outcomeInvalid, err
	}

	if res.Status == store.Duplicate {
		return outcomeDuplicate, nil
	}

	if r.opts.OnInserted != nil {
		now := r.now().UTC()
		r.opts.OnInserted(domain.JobRecord{
			ID:          res.ID,
			Source:      c.Source,
			Title:       c.Title,
			Company:     c.Company,
			Link:        c.Link,
			Fingerprint: fp,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return outcomeSaved, nil
}
