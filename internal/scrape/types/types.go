package types

import (
	"context"

	"jobcrawl-engine/internal/domain"
)

// Page is one results page as seen by an extractor.
type Page struct {
	Candidates []domain.RawCandidate
	// Last is set when the site has no further result pages for the query.
	Last bool
}

// Extractor fetches one result page for a query and turns it into raw candidates.
// Failures are *domain.FetchError; an unrecognised page layout is a failure too.
type Extractor interface {
	Name() string
	FetchPage(ctx context.Context, query string, page int) (Page, error)
}

type ScrapeStatus struct {
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	LastAdded int    `json:"last_added"`
	Running   bool   `json:"running"`
}
