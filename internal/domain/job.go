package domain

import "time"

// RawCandidate is what a site adapter pulls out of one listing card.
type RawCandidate struct {
	Source  string
	Title   string
	Company string
	Link    string // may be empty
}

type NormalizedCandidate struct {
	Source  string
	Title   string
	Company string
	Link    string
}

type JobRecord struct {
	ID          int64     `json:"id"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Link        string    `json:"link,omitempty"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// RunSummary tallies one ingestion run for a single source.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Source     string    `json:"source"`
	Saved      int       `json:"saved"`
	Duplicates int       `json:"duplicates"`
	Filtered   int       `json:"filtered"`
	Errors     int       `json:"errors"`
	Total      int       `json:"total"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Add folds o's counters into s. Total is taken from o since it is a store snapshot.
func (s *RunSummary) Add(o RunSummary) {
	s.Saved += o.Saved
	s.Duplicates += o.Duplicates
	s.Filtered += o.Filtered
	s.Errors += o.Errors
	if o.Total > s.Total {
		s.Total = o.Total
	}
}
