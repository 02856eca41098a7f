// Package filter cleans raw scraped candidates and decides whether they are relevant.
package filter

import (
	"strings"

	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/scrape/util"
)

// Normalize cleans title and company and rejects candidates missing either one.
// The returned error wraps domain.ErrIncompleteRecord.
func Normalize(raw domain.RawCandidate) (domain.NormalizedCandidate, error) {
	c := domain.NormalizedCandidate{
		Source:  util.CleanText(raw.Source),
		Title:   util.CleanText(raw.Title),
		Company: util.CleanText(raw.Company),
		Link:    strings.TrimSpace(raw.Link),
	}

	switch {
	case c.Source == "":
		return c, domain.Incompletef("missing source (title=%q)", c.Title)
	case util.IsPlaceholder(c.Title):
		return c, domain.Incompletef("missing title (company=%q)", c.Company)
	case util.IsPlaceholder(c.Company):
		return c, domain.Incompletef("missing company (title=%q)", c.Title)
	}
	return c, nil
}
