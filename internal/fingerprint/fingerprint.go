// Package fingerprint derives the identity of a job posting from its visible fields.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/scrape/util"
)

// Size is the length of a fingerprint in hex characters.
const Size = sha256.Size * 2

const sep = ":"

// Of returns the fingerprint for (source, title, company). Title and company are
// lower-cased and whitespace-collapsed first; source is used verbatim.
func Of(source, title, company string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", domain.Invalidf("fingerprint: empty source")
	}
	for name, v := range map[string]string{"source": source, "title": title, "company": company} {
		if !utf8.ValidString(v) {
			return "", domain.Invalidf("fingerprint: %s is not valid UTF-8", name)
		}
	}

	key := source + sep + util.FoldText(title) + sep + util.FoldText(company)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:]), nil
}

// Candidate is Of applied to a normalized candidate.
func Candidate(c domain.NormalizedCandidate) (string, error) {
	return Of(c.Source, c.Title, c.Company)
}
