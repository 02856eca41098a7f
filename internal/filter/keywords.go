package filter

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/scrape/util"
)

// shortKeywordLen is the longest keyword that needs a strict word boundary.
// "ti" must not hit "partiu" or "ti_suporte"; "java" may hit "java_dev".
const shortKeywordLen = 2

const (
	strictEdge = `[^\p{L}\p{N}_]`
	looseEdge  = `[^\p{L}\p{N}]`
)

// Matcher tests text against a fixed keyword set.
type Matcher struct {
	res []*regexp.Regexp
}

// NewMatcher compiles keywords. Blank entries are dropped; an empty set is a
// configuration error wrapping domain.ErrInvalidInput.
func NewMatcher(keywords []string) (*Matcher, error) {
	m := &Matcher{}
	seen := map[string]bool{}

	for _, k := range keywords {
		k = util.FoldText(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true

		re, err := compileKeyword(k)
		if err != nil {
			return nil, domain.Invalidf("keyword %q: %v", k, err)
		}
		m.res = append(m.res, re)
	}

	if len(m.res) == 0 {
		return nil, domain.Invalidf("empty keyword set")
	}
	return m, nil
}

func compileKeyword(k string) (*regexp.Regexp, error) {
	words := strings.Fields(k)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	body := strings.Join(words, `\s+`)

	edge := looseEdge
	if utf8.RuneCountInString(k) <= shortKeywordLen {
		edge = strictEdge
	}
	return regexp.Compile(`(?:^|` + edge + `)(?:` + body + `)(?:$|` + edge + `)`)
}

// Match reports whether text contains at least one keyword.
func (m *Matcher) Match(text string) bool {
	text = util.FoldText(text)
	if text == "" {
		return false
	}
	for _, re := range m.res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// MatchesKeywords is the one-shot form of NewMatcher(keywords).Match(text).
func MatchesKeywords(text string, keywords []string) (bool, error) {
	m, err := NewMatcher(keywords)
	if err != nil {
		return false, err
	}
	return m.Match(text), nil
}
