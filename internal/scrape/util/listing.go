package util

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobcrawl-engine/internal/domain"
)

// Layout describes one site's results page. Selector lists are tried in order.
type Layout struct {
	// Markers are present on a recognised results page even when it has no items.
	Markers []string
	Items   []string
	Title   []string
	Company []string
}

// ExtractListing pulls raw candidates out of doc. Missing fields are left empty for
// the normalizer to reject. ok is false when neither items nor markers matched.
func ExtractListing(doc *goquery.Document, source, base string, l Layout) (out []domain.RawCandidate, ok bool) {
	items, _ := FirstMatch(doc.Selection, l.Items...)
	if items == nil {
		_, marker := FirstMatch(doc.Selection, l.Markers...)
		return nil, marker != ""
	}

	items.Each(func(_ int, item *goquery.Selection) {
		title, titleSel := cardTitle(item, l.Title)
		out = append(out, domain.RawCandidate{
			Source:  source,
			Title:   title,
			Company: FirstText(item, l.Company...),
			Link:    ResolveLink(base, cardHref(item, titleSel)),
		})
	})
	return out, true
}

func cardTitle(item *goquery.Selection, selectors []string) (string, *goquery.Selection) {
	for _, sel := range selectors {
		s := item.Find(sel).First()
		if t := CleanText(s.Text()); t != "" && !LooksLikeJunkTitle(t) {
			return t, s
		}
	}
	return "", nil
}

// cardHref prefers the title anchor, then the card itself, then any anchor around or in it.
func cardHref(item, title *goquery.Selection) string {
	if title != nil {
		if h, ok := title.Attr("href"); ok {
			return h
		}
		if h, ok := title.Closest("a[href]").Attr("href"); ok {
			return h
		}
	}
	if h, ok := item.Attr("href"); ok {
		return h
	}
	if h, ok := item.Closest("a[href]").Attr("href"); ok {
		return h
	}
	h, _ := item.Find("a[href]").First().Attr("href")
	return h
}

// Slug turns a search term into a path segment: "Analista de Dados" -> "analista-de-dados".
func Slug(term string) string {
	return url.PathEscape(strings.Join(strings.Fields(FoldText(term)), "-"))
}
