package programathor

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/scrape/types"
	"jobcrawl-engine/internal/scrape/util"
)

const (
	Name        = "programathor"
	DefaultBase = "https://programathor.com.br"
)

var layout = util.Layout{
	Markers: []string{".container-jobs", "#jobs", ".jobs-list", ".no-jobs"},
	Items:   []string{".cell-list", ".job-item", "article"},
	Title:   []string{"h3", "h2", ".job-title"},
	// company sits in the span that holds the building icon
	Company: []string{"span:has(i.fa-building)", ".company", ".company-name"},
}

type Config struct {
	BaseURL string
	Client  *http.Client
}

type Scraper struct {
	base string
	hc   *http.Client
}

var _ types.Extractor = (*Scraper)(nil)

func New(cfg Config) *Scraper {
	s := &Scraper{
		base: strings.TrimRight(cfg.BaseURL, "/"),
		hc:   cfg.Client,
	}
	if s.base == "" {
		s.base = DefaultBase
	}
	if s.hc == nil {
		s.hc = util.NewClient(util.DefaultTimeout)
	}
	return s
}

func (s *Scraper) Name() string { return Name }

// pageURL builds /jobs with optional search and page parameters.
func (s *Scraper) pageURL(query string, page int) string {
	q := url.Values{}
	if t := util.CleanText(query); t != "" {
		q.Set("search", t)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	u := s.base + "/jobs"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (s *Scraper) FetchPage(ctx context.Context, query string, page int) (types.Page, error) {
	pageURL := s.pageURL(query, page)

	doc, err := util.FetchDocument(ctx, s.hc, Name, pageURL)
	if err != nil {
		return types.Page{}, err
	}

	cands, ok := util.ExtractListing(doc, Name, s.base, layout)
	if !ok {
		return types.Page{}, &domain.FetchError{Source: Name, URL: pageURL, Err: domain.ErrUnknownLayout}
	}
	last := len(cands) == 0 || doc.Find(`.pagination a[rel="next"], a.next_page`).Length() == 0
	return types.Page{Candidates: cands, Last: last}, nil
}
