package indeed

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
	Name        = "indeed"
	DefaultBase = "https://br.indeed.com"

	// results per page; the start parameter counts cards
	pageSize = 10
)

var layout = util.Layout{
	Markers: []string{"#mosaic-provider-jobcards", "ul.jobsearch-ResultsList", ".jobsearch-NoResult-messageContainer"},
	Items:   []string{"li:has(a.jcs-JobTitle)", "div.job_seen_beacon"},
	Title:   []string{"a.jcs-JobTitle", "h2.jobTitle a"},
	Company: []string{`[data-testid="company-name"]`, "span.companyName"},
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

func (s *Scraper) pageURL(query string, page int) string {
	q := url.Values{}
	q.Set("q", util.CleanText(query))
	if page > 1 {
		q.Set("start", strconv.Itoa((page-1)*pageSize))
	}
	return s.base + "/jobs?" + q.Encode()
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
	last := len(cands) == 0 || doc.Find(`a[data-testid="pagination-page-next"]`).Length() == 0
	return types.Page{Candidates: cands, Last: last}, nil
}
