package empregos

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/scrape/types"
	"jobcrawl-engine/internal/scrape/util"
)

const (
	Name        = "empregos"
	DefaultBase = "https://www.empregos.com.br"
)

// The site has shipped several card markups; newest first.
var layout = util.Layout{
	Markers: []string{"#lista-vagas", ".lista-vagas", ".resultado-busca", ".sem-resultados"},
	Items:   []string{".vaga-item", ".job-item", "div.vaga"},
	Title:   []string{"a.titulo", "h2 a", `a[href*="/vaga/"]`, "h2"},
	Company: []string{"span.empresa", ".nome-empresa", ".company"},
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
	if page <= 1 {
		return fmt.Sprintf("%s/vagas/%s", s.base, util.Slug(query))
	}
	return fmt.Sprintf("%s/vagas/%s/%d", s.base, util.Slug(query), page)
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
	return types.Page{Candidates: cands, Last: len(cands) == 0}, nil
}
