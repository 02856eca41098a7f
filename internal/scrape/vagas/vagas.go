package vagas

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
	Name        = "vagas"
	DefaultBase = "https://www.vagas.com.br"
)

var layout = util.Layout{
	Markers: []string{"#todasVagas", "ul.lista-de-vagas", ".vagas-nao-encontradas"},
	Items:   []string{"div.informacoes-header"},
	Title:   []string{"a.link-detalhes-vaga", "h2 a"},
	Company: []string{"span.emprVaga", ".emprVaga"},
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

// FetchPage loads /vagas-de-<term>?pagina=<n>.
func (s *Scraper) FetchPage(ctx context.Context, query string, page int) (types.Page, error) {
	pageURL := fmt.Sprintf("%s/vagas-de-%s?pagina=%d", s.base, util.Slug(query), page)

	doc, err := util.FetchDocument(ctx, s.hc, Name, pageURL)
	if err != nil {
		return types.Page{}, err
	}

	cands, ok := util.ExtractListing(doc, Name, s.base, layout)
	if !ok {
		return types.Page{}, &domain.FetchError{Source: Name, URL: pageURL, Err: domain.ErrUnknownLayout}
	}
	// the results list shows a "load more" button only while pages remain
	last := len(cands) == 0 || doc.Find("#maisVagas, a.btMaisVagas").Length() == 0
	return types.Page{Candidates: cands, Last: last}, nil
}
