package scrape

import (
	"net/http"
	"strings"

	"jobcrawl-engine/internal/config"
	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/logger"
	"jobcrawl-engine/internal/scrape/empregos"
	"jobcrawl-engine/internal/scrape/indeed"
	"jobcrawl-engine/internal/scrape/programathor"
	"jobcrawl-engine/internal/scrape/types"
	"jobcrawl-engine/internal/scrape/util"
	"jobcrawl-engine/internal/scrape/vagas"
)

// SourceNames lists every adapter this build knows, in run order.
var SourceNames = []string{vagas.Name, empregos.Name, programathor.Name, indeed.Name}

// NewExtractor builds the adapter for name sharing hc.
func NewExtractor(name string, hc *http.Client) (types.Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case vagas.Name:
		return vagas.New(vagas.Config{Client: hc}), nil
	case empregos.Name:
		return empregos.New(empregos.Config{Client: hc}), nil
	case programathor.Name:
		return programathor.New(programathor.Config{Client: hc}), nil
	case indeed.Name:
		return indeed.New(indeed.Config{Client: hc}), nil
	default:
		return nil, domain.Invalidf("unknown source %q (known: %s)", name, strings.Join(SourceNames, ", "))
	}
}

// Extractors builds adapters for names, or for every enabled source when names is empty.
func Extractors(cfg config.Config, names []string) ([]types.Extractor, error) {
	if len(names) == 0 {
		names = cfg.EnabledSources()
	}
	if len(names) == 0 {
		return nil, domain.Invalidf("no sources enabled")
	}

	hc := util.NewClient(cfg.RequestTimeout())
	out := make([]types.Extractor, 0, len(names))
	for _, n := range names {
		ex, err := NewExtractor(n, hc)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, nil
}

// OptionsFromConfig maps the crawl section onto runner options.
func OptionsFromConfig(cfg config.Config, lg logger.Logger) Options {
	return Options{
		FilterKeywords:     cfg.FilterKeywords(),
		FetchTimeout:       cfg.RequestTimeout(),
		MaxFetchRetries:    cfg.Crawl.MaxFetchRetries,
		RetryBackoff:       cfg.RetryBackoff(),
		Limiter:            util.NewSourceLimiter(cfg.RequestDelay()),
		MaxStoreFailures:   cfg.Crawl.MaxStoreFailures,
		MaxParallelSources: cfg.Crawl.MaxParallelSources,
		Logger:             lg,
	}
}
