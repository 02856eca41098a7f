package scrape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobcrawl-engine/internal/config"
	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/logger"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Crawl.Keywords = []string{"python", "dados"}
	cfg.Crawl.MaxFetchRetries = 4
	cfg.Crawl.RetryBackoffMS = 250

	opts := OptionsFromConfig(cfg, logger.NewNop())
	assert.Equal(t, []string{"python", "dados"}, opts.FilterKeywords, "filters fall back to crawl keywords")
	assert.Equal(t, 4, opts.MaxFetchRetries)
	assert.Equal(t, 250*time.Millisecond, opts.RetryBackoff)
	assert.Equal(t, cfg.RequestTimeout(), opts.FetchTimeout)
	assert.NotNil(t, opts.Limiter)

	cfg.Filters.Keywords = []string{"golang"}
	assert.Equal(t, []string{"golang"}, OptionsFromConfig(cfg, nil).FilterKeywords)
}

func TestExtractors(t *testing.T) {
	cfg := config.Defaults()
	cfg.Sources.Empregos.Enabled = false

	exs, err := Extractors(cfg, nil)
	require.NoError(t, err)
	var names []string
	for _, ex := range exs {
		names = append(names, ex.Name())
	}
	assert.Equal(t, []string{"vagas", "programathor", "indeed"}, names)

	_, err = Extractors(cfg, []string{"nosuchboard"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
