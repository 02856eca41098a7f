package config

import (
	"fmt"
	"strings"

	"jobcrawl-engine/internal/logger"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg and what is wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Crawl.Keywords = trimList(out.Crawl.Keywords)
	out.Filters.Keywords = trimList(out.Filters.Keywords)
	out.Logging.Level = strings.ToLower(strings.TrimSpace(out.Logging.Level))

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if strings.TrimSpace(out.App.DataDir) == "" && strings.TrimSpace(out.Store.Path) == "" {
		res.addErr("app.data_dir or store.path is required")
	}

	if len(out.Crawl.Keywords) == 0 {
		res.addErr("crawl.keywords must have at least 1 non-blank term")
	}
	if out.Crawl.Pages < 1 {
		res.addErr("crawl.pages must be >= 1")
	} else if out.Crawl.Pages > 20 {
		res.addWarn("crawl.pages is high (%d); sites may start rate limiting.", out.Crawl.Pages)
	}
	if out.Crawl.RequestTimeoutSeconds <= 0 {
		res.addErr("crawl.request_timeout_seconds must be > 0")
	}
	if out.Crawl.RequestDelayMS < 0 {
		res.addErr("crawl.request_delay_ms must be >= 0")
	} else if out.Crawl.RequestDelayMS < 500 {
		res.addWarn("crawl.request_delay_ms is very low (%d) and may get the crawler blocked.", out.Crawl.RequestDelayMS)
	}
	if out.Crawl.MaxFetchRetries < 0 {
		res.addErr("crawl.max_fetch_retries must be >= 0")
	}
	if out.Crawl.RetryBackoffMS < 0 {
		res.addErr("crawl.retry_backoff_ms must be >= 0")
	}
	if out.Crawl.MaxParallelSources < 1 {
		res.addErr("crawl.max_parallel_sources must be >= 1")
	}
	if out.Crawl.MaxStoreFailures < 1 {
		res.addErr("crawl.max_store_failures must be >= 1")
	}

	if len(out.EnabledSources()) == 0 {
		res.addErr("no sources enabled: enable at least one of vagas, empregos, programathor, indeed")
	}

	if out.Logging.Level != "" && !logger.ValidLevel(out.Logging.Level) {
		res.addWarn("logging.level %q is unknown; using info.", out.Logging.Level)
	}

	// keywords that can never pass the relevance filter
	if len(out.Filters.Keywords) > 0 {
		filterSet := map[string]bool{}
		for _, k := range out.Filters.Keywords {
			filterSet[strings.ToLower(k)] = true
		}
		for _, k := range out.Crawl.Keywords {
			if !filterSet[strings.ToLower(k)] {
				res.addWarn("crawl keyword %q is not in filters.keywords; titles must still match a filter keyword.", k)
			}
		}
	}

	return out, res
}
