package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Store struct {
		// Path defaults to <data_dir>/jobs.db when empty.
		Path string `yaml:"path"`
	} `yaml:"store"`

	Crawl struct {
		Pages                 int      `yaml:"pages"`
		Keywords              []string `yaml:"keywords"`
		RequestTimeoutSeconds int      `yaml:"request_timeout_seconds"`
		RequestDelayMS        int      `yaml:"request_delay_ms"`
		MaxFetchRetries       int      `yaml:"max_fetch_retries"`
		RetryBackoffMS        int      `yaml:"retry_backoff_ms"`
		MaxParallelSources    int      `yaml:"max_parallel_sources"`
		MaxStoreFailures      int      `yaml:"max_store_failures"`
	} `yaml:"crawl"`

	Filters struct {
		// Keywords a title must match to be stored. Empty means the crawl keywords.
		Keywords []string `yaml:"keywords"`
	} `yaml:"filters"`

	Sources struct {
		Vagas        Source `yaml:"vagas"`
		Empregos     Source `yaml:"empregos"`
		Programathor Source `yaml:"programathor"`
		Indeed       Source `yaml:"indeed"`
	} `yaml:"sources"`

	Logging struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"logging"`
}

type Source struct {
	Enabled bool `yaml:"enabled"`
}

// Defaults returns the configuration used when a field is left out of the file.
func Defaults() Config {
	var cfg Config
	cfg.App.Port = 38471
	cfg.App.DataDir = "."
	cfg.Crawl.Pages = 1
	cfg.Crawl.Keywords = []string{"python", "desenvolvedor"}
	cfg.Crawl.RequestTimeoutSeconds = 10
	cfg.Crawl.RequestDelayMS = 1000
	cfg.Crawl.MaxFetchRetries = 2
	cfg.Crawl.RetryBackoffMS = 500
	cfg.Crawl.MaxParallelSources = 2
	cfg.Crawl.MaxStoreFailures = 3
	cfg.Sources.Vagas.Enabled = true
	cfg.Sources.Empregos.Enabled = true
	cfg.Sources.Programathor.Enabled = true
	cfg.Sources.Indeed.Enabled = true
	cfg.Logging.Level = "info"
	return cfg
}

// Load reads path over Defaults and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides file values with JOBCRAWL_* environment variables.
func ApplyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("JOBCRAWL_DATA_DIR")); v != "" {
		cfg.App.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("JOBCRAWL_DB_PATH")); v != "" {
		cfg.Store.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("JOBCRAWL_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("JOBCRAWL_PORT")); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("JOBCRAWL_PORT=%q: %w", v, err)
		}
		cfg.App.Port = p
	}
	return nil
}

func (c Config) DBPath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(c.App.DataDir, "jobs.db")
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Crawl.RequestTimeoutSeconds) * time.Second
}

func (c Config) RequestDelay() time.Duration {
	return time.Duration(c.Crawl.RequestDelayMS) * time.Millisecond
}

func (c Config) RetryBackoff() time.Duration {
	return time.Duration(c.Crawl.RetryBackoffMS) * time.Millisecond
}

// FilterKeywords are the relevance keywords, falling back to the crawl keywords.
func (c Config) FilterKeywords() []string {
	if len(c.Filters.Keywords) > 0 {
		return c.Filters.Keywords
	}
	return c.Crawl.Keywords
}

// EnabledSources lists enabled source names in a stable order.
func (c Config) EnabledSources() []string {
	var out []string
	for _, s := range []struct {
		name string
		src  Source
	}{
		{"vagas", c.Sources.Vagas},
		{"empregos", c.Sources.Empregos},
		{"programathor", c.Sources.Programathor},
		{"indeed", c.Sources.Indeed},
	} {
		if s.src.Enabled {
			out = append(out, s.name)
		}
	}
	return out
}
