package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoad_FileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	writeFile(t, path, `
app:
  data_dir: /tmp/jc
crawl:
  pages: 3
  keywords: [golang]
sources:
  indeed:
    enabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/jc", cfg.App.DataDir)
	assert.Equal(t, 38471, cfg.App.Port, "default kept")
	assert.Equal(t, 3, cfg.Crawl.Pages)
	assert.Equal(t, []string{"golang"}, cfg.Crawl.Keywords)
	assert.Equal(t, []string{"golang"}, cfg.FilterKeywords())
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout())
	assert.Equal(t, time.Second, cfg.RequestDelay())
	assert.Equal(t, []string{"vagas", "empregos", "programathor"}, cfg.EnabledSources())
	assert.Equal(t, filepath.Join("/tmp/jc", "jobs.db"), cfg.DBPath())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	writeFile(t, path, "app:\n  port: 9000\n")

	t.Setenv("JOBCRAWL_DB_PATH", "/data/other.db")
	t.Setenv("JOBCRAWL_PORT", "9100")
	t.Setenv("JOBCRAWL_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.App.Port)
	assert.Equal(t, "/data/other.db", cfg.DBPath())
	assert.Equal(t, "debug", cfg.Logging.Level)

	t.Setenv("JOBCRAWL_PORT", "abc")
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	writeFile(t, path, "crawl: [unterminated")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeAndValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Crawl.Keywords = []string{" python ", "", "Python", "dados"}
	out, v := NormalizeAndValidate(cfg)
	assert.True(t, v.OK(), v.Errors)
	assert.Equal(t, []string{"python", "dados"}, out.Crawl.Keywords)

	bad := Defaults()
	bad.Crawl.Keywords = []string{"  "}
	bad.Crawl.Pages = 0
	bad.Crawl.MaxParallelSources = 0
	bad.Sources.Vagas.Enabled = false
	bad.Sources.Empregos.Enabled = false
	bad.Sources.Programathor.Enabled = false
	bad.Sources.Indeed.Enabled = false
	_, v = NormalizeAndValidate(bad)
	assert.False(t, v.OK())
	assert.Len(t, v.Errors, 4)

	warn := Defaults()
	warn.Crawl.RequestDelayMS = 100
	warn.Filters.Keywords = []string{"golang"}
	_, v = NormalizeAndValidate(warn)
	assert.True(t, v.OK())
	assert.NotEmpty(t, v.Warnings)
}

func TestEnsureUserConfig(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "default.yml")
	writeFile(t, def, "crawl:\n  pages: 4\n")

	dataDir := filepath.Join(dir, "data")
	p, err := EnsureUserConfig(dataDir, def)
	require.NoError(t, err)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Crawl.Pages)

	// existing user file is left alone
	writeFile(t, def, "crawl:\n  pages: 9\n")
	p2, err := EnsureUserConfig(dataDir, def)
	require.NoError(t, err)
	assert.Equal(t, p, p2)
	cfg, err = Load(p2)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Crawl.Pages)
}

func TestEnsureUserConfig_MissingDefaultWritesDefaults(t *testing.T) {
	dataDir := t.TempDir()
	p, err := EnsureUserConfig(dataDir, filepath.Join(dataDir, "nope.yml"))
	require.NoError(t, err)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, Defaults().Crawl.Keywords, cfg.Crawl.Keywords)
}

func TestSaveAtomic_KeepsBackupAndRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	cfg := Defaults()
	require.NoError(t, SaveAtomic(path, cfg))
	cfg.Crawl.Pages = 5
	require.NoError(t, SaveAtomic(path, cfg))

	_, err := os.Stat(path + ".bak")
	assert.NoError(t, err)
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Crawl.Pages)

	cfg.Crawl.Pages = 0
	assert.Error(t, SaveAtomic(path, cfg))
}
