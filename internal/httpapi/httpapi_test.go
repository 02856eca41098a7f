package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"jobcrawl-engine/internal/config"
	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/events"
	"jobcrawl-engine/internal/logger"
	"jobcrawl-engine/internal/scrape"
	"jobcrawl-engine/internal/store"
)

type apiFixture struct {
	srv    *httptest.Server
	store  *store.Store
	hub    *events.Hub
	status *scrape.StatusTracker
}

func newFixture(t *testing.T, crawl CrawlFunc) *apiFixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	st, err := store.Open(ctx, filepath.Join(dir, "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	for _, c := range []domain.NormalizedCandidate{
		{Source: "vagas", Title: "Desenvolvedor Python", Company: "Acme", Link: "https://www.vagas.com.br/vagas/v1"},
		{Source: "indeed", Title: "Python Engineer", Company: "Zeta"},
		{Source: "vagas", Title: "Analista de Dados", Company: "Beta"},
	} {
		_, err := st.Insert(ctx, c)
		require.NoError(t, err)
	}

	cfgPath := filepath.Join(dir, "config.yml")
	require.NoError(t, config.SaveAtomic(cfgPath, config.Defaults()))
	cfgVal := &atomic.Value{}
	cfgVal.Store(config.Defaults())

	f := &apiFixture{store: st, hub: events.NewHub(), status: &scrape.StatusTracker{}}
	f.srv = httptest.NewServer(NewHandler(Deps{
		Store:       st,
		Hub:         f.hub,
		CfgVal:      cfgVal,
		UserCfgPath: cfgPath,
		LoadCfg:     func() (config.Config, error) { return config.Load(cfgPath) },
		Status:      f.status,
		RunCrawl:    crawl,
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)
	var body map[string]any
	res := getJSON(t, f.srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
}

func TestJobs_QueryAndLatest(t *testing.T) {
	f := newFixture(t, nil)

	var all jobsResponse
	getJSON(t, f.srv.URL+"/jobs", &all)
	assert.Equal(t, 3, all.Count)

	var py jobsResponse
	getJSON(t, f.srv.URL+"/jobs?q=PYTHON", &py)
	assert.Equal(t, 2, py.Count)

	var pyVagas jobsResponse
	getJSON(t, f.srv.URL+"/jobs?q=python&source=vagas", &pyVagas)
	require.Equal(t, 1, pyVagas.Count)
	assert.Equal(t, "Acme", pyVagas.Jobs[0].Company)

	var none jobsResponse
	getJSON(t, f.srv.URL+"/jobs?q=cobol", &none)
	assert.Zero(t, none.Count)
	assert.NotNil(t, none.Jobs)

	var latest jobsResponse
	getJSON(t, f.srv.URL+"/jobs/latest?limit=2", &latest)
	assert.Equal(t, 2, latest.Count)
}

func TestStats(t *testing.T) {
	f := newFixture(t, nil)
	var s statsResponse
	getJSON(t, f.srv.URL+"/stats", &s)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, []domain.SourceCount{{Source: "vagas", Count: 2}, {Source: "indeed", Count: 1}}, s.BySource)
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t, nil)
	res, err := http.Get(f.srv.URL + "/jobs/export.csv")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, res.Header.Get("Content-Disposition"), "attachment")

	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "id,source,title,company,link,fingerprint,created_at", lines[0])
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t, nil)
	res, err := http.Post(f.srv.URL+"/jobs", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	var apiErr APIError
	require.NoError(t, json.NewDecoder(res.Body).Decode(&apiErr))
	assert.Equal(t, "method_not_allowed", apiErr.Error.Code)
	assert.NotEmpty(t, apiErr.Error.RequestID)
}

func TestCorsPreflight(t *testing.T) {
	f := newFixture(t, nil)
	req, _ := http.NewRequest(http.MethodOptions, f.srv.URL+"/jobs", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "http://localhost:5173", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestScrapeRun_PublishesEventsAndUpdatesStatus(t *testing.T) {
	release := make(chan struct{})
	crawl := func(ctx context.Context, cfg config.Config, onInserted func(domain.JobRecord)) []scrape.SourceResult {
		<-release
		onInserted(domain.JobRecord{ID: 42, Source: "vagas", Title: "Go Dev", Company: "Acme"})
		return []scrape.SourceResult{{Summary: domain.RunSummary{Source: "vagas", Saved: 1, Total: 4}}}
	}
	f := newFixture(t, crawl)
	sub := f.hub.Subscribe()
	defer f.hub.Unsubscribe(sub)

	res, err := http.Post(f.srv.URL+"/scrape/run", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusAccepted, res.StatusCode)

	// a second run while the first is going is refused
	res, err = http.Post(f.srv.URL+"/scrape/run", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	assert.True(t, f.status.Snapshot().Running)
	close(release)

	var types []string
	timeout := time.After(2 * time.Second)
	for len(types) < 3 {
		select {
		case msg := <-sub:
			var e events.Event
			require.NoError(t, json.Unmarshal([]byte(msg), &e))
			types = append(types, e.Type)
		case <-timeout:
			t.Fatalf("timed out, got events %v", types)
		}
	}
	assert.Equal(t, []string{events.TypeRunStarted, events.TypeJobCreated, events.TypeRunFinished}, types)

	require.Eventually(t, func() bool { return !f.status.Snapshot().Running }, time.Second, 10*time.Millisecond)
	var st map[string]any
	getJSON(t, f.srv.URL+"/scrape/status", &st)
	assert.EqualValues(t, 1, st["last_added"])
	assert.Empty(t, st["last_error"])
	assert.NotEmpty(t, st["last_ok_at"])
}

func TestScrapeRun_ErrorIsRecorded(t *testing.T) {
	crawl := func(context.Context, config.Config, func(domain.JobRecord)) []scrape.SourceResult {
		return []scrape.SourceResult{{
			Summary: domain.RunSummary{Source: "vagas", Errors: 3},
			Err:     fmt.Errorf("vagas: %w", domain.ErrStoreUnavailable),
		}}
	}
	f := newFixture(t, crawl)

	res, err := http.Post(f.srv.URL+"/scrape/run", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()

	require.Eventually(t, func() bool { return !f.status.Snapshot().Running }, time.Second, 10*time.Millisecond)
	assert.Contains(t, f.status.Snapshot().LastError, "store unavailable")
}

func TestEvents_StreamsPingAndMessages(t *testing.T) {
	f := newFixture(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, f.srv.URL+"/events", nil)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	rd := bufio.NewReader(res.Body)
	readData := func() events.Event {
		for {
			line, err := rd.ReadString('\n')
			require.NoError(t, err)
			if data, ok := strings.CutPrefix(line, "data: "); ok {
				var e events.Event
				require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(data)), &e))
				return e
			}
		}
	}

	assert.Equal(t, events.TypePing, readData().Type)

	require.Eventually(t, func() bool { return f.hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	f.hub.Publish(events.JobCreated("", domain.JobRecord{ID: 1, Title: "Go Dev"}))
	assert.Equal(t, events.TypeJobCreated, readData().Type)
}

func TestConfig_GetPutValidate(t *testing.T) {
	f := newFixture(t, nil)

	var cfg config.Config
	getJSON(t, f.srv.URL+"/config", &cfg)
	assert.Equal(t, config.Defaults().Crawl.Pages, cfg.Crawl.Pages)

	cfg.Crawl.Pages = 4
	body, _ := json.Marshal(cfg)
	req, _ := http.NewRequest(http.MethodPut, f.srv.URL+"/config", strings.NewReader(string(body)))
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	getJSON(t, f.srv.URL+"/config", &cfg)
	assert.Equal(t, 4, cfg.Crawl.Pages)

	cfg.Crawl.Pages = 0
	body, _ = json.Marshal(cfg)
	req, _ = http.NewRequest(http.MethodPut, f.srv.URL+"/config", strings.NewReader(string(body)))
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	var v config.Validation
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	assert.NotEmpty(t, v.Errors)
}

// brokenStore fails every call the way a dead database would.
type brokenStore struct{ JobStore }

func (brokenStore) Query(context.Context, string, string) ([]domain.JobRecord, error) {
	return nil, fmt.Errorf("list jobs: %w: %w", domain.ErrStoreUnavailable, errors.New("disk I/O error"))
}

func (brokenStore) Ping(context.Context) error {
	return fmt.Errorf("ping: %w", domain.ErrStoreUnavailable)
}

func TestStoreFailureIs503(t *testing.T) {
	srv := httptest.NewServer(NewHandler(Deps{Store: brokenStore{}, Hub: events.NewHub()}))
	defer srv.Close()

	var apiErr APIError
	res := getJSON(t, srv.URL+"/jobs?q=go", &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	assert.Equal(t, "store_unavailable", apiErr.Error.Code)

	res = getJSON(t, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestCheckpoint_Loopback(t *testing.T) {
	f := newFixture(t, nil)
	res, err := http.Post(f.srv.URL+"/db/checkpoint", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	// checkpoint rejects anything but POST
	res, err = http.Get(f.srv.URL + "/db/checkpoint")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestScrapeRun_CrawlStopsWithServerContext(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan context.Context, 1)
	crawl := func(ctx context.Context, _ config.Config, _ func(domain.JobRecord)) []scrape.SourceResult {
		got <- ctx
		<-ctx.Done()
		return []scrape.SourceResult{{Summary: domain.RunSummary{Source: "vagas"}, Err: ctx.Err()}}
	}

	cfgVal := &atomic.Value{}
	cfgVal.Store(config.Defaults())
	tracker := &scrape.StatusTracker{}
	srv := httptest.NewServer(NewHandler(Deps{
		Hub:      events.NewHub(),
		CfgVal:   cfgVal,
		Status:   tracker,
		RunCrawl: crawl,
		BaseCtx:  base,
	}))
	defer srv.Close()

	res, err := http.Post(srv.URL+"/scrape/run", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusAccepted, res.StatusCode)

	var crawlCtx context.Context
	select {
	case crawlCtx = <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("crawl never started")
	}
	assert.NoError(t, crawlCtx.Err(), "request end does not cancel the crawl")

	cancel()
	waitCtx, wcancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer wcancel()
	require.NoError(t, tracker.Wait(waitCtx))
	assert.Contains(t, tracker.Snapshot().LastError, context.Canceled.Error())
}

func TestHandlerLogsCarryRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	srv := httptest.NewServer(NewHandler(Deps{
		Store:  brokenStore{},
		Hub:    events.NewHub(),
		Logger: logger.Wrap(zap.New(core)),
	}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/jobs", nil)
	req.Header.Set("X-Request-ID", "req-42")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, res.StatusCode)

	failed := logs.FilterMessage("store unavailable").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "req-42", failed[0].ContextMap()["request_id"])

	access := logs.FilterMessage("http").All()
	require.Len(t, access, 1)
	assert.Equal(t, "req-42", access[0].ContextMap()["request_id"])
}
