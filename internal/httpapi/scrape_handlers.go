package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"jobcrawl-engine/internal/config"
	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/events"
	"jobcrawl-engine/internal/logger"
	"jobcrawl-engine/internal/scrape"
)

type ScrapeHandler struct {
	CfgVal   *atomic.Value // config.Config
	Tracker  *scrape.StatusTracker
	Hub      *events.Hub
	RunCrawl CrawlFunc
	// BaseCtx bounds background crawls; cancelling it stops them between units.
	BaseCtx  context.Context
}

func (h ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Tracker.Snapshot())
}

// Run starts a crawl in the background; progress arrives over /events.
func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.Tracker.Begin(time.Now()) {
		WriteJSON(w, http.StatusConflict, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	reqID := RequestIDFrom(r.Context())
	log := logger.FromContext(r.Context())
	cfg := h.CfgVal.Load().(config.Config)
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeRunStarted, 1, map[string]any{"sources": cfg.EnabledSources()}))

	// the crawl outlives the request but not the server
	ctx := h.BaseCtx
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		results := h.RunCrawl(ctx, cfg, func(j domain.JobRecord) {
			h.Hub.Publish(events.JobCreated(reqID, j))
		})

		all, err := scrape.Combine(results)
		h.Tracker.End(time.Now(), all.Saved, err)
		h.Hub.Publish(events.RunFinished(reqID, all, err))
		if err != nil {
			log.Warn("background crawl finished with error", logger.Error(err))
			return
		}
		log.Info("background crawl finished", logger.Int("saved", all.Saved), logger.Int("total", all.Total))
	}()

	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
