package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/logger"
	"jobcrawl-engine/internal/report"
)

type JobsHandler struct {
	Store JobStore
}

type jobsResponse struct {
	Count int                `json:"count"`
	Jobs  []domain.JobRecord `json:"jobs"`
}

// List serves GET /jobs?q=&source=.
func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobs, err := h.Store.Query(r.Context(), strings.TrimSpace(q.Get("q")), strings.TrimSpace(q.Get("source")))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, jobsResponse{Count: len(jobs), Jobs: nonNil(jobs)})
}

// Latest serves GET /jobs/latest?limit=.
func (h JobsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Store.Latest(r.Context(), intParam(r, "limit", 20, 500))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, jobsResponse{Count: len(jobs), Jobs: nonNil(jobs)})
}

func (h JobsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Store.ExportAll(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	name := fmt.Sprintf("jobs-%s.csv", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := report.WriteCSV(w, jobs); err != nil {
		// headers are gone; the client sees a truncated file
		logger.FromContext(r.Context()).Warn("csv export aborted", logger.Error(err))
	}
}

type statsResponse struct {
	Total    int                  `json:"total"`
	BySource []domain.SourceCount `json:"by_source"`
}

func (h JobsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	total, err := h.Store.Count(r.Context(), "")
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	by, err := h.Store.CountBySource(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if by == nil {
		by = []domain.SourceCount{}
	}
	writeJSON(w, statsResponse{Total: total, BySource: by})
}

func nonNil(jobs []domain.JobRecord) []domain.JobRecord {
	if jobs == nil {
		return []domain.JobRecord{}
	}
	return jobs
}
