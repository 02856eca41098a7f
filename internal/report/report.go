// Package report renders stored jobs and run summaries as tables and CSV.
package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/scrape"
)

const timeFormat = "02/01/2006 15:04:05"

var csvHeader = []string{"id", "source", "title", "company", "link", "fingerprint", "created_at"}

func newWriter(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// JobsTable prints jobs newest first, the way they come from the store.
func JobsTable(w io.Writer, jobs []domain.JobRecord) {
	t := newWriter(w)
	t.AppendHeader(table.Row{"#", "Source", "Title", "Company", "Link", "Collected"})
	for _, j := range jobs {
		t.AppendRow(table.Row{j.ID, j.Source, j.Title, j.Company, j.Link, localTime(j.CreatedAt)})
	}
	t.AppendFooter(table.Row{"", "", "", "", "jobs", len(jobs)})
	t.Render()
}

// WriteCSV writes the export layout: id,source,title,company,link,fingerprint,created_at.
// Fields are quoted per RFC 4180 so titles with commas or quotes survive.
func WriteCSV(w io.Writer, jobs []domain.JobRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, j := range jobs {
		if err := cw.Write([]string{
			strconv.FormatInt(j.ID, 10),
			j.Source,
			j.Title,
			j.Company,
			j.Link,
			j.Fingerprint,
			j.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func StatsTable(w io.Writer, counts []domain.SourceCount) {
	t := newWriter(w)
	t.AppendHeader(table.Row{"Source", "Jobs"})
	total := 0
	for _, c := range counts {
		t.AppendRow(table.Row{c.Source, c.Count})
		total += c.Count
	}
	t.AppendFooter(table.Row{"total", total})
	t.Render()
}

// SummaryTable prints one line per source plus the combined line.
func SummaryTable(w io.Writer, results []scrape.SourceResult) {
	t := newWriter(w)
	t.AppendHeader(table.Row{"Source", "Saved", "Duplicates", "Filtered", "Errors", "Total", "Status"})
	for _, r := range results {
		t.AppendRow(summaryRow(r.Summary, r.Err))
	}
	if len(results) > 1 {
		all, err := scrape.Combine(results)
		t.AppendFooter(summaryRow(all, err))
	}
	t.Render()
}

func summaryRow(s domain.RunSummary, err error) table.Row {
	status := "ok"
	if err != nil {
		status = err.Error()
	}
	return table.Row{s.Source, s.Saved, s.Duplicates, s.Filtered, s.Errors, s.Total, status}
}

func localTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(timeFormat)
}
