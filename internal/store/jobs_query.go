package store

import (
	"context"
	"database/sql"
	"strings"

	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/scrape/util"
)

const jobColumns = `id, source, title, company, link, fingerprint, created_at, updated_at`

// Count returns the number of stored jobs, restricted to source when it is non-empty.
func (s *Store) Count(ctx context.Context, source string) (int, error) {
	var (
		n   int
		err error
	)
	if source == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs;`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs WHERE source = ?;`, source).Scan(&n)
	}
	if err != nil {
		return 0, unavailable("count jobs", err)
	}
	return n, nil
}

func (s *Store) CountBySource(ctx context.Context) ([]domain.SourceCount, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT source, COUNT(*) AS n
FROM jobs
GROUP BY source
ORDER BY n DESC, source ASC;`)
	if err != nil {
		return nil, unavailable("count by source", err)
	}
	defer rows.Close()

	var out []domain.SourceCount
	for rows.Next() {
		var sc domain.SourceCount
		if err := rows.Scan(&sc.Source, &sc.Count); err != nil {
			return nil, unavailable("count by source", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("count by source", err)
	}
	return out, nil
}

// Query returns jobs whose title or company contains keyword (case- and
// accent-form-insensitive), optionally limited to source, newest first.
// An empty keyword matches everything.
func (s *Store) Query(ctx context.Context, keyword, source string) ([]domain.JobRecord, error) {
	var (
		jobs []domain.JobRecord
		err  error
	)
	if source == "" {
		jobs, err = s.list(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, id DESC;`)
	} else {
		jobs, err = s.list(ctx, `SELECT `+jobColumns+` FROM jobs WHERE source = ? ORDER BY created_at DESC, id DESC;`, source)
	}
	if err != nil {
		return nil, err
	}

	needle := util.FoldText(keyword)
	if needle == "" {
		return jobs, nil
	}
	out := jobs[:0]
	for _, j := range jobs {
		if strings.Contains(util.FoldText(j.Title), needle) || strings.Contains(util.FoldText(j.Company), needle) {
			out = append(out, j)
		}
	}
	return out, nil
}

// ExportAll returns every job, newest first.
func (s *Store) ExportAll(ctx context.Context) ([]domain.JobRecord, error) {
	return s.list(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, id DESC;`)
}

// Latest returns the limit most recently stored jobs.
func (s *Store) Latest(ctx context.Context, limit int) ([]domain.JobRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.list(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, id DESC LIMIT ?;`, limit)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]domain.JobRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("list jobs", err)
	}
	defer rows.Close()

	var out []domain.JobRecord
	for rows.Next() {
		var (
			j                  domain.JobRecord
			link               sql.NullString
			created, updatedAt string
		)
		if err := rows.Scan(
			&j.ID,
			&j.Source,
			&j.Title,
			&j.Company,
			&link,
			&j.Fingerprint,
			&created,
			&updatedAt,
		); err != nil {
			return nil, unavailable("scan job", err)
		}
		j.Link = link.String
		j.CreatedAt = parseTime(created)
		j.UpdatedAt = parseTime(updatedAt)
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list jobs", err)
	}
	return out, nil
}
