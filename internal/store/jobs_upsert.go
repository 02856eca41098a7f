package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"jobcrawl-engine/internal/domain"
	"jobcrawl-engine/internal/fingerprint"
)

// timeLayout is fixed-width so TEXT ordering equals chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000000Z"

type InsertStatus int

const (
	Inserted InsertStatus = iota + 1
	Duplicate
)

func (s InsertStatus) String() string {
	switch s {
	case Inserted:
		return "inserted"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

type InsertResult struct {
	Status      InsertStatus
	ID          int64 // set when Status == Inserted
	Fingerprint string
}

// Insert stores c unless a job with the same fingerprint already exists.
func (s *Store) Insert(ctx context.Context, c domain.NormalizedCandidate) (InsertResult, error) {
	fp, err := fingerprint.Candidate(c)
	if err != nil {
		return InsertResult{}, err
	}
	return s.InsertWithFingerprint(ctx, c, fp)
}

// InsertWithFingerprint is Insert with a precomputed fingerprint. The unique index
// decides; a conflicting row inserted concurrently yields Duplicate, not an error.
func (s *Store) InsertWithFingerprint(ctx context.Context, c domain.NormalizedCandidate, fp string) (InsertResult, error) {
	if len(fp) != fingerprint.Size {
		return InsertResult{}, domain.Invalidf("fingerprint %q has wrong length", fp)
	}

	now := s.now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx, `
INSERT INTO jobs(source, title, company, link, fingerprint, created_at, updated_at)
VALUES(?,?,?,?,?,?,?)
ON CONFLICT(fingerprint) DO NOTHING;`,
		c.Source,
		c.Title,
		c.Company,
		nullString(c.Link),
		fp,
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return InsertResult{Status: Duplicate, Fingerprint: fp}, nil
		}
		return InsertResult{}, unavailable("insert job", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return InsertResult{}, unavailable("insert job", err)
	}
	if n == 0 {
		return InsertResult{Status: Duplicate, Fingerprint: fp}, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return InsertResult{}, unavailable("insert job", err)
	}
	return InsertResult{Status: Inserted, ID: id, Fingerprint: fp}, nil
}

func (s *Store) Exists(ctx context.Context, fp string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM jobs WHERE fingerprint = ? LIMIT 1;`, fp,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, unavailable("exists", err)
	}
	return true, nil
}

// Clear deletes every job. AUTOINCREMENT keeps ids from being handed out again.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM jobs;`); err != nil {
		return unavailable("clear jobs", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}
