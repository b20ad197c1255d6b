package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostedRecord is permanent proof that an item was published. The ledger is
// append-only; rows are never updated or deleted.
type PostedRecord struct {
	GUID        string
	Link        string
	Title       string
	PublishedAt *time.Time
}

// HasBeenPosted reports whether any ledger row matches the identifier on
// either its guid or its link.
func (s *Store) HasBeenPosted(ctx context.Context, identifier string) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM posted WHERE guid = ? OR link = ? LIMIT 1", identifier, identifier)
	var one int
	err := row.Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check posted %s: %w", identifier, err)
	}
	return true, nil
}

// MarkPosted records a successful publish. Inserting a record whose guid or
// link already exists is a no-op, so replays after a crash are harmless.
func (s *Store) MarkPosted(ctx context.Context, rec PostedRecord) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO posted (guid, link, title, published_at) VALUES (?, ?, ?, ?)",
		rec.GUID, rec.Link, rec.Title, nullTime(rec.PublishedAt))
	if err != nil {
		return fmt.Errorf("mark posted %s: %w", rec.GUID, err)
	}
	return nil
}

// PostedCount reports how many items have ever been published.
func (s *Store) PostedCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posted").Scan(&n); err != nil {
		return 0, fmt.Errorf("count posted: %w", err)
	}
	return n, nil
}
