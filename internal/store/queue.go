package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// QueuedItem is a discovered feed entry awaiting processing. Rows are never
// updated; they are inserted during refill and deleted when their processing
// attempt concludes.
type QueuedItem struct {
	ID          int64
	GUID        string
	Link        string
	Title       string
	PublishedAt *time.Time
}

// Enqueue inserts the item unless its guid or link is already queued.
// Returns whether a row was actually added.
func (s *Store) Enqueue(ctx context.Context, item QueuedItem) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO queue (guid, link, title, published_at) VALUES (?, ?, ?, ?)",
		item.GUID, item.Link, item.Title, nullTime(item.PublishedAt))
	if err != nil {
		return false, fmt.Errorf("enqueue %s: %w", item.GUID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// EnqueueBatch inserts items in feed order inside one transaction, stopping
// once limit rows have actually been added. Either the whole refill lands or
// none of it does. Returns the number of rows inserted.
func (s *Store) EnqueueBatch(ctx context.Context, items []QueuedItem, limit int) (int, error) {
	if len(items) == 0 || limit <= 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin refill: %w", err)
	}
	defer tx.Rollback()

	added := 0
	for _, item := range items {
		if added >= limit {
			break
		}
		res, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO queue (guid, link, title, published_at) VALUES (?, ?, ?, ?)",
			item.GUID, item.Link, item.Title, nullTime(item.PublishedAt))
		if err != nil {
			return 0, fmt.Errorf("refill insert %s: %w", item.GUID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit refill: %w", err)
	}
	return added, nil
}

// PeekOldest returns the queued item with the smallest id, or nil when the
// queue is empty. The row is not removed.
func (s *Store) PeekOldest(ctx context.Context) (*QueuedItem, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, guid, link, title, published_at FROM queue ORDER BY id ASC LIMIT 1")
	var (
		item      QueuedItem
		published sql.NullTime
	)
	err := row.Scan(&item.ID, &item.GUID, &item.Link, &item.Title, &published)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("peek queue: %w", err)
	}
	if published.Valid {
		item.PublishedAt = &published.Time
	}
	return &item, nil
}

// Remove deletes a queued item by id. Removing an absent id is not an error.
func (s *Store) Remove(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM queue WHERE id = ?", id); err != nil {
		return fmt.Errorf("remove queue item %d: %w", id, err)
	}
	return nil
}

// QueueLen reports how many items are waiting.
func (s *Store) QueueLen(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM queue").Scan(&n); err != nil {
		return 0, fmt.Errorf("count queue: %w", err)
	}
	return n, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
