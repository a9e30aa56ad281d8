package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ItemRepository handles database operations for news items.
type ItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// AddItems upserts a batch of items keyed by content hash and returns the
// number of newly inserted records. A pre-existing hash is skipped without
// raising; a per-item failure is logged and skipped. One bad record never
// aborts the batch.
func (r *ItemRepository) AddItems(items []NewsItem) int {
	inserted := 0
	skipped := 0

	for _, item := range items {
		outcome, err := r.insertItem(item)
		switch outcome {
		case InsertOutcomeInserted:
			inserted++
		case InsertOutcomeSkipped:
			skipped++
		case InsertOutcomeFailed:
			slog.Error("Failed to store item, skipping", "link", item.Link, "error", err)
		}
	}

	slog.Info("Items stored", "total", len(items), "new", inserted, "duplicates", skipped)

	return inserted
}

func (r *ItemRepository) insertItem(item NewsItem) (InsertOutcome, error) {
	res, err := r.db.Exec(`
		INSERT INTO items (
			title, link, summary, source, published_at,
			content_hash, matched_terms, relevance_summary
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (content_hash) DO NOTHING
	`, item.Title, item.Link, item.Summary, item.Source, item.PublishedAt.UTC(),
		item.ContentHash, strings.Join(item.MatchedTerms, ","), item.RelevanceSummary)
	if err != nil {
		return InsertOutcomeFailed, fmt.Errorf("failed to insert item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return InsertOutcomeFailed, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return InsertOutcomeSkipped, nil
	}

	return InsertOutcomeInserted, nil
}

// ContentHashes returns every stored content hash in one bulk read, for
// deduplication before insert.
func (r *ItemRepository) ContentHashes() (map[string]struct{}, error) {
	rows, err := r.db.Query("SELECT content_hash FROM items")
	if err != nil {
		return nil, fmt.Errorf("failed to get content hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]struct{})
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("failed to scan content hash: %w", err)
		}
		hashes[hash] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating content hashes: %w", err)
	}

	return hashes, nil
}

// GetUnsentItems returns undelivered items ordered by published date
// descending. A limit of zero or less means no limit.
func (r *ItemRepository) GetUnsentItems(limit int) ([]Item, error) {
	query := `
		SELECT id, title, link, summary, source, published_at,
		       content_hash, matched_terms, relevance_summary,
		       sent, sent_at, created_at
		FROM items
		WHERE sent = 0
		ORDER BY published_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get unsent items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// GetRecentItems returns the most recently ingested items regardless of
// delivery state.
func (r *ItemRepository) GetRecentItems(limit int) ([]Item, error) {
	rows, err := r.db.Query(`
		SELECT id, title, link, summary, source, published_at,
		       content_hash, matched_terms, relevance_summary,
		       sent, sent_at, created_at
		FROM items
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// MarkSent transitions exactly the given ids to sent in one transaction.
// Either every requested id transitions or none do.
func (r *ItemRepository) MarkSent(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, time.Now().UTC())
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := tx.Exec(fmt.Sprintf(`
		UPDATE items
		SET sent = 1, sent_at = ?
		WHERE id IN (%s) AND sent = 0
	`, placeholders), args...)
	if err != nil {
		return fmt.Errorf("failed to mark items as sent: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected != int64(len(ids)) {
		return fmt.Errorf("expected to mark %d items as sent, matched %d", len(ids), affected)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Cleanup deletes sent items whose sent date is older than the cutoff and
// returns the number of deleted rows. Unsent items are never removed,
// regardless of age.
func (r *ItemRepository) Cleanup(olderThanDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)

	res, err := r.db.Exec(`
		DELETE FROM items
		WHERE sent = 1 AND sent_at < ?
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up old items: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return deleted, nil
}

// GetStatistics summarizes item counts, the last successful send time and
// the per-source distribution.
func (r *ItemRepository) GetStatistics() (*Statistics, error) {
	stats := &Statistics{ItemsBySource: make(map[string]int)}

	err := r.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN sent = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sent = 1 THEN 1 ELSE 0 END), 0)
		FROM items
	`).Scan(&stats.TotalItems, &stats.UnsentItems, &stats.SentItems)
	if err != nil {
		return nil, fmt.Errorf("failed to get item counts: %w", err)
	}

	var lastSend time.Time
	err = r.db.QueryRow(`
		SELECT logged_at FROM delivery_log
		WHERE success = 1
		ORDER BY logged_at DESC, id DESC
		LIMIT 1
	`).Scan(&lastSend)
	switch {
	case err == sql.ErrNoRows:
		// No successful delivery yet.
	case err != nil:
		return nil, fmt.Errorf("failed to get last send time: %w", err)
	default:
		stats.LastSuccessfulSendAt = &lastSend
	}

	rows, err := r.db.Query(`
		SELECT source, COUNT(*)
		FROM items
		GROUP BY source
		ORDER BY COUNT(*) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get per-source counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan source count: %w", err)
		}
		stats.ItemsBySource[source] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source counts: %w", err)
	}

	return stats, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanItems(rows rowScanner) ([]Item, error) {
	var items []Item
	for rows.Next() {
		var item Item
		var matchedTerms string
		err := rows.Scan(
			&item.ID, &item.Title, &item.Link, &item.Summary, &item.Source,
			&item.PublishedAt, &item.ContentHash, &matchedTerms,
			&item.RelevanceSummary, &item.Sent, &item.SentAt, &item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		if matchedTerms != "" {
			item.MatchedTerms = strings.Split(matchedTerms, ",")
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}
