package database

import (
	"fmt"
)

// DeliveryLogRepository handles the append-only delivery history. Entries
// are never mutated or deleted.
type DeliveryLogRepository struct {
	db *DB
}

func NewDeliveryLogRepository(db *DB) *DeliveryLogRepository {
	return &DeliveryLogRepository{db: db}
}

// Log appends one delivery attempt record.
func (r *DeliveryLogRepository) Log(itemCount int, success bool, errorMessage string) error {
	_, err := r.db.Exec(`
		INSERT INTO delivery_log (item_count, success, error_message)
		VALUES (?, ?, ?)
	`, itemCount, success, errorMessage)
	if err != nil {
		return fmt.Errorf("failed to log delivery: %w", err)
	}

	return nil
}

// RecentEntries returns the latest delivery attempts, newest first.
func (r *DeliveryLogRepository) RecentEntries(limit int) ([]DeliveryLogEntry, error) {
	rows, err := r.db.Query(`
		SELECT id, logged_at, item_count, success, error_message
		FROM delivery_log
		ORDER BY logged_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery log entries: %w", err)
	}
	defer rows.Close()

	var entries []DeliveryLogEntry
	for rows.Next() {
		var entry DeliveryLogEntry
		err := rows.Scan(&entry.ID, &entry.LoggedAt, &entry.ItemCount, &entry.Success, &entry.ErrorMessage)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery log row: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating delivery log rows: %w", err)
	}

	return entries, nil
}
