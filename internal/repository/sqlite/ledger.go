package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/tanvir/cardforge/internal/model"
	"github.com/tanvir/cardforge/internal/repository"
)

// compile-time check that *DB implements repository.LedgerRepository
var _ repository.LedgerRepository = (*DB)(nil)

// insertLedgerEntry appends one ledger row. Always called inside the same
// transaction as the balance mutation it records — the ledger must never
// drift from the cached balance.
func insertLedgerEntry(ctx context.Context, tx *sql.Tx, entry *model.CoinLedgerEntry) error {
	entry.ID = xid.New().String()
	entry.CreatedAt = time.Now()

	_, err := tx.ExecContext(ctx,
		`INSERT INTO coin_ledger (id, user_id, amount, kind, description, card_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Amount, entry.Kind,
		entry.Description, entry.CardID, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting ledger entry: %w", err)
	}
	return nil
}

// ListLedgerEntries returns a user's ledger entries, newest first.
func (db *DB) ListLedgerEntries(ctx context.Context, userID string, opts repository.ListOptions) ([]model.CoinLedgerEntry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, amount, kind, description, card_id, created_at
		 FROM coin_ledger
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.CoinLedgerEntry, 0, limit)
	for rows.Next() {
		var e model.CoinLedgerEntry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Amount, &e.Kind,
			&e.Description, &e.CardID, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning ledger row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating ledger entries: %w", err)
	}

	return entries, nil
}

// SumByUser returns the signed sum of a user's ledger entries. By the
// balance invariant this always equals users.coin_balance.
func (db *DB) SumByUser(ctx context.Context, userID string) (int64, error) {
	var sum int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM coin_ledger WHERE user_id = ?`,
		userID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sqlite: summing ledger: %w", err)
	}
	return sum, nil
}
