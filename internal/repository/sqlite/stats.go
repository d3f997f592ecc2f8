package sqlite

import (
	"context"
	"fmt"

	"github.com/tanvir/cardforge/internal/model"
	"github.com/tanvir/cardforge/internal/repository"
)

// compile-time check that *DB implements repository.StatsRepository
var _ repository.StatsRepository = (*DB)(nil)

// Stats computes the admin aggregate snapshot. These are full-table
// aggregates, fine at this scale; if the tables ever grow past what a
// single-file SQLite handles comfortably, this is the first query to cache.
func (db *DB) Stats(ctx context.Context) (*repository.Stats, error) {
	stats := &repository.Stats{
		CardsByRarity: make(map[string]int64),
	}

	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(coin_balance), 0) FROM users`,
	).Scan(&stats.Users, &stats.CoinsInCirculation)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting users: %w", err)
	}

	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cards`,
	).Scan(&stats.Cards)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting cards: %w", err)
	}

	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM coin_ledger WHERE kind = ?`,
		model.LedgerGenerationDebit,
	).Scan(&stats.Generations)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting generations: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT rarity, COUNT(*) FROM cards GROUP BY rarity`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting cards by rarity: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rarity string
		var count int64
		if err := rows.Scan(&rarity, &count); err != nil {
			return nil, fmt.Errorf("sqlite: scanning rarity count: %w", err)
		}
		stats.CardsByRarity[rarity] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating rarity counts: %w", err)
	}

	return stats, nil
}
