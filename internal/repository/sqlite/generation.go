package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/tanvir/cardforge/internal/apperror"
	"github.com/tanvir/cardforge/internal/model"
	"github.com/tanvir/cardforge/internal/repository"
)

// compile-time check that *DB implements repository.GenerationStore
var _ repository.GenerationStore = (*DB)(nil)

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. modernc.org/sqlite doesn't export a typed error for this, so we
// match the message, which is stable across SQLite versions.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateCard performs the atomic generation write. The caller has already
// selected the combination and filled in every card field except ID and
// CreatedAt. Inside one transaction:
//
//  1. Re-check that no card with this combination key exists for the user.
//     The caller's selection ran against a snapshot that may be stale by
//     now — two concurrent requests can both select the same combination.
//     This re-check (and the UNIQUE constraint backing it) ensures only
//     one of them commits.
//  2. Conditionally debit the generation cost: the UPDATE's WHERE clause
//     requires coin_balance >= cost, so the balance can never go negative
//     no matter how requests interleave.
//  3. Insert the card.
//  4. Append the ledger debit referencing the card.
//
// Any failure rolls back the whole unit — no coin deduction without a card,
// no card without a ledger entry.
func (db *DB) CreateCard(ctx context.Context, card *model.Card, cost int64) error {
	now := time.Now()
	card.ID = xid.New().String()
	card.CreatedAt = now

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning generation tx: %w", err)
	}
	defer tx.Rollback()

	// Step 1: duplicate re-check.
	var owned int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cards WHERE user_id = ? AND combination_key = ?`,
		card.UserID, card.CombinationKey,
	).Scan(&owned)
	if err != nil {
		return fmt.Errorf("sqlite: re-checking combination key: %w", err)
	}
	if owned > 0 {
		return apperror.DuplicateCombination(card.CombinationKey)
	}

	// Step 2: conditional debit.
	result, err := tx.ExecContext(ctx,
		`UPDATE users
		 SET coin_balance = coin_balance - ?, updated_at = ?
		 WHERE id = ? AND coin_balance >= ?`,
		cost, now, card.UserID, cost,
	)
	if err != nil {
		return fmt.Errorf("sqlite: debiting generation cost: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Either the user vanished or the balance dropped below cost since
		// the caller's pre-check. Read back to tell the two apart.
		var balance int64
		err := tx.QueryRowContext(ctx,
			`SELECT coin_balance FROM users WHERE id = ?`, card.UserID,
		).Scan(&balance)
		if err == sql.ErrNoRows {
			return apperror.NotFound("user", card.UserID)
		}
		if err != nil {
			return fmt.Errorf("sqlite: reading balance after failed debit: %w", err)
		}
		return apperror.InsufficientFunds(cost, balance)
	}

	// Step 3: insert the card.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO cards (id, user_id, combination_key, title, subtitle,
			industry, problem, solution, implementation, market_opportunity,
			summary, rating, feasibility, complexity, rarity,
			pinned, saved, favorited, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.ID, card.UserID, card.CombinationKey, card.Title, card.Subtitle,
		card.Industry, card.Problem, card.Solution, card.Implementation,
		card.MarketOpp, card.Summary, card.Rating, card.Feasibility,
		card.Complexity, card.Rarity,
		card.Pinned, card.Saved, card.Favorited, card.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// The schema backstop caught what the re-check somehow missed.
			return apperror.DuplicateCombination(card.CombinationKey)
		}
		return fmt.Errorf("sqlite: inserting card: %w", err)
	}

	// Step 4: ledger debit.
	if err := insertLedgerEntry(ctx, tx, &model.CoinLedgerEntry{
		UserID:      card.UserID,
		Amount:      -cost,
		Kind:        model.LedgerGenerationDebit,
		Description: fmt.Sprintf("generated %s", card.Title),
		CardID:      card.ID,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing generation: %w", err)
	}
	return nil
}
