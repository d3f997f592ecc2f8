package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tanvir/cardforge/internal/apperror"
	"github.com/tanvir/cardforge/internal/model"
	"github.com/tanvir/cardforge/internal/repository"
)

// compile-time check that *DB implements repository.WalletStore
var _ repository.WalletStore = (*DB)(nil)

// Credit adds amount coins to the user and appends the matching ledger
// entry in one transaction.
func (db *DB) Credit(ctx context.Context, userID string, amount int64, kind model.LedgerKind, description string) (*model.User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("sqlite: credit amount must be positive, got %d", amount)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning credit tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE users SET coin_balance = coin_balance + ?, updated_at = ?
		 WHERE id = ?`,
		amount, time.Now(), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: crediting user %s: %w", userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("user", userID)
	}

	if err := insertLedgerEntry(ctx, tx, &model.CoinLedgerEntry{
		UserID:      userID,
		Amount:      amount,
		Kind:        kind,
		Description: description,
	}); err != nil {
		return nil, err
	}

	user, err := scanUser(tx.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, userID))
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading user after credit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing credit: %w", err)
	}
	return user, nil
}

// ClaimDaily credits the daily reward at most once per UTC day.
//
// The claim check and the credit happen in the same transaction, so two
// simultaneous claims cannot both succeed — the second one sees the updated
// last_daily_claim and gets a Conflict.
func (db *DB) ClaimDaily(ctx context.Context, userID string, amount int64, now time.Time) (*model.User, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning daily claim tx: %w", err)
	}
	defer tx.Rollback()

	var lastClaim sql.NullTime
	err = tx.QueryRowContext(ctx,
		`SELECT last_daily_claim FROM users WHERE id = ?`, userID,
	).Scan(&lastClaim)
	if err == sql.ErrNoRows {
		return nil, apperror.NotFound("user", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading last daily claim: %w", err)
	}

	if lastClaim.Valid && sameUTCDay(lastClaim.Time, now) {
		return nil, apperror.Conflict("daily reward already claimed today")
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users
		 SET coin_balance = coin_balance + ?, last_daily_claim = ?, updated_at = ?
		 WHERE id = ?`,
		amount, now, now, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: crediting daily reward: %w", err)
	}

	if err := insertLedgerEntry(ctx, tx, &model.CoinLedgerEntry{
		UserID:      userID,
		Amount:      amount,
		Kind:        model.LedgerDailyRewardCredit,
		Description: "daily reward",
	}); err != nil {
		return nil, err
	}

	user, err := scanUser(tx.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, userID))
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading user after daily claim: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing daily claim: %w", err)
	}
	return user, nil
}

// sameUTCDay reports whether a and b fall on the same calendar day in UTC.
func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
