package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/tanvir/cardforge/internal/apperror"
	"github.com/tanvir/cardforge/internal/model"
	"github.com/tanvir/cardforge/internal/repository"
)

// compile-time check that *DB implements repository.PreferenceRepository
var _ repository.PreferenceRepository = (*DB)(nil)

// ListPreferences returns all of a user's preferences.
func (db *DB) ListPreferences(ctx context.Context, userID string) ([]model.Preference, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, api_name, kind, created_at
		 FROM preferences
		 WHERE user_id = ?
		 ORDER BY api_name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing preferences: %w", err)
	}
	defer rows.Close()

	var prefs []model.Preference
	for rows.Next() {
		var p model.Preference
		if err := rows.Scan(&p.UserID, &p.APIName, &p.Kind, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning preference row: %w", err)
		}
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating preferences: %w", err)
	}

	return prefs, nil
}

// SetPreference upserts a preference, enforcing the per-kind ceiling.
//
// The count and the upsert run in one transaction: two concurrent sets for
// the same user cannot both observe room under maxOfKind and both commit.
// The count excludes the API being set — its old kind, if any, is replaced
// by the ON CONFLICT clause, which also gives the "setting locked on an
// ignored API clears the ignore" invariant in a single atomic statement.
func (db *DB) SetPreference(ctx context.Context, pref *model.Preference, maxOfKind int) error {
	pref.CreatedAt = time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning preference tx: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM preferences
		 WHERE user_id = ? AND kind = ? AND api_name != ?`,
		pref.UserID, pref.Kind, pref.APIName,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("sqlite: counting %s preferences: %w", pref.Kind, err)
	}
	if count+1 > maxOfKind {
		return fmt.Errorf("sqlite: user %s already holds %d %s preferences: %w",
			pref.UserID, count, pref.Kind, apperror.ErrLimitExceeded)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO preferences (user_id, api_name, kind, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, api_name) DO UPDATE SET kind = excluded.kind`,
		pref.UserID, pref.APIName, pref.Kind, pref.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting preference %s/%s: %w", pref.UserID, pref.APIName, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing preference set: %w", err)
	}
	return nil
}

// ClearPreference removes the preference for one API. Clearing a preference
// that doesn't exist is a no-op, not an error — the end state is the same.
func (db *DB) ClearPreference(ctx context.Context, userID, apiName string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM preferences WHERE user_id = ? AND api_name = ?`,
		userID, apiName,
	)
	if err != nil {
		return fmt.Errorf("sqlite: clearing preference %s/%s: %w", userID, apiName, err)
	}
	return nil
}

// ResetPreferences removes all of a user's preferences.
func (db *DB) ResetPreferences(ctx context.Context, userID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM preferences WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("sqlite: resetting preferences for %s: %w", userID, err)
	}
	return nil
}
