package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/tanvir/cardforge/internal/apperror"
	"github.com/tanvir/cardforge/internal/model"
	"github.com/tanvir/cardforge/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, display_name, password_hash, github_id, avatar_url,
	coin_balance, is_admin, last_daily_claim, created_at, updated_at`

// scanUser reads a user row. last_daily_claim is nullable — NULL means the
// user has never claimed, which maps to the time.Time zero value.
func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var lastClaim sql.NullTime
	err := row.Scan(
		&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.GitHubID,
		&u.AvatarURL, &u.CoinBalance, &u.IsAdmin, &lastClaim,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastClaim.Valid {
		u.LastDailyClaim = lastClaim.Time
	}
	return &u, nil
}

// CreateUser inserts a new user and, when signupCredit > 0, their initial
// coin grant plus its ledger entry — all in one transaction, so the balance
// invariant holds from the user's very first row.
func (db *DB) CreateUser(ctx context.Context, user *model.User, signupCredit int64) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CoinBalance = signupCredit
	user.CreatedAt = now
	user.UpdatedAt = now

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, github_id,
			avatar_url, coin_balance, is_admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.DisplayName, user.PasswordHash, user.GitHubID,
		user.AvatarURL, user.CoinBalance, user.IsAdmin, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("an account with email %s already exists", user.Email))
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	if signupCredit > 0 {
		if err := insertLedgerEntry(ctx, tx, &model.CoinLedgerEntry{
			UserID:      user.ID,
			Amount:      signupCredit,
			Kind:        model.LedgerSignupCredit,
			Description: "welcome bonus",
		}); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing user create: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by internal ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email (credentials login).
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return user, nil
}

// UpsertGitHub inserts or updates a user keyed by their GitHub ID.
//
// Existing users keep their internal ID and balance; only the profile
// fields refresh (login name and avatar can change on GitHub's side).
// New users get the signup credit, same as CreateUser.
func (db *DB) UpsertGitHub(ctx context.Context, user *model.User, signupCredit int64) error {
	var existingID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, user.GitHubID,
	).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", user.GitHubID, err)
	}

	if existingID != "" {
		user.ID = existingID
		user.UpdatedAt = time.Now()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET display_name = ?, avatar_url = ?, updated_at = ?
			 WHERE id = ?`,
			user.DisplayName, user.AvatarURL, user.UpdatedAt, user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		// Refresh the caller's copy with the persisted balance/flags.
		fresh, err := db.GetUserByID(ctx, user.ID)
		if err != nil {
			return err
		}
		*user = *fresh
		return nil
	}

	return db.CreateUser(ctx, user, signupCredit)
}
