// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Users can sign up with email + password (bcrypt hash stored in
// PasswordHash) or via GitHub OAuth (GitHubID set, PasswordHash empty).
// Both paths converge on the same row — GitHubID is nullable-as-zero and
// unique when present.
//
// CoinBalance is a cached aggregate of the user's ledger entries. The ledger
// is the source of truth; balance and ledger are always updated inside the
// same transaction so they can never diverge.
type User struct {
	ID             string    `json:"id"             db:"id"`
	Email          string    `json:"email"          db:"email"`
	DisplayName    string    `json:"displayName"    db:"display_name"`
	PasswordHash   string    `json:"-"              db:"password_hash"` // never serialized
	GitHubID       int64     `json:"-"              db:"github_id"`     // 0 when not linked
	AvatarURL      string    `json:"avatarUrl"      db:"avatar_url"`
	CoinBalance    int64     `json:"coinBalance"    db:"coin_balance"`
	IsAdmin        bool      `json:"isAdmin"        db:"is_admin"`
	LastDailyClaim time.Time `json:"lastDailyClaim" db:"last_daily_claim"` // zero value = never claimed
	CreatedAt      time.Time `json:"createdAt"      db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt"      db:"updated_at"`
}
