// Package repository defines the storage interfaces the service layer
// depends on. The sqlite subpackage implements them; tests substitute
// in-memory mocks. Services never import a concrete storage package.
package repository

import (
	"context"
	"time"

	"github.com/tanvir/cardforge/internal/model"
)

// ListOptions is shared pagination for list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// CardFilter narrows card list queries.
type CardFilter struct {
	Rarity    string // empty = all
	Pinned    bool   // only pinned
	Saved     bool   // only saved
	Favorited bool   // only favorited
	ListOptions
}

// Stats is the aggregate snapshot served to admins.
type Stats struct {
	Users              int64            `json:"users"`
	Cards              int64            `json:"cards"`
	CoinsInCirculation int64            `json:"coinsInCirculation"`
	Generations        int64            `json:"generations"`
	CardsByRarity      map[string]int64 `json:"cardsByRarity"`
}

// UserRepository manages user accounts.
//
// CreateUser and UpsertGitHub take a signup credit amount: the initial coin
// grant and its ledger entry are written in the same transaction as the
// user row, keeping the ledger-equals-balance invariant from the first row.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User, signupCredit int64) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpsertGitHub(ctx context.Context, user *model.User, signupCredit int64) error
}

// CardRepository manages a user's generated cards, outside of generation
// itself (which goes through GenerationStore).
type CardRepository interface {
	GetCardByID(ctx context.Context, id string) (*model.Card, error)
	ListCardsByUser(ctx context.Context, userID string, filter CardFilter) ([]model.Card, error)
	// KeysByUser returns the set of combination keys the user already owns.
	KeysByUser(ctx context.Context, userID string) (map[string]bool, error)
	UpdateCardFlags(ctx context.Context, card *model.Card) error
	DeleteCard(ctx context.Context, id string) error
}

// GenerationStore performs the atomic card-generation write: duplicate
// re-check, conditional coin debit, card insert, and ledger append — all or
// nothing. The caller (GenerationService) has already selected the
// combination and computed the card's fields.
type GenerationStore interface {
	CreateCard(ctx context.Context, card *model.Card, cost int64) error
}

// PreferenceRepository manages locked/ignored API preferences.
//
// SetPreference upserts: a (user, api) pair holds at most one kind, so
// setting "locked" on an ignored API replaces the kind atomically. It also
// enforces the per-kind ceiling: maxOfKind is the most preferences of
// pref.Kind the user may hold, counted excluding the API being set. The
// count and the write are one atomic unit — concurrent sets cannot both see
// room left — and a breach returns apperror.ErrLimitExceeded.
type PreferenceRepository interface {
	ListPreferences(ctx context.Context, userID string) ([]model.Preference, error)
	SetPreference(ctx context.Context, pref *model.Preference, maxOfKind int) error
	ClearPreference(ctx context.Context, userID, apiName string) error
	ResetPreferences(ctx context.Context, userID string) error
}

// WalletStore mutates coin balances. Every mutation writes its ledger entry
// in the same transaction.
type WalletStore interface {
	// Credit adds amount (> 0) to the user's balance and returns the
	// updated user.
	Credit(ctx context.Context, userID string, amount int64, kind model.LedgerKind, description string) (*model.User, error)
	// ClaimDaily credits the daily reward if the user hasn't claimed today
	// (UTC). Returns apperror.Conflict if already claimed.
	ClaimDaily(ctx context.Context, userID string, amount int64, now time.Time) (*model.User, error)
}

// LedgerRepository reads the append-only coin ledger.
type LedgerRepository interface {
	ListLedgerEntries(ctx context.Context, userID string, opts ListOptions) ([]model.CoinLedgerEntry, error)
	// SumByUser returns the sum of a user's entries. Used by tests and the
	// admin surface to verify the balance invariant.
	SumByUser(ctx context.Context, userID string) (int64, error)
}

// StatsRepository serves the admin aggregate snapshot.
type StatsRepository interface {
	Stats(ctx context.Context) (*Stats, error)
}
