package model

import "time"

// PreferenceKind is the type of a user's API preference.
//
// A "locked" API biases generation toward combinations containing it
// (at least one locked API must appear in a randomly selected pair).
// An "ignored" API is a hard exclusion — no selected pair may contain it.
type PreferenceKind string

const (
	PreferenceLocked  PreferenceKind = "locked"
	PreferenceIgnored PreferenceKind = "ignored"
)

// Valid reports whether k is one of the two known kinds.
func (k PreferenceKind) Valid() bool {
	return k == PreferenceLocked || k == PreferenceIgnored
}

// Preference is one (user, API) preference row.
//
// INVARIANT: a given (UserID, APIName) pair holds at most one kind at a
// time — setting locked on an ignored API atomically replaces the kind,
// and vice versa. Enforced by a UNIQUE(user_id, api_name) constraint plus
// upsert semantics in the repository.
type Preference struct {
	UserID    string         `json:"userId"    db:"user_id"`
	APIName   string         `json:"apiName"   db:"api_name"`
	Kind      PreferenceKind `json:"kind"      db:"kind"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
}
