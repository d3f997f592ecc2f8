package model

import "time"

// Card is a user's persisted ownership record of one API combination.
//
// The narrative fields are denormalized copies of the catalog record at
// generation time. The catalog is static, so this duplication costs nothing
// and keeps card reads to a single table.
//
// INVARIANT: (UserID, CombinationKey) is unique — a user can never hold two
// cards for the same API pair. This is enforced three ways: in the selector
// (filters out owned keys), in the generation transaction (re-check before
// insert), and by a UNIQUE constraint in the schema as the final backstop.
type Card struct {
	ID             string    `json:"id"             db:"id"`
	UserID         string    `json:"userId"         db:"user_id"`
	CombinationKey string    `json:"combinationKey" db:"combination_key"`
	APIs           []string  `json:"apis"           db:"-"` // the two API names, sorted
	Title          string    `json:"title"          db:"title"`
	Subtitle       string    `json:"subtitle"       db:"subtitle"`
	Industry       string    `json:"industry"       db:"industry"`
	Problem        string    `json:"problem"        db:"problem"`
	Solution       string    `json:"solution"       db:"solution"`
	Implementation string    `json:"implementation" db:"implementation"`
	MarketOpp      string    `json:"marketOpportunity" db:"market_opportunity"`
	Summary        string    `json:"summary"        db:"summary"`
	Rating         float64   `json:"rating"         db:"rating"`
	Feasibility    string    `json:"feasibility"    db:"feasibility"`
	Complexity     string    `json:"complexity"     db:"complexity"`
	Rarity         string    `json:"rarity"         db:"rarity"`
	Pinned         bool      `json:"pinned"         db:"pinned"`
	Saved          bool      `json:"saved"          db:"saved"`
	Favorited      bool      `json:"favorited"      db:"favorited"`
	CreatedAt      time.Time `json:"createdAt"      db:"created_at"`
}

// CardFlags carries the three user-toggleable flags for a card.
// A nil pointer means "leave this flag unchanged" in partial updates.
type CardFlags struct {
	Pinned    *bool `json:"pinned,omitempty"`
	Saved     *bool `json:"saved,omitempty"`
	Favorited *bool `json:"favorited,omitempty"`
}
