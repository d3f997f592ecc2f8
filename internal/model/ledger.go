package model

import "time"

// LedgerKind classifies a coin ledger entry.
type LedgerKind string

const (
	LedgerGenerationDebit   LedgerKind = "generation_debit"
	LedgerPurchaseCredit    LedgerKind = "purchase_credit"
	LedgerDailyRewardCredit LedgerKind = "daily_reward_credit"
	LedgerSignupCredit      LedgerKind = "signup_credit"
)

// CoinLedgerEntry is one append-only row in a user's coin ledger.
//
// Amount is signed: debits are negative, credits positive.
//
// INVARIANT: the sum of a user's entries equals their cached CoinBalance.
// Every balance mutation writes its ledger entry in the same transaction,
// so the two can never diverge. The ledger is the source of truth; the
// balance column exists so reads don't need a SUM().
type CoinLedgerEntry struct {
	ID          string     `json:"id"          db:"id"`
	UserID      string     `json:"userId"      db:"user_id"`
	Amount      int64      `json:"amount"      db:"amount"`
	Kind        LedgerKind `json:"kind"        db:"kind"`
	Description string     `json:"description" db:"description"`
	CardID      string     `json:"cardId,omitempty" db:"card_id"` // set on generation debits
	CreatedAt   time.Time  `json:"createdAt"   db:"created_at"`
}
