// Package payment abstracts the checkout provider behind a small
// interface so the wallet service doesn't care whether a real PSP or the
// instant dev provider sits behind it.
package payment

import (
	"context"
	"fmt"

	"github.com/rs/xid"
)

// Pack is a purchasable coin bundle.
type Pack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Coins      int64  `json:"coins"`
	PriceCents int64  `json:"priceCents"`
}

// Packs is the fixed shop inventory.
var Packs = []Pack{
	{ID: "pouch", Name: "Coin Pouch", Coins: 100, PriceCents: 199},
	{ID: "chest", Name: "Coin Chest", Coins: 550, PriceCents: 899},
	{ID: "hoard", Name: "Coin Hoard", Coins: 1200, PriceCents: 1699},
}

// PackByID looks up a pack. Returns nil for unknown IDs.
func PackByID(id string) *Pack {
	for i := range Packs {
		if Packs[i].ID == id {
			return &Packs[i]
		}
	}
	return nil
}

// Provider charges a user for a coin pack and returns a receipt ID.
// An error means the charge did not happen and no coins may be credited.
type Provider interface {
	Charge(ctx context.Context, userID string, pack Pack) (receiptID string, err error)
}

// DevProvider approves every charge instantly. Used in development and
// tests; production deployments swap in a real PSP-backed implementation.
type DevProvider struct{}

func (DevProvider) Charge(_ context.Context, userID string, pack Pack) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("payment: user ID is required")
	}
	return "dev_" + xid.New().String(), nil
}
