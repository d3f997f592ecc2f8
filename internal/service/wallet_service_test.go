package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tanvir/cardforge/internal/apperror"
	"github.com/tanvir/cardforge/internal/model"
	"github.com/tanvir/cardforge/internal/payment"
)

type walletFixture struct {
	svc      *WalletService
	users    *mockUserRepo
	wallet   *mockWalletStore
	provider *mockProvider
	user     *model.User
}

func newWalletFixture(t *testing.T) *walletFixture {
	t.Helper()
	users := newMockUserRepo()
	wallet := newMockWalletStore(users)
	provider := &mockProvider{}
	user := users.add(&model.User{CoinBalance: 40})

	return &walletFixture{
		svc:      NewWalletService(users, wallet, &mockLedgerRepo{}, provider, testLogger()),
		users:    users,
		wallet:   wallet,
		provider: provider,
		user:     user,
	}
}

func TestClaimDaily_OncePerDay(t *testing.T) {
	f := newWalletFixture(t)
	f.svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }

	user, err := f.svc.ClaimDaily(context.Background(), f.user.ID)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if user.CoinBalance != 40+DailyReward {
		t.Errorf("balance = %d, want %d", user.CoinBalance, 40+DailyReward)
	}

	// Same day, later hour: refused.
	f.svc.now = func() time.Time { return time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC) }
	if _, err := f.svc.ClaimDaily(context.Background(), f.user.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("same-day claim err = %v, want conflict", err)
	}

	// Next UTC day: allowed again.
	f.svc.now = func() time.Time { return time.Date(2026, 3, 15, 0, 1, 0, 0, time.UTC) }
	user, err = f.svc.ClaimDaily(context.Background(), f.user.ID)
	if err != nil {
		t.Fatalf("next-day claim: %v", err)
	}
	if user.CoinBalance != 40+2*DailyReward {
		t.Errorf("balance = %d, want %d", user.CoinBalance, 40+2*DailyReward)
	}
}

func TestPurchase_CreditsPack(t *testing.T) {
	f := newWalletFixture(t)
	pack := payment.Packs[0]

	user, err := f.svc.Purchase(context.Background(), f.user.ID, pack.ID)
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if user.CoinBalance != 40+pack.Coins {
		t.Errorf("balance = %d, want %d", user.CoinBalance, 40+pack.Coins)
	}
	if len(f.provider.charges) != 1 || f.provider.charges[0].ID != pack.ID {
		t.Errorf("charges = %+v, want one charge for %s", f.provider.charges, pack.ID)
	}
}

func TestPurchase_UnknownPack(t *testing.T) {
	f := newWalletFixture(t)

	_, err := f.svc.Purchase(context.Background(), f.user.ID, "mega-ultra")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if len(f.provider.charges) != 0 {
		t.Error("provider was charged for an unknown pack")
	}
}

func TestPurchase_ChargeFailureLeavesBalance(t *testing.T) {
	f := newWalletFixture(t)
	f.provider.chargeErr = fmt.Errorf("card declined")

	_, err := f.svc.Purchase(context.Background(), f.user.ID, payment.Packs[0].ID)
	if err == nil {
		t.Fatal("expected error when the charge fails")
	}
	if f.user.CoinBalance != 40 {
		t.Errorf("balance = %d after failed charge, want 40", f.user.CoinBalance)
	}
}

func TestPurchase_UnknownUserNotCharged(t *testing.T) {
	f := newWalletFixture(t)

	_, err := f.svc.Purchase(context.Background(), "no-such-user", payment.Packs[0].ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if len(f.provider.charges) != 0 {
		t.Error("provider was charged for a nonexistent user")
	}
}

func TestPacks_Inventory(t *testing.T) {
	f := newWalletFixture(t)

	packs := f.svc.Packs()
	if len(packs) == 0 {
		t.Fatal("no packs in the shop")
	}
	for _, p := range packs {
		if p.Coins <= 0 || p.PriceCents <= 0 {
			t.Errorf("pack %s has non-positive coins or price: %+v", p.ID, p)
		}
	}
}
