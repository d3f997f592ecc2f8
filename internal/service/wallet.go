package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tanvir/cardforge/internal/apperror"
	"github.com/tanvir/cardforge/internal/metrics"
	"github.com/tanvir/cardforge/internal/model"
	"github.com/tanvir/cardforge/internal/payment"
	"github.com/tanvir/cardforge/internal/repository"
)

// WalletService handles everything coins outside of generation debits:
// balance reads, the ledger view, the daily reward, and shop purchases.
type WalletService struct {
	users    repository.UserRepository
	wallet   repository.WalletStore
	ledger   repository.LedgerRepository
	provider payment.Provider
	logger   *slog.Logger
	now      func() time.Time // injectable clock for daily-reward tests
}

func NewWalletService(
	users repository.UserRepository,
	wallet repository.WalletStore,
	ledger repository.LedgerRepository,
	provider payment.Provider,
	logger *slog.Logger,
) *WalletService {
	return &WalletService{
		users:    users,
		wallet:   wallet,
		ledger:   ledger,
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
}

// Balance returns the user's current coin balance and profile.
func (s *WalletService) Balance(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// Ledger returns the user's coin history, newest first.
func (s *WalletService) Ledger(ctx context.Context, userID string, opts repository.ListOptions) ([]model.CoinLedgerEntry, error) {
	return s.ledger.ListLedgerEntries(ctx, userID, opts)
}

// ClaimDaily credits the daily reward, at most once per UTC day.
func (s *WalletService) ClaimDaily(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.wallet.ClaimDaily(ctx, userID, DailyReward, s.now())
	if err != nil {
		return nil, err
	}

	metrics.CoinsCredited.WithLabelValues(string(model.LedgerDailyRewardCredit)).Add(DailyReward)
	s.logger.Info("daily reward claimed",
		slog.String("userID", userID),
		slog.Int64("balance", user.CoinBalance),
	)
	return user, nil
}

// Packs returns the shop inventory.
func (s *WalletService) Packs() []payment.Pack {
	return payment.Packs
}

// Purchase charges the user for a coin pack through the payment provider
// and credits the coins. The charge happens first: if crediting fails after
// a successful charge, that's an operator-visible error, not a silent loss
// — the receipt ID is in the log line.
func (s *WalletService) Purchase(ctx context.Context, userID, packID string) (*model.User, error) {
	pack := payment.PackByID(packID)
	if pack == nil {
		return nil, apperror.ValidationFailed("packId", "unknown coin pack: "+packID)
	}

	// Make sure the account exists before charging anything.
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	receipt, err := s.provider.Charge(ctx, userID, *pack)
	if err != nil {
		return nil, fmt.Errorf("charging for pack %s: %w", packID, err)
	}

	user, err := s.wallet.Credit(ctx, userID, pack.Coins, model.LedgerPurchaseCredit,
		fmt.Sprintf("coin pack: %s (receipt %s)", pack.Name, receipt))
	if err != nil {
		s.logger.Error("charge succeeded but credit failed",
			slog.String("userID", userID),
			slog.String("receipt", receipt),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("crediting purchase (receipt %s): %w", receipt, err)
	}

	metrics.CoinsCredited.WithLabelValues(string(model.LedgerPurchaseCredit)).Add(float64(pack.Coins))
	s.logger.Info("coin pack purchased",
		slog.String("userID", userID),
		slog.String("pack", pack.ID),
		slog.String("receipt", receipt),
		slog.Int64("balance", user.CoinBalance),
	)
	return user, nil
}
