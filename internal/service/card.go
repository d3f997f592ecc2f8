package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tanvir/cardforge/internal/apperror"
	"github.com/tanvir/cardforge/internal/model"
	"github.com/tanvir/cardforge/internal/repository"
)

// CardService manages a user's collection: browsing, flag toggles, and
// deletion. Generation is GenerationService's job.
type CardService struct {
	repo   repository.CardRepository
	logger *slog.Logger
}

func NewCardService(repo repository.CardRepository, logger *slog.Logger) *CardService {
	return &CardService{repo: repo, logger: logger}
}

// List returns the caller's cards, filtered and paginated.
func (s *CardService) List(ctx context.Context, userID string, filter repository.CardFilter) ([]model.Card, error) {
	cards, err := s.repo.ListCardsByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}
	return cards, nil
}

// Get returns one card, enforcing ownership.
func (s *CardService) Get(ctx context.Context, userID, cardID string) (*model.Card, error) {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return nil, apperror.ValidationFailed("id", "card ID is required")
	}

	card, err := s.repo.GetCardByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.UserID != userID {
		return nil, apperror.Forbidden("you do not own this card")
	}
	return card, nil
}

// UpdateFlags applies a partial flag update (nil fields stay unchanged)
// and returns the updated card.
func (s *CardService) UpdateFlags(ctx context.Context, userID, cardID string, flags model.CardFlags) (*model.Card, error) {
	card, err := s.Get(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	if flags.Pinned != nil {
		card.Pinned = *flags.Pinned
	}
	if flags.Saved != nil {
		card.Saved = *flags.Saved
	}
	if flags.Favorited != nil {
		card.Favorited = *flags.Favorited
	}

	if err := s.repo.UpdateCardFlags(ctx, card); err != nil {
		return nil, fmt.Errorf("updating card flags: %w", err)
	}

	return card, nil
}

// Delete removes a card. A pinned card cannot be deleted — pinning is the
// user's "don't let me fat-finger this away" guard, so it must be unpinned
// first.
func (s *CardService) Delete(ctx context.Context, userID, cardID string) error {
	card, err := s.Get(ctx, userID, cardID)
	if err != nil {
		return err
	}
	if card.Pinned {
		return apperror.Forbidden("card is pinned; unpin it before deleting")
	}

	if err := s.repo.DeleteCard(ctx, cardID); err != nil {
		return err
	}

	s.logger.Info("card deleted",
		slog.String("userID", userID),
		slog.String("cardID", cardID),
		slog.String("combinationKey", card.CombinationKey),
	)
	return nil
}
