// Package service contains the business logic layer: validation, business
// rules, and orchestration. Services accept primitives and return domain
// errors; handlers translate both sides to HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/tanvir/cardforge/internal/apperror"
	"github.com/tanvir/cardforge/internal/catalog"
	"github.com/tanvir/cardforge/internal/metrics"
	"github.com/tanvir/cardforge/internal/model"
	"github.com/tanvir/cardforge/internal/repository"
)

// Economy constants. GenerationCost is the one the whole engine revolves
// around: every successful generation debits exactly this much, and the
// ledger records it.
const (
	GenerationCost = 15
	SignupCredit   = 100
	DailyReward    = 25
)

// GenerationService orchestrates card generation: balance pre-check,
// preference loading, combination selection, and the atomic write.
type GenerationService struct {
	catalog *catalog.Catalog
	users   repository.UserRepository
	cards   repository.CardRepository
	prefs   repository.PreferenceRepository
	store   repository.GenerationStore
	logger  *slog.Logger
}

// NewGenerationService wires the generation dependencies.
func NewGenerationService(
	cat *catalog.Catalog,
	users repository.UserRepository,
	cards repository.CardRepository,
	prefs repository.PreferenceRepository,
	store repository.GenerationStore,
	logger *slog.Logger,
) *GenerationService {
	return &GenerationService{
		catalog: cat,
		users:   users,
		cards:   cards,
		prefs:   prefs,
		store:   store,
		logger:  logger,
	}
}

// Generate creates one card for the user, debiting GenerationCost.
//
// requestedPair is optional: nil/empty means random selection honoring the
// user's preferences; exactly two API names means an exact catalog lookup
// (falling back to random if the pair isn't in the catalog).
//
// The flow mirrors the layering: everything up to selection reads a
// snapshot; the store's CreateCard is the atomic unit that re-validates
// and commits. A failure anywhere leaves zero side effects.
func (s *GenerationService) Generate(ctx context.Context, userID string, requestedPair []string) (*model.Card, error) {
	if len(requestedPair) != 0 && len(requestedPair) != 2 {
		return nil, apperror.ValidationFailed("apis", "requested pair must be exactly two API names")
	}

	// Balance pre-check. The store re-checks atomically; this early check
	// exists to produce the friendly required/current error without
	// touching the write path.
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.CoinBalance < GenerationCost {
		metrics.GenerationsTotal.WithLabelValues("insufficient_funds").Inc()
		return nil, apperror.InsufficientFunds(GenerationCost, user.CoinBalance)
	}

	existing, err := s.cards.KeysByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading existing keys: %w", err)
	}

	locked, ignored, err := s.preferenceSets(ctx, userID)
	if err != nil {
		return nil, err
	}

	var combo *catalog.Combination
	if len(requestedPair) == 2 {
		combo, err = selectRequested(s.catalog, existing, ignored, requestedPair[0], requestedPair[1])
		if err != nil {
			metrics.GenerationsTotal.WithLabelValues("rejected").Inc()
			return nil, err
		}
		// Pair not in the catalog: fall through to random selection.
	}
	if combo == nil {
		combo = selectRandom(s.catalog, existing, locked, ignored)
	}

	if combo == nil {
		complete := len(existing) >= s.catalog.Size()
		metrics.GenerationsTotal.WithLabelValues("no_combination").Inc()
		s.logger.Info("no combination available",
			slog.String("userID", userID),
			slog.Bool("collectionComplete", complete),
			slog.Int("owned", len(existing)),
		)
		return nil, apperror.NoCombinationAvailable(complete)
	}

	card := cardFromCombination(userID, combo)

	if err := s.store.CreateCard(ctx, card, GenerationCost); err != nil {
		// A duplicate here means we lost a race: another request claimed
		// this key between our snapshot and the commit. Logged distinctly
		// from catalog exhaustion — it signals contention, not completion.
		if errors.Is(err, apperror.ErrDuplicateCard) {
			metrics.GenerationsTotal.WithLabelValues("duplicate_race").Inc()
			s.logger.Warn("generation lost duplicate race",
				slog.String("userID", userID),
				slog.String("combinationKey", card.CombinationKey),
			)
			return nil, err
		}
		metrics.GenerationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.GenerationsTotal.WithLabelValues("success").Inc()
	metrics.CoinsDebited.Add(GenerationCost)

	s.logger.Info("card generated",
		slog.String("userID", userID),
		slog.String("cardID", card.ID),
		slog.String("combinationKey", card.CombinationKey),
		slog.String("rarity", card.Rarity),
	)

	return card, nil
}

// preferenceSets loads the user's preferences as locked/ignored name sets.
func (s *GenerationService) preferenceSets(ctx context.Context, userID string) (locked, ignored map[string]bool, err error) {
	prefs, err := s.prefs.ListPreferences(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading preferences: %w", err)
	}

	locked = make(map[string]bool)
	ignored = make(map[string]bool)
	for _, p := range prefs {
		switch p.Kind {
		case model.PreferenceLocked:
			locked[p.APIName] = true
		case model.PreferenceIgnored:
			ignored[p.APIName] = true
		}
	}
	return locked, ignored, nil
}

// cardFromCombination builds the card to persist: denormalized narrative
// fields plus the derived rarity. APIs is sorted to match the key — catalog
// records may list the pair in either order, but a card read back from
// storage derives the pair from the key, and the two must agree.
func cardFromCombination(userID string, c *catalog.Combination) *model.Card {
	apis := []string{c.APIs[0], c.APIs[1]}
	sort.Strings(apis)
	return &model.Card{
		UserID:         userID,
		CombinationKey: c.Key(),
		APIs:           apis,
		Title:          c.Title,
		Subtitle:       c.Subtitle,
		Industry:       c.Industry,
		Problem:        c.Problem,
		Solution:       c.Solution,
		Implementation: c.Implementation,
		MarketOpp:      c.MarketOpp,
		Summary:        c.Summary,
		Rating:         c.Rating,
		Feasibility:    c.Feasibility,
		Complexity:     c.Complexity,
		Rarity:         catalog.Rarity(c.Rating),
	}
}
