package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tanvir/cardforge/internal/apperror"
	"github.com/tanvir/cardforge/internal/catalog"
	"github.com/tanvir/cardforge/internal/model"
	"github.com/tanvir/cardforge/internal/repository"
)

// Preference bounds.
//
// MaxLockedAPIs caps how many APIs a user can force into generation.
// MinSelectableAPIs guarantees random generation always has breathing
// room: ignoring may never shrink the selectable roster below this.
const (
	MaxLockedAPIs     = 5
	MinSelectableAPIs = 10
)

// PreferenceService enforces the preference bounds over the repository.
type PreferenceService struct {
	catalog *catalog.Catalog
	repo    repository.PreferenceRepository
	logger  *slog.Logger
}

func NewPreferenceService(cat *catalog.Catalog, repo repository.PreferenceRepository, logger *slog.Logger) *PreferenceService {
	return &PreferenceService{catalog: cat, repo: repo, logger: logger}
}

// List returns the user's preferences.
func (s *PreferenceService) List(ctx context.Context, userID string) ([]model.Preference, error) {
	return s.repo.ListPreferences(ctx, userID)
}

// Set creates or replaces the preference for one API.
//
// Bounds are checked against the would-be state, not the current one:
// flipping an API from ignored to locked counts it as locked for the lock
// limit and no longer as ignored for the ignore limit. The repository
// enforces the ceiling inside the same transaction as the write, so
// concurrent sets cannot race past it; a rejected set leaves existing
// preferences untouched.
func (s *PreferenceService) Set(ctx context.Context, userID, apiName string, kind model.PreferenceKind) error {
	apiName = strings.TrimSpace(apiName)
	if apiName == "" {
		return apperror.ValidationFailed("apiName", "API name is required")
	}
	if !s.catalog.HasAPI(apiName) {
		return apperror.ValidationFailed("apiName", "unknown API: "+apiName)
	}
	if !kind.Valid() {
		return apperror.ValidationFailed("kind", `kind must be "locked" or "ignored"`)
	}

	// Ignoring may never shrink the selectable roster below the floor, so
	// the ignore ceiling is everything above it.
	maxOfKind := MaxLockedAPIs
	if kind == model.PreferenceIgnored {
		maxOfKind = len(s.catalog.APIs()) - MinSelectableAPIs
	}

	err := s.repo.SetPreference(ctx, &model.Preference{
		UserID:  userID,
		APIName: apiName,
		Kind:    kind,
	}, maxOfKind)
	switch {
	case errors.Is(err, apperror.ErrLimitExceeded):
		if kind == model.PreferenceLocked {
			return apperror.LockLimitExceeded(MaxLockedAPIs)
		}
		return apperror.IgnoreLimitExceeded(MinSelectableAPIs)
	case err != nil:
		return fmt.Errorf("setting preference: %w", err)
	}

	s.logger.Info("preference set",
		slog.String("userID", userID),
		slog.String("api", apiName),
		slog.String("kind", string(kind)),
	)
	return nil
}

// Clear removes the preference for one API. No bound checks — removal can
// never violate the limits.
func (s *PreferenceService) Clear(ctx context.Context, userID, apiName string) error {
	apiName = strings.TrimSpace(apiName)
	if apiName == "" {
		return apperror.ValidationFailed("apiName", "API name is required")
	}
	return s.repo.ClearPreference(ctx, userID, apiName)
}

// Reset removes all preferences for the user.
func (s *PreferenceService) Reset(ctx context.Context, userID string) error {
	if err := s.repo.ResetPreferences(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("preferences reset", slog.String("userID", userID))
	return nil
}
