package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tanvir/cardforge/internal/apperror"
	"github.com/tanvir/cardforge/internal/auth"
	"github.com/tanvir/cardforge/internal/metrics"
	"github.com/tanvir/cardforge/internal/model"
	"github.com/tanvir/cardforge/internal/repository"
)

const minPasswordLength = 8

// AuthService holds the authentication business rules: registration,
// credentials login, and the GitHub OAuth upsert. Token issuance and
// cookie handling stay in the handler — this layer never touches HTTP.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, passwords: passwords, logger: logger}
}

// Register creates a credentials account and grants the signup credit.
func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email address is required")
	}
	if len(password) < minPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user, SignupCredit); err != nil {
		return nil, err
	}

	metrics.CoinsCredited.WithLabelValues(string(model.LedgerSignupCredit)).Add(SignupCredit)
	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", email),
	)
	return user, nil
}

// Login verifies credentials and returns the user.
//
// Wrong email and wrong password produce the SAME error — an attacker
// probing the login form learns nothing about which emails exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	invalid := apperror.Unauthorized("invalid email or password")

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if user.PasswordHash == "" {
		// OAuth-only account — no password to check.
		return nil, invalid
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, invalid
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return user, nil
}

// LoginGitHub upserts the account for a GitHub identity. New accounts get
// the signup credit; returning users keep their balance.
func (s *AuthService) LoginGitHub(ctx context.Context, gh *auth.GitHubUser) (*model.User, error) {
	user := &model.User{
		GitHubID:    gh.ID,
		Email:       strings.ToLower(gh.Email),
		DisplayName: gh.Login,
		AvatarURL:   gh.AvatarURL,
	}
	if err := s.users.UpsertGitHub(ctx, user, SignupCredit); err != nil {
		return nil, fmt.Errorf("upserting GitHub user %d: %w", gh.ID, err)
	}

	s.logger.Info("github login", slog.String("userID", user.ID))
	return user, nil
}

// Me returns the profile for an authenticated user ID.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetUserByID(ctx, userID)
}
