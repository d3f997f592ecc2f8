package service

import (
	"context"

	"github.com/tanvir/cardforge/internal/apperror"
	"github.com/tanvir/cardforge/internal/repository"
)

// AdminService exposes aggregate platform stats to admin users.
type AdminService struct {
	users repository.UserRepository
	stats repository.StatsRepository
}

func NewAdminService(users repository.UserRepository, stats repository.StatsRepository) *AdminService {
	return &AdminService{users: users, stats: stats}
}

// Stats returns platform-wide aggregates. The caller must be an admin;
// non-admins get Forbidden regardless of what they ask for.
func (s *AdminService) Stats(ctx context.Context, userID string) (*repository.Stats, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, apperror.Forbidden("admin access required")
	}
	return s.stats.Stats(ctx)
}
