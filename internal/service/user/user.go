package user

import (
	"context"
	"fmt"

	"github.com/nkiryanov/booklend/internal/models"
	"github.com/nkiryanov/booklend/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepo
}

func NewService(userRepo repository.UserRepo) *UserService {
	return &UserService{userRepo: userRepo}
}

// Current user profile
// If user removed after token was issued return apperrors.ErrUserNotFound
func (s *UserService) GetUser(ctx context.Context, userID int64) (models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return user, fmt.Errorf("can't get user. Err: %w", err)
	}

	return user, nil
}
