package service

import (
	"context"

	repository "github.com/ds124wfegd/meetup-service/internal/database/postgres"
	"github.com/ds124wfegd/meetup-service/internal/entity"
)

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService создает новый экземпляр UserService
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// GetUserByID возвращает пользователя с проекцией аватара
func (s *userService) GetUserByID(ctx context.Context, id int64) (*entity.UserWithAvatar, error) {
	return s.userRepo.GetByID(ctx, id)
}
