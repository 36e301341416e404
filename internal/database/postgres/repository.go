package repository

import (
	"context"
	"time"

	"github.com/ds124wfegd/meetup-service/internal/entity"
)

type MeetupRepository interface {
	// Чтение
	GetByID(ctx context.Context, id int64) (*entity.MeetupWithRelations, error)
	GetSubscribedUpcoming(ctx context.Context, userID int64) ([]*entity.MeetupWithRelations, error)
	GetStartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Meetup, error)

	// Поиск конфликтующей подписки: встреча, на которую пользователь уже
	// подписан и дата которой попадает в окно [from, to] включительно
	FindConflicting(ctx context.Context, userID int64, from, to time.Time, excludeID int64) (*entity.Meetup, error)

	// Мутации списка подписчиков, сериализуются по встрече
	AddSubscriber(ctx context.Context, meetupID, userID int64) (*entity.Meetup, error)
	RemoveSubscriber(ctx context.Context, meetupID, userID int64) (*entity.Meetup, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.UserWithAvatar, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByTelegramID(ctx context.Context, telegramID string) (*entity.User, error)
}
