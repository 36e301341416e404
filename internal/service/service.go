package service

import (
	"context"
	"time"

	"github.com/ds124wfegd/meetup-service/internal/entity"
)

// SubscriptionService определяет интерфейс для операций с подписками на встречи
type SubscriptionService interface {
	// Основные операции
	Join(ctx context.Context, meetupID, userID int64) (*MeetupSummary, error)
	Leave(ctx context.Context, meetupID, userID int64) error
	ListMySubscriptions(ctx context.Context, userID int64) ([]*entity.MeetupWithRelations, error)
}

// MeetupService определяет интерфейс для чтения встреч
type MeetupService interface {
	GetMeetup(ctx context.Context, id int64) (*entity.MeetupWithRelations, error)
	GetStartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Meetup, error)
}

// UserService определяет интерфейс для чтения пользователей
type UserService interface {
	GetUserByID(ctx context.Context, id int64) (*entity.UserWithAvatar, error)
}

// MeetupSummary представляет публичные поля встречи, возвращаемые после подписки
type MeetupSummary struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Location    string       `json:"location"`
	Date        time.Time    `json:"date"`
	Banner      *entity.File `json:"banner,omitempty"`
}

// SubscriptionNotification представляет контекст уведомления организатору
// о новой подписке на его встречу
type SubscriptionNotification struct {
	MeetupID            int64     `json:"meetup_id"`
	MeetupTitle         string    `json:"meetup_title"`
	MeetupDate          time.Time `json:"meetup_date"`
	BannerURL           string    `json:"banner_url,omitempty"`
	OwnerName           string    `json:"owner_name"`
	OwnerEmail          string    `json:"owner_email"`
	OwnerTelegramID     string    `json:"owner_telegram_id,omitempty"`
	SubscriberID        int64     `json:"subscriber_id"`
	SubscriberName      string    `json:"subscriber_name"`
	SubscriberEmail     string    `json:"subscriber_email"`
	SubscriberAvatarURL string    `json:"subscriber_avatar_url,omitempty"`
	SubscribedAt        time.Time `json:"subscribed_at"`
	SubscriberCount     int       `json:"subscriber_count"`
}

// Notifier отправляет уведомление организатору. Доставка best-effort:
// ошибки логируются реализацией и не возвращаются вызывающему
type Notifier interface {
	NotifySubscription(n *SubscriptionNotification)
}

// SubscriptionCache кэширует списки подписок пользователей
type SubscriptionCache interface {
	GetSubscriptions(ctx context.Context, userID int64) ([]*entity.MeetupWithRelations, error)
	SetSubscriptions(ctx context.Context, userID int64, meetups []*entity.MeetupWithRelations) error
	Invalidate(ctx context.Context, userID int64) error
}

// TaskPublisher интерфейс для публикации задач в очередь
type TaskPublisher interface {
	Publish(ctx context.Context, task *Task) error
}

// Task представляет задачу для очереди
type Task struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	ExecuteAt  time.Time              `json:"execute_at"`
	MaxRetries int                    `json:"max_retries"`
	Attempts   int                    `json:"attempts"`
}

// Константы типов задач
const (
	TaskTypeSubscriptionNotification = "subscription_notification"
	TaskTypeMeetupReminder           = "meetup_reminder"
)
