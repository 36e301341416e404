package entity

import (
	"time"
)

type Meetup struct {
	ID          int64          `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	Location    string         `json:"location" db:"location"`
	Date        time.Time      `json:"date" db:"date"`
	OwnerID     int64          `json:"owner_id" db:"owner_id"`
	BannerID    *int64         `json:"banner_id,omitempty" db:"banner_id"`
	Subscribers SubscriberList `json:"subscribers" db:"subscribers"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

type MeetupWithRelations struct {
	Meetup
	Owner  *UserWithAvatar `json:"owner,omitempty"`
	Banner *File           `json:"banner,omitempty"`
}

// IsPast сообщает, началась ли встреча раньше текущего момента
func (m *Meetup) IsPast() bool {
	return m.Date.Before(time.Now())
}

// IsOwner проверяет, является ли пользователь организатором встречи
func (m *Meetup) IsOwner(userID int64) bool {
	return m.OwnerID == userID
}

// IsSubscribed проверяет, подписан ли пользователь на встречу
func (m *Meetup) IsSubscribed(userID int64) bool {
	return m.Subscribers.Contains(userID)
}

// SubscriberCount возвращает количество подписчиков
func (m *Meetup) SubscriberCount() int {
	return len(m.Subscribers)
}
