package entity

import "time"

type User struct {
	ID         int64     `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	Name       string    `json:"name" db:"name"`
	TelegramID string    `json:"telegram_id" db:"telegram_id"`
	AvatarID   *int64    `json:"avatar_id,omitempty" db:"avatar_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type UserWithAvatar struct {
	User
	Avatar *File `json:"avatar,omitempty"`
}
