package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ds124wfegd/meetup-service/internal/entity"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*entity.UserWithAvatar, error) {
	query := `
		SELECT u.id, u.email, u.name, u.telegram_id, u.avatar_id, u.created_at,
		       f.id, f.path, f.url
		FROM users u
		LEFT JOIN files f ON f.id = u.avatar_id
		WHERE u.id = $1
	`

	var user entity.UserWithAvatar
	var avatarFileID sql.NullInt64
	var avatarPath, avatarURL sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.TelegramID,
		&user.AvatarID,
		&user.CreatedAt,
		&avatarFileID,
		&avatarPath,
		&avatarURL,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if avatarFileID.Valid {
		user.Avatar = &entity.File{
			ID:   avatarFileID.Int64,
			Path: avatarPath.String,
			URL:  avatarURL.String,
		}
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `
		SELECT id, email, name, telegram_id, avatar_id, created_at
		FROM users
		WHERE email = $1
	`

	var user entity.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.TelegramID,
		&user.AvatarID,
		&user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID string) (*entity.User, error) {
	query := `
		SELECT id, email, name, telegram_id, avatar_id, created_at
		FROM users
		WHERE telegram_id = $1
	`

	var user entity.User
	err := r.db.QueryRowContext(ctx, query, telegramID).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.TelegramID,
		&user.AvatarID,
		&user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}
