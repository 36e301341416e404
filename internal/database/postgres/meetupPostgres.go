package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/meetup-service/internal/entity"
)

type meetupRepository struct {
	db *sql.DB
}

func NewMeetupRepository(db *sql.DB) MeetupRepository {
	return &meetupRepository{db: db}
}

func (r *meetupRepository) GetByID(ctx context.Context, id int64) (*entity.MeetupWithRelations, error) {
	query := `
		SELECT
			m.id, m.title, m.description, m.location, m.date, m.owner_id, m.banner_id,
			m.subscribers, m.created_at, m.updated_at,
			o.id, o.email, o.name, o.telegram_id, o.avatar_id, o.created_at,
			av.id, av.path, av.url,
			bn.id, bn.path, bn.url
		FROM meetups m
		JOIN users o ON o.id = m.owner_id
		LEFT JOIN files av ON av.id = o.avatar_id
		LEFT JOIN files bn ON bn.id = m.banner_id
		WHERE m.id = $1
	`

	var meetup entity.MeetupWithRelations
	var owner entity.UserWithAvatar
	var avatarFileID, bannerFileID sql.NullInt64
	var avatarPath, avatarURL, bannerPath, bannerURL sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&meetup.ID,
		&meetup.Title,
		&meetup.Description,
		&meetup.Location,
		&meetup.Date,
		&meetup.OwnerID,
		&meetup.BannerID,
		&meetup.Subscribers,
		&meetup.CreatedAt,
		&meetup.UpdatedAt,
		&owner.ID,
		&owner.Email,
		&owner.Name,
		&owner.TelegramID,
		&owner.AvatarID,
		&owner.CreatedAt,
		&avatarFileID,
		&avatarPath,
		&avatarURL,
		&bannerFileID,
		&bannerPath,
		&bannerURL,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrMeetupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meetup: %w", err)
	}

	if avatarFileID.Valid {
		owner.Avatar = &entity.File{
			ID:   avatarFileID.Int64,
			Path: avatarPath.String,
			URL:  avatarURL.String,
		}
	}
	meetup.Owner = &owner

	if bannerFileID.Valid {
		meetup.Banner = &entity.File{
			ID:   bannerFileID.Int64,
			Path: bannerPath.String,
			URL:  bannerURL.String,
		}
	}

	return &meetup, nil
}

func (r *meetupRepository) GetSubscribedUpcoming(ctx context.Context, userID int64) ([]*entity.MeetupWithRelations, error) {
	query := `
		SELECT
			m.id, m.title, m.description, m.location, m.date, m.owner_id, m.banner_id,
			m.subscribers, m.created_at, m.updated_at,
			o.id, o.email, o.name, o.telegram_id, o.avatar_id, o.created_at,
			av.id, av.path, av.url,
			bn.id, bn.path, bn.url
		FROM meetups m
		JOIN users o ON o.id = m.owner_id
		LEFT JOIN files av ON av.id = o.avatar_id
		LEFT JOIN files bn ON bn.id = m.banner_id
		WHERE m.subscribers @> ARRAY[$1]::bigint[]
		  AND m.date > $2
		ORDER BY m.date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to query subscribed meetups: %w", err)
	}
	defer rows.Close()

	var meetups []*entity.MeetupWithRelations
	for rows.Next() {
		var meetup entity.MeetupWithRelations
		var owner entity.UserWithAvatar
		var avatarFileID, bannerFileID sql.NullInt64
		var avatarPath, avatarURL, bannerPath, bannerURL sql.NullString

		err := rows.Scan(
			&meetup.ID,
			&meetup.Title,
			&meetup.Description,
			&meetup.Location,
			&meetup.Date,
			&meetup.OwnerID,
			&meetup.BannerID,
			&meetup.Subscribers,
			&meetup.CreatedAt,
			&meetup.UpdatedAt,
			&owner.ID,
			&owner.Email,
			&owner.Name,
			&owner.TelegramID,
			&owner.AvatarID,
			&owner.CreatedAt,
			&avatarFileID,
			&avatarPath,
			&avatarURL,
			&bannerFileID,
			&bannerPath,
			&bannerURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meetup: %w", err)
		}

		if avatarFileID.Valid {
			owner.Avatar = &entity.File{
				ID:   avatarFileID.Int64,
				Path: avatarPath.String,
				URL:  avatarURL.String,
			}
		}
		meetup.Owner = &owner

		if bannerFileID.Valid {
			meetup.Banner = &entity.File{
				ID:   bannerFileID.Int64,
				Path: bannerPath.String,
				URL:  bannerURL.String,
			}
		}

		meetups = append(meetups, &meetup)
	}

	return meetups, rows.Err()
}

func (r *meetupRepository) GetStartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Meetup, error) {
	query := `
		SELECT id, title, description, location, date, owner_id, banner_id,
		       subscribers, created_at, updated_at
		FROM meetups
		WHERE date BETWEEN $1 AND $2
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query meetups by date range: %w", err)
	}
	defer rows.Close()

	var meetups []*entity.Meetup
	for rows.Next() {
		var meetup entity.Meetup
		err := rows.Scan(
			&meetup.ID,
			&meetup.Title,
			&meetup.Description,
			&meetup.Location,
			&meetup.Date,
			&meetup.OwnerID,
			&meetup.BannerID,
			&meetup.Subscribers,
			&meetup.CreatedAt,
			&meetup.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meetup: %w", err)
		}
		meetups = append(meetups, &meetup)
	}

	return meetups, rows.Err()
}

// FindConflicting ищет встречу, на которую пользователь уже подписан и дата
// которой попадает в окно [from, to] включительно. Аналог containment-запроса
// по массиву подписчиков: subscribers @> ARRAY[userID]
func (r *meetupRepository) FindConflicting(ctx context.Context, userID int64, from, to time.Time, excludeID int64) (*entity.Meetup, error) {
	query := `
		SELECT id, title, description, location, date, owner_id, banner_id,
		       subscribers, created_at, updated_at
		FROM meetups
		WHERE subscribers @> ARRAY[$1]::bigint[]
		  AND date BETWEEN $2 AND $3
		  AND id <> $4
		ORDER BY date ASC
		LIMIT 1
	`

	var meetup entity.Meetup
	err := r.db.QueryRowContext(ctx, query, userID, from, to, excludeID).Scan(
		&meetup.ID,
		&meetup.Title,
		&meetup.Description,
		&meetup.Location,
		&meetup.Date,
		&meetup.OwnerID,
		&meetup.BannerID,
		&meetup.Subscribers,
		&meetup.CreatedAt,
		&meetup.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find conflicting meetup: %w", err)
	}

	return &meetup, nil
}

// AddSubscriber добавляет пользователя в список подписчиков в транзакции.
// Строка встречи блокируется через SELECT ... FOR UPDATE, поэтому два
// одновременных запроса на одну встречу выполняются последовательно и
// потерянные обновления исключены.
func (r *meetupRepository) AddSubscriber(ctx context.Context, meetupID, userID int64) (*entity.Meetup, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	meetup, err := lockMeetup(ctx, tx, meetupID)
	if err != nil {
		return nil, err
	}

	// Повторная проверка под блокировкой: состояние могло измениться
	// между чтением снапшота и началом транзакции
	if meetup.IsPast() {
		return nil, entity.ErrMeetupFinished
	}
	if meetup.IsOwner(userID) {
		return nil, entity.ErrOwnerCantJoin
	}
	if meetup.IsSubscribed(userID) {
		return nil, entity.ErrAlreadyJoined
	}

	meetup.Subscribers = meetup.Subscribers.WithSubscriber(userID)

	if err := updateSubscribers(ctx, tx, meetup); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return meetup, nil
}

// RemoveSubscriber удаляет пользователя из списка подписчиков в транзакции
func (r *meetupRepository) RemoveSubscriber(ctx context.Context, meetupID, userID int64) (*entity.Meetup, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	meetup, err := lockMeetup(ctx, tx, meetupID)
	if err != nil {
		return nil, err
	}

	if meetup.IsPast() {
		return nil, entity.ErrMeetupFinished
	}
	if !meetup.IsSubscribed(userID) {
		return nil, entity.ErrNotSubscribed
	}

	meetup.Subscribers = meetup.Subscribers.WithoutSubscriber(userID)

	if err := updateSubscribers(ctx, tx, meetup); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return meetup, nil
}

// lockMeetup читает встречу с блокировкой строки до конца транзакции
func lockMeetup(ctx context.Context, tx *sql.Tx, meetupID int64) (*entity.Meetup, error) {
	query := `
		SELECT id, title, description, location, date, owner_id, banner_id,
		       subscribers, created_at, updated_at
		FROM meetups
		WHERE id = $1
		FOR UPDATE
	`

	var meetup entity.Meetup
	err := tx.QueryRowContext(ctx, query, meetupID).Scan(
		&meetup.ID,
		&meetup.Title,
		&meetup.Description,
		&meetup.Location,
		&meetup.Date,
		&meetup.OwnerID,
		&meetup.BannerID,
		&meetup.Subscribers,
		&meetup.CreatedAt,
		&meetup.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrMeetupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock meetup: %w", err)
	}

	return &meetup, nil
}

func updateSubscribers(ctx context.Context, tx *sql.Tx, meetup *entity.Meetup) error {
	query := `UPDATE meetups SET subscribers = $1, updated_at = $2 WHERE id = $3`

	now := time.Now()
	result, err := tx.ExecContext(ctx, query, meetup.Subscribers, now, meetup.ID)
	if err != nil {
		return fmt.Errorf("failed to update subscribers: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrMeetupNotFound
	}

	meetup.UpdatedAt = now
	return nil
}
