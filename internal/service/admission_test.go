package service

import (
	"testing"
	"time"

	"github.com/ds124wfegd/meetup-service/internal/entity"
	"github.com/stretchr/testify/assert"
)

// TestCheckJoin тестирует проверку допустимости подписки и порядок отказов
func TestCheckJoin(t *testing.T) {
	future := time.Now().Add(48 * time.Hour)
	past := time.Now().Add(-48 * time.Hour)

	tests := []struct {
		name    string
		meetup  *entity.Meetup
		userID  int64
		wantErr error
	}{
		{
			name:    "nil meetup rejected as not found",
			meetup:  nil,
			userID:  1,
			wantErr: entity.ErrMeetupNotFound,
		},
		{
			name:    "subscribing to upcoming meetup succeeds",
			meetup:  &entity.Meetup{ID: 1, Date: future, OwnerID: 10},
			userID:  1,
			wantErr: nil,
		},
		{
			name:    "past meetup rejected",
			meetup:  &entity.Meetup{ID: 1, Date: past, OwnerID: 10},
			userID:  1,
			wantErr: entity.ErrMeetupFinished,
		},
		{
			name:    "owner can't subscribe",
			meetup:  &entity.Meetup{ID: 1, Date: future, OwnerID: 1},
			userID:  1,
			wantErr: entity.ErrOwnerCantJoin,
		},
		{
			name:    "duplicate subscription rejected",
			meetup:  &entity.Meetup{ID: 1, Date: future, OwnerID: 10, Subscribers: entity.SubscriberList{1}},
			userID:  1,
			wantErr: entity.ErrAlreadyJoined,
		},
		{
			// Первая сработавшая проверка определяет ответ
			name:    "finished wins over owner and duplicate",
			meetup:  &entity.Meetup{ID: 1, Date: past, OwnerID: 1, Subscribers: entity.SubscriberList{1}},
			userID:  1,
			wantErr: entity.ErrMeetupFinished,
		},
		{
			name:    "owner wins over duplicate",
			meetup:  &entity.Meetup{ID: 1, Date: future, OwnerID: 1, Subscribers: entity.SubscriberList{1}},
			userID:  1,
			wantErr: entity.ErrOwnerCantJoin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckJoin(tt.meetup, tt.userID)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

// TestCheckLeave тестирует проверку допустимости отписки
func TestCheckLeave(t *testing.T) {
	future := time.Now().Add(48 * time.Hour)
	past := time.Now().Add(-48 * time.Hour)

	tests := []struct {
		name    string
		meetup  *entity.Meetup
		userID  int64
		wantErr error
	}{
		{
			name:    "nil meetup rejected as not found",
			meetup:  nil,
			userID:  1,
			wantErr: entity.ErrMeetupNotFound,
		},
		{
			name:    "leaving upcoming meetup succeeds",
			meetup:  &entity.Meetup{ID: 1, Date: future, Subscribers: entity.SubscriberList{1}},
			userID:  1,
			wantErr: nil,
		},
		{
			name:    "past meetup rejected",
			meetup:  &entity.Meetup{ID: 1, Date: past, Subscribers: entity.SubscriberList{1}},
			userID:  1,
			wantErr: entity.ErrMeetupFinished,
		},
		{
			name:    "non-member rejected",
			meetup:  &entity.Meetup{ID: 1, Date: future, Subscribers: entity.SubscriberList{2}},
			userID:  1,
			wantErr: entity.ErrNotSubscribed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckLeave(tt.meetup, tt.userID)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

// TestConflictWindow тестирует вычисление окна поиска конфликтов
func TestConflictWindow(t *testing.T) {
	minSeparation := 2 * time.Hour

	tests := []struct {
		name      string
		candidate time.Time
		wantFrom  time.Time
		wantTo    time.Time
	}{
		{
			name:      "start truncated to the hour",
			candidate: time.Date(2026, 6, 1, 10, 30, 45, 0, time.UTC),
			wantFrom:  time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
			wantTo:    time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name:      "exact hour unchanged",
			candidate: time.Date(2026, 6, 1, 13, 0, 0, 0, time.UTC),
			wantFrom:  time.Date(2026, 6, 1, 13, 0, 0, 0, time.UTC),
			wantTo:    time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC),
		},
		{
			name:      "window spans midnight",
			candidate: time.Date(2026, 6, 1, 23, 15, 0, 0, time.UTC),
			wantFrom:  time.Date(2026, 6, 1, 23, 0, 0, 0, time.UTC),
			wantTo:    time.Date(2026, 6, 2, 1, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := ConflictWindow(tt.candidate, minSeparation)
			assert.True(t, from.Equal(tt.wantFrom), "from = %s, want %s", from, tt.wantFrom)
			assert.True(t, to.Equal(tt.wantTo), "to = %s, want %s", to, tt.wantTo)
		})
	}
}
