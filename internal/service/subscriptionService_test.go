package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ds124wfegd/meetup-service/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMeetupRepo хранит встречи в памяти и повторяет семантику
// postgres-репозитория: повторная валидация под блокировкой при мутации
type fakeMeetupRepo struct {
	mu          sync.Mutex
	meetups     map[int64]*entity.MeetupWithRelations
	conflictErr error
}

func newFakeMeetupRepo(meetups ...*entity.MeetupWithRelations) *fakeMeetupRepo {
	repo := &fakeMeetupRepo{meetups: make(map[int64]*entity.MeetupWithRelations)}
	for _, m := range meetups {
		repo.meetups[m.ID] = m
	}
	return repo
}

func (r *fakeMeetupRepo) GetByID(ctx context.Context, id int64) (*entity.MeetupWithRelations, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.meetups[id]
	if !ok {
		return nil, entity.ErrMeetupNotFound
	}

	snapshot := *m
	return &snapshot, nil
}

func (r *fakeMeetupRepo) GetSubscribedUpcoming(ctx context.Context, userID int64) ([]*entity.MeetupWithRelations, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.MeetupWithRelations
	for _, m := range r.meetups {
		if m.IsSubscribed(userID) && !m.IsPast() {
			snapshot := *m
			result = append(result, &snapshot)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

func (r *fakeMeetupRepo) GetStartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Meetup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.Meetup
	for _, m := range r.meetups {
		if !m.Date.Before(from) && !m.Date.After(to) {
			snapshot := m.Meetup
			result = append(result, &snapshot)
		}
	}
	return result, nil
}

func (r *fakeMeetupRepo) FindConflicting(ctx context.Context, userID int64, from, to time.Time, excludeID int64) (*entity.Meetup, error) {
	if r.conflictErr != nil {
		return nil, r.conflictErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var candidates []*entity.Meetup
	for _, m := range r.meetups {
		if m.ID == excludeID || !m.IsSubscribed(userID) {
			continue
		}
		if m.Date.Before(from) || m.Date.After(to) {
			continue
		}
		snapshot := m.Meetup
		candidates = append(candidates, &snapshot)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Date.Before(candidates[j].Date)
	})
	return candidates[0], nil
}

func (r *fakeMeetupRepo) AddSubscriber(ctx context.Context, meetupID, userID int64) (*entity.Meetup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.meetups[meetupID]
	if !ok {
		return nil, entity.ErrMeetupNotFound
	}
	if m.IsPast() {
		return nil, entity.ErrMeetupFinished
	}
	if m.IsOwner(userID) {
		return nil, entity.ErrOwnerCantJoin
	}
	if m.IsSubscribed(userID) {
		return nil, entity.ErrAlreadyJoined
	}

	m.Subscribers = m.Subscribers.WithSubscriber(userID)
	m.UpdatedAt = time.Now()

	snapshot := m.Meetup
	return &snapshot, nil
}

func (r *fakeMeetupRepo) RemoveSubscriber(ctx context.Context, meetupID, userID int64) (*entity.Meetup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.meetups[meetupID]
	if !ok {
		return nil, entity.ErrMeetupNotFound
	}
	if m.IsPast() {
		return nil, entity.ErrMeetupFinished
	}
	if !m.IsSubscribed(userID) {
		return nil, entity.ErrNotSubscribed
	}

	m.Subscribers = m.Subscribers.WithoutSubscriber(userID)
	m.UpdatedAt = time.Now()

	snapshot := m.Meetup
	return &snapshot, nil
}

func (r *fakeMeetupRepo) subscribers(meetupID int64) entity.SubscriberList {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append(entity.SubscriberList{}, r.meetups[meetupID].Subscribers...)
}

type fakeUserRepo struct {
	users map[int64]*entity.UserWithAvatar
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*entity.UserWithAvatar, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, entity.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) GetByTelegramID(ctx context.Context, telegramID string) (*entity.User, error) {
	return nil, nil
}

// fakeNotifier передает уведомления в канал для проверки в тесте
type fakeNotifier struct {
	notifications chan *SubscriptionNotification
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{notifications: make(chan *SubscriptionNotification, 1)}
}

func (n *fakeNotifier) NotifySubscription(notification *SubscriptionNotification) {
	n.notifications <- notification
}

func testUser(id int64, name string) *entity.UserWithAvatar {
	return &entity.UserWithAvatar{
		User: entity.User{
			ID:    id,
			Name:  name,
			Email: name + "@example.com",
		},
	}
}

func testMeetup(id, ownerID int64, date time.Time, subscribers ...int64) *entity.MeetupWithRelations {
	return &entity.MeetupWithRelations{
		Meetup: entity.Meetup{
			ID:          id,
			Title:       "Go Meetup",
			Description: "Talks about Go",
			Location:    "Moscow",
			Date:        date,
			OwnerID:     ownerID,
			Subscribers: entity.SubscriberList(subscribers),
		},
		Owner: testUser(ownerID, "owner"),
	}
}

func newTestService(meetupRepo *fakeMeetupRepo, users *fakeUserRepo, notifier Notifier) SubscriptionService {
	if users == nil {
		users = &fakeUserRepo{users: map[int64]*entity.UserWithAvatar{
			1: testUser(1, "alice"),
			2: testUser(2, "bob"),
		}}
	}
	return NewSubscriptionService(meetupRepo, users, nil, nil, notifier, 2)
}

// TestJoin тестирует успешную подписку и повторный отказ
func TestJoin(t *testing.T) {
	future := time.Now().Add(72 * time.Hour)
	repo := newFakeMeetupRepo(testMeetup(1, 10, future))
	svc := newTestService(repo, nil, nil)

	summary, err := svc.Join(context.Background(), 1, 1)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "Go Meetup", summary.Title)
	assert.Equal(t, "Moscow", summary.Location)
	assert.True(t, summary.Date.Equal(future))

	subs := repo.subscribers(1)
	assert.Equal(t, entity.SubscriberList{1}, subs)

	// Повторная подписка не изменяет список
	_, err = svc.Join(context.Background(), 1, 1)
	assert.ErrorIs(t, err, entity.ErrAlreadyJoined)
	assert.Equal(t, entity.SubscriberList{1}, repo.subscribers(1))
}

// TestJoinRejections тестирует порядок отказов при подписке
func TestJoinRejections(t *testing.T) {
	future := time.Now().Add(72 * time.Hour)
	past := time.Now().Add(-72 * time.Hour)

	tests := []struct {
		name     string
		meetup   *entity.MeetupWithRelations
		meetupID int64
		userID   int64
		wantErr  error
	}{
		{
			name:     "unknown meetup",
			meetup:   testMeetup(1, 10, future),
			meetupID: 99,
			userID:   1,
			wantErr:  entity.ErrMeetupNotFound,
		},
		{
			name:     "finished meetup",
			meetup:   testMeetup(1, 10, past),
			meetupID: 1,
			userID:   1,
			wantErr:  entity.ErrMeetupFinished,
		},
		{
			name:     "owner subscription",
			meetup:   testMeetup(1, 10, future),
			meetupID: 1,
			userID:   10,
			wantErr:  entity.ErrOwnerCantJoin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeMeetupRepo(tt.meetup)
			svc := newTestService(repo, nil, nil)

			_, err := svc.Join(context.Background(), tt.meetupID, tt.userID)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestJoinConflict тестирует обнаружение подписки в том же временном окне
func TestJoinConflict(t *testing.T) {
	// Якорь на точной границе часа, чтобы окно было детерминированным
	base := time.Now().UTC().Truncate(time.Hour).Add(96 * time.Hour)

	// Пользователь 1 уже подписан на встречу в base+1:30
	existing := testMeetup(1, 10, base.Add(90*time.Minute), 1)

	t.Run("existing subscription inside window is a conflict", func(t *testing.T) {
		// Кандидат в base+0:15: окно [base, base+2h] включает base+1:30
		candidate := testMeetup(2, 20, base.Add(15*time.Minute))
		repo := newFakeMeetupRepo(existing, candidate)
		svc := newTestService(repo, nil, nil)

		_, err := svc.Join(context.Background(), 2, 1)
		require.Error(t, err)

		conflictErr, ok := entity.AsConflictError(err)
		require.True(t, ok, "expected ConflictError, got %v", err)
		assert.Equal(t, int64(1), conflictErr.Conflict.ID)
		assert.Empty(t, repo.subscribers(2))
	})

	t.Run("existing subscription outside window is allowed", func(t *testing.T) {
		// Кандидат в base+3:00: окно [base+3h, base+5h] не включает base+1:30
		candidate := testMeetup(2, 20, base.Add(3*time.Hour))
		repo := newFakeMeetupRepo(existing, candidate)
		svc := newTestService(repo, nil, nil)

		_, err := svc.Join(context.Background(), 2, 1)
		require.NoError(t, err)
		assert.Equal(t, entity.SubscriberList{1}, repo.subscribers(2))
	})

	t.Run("window boundary is inclusive", func(t *testing.T) {
		// Существующая встреча ровно на правой границе окна
		boundary := testMeetup(3, 10, base.Add(2*time.Hour), 1)
		candidate := testMeetup(2, 20, base.Add(10*time.Minute))
		repo := newFakeMeetupRepo(boundary, candidate)
		svc := newTestService(repo, nil, nil)

		_, err := svc.Join(context.Background(), 2, 1)
		require.Error(t, err)

		conflictErr, ok := entity.AsConflictError(err)
		require.True(t, ok)
		assert.Equal(t, int64(3), conflictErr.Conflict.ID)
	})
}

// TestJoinConflictQueryFailure тестирует отказ подписки при сбое проверки
// конфликтов: ошибка не трактуется как отсутствие конфликта
func TestJoinConflictQueryFailure(t *testing.T) {
	future := time.Now().Add(72 * time.Hour)
	repo := newFakeMeetupRepo(testMeetup(1, 10, future))
	repo.conflictErr = errors.New("connection refused")
	svc := newTestService(repo, nil, nil)

	_, err := svc.Join(context.Background(), 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check conflicting subscriptions")
	assert.Empty(t, repo.subscribers(1))
}

// TestJoinConcurrent тестирует, что конкурентные подписки разных
// пользователей не теряются и не дублируются
func TestJoinConcurrent(t *testing.T) {
	const users = 50

	future := time.Now().Add(72 * time.Hour)
	repo := newFakeMeetupRepo(testMeetup(1, 1000, future))

	userMap := make(map[int64]*entity.UserWithAvatar, users)
	for i := int64(1); i <= users; i++ {
		userMap[i] = testUser(i, "user")
	}
	svc := newTestService(repo, &fakeUserRepo{users: userMap}, nil)

	var wg sync.WaitGroup
	errs := make(chan error, users)
	for i := int64(1); i <= users; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			if _, err := svc.Join(context.Background(), 1, userID); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected join error: %v", err)
	}

	subs := repo.subscribers(1)
	require.Len(t, subs, users)

	seen := make(map[int64]bool, users)
	for _, id := range subs {
		assert.False(t, seen[id], "duplicate subscriber %d", id)
		seen[id] = true
	}
}

// TestJoinNotifiesOwner тестирует доставку уведомления организатору
// после успешной подписки
func TestJoinNotifiesOwner(t *testing.T) {
	future := time.Now().Add(72 * time.Hour)
	repo := newFakeMeetupRepo(testMeetup(1, 10, future))
	notifier := newFakeNotifier()
	svc := newTestService(repo, nil, notifier)

	_, err := svc.Join(context.Background(), 1, 1)
	require.NoError(t, err)

	select {
	case n := <-notifier.notifications:
		assert.Equal(t, int64(1), n.MeetupID)
		assert.Equal(t, int64(1), n.SubscriberID)
		assert.Equal(t, "alice", n.SubscriberName)
		assert.Equal(t, "owner", n.OwnerName)
		assert.Equal(t, 1, n.SubscriberCount)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not delivered")
	}
}

// TestJoinNotificationFailureDoesNotFail тестирует, что отсутствие данных
// подписчика не откатывает подписку
func TestJoinNotificationFailureDoesNotFail(t *testing.T) {
	future := time.Now().Add(72 * time.Hour)
	repo := newFakeMeetupRepo(testMeetup(1, 10, future))
	svc := newTestService(repo, &fakeUserRepo{users: map[int64]*entity.UserWithAvatar{}}, newFakeNotifier())

	summary, err := svc.Join(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.NotNil(t, summary)
	assert.Equal(t, entity.SubscriberList{1}, repo.subscribers(1))
}

// TestLeave тестирует отписку и порядок отказов
func TestLeave(t *testing.T) {
	future := time.Now().Add(72 * time.Hour)
	past := time.Now().Add(-72 * time.Hour)

	t.Run("unsubscribe succeeds", func(t *testing.T) {
		repo := newFakeMeetupRepo(testMeetup(1, 10, future, 1, 2))
		svc := newTestService(repo, nil, nil)

		err := svc.Leave(context.Background(), 1, 1)
		require.NoError(t, err)
		assert.Equal(t, entity.SubscriberList{2}, repo.subscribers(1))

		// Повторная отписка не изменяет список
		err = svc.Leave(context.Background(), 1, 1)
		assert.ErrorIs(t, err, entity.ErrNotSubscribed)
		assert.Equal(t, entity.SubscriberList{2}, repo.subscribers(1))
	})

	t.Run("unknown meetup", func(t *testing.T) {
		repo := newFakeMeetupRepo()
		svc := newTestService(repo, nil, nil)

		err := svc.Leave(context.Background(), 1, 1)
		assert.ErrorIs(t, err, entity.ErrMeetupNotFound)
	})

	t.Run("finished meetup", func(t *testing.T) {
		repo := newFakeMeetupRepo(testMeetup(1, 10, past, 1))
		svc := newTestService(repo, nil, nil)

		err := svc.Leave(context.Background(), 1, 1)
		assert.ErrorIs(t, err, entity.ErrMeetupFinished)
	})

	t.Run("non-member", func(t *testing.T) {
		repo := newFakeMeetupRepo(testMeetup(1, 10, future, 2))
		svc := newTestService(repo, nil, nil)

		err := svc.Leave(context.Background(), 1, 1)
		assert.ErrorIs(t, err, entity.ErrNotSubscribed)
	})
}

// TestListMySubscriptions тестирует выдачу только будущих встреч
// в порядке возрастания даты
func TestListMySubscriptions(t *testing.T) {
	now := time.Now()
	repo := newFakeMeetupRepo(
		testMeetup(1, 10, now.Add(72*time.Hour), 1),
		testMeetup(2, 10, now.Add(-24*time.Hour), 1), // прошедшая
		testMeetup(3, 10, now.Add(24*time.Hour), 1),
		testMeetup(4, 10, now.Add(48*time.Hour), 2), // чужая подписка
	)
	svc := newTestService(repo, nil, nil)

	meetups, err := svc.ListMySubscriptions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, meetups, 2)
	assert.Equal(t, int64(3), meetups[0].ID)
	assert.Equal(t, int64(1), meetups[1].ID)
}
