package service

import (
	"context"
	"fmt"
	"time"

	repository "github.com/ds124wfegd/meetup-service/internal/database/postgres"
	"github.com/ds124wfegd/meetup-service/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type subscriptionService struct {
	meetupRepo    repository.MeetupRepository
	userRepo      repository.UserRepository
	cache         SubscriptionCache
	queue         TaskPublisher
	notifier      Notifier
	minSeparation time.Duration
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
// minSeparationHours задает минимальный интервал между встречами одного
// пользователя; cache, queue и notifier могут быть nil.
func NewSubscriptionService(
	meetupRepo repository.MeetupRepository,
	userRepo repository.UserRepository,
	cache SubscriptionCache,
	queue TaskPublisher,
	notifier Notifier,
	minSeparationHours int,
) SubscriptionService {
	return &subscriptionService{
		meetupRepo:    meetupRepo,
		userRepo:      userRepo,
		cache:         cache,
		queue:         queue,
		notifier:      notifier,
		minSeparation: time.Duration(minSeparationHours) * time.Hour,
	}
}

// Join подписывает пользователя на встречу
func (s *subscriptionService) Join(ctx context.Context, meetupID, userID int64) (*MeetupSummary, error) {
	meetup, err := s.meetupRepo.GetByID(ctx, meetupID)
	if err != nil {
		return nil, err
	}

	if err := CheckJoin(&meetup.Meetup, userID); err != nil {
		return nil, err
	}

	// Проверка конфликтов выполняется при каждой попытке: набор подписок
	// меняется часто, кэшировать результат нельзя. Ошибка запроса
	// отклоняет подписку, а не пропускает её
	conflict, err := s.findConflict(ctx, userID, &meetup.Meetup)
	if err != nil {
		return nil, fmt.Errorf("failed to check conflicting subscriptions: %w", err)
	}
	if conflict != nil {
		return nil, &entity.ConflictError{Conflict: conflict}
	}

	updated, err := s.meetupRepo.AddSubscriber(ctx, meetupID, userID)
	if err != nil {
		return nil, err
	}

	logrus.Infof("Подписка оформлена: Meetup=%d, User=%d, Subscribers=%d",
		updated.ID, userID, updated.SubscriberCount())

	s.invalidateCache(ctx, userID)

	// Уведомление организатора — побочный эффект, подписка уже
	// зафиксирована и не откатывается при сбое доставки
	subscriber, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		logrus.Errorf("Не удалось загрузить подписчика %d для уведомления: %v", userID, err)
	} else {
		s.dispatchNotification(ctx, buildSubscriptionNotification(meetup, updated, subscriber))
	}

	return &MeetupSummary{
		Title:       updated.Title,
		Description: updated.Description,
		Location:    updated.Location,
		Date:        updated.Date,
		Banner:      meetup.Banner,
	}, nil
}

// Leave отписывает пользователя от встречи
func (s *subscriptionService) Leave(ctx context.Context, meetupID, userID int64) error {
	meetup, err := s.meetupRepo.GetByID(ctx, meetupID)
	if err != nil {
		return err
	}

	if err := CheckLeave(&meetup.Meetup, userID); err != nil {
		return err
	}

	if _, err := s.meetupRepo.RemoveSubscriber(ctx, meetupID, userID); err != nil {
		return err
	}

	logrus.Infof("Подписка отменена: Meetup=%d, User=%d", meetupID, userID)

	s.invalidateCache(ctx, userID)
	return nil
}

// ListMySubscriptions возвращает будущие встречи пользователя,
// отсортированные по дате
func (s *subscriptionService) ListMySubscriptions(ctx context.Context, userID int64) ([]*entity.MeetupWithRelations, error) {
	if s.cache != nil {
		cached, err := s.cache.GetSubscriptions(ctx, userID)
		if err == nil {
			return filterUpcoming(cached), nil
		}
	}

	meetups, err := s.meetupRepo.GetSubscribedUpcoming(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscribed meetups: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetSubscriptions(ctx, userID, meetups); err != nil {
			logrus.Warnf("Не удалось закэшировать подписки пользователя %d: %v", userID, err)
		}
	}

	return meetups, nil
}

// findConflict ищет встречу в том же временном окне, на которую пользователь
// уже подписан
func (s *subscriptionService) findConflict(ctx context.Context, userID int64, candidate *entity.Meetup) (*entity.Meetup, error) {
	windowStart, windowEnd := ConflictWindow(candidate.Date, s.minSeparation)
	return s.meetupRepo.FindConflicting(ctx, userID, windowStart, windowEnd, candidate.ID)
}

// dispatchNotification доставляет уведомление через очередь с ретраями,
// при недоступной очереди — напрямую через notifier
func (s *subscriptionService) dispatchNotification(ctx context.Context, n *SubscriptionNotification) {
	if s.queue != nil {
		task := &Task{
			ID:   uuid.NewString(),
			Type: TaskTypeSubscriptionNotification,
			Data: map[string]interface{}{
				"meetup_id":     n.MeetupID,
				"subscriber_id": n.SubscriberID,
				"subscribed_at": n.SubscribedAt.Format(time.RFC3339),
			},
			ExecuteAt:  time.Now(),
			MaxRetries: 3,
		}

		if err := s.queue.Publish(ctx, task); err != nil {
			logrus.Errorf("Не удалось запланировать уведомление о подписке: %v", err)
		} else {
			return
		}
	}

	if s.notifier != nil {
		go s.notifier.NotifySubscription(n)
	}
}

func (s *subscriptionService) invalidateCache(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		logrus.Warnf("Не удалось инвалидировать кэш подписок пользователя %d: %v", userID, err)
	}
}

// buildSubscriptionNotification собирает контекст уведомления из снапшота
// встречи до мутации (владелец, баннер), обновленного списка подписчиков и
// данных подписчика
func buildSubscriptionNotification(meetup *entity.MeetupWithRelations, updated *entity.Meetup, subscriber *entity.UserWithAvatar) *SubscriptionNotification {
	n := &SubscriptionNotification{
		MeetupID:        updated.ID,
		MeetupTitle:     updated.Title,
		MeetupDate:      updated.Date,
		SubscriberID:    subscriber.ID,
		SubscriberName:  subscriber.Name,
		SubscriberEmail: subscriber.Email,
		SubscribedAt:    time.Now(),
		SubscriberCount: updated.SubscriberCount(),
	}

	if meetup.Owner != nil {
		n.OwnerName = meetup.Owner.Name
		n.OwnerEmail = meetup.Owner.Email
		n.OwnerTelegramID = meetup.Owner.TelegramID
	}
	if meetup.Banner != nil {
		n.BannerURL = meetup.Banner.URL
	}
	if subscriber.Avatar != nil {
		n.SubscriberAvatarURL = subscriber.Avatar.URL
	}

	return n
}

// filterUpcoming отбрасывает встречи, начавшиеся за время жизни кэша
func filterUpcoming(meetups []*entity.MeetupWithRelations) []*entity.MeetupWithRelations {
	result := make([]*entity.MeetupWithRelations, 0, len(meetups))
	for _, m := range meetups {
		if !m.IsPast() {
			result = append(result, m)
		}
	}
	return result
}
