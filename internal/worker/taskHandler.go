package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/ds124wfegd/meetup-service/internal/service"
	"github.com/ds124wfegd/meetup-service/pkg/queue"

	"github.com/sirupsen/logrus"
)

// TaskHandler обрабатывает задачи из очереди
type TaskHandler struct {
	meetupService service.MeetupService
	userService   service.UserService
	telegramBot   TelegramBot
}

// TelegramBot интерфейс для Telegram бота
type TelegramBot interface {
	SendMessage(chatID, text string) error
}

// NewTaskHandler создает новый обработчик задач
func NewTaskHandler(
	meetupService service.MeetupService,
	userService service.UserService,
	telegramBot TelegramBot,
) *TaskHandler {
	return &TaskHandler{
		meetupService: meetupService,
		userService:   userService,
		telegramBot:   telegramBot,
	}
}

// HandleTask обрабатывает задачу
func (h *TaskHandler) HandleTask(task *queue.Task) error {
	logrus.Infof("Обработка задачи %s типа %s (попытка %d/%d)",
		task.ID, task.Type, task.Attempts, task.MaxRetries)

	switch task.Type {
	case queue.TaskTypeSubscriptionNotification:
		return h.handleSubscriptionNotification(task)
	case queue.TaskTypeMeetupReminder:
		return h.handleMeetupReminder(task)
	default:
		return fmt.Errorf("неизвестный тип задачи: %s", task.Type)
	}
}

// handleSubscriptionNotification отправляет организатору уведомление о новой подписке
func (h *TaskHandler) handleSubscriptionNotification(task *queue.Task) error {
	ctx := context.Background()

	meetupID := task.GetInt64("meetup_id")
	if meetupID == 0 {
		return fmt.Errorf("неверный meetup_id в данных задачи")
	}

	subscriberID := task.GetInt64("subscriber_id")
	if subscriberID == 0 {
		return fmt.Errorf("неверный subscriber_id в данных задачи")
	}

	meetup, err := h.meetupService.GetMeetup(ctx, meetupID)
	if err != nil {
		return fmt.Errorf("не удалось получить встречу %d: %v", meetupID, err)
	}

	subscriber, err := h.userService.GetUserByID(ctx, subscriberID)
	if err != nil {
		return fmt.Errorf("не удалось получить пользователя %d: %v", subscriberID, err)
	}

	if meetup.Owner == nil {
		return fmt.Errorf("у встречи %d не загружен организатор", meetupID)
	}

	if meetup.Owner.TelegramID == "" || h.telegramBot == nil {
		logrus.Debugf("У организатора встречи %d не привязан Telegram, уведомление пропущено", meetupID)
		return nil
	}

	subscribedAt := task.GetTime("subscribed_at")
	if subscribedAt.IsZero() {
		subscribedAt = task.CreatedAt
	}

	n := &service.SubscriptionNotification{
		MeetupID:        meetup.ID,
		MeetupTitle:     meetup.Title,
		MeetupDate:      meetup.Date,
		OwnerName:       meetup.Owner.Name,
		OwnerEmail:      meetup.Owner.Email,
		OwnerTelegramID: meetup.Owner.TelegramID,
		SubscriberID:    subscriber.ID,
		SubscriberName:  subscriber.Name,
		SubscriberEmail: subscriber.Email,
		SubscribedAt:    subscribedAt,
		SubscriberCount: meetup.SubscriberCount(),
	}
	if meetup.Banner != nil {
		n.BannerURL = meetup.Banner.URL
	}
	if subscriber.Avatar != nil {
		n.SubscriberAvatarURL = subscriber.Avatar.URL
	}

	message := service.FormatSubscriptionMessage(n)

	if err := h.telegramBot.SendMessage(meetup.Owner.TelegramID, message); err != nil {
		return fmt.Errorf("не удалось отправить Telegram сообщение: %v", err)
	}

	logrus.Infof("Отправлено уведомление о подписке: Meetup=%d, Subscriber=%d", meetup.ID, subscriber.ID)
	return nil
}

// handleMeetupReminder отправляет напоминания подписчикам встречи
func (h *TaskHandler) handleMeetupReminder(task *queue.Task) error {
	ctx := context.Background()

	meetupID := task.GetInt64("meetup_id")
	if meetupID == 0 {
		return fmt.Errorf("неверный meetup_id в данных задачи")
	}

	meetup, err := h.meetupService.GetMeetup(ctx, meetupID)
	if err != nil {
		return fmt.Errorf("не удалось получить встречу %d: %v", meetupID, err)
	}

	if meetup.IsPast() {
		logrus.Debugf("Встреча %d уже прошла, напоминание пропущено", meetupID)
		return nil
	}

	if h.telegramBot == nil {
		return nil
	}

	hoursLeft := int(time.Until(meetup.Date).Hours())

	sentCount := 0
	for _, subscriberID := range meetup.Subscribers {
		user, err := h.userService.GetUserByID(ctx, subscriberID)
		if err != nil {
			logrus.Errorf("Не удалось получить пользователя %d для напоминания о встрече: %v", subscriberID, err)
			continue
		}

		if user.TelegramID == "" {
			continue
		}

		message := fmt.Sprintf(
			"🔔 Напоминание о встрече\n\n"+
				"Встреча: %s\n"+
				"Дата и время: %s\n"+
				"Место: %s\n\n"+
				"Встреча начнется через %d часов. Ждем вас!",
			meetup.Title,
			meetup.Date.Format("02.01.2006 в 15:04"),
			meetup.Location,
			hoursLeft,
		)

		if err := h.telegramBot.SendMessage(user.TelegramID, message); err != nil {
			logrus.Errorf("Не удалось отправить напоминание о встрече пользователю %d: %v", user.ID, err)
		} else {
			sentCount++
		}
	}

	logrus.Infof("Отправлены напоминания о встрече %d для %d подписчиков", meetupID, sentCount)
	return nil
}
