package service

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// TelegramSender интерфейс отправки сообщений в Telegram
type TelegramSender interface {
	SendMessage(chatID, text string) error
}

// TelegramNotifier доставляет уведомления организаторам через Telegram.
// Ошибки доставки логируются и не возвращаются: подписка к этому моменту
// уже зафиксирована
type TelegramNotifier struct {
	bot TelegramSender
}

// NewTelegramNotifier создает новый Telegram-нотификатор
func NewTelegramNotifier(bot TelegramSender) *TelegramNotifier {
	return &TelegramNotifier{bot: bot}
}

// NotifySubscription отправляет организатору уведомление о новой подписке
func (t *TelegramNotifier) NotifySubscription(n *SubscriptionNotification) {
	if t.bot == nil {
		return
	}
	if n.OwnerTelegramID == "" {
		logrus.Debugf("У организатора встречи %d не привязан Telegram, уведомление пропущено", n.MeetupID)
		return
	}

	message := FormatSubscriptionMessage(n)

	if err := t.bot.SendMessage(n.OwnerTelegramID, message); err != nil {
		logrus.Errorf("Ошибка при отправке Telegram уведомления организатору встречи %d: %v", n.MeetupID, err)
		return
	}

	logrus.Infof("Отправлено уведомление о подписке: Meetup=%d, Subscriber=%d", n.MeetupID, n.SubscriberID)
}

// FormatSubscriptionMessage форматирует текст уведомления о новой подписке
func FormatSubscriptionMessage(n *SubscriptionNotification) string {
	return fmt.Sprintf(
		"🎉 Новая подписка на вашу встречу!\n\n"+
			"Встреча: %s\n"+
			"Дата: %s\n"+
			"Подписчик: %s (%s)\n"+
			"Дата подписки: %s\n"+
			"Всего подписчиков: %d",
		n.MeetupTitle,
		n.MeetupDate.Format("02.01.2006 в 15:04"),
		n.SubscriberName,
		n.SubscriberEmail,
		n.SubscribedAt.Format("02.01.2006 в 15:04"),
		n.SubscriberCount,
	)
}
