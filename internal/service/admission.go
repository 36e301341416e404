package service

import (
	"time"

	"github.com/ds124wfegd/meetup-service/internal/entity"
)

// CheckJoin проверяет допустимость подписки на встречу по загруженному
// снапшоту. Порядок проверок фиксирован: первая сработавшая определяет
// ответ пользователю.
func CheckJoin(meetup *entity.Meetup, userID int64) error {
	if meetup == nil {
		return entity.ErrMeetupNotFound
	}
	if meetup.IsPast() {
		return entity.ErrMeetupFinished
	}
	if meetup.IsOwner(userID) {
		return entity.ErrOwnerCantJoin
	}
	if meetup.IsSubscribed(userID) {
		return entity.ErrAlreadyJoined
	}
	return nil
}

// CheckLeave проверяет допустимость отписки от встречи
func CheckLeave(meetup *entity.Meetup, userID int64) error {
	if meetup == nil {
		return entity.ErrMeetupNotFound
	}
	if meetup.IsPast() {
		return entity.ErrMeetupFinished
	}
	if !meetup.IsSubscribed(userID) {
		return entity.ErrNotSubscribed
	}
	return nil
}

// ConflictWindow вычисляет окно поиска конфликтующих подписок: дата
// кандидата усекается до начала часа, правая граница отстоит на минимальный
// интервал между встречами. Усечение нормализует проверку: встречи,
// начинающиеся в разные минуты одного часа, попадают в одно окно.
func ConflictWindow(candidateStart time.Time, minSeparation time.Duration) (time.Time, time.Time) {
	windowStart := candidateStart.Truncate(time.Hour)
	return windowStart, windowStart.Add(minSeparation)
}
