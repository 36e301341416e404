package entity

import (
	"database/sql/driver"

	"github.com/lib/pq"
)

// SubscriberList хранится в postgres как BIGINT[] и сканируется через pq.Int64Array
type SubscriberList []int64

func (s SubscriberList) Value() (driver.Value, error) {
	return pq.Int64Array(s).Value()
}

func (s *SubscriberList) Scan(value interface{}) error {
	if value == nil {
		*s = SubscriberList{}
		return nil
	}

	var arr pq.Int64Array
	if err := arr.Scan(value); err != nil {
		return err
	}
	*s = SubscriberList(arr)
	return nil
}

// Contains проверяет членство пользователя в списке
func (s SubscriberList) Contains(userID int64) bool {
	for _, id := range s {
		if id == userID {
			return true
		}
	}
	return false
}

// WithSubscriber возвращает копию списка с добавленным пользователем.
// Исходный список не изменяется.
func (s SubscriberList) WithSubscriber(userID int64) SubscriberList {
	if s.Contains(userID) {
		return s
	}
	result := make(SubscriberList, 0, len(s)+1)
	result = append(result, s...)
	result = append(result, userID)
	return result
}

// WithoutSubscriber возвращает копию списка без первого вхождения пользователя.
// Исходный список не изменяется.
func (s SubscriberList) WithoutSubscriber(userID int64) SubscriberList {
	result := make(SubscriberList, 0, len(s))
	removed := false
	for _, id := range s {
		if id == userID && !removed {
			removed = true
			continue
		}
		result = append(result, id)
	}
	return result
}
