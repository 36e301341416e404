package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSubscriberListContains тестирует проверку членства в списке
func TestSubscriberListContains(t *testing.T) {
	list := SubscriberList{1, 2, 3}

	assert.True(t, list.Contains(2))
	assert.False(t, list.Contains(5))
	assert.False(t, SubscriberList{}.Contains(1))
}

// TestSubscriberListWithSubscriber тестирует добавление без дубликатов
// и без изменения исходного списка
func TestSubscriberListWithSubscriber(t *testing.T) {
	original := SubscriberList{1, 2}

	updated := original.WithSubscriber(3)
	assert.Equal(t, SubscriberList{1, 2, 3}, updated)
	assert.Equal(t, SubscriberList{1, 2}, original)

	// Повторное добавление не создает дубликат
	same := updated.WithSubscriber(3)
	assert.Equal(t, SubscriberList{1, 2, 3}, same)
}

// TestSubscriberListWithoutSubscriber тестирует удаление первого вхождения
func TestSubscriberListWithoutSubscriber(t *testing.T) {
	original := SubscriberList{1, 2, 3}

	updated := original.WithoutSubscriber(2)
	assert.Equal(t, SubscriberList{1, 3}, updated)
	assert.Equal(t, SubscriberList{1, 2, 3}, original)

	// Удаление отсутствующего пользователя не изменяет список
	same := updated.WithoutSubscriber(5)
	assert.Equal(t, SubscriberList{1, 3}, same)
}

// TestSubscriberListScan тестирует чтение BIGINT[] из postgres
func TestSubscriberListScan(t *testing.T) {
	var list SubscriberList
	require.NoError(t, list.Scan([]byte("{1,2,3}")))
	assert.Equal(t, SubscriberList{1, 2, 3}, list)

	var empty SubscriberList
	require.NoError(t, empty.Scan(nil))
	assert.Empty(t, empty)
}
