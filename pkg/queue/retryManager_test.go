package queue

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestShouldRetry тестирует решение о повторе задачи
func TestShouldRetry(t *testing.T) {
	manager := NewRetryManager(3, time.Second)

	tests := []struct {
		name      string
		attempts  int
		err       error
		wantRetry bool
	}{
		{
			name:      "transient error is retried",
			attempts:  1,
			err:       errors.New("connection refused"),
			wantRetry: true,
		},
		{
			name:      "exhausted attempts are not retried",
			attempts:  3,
			err:       errors.New("connection refused"),
			wantRetry: false,
		},
		{
			name:      "missing meetup is not retried",
			attempts:  1,
			err:       errors.New("meetup does not exist"),
			wantRetry: false,
		},
		{
			name:      "duplicate subscription is not retried",
			attempts:  1,
			err:       errors.New("already subscribed"),
			wantRetry: false,
		},
		{
			name:      "invalid task data is not retried",
			attempts:  1,
			err:       errors.New("invalid meetup_id"),
			wantRetry: false,
		},
		{
			name:      "nil error is not retried",
			attempts:  1,
			err:       nil,
			wantRetry: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{Attempts: tt.attempts, MaxRetries: 3}

			retry, delay := manager.ShouldRetry(task, tt.err)
			assert.Equal(t, tt.wantRetry, retry)
			if retry {
				assert.Greater(t, delay, time.Duration(0))
			}
		})
	}
}

// TestCalculateBackoff тестирует экспоненциальную задержку с ограничением
func TestCalculateBackoff(t *testing.T) {
	manager := NewRetryManager(10, time.Second)

	// Задержка растет с номером попытки, но не превышает максимум
	for attempt := 1; attempt <= 10; attempt++ {
		delay := manager.calculateBackoff(attempt)
		assert.Greater(t, delay, time.Duration(0), "attempt %d", attempt)
		assert.LessOrEqual(t, delay, 16*time.Second, "attempt %d", attempt)
	}

	assert.Equal(t, time.Second, manager.calculateBackoff(0))
}
