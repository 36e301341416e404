package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ds124wfegd/meetup-service/internal/entity"
	"github.com/ds124wfegd/meetup-service/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSubscriptionService возвращает заранее заданные результаты
type fakeSubscriptionService struct {
	joinSummary *service.MeetupSummary
	joinErr     error
	leaveErr    error
	list        []*entity.MeetupWithRelations
	listErr     error
}

func (f *fakeSubscriptionService) Join(ctx context.Context, meetupID, userID int64) (*service.MeetupSummary, error) {
	return f.joinSummary, f.joinErr
}

func (f *fakeSubscriptionService) Leave(ctx context.Context, meetupID, userID int64) error {
	return f.leaveErr
}

func (f *fakeSubscriptionService) ListMySubscriptions(ctx context.Context, userID int64) ([]*entity.MeetupWithRelations, error) {
	return f.list, f.listErr
}

func newTestRouter(svc service.SubscriptionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := NewSubscriptionHandler(svc)
	router.POST("/api/v1/meetups/:id/subscribe", handler.Join)
	router.DELETE("/api/v1/meetups/:id/subscribe", handler.Leave)
	router.GET("/api/v1/subscriptions", handler.ListMySubscriptions)

	return router
}

func doRequest(router *gin.Engine, method, path, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestJoinHandler тестирует HTTP статусы подписки
func TestJoinHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		userID     string
		joinErr    error
		wantStatus int
	}{
		{
			name:       "successful join",
			path:       "/api/v1/meetups/1/subscribe",
			userID:     "1",
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid meetup id",
			path:       "/api/v1/meetups/abc/subscribe",
			userID:     "1",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing user header",
			path:       "/api/v1/meetups/1/subscribe",
			userID:     "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown meetup",
			path:       "/api/v1/meetups/99/subscribe",
			userID:     "1",
			joinErr:    entity.ErrMeetupNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "finished meetup",
			path:       "/api/v1/meetups/1/subscribe",
			userID:     "1",
			joinErr:    entity.ErrMeetupFinished,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "owner subscription",
			path:       "/api/v1/meetups/1/subscribe",
			userID:     "1",
			joinErr:    entity.ErrOwnerCantJoin,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate subscription",
			path:       "/api/v1/meetups/1/subscribe",
			userID:     "1",
			joinErr:    entity.ErrAlreadyJoined,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "infrastructure failure",
			path:       "/api/v1/meetups/1/subscribe",
			userID:     "1",
			joinErr:    assert.AnError,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeSubscriptionService{
				joinSummary: &service.MeetupSummary{Title: "Go Meetup"},
				joinErr:     tt.joinErr,
			}
			router := newTestRouter(svc)

			w := doRequest(router, http.MethodPost, tt.path, tt.userID)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

// TestJoinHandlerConflict тестирует ответ с конфликтующей встречей
func TestJoinHandlerConflict(t *testing.T) {
	conflict := &entity.Meetup{
		ID:    7,
		Title: "Rust Meetup",
		Date:  time.Date(2026, 6, 1, 11, 30, 0, 0, time.UTC),
	}
	svc := &fakeSubscriptionService{joinErr: &entity.ConflictError{Conflict: conflict}}
	router := newTestRouter(svc)

	w := doRequest(router, http.MethodPost, "/api/v1/meetups/1/subscribe", "1")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "you are already subscribed to a meetup at the same time", resp.Error)

	details, ok := resp.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(7), details["conflicting_meetup_id"])
	assert.Equal(t, "Rust Meetup", details["conflicting_meetup_title"])
}

// TestLeaveHandler тестирует HTTP статусы отписки
func TestLeaveHandler(t *testing.T) {
	tests := []struct {
		name       string
		leaveErr   error
		wantStatus int
	}{
		{
			name:       "successful leave",
			wantStatus: http.StatusOK,
		},
		{
			name:       "non-member",
			leaveErr:   entity.ErrNotSubscribed,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown meetup",
			leaveErr:   entity.ErrMeetupNotFound,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeSubscriptionService{leaveErr: tt.leaveErr})

			w := doRequest(router, http.MethodDelete, "/api/v1/meetups/1/subscribe", "1")
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

// TestListMySubscriptionsHandler тестирует выдачу подписок пользователя
func TestListMySubscriptionsHandler(t *testing.T) {
	svc := &fakeSubscriptionService{
		list: []*entity.MeetupWithRelations{
			{Meetup: entity.Meetup{ID: 1, Title: "Go Meetup"}},
		},
	}
	router := newTestRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/v1/subscriptions", "1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	meta, ok := resp.Meta.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), meta["total"])
}
