package transport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ds124wfegd/meetup-service/internal/entity"
	"github.com/ds124wfegd/meetup-service/internal/service"
	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// SuccessResponse представляет успешный ответ
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// Join подписывает текущего пользователя на встречу
func (h *SubscriptionHandler) Join(c *gin.Context) {
	meetupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meetup id"})
		return
	}

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	summary, err := h.subscriptionService.Join(c.Request.Context(), meetupID, userID)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "Subscribed successfully",
		Data:    summary,
	})
}

// Leave отписывает текущего пользователя от встречи
func (h *SubscriptionHandler) Leave(c *gin.Context) {
	meetupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meetup id"})
		return
	}

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	if err := h.subscriptionService.Leave(c.Request.Context(), meetupID, userID); err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Unsubscribed successfully",
	})
}

// ListMySubscriptions возвращает предстоящие встречи текущего пользователя
func (h *SubscriptionHandler) ListMySubscriptions(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	meetups, err := h.subscriptionService.ListMySubscriptions(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Error:   "Failed to get subscriptions: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Subscriptions retrieved successfully",
		Data:    meetups,
		Meta: map[string]interface{}{
			"total": len(meetups),
		},
	})
}

// respondWithError преобразует доменные ошибки в HTTP статусы
func (h *SubscriptionHandler) respondWithError(c *gin.Context, err error) {
	var conflictErr *entity.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   conflictErr.Error(),
			Details: map[string]interface{}{
				"conflicting_meetup_id":    conflictErr.Conflict.ID,
				"conflicting_meetup_title": conflictErr.Conflict.Title,
				"conflicting_meetup_date":  conflictErr.Conflict.Date,
			},
		})
		return
	}

	switch {
	case errors.Is(err, entity.ErrMeetupNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Success: false,
			Error:   err.Error(),
		})
	case errors.Is(err, entity.ErrMeetupFinished),
		errors.Is(err, entity.ErrOwnerCantJoin),
		errors.Is(err, entity.ErrAlreadyJoined),
		errors.Is(err, entity.ErrNotSubscribed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Error:   "Internal server error: " + err.Error(),
		})
	}
}

// requesterID извлекает ID пользователя из заголовка X-User-ID.
// Аутентификация выполняется внешним шлюзом
func requesterID(c *gin.Context) (int64, bool) {
	userIDStr := c.GetHeader("X-User-ID")
	if userIDStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-ID header"})
		return 0, false
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid X-User-ID header"})
		return 0, false
	}

	return userID, true
}
