package transport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ds124wfegd/meetup-service/internal/entity"
	"github.com/ds124wfegd/meetup-service/internal/service"
	"github.com/gin-gonic/gin"
)

type MeetupHandler struct {
	meetupService service.MeetupService
}

func NewMeetupHandler(meetupService service.MeetupService) *MeetupHandler {
	return &MeetupHandler{meetupService: meetupService}
}

func (h *MeetupHandler) GetMeetup(c *gin.Context) {
	meetupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meetup id"})
		return
	}

	meetup, err := h.meetupService.GetMeetup(c.Request.Context(), meetupID)
	if err != nil {
		if errors.Is(err, entity.ErrMeetupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, meetup)
}
