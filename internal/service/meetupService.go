package service

import (
	"context"
	"time"

	repository "github.com/ds124wfegd/meetup-service/internal/database/postgres"
	"github.com/ds124wfegd/meetup-service/internal/entity"
)

type meetupService struct {
	meetupRepo repository.MeetupRepository
}

// NewMeetupService создает новый экземпляр MeetupService
func NewMeetupService(meetupRepo repository.MeetupRepository) MeetupService {
	return &meetupService{meetupRepo: meetupRepo}
}

// GetMeetup возвращает встречу с организатором и баннером
func (s *meetupService) GetMeetup(ctx context.Context, id int64) (*entity.MeetupWithRelations, error) {
	return s.meetupRepo.GetByID(ctx, id)
}

// GetStartingBetween возвращает встречи, начинающиеся в заданном интервале
func (s *meetupService) GetStartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Meetup, error) {
	return s.meetupRepo.GetStartingBetween(ctx, from, to)
}
