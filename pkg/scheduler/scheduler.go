package scheduler

import (
	"context"
	"time"

	"github.com/ds124wfegd/meetup-service/internal/service"
	"github.com/ds124wfegd/meetup-service/pkg/queue"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Scheduler периодически находит встречи, которые скоро начнутся,
// и публикует задачи-напоминания в очередь
type Scheduler struct {
	meetupService service.MeetupService
	taskQueue     queue.Queue
	interval      time.Duration
	reminderLead  time.Duration
}

func NewScheduler(meetupService service.MeetupService, taskQueue queue.Queue, interval, reminderLead time.Duration) *Scheduler {
	return &Scheduler{
		meetupService: meetupService,
		taskQueue:     taskQueue,
		interval:      interval,
		reminderLead:  reminderLead,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logrus.Info("Reminder scheduler started")

	for {
		select {
		case <-ticker.C:
			if err := s.dispatchReminders(ctx); err != nil {
				logrus.Errorf("Error dispatching meetup reminders: %v", err)
			}
		case <-ctx.Done():
			logrus.Info("Reminder scheduler stopped")
			return
		}
	}
}

// dispatchReminders публикует напоминания для встреч,
// начинающихся в окне [now+lead, now+lead+interval)
func (s *Scheduler) dispatchReminders(ctx context.Context) error {
	from := time.Now().Add(s.reminderLead)
	to := from.Add(s.interval)

	meetups, err := s.meetupService.GetStartingBetween(ctx, from, to)
	if err != nil {
		return err
	}

	if len(meetups) == 0 {
		return nil
	}

	tasks := make([]*queue.Task, 0, len(meetups))
	for _, meetup := range meetups {
		tasks = append(tasks, &queue.Task{
			ID:   "task_" + uuid.NewString(),
			Type: queue.TaskTypeMeetupReminder,
			Data: map[string]interface{}{
				"meetup_id": meetup.ID,
			},
			MaxRetries: 3,
			CreatedAt:  time.Now(),
		})
	}

	if err := s.taskQueue.PublishBatch(ctx, tasks); err != nil {
		return err
	}

	logrus.Infof("Scheduled %d meetup reminders", len(tasks))
	return nil
}
