package tasks

import (
	"context"
	"time"

	"github.com/code19m/errx"
	"github.com/robfig/cron/v3"

	"github.com/rise-and-shine/order-inventory-platform/logger"
)

const scheduleTimeout = 5 * time.Second

// Scheduler enqueues recurring tasks from cron specs. It only inserts
// queue rows; the actual work still runs through the worker, so
// schedules survive process restarts and scale with worker count.
type Scheduler struct {
	cron     *cron.Cron
	enqueuer *Enqueuer
	logger   logger.Logger
}

// NewScheduler creates a scheduler that enqueues through the given enqueuer.
func NewScheduler(enqueuer *Enqueuer) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		enqueuer: enqueuer,
		logger:   logger.Named("tasks.scheduler"),
	}
}

// Register adds a recurring task. The spec uses the standard five-field
// cron format, e.g. "*/1 * * * *" for every minute.
func (s *Scheduler) Register(spec, name string, payload map[string]any) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), scheduleTimeout)
		defer cancel()

		if _, err := s.enqueuer.Enqueue(ctx, name, payload); err != nil {
			s.logger.With(
				"task_name", name,
				"error", err,
			).Error("[tasks]: scheduler failed to enqueue task")
		}
	})
	if err != nil {
		return errx.Wrap(err, errx.WithType(errx.T_Validation), errx.WithDetails(errx.D{
			"cron_spec": spec,
			"task_name": name,
		}))
	}
	return nil
}

// Start begins firing registered schedules in background goroutines.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for in-flight enqueues to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
