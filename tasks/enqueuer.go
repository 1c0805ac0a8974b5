package tasks

import (
	"context"
	"time"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/order-inventory-platform/models"
	"github.com/rise-and-shine/order-inventory-platform/repos"
)

// EnqueueOption customizes a single enqueued task.
type EnqueueOption func(*models.Task)

// WithRunAt schedules the task to become runnable at the given time
// instead of immediately.
func WithRunAt(at time.Time) EnqueueOption {
	return func(t *models.Task) {
		t.RunAt = at
	}
}

// WithMaxAttempts overrides the default attempt cap for the task.
func WithMaxAttempts(n int) EnqueueOption {
	return func(t *models.Task) {
		t.MaxAttempts = n
	}
}

// Enqueuer inserts tasks into the queue.
type Enqueuer struct {
	tasks *repos.Tasks
}

// NewEnqueuer creates an enqueuer backed by the given task repository.
func NewEnqueuer(tasks *repos.Tasks) *Enqueuer {
	return &Enqueuer{tasks: tasks}
}

// Enqueue inserts a pending task. By default the task is runnable
// immediately with the standard attempt cap.
func (e *Enqueuer) Enqueue(
	ctx context.Context,
	name string,
	payload map[string]any,
	opts ...EnqueueOption,
) (*models.Task, error) {
	if name == "" {
		return nil, errx.New("task name is empty", errx.WithType(errx.T_Validation))
	}

	task := &models.Task{
		Name:        name,
		Payload:     payload,
		Status:      models.TaskStatusPending,
		RunAt:       time.Now(),
		MaxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(task)
	}

	created, err := e.tasks.Create(ctx, task)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"task_name": name}))
	}
	return created, nil
}
