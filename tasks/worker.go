package tasks

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/code19m/errx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/rise-and-shine/order-inventory-platform/logger"
	"github.com/rise-and-shine/order-inventory-platform/meta"
	"github.com/rise-and-shine/order-inventory-platform/models"
	"github.com/rise-and-shine/order-inventory-platform/repo"
	"github.com/rise-and-shine/order-inventory-platform/repos"
)

// Error codes returned by the worker.
const (
	CodeTaskNotRegistered = "TASK_NOT_REGISTERED"
)

// Worker claims runnable tasks and dispatches them to registered
// handlers. Claims go through a locked single-row update, so any
// number of worker processes can poll the same table safely.
type Worker struct {
	cfg   WorkerConfig
	tasks *repos.Tasks

	handlers map[string]HandlerFunc
	mu       sync.RWMutex

	stopCh    chan struct{}
	stoppedCh chan struct{}

	logger logger.Logger
}

// NewWorker creates a new Worker instance.
func NewWorker(cfg WorkerConfig, tasks *repos.Tasks) *Worker {
	cfg.setDefaults()

	return &Worker{
		cfg:       cfg,
		tasks:     tasks,
		handlers:  make(map[string]HandlerFunc),
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
		logger:    logger.Named("tasks.worker"),
	}
}

// RegisterHandler registers a handler for the given task name.
// Claimed tasks without a registered handler fail permanently.
func (w *Worker) RegisterHandler(name string, fn HandlerFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.handlers[name] = fn
}

// Start begins the worker loops and the stuck-task sweeper.
// Blocks until Stop is called or the context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	var wg sync.WaitGroup

	for range w.cfg.Concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.workerLoop(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.sweeperLoop(ctx)
	}()

	wg.Wait()
	close(w.stoppedCh)
	return nil
}

// Stop gracefully shuts down the worker.
func (w *Worker) Stop() error {
	close(w.stopCh)

	select {
	case <-w.stoppedCh:
		return nil
	case <-time.After(shutdownTimeout):
		return errx.New("[tasks]: worker shutdown timeout exceeded")
	}
}

func (w *Worker) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		default:
			claimed, err := w.claimTask(ctx)
			if err != nil {
				w.logger.With("error", err).Error("[tasks]: worker failed to claim a task")
				w.sleep(ctx, w.cfg.PollInterval)
				continue
			}

			if claimed == nil {
				w.sleep(ctx, w.cfg.PollInterval)
				continue
			}

			// ignore error, since it's handled in the process chain
			chain := w.buildProcessChain()
			_ = chain(ctx, claimed)
		}
	}
}

// sweeperLoop periodically requeues tasks abandoned in the running
// state, e.g. after a worker crash.
func (w *Worker) sweeperLoop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.StuckTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			count, err := w.requeueStuck(ctx)
			if err != nil {
				w.logger.With("error", err).Error("[tasks]: failed to requeue stuck tasks")
				continue
			}
			if count > 0 {
				w.logger.With("count", count).Warn("[tasks]: requeued stuck tasks")
			}
		}
	}
}

// claimTask atomically moves one runnable task to the running state
// and returns it. Returns (nil, nil) when nothing is runnable.
func (w *Worker) claimTask(ctx context.Context) (*models.Task, error) {
	return w.tasks.UpdateOne(ctx,
		repo.Where(
			repo.Eq("status", models.TaskStatusPending),
			repo.Lte("run_at", time.Now()),
		),
		repo.Set("status", models.TaskStatusRunning).Add("attempts", 1),
		repo.WithSkipLocked(),
	)
}

func (w *Worker) requeueStuck(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-w.cfg.StuckTimeout)

	return w.tasks.UpdateMany(ctx,
		repo.Where(
			repo.Eq("status", models.TaskStatusRunning),
			repo.Lte("updated_at", cutoff),
		),
		repo.Set("status", models.TaskStatusPending),
	)
}

type processFunc func(context.Context, *models.Task) error

func (w *Worker) processTask(ctx context.Context, task *models.Task) error {
	w.mu.RLock()
	handler, exists := w.handlers[task.Name]
	w.mu.RUnlock()

	if !exists {
		err := errx.New("[tasks]: task not registered",
			errx.WithCode(CodeTaskNotRegistered),
			errx.WithDetails(errx.D{"task_name": task.Name}))
		return w.finalize(ctx, task, err)
	}

	err := handler(ctx, task.Payload)
	return w.finalize(ctx, task, err)
}

// finalize records the task outcome: success, a scheduled retry, or a
// permanent failure once the attempt cap is reached.
func (w *Worker) finalize(ctx context.Context, task *models.Task, taskErr error) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.cfg.ProcessTimeout)
	defer cancel()

	var changes repo.Changes

	switch {
	case taskErr == nil:
		changes = repo.Set("status", models.TaskStatusSucceeded).Set("last_error", "")

	case task.Attempts >= task.MaxAttempts:
		changes = repo.
			Set("status", models.TaskStatusFailed).
			Set("last_error", taskErr.Error())

	default:
		changes = repo.
			Set("status", models.TaskStatusPending).
			Set("run_at", time.Now().Add(w.cfg.RetryDelay)).
			Set("last_error", taskErr.Error())
	}

	if _, err := w.tasks.UpdateMany(ctx, repo.Where(repo.Eq("id", task.ID)), changes); err != nil {
		w.logger.With(
			"task_id", task.ID,
			"task_name", task.Name,
		).Error("[tasks]: worker failed to record task outcome: " + err.Error())
	}

	return taskErr
}

func (w *Worker) buildProcessChain() processFunc {
	p := w.processTask

	// build the chain in reverse order (last wrapper execute first)
	p = w.processWithLogging(p)       // 4. logging
	p = w.processWithTimeout(p)       // 3. timeout
	p = w.processWithMetaInjection(p) // 2. meta injection
	p = w.processWithRecovery(p)      // 1. recovery (outermost)

	return p
}

func (w *Worker) processWithRecovery(next processFunc) processFunc {
	return func(ctx context.Context, task *models.Task) (err error) {
		defer func() {
			if r := recover(); r != nil {
				stackTrace := make([]byte, 4096) // 4KB
				stackTrace = stackTrace[:runtime.Stack(stackTrace, false)]

				w.logger.
					Named("recovery").
					WithContext(ctx).
					With("stack_trace", string(stackTrace)).
					With("panic_values", fmt.Sprintf("%v", r)).
					Error("panic recovered in task handler")

				err = errx.New("panic recovered in task handler", errx.WithDetails(errx.D{
					"stack_trace":  string(stackTrace),
					"panic_values": fmt.Sprintf("%v", r),
				}))

				err = w.finalize(ctx, task, err)
			}
		}()
		return next(ctx, task)
	}
}

func (w *Worker) processWithMetaInjection(next processFunc) processFunc {
	return func(ctx context.Context, task *models.Task) error {
		span := trace.SpanFromContext(ctx)
		traceID := span.SpanContext().TraceID().String()

		if traceID == "" {
			traceID = uuid.NewString()
		}

		metaData := map[meta.ContextKey]string{
			meta.TraceID:        traceID,
			meta.ServiceName:    meta.GetServiceName(),
			meta.ServiceVersion: meta.GetServiceVersion(),
		}

		ctx = meta.InjectMetaToContext(ctx, metaData)

		return next(ctx, task)
	}
}

func (w *Worker) processWithTimeout(next processFunc) processFunc {
	return func(ctx context.Context, task *models.Task) error {
		ctx, cancel := context.WithTimeout(ctx, w.cfg.ProcessTimeout)
		defer cancel()
		return next(ctx, task)
	}
}

func (w *Worker) processWithLogging(next processFunc) processFunc {
	return func(ctx context.Context, task *models.Task) (err error) {
		log := w.logger.Named("access_logger").WithContext(ctx)

		start := time.Now()

		err = next(ctx, task)

		log = log.With(
			"task_id", task.ID,
			"task_name", task.Name,
			"attempt", task.Attempts,
			"max_attempts", task.MaxAttempts,
			"duration", time.Since(start).Round(time.Microsecond),
		)

		logMsg := "processed background task"
		if err != nil {
			log.With("error", err.Error()).Error(logMsg)
			return err
		}
		log.Info(logMsg)

		return nil
	}
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-w.stopCh:
	case <-time.After(d):
	}
}
