// The worker binary runs the background task queue, the cron scheduler
// and, when a broker is configured, the domain event consumer.
package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/IBM/sarama"
	"github.com/code19m/errx"

	"github.com/rise-and-shine/order-inventory-platform/app"
	"github.com/rise-and-shine/order-inventory-platform/events"
	"github.com/rise-and-shine/order-inventory-platform/logger"
	"github.com/rise-and-shine/order-inventory-platform/tasks"
)

// cancel_stale_orders runs every minute.
const staleOrdersCronSpec = "*/1 * * * *"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := app.MustLoadConfig()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatalx(err)
	}
	defer a.Close()

	worker := tasks.NewWorker(cfg.Worker, a.Tasks)
	worker.RegisterHandler(tasks.TaskSendWelcomeEmail, sendWelcomeEmail(a))
	worker.RegisterHandler(tasks.TaskCancelStaleOrders, cancelStaleOrders(a))

	scheduler := tasks.NewScheduler(a.Enqueuer)
	if err = scheduler.Register(staleOrdersCronSpec, tasks.TaskCancelStaleOrders, nil); err != nil {
		logger.Fatalx(err)
	}
	scheduler.Start()

	var consumer *events.Consumer
	if !cfg.Events.Disable {
		consumer, err = events.NewConsumer(cfg.Events.Consumer, logDomainEvent)
		if err != nil {
			logger.Fatalx(err)
		}
		go func() {
			if consumeErr := consumer.Start(); consumeErr != nil {
				logger.Errorx(consumeErr)
			}
		}()
	}

	go func() {
		if startErr := worker.Start(ctx); startErr != nil {
			logger.Errorx(startErr)
		}
	}()
	logger.Infof("worker started with concurrency %d", cfg.Worker.Concurrency)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	scheduler.Stop()
	if consumer != nil {
		if err = consumer.Stop(); err != nil {
			logger.Errorx(err)
		}
	}
	if err = worker.Stop(); err != nil {
		logger.Errorx(err)
	}
	logger.Info("worker stopped")
}

// sendWelcomeEmail pretends to deliver the welcome email. There is no
// mail provider wired in, so it resolves the user and logs the send.
func sendWelcomeEmail(a *app.App) tasks.HandlerFunc {
	return func(ctx context.Context, payload map[string]any) error {
		userID := tasks.PayloadInt64(payload, "user_id")

		user, err := a.UserService.GetUser(ctx, userID)
		if err != nil {
			return errx.Wrap(err)
		}

		logger.Named("tasks").WithContext(ctx).
			With("user_id", user.ID, "email", user.Email).
			Info("welcome email sent")
		return nil
	}
}

func cancelStaleOrders(a *app.App) tasks.HandlerFunc {
	return func(ctx context.Context, _ map[string]any) error {
		_, err := a.OrderService.CancelStaleOrders(ctx, a.Config.StaleOrderAge)
		return errx.Wrap(err)
	}
}

// logDomainEvent is the consumer handler. The platform currently has no
// cross-service subscribers, so consumed events are only logged.
func logDomainEvent(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var envelope events.Envelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		return errx.Wrap(err, errx.WithType(errx.T_Validation))
	}

	logger.Named("events").WithContext(ctx).
		With(
			"event_id", envelope.ID,
			"event_name", envelope.Name,
			"occurred_at", envelope.OccurredAt,
		).
		Info("domain event received")
	return nil
}
