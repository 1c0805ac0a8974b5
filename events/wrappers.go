package events

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/IBM/sarama"
	"github.com/code19m/errx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/rise-and-shine/order-inventory-platform/meta"
)

// handlerWithRecovery is a wrapper around the handler to add recovery support.
func (c *Consumer) handlerWithRecovery(next HandleFunc) HandleFunc {
	return func(ctx context.Context, msg *sarama.ConsumerMessage) (err error) {
		defer func() {
			if r := recover(); r != nil {
				stackTrace := make([]byte, 4096) // 4KB
				stackTrace = stackTrace[:runtime.Stack(stackTrace, false)]

				c.logger.
					Named("recovery").
					WithContext(ctx).
					With("stack_trace", string(stackTrace)).
					With("panic_values", fmt.Sprintf("%v", r)).
					Error("panic recovered in recovery handler")

				err = errx.New("panic recovered in recovery handler", errx.WithDetails(errx.D{
					"stack_trace":  string(stackTrace),
					"panic_values": fmt.Sprintf("%v", r),
				}))
			}
		}()
		return next(ctx, msg)
	}
}

// handlerWithMetaInjection is a wrapper around the handler to add meta injection.
func (c *Consumer) handlerWithMetaInjection(next HandleFunc) HandleFunc {
	return func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		// get from span context
		span := trace.SpanFromContext(ctx)
		traceID := span.SpanContext().TraceID().String()

		// if not found, generate a new one
		if traceID == "" {
			traceID = uuid.NewString()
		}

		metaData := map[meta.ContextKey]string{
			meta.TraceID:        traceID,
			meta.ServiceName:    meta.GetServiceName(),
			meta.ServiceVersion: meta.GetServiceVersion(),
		}

		ctx = meta.InjectMetaToContext(ctx, metaData)

		return next(ctx, msg)
	}
}

// handlerWithTimeout is a wrapper around the handler to add timeout support.
func (c *Consumer) handlerWithTimeout(next HandleFunc) HandleFunc {
	return func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		ctx, cancel := context.WithTimeout(ctx, c.cfg.HandlerTimeout)
		defer cancel()
		return next(ctx, msg)
	}
}

// handlerWithLogging is a wrapper around the handler to add logging.
func (c *Consumer) handlerWithLogging(next HandleFunc) HandleFunc {
	return func(ctx context.Context, msg *sarama.ConsumerMessage) (err error) {
		log := c.logger.Named("access_logger").WithContext(ctx)

		start := time.Now()

		err = next(ctx, msg)

		log = log.With(
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"duration", time.Since(start).String(),
		)

		logMsg := "consumed incoming kafka message"
		if err != nil {
			e := errx.AsErrorX(err)
			log.With("error", map[string]any{
				"code":    e.Code(),
				"message": e.Error(),
				"trace":   e.Trace(),
				"details": e.Details(),
			}).Error(logMsg)
			return err
		}
		log.Info(logMsg)

		return nil
	}
}

// handlerWithErrorHandling is a wrapper that normalizes handler errors.
// TODO: route repeatedly failing messages to a dead letter topic
func (c *Consumer) handlerWithErrorHandling(next HandleFunc) HandleFunc {
	return func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		// make any error as internal
		return errx.Wrap(next(ctx, msg), errx.WithType(errx.T_Internal))
	}
}
