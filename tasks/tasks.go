// Package tasks implements a Postgres-backed background task queue on
// top of the generic repository layer.
//
// Tasks are rows in the tasks table. Producers enqueue them with an
// Enqueuer, worker processes claim runnable rows one at a time with a
// locked update (SKIP LOCKED under Postgres, so concurrent workers
// never fight over a row) and dispatch them to registered handlers.
// Failed tasks are retried with an attempt cap, and a Scheduler can
// enqueue recurring tasks from cron specs.
package tasks

import (
	"context"

	"github.com/spf13/cast"
)

// Well-known task names.
const (
	TaskSendWelcomeEmail  = "send_welcome_email"
	TaskCancelStaleOrders = "cancel_stale_orders"
)

// HandlerFunc processes a single task payload.
type HandlerFunc func(ctx context.Context, payload map[string]any) error

// PayloadString reads a string field from a task payload.
func PayloadString(payload map[string]any, key string) string {
	return cast.ToString(payload[key])
}

// PayloadInt64 reads an integer field from a task payload. JSON numbers
// decode as float64, cast normalizes them back.
func PayloadInt64(payload map[string]any, key string) int64 {
	return cast.ToInt64(payload[key])
}
