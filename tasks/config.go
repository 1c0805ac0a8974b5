package tasks

import "time"

const (
	defaultConcurrency    = 1
	defaultPollInterval   = time.Second
	defaultProcessTimeout = 30 * time.Second
	defaultRetryDelay     = 30 * time.Second
	defaultStuckTimeout   = 5 * time.Minute
	defaultMaxAttempts    = 3

	shutdownTimeout = 10 * time.Second
)

// WorkerConfig holds configuration for the task worker.
type WorkerConfig struct {
	// Concurrency is the number of claim loops run in parallel. Default is 1.
	Concurrency int `yaml:"concurrency" default:"1"`

	// PollInterval is how long an idle loop sleeps before looking for
	// runnable tasks again. Default is 1 second.
	PollInterval time.Duration `yaml:"poll_interval" default:"1s"`

	// ProcessTimeout bounds a single handler invocation. Default is 30 seconds.
	ProcessTimeout time.Duration `yaml:"process_timeout" default:"30s"`

	// RetryDelay is how far into the future a failed task is rescheduled.
	// Default is 30 seconds.
	RetryDelay time.Duration `yaml:"retry_delay" default:"30s"`

	// StuckTimeout is how long a task may stay in the running state
	// before it is considered abandoned and requeued. Default is 5 minutes.
	StuckTimeout time.Duration `yaml:"stuck_timeout" default:"5m"`
}

func (c *WorkerConfig) setDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.ProcessTimeout <= 0 {
		c.ProcessTimeout = defaultProcessTimeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
	if c.StuckTimeout <= 0 {
		c.StuckTimeout = defaultStuckTimeout
	}
}
