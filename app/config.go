// Package app composes the application configuration and shared wiring
// used by the api and worker binaries.
package app

import (
	"time"

	"github.com/rise-and-shine/order-inventory-platform/cfgloader"
	"github.com/rise-and-shine/order-inventory-platform/events"
	"github.com/rise-and-shine/order-inventory-platform/logger"
	"github.com/rise-and-shine/order-inventory-platform/pg"
	"github.com/rise-and-shine/order-inventory-platform/server"
	"github.com/rise-and-shine/order-inventory-platform/service"
	"github.com/rise-and-shine/order-inventory-platform/tasks"
	"github.com/rise-and-shine/order-inventory-platform/tracing"
)

// EventsConfig groups the Kafka settings. Disable runs the application
// without a broker, dropping published events.
type EventsConfig struct {
	Disable   bool                   `yaml:"disable"   default:"false"`
	Publisher events.PublisherConfig `yaml:"publisher"`
	Consumer  events.ConsumerConfig  `yaml:"consumer"`
}

// Config is the root application configuration, loaded from
// ./config/<ENVIRONMENT>.yaml.
type Config struct {
	ServiceName    string `yaml:"service_name"    default:"order-inventory-platform"`
	ServiceVersion string `yaml:"service_version" default:"0.1.0"`

	// StaleOrderAge is how long an order may stay pending before the
	// periodic cleanup task cancels it. Default is 30 minutes.
	StaleOrderAge time.Duration `yaml:"stale_order_age" default:"30m"`

	Logger   logger.Config      `yaml:"logger"`
	Postgres pg.Config          `yaml:"postgres"`
	Server   server.Config      `yaml:"server"`
	Auth     service.AuthConfig `yaml:"auth"`
	Worker   tasks.WorkerConfig `yaml:"worker"`
	Events   EventsConfig       `yaml:"events"`
	Tracing  tracing.Config     `yaml:"tracing"`
}

// MustLoadConfig loads the configuration or exits the process.
func MustLoadConfig() Config {
	return cfgloader.MustLoad[Config]()
}
