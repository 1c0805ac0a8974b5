package events

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/rise-and-shine/order-inventory-platform/logger"
)

var _ watermill.LoggerAdapter = (*loggerAdapter)(nil)

// loggerAdapter is to adapt zap sugared logger to watermill Logger.
type loggerAdapter struct {
	base logger.Logger
}

func newLoggerAdapter(logger logger.Logger) *loggerAdapter {
	return &loggerAdapter{
		base: logger,
	}
}

func (l *loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	log := l.withFields(fields)
	log.With("error", err).Error(msg)
}

func (l *loggerAdapter) Info(msg string, fields watermill.LogFields) {
	log := l.withFields(fields)
	log.Info(msg)
}

func (l *loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	log := l.withFields(fields)
	log.Debug(msg)
}

func (l *loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	log := l.withFields(fields)
	log.Debug(msg)
}

func (l *loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	log := l.withFields(fields)
	return &loggerAdapter{
		base: log,
	}
}

func (l *loggerAdapter) withFields(fields watermill.LogFields) logger.Logger {
	log := l.base
	for k, v := range fields {
		log = log.With(k, v)
	}
	return log
}
