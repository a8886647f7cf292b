package logger

import (
	"context"
	"fmt"
	"time"
)

// LogRemoteCall logs a completed call to a remote service
func LogRemoteCall(l Logger, service string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"service":     service,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		l.DebugWithFields("remote call completed", fields)
	case statusCode == 404:
		l.DebugWithFields("remote call not found", fields)
	case statusCode >= 400 && statusCode < 500:
		l.WarnWithFields("remote call client error", fields)
	default:
		l.ErrorWithFields("remote call server error", fields)
	}
}

// LogCooldown logs a transient failure that is being waited out
func LogCooldown(l Logger, service, reason string, wait time.Duration) {
	l.WarnWithFields("transient failure, waiting before retrying", map[string]interface{}{
		"service": service,
		"reason":  reason,
		"wait":    wait,
	})
}

// LogCrawlProgress logs how much of the cursor range has been traversed
func LogCrawlProgress(l Logger, seqNum int64, percent float64, accepted int) {
	l.InfoWithFields("Progress", map[string]interface{}{
		"seq_num":    seqNum,
		"percentage": fmt.Sprintf("%.4f%%", percent),
		"accepted":   accepted,
	})
}

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, config map[string]interface{}) {
	l.WithField("component", component).InfoWithFields("Component started", config)
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
