package logger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NewRunID returns a fresh identifier for one harvest run
func NewRunID() string {
	return uuid.NewString()
}

// ForRun returns a child logger tagged with the run and profile it serves
func ForRun(l Logger, runID, secUserID string) Logger {
	return l.WithFields(map[string]interface{}{
		"run_id":      runID,
		"sec_user_id": secUserID,
	})
}

// LogRequest logs a completed catalog request
func LogRequest(l Logger, method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		l.DebugWithFields("HTTP request completed", fields)
	case statusCode >= 400 && statusCode < 500:
		l.WarnWithFields("HTTP request client error", fields)
	default:
		l.ErrorWithFields("HTTP request server error", fields)
	}
}

// LogPage logs one processed catalog page
func LogPage(l Logger, page int, cursor string, received, kept, total int, hasMore bool) {
	l.InfoWithFields("Page processed", map[string]interface{}{
		"page":     page,
		"cursor":   cursor,
		"received": received,
		"kept":     kept,
		"total":    total,
		"has_more": hasMore,
	})
}

// LogRetry logs a failed attempt that will be retried
func LogRetry(l Logger, attempt, maxAttempts int, delay time.Duration, err error) {
	l.WithError(err).WarnWithFields("Request failed, retrying", map[string]interface{}{
		"attempt":      attempt,
		"max_attempts": maxAttempts,
		"delay":        delay,
	})
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
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
