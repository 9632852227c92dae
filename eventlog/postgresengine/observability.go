package postgresengine

import (
	"context"
	"math"
	"time"
)

const (
	spanAppend    = "eventlog.append"
	spanListSince = "eventlog.list_since"

	spanAttrEventType = "event_type"
	spanAttrOperation = "operation"

	statusSuccess  = "success"
	statusError    = "error"
	statusConflict = "conflict"

	metricAppendDuration = "eventlog_append_duration_seconds"
	metricQueryDuration  = "eventlog_query_duration_seconds"
	metricErrors         = "eventlog_errors_total"
	metricConflicts      = "eventlog_idempotency_conflicts_total"
)

// logQueryWithDuration logs SQL queries with execution time at debug level if a logger is configured.
func (s *Store) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery)
		return
	}

	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (s *Store) logOperation(ctx context.Context, action string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
		return
	}

	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}
}

// logError logs error information at the error level if a logger is configured.
func (s *Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
		return
	}

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s *Store) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordDurationMetrics records operation duration if the metrics collector is configured.
func (s *Store) recordDurationMetrics(metricName string, duration time.Duration, operation string) {
	if s.metricsCollector != nil {
		s.metricsCollector.RecordDuration(metricName, duration, map[string]string{
			spanAttrOperation: operation,
			"status":          statusSuccess,
		})
	}
}

// recordErrorMetrics records error counters if the metrics collector is configured.
func (s *Store) recordErrorMetrics(operation string) {
	if s.metricsCollector != nil {
		s.metricsCollector.IncrementCounter(metricErrors, map[string]string{
			spanAttrOperation: operation,
			"status":          statusError,
		})
	}
}

// recordConflictMetrics records idempotency conflict counters if the metrics collector is configured.
func (s *Store) recordConflictMetrics(operation string) {
	if s.metricsCollector != nil {
		s.metricsCollector.IncrementCounter(metricConflicts, map[string]string{
			spanAttrOperation: operation,
		})
	}
}

// startTraceSpan starts a tracing span if the tracing collector is configured.
func (s *Store) startTraceSpan(ctx context.Context, operation string, attrs map[string]string) (context.Context, SpanContext) {
	if s.tracingCollector != nil {
		return s.tracingCollector.StartSpan(ctx, operation, attrs)
	}

	return ctx, nil
}

// finishTraceSpan finishes a tracing span if the tracing collector is configured.
func (s *Store) finishTraceSpan(spanCtx SpanContext, status string) {
	if s.tracingCollector != nil && spanCtx != nil {
		s.tracingCollector.FinishSpan(spanCtx, status, nil)
	}
}
