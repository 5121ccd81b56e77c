package logger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// RunIDKey is the context key for the pipeline run ID
	RunIDKey contextKey = "run_id"
	// StepKey is the context key for the pipeline step name
	StepKey contextKey = "step"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, returns a no-op logger if not found
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// StartRun assigns a fresh run ID to the context and returns the enriched logger
func StartRun(ctx context.Context, logger *zap.Logger) (context.Context, *zap.Logger) {
	return WithRunID(ctx, logger, uuid.NewString())
}

// WithRunID adds a run ID to context and returns the enriched logger
func WithRunID(ctx context.Context, logger *zap.Logger, runID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RunIDKey, runID)
	enriched := logger.With(zap.String("run_id", runID))
	return WithContext(ctx, enriched), enriched
}

// WithStep adds the pipeline step name to context and returns the enriched logger
func WithStep(ctx context.Context, step string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, StepKey, step)
	enriched := FromContext(ctx).With(zap.String("step", step))
	return WithContext(ctx, enriched), enriched
}

// GetRunID retrieves the run ID from context
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// GetStep retrieves the step name from context
func GetStep(ctx context.Context) string {
	if step, ok := ctx.Value(StepKey).(string); ok {
		return step
	}
	return ""
}
