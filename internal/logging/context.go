// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Context keys for logging.
type contextKey string

const (
	// correlationIDKey is the context key for correlation IDs.
	correlationIDKey contextKey = "correlation_id"

	// requestIDKey is the context key for HTTP request IDs.
	requestIDKey contextKey = "request_id"

	// loggerKey is the context key for storing a logger instance.
	loggerKey contextKey = "logger"

	// setIDKey is the context key for the online beatmap set id a
	// scan/sync/import operation is currently working on.
	setIDKey contextKey = "set_id"

	// hashKey is the context key for the content hash a store/scanner
	// operation is currently working on.
	hashKey contextKey = "hash"

	// phaseKey is the context key for the sync engine's current phase
	// (see sync.Phase), so every log line emitted while that phase is
	// active can be attributed to it without threading a parameter
	// through every call site.
	phaseKey contextKey = "phase"
)

// GenerateCorrelationID creates a new unique correlation ID.
// Returns the first 8 characters of a UUID for readability.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// GenerateRequestID creates a new unique request ID.
// Returns a full UUID for uniqueness across distributed systems.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithCorrelationID returns a new context with the given correlation ID.
//
//	ctx = logging.ContextWithCorrelationID(ctx, logging.GenerateCorrelationID())
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// ContextWithNewCorrelationID returns a context with a newly generated correlation ID.
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

// CorrelationIDFromContext retrieves the correlation ID from context.
// Returns empty string if not present.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID returns a new context with the given request ID.
//
//	ctx = logging.ContextWithRequestID(ctx, requestID)
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ContextWithNewRequestID returns a context with a newly generated request ID.
func ContextWithNewRequestID(ctx context.Context) context.Context {
	return ContextWithRequestID(ctx, GenerateRequestID())
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithSetID returns a context carrying setID, the online beatmap
// set id a scan/sync/import operation is currently handling.
//
//	ctx = logging.ContextWithSetID(ctx, set.OnlineSetID)
func ContextWithSetID(ctx context.Context, setID int32) context.Context {
	return context.WithValue(ctx, setIDKey, setID)
}

// SetIDFromContext retrieves the set id stored by ContextWithSetID. ok is
// false if no set id is present (e.g. the set has none, or the context
// was never tagged).
func SetIDFromContext(ctx context.Context) (id int32, ok bool) {
	id, ok = ctx.Value(setIDKey).(int32)
	return id, ok
}

// ContextWithHash returns a context carrying hash, the content-addressed
// store hash a read/write/verify operation is currently handling.
func ContextWithHash(ctx context.Context, hash string) context.Context {
	return context.WithValue(ctx, hashKey, hash)
}

// HashFromContext retrieves the hash stored by ContextWithHash. Returns
// empty string if not present.
func HashFromContext(ctx context.Context) string {
	if h, ok := ctx.Value(hashKey).(string); ok {
		return h
	}
	return ""
}

// ContextWithPhase returns a context carrying phase, the sync engine's
// current state-machine phase.
func ContextWithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, phaseKey, phase)
}

// PhaseFromContext retrieves the phase stored by ContextWithPhase.
// Returns empty string if not present.
func PhaseFromContext(ctx context.Context) string {
	if p, ok := ctx.Value(phaseKey).(string); ok {
		return p
	}
	return ""
}

// ContextWithLogger stores a logger in the context.
// This is useful for passing pre-configured loggers through middleware.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext retrieves a logger from context.
// Returns the global logger if no logger is stored in context.
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return logger
	}
	return Logger()
}

// Ctx returns a logger with context values (correlation_id, request_id) automatically added.
// This is the recommended way to log with context in handlers and services.
//
//	logging.Ctx(ctx).Info().Msg("Processing request")
//	// Output: {"level":"info","correlation_id":"abc12345","request_id":"uuid","message":"Processing request"}
func Ctx(ctx context.Context) *zerolog.Logger {
	// Check if a logger is stored in context
	logger := LoggerFromContext(ctx)

	// Create a new logger with context fields
	contextLogger := logger.With().Logger()

	// Add correlation ID if present
	if correlationID := CorrelationIDFromContext(ctx); correlationID != "" {
		contextLogger = contextLogger.With().Str("correlation_id", correlationID).Logger()
	}

	// Add request ID if present
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		contextLogger = contextLogger.With().Str("request_id", requestID).Logger()
	}

	// Add set id if present
	if setID, ok := SetIDFromContext(ctx); ok {
		contextLogger = contextLogger.With().Int32("set_id", setID).Logger()
	}

	// Add hash if present
	if hash := HashFromContext(ctx); hash != "" {
		contextLogger = contextLogger.With().Str("hash", hash).Logger()
	}

	// Add phase if present
	if phase := PhaseFromContext(ctx); phase != "" {
		contextLogger = contextLogger.With().Str("phase", phase).Logger()
	}

	return &contextLogger
}

// CtxWith returns a logger context builder with context values pre-populated.
// Use this when you need to add additional fields beyond the standard context fields.
//
//	logger := logging.CtxWith(ctx).Str("user_id", uid).Logger()
//	logger.Info().Msg("User action")
func CtxWith(ctx context.Context) zerolog.Context {
	logger := LoggerFromContext(ctx)
	logCtx := logger.With()

	// Add correlation ID if present
	if correlationID := CorrelationIDFromContext(ctx); correlationID != "" {
		logCtx = logCtx.Str("correlation_id", correlationID)
	}

	// Add request ID if present
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		logCtx = logCtx.Str("request_id", requestID)
	}

	// Add set id if present
	if setID, ok := SetIDFromContext(ctx); ok {
		logCtx = logCtx.Int32("set_id", setID)
	}

	// Add hash if present
	if hash := HashFromContext(ctx); hash != "" {
		logCtx = logCtx.Str("hash", hash)
	}

	// Add phase if present
	if phase := PhaseFromContext(ctx); phase != "" {
		logCtx = logCtx.Str("phase", phase)
	}

	return logCtx
}

// CtxDebug starts a debug level message with context fields.
// Shorthand for Ctx(ctx).Debug().
func CtxDebug(ctx context.Context) *zerolog.Event {
	return Ctx(ctx).Debug()
}

// CtxInfo starts an info level message with context fields.
// Shorthand for Ctx(ctx).Info().
func CtxInfo(ctx context.Context) *zerolog.Event {
	return Ctx(ctx).Info()
}

// CtxWarn starts a warn level message with context fields.
// Shorthand for Ctx(ctx).Warn().
func CtxWarn(ctx context.Context) *zerolog.Event {
	return Ctx(ctx).Warn()
}

// CtxError starts an error level message with context fields.
// Shorthand for Ctx(ctx).Error().
func CtxError(ctx context.Context) *zerolog.Event {
	return Ctx(ctx).Error()
}

// CtxErr starts an error level message with context fields and the error.
// Shorthand for Ctx(ctx).Err(err).
func CtxErr(ctx context.Context, err error) *zerolog.Event {
	return Ctx(ctx).Err(err)
}

// WithComponent creates a child logger with a component field.
// Use this to create component-specific loggers.
//
//	syncLogger := logging.WithComponent("sync")
//	syncLogger.Info().Msg("Sync started")
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}

// WithService creates a child logger with a service field.
// Use this to identify the service in distributed systems.
//
//	serviceLogger := logging.WithService("api")
func WithService(service string) zerolog.Logger {
	return With().Str("service", service).Logger()
}

// WithSetID creates a child logger tagged with a beatmap set's online
// id, for scan/sync/import code attributing a log line to one set.
//
//	setLogger := logging.WithSetID(set.OnlineSetID)
//	setLogger.Warn().Err(err).Msg("import failed")
func WithSetID(setID int32) zerolog.Logger {
	return With().Int32("set_id", setID).Logger()
}

// WithPhase creates a child logger tagged with the sync engine's current
// state-machine phase.
//
//	phaseLogger := logging.WithPhase("Importing")
func WithPhase(phase string) zerolog.Logger {
	return With().Str("phase", phase).Logger()
}
