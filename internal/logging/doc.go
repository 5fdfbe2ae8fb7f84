// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides centralized zerolog-based structured logging for osu-sync-bridge.
//
// This package implements a unified logging layer using zerolog, providing
// zero-allocation structured JSON logging for production and human-readable
// console output for development. It replaces mixed logging approaches with
// a consistent, high-performance logging interface.
//
// # Overview
//
// The package provides:
//   - Zero-allocation structured logging via zerolog
//   - JSON output format for production (machine-parseable)
//   - Console output format for development (human-readable)
//   - Global logger configuration through Init
//   - Context-aware logging with correlation ID propagation
//   - slog adapter for Suture v4 integration
//
// # Quick Start
//
//	import "github.com/osusync/bridge/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Caller: false,
//	})
//
//	// Log messages with structured fields
//	logging.Info().Int("sets", len(scan.Sets)).Msg("scan complete")
//	logging.Error().Err(err).Str("path", root).Msg("scan failed")
//
//	// Context-aware logging: set id, hash, and sync phase ride along
//	// automatically once set on ctx via ContextWithSetID/ContextWithHash/
//	// ContextWithPhase.
//	logging.Ctx(ctx).Warn().Msg("set import failed")
//
// # Configuration
//
// Environment Variables:
//
// The package reads no LOG_LEVEL, LOG_FORMAT or LOG_CALLER variables.
// It reads only SYNCTOOL_QUIET: when it is "1", the level used before
// Init is called is error. cmd/synctool passes the logging section of
// the loaded configuration to Init, so SYNCTOOL_LOGGING_LEVEL and
// SYNCTOOL_LOGGING_FORMAT set the level and format there.
//
// Programmatic Configuration:
//
//	logging.Init(logging.Config{
//	    Level:     "debug",    // trace, debug, info, warn, error, fatal
//	    Format:    "console",  // json or console
//	    Caller:    true,       // Include caller info
//	    Timestamp: true,       // Include timestamps
//	    Output:    os.Stderr,  // Output writer
//	})
//
// # Log Levels
//
// Supported log levels (from most to least verbose):
//
//	trace  - Very detailed diagnostic information
//	debug  - Detailed diagnostic information
//	info   - General operational information (default)
//	warn   - Warning conditions that should be addressed
//	error  - Error conditions requiring attention
//	fatal  - Fatal errors that terminate the program
//	panic  - Panic conditions that crash the program
//
// # Structured Logging Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
//
// Use structured fields instead of string formatting:
//
//	// Good - structured, searchable, efficient
//	logging.Info().
//	    Str("user", username).
//	    Int("count", itemCount).
//	    Dur("elapsed", duration).
//	    Msg("Items processed")
//
//	// Avoid - unstructured, harder to parse
//	logging.Info().Msgf("User %s processed %d items in %v", username, itemCount, duration)
//
// # Component Loggers
//
// Create component-specific loggers with default fields:
//
//	// Create a logger for the sync engine
//	syncLogger := logging.WithComponent("sync")
//	syncLogger.Info().Msg("sync started")
//	syncLogger.Error().Err(err).Msg("sync failed")
//
//	// Or tag by the entity being worked on, rather than the component:
//	logging.WithSetID(set.OnlineSetID).Warn().Msg("duplicate match ambiguous")
//	logging.WithPhase("importing").Info().Msg("entering importing phase")
//
// # Context-Aware Logging
//
// Propagate set id, content hash, and sync phase through logging without
// threading them through every function signature:
//
//	ctx = logging.ContextWithSetID(ctx, set.OnlineSetID)
//	ctx = logging.ContextWithPhase(ctx, string(sync.PhaseImporting))
//	logger := logging.Ctx(ctx)
//	logger.Warn().Msg("import failed") // carries set_id and phase fields
//
// # slog Adapter
//
// The package provides an slog adapter for libraries that require slog.Logger:
//
//	slogLogger := logging.NewSlogLogger()
//	// Use slogLogger with Suture or other slog-compatible libraries
//
// # Output Formats
//
// JSON Format (Production):
//
//	{"level":"info","time":"2025-01-03T10:30:00Z","message":"Server starting","port":3857}
//
// Console Format (Development):
//
//	10:30:00 INF Server starting port=3857
//
// # Thread Safety
//
// All exported functions are safe for concurrent use. The global logger
// is protected by sync.RWMutex for configuration changes.
//
// # Performance Characteristics
//
//   - Info/Debug/Warn/Error: ~150ns per call (zero allocations)
//   - With context fields: ~200ns per call
//   - JSON encoding: ~500ns per message
//   - Console encoding: ~800ns per message
//   - Memory allocation: 0 bytes for typical log calls
//
// # Testing
//
// Create test loggers that capture output:
//
//	var buf bytes.Buffer
//	logger := logging.NewTestLogger(&buf)
//	logger.Info().Msg("test message")
//	output := buf.String()
//
// # See Also
//
//   - github.com/rs/zerolog: Underlying logging library
//   - internal/middleware: Request ID middleware for correlation
package logging
