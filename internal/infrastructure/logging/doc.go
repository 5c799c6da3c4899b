// Package logging provides structured logging for AV Scenes Core.
//
// It wraps the standard library log/slog with configuration-driven
// setup (level, format, output) and default service fields.
//
// Domain packages should not import this package directly; they declare
// a narrow Logger interface (Debug/Info/Warn/Error) that *logging.Logger
// satisfies, keeping the dependency direction inward.
package logging
