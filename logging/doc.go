// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug in
// any structured logger. Components receive a Logger at construction time;
// tests pass NoOpLogger.
package logging
