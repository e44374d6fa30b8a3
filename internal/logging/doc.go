// Package logging constructs the application's slog loggers and provides
// small attribute helpers shared across packages.
package logging
