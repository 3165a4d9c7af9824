package testutil

import "log/slog"

// NopLogger returns a logger that drops every record, keeping test output
// readable
func NopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
