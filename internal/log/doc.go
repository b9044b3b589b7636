// Package log builds the crawler's slog loggers. It wraps the chosen
// handler so cookie and authorization values from site configurations are
// masked before they reach any log sink, and optionally mirrors output to
// a rotating file for long unattended crawls.
package log
