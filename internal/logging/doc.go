// Package logging wires log/slog with console and JSON handlers, file plus
// stdout output, and small attribute helpers shared across the service.
package logging
