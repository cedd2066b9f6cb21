// Package logging builds slog loggers with console and JSON handlers and
// provides the standardized attribute keys used across voxmerge components.
package logging
