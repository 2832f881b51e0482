// Package logging constructs the slog loggers used across the tagger.
//
// Two output formats are supported: a compact console format for
// interactive use and JSON for machine consumption. Components receive a
// child logger tagged with a component attribute via NewComponentLogger;
// all constructors are nil-safe so tests can pass a nil logger.
package logging
