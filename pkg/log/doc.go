// Package log provides structured diagnostic logging for change-stream
// subscriptions.
//
// This package defines the Logger interface and Event types for capturing
// subscription lifecycle events: state transitions, retry scheduling,
// payload delivery, invalidation flushes, and errors. It is separate from
// operational logging (slog) - event capture produces a machine-readable
// trace of one subscription's life, correlated by subscription ID.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	realtime.WithLogger(log.NewSlogAdapter(slog.Default()))
//
//	// For production: write to binary file
//	fl, _ := log.NewFileLogger("/var/log/app/realtime.rlog")
//	realtime.WithLogger(fl)
//
//	// Both: use MultiLogger
//	realtime.WithLogger(log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fl,
//	))
//
// # File Format
//
// Log files are a stream of CBOR-encoded Event records with integer keys
// (.rlog extension). NewDecoder reads them back.
package log
