// Package logging provides structured logging for meshcfg.
//
// This package wraps a zap logger with package-level convenience functions.
// Logging is silent unless a level is given explicitly or through the
// MESHCFG_LOG_LEVEL environment variable, so the interactive editor never
// prints over its own screen by accident.
//
// # Log Levels
//
//   - Debug: editor state transitions, deduplicated overlay writes
//   - Info: overlay writes and clears, remote snapshots, discovery results
//   - Warn: snapshot source reconnects, unreadable snapshot files
//   - Error: failures that end a command
//
// # Usage
//
//	if err := logging.InitializeWithOutput("debug", "/tmp/meshcfg.log"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
//	logging.LogTransition("remoteHardware", "Bound", "Editing")
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once Initialize has run.
package logging
