// Package log provides a simple, leveled logging interface for the
// crawlgraph engine.
//
// The engine logs only diagnostics: unresolved edge endpoints, feed
// transport hiccups, rebuild timings. None of it is user-facing, so the
// package-level default logger starts at warn level and the graph builder
// emits its dropped-edge messages at debug.
//
// # Log Levels
//
//   - LogLevelDebug: detailed debugging information for development
//   - LogLevelInfo: general informational messages
//   - LogLevelWarn: potentially problematic situations
//   - LogLevelError: failures that need attention
//   - LogLevelNone: disables all logging output
//
// # Example Usage
//
//	// Route engine diagnostics through golog
//	glog := golog.New()
//	logger := log.NewGologLogger(glog)
//	logger.SetLevel(log.LogLevelDebug)
//	log.SetDefaultLogger(logger)
//
// Any type implementing the four-method Logger interface can be installed
// with SetDefaultLogger.
package log
