// Package logging provides structured logging for the webli server.
//
// The package wraps a zap logger with a package-global instance and a few
// helpers for the events the server emits most often: connection lifecycle,
// TLS handshakes, access lines and WebSocket frames.
//
// # Log Levels
//
//   - debug: TLS parameters, frame dumps, raw bytes
//   - info: connection events and one access line per answered request
//   - warn: recoverable faults (bad requests, protocol errors)
//   - error: failures that end a connection or the server
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("info"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// An empty level falls back to WEBLI_LOG_LEVEL; if that is also empty the
// logger is a no-op so library users see no output by default.
//
// # Access Lines
//
// Every request that receives a response is logged as
//
//	GET	200 | /index
//
// with the connection ID, peer address and elapsed time as fields.
//
// # Thread Safety
//
// All functions are safe for concurrent use. Output goes through a locked
// writer so lines from different connections never interleave.
package logging
