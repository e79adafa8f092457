// Package logging provides structured logging for the gw1000 tools.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used by the collector, transport, publisher and relay server.
// The protocol package itself never logs.
//
// # Log Levels
//
//   - Debug: Frame hex dumps, per-exchange details, decoded values
//   - Info: Polls, client connections, publisher and archive activity
//   - Warn: Failed exchanges, dropped clients, skipped publishes
//   - Error: Startup failures
//
// # Gateway Logging
//
//	logging.LogFrame("sent", "CMD_GW1000_LIVEDATA(0x27)", frame)
//	logging.LogExchange("192.168.2.20:45000", cmd.String(), len(req), len(resp), err)
//	logging.LogObservations("poll", obs)
//
// # Configuration
//
// Logging is silent unless a level is given, either with --log-level or the
// GW1000_LOG_LEVEL environment variable:
//
//	if err := logging.Initialize(level); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// Output goes to stderr in console format so command output on stdout can be
// piped into other tools.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once Initialize has
// returned.
package logging
