// Package logging provides a small leveled logger for the playlist browser.
//
// Levels, lowest to highest:
//   - DEBUG: parser and cache internals, per-request detail
//   - INFO: lifecycle and configuration
//   - WARN: degraded but recoverable conditions (missing player paths, failed thumbnail fetches)
//   - ERROR: failed requests and launches
//   - FATAL: startup failures; the process exits
//
// The level is read once from DEBUG (1/true/yes/on forces debug) or LOG_LEVEL.
package logging
