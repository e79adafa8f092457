// Package archive keeps a history of observations in SQLite.
//
// Each poll is stored as one row per observation name, keyed by the poll
// time in seconds. Values the gateway reported as absent are stored as NULL
// so gaps stay visible in the history.
package archive
