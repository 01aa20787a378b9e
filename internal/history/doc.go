// Package history records sensor readings over time.
//
// The TellStick service only keeps the most recent value per sensor and
// data type. This package adds a durable history: a Recorder polls the
// sensor list on an interval and persists every new reading to SQLite,
// optionally mirroring numeric values to InfluxDB. The Store exposes a
// small query API (latest reading, time range) and prunes rows past the
// configured retention.
//
// Readings carry the native timestamp of when the radio frame arrived,
// not when the poll ran, so polling faster than sensors report does not
// duplicate rows.
package history
