// Package logging wraps log/slog for the daemon.
//
// Every record carries the service name and build version; the logging
// section of config.yaml selects level, JSON or text format, and stdout or
// stderr. Components take a child logger via With:
//
//	log := logging.New(cfg.Logging, version)
//	bridgeLog := log.With("component", "bridge")
//
// logging.Default covers the window before config.Load succeeds.
//
// Secrets never go into log fields; broker passwords and InfluxDB tokens
// stay out of records entirely.
package logging
