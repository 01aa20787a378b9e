// Package config loads and validates the daemon's configuration.
//
// Configuration is read once at startup from a YAML file, then overridden by
// TELLSTICK_* environment variables, which is where broker passwords and
// InfluxDB tokens belong rather than on disk. Load fills defaults and
// rejects configurations that cannot work, a missing database path or an
// out-of-range QoS among them.
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
package config
