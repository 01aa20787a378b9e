// Package influxdb mirrors sensor readings and device events into InfluxDB
// v2 for long-term charting, alongside the local SQLite history.
//
// Writes use the client library's non-blocking batched API, sized by the
// batch_size and flush_interval settings, which suits chatty wireless
// sensors; write failures arrive asynchronously through SetOnError. The
// mirror is optional: Connect returns ErrDisabled when the config section
// is off and the daemon runs without it.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteSensorValue("fineoffset", "temperaturehumidity", 11, "temperature", 21.5, time.Now())
package influxdb
