package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSensorValue queues one sensor reading under the sensor_values
// measurement, tagged by the series identity (protocol, model, sensor id,
// kind). Non-blocking; the batch goes out on the flush interval. Dropped
// silently when the mirror is not connected.
func (c *Client) WriteSensorValue(protocol, model string, sensorID int, kind string, value float64, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sensor_values",
		map[string]string{
			"protocol":  protocol,
			"model":     model,
			"sensor_id": strconv.Itoa(sensorID),
			"kind":      kind,
		},
		map[string]interface{}{
			"value": value,
		},
		timestamp,
	)

	c.writeAPI.WritePoint(point)
}

// WriteDeviceEvent queues a device command under the device_events
// measurement. value carries the dim level, or 1 for plain commands.
func (c *Client) WriteDeviceEvent(deviceID int, method string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_events",
		map[string]string{
			"device_id": strconv.Itoa(deviceID),
			"method":    method,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint queues an arbitrary measurement stamped with the current time.
// Keep tags low-cardinality; values belong in fields.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime queues an arbitrary measurement with an explicit
// timestamp, for data that arrives late.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
