package influxdb

import "errors"

// Sentinel errors for the mirror client, matched with errors.Is. Write
// failures do not surface here; the async write API reports them through
// SetOnError.
var (
	ErrNotConnected     = errors.New("influxdb: not connected")
	ErrConnectionFailed = errors.New("influxdb: connection failed")
	ErrDisabled         = errors.New("influxdb: disabled in configuration")
)
