package tellcore

// Method is a bitmask of device commands a device supports.
// Values match the TELLSTICK_* method defines of the native API.
type Method int32

// Device method flags.
const (
	MethodTurnOn  Method = 1
	MethodTurnOff Method = 2
	MethodBell    Method = 4
	MethodToggle  Method = 8
	MethodDim     Method = 16
	MethodLearn   Method = 32
	MethodExecute Method = 64
	MethodUp      Method = 128
	MethodDown    Method = 256
	MethodStop    Method = 512
)

// SensorDataType is a bitmask of value types a sensor reports.
type SensorDataType int32

// Sensor value types.
const (
	SensorTemperature   SensorDataType = 1
	SensorHumidity      SensorDataType = 2
	SensorRainRate      SensorDataType = 4
	SensorRainTotal     SensorDataType = 8
	SensorWindDirection SensorDataType = 16
	SensorWindAverage   SensorDataType = 32
	SensorWindGust      SensorDataType = 64
)

// String names a single data type. Meaningful for single-bit values only;
// combined masks report "unknown".
func (t SensorDataType) String() string {
	switch t {
	case SensorTemperature:
		return "temperature"
	case SensorHumidity:
		return "humidity"
	case SensorRainRate:
		return "rainrate"
	case SensorRainTotal:
		return "raintotal"
	case SensorWindDirection:
		return "winddirection"
	case SensorWindAverage:
		return "windaverage"
	case SensorWindGust:
		return "windgust"
	default:
		return "unknown"
	}
}

// ErrorCode is a native telldus-core result code. Zero is success, negative
// values are errors. The set is closed; the native library never returns
// codes outside it.
type ErrorCode int32

// Native result codes.
const (
	CodeSuccess              ErrorCode = 0
	CodeNotFound             ErrorCode = -1
	CodePermissionDenied     ErrorCode = -2
	CodeDeviceNotFound       ErrorCode = -3
	CodeMethodNotSupported   ErrorCode = -4
	CodeCommunication        ErrorCode = -5
	CodeConnectingService    ErrorCode = -6
	CodeUnknownResponse      ErrorCode = -7
	CodeSyntax               ErrorCode = -8
	CodeBrokenPipe           ErrorCode = -9
	CodeCommunicatingService ErrorCode = -10
	CodeConfigSyntax         ErrorCode = -11
	CodeUnknown              ErrorCode = -99
)

// DeviceType identifies what kind of entry a device id refers to.
type DeviceType int32

// Device types.
const (
	TypeDevice DeviceType = 1
	TypeGroup  DeviceType = 2
	TypeScene  DeviceType = 3
)

// ControllerType identifies the hardware kind of a controller.
type ControllerType int32

// Controller types.
const (
	ControllerTellStick    ControllerType = 1
	ControllerTellStickDuo ControllerType = 2
	ControllerTellStickNet ControllerType = 3
)

// DeviceChange identifies what happened in a device-change or controller event.
type DeviceChange int32

// Device change events.
const (
	DeviceAdded        DeviceChange = 1
	DeviceChanged      DeviceChange = 2
	DeviceRemoved      DeviceChange = 3
	DeviceStateChanged DeviceChange = 4
)

// ChangeType identifies which attribute changed in a change event.
type ChangeType int32

// Change types.
const (
	ChangeName      ChangeType = 1
	ChangeProtocol  ChangeType = 2
	ChangeModel     ChangeType = 3
	ChangeMethod    ChangeType = 4
	ChangeAvailable ChangeType = 5
	ChangeFirmware  ChangeType = 6
)

// Native out-buffer sizes. These are the sizes the telldus-core API has
// always been called with and must not shrink.
const (
	sensorBufferSize     = 20
	controllerBufferSize = 255
)
