package mqtt

import "fmt"

// Topic prefixes for the tellstick MQTT scheme.
//
// Event topics carry what the TellStick hears and does, sensor topics carry
// value reports, command topics accept device commands from other services.
const (
	// TopicPrefix is the base for all tellstick topics.
	TopicPrefix = "tellstick"

	// TopicPrefixEvent is the base for native event topics.
	TopicPrefixEvent = "tellstick/event"

	// TopicPrefixSensor is the base for sensor value topics.
	TopicPrefixSensor = "tellstick/sensor"

	// TopicPrefixCommand is the base for inbound command topics.
	TopicPrefixCommand = "tellstick/command"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "tellstick/system"
)

// Topics provides builders for tellstick MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	eventTopic := topics.DeviceEvent(3)
//	// Returns: "tellstick/event/device/3"
type Topics struct{}

// DeviceEvent returns the topic for command events seen on a device.
//
// Example: tellstick/event/device/3
func (Topics) DeviceEvent(deviceID int) string {
	return fmt.Sprintf("%s/device/%d", TopicPrefixEvent, deviceID)
}

// DeviceChangeEvent returns the topic for add/change/remove events on a
// device.
//
// Example: tellstick/event/device-change/3
func (Topics) DeviceChangeEvent(deviceID int) string {
	return fmt.Sprintf("%s/device-change/%d", TopicPrefixEvent, deviceID)
}

// RawEvent returns the topic for undecoded protocol data from controllers.
//
// Example: tellstick/event/raw
func (Topics) RawEvent() string {
	return fmt.Sprintf("%s/raw", TopicPrefixEvent)
}

// ControllerEvent returns the topic for controller state changes.
//
// Example: tellstick/event/controller/2
func (Topics) ControllerEvent(controllerID int) string {
	return fmt.Sprintf("%s/controller/%d", TopicPrefixEvent, controllerID)
}

// SensorValue returns the topic for one sensor value kind.
//
// Example: tellstick/sensor/fineoffset/temperaturehumidity/11/temperature
func (Topics) SensorValue(protocol, model string, sensorID int, kind string) string {
	return fmt.Sprintf("%s/%s/%s/%d/%s", TopicPrefixSensor, protocol, model, sensorID, kind)
}

// DeviceCommand returns the topic a device listens on for one command.
//
// Example: tellstick/command/device/3/turnon
func (Topics) DeviceCommand(deviceID int, action string) string {
	return fmt.Sprintf("%s/device/%d/%s", TopicPrefixCommand, deviceID, action)
}

// SystemStatus returns the daemon status topic.
//
// Example: tellstick/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllDeviceCommands returns a pattern matching every device command topic.
//
// Pattern: tellstick/command/device/+/+
func (Topics) AllDeviceCommands() string {
	return fmt.Sprintf("%s/device/+/+", TopicPrefixCommand)
}

// AllEvents returns a pattern matching every native event topic.
//
// Pattern: tellstick/event/#
func (Topics) AllEvents() string {
	return fmt.Sprintf("%s/#", TopicPrefixEvent)
}

// AllSensorValues returns a pattern matching every sensor value topic.
//
// Pattern: tellstick/sensor/#
func (Topics) AllSensorValues() string {
	return fmt.Sprintf("%s/#", TopicPrefixSensor)
}

// AllTopics returns a pattern matching all tellstick topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: tellstick/#
func (Topics) AllTopics() string {
	return "tellstick/#"
}
