package bridge

import (
	"encoding/json"

	"github.com/nerrad567/tellstick-core/internal/tellcore"
)

// Event payloads published to MQTT. Field names are part of the public
// topic contract; changing them breaks subscribers.
type (
	deviceEventPayload struct {
		DeviceID   int    `json:"device_id"`
		Method     string `json:"method"`
		MethodCode int    `json:"method_code"`
		Data       string `json:"data,omitempty"`
	}

	deviceChangePayload struct {
		DeviceID int    `json:"device_id"`
		Event    string `json:"event"`
		Change   string `json:"change,omitempty"`
	}

	rawEventPayload struct {
		ControllerID int    `json:"controller_id"`
		Data         string `json:"data"`
	}

	sensorEventPayload struct {
		Protocol  string `json:"protocol"`
		Model     string `json:"model"`
		SensorID  int    `json:"sensor_id"`
		Kind      string `json:"kind"`
		Value     string `json:"value"`
		Timestamp int64  `json:"timestamp"`
	}

	controllerEventPayload struct {
		ControllerID int    `json:"controller_id"`
		Event        string `json:"event"`
		Change       string `json:"change,omitempty"`
		Value        string `json:"value,omitempty"`
	}
)

func (b *Bridge) handleDeviceEvent(deviceID int, method tellcore.Method, data string, _ int) {
	b.publishJSON(b.topics.DeviceEvent(deviceID), deviceEventPayload{
		DeviceID:   deviceID,
		Method:     methodName(method),
		MethodCode: int(method),
		Data:       data,
	})
	if b.onDeviceEvent != nil {
		b.onDeviceEvent(deviceID, method, data)
	}
}

func (b *Bridge) handleDeviceChangeEvent(deviceID int, event tellcore.DeviceChange, change tellcore.ChangeType, _ int) {
	b.publishJSON(b.topics.DeviceChangeEvent(deviceID), deviceChangePayload{
		DeviceID: deviceID,
		Event:    deviceChangeName(event),
		Change:   changeTypeName(event, change),
	})
}

func (b *Bridge) handleRawDeviceEvent(data string, controllerID int, _ int) {
	b.publishJSON(b.topics.RawEvent(), rawEventPayload{
		ControllerID: controllerID,
		Data:         data,
	})
}

func (b *Bridge) handleSensorEvent(protocol, model string, sensorID int, dataType tellcore.SensorDataType, value string, timestamp int64, _ int) {
	kind := dataType.String()
	b.publishJSON(b.topics.SensorValue(protocol, model, sensorID, kind), sensorEventPayload{
		Protocol:  protocol,
		Model:     model,
		SensorID:  sensorID,
		Kind:      kind,
		Value:     value,
		Timestamp: timestamp,
	})
	if b.onSensorValue != nil {
		b.onSensorValue(protocol, model, sensorID, kind, value, timestamp)
	}
}

func (b *Bridge) handleControllerEvent(controllerID int, event tellcore.DeviceChange, change tellcore.ChangeType, newValue string, _ int) {
	b.publishJSON(b.topics.ControllerEvent(controllerID), controllerEventPayload{
		ControllerID: controllerID,
		Event:        deviceChangeName(event),
		Change:       changeTypeName(event, change),
		Value:        newValue,
	})
}

func (b *Bridge) publishJSON(topic string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		b.log.Error("encoding event payload", "topic", topic, "error", err)
		return
	}
	if err := b.pub.Publish(topic, data, b.qos, false); err != nil {
		b.log.Error("publishing event", "topic", topic, "error", err)
	}
}

// methodName maps a native method code to its command name.
// The names match the command topic actions.
func methodName(m tellcore.Method) string {
	switch m {
	case tellcore.MethodTurnOn:
		return "turnon"
	case tellcore.MethodTurnOff:
		return "turnoff"
	case tellcore.MethodBell:
		return "bell"
	case tellcore.MethodToggle:
		return "toggle"
	case tellcore.MethodDim:
		return "dim"
	case tellcore.MethodLearn:
		return "learn"
	case tellcore.MethodExecute:
		return "execute"
	case tellcore.MethodUp:
		return "up"
	case tellcore.MethodDown:
		return "down"
	case tellcore.MethodStop:
		return "stop"
	default:
		return "unknown"
	}
}

func deviceChangeName(e tellcore.DeviceChange) string {
	switch e {
	case tellcore.DeviceAdded:
		return "added"
	case tellcore.DeviceChanged:
		return "changed"
	case tellcore.DeviceRemoved:
		return "removed"
	case tellcore.DeviceStateChanged:
		return "statechanged"
	default:
		return "unknown"
	}
}

// changeTypeName names the changed attribute. Only meaningful for
// "changed" events; empty otherwise so it is omitted from the payload.
func changeTypeName(e tellcore.DeviceChange, c tellcore.ChangeType) string {
	if e != tellcore.DeviceChanged {
		return ""
	}
	switch c {
	case tellcore.ChangeName:
		return "name"
	case tellcore.ChangeProtocol:
		return "protocol"
	case tellcore.ChangeModel:
		return "model"
	case tellcore.ChangeMethod:
		return "method"
	case tellcore.ChangeAvailable:
		return "available"
	case tellcore.ChangeFirmware:
		return "firmware"
	default:
		return "unknown"
	}
}
