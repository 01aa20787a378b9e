package telldus

import (
	"fmt"

	"github.com/nerrad567/tellstick-core/internal/tellcore"
)

// fakeLib implements library for tests. Function fields override individual
// calls; unset calls succeed with zero values. Every call is appended to
// calls so tests can assert ordering.
type fakeLib struct {
	calls []string

	deviceCountFn        func() (int, error)
	deviceIDFn           func(index int) (int, error)
	nameFn               func(deviceID int) (string, error)
	setNameFn            func(deviceID int, name string) error
	setProtocolFn        func(deviceID int, protocol string) error
	setModelFn           func(deviceID int, model string) error
	deviceParameterFn    func(deviceID int, name, defaultValue string) (string, error)
	setDeviceParameterFn func(deviceID int, name, value string) error
	addDeviceFn          func() (int, error)
	removeDeviceFn       func(deviceID int) error
	sensorFn             func() (tellcore.SensorInfo, error)
	sensorValueFn        func(protocol, model string, sensorID int, dataType tellcore.SensorDataType) (tellcore.SensorReading, error)
	controllerFn         func() (tellcore.ControllerInfo, error)
	controllerValueFn    func(controllerID int, name string) (string, error)
	setControllerValueFn func(controllerID int, name, value string) error
}

func (f *fakeLib) trace(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeLib) Close() { f.trace("Close") }

func (f *fakeLib) TurnOn(deviceID int) error  { f.trace("TurnOn(%d)", deviceID); return nil }
func (f *fakeLib) TurnOff(deviceID int) error { f.trace("TurnOff(%d)", deviceID); return nil }
func (f *fakeLib) Bell(deviceID int) error    { f.trace("Bell(%d)", deviceID); return nil }
func (f *fakeLib) Dim(deviceID int, level uint8) error {
	f.trace("Dim(%d,%d)", deviceID, level)
	return nil
}
func (f *fakeLib) Execute(deviceID int) error { f.trace("Execute(%d)", deviceID); return nil }
func (f *fakeLib) Up(deviceID int) error      { f.trace("Up(%d)", deviceID); return nil }
func (f *fakeLib) Down(deviceID int) error    { f.trace("Down(%d)", deviceID); return nil }
func (f *fakeLib) Stop(deviceID int) error    { f.trace("Stop(%d)", deviceID); return nil }
func (f *fakeLib) Learn(deviceID int) error   { f.trace("Learn(%d)", deviceID); return nil }

func (f *fakeLib) Methods(deviceID int, supported tellcore.Method) (tellcore.Method, error) {
	f.trace("Methods(%d)", deviceID)
	return 0, nil
}

func (f *fakeLib) LastSentCommand(deviceID int, supported tellcore.Method) (tellcore.Method, error) {
	f.trace("LastSentCommand(%d)", deviceID)
	return 0, nil
}

func (f *fakeLib) LastSentValue(deviceID int) (string, error) {
	f.trace("LastSentValue(%d)", deviceID)
	return "", nil
}

func (f *fakeLib) DeviceCount() (int, error) {
	f.trace("DeviceCount")
	if f.deviceCountFn != nil {
		return f.deviceCountFn()
	}
	return 0, nil
}

func (f *fakeLib) DeviceID(index int) (int, error) {
	f.trace("DeviceID(%d)", index)
	if f.deviceIDFn != nil {
		return f.deviceIDFn(index)
	}
	return 0, nil
}

func (f *fakeLib) DeviceType(deviceID int) (tellcore.DeviceType, error) {
	f.trace("DeviceType(%d)", deviceID)
	return tellcore.TypeDevice, nil
}

func (f *fakeLib) Name(deviceID int) (string, error) {
	f.trace("Name(%d)", deviceID)
	if f.nameFn != nil {
		return f.nameFn(deviceID)
	}
	return "", nil
}

func (f *fakeLib) SetName(deviceID int, name string) error {
	f.trace("SetName(%d,%s)", deviceID, name)
	if f.setNameFn != nil {
		return f.setNameFn(deviceID, name)
	}
	return nil
}

func (f *fakeLib) Protocol(deviceID int) (string, error) {
	f.trace("Protocol(%d)", deviceID)
	return "", nil
}

func (f *fakeLib) SetProtocol(deviceID int, protocol string) error {
	f.trace("SetProtocol(%d,%s)", deviceID, protocol)
	if f.setProtocolFn != nil {
		return f.setProtocolFn(deviceID, protocol)
	}
	return nil
}

func (f *fakeLib) Model(deviceID int) (string, error) {
	f.trace("Model(%d)", deviceID)
	return "", nil
}

func (f *fakeLib) SetModel(deviceID int, model string) error {
	f.trace("SetModel(%d,%s)", deviceID, model)
	if f.setModelFn != nil {
		return f.setModelFn(deviceID, model)
	}
	return nil
}

func (f *fakeLib) DeviceParameter(deviceID int, name, defaultValue string) (string, error) {
	f.trace("DeviceParameter(%d,%s)", deviceID, name)
	if f.deviceParameterFn != nil {
		return f.deviceParameterFn(deviceID, name, defaultValue)
	}
	return defaultValue, nil
}

func (f *fakeLib) SetDeviceParameter(deviceID int, name, value string) error {
	f.trace("SetDeviceParameter(%d,%s,%s)", deviceID, name, value)
	if f.setDeviceParameterFn != nil {
		return f.setDeviceParameterFn(deviceID, name, value)
	}
	return nil
}

func (f *fakeLib) AddDevice() (int, error) {
	f.trace("AddDevice")
	if f.addDeviceFn != nil {
		return f.addDeviceFn()
	}
	return 1, nil
}

func (f *fakeLib) RemoveDevice(deviceID int) error {
	f.trace("RemoveDevice(%d)", deviceID)
	if f.removeDeviceFn != nil {
		return f.removeDeviceFn(deviceID)
	}
	return nil
}

func (f *fakeLib) SendRawCommand(command string, reserved int) error {
	f.trace("SendRawCommand(%s,%d)", command, reserved)
	return nil
}

func (f *fakeLib) ConnectController(vid, pid int, serial string) error {
	f.trace("ConnectController(%d,%d,%s)", vid, pid, serial)
	return nil
}

func (f *fakeLib) DisconnectController(vid, pid int, serial string) error {
	f.trace("DisconnectController(%d,%d,%s)", vid, pid, serial)
	return nil
}

func (f *fakeLib) Sensor() (tellcore.SensorInfo, error) {
	f.trace("Sensor")
	if f.sensorFn != nil {
		return f.sensorFn()
	}
	return tellcore.SensorInfo{}, &tellcore.CallError{Code: tellcore.CodeDeviceNotFound}
}

func (f *fakeLib) SensorValue(protocol, model string, sensorID int, dataType tellcore.SensorDataType) (tellcore.SensorReading, error) {
	f.trace("SensorValue(%s,%s,%d,%d)", protocol, model, sensorID, dataType)
	if f.sensorValueFn != nil {
		return f.sensorValueFn(protocol, model, sensorID, dataType)
	}
	return tellcore.SensorReading{}, nil
}

func (f *fakeLib) Controller() (tellcore.ControllerInfo, error) {
	f.trace("Controller")
	if f.controllerFn != nil {
		return f.controllerFn()
	}
	return tellcore.ControllerInfo{}, &tellcore.CallError{Code: tellcore.CodeNotFound}
}

func (f *fakeLib) ControllerValue(controllerID int, name string) (string, error) {
	f.trace("ControllerValue(%d,%s)", controllerID, name)
	if f.controllerValueFn != nil {
		return f.controllerValueFn(controllerID, name)
	}
	return "", nil
}

func (f *fakeLib) SetControllerValue(controllerID int, name, value string) error {
	f.trace("SetControllerValue(%d,%s,%s)", controllerID, name, value)
	if f.setControllerValueFn != nil {
		return f.setControllerValueFn(controllerID, name, value)
	}
	return nil
}

func (f *fakeLib) RemoveController(controllerID int) error {
	f.trace("RemoveController(%d)", controllerID)
	return nil
}

func (f *fakeLib) RegisterDeviceEvent(cb tellcore.DeviceEventFunc) (int, error) {
	f.trace("RegisterDeviceEvent")
	return 1, nil
}

func (f *fakeLib) RegisterDeviceChangeEvent(cb tellcore.DeviceChangeEventFunc) (int, error) {
	f.trace("RegisterDeviceChangeEvent")
	return 1, nil
}

func (f *fakeLib) RegisterRawDeviceEvent(cb tellcore.RawDeviceEventFunc) (int, error) {
	f.trace("RegisterRawDeviceEvent")
	return 1, nil
}

func (f *fakeLib) RegisterSensorEvent(cb tellcore.SensorEventFunc) (int, error) {
	f.trace("RegisterSensorEvent")
	return 1, nil
}

func (f *fakeLib) RegisterControllerEvent(cb tellcore.ControllerEventFunc) (int, error) {
	f.trace("RegisterControllerEvent")
	return 1, nil
}

func (f *fakeLib) UnregisterCallback(id int) error {
	f.trace("UnregisterCallback(%d)", id)
	return nil
}
