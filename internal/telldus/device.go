package telldus

import (
	"errors"
	"fmt"

	"github.com/nerrad567/tellstick-core/internal/tellcore"
)

// ErrUnknownParameter reports a device parameter the device does not have.
var ErrUnknownParameter = errors.New("telldus: unknown device parameter")

// deviceParameters is the parameter set used by the stock protocols.
var deviceParameters = []string{
	"devices", "house", "unit", "code", "system", "units", "fade",
}

// invalidParameter is a default value no real parameter ever holds, used to
// detect absent parameters since the native getter has no error for them.
const invalidParameter = "$%!)(INVALID)(!%$"

// Device is a handle to one configured device. The zero value is not usable;
// obtain instances from Core.
type Device struct {
	id  int
	lib library
}

// ID returns the device id.
func (d *Device) ID() int { return d.id }

// Name returns the configured device name.
func (d *Device) Name() (string, error) { return d.lib.Name(d.id) }

// SetName renames the device.
func (d *Device) SetName(name string) error { return d.lib.SetName(d.id, name) }

// Protocol returns the protocol the device transmits with.
func (d *Device) Protocol() (string, error) { return d.lib.Protocol(d.id) }

// SetProtocol changes the device protocol.
func (d *Device) SetProtocol(protocol string) error { return d.lib.SetProtocol(d.id, protocol) }

// Model returns the device model within its protocol.
func (d *Device) Model() (string, error) { return d.lib.Model(d.id) }

// SetModel changes the device model.
func (d *Device) SetModel(model string) error { return d.lib.SetModel(d.id, model) }

// Type reports whether this is a plain device, a group or a scene.
func (d *Device) Type() (tellcore.DeviceType, error) { return d.lib.DeviceType(d.id) }

// Parameter returns the value of a protocol parameter, or an error wrapping
// ErrUnknownParameter when the device does not have it.
func (d *Device) Parameter(name string) (string, error) {
	value, err := d.lib.DeviceParameter(d.id, name, invalidParameter)
	if err != nil {
		return "", err
	}
	if value == invalidParameter {
		return "", fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	return value, nil
}

// SetParameter sets a protocol parameter.
func (d *Device) SetParameter(name, value string) error {
	return d.lib.SetDeviceParameter(d.id, name, value)
}

// Parameters collects every stock parameter the device has set. Parameters
// the device does not have are left out.
func (d *Device) Parameters() (map[string]string, error) {
	params := make(map[string]string)
	for _, name := range deviceParameters {
		value, err := d.Parameter(name)
		if errors.Is(err, ErrUnknownParameter) {
			continue
		}
		if err != nil {
			return nil, err
		}
		params[name] = value
	}
	return params, nil
}

// Remove deletes the device from the configuration.
func (d *Device) Remove() error { return d.lib.RemoveDevice(d.id) }

// TurnOn turns the device on.
func (d *Device) TurnOn() error { return d.lib.TurnOn(d.id) }

// TurnOff turns the device off.
func (d *Device) TurnOff() error { return d.lib.TurnOff(d.id) }

// Bell rings a bell device.
func (d *Device) Bell() error { return d.lib.Bell(d.id) }

// Dim sets the level of a dimmable device, 0 to 255.
func (d *Device) Dim(level uint8) error { return d.lib.Dim(d.id, level) }

// Execute runs a scene device.
func (d *Device) Execute() error { return d.lib.Execute(d.id) }

// Up raises a projector screen or blind.
func (d *Device) Up() error { return d.lib.Up(d.id) }

// Down lowers a projector screen or blind.
func (d *Device) Down() error { return d.lib.Down(d.id) }

// Stop halts an Up or Down movement.
func (d *Device) Stop() error { return d.lib.Stop(d.id) }

// Learn transmits a pairing message for self-learning devices.
func (d *Device) Learn() error { return d.lib.Learn(d.id) }

// Methods returns the subset of supported that the device implements.
func (d *Device) Methods(supported tellcore.Method) (tellcore.Method, error) {
	return d.lib.Methods(d.id, supported)
}

// LastSentCommand returns the last command sent to the device, mapped onto
// the supported set.
func (d *Device) LastSentCommand(supported tellcore.Method) (tellcore.Method, error) {
	return d.lib.LastSentCommand(d.id, supported)
}

// LastSentValue returns the value of the last command, such as a dim level.
func (d *Device) LastSentValue() (string, error) {
	return d.lib.LastSentValue(d.id)
}
