package telldus

import (
	"github.com/nerrad567/tellstick-core/internal/tellcore"
)

// library is the slice of the tellcore API the object model consumes.
// *tellcore.Library satisfies it; tests substitute a fake.
type library interface {
	Close()

	TurnOn(deviceID int) error
	TurnOff(deviceID int) error
	Bell(deviceID int) error
	Dim(deviceID int, level uint8) error
	Execute(deviceID int) error
	Up(deviceID int) error
	Down(deviceID int) error
	Stop(deviceID int) error
	Learn(deviceID int) error
	Methods(deviceID int, supported tellcore.Method) (tellcore.Method, error)
	LastSentCommand(deviceID int, supported tellcore.Method) (tellcore.Method, error)
	LastSentValue(deviceID int) (string, error)

	DeviceCount() (int, error)
	DeviceID(index int) (int, error)
	DeviceType(deviceID int) (tellcore.DeviceType, error)
	Name(deviceID int) (string, error)
	SetName(deviceID int, name string) error
	Protocol(deviceID int) (string, error)
	SetProtocol(deviceID int, protocol string) error
	Model(deviceID int) (string, error)
	SetModel(deviceID int, model string) error
	DeviceParameter(deviceID int, name, defaultValue string) (string, error)
	SetDeviceParameter(deviceID int, name, value string) error
	AddDevice() (int, error)
	RemoveDevice(deviceID int) error

	SendRawCommand(command string, reserved int) error
	ConnectController(vid, pid int, serial string) error
	DisconnectController(vid, pid int, serial string) error

	Sensor() (tellcore.SensorInfo, error)
	SensorValue(protocol, model string, sensorID int, dataType tellcore.SensorDataType) (tellcore.SensorReading, error)
	Controller() (tellcore.ControllerInfo, error)
	ControllerValue(controllerID int, name string) (string, error)
	SetControllerValue(controllerID int, name, value string) error
	RemoveController(controllerID int) error

	RegisterDeviceEvent(cb tellcore.DeviceEventFunc) (int, error)
	RegisterDeviceChangeEvent(cb tellcore.DeviceChangeEventFunc) (int, error)
	RegisterRawDeviceEvent(cb tellcore.RawDeviceEventFunc) (int, error)
	RegisterSensorEvent(cb tellcore.SensorEventFunc) (int, error)
	RegisterControllerEvent(cb tellcore.ControllerEventFunc) (int, error)
	UnregisterCallback(id int) error
}

// Core is the high-level entry point to a TellStick installation. It wraps a
// shared tellcore.Library instance and hands out Device, Sensor and
// Controller values bound to the same native session.
//
// Thread Safety: Core itself is safe for concurrent use; the native library
// serialises calls internally.
type Core struct {
	lib   library
	queue *tellcore.QueuedDispatcher
}

// Option configures New.
type Option func(*options)

type options struct {
	modulePath string
	dispatcher tellcore.Dispatcher
	logger     tellcore.Logger
}

// WithModule overrides the platform default library name or path.
func WithModule(nameOrPath string) Option {
	return func(o *options) { o.modulePath = nameOrPath }
}

// WithDispatcher replaces the default queued dispatcher. When set,
// ProcessEvent and ProcessPendingEvents become no-ops; event delivery is the
// supplied dispatcher's business.
func WithDispatcher(d tellcore.Dispatcher) Option {
	return func(o *options) { o.dispatcher = d }
}

// WithLogger routes internal warnings, such as teardown failures and
// recovered callback panics, to the given logger.
func WithLogger(log tellcore.Logger) Option {
	return func(o *options) { o.logger = log }
}

// New opens the native library and returns a Core bound to it. Multiple Core
// instances share one loaded session; Close every instance to unload it.
func New(opts ...Option) (*Core, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var queue *tellcore.QueuedDispatcher
	if o.dispatcher == nil {
		queue = tellcore.NewQueuedDispatcher()
		o.dispatcher = queue
	}

	libOpts := []tellcore.Option{tellcore.WithDispatcher(o.dispatcher)}
	if o.modulePath != "" {
		libOpts = append(libOpts, tellcore.WithModule(o.modulePath))
	}
	if o.logger != nil {
		libOpts = append(libOpts, tellcore.WithLogger(o.logger))
	}

	lib, err := tellcore.New(libOpts...)
	if err != nil {
		return nil, err
	}
	return &Core{lib: lib, queue: queue}, nil
}

// Close releases this instance's hold on the native library.
func (c *Core) Close() {
	c.lib.Close()
}

// ProcessEvent delivers one queued event on the calling goroutine. With
// block=true it waits for an event to arrive. It reports whether an event
// was delivered, and always returns false under a custom dispatcher.
func (c *Core) ProcessEvent(block bool) bool {
	if c.queue == nil {
		return false
	}
	return c.queue.ProcessOne(block)
}

// ProcessPendingEvents delivers every queued event without blocking and
// returns the number delivered.
func (c *Core) ProcessPendingEvents() int {
	if c.queue == nil {
		return 0
	}
	return c.queue.ProcessPending()
}

// Device returns a handle for a known device id without touching the native
// library.
func (c *Core) Device(deviceID int) *Device {
	return &Device{id: deviceID, lib: c.lib}
}

// Devices enumerates the configured devices.
func (c *Core) Devices() ([]*Device, error) {
	count, err := c.lib.DeviceCount()
	if err != nil {
		return nil, err
	}
	devices := make([]*Device, 0, count)
	for i := 0; i < count; i++ {
		id, err := c.lib.DeviceID(i)
		if err != nil {
			return nil, err
		}
		devices = append(devices, &Device{id: id, lib: c.lib})
	}
	return devices, nil
}

// Sensors enumerates every sensor the library has seen.
func (c *Core) Sensors() ([]*Sensor, error) {
	var sensors []*Sensor
	for {
		info, err := c.lib.Sensor()
		if tellcore.IsCode(err, tellcore.CodeDeviceNotFound) {
			// End of iteration.
			return sensors, nil
		}
		if err != nil {
			return nil, err
		}
		sensors = append(sensors, &Sensor{
			Protocol:  info.Protocol,
			Model:     info.Model,
			ID:        info.ID,
			DataTypes: info.DataTypes,
			lib:       c.lib,
		})
	}
}

// Controllers enumerates the known TellStick controllers.
func (c *Core) Controllers() ([]*Controller, error) {
	var controllers []*Controller
	for {
		info, err := c.lib.Controller()
		if tellcore.IsCode(err, tellcore.CodeNotFound) {
			// End of iteration.
			return controllers, nil
		}
		if err != nil {
			return nil, err
		}
		controllers = append(controllers, &Controller{
			ID:        info.ID,
			Type:      info.Type,
			Name:      info.Name,
			Available: info.Available,
			lib:       c.lib,
		})
	}
}

// AddDevice creates a new device and configures its name, protocol, optional
// model and parameters. If any configuration step fails the half-configured
// device is removed again before the error is returned.
func (c *Core) AddDevice(name, protocol, model string, parameters map[string]string) (*Device, error) {
	id, err := c.lib.AddDevice()
	if err != nil {
		return nil, err
	}
	device := &Device{id: id, lib: c.lib}
	if err := c.configure(device, name, protocol, model, parameters); err != nil {
		// Best effort; the original error is the one that matters.
		_ = device.Remove()
		return nil, err
	}
	return device, nil
}

func (c *Core) configure(device *Device, name, protocol, model string, parameters map[string]string) error {
	if err := device.SetName(name); err != nil {
		return err
	}
	if err := device.SetProtocol(protocol); err != nil {
		return err
	}
	if model != "" {
		if err := device.SetModel(model); err != nil {
			return err
		}
	}
	for key, value := range parameters {
		if err := device.SetParameter(key, value); err != nil {
			return err
		}
	}
	return nil
}

// SendRawCommand sends a raw protocol string through the first available
// controller.
func (c *Core) SendRawCommand(command string) error {
	return c.lib.SendRawCommand(command, 0)
}

// ConnectController manually attaches a TellStick known by vid/pid/serial.
func (c *Core) ConnectController(vid, pid int, serial string) error {
	return c.lib.ConnectController(vid, pid, serial)
}

// DisconnectController detaches a manually attached TellStick.
func (c *Core) DisconnectController(vid, pid int, serial string) error {
	return c.lib.DisconnectController(vid, pid, serial)
}

// RegisterDeviceEvent registers cb for device command events.
func (c *Core) RegisterDeviceEvent(cb tellcore.DeviceEventFunc) (int, error) {
	return c.lib.RegisterDeviceEvent(cb)
}

// RegisterDeviceChangeEvent registers cb for device add/change/remove events.
func (c *Core) RegisterDeviceChangeEvent(cb tellcore.DeviceChangeEventFunc) (int, error) {
	return c.lib.RegisterDeviceChangeEvent(cb)
}

// RegisterRawDeviceEvent registers cb for raw controller data.
func (c *Core) RegisterRawDeviceEvent(cb tellcore.RawDeviceEventFunc) (int, error) {
	return c.lib.RegisterRawDeviceEvent(cb)
}

// RegisterSensorEvent registers cb for sensor value reports.
func (c *Core) RegisterSensorEvent(cb tellcore.SensorEventFunc) (int, error) {
	return c.lib.RegisterSensorEvent(cb)
}

// RegisterControllerEvent registers cb for controller state changes.
func (c *Core) RegisterControllerEvent(cb tellcore.ControllerEventFunc) (int, error) {
	return c.lib.RegisterControllerEvent(cb)
}

// UnregisterCallback removes a registration made through any of the
// Register methods.
func (c *Core) UnregisterCallback(id int) error {
	return c.lib.UnregisterCallback(id)
}
