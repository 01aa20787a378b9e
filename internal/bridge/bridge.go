package bridge

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/tellstick-core/internal/infrastructure/logging"
	"github.com/nerrad567/tellstick-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/tellstick-core/internal/tellcore"
	"github.com/nerrad567/tellstick-core/internal/telldus"
)

// defaultDrainInterval is how often the drain loop flushes queued events
// when no interval is configured.
const defaultDrainInterval = 100 * time.Millisecond

// maxDimLevel is the highest dim level the native library accepts.
const maxDimLevel = 255

// ErrAlreadyStarted indicates Start was called on a running bridge.
var ErrAlreadyStarted = errors.New("bridge: already started")

// Publisher is the MQTT surface the bridge needs.
// *mqtt.Client satisfies it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// commander is the subset of device operations reachable over MQTT.
type commander interface {
	TurnOn() error
	TurnOff() error
	Bell() error
	Dim(level uint8) error
	Execute() error
	Up() error
	Down() error
	Stop() error
	Learn() error
}

// stick abstracts the telldus core so tests can substitute a fake.
type stick interface {
	RegisterDeviceEvent(cb tellcore.DeviceEventFunc) (int, error)
	RegisterDeviceChangeEvent(cb tellcore.DeviceChangeEventFunc) (int, error)
	RegisterRawDeviceEvent(cb tellcore.RawDeviceEventFunc) (int, error)
	RegisterSensorEvent(cb tellcore.SensorEventFunc) (int, error)
	RegisterControllerEvent(cb tellcore.ControllerEventFunc) (int, error)
	UnregisterCallback(id int) error
	ProcessPendingEvents() int
	Device(deviceID int) commander
}

// coreStick adapts *telldus.Core to the stick interface.
type coreStick struct{ c *telldus.Core }

func (s coreStick) RegisterDeviceEvent(cb tellcore.DeviceEventFunc) (int, error) {
	return s.c.RegisterDeviceEvent(cb)
}

func (s coreStick) RegisterDeviceChangeEvent(cb tellcore.DeviceChangeEventFunc) (int, error) {
	return s.c.RegisterDeviceChangeEvent(cb)
}

func (s coreStick) RegisterRawDeviceEvent(cb tellcore.RawDeviceEventFunc) (int, error) {
	return s.c.RegisterRawDeviceEvent(cb)
}

func (s coreStick) RegisterSensorEvent(cb tellcore.SensorEventFunc) (int, error) {
	return s.c.RegisterSensorEvent(cb)
}

func (s coreStick) RegisterControllerEvent(cb tellcore.ControllerEventFunc) (int, error) {
	return s.c.RegisterControllerEvent(cb)
}

func (s coreStick) UnregisterCallback(id int) error { return s.c.UnregisterCallback(id) }

func (s coreStick) ProcessPendingEvents() int { return s.c.ProcessPendingEvents() }

func (s coreStick) Device(deviceID int) commander { return s.c.Device(deviceID) }

// Options configures optional bridge behaviour.
type Options struct {
	// QoS applied to published events and the command subscription.
	QoS byte

	// DrainInterval is how often queued events are flushed to MQTT.
	// Defaults to 100ms.
	DrainInterval time.Duration

	// OnDeviceEvent, if set, observes device events after they are published.
	OnDeviceEvent func(deviceID int, method tellcore.Method, data string)

	// OnSensorValue, if set, observes sensor events after they are published.
	OnSensorValue func(protocol, model string, sensorID int, kind, value string, timestamp int64)
}

// Bridge relays TellStick events to MQTT and MQTT commands to devices.
//
// All native events flow through the core's queued dispatcher and are
// drained on a single goroutine, so publish order matches emission order
// per registration.
type Bridge struct {
	stick  stick
	pub    Publisher
	log    *logging.Logger
	topics mqtt.Topics

	qos           byte
	drainInterval time.Duration
	onDeviceEvent func(deviceID int, method tellcore.Method, data string)
	onSensorValue func(protocol, model string, sensorID int, kind, value string, timestamp int64)

	mu          sync.Mutex
	started     bool
	callbackIDs []int
	stop        chan struct{}
	wg          sync.WaitGroup
}

// New creates a bridge over the given core and MQTT client.
// Call Start to begin relaying events.
func New(core *telldus.Core, pub Publisher, log *logging.Logger, opts Options) *Bridge {
	return newBridge(coreStick{core}, pub, log, opts)
}

func newBridge(s stick, pub Publisher, log *logging.Logger, opts Options) *Bridge {
	interval := opts.DrainInterval
	if interval <= 0 {
		interval = defaultDrainInterval
	}
	return &Bridge{
		stick:         s,
		pub:           pub,
		log:           log,
		qos:           opts.QoS,
		drainInterval: interval,
		onDeviceEvent: opts.OnDeviceEvent,
		onSensorValue: opts.OnSensorValue,
	}
}

// Start registers the native callbacks, subscribes to the command topic
// and launches the drain loop. Safe to call once per bridge.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return ErrAlreadyStarted
	}

	if err := b.registerLocked(); err != nil {
		b.unregisterLocked()
		return err
	}

	if err := b.pub.Subscribe(b.topics.AllDeviceCommands(), b.qos, b.handleCommand); err != nil {
		b.unregisterLocked()
		return fmt.Errorf("bridge: subscribing to commands: %w", err)
	}

	b.stop = make(chan struct{})
	b.wg.Add(1)
	go b.drainLoop()

	b.started = true
	b.log.Info("event bridge started",
		"drain_interval", b.drainInterval.String(),
		"command_topic", b.topics.AllDeviceCommands(),
	)
	return nil
}

// Close stops the drain loop, removes the command subscription and
// unregisters all native callbacks. Safe to call on a stopped bridge.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if !b.started {
		b.mu.Unlock()
		return nil
	}
	b.started = false
	close(b.stop)
	b.mu.Unlock()

	b.wg.Wait()

	if err := b.pub.Unsubscribe(b.topics.AllDeviceCommands()); err != nil {
		b.log.Warn("unsubscribing command topic", "error", err)
	}

	b.mu.Lock()
	b.unregisterLocked()
	b.mu.Unlock()

	// Flush anything still queued so no event is lost on shutdown.
	b.stick.ProcessPendingEvents()

	b.log.Info("event bridge stopped")
	return nil
}

// registerLocked registers all five event kinds. Caller holds b.mu.
func (b *Bridge) registerLocked() error {
	registrations := []func() (int, error){
		func() (int, error) { return b.stick.RegisterDeviceEvent(b.handleDeviceEvent) },
		func() (int, error) { return b.stick.RegisterDeviceChangeEvent(b.handleDeviceChangeEvent) },
		func() (int, error) { return b.stick.RegisterRawDeviceEvent(b.handleRawDeviceEvent) },
		func() (int, error) { return b.stick.RegisterSensorEvent(b.handleSensorEvent) },
		func() (int, error) { return b.stick.RegisterControllerEvent(b.handleControllerEvent) },
	}

	for _, register := range registrations {
		id, err := register()
		if err != nil {
			return fmt.Errorf("bridge: registering event callback: %w", err)
		}
		b.callbackIDs = append(b.callbackIDs, id)
	}
	return nil
}

// unregisterLocked removes all registered callbacks. Caller holds b.mu.
func (b *Bridge) unregisterLocked() {
	for _, id := range b.callbackIDs {
		if err := b.stick.UnregisterCallback(id); err != nil {
			b.log.Warn("unregistering event callback", "callback_id", id, "error", err)
		}
	}
	b.callbackIDs = nil
}

// drainLoop periodically flushes the queued dispatcher so native events
// reach MQTT on a single, well-known goroutine.
func (b *Bridge) drainLoop() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.drainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			b.stick.ProcessPendingEvents()
		}
	}
}

// handleCommand executes a device command received over MQTT.
//
// Topic layout: tellstick/command/device/{id}/{action}. The dim action
// reads the level (0-255) from the payload.
func (b *Bridge) handleCommand(topic string, payload []byte) error {
	const topicParts = 5

	parts := strings.Split(topic, "/")
	if len(parts) != topicParts {
		return fmt.Errorf("bridge: malformed command topic %q", topic)
	}

	deviceID, err := strconv.Atoi(parts[3])
	if err != nil {
		return fmt.Errorf("bridge: invalid device id in topic %q: %w", topic, err)
	}

	action := parts[4]
	device := b.stick.Device(deviceID)

	b.log.Debug("executing device command", "device_id", deviceID, "action", action)

	switch action {
	case "turnon":
		return device.TurnOn()
	case "turnoff":
		return device.TurnOff()
	case "dim":
		level, err := strconv.Atoi(strings.TrimSpace(string(payload)))
		if err != nil || level < 0 || level > maxDimLevel {
			return fmt.Errorf("bridge: invalid dim level %q", payload)
		}
		return device.Dim(uint8(level))
	case "bell":
		return device.Bell()
	case "execute":
		return device.Execute()
	case "up":
		return device.Up()
	case "down":
		return device.Down()
	case "stop":
		return device.Stop()
	case "learn":
		return device.Learn()
	default:
		return fmt.Errorf("bridge: unknown command %q", action)
	}
}
