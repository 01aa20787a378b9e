package tellcore

import (
	"sync"
	"unsafe"
)

// Option configures a Library at construction time.
type Option func(*options)

type options struct {
	moduleName string
	dispatcher Dispatcher
	logger     Logger
}

// WithModule overrides the platform default module name with an explicit
// shared library name or absolute path.
func WithModule(nameOrPath string) Option {
	return func(o *options) { o.moduleName = nameOrPath }
}

// WithDispatcher installs the callback dispatch strategy for the library
// generation this instance joins. Required before registering callbacks.
// Only one dispatcher may be active per generation; supplying a different
// one while another is active panics.
func WithDispatcher(d Dispatcher) Option {
	return func(o *options) { o.dispatcher = d }
}

// WithLogger wires a logger for dispatch and teardown diagnostics. Optional;
// without it, failures that have no caller to report to are discarded.
func WithLogger(log Logger) Option {
	return func(o *options) { o.logger = log }
}

// Library is a handle to the loaded telldus-core library. Instances are
// cheap: all of them share one underlying native session, loaded by the
// first New and shut down by the last Close.
type Library struct {
	mu   sync.Mutex
	sess *session
}

// New loads and initialises telldus-core, or joins the already loaded
// session when one exists. Fails with ErrLoadFailed (wrapped) when the
// native module cannot be located or loaded.
func New(opts ...Option) (*Library, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s, err := acquire(o.moduleName)
	if err != nil {
		return nil, err
	}
	if o.logger != nil {
		s.bridge.setLogger(o.logger)
	}
	if o.dispatcher != nil {
		if err := installOrRelease(s, o.dispatcher); err != nil {
			return nil, err
		}
	}
	return &Library{sess: s}, nil
}

// installOrRelease installs the dispatcher, giving back the acquired
// reference before re-panicking on a contract violation so the session is
// not leaked by the failed constructor.
func installOrRelease(s *session, d Dispatcher) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.release()
			panic(r)
		}
	}()
	s.bridge.installDispatcher(d)
	return nil
}

// Close releases this instance's reference to the native session. When it is
// the last live instance, any remaining callback registrations are removed
// and the native library is closed; a subsequent New starts a fresh
// generation. Closing the same Library twice is a programming error and
// panics.
func (l *Library) Close() {
	l.mu.Lock()
	s := l.sess
	l.sess = nil
	l.mu.Unlock()

	if s == nil {
		panic("tellcore: Library closed twice")
	}
	s.release()
}

// session returns the live session or ErrClosed.
func (l *Library) session() (*session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sess == nil {
		return nil, ErrClosed
	}
	return l.sess, nil
}

// checkResult applies the integer error policy: any negative native result
// becomes a CallError carrying that exact code.
func (s *session) checkResult(code int32) error {
	if code < 0 {
		return s.callError(ErrorCode(code))
	}
	return nil
}

// checkBool applies the boolean error policy. The native API has no distinct
// code for boolean failures, so the canonical device-not-found code is used.
func (s *session) checkBool(ok bool) error {
	if !ok {
		return s.callError(CodeDeviceNotFound)
	}
	return nil
}

// SensorInfo identifies one sensor while enumerating with Sensor().
type SensorInfo struct {
	Protocol  string
	Model     string
	ID        int
	DataTypes SensorDataType
}

// SensorReading is one sensor value with its native unix timestamp.
type SensorReading struct {
	Value     string
	Timestamp int64
}

// ControllerInfo identifies one controller while enumerating with Controller().
type ControllerInfo struct {
	ID        int
	Type      ControllerType
	Name      string
	Available bool
}

// Device commands. Each maps 1:1 onto the native call of the same name and
// fails with a CallError on any negative native result, or ErrNotSupported
// when the loaded library predates the entry point.

func (l *Library) TurnOn(deviceID int) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	f := s.funcs.tdTurnOn
	if f == nil {
		return notSupported("tdTurnOn")
	}
	return s.checkResult(f(int32(deviceID)))
}

func (l *Library) TurnOff(deviceID int) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	f := s.funcs.tdTurnOff
	if f == nil {
		return notSupported("tdTurnOff")
	}
	return s.checkResult(f(int32(deviceID)))
}

func (l *Library) Bell(deviceID int) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	f := s.funcs.tdBell
	if f == nil {
		return notSupported("tdBell")
	}
	return s.checkResult(f(int32(deviceID)))
}

// Dim sets a dimmer to the given level (0-255).
func (l *Library) Dim(deviceID int, level uint8) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	f := s.funcs.tdDim
	if f == nil {
		return notSupported("tdDim")
	}
	return s.checkResult(f(int32(deviceID), level))
}

func (l *Library) Execute(deviceID int) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	f := s.funcs.tdExecute
	if f == nil {
		return notSupported("tdExecute")
	}
	return s.checkResult(f(int32(deviceID)))
}

func (l *Library) Up(deviceID int) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	f := s.funcs.tdUp
	if f == nil {
		return notSupported("tdUp")
	}
	return s.checkResult(f(int32(deviceID)))
}

func (l *Library) Down(deviceID int) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	f := s.funcs.tdDown
	if f == nil {
		return notSupported("tdDown")
	}
	return s.checkResult(f(int32(deviceID)))
}

func (l *Library) Stop(deviceID int) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	f := s.funcs.tdStop
	if f == nil {
		return notSupported("tdStop")
	}
	return s.checkResult(f(int32(deviceID)))
}

func (l *Library) Learn(deviceID int) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	f := s.funcs.tdLearn
	if f == nil {
		return notSupported("tdLearn")
	}
	return s.checkResult(f(int32(deviceID)))
}

// Methods returns the subset of supported that the device implements.
func (l *Library) Methods(deviceID int, supported Method) (Method, error) {
	s, err := l.session()
	if err != nil {
		return 0, err
	}
	f := s.funcs.tdMethods
	if f == nil {
		return 0, notSupported("tdMethods")
	}
	v := f(int32(deviceID), int32(supported))
	if v < 0 {
		return 0, s.callError(ErrorCode(v))
	}
	return Method(v), nil
}

// LastSentCommand returns the last command sent to the device, restricted to
// the supported set.
func (l *Library) LastSentCommand(deviceID int, supported Method) (Method, error) {
	s, err := l.session()
	if err != nil {
		return 0, err
	}
	f := s.funcs.tdLastSentCommand
	if f == nil {
		return 0, notSupported("tdLastSentCommand")
	}
	v := f(int32(deviceID), int32(supported))
	if v < 0 {
		return 0, s.callError(ErrorCode(v))
	}
	return Method(v), nil
}

// LastSentValue returns the value of the last command sent to the device,
// e.g. the dim level.
func (l *Library) LastSentValue(deviceID int) (string, error) {
	s, err := l.session()
	if err != nil {
		return "", err
	}
	f := s.funcs.tdLastSentValue
	if f == nil {
		return "", notSupported("tdLastSentValue")
	}
	return s.takeString(f(int32(deviceID))), nil
}

// Device enumeration and configuration.

func (l *Library) DeviceCount() (int, error) {
	s, err := l.session()
	if err != nil {
		return 0, err
	}
	f := s.funcs.tdGetNumberOfDevices
	if f == nil {
		return 0, notSupported("tdGetNumberOfDevices")
	}
	v := f()
	if v < 0 {
		return 0, s.callError(ErrorCode(v))
	}
	return int(v), nil
}

// DeviceID returns the device id at the given enumeration index.
func (l *Library) DeviceID(index int) (int, error) {
	s, err := l.session()
	if err != nil {
		return 0, err
	}
	f := s.funcs.tdGetDeviceId
	if f == nil {
		return 0, notSupported("tdGetDeviceId")
	}
	v := f(int32(index))
	if v < 0 {
		return 0, s.callError(ErrorCode(v))
	}
	return int(v), nil
}

func (l *Library) DeviceType(deviceID int) (DeviceType, error) {
	s, err := l.session()
	if err != nil {
		return 0, err
	}
	f := s.funcs.tdGetDeviceType
	if f == nil {
		return 0, notSupported("tdGetDeviceType")
	}
	v := f(int32(deviceID))
	if v < 0 {
		return 0, s.callError(ErrorCode(v))
	}
	return DeviceType(v), nil
}

func (l *Library) Name(deviceID int) (string, error) {
	s, err := l.session()
	if err != nil {
		return "", err
	}
	f := s.funcs.tdGetName
	if f == nil {
		return "", notSupported("tdGetName")
	}
	return s.takeString(f(int32(deviceID))), nil
}

func (l *Library) SetName(deviceID int, name string) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	f := s.funcs.tdSetName
	if f == nil {
		return notSupported("tdSetName")
	}
	return s.checkBool(f(int32(deviceID), name))
}

func (l *Library) Protocol(deviceID int) (string, error) {
	s, err := l.session()
	if err != nil {
		return "", err
	}
	f := s.funcs.tdGetProtocol
	if f == nil {
		return "", notSupported("tdGetProtocol")
	}
	return s.takeString(f(int32(deviceID))), nil
}

func (l *Library) SetProtocol(deviceID int, protocol string) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	f := s.funcs.tdSetProtocol
	if f == nil {
		return notSupported("tdSetProtocol")
	}
	return s.checkBool(f(int32(deviceID), protocol))
}

func (l *Library) Model(deviceID int) (string, error) {
	s, err := l.session()
	if err != nil {
		return "", err
	}
	f := s.funcs.tdGetModel
	if f == nil {
		return "", notSupported("tdGetModel")
	}
	return s.takeString(f(int32(deviceID))), nil
}

func (l *Library) SetModel(deviceID int, model string) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	f := s.funcs.tdSetModel
	if f == nil {
		return notSupported("tdSetModel")
	}
	return s.checkBool(f(int32(deviceID), model))
}

// DeviceParameter returns a protocol parameter for the device, or
// defaultValue when the parameter is not set.
func (l *Library) DeviceParameter(deviceID int, name, defaultValue string) (string, error) {
	s, err := l.session()
	if err != nil {
		return "", err
	}
	f := s.funcs.tdGetDeviceParameter
	if f == nil {
		return "", notSupported("tdGetDeviceParameter")
	}
	return s.takeString(f(int32(deviceID), name, defaultValue)), nil
}

func (l *Library) SetDeviceParameter(deviceID int, name, value string) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	f := s.funcs.tdSetDeviceParameter
	if f == nil {
		return notSupported("tdSetDeviceParameter")
	}
	return s.checkBool(f(int32(deviceID), name, value))
}

// AddDevice creates a new device entry and returns its id. The device has no
// name or protocol yet; configure it before use.
func (l *Library) AddDevice() (int, error) {
	s, err := l.session()
	if err != nil {
		return 0, err
	}
	f := s.funcs.tdAddDevice
	if f == nil {
		return 0, notSupported("tdAddDevice")
	}
	v := f()
	if v < 0 {
		return 0, s.callError(ErrorCode(v))
	}
	return int(v), nil
}

func (l *Library) RemoveDevice(deviceID int) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	f := s.funcs.tdRemoveDevice
	if f == nil {
		return notSupported("tdRemoveDevice")
	}
	return s.checkBool(f(int32(deviceID)))
}

// SendRawCommand injects a raw protocol message as if a controller had
// received it. reserved is unused by the native API and normally zero.
func (l *Library) SendRawCommand(command string, reserved int) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	f := s.funcs.tdSendRawCommand
	if f == nil {
		return notSupported("tdSendRawCommand")
	}
	return s.checkResult(f(command, int32(reserved)))
}

// ConnectController tells telldus-core to start using a controller that was
// not detected automatically.
func (l *Library) ConnectController(vid, pid int, serial string) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	f := s.funcs.tdConnectTellStickController
	if f == nil {
		return notSupported("tdConnectTellStickController")
	}
	f(int32(vid), int32(pid), serial)
	return nil
}

// DisconnectController is the inverse of ConnectController.
func (l *Library) DisconnectController(vid, pid int, serial string) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	f := s.funcs.tdDisconnectTellStickController
	if f == nil {
		return notSupported("tdDisconnectTellStickController")
	}
	f(int32(vid), int32(pid), serial)
	return nil
}

// Sensor returns the next sensor while iterating. The native library keeps
// the iteration cursor; a CallError with CodeDeviceNotFound marks the end of
// the sequence.
func (l *Library) Sensor() (SensorInfo, error) {
	s, err := l.session()
	if err != nil {
		return SensorInfo{}, err
	}
	f := s.funcs.tdSensor
	if f == nil {
		return SensorInfo{}, notSupported("tdSensor")
	}

	protocol := make([]byte, sensorBufferSize)
	model := make([]byte, sensorBufferSize)
	var id, dataTypes int32

	code := f(bufPtr(protocol), int32(len(protocol)), bufPtr(model), int32(len(model)),
		unsafe.Pointer(&id), unsafe.Pointer(&dataTypes))
	if code < 0 {
		return SensorInfo{}, s.callError(ErrorCode(code))
	}
	return SensorInfo{
		Protocol:  bufString(protocol),
		Model:     bufString(model),
		ID:        int(id),
		DataTypes: SensorDataType(dataTypes),
	}, nil
}

// SensorValue reads one value type from a sensor identified by the triplet
// returned from Sensor().
func (l *Library) SensorValue(protocol, model string, sensorID int, dataType SensorDataType) (SensorReading, error) {
	s, err := l.session()
	if err != nil {
		return SensorReading{}, err
	}
	f := s.funcs.tdSensorValue
	if f == nil {
		return SensorReading{}, notSupported("tdSensorValue")
	}

	value := make([]byte, sensorBufferSize)
	var timestamp int32

	code := f(protocol, model, int32(sensorID), int32(dataType),
		bufPtr(value), int32(len(value)), unsafe.Pointer(&timestamp))
	if code < 0 {
		return SensorReading{}, s.callError(ErrorCode(code))
	}
	return SensorReading{Value: bufString(value), Timestamp: int64(timestamp)}, nil
}

// Controller returns the next controller while iterating. A CallError with
// CodeNotFound marks the end of the sequence.
func (l *Library) Controller() (ControllerInfo, error) {
	s, err := l.session()
	if err != nil {
		return ControllerInfo{}, err
	}
	f := s.funcs.tdController
	if f == nil {
		return ControllerInfo{}, notSupported("tdController")
	}

	var id, controllerType, available int32
	name := make([]byte, controllerBufferSize)

	code := f(unsafe.Pointer(&id), unsafe.Pointer(&controllerType),
		bufPtr(name), int32(len(name)), unsafe.Pointer(&available))
	if code < 0 {
		return ControllerInfo{}, s.callError(ErrorCode(code))
	}
	return ControllerInfo{
		ID:        int(id),
		Type:      ControllerType(controllerType),
		Name:      bufString(name),
		Available: available != 0,
	}, nil
}

// ControllerValue reads a named controller property, e.g. "serial" or
// "firmware".
func (l *Library) ControllerValue(controllerID int, name string) (string, error) {
	s, err := l.session()
	if err != nil {
		return "", err
	}
	f := s.funcs.tdControllerValue
	if f == nil {
		return "", notSupported("tdControllerValue")
	}

	value := make([]byte, controllerBufferSize)
	code := f(int32(controllerID), name, bufPtr(value), int32(len(value)))
	if code < 0 {
		return "", s.callError(ErrorCode(code))
	}
	return bufString(value), nil
}

// SetControllerValue writes a named controller property.
func (l *Library) SetControllerValue(controllerID int, name, value string) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	f := s.funcs.tdSetControllerValue
	if f == nil {
		return notSupported("tdSetControllerValue")
	}
	return s.checkResult(f(int32(controllerID), name, value))
}

// RemoveController removes a controller that is not currently connected.
func (l *Library) RemoveController(controllerID int) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	f := s.funcs.tdRemoveController
	if f == nil {
		return notSupported("tdRemoveController")
	}
	return s.checkResult(f(int32(controllerID)))
}

// ErrorString returns the native human-readable description for a result
// code.
func (l *Library) ErrorString(code ErrorCode) (string, error) {
	s, err := l.session()
	if err != nil {
		return "", err
	}
	if s.funcs.tdGetErrorString == nil {
		return "", notSupported("tdGetErrorString")
	}
	return s.errorString(code), nil
}

// Callback registration. Each call creates a stable native-callable thunk
// for the registration's lifetime and returns the native-assigned id used
// for correlation and unregistration.

func (l *Library) RegisterDeviceEvent(cb DeviceEventFunc) (int, error) {
	s, err := l.session()
	if err != nil {
		return 0, err
	}
	return s.bridge.registerDeviceEvent(cb)
}

func (l *Library) RegisterDeviceChangeEvent(cb DeviceChangeEventFunc) (int, error) {
	s, err := l.session()
	if err != nil {
		return 0, err
	}
	return s.bridge.registerDeviceChangeEvent(cb)
}

func (l *Library) RegisterRawDeviceEvent(cb RawDeviceEventFunc) (int, error) {
	s, err := l.session()
	if err != nil {
		return 0, err
	}
	return s.bridge.registerRawDeviceEvent(cb)
}

func (l *Library) RegisterSensorEvent(cb SensorEventFunc) (int, error) {
	s, err := l.session()
	if err != nil {
		return 0, err
	}
	return s.bridge.registerSensorEvent(cb)
}

func (l *Library) RegisterControllerEvent(cb ControllerEventFunc) (int, error) {
	s, err := l.session()
	if err != nil {
		return 0, err
	}
	return s.bridge.registerControllerEvent(cb)
}

// UnregisterCallback removes a registration by id. Unknown ids are a no-op.
func (l *Library) UnregisterCallback(id int) error {
	s, err := l.session()
	if err != nil {
		return err
	}
	return s.bridge.unregister(id)
}

// Registrations reports the number of live callback registrations in the
// current generation.
func (l *Library) Registrations() (int, error) {
	s, err := l.session()
	if err != nil {
		return 0, err
	}
	return s.bridge.registrationCount(), nil
}
