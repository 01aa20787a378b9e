package tellcore

import "unsafe"

// Native callback signatures. telldus-core invokes these on its own callback
// thread; every signature ends with (callback id, context) where the context
// is always null. String parameters arrive as raw C pointers that are only
// valid for the duration of the invocation.
type (
	deviceEventThunk       func(deviceID, method int32, data uintptr, callbackID int32, context uintptr) uintptr
	deviceChangeEventThunk func(deviceID, changeEvent, changeType, callbackID int32, context uintptr) uintptr
	rawDeviceEventThunk    func(data uintptr, controllerID, callbackID int32, context uintptr) uintptr
	sensorEventThunk       func(protocol, model uintptr, sensorID, dataType int32, value uintptr, timestamp, callbackID int32, context uintptr) uintptr
	controllerEventThunk   func(controllerID, changeEvent, changeType int32, newValue uintptr, callbackID int32, context uintptr) uintptr
)

// symbolBinder resolves a named entry point in a loaded native module and, if
// present, populates fn (a pointer to a typed function value) with a callable
// binding. It reports whether the symbol was found. The production binder is
// backed by purego; tests substitute an in-process mock.
type symbolBinder interface {
	bind(name string, fn any) bool
}

// functionTable holds one typed function pointer per telldus-core entry
// point. Fields are populated once at load time and never mutated afterwards;
// a nil field means the loaded library version does not export that symbol
// and calls through it fail with ErrNotSupported.
//
// The field types are the wire contract with the native ABI: argument order,
// width and return kind must match the telldus-core C declarations exactly.
type functionTable struct {
	tdInit           func()
	tdClose          func()
	tdReleaseString  func(uintptr)
	tdGetErrorString func(int32) uintptr

	tdRegisterDeviceEvent       func(deviceEventThunk, uintptr) int32
	tdRegisterDeviceChangeEvent func(deviceChangeEventThunk, uintptr) int32
	tdRegisterRawDeviceEvent    func(rawDeviceEventThunk, uintptr) int32
	tdRegisterSensorEvent       func(sensorEventThunk, uintptr) int32
	tdRegisterControllerEvent   func(controllerEventThunk, uintptr) int32
	tdUnregisterCallback        func(int32) int32

	tdTurnOn          func(int32) int32
	tdTurnOff         func(int32) int32
	tdBell            func(int32) int32
	tdDim             func(int32, uint8) int32
	tdExecute         func(int32) int32
	tdUp              func(int32) int32
	tdDown            func(int32) int32
	tdStop            func(int32) int32
	tdLearn           func(int32) int32
	tdMethods         func(int32, int32) int32
	tdLastSentCommand func(int32, int32) int32
	tdLastSentValue   func(int32) uintptr

	tdGetNumberOfDevices func() int32
	tdGetDeviceId        func(int32) int32
	tdGetDeviceType      func(int32) int32

	tdGetName     func(int32) uintptr
	tdSetName     func(int32, string) bool
	tdGetProtocol func(int32) uintptr
	tdSetProtocol func(int32, string) bool
	tdGetModel    func(int32) uintptr
	tdSetModel    func(int32, string) bool

	tdGetDeviceParameter func(int32, string, string) uintptr
	tdSetDeviceParameter func(int32, string, string) bool

	tdAddDevice    func() int32
	tdRemoveDevice func(int32) bool

	tdSendRawCommand func(string, int32) int32

	tdConnectTellStickController    func(int32, int32, string)
	tdDisconnectTellStickController func(int32, int32, string)

	tdSensor      func(protocol unsafe.Pointer, protocolLen int32, model unsafe.Pointer, modelLen int32, id unsafe.Pointer, dataTypes unsafe.Pointer) int32
	tdSensorValue func(protocol string, model string, id int32, dataType int32, value unsafe.Pointer, valueLen int32, timestamp unsafe.Pointer) int32

	tdController         func(id unsafe.Pointer, controllerType unsafe.Pointer, name unsafe.Pointer, nameLen int32, available unsafe.Pointer) int32
	tdControllerValue    func(id int32, name string, value unsafe.Pointer, valueLen int32) int32
	tdSetControllerValue func(int32, string, string) int32
	tdRemoveController   func(int32) int32
}

// bindAll resolves every entry point against the loaded module. Symbols
// missing from older telldus-core versions are skipped silently; the
// corresponding calls fail later with ErrNotSupported.
func (t *functionTable) bindAll(b symbolBinder) {
	b.bind("tdInit", &t.tdInit)
	b.bind("tdClose", &t.tdClose)
	b.bind("tdReleaseString", &t.tdReleaseString)
	b.bind("tdGetErrorString", &t.tdGetErrorString)

	b.bind("tdRegisterDeviceEvent", &t.tdRegisterDeviceEvent)
	b.bind("tdRegisterDeviceChangeEvent", &t.tdRegisterDeviceChangeEvent)
	b.bind("tdRegisterRawDeviceEvent", &t.tdRegisterRawDeviceEvent)
	b.bind("tdRegisterSensorEvent", &t.tdRegisterSensorEvent)
	b.bind("tdRegisterControllerEvent", &t.tdRegisterControllerEvent)
	b.bind("tdUnregisterCallback", &t.tdUnregisterCallback)

	b.bind("tdTurnOn", &t.tdTurnOn)
	b.bind("tdTurnOff", &t.tdTurnOff)
	b.bind("tdBell", &t.tdBell)
	b.bind("tdDim", &t.tdDim)
	b.bind("tdExecute", &t.tdExecute)
	b.bind("tdUp", &t.tdUp)
	b.bind("tdDown", &t.tdDown)
	b.bind("tdStop", &t.tdStop)
	b.bind("tdLearn", &t.tdLearn)
	b.bind("tdMethods", &t.tdMethods)
	b.bind("tdLastSentCommand", &t.tdLastSentCommand)
	b.bind("tdLastSentValue", &t.tdLastSentValue)

	b.bind("tdGetNumberOfDevices", &t.tdGetNumberOfDevices)
	b.bind("tdGetDeviceId", &t.tdGetDeviceId)
	b.bind("tdGetDeviceType", &t.tdGetDeviceType)

	b.bind("tdGetName", &t.tdGetName)
	b.bind("tdSetName", &t.tdSetName)
	b.bind("tdGetProtocol", &t.tdGetProtocol)
	b.bind("tdSetProtocol", &t.tdSetProtocol)
	b.bind("tdGetModel", &t.tdGetModel)
	b.bind("tdSetModel", &t.tdSetModel)

	b.bind("tdGetDeviceParameter", &t.tdGetDeviceParameter)
	b.bind("tdSetDeviceParameter", &t.tdSetDeviceParameter)

	b.bind("tdAddDevice", &t.tdAddDevice)
	b.bind("tdRemoveDevice", &t.tdRemoveDevice)

	b.bind("tdSendRawCommand", &t.tdSendRawCommand)

	b.bind("tdConnectTellStickController", &t.tdConnectTellStickController)
	b.bind("tdDisconnectTellStickController", &t.tdDisconnectTellStickController)

	b.bind("tdSensor", &t.tdSensor)
	b.bind("tdSensorValue", &t.tdSensorValue)

	b.bind("tdController", &t.tdController)
	b.bind("tdControllerValue", &t.tdControllerValue)
	b.bind("tdSetControllerValue", &t.tdSetControllerValue)
	b.bind("tdRemoveController", &t.tdRemoveController)
}
