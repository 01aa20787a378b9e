package tellcore

import "sync"

// Consumer callback signatures for the five native event kinds. The
// arguments mirror the native callback parameters minus the trailing
// always-null context pointer; callbackID is the registration id the event
// was delivered for. String arguments are decoded copies, valid forever.
type (
	// DeviceEventFunc receives command events for configured devices.
	DeviceEventFunc func(deviceID int, method Method, data string, callbackID int)

	// DeviceChangeEventFunc receives add/change/remove events for devices.
	DeviceChangeEventFunc func(deviceID int, event DeviceChange, change ChangeType, callbackID int)

	// RawDeviceEventFunc receives undecoded protocol data from controllers.
	RawDeviceEventFunc func(data string, controllerID int, callbackID int)

	// SensorEventFunc receives sensor value reports.
	SensorEventFunc func(protocol, model string, sensorID int, dataType SensorDataType, value string, timestamp int64, callbackID int)

	// ControllerEventFunc receives controller state and value changes.
	ControllerEventFunc func(controllerID int, event DeviceChange, change ChangeType, newValue string, callbackID int)
)

// callbackBridge owns every callback registration of the current generation.
// It maps native-assigned registration ids to consumer callbacks, receives
// invocations on the native callback thread through per-registration thunks,
// and redelivers them through the single active dispatcher.
//
// The thunks handed to the native library stay callable for the lifetime of
// the process (they are never unmapped), so a late native invocation after
// unregistration degrades to a silently dropped event instead of undefined
// behaviour.
type callbackBridge struct {
	sess *session

	mu         sync.Mutex
	dispatcher Dispatcher
	callbacks  map[int]any
	logger     Logger
}

func newCallbackBridge(s *session) *callbackBridge {
	return &callbackBridge{sess: s, callbacks: make(map[int]any)}
}

// installDispatcher sets the generation's dispatch strategy. Installing a
// second, different dispatcher while one is active is a programming error
// and panics; re-supplying the already active dispatcher is allowed so that
// additional Library instances can share it.
func (b *callbackBridge) installDispatcher(d Dispatcher) {
	if d == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dispatcher != nil && b.dispatcher != d {
		panic("tellcore: a callback dispatcher is already active for this library generation")
	}
	b.dispatcher = d
}

func (b *callbackBridge) setLogger(log Logger) {
	b.mu.Lock()
	b.logger = log
	b.mu.Unlock()
}

func (b *callbackBridge) getLogger() Logger {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logger
}

// deliver runs on the native callback thread. It resolves the registration
// and hands a panic-safe invocation to the active dispatcher. Unknown ids
// are dropped silently: the event raced with a concurrent unregistration,
// which is expected, not an error.
func (b *callbackBridge) deliver(id int, invoke func(cb any)) {
	b.mu.Lock()
	cb, ok := b.callbacks[id]
	d := b.dispatcher
	log := b.logger
	b.mu.Unlock()

	if !ok || d == nil {
		return
	}
	d.Dispatch(func() {
		// A consumer callback failure must never propagate into the
		// native callback thread or break the dispatch loop.
		defer func() {
			if r := recover(); r != nil && log != nil {
				log.Error("event callback panicked", "callback_id", id, "panic", r)
			}
		}()
		invoke(cb)
	})
}

func (b *callbackBridge) registerDeviceEvent(cb DeviceEventFunc) (int, error) {
	reg := b.sess.funcs.tdRegisterDeviceEvent
	if reg == nil {
		return 0, notSupported("tdRegisterDeviceEvent")
	}
	thunk := deviceEventThunk(func(deviceID, method int32, data uintptr, callbackID int32, _ uintptr) uintptr {
		text := goString(data)
		b.deliver(int(callbackID), func(cb any) {
			if fn, ok := cb.(DeviceEventFunc); ok {
				fn(int(deviceID), Method(method), text, int(callbackID))
			}
		})
		return 0
	})
	return b.finishRegister(func() int32 { return reg(thunk, 0) }, cb)
}

func (b *callbackBridge) registerDeviceChangeEvent(cb DeviceChangeEventFunc) (int, error) {
	reg := b.sess.funcs.tdRegisterDeviceChangeEvent
	if reg == nil {
		return 0, notSupported("tdRegisterDeviceChangeEvent")
	}
	thunk := deviceChangeEventThunk(func(deviceID, changeEvent, changeType, callbackID int32, _ uintptr) uintptr {
		b.deliver(int(callbackID), func(cb any) {
			if fn, ok := cb.(DeviceChangeEventFunc); ok {
				fn(int(deviceID), DeviceChange(changeEvent), ChangeType(changeType), int(callbackID))
			}
		})
		return 0
	})
	return b.finishRegister(func() int32 { return reg(thunk, 0) }, cb)
}

func (b *callbackBridge) registerRawDeviceEvent(cb RawDeviceEventFunc) (int, error) {
	reg := b.sess.funcs.tdRegisterRawDeviceEvent
	if reg == nil {
		return 0, notSupported("tdRegisterRawDeviceEvent")
	}
	thunk := rawDeviceEventThunk(func(data uintptr, controllerID, callbackID int32, _ uintptr) uintptr {
		text := goString(data)
		b.deliver(int(callbackID), func(cb any) {
			if fn, ok := cb.(RawDeviceEventFunc); ok {
				fn(text, int(controllerID), int(callbackID))
			}
		})
		return 0
	})
	return b.finishRegister(func() int32 { return reg(thunk, 0) }, cb)
}

func (b *callbackBridge) registerSensorEvent(cb SensorEventFunc) (int, error) {
	reg := b.sess.funcs.tdRegisterSensorEvent
	if reg == nil {
		return 0, notSupported("tdRegisterSensorEvent")
	}
	thunk := sensorEventThunk(func(protocol, model uintptr, sensorID, dataType int32, value uintptr, timestamp, callbackID int32, _ uintptr) uintptr {
		proto := goString(protocol)
		mod := goString(model)
		val := goString(value)
		b.deliver(int(callbackID), func(cb any) {
			if fn, ok := cb.(SensorEventFunc); ok {
				fn(proto, mod, int(sensorID), SensorDataType(dataType), val, int64(timestamp), int(callbackID))
			}
		})
		return 0
	})
	return b.finishRegister(func() int32 { return reg(thunk, 0) }, cb)
}

func (b *callbackBridge) registerControllerEvent(cb ControllerEventFunc) (int, error) {
	reg := b.sess.funcs.tdRegisterControllerEvent
	if reg == nil {
		return 0, notSupported("tdRegisterControllerEvent")
	}
	thunk := controllerEventThunk(func(controllerID, changeEvent, changeType int32, newValue uintptr, callbackID int32, _ uintptr) uintptr {
		text := goString(newValue)
		b.deliver(int(callbackID), func(cb any) {
			if fn, ok := cb.(ControllerEventFunc); ok {
				fn(int(controllerID), DeviceChange(changeEvent), ChangeType(changeType), text, int(callbackID))
			}
		})
		return 0
	})
	return b.finishRegister(func() int32 { return reg(thunk, 0) }, cb)
}

// finishRegister performs the native registration and records the id→callback
// mapping atomically with respect to concurrent register/unregister calls.
func (b *callbackBridge) finishRegister(register func() int32, cb any) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := register()
	if id < 0 {
		return 0, b.sess.callError(ErrorCode(id))
	}
	b.callbacks[int(id)] = cb
	return int(id), nil
}

// unregister removes the registration. The local mapping removal always
// happens first, so repeated cleanup attempts are idempotent even when the
// native call fails. Unknown ids are a no-op.
func (b *callbackBridge) unregister(id int) error {
	b.mu.Lock()
	_, known := b.callbacks[id]
	delete(b.callbacks, id)
	b.mu.Unlock()

	if !known {
		return nil
	}
	f := b.sess.funcs.tdUnregisterCallback
	if f == nil {
		return notSupported("tdUnregisterCallback")
	}
	if code := f(int32(id)); code < 0 {
		return b.sess.callError(ErrorCode(code))
	}
	return nil
}

// unregisterAll removes every live registration, best-effort. Native-side
// failures during teardown are logged and swallowed; the local bookkeeping
// is cleared regardless.
func (b *callbackBridge) unregisterAll() {
	b.mu.Lock()
	ids := make([]int, 0, len(b.callbacks))
	for id := range b.callbacks {
		ids = append(ids, id)
	}
	b.mu.Unlock()

	for _, id := range ids {
		if err := b.unregister(id); err != nil {
			if log := b.getLogger(); log != nil {
				log.Warn("unregistering callback during teardown failed", "callback_id", id, "error", err)
			}
		}
	}
}

// registrationCount reports the number of live registrations.
func (b *callbackBridge) registrationCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.callbacks)
}
