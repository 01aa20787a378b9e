package tellcore

import (
	"reflect"
	"runtime"
	"sync"
	"testing"
	"unsafe"
)

// mockModule is an in-process stand-in for telldus-core. Tests assign typed
// function implementations by entry point name; names without an
// implementation behave like symbols missing from an old library version.
type mockModule struct {
	impls map[string]any
}

func newMockModule() *mockModule {
	m := &mockModule{impls: map[string]any{}}
	m.set("tdInit", func() {})
	m.set("tdClose", func() {})
	m.set("tdReleaseString", func(uintptr) {})
	m.set("tdGetErrorString", func(int32) uintptr { return 0 })
	return m
}

func (m *mockModule) set(name string, impl any) { m.impls[name] = impl }

func (m *mockModule) remove(name string) { delete(m.impls, name) }

// bind implements symbolBinder. The implementation's type must match the
// function table field exactly, like a real symbol must match the ABI.
func (m *mockModule) bind(name string, fn any) bool {
	impl, ok := m.impls[name]
	if !ok {
		return false
	}
	reflect.ValueOf(fn).Elem().Set(reflect.ValueOf(impl))
	return true
}

// mockLoader stands in for the platform module loader and counts how many
// generations have been started.
type mockLoader struct {
	mu          sync.Mutex
	loadCount   int
	unloadCount int
	module      *mockModule
}

func newMockLoader(m *mockModule) *mockLoader {
	return &mockLoader{module: m}
}

func (ld *mockLoader) load(string) (symbolBinder, func() error, error) {
	ld.mu.Lock()
	ld.loadCount++
	ld.mu.Unlock()
	return ld.module, func() error {
		ld.mu.Lock()
		ld.unloadCount++
		ld.mu.Unlock()
		return nil
	}, nil
}

func (ld *mockLoader) loads() int {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.loadCount
}

// install routes module loading through the mock for the duration of the
// test, and guarantees a clean process-wide state afterwards.
func (ld *mockLoader) install(t *testing.T) {
	t.Helper()
	prev := openNativeModule
	openNativeModule = ld.load
	t.Cleanup(func() {
		openNativeModule = prev
		sessionMu.Lock()
		current = nil
		sessionMu.Unlock()
	})
}

// cstr is a NUL-terminated byte buffer posing as a native-owned C string.
type cstr struct{ buf []byte }

func newCString(s string) *cstr {
	return &cstr{buf: append([]byte(s), 0)}
}

func (c *cstr) ptr() uintptr {
	return uintptr(unsafe.Pointer(&c.buf[0]))
}

// writeBuf fills a native out-buffer with a NUL-terminated string, the way
// telldus-core fills its fixed-size output parameters.
func writeBuf(p unsafe.Pointer, size int32, s string) {
	buf := unsafe.Slice((*byte)(p), int(size))
	n := copy(buf, s)
	if n < len(buf) {
		buf[n] = 0
	}
}

// putInt32 writes an int32 out-parameter.
func putInt32(p unsafe.Pointer, v int32) {
	*(*int32)(p) = v
}

// mockEventDispatcher simulates the native callback thread: one goroutine
// that owns the thunks handed to the registration entry points and invokes
// them for triggered events. Trigger methods queue one invocation per
// matching registration and wait until the queue drains, giving tests a
// deterministic deliver-and-wait primitive.
type mockEventDispatcher struct {
	mu     sync.Mutex
	nextID int32
	thunks map[int32]any
	kinds  map[string][]int32

	events chan func()
	done   chan struct{}
}

func newMockEventDispatcher(m *mockModule) *mockEventDispatcher {
	d := &mockEventDispatcher{
		nextID: 1,
		thunks: make(map[int32]any),
		kinds:  make(map[string][]int32),
		events: make(chan func(), 64),
		done:   make(chan struct{}),
	}
	d.setupModule(m)
	go d.run()
	return d
}

func (d *mockEventDispatcher) run() {
	for fn := range d.events {
		fn()
	}
	close(d.done)
}

func (d *mockEventDispatcher) stop() {
	close(d.events)
	<-d.done
}

func (d *mockEventDispatcher) add(kind string, thunk any) int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.thunks[id] = thunk
	d.kinds[kind] = append(d.kinds[kind], id)
	return id
}

// registered reports the ids the native side still considers registered.
func (d *mockEventDispatcher) registered() []int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]int32, 0, len(d.thunks))
	for id := range d.thunks {
		ids = append(ids, id)
	}
	return ids
}

func (d *mockEventDispatcher) setupModule(m *mockModule) {
	m.set("tdRegisterDeviceEvent", func(thunk deviceEventThunk, _ uintptr) int32 {
		return d.add("device", thunk)
	})
	m.set("tdRegisterDeviceChangeEvent", func(thunk deviceChangeEventThunk, _ uintptr) int32 {
		return d.add("device-change", thunk)
	})
	m.set("tdRegisterRawDeviceEvent", func(thunk rawDeviceEventThunk, _ uintptr) int32 {
		return d.add("raw-device", thunk)
	})
	m.set("tdRegisterSensorEvent", func(thunk sensorEventThunk, _ uintptr) int32 {
		return d.add("sensor", thunk)
	})
	m.set("tdRegisterControllerEvent", func(thunk controllerEventThunk, _ uintptr) int32 {
		return d.add("controller", thunk)
	})
	m.set("tdUnregisterCallback", func(id int32) int32 {
		d.mu.Lock()
		delete(d.thunks, id)
		d.mu.Unlock()
		return int32(CodeSuccess)
	})
}

// snapshot returns the live thunks for a kind in registration order.
func (d *mockEventDispatcher) snapshot(kind string) []struct {
	id    int32
	thunk any
} {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []struct {
		id    int32
		thunk any
	}
	for _, id := range d.kinds[kind] {
		if thunk, ok := d.thunks[id]; ok {
			out = append(out, struct {
				id    int32
				thunk any
			}{id, thunk})
		}
	}
	return out
}

// deliver queues the invocations and waits for the callback goroutine to
// finish them all.
func (d *mockEventDispatcher) deliver(fns []func()) {
	var wg sync.WaitGroup
	for _, fn := range fns {
		fn := fn
		wg.Add(1)
		d.events <- func() {
			defer wg.Done()
			fn()
		}
	}
	wg.Wait()
}

func (d *mockEventDispatcher) triggerDeviceEvent(deviceID int, method Method, data string) {
	c := newCString(data)
	var fns []func()
	for _, reg := range d.snapshot("device") {
		id := reg.id
		thunk := reg.thunk.(deviceEventThunk)
		fns = append(fns, func() {
			thunk(int32(deviceID), int32(method), c.ptr(), id, 0)
		})
	}
	d.deliver(fns)
	runtime.KeepAlive(c)
}

func (d *mockEventDispatcher) triggerDeviceChangeEvent(deviceID int, event DeviceChange, change ChangeType) {
	var fns []func()
	for _, reg := range d.snapshot("device-change") {
		id := reg.id
		thunk := reg.thunk.(deviceChangeEventThunk)
		fns = append(fns, func() {
			thunk(int32(deviceID), int32(event), int32(change), id, 0)
		})
	}
	d.deliver(fns)
}

func (d *mockEventDispatcher) triggerRawDeviceEvent(data string, controllerID int) {
	c := newCString(data)
	var fns []func()
	for _, reg := range d.snapshot("raw-device") {
		id := reg.id
		thunk := reg.thunk.(rawDeviceEventThunk)
		fns = append(fns, func() {
			thunk(c.ptr(), int32(controllerID), id, 0)
		})
	}
	d.deliver(fns)
	runtime.KeepAlive(c)
}

func (d *mockEventDispatcher) triggerSensorEvent(protocol, model string, sensorID int, dataType SensorDataType, value string, timestamp int64) {
	cProtocol := newCString(protocol)
	cModel := newCString(model)
	cValue := newCString(value)
	var fns []func()
	for _, reg := range d.snapshot("sensor") {
		id := reg.id
		thunk := reg.thunk.(sensorEventThunk)
		fns = append(fns, func() {
			thunk(cProtocol.ptr(), cModel.ptr(), int32(sensorID), int32(dataType),
				cValue.ptr(), int32(timestamp), id, 0)
		})
	}
	d.deliver(fns)
	runtime.KeepAlive(cProtocol)
	runtime.KeepAlive(cModel)
	runtime.KeepAlive(cValue)
}

func (d *mockEventDispatcher) triggerControllerEvent(controllerID int, event DeviceChange, change ChangeType, newValue string) {
	c := newCString(newValue)
	var fns []func()
	for _, reg := range d.snapshot("controller") {
		id := reg.id
		thunk := reg.thunk.(controllerEventThunk)
		fns = append(fns, func() {
			thunk(int32(controllerID), int32(event), int32(change), c.ptr(), id, 0)
		})
	}
	d.deliver(fns)
	runtime.KeepAlive(c)
}
