package tellcore

import (
	"sync"
	"testing"
)

// eventRecorder collects delivered events. Callbacks may run on the mock
// native thread, so access is locked.
type eventRecorder struct {
	mu     sync.Mutex
	events []deviceEventRecord
}

type deviceEventRecord struct {
	deviceID   int
	method     Method
	data       string
	callbackID int
}

func (r *eventRecorder) record(deviceID int, method Method, data string, callbackID int) {
	r.mu.Lock()
	r.events = append(r.events, deviceEventRecord{deviceID, method, data, callbackID})
	r.mu.Unlock()
}

func (r *eventRecorder) snapshot() []deviceEventRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]deviceEventRecord(nil), r.events...)
}

type testLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
}

func (l *testLogger) Error(msg string, args ...any) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func (l *testLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

func (l *testLogger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors)
}

func TestDeviceEventReachesEverySharedInstance(t *testing.T) {
	m := newMockModule()
	controllerPresent(m)
	ld := newMockLoader(m)
	ld.install(t)
	native := newMockEventDispatcher(m)
	defer native.stop()

	var rec1, rec2 eventRecorder
	lib1, err := New(WithDispatcher(DirectDispatcher{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	lib2, err := New(WithDispatcher(DirectDispatcher{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if ld.loads() != 1 {
		t.Fatalf("load count = %d, want 1", ld.loads())
	}

	id1, err := lib1.RegisterDeviceEvent(rec1.record)
	if err != nil {
		t.Fatalf("RegisterDeviceEvent() error = %v", err)
	}
	id2, err := lib2.RegisterDeviceEvent(rec2.record)
	if err != nil {
		t.Fatalf("RegisterDeviceEvent() error = %v", err)
	}
	if id1 == id2 {
		t.Fatalf("both registrations got id %d", id1)
	}

	native.triggerDeviceEvent(1, MethodTurnOff, "foo")

	for _, tc := range []struct {
		rec    *eventRecorder
		wantID int
	}{
		{&rec1, id1},
		{&rec2, id2},
	} {
		got := tc.rec.snapshot()
		if len(got) != 1 {
			t.Fatalf("callback %d delivered %d times, want 1", tc.wantID, len(got))
		}
		want := deviceEventRecord{deviceID: 1, method: MethodTurnOff, data: "foo", callbackID: tc.wantID}
		if got[0] != want {
			t.Errorf("callback %d got %+v, want %+v", tc.wantID, got[0], want)
		}
	}

	lib1.Close()
	lib2.Close()
}

func TestUnregisterStopsDelivery(t *testing.T) {
	m := newMockModule()
	controllerPresent(m)
	newMockLoader(m).install(t)
	native := newMockEventDispatcher(m)
	defer native.stop()

	lib, err := New(WithDispatcher(DirectDispatcher{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer lib.Close()

	var kept, dropped eventRecorder
	keptID, err := lib.RegisterDeviceEvent(kept.record)
	if err != nil {
		t.Fatalf("RegisterDeviceEvent() error = %v", err)
	}
	droppedID, err := lib.RegisterDeviceEvent(dropped.record)
	if err != nil {
		t.Fatalf("RegisterDeviceEvent() error = %v", err)
	}

	if err := lib.UnregisterCallback(droppedID); err != nil {
		t.Fatalf("UnregisterCallback() error = %v", err)
	}

	native.triggerDeviceEvent(3, MethodTurnOn, "")

	if got := kept.snapshot(); len(got) != 1 || got[0].callbackID != keptID {
		t.Errorf("kept callback got %+v, want one event for id %d", got, keptID)
	}
	if got := dropped.snapshot(); len(got) != 0 {
		t.Errorf("unregistered callback got %+v, want none", got)
	}

	// Unregistering an id twice is a harmless no-op.
	if err := lib.UnregisterCallback(droppedID); err != nil {
		t.Errorf("repeated UnregisterCallback() error = %v", err)
	}
}

func TestLateNativeInvocationIsDropped(t *testing.T) {
	m := newMockModule()
	controllerPresent(m)
	newMockLoader(m).install(t)
	native := newMockEventDispatcher(m)
	defer native.stop()

	lib, err := New(WithDispatcher(DirectDispatcher{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer lib.Close()

	var rec eventRecorder
	id, err := lib.RegisterDeviceEvent(rec.record)
	if err != nil {
		t.Fatalf("RegisterDeviceEvent() error = %v", err)
	}

	// Capture the thunk the native side holds, then unregister. A real
	// library may still fire the thunk after tdUnregisterCallback returns.
	regs := native.snapshot("device")
	if len(regs) != 1 {
		t.Fatalf("native registrations = %d, want 1", len(regs))
	}
	if err := lib.UnregisterCallback(id); err != nil {
		t.Fatalf("UnregisterCallback() error = %v", err)
	}

	thunk := regs[0].thunk.(deviceEventThunk)
	data := newCString("late")
	thunk(9, int32(MethodTurnOn), data.ptr(), regs[0].id, 0)

	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("late invocation delivered %+v, want nothing", got)
	}
}

func TestCloseUnregistersEverything(t *testing.T) {
	m := newMockModule()
	controllerPresent(m)
	newMockLoader(m).install(t)
	native := newMockEventDispatcher(m)
	defer native.stop()

	lib, err := New(WithDispatcher(DirectDispatcher{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var rec eventRecorder
	if _, err := lib.RegisterDeviceEvent(rec.record); err != nil {
		t.Fatalf("RegisterDeviceEvent() error = %v", err)
	}
	if _, err := lib.RegisterSensorEvent(func(string, string, int, SensorDataType, string, int64, int) {}); err != nil {
		t.Fatalf("RegisterSensorEvent() error = %v", err)
	}
	if _, err := lib.RegisterControllerEvent(func(int, DeviceChange, ChangeType, string, int) {}); err != nil {
		t.Fatalf("RegisterControllerEvent() error = %v", err)
	}

	if n, err := lib.Registrations(); err != nil || n != 3 {
		t.Fatalf("Registrations() = %d, %v, want 3", n, err)
	}

	lib.Close()
	if ids := native.registered(); len(ids) != 0 {
		t.Errorf("native still holds registrations %v after Close", ids)
	}
}

func TestQueuedDispatcherDefersAndOrders(t *testing.T) {
	m := newMockModule()
	controllerPresent(m)
	newMockLoader(m).install(t)
	native := newMockEventDispatcher(m)
	defer native.stop()

	q := NewQueuedDispatcher()
	lib, err := New(WithDispatcher(q))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer lib.Close()

	var rec eventRecorder
	if _, err := lib.RegisterDeviceEvent(rec.record); err != nil {
		t.Fatalf("RegisterDeviceEvent() error = %v", err)
	}

	native.triggerDeviceEvent(1, MethodTurnOn, "")
	native.triggerDeviceEvent(2, MethodTurnOff, "")
	native.triggerDeviceEvent(3, MethodDim, "128")

	if len(rec.snapshot()) != 0 {
		t.Fatal("queued events delivered before processing")
	}
	if q.Pending() != 3 {
		t.Fatalf("Pending() = %d, want 3", q.Pending())
	}

	if !q.ProcessOne(false) {
		t.Fatal("ProcessOne(false) = false with events queued")
	}
	if n := q.ProcessPending(); n != 2 {
		t.Fatalf("ProcessPending() = %d, want 2", n)
	}
	if q.ProcessOne(false) {
		t.Error("ProcessOne(false) = true on empty queue")
	}

	got := rec.snapshot()
	if len(got) != 3 {
		t.Fatalf("delivered %d events, want 3", len(got))
	}
	for i, want := range []deviceEventRecord{
		{deviceID: 1, method: MethodTurnOn},
		{deviceID: 2, method: MethodTurnOff},
		{deviceID: 3, method: MethodDim, data: "128"},
	} {
		want.callbackID = got[i].callbackID
		if got[i] != want {
			t.Errorf("event %d = %+v, want %+v", i, got[i], want)
		}
	}
}

func TestSecondDispatcherPanics(t *testing.T) {
	m := newMockModule()
	controllerPresent(m)
	newMockLoader(m).install(t)

	lib1, err := New(WithDispatcher(DirectDispatcher{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("New() with a conflicting dispatcher did not panic")
			}
		}()
		lib2, err := New(WithDispatcher(NewQueuedDispatcher()))
		if err == nil {
			lib2.Close()
		}
	}()

	// The failed New must not leak a reference: closing the surviving
	// instance ends the generation, after which any dispatcher is fine.
	lib1.Close()
	lib3, err := New(WithDispatcher(NewQueuedDispatcher()))
	if err != nil {
		t.Fatalf("New() after generation reset error = %v", err)
	}
	lib3.Close()
}

func TestCallbackPanicIsContained(t *testing.T) {
	m := newMockModule()
	controllerPresent(m)
	newMockLoader(m).install(t)
	native := newMockEventDispatcher(m)
	defer native.stop()

	log := &testLogger{}
	lib, err := New(WithDispatcher(DirectDispatcher{}), WithLogger(log))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer lib.Close()

	var rec eventRecorder
	if _, err := lib.RegisterDeviceEvent(func(int, Method, string, int) {
		panic("consumer bug")
	}); err != nil {
		t.Fatalf("RegisterDeviceEvent() error = %v", err)
	}
	if _, err := lib.RegisterDeviceEvent(rec.record); err != nil {
		t.Fatalf("RegisterDeviceEvent() error = %v", err)
	}

	native.triggerDeviceEvent(5, MethodTurnOn, "")
	native.triggerDeviceEvent(5, MethodTurnOff, "")

	if got := rec.snapshot(); len(got) != 2 {
		t.Errorf("healthy callback got %d events, want 2", len(got))
	}
	if log.errorCount() != 2 {
		t.Errorf("logged %d panics, want 2", log.errorCount())
	}
}

func TestSensorAndControllerEventDecoding(t *testing.T) {
	m := newMockModule()
	controllerPresent(m)
	newMockLoader(m).install(t)
	native := newMockEventDispatcher(m)
	defer native.stop()

	lib, err := New(WithDispatcher(DirectDispatcher{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer lib.Close()

	type sensorRecord struct {
		protocol, model string
		sensorID        int
		dataType        SensorDataType
		value           string
		timestamp       int64
	}
	type controllerRecord struct {
		controllerID int
		event        DeviceChange
		change       ChangeType
		newValue     string
	}
	var mu sync.Mutex
	var sensors []sensorRecord
	var controllers []controllerRecord
	var raws []string

	if _, err := lib.RegisterSensorEvent(func(protocol, model string, sensorID int, dataType SensorDataType, value string, timestamp int64, _ int) {
		mu.Lock()
		sensors = append(sensors, sensorRecord{protocol, model, sensorID, dataType, value, timestamp})
		mu.Unlock()
	}); err != nil {
		t.Fatalf("RegisterSensorEvent() error = %v", err)
	}
	if _, err := lib.RegisterControllerEvent(func(controllerID int, event DeviceChange, change ChangeType, newValue string, _ int) {
		mu.Lock()
		controllers = append(controllers, controllerRecord{controllerID, event, change, newValue})
		mu.Unlock()
	}); err != nil {
		t.Fatalf("RegisterControllerEvent() error = %v", err)
	}
	if _, err := lib.RegisterRawDeviceEvent(func(data string, controllerID int, _ int) {
		mu.Lock()
		raws = append(raws, data)
		mu.Unlock()
	}); err != nil {
		t.Fatalf("RegisterRawDeviceEvent() error = %v", err)
	}

	native.triggerSensorEvent("fineoffset", "temperaturehumidity", 11, SensorTemperature, "21.5", 1442000000)
	native.triggerControllerEvent(2, DeviceStateChanged, ChangeAvailable, "1")
	native.triggerRawDeviceEvent("class:command;protocol:arctech;", 2)

	mu.Lock()
	defer mu.Unlock()
	wantSensor := sensorRecord{"fineoffset", "temperaturehumidity", 11, SensorTemperature, "21.5", 1442000000}
	if len(sensors) != 1 || sensors[0] != wantSensor {
		t.Errorf("sensor events = %+v, want [%+v]", sensors, wantSensor)
	}
	wantController := controllerRecord{2, DeviceStateChanged, ChangeAvailable, "1"}
	if len(controllers) != 1 || controllers[0] != wantController {
		t.Errorf("controller events = %+v, want [%+v]", controllers, wantController)
	}
	if len(raws) != 1 || raws[0] != "class:command;protocol:arctech;" {
		t.Errorf("raw events = %v", raws)
	}
}
