package tellcore

import "sync"

// Dispatcher decides where consumer callbacks run. Dispatch is invoked on
// the native callback thread and must not block it for long; the supplied
// function already contains the consumer callback with decoded arguments and
// never panics.
//
// Exactly one dispatcher is active per loaded generation of the native
// library, shared by every Library instance.
type Dispatcher interface {
	Dispatch(fn func())
}

// DirectDispatcher invokes consumer callbacks synchronously on the native
// callback thread. Simplest strategy, but consumer code must be safe to run
// concurrently with its own goroutines.
type DirectDispatcher struct{}

// Dispatch implements Dispatcher.
func (DirectDispatcher) Dispatch(fn func()) { fn() }

// QueuedDispatcher queues callbacks on a FIFO for a consumer goroutine to
// drain via ProcessOne or ProcessPending. Events are delivered in native
// emission order.
//
// Thread Safety:
//   - Dispatch may be called concurrently with ProcessOne/ProcessPending.
//   - Multiple goroutines may drain the queue, though ordering across them
//     is then up to the consumer.
type QueuedDispatcher struct {
	mu     sync.Mutex
	wake   *sync.Cond
	events []func()
}

// NewQueuedDispatcher creates an empty queued dispatcher.
func NewQueuedDispatcher() *QueuedDispatcher {
	d := &QueuedDispatcher{}
	d.wake = sync.NewCond(&d.mu)
	return d
}

// Dispatch implements Dispatcher. It never blocks; the queue is unbounded.
func (d *QueuedDispatcher) Dispatch(fn func()) {
	d.mu.Lock()
	d.events = append(d.events, fn)
	d.mu.Unlock()
	d.wake.Signal()
}

// ProcessOne delivers the oldest queued event on the calling goroutine.
//
// With block=true it waits until an event arrives; there is no timeout, so a
// consumer that wants to stop draining simply stops calling it. With
// block=false it returns immediately, reporting false when the queue was
// empty.
func (d *QueuedDispatcher) ProcessOne(block bool) bool {
	d.mu.Lock()
	for len(d.events) == 0 {
		if !block {
			d.mu.Unlock()
			return false
		}
		d.wake.Wait()
	}
	fn := d.events[0]
	d.events = d.events[1:]
	d.mu.Unlock()

	fn()
	return true
}

// ProcessPending delivers every currently queued event without blocking and
// returns the number delivered.
func (d *QueuedDispatcher) ProcessPending() int {
	n := 0
	for d.ProcessOne(false) {
		n++
	}
	return n
}

// Pending returns the number of queued, undelivered events.
func (d *QueuedDispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

// ScheduledDispatcher hands callbacks to a consumer-supplied scheduling
// primitive, typically one that runs them on a single-threaded event loop at
// its next opportunity. The schedule function must not block.
type ScheduledDispatcher struct {
	schedule func(func())
}

// NewScheduledDispatcher wraps a scheduling function as a Dispatcher.
func NewScheduledDispatcher(schedule func(func())) *ScheduledDispatcher {
	return &ScheduledDispatcher{schedule: schedule}
}

// Dispatch implements Dispatcher.
func (d *ScheduledDispatcher) Dispatch(fn func()) { d.schedule(fn) }
