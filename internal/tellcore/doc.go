// Package tellcore wraps the native telldus-core library behind a typed Go API.
//
// telldus-core owns all device protocol handling, hardware communication and
// configuration persistence. This package is only the binding layer: it loads
// the shared library, binds every documented entry point to a typed function
// pointer, marshals strings and out-buffers across the boundary, translates
// native error codes into structured errors, and redelivers asynchronous
// native callbacks into consumer-controlled execution contexts.
//
// # Lifecycle
//
// The native library is a process-wide singleton. The first Library created
// loads and initialises it; further instances share the same underlying
// session. Closing the last instance unregisters any remaining callbacks and
// shuts the native library down, after which a new Library can load it again.
//
//	lib, err := tellcore.New()
//	if err != nil { ... }
//	defer lib.Close()
//
// # Callbacks
//
// telldus-core delivers events on a thread it owns. A Dispatcher decides
// where consumer callbacks run: DirectDispatcher invokes them on the native
// callback thread, QueuedDispatcher queues them for a consumer thread to
// drain, and ScheduledDispatcher hands them to an event loop. Exactly one
// dispatcher is active per loaded generation of the library.
//
// # Thread Safety
//
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Native calls block the calling goroutine and are not cancellable.
package tellcore
