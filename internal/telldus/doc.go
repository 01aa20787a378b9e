// Package telldus provides a convenience object model on top of the
// low-level tellcore binding.
//
// Core is the entry point: it owns a tellcore.Library instance, enumerates
// Device, Sensor and Controller values, and exposes event registration with
// queued delivery by default. The object types carry their identity (device
// id, sensor triplet, controller id) and forward every operation to the
// shared native session, so they stay valid for as long as the Core that
// produced them is open.
//
// Events registered through Core are queued until the consumer drains them
// with ProcessPendingEvents or ProcessEvent, keeping callback execution on a
// goroutine the consumer controls. Supply a different tellcore.Dispatcher
// through WithDispatcher to change that.
package telldus
