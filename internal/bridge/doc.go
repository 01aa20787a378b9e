// Package bridge connects the TellStick event stream to MQTT.
//
// The bridge registers callbacks for all five native event kinds under the
// core's queued dispatcher, drains the queue on its own goroutine, and
// publishes each event as a JSON payload on the tellstick/event and
// tellstick/sensor topic trees. It also subscribes to the device command
// topic and executes incoming commands against the native library.
//
// # Architecture
//
//	native callbacks -> queued dispatcher -> drain loop -> MQTT publish
//	MQTT subscribe -> command handler -> device command
//
// Native callbacks never touch MQTT directly; they only enqueue. The drain
// loop is the single goroutine that observes events, which preserves
// per-registration ordering end to end.
//
// # Usage
//
//	b := bridge.New(core, mqttClient, log, bridge.Options{})
//	if err := b.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
package bridge
