// Package mqtt is the daemon's broker connection.
//
// MQTT is how tellstickd faces the rest of the network: native events and
// sensor values go out, device commands come in, and a retained last-will on
// tellstick/system/status tells subscribers when the daemon dies. The client
// reconnects with exponential backoff between the configured delays and
// replays its subscriptions after every reconnect.
//
// Topics centralises the topic scheme; nothing else in the repo builds a
// "tellstick/..." string by hand.
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllDeviceCommands(), 1, handleCommand)
//
// Production brokers should require TLS and credentials; anonymous plaintext
// is for local development only.
package mqtt
