// Package mqtt provides the MQTT transport layer for AV Scenes Core.
//
// It wraps the Eclipse Paho client with connection management, automatic
// reconnection, subscription restoration, Last Will and Testament, and
// panic-safe message handlers.
//
// Topic scheme:
//
//	avscenes/
//	├── command/{category}/{device_id}    Device commands (published by core)
//	├── core/
//	│   ├── room/{room_id}/status         Retained room status documents
//	│   └── event                         Lifecycle event broadcasts
//	├── service/{service}                 Inbound service calls (subscribed by core)
//	└── system/status                     Core online/offline status (retained, LWT)
//
// Connection lifecycle:
//
//  1. Connect() establishes the connection and configures LWT
//  2. On connect (and every reconnect) tracked subscriptions are restored
//     and an online status message is published
//  3. On unexpected disconnect the broker publishes the LWT offline message
//  4. Close() publishes a graceful offline status before disconnecting
//
// All client methods are safe for concurrent use.
package mqtt
