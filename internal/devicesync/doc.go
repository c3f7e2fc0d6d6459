// Package devicesync delivers remote module configuration snapshots, the
// values a node last confirmed, to the editor.
//
// A snapshot always replaces the previous one wholesale. Two sources exist:
//
//   - FileSource reads a JSON or YAML snapshot document and re-reads it
//     whenever the file changes (fsnotify)
//   - WebSocketSource subscribes to a bridge that relays a node's module
//     configuration, reconnecting with exponential backoff
//
// Both implement Source. Run blocks until the context is cancelled and calls
// emit for every snapshot or per-snapshot failure; it returns an error only
// when the source cannot continue.
//
// # Bridge protocol
//
// After connecting, the client sends a subscribe message. The bridge answers
// with moduleConfig messages whenever the node reports its configuration:
//
//	-> {"type":"subscribe","node":"!a1b2c3d4"}
//	<- {"type":"moduleConfig","node":"!a1b2c3d4","config":{"remoteHardware":{"enabled":true}}}
//	<- {"type":"error","message":"node not connected"}
package devicesync
