package ws

import "time"

// ConnInfo describes one websocket connection for broadcasting and telemetry.
// ActorID drives per-viewer redaction of pay-per-view media.
type ConnInfo struct {
	ConnID      string
	ActorID     int64
	ActorName   string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
