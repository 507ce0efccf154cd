package msg

import "encoding/json"

type EventCode uint

const (
	// Server pushes a full state snapshot.
	SnapshotCode EventCode = 2000
)

type WsMessage struct {
	EventCode EventCode       `json:"eventCode"`
	EventData json.RawMessage `json:"eventData"`
}
