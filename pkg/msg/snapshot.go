package msg

import "encoding/json"

// SessionInfo is one active pass as reported by the server.
type SessionInfo struct {
	Id      int64  `json:"id"`
	Name    string `json:"name"`
	Elapsed int64  `json:"elapsed"`
	Overdue bool   `json:"overdue"`
	StartMs int64  `json:"start_ms"`
}

// Snapshot is the server-authoritative state at one instant. It replaces
// wholesale on every sync; clients never mutate it.
//
// InUse/Name/Elapsed/Overdue mirror the first active session for older
// single-pass consumers and are derived, not authoritative.
type Snapshot struct {
	InUse          bool          `json:"in_use"`
	Name           string        `json:"name"`
	Elapsed        int64         `json:"elapsed"`
	Overdue        bool          `json:"overdue"`
	OverdueMinutes int           `json:"overdue_minutes"`
	KioskSuspended bool          `json:"kiosk_suspended"`
	AutoBanOverdue bool          `json:"auto_ban_overdue"`
	Capacity       int           `json:"capacity"`
	ActiveSessions []SessionInfo `json:"active_sessions"`
	Queue          []string      `json:"queue"`
	ServerTimeMs   int64         `json:"server_time_ms"`
}

// DecodeSnapshot parses raw snapshot JSON and applies safe defaults for
// missing or malformed fields. Booleans default to false via encoding/json.
// Capacity falls back to the previously seen value, then 1. Session names
// default to "Unknown", a nil queue becomes empty. A parse error returns
// nil so the caller keeps displaying prev.
func DecodeSnapshot(raw []byte, prev *Snapshot) (*Snapshot, error) {
	s := &Snapshot{}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, err
	}
	s.ApplyDefaults(prev)
	return s, nil
}

// ApplyDefaults fills missing fields after decoding. Exposed separately for
// callers that unmarshal through an HTTP client.
func (s *Snapshot) ApplyDefaults(prev *Snapshot) {
	if s.Capacity <= 0 {
		if prev != nil && prev.Capacity > 0 {
			s.Capacity = prev.Capacity
		} else {
			s.Capacity = 1
		}
	}

	for i := range s.ActiveSessions {
		if s.ActiveSessions[i].Name == "" {
			s.ActiveSessions[i].Name = "Unknown"
		}
	}

	if s.Queue == nil {
		s.Queue = []string{}
	}
}
