package msg

type ScanAction string

const (
	ActionStarted     ScanAction = "started"
	ActionEnded       ScanAction = "ended"
	ActionEndedBanned ScanAction = "ended_banned"
	ActionDenied      ScanAction = "denied"
	ActionBanned      ScanAction = "banned"
	ActionQueuePrompt ScanAction = "queue_prompt"
)

// ScanResult is the outcome of one scan, returned by the kiosk server and
// relayed to whatever surface initiated the scan.
type ScanResult struct {
	Ok      bool       `json:"ok"`
	Action  ScanAction `json:"action"`
	Name    string     `json:"name"`
	Message string     `json:"message"`
}

func knownAction(a ScanAction) bool {
	switch a {
	case ActionStarted, ActionEnded, ActionEndedBanned, ActionDenied, ActionBanned, ActionQueuePrompt:
		return true
	}
	return false
}

// Normalize rewrites an unknown action code into an anonymous failure so a
// newer server cannot crash an older relay.
func (r *ScanResult) Normalize() {
	if !knownAction(r.Action) {
		r.Ok = false
		r.Action = ActionDenied
		if r.Message == "" {
			r.Message = "Scan failed"
		}
	}
}
