package scene

import (
	"fmt"

	"hallday/passview/pkg/msg"
	"hallday/passview/pkg/spring"
)

// Kind is the visual state of one slot. Any kind may transition to any
// other on resync; transitions are purely data-driven from the snapshot.
type Kind uint8

const (
	KindAvailable Kind = iota
	KindUsed
	KindBanned
	KindSuspended
	KindProcessing
)

func (k Kind) String() string {
	switch k {
	case KindAvailable:
		return "available"
	case KindUsed:
		return "used"
	case KindBanned:
		return "banned"
	case KindSuspended:
		return "suspended"
	case KindProcessing:
		return "processing"
	}
	return "unknown"
}

// Velocity impulses injected on a type change. A deliberate perturbation,
// not a discontinuity: the spring carries it back to target as a visible pop.
const (
	scaleImpulse    = 2.5
	rotationImpulse = 6.0
)

const availablePrompt = "SCAN TO GO OUT"

// Entity is a client-local animated proxy for one visual slot. It is not
// 1:1 persistent with any server session; reconciliation may rebind it.
type Entity struct {
	Id   uint64
	Kind Kind

	X     *spring.Spring
	Y     *spring.Spring
	Scale *spring.Spring
	Rot   *spring.Spring

	Name      string
	TimerText string
	Overdue   bool

	// Session currently driving the timer. Zero when Kind != KindUsed.
	SessionId int64

	// Server-computed elapsed seconds at the last successful sync.
	baseElapsed int64

	// Last displayed elapsed, kept so the timer never runs backwards
	// when a resync lands a slightly older server value.
	lastShown int64
}

func newEntity(id uint64, x, y float64) *Entity {
	e := &Entity{
		Id:    id,
		X:     spring.New(spring.Position, x),
		Y:     spring.New(spring.Position, y),
		Scale: spring.New(spring.Scale, 0),
		Rot:   spring.New(spring.Rotation, 0),
	}
	return e
}

// retarget applies the desired type and session binding from the latest
// snapshot. Content fields are always overwritten; the impulse fires only
// when the type actually changes.
func (e *Entity) retarget(kind Kind, sess *msg.SessionInfo) {
	if kind != e.Kind {
		e.Scale.Nudge(scaleImpulse)
		e.Rot.Nudge(rotationImpulse)
	}
	e.Kind = kind

	switch kind {
	case KindUsed:
		if sess.Id != e.SessionId {
			e.lastShown = 0
		}
		e.SessionId = sess.Id
		e.Name = sess.Name
		e.Overdue = sess.Overdue
		e.baseElapsed = sess.Elapsed
		e.RefreshTimer(0)
	case KindAvailable:
		e.clearSession()
		e.Name = availablePrompt
	case KindBanned:
		e.clearSession()
		e.Name = "BANNED"
	case KindSuspended:
		e.clearSession()
		e.Name = "SUSPENDED"
	case KindProcessing:
		e.clearSession()
		e.Name = "PROCESSING"
	}
}

func (e *Entity) clearSession() {
	e.SessionId = 0
	e.baseElapsed = 0
	e.lastShown = 0
	e.TimerText = ""
	e.Overdue = false
}

// RefreshTimer recomputes the displayed timer from the reconciled baseline
// plus seconds elapsed locally since the last successful sync. The caller
// freezes sinceSync while disconnected.
func (e *Entity) RefreshTimer(sinceSync float64) {
	if e.Kind != KindUsed {
		return
	}
	secs := e.baseElapsed + int64(sinceSync)
	if secs < e.lastShown {
		secs = e.lastShown
	}
	e.lastShown = secs
	e.TimerText = FormatElapsed(secs)
}

// FormatElapsed renders seconds as M:SS.
func FormatElapsed(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
