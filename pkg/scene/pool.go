package scene

import (
	"go.uber.org/zap"

	"hallday/passview/pkg/infra"
	"hallday/passview/pkg/layout"
	"hallday/passview/pkg/msg"
)

// Pool owns the variable-length collection of animated entities and
// reconciles it against each incoming snapshot. It is not safe for
// concurrent use: the render loop goroutine is its sole owner, and
// snapshots reach it through that goroutine's select loop.
type Pool struct {
	entities []*Entity

	queue     []string
	capacity  int
	suspended bool

	viewW, viewH float64

	nextId uint64
	logger *zap.SugaredLogger
}

type slotSpec struct {
	kind Kind
	sess *msg.SessionInfo
}

func ProvidePool(loggerFactory *infra.LoggerFactory) *Pool {
	return &Pool{
		capacity: 1,
		viewW:    1920,
		viewH:    1080,
		logger:   loggerFactory.Create("Pool").Sugar(),
	}
}

// SetViewport records the viewport shape and retargets existing entities
// to the layout for the new shape.
func (p *Pool) SetViewport(w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	p.viewW, p.viewH = w, h
	p.applyLayout()
}

// Reconcile resizes and retargets the pool to match snap. Entity count
// afterwards is occupants+1 while below capacity (one open slot shown),
// occupants at capacity, and exactly 1 suspended entity when the kiosk
// is suspended.
func (p *Pool) Reconcile(snap *msg.Snapshot) {
	p.queue = snap.Queue
	p.capacity = snap.Capacity
	p.suspended = snap.KioskSuspended

	var desired []slotSpec
	if snap.KioskSuspended {
		desired = []slotSpec{{kind: KindSuspended}}
	} else {
		for i := range snap.ActiveSessions {
			desired = append(desired, slotSpec{kind: KindUsed, sess: &snap.ActiveSessions[i]})
		}
		if len(snap.ActiveSessions) < snap.Capacity {
			desired = append(desired, slotSpec{kind: KindAvailable})
		}
	}

	p.resize(len(desired))
	p.rebind(desired)

	slots := layout.Layout(len(desired), p.viewW, p.viewH)
	for i, d := range desired {
		e := p.entities[i]
		e.X.SetTarget(slots[i].X)
		e.Y.SetTarget(slots[i].Y)
		e.Scale.SetTarget(slots[i].Scale)
		e.retarget(d.kind, d.sess)
	}
}

// resize grows by spawning at the last existing entity's current position,
// so a new slot splits away from its neighbor instead of popping in.
// Shrinking drops from the tail.
func (p *Pool) resize(n int) {
	for len(p.entities) < n {
		x, y := 50.0, 50.0
		if last := len(p.entities) - 1; last >= 0 {
			x = p.entities[last].X.Current
			y = p.entities[last].Y.Current
		}
		p.nextId++
		p.entities = append(p.entities, newEntity(p.nextId, x, y))
	}
	if len(p.entities) > n {
		p.entities = p.entities[:n]
	}
}

// rebind reorders entities so one already bound to a session id stays with
// that session even when the server reorders its session list. Slots whose
// session id is unknown fall back to index order.
func (p *Pool) rebind(desired []slotSpec) {
	n := len(p.entities)
	placed := make([]*Entity, n)
	taken := make([]bool, n)

	for i, d := range desired {
		if d.sess == nil || d.sess.Id == 0 {
			continue
		}
		for j, e := range p.entities {
			if !taken[j] && e.Kind == KindUsed && e.SessionId == d.sess.Id {
				placed[i] = e
				taken[j] = true
				break
			}
		}
	}

	j := 0
	for i := range placed {
		if placed[i] != nil {
			continue
		}
		for taken[j] {
			j++
		}
		placed[i] = p.entities[j]
		taken[j] = true
	}
	p.entities = placed
}

func (p *Pool) applyLayout() {
	slots := layout.Layout(len(p.entities), p.viewW, p.viewH)
	for i, e := range p.entities {
		e.X.SetTarget(slots[i].X)
		e.Y.SetTarget(slots[i].Y)
		e.Scale.SetTarget(slots[i].Scale)
	}
}

// Advance steps every entity's springs by dt seconds. dt must already be
// clamped by the render loop.
func (p *Pool) Advance(dt float64) {
	for _, e := range p.entities {
		e.X.Update(dt)
		e.Y.Update(dt)
		e.Scale.Update(dt)
		e.Rot.Update(dt)
	}
}

// RefreshTimers recomputes every used entity's timer text. sinceSync is
// seconds of monotonic local time since the last successful sync.
func (p *Pool) RefreshTimers(sinceSync float64) {
	for _, e := range p.entities {
		e.RefreshTimer(sinceSync)
	}
}

func (p *Pool) Entities() []*Entity {
	return p.entities
}

// Queue is the waiting-list names from the latest snapshot, unchanged,
// for the consuming UI.
func (p *Pool) Queue() []string {
	return p.queue
}

func (p *Pool) Capacity() int {
	return p.capacity
}

func (p *Pool) Suspended() bool {
	return p.suspended
}
