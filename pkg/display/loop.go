// Package display drives the render loop. One goroutine owns the entity
// pool: frame ticks advance springs and timers, and incoming snapshots are
// reconciled inside the same select loop, so there is never a second writer
// touching animated state.
package display

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"hallday/passview/pkg/infra"
	"hallday/passview/pkg/msg"
	"hallday/passview/pkg/scene"
	"hallday/passview/pkg/syncer"
)

const (
	// One callback per display frame.
	frameInterval = 33 * time.Millisecond

	// Clamp dt after a stalled frame (backgrounded process, suspended VM)
	// so the springs stay stable.
	maxFrameDt = 0.05
)

// EntityView is the drawable state of one entity at one frame.
type EntityView struct {
	Kind      scene.Kind
	X         float64
	Y         float64
	Scale     float64
	Rot       float64
	Name      string
	TimerText string
	Overdue   bool
}

// Frame is what a UI layer draws. Published on every tick; consumers that
// lag simply miss frames.
type Frame struct {
	Entities  []EntityView
	Queue     []string
	Connected bool
	Mode      syncer.Mode
}

// Source is what the loop consumes from the sync layer. *syncer.Client
// satisfies it; tests substitute channel fakes.
type Source interface {
	Snapshots() <-chan *msg.Snapshot
	StatusEvents() <-chan syncer.Status
}

type Loop struct {
	pool   *scene.Pool
	sync   Source
	clock  clockwork.Clock
	logger *zap.SugaredLogger

	frames   chan Frame
	viewport chan [2]float64
}

func ProvideLoop(pool *scene.Pool, sync Source, clock clockwork.Clock, loggerFactory *infra.LoggerFactory) *Loop {
	return &Loop{
		pool:     pool,
		sync:     sync,
		clock:    clock,
		logger:   loggerFactory.Create("Display").Sugar(),
		frames:   make(chan Frame, 4),
		viewport: make(chan [2]float64, 1),
	}
}

// Frames is the typed frame stream UI layers subscribe to.
func (l *Loop) Frames() <-chan Frame {
	return l.frames
}

// SetViewport reports a resize. The change is applied inside the loop
// goroutine, never directly.
func (l *Loop) SetViewport(w, h float64) {
	select {
	case l.viewport <- [2]float64{w, h}:
	default:
	}
}

// Run blocks until ctx is canceled. Ticks never block; a slow or hung
// network fetch cannot stall spring advancement because fetches happen in
// the syncer's goroutines and arrive here as channel messages.
func (l *Loop) Run(ctx context.Context) {
	ticker := l.clock.NewTicker(frameInterval)
	defer ticker.Stop()

	last := l.clock.Now()
	lastSync := last
	hasSync := false
	connected := true
	mode := syncer.ModePush

	// Seconds since last sync at the moment connectivity was lost. Timers
	// hold at this value rather than advancing on possibly-stale data.
	frozenSince := 0.0

	for {
		select {
		case <-ctx.Done():
			return

		case snap := <-l.sync.Snapshots():
			l.pool.Reconcile(snap)
			lastSync = l.clock.Now()
			hasSync = true

		case st := <-l.sync.StatusEvents():
			if !st.Connected && connected {
				frozenSince = l.clock.Now().Sub(lastSync).Seconds()
			}
			connected = st.Connected
			mode = st.Mode

		case vp := <-l.viewport:
			l.pool.SetViewport(vp[0], vp[1])

		case <-ticker.Chan():
			now := l.clock.Now()
			dt := now.Sub(last).Seconds()
			last = now
			if dt > maxFrameDt {
				dt = maxFrameDt
			}

			l.pool.Advance(dt)

			if hasSync {
				since := frozenSince
				if connected {
					since = now.Sub(lastSync).Seconds()
				}
				l.pool.RefreshTimers(since)
			}

			l.publish(connected, mode)
		}
	}
}

func (l *Loop) publish(connected bool, mode syncer.Mode) {
	entities := l.pool.Entities()
	frame := Frame{
		Entities:  make([]EntityView, 0, len(entities)),
		Queue:     l.pool.Queue(),
		Connected: connected,
		Mode:      mode,
	}
	for _, e := range entities {
		frame.Entities = append(frame.Entities, EntityView{
			Kind:      e.Kind,
			X:         e.X.Current,
			Y:         e.Y.Current,
			Scale:     e.Scale.Current,
			Rot:       e.Rot.Current,
			Name:      e.Name,
			TimerText: e.TimerText,
			Overdue:   e.Overdue,
		})
	}

	select {
	case l.frames <- frame:
	default:
		select {
		case <-l.frames:
		default:
		}
		select {
		case l.frames <- frame:
		default:
		}
	}
}
