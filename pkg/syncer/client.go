// Package syncer keeps a client in sync with the kiosk server's snapshot
// stream. It prefers the websocket push channel, falls back to fixed-interval
// polling after repeated push failures, and surfaces connectivity as a typed
// event stream. Elapsed-time reconciliation is device-clock independent: the
// display combines the server-computed elapsed baseline carried in each
// snapshot with monotonic local time since the snapshot arrived, so a wrong
// or adjusted wall clock cannot skew timers.
package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/imroc/req/v3"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"hallday/passview/pkg/infra"
	"hallday/passview/pkg/msg"
)

// Mode is the transport currently delivering snapshots.
type Mode uint8

const (
	ModePush Mode = iota
	ModePoll
)

func (m Mode) String() string {
	if m == ModePush {
		return "push"
	}
	return "poll"
}

// Status is a connectivity change event. Disconnected is not a transport:
// the last good snapshot stays installed, only timers freeze.
type Status struct {
	Connected bool
	Mode      Mode
}

const (
	// Time allowed to read the next pong after a ping.
	pongWait = 12500 * time.Millisecond

	// Send pings with this period.
	pingPeriod = 5 * time.Second

	// Time allowed to write a control message.
	writeWait = 10 * time.Second
)

type Client struct {
	cfg    *Config
	http   *req.Client
	clock  clockwork.Clock
	logger *zap.SugaredLogger

	snapshots chan *msg.Snapshot
	status    chan Status

	// Poke channel forcing an immediate poll fetch (eager refresh after a
	// successful scan).
	refresh chan struct{}

	// Guards room/cancel/done so Connect and Close are idempotent.
	mu     sync.Mutex
	room   string
	cancel context.CancelFunc
	done   chan struct{}

	// Last installed snapshot, used for decode defaults and retention.
	prevMu sync.Mutex
	prev   *msg.Snapshot
	last   Status
	seen   bool
}

func ProvideClient(cfg *Config, httpClient *req.Client, clock clockwork.Clock, loggerFactory *infra.LoggerFactory) *Client {
	return &Client{
		cfg:       cfg,
		http:      httpClient,
		clock:     clock,
		logger:    loggerFactory.Create("Syncer").Sugar(),
		snapshots: make(chan *msg.Snapshot, 8),
		status:    make(chan Status, 8),
		refresh:   make(chan struct{}, 1),
	}
}

// Snapshots delivers each installed snapshot. The consumer is expected to
// funnel these into the same loop that advances rendering.
func (c *Client) Snapshots() <-chan *msg.Snapshot {
	return c.snapshots
}

// StatusEvents delivers connectivity changes, deduplicated.
func (c *Client) StatusEvents() <-chan Status {
	return c.status
}

// Connect starts syncing against room. Calling it again with the same room
// while connected is a no-op; a different room tears down all timers and
// subscriptions before establishing new ones.
func (c *Client) Connect(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil && c.room == room {
		return
	}
	c.teardownLocked()

	c.room = room
	c.setPrev(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	c.logger.Infof("connecting room[%v] push[%v]", room, c.cfg.PushEnabled)
	go c.run(ctx, room, done)
}

// Close stops all transports. Safe to call multiple times.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
	c.room = ""
}

func (c *Client) teardownLocked() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.cancel = nil
	c.done = nil
}

// Scan posts one scanned code to the kiosk. A successful scan pokes the
// poll loop so visible state updates immediately instead of waiting for
// the next tick; in push mode the server broadcast covers it.
func (c *Client) Scan(ctx context.Context, code string) (*msg.ScanResult, error) {
	result := &msg.ScanResult{}
	_, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"code": code}).
		SetResult(result).
		SetError(result).
		Post(c.cfg.ServerURL + "/api/scan")
	if err != nil {
		return nil, err
	}

	result.Normalize()
	if result.Ok {
		c.RequestRefresh()
	}
	return result, nil
}

// RequestRefresh asks the poll loop for an immediate fetch. No-op when no
// poll loop is running.
func (c *Client) RequestRefresh() {
	select {
	case c.refresh <- struct{}{}:
	default:
	}
}

func (c *Client) run(ctx context.Context, room string, done chan struct{}) {
	defer close(done)

	if c.cfg.PushEnabled {
		c.runPush(ctx, room)
		return
	}
	c.pollLoop(ctx, room)
}

// runPush owns the push transport: reconnect with exponential backoff, and
// after PushFailureLimit consecutive failures start a parallel poll so the
// UI keeps receiving data while reconnection continues in the background.
func (c *Client) runPush(ctx context.Context, room string) {
	bo := newBackoff(c.cfg.BackoffFloor, c.cfg.BackoffCeiling)
	failures := 0

	var fallbackCancel context.CancelFunc
	var fallbackDone chan struct{}
	stopFallback := func() {
		if fallbackCancel == nil {
			return
		}
		fallbackCancel()
		<-fallbackDone
		fallbackCancel = nil
	}
	defer stopFallback()

	for {
		err := c.pushSession(ctx, room, func() {
			// First snapshot of a session: push is healthy again.
			bo.reset()
			failures = 0
			stopFallback()
			c.emitStatus(Status{Connected: true, Mode: ModePush})
		})
		if ctx.Err() != nil {
			return
		}

		failures++
		c.logger.Warnf("push transport failed (consecutive[%v]): %v", failures, err)

		if failures == c.cfg.PushFailureLimit {
			c.emitStatus(Status{Connected: false, Mode: ModePush})

			fctx, cancel := context.WithCancel(ctx)
			fallbackCancel = cancel
			fallbackDone = make(chan struct{})
			go func() {
				defer close(fallbackDone)
				c.pollLoop(fctx, room)
			}()
		}

		delay := bo.fail()
		c.logger.Infof("push reconnecting in %v", delay)
		select {
		case <-ctx.Done():
			return
		case <-c.clock.After(delay):
		}
	}
}

// pushSession dials the websocket and reads snapshots until the connection
// drops. onEstablished fires once, on the first good snapshot.
func (c *Client) pushSession(ctx context.Context, room string, onEstablished func()) error {
	wsURL, err := c.pushURL(room)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %v: %w", wsURL, err)
	}

	stop := make(chan struct{})
	defer close(stop)
	defer conn.Close()

	// Unblock ReadMessage when the room is torn down.
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	// Heartbeat. Drop the connection if the server stops answering pings.
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	go func() {
		pingTicker := time.NewTicker(pingPeriod)
		defer pingTicker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-pingTicker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	established := false
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		envelope := &msg.WsMessage{}
		if err := json.Unmarshal(raw, envelope); err != nil {
			c.logger.Warnf("discarding unparsable push message: %v", err)
			continue
		}
		if envelope.EventCode != msg.SnapshotCode {
			c.logger.Debugf("ignoring eventCode[%v]", envelope.EventCode)
			continue
		}

		snap, err := msg.DecodeSnapshot(envelope.EventData, c.lastSnapshot())
		if err != nil {
			c.logger.Warnf("discarding malformed snapshot: %v", err)
			continue
		}

		if !established {
			established = true
			onEstablished()
		}
		c.install(snap)
	}
}

// pollLoop fetches snapshots on a fixed interval. Serves both poll-only
// mode and the fallback while push reconnects. After PollFailureLimit
// consecutive failures connectivity is marked lost; the last good snapshot
// is retained rather than cleared.
func (c *Client) pollLoop(ctx context.Context, room string) {
	ticker := c.clock.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		case <-c.refresh:
		}

		snap, err := c.fetchSnapshot(ctx, room)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			c.logger.Warnf("poll fetch failed (consecutive[%v]): %v", failures, err)
			if failures == c.cfg.PollFailureLimit {
				c.emitStatus(Status{Connected: false, Mode: ModePoll})
			}
			continue
		}

		failures = 0
		c.emitStatus(Status{Connected: true, Mode: ModePoll})
		c.install(snap)
	}
}

func (c *Client) fetchSnapshot(ctx context.Context, room string) (*msg.Snapshot, error) {
	snap := &msg.Snapshot{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("room", room).
		SetResult(snap).
		Get(c.cfg.ServerURL + "/api/status")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("status endpoint returned %v", resp.Status)
	}

	snap.ApplyDefaults(c.lastSnapshot())
	return snap, nil
}

func (c *Client) pushURL(room string) (string, error) {
	u, err := url.Parse(c.cfg.ServerURL)
	if err != nil {
		return "", fmt.Errorf("bad server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	q := u.Query()
	if room != "" {
		q.Set("room", room)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// install records snap as the latest and delivers it, dropping the oldest
// queued snapshot if the consumer lags. Only the newest state matters.
func (c *Client) install(snap *msg.Snapshot) {
	c.setPrev(snap)
	select {
	case c.snapshots <- snap:
	default:
		select {
		case <-c.snapshots:
		default:
		}
		select {
		case c.snapshots <- snap:
		default:
		}
	}
}

func (c *Client) emitStatus(st Status) {
	c.prevMu.Lock()
	if c.seen && c.last == st {
		c.prevMu.Unlock()
		return
	}
	c.seen = true
	c.last = st
	c.prevMu.Unlock()

	c.logger.Infof("connectivity connected[%v] mode[%v]", st.Connected, st.Mode)
	select {
	case c.status <- st:
	default:
	}
}

func (c *Client) lastSnapshot() *msg.Snapshot {
	c.prevMu.Lock()
	defer c.prevMu.Unlock()
	return c.prev
}

func (c *Client) setPrev(snap *msg.Snapshot) {
	c.prevMu.Lock()
	c.prev = snap
	if snap == nil {
		c.seen = false
	}
	c.prevMu.Unlock()
}
