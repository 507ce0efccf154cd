package syncer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hallday/passview/pkg/infra"
	"hallday/passview/pkg/msg"
)

func testConfig(serverURL string) *Config {
	return &Config{
		ServerURL:        serverURL,
		PushEnabled:      false,
		PollInterval:     20 * time.Millisecond,
		PushFailureLimit: 3,
		PollFailureLimit: 3,
		BackoffFloor:     10 * time.Millisecond,
		BackoffCeiling:   40 * time.Millisecond,
	}
}

func newTestClient(cfg *Config) *Client {
	return ProvideClient(cfg, infra.ProvideHttpClient(), clockwork.NewRealClock(), infra.ProvideLoggerFactory())
}

func waitSnapshot(t *testing.T, c *Client, match func(*msg.Snapshot) bool) *msg.Snapshot {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case snap := <-c.Snapshots():
			if match == nil || match(snap) {
				return snap
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
			return nil
		}
	}
}

func waitStatus(t *testing.T, c *Client, match func(Status) bool) Status {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case st := <-c.StatusEvents():
			if match(st) {
				return st
			}
		case <-deadline:
			t.Fatal("timed out waiting for status event")
			return Status{}
		}
	}
}

func writeSnapshot(w http.ResponseWriter, snap *msg.Snapshot) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func TestClient_PollModeDeliversSnapshots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/status", r.URL.Path)
		writeSnapshot(w, &msg.Snapshot{
			Capacity:       2,
			ActiveSessions: []msg.SessionInfo{{Id: 1, Name: "Alex", Elapsed: 10}},
		})
	}))
	defer srv.Close()

	c := newTestClient(testConfig(srv.URL))
	c.Connect("roomA")
	defer c.Close()

	snap := waitSnapshot(t, c, nil)
	assert.Equal(t, 2, snap.Capacity)
	require.Len(t, snap.ActiveSessions, 1)
	assert.Equal(t, "Alex", snap.ActiveSessions[0].Name)

	st := waitStatus(t, c, func(st Status) bool { return st.Connected })
	assert.Equal(t, ModePoll, st.Mode)
}

func TestClient_PollFailuresSurfaceDisconnectedAndRetainSnapshot(t *testing.T) {
	var failing atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		writeSnapshot(w, &msg.Snapshot{Capacity: 1})
	}))
	defer srv.Close()

	c := newTestClient(testConfig(srv.URL))
	c.Connect("roomA")
	defer c.Close()

	waitSnapshot(t, c, nil)
	failing.Store(true)

	waitStatus(t, c, func(st Status) bool { return !st.Connected })
	assert.NotNil(t, c.lastSnapshot(), "last good snapshot is retained while disconnected")

	failing.Store(false)
	st := waitStatus(t, c, func(st Status) bool { return st.Connected })
	assert.Equal(t, ModePoll, st.Mode, "connectivity recovers automatically")
}

func TestClient_PushModeThenFallbackPoll(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var pushAvailable atomic.Bool
	pushAvailable.Store(true)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ws":
			if !pushAvailable.Load() {
				http.Error(w, "push down", http.StatusInternalServerError)
				return
			}
			conn, err := upgrader.Upgrade(w, r, nil)
			require.NoError(t, err)
			defer conn.Close()

			raw, _ := json.Marshal(&msg.Snapshot{Capacity: 1})
			envelope, _ := json.Marshal(&msg.WsMessage{EventCode: msg.SnapshotCode, EventData: raw})
			conn.WriteMessage(websocket.TextMessage, envelope)
			time.Sleep(30 * time.Millisecond)
		case "/api/status":
			writeSnapshot(w, &msg.Snapshot{Capacity: 3})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.PushEnabled = true
	c := newTestClient(cfg)
	c.Connect("roomA")
	defer c.Close()

	snap := waitSnapshot(t, c, func(s *msg.Snapshot) bool { return s.Capacity == 1 })
	assert.Equal(t, 1, snap.Capacity, "first snapshot arrives over push")
	waitStatus(t, c, func(st Status) bool { return st.Connected && st.Mode == ModePush })

	// Kill push. After the failure threshold the fallback poll keeps data
	// flowing while reconnection continues in the background.
	pushAvailable.Store(false)

	snap = waitSnapshot(t, c, func(s *msg.Snapshot) bool { return s.Capacity == 3 })
	assert.Equal(t, 3, snap.Capacity, "fallback poll serves snapshots")
}

func TestClient_PushIgnoresMalformedMessages(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte("not json at all"))

		raw, _ := json.Marshal(&msg.Snapshot{Capacity: 2})
		envelope, _ := json.Marshal(&msg.WsMessage{EventCode: msg.SnapshotCode, EventData: raw})
		conn.WriteMessage(websocket.TextMessage, envelope)
		time.Sleep(30 * time.Millisecond)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.PushEnabled = true
	c := newTestClient(cfg)
	c.Connect("roomA")
	defer c.Close()

	snap := waitSnapshot(t, c, nil)
	assert.Equal(t, 2, snap.Capacity, "malformed message is discarded, good one installed")
}

func TestClient_ConnectIsIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSnapshot(w, &msg.Snapshot{Capacity: 1})
	}))
	defer srv.Close()

	c := newTestClient(testConfig(srv.URL))
	c.Connect("roomA")
	defer c.Close()

	first := c.done
	c.Connect("roomA")
	assert.True(t, first == c.done, "reconnecting the same room is a no-op")

	c.Connect("roomB")
	assert.False(t, first == c.done, "switching rooms tears down and restarts")
}

func TestClient_CloseIsSafeToCallTwice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSnapshot(w, &msg.Snapshot{Capacity: 1})
	}))
	defer srv.Close()

	c := newTestClient(testConfig(srv.URL))
	c.Connect("roomA")
	c.Close()
	c.Close()
}

func TestClient_InstallKeepsNewestWhenConsumerLags(t *testing.T) {
	c := newTestClient(testConfig("http://127.0.0.1:9"))

	for i := 1; i <= 20; i++ {
		c.install(&msg.Snapshot{Capacity: i})
	}

	var last *msg.Snapshot
drain:
	for {
		select {
		case s := <-c.Snapshots():
			last = s
		default:
			break drain
		}
	}

	require.NotNil(t, last)
	assert.Equal(t, 20, last.Capacity, "a lagging consumer still sees the newest snapshot")
}
