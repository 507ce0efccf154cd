package kiosk

import (
	"context"
	"encoding/json"

	"github.com/emirpasic/gods/maps/hashmap"
	"go.uber.org/zap"

	"hallday/passview/pkg/infra"
	"hallday/passview/pkg/msg"
)

// Hub fans snapshots out to every subscribed display. All client state is
// owned by the Run goroutine; registration and broadcast happen over
// channels, never by direct mutation.
type Hub struct {
	// Subscribed displays. Key value: conn.id -> conn.
	conns *hashmap.Map

	// Register requests from new display connections.
	register chan *displayConn

	// Unregister requests from closing connections.
	unregister chan *displayConn

	// Snapshots to broadcast to every display.
	broadcast chan *msg.Snapshot

	logger *zap.SugaredLogger
}

func ProvideHub(loggerFactory *infra.LoggerFactory) *Hub {
	return &Hub{
		conns:      hashmap.New(),
		register:   make(chan *displayConn, 64),
		unregister: make(chan *displayConn, 64),
		broadcast:  make(chan *msg.Snapshot, 64),
		logger:     loggerFactory.Create("Hub").Sugar(),
	}
}

// Broadcast queues snap for delivery to all displays. Drops the frame when
// the hub is saturated; the next broadcast supersedes it anyway.
func (h *Hub) Broadcast(snap *msg.Snapshot) {
	select {
	case h.broadcast <- snap:
	default:
		h.logger.Warn("broadcast queue full, dropping snapshot")
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case conn := <-h.register:
			h.logger.Debugf("register display id[%v]", conn.id)
			h.conns.Put(conn.id, conn)
			connectedDisplays.Set(float64(h.conns.Size()))

		case conn := <-h.unregister:
			if _, ok := h.conns.Get(conn.id); !ok {
				continue
			}
			h.logger.Debugf("unregister display id[%v]", conn.id)
			h.conns.Remove(conn.id)
			close(conn.send)
			connectedDisplays.Set(float64(h.conns.Size()))

		case snap := <-h.broadcast:
			raw, err := encodeSnapshotMessage(snap)
			if err != nil {
				h.logger.Errorf("cannot marshal snapshot %v", err)
				continue
			}

			// A display with a full send buffer is dead or stuck; drop it
			// and close the websocket.
			for _, value := range h.conns.Values() {
				conn := value.(*displayConn)
				select {
				case conn.send <- raw:
				default:
					h.logger.Warnf("display id[%v] send buffer full, dropping it", conn.id)
					h.conns.Remove(conn.id)
					close(conn.send)
				}
			}
			connectedDisplays.Set(float64(h.conns.Size()))
		}
	}
}

func (h *Hub) closeAll() {
	for _, value := range h.conns.Values() {
		conn := value.(*displayConn)
		close(conn.send)
	}
	h.conns.Clear()
	connectedDisplays.Set(0)
}

func encodeSnapshotMessage(snap *msg.Snapshot) ([]byte, error) {
	rawEvent, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&msg.WsMessage{
		EventCode: msg.SnapshotCode,
		EventData: rawEvent,
	})
}
