package kiosk

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"hallday/passview/pkg/infra"
)

// Elapsed times change every second, so displays get a fresh snapshot on a
// heartbeat even when nothing else happens.
const broadcastInterval = 1 * time.Second

type Application struct {
	config     *Config
	hub        *Hub
	state      *State
	clock      clockwork.Clock
	wsUpgrader *websocket.Upgrader
	logger     *zap.SugaredLogger
}

func ProvideApplication(config *Config, hub *Hub, state *State, clock clockwork.Clock, loggerFactory *infra.LoggerFactory) *Application {
	return &Application{
		config:     config,
		hub:        hub,
		state:      state,
		clock:      clock,
		wsUpgrader: &websocket.Upgrader{},
		logger:     loggerFactory.Create("Application").Sugar(),
	}
}

func (a *Application) Run(ctx context.Context) {
	go a.config.Run(ctx)
	go a.hub.Run(ctx)
	go a.broadcastLoop(ctx)
}

func (a *Application) broadcastLoop(ctx context.Context) {
	ticker := a.clock.NewTicker(broadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			a.hub.Broadcast(a.state.BuildSnapshot())
		}
	}
}

// HandleWs subscribes one display to the push channel. The first snapshot
// is written immediately so a reconnecting display never waits a full
// heartbeat to repaint.
func (a *Application) HandleWs(c echo.Context) error {
	conn, err := a.wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	dc := newDisplayConn(conn, a.hub, a.logger)

	if raw, err := encodeSnapshotMessage(a.state.BuildSnapshot()); err == nil {
		dc.send <- raw
	}

	a.hub.register <- dc
	dc.run()
	return nil
}

func (a *Application) HandleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, a.state.BuildSnapshot())
}

type scanRequest struct {
	Code string `json:"code"`
}

func (a *Application) HandleScan(c echo.Context) error {
	payload := &scanRequest{}
	if err := c.Bind(payload); err != nil {
		a.logger.Warnf("bad scan payload: %v", err)
	}

	result := a.state.Scan(payload.Code)
	a.hub.Broadcast(a.state.BuildSnapshot())

	status := http.StatusOK
	if !result.Ok {
		status = http.StatusConflict
		if payload.Code == "" {
			status = http.StatusBadRequest
		}
	}
	return c.JSON(status, result)
}

func (a *Application) HandleOverrideEnd(c echo.Context) error {
	result := a.state.OverrideEnd()
	a.hub.Broadcast(a.state.BuildSnapshot())

	if !result.Ok {
		return c.JSON(http.StatusBadRequest, result)
	}
	return c.JSON(http.StatusOK, result)
}

type banRequest struct {
	Code   string `json:"code"`
	Banned bool   `json:"banned"`
}

// HandleSetBanned bans or unbans a student from the admin surface. The
// auto-ban path in State covers overdue returns; this covers everything a
// teacher decides by hand.
func (a *Application) HandleSetBanned(c echo.Context) error {
	payload := &banRequest{}
	if err := c.Bind(payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "message": "Bad payload"})
	}

	if !a.state.SetBanned(payload.Code, payload.Banned) {
		return c.JSON(http.StatusNotFound, map[string]any{"ok": false, "message": fmt.Sprintf("Unknown ID: %v", payload.Code)})
	}

	a.hub.Broadcast(a.state.BuildSnapshot())
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "code": payload.Code, "banned": payload.Banned})
}

func (a *Application) HandleImportRoster(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "message": "No file uploaded"})
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	count, err := a.state.ImportRoster(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "message": err.Error()})
	}

	a.hub.Broadcast(a.state.BuildSnapshot())
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "imported": count})
}
