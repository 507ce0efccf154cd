package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"hallday/passview/pkg/display"
	"hallday/passview/pkg/infra"
	"hallday/passview/pkg/scene"
	"hallday/passview/pkg/syncer"
)

// App is the headless display driver: it keeps the sync client and render
// loop running and logs a state line once a second. Real surfaces (kiosk
// screen, projector) embed the same frame stream.
type App struct {
	sync   *syncer.Client
	loop   *display.Loop
	logger *zap.SugaredLogger
}

func ProvideApp(sync *syncer.Client, loop *display.Loop, loggerFactory *infra.LoggerFactory) *App {
	return &App{
		sync:   sync,
		loop:   loop,
		logger: loggerFactory.Create("App").Sugar(),
	}
}

func (a *App) Run(room string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.sync.Connect(room)
	defer a.sync.Close()

	go a.loop.Run(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	var lastPrint time.Time
	for {
		select {
		case <-sig:
			a.logger.Info("shutting down")
			return
		case frame := <-a.loop.Frames():
			if time.Since(lastPrint) < time.Second {
				continue
			}
			lastPrint = time.Now()
			a.logger.Info(summarize(frame))
		}
	}
}

func summarize(frame display.Frame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "mode[%v] connected[%v]", frame.Mode, frame.Connected)

	for _, e := range frame.Entities {
		fmt.Fprintf(&b, " %v[%v", e.Kind, e.Name)
		if e.Kind == scene.KindUsed {
			fmt.Fprintf(&b, " %v", e.TimerText)
			if e.Overdue {
				b.WriteString(" OVERDUE")
			}
		}
		b.WriteString("]")
	}

	if len(frame.Queue) > 0 {
		fmt.Fprintf(&b, " waiting%v", frame.Queue)
	}
	return b.String()
}
