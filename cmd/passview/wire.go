//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"hallday/passview/pkg/display"
	"hallday/passview/pkg/infra"
	"hallday/passview/pkg/scene"
	"hallday/passview/pkg/syncer"
)

func Setup() *App {
	wire.Build(
		infra.ProvideLoggerFactory,
		infra.ProvideHttpClient,
		infra.ProvideClock,
		syncer.ProvideConfig,
		syncer.ProvideClient,
		wire.Bind(new(display.Source), new(*syncer.Client)),
		scene.ProvidePool,
		display.ProvideLoop,
		ProvideApp,
	)
	return nil
}
