//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"hallday/passview/pkg/infra"
	"hallday/passview/pkg/kiosk"
)

func Setup() (*kiosk.Server, error) {
	wire.Build(
		infra.ProvideLoggerFactory,
		infra.ProvideRedisClient,
		infra.ProvideClock,
		kiosk.ProvideConfig,
		kiosk.ProvideStats,
		kiosk.ProvideState,
		kiosk.ProvideHub,
		kiosk.ProvideApplication,
		kiosk.ProvideServer,
	)
	return nil, nil
}
