package kiosk

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hallday/passview/pkg/infra"
)

func newTestConfig(t *testing.T) (*Config, redismock.ClientMock) {
	t.Helper()

	db, mock := redismock.NewClientMock()
	return &Config{
		live:   LiveConfig{Capacity: 1, OverdueMinutes: 10, MaxMinutes: 30},
		redis:  db,
		clock:  clockwork.NewFakeClock(),
		logger: infra.ProvideLoggerFactory().Create("Config").Sugar(),
	}, mock
}

func TestConfig_UpdateAppliesRedisHash(t *testing.T) {
	cfg, mock := newTestConfig(t)

	mock.ExpectHGetAll(cfgRedisKey).SetVal(map[string]string{
		"capacity":       "3",
		"suspended":      "1",
		"overdueMinutes": "15",
		"autoBanOverdue": "1",
		"maxMinutes":     "45",
	})

	cfg.update(context.Background())

	live := cfg.Live()
	assert.Equal(t, 3, live.Capacity)
	assert.True(t, live.Suspended)
	assert.Equal(t, 15, live.OverdueMinutes)
	assert.True(t, live.AutoBanOverdue)
	assert.Equal(t, 45, live.MaxMinutes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfig_PartialHashKeepsPreviousValues(t *testing.T) {
	cfg, mock := newTestConfig(t)

	mock.ExpectHGetAll(cfgRedisKey).SetVal(map[string]string{
		"suspended": "1",
	})

	cfg.update(context.Background())

	live := cfg.Live()
	assert.True(t, live.Suspended)
	assert.Equal(t, 1, live.Capacity, "missing keys keep previous values")
	assert.Equal(t, 10, live.OverdueMinutes)
	assert.Equal(t, 30, live.MaxMinutes)
}

func TestConfig_ZeroCapacityIsFloored(t *testing.T) {
	cfg, mock := newTestConfig(t)

	mock.ExpectHGetAll(cfgRedisKey).SetVal(map[string]string{
		"capacity": "0",
	})

	cfg.update(context.Background())
	assert.Equal(t, 1, cfg.Live().Capacity)
}

func TestConfig_RedisErrorKeepsPreviousConfig(t *testing.T) {
	cfg, mock := newTestConfig(t)
	before := cfg.Live()

	mock.ExpectHGetAll(cfgRedisKey).SetErr(errors.New("redis down"))

	cfg.update(context.Background())
	assert.Equal(t, before, cfg.Live())
}
