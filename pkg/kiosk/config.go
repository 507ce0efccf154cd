package kiosk

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hallday/passview/pkg/infra"
)

// LiveConfig holds the tunables an admin can change while the kiosk runs.
type LiveConfig struct {
	Capacity       int  `redis:"capacity"`
	Suspended      bool `redis:"suspended"`
	OverdueMinutes int  `redis:"overdueMinutes"`
	AutoBanOverdue bool `redis:"autoBanOverdue"`

	// Failsafe: open sessions older than this are auto-ended.
	MaxMinutes int `redis:"maxMinutes"`
}

const (
	// Update config with this interval.
	cfgUpdateInterval = 30 * time.Second

	// Config redis key.
	cfgRedisKey = "kiosk:config"
)

type Config struct {
	mu   sync.RWMutex
	live LiveConfig

	redis  *redis.Client
	clock  clockwork.Clock
	logger *zap.SugaredLogger
}

func ProvideConfig(redisClient *redis.Client, clock clockwork.Clock, loggerFactory *infra.LoggerFactory) *Config {
	return &Config{
		live: LiveConfig{
			Capacity:       1,
			OverdueMinutes: 10,
			MaxMinutes:     30,
		},
		redis:  redisClient,
		clock:  clock,
		logger: loggerFactory.Create("Config").Sugar(),
	}
}

// Live returns a copy of the current tunables.
func (c *Config) Live() LiveConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.live
}

// Run polls redis for config changes until ctx is canceled. Missing keys
// keep their previous values, so a partially written hash never zeroes the
// capacity.
func (c *Config) Run(ctx context.Context) {
	ticker := c.clock.NewTicker(cfgUpdateInterval)
	defer ticker.Stop()

	for {
		c.update(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}
	}
}

func (c *Config) update(ctx context.Context) {
	next := c.Live()
	if err := c.redis.HGetAll(ctx, cfgRedisKey).Scan(&next); err != nil {
		c.logger.Errorf("err reading config from redis %v", err)
		return
	}
	if next.Capacity <= 0 {
		next.Capacity = 1
	}

	c.mu.Lock()
	changed := next != c.live
	c.live = next
	c.mu.Unlock()

	if changed {
		c.logger.Infof("updated config[%+v]", next)
	}
}
