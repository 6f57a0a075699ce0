package sequence

import (
	"github.com/hubblehq/hubble/internal/clock"
	"github.com/hubblehq/hubble/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("sequence",
	fx.Provide(func(rdb *redis.Client, clk clock.Clock, log *zap.Logger, cfg config.Config) *Allocator {
		return NewAllocator(rdb, clk, log, cfg.Billing.AllocateTimeout)
	}),
)
