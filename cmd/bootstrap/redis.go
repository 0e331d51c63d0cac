package bootstrap

import (
	"context"

	"redemption-engine/internal/infra/replay"
	"redemption-engine/internal/pkg/config"
	"redemption-engine/internal/usecase/commands"

	"go.uber.org/fx"
)

var RedisModule = fx.Module("redis",
	fx.Provide(
		fx.Annotate(
			NewReplayStore,
			fx.As(new(commands.ReplayStore)),
		),
	),
)

func NewReplayStore(lc fx.Lifecycle, cfg config.Config) (*replay.Store, error) {
	store, cleanup, err := replay.NewStore(cfg.Redis)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return store, nil
}
