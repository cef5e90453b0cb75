package identity

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("identity.module",
	fx.Provide(
		NewService,
	),
	fx.Invoke(SeedOnStart),
)

func SeedOnStart(lc fx.Lifecycle, svc *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return svc.Seed(ctx)
		},
	})
}
