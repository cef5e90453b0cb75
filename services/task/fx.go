package task

import (
	"taskops-controlplane/services/identity"

	"go.uber.org/fx"
)

var Module = fx.Module("task.module",
	fx.Provide(
		NewService,
		provideRoster,
	),
)

func provideRoster(svc *identity.Service) OperatorRoster {
	return svc
}
