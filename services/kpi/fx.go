package kpi

import (
	"taskops-controlplane/services/identity"
	"taskops-controlplane/services/task"

	"go.uber.org/fx"
)

var Module = fx.Module("kpi.module",
	fx.Provide(
		NewService,
		provideTaskSource,
		provideRoster,
	),
)

func provideTaskSource(svc *task.Service) TaskSource {
	return svc
}

func provideRoster(svc *identity.Service) OperatorRoster {
	return svc
}
