package main

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskops-controlplane/pkg/config"
	"taskops-controlplane/pkg/db"
	"taskops-controlplane/pkg/gen"
	"taskops-controlplane/pkg/logger"
	"taskops-controlplane/pkg/server"
	"taskops-controlplane/services/export"
	"taskops-controlplane/services/httpapi"
	"taskops-controlplane/services/identity"
	"taskops-controlplane/services/kpi"
	"taskops-controlplane/services/task"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		gen.Module,
		fx.Invoke(migrate),
		identity.Module,
		task.Module,
		kpi.Module,
		export.Module,
		httpapi.Module,
		server.Module,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&identity.Identity{},
		&task.Task{},
		&kpi.WeeklyKPIRecord{},
	)
}
