package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"taskops-controlplane/pkg/config"
	"taskops-controlplane/pkg/middleware"
)

func NewRouter(cfg *config.Config, h *Handler) *gin.Engine {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Error())

	r.GET("/healthz", h.Health)
	r.POST("/v1/login", h.Login)

	v1 := r.Group("/v1", h.Authenticate)
	{
		v1.GET("/tasks", h.ListTasks)
		v1.POST("/tasks", h.CreateTask)
		v1.PATCH("/tasks/:id", h.UpdateTask)
		v1.DELETE("/tasks/:id", h.DeleteTask)
		v1.POST("/tasks/:id/status", h.ChangeTaskStatus)
		v1.POST("/tasks/:id/comments", h.AddComment)

		v1.GET("/dashboard", h.Dashboard)

		v1.POST("/kpi", h.SubmitKPI)
		v1.GET("/kpi", h.QueryKPI)
		v1.GET("/kpi/series", h.KPISeries)

		v1.GET("/export/tasks.csv", h.ExportCSV)
		v1.GET("/export/tasks.xlsx", h.ExportXLSX)
	}

	return r
}

var Module = fx.Module("httpapi.module",
	fx.Provide(
		NewHandler,
		NewRouter,
	),
)
