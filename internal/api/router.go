package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	_ "go-etl-pipeline/docs" // swagger docs registration
	"go-etl-pipeline/internal/api/handler"
	"go-etl-pipeline/pkg/router"
)

func RegisterRoutes(r *router.Router) {
	r.POST("/api/v1/runs", handler.CreateRun)
	r.GET("/api/v1/runs", handler.ListRuns)
	// More specific routes first
	r.GET("/api/v1/runs/*/tasks", handler.GetRunTasks)
	r.GET("/api/v1/runs/*/errors", handler.GetRunErrors)
	// Generic run route last
	r.GET("/api/v1/runs/*", handler.GetRun)

	r.GET("/swagger/*", router.HandlerFunc(httpSwagger.WrapHandler))
}
