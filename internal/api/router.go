package api

import (
	_ "energy-pipeline/internal/api/docs"
	"energy-pipeline/internal/api/handler"
	"energy-pipeline/pkg/router"

	httpSwagger "github.com/swaggo/http-swagger"
)

func RegisterRoutes(r *router.Router) {
	r.GET("/api/v1/runs", handler.ListRuns)
	// More specific routes first
	r.GET("/api/v1/runs/*/results", handler.GetRunResults)
	r.GET("/api/v1/runs/*/progress", handler.GetRunProgress)
	r.GET("/api/v1/runs/*/logs", handler.GetRunLogs)
	r.GET("/api/v1/runs/*/errors", handler.GetRunErrors)
	r.GET("/api/v1/runs/*/files", handler.GetRunFiles)
	r.GET("/api/v1/download/*/*", handler.DownloadFile)
	// Generic run route last
	r.GET("/api/v1/runs/*", handler.GetRun)
	r.DELETE("/api/v1/runs/*", handler.DeleteRun)

	r.GET("/swagger/*", router.HandlerFunc(httpSwagger.WrapHandler))
}

// NewRouter builds a router with every API route registered
func NewRouter() *router.Router {
	r := router.New()
	RegisterRoutes(r)
	return r
}
