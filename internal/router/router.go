package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pomodoro/app/internal/handler"
	"pomodoro/app/internal/middleware"
)

func New(
	settings middleware.SettingsSource,
	timerHandler *handler.TimerHandler,
	settingsHandler *handler.SettingsHandler,
	projectHandler *handler.ProjectHandler,
	analyticsHandler *handler.AnalyticsHandler,
	corsOrigins []string,
) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/", handler.RemotePage)

	api := engine.Group("/api")
	api.Use(middleware.RemoteToken(settings))

	api.GET("/state", timerHandler.GetState)
	api.POST("/start", timerHandler.Start)
	api.POST("/pause", timerHandler.Pause)
	api.POST("/resume", timerHandler.Resume)
	api.POST("/skip", timerHandler.Skip)
	api.POST("/toggle", timerHandler.Toggle)
	api.POST("/context", timerHandler.SetContext)

	api.GET("/settings", settingsHandler.Get)
	api.PUT("/settings", settingsHandler.Update)

	api.GET("/projects", projectHandler.ListProjects)
	api.POST("/projects", projectHandler.UpsertProject)
	api.GET("/tags", projectHandler.ListTags)
	api.POST("/tags", projectHandler.UpsertTag)

	api.GET("/sessions", timerHandler.GetHistory)
	api.GET("/analytics/summary", analyticsHandler.Summary)
	api.GET("/analytics/timeseries", analyticsHandler.Timeseries)
	api.GET("/export/csv", analyticsHandler.ExportCSV)
	api.GET("/export/json", analyticsHandler.ExportJSON)

	api.POST("/reset", timerHandler.ResetAll)

	return engine
}
