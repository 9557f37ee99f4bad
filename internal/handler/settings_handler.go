package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pomodoro/app/internal/service"
)

type SettingsHandler struct {
	settingsService *service.SettingsService
	timerService    *service.TimerService
}

func NewSettingsHandler(settingsService *service.SettingsService, timerService *service.TimerService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, timerService: timerService}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"settings": h.settingsService.Get()})
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var patch service.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	settings, apiErr := h.settingsService.Update(c.Request.Context(), patch)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	// An idle phase picks up new durations immediately; an in-flight one
	// keeps what it started with.
	timer := h.timerService.SyncAfterSettings()

	c.JSON(http.StatusOK, gin.H{"settings": settings, "timer": timer})
}
