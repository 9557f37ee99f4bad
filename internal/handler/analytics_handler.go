package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pomodoro/app/internal/service"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	exportService    *service.ExportService
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService, exportService *service.ExportService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, exportService: exportService}
}

func (h *AnalyticsHandler) Summary(c *gin.Context) {
	filter, ok := bindSessionFilter(c)
	if !ok {
		return
	}

	summary, apiErr := h.analyticsService.Summary(c.Request.Context(), filter)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (h *AnalyticsHandler) Timeseries(c *gin.Context) {
	filter, ok := bindSessionFilter(c)
	if !ok {
		return
	}

	points, apiErr := h.analyticsService.Timeseries(c.Request.Context(), filter)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}

func (h *AnalyticsHandler) ExportCSV(c *gin.Context) {
	from, ok := queryInt64(c, "from")
	if !ok {
		return
	}
	to, ok := queryInt64(c, "to")
	if !ok {
		return
	}

	result, apiErr := h.exportService.CSV(c.Request.Context(), from, to)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AnalyticsHandler) ExportJSON(c *gin.Context) {
	from, ok := queryInt64(c, "from")
	if !ok {
		return
	}
	to, ok := queryInt64(c, "to")
	if !ok {
		return
	}

	result, apiErr := h.exportService.JSON(c.Request.Context(), from, to)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, result)
}
