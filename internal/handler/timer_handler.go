package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pomodoro/app/internal/model"
	"pomodoro/app/internal/service"
)

type TimerHandler struct {
	timerService *service.TimerService
}

type contextRequest struct {
	ProjectID *int64  `json:"projectId"`
	TagIDs    []int64 `json:"tagIds"`
}

func NewTimerHandler(timerService *service.TimerService) *TimerHandler {
	return &TimerHandler{timerService: timerService}
}

func (h *TimerHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.timerService.GetState()})
}

func (h *TimerHandler) Start(c *gin.Context) {
	ctx, ok := bindOptionalContext(c)
	if !ok {
		return
	}

	state, apiErr := h.timerService.Start(ctx)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *TimerHandler) Pause(c *gin.Context) {
	state, apiErr := h.timerService.Pause()
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *TimerHandler) Resume(c *gin.Context) {
	ctx, ok := bindOptionalContext(c)
	if !ok {
		return
	}

	state, apiErr := h.timerService.Resume(ctx)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *TimerHandler) Skip(c *gin.Context) {
	state, apiErr := h.timerService.Skip()
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *TimerHandler) Toggle(c *gin.Context) {
	state, apiErr := h.timerService.Toggle()
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *TimerHandler) SetContext(c *gin.Context) {
	var req contextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	state, apiErr := h.timerService.SetContext(model.SessionContext{
		ProjectID: req.ProjectID,
		TagIDs:    req.TagIDs,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *TimerHandler) GetHistory(c *gin.Context) {
	filter, ok := bindSessionFilter(c)
	if !ok {
		return
	}

	records, apiErr := h.timerService.History(c.Request.Context(), filter)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": records})
}

func (h *TimerHandler) ResetAll(c *gin.Context) {
	result, apiErr := h.timerService.ResetAll(c.Request.Context())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

// bindOptionalContext parses the optional {projectId, tagIds} body; an
// empty body means "leave the current context unchanged".
func bindOptionalContext(c *gin.Context) (*model.SessionContext, bool) {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil, true
	}

	var req contextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return nil, false
	}
	return &model.SessionContext{ProjectID: req.ProjectID, TagIDs: req.TagIDs}, true
}

func bindSessionFilter(c *gin.Context) (model.SessionFilter, bool) {
	var filter model.SessionFilter
	var ok bool

	if filter.From, ok = queryInt64(c, "from"); !ok {
		return filter, false
	}
	if filter.To, ok = queryInt64(c, "to"); !ok {
		return filter, false
	}
	if filter.ProjectID, ok = queryInt64(c, "projectId"); !ok {
		return filter, false
	}
	if filter.TagID, ok = queryInt64(c, "tagId"); !ok {
		return filter, false
	}
	return filter, true
}

func queryInt64(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_query", "message": name + " must be an integer"},
		})
		return nil, false
	}
	return &parsed, true
}
