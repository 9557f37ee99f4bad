package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "pomodoro/app/internal/errors"
	"pomodoro/app/internal/model"
)

const TokenHeader = "X-Pomodoro-Token"

// SettingsSource exposes the live settings to the request path so a token
// rotation or a remote-control toggle applies without a restart.
type SettingsSource interface {
	Get() model.TimerSettings
}

// RemoteToken guards the LAN remote-control API with the shared-secret
// token, taken from the request header or a ?token= query parameter. While
// remote control is disabled the whole API answers 404.
func RemoteToken(settings SettingsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := settings.Get()

		if !current.RemoteControlEnabled {
			writeError(c, apperrors.NotFound("not_found", "not found"))
			return
		}

		token := c.GetHeader(TokenHeader)
		if token == "" {
			token = c.Query("token")
		}

		expected := []byte(current.RemoteControlToken)
		if len(token) == 0 || subtle.ConstantTimeCompare([]byte(token), expected) != 1 {
			writeError(c, apperrors.Unauthorized("invalid or missing token"))
			return
		}

		c.Next()
	}
}

func writeError(c *gin.Context, apiErr *apperrors.APIError) {
	c.AbortWithStatusJSON(apiErr.Status, gin.H{
		"error": gin.H{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}
