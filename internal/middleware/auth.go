package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medlens/internal/domain"
	"medlens/internal/service"
)

const (
	ContextKeyDeviceID = "device_id"
	ContextKeyClaims   = "claims"
)

// DeviceAuth returns Gin middleware that validates the device token and
// injects the device id.
func DeviceAuth(deviceService service.DeviceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid authorization header"},
			})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := deviceService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "invalid or expired device token"},
			})
			return
		}

		c.Set(ContextKeyDeviceID, claims.DeviceID)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetDeviceID extracts the device ID from the Gin context.
func GetDeviceID(c *gin.Context) (string, error) {
	val, exists := c.Get(ContextKeyDeviceID)
	if !exists {
		return "", domain.ErrUnauthorized
	}
	id, ok := val.(string)
	if !ok || id == "" {
		return "", domain.ErrUnauthorized
	}
	return id, nil
}
