package handler

import (
	"github.com/gin-gonic/gin"

	"medlens/internal/service"
)

// DeviceHandler issues device tokens.
type DeviceHandler struct {
	deviceService service.DeviceService
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(deviceService service.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceService: deviceService}
}

// Register handles POST /api/v1/devices
// @Summary Register a device
// @Description Issue a device token that addresses this client's scan and session state
// @Tags devices
// @Produce json
// @Success 201 {object} Response{data=service.DeviceToken}
// @Failure 500 {object} ErrorResponseBody
// @Router /devices [post]
func (h *DeviceHandler) Register(c *gin.Context) {
	tok, err := h.deviceService.Register(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, tok)
}
