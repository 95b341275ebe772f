package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"medlens/internal/domain"
	"medlens/internal/service"
)

// AppHandler serves the derived presentation view.
type AppHandler struct {
	accountService service.AccountService
	scanService    service.ScanService
}

// NewAppHandler creates a new AppHandler.
func NewAppHandler(accountService service.AccountService, scanService service.ScanService) *AppHandler {
	return &AppHandler{accountService: accountService, scanService: scanService}
}

// Get handles GET /api/v1/app
// @Summary Current screen
// @Description The screen to render plus the data it needs
// @Tags app
// @Produce json
// @Success 200 {object} Response{data=AppView}
// @Security BearerAuth
// @Router /app [get]
func (h *AppHandler) Get(c *gin.Context) {
	deviceID, ok := extractDeviceID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	snap, err := h.scanService.Snapshot(ctx, deviceID)
	if err != nil {
		HandleError(c, err)
		return
	}

	user, err := h.accountService.Me(ctx, deviceID)
	if err != nil && !errors.Is(err, domain.ErrNotSignedIn) {
		HandleError(c, err)
		return
	}

	var history []domain.MedicalAnalysis
	if user != nil {
		history, err = h.accountService.History(ctx, deviceID)
		if err != nil && !errors.Is(err, domain.ErrNotSignedIn) {
			HandleError(c, err)
			return
		}
	}

	RespondOK(c, BuildAppView(user, *snap, history))
}
