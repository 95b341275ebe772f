package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"medlens/internal/historyexport"
	"medlens/internal/service"
)

// HistoryHandler serves the signed-in user's past analyses.
type HistoryHandler struct {
	accountService service.AccountService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(accountService service.AccountService) *HistoryHandler {
	return &HistoryHandler{accountService: accountService}
}

// List handles GET /api/v1/history
// @Summary List history
// @Description Past analyses, most recent first
// @Tags history
// @Produce json
// @Success 200 {object} Response{data=[]domain.MedicalAnalysis}
// @Failure 401 {object} ErrorResponseBody "Not signed in"
// @Security BearerAuth
// @Router /history [get]
func (h *HistoryHandler) List(c *gin.Context) {
	deviceID, ok := extractDeviceID(c)
	if !ok {
		return
	}
	history, err := h.accountService.History(c.Request.Context(), deviceID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, history)
}

// GetByID handles GET /api/v1/history/:id
// @Summary Get a past analysis
// @Tags history
// @Produce json
// @Param id path string true "Analysis ID"
// @Success 200 {object} Response{data=domain.MedicalAnalysis}
// @Failure 401 {object} ErrorResponseBody "Not signed in"
// @Failure 404 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /history/{id} [get]
func (h *HistoryHandler) GetByID(c *gin.Context) {
	deviceID, ok := extractDeviceID(c)
	if !ok {
		return
	}
	a, err := h.accountService.GetAnalysis(c.Request.Context(), deviceID, c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, a)
}

// Export handles GET /api/v1/history/export?format=csv|xlsx
// @Summary Export history
// @Description Download the signed-in user's history as CSV or XLSX
// @Tags history
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv (default) or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponseBody "Unsupported format"
// @Failure 401 {object} ErrorResponseBody "Not signed in"
// @Security BearerAuth
// @Router /history/export [get]
func (h *HistoryHandler) Export(c *gin.Context) {
	deviceID, ok := extractDeviceID(c)
	if !ok {
		return
	}
	format, err := historyexport.ParseFormat(c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}

	export, err := h.accountService.ExportHistory(c.Request.Context(), deviceID, format)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName))
	c.Data(http.StatusOK, export.ContentType, export.Data)
}
