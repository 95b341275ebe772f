package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"medlens/internal/domain"
	"medlens/internal/service"
)

// multipartOverhead is the allowance for multipart framing on top of the
// file size limit.
const multipartOverhead = 1 << 20

// ScanHandler drives the device's scan: file, region, analysis, reset.
type ScanHandler struct {
	scanService    service.ScanService
	maxUploadBytes int64
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(scanService service.ScanService, maxUploadBytes int64) *ScanHandler {
	return &ScanHandler{scanService: scanService, maxUploadBytes: maxUploadBytes}
}

// Get handles GET /api/v1/scan
// @Summary Current scan
// @Description State, selected document, region tier and result or error
// @Tags scan
// @Produce json
// @Success 200 {object} Response{data=scan.Snapshot}
// @Failure 401 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /scan [get]
func (h *ScanHandler) Get(c *gin.Context) {
	deviceID, ok := extractDeviceID(c)
	if !ok {
		return
	}
	snap, err := h.scanService.Snapshot(c.Request.Context(), deviceID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, snap)
}

// SelectFile handles POST /api/v1/scan/file
// @Summary Select a document
// @Description Upload the document to analyze (PDF, JPG, PNG, WEBP, HEIC)
// @Tags scan
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document to analyze"
// @Success 200 {object} Response{data=scan.Snapshot}
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 409 {object} ErrorResponseBody "Analysis in progress"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Security BearerAuth
// @Router /scan/file [post]
func (h *ScanHandler) SelectFile(c *gin.Context) {
	deviceID, ok := extractDeviceID(c)
	if !ok {
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(c, domain.ErrFileTooLarge)
			return
		}
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	snap, err := h.scanService.SelectFile(c.Request.Context(), deviceID, service.SelectFileInput{
		File:        file,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, snap)
}

// SetRegion handles PUT /api/v1/scan/region
// @Summary Select region tier
// @Tags scan
// @Accept json
// @Produce json
// @Param body body RegionRequest true "Tier-1, Tier-2 or Tier-3"
// @Success 200 {object} Response{data=scan.Snapshot}
// @Failure 400 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /scan/region [put]
func (h *ScanHandler) SetRegion(c *gin.Context) {
	deviceID, ok := extractDeviceID(c)
	if !ok {
		return
	}

	var input RegionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	snap, err := h.scanService.SetCityTier(c.Request.Context(), deviceID, domain.CityTier(input.CityTier))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, snap)
}

// Analyze handles POST /api/v1/scan/analyze
// @Summary Analyze the selected document
// @Tags scan
// @Produce json
// @Success 200 {object} Response{data=domain.MedicalAnalysis}
// @Failure 409 {object} ErrorResponseBody "No document, already analyzing, or scan reset"
// @Failure 429 {object} ErrorResponseBody "Rate limited"
// @Failure 502 {object} ErrorResponseBody "Analysis failed"
// @Security BearerAuth
// @Router /scan/analyze [post]
func (h *ScanHandler) Analyze(c *gin.Context) {
	deviceID, ok := extractDeviceID(c)
	if !ok {
		return
	}
	result, err := h.scanService.Analyze(c.Request.Context(), deviceID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Reset handles POST /api/v1/scan/reset
// @Summary Start a new scan
// @Description Clears the document and result; a running analysis is discarded
// @Tags scan
// @Produce json
// @Success 200 {object} Response{data=scan.Snapshot}
// @Failure 401 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /scan/reset [post]
func (h *ScanHandler) Reset(c *gin.Context) {
	deviceID, ok := extractDeviceID(c)
	if !ok {
		return
	}
	snap, err := h.scanService.Reset(c.Request.Context(), deviceID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, snap)
}

// ShowHistory handles POST /api/v1/scan/history/:id
// @Summary Show a past analysis
// @Tags scan
// @Produce json
// @Param id path string true "Analysis ID"
// @Success 200 {object} Response{data=scan.Snapshot}
// @Failure 401 {object} ErrorResponseBody "Not signed in"
// @Failure 404 {object} ErrorResponseBody "Not in history"
// @Failure 409 {object} ErrorResponseBody "Analysis in progress"
// @Security BearerAuth
// @Router /scan/history/{id} [post]
func (h *ScanHandler) ShowHistory(c *gin.Context) {
	deviceID, ok := extractDeviceID(c)
	if !ok {
		return
	}
	snap, err := h.scanService.ShowHistory(c.Request.Context(), deviceID, c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, snap)
}
