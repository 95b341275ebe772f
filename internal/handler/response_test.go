package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"medlens/internal/domain"
	"medlens/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{fmt.Errorf("%w: email failed %q", domain.ErrInvalidInput, "email"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{domain.ErrUnreadableFile, http.StatusBadRequest, "UNREADABLE_FILE"},
		{domain.ErrNotSignedIn, http.StatusUnauthorized, "NOT_SIGNED_IN"},
		{domain.ErrNoDocument, http.StatusConflict, "NO_DOCUMENT"},
		{domain.ErrAnalysisInProgress, http.StatusConflict, "ANALYSIS_IN_PROGRESS"},
		{domain.ErrScanComplete, http.StatusConflict, "SCAN_COMPLETE"},
		{domain.ErrStaleAnalysis, http.StatusConflict, "SCAN_RESET"},
		{domain.ErrAnalysisFailed, http.StatusBadGateway, "ANALYSIS_FAILED"},
		{domain.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{domain.ErrInvalidCityTier, http.StatusBadRequest, "INVALID_CITY_TIER"},
		{domain.ErrUnsupportedExport, http.StatusBadRequest, "UNSUPPORTED_EXPORT"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			status, code, _ := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestMapDomainError_AnalysisFailedUsesGenericMessage(t *testing.T) {
	_, _, msg := handler.MapDomainError(fmt.Errorf("scan: %w", domain.ErrAnalysisFailed))
	assert.Equal(t, domain.GenericAnalysisMessage, msg)
}

func TestMapDomainError_InternalHidesCause(t *testing.T) {
	_, _, msg := handler.MapDomainError(errors.New("redis: connection refused"))
	assert.NotContains(t, msg, "redis")
}
