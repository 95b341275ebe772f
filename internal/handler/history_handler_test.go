package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medlens/internal/domain"
	"medlens/internal/handler"
	"medlens/internal/historyexport"
	"medlens/internal/service"
	"medlens/mocks"
)

func TestHistoryHandler_List(t *testing.T) {
	mockAccounts := new(mocks.MockAccountService)
	h := handler.NewHistoryHandler(mockAccounts)
	mockAccounts.On("History", mock.Anything, "dev-1").Return(sampleHistory(), nil)

	c, w := newDeviceContext(http.MethodGet, "/api/v1/history", http.NoBody)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	items, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 2)
}

func TestHistoryHandler_GetByIDNotFound(t *testing.T) {
	mockAccounts := new(mocks.MockAccountService)
	h := handler.NewHistoryHandler(mockAccounts)
	mockAccounts.On("GetAnalysis", mock.Anything, "dev-1", "x").Return(nil, domain.ErrNotFound)

	c, w := newDeviceContext(http.MethodGet, "/api/v1/history/x", http.NoBody)
	c.Params = append(c.Params, ginParam("id", "x"))
	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistoryHandler_ExportXLSX(t *testing.T) {
	mockAccounts := new(mocks.MockAccountService)
	h := handler.NewHistoryHandler(mockAccounts)
	mockAccounts.On("ExportHistory", mock.Anything, "dev-1", historyexport.FormatXLSX).Return(&service.Export{
		FileName:    "Asha_history_2026-03-01.xlsx",
		ContentType: historyexport.FormatXLSX.ContentType(),
		Data:        []byte("PK"),
	}, nil)

	c, w := newDeviceContext(http.MethodGet, "/api/v1/history/export?format=xlsx", http.NoBody)
	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="Asha_history_2026-03-01.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, historyexport.FormatXLSX.ContentType(), w.Header().Get("Content-Type"))
	assert.Equal(t, "PK", w.Body.String())
}

func TestHistoryHandler_ExportUnsupportedFormat(t *testing.T) {
	mockAccounts := new(mocks.MockAccountService)
	h := handler.NewHistoryHandler(mockAccounts)

	c, w := newDeviceContext(http.MethodGet, "/api/v1/history/export?format=pdf", http.NoBody)
	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_EXPORT", decodeResponse(t, w).Error.Code)
	mockAccounts.AssertNotCalled(t, "ExportHistory", mock.Anything, mock.Anything, mock.Anything)
}
