package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medlens/internal/service"
)

// AccountHandler handles sign-up, login and logout.
type AccountHandler struct {
	accountService service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// SignUp handles POST /api/v1/account/signup
// @Summary Sign up
// @Tags account
// @Accept json
// @Produce json
// @Param body body SignUpRequest true "Profile"
// @Success 200 {object} Response{data=domain.User}
// @Failure 400 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /account/signup [post]
func (h *AccountHandler) SignUp(c *gin.Context) {
	deviceID, ok := extractDeviceID(c)
	if !ok {
		return
	}

	var input service.SignUpInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	user, err := h.accountService.SignUp(c.Request.Context(), deviceID, input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, user)
}

// LogIn handles POST /api/v1/account/login
// @Summary Log in
// @Tags account
// @Accept json
// @Produce json
// @Param body body LogInRequest true "Credentials"
// @Success 200 {object} Response{data=domain.User}
// @Failure 400 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /account/login [post]
func (h *AccountHandler) LogIn(c *gin.Context) {
	deviceID, ok := extractDeviceID(c)
	if !ok {
		return
	}

	var input service.LogInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	user, err := h.accountService.LogIn(c.Request.Context(), deviceID, input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, user)
}

// LogOut handles POST /api/v1/account/logout
// @Summary Log out
// @Tags account
// @Produce json
// @Success 200 {object} Response
// @Security BearerAuth
// @Router /account/logout [post]
func (h *AccountHandler) LogOut(c *gin.Context) {
	deviceID, ok := extractDeviceID(c)
	if !ok {
		return
	}
	if err := h.accountService.LogOut(c.Request.Context(), deviceID); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "signed out"})
}

// Me handles GET /api/v1/account/me
// @Summary Signed-in user
// @Tags account
// @Produce json
// @Success 200 {object} Response{data=domain.User}
// @Failure 401 {object} ErrorResponseBody "Not signed in"
// @Security BearerAuth
// @Router /account/me [get]
func (h *AccountHandler) Me(c *gin.Context) {
	deviceID, ok := extractDeviceID(c)
	if !ok {
		return
	}
	user, err := h.accountService.Me(c.Request.Context(), deviceID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, user)
}
