package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "trirule/internal/errors"
	"trirule/internal/services"
)

// SettingsHandler handles user settings requests.
type SettingsHandler struct {
	settingsService services.SettingsServicer
	auditService    services.AuditServicer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService services.SettingsServicer, auditService services.AuditServicer) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, auditService: auditService}
}

// UpdateSettingsRequest represents the settings update payload. A
// conversion rate makes the currency change rescale the whole ledger.
type UpdateSettingsRequest struct {
	Currency       string           `json:"currency" binding:"required,iso4217"`
	ConversionRate *decimal.Decimal `json:"conversion_rate"`
}

// SettingsResponse represents user settings in the response.
type SettingsResponse struct {
	Currency string `json:"currency"`
}

// GetSettings returns the user's settings
// @Summary     Get settings
// @Description Get the authenticated user's settings
// @Tags        settings
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} SettingsResponse "User settings"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	settings, err := h.settingsService.GetSettings(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"currency": settings.Currency})
}

// UpdateSettings updates the user's currency, optionally rebasing amounts
// @Summary     Update settings
// @Description Change the display currency; with a conversion_rate, rescale all historical amounts
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateSettingsRequest true "Settings"
// @Success     200 {object} SettingsResponse "Updated settings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	settings, err := h.settingsService.UpdateSettings(userID, req.Currency, req.ConversionRate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{"currency": req.Currency}
	if req.ConversionRate != nil {
		changes["conversion_rate"] = req.ConversionRate.String()
	}
	h.auditService.Log(userID, "UPDATE_SETTINGS", "user_settings", userID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, gin.H{"settings": gin.H{"currency": settings.Currency}})
}
