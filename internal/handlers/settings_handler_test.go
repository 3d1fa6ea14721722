package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"trirule/internal/models"
	"trirule/internal/services"
)

// --- mock settings service ---

type mockSettingsService struct {
	getSettingsFn    func(userID uint) (*models.UserSettings, error)
	updateSettingsFn func(userID uint, currency string, conversionRate *decimal.Decimal) (*models.UserSettings, error)
}

func (m *mockSettingsService) GetSettings(userID uint) (*models.UserSettings, error) {
	if m.getSettingsFn != nil {
		return m.getSettingsFn(userID)
	}
	return &models.UserSettings{UserID: userID, Currency: models.DefaultCurrency}, nil
}

func (m *mockSettingsService) UpdateSettings(userID uint, currency string, conversionRate *decimal.Decimal) (*models.UserSettings, error) {
	if m.updateSettingsFn != nil {
		return m.updateSettingsFn(userID, currency, conversionRate)
	}
	return &models.UserSettings{UserID: userID, Currency: currency}, nil
}

var _ services.SettingsServicer = (*mockSettingsService)(nil)

func setupSettingsRouter(handler *SettingsHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.GET("/settings", handler.GetSettings)
	auth.PUT("/settings", handler.UpdateSettings)
	return r
}

func TestSettingsHandler_GetSettings(t *testing.T) {
	t.Run("returns the currency", func(t *testing.T) {
		handler := NewSettingsHandler(&mockSettingsService{}, &mockAuditService{})
		r := setupSettingsRouter(handler)

		rec := doRequest(r, "GET", "/settings", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["currency"] != models.DefaultCurrency {
			t.Errorf("expected %q, got %v", models.DefaultCurrency, result["currency"])
		}
	})
}

func TestSettingsHandler_UpdateSettings(t *testing.T) {
	t.Run("passes conversion rate through", func(t *testing.T) {
		var gotRate *decimal.Decimal
		svc := &mockSettingsService{
			updateSettingsFn: func(userID uint, currency string, rate *decimal.Decimal) (*models.UserSettings, error) {
				gotRate = rate
				return &models.UserSettings{UserID: userID, Currency: currency}, nil
			},
		}
		handler := NewSettingsHandler(svc, &mockAuditService{})
		r := setupSettingsRouter(handler)

		rec := doRequest(r, "PUT", "/settings", `{"currency":"USD","conversion_rate":"1.1"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotRate == nil || !gotRate.Equal(decimal.RequireFromString("1.1")) {
			t.Errorf("expected rate 1.1, got %v", gotRate)
		}
	})

	t.Run("returns 400 on non-ISO currency", func(t *testing.T) {
		handler := NewSettingsHandler(&mockSettingsService{}, &mockAuditService{})
		r := setupSettingsRouter(handler)

		rec := doRequest(r, "PUT", "/settings", `{"currency":"EURO"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on missing currency", func(t *testing.T) {
		handler := NewSettingsHandler(&mockSettingsService{}, &mockAuditService{})
		r := setupSettingsRouter(handler)

		rec := doRequest(r, "PUT", "/settings", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
