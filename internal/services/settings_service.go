package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "trirule/internal/errors"
	"trirule/internal/models"
	"trirule/internal/validator"
)

// settingsService handles user settings and the currency rebase: when
// the display currency changes with a conversion rate, every historical
// amount is rescaled so figures stay comparable in the new unit.
type settingsService struct {
	db             *gorm.DB
	historyService HistoryServicer
}

// NewSettingsService creates a new SettingsServicer.
func NewSettingsService(db *gorm.DB, historyService HistoryServicer) SettingsServicer {
	return &settingsService{db: db, historyService: historyService}
}

// GetSettings returns the user's settings. A user who has never written
// settings gets the default currency back; the row itself is only
// created on the first write.
func (s *settingsService) GetSettings(userID uint) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := s.db.Where("user_id = ?", userID).First(&settings).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &models.UserSettings{UserID: userID, Currency: models.DefaultCurrency}, nil
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &settings, nil
}

// UpdateSettings changes the user's currency. When the currency actually
// changes and a conversion rate is supplied, every transaction amount
// becomes round(amount * rate, 2) and all rollups are rebuilt from the
// rescaled ledger, all inside one database transaction. Without a rate
// only the label changes.
func (s *settingsService) UpdateSettings(userID uint, currency string, conversionRate *decimal.Decimal) (*models.UserSettings, error) {
	if !validator.IsCurrency(currency) {
		return nil, apperrors.ErrUnsupportedCurrency
	}
	if conversionRate != nil && !conversionRate.IsPositive() {
		return nil, apperrors.ErrInvalidRate
	}

	var settings models.UserSettings
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&settings).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			settings = models.UserSettings{UserID: userID, Currency: models.DefaultCurrency}
			if err := tx.Create(&settings).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		case err != nil:
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if settings.Currency != currency && conversionRate != nil {
			if err := s.rebaseAmounts(tx, userID, *conversionRate); err != nil {
				return err
			}
			if err := s.historyService.RebuildUserHistory(tx, userID); err != nil {
				return err
			}
		}

		if settings.Currency != currency {
			settings.Currency = currency
			if err := tx.Model(&models.UserSettings{}).Where("user_id = ?", userID).
				Update("currency", currency).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// rebaseAmounts rescales every transaction the user owns by rate,
// rounded to currency-unit precision.
func (s *settingsService) rebaseAmounts(tx *gorm.DB, userID uint, rate decimal.Decimal) error {
	var transactions []models.Transaction
	if err := tx.Where("user_id = ?", userID).Find(&transactions).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range transactions {
		rescaled := transactions[i].Amount.Mul(rate).Round(2)
		if err := tx.Model(&models.Transaction{}).Where("id = ?", transactions[i].ID).
			Update("amount", rescaled).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}
