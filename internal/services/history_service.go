package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "trirule/internal/errors"
	"trirule/internal/models"
)

// historyService keeps the MonthHistory and YearHistory rollups in sync
// with the ledger. Rollups are always re-derived by re-summing the
// transactions for the affected slot; prior rollup values are never
// read or trusted, so partial failures cannot cause drift.
type historyService struct {
	db *gorm.DB
}

// NewHistoryService creates a new HistoryServicer.
func NewHistoryService(db *gorm.DB) HistoryServicer {
	return &historyService{db: db}
}

// sumByKind splits a set of transactions into income and expense
// totals. Transfers count toward neither.
func sumByKind(transactions []models.Transaction) (income, expense decimal.Decimal) {
	for _, t := range transactions {
		switch t.Kind {
		case models.TransactionKindIncome:
			income = income.Add(t.Amount)
		case models.TransactionKindExpense:
			expense = expense.Add(t.Amount)
		case models.TransactionKindTransfer:
			// moves money between buckets, not in or out
		}
	}
	return income, expense
}

// RecomputeDay re-sums the ledger for the given user and calendar day
// and writes the result into the matching MonthHistory row, creating it
// on first use. A day with no remaining transactions yields a zeroed
// row; the row is not deleted.
func (s *historyService) RecomputeDay(tx *gorm.DB, userID uint, date time.Time) error {
	day := models.DateOnly(date)

	var transactions []models.Transaction
	if err := tx.Where("user_id = ? AND date = ?", userID, day).Find(&transactions).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	income, expense := sumByKind(transactions)

	var row models.MonthHistory
	err := tx.Where("user_id = ? AND day = ? AND month = ? AND year = ?",
		userID, day.Day(), int(day.Month()), day.Year()).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.MonthHistory{
			UserID:  userID,
			Day:     day.Day(),
			Month:   int(day.Month()),
			Year:    day.Year(),
			Income:  income,
			Expense: expense,
		}
		if err := tx.Create(&row).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	case err != nil:
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	default:
		// map form so zero values still overwrite
		if err := tx.Model(&models.MonthHistory{}).Where("id = ?", row.ID).
			Updates(map[string]interface{}{"income": income, "expense": expense}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// RecomputeMonth re-sums the ledger across the calendar month containing
// date and writes the result into the matching YearHistory row.
func (s *historyService) RecomputeMonth(tx *gorm.DB, userID uint, date time.Time) error {
	day := models.DateOnly(date)
	first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	var transactions []models.Transaction
	if err := tx.Where("user_id = ? AND date >= ? AND date <= ?", userID, first, last).
		Find(&transactions).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	income, expense := sumByKind(transactions)

	var row models.YearHistory
	err := tx.Where("user_id = ? AND month = ? AND year = ?",
		userID, int(day.Month()), day.Year()).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.YearHistory{
			UserID:  userID,
			Month:   int(day.Month()),
			Year:    day.Year(),
			Income:  income,
			Expense: expense,
		}
		if err := tx.Create(&row).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	case err != nil:
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	default:
		if err := tx.Model(&models.YearHistory{}).Where("id = ?", row.ID).
			Updates(map[string]interface{}{"income": income, "expense": expense}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// RecomputeDate refreshes both rollups for one calendar date.
func (s *historyService) RecomputeDate(tx *gorm.DB, userID uint, date time.Time) error {
	if err := s.RecomputeDay(tx, userID, date); err != nil {
		return err
	}
	return s.RecomputeMonth(tx, userID, date)
}

// RecomputeDates refreshes both rollups for a set of dates, visiting
// each distinct day once and each distinct month once.
func (s *historyService) RecomputeDates(tx *gorm.DB, userID uint, dates []time.Time) error {
	days := make(map[time.Time]struct{})
	months := make(map[time.Time]struct{})
	for _, d := range dates {
		day := models.DateOnly(d)
		days[day] = struct{}{}
		months[time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)] = struct{}{}
	}

	for day := range days {
		if err := s.RecomputeDay(tx, userID, day); err != nil {
			return err
		}
	}
	for month := range months {
		if err := s.RecomputeMonth(tx, userID, month); err != nil {
			return err
		}
	}
	return nil
}

// RebuildUserHistory recomputes every rollup slot the user has: every
// distinct ledger date plus every pre-existing rollup row, so rows whose
// transactions vanished are re-zeroed rather than left stale. Used after
// a currency rebase.
func (s *historyService) RebuildUserHistory(tx *gorm.DB, userID uint) error {
	var dates []time.Time
	if err := tx.Model(&models.Transaction{}).Where("user_id = ?", userID).
		Distinct("date").Pluck("date", &dates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var monthRows []models.MonthHistory
	if err := tx.Where("user_id = ?", userID).Find(&monthRows).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, r := range monthRows {
		dates = append(dates, time.Date(r.Year, time.Month(r.Month), r.Day, 0, 0, 0, 0, time.UTC))
	}

	var yearRows []models.YearHistory
	if err := tx.Where("user_id = ?", userID).Find(&yearRows).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, r := range yearRows {
		dates = append(dates, time.Date(r.Year, time.Month(r.Month), 1, 0, 0, 0, 0, time.UTC))
	}

	return s.RecomputeDates(tx, userID, dates)
}

// GetMonthlyHistory returns the user's daily rollups ordered by year,
// month, day, optionally restricted to one year and/or month.
func (s *historyService) GetMonthlyHistory(userID uint, year, month *int) ([]models.MonthHistory, error) {
	q := s.db.Where("user_id = ?", userID)
	if year != nil {
		q = q.Where("year = ?", *year)
	}
	if month != nil {
		q = q.Where("month = ?", *month)
	}

	var rows []models.MonthHistory
	if err := q.Order("year").Order("month").Order("day").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

// GetYearlyHistory returns the user's monthly rollups ordered by year,
// month, optionally restricted to one year.
func (s *historyService) GetYearlyHistory(userID uint, year *int) ([]models.YearHistory, error) {
	q := s.db.Where("user_id = ?", userID)
	if year != nil {
		q = q.Where("year = ?", *year)
	}

	var rows []models.YearHistory
	if err := q.Order("year").Order("month").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}
