package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "trirule/internal/errors"
	"trirule/internal/models"
	"trirule/internal/pagination"
)

// transactionService handles ledger mutations and reads. Every mutation
// runs in one database transaction together with the rollup recompute
// for the affected dates, so the ledger and its rollups commit or roll
// back as a unit.
type transactionService struct {
	db             *gorm.DB
	historyService HistoryServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, historyService HistoryServicer) TransactionServicer {
	return &transactionService{
		db:             db,
		historyService: historyService,
	}
}

// getUserCategory verifies that the category exists and belongs to the user.
func getUserCategory(tx *gorm.DB, userID, categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := tx.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// CreateTransaction records a new ledger entry and refreshes the
// rollups for its date.
func (s *transactionService) CreateTransaction(
	userID uint,
	categoryID *uint,
	kind models.TransactionKind,
	amount decimal.Decimal,
	description string,
	date time.Time,
) (*models.Transaction, error) {
	if !kind.Valid() {
		return nil, apperrors.ErrInvalidTransactionKind
	}
	if date.IsZero() {
		date = time.Now()
	}

	if categoryID != nil {
		if _, err := getUserCategory(s.db, userID, *categoryID); err != nil {
			return nil, err
		}
	}

	transaction := &models.Transaction{
		UserID:      userID,
		CategoryID:  categoryID,
		Kind:        kind,
		Amount:      amount,
		Description: description,
		Date:        models.DateOnly(date),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.historyService.RecomputeDate(tx, userID, transaction.Date)
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's transactions.
func (s *transactionService) GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").Order("id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", models.DateOnly(*f.FromDate))
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", models.DateOnly(*f.ToDate))
	}
	if f.Kind != nil {
		q = q.Where("kind = ?", *f.Kind)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user.
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies a partial update. When the date moves, the
// rollups for the previous date are recomputed as well, so no slot is
// left stale.
func (s *transactionService) UpdateTransaction(userID, transactionID uint, patch TransactionPatch) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	previousDate := transaction.Date

	if patch.Amount != nil {
		transaction.Amount = *patch.Amount
	}
	if patch.Description != nil {
		transaction.Description = *patch.Description
	}
	if patch.Date != nil {
		transaction.Date = models.DateOnly(*patch.Date)
	}
	if patch.Kind != nil {
		if !patch.Kind.Valid() {
			return nil, apperrors.ErrInvalidTransactionKind
		}
		transaction.Kind = *patch.Kind
	}
	if patch.CategorySet {
		if patch.CategoryID != nil {
			if _, err := getUserCategory(s.db, userID, *patch.CategoryID); err != nil {
				return nil, err
			}
		}
		transaction.CategoryID = patch.CategoryID
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !previousDate.Equal(transaction.Date) {
			if err := s.historyService.RecomputeDate(tx, userID, previousDate); err != nil {
				return err
			}
		}
		return s.historyService.RecomputeDate(tx, userID, transaction.Date)
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// DeleteTransaction removes a ledger entry and refreshes the rollups
// for its date. The rollup row stays behind, zeroed, when this was the
// last transaction of that day.
func (s *transactionService) DeleteTransaction(userID, transactionID uint) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.historyService.RecomputeDate(tx, userID, transaction.Date)
	})
}

// GetMonthlySummary aggregates the month containing now: totals by kind
// plus a per-category breakdown of expenses.
func (s *transactionService) GetMonthlySummary(userID uint, now time.Time) (*MonthlySummary, error) {
	day := models.DateOnly(now)
	first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	var transactions []models.Transaction
	if err := s.db.Preload("Category").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, first, last).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	income, expenses := sumByKind(transactions)

	byCategory := make(map[string]decimal.Decimal)
	for _, t := range transactions {
		if t.Kind != models.TransactionKindExpense || t.Category == nil {
			continue
		}
		byCategory[t.Category.Name] = byCategory[t.Category.Name].Add(t.Amount)
	}

	return &MonthlySummary{
		Month:      int(day.Month()),
		Year:       day.Year(),
		Income:     income,
		Expenses:   expenses,
		Balance:    income.Sub(expenses),
		ByCategory: byCategory,
	}, nil
}
