package services

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"trirule/internal/models"
	"trirule/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(username, email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// SettingsServicer defines the contract for user settings, including
// the currency rebase.
type SettingsServicer interface {
	GetSettings(userID uint) (*models.UserSettings, error)
	UpdateSettings(userID uint, currency string, conversionRate *decimal.Decimal) (*models.UserSettings, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID uint, name string, categoryType models.CategoryType, icon, color string) (*models.Category, error)
	GetUserCategories(userID uint, categoryType *models.CategoryType) ([]models.Category, error)
	GetCategoryByID(userID, categoryID uint) (*models.Category, error)
	UpdateCategory(userID, categoryID uint, patch CategoryPatch) (*models.Category, error)
	DeleteCategory(userID, categoryID uint) error
}

// CategoryPatch holds optional category fields for partial updates.
type CategoryPatch struct {
	Name  *string
	Type  *models.CategoryType
	Icon  *string
	Color *string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Kind       *models.TransactionKind
	CategoryID *uint
}

// TransactionPatch holds optional transaction fields for partial
// updates. CategorySet distinguishes "leave the category alone" from
// "set it to nil".
type TransactionPatch struct {
	Amount      *decimal.Decimal
	Description *string
	Date        *time.Time
	Kind        *models.TransactionKind
	CategorySet bool
	CategoryID  *uint
}

// MonthlySummary aggregates the current month's ledger activity.
type MonthlySummary struct {
	Month      int                        `json:"month"`
	Year       int                        `json:"year"`
	Income     decimal.Decimal            `json:"income"`
	Expenses   decimal.Decimal            `json:"expenses"`
	Balance    decimal.Decimal            `json:"balance"`
	ByCategory map[string]decimal.Decimal `json:"categories"`
}

// TransactionServicer defines the contract for ledger mutations and reads.
// Every mutation keeps the history rollups consistent within the same
// database transaction.
type TransactionServicer interface {
	CreateTransaction(userID uint, categoryID *uint, kind models.TransactionKind, amount decimal.Decimal, description string, date time.Time) (*models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uint, patch TransactionPatch) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
	GetMonthlySummary(userID uint, now time.Time) (*MonthlySummary, error)
}

// HistoryServicer maintains the MonthHistory and YearHistory rollups as
// truthful derivations of the ledger. Mutating methods take the caller's
// transactional handle so rollup writes commit or roll back together
// with the ledger write that triggered them.
type HistoryServicer interface {
	RecomputeDay(tx *gorm.DB, userID uint, date time.Time) error
	RecomputeMonth(tx *gorm.DB, userID uint, date time.Time) error
	RecomputeDate(tx *gorm.DB, userID uint, date time.Time) error
	RecomputeDates(tx *gorm.DB, userID uint, dates []time.Time) error
	RebuildUserHistory(tx *gorm.DB, userID uint) error
	GetMonthlyHistory(userID uint, year, month *int) ([]models.MonthHistory, error)
	GetYearlyHistory(userID uint, year *int) ([]models.YearHistory, error)
}

// RowError describes a single rejected import row.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportSummary reports the outcome of a bulk import. Row failures are
// collected here rather than failing the batch.
type ImportSummary struct {
	BatchID      string     `json:"batch_id"`
	SuccessCount int        `json:"success_count"`
	ErrorCount   int        `json:"error_count"`
	Errors       []RowError `json:"errors,omitempty"`
}

// ImporterServicer turns spreadsheet rows into ledger entries.
type ImporterServicer interface {
	Import(userID uint, r io.Reader, filename string) (*ImportSummary, error)
}

// ExporterServicer renders a user's ledger as a spreadsheet.
type ExporterServicer interface {
	ExportCSV(userID uint, w io.Writer) error
	ExportXLSX(userID uint) (*excelize.File, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
