package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	apperrors "trirule/internal/errors"
	"trirule/internal/models"
)

// Import column names, matched case-insensitively against the header row.
const (
	colDate          = "date"
	colKind          = "kind"
	colAmount        = "amount"
	colDescription   = "description"
	colCategory      = "category"
	colCategoryType  = "category_type"
	colCategoryColor = "category_color"
)

var requiredColumns = []string{colDate, colKind, colAmount}

// importService turns spreadsheet rows into ledger entries. Rows are
// validated independently: a bad row is reported and skipped, the rest
// of the batch goes through. Only an unreadable file or missing
// required columns fail the whole request.
type importService struct {
	db             *gorm.DB
	historyService HistoryServicer
}

// NewImportService creates a new ImporterServicer.
func NewImportService(db *gorm.DB, historyService HistoryServicer) ImporterServicer {
	return &importService{db: db, historyService: historyService}
}

// Import parses a CSV or XLSX file (by extension) and inserts its rows
// as transactions, creating unknown categories on the fly. Inserts and
// the per-date rollup recompute share one database transaction.
func (s *importService) Import(userID uint, r io.Reader, filename string) (*ImportSummary, error) {
	rows, err := readSheet(r, filename)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnreadableImport, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrMissingColumns, "file has no header row")
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	summary := &ImportSummary{BatchID: uuid.New().String()}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		categories, err := loadCategoryIndex(tx, userID)
		if err != nil {
			return err
		}

		touched := make(map[time.Time]struct{})

		for i, row := range rows[1:] {
			rowNum := i + 2 // 1-based, after the header

			entry, rowErr := parseImportRow(row, columns)
			if rowErr != "" {
				summary.Errors = append(summary.Errors, RowError{Row: rowNum, Message: rowErr})
				continue
			}

			var categoryID *uint
			if entry.category != "" {
				id, rowErr := resolveCategory(tx, userID, categories, entry)
				if rowErr != "" {
					summary.Errors = append(summary.Errors, RowError{Row: rowNum, Message: rowErr})
					continue
				}
				categoryID = id
			}

			transaction := &models.Transaction{
				UserID:      userID,
				CategoryID:  categoryID,
				Kind:        entry.kind,
				Amount:      entry.amount,
				Description: entry.description,
				Date:        entry.date,
			}
			if err := tx.Create(transaction).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			summary.SuccessCount++
			touched[entry.date] = struct{}{}
		}

		if len(touched) == 0 {
			return nil
		}
		dates := make([]time.Time, 0, len(touched))
		for d := range touched {
			dates = append(dates, d)
		}
		return s.historyService.RecomputeDates(tx, userID, dates)
	})
	if err != nil {
		return nil, err
	}

	summary.ErrorCount = len(summary.Errors)
	return summary, nil
}

// importRow is one parsed spreadsheet row.
type importRow struct {
	date          time.Time
	kind          models.TransactionKind
	amount        decimal.Decimal
	description   string
	category      string
	categoryType  string
	categoryColor string
}

// readSheet loads the file into rows of cells; CSV by extension,
// anything else is treated as a workbook.
func readSheet(r io.Reader, filename string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		return reader.ReadAll()
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

// mapColumns resolves header names to column indexes and checks the
// required ones are present.
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrMissingColumns,
			"missing required columns: "+strings.Join(missing, ", "))
	}
	return columns, nil
}

func cellAt(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseImportRow validates one data row. The returned string is empty
// on success and a row-level error message otherwise.
func parseImportRow(row []string, columns map[string]int) (importRow, string) {
	var entry importRow

	dateStr := cellAt(row, columns, colDate)
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return entry, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", dateStr)
	}
	entry.date = models.DateOnly(date)

	kind := models.TransactionKind(strings.ToLower(cellAt(row, columns, colKind)))
	if !kind.Valid() {
		return entry, fmt.Sprintf("invalid kind %q", cellAt(row, columns, colKind))
	}
	entry.kind = kind

	amountStr := cellAt(row, columns, colAmount)
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return entry, fmt.Sprintf("invalid amount %q", amountStr)
	}
	entry.amount = amount.Round(2)

	entry.description = cellAt(row, columns, colDescription)
	entry.category = cellAt(row, columns, colCategory)
	entry.categoryType = strings.ToLower(cellAt(row, columns, colCategoryType))
	entry.categoryColor = cellAt(row, columns, colCategoryColor)
	return entry, ""
}

// loadCategoryIndex builds a case-insensitive name index of the user's
// categories.
func loadCategoryIndex(tx *gorm.DB, userID uint) (map[string]*models.Category, error) {
	var categories []models.Category
	if err := tx.Where("user_id = ?", userID).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	index := make(map[string]*models.Category, len(categories))
	for i := range categories {
		index[strings.ToLower(categories[i].Name)] = &categories[i]
	}
	return index, nil
}

// resolveCategory matches the row's category by case-insensitive name,
// creating it when unknown. New categories need an explicit type; a
// missing color gets a random one. Created categories are added to the
// index so later rows in the same batch see them.
func resolveCategory(tx *gorm.DB, userID uint, index map[string]*models.Category, entry importRow) (*uint, string) {
	key := strings.ToLower(entry.category)
	if existing, ok := index[key]; ok {
		return &existing.ID, ""
	}

	if entry.categoryType == "" {
		return nil, fmt.Sprintf("category %q does not exist and no category_type was given", entry.category)
	}
	categoryType := models.CategoryType(entry.categoryType)
	if !categoryType.Valid() {
		return nil, fmt.Sprintf("invalid category_type %q", entry.categoryType)
	}

	color := entry.categoryColor
	if color == "" {
		color = randomColor()
	}

	category := &models.Category{
		UserID: userID,
		Name:   entry.category,
		Type:   categoryType,
		Color:  color,
	}
	if err := tx.Create(category).Error; err != nil {
		return nil, fmt.Sprintf("could not create category %q", entry.category)
	}

	index[key] = category
	return &category.ID, ""
}

func randomColor() string {
	return fmt.Sprintf("#%06x", rand.Intn(0x1000000))
}
