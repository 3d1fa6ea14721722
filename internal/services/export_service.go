package services

import (
	"encoding/csv"
	"io"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	apperrors "trirule/internal/errors"
	"trirule/internal/models"
)

// exportService renders a user's ledger as a spreadsheet. Columns are
// symmetric with the import format so an export can be re-imported.
type exportService struct {
	db *gorm.DB
}

// NewExportService creates a new ExporterServicer.
func NewExportService(db *gorm.DB) ExporterServicer {
	return &exportService{db: db}
}

var exportHeader = []string{colDate, colKind, colAmount, colDescription, colCategory, colCategoryType, colCategoryColor}

// exportRows fetches the user's transactions, newest first, as cell rows.
func (s *exportService) exportRows(userID uint) ([][]string, error) {
	var transactions []models.Transaction
	if err := s.db.Preload("Category").
		Where("user_id = ?", userID).
		Order("date DESC").Order("id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rows := make([][]string, 0, len(transactions))
	for _, t := range transactions {
		var name, categoryType, color string
		if t.Category != nil {
			name = t.Category.Name
			categoryType = string(t.Category.Type)
			color = t.Category.Color
		}
		rows = append(rows, []string{
			t.Date.Format("2006-01-02"),
			string(t.Kind),
			t.Amount.StringFixed(2),
			t.Description,
			name,
			categoryType,
			color,
		})
	}
	return rows, nil
}

// ExportCSV writes the ledger as CSV.
func (s *exportService) ExportCSV(userID uint, w io.Writer) error {
	rows, err := s.exportRows(userID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(exportHeader); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// ExportXLSX builds the ledger as an XLSX workbook.
func (s *exportService) ExportXLSX(userID uint) (*excelize.File, error) {
	rows, err := s.exportRows(userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Transactions"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, name := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, name)
	}
	for r, row := range rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "C", "C", 12)
	_ = f.SetColWidth(sheet, "D", "E", 25)

	return f, nil
}
