package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "trirule/internal/errors"
	"trirule/internal/services"
)

// maxImportSize caps uploaded spreadsheets at 10 MiB.
const maxImportSize = 10 << 20

// ImportExportHandler handles bulk spreadsheet import and export.
type ImportExportHandler struct {
	importerService services.ImporterServicer
	exporterService services.ExporterServicer
	auditService    services.AuditServicer
}

// NewImportExportHandler creates a new ImportExportHandler.
func NewImportExportHandler(importerService services.ImporterServicer, exporterService services.ExporterServicer, auditService services.AuditServicer) *ImportExportHandler {
	return &ImportExportHandler{
		importerService: importerService,
		exporterService: exporterService,
		auditService:    auditService,
	}
}

// ImportTransactions ingests a CSV or XLSX file of transactions
// @Summary     Import transactions
// @Description Bulk-import transactions from a CSV or XLSX upload; bad rows are reported, valid rows commit
// @Tags        transactions
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file true "Spreadsheet with date, kind and amount columns"
// @Success     200 {object} services.ImportSummary "Import summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/import [post]
func (h *ImportExportHandler) ImportTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "missing file upload"))
		return
	}
	if fileHeader.Size > maxImportSize {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "file exceeds 10 MiB"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrUnreadableImport, err))
		return
	}
	defer file.Close()

	summary, err := h.importerService.Import(userID, file, fileHeader.Filename)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "IMPORT_TRANSACTIONS", "transaction", 0, c.ClientIP(), map[string]interface{}{
		"batch_id":      summary.BatchID,
		"success_count": summary.SuccessCount,
		"error_count":   summary.ErrorCount,
	})

	c.JSON(http.StatusOK, summary)
}

// ExportTransactions streams the user's ledger as CSV or XLSX
// @Summary     Export transactions
// @Description Download the authenticated user's full ledger as a spreadsheet
// @Tags        transactions
// @Produce     text/csv
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       format query string false "Export format: csv (default) or xlsx"
// @Success     200 {file} file "Spreadsheet"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/export [get]
func (h *ImportExportHandler) ExportTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	format := c.DefaultQuery("format", "csv")
	stamp := time.Now().UTC().Format("20060102")

	switch format {
	case "csv":
		filename := fmt.Sprintf("transactions_%s.csv", stamp)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Header("Content-Type", "text/csv")
		if err := h.exporterService.ExportCSV(userID, c.Writer); err != nil {
			respondWithError(c, err)
			return
		}
	case "xlsx":
		f, err := h.exporterService.ExportXLSX(userID)
		if err != nil {
			respondWithError(c, err)
			return
		}
		filename := fmt.Sprintf("transactions_%s.xlsx", stamp)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := f.Write(c.Writer); err != nil {
			respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
			return
		}
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "format must be csv or xlsx"))
		return
	}

	h.auditService.Log(userID, "EXPORT_TRANSACTIONS", "transaction", 0, c.ClientIP(), map[string]interface{}{
		"format": format,
	})
}
