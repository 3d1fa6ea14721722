package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"trirule/internal/services"
)

// HistoryHandler serves the precomputed history rollups.
type HistoryHandler struct {
	historyService services.HistoryServicer
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyService services.HistoryServicer) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// MonthHistoryResponse represents one day of rollup data.
type MonthHistoryResponse struct {
	Day     int             `json:"day"`
	Month   int             `json:"month"`
	Year    int             `json:"year"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// YearHistoryResponse represents one month of rollup data.
type YearHistoryResponse struct {
	Month   int             `json:"month"`
	Year    int             `json:"year"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// GetMonthlyHistory returns per-day rollups
// @Summary     Get monthly history
// @Description Get per-day income and expense rollups, optionally scoped to a year and month
// @Tags        history
// @Produce     json
// @Security    BearerAuth
// @Param       year  query int false "Filter by year"
// @Param       month query int false "Filter by month (1-12)"
// @Success     200 {array} MonthHistoryResponse "Daily rollups"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /history/monthly [get]
func (h *HistoryHandler) GetMonthlyHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, err := parseOptionalIntQuery(c, "year")
	if err != nil {
		respondWithError(c, err)
		return
	}
	month, err := parseOptionalIntQuery(c, "month")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rows, err := h.historyService.GetMonthlyHistory(userID, year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	history := make([]MonthHistoryResponse, 0, len(rows))
	for _, row := range rows {
		history = append(history, MonthHistoryResponse{
			Day:     row.Day,
			Month:   row.Month,
			Year:    row.Year,
			Income:  row.Income,
			Expense: row.Expense,
			Balance: row.Income.Sub(row.Expense),
		})
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// GetYearlyHistory returns per-month rollups
// @Summary     Get yearly history
// @Description Get per-month income and expense rollups, optionally scoped to a year
// @Tags        history
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Filter by year"
// @Success     200 {array} YearHistoryResponse "Monthly rollups"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /history/yearly [get]
func (h *HistoryHandler) GetYearlyHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, err := parseOptionalIntQuery(c, "year")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rows, err := h.historyService.GetYearlyHistory(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	history := make([]YearHistoryResponse, 0, len(rows))
	for _, row := range rows {
		history = append(history, YearHistoryResponse{
			Month:   row.Month,
			Year:    row.Year,
			Income:  row.Income,
			Expense: row.Expense,
			Balance: row.Income.Sub(row.Expense),
		})
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}
