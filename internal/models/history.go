package models

import "github.com/shopspring/decimal"

// MonthHistory is a per-day income/expense rollup, bucketed within a
// month. Derived data: every row can be rebuilt by re-summing the
// ledger for its (user, day, month, year) key. Rows are recomputed in
// place, never incremented, and never pruned when they reach zero.
type MonthHistory struct {
	ID      uint            `gorm:"primaryKey" json:"id"`
	UserID  uint            `gorm:"not null;uniqueIndex:idx_month_history_key" json:"user_id"`
	Day     int             `gorm:"not null;uniqueIndex:idx_month_history_key" json:"day"`
	Month   int             `gorm:"not null;uniqueIndex:idx_month_history_key" json:"month"`
	Year    int             `gorm:"not null;uniqueIndex:idx_month_history_key" json:"year"`
	Income  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"income"`
	Expense decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"expense"`
}

// YearHistory is a per-month income/expense rollup, bucketed within a
// year. Same derivation rules as MonthHistory, at month grain.
type YearHistory struct {
	ID      uint            `gorm:"primaryKey" json:"id"`
	UserID  uint            `gorm:"not null;uniqueIndex:idx_year_history_key" json:"user_id"`
	Month   int             `gorm:"not null;uniqueIndex:idx_year_history_key" json:"month"`
	Year    int             `gorm:"not null;uniqueIndex:idx_year_history_key" json:"year"`
	Income  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"income"`
	Expense decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"expense"`
}
