package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a transaction. Classification comes from
// the kind alone: the amount's sign is not coupled to it.
type TransactionKind string

const (
	TransactionKindIncome   TransactionKind = "income"
	TransactionKindExpense  TransactionKind = "expense"
	TransactionKindTransfer TransactionKind = "transfer"
)

// Valid reports whether k is one of the known transaction kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case TransactionKindIncome, TransactionKindExpense, TransactionKindTransfer:
		return true
	}
	return false
}

// Transaction is the ledger-of-record for a user's financial activity.
type Transaction struct {
	Base
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	CategoryID  *uint           `gorm:"constraint:OnDelete:SET NULL" json:"category_id,omitempty"`
	Kind        TransactionKind `gorm:"size:10;not null" json:"kind"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description string          `gorm:"size:255" json:"description"`
	Date        time.Time       `gorm:"type:date;not null;index" json:"date"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// DateOnly truncates t to a calendar date at UTC midnight. All ledger
// dates are stored this way so equality and range queries line up.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
