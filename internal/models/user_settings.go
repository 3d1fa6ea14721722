package models

// DefaultCurrency is assigned when a user has never written settings.
const DefaultCurrency = "EUR"

// UserSettings holds per-user preferences. One row per user, created
// lazily on the first settings write.
type UserSettings struct {
	UserID   uint   `gorm:"primaryKey" json:"user_id"`
	Currency string `gorm:"size:3;not null;default:'EUR'" json:"currency"`
}
