package models

// CategoryType classifies a category under the 50/30/20 rule.
type CategoryType string

const (
	CategoryTypeNeed CategoryType = "need"
	CategoryTypeWant CategoryType = "want"
	CategoryTypeSave CategoryType = "save"
)

// Valid reports whether t is one of the known category types.
func (t CategoryType) Valid() bool {
	switch t {
	case CategoryTypeNeed, CategoryTypeWant, CategoryTypeSave:
		return true
	}
	return false
}

// Category is a user-scoped spending bucket. Names are unique per
// (user, name, type). Transactions reference it through a nullable
// foreign key: deleting a category leaves its transactions in place,
// uncategorized.
type Category struct {
	Base
	UserID uint         `gorm:"not null;uniqueIndex:idx_category_user_name_type" json:"user_id"`
	Name   string       `gorm:"size:50;not null;uniqueIndex:idx_category_user_name_type" json:"name"`
	Type   CategoryType `gorm:"size:10;not null;uniqueIndex:idx_category_user_name_type" json:"type"`
	Icon   string       `gorm:"size:50" json:"icon"`
	Color  string       `gorm:"size:7" json:"color"`

	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
}
