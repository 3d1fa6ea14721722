package models

// User represents the user model in the database
type User struct {
	Base
	Username string `gorm:"size:50;not null" json:"username"`
	Email    string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"`

	Settings     *UserSettings  `gorm:"foreignKey:UserID" json:"settings,omitempty"`
	Categories   []Category     `gorm:"foreignKey:UserID" json:"categories,omitempty"`
	Transactions []Transaction  `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
	MonthHistory []MonthHistory `gorm:"foreignKey:UserID" json:"month_history,omitempty"`
	YearHistory  []YearHistory  `gorm:"foreignKey:UserID" json:"year_history,omitempty"`
}
