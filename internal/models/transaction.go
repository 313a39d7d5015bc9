package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Transaction represents a financial transaction in the system.
// Amounts are always positive; the type determines the sign.
type Transaction struct {
	Base
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	CategoryID  *uint           `gorm:"index" json:"category_id,omitempty"`
	Type        TransactionType `gorm:"not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Description string          `gorm:"size:500" json:"description"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Merchant    string          `gorm:"size:255" json:"merchant,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Tags        string          `gorm:"size:500" json:"tags,omitempty"`
	ImportID    string          `gorm:"size:100" json:"import_id,omitempty"`
	IsRecurring bool            `gorm:"default:false" json:"is_recurring"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
