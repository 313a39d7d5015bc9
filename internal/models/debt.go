package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtType represents the kind of debt
type DebtType string

const (
	DebtTypeCreditCard   DebtType = "credit_card"
	DebtTypePersonalLoan DebtType = "personal_loan"
	DebtTypeStudentLoan  DebtType = "student_loan"
	DebtTypeMortgage     DebtType = "mortgage"
	DebtTypeAutoLoan     DebtType = "auto_loan"
	DebtTypeMedical      DebtType = "medical_debt"
	DebtTypeOther        DebtType = "other"
)

// DebtStatus represents the repayment state of a debt
type DebtStatus string

const (
	DebtStatusActive  DebtStatus = "active"
	DebtStatusPaidOff DebtStatus = "paid_off"
)

// Debt represents a tracked debt balance
type Debt struct {
	Base
	UserID      uint     `gorm:"not null;index" json:"user_id"`
	Name        string   `gorm:"size:255;not null" json:"name"`
	Description string   `json:"description,omitempty"`
	Type        DebtType `gorm:"not null;default:other" json:"type"`

	OriginalAmount decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"original_amount"`
	CurrentBalance decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"current_balance"`
	// Annual percentage rate, e.g. 19.99
	InterestRate   decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"interest_rate"`
	MinimumPayment decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"minimum_payment"`

	// Day of month the payment is due (1-31)
	DueDay          *int       `json:"due_day,omitempty"`
	OriginationDate *time.Time `json:"origination_date,omitempty"`

	Status   DebtStatus `gorm:"not null;default:active" json:"status"`
	IsActive bool       `gorm:"default:true" json:"is_active"`

	Payments []DebtPayment `gorm:"foreignKey:DebtID" json:"payments,omitempty"`
}

// DebtPayment records a payment towards a debt, split into the
// principal and interest portions.
type DebtPayment struct {
	Base
	DebtID uint `gorm:"not null;index" json:"debt_id"`
	UserID uint `gorm:"not null;index" json:"user_id"`

	Amount          decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	PaymentDate     time.Time       `gorm:"not null" json:"payment_date"`
	PrincipalAmount decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"principal_amount"`
	InterestAmount  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"interest_amount"`

	Notes          string `json:"notes,omitempty"`
	IsExtraPayment bool   `gorm:"default:false" json:"is_extra_payment"`
}
