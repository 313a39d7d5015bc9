package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriodType represents the length of a budget period
type BudgetPeriodType string

const (
	BudgetPeriodWeekly    BudgetPeriodType = "weekly"
	BudgetPeriodMonthly   BudgetPeriodType = "monthly"
	BudgetPeriodQuarterly BudgetPeriodType = "quarterly"
	BudgetPeriodYearly    BudgetPeriodType = "yearly"
)

// Budget represents a spending limit tracked across consecutive periods.
// A nil CategoryID means the budget covers all expense categories.
type Budget struct {
	Base
	UserID      uint             `gorm:"not null;index" json:"user_id"`
	CategoryID  *uint            `gorm:"index" json:"category_id,omitempty"`
	Name        string           `gorm:"size:100;not null" json:"name"`
	Description string           `gorm:"size:500" json:"description"`
	PeriodType  BudgetPeriodType `gorm:"not null;default:monthly" json:"period_type"`
	StartDate   time.Time        `gorm:"not null" json:"start_date"`
	Amount      decimal.Decimal  `gorm:"type:numeric(10,2);not null" json:"amount"`

	// Rollover policy. Nil limits mean unlimited.
	AllowRollover      bool             `gorm:"default:false" json:"allow_rollover"`
	MaxRolloverPeriods *int             `json:"max_rollover_periods,omitempty"`
	MaxRolloverAmount  *decimal.Decimal `gorm:"type:numeric(10,2)" json:"max_rollover_amount,omitempty"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	// Relationships
	Category *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Periods  []BudgetPeriod `gorm:"foreignKey:BudgetID" json:"periods,omitempty"`
	Alerts   []BudgetAlert  `gorm:"foreignKey:BudgetID" json:"alerts,omitempty"`
}

// BudgetPeriod is one elapsed window of a budget. Dates are inclusive
// on both ends. At most one period of a budget covers any given day.
type BudgetPeriod struct {
	Base
	BudgetID  uint      `gorm:"not null;index" json:"budget_id"`
	StartDate time.Time `gorm:"not null;index" json:"start_date"`
	EndDate   time.Time `gorm:"not null;index" json:"end_date"`

	BaseAmount      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"base_amount"`
	RolloverAmount  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"rollover_amount"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	SpentAmount     decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"spent_amount"`
	RemainingAmount decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"remaining_amount"`

	// Closing a period freezes its spent amount.
	IsClosed bool `gorm:"default:false" json:"is_closed"`
}

// BudgetAlert fires when a period's spent/total ratio crosses the
// threshold. LastFiredPeriodID keeps it to once per period.
type BudgetAlert struct {
	Base
	BudgetID            uint   `gorm:"not null;index" json:"budget_id"`
	ThresholdPercentage int    `gorm:"not null" json:"threshold_percentage"`
	Message             string `gorm:"size:500" json:"message,omitempty"`
	IsEnabled           bool   `gorm:"default:true" json:"is_enabled"`
	SendEmail           bool   `gorm:"default:true" json:"send_email"`
	SendPush            bool   `gorm:"default:false" json:"send_push"`
	LastFiredPeriodID   *uint  `json:"last_fired_period_id,omitempty"`
}
