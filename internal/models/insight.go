package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InsightType represents the kind of insight or prediction
type InsightType string

const (
	InsightTypeSpendingForecast   InsightType = "spending_forecast"
	InsightTypeCashflowForecast   InsightType = "cashflow_forecast"
	InsightTypeBudgetProjection   InsightType = "budget_projection"
	InsightTypeAnomalyDetection   InsightType = "anomaly_detection"
	InsightTypeCategoryTrend      InsightType = "category_trend"
	InsightTypeDebtPayoff         InsightType = "debt_payoff"
	InsightTypeSavingsOpportunity InsightType = "savings_opportunity"
)

// InsightSeverity represents the severity level of an insight
type InsightSeverity string

const (
	SeverityInfo     InsightSeverity = "info"
	SeveritySuccess  InsightSeverity = "success"
	SeverityWarning  InsightSeverity = "warning"
	SeverityCritical InsightSeverity = "critical"
)

// InsightStatus represents the lifecycle state of an insight
type InsightStatus string

const (
	InsightStatusActive       InsightStatus = "active"
	InsightStatusAcknowledged InsightStatus = "acknowledged"
	InsightStatusResolved     InsightStatus = "resolved"
	InsightStatusDismissed    InsightStatus = "dismissed"
)

// TrendDirection describes how a fitted spending trend is moving
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// SpendingForecast is a point-in-time spending prediction. Rows are
// never mutated after creation; newer rows supersede older ones.
type SpendingForecast struct {
	Base
	UserID     uint  `gorm:"not null;index" json:"user_id"`
	CategoryID *uint `gorm:"index" json:"category_id,omitempty"`

	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`

	PredictedAmount decimal.Decimal  `gorm:"type:numeric(10,2);not null" json:"predicted_amount"`
	ConfidenceLevel float64          `gorm:"not null" json:"confidence_level"`
	StdDev          *decimal.Decimal `gorm:"type:numeric(10,2)" json:"std_dev,omitempty"`
	LowerBound      decimal.Decimal  `gorm:"type:numeric(10,2)" json:"lower_bound"`
	UpperBound      decimal.Decimal  `gorm:"type:numeric(10,2)" json:"upper_bound"`

	ModelType     string `gorm:"size:50;not null" json:"model_type"`
	SampleBuckets int    `json:"sample_buckets"`

	HistoricalAvg   decimal.Decimal `gorm:"type:numeric(10,2)" json:"historical_avg"`
	TrendDirection  TrendDirection  `gorm:"size:20" json:"trend_direction,omitempty"`
	TrendPercentage float64         `json:"trend_percentage"`
}

// CashflowForecast is a point-in-time balance projection.
type CashflowForecast struct {
	Base
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	ForecastDate time.Time `gorm:"not null;index" json:"forecast_date"`

	CurrentBalance    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"current_balance"`
	PredictedIncome   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"predicted_income"`
	PredictedExpenses decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"predicted_expenses"`
	PredictedBalance  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"predicted_balance"`

	MinimumBalance decimal.Decimal `gorm:"type:numeric(12,2)" json:"minimum_balance"`
	LowBalanceDate *time.Time      `json:"low_balance_date,omitempty"`
	OverdraftRisk  float64         `gorm:"not null;default:0" json:"overdraft_risk"`
}

// AnomalyFeedback is the user's verdict on a flagged transaction
type AnomalyFeedback string

const (
	AnomalyUnconfirmed AnomalyFeedback = "unconfirmed"
	AnomalyConfirmed   AnomalyFeedback = "confirmed"
	AnomalyDismissed   AnomalyFeedback = "dismissed"
)

// SpendingAnomaly records a transaction flagged as a statistical outlier
// within its category.
type SpendingAnomaly struct {
	Base
	UserID        uint `gorm:"not null;index" json:"user_id"`
	TransactionID uint `gorm:"not null;index" json:"transaction_id"`

	Score            float64         `gorm:"not null" json:"score"`
	ExpectedRangeMin decimal.Decimal `gorm:"type:numeric(10,2)" json:"expected_range_min"`
	ExpectedRangeMax decimal.Decimal `gorm:"type:numeric(10,2)" json:"expected_range_max"`
	ActualAmount     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"actual_amount"`

	DetectionMethod string          `gorm:"size:50;not null" json:"detection_method"`
	Confidence      float64         `gorm:"not null" json:"confidence"`
	Feedback        AnomalyFeedback `gorm:"size:20;not null;default:unconfirmed" json:"feedback"`
	UserNotes       string          `json:"user_notes,omitempty"`

	Transaction *Transaction `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`
}

// PredictiveInsight is a generated recommendation. Subject is the dedup
// key within (user, type): two live insights never share all three.
type PredictiveInsight struct {
	Base
	UserID uint `gorm:"not null;index" json:"user_id"`

	Type     InsightType     `gorm:"size:50;not null;index" json:"type"`
	Subject  string          `gorm:"size:100;not null" json:"subject"`
	Title    string          `gorm:"size:200;not null" json:"title"`
	Detail   string          `gorm:"not null" json:"detail"`
	Severity InsightSeverity `gorm:"size:20;not null;default:info" json:"severity"`
	Status   InsightStatus   `gorm:"size:20;not null;default:active;index" json:"status"`

	CategoryID *uint `json:"category_id,omitempty"`
	BudgetID   *uint `json:"budget_id,omitempty"`

	Recommendation   string           `json:"recommendation,omitempty"`
	PotentialSavings *decimal.Decimal `gorm:"type:numeric(10,2)" json:"potential_savings,omitempty"`
	RiskScore        *float64         `json:"risk_score,omitempty"`
	ValidUntil       *time.Time       `json:"valid_until,omitempty"`

	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	DismissedAt    *time.Time `json:"dismissed_at,omitempty"`
}
