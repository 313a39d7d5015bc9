package services

import (
	"time"

	"github.com/shopspring/decimal"

	"debtwise/internal/models"
	"debtwise/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID uint, name string, categoryType models.CategoryType, description, icon, color string, parentID *uint) (*models.Category, error)
	GetUserCategories(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID uint) (*models.Category, error)
	UpdateCategory(userID, categoryID uint, name, description, icon, color string, parentID *uint) (*models.Category, error)
	DeleteCategory(userID, categoryID uint) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *uint
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
}

// CategorySpend is the aggregate spend for one category over a window.
type CategorySpend struct {
	CategoryID   *uint           `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Total        decimal.Decimal `json:"total"`
	Count        int64           `json:"count"`
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID uint, categoryID *uint, transactionType models.TransactionType, amount decimal.Decimal, description, merchant string, date time.Time, tags string, isRecurring bool) (*models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uint, categoryID *uint, tags, notes *string) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
	GetSpendingByCategory(userID uint, from, to time.Time) ([]CategorySpend, error)
}

// BudgetSpec holds the parameters for creating a budget.
type BudgetSpec struct {
	Name               string
	Description        string
	CategoryID         *uint
	PeriodType         models.BudgetPeriodType
	StartDate          time.Time
	Amount             decimal.Decimal
	AllowRollover      bool
	MaxRolloverPeriods *int
	MaxRolloverAmount  *decimal.Decimal
	Alerts             []AlertSpec
}

// AlertSpec holds the parameters for creating a budget alert.
type AlertSpec struct {
	ThresholdPercentage int
	Message             string
	SendEmail           bool
	SendPush            bool
}

// RolloverResult describes the outcome of closing a budget period.
type RolloverResult struct {
	BudgetID       uint                `json:"budget_id"`
	ClosedPeriod   models.BudgetPeriod `json:"closed_period"`
	NextPeriod     models.BudgetPeriod `json:"next_period"`
	RolloverAmount decimal.Decimal     `json:"rollover_amount"`
}

// TriggeredAlert is an alert that crossed its threshold during the
// current summary call. Delivery is the caller's concern.
type TriggeredAlert struct {
	AlertID             uint   `json:"alert_id"`
	ThresholdPercentage int    `json:"threshold_percentage"`
	Message             string `json:"message"`
	SendEmail           bool   `json:"send_email"`
	SendPush            bool   `json:"send_push"`
}

// BudgetSummary contains spending analysis for a budget's current period.
type BudgetSummary struct {
	BudgetID             uint                    `json:"budget_id"`
	BudgetName           string                  `json:"budget_name"`
	CategoryID           *uint                   `json:"category_id,omitempty"`
	CategoryName         string                  `json:"category_name,omitempty"`
	PeriodType           models.BudgetPeriodType `json:"period_type"`
	PeriodStart          time.Time               `json:"period_start"`
	PeriodEnd            time.Time               `json:"period_end"`
	TotalBudgeted        decimal.Decimal         `json:"total_budgeted"`
	TotalSpent           decimal.Decimal         `json:"total_spent"`
	TotalRemaining       decimal.Decimal         `json:"total_remaining"`
	PercentageUsed       float64                 `json:"percentage_used"`
	IsOverBudget         bool                    `json:"is_over_budget"`
	DaysRemaining        int                     `json:"days_remaining"`
	ProjectedEndOfPeriod decimal.Decimal         `json:"projected_end_of_period"`
	AverageSpending      decimal.Decimal         `json:"average_spending"`
	TriggeredAlerts      []TriggeredAlert        `json:"triggered_alerts"`
}

// BudgetOverview aggregates summaries across all of a user's budgets.
type BudgetOverview struct {
	TotalBudgets          int             `json:"total_budgets"`
	ActiveBudgets         int             `json:"active_budgets"`
	TotalBudgetedAmount   decimal.Decimal `json:"total_budgeted_amount"`
	TotalSpentAmount      decimal.Decimal `json:"total_spent_amount"`
	TotalRemainingAmount  decimal.Decimal `json:"total_remaining_amount"`
	OverallPercentageUsed float64         `json:"overall_percentage_used"`
	Budgets               []BudgetSummary `json:"budgets"`
}

// BudgetServicer defines the contract for the budget engine.
type BudgetServicer interface {
	CreateBudget(userID uint, spec BudgetSpec) (*models.Budget, error)
	GetUserBudgets(userID uint, page pagination.PageRequest, isActive *bool, categoryID *uint) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID uint) (*models.Budget, error)
	UpdateBudget(userID, budgetID uint, name string, amount *decimal.Decimal, isActive *bool) (*models.Budget, error)
	DeleteBudget(userID, budgetID uint) error
	GetCurrentPeriod(userID, budgetID uint, asOf time.Time) (*models.BudgetPeriod, error)
	ProcessRollover(userID, budgetID uint, periodDate time.Time) (*RolloverResult, error)
	GetBudgetSummary(userID, budgetID uint, asOf time.Time) (*BudgetSummary, error)
	GetBudgetOverview(userID uint, asOf time.Time) (*BudgetOverview, error)
	CreateAlert(userID, budgetID uint, spec AlertSpec) (*models.BudgetAlert, error)
	UpdateAlert(userID, alertID uint, threshold *int, message *string, isEnabled, sendEmail, sendPush *bool) (*models.BudgetAlert, error)
	DeleteAlert(userID, alertID uint) error
}

// AnomalyFilter holds optional filter parameters for listing anomalies.
type AnomalyFilter struct {
	Feedback *models.AnomalyFeedback
	FromDate *time.Time
	ToDate   *time.Time
}

// ForecastServicer defines the contract for the forecasting engine.
type ForecastServicer interface {
	GenerateSpendingForecast(userID uint, categoryID *uint, horizonDays int) (*models.SpendingForecast, error)
	GenerateCashflowForecast(userID uint, horizonDays int) (*models.CashflowForecast, error)
	DetectAnomalies(userID uint) ([]models.SpendingAnomaly, error)
	GetSpendingForecasts(userID uint, page pagination.PageRequest, categoryID *uint) (*pagination.PageResponse[models.SpendingForecast], error)
	GetCashflowForecasts(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.CashflowForecast], error)
	GetAnomalies(userID uint, page pagination.PageRequest, filter AnomalyFilter) (*pagination.PageResponse[models.SpendingAnomaly], error)
	SubmitAnomalyFeedback(userID, anomalyID uint, feedback models.AnomalyFeedback, notes string) (*models.SpendingAnomaly, error)
}

// InsightFilter holds optional filter parameters for listing insights.
type InsightFilter struct {
	Type     *models.InsightType
	Severity *models.InsightSeverity
	Status   *models.InsightStatus
	FromDate *time.Time
	ToDate   *time.Time
}

// InsightServicer defines the contract for the insight generator.
type InsightServicer interface {
	GenerateInsights(userID uint) ([]models.PredictiveInsight, error)
	GetUserInsights(userID uint, page pagination.PageRequest, filter InsightFilter) (*pagination.PageResponse[models.PredictiveInsight], error)
	GetInsightByID(userID, insightID uint) (*models.PredictiveInsight, error)
	UpdateInsightStatus(userID, insightID uint, status models.InsightStatus) (*models.PredictiveInsight, error)
}

// PayoffStrategy selects the ordering of debts in a payoff plan.
type PayoffStrategy string

const (
	StrategySnowball  PayoffStrategy = "snowball"
	StrategyAvalanche PayoffStrategy = "avalanche"
)

// DebtSpec holds the parameters for creating a debt.
type DebtSpec struct {
	Name            string
	Description     string
	Type            models.DebtType
	OriginalAmount  decimal.Decimal
	CurrentBalance  decimal.Decimal
	InterestRate    decimal.Decimal
	MinimumPayment  decimal.Decimal
	DueDay          *int
	OriginationDate *time.Time
}

// DebtSummary contains aggregate statistics over a user's debts.
type DebtSummary struct {
	TotalDebt           decimal.Decimal         `json:"total_debt"`
	TotalOriginalDebt   decimal.Decimal         `json:"total_original_debt"`
	TotalPaid           decimal.Decimal         `json:"total_paid"`
	TotalInterestPaid   decimal.Decimal         `json:"total_interest_paid"`
	ActiveDebts         int                     `json:"active_debts"`
	PaidOffDebts        int                     `json:"paid_off_debts"`
	AverageInterestRate decimal.Decimal         `json:"average_interest_rate"`
	TotalMinimumPayment decimal.Decimal         `json:"total_minimum_payment"`
	DebtsByType         map[models.DebtType]int `json:"debts_by_type"`
}

// DebtProjection is one debt's entry in a payoff plan.
type DebtProjection struct {
	DebtID         uint            `json:"debt_id"`
	DebtName       string          `json:"debt_name"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	PayoffOrder    int             `json:"payoff_order"`
	MonthsToPayoff int             `json:"months_to_payoff"`
	PayoffDate     time.Time       `json:"payoff_date"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
}

// PayoffPlan is a full debt payoff projection for one strategy.
type PayoffPlan struct {
	Strategy            PayoffStrategy   `json:"strategy"`
	ExtraMonthlyPayment decimal.Decimal  `json:"extra_monthly_payment"`
	TotalMonths         int              `json:"total_months"`
	PayoffDate          time.Time        `json:"payoff_date"`
	TotalInterestSaved  decimal.Decimal  `json:"total_interest_saved"`
	TimeSavedMonths     int              `json:"time_saved_months"`
	Debts               []DebtProjection `json:"debts"`
}

// DebtServicer defines the contract for the debt payoff planner.
type DebtServicer interface {
	CreateDebt(userID uint, spec DebtSpec) (*models.Debt, error)
	GetUserDebts(userID uint, page pagination.PageRequest, includeInactive bool, debtType *models.DebtType) (*pagination.PageResponse[models.Debt], error)
	GetDebtByID(userID, debtID uint) (*models.Debt, error)
	UpdateDebt(userID, debtID uint, name string, balance, minimumPayment, interestRate *decimal.Decimal) (*models.Debt, error)
	DeleteDebt(userID, debtID uint) error
	RecordPayment(userID, debtID uint, amount decimal.Decimal, date time.Time, notes string, isExtra bool) (*models.DebtPayment, error)
	GetDebtSummary(userID uint) (*DebtSummary, error)
	GeneratePayoffPlan(userID uint, strategy PayoffStrategy, extraPayment decimal.Decimal, debtIDs []uint) (*PayoffPlan, error)
}
