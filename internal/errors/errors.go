// Package errors provides custom error types for the DebtWise API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Category errors.
var (
	ErrCategoryNotFound    = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryInUse       = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing transactions", StatusCode: http.StatusConflict}
	ErrCategoryHasChildren = &AppError{Code: "CATEGORY_HAS_CHILDREN", Message: "Category has child categories", StatusCode: http.StatusConflict}
	ErrSelfParentCategory  = &AppError{Code: "SELF_PARENT_CATEGORY", Message: "A category cannot be its own parent", StatusCode: http.StatusBadRequest}
)

// Transaction errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Unsupported transaction type", StatusCode: http.StatusBadRequest}
)

// Budget errors.
var (
	ErrBudgetNotFound       = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrBudgetInactive       = &AppError{Code: "BUDGET_INACTIVE", Message: "Budget is not active", StatusCode: http.StatusBadRequest}
	ErrDuplicateBudgetName  = &AppError{Code: "DUPLICATE_BUDGET_NAME", Message: "A budget with this name already exists", StatusCode: http.StatusConflict}
	ErrPeriodNotFound       = &AppError{Code: "PERIOD_NOT_FOUND", Message: "No budget period covers the given date", StatusCode: http.StatusNotFound}
	ErrPeriodAlreadyClosed  = &AppError{Code: "PERIOD_ALREADY_CLOSED", Message: "Budget period is already closed", StatusCode: http.StatusConflict}
	ErrPeriodDateBeforeOpen = &AppError{Code: "PERIOD_DATE_BEFORE_OPEN", Message: "Date precedes the start of the open period", StatusCode: http.StatusBadRequest}
	ErrAlertNotFound        = &AppError{Code: "ALERT_NOT_FOUND", Message: "Budget alert not found", StatusCode: http.StatusNotFound}
	ErrDuplicateThreshold   = &AppError{Code: "DUPLICATE_THRESHOLD", Message: "An alert with this threshold already exists", StatusCode: http.StatusConflict}
)

// Forecast & anomaly errors.
var (
	ErrForecastNotFound = &AppError{Code: "FORECAST_NOT_FOUND", Message: "Forecast not found", StatusCode: http.StatusNotFound}
	ErrAnomalyNotFound  = &AppError{Code: "ANOMALY_NOT_FOUND", Message: "Anomaly not found", StatusCode: http.StatusNotFound}
)

// Insight errors.
var (
	ErrInsightNotFound          = &AppError{Code: "INSIGHT_NOT_FOUND", Message: "Insight not found", StatusCode: http.StatusNotFound}
	ErrInvalidInsightTransition = &AppError{Code: "INVALID_INSIGHT_TRANSITION", Message: "Insight status transition is not allowed", StatusCode: http.StatusConflict}
)

// Debt errors.
var (
	ErrDebtNotFound = &AppError{Code: "DEBT_NOT_FOUND", Message: "Debt not found", StatusCode: http.StatusNotFound}
	ErrDebtPaidOff  = &AppError{Code: "DEBT_PAID_OFF", Message: "Debt is already paid off", StatusCode: http.StatusConflict}
)
