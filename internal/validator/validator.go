// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("hex_color", validateHexColor)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("category_type", validateCategoryType)
		_ = v.RegisterValidation("period_type", validatePeriodType)
		_ = v.RegisterValidation("insight_status", validateInsightStatus)
		_ = v.RegisterValidation("insight_severity", validateInsightSeverity)
		_ = v.RegisterValidation("anomaly_feedback", validateAnomalyFeedback)
		_ = v.RegisterValidation("debt_type", validateDebtType)
		_ = v.RegisterValidation("payoff_strategy", validatePayoffStrategy)
	}
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense", "transfer":
		return true
	}
	return false
}

func validateCategoryType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense":
		return true
	}
	return false
}

func validatePeriodType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "weekly", "monthly", "quarterly", "yearly":
		return true
	}
	return false
}

func validateInsightStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "active", "acknowledged", "resolved", "dismissed":
		return true
	}
	return false
}

func validateInsightSeverity(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "info", "success", "warning", "critical":
		return true
	}
	return false
}

func validateAnomalyFeedback(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "confirmed", "dismissed":
		return true
	}
	return false
}

func validateDebtType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "credit_card", "personal_loan", "student_loan", "mortgage", "auto_loan", "medical_debt", "other":
		return true
	}
	return false
}

func validatePayoffStrategy(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "snowball", "avalanche":
		return true
	}
	return false
}
