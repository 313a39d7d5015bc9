package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "debtwise/internal/errors"
	"debtwise/internal/models"
	"debtwise/internal/pagination"
)

// budgetService handles budget-related business logic: budget CRUD,
// period materialization, rollover processing and alert evaluation.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// dateOnly truncates a time to midnight UTC. All period arithmetic
// works on whole days.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// periodEnd returns the inclusive end date for a period starting on
// start. Monthly periods anchored past the 28th clamp naturally via
// AddDate normalization.
func periodEnd(start time.Time, periodType models.BudgetPeriodType) time.Time {
	switch periodType {
	case models.BudgetPeriodWeekly:
		return start.AddDate(0, 0, 6)
	case models.BudgetPeriodMonthly:
		return start.AddDate(0, 1, 0).AddDate(0, 0, -1)
	case models.BudgetPeriodQuarterly:
		return start.AddDate(0, 3, 0).AddDate(0, 0, -1)
	case models.BudgetPeriodYearly:
		return start.AddDate(1, 0, 0).AddDate(0, 0, -1)
	default:
		return start.AddDate(0, 1, 0).AddDate(0, 0, -1)
	}
}

// CreateBudget creates a budget, its optional alerts, and the first period.
func (s *budgetService) CreateBudget(userID uint, spec BudgetSpec) (*models.Budget, error) {
	if spec.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}
	if !spec.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount must be positive")
	}
	if spec.MaxRolloverPeriods != nil && *spec.MaxRolloverPeriods < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "max rollover periods cannot be negative")
	}
	if spec.MaxRolloverAmount != nil && spec.MaxRolloverAmount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "max rollover amount cannot be negative")
	}

	// Budget names are unique per user.
	var count int64
	if err := s.db.Model(&models.Budget{}).
		Where("user_id = ? AND name = ?", userID, spec.Name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateBudgetName
	}

	// Verify category ownership when the budget is scoped to one.
	if spec.CategoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ? AND user_id = ?", *spec.CategoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	seen := make(map[int]bool)
	for _, a := range spec.Alerts {
		if a.ThresholdPercentage < 1 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "alert threshold must be at least 1")
		}
		if seen[a.ThresholdPercentage] {
			return nil, apperrors.ErrDuplicateThreshold
		}
		seen[a.ThresholdPercentage] = true
	}

	start := dateOnly(spec.StartDate)
	budget := &models.Budget{
		UserID:             userID,
		CategoryID:         spec.CategoryID,
		Name:               spec.Name,
		Description:        spec.Description,
		PeriodType:         spec.PeriodType,
		StartDate:          start,
		Amount:             spec.Amount,
		AllowRollover:      spec.AllowRollover,
		MaxRolloverPeriods: spec.MaxRolloverPeriods,
		MaxRolloverAmount:  spec.MaxRolloverAmount,
		IsActive:           true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		for _, a := range spec.Alerts {
			alert := &models.BudgetAlert{
				BudgetID:            budget.ID,
				ThresholdPercentage: a.ThresholdPercentage,
				Message:             a.Message,
				IsEnabled:           true,
				SendEmail:           a.SendEmail,
				SendPush:            a.SendPush,
			}
			if err := tx.Create(alert).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		// First period starts on the budget's start date with no carry.
		period := &models.BudgetPeriod{
			BudgetID:        budget.ID,
			StartDate:       start,
			EndDate:         periodEnd(start, spec.PeriodType),
			BaseAmount:      spec.Amount,
			RolloverAmount:  decimal.Zero,
			TotalAmount:     spec.Amount,
			SpentAmount:     decimal.Zero,
			RemainingAmount: spec.Amount,
		}
		if err := tx.Create(period).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetBudgetByID(userID, budget.ID)
}

// GetUserBudgets returns a paginated list of budgets for the user with optional filters.
func (s *budgetService) GetUserBudgets(
	userID uint,
	page pagination.PageRequest,
	isActive *bool,
	categoryID *uint,
) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if isActive != nil {
		base = base.Where("is_active = ?", *isActive)
	}
	if categoryID != nil {
		base = base.Where("category_id = ?", *categoryID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("Category").Preload("Alerts").
		Scopes(pagination.Paginate(page)).
		Order("name ASC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Category").Preload("Alerts").
		Where("id = ? AND user_id = ?", budgetID, userID).
		First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates an existing budget's fields. Amount changes
// affect the base amount of future periods only.
func (s *budgetService) UpdateBudget(
	userID, budgetID uint,
	name string,
	amount *decimal.Decimal,
	isActive *bool,
) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" && name != budget.Name {
		var count int64
		if err := s.db.Model(&models.Budget{}).
			Where("user_id = ? AND name = ? AND id <> ?", userID, name, budgetID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil, apperrors.ErrDuplicateBudgetName
		}
		updates["name"] = name
	}
	if amount != nil {
		if !amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount must be positive")
		}
		updates["amount"] = *amount
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return budget, nil
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID uint) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// sumSpent totals expense transactions attributable to the budget
// within [start, end]. Category-scoped budgets count only that
// category; uncategorized budgets count all expenses.
func sumSpent(tx *gorm.DB, budget *models.Budget, start, end time.Time) (decimal.Decimal, error) {
	query := tx.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND type = ? AND date >= ? AND date < ?",
			budget.UserID, models.TransactionTypeExpense, start, end.AddDate(0, 0, 1))
	if budget.CategoryID != nil {
		query = query.Where("category_id = ?", *budget.CategoryID)
	}

	var spent decimal.Decimal
	if err := query.Scan(&spent).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return spent, nil
}

// closePeriod freezes a period's spend, computes its carry under the
// budget's rollover policy, marks it closed, and opens the next
// period. Must run inside a transaction. Returns the carry amount and
// the newly opened period.
func closePeriod(tx *gorm.DB, budget *models.Budget, period *models.BudgetPeriod) (decimal.Decimal, *models.BudgetPeriod, error) {
	spent, err := sumSpent(tx, budget, period.StartDate, period.EndDate)
	if err != nil {
		return decimal.Zero, nil, err
	}
	remaining := period.TotalAmount.Sub(spent)

	rollover := decimal.Zero
	if budget.AllowRollover && remaining.IsPositive() {
		rollover = remaining

		// The period-count limit is checked first: once surplus has been
		// carried for the configured number of consecutive periods, the
		// next carry is zeroed entirely and the chain restarts. The
		// amount cap then clips whatever survives.
		if budget.MaxRolloverPeriods != nil {
			var prior []models.BudgetPeriod
			if err := tx.Where("budget_id = ? AND start_date <= ?", budget.ID, period.StartDate).
				Order("start_date DESC").
				Find(&prior).Error; err != nil {
				return decimal.Zero, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			carries := 0
			for _, p := range prior {
				if !p.RolloverAmount.IsPositive() {
					break
				}
				carries++
			}
			if carries >= *budget.MaxRolloverPeriods {
				rollover = decimal.Zero
			}
		}
		if budget.MaxRolloverAmount != nil && rollover.GreaterThan(*budget.MaxRolloverAmount) {
			rollover = *budget.MaxRolloverAmount
		}
	}

	// Guard against a concurrent close of the same period: the update
	// only lands if the row is still open.
	res := tx.Model(&models.BudgetPeriod{}).
		Where("id = ? AND is_closed = ?", period.ID, false).
		Updates(map[string]interface{}{
			"spent_amount":     spent,
			"remaining_amount": remaining,
			"is_closed":        true,
		})
	if res.Error != nil {
		return decimal.Zero, nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return decimal.Zero, nil, apperrors.ErrPeriodAlreadyClosed
	}
	period.SpentAmount = spent
	period.RemainingAmount = remaining
	period.IsClosed = true

	nextStart := period.EndDate.AddDate(0, 0, 1)
	next := &models.BudgetPeriod{
		BudgetID:        budget.ID,
		StartDate:       nextStart,
		EndDate:         periodEnd(nextStart, budget.PeriodType),
		BaseAmount:      budget.Amount,
		RolloverAmount:  rollover,
		TotalAmount:     budget.Amount.Add(rollover),
		SpentAmount:     decimal.Zero,
		RemainingAmount: budget.Amount.Add(rollover),
	}
	if err := tx.Create(next).Error; err != nil {
		return decimal.Zero, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return rollover, next, nil
}

// GetCurrentPeriod returns the period covering asOf, materializing any
// elapsed periods along the way. Skipped periods are closed with
// whatever spend their windows actually saw, so carry chains through
// them correctly.
func (s *budgetService) GetCurrentPeriod(userID, budgetID uint, asOf time.Time) (*models.BudgetPeriod, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	day := dateOnly(asOf)
	if day.Before(budget.StartDate) {
		return nil, apperrors.ErrPeriodNotFound
	}

	var current *models.BudgetPeriod
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var latest models.BudgetPeriod
		if err := tx.Where("budget_id = ?", budgetID).
			Order("start_date DESC").
			First(&latest).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		for latest.EndDate.Before(day) {
			_, next, err := closePeriod(tx, budget, &latest)
			if err != nil {
				return err
			}
			latest = *next
		}

		if day.Before(latest.StartDate) {
			// asOf falls inside a previous, already-closed period.
			var prior models.BudgetPeriod
			if err := tx.Where("budget_id = ? AND start_date <= ? AND end_date >= ?", budgetID, day, day).
				First(&prior).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrPeriodNotFound
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			current = &prior
			return nil
		}

		current = &latest
		return nil
	})
	if err != nil {
		return nil, err
	}
	return current, nil
}

// ProcessRollover closes the period covering periodDate and opens the
// next one, carrying surplus under the budget's rollover policy.
func (s *budgetService) ProcessRollover(userID, budgetID uint, periodDate time.Time) (*RolloverResult, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}
	if !budget.IsActive {
		return nil, apperrors.ErrBudgetInactive
	}

	day := dateOnly(periodDate)
	if day.Before(budget.StartDate) {
		return nil, apperrors.ErrPeriodDateBeforeOpen
	}

	var result *RolloverResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var period models.BudgetPeriod
		if err := tx.Where("budget_id = ? AND start_date <= ? AND end_date >= ?", budgetID, day, day).
			First(&period).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrPeriodNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if period.IsClosed {
			return apperrors.ErrPeriodAlreadyClosed
		}

		rollover, next, err := closePeriod(tx, budget, &period)
		if err != nil {
			return err
		}

		result = &RolloverResult{
			BudgetID:       budgetID,
			ClosedPeriod:   period,
			NextPeriod:     *next,
			RolloverAmount: rollover,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetBudgetSummary computes spending analysis for the budget's period
// covering asOf, and evaluates which enabled alerts newly crossed
// their threshold this period.
func (s *budgetService) GetBudgetSummary(userID, budgetID uint, asOf time.Time) (*BudgetSummary, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	period, err := s.GetCurrentPeriod(userID, budgetID, asOf)
	if err != nil {
		return nil, err
	}

	spent := period.SpentAmount
	if !period.IsClosed {
		spent, err = sumSpent(s.db, budget, period.StartDate, period.EndDate)
		if err != nil {
			return nil, err
		}
	}
	remaining := period.TotalAmount.Sub(spent)

	var percentage float64
	if period.TotalAmount.IsPositive() {
		ratio, _ := spent.Div(period.TotalAmount).Float64()
		percentage = ratio * 100
	}

	day := dateOnly(asOf)
	daysRemaining := int(period.EndDate.Sub(day).Hours()/24) + 1
	if daysRemaining < 0 {
		daysRemaining = 0
	}
	daysElapsed := int(day.Sub(period.StartDate).Hours()/24) + 1

	// Straight-line projection from pace so far.
	projected := spent
	if daysElapsed > 0 && spent.IsPositive() {
		periodDays := int(period.EndDate.Sub(period.StartDate).Hours()/24) + 1
		projected = spent.Div(decimal.NewFromInt(int64(daysElapsed))).
			Mul(decimal.NewFromInt(int64(periodDays))).Round(2)
	}

	// Average spend over periods closed in the trailing three months
	// gives a recent baseline.
	var avgSpent decimal.Decimal
	var closed []models.BudgetPeriod
	baselineStart := day.AddDate(0, -3, 0)
	if err := s.db.Where("budget_id = ? AND is_closed = ? AND start_date >= ?", budgetID, true, baselineStart).Find(&closed).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(closed) > 0 {
		total := decimal.Zero
		for _, p := range closed {
			total = total.Add(p.SpentAmount)
		}
		avgSpent = total.Div(decimal.NewFromInt(int64(len(closed)))).Round(2)
	}

	summary := &BudgetSummary{
		BudgetID:             budget.ID,
		BudgetName:           budget.Name,
		CategoryID:           budget.CategoryID,
		PeriodType:           budget.PeriodType,
		PeriodStart:          period.StartDate,
		PeriodEnd:            period.EndDate,
		TotalBudgeted:        period.TotalAmount,
		TotalSpent:           spent,
		TotalRemaining:       remaining,
		PercentageUsed:       percentage,
		IsOverBudget:         spent.GreaterThan(period.TotalAmount),
		DaysRemaining:        daysRemaining,
		ProjectedEndOfPeriod: projected,
		AverageSpending:      avgSpent,
		TriggeredAlerts:      []TriggeredAlert{},
	}
	if budget.Category != nil {
		summary.CategoryName = budget.Category.Name
	}

	// An alert fires at most once per period; LastFiredPeriodID is the marker.
	for i := range budget.Alerts {
		alert := &budget.Alerts[i]
		if !alert.IsEnabled {
			continue
		}
		if percentage < float64(alert.ThresholdPercentage) {
			continue
		}
		if alert.LastFiredPeriodID != nil && *alert.LastFiredPeriodID == period.ID {
			continue
		}
		if err := s.db.Model(alert).Update("last_fired_period_id", period.ID).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		summary.TriggeredAlerts = append(summary.TriggeredAlerts, TriggeredAlert{
			AlertID:             alert.ID,
			ThresholdPercentage: alert.ThresholdPercentage,
			Message:             alert.Message,
			SendEmail:           alert.SendEmail,
			SendPush:            alert.SendPush,
		})
	}

	return summary, nil
}

// GetBudgetOverview aggregates summaries across all active budgets.
func (s *budgetService) GetBudgetOverview(userID uint, asOf time.Time) (*BudgetOverview, error) {
	var budgets []models.Budget
	if err := s.db.Where("user_id = ?", userID).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	overview := &BudgetOverview{
		TotalBudgets:         len(budgets),
		TotalBudgetedAmount:  decimal.Zero,
		TotalSpentAmount:     decimal.Zero,
		TotalRemainingAmount: decimal.Zero,
		Budgets:              []BudgetSummary{},
	}

	for _, b := range budgets {
		if !b.IsActive {
			continue
		}
		overview.ActiveBudgets++

		summary, err := s.GetBudgetSummary(userID, b.ID, asOf)
		if err != nil {
			// Budgets that start in the future have no period yet.
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.Code == apperrors.ErrPeriodNotFound.Code {
				continue
			}
			return nil, err
		}

		overview.TotalBudgetedAmount = overview.TotalBudgetedAmount.Add(summary.TotalBudgeted)
		overview.TotalSpentAmount = overview.TotalSpentAmount.Add(summary.TotalSpent)
		overview.TotalRemainingAmount = overview.TotalRemainingAmount.Add(summary.TotalRemaining)
		overview.Budgets = append(overview.Budgets, *summary)
	}

	if overview.TotalBudgetedAmount.IsPositive() {
		ratio, _ := overview.TotalSpentAmount.Div(overview.TotalBudgetedAmount).Float64()
		overview.OverallPercentageUsed = ratio * 100
	}

	return overview, nil
}

// CreateAlert adds a threshold alert to a budget.
func (s *budgetService) CreateAlert(userID, budgetID uint, spec AlertSpec) (*models.BudgetAlert, error) {
	if _, err := s.GetBudgetByID(userID, budgetID); err != nil {
		return nil, err
	}
	if spec.ThresholdPercentage < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "alert threshold must be at least 1")
	}

	var count int64
	if err := s.db.Model(&models.BudgetAlert{}).
		Where("budget_id = ? AND threshold_percentage = ?", budgetID, spec.ThresholdPercentage).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateThreshold
	}

	alert := &models.BudgetAlert{
		BudgetID:            budgetID,
		ThresholdPercentage: spec.ThresholdPercentage,
		Message:             spec.Message,
		IsEnabled:           true,
		SendEmail:           spec.SendEmail,
		SendPush:            spec.SendPush,
	}
	if err := s.db.Create(alert).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return alert, nil
}

// getAlertForUser loads an alert and checks the owning budget belongs to the user.
func (s *budgetService) getAlertForUser(userID, alertID uint) (*models.BudgetAlert, error) {
	var alert models.BudgetAlert
	if err := s.db.First(&alert, alertID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAlertNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if _, err := s.GetBudgetByID(userID, alert.BudgetID); err != nil {
		return nil, apperrors.ErrAlertNotFound
	}
	return &alert, nil
}

// UpdateAlert updates an alert's threshold, message or flags.
func (s *budgetService) UpdateAlert(userID, alertID uint, threshold *int, message *string, isEnabled, sendEmail, sendPush *bool) (*models.BudgetAlert, error) {
	alert, err := s.getAlertForUser(userID, alertID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if threshold != nil {
		if *threshold < 1 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "alert threshold must be at least 1")
		}
		var count int64
		if err := s.db.Model(&models.BudgetAlert{}).
			Where("budget_id = ? AND threshold_percentage = ? AND id <> ?", alert.BudgetID, *threshold, alertID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil, apperrors.ErrDuplicateThreshold
		}
		updates["threshold_percentage"] = *threshold
		// Changing the threshold re-arms the alert for the current period.
		updates["last_fired_period_id"] = nil
	}
	if message != nil {
		updates["message"] = *message
	}
	if isEnabled != nil {
		updates["is_enabled"] = *isEnabled
	}
	if sendEmail != nil {
		updates["send_email"] = *sendEmail
	}
	if sendPush != nil {
		updates["send_push"] = *sendPush
	}

	if len(updates) > 0 {
		if err := s.db.Model(alert).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return alert, nil
}

// DeleteAlert removes an alert.
func (s *budgetService) DeleteAlert(userID, alertID uint) error {
	alert, err := s.getAlertForUser(userID, alertID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(alert).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
