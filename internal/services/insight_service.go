package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "debtwise/internal/errors"
	"debtwise/internal/models"
	"debtwise/internal/pagination"
)

const (
	// insightTTLDays is how long a generated insight stays relevant
	// before it auto-resolves.
	insightTTLDays = 30
	// insightHorizonDays is the forecast horizon insight rules look at.
	insightHorizonDays = 30

	budgetWarningThreshold = 80.0
	trendAlertPercentage   = 10.0
	overdraftRiskThreshold = 0.7

	// anomalyAlertWindowDays is how far back the anomaly rule looks for
	// unconfirmed anomalies.
	anomalyAlertWindowDays = 7
	// anomalyAlertMinCount is how many high-score anomalies it takes
	// within the window to raise an insight.
	anomalyAlertMinCount = 3
	// anomalyAlertScore is the standard-score cutoff for "high".
	anomalyAlertScore = 3.0
	anomalyAlertRisk  = 0.7
)

// insightService generates and manages predictive insights. Rules are
// evaluated on demand; dedup keeps one live insight per
// (user, type, subject).
type insightService struct {
	db          *gorm.DB
	budgetSvc   BudgetServicer
	forecastSvc ForecastServicer
}

// NewInsightService creates a new InsightServicer.
func NewInsightService(db *gorm.DB, budgetSvc BudgetServicer, forecastSvc ForecastServicer) InsightServicer {
	return &insightService{db: db, budgetSvc: budgetSvc, forecastSvc: forecastSvc}
}

// hasLiveInsight reports whether an active or acknowledged insight
// already exists for the dedup key.
func (s *insightService) hasLiveInsight(userID uint, insightType models.InsightType, subject string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.PredictiveInsight{}).
		Where("user_id = ? AND type = ? AND subject = ? AND status IN ?",
			userID, insightType, subject,
			[]models.InsightStatus{models.InsightStatusActive, models.InsightStatusAcknowledged}).
		Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

func (s *insightService) create(insight *models.PredictiveInsight) (bool, error) {
	live, err := s.hasLiveInsight(insight.UserID, insight.Type, insight.Subject)
	if err != nil {
		return false, err
	}
	if live {
		return false, nil
	}

	validUntil := time.Now().AddDate(0, 0, insightTTLDays)
	insight.Status = models.InsightStatusActive
	insight.ValidUntil = &validUntil

	if err := s.db.Create(insight).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return true, nil
}

// GenerateInsights runs every insight rule for the user and returns
// the newly created insights. Rules whose condition already has a live
// insight are skipped, so repeated calls are idempotent.
func (s *insightService) GenerateInsights(userID uint) ([]models.PredictiveInsight, error) {
	// Stale insights resolve before new ones are considered.
	if err := s.db.Model(&models.PredictiveInsight{}).
		Where("user_id = ? AND status = ? AND valid_until < ?", userID, models.InsightStatusActive, time.Now()).
		Update("status", models.InsightStatusResolved).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	created := []models.PredictiveInsight{}
	for _, rule := range []func(uint, *[]models.PredictiveInsight) error{
		s.evaluateBudgetRules,
		s.evaluateTrendRule,
		s.evaluateCashflowRule,
		s.evaluateAnomalyRule,
		s.evaluateSavingsRule,
		s.evaluateDebtPayoffRule,
	} {
		if err := rule(userID, &created); err != nil {
			return nil, err
		}
	}

	return created, nil
}

func (s *insightService) evaluateBudgetRules(userID uint, created *[]models.PredictiveInsight) error {
	overview, err := s.budgetSvc.GetBudgetOverview(userID, time.Now())
	if err != nil {
		return err
	}

	for _, summary := range overview.Budgets {
		subject := fmt.Sprintf("budget:%d", summary.BudgetID)
		budgetID := summary.BudgetID

		var insight *models.PredictiveInsight
		switch {
		case summary.PercentageUsed >= 100:
			insight = &models.PredictiveInsight{
				UserID:   userID,
				Type:     models.InsightTypeBudgetProjection,
				Subject:  subject,
				Title:    "Budget Overspending Alert",
				Detail: fmt.Sprintf("You have spent %s of the %s budgeted for %q this period (%.0f%%).",
					summary.TotalSpent.StringFixed(2), summary.TotalBudgeted.StringFixed(2), summary.BudgetName, summary.PercentageUsed),
				Severity:       models.SeverityCritical,
				BudgetID:       &budgetID,
				CategoryID:     summary.CategoryID,
				Recommendation: "Review recent transactions in this budget and pause non-essential spending until the period resets.",
			}
		case summary.PercentageUsed >= budgetWarningThreshold:
			insight = &models.PredictiveInsight{
				UserID:   userID,
				Type:     models.InsightTypeBudgetProjection,
				Subject:  subject,
				Title:    "Budget Nearly Exhausted",
				Detail: fmt.Sprintf("You have used %.0f%% of your %q budget with %d days left in the period.",
					summary.PercentageUsed, summary.BudgetName, summary.DaysRemaining),
				Severity:       models.SeverityWarning,
				BudgetID:       &budgetID,
				CategoryID:     summary.CategoryID,
				Recommendation: fmt.Sprintf("Keep remaining spending under %s to stay within budget.", summary.TotalRemaining.StringFixed(2)),
			}
		}

		if insight != nil {
			ok, err := s.create(insight)
			if err != nil {
				return err
			}
			if ok {
				*created = append(*created, *insight)
			}
		}
	}
	return nil
}

func (s *insightService) evaluateTrendRule(userID uint, created *[]models.PredictiveInsight) error {
	forecast, err := s.forecastSvc.GenerateSpendingForecast(userID, nil, insightHorizonDays)
	if err != nil {
		return err
	}

	if forecast.TrendDirection != models.TrendIncreasing || forecast.TrendPercentage <= trendAlertPercentage {
		return nil
	}

	insight := &models.PredictiveInsight{
		UserID:  userID,
		Type:    models.InsightTypeSpendingForecast,
		Subject: "spending:overall",
		Title:   "Spending Is Trending Up",
		Detail: fmt.Sprintf("Your weekly spending is rising about %.1f%% week over week. At this pace you will spend roughly %s over the next %d days.",
			forecast.TrendPercentage, forecast.PredictedAmount.StringFixed(2), insightHorizonDays),
		Severity:       models.SeverityInfo,
		Recommendation: "Check your largest categories for recent increases.",
	}
	ok, err := s.create(insight)
	if err != nil {
		return err
	}
	if ok {
		*created = append(*created, *insight)
	}
	return nil
}

func (s *insightService) evaluateCashflowRule(userID uint, created *[]models.PredictiveInsight) error {
	forecast, err := s.forecastSvc.GenerateCashflowForecast(userID, insightHorizonDays)
	if err != nil {
		return err
	}

	if forecast.OverdraftRisk < overdraftRiskThreshold {
		return nil
	}

	detail := fmt.Sprintf("Your projected balance dips to %s within the next %d days.",
		forecast.MinimumBalance.StringFixed(2), insightHorizonDays)
	if forecast.LowBalanceDate != nil {
		detail = fmt.Sprintf("Your projected balance goes negative around %s, bottoming out at %s.",
			forecast.LowBalanceDate.Format("Jan 2"), forecast.MinimumBalance.StringFixed(2))
	}

	risk := forecast.OverdraftRisk
	insight := &models.PredictiveInsight{
		UserID:         userID,
		Type:           models.InsightTypeCashflowForecast,
		Subject:        "cashflow:balance",
		Title:          "Low Balance Warning",
		Detail:         detail,
		Severity:       models.SeverityCritical,
		RiskScore:      &risk,
		Recommendation: "Consider moving funds or deferring non-essential payments before then.",
	}
	ok, err := s.create(insight)
	if err != nil {
		return err
	}
	if ok {
		*created = append(*created, *insight)
	}
	return nil
}

// evaluateAnomalyRule raises a warning when several strong unconfirmed
// anomalies cluster in the recent past, suggesting unusual account
// activity rather than a single odd purchase.
func (s *insightService) evaluateAnomalyRule(userID uint, created *[]models.PredictiveInsight) error {
	windowStart := time.Now().AddDate(0, 0, -anomalyAlertWindowDays)

	var anomalies []models.SpendingAnomaly
	if err := s.db.Where("user_id = ? AND feedback = ? AND created_at >= ?",
		userID, models.AnomalyUnconfirmed, windowStart).
		Find(&anomalies).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	high := 0
	for _, a := range anomalies {
		if math.Abs(a.Score) > anomalyAlertScore {
			high++
		}
	}
	if high < anomalyAlertMinCount {
		return nil
	}

	risk := anomalyAlertRisk
	insight := &models.PredictiveInsight{
		UserID:  userID,
		Type:    models.InsightTypeAnomalyDetection,
		Subject: "anomalies:recent",
		Title:   "Multiple Unusual Transactions Detected",
		Detail: fmt.Sprintf("We've detected %d unusually large transactions in the past %d days.",
			high, anomalyAlertWindowDays),
		Severity:       models.SeverityWarning,
		RiskScore:      &risk,
		Recommendation: "Review the flagged transactions and confirm or dismiss each one.",
	}
	ok, err := s.create(insight)
	if err != nil {
		return err
	}
	if ok {
		*created = append(*created, *insight)
	}
	return nil
}

// evaluateSavingsRule compares each category's spend over the last 30
// days against its prior three-month monthly average, and celebrates
// meaningful reductions.
func (s *insightService) evaluateSavingsRule(userID uint, created *[]models.PredictiveInsight) error {
	now := dateOnly(time.Now())
	currentStart := now.AddDate(0, 0, -30)
	baselineStart := currentStart.AddDate(0, 0, -90)

	type row struct {
		CategoryID uint
		Total      decimal.Decimal
	}

	var baseline []row
	if err := s.db.Model(&models.Transaction{}).
		Select("category_id, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND type = ? AND category_id IS NOT NULL AND date >= ? AND date < ?",
			userID, models.TransactionTypeExpense, baselineStart, currentStart).
		Group("category_id").
		Scan(&baseline).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var current []row
	if err := s.db.Model(&models.Transaction{}).
		Select("category_id, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND type = ? AND category_id IS NOT NULL AND date >= ?",
			userID, models.TransactionTypeExpense, currentStart).
		Group("category_id").
		Scan(&current).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	currentByCategory := make(map[uint]decimal.Decimal, len(current))
	for _, r := range current {
		currentByCategory[r.CategoryID] = r.Total
	}

	three := decimal.NewFromInt(3)
	for _, b := range baseline {
		monthlyAvg := b.Total.Div(three).Round(2)
		if !monthlyAvg.IsPositive() {
			continue
		}
		spent := currentByCategory[b.CategoryID]

		// Require a reduction of at least 10% to avoid noise.
		if spent.GreaterThanOrEqual(monthlyAvg.Mul(decimal.NewFromFloat(0.9))) {
			continue
		}
		savings := monthlyAvg.Sub(spent)
		if !savings.IsPositive() {
			continue
		}

		var category models.Category
		if err := s.db.Where("id = ? AND user_id = ?", b.CategoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		categoryID := b.CategoryID
		insight := &models.PredictiveInsight{
			UserID:  userID,
			Type:    models.InsightTypeSavingsOpportunity,
			Subject: fmt.Sprintf("category:%d", categoryID),
			Title:   fmt.Sprintf("Spending Down in %s", category.Name),
			Detail: fmt.Sprintf("You spent %s on %s in the last 30 days, down from a monthly average of %s.",
				spent.StringFixed(2), category.Name, monthlyAvg.StringFixed(2)),
			Severity:         models.SeveritySuccess,
			CategoryID:       &categoryID,
			PotentialSavings: &savings,
			Recommendation:   fmt.Sprintf("Putting the %s difference toward savings or debt would keep the momentum.", savings.StringFixed(2)),
		}
		ok, err := s.create(insight)
		if err != nil {
			return err
		}
		if ok {
			*created = append(*created, *insight)
		}
	}
	return nil
}

// evaluateDebtPayoffRule surfaces debts within reach of being paid off.
func (s *insightService) evaluateDebtPayoffRule(userID uint, created *[]models.PredictiveInsight) error {
	var debts []models.Debt
	if err := s.db.Where("user_id = ? AND status = ? AND is_active = ?",
		userID, models.DebtStatusActive, true).
		Find(&debts).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, debt := range debts {
		if !debt.CurrentBalance.IsPositive() {
			continue
		}

		nearTenPercent := debt.OriginalAmount.IsPositive() &&
			debt.CurrentBalance.LessThanOrEqual(debt.OriginalAmount.Mul(decimal.NewFromFloat(0.1)))
		withinThreePayments := debt.MinimumPayment.IsPositive() &&
			debt.CurrentBalance.LessThanOrEqual(debt.MinimumPayment.Mul(decimal.NewFromInt(3)))
		if !nearTenPercent && !withinThreePayments {
			continue
		}

		insight := &models.PredictiveInsight{
			UserID:  userID,
			Type:    models.InsightTypeDebtPayoff,
			Subject: fmt.Sprintf("debt:%d", debt.ID),
			Title:   fmt.Sprintf("%s Is Almost Paid Off", debt.Name),
			Detail: fmt.Sprintf("Only %s remains on %s out of an original %s.",
				debt.CurrentBalance.StringFixed(2), debt.Name, debt.OriginalAmount.StringFixed(2)),
			Severity:       models.SeveritySuccess,
			Recommendation: "A small extra payment could clear this debt entirely.",
		}
		ok, err := s.create(insight)
		if err != nil {
			return err
		}
		if ok {
			*created = append(*created, *insight)
		}
	}
	return nil
}

// GetUserInsights retrieves a filtered, paginated list of insights.
func (s *insightService) GetUserInsights(userID uint, page pagination.PageRequest, filter InsightFilter) (*pagination.PageResponse[models.PredictiveInsight], error) {
	page.Defaults()

	base := s.db.Model(&models.PredictiveInsight{}).Where("user_id = ?", userID)
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}
	if filter.Severity != nil {
		base = base.Where("severity = ?", *filter.Severity)
	}
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		base = base.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("created_at <= ?", *filter.ToDate)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var insights []models.PredictiveInsight
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at DESC").Find(&insights).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(insights, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetInsightByID retrieves an insight by ID for a specific user.
func (s *insightService) GetInsightByID(userID, insightID uint) (*models.PredictiveInsight, error) {
	var insight models.PredictiveInsight
	if err := s.db.Where("id = ? AND user_id = ?", insightID, userID).First(&insight).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInsightNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &insight, nil
}

// validInsightTransitions enumerates the allowed status moves. An
// insight never leaves a terminal state.
var validInsightTransitions = map[models.InsightStatus][]models.InsightStatus{
	models.InsightStatusActive: {
		models.InsightStatusAcknowledged,
		models.InsightStatusDismissed,
		models.InsightStatusResolved,
	},
	models.InsightStatusAcknowledged: {
		models.InsightStatusResolved,
	},
}

// UpdateInsightStatus moves an insight through its lifecycle.
func (s *insightService) UpdateInsightStatus(userID, insightID uint, status models.InsightStatus) (*models.PredictiveInsight, error) {
	insight, err := s.GetInsightByID(userID, insightID)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range validInsightTransitions[insight.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInsightTransition,
			fmt.Sprintf("cannot move insight from %s to %s", insight.Status, status))
	}

	now := time.Now()
	updates := map[string]interface{}{"status": status}
	switch status {
	case models.InsightStatusAcknowledged:
		updates["acknowledged_at"] = now
	case models.InsightStatusDismissed:
		updates["dismissed_at"] = now
	}

	if err := s.db.Model(insight).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return insight, nil
}
