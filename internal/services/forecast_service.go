package services

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"debtwise/internal/config"
	apperrors "debtwise/internal/errors"
	"debtwise/internal/models"
	"debtwise/internal/pagination"
)

const (
	// anomalyMinSamples is the minimum number of transactions a
	// category needs before outlier detection runs on it.
	anomalyMinSamples = 5
	// anomalyZThreshold flags transactions whose standard score
	// exceeds this in absolute value.
	anomalyZThreshold = 2.5
	// minTrendBuckets is the minimum number of weekly buckets needed
	// for a linear fit; below it the historical average is used.
	minTrendBuckets = 3
	// trendEpsilonRatio scales the slope dead-band relative to the
	// mean weekly spend.
	trendEpsilonRatio = 0.05
	// recurringMinOccurrences is how many times an unflagged
	// transaction pattern must repeat before it is treated as a
	// recurring series.
	recurringMinOccurrences = 2
	// recurringAmountTolerance is the relative amount spread within
	// which two transactions count as the same recurring pattern.
	recurringAmountTolerance = 0.01

	modelLinearTrend       = "linear_trend"
	modelHistoricalAverage = "historical_average"
	methodZScore           = "zscore"
)

// forecastService handles spending forecasts, cash-flow projections
// and anomaly detection.
type forecastService struct {
	db                   *gorm.DB
	forecastLookbackDays int
	anomalyLookbackDays  int
}

// NewForecastService creates a new ForecastServicer.
func NewForecastService(db *gorm.DB, cfg *config.Config) ForecastServicer {
	return &forecastService{
		db:                   db,
		forecastLookbackDays: cfg.ForecastLookbackDays,
		anomalyLookbackDays:  cfg.AnomalyLookbackDays,
	}
}

// weeklyBuckets resamples transactions into consecutive weekly spend
// totals, anchored on the earliest transaction. Weeks with no spend
// are kept as zeros.
func weeklyBuckets(transactions []models.Transaction) []float64 {
	if len(transactions) == 0 {
		return nil
	}

	first := dateOnly(transactions[0].Date)
	last := first
	for _, t := range transactions {
		d := dateOnly(t.Date)
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	numBuckets := int(last.Sub(first).Hours()/24)/7 + 1
	buckets := make([]float64, numBuckets)
	for _, t := range transactions {
		idx := int(dateOnly(t.Date).Sub(first).Hours()/24) / 7
		amount, _ := t.Amount.Float64()
		buckets[idx] += amount
	}
	return buckets
}

// GenerateSpendingForecast fits a linear trend over weekly spend
// buckets and projects it across the horizon. With too little history
// it falls back to the historical weekly average.
func (s *forecastService) GenerateSpendingForecast(userID uint, categoryID *uint, horizonDays int) (*models.SpendingForecast, error) {
	if horizonDays < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "horizon must be at least one day")
	}

	if categoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ? AND user_id = ?", *categoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	forecast, err := s.computeSpendingForecast(userID, categoryID, horizonDays)
	if err != nil {
		return nil, err
	}

	if err := s.db.Create(forecast).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return forecast, nil
}

func (s *forecastService) computeSpendingForecast(userID uint, categoryID *uint, horizonDays int) (*models.SpendingForecast, error) {
	today := dateOnly(time.Now())
	windowStart := today.AddDate(0, 0, -s.forecastLookbackDays)

	query := s.db.Where("user_id = ? AND type = ? AND date >= ?", userID, models.TransactionTypeExpense, windowStart)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var transactions []models.Transaction
	if err := query.Order("date ASC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	buckets := weeklyBuckets(transactions)
	horizonWeeks := float64(horizonDays) / 7.0

	forecast := &models.SpendingForecast{
		UserID:        userID,
		CategoryID:    categoryID,
		StartDate:     today,
		EndDate:       today.AddDate(0, 0, horizonDays),
		SampleBuckets: len(buckets),
	}

	mean, _ := meanStd(buckets)
	forecast.HistoricalAvg = decimal.NewFromFloat(mean * horizonWeeks).Round(2)

	if len(buckets) < minTrendBuckets {
		// Not enough history for a trend; project the flat average
		// with low confidence and wide bounds.
		predicted := mean * horizonWeeks
		forecast.ModelType = modelHistoricalAverage
		forecast.PredictedAmount = decimal.NewFromFloat(predicted).Round(2)
		forecast.ConfidenceLevel = 0.3
		forecast.LowerBound = decimal.NewFromFloat(predicted * 0.8).Round(2)
		forecast.UpperBound = decimal.NewFromFloat(predicted * 1.2).Round(2)
		forecast.TrendDirection = models.TrendStable
		return forecast, nil
	}

	slope, intercept := linearFit(buckets)
	resid := residualStd(buckets, slope, intercept)

	// Extrapolate week by week past the last observed bucket, flooring
	// each projected week at zero, then scale the partial final week.
	n := len(buckets)
	fullWeeks := int(math.Ceil(horizonWeeks))
	var predicted float64
	for k := 1; k <= fullWeeks; k++ {
		weekly := intercept + slope*float64(n-1+k)
		if weekly < 0 {
			weekly = 0
		}
		predicted += weekly
	}
	if fullWeeks > 0 {
		predicted *= horizonWeeks / float64(fullWeeks)
	}

	confidence := 0.0
	if mean > 0 {
		confidence = clamp01(1 - resid/mean)
	}

	margin := 1.96 * resid * math.Sqrt(horizonWeeks)
	lower := predicted - margin
	if lower < 0 {
		lower = 0
	}

	forecast.ModelType = modelLinearTrend
	forecast.PredictedAmount = decimal.NewFromFloat(predicted).Round(2)
	forecast.ConfidenceLevel = confidence
	stdDev := decimal.NewFromFloat(resid).Round(2)
	forecast.StdDev = &stdDev
	forecast.LowerBound = decimal.NewFromFloat(lower).Round(2)
	forecast.UpperBound = decimal.NewFromFloat(predicted + margin).Round(2)

	// A slope within the dead-band around zero reads as stable.
	epsilon := trendEpsilonRatio * mean
	switch {
	case slope > epsilon:
		forecast.TrendDirection = models.TrendIncreasing
	case slope < -epsilon:
		forecast.TrendDirection = models.TrendDecreasing
	default:
		forecast.TrendDirection = models.TrendStable
	}
	if mean > 0 {
		forecast.TrendPercentage = slope / mean * 100
	}

	return forecast, nil
}

// recurringEvent is a projected occurrence of a recurring transaction.
type recurringEvent struct {
	date   time.Time
	amount float64
	income bool
}

// recurringSeries is a set of past transactions treated as repeats of
// the same payment: same label and type, amounts within tolerance.
type recurringSeries struct {
	txns    []models.Transaction
	flagged bool
}

// seriesLabel identifies which payment a transaction belongs to. The
// merchant is preferred; free-form descriptions are the fallback.
func seriesLabel(t models.Transaction) string {
	if t.Merchant != "" {
		return t.Merchant
	}
	return t.Description
}

// projectRecurring estimates future occurrences of recurring
// transactions. Transactions the user marked recurring always form a
// series; on top of that, unflagged transactions that repeat with the
// same label and near-identical amount are detected as recurring. The
// cadence is the mean gap between consecutive occurrences, defaulting
// to monthly for single-occurrence series.
func (s *forecastService) projectRecurring(userID uint, from time.Time, horizonDays int) ([]recurringEvent, error) {
	historyStart := dateOnly(time.Now()).AddDate(0, 0, -s.forecastLookbackDays)

	var history []models.Transaction
	if err := s.db.Where("user_id = ? AND type IN ? AND (is_recurring = ? OR date >= ?)",
		userID, []models.TransactionType{models.TransactionTypeIncome, models.TransactionTypeExpense},
		true, historyStart).
		Order("date ASC").
		Find(&history).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	type labelKey struct {
		label  string
		txType models.TransactionType
	}
	groups := make(map[labelKey][]*recurringSeries)
	var order []labelKey
	for _, t := range history {
		key := labelKey{seriesLabel(t), t.Type}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}

		// Fold the transaction into the first series whose amount is
		// within tolerance; otherwise it starts a new one.
		amount, _ := t.Amount.Float64()
		var matched *recurringSeries
		for _, sr := range groups[key] {
			ref, _ := sr.txns[0].Amount.Float64()
			if math.Abs(amount-ref) <= recurringAmountTolerance*math.Abs(ref) {
				matched = sr
				break
			}
		}
		if matched == nil {
			matched = &recurringSeries{}
			groups[key] = append(groups[key], matched)
		}
		matched.txns = append(matched.txns, t)
		if t.IsRecurring {
			matched.flagged = true
		}
	}

	end := from.AddDate(0, 0, horizonDays)
	var events []recurringEvent
	for _, key := range order {
		for _, sr := range groups[key] {
			if !sr.flagged && len(sr.txns) < recurringMinOccurrences {
				continue
			}
			last := sr.txns[len(sr.txns)-1]

			intervalDays := 30
			if len(sr.txns) >= 2 {
				var totalGap, gaps int
				for i := 1; i < len(sr.txns); i++ {
					gap := int(dateOnly(sr.txns[i].Date).Sub(dateOnly(sr.txns[i-1].Date)).Hours() / 24)
					if gap >= 1 {
						totalGap += gap
						gaps++
					}
				}
				if gaps > 0 {
					intervalDays = totalGap / gaps
				}
			}

			amount, _ := last.Amount.Float64()
			next := dateOnly(last.Date).AddDate(0, 0, intervalDays)
			for next.Before(from) {
				next = next.AddDate(0, 0, intervalDays)
			}
			for !next.After(end) {
				events = append(events, recurringEvent{
					date:   next,
					amount: amount,
					income: last.Type == models.TransactionTypeIncome,
				})
				next = next.AddDate(0, 0, intervalDays)
			}
		}
	}
	return events, nil
}

// GenerateCashflowForecast simulates the balance day by day across the
// horizon: recurring transactions land on their projected dates and
// discretionary spend drains at the forecast rate.
func (s *forecastService) GenerateCashflowForecast(userID uint, horizonDays int) (*models.CashflowForecast, error) {
	if horizonDays < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "horizon must be at least one day")
	}

	// Current balance is net of all recorded income and expenses.
	var income, expenses decimal.Decimal
	if err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND type = ?", userID, models.TransactionTypeIncome).
		Scan(&income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND type = ?", userID, models.TransactionTypeExpense).
		Scan(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	currentBalance, _ := income.Sub(expenses).Float64()

	today := dateOnly(time.Now())
	events, err := s.projectRecurring(userID, today.AddDate(0, 0, 1), horizonDays)
	if err != nil {
		return nil, err
	}

	eventsByDay := make(map[time.Time][]recurringEvent)
	var recurringExpenseTotal, recurringIncomeTotal float64
	for _, e := range events {
		eventsByDay[e.date] = append(eventsByDay[e.date], e)
		if e.income {
			recurringIncomeTotal += e.amount
		} else {
			recurringExpenseTotal += e.amount
		}
	}

	spending, err := s.computeSpendingForecast(userID, nil, horizonDays)
	if err != nil {
		return nil, err
	}
	predictedSpend, _ := spending.PredictedAmount.Float64()

	// Recurring expenses are part of the spending history the forecast
	// was fitted on; subtract them so they are not counted twice.
	discretionary := predictedSpend - recurringExpenseTotal
	if discretionary < 0 {
		discretionary = 0
	}
	dailyRate := discretionary / float64(horizonDays)

	balance := currentBalance
	minBalance := currentBalance
	var lowBalanceDate *time.Time
	for d := 1; d <= horizonDays; d++ {
		day := today.AddDate(0, 0, d)
		balance -= dailyRate
		for _, e := range eventsByDay[day] {
			if e.income {
				balance += e.amount
			} else {
				balance -= e.amount
			}
		}
		if balance < minBalance {
			minBalance = balance
		}
		if balance < 0 && lowBalanceDate == nil {
			dayCopy := day
			lowBalanceDate = &dayCopy
		}
	}

	var risk float64
	switch {
	case minBalance < 0:
		risk = 1.0
	case currentBalance > 0 && minBalance < 0.1*currentBalance:
		risk = 0.7
	case currentBalance > 0 && minBalance < 0.25*currentBalance:
		risk = 0.3
	}

	forecast := &models.CashflowForecast{
		UserID:            userID,
		ForecastDate:      today.AddDate(0, 0, horizonDays),
		CurrentBalance:    decimal.NewFromFloat(currentBalance).Round(2),
		PredictedIncome:   decimal.NewFromFloat(recurringIncomeTotal).Round(2),
		PredictedExpenses: decimal.NewFromFloat(discretionary + recurringExpenseTotal).Round(2),
		PredictedBalance:  decimal.NewFromFloat(balance).Round(2),
		MinimumBalance:    decimal.NewFromFloat(minBalance).Round(2),
		LowBalanceDate:    lowBalanceDate,
		OverdraftRisk:     risk,
	}

	if err := s.db.Create(forecast).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return forecast, nil
}

// DetectAnomalies flags expense transactions whose amount is a
// statistical outlier within their category. Uncategorized expenses
// are pooled into a group of their own. Returns only newly flagged
// anomalies; transactions already flagged are skipped.
func (s *forecastService) DetectAnomalies(userID uint) ([]models.SpendingAnomaly, error) {
	windowStart := dateOnly(time.Now()).AddDate(0, 0, -s.anomalyLookbackDays)

	var transactions []models.Transaction
	if err := s.db.Where("user_id = ? AND type = ? AND date >= ?",
		userID, models.TransactionTypeExpense, windowStart).
		Order("date ASC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Key 0 is the uncategorized pool; real category IDs start at 1.
	byCategory := make(map[uint][]models.Transaction)
	var categoryOrder []uint
	for _, t := range transactions {
		var id uint
		if t.CategoryID != nil {
			id = *t.CategoryID
		}
		if _, ok := byCategory[id]; !ok {
			categoryOrder = append(categoryOrder, id)
		}
		byCategory[id] = append(byCategory[id], t)
	}

	var flagged []models.SpendingAnomaly
	for _, categoryID := range categoryOrder {
		txns := byCategory[categoryID]
		if len(txns) < anomalyMinSamples {
			continue
		}

		amounts := make([]float64, len(txns))
		for i, t := range txns {
			amounts[i], _ = t.Amount.Float64()
		}
		mean, std := meanStd(amounts)
		// A perfectly uniform category has no outliers.
		if std == 0 {
			continue
		}

		rangeMin := mean - anomalyZThreshold*std
		if rangeMin < 0 {
			rangeMin = 0
		}
		rangeMax := mean + anomalyZThreshold*std

		for i, t := range txns {
			z := zScore(amounts[i], mean, std)
			if math.Abs(z) <= anomalyZThreshold {
				continue
			}

			var count int64
			if err := s.db.Model(&models.SpendingAnomaly{}).
				Where("transaction_id = ?", t.ID).
				Count(&count).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if count > 0 {
				continue
			}

			anomaly := models.SpendingAnomaly{
				UserID:           userID,
				TransactionID:    t.ID,
				Score:            z,
				ExpectedRangeMin: decimal.NewFromFloat(rangeMin).Round(2),
				ExpectedRangeMax: decimal.NewFromFloat(rangeMax).Round(2),
				ActualAmount:     t.Amount,
				DetectionMethod:  methodZScore,
				Confidence:       math.Min(0.99, math.Abs(z)/5.0),
				Feedback:         models.AnomalyUnconfirmed,
			}
			if err := s.db.Create(&anomaly).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			flagged = append(flagged, anomaly)
		}
	}

	return flagged, nil
}

// GetSpendingForecasts retrieves stored spending forecasts, newest first.
func (s *forecastService) GetSpendingForecasts(userID uint, page pagination.PageRequest, categoryID *uint) (*pagination.PageResponse[models.SpendingForecast], error) {
	page.Defaults()

	base := s.db.Model(&models.SpendingForecast{}).Where("user_id = ?", userID)
	if categoryID != nil {
		base = base.Where("category_id = ?", *categoryID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var forecasts []models.SpendingForecast
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at DESC").Find(&forecasts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(forecasts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCashflowForecasts retrieves stored cash-flow forecasts, newest first.
func (s *forecastService) GetCashflowForecasts(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.CashflowForecast], error) {
	page.Defaults()

	base := s.db.Model(&models.CashflowForecast{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var forecasts []models.CashflowForecast
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at DESC").Find(&forecasts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(forecasts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAnomalies retrieves flagged anomalies with optional filters.
func (s *forecastService) GetAnomalies(userID uint, page pagination.PageRequest, filter AnomalyFilter) (*pagination.PageResponse[models.SpendingAnomaly], error) {
	page.Defaults()

	base := s.db.Model(&models.SpendingAnomaly{}).Where("user_id = ?", userID)
	if filter.Feedback != nil {
		base = base.Where("feedback = ?", *filter.Feedback)
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

	var anomalies []models.SpendingAnomaly
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Transaction").
		Order("created_at DESC").
		Find(&anomalies).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(anomalies, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// SubmitAnomalyFeedback records the user's verdict on a flagged transaction.
func (s *forecastService) SubmitAnomalyFeedback(userID, anomalyID uint, feedback models.AnomalyFeedback, notes string) (*models.SpendingAnomaly, error) {
	var anomaly models.SpendingAnomaly
	if err := s.db.Where("id = ? AND user_id = ?", anomalyID, userID).First(&anomaly).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAnomalyNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	switch feedback {
	case models.AnomalyConfirmed, models.AnomalyDismissed:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "feedback must be confirmed or dismissed")
	}

	updates := map[string]interface{}{"feedback": feedback}
	if notes != "" {
		updates["user_notes"] = notes
	}
	if err := s.db.Model(&anomaly).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &anomaly, nil
}
