package services

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "debtwise/internal/errors"
	"debtwise/internal/models"
	"debtwise/internal/pagination"
)

// maxPayoffMonths caps payoff simulations. A plan that cannot retire
// its debts within this horizon is not converging.
const maxPayoffMonths = 600

// debtService handles debt tracking and payoff planning.
type debtService struct {
	db *gorm.DB
}

// NewDebtService creates a new DebtServicer.
func NewDebtService(db *gorm.DB) DebtServicer {
	return &debtService{db: db}
}

// CreateDebt registers a new debt. A zero current balance defaults to
// the original amount.
func (s *debtService) CreateDebt(userID uint, spec DebtSpec) (*models.Debt, error) {
	if spec.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "debt name is required")
	}
	if !spec.OriginalAmount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "original amount must be positive")
	}
	if spec.CurrentBalance.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "current balance cannot be negative")
	}
	if spec.InterestRate.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "interest rate cannot be negative")
	}
	if spec.MinimumPayment.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "minimum payment cannot be negative")
	}
	if spec.DueDay != nil && (*spec.DueDay < 1 || *spec.DueDay > 31) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "due day must be between 1 and 31")
	}

	balance := spec.CurrentBalance
	if balance.IsZero() {
		balance = spec.OriginalAmount
	}

	debt := &models.Debt{
		UserID:          userID,
		Name:            spec.Name,
		Description:     spec.Description,
		Type:            spec.Type,
		OriginalAmount:  spec.OriginalAmount,
		CurrentBalance:  balance,
		InterestRate:    spec.InterestRate,
		MinimumPayment:  spec.MinimumPayment,
		DueDay:          spec.DueDay,
		OriginationDate: spec.OriginationDate,
		Status:          models.DebtStatusActive,
		IsActive:        true,
	}

	if err := s.db.Create(debt).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return debt, nil
}

// GetUserDebts returns a paginated list of the user's debts.
func (s *debtService) GetUserDebts(userID uint, page pagination.PageRequest, includeInactive bool, debtType *models.DebtType) (*pagination.PageResponse[models.Debt], error) {
	page.Defaults()

	base := s.db.Model(&models.Debt{}).Where("user_id = ?", userID)
	if !includeInactive {
		base = base.Where("is_active = ?", true)
	}
	if debtType != nil {
		base = base.Where("type = ?", *debtType)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var debts []models.Debt
	if err := base.Scopes(pagination.Paginate(page)).Order("current_balance DESC").Find(&debts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(debts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetDebtByID retrieves a debt by ID for a specific user.
func (s *debtService) GetDebtByID(userID, debtID uint) (*models.Debt, error) {
	var debt models.Debt
	if err := s.db.Where("id = ? AND user_id = ?", debtID, userID).First(&debt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDebtNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &debt, nil
}

// UpdateDebt updates a debt's mutable fields. Dropping the balance to
// zero marks the debt paid off.
func (s *debtService) UpdateDebt(userID, debtID uint, name string, balance, minimumPayment, interestRate *decimal.Decimal) (*models.Debt, error) {
	debt, err := s.GetDebtByID(userID, debtID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if balance != nil {
		if balance.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "current balance cannot be negative")
		}
		updates["current_balance"] = *balance
		if balance.IsZero() {
			updates["status"] = models.DebtStatusPaidOff
		} else if debt.Status == models.DebtStatusPaidOff {
			updates["status"] = models.DebtStatusActive
		}
	}
	if minimumPayment != nil {
		if minimumPayment.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "minimum payment cannot be negative")
		}
		updates["minimum_payment"] = *minimumPayment
	}
	if interestRate != nil {
		if interestRate.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "interest rate cannot be negative")
		}
		updates["interest_rate"] = *interestRate
	}

	if len(updates) > 0 {
		if err := s.db.Model(debt).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return debt, nil
}

// DeleteDebt soft-deletes a debt and its payment history stays intact.
func (s *debtService) DeleteDebt(userID, debtID uint) error {
	debt, err := s.GetDebtByID(userID, debtID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(debt).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// monthlyInterest returns one month of interest on balance at an
// annual percentage rate.
func monthlyInterest(balance, annualRate decimal.Decimal) decimal.Decimal {
	return balance.Mul(annualRate).Div(decimal.NewFromInt(1200)).Round(2)
}

// RecordPayment applies a payment to a debt, splitting it into the
// interest accrued this month and the principal reduction.
func (s *debtService) RecordPayment(userID, debtID uint, amount decimal.Decimal, date time.Time, notes string, isExtra bool) (*models.DebtPayment, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "payment amount must be positive")
	}

	debt, err := s.GetDebtByID(userID, debtID)
	if err != nil {
		return nil, err
	}
	if debt.Status == models.DebtStatusPaidOff {
		return nil, apperrors.ErrDebtPaidOff
	}

	interest := monthlyInterest(debt.CurrentBalance, debt.InterestRate)
	if interest.GreaterThan(amount) {
		interest = amount
	}
	principal := amount.Sub(interest)
	if principal.GreaterThan(debt.CurrentBalance) {
		principal = debt.CurrentBalance
	}
	newBalance := debt.CurrentBalance.Sub(principal)

	payment := &models.DebtPayment{
		DebtID:          debtID,
		UserID:          userID,
		Amount:          amount,
		PaymentDate:     date,
		PrincipalAmount: principal,
		InterestAmount:  interest,
		Notes:           notes,
		IsExtraPayment:  isExtra,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		updates := map[string]interface{}{"current_balance": newBalance}
		if newBalance.IsZero() {
			updates["status"] = models.DebtStatusPaidOff
		}
		if err := tx.Model(debt).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return payment, nil
}

// GetDebtSummary aggregates statistics across all of the user's debts.
func (s *debtService) GetDebtSummary(userID uint) (*DebtSummary, error) {
	var debts []models.Debt
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&debts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &DebtSummary{
		TotalDebt:           decimal.Zero,
		TotalOriginalDebt:   decimal.Zero,
		TotalPaid:           decimal.Zero,
		TotalInterestPaid:   decimal.Zero,
		AverageInterestRate: decimal.Zero,
		TotalMinimumPayment: decimal.Zero,
		DebtsByType:         make(map[models.DebtType]int),
	}

	rateSum := decimal.Zero
	activeCount := 0
	for _, d := range debts {
		summary.TotalOriginalDebt = summary.TotalOriginalDebt.Add(d.OriginalAmount)
		summary.DebtsByType[d.Type]++
		if d.Status == models.DebtStatusPaidOff {
			summary.PaidOffDebts++
			continue
		}
		summary.ActiveDebts++
		activeCount++
		summary.TotalDebt = summary.TotalDebt.Add(d.CurrentBalance)
		summary.TotalMinimumPayment = summary.TotalMinimumPayment.Add(d.MinimumPayment)
		rateSum = rateSum.Add(d.InterestRate)
	}
	if activeCount > 0 {
		summary.AverageInterestRate = rateSum.Div(decimal.NewFromInt(int64(activeCount))).Round(2)
	}

	var paid struct {
		Total    decimal.Decimal
		Interest decimal.Decimal
	}
	if err := s.db.Model(&models.DebtPayment{}).
		Select("COALESCE(SUM(amount), 0) AS total, COALESCE(SUM(interest_amount), 0) AS interest").
		Where("user_id = ?", userID).
		Scan(&paid).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	summary.TotalPaid = paid.Total
	summary.TotalInterestPaid = paid.Interest

	return summary, nil
}

// simDebt is the mutable per-debt state of a payoff simulation.
type simDebt struct {
	debt          models.Debt
	balance       decimal.Decimal
	totalInterest decimal.Decimal
	payoffMonth   int
}

// simulatePayoff runs a month-by-month amortization over the debts in
// priority order. Each month interest accrues, minimum payments land,
// and the extra budget plus freed-up minimums attack the first
// unpaid debt in the ordering. Returns total months and total
// interest, or false if the plan does not converge.
func simulatePayoff(debts []*simDebt, extra decimal.Decimal) (int, decimal.Decimal, bool) {
	remaining := func() bool {
		for _, d := range debts {
			if d.balance.IsPositive() {
				return true
			}
		}
		return false
	}

	month := 0
	totalInterest := decimal.Zero
	for remaining() {
		month++
		if month > maxPayoffMonths {
			return 0, decimal.Zero, false
		}

		budget := extra
		for _, d := range debts {
			if !d.balance.IsPositive() {
				continue
			}
			interest := monthlyInterest(d.balance, d.debt.InterestRate)
			d.balance = d.balance.Add(interest)
			d.totalInterest = d.totalInterest.Add(interest)
			totalInterest = totalInterest.Add(interest)
			budget = budget.Add(d.debt.MinimumPayment)
		}

		// Minimums first, in order.
		for _, d := range debts {
			if !d.balance.IsPositive() || !budget.IsPositive() {
				continue
			}
			pay := decimal.Min(d.balance, decimal.Min(d.debt.MinimumPayment, budget))
			d.balance = d.balance.Sub(pay)
			budget = budget.Sub(pay)
			if d.balance.IsZero() && d.payoffMonth == 0 {
				d.payoffMonth = month
			}
		}

		// Whatever is left snowballs onto the highest-priority debt.
		for _, d := range debts {
			if !budget.IsPositive() {
				break
			}
			if !d.balance.IsPositive() {
				continue
			}
			pay := decimal.Min(d.balance, budget)
			d.balance = d.balance.Sub(pay)
			budget = budget.Sub(pay)
			if d.balance.IsZero() && d.payoffMonth == 0 {
				d.payoffMonth = month
			}
		}
	}

	return month, totalInterest, true
}

// GeneratePayoffPlan projects debt payoff under the chosen strategy.
// An empty debtIDs slice plans across all active debts.
func (s *debtService) GeneratePayoffPlan(userID uint, strategy PayoffStrategy, extraPayment decimal.Decimal, debtIDs []uint) (*PayoffPlan, error) {
	if strategy != StrategySnowball && strategy != StrategyAvalanche {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "strategy must be snowball or avalanche")
	}
	if extraPayment.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "extra payment cannot be negative")
	}

	query := s.db.Where("user_id = ? AND status = ? AND is_active = ?", userID, models.DebtStatusActive, true)
	if len(debtIDs) > 0 {
		query = query.Where("id IN ?", debtIDs)
	}

	var debts []models.Debt
	if err := query.Find(&debts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(debts) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrDebtNotFound, "no active debts to plan")
	}

	// Snowball clears small balances first; avalanche attacks the
	// highest rate first.
	sort.SliceStable(debts, func(i, j int) bool {
		if strategy == StrategySnowball {
			return debts[i].CurrentBalance.LessThan(debts[j].CurrentBalance)
		}
		if !debts[i].InterestRate.Equal(debts[j].InterestRate) {
			return debts[i].InterestRate.GreaterThan(debts[j].InterestRate)
		}
		return debts[i].CurrentBalance.LessThan(debts[j].CurrentBalance)
	})

	newSim := func() []*simDebt {
		sims := make([]*simDebt, len(debts))
		for i, d := range debts {
			sims[i] = &simDebt{debt: d, balance: d.CurrentBalance, totalInterest: decimal.Zero}
		}
		return sims
	}

	sims := newSim()
	months, totalInterest, ok := simulatePayoff(sims, extraPayment)
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "minimum payments do not cover accruing interest")
	}

	now := dateOnly(time.Now())
	plan := &PayoffPlan{
		Strategy:            strategy,
		ExtraMonthlyPayment: extraPayment,
		TotalMonths:         months,
		PayoffDate:          now.AddDate(0, months, 0),
		Debts:               make([]DebtProjection, len(sims)),
	}

	for i, sim := range sims {
		plan.Debts[i] = DebtProjection{
			DebtID:         sim.debt.ID,
			DebtName:       sim.debt.Name,
			CurrentBalance: sim.debt.CurrentBalance,
			PayoffOrder:    i + 1,
			MonthsToPayoff: sim.payoffMonth,
			PayoffDate:     now.AddDate(0, sim.payoffMonth, 0),
			TotalInterest:  sim.totalInterest.Round(2),
		}
	}

	// Savings are measured against the same ordering with no extra payment.
	plan.TotalInterestSaved = decimal.Zero
	if extraPayment.IsPositive() {
		baselineMonths, baselineInterest, ok := simulatePayoff(newSim(), decimal.Zero)
		if ok {
			plan.TotalInterestSaved = baselineInterest.Sub(totalInterest).Round(2)
			plan.TimeSavedMonths = baselineMonths - months
		}
	}

	return plan, nil
}
