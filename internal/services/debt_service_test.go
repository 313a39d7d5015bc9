package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"debtwise/internal/models"
	"debtwise/internal/testutil"
)

func TestCreateDebt(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		debt, err := svc.CreateDebt(user.ID, DebtSpec{
			Name:           "Visa",
			Type:           models.DebtTypeCreditCard,
			OriginalAmount: decimal.NewFromInt(5000),
			CurrentBalance: decimal.NewFromInt(3200),
			InterestRate:   decimal.NewFromFloat(19.99),
			MinimumPayment: decimal.NewFromInt(80),
		})
		testutil.AssertNoError(t, err)

		if debt.ID == 0 {
			t.Fatal("expected non-zero debt ID")
		}
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(3200), debt.CurrentBalance)
		if debt.Status != models.DebtStatusActive {
			t.Errorf("expected active status, got %s", debt.Status)
		}
	})

	t.Run("zero_balance_defaults_to_original", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		debt, err := svc.CreateDebt(user.ID, DebtSpec{
			Name:           "Car Loan",
			Type:           models.DebtTypeAutoLoan,
			OriginalAmount: decimal.NewFromInt(15000),
			InterestRate:   decimal.NewFromFloat(6.5),
			MinimumPayment: decimal.NewFromInt(300),
		})
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(15000), debt.CurrentBalance)
	})

	t.Run("invalid_input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateDebt(user.ID, DebtSpec{
			Type:           models.DebtTypeCreditCard,
			OriginalAmount: decimal.NewFromInt(1000),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		badDay := 32
		_, err = svc.CreateDebt(user.ID, DebtSpec{
			Name:           "Bad Due Day",
			OriginalAmount: decimal.NewFromInt(1000),
			DueDay:         &badDay,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestRecordPayment(t *testing.T) {
	t.Run("splits_interest_and_principal", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		// 12% APR on 1000 accrues 10 of interest per month.
		debt := testutil.CreateTestDebt(t, db, user.ID, decimal.NewFromInt(1000), decimal.NewFromInt(12), decimal.NewFromInt(50))

		payment, err := svc.RecordPayment(user.ID, debt.ID, decimal.NewFromInt(110), time.Now(), "", false)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, decimal.NewFromInt(10), payment.InterestAmount)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(100), payment.PrincipalAmount)

		updated, err := svc.GetDebtByID(user.ID, debt.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(900), updated.CurrentBalance)
	})

	t.Run("overpayment_clips_to_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		debt := testutil.CreateTestDebt(t, db, user.ID, decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(25))

		payment, err := svc.RecordPayment(user.ID, debt.ID, decimal.NewFromInt(500), time.Now(), "", true)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, decimal.NewFromInt(100), payment.PrincipalAmount)

		updated, err := svc.GetDebtByID(user.ID, debt.ID)
		testutil.AssertNoError(t, err)
		if !updated.CurrentBalance.IsZero() {
			t.Errorf("expected zero balance, got %s", updated.CurrentBalance)
		}
		if updated.Status != models.DebtStatusPaidOff {
			t.Errorf("expected paid_off status, got %s", updated.Status)
		}
	})

	t.Run("paid_off_debt_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		debt := testutil.CreateTestDebt(t, db, user.ID, decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(25))

		_, err := svc.RecordPayment(user.ID, debt.ID, decimal.NewFromInt(100), time.Now(), "", false)
		testutil.AssertNoError(t, err)

		_, err = svc.RecordPayment(user.ID, debt.ID, decimal.NewFromInt(10), time.Now(), "", false)
		testutil.AssertAppError(t, err, "DEBT_PAID_OFF")
	})

	t.Run("nonpositive_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		debt := testutil.CreateTestDebt(t, db, user.ID, decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(25))

		_, err := svc.RecordPayment(user.ID, debt.ID, decimal.Zero, time.Now(), "", false)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetDebtSummary(t *testing.T) {
	t.Run("aggregates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestDebt(t, db, user.ID, decimal.NewFromInt(1000), decimal.NewFromInt(10), decimal.NewFromInt(25))
		testutil.CreateTestDebt(t, db, user.ID, decimal.NewFromInt(2000), decimal.NewFromInt(20), decimal.NewFromInt(50))

		summary, err := svc.GetDebtSummary(user.ID)
		testutil.AssertNoError(t, err)

		if summary.ActiveDebts != 2 {
			t.Errorf("expected 2 active debts, got %d", summary.ActiveDebts)
		}
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(3000), summary.TotalDebt)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(75), summary.TotalMinimumPayment)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(15), summary.AverageInterestRate)
		if summary.DebtsByType[models.DebtTypeCreditCard] != 2 {
			t.Errorf("expected 2 credit card debts, got %d", summary.DebtsByType[models.DebtTypeCreditCard])
		}
	})

	t.Run("payment_totals", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		debt := testutil.CreateTestDebt(t, db, user.ID, decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(10))
		_, err := svc.RecordPayment(user.ID, debt.ID, decimal.NewFromInt(40), time.Now(), "", false)
		testutil.AssertNoError(t, err)

		summary, err := svc.GetDebtSummary(user.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(40), summary.TotalPaid)
		testutil.AssertDecimalEqual(t, decimal.Zero, summary.TotalInterestPaid)
	})
}

func TestGeneratePayoffPlan(t *testing.T) {
	t.Run("zero_interest_exact_months", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestDebt(t, db, user.ID, decimal.NewFromInt(300), decimal.Zero, decimal.NewFromInt(100))

		plan, err := svc.GeneratePayoffPlan(user.ID, StrategySnowball, decimal.Zero, nil)
		testutil.AssertNoError(t, err)

		if plan.TotalMonths != 3 {
			t.Errorf("expected 3 months, got %d", plan.TotalMonths)
		}
		testutil.AssertDecimalEqual(t, decimal.Zero, plan.Debts[0].TotalInterest)
		if plan.Debts[0].MonthsToPayoff != 3 {
			t.Errorf("expected payoff in month 3, got %d", plan.Debts[0].MonthsToPayoff)
		}
	})

	t.Run("snowball_orders_by_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		big := testutil.CreateTestDebt(t, db, user.ID, decimal.NewFromInt(2000), decimal.NewFromInt(25), decimal.NewFromInt(100))
		small := testutil.CreateTestDebt(t, db, user.ID, decimal.NewFromInt(500), decimal.NewFromInt(5), decimal.NewFromInt(50))

		plan, err := svc.GeneratePayoffPlan(user.ID, StrategySnowball, decimal.NewFromInt(100), nil)
		testutil.AssertNoError(t, err)

		if len(plan.Debts) != 2 {
			t.Fatalf("expected 2 debts in plan, got %d", len(plan.Debts))
		}
		if plan.Debts[0].DebtID != small.ID {
			t.Errorf("expected smallest balance first, got debt %d", plan.Debts[0].DebtID)
		}
		if plan.Debts[1].DebtID != big.ID {
			t.Errorf("expected largest balance last, got debt %d", plan.Debts[1].DebtID)
		}
		if plan.Debts[0].PayoffOrder != 1 || plan.Debts[1].PayoffOrder != 2 {
			t.Error("expected payoff order 1, 2")
		}
	})

	t.Run("avalanche_orders_by_rate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		lowRate := testutil.CreateTestDebt(t, db, user.ID, decimal.NewFromInt(500), decimal.NewFromInt(5), decimal.NewFromInt(50))
		highRate := testutil.CreateTestDebt(t, db, user.ID, decimal.NewFromInt(2000), decimal.NewFromInt(25), decimal.NewFromInt(100))

		plan, err := svc.GeneratePayoffPlan(user.ID, StrategyAvalanche, decimal.NewFromInt(100), nil)
		testutil.AssertNoError(t, err)

		if plan.Debts[0].DebtID != highRate.ID {
			t.Errorf("expected highest rate first, got debt %d", plan.Debts[0].DebtID)
		}
		if plan.Debts[1].DebtID != lowRate.ID {
			t.Errorf("expected lowest rate last, got debt %d", plan.Debts[1].DebtID)
		}
	})

	t.Run("extra_payment_saves_interest_and_time", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestDebt(t, db, user.ID, decimal.NewFromInt(1200), decimal.NewFromInt(12), decimal.NewFromInt(100))

		withExtra, err := svc.GeneratePayoffPlan(user.ID, StrategySnowball, decimal.NewFromInt(100), nil)
		testutil.AssertNoError(t, err)
		baseline, err := svc.GeneratePayoffPlan(user.ID, StrategySnowball, decimal.Zero, nil)
		testutil.AssertNoError(t, err)

		if withExtra.TotalMonths >= baseline.TotalMonths {
			t.Errorf("expected extra payment to shorten payoff: %d vs %d months", withExtra.TotalMonths, baseline.TotalMonths)
		}
		if !withExtra.TotalInterestSaved.IsPositive() {
			t.Errorf("expected positive interest savings, got %s", withExtra.TotalInterestSaved)
		}
		if withExtra.TimeSavedMonths <= 0 {
			t.Errorf("expected positive time savings, got %d", withExtra.TimeSavedMonths)
		}
	})

	t.Run("non_converging_plan_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		// Interest accrues faster than the minimum payment covers.
		testutil.CreateTestDebt(t, db, user.ID, decimal.NewFromInt(10000), decimal.NewFromInt(50), decimal.NewFromInt(10))

		_, err := svc.GeneratePayoffPlan(user.ID, StrategySnowball, decimal.Zero, nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("no_active_debts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.GeneratePayoffPlan(user.ID, StrategySnowball, decimal.Zero, nil)
		testutil.AssertAppError(t, err, "DEBT_NOT_FOUND")
	})

	t.Run("invalid_strategy", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.GeneratePayoffPlan(user.ID, PayoffStrategy("lottery"), decimal.Zero, nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUpdateDebt(t *testing.T) {
	t.Run("zero_balance_marks_paid_off", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		debt := testutil.CreateTestDebt(t, db, user.ID, decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(25))

		zero := decimal.Zero
		_, err := svc.UpdateDebt(user.ID, debt.ID, "", &zero, nil, nil)
		testutil.AssertNoError(t, err)

		updated, err := svc.GetDebtByID(user.ID, debt.ID)
		testutil.AssertNoError(t, err)
		if updated.Status != models.DebtStatusPaidOff {
			t.Errorf("expected paid_off, got %s", updated.Status)
		}

		// Restoring a balance reactivates the debt.
		restored := decimal.NewFromInt(50)
		_, err = svc.UpdateDebt(user.ID, debt.ID, "", &restored, nil, nil)
		testutil.AssertNoError(t, err)

		updated, err = svc.GetDebtByID(user.ID, debt.ID)
		testutil.AssertNoError(t, err)
		if updated.Status != models.DebtStatusActive {
			t.Errorf("expected active, got %s", updated.Status)
		}
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		debt := testutil.CreateTestDebt(t, db, user1.ID, decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(25))

		_, err := svc.GetDebtByID(user2.ID, debt.ID)
		testutil.AssertAppError(t, err, "DEBT_NOT_FOUND")
	})
}
