package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestBudgetFlow_CreateAndSummary(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "budget@test.com", "password123")

	catID := app.createCategory(t, token, "Groceries", "expense")

	// Monthly budget of 200 anchored to the first of this month
	now := time.Now().UTC()
	startDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	rec := app.request("POST", "/api/v1/budgets",
		fmt.Sprintf(`{"name":"Grocery Budget","category_id":%.0f,"period_type":"monthly","start_date":%q,"amount":200}`,
			catID, startDate.Format(time.RFC3339)), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating budget, got %d: %s", rec.Code, rec.Body.String())
	}
	budgetID := parseJSON(t, rec)["budget"].(map[string]interface{})["id"].(float64)

	// Summary before any spending
	rec = app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f/summary", budgetID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	summary := parseJSON(t, rec)["summary"].(map[string]interface{})
	if summary["total_spent"] != "0" {
		t.Errorf("expected 0 spent before transactions, got %v", summary["total_spent"])
	}
	if summary["total_budgeted"] != "200" {
		t.Errorf("expected 200 budgeted, got %v", summary["total_budgeted"])
	}

	// Spend 80 + 50 in the category this month
	date := now.Format(time.RFC3339)
	app.createTransaction(t, token, "expense", 80, catID, date)
	app.createTransaction(t, token, "expense", 50, catID, date)

	rec = app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f/summary", budgetID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	summary = parseJSON(t, rec)["summary"].(map[string]interface{})
	if summary["total_spent"] != "130" {
		t.Errorf("expected 130 spent, got %v", summary["total_spent"])
	}
	if summary["total_remaining"] != "70" {
		t.Errorf("expected 70 remaining, got %v", summary["total_remaining"])
	}
	if summary["percentage_used"].(float64) != 65 {
		t.Errorf("expected 65%% used, got %v", summary["percentage_used"])
	}
	if summary["is_over_budget"].(bool) {
		t.Error("expected not over budget at 65 percent")
	}
}

func TestBudgetFlow_IncomeIgnored(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "budgetincome@test.com", "password123")

	catID := app.createCategory(t, token, "Side Work", "expense")

	now := time.Now().UTC()
	startDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	rec := app.request("POST", "/api/v1/budgets",
		fmt.Sprintf(`{"name":"Side Budget","category_id":%.0f,"period_type":"monthly","start_date":%q,"amount":100}`,
			catID, startDate.Format(time.RFC3339)), token)
	budgetID := parseJSON(t, rec)["budget"].(map[string]interface{})["id"].(float64)

	// Income in the same category should not count as spending
	app.createTransaction(t, token, "income", 50, catID, now.Format(time.RFC3339))

	rec = app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f/summary", budgetID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	summary := parseJSON(t, rec)["summary"].(map[string]interface{})
	if summary["total_spent"] != "0" {
		t.Errorf("expected income ignored, got spent=%v", summary["total_spent"])
	}
}

func TestBudgetFlow_RolloverCarry(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "rollover@test.com", "password123")

	catID := app.createCategory(t, token, "Dining", "expense")

	now := time.Now().UTC()
	startDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	rec := app.request("POST", "/api/v1/budgets",
		fmt.Sprintf(`{"name":"Dining Budget","category_id":%.0f,"period_type":"monthly","start_date":%q,"amount":100,"allow_rollover":true}`,
			catID, startDate.Format(time.RFC3339)), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	budgetID := parseJSON(t, rec)["budget"].(map[string]interface{})["id"].(float64)

	// Spend 40 of 100 this period
	app.createTransaction(t, token, "expense", 40, catID, now.Format(time.RFC3339))

	// Close the period: the 60 surplus carries forward
	rec = app.request("POST", fmt.Sprintf("/api/v1/budgets/%.0f/rollover", budgetID),
		fmt.Sprintf(`{"period_date":%q}`, now.Format(time.RFC3339)), token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rollover := parseJSON(t, rec)["rollover"].(map[string]interface{})
	if rollover["rollover_amount"] != "60" {
		t.Errorf("expected 60 carried, got %v", rollover["rollover_amount"])
	}
	next := rollover["next_period"].(map[string]interface{})
	if next["total_amount"] != "160" {
		t.Errorf("expected next period total 160, got %v", next["total_amount"])
	}
	closed := rollover["closed_period"].(map[string]interface{})
	if closed["is_closed"] != true {
		t.Error("expected closed period to be marked closed")
	}

	// Closing the same period again conflicts
	rec = app.request("POST", fmt.Sprintf("/api/v1/budgets/%.0f/rollover", budgetID),
		fmt.Sprintf(`{"period_date":%q}`, now.Format(time.RFC3339)), token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for already-closed period, got %d: %s", rec.Code, rec.Body.String())
	}
	assertCode(t, parseJSON(t, rec), "PERIOD_ALREADY_CLOSED")
}

func TestBudgetFlow_RolloverDisabled(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "norollover@test.com", "password123")

	catID := app.createCategory(t, token, "Fuel", "expense")

	now := time.Now().UTC()
	startDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	rec := app.request("POST", "/api/v1/budgets",
		fmt.Sprintf(`{"name":"Fuel Budget","category_id":%.0f,"period_type":"monthly","start_date":%q,"amount":100}`,
			catID, startDate.Format(time.RFC3339)), token)
	budgetID := parseJSON(t, rec)["budget"].(map[string]interface{})["id"].(float64)

	app.createTransaction(t, token, "expense", 30, catID, now.Format(time.RFC3339))

	rec = app.request("POST", fmt.Sprintf("/api/v1/budgets/%.0f/rollover", budgetID),
		fmt.Sprintf(`{"period_date":%q}`, now.Format(time.RFC3339)), token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rollover := parseJSON(t, rec)["rollover"].(map[string]interface{})
	if rollover["rollover_amount"] != "0" {
		t.Errorf("expected no carry without rollover, got %v", rollover["rollover_amount"])
	}
	next := rollover["next_period"].(map[string]interface{})
	if next["total_amount"] != "100" {
		t.Errorf("expected next period total 100, got %v", next["total_amount"])
	}
}

func TestBudgetFlow_AlertFiresOncePerPeriod(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "alerts@test.com", "password123")

	catID := app.createCategory(t, token, "Shopping", "expense")

	now := time.Now().UTC()
	startDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	rec := app.request("POST", "/api/v1/budgets",
		fmt.Sprintf(`{"name":"Shopping Budget","category_id":%.0f,"period_type":"monthly","start_date":%q,"amount":100,"alerts":[{"threshold_percentage":50}]}`,
			catID, startDate.Format(time.RFC3339)), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	budgetID := parseJSON(t, rec)["budget"].(map[string]interface{})["id"].(float64)

	// Below threshold: nothing fires
	app.createTransaction(t, token, "expense", 30, catID, now.Format(time.RFC3339))
	rec = app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f/summary", budgetID), "", token)
	summary := parseJSON(t, rec)["summary"].(map[string]interface{})
	if len(summary["triggered_alerts"].([]interface{})) != 0 {
		t.Errorf("expected no alerts at 30%%, got %v", summary["triggered_alerts"])
	}

	// Cross the threshold
	app.createTransaction(t, token, "expense", 30, catID, now.Format(time.RFC3339))
	rec = app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f/summary", budgetID), "", token)
	summary = parseJSON(t, rec)["summary"].(map[string]interface{})
	triggered := summary["triggered_alerts"].([]interface{})
	if len(triggered) != 1 {
		t.Fatalf("expected 1 triggered alert at 60%%, got %d", len(triggered))
	}
	if triggered[0].(map[string]interface{})["threshold_percentage"].(float64) != 50 {
		t.Errorf("expected 50%% threshold, got %v", triggered[0])
	}

	// A second summary in the same period does not re-fire
	rec = app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f/summary", budgetID), "", token)
	summary = parseJSON(t, rec)["summary"].(map[string]interface{})
	if len(summary["triggered_alerts"].([]interface{})) != 0 {
		t.Error("expected alert to fire only once per period")
	}
}

func TestBudgetFlow_CRUDOperations(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "budgetcrud@test.com", "password123")

	catID := app.createCategory(t, token, "Utilities", "expense")

	now := time.Now().UTC()
	startDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	rec := app.request("POST", "/api/v1/budgets",
		fmt.Sprintf(`{"name":"Utility Budget","category_id":%.0f,"period_type":"monthly","start_date":%q,"amount":150}`,
			catID, startDate.Format(time.RFC3339)), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	budgetID := parseJSON(t, rec)["budget"].(map[string]interface{})["id"].(float64)

	// Duplicate name rejected
	rec = app.request("POST", "/api/v1/budgets",
		fmt.Sprintf(`{"name":"Utility Budget","period_type":"monthly","start_date":%q,"amount":50}`,
			startDate.Format(time.RFC3339)), token)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate name, got %d", rec.Code)
	}

	// Get
	rec = app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f", budgetID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	budget := parseJSON(t, rec)["budget"].(map[string]interface{})
	if budget["name"] != "Utility Budget" {
		t.Errorf("expected name 'Utility Budget', got %v", budget["name"])
	}

	// Update
	rec = app.request("PUT", fmt.Sprintf("/api/v1/budgets/%.0f", budgetID),
		`{"name":"Updated Utilities","amount":200}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := parseJSON(t, rec)["budget"].(map[string]interface{})
	if updated["name"] != "Updated Utilities" {
		t.Errorf("expected updated name, got %v", updated["name"])
	}
	if updated["amount"] != "200" {
		t.Errorf("expected amount 200, got %v", updated["amount"])
	}

	// List
	rec = app.request("GET", "/api/v1/budgets", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if parseJSON(t, rec)["total_items"].(float64) != 1 {
		t.Errorf("expected 1 budget in list")
	}

	// Delete, then 404
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/budgets/%.0f", budgetID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f", budgetID), "", token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after deletion, got %d", rec.Code)
	}
}

func TestBudgetFlow_UserIsolation(t *testing.T) {
	app := setupApp(t)
	tokenA, _, _ := app.registerUser(t, "owner@test.com", "password123")
	tokenB, _, _ := app.registerUser(t, "other@test.com", "password123")

	catID := app.createCategory(t, tokenA, "Rent", "expense")

	now := time.Now().UTC()
	startDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	rec := app.request("POST", "/api/v1/budgets",
		fmt.Sprintf(`{"name":"Rent Budget","category_id":%.0f,"period_type":"monthly","start_date":%q,"amount":1200}`,
			catID, startDate.Format(time.RFC3339)), tokenA)
	budgetID := parseJSON(t, rec)["budget"].(map[string]interface{})["id"].(float64)

	// The other user cannot see or touch it
	rec = app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f", budgetID), "", tokenB)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another user's budget, got %d", rec.Code)
	}
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/budgets/%.0f", budgetID), "", tokenB)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 deleting another user's budget, got %d", rec.Code)
	}
}
