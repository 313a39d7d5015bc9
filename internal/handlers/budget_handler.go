package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "debtwise/internal/errors"
	"debtwise/internal/models"
	"debtwise/internal/pagination"
	"debtwise/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// AlertRequest represents one alert inside a budget creation payload.
type AlertRequest struct {
	ThresholdPercentage int    `json:"threshold_percentage" binding:"required,min=1,max=500"`
	Message             string `json:"message" binding:"max=500"`
	SendEmail           bool   `json:"send_email"`
	SendPush            bool   `json:"send_push"`
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	Name               string                  `json:"name" binding:"required,min=1,max=100"`
	Description        string                  `json:"description" binding:"max=500"`
	CategoryID         *uint                   `json:"category_id"`
	PeriodType         models.BudgetPeriodType `json:"period_type" binding:"required,period_type"`
	StartDate          time.Time               `json:"start_date" binding:"required"`
	Amount             decimal.Decimal         `json:"amount" binding:"required"`
	AllowRollover      bool                    `json:"allow_rollover"`
	MaxRolloverPeriods *int                    `json:"max_rollover_periods" binding:"omitempty,min=0"`
	MaxRolloverAmount  *decimal.Decimal        `json:"max_rollover_amount"`
	Alerts             []AlertRequest          `json:"alerts" binding:"omitempty,dive"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
type UpdateBudgetRequest struct {
	Name     string           `json:"name" binding:"omitempty,min=1,max=100"`
	Amount   *decimal.Decimal `json:"amount"`
	IsActive *bool            `json:"is_active"`
}

// RolloverRequest represents the request payload for closing a period.
type RolloverRequest struct {
	PeriodDate time.Time `json:"period_date" binding:"required"`
}

// CreateAlertRequest represents the request payload for adding an alert.
type CreateAlertRequest struct {
	ThresholdPercentage int    `json:"threshold_percentage" binding:"required,min=1,max=500"`
	Message             string `json:"message" binding:"max=500"`
	SendEmail           bool   `json:"send_email"`
	SendPush            bool   `json:"send_push"`
}

// UpdateAlertRequest represents the request payload for updating an alert.
type UpdateAlertRequest struct {
	ThresholdPercentage *int    `json:"threshold_percentage" binding:"omitempty,min=1,max=500"`
	Message             *string `json:"message" binding:"omitempty,max=500"`
	IsEnabled           *bool   `json:"is_enabled"`
	SendEmail           *bool   `json:"send_email"`
	SendPush            *bool   `json:"send_push"`
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a new budget with optional rollover policy and alerts
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Duplicate budget name"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	spec := services.BudgetSpec{
		Name:               req.Name,
		Description:        req.Description,
		CategoryID:         req.CategoryID,
		PeriodType:         req.PeriodType,
		StartDate:          req.StartDate,
		Amount:             req.Amount,
		AllowRollover:      req.AllowRollover,
		MaxRolloverPeriods: req.MaxRolloverPeriods,
		MaxRolloverAmount:  req.MaxRolloverAmount,
	}
	for _, a := range req.Alerts {
		spec.Alerts = append(spec.Alerts, services.AlertSpec{
			ThresholdPercentage: a.ThresholdPercentage,
			Message:             a.Message,
			SendEmail:           a.SendEmail,
			SendPush:            a.SendPush,
		})
	}

	budget, err := h.budgetService.CreateBudget(userID, spec)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudgets handles listing budgets for the authenticated user.
// @Summary     Get budgets
// @Description Get a paginated list of budgets for the authenticated user
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       is_active   query bool false "Filter by active status"
// @Param       category_id query int  false "Filter by category"
// @Param       page        query int  false "Page number (default 1)"
// @Param       page_size   query int  false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	isActive, err := parseBoolQuery(c, "is_active")
	if err != nil {
		respondWithError(c, err)
		return
	}
	categoryID, err := parseUintQuery(c, "category_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.budgetService.GetUserBudgets(userID, page, isActive, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudget handles retrieving a specific budget.
// @Summary     Get budget by ID
// @Description Get a specific budget by ID
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} models.Budget "Budget details"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// UpdateBudget handles updating an existing budget.
// @Summary     Update budget
// @Description Update an existing budget's name, amount or active flag
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                 true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Updated budget details"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input or budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.UpdateBudget(userID, budgetID, req.Name, req.Amount, req.IsActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Description Delete a budget by ID (soft delete)
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} MessageResponse "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

// GetCurrentPeriod handles retrieving the current budget period.
// @Summary     Get current period
// @Description Get the budget period covering today, materializing elapsed periods
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} models.BudgetPeriod "Current period"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget or period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/period [get]
func (h *BudgetHandler) GetCurrentPeriod(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	period, err := h.budgetService.GetCurrentPeriod(userID, budgetID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"period": period})
}

// ProcessRollover handles closing a budget period.
// @Summary     Process rollover
// @Description Close the period covering the given date and open the next one
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int             true "Budget ID"
// @Param       request body RolloverRequest true "Period date"
// @Success     200 {object} services.RolloverResult "Rollover result"
// @Failure     400 {object} ErrorResponse "Invalid input or inactive budget"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget or period not found"
// @Failure     409 {object} ErrorResponse "Period already closed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/rollover [post]
func (h *BudgetHandler) ProcessRollover(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RolloverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.budgetService.ProcessRollover(userID, budgetID, req.PeriodDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rollover": result})
}

// GetBudgetSummary handles the per-budget spending summary.
// @Summary     Get budget summary
// @Description Get spending analysis for the budget's current period, including newly triggered alerts
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} services.BudgetSummary "Budget summary"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/summary [get]
func (h *BudgetHandler) GetBudgetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.budgetService.GetBudgetSummary(userID, budgetID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetBudgetOverview handles the cross-budget overview.
// @Summary     Get budget overview
// @Description Get aggregated spending analysis across all active budgets
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.BudgetOverview "Budget overview"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/overview [get]
func (h *BudgetHandler) GetBudgetOverview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	overview, err := h.budgetService.GetBudgetOverview(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"overview": overview})
}

// CreateAlert handles adding an alert to a budget.
// @Summary     Create budget alert
// @Description Add a spending threshold alert to a budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                true "Budget ID"
// @Param       request body CreateAlertRequest true "Alert details"
// @Success     201 {object} models.BudgetAlert "Alert created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Duplicate threshold"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/alerts [post]
func (h *BudgetHandler) CreateAlert(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	alert, err := h.budgetService.CreateAlert(userID, budgetID, services.AlertSpec{
		ThresholdPercentage: req.ThresholdPercentage,
		Message:             req.Message,
		SendEmail:           req.SendEmail,
		SendPush:            req.SendPush,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"alert": alert})
}

// UpdateAlert handles updating a budget alert.
// @Summary     Update budget alert
// @Description Update an alert's threshold, message or delivery flags
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       alert_id path int                true "Alert ID"
// @Param       request  body UpdateAlertRequest true "Updated alert details"
// @Success     200 {object} models.BudgetAlert "Updated alert"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Alert not found"
// @Failure     409 {object} ErrorResponse "Duplicate threshold"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/alerts/{alert_id} [put]
func (h *BudgetHandler) UpdateAlert(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	alertID, err := parsePathID(c, "alert_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	alert, err := h.budgetService.UpdateAlert(
		userID, alertID, req.ThresholdPercentage, req.Message, req.IsEnabled, req.SendEmail, req.SendPush,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alert": alert})
}

// DeleteAlert handles removing a budget alert.
// @Summary     Delete budget alert
// @Description Delete a budget alert by ID
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       alert_id path int true "Alert ID"
// @Success     200 {object} MessageResponse "Alert deleted"
// @Failure     400 {object} ErrorResponse "Invalid alert ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Alert not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/alerts/{alert_id} [delete]
func (h *BudgetHandler) DeleteAlert(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	alertID, err := parsePathID(c, "alert_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteAlert(userID, alertID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Alert deleted successfully"})
}
