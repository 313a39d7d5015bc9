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

// DebtHandler handles debt-related requests.
type DebtHandler struct {
	debtService services.DebtServicer
}

// NewDebtHandler creates a new DebtHandler.
func NewDebtHandler(debtService services.DebtServicer) *DebtHandler {
	return &DebtHandler{debtService: debtService}
}

// CreateDebtRequest represents the request payload for registering a debt.
type CreateDebtRequest struct {
	Name            string          `json:"name" binding:"required,min=1,max=255"`
	Description     string          `json:"description" binding:"max=500"`
	Type            models.DebtType `json:"type" binding:"required,debt_type"`
	OriginalAmount  decimal.Decimal `json:"original_amount" binding:"required"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
	MinimumPayment  decimal.Decimal `json:"minimum_payment"`
	DueDay          *int            `json:"due_day" binding:"omitempty,min=1,max=31"`
	OriginationDate *time.Time      `json:"origination_date"`
}

// UpdateDebtRequest represents the request payload for updating a debt.
type UpdateDebtRequest struct {
	Name           string           `json:"name" binding:"omitempty,min=1,max=255"`
	CurrentBalance *decimal.Decimal `json:"current_balance"`
	MinimumPayment *decimal.Decimal `json:"minimum_payment"`
	InterestRate   *decimal.Decimal `json:"interest_rate"`
}

// RecordPaymentRequest represents the request payload for recording a payment.
type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate time.Time       `json:"payment_date" binding:"required"`
	Notes       string          `json:"notes" binding:"max=500"`
	IsExtra     bool            `json:"is_extra"`
}

// PayoffPlanRequest represents the request payload for a payoff plan.
type PayoffPlanRequest struct {
	Strategy     services.PayoffStrategy `json:"strategy" binding:"required,payoff_strategy"`
	ExtraPayment decimal.Decimal         `json:"extra_payment"`
	DebtIDs      []uint                  `json:"debt_ids"`
}

// CreateDebt handles registering a new debt.
// @Summary     Create a debt
// @Description Register a new debt to track
// @Tags        debts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateDebtRequest true "Debt details"
// @Success     201 {object} models.Debt "Debt created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /debts [post]
func (h *DebtHandler) CreateDebt(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	debt, err := h.debtService.CreateDebt(userID, services.DebtSpec{
		Name:            req.Name,
		Description:     req.Description,
		Type:            req.Type,
		OriginalAmount:  req.OriginalAmount,
		CurrentBalance:  req.CurrentBalance,
		InterestRate:    req.InterestRate,
		MinimumPayment:  req.MinimumPayment,
		DueDay:          req.DueDay,
		OriginationDate: req.OriginationDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"debt": debt})
}

// GetDebts handles listing debts for the authenticated user.
// @Summary     Get debts
// @Description Get a paginated list of debts for the authenticated user
// @Tags        debts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       include_inactive query bool   false "Include inactive debts"
// @Param       type             query string false "Filter by debt type"
// @Param       page             query int    false "Page number (default 1)"
// @Param       page_size        query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Debt] "Paginated debts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /debts [get]
func (h *DebtHandler) GetDebts(c *gin.Context) {
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

	includeInactive, err := parseBoolQuery(c, "include_inactive")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var debtType *models.DebtType
	if v := c.Query("type"); v != "" {
		t := models.DebtType(v)
		debtType = &t
	}

	result, err := h.debtService.GetUserDebts(userID, page, includeInactive != nil && *includeInactive, debtType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDebt handles retrieving a specific debt.
// @Summary     Get debt by ID
// @Description Get a specific debt by ID
// @Tags        debts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Debt ID"
// @Success     200 {object} models.Debt "Debt details"
// @Failure     400 {object} ErrorResponse "Invalid debt ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Debt not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /debts/{id} [get]
func (h *DebtHandler) GetDebt(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	debtID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	debt, err := h.debtService.GetDebtByID(userID, debtID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"debt": debt})
}

// UpdateDebt handles updating an existing debt.
// @Summary     Update debt
// @Description Update a debt's name, balance, minimum payment or rate
// @Tags        debts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int               true "Debt ID"
// @Param       request body UpdateDebtRequest true "Updated debt details"
// @Success     200 {object} models.Debt "Updated debt"
// @Failure     400 {object} ErrorResponse "Invalid input or debt ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Debt not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /debts/{id} [put]
func (h *DebtHandler) UpdateDebt(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	debtID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	debt, err := h.debtService.UpdateDebt(userID, debtID, req.Name, req.CurrentBalance, req.MinimumPayment, req.InterestRate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"debt": debt})
}

// DeleteDebt handles deleting a debt.
// @Summary     Delete debt
// @Description Delete a debt by ID (soft delete)
// @Tags        debts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Debt ID"
// @Success     200 {object} MessageResponse "Debt deleted"
// @Failure     400 {object} ErrorResponse "Invalid debt ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Debt not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /debts/{id} [delete]
func (h *DebtHandler) DeleteDebt(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	debtID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.debtService.DeleteDebt(userID, debtID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Debt deleted successfully"})
}

// RecordPayment handles recording a payment against a debt.
// @Summary     Record debt payment
// @Description Apply a payment to a debt, splitting principal and interest
// @Tags        debts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                  true "Debt ID"
// @Param       request body RecordPaymentRequest true "Payment details"
// @Success     201 {object} models.DebtPayment "Payment recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Debt not found"
// @Failure     409 {object} ErrorResponse "Debt already paid off"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /debts/{id}/payments [post]
func (h *DebtHandler) RecordPayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	debtID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	payment, err := h.debtService.RecordPayment(userID, debtID, req.Amount, req.PaymentDate, req.Notes, req.IsExtra)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payment": payment})
}

// GetDebtSummary handles the aggregate debt summary.
// @Summary     Get debt summary
// @Description Get aggregate statistics across all debts
// @Tags        debts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.DebtSummary "Debt summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /debts/summary [get]
func (h *DebtHandler) GetDebtSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.debtService.GetDebtSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GeneratePayoffPlan handles projecting a debt payoff plan.
// @Summary     Generate payoff plan
// @Description Project debt payoff under the snowball or avalanche strategy
// @Tags        debts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PayoffPlanRequest true "Plan parameters"
// @Success     200 {object} services.PayoffPlan "Payoff plan"
// @Failure     400 {object} ErrorResponse "Invalid input or non-converging plan"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No active debts"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /debts/payoff-plan [post]
func (h *DebtHandler) GeneratePayoffPlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PayoffPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	plan, err := h.debtService.GeneratePayoffPlan(userID, req.Strategy, req.ExtraPayment, req.DebtIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}
