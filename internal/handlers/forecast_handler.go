package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "debtwise/internal/errors"
	"debtwise/internal/models"
	"debtwise/internal/pagination"
	"debtwise/internal/services"
)

// defaultHorizonDays is the forecast horizon used when none is given.
const defaultHorizonDays = 30

// ForecastHandler handles forecasting and anomaly-detection requests.
type ForecastHandler struct {
	forecastService services.ForecastServicer
}

// NewForecastHandler creates a new ForecastHandler.
func NewForecastHandler(forecastService services.ForecastServicer) *ForecastHandler {
	return &ForecastHandler{forecastService: forecastService}
}

// GenerateForecastRequest represents the request payload for generating a spending forecast.
type GenerateForecastRequest struct {
	CategoryID  *uint `json:"category_id"`
	HorizonDays int   `json:"horizon_days" binding:"omitempty,min=1,max=365"`
}

// GenerateCashflowRequest represents the request payload for generating a cash-flow forecast.
type GenerateCashflowRequest struct {
	HorizonDays int `json:"horizon_days" binding:"omitempty,min=1,max=365"`
}

// AnomalyFeedbackRequest represents the request payload for anomaly feedback.
type AnomalyFeedbackRequest struct {
	Feedback models.AnomalyFeedback `json:"feedback" binding:"required,anomaly_feedback"`
	Notes    string                 `json:"notes" binding:"max=500"`
}

// GenerateSpendingForecast handles generating a spending forecast.
// @Summary     Generate spending forecast
// @Description Fit a trend over past spending and project it across the horizon
// @Tags        forecasts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body GenerateForecastRequest true "Forecast parameters"
// @Success     201 {object} models.SpendingForecast "Generated forecast"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /forecasts/spending [post]
func (h *ForecastHandler) GenerateSpendingForecast(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req GenerateForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if req.HorizonDays == 0 {
		req.HorizonDays = defaultHorizonDays
	}

	forecast, err := h.forecastService.GenerateSpendingForecast(userID, req.CategoryID, req.HorizonDays)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"forecast": forecast})
}

// GenerateCashflowForecast handles generating a cash-flow forecast.
// @Summary     Generate cash-flow forecast
// @Description Project the balance day by day across the horizon
// @Tags        forecasts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body GenerateCashflowRequest true "Forecast parameters"
// @Success     201 {object} models.CashflowForecast "Generated forecast"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /forecasts/cashflow [post]
func (h *ForecastHandler) GenerateCashflowForecast(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req GenerateCashflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if req.HorizonDays == 0 {
		req.HorizonDays = defaultHorizonDays
	}

	forecast, err := h.forecastService.GenerateCashflowForecast(userID, req.HorizonDays)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"forecast": forecast})
}

// GetSpendingForecasts handles listing stored spending forecasts.
// @Summary     Get spending forecasts
// @Description Get a paginated list of stored spending forecasts, newest first
// @Tags        forecasts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       category_id query int false "Filter by category"
// @Param       page        query int false "Page number (default 1)"
// @Param       page_size   query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.SpendingForecast] "Paginated forecasts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /forecasts/spending [get]
func (h *ForecastHandler) GetSpendingForecasts(c *gin.Context) {
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

	categoryID, err := parseUintQuery(c, "category_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.forecastService.GetSpendingForecasts(userID, page, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCashflowForecasts handles listing stored cash-flow forecasts.
// @Summary     Get cash-flow forecasts
// @Description Get a paginated list of stored cash-flow forecasts, newest first
// @Tags        forecasts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.CashflowForecast] "Paginated forecasts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /forecasts/cashflow [get]
func (h *ForecastHandler) GetCashflowForecasts(c *gin.Context) {
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

	result, err := h.forecastService.GetCashflowForecasts(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DetectAnomalies handles running anomaly detection.
// @Summary     Detect anomalies
// @Description Scan recent transactions for statistical outliers within their categories
// @Tags        anomalies
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.SpendingAnomaly "Newly flagged anomalies"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /anomalies/detect [post]
func (h *ForecastHandler) DetectAnomalies(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	anomalies, err := h.forecastService.DetectAnomalies(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if anomalies == nil {
		anomalies = []models.SpendingAnomaly{}
	}

	c.JSON(http.StatusOK, gin.H{"anomalies": anomalies, "count": len(anomalies)})
}

// GetAnomalies handles listing flagged anomalies.
// @Summary     Get anomalies
// @Description Get a filtered, paginated list of flagged anomalies
// @Tags        anomalies
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       feedback  query string false "Filter by feedback (unconfirmed/confirmed/dismissed)"
// @Param       from_date query string false "Start date (YYYY-MM-DD)"
// @Param       to_date   query string false "End date (YYYY-MM-DD)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.SpendingAnomaly] "Paginated anomalies"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /anomalies [get]
func (h *ForecastHandler) GetAnomalies(c *gin.Context) {
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

	var filter services.AnomalyFilter
	if v := c.Query("feedback"); v != "" {
		f := models.AnomalyFeedback(v)
		switch f {
		case models.AnomalyUnconfirmed, models.AnomalyConfirmed, models.AnomalyDismissed:
			filter.Feedback = &f
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "feedback must be unconfirmed, confirmed or dismissed"))
			return
		}
	}
	if filter.FromDate, err = parseDateQuery(c, "from_date"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.ToDate, err = parseDateQuery(c, "to_date"); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.forecastService.GetAnomalies(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitAnomalyFeedback handles recording the user's verdict on an anomaly.
// @Summary     Submit anomaly feedback
// @Description Confirm or dismiss a flagged anomaly
// @Tags        anomalies
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                    true "Anomaly ID"
// @Param       request body AnomalyFeedbackRequest true "Feedback"
// @Success     200 {object} models.SpendingAnomaly "Updated anomaly"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Anomaly not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /anomalies/{id}/feedback [post]
func (h *ForecastHandler) SubmitAnomalyFeedback(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	anomalyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AnomalyFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	anomaly, err := h.forecastService.SubmitAnomalyFeedback(userID, anomalyID, req.Feedback, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"anomaly": anomaly})
}
