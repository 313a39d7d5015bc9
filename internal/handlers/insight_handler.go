package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "debtwise/internal/errors"
	"debtwise/internal/models"
	"debtwise/internal/pagination"
	"debtwise/internal/services"
)

// InsightHandler handles insight-related requests.
type InsightHandler struct {
	insightService services.InsightServicer
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(insightService services.InsightServicer) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

// UpdateInsightStatusRequest represents the request payload for a status change.
type UpdateInsightStatusRequest struct {
	Status models.InsightStatus `json:"status" binding:"required,insight_status"`
}

// GenerateInsights handles running the insight rules.
// @Summary     Generate insights
// @Description Evaluate all insight rules and return newly created insights
// @Tags        insights
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.PredictiveInsight "Newly created insights"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /insights/generate [post]
func (h *InsightHandler) GenerateInsights(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	insights, err := h.insightService.GenerateInsights(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"insights": insights, "count": len(insights)})
}

// GetInsights handles listing insights with filters.
// @Summary     Get insights
// @Description Get a filtered, paginated list of insights
// @Tags        insights
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       type      query string false "Filter by insight type"
// @Param       severity  query string false "Filter by severity (info/success/warning/critical)"
// @Param       status    query string false "Filter by status (active/acknowledged/resolved/dismissed)"
// @Param       from_date query string false "Start date (YYYY-MM-DD)"
// @Param       to_date   query string false "End date (YYYY-MM-DD)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.PredictiveInsight] "Paginated insights"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /insights [get]
func (h *InsightHandler) GetInsights(c *gin.Context) {
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

	var filter services.InsightFilter
	if v := c.Query("type"); v != "" {
		t := models.InsightType(v)
		filter.Type = &t
	}
	if v := c.Query("severity"); v != "" {
		s := models.InsightSeverity(v)
		switch s {
		case models.SeverityInfo, models.SeveritySuccess, models.SeverityWarning, models.SeverityCritical:
			filter.Severity = &s
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid severity"))
			return
		}
	}
	if v := c.Query("status"); v != "" {
		s := models.InsightStatus(v)
		switch s {
		case models.InsightStatusActive, models.InsightStatusAcknowledged, models.InsightStatusResolved, models.InsightStatusDismissed:
			filter.Status = &s
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid status"))
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

	result, err := h.insightService.GetUserInsights(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetInsight handles retrieving a specific insight.
// @Summary     Get insight by ID
// @Description Get a specific insight by ID
// @Tags        insights
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Insight ID"
// @Success     200 {object} models.PredictiveInsight "Insight details"
// @Failure     400 {object} ErrorResponse "Invalid insight ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Insight not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /insights/{id} [get]
func (h *InsightHandler) GetInsight(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	insightID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	insight, err := h.insightService.GetInsightByID(userID, insightID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"insight": insight})
}

// UpdateInsightStatus handles moving an insight through its lifecycle.
// @Summary     Update insight status
// @Description Acknowledge, dismiss or resolve an insight
// @Tags        insights
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                        true "Insight ID"
// @Param       request body UpdateInsightStatusRequest true "New status"
// @Success     200 {object} models.PredictiveInsight "Updated insight"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Insight not found"
// @Failure     409 {object} ErrorResponse "Transition not allowed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /insights/{id}/status [put]
func (h *InsightHandler) UpdateInsightStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	insightID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateInsightStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	insight, err := h.insightService.UpdateInsightStatus(userID, insightID, req.Status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"insight": insight})
}
