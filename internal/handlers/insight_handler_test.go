package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "debtwise/internal/errors"
	"debtwise/internal/models"
	"debtwise/internal/pagination"
	"debtwise/internal/services"
)

// --- mock insight service ---

type mockInsightService struct {
	generateInsightsFn    func(userID uint) ([]models.PredictiveInsight, error)
	getUserInsightsFn     func(userID uint, page pagination.PageRequest, filter services.InsightFilter) (*pagination.PageResponse[models.PredictiveInsight], error)
	getInsightByIDFn      func(userID, insightID uint) (*models.PredictiveInsight, error)
	updateInsightStatusFn func(userID, insightID uint, status models.InsightStatus) (*models.PredictiveInsight, error)
}

func (m *mockInsightService) GenerateInsights(userID uint) ([]models.PredictiveInsight, error) {
	if m.generateInsightsFn != nil {
		return m.generateInsightsFn(userID)
	}
	return nil, nil
}

func (m *mockInsightService) GetUserInsights(userID uint, page pagination.PageRequest, filter services.InsightFilter) (*pagination.PageResponse[models.PredictiveInsight], error) {
	if m.getUserInsightsFn != nil {
		return m.getUserInsightsFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.PredictiveInsight{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockInsightService) GetInsightByID(userID, insightID uint) (*models.PredictiveInsight, error) {
	if m.getInsightByIDFn != nil {
		return m.getInsightByIDFn(userID, insightID)
	}
	return &models.PredictiveInsight{}, nil
}

func (m *mockInsightService) UpdateInsightStatus(userID, insightID uint, status models.InsightStatus) (*models.PredictiveInsight, error) {
	if m.updateInsightStatusFn != nil {
		return m.updateInsightStatusFn(userID, insightID, status)
	}
	return &models.PredictiveInsight{}, nil
}

var _ services.InsightServicer = (*mockInsightService)(nil)

func setupInsightRouter(handler *InsightHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.POST("/insights/generate", handler.GenerateInsights)
	auth.GET("/insights", handler.GetInsights)
	auth.GET("/insights/:id", handler.GetInsight)
	auth.PUT("/insights/:id/status", handler.UpdateInsightStatus)
	return r
}

func TestInsightHandler_GenerateInsights(t *testing.T) {
	t.Run("returns 200 with new insights and count", func(t *testing.T) {
		savings := decimal.NewFromInt(45)
		svc := &mockInsightService{
			generateInsightsFn: func(_ uint) ([]models.PredictiveInsight, error) {
				return []models.PredictiveInsight{
					{
						Base:             models.Base{ID: 1},
						Type:             models.InsightTypeBudgetProjection,
						Title:            "Groceries budget at risk",
						Severity:         models.SeverityWarning,
						Status:           models.InsightStatusActive,
						PotentialSavings: &savings,
					},
				}, nil
			},
		}
		handler := NewInsightHandler(svc)
		r := setupInsightRouter(handler)

		rec := doRequest(r, "POST", "/insights/generate", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["count"].(float64) != 1 {
			t.Errorf("expected count=1, got %v", result["count"])
		}
		insights := result["insights"].([]interface{})
		first := insights[0].(map[string]interface{})
		if first["severity"] != "warning" {
			t.Errorf("expected warning, got %v", first["severity"])
		}
		if first["potential_savings"] != "45" {
			t.Errorf("expected potential_savings=45, got %v", first["potential_savings"])
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewInsightHandler(&mockInsightService{})
		r := gin.New()
		r.POST("/insights/generate", handler.GenerateInsights)

		rec := doRequest(r, "POST", "/insights/generate", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestInsightHandler_GetInsights(t *testing.T) {
	t.Run("passes filters to service", func(t *testing.T) {
		var captured services.InsightFilter
		svc := &mockInsightService{
			getUserInsightsFn: func(_ uint, _ pagination.PageRequest, filter services.InsightFilter) (*pagination.PageResponse[models.PredictiveInsight], error) {
				captured = filter
				resp := pagination.NewPageResponse([]models.PredictiveInsight{}, 1, 20, 0)
				return &resp, nil
			},
		}
		handler := NewInsightHandler(svc)
		r := setupInsightRouter(handler)

		doRequest(r, "GET", "/insights?severity=critical&status=active&type=budget_projection", "")

		if captured.Severity == nil || *captured.Severity != models.SeverityCritical {
			t.Error("expected severity=critical to be passed")
		}
		if captured.Status == nil || *captured.Status != models.InsightStatusActive {
			t.Error("expected status=active to be passed")
		}
		if captured.Type == nil || *captured.Type != models.InsightTypeBudgetProjection {
			t.Error("expected type=budget_projection to be passed")
		}
	})

	t.Run("returns 400 on invalid severity", func(t *testing.T) {
		handler := NewInsightHandler(&mockInsightService{})
		r := setupInsightRouter(handler)

		rec := doRequest(r, "GET", "/insights?severity=urgent", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on invalid status", func(t *testing.T) {
		handler := NewInsightHandler(&mockInsightService{})
		r := setupInsightRouter(handler)

		rec := doRequest(r, "GET", "/insights?status=archived", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on bad date filter", func(t *testing.T) {
		handler := NewInsightHandler(&mockInsightService{})
		r := setupInsightRouter(handler)

		rec := doRequest(r, "GET", "/insights?from_date=01-01-2025", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestInsightHandler_GetInsight(t *testing.T) {
	t.Run("returns 200 with insight", func(t *testing.T) {
		svc := &mockInsightService{
			getInsightByIDFn: func(_ uint, insightID uint) (*models.PredictiveInsight, error) {
				return &models.PredictiveInsight{
					Base:   models.Base{ID: insightID},
					Title:  "Spending trending up",
					Status: models.InsightStatusActive,
				}, nil
			},
		}
		handler := NewInsightHandler(svc)
		r := setupInsightRouter(handler)

		rec := doRequest(r, "GET", "/insights/4", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		insight := result["insight"].(map[string]interface{})
		if insight["title"] != "Spending trending up" {
			t.Errorf("unexpected title: %v", insight["title"])
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockInsightService{
			getInsightByIDFn: func(_, _ uint) (*models.PredictiveInsight, error) {
				return nil, apperrors.ErrInsightNotFound
			},
		}
		handler := NewInsightHandler(svc)
		r := setupInsightRouter(handler)

		rec := doRequest(r, "GET", "/insights/999", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INSIGHT_NOT_FOUND")
	})

	t.Run("returns 400 on invalid ID", func(t *testing.T) {
		handler := NewInsightHandler(&mockInsightService{})
		r := setupInsightRouter(handler)

		rec := doRequest(r, "GET", "/insights/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestInsightHandler_UpdateInsightStatus(t *testing.T) {
	t.Run("returns 200 on valid transition", func(t *testing.T) {
		svc := &mockInsightService{
			updateInsightStatusFn: func(_, insightID uint, status models.InsightStatus) (*models.PredictiveInsight, error) {
				return &models.PredictiveInsight{
					Base:   models.Base{ID: insightID},
					Status: status,
				}, nil
			},
		}
		handler := NewInsightHandler(svc)
		r := setupInsightRouter(handler)

		rec := doRequest(r, "PUT", "/insights/1/status", `{"status":"acknowledged"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		insight := result["insight"].(map[string]interface{})
		if insight["status"] != "acknowledged" {
			t.Errorf("expected acknowledged, got %v", insight["status"])
		}
	})

	t.Run("returns 409 on disallowed transition", func(t *testing.T) {
		svc := &mockInsightService{
			updateInsightStatusFn: func(_, _ uint, _ models.InsightStatus) (*models.PredictiveInsight, error) {
				return nil, apperrors.ErrInvalidInsightTransition
			},
		}
		handler := NewInsightHandler(svc)
		r := setupInsightRouter(handler)

		rec := doRequest(r, "PUT", "/insights/1/status", `{"status":"active"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INSIGHT_TRANSITION")
	})

	t.Run("returns 400 on unknown status value", func(t *testing.T) {
		handler := NewInsightHandler(&mockInsightService{})
		r := setupInsightRouter(handler)

		rec := doRequest(r, "PUT", "/insights/1/status", `{"status":"archived"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when insight not found", func(t *testing.T) {
		svc := &mockInsightService{
			updateInsightStatusFn: func(_, _ uint, _ models.InsightStatus) (*models.PredictiveInsight, error) {
				return nil, apperrors.ErrInsightNotFound
			},
		}
		handler := NewInsightHandler(svc)
		r := setupInsightRouter(handler)

		rec := doRequest(r, "PUT", "/insights/999/status", `{"status":"dismissed"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
