package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"ainav/backend/internal/repository"
	"ainav/backend/pkg/models"
)

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Recommender runs the recommendation pipeline.
type Recommender interface {
	Recommend(ctx context.Context, query string) (models.Response, error)
}

// Server holds the dependencies for the API server.
type Server struct {
	Pipeline  Recommender
	Scenarios repository.ScenarioStore
	Cases     repository.CaseStore
}

// NewServer creates a new Server.
func NewServer(pipeline Recommender, scenarios repository.ScenarioStore, cases repository.CaseStore) *Server {
	return &Server{Pipeline: pipeline, Scenarios: scenarios, Cases: cases}
}

type recommendRequest struct {
	Query string `json:"query"`
}

// Recommend answers a free-text task description. Degraded pipeline results
// are still a 200.
// (POST /api/recommend)
func (s *Server) Recommend(c echo.Context) error {
	ctx := c.Request().Context()

	var req recommendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	resp, err := s.Pipeline.Recommend(ctx, req.Query)
	if errors.Is(err, models.ErrEmptyQuery) {
		return echo.NewHTTPError(http.StatusBadRequest, "请输入任务描述")
	}
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	return c.JSON(http.StatusOK, resp)
}

// ListCases returns the curated showcase examples
// (GET /api/cases)
func (s *Server) ListCases(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"cases": s.Cases.Cases(),
	})
}

// ScenarioList is the GET /api/scenarios document.
type ScenarioList struct {
	Scenarios []models.ScenarioSummary `json:"scenarios"`
	Total     int                      `json:"total"`
	Message   string                   `json:"message"`
}

// ListScenarios returns the scenario templates without their steps
// (GET /api/scenarios)
func (s *Server) ListScenarios(c echo.Context) error {
	return c.JSON(http.StatusOK, ScenarioSummaries(s.Scenarios))
}

// ScenarioSummaries lists the templates of store in registration order.
func ScenarioSummaries(store repository.ScenarioStore) ScenarioList {
	templates := store.Scenarios()
	out := ScenarioList{Scenarios: make([]models.ScenarioSummary, 0, len(templates))}
	for _, tpl := range templates {
		out.Scenarios = append(out.Scenarios, tpl.Summary())
	}
	out.Total = len(out.Scenarios)
	out.Message = fmt.Sprintf("共 %d 个预设场景", out.Total)
	return out
}
