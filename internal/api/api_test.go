package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ainav/backend/internal/auth"
	"ainav/backend/internal/config"
	"ainav/backend/internal/logging"
	"ainav/backend/internal/repository"
	"ainav/backend/pkg/models"
)

// MockRecommender satisfies Recommender
type MockRecommender struct {
	mock.Mock
}

func (m *MockRecommender) Recommend(ctx context.Context, query string) (models.Response, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Response), args.Error(1)
}

func newTestEcho(t *testing.T, rec Recommender, human echo.MiddlewareFunc) *echo.Echo {
	t.Helper()
	store, err := repository.Load()
	require.NoError(t, err)

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(logging.Nop())
	RegisterHandlers(e, NewHandler(), NewServer(rec, store, store), human, "CF-Turnstile-Token")
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRecommend_Modes(t *testing.T) {
	tests := []struct {
		name string
		resp models.Response
		mode string
	}{
		{"simple", &models.SimpleResponse{
			SimpleRecommendation: models.SimpleRecommendation{Query: "视频", Recommendations: []models.ToolRecord{{Name: "剪映", URL: "https://capcut.cn"}}},
			Mode:                 models.ModeSimple,
			Timestamp:            1,
		}, "simple"},
		{"workflow", &models.WorkflowResponse{
			Workflow: models.Workflow{Task: "t", Steps: []models.WorkflowStep{{Step: 1}}, Source: models.SourceTemplate},
			Mode:     models.ModeWorkflow,
		}, "workflow"},
		{"fallback", &models.FallbackResponse{
			Query:           "默认推荐",
			Recommendations: []models.ToolRecord{{Name: "豆包", URL: "https://doubao.com"}},
			Error:           "workflow generation failed after 3 attempts",
			Mode:            models.ModeFallback,
		}, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockRecommender)
			m.On("Recommend", mock.Anything, "推荐视频工具").Return(tt.resp, nil)

			rec := do(newTestEcho(t, m, nil), http.MethodPost, "/api/recommend", `{"query":"推荐视频工具"}`)

			assert.Equal(t, http.StatusOK, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.mode, body["mode"])
			m.AssertExpectations(t)
		})
	}
}

func TestRecommend_WorkflowDocumentShape(t *testing.T) {
	m := new(MockRecommender)
	m.On("Recommend", mock.Anything, mock.Anything).Return(&models.WorkflowResponse{
		Workflow:   models.Workflow{Task: "t", Steps: []models.WorkflowStep{{Step: 1, Name: "a"}}, Source: models.SourceTemplate},
		ScenarioID: "video_production",
		MatchScore: 0.75,
		Mode:       models.ModeWorkflow,
	}, nil)

	rec := do(newTestEcho(t, m, nil), http.MethodPost, "/api/recommend", `{"query":"制作视频"}`)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "template", body["source"])
	assert.Equal(t, "video_production", body["scenarioId"])
	assert.Len(t, body["workflow"], 1)
	assert.Contains(t, body, "webSearch")
	assert.Nil(t, body["webSearch"])
}

func TestRecommend_BadRequests(t *testing.T) {
	m := new(MockRecommender)
	m.On("Recommend", mock.Anything, mock.Anything).Return(nil, models.ErrEmptyQuery)
	e := newTestEcho(t, m, nil)

	for _, body := range []string{`{"query":"   "}`, `{}`, `not json`} {
		rec := do(e, http.MethodPost, "/api/recommend", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.Equal(t, "application/problem+json", rec.Header().Get(echo.HeaderContentType))
		var problem models.ProblemDetails
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
		assert.Equal(t, http.StatusBadRequest, problem.Status)
		assert.Equal(t, "/api/recommend", problem.Instance)
	}
	m.AssertNumberOfCalls(t, "Recommend", 2)
}

func TestRecommend_VerificationRequired(t *testing.T) {
	cfg := &config.Config{}
	cfg.Verification.Required = true
	cfg.Verification.Header = "CF-Turnstile-Token"
	human := echo.WrapMiddleware(auth.New(cfg, nil, nil).RequireHuman)
	m := new(MockRecommender)

	rec := do(newTestEcho(t, m, human), http.MethodPost, "/api/recommend", `{"query":"推荐视频工具"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	m.AssertNotCalled(t, "Recommend", mock.Anything, mock.Anything)
}

func TestListScenarios_Idempotent(t *testing.T) {
	e := newTestEcho(t, new(MockRecommender), nil)

	first := do(e, http.MethodGet, "/api/scenarios", "")
	second := do(e, http.MethodGet, "/api/scenarios", "")

	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())

	var list ScenarioList
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &list))
	assert.Equal(t, 5, list.Total)
	assert.Len(t, list.Scenarios, 5)
	assert.Equal(t, "video_production", list.Scenarios[0].ID)
	assert.NotEmpty(t, list.Scenarios[0].Keywords)
	assert.NotEmpty(t, list.Message)
}

func TestListCases(t *testing.T) {
	rec := do(newTestEcho(t, new(MockRecommender), nil), http.MethodGet, "/api/cases", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Cases []models.CaseRecord `json:"cases"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Cases, 5)
}

func TestIndexAndHealth(t *testing.T) {
	e := newTestEcho(t, new(MockRecommender), nil)

	rec := do(e, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var health models.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, Version, health.Version)

	rec = do(e, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	e := newTestEcho(t, new(MockRecommender), nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/recommend", nil)
	req.Header.Set(echo.HeaderOrigin, "https://ainav.example")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowHeaders), "CF-Turnstile-Token")
}

func TestUnknownRouteIsProblem(t *testing.T) {
	rec := do(newTestEcho(t, new(MockRecommender), nil), http.MethodGet, "/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get(echo.HeaderContentType))
}
