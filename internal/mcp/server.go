package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"ainav/backend/internal/repository"
	"ainav/backend/pkg/models"
)

// Recommender runs the recommendation pipeline.
type Recommender interface {
	Recommend(ctx context.Context, query string) (models.Response, error)
}

type Server struct {
	mcpServer *server.MCPServer
	pipeline  Recommender
	scenarios repository.ScenarioStore
	cases     repository.CaseStore
}

func NewServer(pipeline Recommender, scenarios repository.ScenarioStore, cases repository.CaseStore, version string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"AI Tool Navigator",
			version,
			server.WithToolCapabilities(true),
		),
		pipeline:  pipeline,
		scenarios: scenarios,
		cases:     cases,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"recommend",
			mcp.WithDescription("Recommend AI tools or a step-by-step workflow for a task description"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Free-text description of the task")),
		),
		s.handleRecommend,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_scenarios",
			mcp.WithDescription("List the curated workflow scenarios"),
		),
		s.handleListScenarios,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_cases",
			mcp.WithDescription("List curated before/after showcase examples"),
		),
		s.handleListCases,
	)
}

func (s *Server) handleRecommend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	query, ok := args["query"].(string)
	if !ok {
		return mcp.NewToolResultError("Missing required parameter: query"), nil
	}

	resp, err := s.pipeline.Recommend(ctx, query)
	if errors.Is(err, models.ErrEmptyQuery) {
		return mcp.NewToolResultError("Missing required parameter: query"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to recommend: %v", err)), nil
	}

	return jsonResult(resp)
}

func (s *Server) handleListScenarios(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templates := s.scenarios.Scenarios()
	summaries := make([]models.ScenarioSummary, 0, len(templates))
	for _, tpl := range templates {
		summaries = append(summaries, tpl.Summary())
	}
	return jsonResult(summaries)
}

func (s *Server) handleListCases(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.cases.Cases())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
