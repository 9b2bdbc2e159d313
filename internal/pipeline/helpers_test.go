package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ainav/backend/internal/logging"
	"ainav/backend/internal/repository"
	"ainav/backend/internal/services"
	"ainav/backend/pkg/models"
)

const (
	classifierModel = "Qwen/Qwen2.5-7B-Instruct"
	moderateModel   = "THUDM/glm-4-9b-chat"
	complexModel    = "deepseek-ai/DeepSeek-V3"
)

// MockLLM satisfies services.LLMClient
type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Complete(ctx context.Context, messages []services.Message, model string, opts services.CompletionOptions) (string, error) {
	args := m.Called(ctx, messages, model, opts)
	return args.String(0), args.Error(1)
}

// MockSearch satisfies services.SearchClient
type MockSearch struct {
	mock.Mock
}

func (m *MockSearch) Search(ctx context.Context, query string) (*services.SearchResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SearchResult), args.Error(1)
}

// stubScenarios serves a fixed template list.
type stubScenarios []models.ScenarioTemplate

func (s stubScenarios) Scenarios() []models.ScenarioTemplate { return s }

func loadStore(t *testing.T) *repository.StaticStore {
	t.Helper()
	store, err := repository.Load()
	require.NoError(t, err)
	return store
}

func noSleep(calls *[]time.Duration) SleepFunc {
	return func(_ context.Context, d time.Duration) error {
		if calls != nil {
			*calls = append(*calls, d)
		}
		return nil
	}
}

func modelIs(id string) any {
	return mock.MatchedBy(func(model string) bool { return model == id })
}

func nop() *logging.Logger { return logging.Nop() }

const validWorkflowJSON = `{
  "task": "搭建个人博客",
  "complexity": "moderate",
  "estimatedTime": "2-4小时",
  "workflow": [
    {"step": 1, "name": "搭建框架", "tools": [{"name": "Cursor", "url": "https://cursor.sh", "reason": "生成代码"}],
     "prompt": {"template": "用[框架]生成博客", "variables": ["框架"]}, "tips": ["先确定技术栈"]},
    {"step": 2, "name": "撰写文章", "tools": [{"name": "ChatGPT", "url": "https://chat.openai.com", "reason": "写作"}],
     "prompt": {"template": "写一篇关于[主题]的文章", "variables": ["主题"]}, "tips": []}
  ],
  "mermaid": "graph LR\n  A[搭建框架] --> B[撰写文章]"
}`
