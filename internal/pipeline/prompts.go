package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"ainav/backend/pkg/models"
)

const classifierPrompt = `你是任务分析专家，负责判断用户任务的复杂度。

复杂度定义：
- simple：单个工具即可完成，例如"找个AI写作工具"、"推荐视频剪辑软件"
- moderate：需要2-3个工具配合，例如"制作营销视频"、"处理会议录音"
- complex：需要完整的工作流程，例如"从0到1开发网站"、"制作产品介绍视频"

可选任务类型：%s

只返回一个JSON对象，不要使用markdown代码块：
{
  "complexity": "simple|moderate|complex",
  "taskType": "任务类型",
  "keywords": ["关键词1", "关键词2"],
  "reasoning": "判断理由",
  "needsWebSearch": true
}`

const generatorPrompt = `你是AI工作流专家，根据用户任务生成可执行的详细流程。

产品库：
%s

只返回一个JSON对象，不要使用markdown代码块：
{
  "task": "任务名称",
  "complexity": "%s",
  "estimatedTime": "预估耗时，如 2-4小时",
  "workflow": [
    {
      "step": 1,
      "name": "步骤名称",
      "description": "步骤说明",
      "tools": [
        {"name": "工具名（必须来自产品库）", "url": "工具链接", "reason": "推荐理由"}
      ],
      "prompt": {
        "template": "提示词模板，用[变量]标记可替换部分",
        "example": "填好变量的示例",
        "variables": ["变量1", "变量2"]
      },
      "tips": ["操作建议1", "操作建议2"]
    }
  ],
  "mermaid": "graph LR\n  A[步骤1] --> B[步骤2]"
}

要求：
1. 工具只能从产品库中选择，URL必须与产品库一致
2. 提示词模板要具体可用
3. 每个步骤最多推荐%d个工具
4. 附带简洁的Mermaid流程图`

func classifierSystemPrompt(categories []models.Category) string {
	keys := make([]string, 0, len(categories))
	for _, c := range categories {
		keys = append(keys, c.Key)
	}
	return fmt.Sprintf(classifierPrompt, strings.Join(keys, "、"))
}

func generatorSystemPrompt(categories []models.Category, complexity models.Complexity) (string, error) {
	catalog, err := json.MarshalIndent(categories, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode catalog: %w", err)
	}
	return fmt.Sprintf(generatorPrompt, catalog, complexity, models.MaxToolsPerStep), nil
}

func generatorUserPrompt(query string, analysis models.TaskAnalysis) string {
	return fmt.Sprintf("任务：%s\n\n分析结果：\n- 复杂度：%s\n- 任务类型：%s\n- 关键词：%s\n\n请生成完整的工作流JSON。",
		query, analysis.Complexity, analysis.TaskType, strings.Join(analysis.Keywords, "、"))
}

// stripCodeFence unwraps a payload the model wrapped in a Markdown code
// block despite being asked not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
