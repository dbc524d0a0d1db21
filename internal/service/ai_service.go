package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"studytest_backend/internal/config"
	"studytest_backend/internal/model"
	"studytest_backend/internal/util"
	"studytest_backend/pkg/logger"

	"go.uber.org/zap"
)

type AIService struct {
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *AIService) Enabled() bool {
	return s.config.Enabled && s.config.BaseURL != ""
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model       string          `json:"model"`
	Messages    []AIChatMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateRequest AI 出题参数
type GenerateRequest struct {
	// Topic 主题，或者解析失败的原始文本
	Topic    string `json:"topic" binding:"required"`
	Count    int    `json:"count"`
	Language string `json:"language"`
}

const generateSystemPrompt = "You write multiple-choice questions for exam practice. " +
	"Reply with a JSON array only, no prose and no markdown. Each element has the keys " +
	`"stem" (string), "options" (array of exactly 4 strings), "correctIndex" (0-3), ` +
	`"explanation", "subject" and "topic".`

// GenerateQuestions 调用 OpenAI 兼容接口生成题目，结果逐题规范化，不合格的题目丢弃
func (s *AIService) GenerateQuestions(ctx context.Context, req GenerateRequest) ([]model.Question, error) {
	if !s.Enabled() {
		return nil, util.ErrAIDisabled
	}
	if req.Count <= 0 {
		req.Count = 10
	}
	if req.Language == "" {
		req.Language = "English"
	}

	prompt := fmt.Sprintf("Write %d questions in %s based on the following material or topic:\n\n%s",
		req.Count, req.Language, req.Topic)

	content, err := s.Chat(ctx, generateSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	raw, err := decodeQuestions(content)
	if err != nil {
		return nil, err
	}

	questions := make([]model.Question, 0, len(raw))
	for i, q := range raw {
		q.Normalize()
		if err := q.Validate(); err != nil {
			logger.Log.Debug("discarding generated question", zap.Int("index", i), zap.Error(err))
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, util.ErrNoQuestionsParsed
	}
	return questions, nil
}

// decodeQuestions 兼容模型把 JSON 包在 ``` 代码块里的情况
func decodeQuestions(content string) ([]model.Question, error) {
	content = strings.TrimSpace(content)
	if start := strings.Index(content, "["); start >= 0 {
		if end := strings.LastIndex(content, "]"); end > start {
			content = content[start : end+1]
		}
	}

	var questions []model.Question
	if err := json.Unmarshal([]byte(content), &questions); err != nil {
		return nil, fmt.Errorf("decode ai questions: %w", err)
	}
	return questions, nil
}

// Chat 单轮对话，返回第一个候选的内容
func (s *AIService) Chat(ctx context.Context, system, prompt string) (string, error) {
	reqBody := ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []AIChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(s.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}

	if len(result.Choices) > 0 {
		return result.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("AI returned no choices")
}
