package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"studytest_backend/internal/config"
	"studytest_backend/internal/model"
	"studytest_backend/internal/parser"
	"studytest_backend/internal/util"
	"studytest_backend/pkg/logger"
	"studytest_backend/pkg/monitoring"
	"studytest_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ImportRequest 批量导入请求
// 支持 JSON 和 multipart 表单，表单上传时 Text 来自文件
type ImportRequest struct {
	Name                    string   `json:"name" form:"name" binding:"required"`
	Text                    string   `json:"text" form:"text"`
	DurationMinutes         int      `json:"durationMinutes" form:"durationMinutes" binding:"required,min=1,max=1440"`
	MarksPerQuestion        *float64 `json:"marksPerQuestion" form:"marksPerQuestion"`
	NegativeMarkingPerWrong float64  `json:"negativeMarkingPerWrong" form:"negativeMarkingPerWrong"`
	Language                string   `json:"language" form:"language"`
}

// ImportResult 导入结果。Report 在 AI 回退时仍保留本地解析报告。
type ImportResult struct {
	Test       *model.Test   `json:"test"`
	Source     string        `json:"source"`
	Report     parser.Result `json:"report"`
	ArchiveKey string        `json:"archiveKey,omitempty"`
}

// ImportError 解析结果为空且无法回退时返回，携带分段报告
type ImportError struct {
	Report parser.Result
	Cause  error
}

func (e *ImportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", util.ErrNoQuestionsParsed, e.Cause)
	}
	return util.ErrNoQuestionsParsed.Error()
}

func (e *ImportError) Unwrap() error {
	return util.ErrNoQuestionsParsed
}

// importSettings 可热更新的导入配置，整体替换
type importSettings struct {
	parser        *parser.Parser
	aiFallback    bool
	archiveSource bool
}

type ImportService struct {
	Tests    *TestService
	AI       QuestionGenerator
	Archiver ImportArchiver

	settings atomic.Pointer[importSettings]
}

func NewImportService(tests *TestService, ai QuestionGenerator, archiver ImportArchiver, cfg config.ParserConfig) *ImportService {
	s := &ImportService{Tests: tests, AI: ai, Archiver: archiver}
	s.ApplyConfig(cfg)
	return s
}

// ApplyConfig 配置热更新回调
func (s *ImportService) ApplyConfig(cfg config.ParserConfig) {
	policy := parser.PolicyFromString(cfg.MissingAnswerPolicy)
	prev := s.settings.Swap(&importSettings{
		parser:        parser.New(policy),
		aiFallback:    cfg.AIFallback,
		archiveSource: cfg.ArchiveSource,
	})
	if prev != nil && prev.parser.Policy() != policy {
		logger.Log.Info("missing answer policy changed",
			zap.String("from", prev.parser.Policy().String()),
			zap.String("to", policy.String()))
	}
}

func (s *ImportService) Policy() parser.MissingAnswerPolicy {
	return s.settings.Load().parser.Policy()
}

// Preview 只解析不保存
func (s *ImportService) Preview(ctx context.Context, text string) (parser.Result, error) {
	if len(text) > util.MaxImportBytes {
		return parser.Result{}, fmt.Errorf("%w: import text exceeds %d bytes", util.ErrInvalidInput, util.MaxImportBytes)
	}
	return s.parse(ctx, s.settings.Load().parser, text), nil
}

func (s *ImportService) parse(ctx context.Context, p *parser.Parser, text string) parser.Result {
	_, span := tracing.StartSpan(ctx, "import.parse", attribute.Int("import.bytes", len(text)))
	defer span.End()

	start := time.Now()
	res := p.ParseDetailed(text)
	monitoring.ParseDuration.Observe(time.Since(start).Seconds())

	span.SetAttributes(
		attribute.Int("import.questions", len(res.Questions)),
		attribute.Int("import.dropped", res.Dropped()),
		attribute.String("import.convention", res.Convention),
	)
	return res
}

// Import 解析文本并保存为试卷。解析为空时按配置回退到 AI 生成，否则返回 *ImportError。
func (s *ImportService) Import(ctx context.Context, req *ImportRequest) (*ImportResult, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", util.ErrInvalidInput)
	}
	if len(req.Text) > util.MaxImportBytes {
		return nil, fmt.Errorf("%w: import text exceeds %d bytes", util.ErrInvalidInput, util.MaxImportBytes)
	}

	settings := s.settings.Load()
	report := s.parse(ctx, settings.parser, req.Text)
	for _, seg := range report.Segments {
		if !seg.Accepted {
			monitoring.DroppedSegments.WithLabelValues(string(seg.Reason)).Inc()
		}
	}

	result := &ImportResult{Report: report, Source: model.SourceImport}
	questions := report.Questions

	if len(questions) == 0 {
		if !settings.aiFallback || s.AI == nil || !s.AI.Enabled() {
			monitoring.ImportsTotal.WithLabelValues("empty").Inc()
			return nil, &ImportError{Report: report}
		}

		logger.Log.Info("bulk import parsed nothing, falling back to ai generation",
			zap.Int("segments", len(report.Segments)))
		generated, err := s.AI.GenerateQuestions(ctx, GenerateRequest{Topic: req.Text, Language: req.Language})
		if err != nil {
			monitoring.AIRequests.WithLabelValues("error").Inc()
			monitoring.ImportsTotal.WithLabelValues("failed").Inc()
			return nil, &ImportError{Report: report, Cause: err}
		}
		monitoring.AIRequests.WithLabelValues("ok").Inc()
		questions = generated
		result.Source = model.SourceAI
	}

	if settings.archiveSource && s.Archiver != nil {
		key, err := s.Archiver.ArchiveImport(ctx, req.Text)
		if err != nil {
			// 归档失败不影响导入
			logger.Log.Warn("failed to archive import text", zap.Error(err))
		} else {
			result.ArchiveKey = key
		}
	}

	test := &model.Test{
		Name:                    strings.TrimSpace(req.Name),
		DurationMinutes:         req.DurationMinutes,
		MarksPerQuestion:        1,
		NegativeMarkingPerWrong: req.NegativeMarkingPerWrong,
		Language:                req.Language,
		Source:                  result.Source,
		Questions:               questions,
	}
	if req.MarksPerQuestion != nil {
		test.MarksPerQuestion = *req.MarksPerQuestion
	}

	if err := s.Tests.Save(test); err != nil {
		monitoring.ImportsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	if result.Source == model.SourceAI {
		monitoring.ImportsTotal.WithLabelValues("ai_fallback").Inc()
	} else {
		monitoring.ImportsTotal.WithLabelValues("parsed").Inc()
		monitoring.ImportedQuestions.Add(float64(len(questions)))
	}

	logger.Log.Info("bulk import saved",
		zap.String("test", test.ID),
		zap.String("source", result.Source),
		zap.Int("questions", len(test.Questions)),
		zap.Int("dropped", report.Dropped()))

	result.Test = test
	return result, nil
}

// Archived 读取归档的导入原文
func (s *ImportService) Archived(ctx context.Context, key string) (string, error) {
	if s.Archiver == nil {
		return "", fmt.Errorf("%w: import archive is not configured", util.ErrArchiveNotFound)
	}
	text, err := s.Archiver.ReadImport(ctx, key)
	if err != nil {
		if errors.Is(err, util.ErrInvalidInput) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", util.ErrArchiveNotFound, err)
	}
	return text, nil
}

// GenerateTestRequest AI 直接出题并保存为试卷
type GenerateTestRequest struct {
	GenerateRequest
	Name                    string   `json:"name" binding:"required"`
	DurationMinutes         int      `json:"durationMinutes" binding:"required,min=1,max=1440"`
	MarksPerQuestion        *float64 `json:"marksPerQuestion"`
	NegativeMarkingPerWrong float64  `json:"negativeMarkingPerWrong"`
}

func (s *ImportService) Generate(ctx context.Context, req *GenerateTestRequest) (*model.Test, error) {
	if s.AI == nil || !s.AI.Enabled() {
		return nil, util.ErrAIDisabled
	}

	ctx, span := tracing.StartSpan(ctx, "ai.generate", attribute.Int("ai.count", req.Count))
	defer span.End()

	questions, err := s.AI.GenerateQuestions(ctx, req.GenerateRequest)
	if err != nil {
		monitoring.AIRequests.WithLabelValues("error").Inc()
		tracing.RecordError(span, err)
		return nil, err
	}
	monitoring.AIRequests.WithLabelValues("ok").Inc()

	test := &model.Test{
		Name:                    strings.TrimSpace(req.Name),
		DurationMinutes:         req.DurationMinutes,
		MarksPerQuestion:        1,
		NegativeMarkingPerWrong: req.NegativeMarkingPerWrong,
		Language:                req.Language,
		Source:                  model.SourceAI,
		Questions:               questions,
	}
	if req.MarksPerQuestion != nil {
		test.MarksPerQuestion = *req.MarksPerQuestion
	}
	if err := s.Tests.Save(test); err != nil {
		return nil, err
	}
	return test, nil
}
