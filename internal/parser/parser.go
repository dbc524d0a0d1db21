package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"studytest_backend/internal/config"
	"studytest_backend/internal/model"
	"studytest_backend/pkg/logger"

	"go.uber.org/zap"
)

// MissingAnswerPolicy 分段中找不到答案声明时的处理策略
type MissingAnswerPolicy int

const (
	// DefaultFirst 兼容旧行为：默认第一个选项为正确答案
	DefaultFirst MissingAnswerPolicy = iota
	// Reject 丢弃没有答案声明的分段
	Reject
)

func (p MissingAnswerPolicy) String() string {
	if p == Reject {
		return config.PolicyReject
	}
	return config.PolicyDefaultFirst
}

// PolicyFromString 未知取值按 DefaultFirst 处理
func PolicyFromString(s string) MissingAnswerPolicy {
	if strings.EqualFold(strings.TrimSpace(s), config.PolicyReject) {
		return Reject
	}
	return DefaultFirst
}

const minStemLength = 5

type DropReason string

const (
	ReasonStemTooShort  DropReason = "stem_too_short"
	ReasonTooFewOptions DropReason = "too_few_options"
	ReasonMissingAnswer DropReason = "missing_answer"
	ReasonExtractFailed DropReason = "extract_failed"
)

// SegmentReport 单个分段的处理结果
type SegmentReport struct {
	Index       int        `json:"index"`
	Preview     string     `json:"preview"`
	Accepted    bool       `json:"accepted"`
	Reason      DropReason `json:"reason,omitempty"`
	OptionStyle string     `json:"optionStyle,omitempty"`
	AnswerFound bool       `json:"answerFound"`
}

type Result struct {
	Questions  []model.Question `json:"questions"`
	Segments   []SegmentReport  `json:"segments"`
	Convention string           `json:"convention"`
}

// Dropped 被丢弃的分段数
func (r Result) Dropped() int {
	n := 0
	for _, s := range r.Segments {
		if !s.Accepted {
			n++
		}
	}
	return n
}

// Parser 纯文本批量导入解析器。同一输入总是得到同样的有序结果，不会 panic。
type Parser struct {
	policy MissingAnswerPolicy
}

func New(policy MissingAnswerPolicy) *Parser {
	return &Parser{policy: policy}
}

func (p *Parser) Policy() MissingAnswerPolicy {
	return p.policy
}

// Parse 返回解析出的题目，全部失败时返回空切片
func (p *Parser) Parse(text string) []model.Question {
	return p.ParseDetailed(text).Questions
}

// ParseDetailed 依次尝试混合题号切分和各单一题号约定，取有效题目最多的一种；
// 数量相同时保留靠前的候选。
func (p *Parser) ParseDetailed(text string) Result {
	best := Result{Questions: []model.Question{}, Segments: []SegmentReport{}, Convention: ConventionAny.String()}
	if strings.TrimSpace(text) == "" {
		return best
	}

	candidates := append([]Convention{ConventionAny}, SingleConventions...)
	for i, conv := range candidates {
		res := p.parseWith(text, conv)
		if i == 0 || len(res.Questions) > len(best.Questions) {
			best = res
		}
	}

	for _, s := range best.Segments {
		if !s.Accepted {
			logger.Log.Debug("bulk import segment dropped",
				zap.Int("segment", s.Index),
				zap.String("reason", string(s.Reason)),
				zap.String("preview", s.Preview))
		}
	}
	return best
}

func (p *Parser) parseWith(text string, conv Convention) Result {
	res := Result{Questions: []model.Question{}, Segments: []SegmentReport{}, Convention: conv.String()}
	for i, seg := range SplitWith(text, conv) {
		q, report := p.evaluate(i, seg)
		res.Segments = append(res.Segments, report)
		if report.Accepted {
			res.Questions = append(res.Questions, q)
		}
	}
	return res
}

// evaluate 抽取并校验单个分段；单个分段出错不影响其它分段
func (p *Parser) evaluate(index int, segment string) (q model.Question, report SegmentReport) {
	report = SegmentReport{Index: index, Preview: preview(segment)}
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("bulk import segment panicked", zap.Int("segment", index), zap.Any("panic", r))
			q = model.Question{}
			report.Accepted = false
			report.Reason = ReasonExtractFailed
		}
	}()

	ex := Extract(segment)
	report.OptionStyle = ex.OptionStyle
	report.AnswerFound = ex.AnswerFound

	if reason, ok := p.validate(ex); !ok {
		report.Reason = reason
		return model.Question{}, report
	}

	report.Accepted = true
	return ex.Question, report
}

func (p *Parser) validate(ex Extraction) (DropReason, bool) {
	if utf8.RuneCountInString(ex.Question.Stem) <= minStemLength {
		return ReasonStemTooShort, false
	}
	if ex.FoundOptions < 2 {
		return ReasonTooFewOptions, false
	}
	if !ex.AnswerFound && p.policy == Reject {
		return ReasonMissingAnswer, false
	}
	return "", true
}

func preview(segment string) string {
	s := cleanInline(segment)
	if utf8.RuneCountInString(s) <= 60 {
		return s
	}
	return fmt.Sprintf("%s...", string([]rune(s)[:60]))
}
