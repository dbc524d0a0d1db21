package parser

import (
	"regexp"
	"strings"

	"studytest_backend/internal/model"
)

// Extraction 单个分段的抽取结果，尚未经过校验
type Extraction struct {
	Question model.Question
	// AnswerFound 分段中是否出现了答案声明
	AnswerFound bool
	// FoundOptions 补齐占位前实际抽取到的非空选项数
	FoundOptions int
	// OptionStyle 命中的选项标记约定
	OptionStyle string
}

const labelSep = `\s*(?:[:：\-–]|\.)`

// 标签前必须是非字母（或文本开头），避免匹配到 "transport" 之类单词内部
const labelLead = `(?:^|[^\p{L}\p{M}])`

// 解析/科目/知识点标签只认行首或 "|" 之后，题干里的 "subject-verb" 不算
const metaLead = `(?:(?m:^)|\|)[ \t]*`

const (
	answerLabel      = `(?:सही\s*उत्तर|उत्तर|correct\s+answer|answer|ans)`
	answerToken      = `[\(\[]?([a-d1-4])(?:[\)\]]|\b|$)`
	explanationLabel = `(?:explanation|exp|व्याख्या|विवरण)`
	// 科目/知识点必须带冒号
	subjectLabel = `(?:subject|विषय)[ \t]*[:：]`
	topicLabel   = `(?:topic|टॉपिक)[ \t]*[:：]`
)

var (
	// answerStrict 标签后带分隔符，如 "Answer: b"、"Ans. (c)"，取第一个
	answerStrict = regexp.MustCompile(`(?i)` + labelLead + answerLabel +
		`(?:\s*\.?\s*[:：\-–=]|\s*\.)\s*(?:option\s*)?` + answerToken)
	// answerLoose 无分隔符且位于行首，如 "Answer b"，取最后一个
	answerLoose = regexp.MustCompile(`(?im)^[ \t]*` + answerLabel + `[ \t]+(?:option[ \t]*)?` + answerToken)

	explanationPattern = regexp.MustCompile(`(?is)` + metaLead + explanationLabel + labelSep +
		`\s*(.*?)\s*(?:` + metaLead + `(?:` + subjectLabel + `|` + topicLabel + `)|` + labelLead + answerLabel + labelSep + `|$)`)

	subjectPattern = regexp.MustCompile(`(?i)` + metaLead + subjectLabel + `[ \t]*([^|\n]+)`)
	topicPattern   = regexp.MustCompile(`(?i)` + metaLead + topicLabel + `[ \t]*([^|\n]+)`)

	// 任意元数据标签，用于截断选项区和清理选项尾部。答案可以紧跟在选项同一行。
	labelPattern = regexp.MustCompile(`(?i)(?:` + labelLead + answerLabel + labelSep +
		`|` + metaLead + explanationLabel + labelSep +
		`|` + metaLead + `(?:` + subjectLabel + `|` + topicLabel + `))`)

	whitespace = regexp.MustCompile(`\s+`)
)

// optionRule 一种选项标记约定
type optionRule struct {
	name    string
	pattern *regexp.Regexp
	// group 为标记字符在匹配中的分组下标，标记起点取该分组的起点
	group int
}

// optionRules 按优先级排列，第一个命中 >=2 个标记的约定生效
var optionRules = []optionRule{
	{name: "letter_paren", pattern: regexp.MustCompile(`(?:^|\s)([a-dA-D][\)\]])`), group: 1},
	{name: "paren_letter", pattern: regexp.MustCompile(`([\(\[][a-dA-D][\)\]])`), group: 1},
	{name: "number_paren", pattern: regexp.MustCompile(`(?:^|\s)(\(?[1-4][\)\]])`), group: 1},
}

// Extract 从单个分段中抽取题干、选项、答案、解析、科目和知识点
func Extract(segment string) Extraction {
	var ex Extraction
	q := &ex.Question

	body := StripNumbering(segment)

	token, looseAt, ok := findAnswer(body)
	if ok {
		q.CorrectIndex = answerIndex(token)
		ex.AnswerFound = true
	}
	if m := explanationPattern.FindStringSubmatch(body); m != nil {
		q.Explanation = strings.Trim(cleanInline(m[1]), " |")
	}
	if m := subjectPattern.FindStringSubmatch(body); m != nil {
		q.Subject = strings.TrimSpace(m[1])
	}
	if m := topicPattern.FindStringSubmatch(body); m != nil {
		q.Topic = strings.TrimSpace(m[1])
	}

	// 选项只在第一个元数据标签之前查找，避免把 "Answer: (b)" 当成选项
	optionArea := body
	if loc := labelPattern.FindStringIndex(body); loc != nil {
		optionArea = body[:loc[0]]
	}
	if looseAt >= 0 && looseAt < len(optionArea) {
		optionArea = optionArea[:looseAt]
	}

	stemEnd := len(optionArea)
	for _, rule := range optionRules {
		opts, first := matchOptions(optionArea, rule)
		if len(opts) < 2 {
			continue
		}
		q.Options = opts
		stemEnd = first
		ex.OptionStyle = rule.name
		break
	}

	q.Stem = cleanInline(optionArea[:stemEnd])

	for _, o := range q.Options {
		if o != "" {
			ex.FoundOptions++
		}
	}

	q.Normalize()
	return ex
}

// findAnswer 返回答案字母/数字；无分隔符的答案声明同时返回其位置，用于截断选项区
func findAnswer(body string) (string, int, bool) {
	if m := answerStrict.FindStringSubmatch(body); m != nil {
		return m[1], -1, true
	}
	if all := answerLoose.FindAllStringSubmatchIndex(body, -1); len(all) > 0 {
		last := all[len(all)-1]
		return body[last[2]:last[3]], last[0], true
	}
	return "", -1, false
}

// matchOptions 返回各选项文本以及第一个标记的起点
func matchOptions(area string, rule optionRule) ([]string, int) {
	locs := rule.pattern.FindAllStringSubmatchIndex(area, -1)
	if len(locs) < 2 {
		return nil, -1
	}

	opts := make([]string, 0, len(locs))
	for i, loc := range locs {
		textStart := loc[2*rule.group+1]
		textEnd := len(area)
		if i+1 < len(locs) {
			textEnd = locs[i+1][2*rule.group]
		}
		opts = append(opts, cleanOption(area[textStart:textEnd]))
	}
	return opts, locs[0][2*rule.group]
}

// cleanOption 去掉选项尾部混入的标签片段（及其后全部内容）
func cleanOption(s string) string {
	if loc := labelPattern.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return cleanInline(s)
}

func cleanInline(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// answerIndex 把 a-d / 1-4 映射为 0-3
func answerIndex(token string) int {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return 0
	}
	c := token[0]
	idx := 0
	switch {
	case c >= 'a' && c <= 'z':
		idx = int(c - 'a')
	case c >= '0' && c <= '9':
		idx = int(c-'0') - 1
	}
	if idx < 0 {
		idx = 0
	}
	if idx > model.OptionCount-1 {
		idx = model.OptionCount - 1
	}
	return idx
}
