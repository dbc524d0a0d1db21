package parser

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Convention 题号书写约定
type Convention int

const (
	// ConventionAny 同时识别所有题号约定
	ConventionAny Convention = iota
	// ConventionQ  Q1. / Q.1 / Q 1)
	ConventionQ
	// ConventionNumberDot  1.
	ConventionNumberDot
	// ConventionParenNumber  (1)
	ConventionParenNumber
	// ConventionNumberParen  1)
	ConventionNumberParen
)

func (c Convention) String() string {
	switch c {
	case ConventionQ:
		return "q_number"
	case ConventionNumberDot:
		return "number_dot"
	case ConventionParenNumber:
		return "paren_number"
	case ConventionNumberParen:
		return "number_paren"
	default:
		return "any"
	}
}

// SingleConventions 单一约定的回退顺序
var SingleConventions = []Convention{
	ConventionQ,
	ConventionNumberDot,
	ConventionParenNumber,
	ConventionNumberParen,
}

var markerPatterns = map[Convention]*regexp.Regexp{
	ConventionQ:           regexp.MustCompile(`(?m)^[ \t]*[Qq][ \t]*\.?[ \t]*\d+[ \t]*[.):]?`),
	ConventionNumberDot:   regexp.MustCompile(`(?m)^[ \t]*\d+\.`),
	ConventionParenNumber: regexp.MustCompile(`(?m)^[ \t]*\(\d+\)`),
	ConventionNumberParen: regexp.MustCompile(`(?m)^[ \t]*\d+\)`),
}

// numberingPrefix 匹配分段开头的题号，提取题干时剥离
var numberingPrefix = regexp.MustCompile(`^\s*(?:[Qq][ \t]*\.?[ \t]*\d+[ \t]*[.):]?|\d+[.)]|\(\d+\))\s*`)

// Split 按任意题号约定切分文本
func Split(text string) []string {
	return SplitWith(text, ConventionAny)
}

// SplitWith 按指定题号约定切分文本。题号保留在它所开启的分段内；
// 只有题号后第一个非空白字符不是小写字母时才作为切分点。没有任何切分点时返回空。
func SplitWith(text string, conv Convention) []string {
	starts := splitPoints(text, conv)
	if len(starts) == 0 {
		return nil
	}

	var segments []string
	// 第一个题号之前的前言同样作为一个分段，交给后续校验丢弃
	bounds := append([]int{0}, starts...)
	bounds = append(bounds, len(text))
	for i := 0; i < len(bounds)-1; i++ {
		if bounds[i] == bounds[i+1] {
			continue
		}
		seg := strings.TrimSpace(text[bounds[i]:bounds[i+1]])
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

func splitPoints(text string, conv Convention) []int {
	var patterns []*regexp.Regexp
	if conv == ConventionAny {
		for _, c := range SingleConventions {
			patterns = append(patterns, markerPatterns[c])
		}
	} else if p, ok := markerPatterns[conv]; ok {
		patterns = append(patterns, p)
	} else {
		return nil
	}

	seen := make(map[int]bool)
	var points []int
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			if seen[loc[0]] || !startsQuestion(text[loc[1]:]) {
				continue
			}
			seen[loc[0]] = true
			points = append(points, loc[0])
		}
	}
	sort.Ints(points)
	return points
}

// startsQuestion 题号之后（跳过空白）必须是大写字母或无大小写之分的文字
func startsQuestion(rest string) bool {
	rest = strings.TrimLeft(rest, " \t")
	r, size := utf8.DecodeRuneInString(rest)
	if size == 0 || r == utf8.RuneError {
		return false
	}
	if !unicode.IsLetter(r) {
		return false
	}
	return !unicode.IsLower(r)
}

// StripNumbering 剥离分段开头的题号
func StripNumbering(segment string) string {
	return numberingPrefix.ReplaceAllString(segment, "")
}
