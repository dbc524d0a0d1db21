package model

import (
	"errors"
	"fmt"
	"strings"
)

const (
	OptionCount = 4

	DefaultExplanation = "No explanation provided."
	DefaultSubject     = "General"
	DefaultTopic       = "Miscellaneous"
)

// Question 单道四选一题目，作为 JSON 数组存放在 Test 中
type Question struct {
	Stem         string   `json:"stem"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
	Subject      string   `json:"subject"`
	Topic        string   `json:"topic"`
}

// PlaceholderOption 返回第 n 个（从 1 开始）占位选项文本
func PlaceholderOption(n int) string {
	return fmt.Sprintf("Option %d", n)
}

// Normalize 补齐/截断选项到 4 个，夹紧正确答案下标并填充默认元数据
func (q *Question) Normalize() {
	q.Stem = strings.TrimSpace(q.Stem)

	opts := make([]string, 0, OptionCount)
	for i := 0; i < OptionCount; i++ {
		text := ""
		if i < len(q.Options) {
			text = strings.TrimSpace(q.Options[i])
		}
		if text == "" {
			text = PlaceholderOption(i + 1)
		}
		opts = append(opts, text)
	}
	q.Options = opts

	if q.CorrectIndex < 0 {
		q.CorrectIndex = 0
	}
	if q.CorrectIndex > OptionCount-1 {
		q.CorrectIndex = OptionCount - 1
	}

	if strings.TrimSpace(q.Explanation) == "" {
		q.Explanation = DefaultExplanation
	}
	if strings.TrimSpace(q.Subject) == "" {
		q.Subject = DefaultSubject
	}
	if strings.TrimSpace(q.Topic) == "" {
		q.Topic = DefaultTopic
	}
}

// Validate 检查题目是否满足持久化前的不变量（不做修补）
func (q Question) Validate() error {
	if strings.TrimSpace(q.Stem) == "" {
		return errors.New("question stem is required")
	}
	if len(q.Options) != OptionCount {
		return fmt.Errorf("question must have exactly %d options, got %d", OptionCount, len(q.Options))
	}
	for i, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			return fmt.Errorf("option %d is empty", i+1)
		}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= OptionCount {
		return fmt.Errorf("correctIndex %d out of range", q.CorrectIndex)
	}
	return nil
}
