package model

import (
	"errors"
	"fmt"
	"strings"
)

const (
	SourceManual = "manual"
	SourceImport = "import"
	SourceAI     = "ai"
)

// MaxDurationMinutes 单套试卷时长上限（24 小时）
const MaxDurationMinutes = 24 * 60

// Test 一套带考试参数的有序题目集合
// swagger:model Test
type Test struct {
	UUIDBase
	Name                    string     `gorm:"size:255;not null" json:"name"`
	DurationMinutes         int        `gorm:"default:0" json:"durationMinutes"`
	MarksPerQuestion        float64    `gorm:"default:1" json:"marksPerQuestion"`
	NegativeMarkingPerWrong float64    `gorm:"default:0" json:"negativeMarkingPerWrong"`
	Language                string     `gorm:"size:32" json:"language"`
	Source                  string     `gorm:"size:16" json:"source"` // manual, import, ai
	Questions               []Question `gorm:"serializer:json;type:json" json:"questions"`
}

func (Test) TableName() string {
	return "tests"
}

func (t *Test) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("test name is required")
	}
	if len(t.Questions) == 0 {
		return errors.New("test must contain at least one question")
	}
	if t.DurationMinutes <= 0 {
		return fmt.Errorf("durationMinutes must be positive, got %d", t.DurationMinutes)
	}
	if t.DurationMinutes > MaxDurationMinutes {
		return fmt.Errorf("durationMinutes must not exceed %d, got %d", MaxDurationMinutes, t.DurationMinutes)
	}
	if t.MarksPerQuestion < 0 {
		return errors.New("marksPerQuestion must be non-negative")
	}
	if t.NegativeMarkingPerWrong < 0 {
		return errors.New("negativeMarkingPerWrong must be non-negative")
	}
	for i, q := range t.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}

// Clone 深拷贝，用于嵌入到答题记录中
func (t *Test) Clone() Test {
	c := *t
	c.Questions = make([]Question, len(t.Questions))
	for i, q := range t.Questions {
		q.Options = append([]string(nil), q.Options...)
		c.Questions[i] = q
	}
	return c
}
