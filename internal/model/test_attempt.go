package model

import "time"

// TestAttempt 一次已提交答题的不可变结果，内嵌答题时的完整试卷
// swagger:model TestAttempt
type TestAttempt struct {
	UUIDBase
	TestID          string    `gorm:"index;type:varchar(36)" json:"testId"`
	Answers         []*int    `gorm:"serializer:json;type:json" json:"answers"`
	TimePerQuestion []float64 `gorm:"serializer:json;type:json" json:"timePerQuestion"`
	TotalTimeTaken  float64   `json:"totalTimeTaken"`
	CorrectCount    int       `json:"correctCount"`
	IncorrectCount  int       `json:"incorrectCount"`
	UnansweredCount int       `json:"unansweredCount"`
	RawScore        float64   `json:"rawScore"`
	MaxScore        float64   `json:"maxScore"`
	ScorePercent    float64   `json:"scorePercent"`
	IsTimeout       bool      `gorm:"default:false" json:"isTimeout"`
	CompletedAt     time.Time `gorm:"index" json:"completedAt"`
	FullTest        Test      `gorm:"serializer:json;type:json" json:"fullTest"`
}

func (TestAttempt) TableName() string {
	return "test_attempts"
}

func (a *TestAttempt) QuestionCount() int {
	return len(a.FullTest.Questions)
}
