package scoring

import (
	"errors"
	"fmt"
	"time"

	"studytest_backend/internal/attempt"
	"studytest_backend/internal/model"
)

var (
	// ErrMissingTest 提交时找不到试卷，答题记录不能写入
	ErrMissingTest    = errors.New("attempt has no test to score against")
	ErrAnswerMismatch = errors.New("answer count does not match question count")
)

// Tally 单次答题的计数和得分
type Tally struct {
	Correct    int
	Incorrect  int
	Unanswered int
	Raw        float64
	Max        float64
	Percent    float64
}

// Compute 逐题判分：未作答、正确、错误。百分比不低于 0。
func Compute(test *model.Test, answers []*int) Tally {
	var t Tally
	for i, q := range test.Questions {
		var a *int
		if i < len(answers) {
			a = answers[i]
		}
		switch {
		case a == nil:
			t.Unanswered++
		case *a == q.CorrectIndex:
			t.Correct++
		default:
			t.Incorrect++
		}
	}

	t.Raw = float64(t.Correct)*test.MarksPerQuestion - float64(t.Incorrect)*test.NegativeMarkingPerWrong
	t.Max = float64(len(test.Questions)) * test.MarksPerQuestion
	if t.Max > 0 {
		t.Percent = t.Raw / t.Max * 100
		if t.Percent < 0 {
			t.Percent = 0
		}
	}
	return t
}

// Score 将冻结的答题结果转换为答题记录，记录内嵌试卷的深拷贝
func Score(test *model.Test, res attempt.Result, completedAt time.Time) (*model.TestAttempt, error) {
	if test == nil {
		return nil, ErrMissingTest
	}
	if len(res.Answers) != len(test.Questions) {
		return nil, fmt.Errorf("%w: %d answers for %d questions", ErrAnswerMismatch, len(res.Answers), len(test.Questions))
	}

	tally := Compute(test, res.Answers)

	answers := make([]*int, len(res.Answers))
	for i, a := range res.Answers {
		if a != nil {
			v := *a
			answers[i] = &v
		}
	}
	perQuestion := make([]float64, len(test.Questions))
	copy(perQuestion, res.ElapsedPerQuestion)

	return &model.TestAttempt{
		TestID:          test.ID,
		Answers:         answers,
		TimePerQuestion: perQuestion,
		TotalTimeTaken:  res.TotalTimeTaken,
		CorrectCount:    tally.Correct,
		IncorrectCount:  tally.Incorrect,
		UnansweredCount: tally.Unanswered,
		RawScore:        tally.Raw,
		MaxScore:        tally.Max,
		ScorePercent:    tally.Percent,
		IsTimeout:       res.Forced,
		CompletedAt:     completedAt,
		FullTest:        test.Clone(),
	}, nil
}
