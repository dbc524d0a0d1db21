package service

import (
	"fmt"
	"strings"

	"studytest_backend/internal/model"
	"studytest_backend/internal/util"
)

// TestRequest 创建/更新试卷的请求体
type TestRequest struct {
	Name                    string           `json:"name" binding:"required"`
	DurationMinutes         int              `json:"durationMinutes" binding:"required,min=1,max=1440"`
	MarksPerQuestion        *float64         `json:"marksPerQuestion"`
	NegativeMarkingPerWrong float64          `json:"negativeMarkingPerWrong"`
	Language                string           `json:"language"`
	Questions               []model.Question `json:"questions"`
}

// apply 把请求写入 test，题目逐一规范化后整体校验
func (r *TestRequest) apply(test *model.Test) error {
	test.Name = strings.TrimSpace(r.Name)
	test.DurationMinutes = r.DurationMinutes
	test.MarksPerQuestion = 1
	if r.MarksPerQuestion != nil {
		test.MarksPerQuestion = *r.MarksPerQuestion
	}
	test.NegativeMarkingPerWrong = r.NegativeMarkingPerWrong
	test.Language = r.Language

	test.Questions = make([]model.Question, len(r.Questions))
	for i, q := range r.Questions {
		q.Normalize()
		test.Questions[i] = q
	}

	if err := test.Validate(); err != nil {
		return fmt.Errorf("%w: %v", util.ErrInvalidInput, err)
	}
	return nil
}

type TestService struct {
	Tests TestStore
}

func NewTestService(tests TestStore) *TestService {
	return &TestService{Tests: tests}
}

func (s *TestService) Create(req *TestRequest) (*model.Test, error) {
	test := &model.Test{Source: model.SourceManual}
	if err := req.apply(test); err != nil {
		return nil, err
	}
	if err := s.Tests.Create(test); err != nil {
		return nil, err
	}
	return test, nil
}

// Save 持久化已组装好的试卷（导入、AI 生成）
func (s *TestService) Save(test *model.Test) error {
	for i := range test.Questions {
		test.Questions[i].Normalize()
	}
	if err := test.Validate(); err != nil {
		return fmt.Errorf("%w: %v", util.ErrInvalidInput, err)
	}
	return s.Tests.Create(test)
}

func (s *TestService) Get(id string) (*model.Test, error) {
	return s.Tests.FindByID(id)
}

func (s *TestService) List(name string, page, limit int) ([]*model.Test, int64, error) {
	return s.Tests.List(strings.TrimSpace(name), page, limit)
}

// Update 整体替换试卷内容，已有的答题记录内嵌旧版本，不受影响
func (s *TestService) Update(id string, req *TestRequest) (*model.Test, error) {
	test, err := s.Tests.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := req.apply(test); err != nil {
		return nil, err
	}
	if err := s.Tests.Update(test); err != nil {
		return nil, err
	}
	return test, nil
}

// ReplaceQuestion 原位替换第 index 题（从 0 开始）
func (s *TestService) ReplaceQuestion(id string, index int, q model.Question) (*model.Test, error) {
	test, err := s.Tests.FindByID(id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(test.Questions) {
		return nil, fmt.Errorf("%w: %d of %d", util.ErrQuestionIndexRange, index, len(test.Questions))
	}

	q.Normalize()
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidInput, err)
	}
	test.Questions[index] = q

	if err := s.Tests.Update(test); err != nil {
		return nil, err
	}
	return test, nil
}

func (s *TestService) Delete(id string) error {
	return s.Tests.Delete(id)
}
