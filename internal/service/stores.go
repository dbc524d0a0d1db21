package service

import (
	"context"
	"time"

	"studytest_backend/internal/model"
	"studytest_backend/internal/repository"
)

// 以下接口由 repository 包实现，测试中使用内存替身

type TestStore interface {
	Create(test *model.Test) error
	FindByID(id string) (*model.Test, error)
	List(name string, page, limit int) ([]*model.Test, int64, error)
	Update(test *model.Test) error
	Delete(id string) error
}

type AttemptStore interface {
	Create(attempt *model.TestAttempt) error
	FindByID(id string) (*model.TestAttempt, error)
	List(testID string, page, limit int) ([]*model.TestAttempt, int64, error)
	Delete(id string) error
}

type SessionCache interface {
	Save(ctx context.Context, cp *repository.SessionCheckpoint, ttl time.Duration) error
	Load(ctx context.Context, sessionID string) (*repository.SessionCheckpoint, error)
	Delete(ctx context.Context, sessionID string) error
}

type QuestionGenerator interface {
	Enabled() bool
	GenerateQuestions(ctx context.Context, req GenerateRequest) ([]model.Question, error)
}

type ImportArchiver interface {
	ArchiveImport(ctx context.Context, text string) (string, error)
	ReadImport(ctx context.Context, key string) (string, error)
}

var (
	_ TestStore         = (*repository.TestRepository)(nil)
	_ AttemptStore      = (*repository.AttemptRepository)(nil)
	_ SessionCache      = (*repository.SessionCacheRepository)(nil)
	_ QuestionGenerator = (*AIService)(nil)
	_ ImportArchiver    = (*StorageService)(nil)
)
