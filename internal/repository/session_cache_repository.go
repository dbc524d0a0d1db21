package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"studytest_backend/internal/attempt"

	"github.com/go-redis/redis/v8"
)

// SessionCheckpoint 答题会话快照。进行中时随操作刷新，结束后保留一段时间供客户端查询结果。
type SessionCheckpoint struct {
	SessionID string        `json:"sessionId"`
	TestID    string        `json:"testId"`
	State     attempt.State `json:"state"`
	// AttemptID 提交成功后写入的答题记录 ID
	AttemptID string    `json:"attemptId,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionCacheRepository 把答题快照以 JSON 写入 Redis。Redis 未配置时所有操作都是空操作。
type SessionCacheRepository struct {
	Redis  *redis.Client
	prefix string
}

func NewSessionCacheRepository(rdb *redis.Client) *SessionCacheRepository {
	return &SessionCacheRepository{
		Redis:  rdb,
		prefix: "studytest:attempt:session:",
	}
}

func (r *SessionCacheRepository) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *SessionCacheRepository) Save(ctx context.Context, cp *SessionCheckpoint, ttl time.Duration) error {
	if r.Redis == nil {
		return nil
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	return r.Redis.Set(ctx, r.key(cp.SessionID), data, ttl).Err()
}

// Load 不存在时返回 nil, nil
func (r *SessionCacheRepository) Load(ctx context.Context, sessionID string) (*SessionCheckpoint, error) {
	if r.Redis == nil {
		return nil, nil
	}
	data, err := r.Redis.Get(ctx, r.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cp SessionCheckpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	return &cp, nil
}

func (r *SessionCacheRepository) Delete(ctx context.Context, sessionID string) error {
	if r.Redis == nil {
		return nil
	}
	return r.Redis.Del(ctx, r.key(sessionID)).Err()
}
