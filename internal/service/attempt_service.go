package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"studytest_backend/internal/attempt"
	"studytest_backend/internal/config"
	"studytest_backend/internal/model"
	"studytest_backend/internal/repository"
	"studytest_backend/internal/scoring"
	"studytest_backend/internal/util"
	"studytest_backend/pkg/logger"
	"studytest_backend/pkg/monitoring"
	"studytest_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// QuestionView 答题中展示的题目，不含答案和解析
type QuestionView struct {
	Stem    string   `json:"stem"`
	Options []string `json:"options"`
	Subject string   `json:"subject"`
	Topic   string   `json:"topic"`
}

// LiveAttemptView 进行中（或刚结束）的答题会话
type LiveAttemptView struct {
	SessionID       string         `json:"sessionId"`
	TestID          string         `json:"testId"`
	TestName        string         `json:"testName,omitempty"`
	DurationMinutes int            `json:"durationMinutes,omitempty"`
	Questions       []QuestionView `json:"questions,omitempty"`
	State           attempt.State  `json:"state"`
	Notice          attempt.Notice `json:"notice,omitempty"`
	AttemptID       string         `json:"attemptId,omitempty"`
}

// Direction 相对导航
type Direction string

const (
	DirectionNext     Direction = "next"
	DirectionPrevious Direction = "previous"
)

type liveSession struct {
	*attempt.Session
	test *model.Test
	// fromLibrary 从题库开始的答题在提交时需要确认试卷仍然存在；重做记录使用内嵌副本
	fromLibrary bool
}

type AttemptService struct {
	Tests    TestStore
	Attempts AttemptStore
	Cache    SessionCache

	cfg          config.AttemptConfig
	now          func() time.Time
	tickInterval time.Duration

	mu       sync.RWMutex
	sessions map[string]*liveSession
}

func NewAttemptService(tests TestStore, attempts AttemptStore, cache SessionCache, cfg config.AttemptConfig) *AttemptService {
	return &AttemptService{
		Tests:        tests,
		Attempts:     attempts,
		Cache:        cache,
		cfg:          cfg,
		now:          time.Now,
		tickInterval: time.Second,
		sessions:     make(map[string]*liveSession),
	}
}

// Start 基于题库中的试卷开始答题
func (s *AttemptService) Start(ctx context.Context, testID string) (*LiveAttemptView, error) {
	test, err := s.Tests.FindByID(testID)
	if err != nil {
		return nil, err
	}
	copied := test.Clone()
	return s.startSession(ctx, &copied, true)
}

// Retry 以历史记录内嵌的试卷重新答题
func (s *AttemptService) Retry(ctx context.Context, attemptID string) (*LiveAttemptView, error) {
	record, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	copied := record.FullTest.Clone()
	if copied.ID == "" {
		copied.ID = record.TestID
	}
	return s.startSession(ctx, &copied, false)
}

func (s *AttemptService) startSession(ctx context.Context, test *model.Test, fromLibrary bool) (*LiveAttemptView, error) {
	if len(test.Questions) == 0 {
		return nil, fmt.Errorf("%w: test has no questions", util.ErrInvalidInput)
	}
	if test.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: test has no duration", util.ErrInvalidInput)
	}
	if test.DurationMinutes > model.MaxDurationMinutes {
		return nil, fmt.Errorf("%w: test duration exceeds %d minutes", util.ErrInvalidInput, model.MaxDurationMinutes)
	}

	machine, err := attempt.NewMachine(len(test.Questions), time.Duration(test.DurationMinutes)*time.Minute,
		attempt.WithClock(s.now), attempt.WithOptionCount(model.OptionCount))
	if err != nil {
		return nil, err
	}

	sess := attempt.NewSession(model.GenerateUUID(), test.ID, machine,
		attempt.WithTickInterval(s.tickInterval),
		attempt.WithOnExpire(s.handleExpire),
	)
	ls := &liveSession{Session: sess, test: test, fromLibrary: fromLibrary}

	s.mu.Lock()
	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		s.mu.Unlock()
		return nil, util.ErrTooManySessions
	}
	s.sessions[sess.ID] = ls
	s.mu.Unlock()

	monitoring.ActiveSessions.Inc()
	sess.Start()

	logger.Log.Info("attempt started",
		zap.String("session", sess.ID),
		zap.String("test", test.ID),
		zap.Int("questions", len(test.Questions)),
		zap.Bool("retry", !fromLibrary))

	view := s.view(ls, attempt.NoticeNone)
	s.checkpoint(ctx, ls, view.State, "")
	view.Questions = questionViews(test)
	view.TestName = test.Name
	view.DurationMinutes = test.DurationMinutes
	return view, nil
}

func questionViews(test *model.Test) []QuestionView {
	out := make([]QuestionView, len(test.Questions))
	for i, q := range test.Questions {
		out[i] = QuestionView{
			Stem:    q.Stem,
			Options: append([]string(nil), q.Options...),
			Subject: q.Subject,
			Topic:   q.Topic,
		}
	}
	return out
}

func (s *AttemptService) view(ls *liveSession, notice attempt.Notice) *LiveAttemptView {
	return &LiveAttemptView{
		SessionID: ls.ID,
		TestID:    ls.TestID,
		State:     ls.Snapshot(),
		Notice:    notice,
	}
}

func (s *AttemptService) lookup(sessionID string) (*liveSession, error) {
	s.mu.RLock()
	ls, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	return ls, nil
}

// detach 从活动会话中移除，返回 false 表示已被其他路径移除
func (s *AttemptService) detach(sessionID string) (*liveSession, bool) {
	s.mu.Lock()
	ls, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()
	if ok {
		monitoring.ActiveSessions.Dec()
	}
	return ls, ok
}

// ActiveCount 当前活动会话数
func (s *AttemptService) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// View 查询会话；会话已结束时从缓存读取最后的快照和答题记录 ID
func (s *AttemptService) View(ctx context.Context, sessionID string) (*LiveAttemptView, error) {
	if ls, err := s.lookup(sessionID); err == nil {
		view := s.view(ls, attempt.NoticeNone)
		view.Questions = questionViews(ls.test)
		view.TestName = ls.test.Name
		view.DurationMinutes = ls.test.DurationMinutes
		return view, nil
	}

	cp, err := s.Cache.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cp == nil || !cp.State.Submitted {
		return nil, util.ErrSessionNotFound
	}
	return &LiveAttemptView{
		SessionID: cp.SessionID,
		TestID:    cp.TestID,
		State:     cp.State,
		AttemptID: cp.AttemptID,
	}, nil
}

// mutate 执行一次会话操作并刷新快照
func (s *AttemptService) mutate(ctx context.Context, sessionID string, op func(*liveSession) (attempt.Notice, error)) (*LiveAttemptView, error) {
	ls, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	notice, err := op(ls)
	if err != nil {
		return nil, err
	}
	view := s.view(ls, notice)
	s.checkpoint(ctx, ls, view.State, "")
	return view, nil
}

func (s *AttemptService) Select(ctx context.Context, sessionID string, option int) (*LiveAttemptView, error) {
	return s.mutate(ctx, sessionID, func(ls *liveSession) (attempt.Notice, error) {
		return attempt.NoticeNone, ls.Select(option)
	})
}

func (s *AttemptService) Navigate(ctx context.Context, sessionID string, index int) (*LiveAttemptView, error) {
	return s.mutate(ctx, sessionID, func(ls *liveSession) (attempt.Notice, error) {
		return ls.Navigate(index)
	})
}

func (s *AttemptService) Step(ctx context.Context, sessionID string, dir Direction) (*LiveAttemptView, error) {
	return s.mutate(ctx, sessionID, func(ls *liveSession) (attempt.Notice, error) {
		switch dir {
		case DirectionNext:
			return ls.Next()
		case DirectionPrevious:
			return ls.Previous()
		default:
			return attempt.NoticeNone, fmt.Errorf("%w: unknown direction %q", util.ErrInvalidInput, dir)
		}
	})
}

func (s *AttemptService) ClearAnswer(ctx context.Context, sessionID string) (*LiveAttemptView, error) {
	return s.mutate(ctx, sessionID, func(ls *liveSession) (attempt.Notice, error) {
		return attempt.NoticeNone, ls.ClearAnswer()
	})
}

func (s *AttemptService) ToggleMark(ctx context.Context, sessionID string) (*LiveAttemptView, error) {
	return s.mutate(ctx, sessionID, func(ls *liveSession) (attempt.Notice, error) {
		return ls.ToggleMark()
	})
}

// Submit 手动提交。倒计时已经触发自动提交时返回 attempt.ErrAttemptSubmitted。
func (s *AttemptService) Submit(ctx context.Context, sessionID string) (*model.TestAttempt, error) {
	ls, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	res, err := ls.Submit()
	if err != nil {
		return nil, err
	}
	if _, ok := s.detach(sessionID); !ok {
		// 提交的同时被放弃
		return nil, util.ErrSessionNotFound
	}
	return s.finalize(ctx, ls, res)
}

// handleExpire 倒计时归零后由会话协程调用
func (s *AttemptService) handleExpire(sess *attempt.Session, res attempt.Result) {
	ls, ok := s.detach(sess.ID)
	if !ok {
		return
	}
	if _, err := s.finalize(context.Background(), ls, res); err != nil {
		logger.Log.Error("failed to finalize expired attempt", zap.String("session", sess.ID), zap.Error(err))
	}
}

// finalize 评分并保存答题记录。试卷在答题过程中被删除时丢弃会话，不写记录。
func (s *AttemptService) finalize(ctx context.Context, ls *liveSession, res attempt.Result) (*model.TestAttempt, error) {
	ctx, span := tracing.StartSpan(ctx, "attempt.submit",
		attribute.String("attempt.session", ls.ID),
		attribute.Bool("attempt.forced", res.Forced))
	defer span.End()

	outcome := "manual"
	if res.Forced {
		outcome = "timeout"
	}

	test, err := s.resolveTest(ls)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	record, err := scoring.Score(test, res, s.now())
	if err != nil {
		monitoring.AttemptsSubmitted.WithLabelValues("fault").Inc()
		tracing.RecordError(span, err)
		logger.Log.Warn("attempt submission fault, session discarded",
			zap.String("session", ls.ID), zap.String("test", ls.TestID), zap.Error(err))
		if cerr := s.Cache.Delete(ctx, ls.ID); cerr != nil {
			logger.Log.Warn("failed to delete session checkpoint", zap.String("session", ls.ID), zap.Error(cerr))
		}
		return nil, fmt.Errorf("%w: %v", util.ErrAttemptSubmissionFail, err)
	}

	if err := s.Attempts.Create(record); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	monitoring.AttemptsSubmitted.WithLabelValues(outcome).Inc()

	logger.Log.Info("attempt submitted",
		zap.String("session", ls.ID),
		zap.String("attempt", record.ID),
		zap.String("outcome", outcome),
		zap.Float64("scorePercent", record.ScorePercent))

	s.checkpoint(ctx, ls, ls.Snapshot(), record.ID)
	return record, nil
}

// resolveTest 返回 nil 表示试卷已不存在
func (s *AttemptService) resolveTest(ls *liveSession) (*model.Test, error) {
	if !ls.fromLibrary {
		return ls.test, nil
	}
	if _, err := s.Tests.FindByID(ls.test.ID); err != nil {
		if errors.Is(err, util.ErrTestNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ls.test, nil
}

// Abandon 放弃答题，不保存任何记录
func (s *AttemptService) Abandon(ctx context.Context, sessionID string) error {
	ls, ok := s.detach(sessionID)
	if !ok {
		return util.ErrSessionNotFound
	}
	ls.Abandon()
	logger.Log.Info("attempt abandoned", zap.String("session", sessionID))
	return s.Cache.Delete(ctx, sessionID)
}

// Shutdown 停止全部会话的计时，进程退出时调用
func (s *AttemptService) Shutdown() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*liveSession)
	s.mu.Unlock()

	for _, ls := range sessions {
		ls.Abandon()
		monitoring.ActiveSessions.Dec()
	}
	if len(sessions) > 0 {
		logger.Log.Info("stopped live attempt sessions", zap.Int("count", len(sessions)))
	}
}

// checkpoint 写入快照，失败只记录日志
func (s *AttemptService) checkpoint(ctx context.Context, ls *liveSession, state attempt.State, attemptID string) {
	ttl := s.cfg.SnapshotGrace
	if !state.Submitted {
		ttl += time.Duration(state.RemainingSeconds) * time.Second
	}
	if ttl <= 0 {
		ttl = time.Minute
	}

	cp := &repository.SessionCheckpoint{
		SessionID: ls.ID,
		TestID:    ls.TestID,
		State:     state,
		AttemptID: attemptID,
		UpdatedAt: s.now(),
	}
	if err := s.Cache.Save(ctx, cp, ttl); err != nil {
		logger.Log.Warn("failed to save session checkpoint", zap.String("session", ls.ID), zap.Error(err))
	}
}

func (s *AttemptService) ListAttempts(testID string, page, limit int) ([]*model.TestAttempt, int64, error) {
	return s.Attempts.List(testID, page, limit)
}

func (s *AttemptService) GetAttempt(id string) (*model.TestAttempt, error) {
	return s.Attempts.FindByID(id)
}

func (s *AttemptService) DeleteAttempt(id string) error {
	return s.Attempts.Delete(id)
}
