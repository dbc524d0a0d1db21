package attempt

import (
	"sync"
	"time"

	"studytest_backend/pkg/logger"

	"go.uber.org/zap"
)

// ExpireFunc 倒计时归零、强制提交后回调，在锁外调用且只调用一次
type ExpireFunc func(s *Session, res Result)

// Session 为 Machine 加锁并驱动每秒一次的倒计时。计时与用户操作通过同一把锁串行执行。
type Session struct {
	ID     string
	TestID string

	mu       sync.Mutex
	machine  *Machine
	onExpire ExpireFunc

	stop     chan struct{}
	stopOnce sync.Once
	interval time.Duration
}

type SessionOption func(*Session)

// WithTickInterval 调整计时间隔，测试用
func WithTickInterval(d time.Duration) SessionOption {
	return func(s *Session) {
		s.interval = d
	}
}

func WithOnExpire(fn ExpireFunc) SessionOption {
	return func(s *Session) {
		s.onExpire = fn
	}
}

func NewSession(id, testID string, m *Machine, opts ...SessionOption) *Session {
	s := &Session{
		ID:       id,
		TestID:   testID,
		machine:  m,
		stop:     make(chan struct{}),
		interval: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start 启动倒计时协程
func (s *Session) Start() {
	go s.run()
}

func (s *Session) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			expired := s.machine.Tick()
			var res Result
			if expired {
				res, _ = s.machine.Result()
			}
			s.mu.Unlock()

			if expired {
				s.halt()
				logger.Log.Info("attempt time expired, submitted automatically",
					zap.String("session", s.ID), zap.String("test", s.TestID))
				if s.onExpire != nil {
					s.onExpire(s, res)
				}
				return
			}
		}
	}
}

func (s *Session) halt() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Abandon 停止计时，丢弃全部状态且不持久化
func (s *Session) Abandon() {
	s.halt()
}

func (s *Session) Select(option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Select(option)
}

func (s *Session) Navigate(index int) (Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Navigate(index)
}

func (s *Session) Next() (Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Next()
}

func (s *Session) Previous() (Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Previous()
}

func (s *Session) ClearAnswer() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.ClearAnswer()
}

func (s *Session) ToggleMark() (Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.ToggleMark()
}

// Submit 手动提交并停止计时
func (s *Session) Submit() (Result, error) {
	s.mu.Lock()
	res, err := s.machine.Submit()
	s.mu.Unlock()
	if err != nil {
		return Result{}, err
	}
	s.halt()
	return res, nil
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Snapshot()
}

func (s *Session) QuestionCount() int {
	return s.machine.QuestionCount()
}
