package attempt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMachine(t *testing.T, n int, duration time.Duration) (*Machine, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	m, err := NewMachine(n, duration, WithClock(clock.Now))
	require.NoError(t, err)
	return m, clock
}

func intPtr(v int) *int { return &v }

func TestNewMachine_InitialState(t *testing.T) {
	m, _ := newTestMachine(t, 3, 10*time.Minute)

	s := m.Snapshot()
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Nil(t, s.Selected)
	assert.Equal(t, []Status{StatusNotAnswered, StatusNotVisited, StatusNotVisited}, s.Statuses)
	assert.Equal(t, 600.0, s.RemainingSeconds)
	assert.False(t, s.Submitted)

	_, err := NewMachine(0, time.Minute)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestMachine_MarkWithoutAnswerThenMoveOn(t *testing.T) {
	m, _ := newTestMachine(t, 3, 10*time.Minute)

	notice, err := m.ToggleMark()
	require.NoError(t, err)
	assert.Equal(t, NoticeNone, notice)

	s := m.Snapshot()
	assert.Equal(t, 1, s.CurrentIndex)
	assert.Equal(t, StatusMarked, s.Statuses[0])
	assert.Equal(t, StatusNotAnswered, s.Statuses[1])
}

func TestMachine_StatusTransitions(t *testing.T) {
	tests := []struct {
		name   string
		steps  func(m *Machine)
		expect Status
	}{
		{
			name:   "answered",
			steps:  func(m *Machine) { _ = m.Select(2); _, _ = m.Next() },
			expect: StatusAnswered,
		},
		{
			name:   "marked and answered",
			steps:  func(m *Machine) { _ = m.Select(2); _, _ = m.ToggleMark() },
			expect: StatusMarkedAndAnswered,
		},
		{
			name:   "visited without answer",
			steps:  func(m *Machine) { _, _ = m.Next() },
			expect: StatusNotAnswered,
		},
		{
			name: "cleared answer keeps mark",
			steps: func(m *Machine) {
				_ = m.Select(1)
				_, _ = m.ToggleMark()
				_, _ = m.Previous()
				_ = m.ClearAnswer()
				_, _ = m.Next()
			},
			expect: StatusMarked,
		},
		{
			name: "unmark restores answered",
			steps: func(m *Machine) {
				_ = m.Select(3)
				_, _ = m.ToggleMark()
				_, _ = m.Previous()
				_, _ = m.ToggleMark()
			},
			expect: StatusAnswered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestMachine(t, 3, time.Hour)
			tt.steps(m)
			assert.Equal(t, tt.expect, m.Snapshot().Statuses[0])
		})
	}
}

func TestMachine_SelectionCommittedOnlyOnLeave(t *testing.T) {
	m, _ := newTestMachine(t, 2, time.Hour)

	require.NoError(t, m.Select(1))
	s := m.Snapshot()
	assert.Nil(t, s.Answers[0])
	assert.Equal(t, intPtr(1), s.Selected)

	_, err := m.Next()
	require.NoError(t, err)
	s = m.Snapshot()
	assert.Equal(t, intPtr(1), s.Answers[0])
	assert.Nil(t, s.Selected)

	// 返回时加载已保存的答案
	_, err = m.Previous()
	require.NoError(t, err)
	assert.Equal(t, intPtr(1), m.Snapshot().Selected)

	assert.ErrorIs(t, m.Select(4), ErrInvalidOption)
	assert.ErrorIs(t, m.Select(-1), ErrInvalidOption)
}

func TestMachine_BoundaryNavigation(t *testing.T) {
	m, clock := newTestMachine(t, 2, time.Hour)

	clock.Advance(5 * time.Second)
	require.NoError(t, m.Select(0))
	notice, err := m.Previous()
	require.NoError(t, err)
	assert.Equal(t, NoticeFirstQuestion, notice)
	assert.Equal(t, 0, m.CurrentIndex())
	// 越界时依然结算当前题
	s := m.Snapshot()
	assert.Equal(t, intPtr(0), s.Answers[0])
	assert.Equal(t, 5.0, s.ElapsedPerQuestion[0])
	assert.Equal(t, StatusAnswered, s.Statuses[0])

	_, err = m.Next()
	require.NoError(t, err)
	notice, err = m.Next()
	require.NoError(t, err)
	assert.Equal(t, NoticeLastQuestion, notice)
	assert.Equal(t, 1, m.CurrentIndex())

	notice, err = m.Navigate(7)
	require.NoError(t, err)
	assert.Equal(t, NoticeLastQuestion, notice)
}

func TestMachine_ElapsedTimeAccounting(t *testing.T) {
	m, clock := newTestMachine(t, 3, time.Hour)

	clock.Advance(10 * time.Second)
	_, _ = m.Next()
	clock.Advance(4 * time.Second)
	_, _ = m.Navigate(0)
	clock.Advance(6 * time.Second)
	_, _ = m.Navigate(2)
	clock.Advance(3 * time.Second)

	res, err := m.Submit()
	require.NoError(t, err)
	assert.Equal(t, []float64{16, 4, 3}, res.ElapsedPerQuestion)
	assert.Equal(t, 23.0, res.TotalTimeTaken)

	var sum float64
	for _, e := range res.ElapsedPerQuestion {
		sum += e
	}
	assert.InDelta(t, res.TotalTimeTaken, sum, 1e-9)
}

func TestMachine_TimerExpiryCommitsInProgressQuestion(t *testing.T) {
	m, clock := newTestMachine(t, 3, 3*time.Second)

	_, _ = m.Next()
	require.NoError(t, m.Select(2))

	for i := 0; i < 2; i++ {
		clock.Advance(time.Second)
		assert.False(t, m.Tick())
	}
	clock.Advance(time.Second)
	assert.True(t, m.Tick())

	res, ok := m.Result()
	require.True(t, ok)
	assert.True(t, res.Forced)
	assert.Equal(t, intPtr(2), res.Answers[1])
	assert.Equal(t, StatusAnswered, res.Statuses[1])
	assert.Equal(t, 3.0, res.ElapsedPerQuestion[1])

	s := m.Snapshot()
	assert.Equal(t, 0.0, s.RemainingSeconds)
	assert.True(t, s.Submitted)

	// 已提交后计时不再生效
	assert.False(t, m.Tick())
	assert.Equal(t, 0.0, m.Snapshot().RemainingSeconds)
}

func TestMachine_MutationsAfterSubmit(t *testing.T) {
	m, _ := newTestMachine(t, 2, time.Hour)
	_, err := m.Submit()
	require.NoError(t, err)

	_, err = m.Submit()
	assert.ErrorIs(t, err, ErrAttemptSubmitted)
	assert.ErrorIs(t, m.Select(0), ErrAttemptSubmitted)
	assert.ErrorIs(t, m.ClearAnswer(), ErrAttemptSubmitted)
	_, err = m.Navigate(1)
	assert.ErrorIs(t, err, ErrAttemptSubmitted)
	_, err = m.ToggleMark()
	assert.ErrorIs(t, err, ErrAttemptSubmitted)
}

func TestMachine_LengthsMatchQuestionCount(t *testing.T) {
	for _, n := range []int{1, 2, 5, 40} {
		m, _ := newTestMachine(t, n, time.Hour)
		for i := 0; i < n+2; i++ {
			_ = m.Select(i % 4)
			_, _ = m.ToggleMark()
		}
		res, err := m.Submit()
		require.NoError(t, err)
		assert.Len(t, res.Answers, n)
		assert.Len(t, res.Statuses, n)
		assert.Len(t, res.ElapsedPerQuestion, n)
	}
}

func TestMachine_ResultIsACopy(t *testing.T) {
	m, _ := newTestMachine(t, 1, time.Hour)
	_ = m.Select(3)
	res, err := m.Submit()
	require.NoError(t, err)

	*res.Answers[0] = 0
	again, ok := m.Result()
	require.True(t, ok)
	assert.Equal(t, intPtr(3), again.Answers[0])
}
