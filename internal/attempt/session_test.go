package attempt

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_ExpiresOnceAndSubmits(t *testing.T) {
	m, err := NewMachine(2, 3*time.Second)
	require.NoError(t, err)

	var calls int32
	done := make(chan Result, 1)
	s := NewSession("s1", "t1", m,
		WithTickInterval(5*time.Millisecond),
		WithOnExpire(func(_ *Session, res Result) {
			atomic.AddInt32(&calls, 1)
			done <- res
		}),
	)
	require.NoError(t, s.Select(1))
	s.Start()

	select {
	case res := <-done:
		assert.True(t, res.Forced)
		assert.Equal(t, intPtr(1), res.Answers[0])
	case <-time.After(2 * time.Second):
		t.Fatal("session did not expire")
	}

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, s.Snapshot().Submitted)

	_, err = s.Submit()
	assert.ErrorIs(t, err, ErrAttemptSubmitted)
}

func TestSession_ManualSubmitStopsTimer(t *testing.T) {
	m, err := NewMachine(3, time.Hour)
	require.NoError(t, err)

	var expired int32
	s := NewSession("s2", "t1", m,
		WithTickInterval(time.Millisecond),
		WithOnExpire(func(*Session, Result) { atomic.AddInt32(&expired, 1) }),
	)
	s.Start()

	res, err := s.Submit()
	require.NoError(t, err)
	assert.False(t, res.Forced)

	remaining := s.Snapshot().RemainingSeconds
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, remaining, s.Snapshot().RemainingSeconds)
	assert.Equal(t, int32(0), atomic.LoadInt32(&expired))
}

func TestSession_ConcurrentActionsAreSerialized(t *testing.T) {
	m, err := NewMachine(10, time.Hour)
	require.NoError(t, err)
	s := NewSession("s3", "t1", m, WithTickInterval(time.Millisecond))
	s.Start()
	defer s.Abandon()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Select(i % 4)
			_, _ = s.Navigate(i % 10)
			_, _ = s.ToggleMark()
			_ = s.Snapshot()
		}(i)
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Len(t, snap.Answers, 10)
	assert.Len(t, snap.Statuses, 10)
	assert.GreaterOrEqual(t, snap.CurrentIndex, 0)
	assert.Less(t, snap.CurrentIndex, 10)
}

func TestSession_AbandonIsIdempotent(t *testing.T) {
	m, err := NewMachine(1, time.Hour)
	require.NoError(t, err)
	s := NewSession("s4", "t1", m, WithTickInterval(time.Millisecond))
	s.Start()

	assert.NotPanics(t, func() {
		s.Abandon()
		s.Abandon()
	})
}
