package service

import (
	"context"
	"math"
	"testing"
	"time"

	"studytest_backend/internal/attempt"
	"studytest_backend/internal/config"
	"studytest_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type attemptFixture struct {
	svc      *AttemptService
	tests    *memTestStore
	attempts *memAttemptStore
	cache    *memSessionCache
}

func newAttemptFixture(t *testing.T, maxSessions int) *attemptFixture {
	t.Helper()
	f := &attemptFixture{
		tests:    newMemTestStore(),
		attempts: newMemAttemptStore(),
		cache:    newMemSessionCache(),
	}
	f.svc = NewAttemptService(f.tests, f.attempts, f.cache, config.AttemptConfig{
		SnapshotGrace: 10 * time.Minute,
		MaxSessions:   maxSessions,
	})
	t.Cleanup(f.svc.Shutdown)
	return f
}

func TestAttemptService_FullFlow(t *testing.T) {
	f := newAttemptFixture(t, 0)
	seeded := seedTest(f.tests, 4)
	ctx := context.Background()

	live, err := f.svc.Start(ctx, seeded.ID)
	require.NoError(t, err)
	require.Len(t, live.Questions, 4)
	assert.Equal(t, "Seeded question 1", live.Questions[0].Stem)
	assert.Equal(t, 60.0, live.State.RemainingSeconds)
	assert.True(t, f.cache.Has(live.SessionID))
	assert.Equal(t, 1, f.svc.ActiveCount())

	sid := live.SessionID

	// q1 正确，q2 错误，q3 标记未答，q4 正确
	_, err = f.svc.Select(ctx, sid, 0)
	require.NoError(t, err)
	_, err = f.svc.Step(ctx, sid, DirectionNext)
	require.NoError(t, err)
	_, err = f.svc.Select(ctx, sid, 0)
	require.NoError(t, err)
	_, err = f.svc.Step(ctx, sid, DirectionNext)
	require.NoError(t, err)
	view, err := f.svc.ToggleMark(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 3, view.State.CurrentIndex)
	assert.Equal(t, attempt.StatusMarked, view.State.Statuses[2])
	_, err = f.svc.Select(ctx, sid, 3)
	require.NoError(t, err)

	view, err = f.svc.Step(ctx, sid, DirectionNext)
	require.NoError(t, err)
	assert.Equal(t, attempt.NoticeLastQuestion, view.Notice)

	record, err := f.svc.Submit(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 2, record.CorrectCount)
	assert.Equal(t, 1, record.IncorrectCount)
	assert.Equal(t, 1, record.UnansweredCount)
	assert.InDelta(t, 50.0, record.ScorePercent, 1e-9)
	assert.False(t, record.IsTimeout)
	assert.Equal(t, seeded.ID, record.TestID)
	assert.Equal(t, 1, f.attempts.Count())
	assert.Equal(t, 0, f.svc.ActiveCount())

	// 结束后仍可从快照查到记录 ID
	done, err := f.svc.View(ctx, sid)
	require.NoError(t, err)
	assert.True(t, done.State.Submitted)
	assert.Equal(t, record.ID, done.AttemptID)

	_, err = f.svc.Select(ctx, sid, 1)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestAttemptService_BoundaryNavigationIsNotAnError(t *testing.T) {
	f := newAttemptFixture(t, 0)
	seeded := seedTest(f.tests, 2)
	ctx := context.Background()

	live, err := f.svc.Start(ctx, seeded.ID)
	require.NoError(t, err)

	view, err := f.svc.Step(ctx, live.SessionID, DirectionPrevious)
	require.NoError(t, err)
	assert.Equal(t, attempt.NoticeFirstQuestion, view.Notice)
	assert.Equal(t, 0, view.State.CurrentIndex)

	view, err = f.svc.Navigate(ctx, live.SessionID, 1)
	require.NoError(t, err)
	assert.Equal(t, attempt.NoticeNone, view.Notice)
	assert.Equal(t, 1, view.State.CurrentIndex)

	_, err = f.svc.Step(ctx, live.SessionID, Direction("sideways"))
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = f.svc.Select(ctx, live.SessionID, 9)
	assert.ErrorIs(t, err, attempt.ErrInvalidOption)
}

func TestAttemptService_DeletedTestIsSubmissionFault(t *testing.T) {
	f := newAttemptFixture(t, 0)
	seeded := seedTest(f.tests, 2)
	ctx := context.Background()

	live, err := f.svc.Start(ctx, seeded.ID)
	require.NoError(t, err)
	require.NoError(t, f.tests.Delete(seeded.ID))

	_, err = f.svc.Submit(ctx, live.SessionID)
	assert.ErrorIs(t, err, util.ErrAttemptSubmissionFail)
	assert.Equal(t, 0, f.attempts.Count())
	assert.Equal(t, 0, f.svc.ActiveCount())
	assert.False(t, f.cache.Has(live.SessionID))

	_, err = f.svc.View(ctx, live.SessionID)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestAttemptService_TimerExpiryPersistsForcedAttempt(t *testing.T) {
	f := newAttemptFixture(t, 0)
	f.svc.tickInterval = time.Millisecond
	seeded := seedTest(f.tests, 3)
	ctx := context.Background()

	live, err := f.svc.Start(ctx, seeded.ID)
	require.NoError(t, err)
	_, err = f.svc.Select(ctx, live.SessionID, 0)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return f.attempts.Count() == 1 }, 3*time.Second, 5*time.Millisecond)

	records, total, err := f.svc.ListAttempts(seeded.ID, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.True(t, records[0].IsTimeout)
	// 未离开的当前题答案在强制提交时写入
	require.NotNil(t, records[0].Answers[0])
	assert.Equal(t, 0, *records[0].Answers[0])
	assert.Equal(t, 1, records[0].CorrectCount)

	assert.Eventually(t, func() bool { return f.svc.ActiveCount() == 0 }, time.Second, 5*time.Millisecond)

	_, err = f.svc.Submit(ctx, live.SessionID)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestAttemptService_AbandonDiscardsState(t *testing.T) {
	f := newAttemptFixture(t, 0)
	seeded := seedTest(f.tests, 2)
	ctx := context.Background()

	live, err := f.svc.Start(ctx, seeded.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Abandon(ctx, live.SessionID))

	assert.Equal(t, 0, f.attempts.Count())
	assert.False(t, f.cache.Has(live.SessionID))
	assert.ErrorIs(t, f.svc.Abandon(ctx, live.SessionID), util.ErrSessionNotFound)
}

func TestAttemptService_MaxSessions(t *testing.T) {
	f := newAttemptFixture(t, 1)
	seeded := seedTest(f.tests, 1)
	ctx := context.Background()

	first, err := f.svc.Start(ctx, seeded.ID)
	require.NoError(t, err)
	_, err = f.svc.Start(ctx, seeded.ID)
	assert.ErrorIs(t, err, util.ErrTooManySessions)

	require.NoError(t, f.svc.Abandon(ctx, first.SessionID))
	_, err = f.svc.Start(ctx, seeded.ID)
	assert.NoError(t, err)
}

func TestAttemptService_RetryUsesEmbeddedTest(t *testing.T) {
	f := newAttemptFixture(t, 0)
	seeded := seedTest(f.tests, 2)
	ctx := context.Background()

	live, err := f.svc.Start(ctx, seeded.ID)
	require.NoError(t, err)
	record, err := f.svc.Submit(ctx, live.SessionID)
	require.NoError(t, err)

	// 原试卷删除后仍可重做
	require.NoError(t, f.tests.Delete(seeded.ID))

	again, err := f.svc.Retry(ctx, record.ID)
	require.NoError(t, err)
	assert.Len(t, again.Questions, 2)
	assert.NotEqual(t, live.SessionID, again.SessionID)

	_, err = f.svc.Select(ctx, again.SessionID, 0)
	require.NoError(t, err)
	second, err := f.svc.Submit(ctx, again.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, second.CorrectCount)
	assert.Equal(t, seeded.ID, second.TestID)

	_, err = f.svc.Retry(ctx, "missing")
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)
}

func TestAttemptService_StartUnknownTest(t *testing.T) {
	f := newAttemptFixture(t, 0)
	_, err := f.svc.Start(context.Background(), "missing")
	assert.ErrorIs(t, err, util.ErrTestNotFound)
}

func TestAttemptService_StartRejectsOversizedDuration(t *testing.T) {
	f := newAttemptFixture(t, 0)
	seeded := seedTest(f.tests, 1)
	seeded.DurationMinutes = math.MaxInt64 / 60
	require.NoError(t, f.tests.Update(seeded))

	_, err := f.svc.Start(context.Background(), seeded.ID)
	assert.ErrorIs(t, err, util.ErrInvalidInput)
	assert.Zero(t, f.svc.ActiveCount())
}
