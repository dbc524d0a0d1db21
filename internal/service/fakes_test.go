package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"studytest_backend/internal/model"
	"studytest_backend/internal/repository"
	"studytest_backend/internal/util"
)

type memTestStore struct {
	mu    sync.Mutex
	tests map[string]*model.Test
}

func newMemTestStore() *memTestStore {
	return &memTestStore{tests: make(map[string]*model.Test)}
}

func (m *memTestStore) Create(test *model.Test) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if test.ID == "" {
		test.ID = model.GenerateUUID()
	}
	c := test.Clone()
	m.tests[test.ID] = &c
	return nil
}

func (m *memTestStore) FindByID(id string) (*model.Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tests[id]
	if !ok {
		return nil, util.ErrTestNotFound
	}
	c := t.Clone()
	return &c, nil
}

func (m *memTestStore) List(name string, page, limit int) ([]*model.Test, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Test
	for _, t := range m.tests {
		c := t.Clone()
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (m *memTestStore) Update(test *model.Test) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[test.ID]; !ok {
		return util.ErrTestNotFound
	}
	c := test.Clone()
	m.tests[test.ID] = &c
	return nil
}

func (m *memTestStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[id]; !ok {
		return util.ErrTestNotFound
	}
	delete(m.tests, id)
	return nil
}

type memAttemptStore struct {
	mu       sync.Mutex
	attempts map[string]*model.TestAttempt
}

func newMemAttemptStore() *memAttemptStore {
	return &memAttemptStore{attempts: make(map[string]*model.TestAttempt)}
}

func (m *memAttemptStore) Create(a *model.TestAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = model.GenerateUUID()
	}
	c := *a
	m.attempts[a.ID] = &c
	return nil
}

func (m *memAttemptStore) FindByID(id string) (*model.TestAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return nil, util.ErrAttemptNotFound
	}
	c := *a
	return &c, nil
}

func (m *memAttemptStore) List(testID string, page, limit int) ([]*model.TestAttempt, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.TestAttempt
	for _, a := range m.attempts {
		if testID == "" || a.TestID == testID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memAttemptStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attempts[id]; !ok {
		return util.ErrAttemptNotFound
	}
	delete(m.attempts, id)
	return nil
}

func (m *memAttemptStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.attempts)
}

type memSessionCache struct {
	mu   sync.Mutex
	data map[string]repository.SessionCheckpoint
	ttls map[string]time.Duration
}

func newMemSessionCache() *memSessionCache {
	return &memSessionCache{
		data: make(map[string]repository.SessionCheckpoint),
		ttls: make(map[string]time.Duration),
	}
}

func (m *memSessionCache) Save(_ context.Context, cp *repository.SessionCheckpoint, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[cp.SessionID] = *cp
	m.ttls[cp.SessionID] = ttl
	return nil
}

func (m *memSessionCache) Load(_ context.Context, id string) (*repository.SessionCheckpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp, ok := m.data[id]
	if !ok {
		return nil, nil
	}
	return &cp, nil
}

func (m *memSessionCache) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	delete(m.ttls, id)
	return nil
}

func (m *memSessionCache) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[id]
	return ok
}

type fakeGenerator struct {
	enabled   bool
	questions []model.Question
	err       error
	calls     int
	lastReq   GenerateRequest
}

func (f *fakeGenerator) Enabled() bool { return f.enabled }

func (f *fakeGenerator) GenerateQuestions(_ context.Context, req GenerateRequest) ([]model.Question, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.questions, nil
}

type fakeArchiver struct {
	texts []string
	err   error
}

func (f *fakeArchiver) ArchiveImport(_ context.Context, text string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.texts = append(f.texts, text)
	return fmt.Sprintf("imports/test/%d.txt", len(f.texts)), nil
}

func (f *fakeArchiver) ReadImport(_ context.Context, key string) (string, error) {
	var n int
	if _, err := fmt.Sscanf(key, "imports/test/%d.txt", &n); err != nil || n < 1 || n > len(f.texts) {
		return "", os.ErrNotExist
	}
	return f.texts[n-1], nil
}

func sampleQuestion(stem string, correct int) model.Question {
	q := model.Question{Stem: stem, Options: []string{"w", "x", "y", "z"}, CorrectIndex: correct}
	q.Normalize()
	return q
}

func seedTest(store *memTestStore, n int) *model.Test {
	t := &model.Test{
		Name:             "Seeded",
		DurationMinutes:  1,
		MarksPerQuestion: 1,
		Source:           model.SourceManual,
	}
	for i := 0; i < n; i++ {
		t.Questions = append(t.Questions, sampleQuestion(fmt.Sprintf("Seeded question %d", i+1), i%4))
	}
	_ = store.Create(t)
	return t
}
