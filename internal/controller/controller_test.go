package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"studytest_backend/internal/config"
	"studytest_backend/internal/model"
	"studytest_backend/internal/repository"
	"studytest_backend/internal/service"
	"studytest_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tests struct {
	mu   sync.Mutex
	data map[string]model.Test
}

func (s *tests) Create(t *model.Test) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = model.GenerateUUID()
	}
	s.data[t.ID] = t.Clone()
	return nil
}

func (s *tests) FindByID(id string) (*model.Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.data[id]
	if !ok {
		return nil, util.ErrTestNotFound
	}
	c := t.Clone()
	return &c, nil
}

func (s *tests) List(string, int, int) ([]*model.Test, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Test
	for _, t := range s.data {
		c := t.Clone()
		out = append(out, &c)
	}
	return out, int64(len(out)), nil
}

func (s *tests) Update(t *model.Test) error { return s.Create(t) }

func (s *tests) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return util.ErrTestNotFound
	}
	delete(s.data, id)
	return nil
}

type attempts struct {
	mu   sync.Mutex
	data map[string]model.TestAttempt
}

func (s *attempts) Create(a *model.TestAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = model.GenerateUUID()
	}
	s.data[a.ID] = *a
	return nil
}

func (s *attempts) FindByID(id string) (*model.TestAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.data[id]
	if !ok {
		return nil, util.ErrAttemptNotFound
	}
	return &a, nil
}

func (s *attempts) List(string, int, int) ([]*model.TestAttempt, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.TestAttempt
	for _, a := range s.data {
		a := a
		out = append(out, &a)
	}
	return out, int64(len(out)), nil
}

func (s *attempts) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return util.ErrAttemptNotFound
	}
	delete(s.data, id)
	return nil
}

type noCache struct{}

func (noCache) Save(context.Context, *repository.SessionCheckpoint, time.Duration) error { return nil }
func (noCache) Load(context.Context, string) (*repository.SessionCheckpoint, error)      { return nil, nil }
func (noCache) Delete(context.Context, string) error                                    { return nil }

type harness struct {
	router   *gin.Engine
	tests    *tests
	attempts *attempts
	svc      *service.AttemptService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &harness{
		tests:    &tests{data: make(map[string]model.Test)},
		attempts: &attempts{data: make(map[string]model.TestAttempt)},
	}
	testSvc := service.NewTestService(h.tests)
	importSvc := service.NewImportService(testSvc, nil, nil, config.ParserConfig{MissingAnswerPolicy: config.PolicyDefaultFirst})
	h.svc = service.NewAttemptService(h.tests, h.attempts, noCache{}, config.AttemptConfig{SnapshotGrace: time.Minute})
	t.Cleanup(h.svc.Shutdown)

	tc := NewTestController(testSvc)
	ic := NewImportController(importSvc)
	ac := NewAttemptController(h.svc)
	hc := NewHealthController(nil, nil, h.svc)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/health", hc.HealthCheck)
	api.POST("/tests", tc.CreateTest)
	api.GET("/tests/:id", tc.GetTest)
	api.PUT("/tests/:id/questions/:index", tc.ReplaceQuestion)
	api.DELETE("/tests/:id", tc.DeleteTest)
	api.POST("/tests/generate", ic.GenerateTest)
	api.POST("/tests/:id/attempts", ac.StartAttempt)
	api.POST("/imports/parse", ic.PreviewImport)
	api.POST("/imports", ic.Import)
	api.GET("/imports/archive", ic.GetArchivedImport)
	api.GET("/attempts/live/:sid", ac.GetLiveAttempt)
	api.POST("/attempts/live/:sid/select", ac.Select)
	api.POST("/attempts/live/:sid/navigate", ac.Navigate)
	api.POST("/attempts/live/:sid/mark", ac.ToggleMark)
	api.POST("/attempts/live/:sid/submit", ac.Submit)
	api.DELETE("/attempts/live/:sid", ac.Abandon)
	api.GET("/attempts", ac.ListAttempts)
	api.GET("/attempts/:id", ac.GetAttempt)
	api.DELETE("/attempts/:id", ac.DeleteAttempt)
	api.POST("/attempts/:id/retry", ac.RetryAttempt)
	h.router = r
	return h
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (h *harness) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v))
}

const sampleImport = "1. What is 2+2?\na) 3 b) 4 c) 5 d) 6\nAnswer: b\nExplanation: Basic math.\nSubject: Math | Topic: Arithmetic\n" +
	"2. What is the capital of France?\na) Paris b) Rome c) Madrid d) Oslo\nAnswer: a\n"

func (h *harness) importTest(t *testing.T) model.Test {
	t.Helper()
	code, env := h.do(t, http.MethodPost, "/api/imports", map[string]interface{}{
		"name":            "Quick quiz",
		"text":            sampleImport,
		"durationMinutes": 5,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var res struct {
		Test   model.Test `json:"test"`
		Source string     `json:"source"`
	}
	decode(t, env.Data, &res)
	require.Equal(t, model.SourceImport, res.Source)
	return res.Test
}

func TestHealthCheck(t *testing.T) {
	h := newHarness(t)
	code, env := h.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, code)

	var data map[string]interface{}
	decode(t, env.Data, &data)
	assert.Equal(t, "ok", data["status"])
	assert.EqualValues(t, 0, data["activeSessions"])
}

func TestImportEndpoints(t *testing.T) {
	h := newHarness(t)

	code, env := h.do(t, http.MethodPost, "/api/imports/parse", map[string]string{"text": sampleImport})
	require.Equal(t, http.StatusOK, code)
	var preview struct {
		Questions []model.Question `json:"questions"`
		Segments  []struct {
			Accepted bool `json:"accepted"`
		} `json:"segments"`
	}
	decode(t, env.Data, &preview)
	require.Len(t, preview.Questions, 2)
	assert.Equal(t, "What is 2+2?", preview.Questions[0].Stem)
	assert.Len(t, preview.Segments, 2)
	assert.Empty(t, h.tests.data)

	test := h.importTest(t)
	assert.Len(t, test.Questions, 2)
	assert.Equal(t, "Arithmetic", test.Questions[0].Topic)

	code, env = h.do(t, http.MethodPost, "/api/imports", map[string]interface{}{
		"name":            "Nothing",
		"text":            "plain prose with no numbering",
		"durationMinutes": 5,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, util.ErrNoQuestionsParsed.Error(), env.Message)
	assert.NotEmpty(t, env.Data)

	code, _ = h.do(t, http.MethodPost, "/api/imports", map[string]interface{}{"text": sampleImport})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(t, http.MethodGet, "/api/imports/archive", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = h.do(t, http.MethodGet, "/api/imports/archive?key=imports/2024/01/01/x.txt", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = h.do(t, http.MethodPost, "/api/tests/generate", map[string]interface{}{
		"name": "AI", "durationMinutes": 5, "topic": "Rivers",
	})
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestImportUpload(t *testing.T) {
	h := newHarness(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Uploaded"))
	require.NoError(t, mw.WriteField("durationMinutes", "10"))
	fw, err := mw.CreateFormFile("file", "questions.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte(sampleImport))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, h.tests.data, 1)
}

func TestTestEndpoints(t *testing.T) {
	h := newHarness(t)

	code, env := h.do(t, http.MethodPost, "/api/tests", map[string]interface{}{
		"name":            "Manual",
		"durationMinutes": 10,
		"questions": []map[string]interface{}{
			{"stem": "Largest ocean?", "options": []string{"Pacific", "Atlantic"}, "correctIndex": 0},
		},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created model.Test
	decode(t, env.Data, &created)
	assert.Len(t, created.Questions[0].Options, model.OptionCount)

	code, env = h.do(t, http.MethodPut, "/api/tests/"+created.ID+"/questions/0", map[string]interface{}{
		"stem": "Smallest ocean?", "options": []string{"Arctic", "Indian", "Southern", "Pacific"}, "correctIndex": 0,
	})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = h.do(t, http.MethodPut, "/api/tests/"+created.ID+"/questions/5", map[string]interface{}{
		"stem": "Out of range", "options": []string{"a", "b"},
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(t, http.MethodPut, "/api/tests/"+created.ID+"/questions/x", map[string]interface{}{"stem": "Bad index"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(t, http.MethodPost, "/api/tests", map[string]interface{}{"name": "No questions", "durationMinutes": 10})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(t, http.MethodGet, "/api/tests/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = h.do(t, http.MethodDelete, "/api/tests/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAttemptEndpoints(t *testing.T) {
	h := newHarness(t)
	test := h.importTest(t)

	code, env := h.do(t, http.MethodPost, "/api/tests/"+test.ID+"/attempts", nil)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var live service.LiveAttemptView
	decode(t, env.Data, &live)
	require.Len(t, live.Questions, 2)
	base := "/api/attempts/live/" + live.SessionID

	// 第一题之前越界：200 + notice
	code, env = h.do(t, http.MethodPost, base+"/navigate", map[string]string{"direction": "previous"})
	require.Equal(t, http.StatusOK, code)
	decode(t, env.Data, &live)
	assert.Equal(t, "already_at_first_question", string(live.Notice))

	code, _ = h.do(t, http.MethodPost, base+"/select", map[string]int{"option": 1})
	require.Equal(t, http.StatusOK, code)

	code, _ = h.do(t, http.MethodPost, base+"/select", map[string]int{"option": 7})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(t, http.MethodPost, base+"/select", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = h.do(t, http.MethodPost, base+"/navigate", map[string]int{"index": 1})
	require.Equal(t, http.StatusOK, code)
	decode(t, env.Data, &live)
	assert.Equal(t, 1, live.State.CurrentIndex)
	assert.Equal(t, "answered", string(live.State.Statuses[0]))

	code, _ = h.do(t, http.MethodPost, base+"/navigate", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = h.do(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var record model.TestAttempt
	decode(t, env.Data, &record)
	assert.Equal(t, 1, record.CorrectCount)
	assert.Equal(t, 1, record.UnansweredCount)
	assert.InDelta(t, 50.0, record.ScorePercent, 1e-9)

	code, _ = h.do(t, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = h.do(t, http.MethodGet, "/api/attempts/"+record.ID, nil)
	require.Equal(t, http.StatusOK, code)
	var stored model.TestAttempt
	decode(t, env.Data, &stored)
	assert.Equal(t, test.Questions[0].Stem, stored.FullTest.Questions[0].Stem)

	code, _ = h.do(t, http.MethodPost, "/api/attempts/"+record.ID+"/retry", nil)
	assert.Equal(t, http.StatusCreated, code)

	code, env = h.do(t, http.MethodGet, "/api/attempts?page=1&limit=500", nil)
	require.Equal(t, http.StatusOK, code)
	var page util.PageResponse
	decode(t, env.Data, &page)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, 100, page.Limit)

	code, _ = h.do(t, http.MethodDelete, "/api/attempts/"+record.ID, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = h.do(t, http.MethodGet, "/api/attempts/"+record.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = h.do(t, http.MethodPost, "/api/attempts/"+record.ID+"/retry", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSubmitAfterTestDeletedIsConflict(t *testing.T) {
	h := newHarness(t)
	test := h.importTest(t)

	code, env := h.do(t, http.MethodPost, "/api/tests/"+test.ID+"/attempts", nil)
	require.Equal(t, http.StatusCreated, code)
	var live service.LiveAttemptView
	decode(t, env.Data, &live)

	code, _ = h.do(t, http.MethodDelete, "/api/tests/"+test.ID, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = h.do(t, http.MethodPost, "/api/attempts/live/"+live.SessionID+"/submit", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, env.Message, util.ErrAttemptSubmissionFail.Error())
	assert.Empty(t, h.attempts.data)

	code, _ = h.do(t, http.MethodGet, "/api/attempts/live/"+live.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAbandonUnknownSession(t *testing.T) {
	h := newHarness(t)
	code, _ := h.do(t, http.MethodDelete, "/api/attempts/live/nope", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
