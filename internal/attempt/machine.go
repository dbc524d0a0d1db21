package attempt

import (
	"errors"
	"fmt"
	"time"
)

// Status 答题过程中单题的展示状态，由 visited/hasAnswer/isMarked 推导
type Status string

const (
	StatusNotVisited        Status = "not_visited"
	StatusNotAnswered       Status = "not_answered"
	StatusAnswered          Status = "answered"
	StatusMarked            Status = "marked"
	StatusMarkedAndAnswered Status = "marked_and_answered"
)

// Notice 越界导航时给用户的非阻塞提示
type Notice string

const (
	NoticeNone          Notice = ""
	NoticeFirstQuestion Notice = "already_at_first_question"
	NoticeLastQuestion  Notice = "already_at_last_question"
)

var (
	ErrAttemptSubmitted = errors.New("attempt already submitted")
	ErrNoQuestions      = errors.New("attempt requires at least one question")
	ErrInvalidOption    = errors.New("option index out of range")
)

type questionFlags struct {
	visited   bool
	hasAnswer bool
	isMarked  bool
}

func (f questionFlags) status() Status {
	switch {
	case !f.visited:
		return StatusNotVisited
	case f.isMarked && f.hasAnswer:
		return StatusMarkedAndAnswered
	case f.isMarked:
		return StatusMarked
	case f.hasAnswer:
		return StatusAnswered
	default:
		return StatusNotAnswered
	}
}

// State 某一时刻的只读快照
type State struct {
	CurrentIndex       int       `json:"currentIndex"`
	Selected           *int      `json:"selected"`
	Answers            []*int    `json:"answers"`
	Statuses           []Status  `json:"statuses"`
	ElapsedPerQuestion []float64 `json:"elapsedPerQuestion"`
	RemainingSeconds   float64   `json:"remainingSeconds"`
	Submitted          bool      `json:"submitted"`
}

// Result 提交后冻结的答题数据，交给评分
type Result struct {
	Answers            []*int    `json:"answers"`
	Statuses           []Status  `json:"statuses"`
	ElapsedPerQuestion []float64 `json:"elapsedPerQuestion"`
	TotalTimeTaken     float64   `json:"totalTimeTaken"`
	Forced             bool      `json:"forced"`
}

// Machine 单次答题的状态机。非并发安全，并发场景由 Session 串行化。
type Machine struct {
	now func() time.Time

	optionCount int
	current     int
	selected    *int
	answers     []*int
	flags       []questionFlags
	elapsed     []float64
	remaining   float64

	startedAt     time.Time
	questionStart time.Time

	submitted bool
	result    *Result
}

type Option func(*Machine)

// WithClock 注入时钟，测试使用
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// WithOptionCount 每题选项数，默认 4
func WithOptionCount(n int) Option {
	return func(m *Machine) {
		m.optionCount = n
	}
}

func NewMachine(questionCount int, duration time.Duration, opts ...Option) (*Machine, error) {
	if questionCount <= 0 {
		return nil, ErrNoQuestions
	}
	m := &Machine{
		now:         time.Now,
		optionCount: 4,
		answers:     make([]*int, questionCount),
		flags:       make([]questionFlags, questionCount),
		elapsed:     make([]float64, questionCount),
		remaining:   duration.Seconds(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.startedAt = m.now()
	m.questionStart = m.startedAt
	// 第一题视为已访问
	m.flags[0].visited = true
	return m, nil
}

func (m *Machine) QuestionCount() int {
	return len(m.answers)
}

func (m *Machine) CurrentIndex() int {
	return m.current
}

func (m *Machine) Submitted() bool {
	return m.submitted
}

// Select 为当前题选择选项，离开该题时才写入 answers
func (m *Machine) Select(option int) error {
	if m.submitted {
		return ErrAttemptSubmitted
	}
	if option < 0 || option >= m.optionCount {
		return fmt.Errorf("%w: %d", ErrInvalidOption, option)
	}
	v := option
	m.selected = &v
	return nil
}

// ClearAnswer 清除当前题已保存的答案和选择，不改变标记；状态在下一次导航或提交时才同步
func (m *Machine) ClearAnswer() error {
	if m.submitted {
		return ErrAttemptSubmitted
	}
	m.selected = nil
	m.answers[m.current] = nil
	return nil
}

// Navigate 先结算当前题的耗时和答案，再跳转；越界时停在原题并返回提示
func (m *Machine) Navigate(index int) (Notice, error) {
	if m.submitted {
		return NoticeNone, ErrAttemptSubmitted
	}

	m.commitCurrent()

	if index < 0 {
		return NoticeFirstQuestion, nil
	}
	if index >= len(m.answers) {
		return NoticeLastQuestion, nil
	}

	m.current = index
	m.flags[index].visited = true
	m.selected = copyInt(m.answers[index])
	return NoticeNone, nil
}

func (m *Machine) Next() (Notice, error) {
	return m.Navigate(m.current + 1)
}

func (m *Machine) Previous() (Notice, error) {
	return m.Navigate(m.current - 1)
}

// ToggleMark 切换“待复查”标记后前进到下一题
func (m *Machine) ToggleMark() (Notice, error) {
	if m.submitted {
		return NoticeNone, ErrAttemptSubmitted
	}
	m.flags[m.current].isMarked = !m.flags[m.current].isMarked
	return m.Next()
}

// Tick 倒计时一秒；归零时强制提交并返回 true
func (m *Machine) Tick() bool {
	if m.submitted {
		return false
	}
	m.remaining--
	if m.remaining > 0 {
		return false
	}
	m.remaining = 0
	m.submit(true)
	return true
}

// Submit 结算当前题并冻结状态
func (m *Machine) Submit() (Result, error) {
	if m.submitted {
		return Result{}, ErrAttemptSubmitted
	}
	return m.submit(false), nil
}

// Result 返回冻结后的结果，未提交时 ok 为 false
func (m *Machine) Result() (Result, bool) {
	if m.result == nil {
		return Result{}, false
	}
	return cloneResult(*m.result), true
}

func (m *Machine) submit(forced bool) Result {
	m.commitCurrent()
	m.submitted = true
	m.selected = nil

	total := m.now().Sub(m.startedAt).Seconds()
	res := Result{
		Answers:            copyAnswers(m.answers),
		Statuses:           m.statuses(),
		ElapsedPerQuestion: append([]float64(nil), m.elapsed...),
		TotalTimeTaken:     total,
		Forced:             forced,
	}
	m.result = &res
	return cloneResult(res)
}

// commitCurrent 累计当前题耗时、写入所选答案并同步 hasAnswer，标记保持不变
func (m *Machine) commitCurrent() {
	now := m.now()
	m.elapsed[m.current] += now.Sub(m.questionStart).Seconds()
	m.questionStart = now

	m.answers[m.current] = copyInt(m.selected)
	m.flags[m.current].hasAnswer = m.selected != nil
}

func (m *Machine) statuses() []Status {
	out := make([]Status, len(m.flags))
	for i, f := range m.flags {
		out[i] = f.status()
	}
	return out
}

// Snapshot 返回当前状态的副本；当前题的耗时包含尚未结算的部分
func (m *Machine) Snapshot() State {
	elapsed := append([]float64(nil), m.elapsed...)
	if !m.submitted {
		elapsed[m.current] += m.now().Sub(m.questionStart).Seconds()
	}
	return State{
		CurrentIndex:       m.current,
		Selected:           copyInt(m.selected),
		Answers:            copyAnswers(m.answers),
		Statuses:           m.statuses(),
		ElapsedPerQuestion: elapsed,
		RemainingSeconds:   m.remaining,
		Submitted:          m.submitted,
	}
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyAnswers(in []*int) []*int {
	out := make([]*int, len(in))
	for i, a := range in {
		out[i] = copyInt(a)
	}
	return out
}

func cloneResult(r Result) Result {
	return Result{
		Answers:            copyAnswers(r.Answers),
		Statuses:           append([]Status(nil), r.Statuses...),
		ElapsedPerQuestion: append([]float64(nil), r.ElapsedPerQuestion...),
		TotalTimeTaken:     r.TotalTimeTaken,
		Forced:             r.Forced,
	}
}
