package metrics

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	SessionsStarted     int64     `json:"sessions_started"`
	SessionsEnded       int64     `json:"sessions_ended"`
	QuestionsIssued     int64     `json:"questions_issued"`
	AnswersEvaluated    int64     `json:"answers_evaluated"`
	QuestionFallbacks   int64     `json:"question_fallbacks"`
	EvaluationFallbacks int64     `json:"evaluation_fallbacks"`
	APICallsTotal       int64     `json:"api_calls_total"`
	APICallsSuccessful  int64     `json:"api_calls_successful"`
	LastUpdateTime      time.Time `json:"last_update_time"`
}

// Metrics counts interview activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	mu   sync.RWMutex
	data Snapshot
}

// New returns zeroed counters.
func New() *Metrics {
	return &Metrics{data: Snapshot{LastUpdateTime: time.Now()}}
}

func (m *Metrics) update(fn func(s *Snapshot)) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.data)
	m.data.LastUpdateTime = time.Now()
}

// IncrementSessionsStarted counts a newly created session.
func (m *Metrics) IncrementSessionsStarted() {
	m.update(func(s *Snapshot) { s.SessionsStarted++ })
}

// IncrementSessionsEnded counts a session closed with a full summary.
func (m *Metrics) IncrementSessionsEnded() {
	m.update(func(s *Snapshot) { s.SessionsEnded++ })
}

// IncrementQuestionsIssued counts a question appended to a session.
func (m *Metrics) IncrementQuestionsIssued() {
	m.update(func(s *Snapshot) { s.QuestionsIssued++ })
}

// IncrementAnswersEvaluated counts an answer recorded in a session.
func (m *Metrics) IncrementAnswersEvaluated() {
	m.update(func(s *Snapshot) { s.AnswersEvaluated++ })
}

// IncrementQuestionFallbacks counts a question served by a fallback tier.
func (m *Metrics) IncrementQuestionFallbacks() {
	m.update(func(s *Snapshot) { s.QuestionFallbacks++ })
}

// IncrementEvaluationFallbacks counts a sentinel evaluation.
func (m *Metrics) IncrementEvaluationFallbacks() {
	m.update(func(s *Snapshot) { s.EvaluationFallbacks++ })
}

// IncrementAPICall records one backend call and whether it succeeded.
func (m *Metrics) IncrementAPICall(success bool) {
	m.update(func(s *Snapshot) {
		s.APICallsTotal++
		if success {
			s.APICallsSuccessful++
		}
	})
}

// GetSnapshot returns a copy of the counters.
func (m *Metrics) GetSnapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data
}
