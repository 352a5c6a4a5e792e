package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PratikChakraborty015/ai-interview-simulator/internal/ai"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/logger"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/metrics"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/scoring"
)

// QuestionSource produces the next question for a session. It must not fail.
type QuestionSource interface {
	NextQuestion(ctx context.Context, interviewType string, number int, previous []string) string
}

// AnswerScorer evaluates one answer. It must not fail.
type AnswerScorer interface {
	Score(ctx context.Context, question, answer string) ai.Evaluation
}

// Deps aggregates the collaborators of a Store.
type Deps struct {
	Questions QuestionSource
	Scorer    AnswerScorer
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// Store owns every live interview session, keyed by candidate identity.
//
// The map lock only guards lookup, insertion and removal of entries. Each
// entry has its own lock for read-modify-write of the session, so candidates
// never wait on each other. Backend calls run with no lock held; their results
// are appended afterwards.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry

	questions QuestionSource
	scorer    AnswerScorer
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

type entry struct {
	mu      sync.Mutex
	session *Session
	// closed is set under mu right before the entry leaves the map.
	closed bool
}

// NewStore creates an empty Store. A nil Logger is replaced with a no-op one.
func NewStore(deps Deps) *Store {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Store{
		entries:   make(map[string]*entry),
		questions: deps.Questions,
		scorer:    deps.Scorer,
		metrics:   deps.Metrics,
		logger:    log,
		now:       time.Now,
	}
}

func (s *Store) lookup(candidateID string) (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[candidateID]
	return e, ok
}

// CreateOrFetch returns the session of candidateID, creating it when absent.
// The interview type of an existing session is never changed.
func (s *Store) CreateOrFetch(candidateID, interviewType string) Session {
	for {
		s.mu.Lock()
		e, ok := s.entries[candidateID]
		if !ok {
			e = &entry{session: &Session{
				ID:                   uuid.Must(uuid.NewV7()).String(),
				CandidateID:          candidateID,
				InterviewType:        interviewType,
				CurrentQuestionIndex: 1,
				CreatedAt:            s.now().UTC(),
			}}
			s.entries[candidateID] = e
			snapshot := e.session.clone()
			s.mu.Unlock()

			s.metrics.IncrementSessionsStarted()
			s.logger.Info("interview session created",
				append(logger.SessionFields(candidateID, interviewType), zap.String("session_id", snapshot.ID))...)
			return snapshot
		}
		s.mu.Unlock()

		e.mu.Lock()
		if e.closed {
			// ended concurrently; the entry is already gone from the map
			e.mu.Unlock()
			continue
		}
		snapshot := e.session.clone()
		e.mu.Unlock()
		return snapshot
	}
}

// IssueQuestion generates the next question for candidateID, records it and
// returns it with its number.
func (s *Store) IssueQuestion(ctx context.Context, candidateID string) (Question, error) {
	e, ok := s.lookup(candidateID)
	if !ok {
		return Question{}, ErrSessionNotFound
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return Question{}, ErrSessionNotFound
	}
	interviewType := e.session.InterviewType
	number := e.session.CurrentQuestionIndex
	previous := append([]string(nil), e.session.AskedQuestions...)
	e.mu.Unlock()

	// A caller that goes away must not leave a degraded question behind; the
	// backend call is still bounded by the generator's own timeout.
	text := s.questions.NextQuestion(context.WithoutCancel(ctx), interviewType, number, previous)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return Question{}, ErrSessionNotFound
	}

	// A concurrent issue for the same candidate may have advanced the index
	// while the backend ran. Numbers follow append order so they stay
	// consecutive, even if this one differs from the number in the prompt.
	number = e.session.CurrentQuestionIndex
	e.session.AskedQuestions = append(e.session.AskedQuestions, text)
	e.session.CurrentQuestionIndex++

	s.metrics.IncrementQuestionsIssued()
	s.logger.Debug("question issued",
		append(logger.SessionFields(candidateID, interviewType), zap.Int("question_number", number))...)

	return Question{Number: number, Text: text}, nil
}

// AskNext creates the session of candidateID when absent and issues its next
// question. An End racing between the two steps is retried once on a fresh
// session.
func (s *Store) AskNext(ctx context.Context, candidateID, interviewType string) (Question, error) {
	for attempt := 0; ; attempt++ {
		s.CreateOrFetch(candidateID, interviewType)
		question, err := s.IssueQuestion(ctx, candidateID)
		if errors.Is(err, ErrSessionNotFound) && attempt == 0 {
			continue
		}
		return question, err
	}
}

// SubmitAnswer evaluates answer and appends it to the session. Unknown
// candidates fail with ErrSessionNotFound before the backend is called.
func (s *Store) SubmitAnswer(ctx context.Context, candidateID, question, answer string) (ai.Evaluation, error) {
	e, ok := s.lookup(candidateID)
	if !ok {
		return ai.Evaluation{}, ErrSessionNotFound
	}

	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return ai.Evaluation{}, ErrSessionNotFound
	}

	// Detached for the same reason as in IssueQuestion: a cancelled caller
	// would otherwise record a zero-score sentinel.
	evaluation := s.scorer.Score(context.WithoutCancel(ctx), question, answer)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ai.Evaluation{}, ErrSessionNotFound
	}

	e.session.Answers = append(e.session.Answers, Answer{
		Question: question,
		Answer:   answer,
		Score:    evaluation.Score,
		Feedback: evaluation.Feedback,
	})

	s.metrics.IncrementAnswersEvaluated()
	s.logger.Debug("answer recorded",
		append(logger.SessionFields(candidateID, e.session.InterviewType),
			zap.Int("score", evaluation.Score),
			zap.Int("answers", len(e.session.Answers)),
		)...)

	return evaluation, nil
}

// End summarizes the interview of candidateID and removes the session.
// With fewer than scoring.MinAnswers answers an insufficient-data summary is
// returned and the session stays so the candidate can keep answering.
func (s *Store) End(candidateID string) (scoring.Summary, error) {
	e, ok := s.lookup(candidateID)
	if !ok {
		return scoring.Summary{}, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return scoring.Summary{}, ErrSessionNotFound
	}

	fields := logger.SessionFields(candidateID, e.session.InterviewType)

	if len(e.session.Answers) < scoring.MinAnswers {
		s.logger.Info("not enough answers to end interview",
			append(fields, zap.Int("answers", len(e.session.Answers)))...)
		return scoring.Insufficient(len(e.session.Answers)), nil
	}

	answers := make([]scoring.Answer, 0, len(e.session.Answers))
	for _, a := range e.session.Answers {
		answers = append(answers, scoring.Answer{Question: a.Question, Score: a.Score})
	}
	summary := scoring.Summarize(answers)

	e.closed = true
	s.mu.Lock()
	if s.entries[candidateID] == e {
		delete(s.entries, candidateID)
	}
	s.mu.Unlock()

	s.metrics.IncrementSessionsEnded()
	s.logger.Info("interview ended",
		append(fields,
			zap.Int("total_questions", summary.TotalQuestions),
			zap.Float64("average_score", *summary.AverageScore),
			zap.String("verdict", string(summary.Verdict)),
		)...)

	return summary, nil
}

// Snapshot returns a copy of the session of candidateID.
func (s *Store) Snapshot(candidateID string) (Session, error) {
	e, ok := s.lookup(candidateID)
	if !ok {
		return Session{}, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return Session{}, ErrSessionNotFound
	}
	return e.session.clone(), nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
