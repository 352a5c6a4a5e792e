// Package session keeps per-candidate interview state in memory and drives
// the question/answer rounds of each interview.
package session

import (
	"errors"
	"slices"
	"time"
)

// ErrSessionNotFound is returned for operations on an unknown candidate.
var ErrSessionNotFound = errors.New("interview session not found")

// Answer is an evaluated answer as stored in a session. The ideal answer
// produced by the evaluator is not kept.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Session is the state of one candidate's interview.
// len(AskedQuestions) == CurrentQuestionIndex-1 always holds.
type Session struct {
	ID                   string    `json:"id"`
	CandidateID          string    `json:"candidate_id"`
	InterviewType        string    `json:"interview_type"`
	CurrentQuestionIndex int       `json:"current_question_index"`
	AskedQuestions       []string  `json:"asked_questions"`
	Answers              []Answer  `json:"answers"`
	CreatedAt            time.Time `json:"created_at"`
}

// Question is an issued interview question.
type Question struct {
	Number int    `json:"question_number"`
	Text   string `json:"question"`
}

func (s *Session) clone() Session {
	c := *s
	c.AskedQuestions = slices.Clone(s.AskedQuestions)
	c.Answers = slices.Clone(s.Answers)
	if c.AskedQuestions == nil {
		c.AskedQuestions = []string{}
	}
	if c.Answers == nil {
		c.Answers = []Answer{}
	}
	return c
}
