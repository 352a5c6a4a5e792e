package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/PratikChakraborty015/ai-interview-simulator/internal/ai"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/session"
)

const (
	maxBodyBytes = 1 << 20

	msgSessionNotFound = "Interview session not found"
	msgAnswerRecorded  = "Answer recorded"
)

type questionRequest struct {
	UserID        string `json:"user_id"`
	InterviewType string `json:"interview_type"`
}

type answerRequest struct {
	UserID   string `json:"user_id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type submitResponse struct {
	Message    string        `json:"message"`
	Evaluation ai.Evaluation `json:"evaluation"`
}

type evaluateResponse struct {
	Evaluation ai.Evaluation `json:"evaluation"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"user_id": req.UserID, "interview_type": req.InterviewType}); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	question, err := s.askQuestion(r.Context(), req.UserID, req.InterviewType)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, question)
}

func (s *Server) askQuestion(ctx context.Context, userID, interviewType string) (session.Question, error) {
	return s.sessions.AskNext(ctx, userID, interviewType)
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"user_id": req.UserID, "question": req.Question}); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	evaluation, err := s.sessions.SubmitAnswer(r.Context(), req.UserID, req.Question, req.Answer)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, submitResponse{Message: msgAnswerRecorded, Evaluation: evaluation})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"question": req.Question}); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, evaluateResponse{Evaluation: s.scorer.Score(r.Context(), req.Question, req.Answer)})
}

func (s *Server) handleEndInterview(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if strings.TrimSpace(userID) == "" {
		s.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	summary, err := s.sessions.End(userID)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.sessions.Snapshot(r.PathValue("user_id"))
	if err != nil {
		s.writeSessionError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.metrics.GetSnapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}

// requireFields reports the first blank field among the known request fields.
func requireFields(fields map[string]string) error {
	for _, name := range []string{"user_id", "interview_type", "question"} {
		value, ok := fields[name]
		if ok && strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	return nil
}

func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrSessionNotFound) {
		s.writeError(w, http.StatusNotFound, msgSessionNotFound)
		return
	}
	s.logger.Error("session operation failed", zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}
