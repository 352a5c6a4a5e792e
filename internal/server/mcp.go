package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/PratikChakraborty015/ai-interview-simulator/internal/session"
)

const mcpServerName = "ai-interview-simulator"

type getQuestionInput struct {
	UserID        string `json:"user_id" jsonschema:"candidate identity"`
	InterviewType string `json:"interview_type" jsonschema:"interview category, e.g. dsa, hr, system-design"`
}

type submitAnswerInput struct {
	UserID   string `json:"user_id" jsonschema:"candidate identity"`
	Question string `json:"question" jsonschema:"question being answered"`
	Answer   string `json:"answer" jsonschema:"candidate answer"`
}

type evaluateAnswerInput struct {
	Question string `json:"question" jsonschema:"question being answered"`
	Answer   string `json:"answer" jsonschema:"candidate answer"`
}

type endInterviewInput struct {
	UserID string `json:"user_id" jsonschema:"candidate identity"`
}

func (s *Server) mcpHandler() http.Handler {
	server := s.newMCPServer()
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
}

func (s *Server) newMCPServer() *mcp.Server {
	version := s.version
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(&mcp.Implementation{Name: mcpServerName, Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_question",
		Title:       "Get Question",
		Description: "Start or continue an interview and return the next question with its number.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in getQuestionInput) (*mcp.CallToolResult, any, error) {
		if err := requireFields(map[string]string{"user_id": in.UserID, "interview_type": in.InterviewType}); err != nil {
			return toolError(err.Error()), nil, nil
		}
		question, err := s.askQuestion(ctx, in.UserID, in.InterviewType)
		if err != nil {
			return s.toolSessionError(err), nil, nil
		}
		return s.toolJSON(question), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "submit_answer",
		Title:       "Submit Answer",
		Description: "Evaluate an answer and record it in the candidate's interview.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in submitAnswerInput) (*mcp.CallToolResult, any, error) {
		if err := requireFields(map[string]string{"user_id": in.UserID, "question": in.Question}); err != nil {
			return toolError(err.Error()), nil, nil
		}
		evaluation, err := s.sessions.SubmitAnswer(ctx, in.UserID, in.Question, in.Answer)
		if err != nil {
			return s.toolSessionError(err), nil, nil
		}
		return s.toolJSON(submitResponse{Message: msgAnswerRecorded, Evaluation: evaluation}), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "evaluate_answer",
		Title:       "Evaluate Answer",
		Description: "Score an answer without recording it in any interview.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in evaluateAnswerInput) (*mcp.CallToolResult, any, error) {
		if err := requireFields(map[string]string{"question": in.Question}); err != nil {
			return toolError(err.Error()), nil, nil
		}
		return s.toolJSON(evaluateResponse{Evaluation: s.scorer.Score(ctx, in.Question, in.Answer)}), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "end_interview",
		Title:       "End Interview",
		Description: "Summarize the candidate's interview. Needs at least two answers to close it.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, in endInterviewInput) (*mcp.CallToolResult, any, error) {
		if err := requireFields(map[string]string{"user_id": in.UserID}); err != nil {
			return toolError(err.Error()), nil, nil
		}
		summary, err := s.sessions.End(in.UserID)
		if err != nil {
			return s.toolSessionError(err), nil, nil
		}
		return s.toolJSON(summary), nil, nil
	})

	return server
}

func (s *Server) toolJSON(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode tool result", zap.Error(err))
		return toolError("failed to encode result")
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}
}

func (s *Server) toolSessionError(err error) *mcp.CallToolResult {
	if errors.Is(err, session.ErrSessionNotFound) {
		return toolError(msgSessionNotFound)
	}
	s.logger.Error("session operation failed", zap.Error(err))
	return toolError("internal error")
}

func toolError(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
		IsError: true,
	}
}
