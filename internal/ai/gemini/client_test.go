package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/genai"

	"github.com/PratikChakraborty015/ai-interview-simulator/internal/ai"
)

type fakeModels struct {
	mu    sync.Mutex
	calls []modelCall
	queue []fakeResponse
	block bool
}

type modelCall struct {
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

type fakeResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

func (f *fakeModels) enqueue(resp *genai.GenerateContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fakeResponse{resp: resp, err: err})
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	prompt := ""
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		prompt = contents[0].Parts[0].Text
	}
	f.calls = append(f.calls, modelCall{model: model, prompt: prompt, config: config})
	block := f.block
	var res fakeResponse
	if len(f.queue) > 0 {
		res = f.queue[0]
		f.queue = f.queue[1:]
	} else {
		res = fakeResponse{err: errors.New("unexpected call")}
	}
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return res.resp, res.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGeneratorReturnsJoinedText(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(textResponse("  first line ", "", "second line"), nil)

	g := newGenerator(models, Options{Model: "gemini-pro"}, zap.NewNop())

	output, err := g.Generate(context.Background(), "  prompt  ", ai.GenerateOptions{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output != "first line\nsecond line" {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(models.calls))
	}

	call := models.calls[0]
	if call.model != "gemini-pro" {
		t.Fatalf("unexpected model: %q", call.model)
	}
	if call.prompt != "prompt" {
		t.Fatalf("expected trimmed prompt, got %q", call.prompt)
	}
	if call.config != nil {
		t.Fatalf("expected no config without temperature override, got %+v", call.config)
	}
}

func TestGeneratorAppliesTemperature(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(textResponse("ok"), nil)

	g := newGenerator(models, Options{}, zap.NewNop())

	if _, err := g.Generate(context.Background(), "prompt", ai.WithTemperature(0.8)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := models.calls[0]
	if call.model != defaultModel {
		t.Fatalf("expected default model, got %q", call.model)
	}
	if call.config == nil || call.config.Temperature == nil {
		t.Fatal("expected temperature to be set")
	}
	if got := *call.config.Temperature; got != 0.8 {
		t.Fatalf("unexpected temperature: %v", got)
	}
}

func TestGeneratorWrapsFailures(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		err  error
	}{
		{
			name: "api error",
			err:  genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"},
		},
		{
			name: "empty response",
			resp: &genai.GenerateContentResponse{},
		},
		{
			name: "blank parts",
			resp: textResponse("   "),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models := &fakeModels{}
			models.enqueue(tt.resp, tt.err)

			g := newGenerator(models, Options{}, zap.NewNop())

			_, err := g.Generate(context.Background(), "prompt", ai.GenerateOptions{})
			if err == nil {
				t.Fatal("expected error")
			}

			var genErr *ai.GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("expected GenerationError, got %T", err)
			}
			if genErr.Provider != Provider {
				t.Fatalf("unexpected provider: %q", genErr.Provider)
			}
			if len(models.calls) != 1 {
				t.Fatalf("expected a single call without retries, got %d", len(models.calls))
			}
		})
	}
}

func TestGeneratorRejectsEmptyPrompt(t *testing.T) {
	models := &fakeModels{}
	g := newGenerator(models, Options{}, zap.NewNop())

	if _, err := g.Generate(context.Background(), "   ", ai.GenerateOptions{}); err == nil {
		t.Fatal("expected error for empty prompt")
	}
	if len(models.calls) != 0 {
		t.Fatalf("expected no backend call, got %d", len(models.calls))
	}
}

func TestGeneratorTimesOut(t *testing.T) {
	models := &fakeModels{block: true}
	g := newGenerator(models, Options{Timeout: 10 * time.Millisecond}, zap.NewNop())

	_, err := g.Generate(context.Background(), "prompt", ai.GenerateOptions{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestGeneratorWarmUpIgnoresFailure(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	models := &fakeModels{}
	models.enqueue(nil, errors.New("cold"))

	g := newGenerator(models, Options{Model: "m"}, zap.New(core))
	g.WarmUp(context.Background())

	if len(models.calls) != 1 || models.calls[0].prompt != warmUpPrompt {
		t.Fatalf("unexpected warm-up calls: %+v", models.calls)
	}

	entries := observed.FilterMessage("model warm-up failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected warm-up failure to be logged, got %d entries", len(entries))
	}
	if entries[0].ContextMap()["ai_model"] != "m" {
		t.Fatalf("expected model field on log entry, got %v", entries[0].ContextMap())
	}
}

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "  ", Options{}, nil); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
