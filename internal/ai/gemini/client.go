package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/PratikChakraborty015/ai-interview-simulator/internal/ai"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/logger"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/utils"
)

const (
	Provider = "gemini"

	defaultModel        = "models/gemma-3-12b-it"
	defaultTimeout      = 30 * time.Second
	defaultMaxLogLength = 200
	warmUpPrompt        = "Say hello"
)

// contentModel is the subset of *genai.Models used by the generator.
type contentModel interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options configures a Generator.
type Options struct {
	Model        string
	Timeout      time.Duration
	MaxLogLength int
}

// Generator wraps the Google GenAI client to provide simple prompt-based interactions.
type Generator struct {
	models    contentModel
	modelName string
	timeout   time.Duration
	maxLogLen int
	logger    *zap.Logger
}

var _ ai.Generator = (*Generator)(nil)

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey string, opts Options, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, opts, log), nil
}

func newGenerator(models contentModel, opts Options, log *zap.Logger) *Generator {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	maxLogLen := opts.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &Generator{
		models:    models,
		modelName: model,
		timeout:   timeout,
		maxLogLen: maxLogLen,
		logger:    logger.WithCommonFields(log, Provider, model),
	}
}

// Generate sends the prompt to Gemini and returns the textual response.
// Every failure, including the per-call timeout, is reported as *ai.GenerationError.
func (g *Generator) Generate(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
	text, err := g.generateContent(ctx, prompt, buildConfig(opts))
	if err != nil {
		return "", &ai.GenerationError{Provider: Provider, Err: err}
	}
	return text, nil
}

// WarmUp issues a trivial request so the first interview call does not pay
// for model cold start. Failures are logged and otherwise ignored.
func (g *Generator) WarmUp(ctx context.Context) {
	if _, err := g.generateContent(ctx, warmUpPrompt, nil); err != nil {
		g.logger.Warn("model warm-up failed", zap.Error(err))
		return
	}
	g.logger.Info("model warmed up")
}

func buildConfig(opts ai.GenerateOptions) *genai.GenerateContentConfig {
	if opts.Temperature == nil {
		return nil
	}
	t := *opts.Temperature
	return &genai.GenerateContentConfig{Temperature: &t}
}

func (g *Generator) generateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, g.maxLogLen)),
		zap.Bool("temperature_override", config != nil && config.Temperature != nil),
	)

	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	output := collectText(resp)
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	g.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", utils.TruncateForLog(output, g.maxLogLen)),
	)

	return output, nil
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
