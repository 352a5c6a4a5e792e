package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/PratikChakraborty015/ai-interview-simulator/internal/ai"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/metrics"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/utils"
)

const (
	MinScore = 0
	MaxScore = 10

	sentinelPrefix      = "AI failed safely: "
	defaultMaxLogLength = 200
)

// ErrMalformedEvaluation is wrapped by every parse or shape failure of the
// backend's evaluation output.
var ErrMalformedEvaluation = errors.New("malformed evaluation output")

// evaluationRecord is the required shape of the backend's JSON answer.
type evaluationRecord struct {
	Score       *float64 `mapstructure:"score"`
	Feedback    string   `mapstructure:"feedback"`
	IdealAnswer string   `mapstructure:"ideal_answer"`
}

// Evaluator scores a candidate answer with the text backend. It never fails:
// any backend or parse error becomes a zero-score sentinel evaluation.
type Evaluator struct {
	generator ai.Generator
	metrics   *metrics.Metrics
	logger    *zap.Logger
	maxLogLen int
}

// NewEvaluator creates an Evaluator. A nil logger is replaced with a no-op one;
// non-positive maxLogLength uses the default preview length.
func NewEvaluator(generator ai.Generator, m *metrics.Metrics, logger *zap.Logger, maxLogLength int) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Evaluator{
		generator: generator,
		metrics:   m,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Score evaluates answer against question.
func (e *Evaluator) Score(ctx context.Context, question, answer string) ai.Evaluation {
	if e.generator == nil {
		return e.fallback(errors.New("text generator is not configured"))
	}

	raw, err := e.generator.Generate(ctx, buildEvaluationPrompt(question, answer), ai.GenerateOptions{})
	e.metrics.IncrementAPICall(err == nil)
	if err != nil {
		return e.fallback(err)
	}

	evaluation, err := parseEvaluation(raw)
	if err != nil {
		e.logger.Debug("unparseable evaluation output",
			zap.Int("response_length", utf8.RuneCountInString(raw)),
			zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
		)
		return e.fallback(err)
	}

	return evaluation
}

func (e *Evaluator) fallback(err error) ai.Evaluation {
	e.metrics.IncrementEvaluationFallbacks()
	e.logger.Warn("answer evaluation failed, returning sentinel result",
		zap.Error(err),
		zap.Bool("generation_error", ai.IsGenerationError(err)),
		zap.Bool("malformed_output", errors.Is(err, ErrMalformedEvaluation)),
	)
	return Sentinel(err)
}

// Sentinel is the evaluation returned in place of a failure.
func Sentinel(err error) ai.Evaluation {
	return ai.Evaluation{
		Score:       0,
		Feedback:    sentinelPrefix + err.Error(),
		IdealAnswer: "",
	}
}

func parseEvaluation(raw string) (ai.Evaluation, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return ai.Evaluation{}, fmt.Errorf("%w: %v", ErrMalformedEvaluation, err)
	}

	var record evaluationRecord
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &record,
		ErrorUnset: true,
	})
	if err != nil {
		return ai.Evaluation{}, fmt.Errorf("build evaluation decoder: %w", err)
	}

	if err := decoder.Decode(data); err != nil {
		return ai.Evaluation{}, fmt.Errorf("%w: %v", ErrMalformedEvaluation, err)
	}

	if record.Score == nil {
		return ai.Evaluation{}, fmt.Errorf("%w: score is null", ErrMalformedEvaluation)
	}

	score := *record.Score
	if score < MinScore || score > MaxScore {
		return ai.Evaluation{}, fmt.Errorf("%w: score %v is outside [%d, %d]", ErrMalformedEvaluation, score, MinScore, MaxScore)
	}

	feedback := strings.TrimSpace(record.Feedback)
	if feedback == "" {
		return ai.Evaluation{}, fmt.Errorf("%w: feedback is empty", ErrMalformedEvaluation)
	}

	return ai.Evaluation{
		Score:       int(math.Round(score)),
		Feedback:    feedback,
		IdealAnswer: strings.TrimSpace(record.IdealAnswer),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
