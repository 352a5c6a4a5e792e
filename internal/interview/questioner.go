package interview

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/PratikChakraborty015/ai-interview-simulator/internal/ai"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/metrics"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/questionbank"
)

// DegradedQuestion is returned when no question could be produced at all.
const DegradedQuestion = "Unable to generate question at the moment."

// DefaultQuestionTemperature keeps consecutive questions varied.
const DefaultQuestionTemperature float32 = 0.8

var errBankExhausted = errors.New("no unasked question in the bank")

// QuestionerConfig tunes question generation.
type QuestionerConfig struct {
	// Temperature for the primary attempt. Non-positive values use DefaultQuestionTemperature.
	Temperature float32
	// Bank is consulted after both backend attempts failed. Optional.
	Bank *questionbank.Bank
}

// Questioner produces the next interview question. It never fails: the chain
// is randomized backend call, plain backend call, question bank, DegradedQuestion.
type Questioner struct {
	generator   ai.Generator
	bank        *questionbank.Bank
	temperature float32
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewQuestioner creates a Questioner from generator and cfg. A nil generator
// makes every call fall through to the bank and DegradedQuestion.
func NewQuestioner(generator ai.Generator, cfg QuestionerConfig, m *metrics.Metrics, logger *zap.Logger) *Questioner {
	if logger == nil {
		logger = zap.NewNop()
	}

	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = DefaultQuestionTemperature
	}

	return &Questioner{
		generator:   generator,
		bank:        cfg.Bank,
		temperature: temperature,
		metrics:     m,
		logger:      logger,
	}
}

// NextQuestion returns question number `number` for an interview of the
// given type, avoiding everything in previous.
func (q *Questioner) NextQuestion(ctx context.Context, interviewType string, number int, previous []string) string {
	prompt := buildQuestionPrompt(interviewType, number, previous)

	text, attempts, err := ai.FirstSuccess(ctx,
		q.generate(prompt, ai.WithTemperature(q.temperature)),
		q.generate(prompt, ai.GenerateOptions{}),
		q.fromBank(interviewType, previous),
	)

	if attempts > 1 {
		q.metrics.IncrementQuestionFallbacks()
	}

	if err != nil {
		q.logger.Warn("question generation failed, returning degraded question",
			zap.Int("question_number", number),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return DegradedQuestion
	}

	if attempts > 1 {
		q.logger.Info("question produced by fallback tier",
			zap.Int("question_number", number),
			zap.Int("tier", attempts),
		)
	}

	return text
}

func (q *Questioner) generate(prompt string, opts ai.GenerateOptions) ai.Attempt {
	return func(ctx context.Context) (string, error) {
		if q.generator == nil {
			return "", errors.New("text generator is not configured")
		}
		text, err := q.generator.Generate(ctx, prompt, opts)
		q.metrics.IncrementAPICall(err == nil)
		return text, err
	}
}

func (q *Questioner) fromBank(interviewType string, previous []string) ai.Attempt {
	return func(context.Context) (string, error) {
		if text, ok := q.bank.Pick(interviewType, previous); ok {
			return text, nil
		}
		return "", errBankExhausted
	}
}
