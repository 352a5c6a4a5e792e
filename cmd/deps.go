package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/PratikChakraborty015/ai-interview-simulator/internal/ai"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/ai/gemini"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/interview"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/metrics"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/questionbank"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/secrets"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/session"
)

// simulator bundles everything a front end needs to run interviews.
type simulator struct {
	store     *session.Store
	evaluator *interview.Evaluator
	bank      *questionbank.Bank
	metrics   *metrics.Metrics
}

type warmer interface {
	WarmUp(ctx context.Context)
}

func newSimulator(ctx context.Context, config *Config, logger *zap.Logger) (*simulator, error) {
	generator, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		return nil, fmt.Errorf("building text generator: %w", err)
	}

	if w, ok := generator.(warmer); ok && config.AI.Gemini.WarmUp {
		w.WarmUp(ctx)
	}

	bank, err := loadBank(config.Interview.QuestionBank, logger)
	if err != nil {
		return nil, fmt.Errorf("loading question bank: %w", err)
	}

	m := metrics.New()

	questioner := interview.NewQuestioner(generator, interview.QuestionerConfig{
		Temperature: config.AI.Gemini.QuestionTemperature,
		Bank:        bank,
	}, m, logger.Named("questioner"))

	evaluator := interview.NewEvaluator(generator, m, logger.Named("evaluator"), config.AI.Gemini.MaxLogLength)

	store := session.NewStore(session.Deps{
		Questions: questioner,
		Scorer:    evaluator,
		Metrics:   m,
		Logger:    logger.Named("sessions"),
	})

	return &simulator{store: store, evaluator: evaluator, bank: bank, metrics: m}, nil
}

func newGenerator(ctx context.Context, cfg AIConfig, logger *zap.Logger) (ai.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.Provider {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, gemini.Options{
		Model:        cfg.Gemini.Model,
		Timeout:      cfg.Gemini.Timeout,
		MaxLogLength: cfg.Gemini.MaxLogLength,
	}, logger.Named("gemini"))
	if err != nil {
		return nil, err
	}

	return generator, nil
}

// loadBank returns nil when the bank is disabled.
func loadBank(cfg QuestionBankConfig, logger *zap.Logger) (*questionbank.Bank, error) {
	if !cfg.Enabled {
		logger.Info("question bank disabled")
		return nil, nil
	}

	bank, err := questionbank.Load(cfg.File)
	if err != nil {
		return nil, err
	}

	logger.Info("question bank loaded",
		zap.String("file", cfg.File),
		zap.Strings("interview_types", bank.Types()),
	)
	return bank, nil
}
