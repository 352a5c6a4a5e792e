package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PratikChakraborty015/ai-interview-simulator/internal/ai"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/scoring"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/session"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func TestConfigDefaults(t *testing.T) {
	v := newTestViper()
	require.NoError(t, readConfig(v, ""))

	config, err := getConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "gemini", config.AI.Provider)
	assert.Equal(t, "models/gemma-3-12b-it", config.AI.Gemini.Model)
	assert.Equal(t, 30*time.Second, config.AI.Gemini.Timeout)
	assert.InDelta(t, 0.8, config.AI.Gemini.QuestionTemperature, 1e-6)
	assert.True(t, config.AI.Gemini.WarmUp)
	assert.Equal(t, ":8000", config.Server.Address)
	assert.Equal(t, 90*time.Second, config.Server.WriteTimeout)
	assert.True(t, config.Interview.QuestionBank.Enabled)
}

func TestConfigFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
ai:
  gemini:
    model: models/gemini-2.0-flash
    timeout: 5s
    question-temperature: 0.5
    warm-up: false
server:
  address: 127.0.0.1:9000
  shutdown-timeout: 2s
interview:
  question-bank:
    enabled: false
    file: bank.yaml
`), 0o600))

	v := newTestViper()
	require.NoError(t, readConfig(v, file))

	config, err := getConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "gemini", config.AI.Provider)
	assert.Equal(t, "models/gemini-2.0-flash", config.AI.Gemini.Model)
	assert.Equal(t, 5*time.Second, config.AI.Gemini.Timeout)
	assert.InDelta(t, 0.5, config.AI.Gemini.QuestionTemperature, 1e-6)
	assert.False(t, config.AI.Gemini.WarmUp)
	assert.Equal(t, "127.0.0.1:9000", config.Server.Address)
	assert.Equal(t, 2*time.Second, config.Server.ShutdownTimeout)
	assert.False(t, config.Interview.QuestionBank.Enabled)
	assert.Equal(t, "bank.yaml", config.Interview.QuestionBank.File)
}

func TestReadConfigMissingExplicitFile(t *testing.T) {
	err := readConfig(newTestViper(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestNewGeneratorValidation(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := newGenerator(context.Background(), AIConfig{Provider: "openai"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported ai provider")

	_, err = newGenerator(context.Background(), AIConfig{Provider: "gemini"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoadBank(t *testing.T) {
	bank, err := loadBank(QuestionBankConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, bank)

	bank, err = loadBank(QuestionBankConfig{Enabled: true}, zap.NewNop())
	require.NoError(t, err)
	assert.Contains(t, bank.Types(), "dsa")

	_, err = loadBank(QuestionBankConfig{Enabled: true, File: filepath.Join(t.TempDir(), "nope.yaml")}, zap.NewNop())
	assert.Error(t, err)
}

func TestRedactedHidesAPIKey(t *testing.T) {
	config := &Config{AI: AIConfig{Gemini: GeminiConfig{APIKey: "secret"}}}

	assert.Equal(t, "***", redacted(config).AI.Gemini.APIKey)
	assert.Equal(t, "secret", config.AI.Gemini.APIKey)
}

type fixedQuestions struct{}

func (fixedQuestions) NextQuestion(context.Context, string, int, []string) string {
	return "What is a mutex?"
}

type fixedScorer struct{ score int }

func (f fixedScorer) Score(context.Context, string, string) ai.Evaluation {
	return ai.Evaluation{Score: f.score, Feedback: "ok", IdealAnswer: "A lock."}
}

func TestHandleActionEndAndQuit(t *testing.T) {
	store := session.NewStore(session.Deps{Questions: fixedQuestions{}, Scorer: fixedScorer{score: 8}})
	store.CreateOrFetch("cli", "dsa")

	var out bytes.Buffer
	err := handleAction(context.Background(), PromptEndInterview, store, "cli", &out)
	require.NoError(t, err, "insufficient data keeps the interview going")
	assert.Contains(t, out.String(), scoring.VerdictInsufficientData.Message())

	for i := 0; i < 2; i++ {
		_, err := store.SubmitAnswer(context.Background(), "cli", "What is a mutex?", "A lock")
		require.NoError(t, err)
	}

	out.Reset()
	err = handleAction(context.Background(), PromptEndInterview, store, "cli", &out)
	assert.ErrorIs(t, err, errExit)
	assert.Contains(t, out.String(), "Average score: 8.00")
	assert.Contains(t, out.String(), "- Good understanding of What is a mutex?")

	assert.ErrorIs(t, handleAction(context.Background(), PromptQuit, store, "cli", &out), errExit)
	assert.Error(t, handleAction(context.Background(), "dance", store, "cli", &out))
}

func TestPrintSummaryWithoutWeaknesses(t *testing.T) {
	avg := 7.5
	var out bytes.Buffer
	printSummary(&out, scoring.Summary{
		TotalQuestions: 2,
		AverageScore:   &avg,
		Strengths:      []string{"Good understanding of queues"},
		Weaknesses:     []string{},
		Verdict:        scoring.VerdictStrong,
		Message:        scoring.VerdictStrong.Message(),
	})

	assert.Contains(t, out.String(), "Verdict: Strong performance")
	assert.Contains(t, out.String(), "Weaknesses:\nNone")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)

	assert.Contains(t, out.String(), app+" version: "+version)
}
