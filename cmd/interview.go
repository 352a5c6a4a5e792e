package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	applog "github.com/PratikChakraborty015/ai-interview-simulator/internal/logger"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/scoring"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/session"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/utils"
)

const (
	PromptNextQuestion = "Next question"
	PromptEndInterview = "End interview"
	PromptQuit         = "Quit without summary"
	PromptOtherType    = "other"
)

var errExit = errors.New("exit requested")

var actionPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptNextQuestion, PromptEndInterview, PromptQuit},
}

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run a mock interview in the terminal",
	Run: func(_ *cobra.Command, _ []string) {
		runInterview()
	},
}

func init() {
	rootCmd.AddCommand(interviewCmd)

	interviewCmd.Flags().StringP("user", "u", "", "candidate id (default is the current OS user)")
	interviewCmd.Flags().StringP("type", "t", "", "interview type, asked interactively when empty")
}

func runInterview() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := applog.New(app, viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig(viper.GetViper())
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	sim, err := newSimulator(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the simulator", zap.Error(err))
	}

	candidate, _ := interviewCmd.Flags().GetString("user")
	if candidate == "" {
		candidate = os.Getenv("USER")
	}
	if candidate == "" {
		candidate = "candidate"
	}

	interviewType, _ := interviewCmd.Flags().GetString("type")
	if interviewType == "" {
		interviewType, err = selectInterviewType(sim.bank.Types())
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	sim.store.CreateOrFetch(candidate, interviewType)
	logger.Info("interview started", applog.SessionFields(candidate, interviewType)...)

	action := PromptNextQuestion
	for {
		if err := handleAction(ctx, action, sim.store, candidate, os.Stdout); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		_, action, err = actionPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, store *session.Store, candidate string, out io.Writer) error {
	switch action {
	case PromptNextQuestion:
		return askAndAnswer(ctx, store, candidate, out)
	case PromptEndInterview:
		summary, err := store.End(candidate)
		if err != nil {
			return err
		}
		printSummary(out, summary)
		if summary.Verdict == scoring.VerdictInsufficientData {
			return nil
		}
		return errExit
	case PromptQuit:
		return errExit
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func askAndAnswer(ctx context.Context, store *session.Store, candidate string, out io.Writer) error {
	question, err := store.IssueQuestion(ctx, candidate)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nQuestion %d: %s\n\n", question.Number, question.Text)

	answerPrompt := promptui.Prompt{Label: "Your answer"}
	answer, err := answerPrompt.Run()
	if err != nil {
		return err
	}

	evaluation, err := store.SubmitAnswer(ctx, candidate, question.Text, answer)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nScore: %d/10\nFeedback: %s\n", evaluation.Score, evaluation.Feedback)
	if evaluation.IdealAnswer != "" {
		fmt.Fprintf(out, "Ideal answer: %s\n", evaluation.IdealAnswer)
	}
	return nil
}

func selectInterviewType(known []string) (string, error) {
	items := append(append([]string{}, known...), PromptOtherType)
	typePrompt := promptui.Select{Label: "Interview type", Items: items}

	_, choice, err := typePrompt.Run()
	if err != nil {
		return "", err
	}
	if choice != PromptOtherType {
		return choice, nil
	}

	custom := promptui.Prompt{
		Label: "Custom interview type",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("interview type is required")
			}
			return nil
		},
	}
	return custom.Run()
}

func printSummary(out io.Writer, summary scoring.Summary) {
	fmt.Fprintf(out, "\nAnswers: %d\n", summary.TotalQuestions)
	if summary.AverageScore != nil {
		fmt.Fprintf(out, "Average score: %.2f\n", *summary.AverageScore)
	}
	fmt.Fprintf(out, "Verdict: %s\n", summary.Message)
	if summary.Verdict == scoring.VerdictInsufficientData {
		return
	}
	fmt.Fprintf(out, "\nStrengths:\n%s\n", utils.BulletList(summary.Strengths, "None"))
	fmt.Fprintf(out, "\nWeaknesses:\n%s\n", utils.BulletList(summary.Weaknesses, "None"))
}
