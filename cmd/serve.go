package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/PratikChakraborty015/ai-interview-simulator/internal/logger"
	"github.com/PratikChakraborty015/ai-interview-simulator/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview HTTP API and MCP tools",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address (default is "+server.DefaultAddress+")")
	serveCmd.Flags().Bool("no-warm-up", false, "skip the model warm-up request")

	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(app, viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig(viper.GetViper())
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if noWarmUp, _ := serveCmd.Flags().GetBool("no-warm-up"); noWarmUp {
		config.AI.Gemini.WarmUp = false
	}

	logger.Info("starting the interview server", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	sim, err := newSimulator(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the simulator", zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
	}

	srv := server.New(config.Server, server.Deps{
		Sessions: sim.store,
		Scorer:   sim.evaluator,
		Metrics:  sim.metrics,
		Logger:   logger.Named("http"),
		Version:  version,
	})

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}

	logger.Info("exiting", zap.String("reason", "shutdown requested"))
}

// redacted returns a copy of config that is safe to log.
func redacted(config *Config) Config {
	c := *config
	if c.AI.Gemini.APIKey != "" {
		c.AI.Gemini.APIKey = "***"
	}
	return c
}
