package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/PratikChakraborty015/ai-interview-simulator/internal/server"
)

const (
	app = "interview-simulator"
)

type Config struct {
	AI        AIConfig        `mapstructure:"ai"`
	Server    server.Config   `mapstructure:"server"`
	Interview InterviewConfig `mapstructure:"interview"`
}

type AIConfig struct {
	Provider string       `mapstructure:"provider"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey              string        `mapstructure:"api-key"`
	APIKeyFile          string        `mapstructure:"api-key-file"`
	Model               string        `mapstructure:"model"`
	Timeout             time.Duration `mapstructure:"timeout"`
	QuestionTemperature float32       `mapstructure:"question-temperature"`
	MaxLogLength        int           `mapstructure:"max-log-length"`
	WarmUp              bool          `mapstructure:"warm-up"`
}

type InterviewConfig struct {
	QuestionBank QuestionBankConfig `mapstructure:"question-bank"`
}

type QuestionBankConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	File    string `mapstructure:"file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interview-simulator runs AI driven mock interviews over HTTP, MCP or in the terminal",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is "+app+".yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.model", "models/gemma-3-12b-it")
	v.SetDefault("ai.gemini.timeout", "30s")
	v.SetDefault("ai.gemini.question-temperature", 0.8)
	v.SetDefault("ai.gemini.max-log-length", 200)
	v.SetDefault("ai.gemini.warm-up", true)

	v.SetDefault("server.address", server.DefaultAddress)
	v.SetDefault("server.read-timeout", server.DefaultReadTimeout.String())
	v.SetDefault("server.write-timeout", server.DefaultWriteTimeout.String())
	v.SetDefault("server.shutdown-timeout", server.DefaultShutdownTimeout.String())

	v.SetDefault("interview.question-bank.enabled", true)
	v.SetDefault("interview.question-bank.file", "")
}

func initConfig() {
	// .env is optional; a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if err := readConfig(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// readConfig reads an explicit config file, or the default one when present.
func readConfig(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
		return v.ReadInConfig()
	}

	v.AddConfigPath(".")
	v.SetConfigName(app)

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

func getConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
