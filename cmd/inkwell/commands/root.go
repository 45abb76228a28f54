package commands

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"inkwell/internal/api"
	"inkwell/internal/auth"
	"inkwell/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "inkwell",
	Short: "Headless editing engine for the Inkwell writing workspace",
	Long: `Inkwell drives a section-based document against the remote document
API: loading and saving content, inserting citations, and streaming
assistant replies.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	rootCmd.AddCommand(NewDocCmd())
	rootCmd.AddCommand(NewChatCmd())
	rootCmd.AddCommand(NewSearchCmd())
	rootCmd.AddCommand(NewStubCmd())
	return rootCmd.Execute()
}

// setup loads configuration and builds the shared logger and API client.
func setup() (*config.Config, *slog.Logger, *api.Client, error) {
	// Load .env file (silently ignore if it doesn't exist)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	tokens := auth.NewStaticToken(cfg.APIToken, logger)
	client := api.NewClient(cfg.APIBaseURL, tokens, logger)
	return cfg, logger, client, nil
}
