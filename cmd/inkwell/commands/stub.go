package commands

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"inkwell/internal/config"
	"inkwell/internal/domain/models"
	"inkwell/internal/stubserver"
)

var stubLogDir string

// NewStubCmd creates the stub command: a local in-memory stand-in for
// the document collaborator, for development without the real backend.
func NewStubCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Run the local document-collaborator stub",
		RunE:  runStub,
	}
	cmd.Flags().StringVar(&stubLogDir, "log-dir", "", "Also write logs to timestamped files in this directory")
	return cmd
}

func runStub(cmd *cobra.Command, args []string) error {
	cfg, logger, _, err := setup()
	if err != nil {
		return err
	}

	if stubLogDir != "" {
		logFile, err := config.SetupLogFile(stubLogDir, 10)
		if err != nil {
			return fmt.Errorf("log setup: %w", err)
		}
		defer logFile.Close()

		logLevel := slog.LevelInfo
		if cfg.Debug {
			logLevel = slog.LevelDebug
		}
		logger = slog.New(slog.NewJSONHandler(io.MultiWriter(os.Stderr, logFile), &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	}

	stub := stubserver.New(logger, stubserver.Options{})
	seedStub(stub)

	server := &http.Server{
		Addr:         ":" + cfg.StubPort,
		Handler:      stub.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("collaborator stub starting", "port", cfg.StubPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("stub server: %w", err)
	}
	return nil
}

// seedStub installs a sample document and search corpus so the engine
// has something to edit out of the box.
func seedStub(stub *stubserver.Server) {
	stub.SeedDocument(
		models.Document{ID: "sample", Title: "Field Notes"},
		[]models.Section{
			{Content: "The harbor was quiet before dawn.", WordCount: 6},
			{Content: "Gulls circled the breakwater while the first boats slipped out."},
		},
	)
	stub.SeedCorpus([]models.SearchResult{
		{ContentID: 101, Title: "Tide tables, 1977", Preview: "High water at 05:42, low at 11:58..."},
		{ContentID: 102, Title: "Harbor master's log", Preview: "Fog bank rolled in past the lighthouse..."},
		{ContentID: 103, Title: "Gull migration survey", Preview: "Counts peaked in late September..."},
	})
}
