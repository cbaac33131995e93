package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/studybuddy/internal/app"
	"github.com/abhisek/studybuddy/internal/attempt"
	"github.com/abhisek/studybuddy/internal/ingest"
	"github.com/abhisek/studybuddy/internal/progress"
)

// runApp loads configuration, opens the store and launches the TUI.
func runApp(cmd *cobra.Command, file string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Logging disabled:", err)
		logger = zap.NewNop()
	}
	defer func() { _ = logger.Sync() }()

	opts := app.Options{
		Acquirer:    ingest.NewAcquirer(cfg.MaxUploadBytes),
		Endpoint:    cfg.Analysis.Endpoint,
		InitialFile: file,
	}

	// History is optional; uploads work without it.
	var recorder attempt.Recorder
	st, err := openStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Attempt history unavailable:", err)
		logger.Warn("store unavailable", zap.Error(err))
	} else {
		defer st.Close()
		opts.Attempts = st.AttemptRepo()
		recorder = opts.Attempts
	}

	if file != "" {
		opts.StartDir = filepath.Dir(file)
	} else if wd, err := os.Getwd(); err == nil {
		opts.StartDir = wd
	}

	client := newClient(cfg, logger)
	opts.Pipeline = attempt.New(ctx, client, progress.New(cfg.Progress), recorder, logger)

	logger.Info("starting", zap.String("endpoint", client.Endpoint()), zap.String("version", version))
	return app.Run(ctx, opts)
}
