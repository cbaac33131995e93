package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/studybuddy/internal/attempt"
	"github.com/abhisek/studybuddy/internal/ingest"
	"github.com/abhisek/studybuddy/internal/progress"
	"github.com/abhisek/studybuddy/internal/results"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze one document and print the results (no TUI)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reveal, _ := cmd.Flags().GetBool("answers")

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

		c, err := ingest.NewAcquirer(cfg.MaxUploadBytes).FromPick(args[0])
		if err != nil {
			var verr *ingest.ValidationError
			if errors.As(err, &verr) {
				return errors.New(verr.Message)
			}
			return err
		}

		var recorder attempt.Recorder
		if st, err := openStore(cfg); err != nil {
			logger.Warn("store unavailable", zap.Error(err))
		} else {
			defer st.Close()
			recorder = st.AttemptRepo()
		}

		pipe := attempt.New(cmd.Context(), newClient(cfg, logger), progress.New(cfg.Progress), recorder, logger)
		out, err := pipe.Run(c)
		if err != nil {
			return err
		}
		if out.Err != nil {
			return out.Err
		}

		fmt.Fprint(cmd.OutOrStdout(), results.Plain(out.Result, reveal))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Bool("answers", false, "Print the correct answer under every quiz question")
}
