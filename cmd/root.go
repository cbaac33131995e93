package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/studybuddy/internal/analysis"
	"github.com/abhisek/studybuddy/internal/config"
	"github.com/abhisek/studybuddy/internal/logging"
	"github.com/abhisek/studybuddy/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "studybuddy [file]",
	Short: "Turn a document into a summary, key points, a quiz and a study plan",
	Long: "StudyBuddy — terminal client for the document analysis service. Drop or pick a " +
		"PDF, DOCX or TXT file and browse the results.",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		var file string
		if len(args) == 1 {
			file = args[0]
		}
		return runApp(cmd, file)
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		rootCmd.PrintErrln("Error:", err)
	}
	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/studybuddy/config.yaml)")
	pf.String("endpoint", "", "Analysis service URL (overrides STUDYBUDDY_ENDPOINT)")
	pf.String("db", "", "Path to SQLite database file (overrides STUDYBUDDY_DB)")
	pf.String("log-file", "", "Write logs to this file (overrides STUDYBUDDY_LOG_FILE)")
	pf.Int("questions", 0, "Number of quiz questions to ask for, 0 lets the service decide")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and environment, then applies flags
// (highest priority).
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	required := path != ""
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
		path = p
	}

	cfg, err := config.Load(path, required)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("endpoint"); v != "" {
		cfg.Analysis.Endpoint = v
	}
	if v, _ := flags.GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := flags.GetString("log-file"); v != "" {
		cfg.Log.File = v
	}
	if flags.Changed("questions") {
		cfg.Analysis.Questions, _ = flags.GetInt("questions")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the file logger, defaulting to the state directory.
func newLogger(cfg config.Config) (*zap.Logger, error) {
	lc := cfg.Log
	if lc.File == "" {
		p, err := logging.DefaultFile()
		if err != nil {
			return nil, err
		}
		lc.File = p
	}
	return logging.New(lc)
}

// openStore opens the attempt history database.
func openStore(cfg config.Config) (*store.Store, error) {
	path := cfg.DBPath
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		path = p
	} else if err := store.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("create DB dir: %w", err)
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func newClient(cfg config.Config, logger *zap.Logger) *analysis.Client {
	return analysis.NewClient(cfg.Analysis, nil, logger)
}
