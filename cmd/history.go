package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/abhisek/studybuddy/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent upload attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		outcome, _ := cmd.Flags().GetString("outcome")

		opts := store.QueryOpts{Limit: limit, Outcome: store.Outcome(outcome)}
		if outcome != "" && !opts.Outcome.Valid() {
			return fmt.Errorf("unknown outcome %q (want %s, %s or %s)", outcome,
				store.OutcomeSuccess, store.OutcomeApplicationError, store.OutcomeTransportError)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.AttemptRepo()
		events, err := repo.Recent(ctx, opts)
		if err != nil {
			return fmt.Errorf("query attempts: %w", err)
		}
		counts, err := repo.CountByOutcome(ctx)
		if err != nil {
			return fmt.Errorf("count attempts: %w", err)
		}

		printHistory(cmd.OutOrStdout(), events, counts)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of attempts to show")
	historyCmd.Flags().String("outcome", "", "Only show attempts with this outcome (success, app_error, network_error)")
}

func printHistory(w io.Writer, events []store.AttemptEvent, counts map[store.Outcome]int) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No uploads recorded.")
		return
	}

	fmt.Fprintf(w, "%-5s  %-19s  %-28s  %-9s  %-13s  %-4s  %7s  %s\n",
		"Seq", "Timestamp", "File", "Size", "Outcome", "HTTP", "Ms", "Detail")
	fmt.Fprintln(w, strings.Repeat("─", 110))

	for _, e := range events {
		name := e.FileName
		if r := []rune(name); len(r) > 28 {
			name = string(r[:27]) + "…"
		}
		status := "-"
		if e.Status != 0 {
			status = fmt.Sprint(e.Status)
		}
		detail := e.ErrorMessage
		if e.Outcome == store.OutcomeSuccess {
			detail = fmt.Sprintf("%d points, %d questions, %d plan items", e.KeyPoints, e.Questions, e.StudyItems)
		}
		fmt.Fprintf(w, "%-5d  %-19s  %-28s  %-9s  %-13s  %-4s  %7d  %s\n",
			e.Sequence,
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			name,
			humanize.IBytes(uint64(max(e.FileSize, 0))),
			e.Outcome,
			status,
			e.LatencyMs,
			detail,
		)
	}

	fmt.Fprintln(w, strings.Repeat("─", 110))
	fmt.Fprintf(w, "Totals: %d succeeded, %d rejected, %d network errors\n",
		counts[store.OutcomeSuccess], counts[store.OutcomeApplicationError], counts[store.OutcomeTransportError])
}
