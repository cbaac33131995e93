package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const attemptTable = "attempt_events"

var attemptColumns = []string{
	"sequence", "attempt_id", "created_at", "file_name", "file_size",
	"outcome", "status", "error_message", "latency_ms",
	"key_points", "questions", "study_items",
}

// attemptRow mirrors one attempt_events row for entsql.ScanSlice.
type attemptRow struct {
	Sequence     int64  `sql:"sequence"`
	AttemptID    string `sql:"attempt_id"`
	CreatedAt    int64  `sql:"created_at"`
	FileName     string `sql:"file_name"`
	FileSize     int64  `sql:"file_size"`
	Outcome      string `sql:"outcome"`
	Status       int    `sql:"status"`
	ErrorMessage string `sql:"error_message"`
	LatencyMs    int64  `sql:"latency_ms"`
	KeyPoints    int    `sql:"key_points"`
	Questions    int    `sql:"questions"`
	StudyItems   int    `sql:"study_items"`
}

// attemptRepo implements AttemptRepo with the ent SQL builder.
type attemptRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *attemptRepo) Append(ctx context.Context, ev *AttemptEvent) error {
	if !ev.Outcome.Valid() {
		return fmt.Errorf("invalid outcome %q", ev.Outcome)
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(attemptTable).
		Columns(attemptColumns...).
		Values(
			seqNum, ev.AttemptID, ts.UnixMilli(), ev.FileName, ev.FileSize,
			string(ev.Outcome), ev.Status, ev.ErrorMessage, ev.LatencyMs,
			ev.KeyPoints, ev.Questions, ev.StudyItems,
		).
		Query()

	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save attempt event: %w", err)
	}

	ev.Sequence = seqNum
	ev.Timestamp = ts
	return nil
}

func (r *attemptRepo) Recent(ctx context.Context, opts QueryOpts) ([]AttemptEvent, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(attemptColumns...).
		From(entsql.Table(attemptTable))

	if opts.Outcome != "" {
		sel = sel.Where(entsql.EQ("outcome", string(opts.Outcome)))
	}
	if opts.After > 0 {
		sel = sel.Where(entsql.GT("sequence", opts.After))
	}
	sel = sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query attempt events: %w", err)
	}
	defer rows.Close()

	var scanned []attemptRow
	if err := entsql.ScanSlice(rows, &scanned); err != nil {
		return nil, fmt.Errorf("scan attempt events: %w", err)
	}

	events := make([]AttemptEvent, len(scanned))
	for i, row := range scanned {
		events[i] = AttemptEvent{
			Sequence:     row.Sequence,
			AttemptID:    row.AttemptID,
			Timestamp:    time.UnixMilli(row.CreatedAt),
			FileName:     row.FileName,
			FileSize:     row.FileSize,
			Outcome:      Outcome(row.Outcome),
			Status:       row.Status,
			ErrorMessage: row.ErrorMessage,
			LatencyMs:    row.LatencyMs,
			KeyPoints:    row.KeyPoints,
			Questions:    row.Questions,
			StudyItems:   row.StudyItems,
		}
	}
	return events, nil
}

func (r *attemptRepo) CountByOutcome(ctx context.Context) (map[Outcome]int, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("outcome", entsql.As(entsql.Count("*"), "total")).
		From(entsql.Table(attemptTable)).
		GroupBy("outcome").
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("count attempt events: %w", err)
	}
	defer rows.Close()

	var scanned []struct {
		Outcome string `sql:"outcome"`
		Total   int    `sql:"total"`
	}
	if err := entsql.ScanSlice(rows, &scanned); err != nil {
		return nil, fmt.Errorf("scan outcome counts: %w", err)
	}

	counts := make(map[Outcome]int, len(scanned))
	for _, row := range scanned {
		counts[Outcome(row.Outcome)] = row.Total
	}
	return counts, nil
}
