package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSequenceMonotonic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var prev int64
	for i := 0; i < 5; i++ {
		n, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if n <= prev {
			t.Fatalf("sequence went from %d to %d", prev, n)
		}
		prev = n
	}
}

func TestAttemptAppendAndRecent(t *testing.T) {
	s := openTestStore(t)
	repo := s.AttemptRepo()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	events := []*AttemptEvent{
		{AttemptID: "a1", Timestamp: base, FileName: "bio.pdf", FileSize: 2048, Outcome: OutcomeSuccess, Status: 200, LatencyMs: 1500, KeyPoints: 4, Questions: 5, StudyItems: 3},
		{AttemptID: "a2", Timestamp: base.Add(time.Minute), FileName: "chem.docx", Outcome: OutcomeApplicationError, Status: 400, ErrorMessage: "bad file"},
		{AttemptID: "a3", Timestamp: base.Add(2 * time.Minute), FileName: "notes.txt", Outcome: OutcomeTransportError, ErrorMessage: "Network error: connection refused"},
	}
	for _, ev := range events {
		if err := repo.Append(ctx, ev); err != nil {
			t.Fatalf("append %s: %v", ev.AttemptID, err)
		}
		if ev.Sequence == 0 {
			t.Fatalf("append %s: sequence not assigned", ev.AttemptID)
		}
	}

	got, err := repo.Recent(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("recent: got %d events, want 3", len(got))
	}
	if got[0].AttemptID != "a3" || got[2].AttemptID != "a1" {
		t.Errorf("recent order = %s,%s,%s, want newest first", got[0].AttemptID, got[1].AttemptID, got[2].AttemptID)
	}

	first := got[2]
	if first.FileName != "bio.pdf" || first.FileSize != 2048 || first.Status != 200 {
		t.Errorf("round trip mismatch: %+v", first)
	}
	if first.KeyPoints != 4 || first.Questions != 5 || first.StudyItems != 3 {
		t.Errorf("counts mismatch: %+v", first)
	}
	if !first.Timestamp.Equal(base) {
		t.Errorf("timestamp = %v, want %v", first.Timestamp, base)
	}
	if got[1].ErrorMessage != "bad file" {
		t.Errorf("error message = %q, want %q", got[1].ErrorMessage, "bad file")
	}
}

func TestAttemptRecentFilters(t *testing.T) {
	s := openTestStore(t)
	repo := s.AttemptRepo()
	ctx := context.Background()

	outcomes := []Outcome{OutcomeSuccess, OutcomeTransportError, OutcomeSuccess, OutcomeSuccess}
	for i, o := range outcomes {
		ev := &AttemptEvent{AttemptID: string(rune('a' + i)), FileName: "f.txt", Outcome: o}
		if err := repo.Append(ctx, ev); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.Recent(ctx, QueryOpts{Outcome: OutcomeSuccess, Limit: 2})
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	for _, ev := range got {
		if ev.Outcome != OutcomeSuccess {
			t.Errorf("outcome = %s, want success", ev.Outcome)
		}
	}
	if got[0].AttemptID != "d" {
		t.Errorf("newest = %s, want d", got[0].AttemptID)
	}

	after, err := repo.Recent(ctx, QueryOpts{After: got[1].Sequence})
	if err != nil {
		t.Fatalf("recent after: %v", err)
	}
	if len(after) != 1 || after[0].AttemptID != "d" {
		t.Errorf("after = %+v, want only d", after)
	}
}

func TestAttemptAppendRejectsUnknownOutcome(t *testing.T) {
	s := openTestStore(t)
	err := s.AttemptRepo().Append(context.Background(), &AttemptEvent{AttemptID: "x", Outcome: "maybe"})
	if err == nil {
		t.Fatal("expected error for unknown outcome")
	}
}

func TestCountByOutcome(t *testing.T) {
	s := openTestStore(t)
	repo := s.AttemptRepo()
	ctx := context.Background()

	counts, err := repo.CountByOutcome(ctx)
	if err != nil {
		t.Fatalf("count (empty): %v", err)
	}
	if len(counts) != 0 {
		t.Fatalf("expected no counts, got %v", counts)
	}

	for _, o := range []Outcome{OutcomeSuccess, OutcomeSuccess, OutcomeApplicationError} {
		if err := repo.Append(ctx, &AttemptEvent{AttemptID: "x", FileName: "f.pdf", Outcome: o}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	counts, err = repo.CountByOutcome(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[OutcomeSuccess] != 2 || counts[OutcomeApplicationError] != 1 || counts[OutcomeTransportError] != 0 {
		t.Errorf("counts = %v", counts)
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Run("env override", func(t *testing.T) {
		want := filepath.Join(dir, "custom", "my.db")
		t.Setenv("STUDYBUDDY_DB", want)

		got, err := DefaultDBPath()
		if err != nil {
			t.Fatalf("DefaultDBPath: %v", err)
		}
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
		if _, err := os.Stat(filepath.Dir(want)); err != nil {
			t.Errorf("parent dir not created: %v", err)
		}
	})

	t.Run("xdg data home", func(t *testing.T) {
		t.Setenv("STUDYBUDDY_DB", "")
		t.Setenv("XDG_DATA_HOME", dir)

		got, err := DefaultDBPath()
		if err != nil {
			t.Fatalf("DefaultDBPath: %v", err)
		}
		want := filepath.Join(dir, "studybuddy", "studybuddy.db")
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
}
