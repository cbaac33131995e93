package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studybuddy/internal/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAnalyzeThenHistory(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"summary":"S","keyPoints":["a","b"],` +
			`"quizQuestions":[{"question":"Q1","options":["x","y"],"correct":1}],"studyGuide":["p1"]}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	doc := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(doc, []byte("hello"), 0o644))
	db := filepath.Join(dir, "history.db")
	logFile := filepath.Join(dir, "studybuddy.log")

	out, err := execute(t, "analyze", doc, "--answers",
		"--endpoint", srv.URL, "--db", db, "--log-file", logFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Summary\n  S\n")
	assert.Contains(t, out, "     Correct: B\n")

	out, err = execute(t, "history", "--db", db, "--log-file", logFile)
	require.NoError(t, err)
	assert.Contains(t, out, "notes.txt")
	assert.Contains(t, out, "2 points, 1 questions, 1 plan items")
	assert.Contains(t, out, "Totals: 1 succeeded, 0 rejected, 0 network errors")

	_, err = os.Stat(logFile)
	assert.NoError(t, err, "attempts are logged to the log file")
}

func TestAnalyzeRejectsUnsupportedFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	doc := filepath.Join(dir, "report.doc")
	require.NoError(t, os.WriteFile(doc, []byte("x"), 0o644))

	_, err := execute(t, "analyze", doc, "--db", filepath.Join(dir, "h.db"), "--log-file", filepath.Join(dir, "l.log"))
	require.Error(t, err)
	assert.Equal(t, "Please upload a PDF, DOCX, or TXT.", err.Error())
}

func TestHistoryRejectsUnknownOutcome(t *testing.T) {
	_, err := execute(t, "history", "--outcome", "maybe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown outcome "maybe"`)
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, nil, nil)
	assert.Equal(t, "No uploads recorded.\n", buf.String())

	buf.Reset()
	printHistory(&buf, []store.AttemptEvent{{
		Sequence:     3,
		Timestamp:    time.Now(),
		FileName:     "a-very-long-file-name-for-the-history-table.pdf",
		FileSize:     2048,
		Outcome:      store.OutcomeApplicationError,
		Status:       400,
		ErrorMessage: "bad file",
		LatencyMs:    120,
	}}, map[store.Outcome]int{store.OutcomeApplicationError: 1})

	out := buf.String()
	assert.Contains(t, out, "a-very-long-file-name-for-t…")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "400")
	assert.Contains(t, out, "bad file")
	assert.Contains(t, out, "Totals: 0 succeeded, 1 rejected, 0 network errors")
}
