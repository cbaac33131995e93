package store

import (
	"context"
	"time"
)

// Outcome classifies how an upload attempt ended.
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeApplicationError Outcome = "app_error"
	OutcomeTransportError   Outcome = "network_error"
)

// Valid reports whether o is a known outcome.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeSuccess, OutcomeApplicationError, OutcomeTransportError:
		return true
	}
	return false
}

// AttemptEvent is the metadata of one settled upload attempt. The returned
// study material itself is never stored.
type AttemptEvent struct {
	Sequence     int64
	AttemptID    string
	Timestamp    time.Time
	FileName     string
	FileSize     int64
	Outcome      Outcome
	Status       int
	ErrorMessage string
	LatencyMs    int64

	// Counts of what was rendered on success.
	KeyPoints  int
	Questions  int
	StudyItems int
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int     // max results (0 = unlimited)
	Outcome Outcome // only this outcome ("" = all)
	After   int64   // sequence > After
}

// AttemptRepo provides append and query access to attempt events.
type AttemptRepo interface {
	// Append records a settled attempt. Sequence is assigned by the repo.
	Append(ctx context.Context, ev *AttemptEvent) error

	// Recent returns events newest first.
	Recent(ctx context.Context, opts QueryOpts) ([]AttemptEvent, error)

	// CountByOutcome returns the number of recorded attempts per outcome.
	CountByOutcome(ctx context.Context) (map[Outcome]int, error)
}
