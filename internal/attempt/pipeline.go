// Package attempt coordinates one upload attempt: the progress animation and
// the analysis request start together, and the first settle of the request
// finishes the animation, records the attempt and yields what to show.
package attempt

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/studybuddy/internal/analysis"
	"github.com/abhisek/studybuddy/internal/ingest"
	"github.com/abhisek/studybuddy/internal/progress"
	"github.com/abhisek/studybuddy/internal/store"
)

// ErrInFlight is returned by Begin while a previous attempt is unsettled.
var ErrInFlight = errors.New("an upload is already in progress")

// Analyzer performs the request for one candidate.
type Analyzer interface {
	Analyze(ctx context.Context, c ingest.Candidate) (*analysis.Result, error)
}

// Recorder persists attempt metadata. Failures are logged, never shown.
type Recorder interface {
	Append(ctx context.Context, ev *store.AttemptEvent) error
}

// Attempt is the state of one upload from acceptance to settle.
type Attempt struct {
	ID        string
	Candidate ingest.Candidate
	Started   time.Time
	settled   bool
}

// SettledMsg carries the request's result back into the event loop.
type SettledMsg struct {
	AttemptID string
	Result    *analysis.Result
	Err       error
	Latency   time.Duration
}

// Outcome is what the UI does after a settle: render Result, or show Notice
// in a blocking dialog. Exactly one of the two is set. Err carries the
// failure behind Notice.
type Outcome struct {
	Result *analysis.Result
	Notice string
	Err    error
}

// Pipeline owns the progress simulator and the current attempt.
type Pipeline struct {
	ctx      context.Context
	analyzer Analyzer
	progress *progress.Simulator
	recorder Recorder
	log      *zap.Logger
	now      func() time.Time

	current *Attempt
}

// New creates a Pipeline. recorder may be nil. ctx bounds every request;
// cancelling it aborts whatever is in flight.
func New(ctx context.Context, analyzer Analyzer, sim *progress.Simulator, recorder Recorder, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		ctx:      ctx,
		analyzer: analyzer,
		progress: sim,
		recorder: recorder,
		log:      logger,
		now:      time.Now,
	}
}

// Begin starts an attempt for c. It returns ErrInFlight, changing nothing,
// while the previous attempt has not settled.
func (p *Pipeline) Begin(c ingest.Candidate) (tea.Cmd, error) {
	if p.InFlight() {
		return nil, ErrInFlight
	}
	a := p.begin(c)
	return tea.Batch(p.progress.Start(), p.request(a)), nil
}

// Run performs a whole attempt for c synchronously, without the progress
// animation. It is used when there is no event loop.
func (p *Pipeline) Run(c ingest.Candidate) (Outcome, error) {
	if p.InFlight() {
		return Outcome{}, ErrInFlight
	}
	a := p.begin(c)
	msg, _ := p.request(a)().(SettledMsg)
	out, _, _ := p.Settle(msg)
	return out, nil
}

func (p *Pipeline) begin(c ingest.Candidate) *Attempt {
	a := &Attempt{
		ID:        uuid.NewString(),
		Candidate: c,
		Started:   p.now(),
	}
	p.current = a

	p.log.Info("attempt started",
		zap.String("attempt_id", a.ID),
		zap.String("file", c.Name),
		zap.Int64("size", c.Size),
	)
	return a
}

func (p *Pipeline) request(a *Attempt) tea.Cmd {
	ctx, analyzer, now := p.ctx, p.analyzer, p.now
	return func() tea.Msg {
		res, err := analyzer.Analyze(ctx, a.Candidate)
		return SettledMsg{
			AttemptID: a.ID,
			Result:    res,
			Err:       err,
			Latency:   now().Sub(a.Started),
		}
	}
}

// Settle finalizes the current attempt. ok is false, and nothing happens,
// when msg does not belong to the current attempt or it already settled.
// The returned command finishes the progress animation.
func (p *Pipeline) Settle(msg SettledMsg) (out Outcome, cmd tea.Cmd, ok bool) {
	a := p.current
	if a == nil || a.settled || a.ID != msg.AttemptID {
		return Outcome{}, nil, false
	}
	a.settled = true
	cmd = p.progress.Finish()

	ev := &store.AttemptEvent{
		AttemptID: a.ID,
		Timestamp: a.Started,
		FileName:  a.Candidate.Name,
		FileSize:  a.Candidate.Size,
		LatencyMs: msg.Latency.Milliseconds(),
	}

	switch {
	case msg.Err == nil && msg.Result != nil:
		out.Result = msg.Result
		ev.Outcome = store.OutcomeSuccess
		ev.Status = 200
		ev.KeyPoints = len(msg.Result.KeyPoints)
		ev.Questions = len(msg.Result.QuizQuestions)
		ev.StudyItems = len(msg.Result.StudyGuide)
	default:
		err := msg.Err
		if err == nil {
			err = &analysis.TransportError{Err: errors.New("empty response")}
		}
		out.Notice = err.Error()
		out.Err = err
		ev.ErrorMessage = err.Error()
		ev.Outcome = store.OutcomeTransportError

		var appErr *analysis.ApplicationError
		if errors.As(err, &appErr) {
			ev.Outcome = store.OutcomeApplicationError
			ev.Status = appErr.Status
		}
	}

	p.log.Info("attempt settled",
		zap.String("attempt_id", a.ID),
		zap.String("outcome", string(ev.Outcome)),
		zap.Int("status", ev.Status),
		zap.Duration("latency", msg.Latency),
	)
	p.record(ev)

	return out, cmd, true
}

func (p *Pipeline) record(ev *store.AttemptEvent) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Append(context.WithoutCancel(p.ctx), ev); err != nil {
		p.log.Warn("failed to record attempt", zap.String("attempt_id", ev.AttemptID), zap.Error(err))
	}
}

// Update forwards progress messages to the simulator.
func (p *Pipeline) Update(msg tea.Msg) tea.Cmd {
	return p.progress.Update(msg)
}

// InFlight reports whether an attempt is waiting for its request.
func (p *Pipeline) InFlight() bool {
	return p.current != nil && !p.current.settled
}

// Current returns the most recent attempt, or nil before the first one.
func (p *Pipeline) Current() *Attempt {
	return p.current
}

// Progress returns the simulator driven by this pipeline.
func (p *Pipeline) Progress() *progress.Simulator {
	return p.progress
}
