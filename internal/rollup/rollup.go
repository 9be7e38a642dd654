// Package rollup runs the daily select, compose, publish and clear cycle.
package rollup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xolan/logpost/internal/compose"
	"github.com/xolan/logpost/internal/config"
	"github.com/xolan/logpost/internal/entry"
	"github.com/xolan/logpost/internal/logging"
	"github.com/xolan/logpost/internal/storage"
	"github.com/xolan/logpost/internal/twitter"
)

// State is a step of a rollup run
type State string

// Run states. Cleared, Failed, Skipped, Aborted and Previewed are final.
const (
	StateIdle        State = "idle"
	StateSelecting   State = "selecting"
	StateComposing   State = "composing"
	StateLengthCheck State = "length_check"
	StatePublishing  State = "publishing"
	StateCleared     State = "cleared"
	StateFailed      State = "failed"
	StateSkipped     State = "skipped"
	StateAborted     State = "aborted"
	StatePreviewed   State = "previewed"
)

// Store is the part of the entry store a run needs
type Store interface {
	Load() (storage.ReadResult, error)
	RemoveEntries(snapshot []entry.Entry) (int, error)
}

// Composer produces the post text
type Composer interface {
	Compose(ctx context.Context, entries []entry.Entry, cfg config.GenerationConfig) compose.Result
}

// Publisher posts text and returns the new post's id
type Publisher interface {
	Publish(ctx context.Context, text string) (twitter.PostID, error)
}

// PublisherFactory builds a Publisher from the credentials of one run
type PublisherFactory func(cfg config.PostingConfig) Publisher

// Report describes one run. It is never persisted.
type Report struct {
	RunID      string
	State      State
	Entries    []entry.Entry
	Composed   compose.Result
	Text       string
	Truncated  bool
	PostID     twitter.PostID
	Cleared    int
	Warnings   []storage.ParseWarning
	Malformed  int
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Deps wires an Orchestrator
type Deps struct {
	Store          Store
	Composer       Composer
	NewPublisher   PublisherFactory
	PostingPath    string
	GenerationPath string
	// Location decides which calendar day is "today"; nil means time.Local
	Location *time.Location
	Now      func() time.Time
	Logger   *slog.Logger
	// Metrics may be nil
	Metrics *Metrics
}

// Orchestrator runs rollups one at a time
type Orchestrator struct {
	mu   sync.Mutex
	deps Deps
}

// New returns an Orchestrator.
func New(deps Deps) *Orchestrator {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	return &Orchestrator{deps: deps}
}

// Run selects today's entries, composes and publishes the post and, once
// the post is confirmed, removes the selected entries from the store.
// Config errors abort the run before anything else happens; a publish
// failure leaves the store untouched. Both are returned as errors, as is
// a failure to clear after a successful publish. Nothing to post is not an error.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	return o.run(ctx, false)
}

// Preview performs the run up to the length check without publishing or
// clearing anything.
func (o *Orchestrator) Preview(ctx context.Context) (*Report, error) {
	return o.run(ctx, true)
}

func (o *Orchestrator) run(ctx context.Context, dryRun bool) (*Report, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	report := &Report{
		RunID:     uuid.New().String(),
		State:     StateIdle,
		StartedAt: o.deps.Now(),
	}
	logger := logging.WithRun(o.deps.Logger, report.RunID)
	logger.Debug("rollup started", "dry_run", dryRun)

	err := o.execute(ctx, report, logger, dryRun)
	report.Err = err
	report.FinishedAt = o.deps.Now()
	o.record(report)

	if err != nil {
		logger.Error("rollup ended", "state", report.State, "error", err)
	} else {
		logger.Info("rollup ended", "state", report.State, "entries", len(report.Entries), "post_id", report.PostID)
	}
	return report, err
}

func (o *Orchestrator) execute(ctx context.Context, report *Report, logger *slog.Logger, dryRun bool) error {
	posting, err := config.LoadPosting(o.deps.PostingPath)
	if err != nil {
		report.State = StateAborted
		return err
	}
	generation, err := config.LoadGeneration(o.deps.GenerationPath)
	if err != nil {
		report.State = StateAborted
		return err
	}

	report.State = StateSelecting
	snapshot, err := o.deps.Store.Load()
	if err != nil {
		report.State = StateFailed
		return fmt.Errorf("failed to read store: %w", err)
	}
	report.Warnings = snapshot.Warnings
	for _, w := range snapshot.Warnings {
		logger.Warn("store content skipped", "warning", w.String())
	}
	if bad := entry.Malformed(snapshot.Entries); len(bad) > 0 {
		report.Malformed = len(bad)
		logger.Warn("entries with malformed dates are never selected", "count", len(bad))
	}

	report.Entries = entry.Today(snapshot.Entries, o.deps.Now().In(o.deps.Location))
	if len(report.Entries) == 0 {
		report.State = StateSkipped
		logger.Info("no entries for today, nothing to post")
		return nil
	}
	logger.Info("entries selected", "count", len(report.Entries))

	report.State = StateComposing
	report.Composed = o.deps.Composer.Compose(ctx, report.Entries, generation)
	if report.Composed.Err != nil {
		logger.Warn("generation unavailable, using fallback text", "error", report.Composed.Err)
	}

	report.State = StateLengthCheck
	report.Text, report.Truncated = EnforceLimit(report.Composed.Text)
	if report.Truncated {
		logger.Warn("composed text exceeds the length limit, truncated", "max", MaxLength)
	}

	if dryRun {
		report.State = StatePreviewed
		return nil
	}

	report.State = StatePublishing
	id, err := o.deps.NewPublisher(posting).Publish(ctx, report.Text)
	if err != nil {
		report.State = StateFailed
		return err
	}
	report.PostID = id

	// Only the snapshot's entries go; anything recorded meanwhile stays.
	cleared, err := o.deps.Store.RemoveEntries(snapshot.Entries)
	if err != nil {
		report.State = StateFailed
		return fmt.Errorf("post %s published but the store was not cleared: %w", id, err)
	}
	report.Cleared = cleared
	report.State = StateCleared
	return nil
}

func (o *Orchestrator) record(report *Report) {
	m := o.deps.Metrics
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(string(report.State)).Inc()
	m.RunDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	if report.Composed.Source != "" {
		m.Compositions.WithLabelValues(string(report.Composed.Source)).Inc()
	}
	if report.Truncated {
		m.Truncations.Inc()
	}
	if report.PostID != "" {
		m.EntriesPosted.Add(float64(len(report.Entries)))
		m.LastPosted.Set(float64(report.FinishedAt.Unix()))
	}
}
