package progress

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/myrjola/repcoach/internal/catalog"
	"github.com/myrjola/repcoach/internal/coach"
	"github.com/myrjola/repcoach/internal/contexthelpers"
	"github.com/myrjola/repcoach/internal/errors"
	"github.com/myrjola/repcoach/internal/gamification"
	"github.com/myrjola/repcoach/internal/preferences"
	"github.com/myrjola/repcoach/internal/progression"
	"github.com/myrjola/repcoach/internal/schedule"
)

// Observer is notified about tracked events.
type Observer interface {
	SessionLogged(exerciseKey string, newPR bool)
	GymSessionLogged(exercises int, prs int)
	BadgesUnlocked(n int)
	SaveFailed()
}

type nopObserver struct{}

func (nopObserver) SessionLogged(string, bool) {}
func (nopObserver) GymSessionLogged(int, int)  {}
func (nopObserver) BadgesUnlocked(int)         {}
func (nopObserver) SaveFailed()                {}

// Tracker loads the user's state, runs the calculators and saves the resulting changes. Failed saves are kept in
// memory per user and sent again with the next save.
type Tracker struct {
	store       Store
	logger      *slog.Logger
	catalog     *catalog.Catalog
	scheduler   *schedule.Scheduler
	progression *progression.Engine
	coach       *coach.Coach
	game        *gamification.Engine
	validator   *preferences.Validator
	observer    Observer
	now         func() time.Time

	mu      sync.Mutex
	pending map[string]Patch
}

type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func WithObserver(o Observer) Option {
	return func(t *Tracker) { t.observer = o }
}

// WithPicker sets the coach message picker.
func WithPicker(p coach.Picker) Option {
	return func(t *Tracker) { t.coach = coach.New(coach.DefaultConfig(), p) }
}

func WithCatalog(c *catalog.Catalog) Option {
	return func(t *Tracker) { t.catalog = c }
}

func NewTracker(store Store, logger *slog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		store:     store,
		logger:    logger,
		catalog:   catalog.Default(),
		coach:     coach.New(coach.DefaultConfig(), coach.NewRandomPicker(uint64(time.Now().UnixNano()))), //nolint:gosec // seed.
		game:      gamification.New(gamification.DefaultConfig()),
		validator: preferences.NewValidator(preferences.DefaultOptions()),
		observer:  nopObserver{},
		now:       time.Now,
		pending:   map[string]Patch{},
	}
	for _, opt := range opts {
		opt(t)
	}
	t.scheduler = schedule.New(t.catalog)
	t.progression = progression.New(progression.DefaultConfig(), t.catalog)
	return t
}

// Load returns the stored state with unsaved changes applied. Storage failures other than a missing user are logged
// and answered with an empty state.
func (t *Tracker) Load(ctx context.Context) (State, error) {
	state, err := t.store.Load(ctx)
	if errors.Is(err, ErrUnauthenticated) {
		return State{}, err
	}
	if err != nil {
		t.logger.LogAttrs(ctx, slog.LevelWarn, "load failed, using defaults", errors.SlogError(err))
		state = NewState()
	}
	t.mu.Lock()
	pending, ok := t.pending[contexthelpers.AuthenticatedUserID(ctx)]
	t.mu.Unlock()
	if ok {
		state.Apply(pending)
	}
	return state, nil
}

// save persists p together with earlier unsaved patches and reports success. Failures are logged and kept.
func (t *Tracker) save(ctx context.Context, p Patch) bool {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	t.mu.Lock()
	merged := t.pending[userID].Merge(p)
	delete(t.pending, userID)
	t.mu.Unlock()

	err := t.store.Save(ctx, merged)
	if err == nil {
		return true
	}
	t.observer.SaveFailed()
	t.logger.LogAttrs(ctx, slog.LevelError, "save failed, keeping changes in memory", errors.SlogError(err))
	t.mu.Lock()
	if newer, ok := t.pending[userID]; ok {
		merged = merged.Merge(newer)
	}
	t.pending[userID] = merged
	t.mu.Unlock()
	return false
}

// localNow is the current time in the user's timezone. Calendar days and workout hours are evaluated in it.
func (t *Tracker) localNow(state State) time.Time {
	return t.now().In(state.Preferences.Location())
}

// Pending reports whether the user in ctx has unsaved changes.
func (t *Tracker) Pending(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.pending[contexthelpers.AuthenticatedUserID(ctx)]
	return ok
}
