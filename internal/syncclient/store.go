package syncclient

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/myrjola/repcoach/internal/errors"
	"github.com/myrjola/repcoach/internal/progress"
)

// SyncStore decorates a local store. Loads merge the server's completed days into the local ones and saves push new
// days to the server. The local store stays authoritative: remote failures are logged and the days are pushed again
// with the next save.
type SyncStore struct {
	local  progress.Store
	remote *Client
	logger *slog.Logger

	mu       sync.Mutex
	unpushed []progress.DayRef
}

func NewSyncStore(local progress.Store, remote *Client, logger *slog.Logger) *SyncStore {
	return &SyncStore{local: local, remote: remote, logger: logger}
}

func (s *SyncStore) Load(ctx context.Context) (progress.State, error) {
	state, err := s.local.Load(ctx)
	if err != nil {
		return progress.State{}, err
	}
	remote, err := s.remote.FetchProgress(ctx)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "fetch remote progress failed", errors.SlogError(err))
		return state, nil
	}
	state.CompletedDays.Merge(remote)
	return state, nil
}

func (s *SyncStore) Save(ctx context.Context, p progress.Patch) error {
	if err := s.local.Save(ctx, p); err != nil {
		return err
	}
	days := slices.Clone(p.AddDays)
	for key, ids := range p.ReplaceCompletedDays {
		for _, id := range ids {
			days = append(days, progress.DayRef{ExerciseKey: key, DayID: id})
		}
	}

	s.mu.Lock()
	days = append(s.unpushed, days...)
	s.unpushed = nil
	s.mu.Unlock()
	if len(days) == 0 {
		return nil
	}

	failed, err := s.remote.PushAll(ctx, days)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "push to remote failed, retrying with next save",
			slog.Int("failed", len(failed)), errors.SlogError(err))
		s.mu.Lock()
		s.unpushed = append(s.unpushed, failed...)
		s.mu.Unlock()
	}
	return nil
}

// Unpushed returns the days waiting for the next push.
func (s *SyncStore) Unpushed() []progress.DayRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.unpushed)
}
