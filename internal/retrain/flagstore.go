package retrain

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"

	"github.com/energyops/forecast-guard/internal/artifact"
	"github.com/energyops/forecast-guard/internal/errors"
	"github.com/energyops/forecast-guard/internal/models"
)

// LoadOutcome describes how a flag read resolved.
type LoadOutcome string

const (
	// OutcomeFound means a valid flag was read from storage.
	OutcomeFound LoadOutcome = "found"

	// OutcomeNotFound means no flag has ever been persisted.
	OutcomeNotFound LoadOutcome = "not_found"

	// OutcomeUnreadable means a flag exists but could not be read or
	// parsed after retries.
	OutcomeUnreadable LoadOutcome = "unreadable"
)

// LoadResult carries a flag read together with how it resolved, so callers
// can distinguish a genuine "no retrain needed" from an absent or corrupt
// flag.
type LoadResult struct {
	Outcome LoadOutcome
	Flag    models.RetrainFlag
	Err     error
}

// ShouldRetrain applies the conservative default: only a flag that was
// actually found and reads false suppresses retraining. Absent or
// unreadable state means retrain.
func (r LoadResult) ShouldRetrain() bool {
	if r.Outcome == OutcomeFound {
		return r.Flag.ShouldRetrain
	}
	return true
}

// FlagStore persists the retrain flag through an artifact store.
type FlagStore struct {
	store  artifact.Store
	key    string
	logger *slog.Logger
}

// NewFlagStore creates a flag store writing under the given artifact key.
func NewFlagStore(store artifact.Store, key string, logger *slog.Logger) *FlagStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlagStore{store: store, key: key, logger: logger.With(slog.String("component", "flag_store"))}
}

// Save persists the flag. A write failure is fatal: the next run decides
// from this flag, and silently losing a "retrain" signal would let a
// degraded model keep serving.
func (s *FlagStore) Save(ctx context.Context, flag models.RetrainFlag) error {
	data, err := json.MarshalIndent(flag, "", "  ")
	if err != nil {
		return errors.New(errors.ClassStorageWrite, "flag_store", "marshal flag", err)
	}
	if err := s.store.Write(ctx, s.key, data); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "retrain flag saved",
		slog.Bool("should_retrain", flag.ShouldRetrain),
		slog.Time("date", flag.Date))
	return nil
}

// Load reads the flag and reports how the read resolved. It never returns
// an error: every failure mode maps to an explicit outcome, and the
// ShouldRetrain default covers the degraded cases.
func (s *FlagStore) Load(ctx context.Context) LoadResult {
	data, err := s.store.Read(ctx, s.key)
	if err != nil {
		if stderrors.Is(err, artifact.ErrNotFound) {
			s.logger.InfoContext(ctx, "no retrain flag found, defaulting to retrain")
			return LoadResult{Outcome: OutcomeNotFound}
		}
		s.logger.WarnContext(ctx, "retrain flag unreadable, defaulting to retrain",
			slog.String("error", err.Error()))
		return LoadResult{Outcome: OutcomeUnreadable, Err: err}
	}

	var flag models.RetrainFlag
	if err := json.Unmarshal(data, &flag); err != nil {
		s.logger.WarnContext(ctx, "retrain flag corrupt, defaulting to retrain",
			slog.String("error", err.Error()))
		return LoadResult{Outcome: OutcomeUnreadable, Err: err}
	}

	return LoadResult{Outcome: OutcomeFound, Flag: flag}
}
