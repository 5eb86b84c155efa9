// Package history persists per-game commentary records. Each game owns a
// single JSON document holding the message feed, the score timeline and the
// box score, written atomically so a crash never leaves a partial file
// behind.
package history

import (
	"context"

	"github.com/jasper9/nbastats.fun/internal/domain/model"
)

// Store is the durable record of everything the pipeline has said about a
// game. Writers go through Append and friends; readers get an independent
// copy via Get.
type Store interface {
	// Ensure creates the record for gameID if it does not exist yet and
	// returns it. An existing record on disk is loaded as-is, which is how
	// state survives a restart.
	Ensure(ctx context.Context, gameID string, info model.GameInfo) (*model.History, error)

	// Append adds messages to the record, silently dropping any whose
	// dedup key was appended before. It returns the number actually added
	// and persists only when that number is positive.
	Append(ctx context.Context, gameID string, msgs []model.Message) (int, error)

	// RecordScore appends a point to the score timeline unless it repeats
	// the previous entry's score.
	RecordScore(ctx context.Context, gameID string, point model.ScorePoint) error

	// SetStatus updates the live progress fields and persists the record.
	SetStatus(ctx context.Context, gameID string, status string, lastAction, totalActions, leadChanges int) error

	// SavePlayerStats replaces the box score section.
	SavePlayerStats(ctx context.Context, gameID string, stats []model.PlayerStatLine) error

	// Finalize marks the record final with the given score. Calling it
	// again with the same score is a no-op; appends after it fail with
	// ErrFinalized.
	Finalize(ctx context.Context, gameID string, final model.FinalScore) error

	// Get returns a copy of the record, or ErrNotFound.
	Get(ctx context.Context, gameID string) (*model.History, error)

	// MessageCount reports how many messages the record holds.
	MessageCount(ctx context.Context, gameID string) (int, error)

	// LastSequence reports the highest play sequence stamped on any stored
	// message, zero when none carry one.
	LastSequence(ctx context.Context, gameID string) (int, error)
}
