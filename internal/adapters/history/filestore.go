package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jasper9/nbastats.fun/internal/domain/model"
	"github.com/jasper9/nbastats.fun/pkg/logger"
	"github.com/jasper9/nbastats.fun/pkg/metrics"
)

const fileMode = 0o644

// FileStore keeps one JSON document per game under a directory. Records are
// cached in memory after the first touch; every mutation rewrites the file
// through a temp-file rename so readers never observe a half-written
// document.
type FileStore struct {
	dir string
	now func() time.Time

	mu    sync.Mutex
	games map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	rec  *model.History
	seen map[string]struct{}
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithClock overrides the timestamp source. Tests pin it.
func WithClock(now func() time.Time) Option {
	return func(s *FileStore) {
		s.now = now
	}
}

// NewFileStore opens a store rooted at dir, creating it when missing.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}
	s := &FileStore{
		dir:   dir,
		now:   time.Now,
		games: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *FileStore) path(gameID string) string {
	return filepath.Join(s.dir, "game_"+gameID+".json")
}

// entry returns the cached entry for gameID, loading it from disk on first
// touch. A nil rec means no record exists yet.
func (s *FileStore) entry(gameID string) (*entry, error) {
	s.mu.Lock()
	e, ok := s.games[gameID]
	if !ok {
		e = &entry{seen: make(map[string]struct{})}
		s.games[gameID] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec != nil {
		return e, nil
	}
	raw, err := os.ReadFile(s.path(gameID))
	if os.IsNotExist(err) {
		return e, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}
	var rec model.History
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, gameID, err)
	}
	e.rec = &rec
	for _, m := range rec.Messages {
		e.seen[m.DedupKey()] = struct{}{}
	}
	return e, nil
}

// persist writes the record atomically. Callers hold e.mu.
func (s *FileStore) persist(gameID string, e *entry) error {
	e.rec.UpdatedAt = s.now().UTC()

	raw, err := json.MarshalIndent(e.rec, "", "  ")
	if err != nil {
		metrics.RecordHistoryWriteError()
		return fmt.Errorf("%w: encode %s: %v", ErrPersist, gameID, err)
	}
	tmp, err := os.CreateTemp(s.dir, "game_"+gameID+".*.tmp")
	if err != nil {
		metrics.RecordHistoryWriteError()
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(name)
		metrics.RecordHistoryWriteError()
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		metrics.RecordHistoryWriteError()
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := os.Chmod(name, fileMode); err != nil {
		os.Remove(name)
		metrics.RecordHistoryWriteError()
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := os.Rename(name, s.path(gameID)); err != nil {
		os.Remove(name)
		metrics.RecordHistoryWriteError()
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	metrics.RecordHistoryWrite()
	return nil
}

func (s *FileStore) Ensure(ctx context.Context, gameID string, info model.GameInfo) (*model.History, error) {
	e, err := s.entry(gameID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec == nil {
		e.rec = &model.History{
			Messages: []model.Message{},
			Scores:   []model.ScorePoint{},
			GameInfo: info,
		}
		if err := s.persist(gameID, e); err != nil {
			return nil, err
		}
		logger.Get().Debug(ctx, "created history record", logger.String("game_id", gameID))
	}
	return copyRecord(e.rec), nil
}

func (s *FileStore) Append(ctx context.Context, gameID string, msgs []model.Message) (int, error) {
	e, err := s.entry(gameID)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec == nil {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, gameID)
	}
	if e.rec.Final() {
		return 0, fmt.Errorf("%w: %s", ErrFinalized, gameID)
	}
	added := 0
	for _, m := range msgs {
		key := m.DedupKey()
		if _, dup := e.seen[key]; dup {
			metrics.RecordMessagesDeduped(1)
			continue
		}
		e.seen[key] = struct{}{}
		e.rec.Messages = append(e.rec.Messages, m)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := s.persist(gameID, e); err != nil {
		return added, err
	}
	metrics.RecordMessagesAppended(added)
	return added, nil
}

func (s *FileStore) RecordScore(ctx context.Context, gameID string, point model.ScorePoint) error {
	e, err := s.entry(gameID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, gameID)
	}
	if n := len(e.rec.Scores); n > 0 {
		last := e.rec.Scores[n-1]
		if last.Home == point.Home && last.Away == point.Away {
			return nil
		}
	}
	e.rec.Scores = append(e.rec.Scores, point)
	return s.persist(gameID, e)
}

func (s *FileStore) SetStatus(ctx context.Context, gameID, status string, lastAction, totalActions, leadChanges int) error {
	e, err := s.entry(gameID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, gameID)
	}
	e.rec.Status = status
	e.rec.LastAction = lastAction
	e.rec.TotalActions = totalActions
	e.rec.LeadChanges = leadChanges
	return s.persist(gameID, e)
}

func (s *FileStore) SavePlayerStats(ctx context.Context, gameID string, stats []model.PlayerStatLine) error {
	e, err := s.entry(gameID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, gameID)
	}
	e.rec.PlayerStats = stats
	return s.persist(gameID, e)
}

func (s *FileStore) Finalize(ctx context.Context, gameID string, final model.FinalScore) error {
	e, err := s.entry(gameID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, gameID)
	}
	if e.rec.Final() {
		return nil
	}
	e.rec.Status = model.StatusFinal
	e.rec.FinalScore = final
	if err := s.persist(gameID, e); err != nil {
		return err
	}
	logger.Get().Info(ctx, "finalized history record",
		logger.String("game_id", gameID),
		logger.Int("messages", len(e.rec.Messages)))
	return nil
}

func (s *FileStore) Get(ctx context.Context, gameID string) (*model.History, error) {
	e, err := s.entry(gameID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, gameID)
	}
	return copyRecord(e.rec), nil
}

func (s *FileStore) MessageCount(ctx context.Context, gameID string) (int, error) {
	e, err := s.entry(gameID)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec == nil {
		return 0, nil
	}
	return len(e.rec.Messages), nil
}

func (s *FileStore) LastSequence(ctx context.Context, gameID string) (int, error) {
	e, err := s.entry(gameID)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec == nil {
		return 0, nil
	}
	last := 0
	for _, m := range e.rec.Messages {
		if m.Sequence > last {
			last = m.Sequence
		}
	}
	return last, nil
}

func copyRecord(rec *model.History) *model.History {
	out := *rec
	out.Messages = append([]model.Message(nil), rec.Messages...)
	out.Scores = append([]model.ScorePoint(nil), rec.Scores...)
	if rec.PlayerStats != nil {
		out.PlayerStats = append([]model.PlayerStatLine(nil), rec.PlayerStats...)
	}
	return &out
}
