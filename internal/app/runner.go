package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jasper9/nbastats.fun/internal/adapters/feed"
	"github.com/jasper9/nbastats.fun/internal/adapters/http/api"
	"github.com/jasper9/nbastats.fun/internal/adapters/mq/queue"
	"github.com/jasper9/nbastats.fun/internal/domain/compose"
	"github.com/jasper9/nbastats.fun/internal/domain/milestone"
	"github.com/jasper9/nbastats.fun/internal/domain/model"
	"github.com/jasper9/nbastats.fun/internal/domain/normalize"
	"github.com/jasper9/nbastats.fun/internal/domain/tracker"
	"github.com/jasper9/nbastats.fun/pkg/logger"
	"github.com/jasper9/nbastats.fun/pkg/metrics"
)

// runner owns the full commentary pipeline for a single game: it drains
// the play queue, folds plays into the tracker, detects milestones,
// composes messages, and persists them. All tracker mutation happens on
// the runner goroutine; mu guards reads from the API side.
type runner struct {
	svc    *Service
	gameID string
	feedID int
	info   model.GameInfo

	norm  *normalize.Normalizer
	queue queue.Queue
	comp  *compose.Composer

	mu    sync.Mutex
	track *tracker.Tracker
	seen  int // plays applied, including replayed ones

	finalMu   sync.Mutex
	finalGame *feed.Game

	closeOnce sync.Once
	log       logger.Logger
}

// newRunner builds a runner for one game and rebuilds its state from the
// stored record when one exists. Callers hold s.mu.
func (s *Service) newRunner(ctx context.Context, g feed.Game) (*runner, error) {
	info := g.Info()
	if _, err := s.store.Ensure(ctx, g.Key(), info); err != nil {
		return nil, err
	}

	r := &runner{
		svc:    s,
		gameID: g.Key(),
		feedID: g.ID,
		info:   info,
		norm:   normalize.New(),
		queue:  queue.NewInMemoryQueue(g.Key(), queue.WithCapacity(s.queueSize)),
		comp:   compose.New(s.rewriter, compose.WithClock(s.now)),
		track:  tracker.New(tracker.WithMinLeadAnnounce(s.minLeadAnnounce)),
		log:    logger.Named("runner").Named(g.Key()),
	}

	if err := r.restore(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// restore replays already-announced plays through a fresh tracker so the
// counters and announced-milestone keys match the stored record. Nothing
// is composed during replay; the sequence filter's high-water mark is
// advanced so the poller will not re-deliver what the record covers.
func (r *runner) restore(ctx context.Context) error {
	last, err := r.svc.store.LastSequence(ctx, r.gameID)
	if err != nil {
		return err
	}
	if last == 0 {
		return nil
	}

	plays, err := r.svc.feed.Plays(ctx, r.feedID)
	if err != nil {
		return fmt.Errorf("restore %s: %w", r.gameID, err)
	}
	// Run the full detection pipeline without composing anything: the
	// detectors mark their announced keys as a side effect, which is what
	// keeps already-delivered milestones from firing again.
	replayed := 0
	for _, wp := range plays {
		if wp.Order > last {
			break
		}
		p, err := r.norm.Normalize(wp.Raw())
		if err != nil {
			continue
		}
		snap, _, err := r.track.Apply(p)
		if err != nil {
			continue
		}
		replayed++
		for _, player := range snap.Touched {
			milestone.Detect(player, r.track.Ledger(player))
		}
		if p.Scoring {
			milestone.DetectBigLead(r.track, p.Period)
		}
	}
	r.seen = replayed
	r.svc.filter.SeenAndRecord(ctx, r.gameID, last)

	r.log.Info(ctx, "restored game state",
		logger.Int("replayed", replayed),
		logger.Int("last_sequence", last))
	return nil
}

// run drains the queue until it closes, then finalizes if the game ended.
func (r *runner) run(ctx context.Context) {
	for p := range r.queue.Dequeue(ctx) {
		r.process(ctx, p)
	}
	if ctx.Err() != nil {
		return
	}

	r.finalMu.Lock()
	g := r.finalGame
	r.finalMu.Unlock()
	if g != nil {
		r.finalize(ctx, *g)
	}
}

// process pushes one play through tracker, detectors, composer and store.
func (r *runner) process(ctx context.Context, p model.Play) {
	r.mu.Lock()
	snap, facts, err := r.track.Apply(p)
	if err != nil {
		r.mu.Unlock()
		metrics.RecordPlayDropped("rejected")
		r.log.Debug(ctx, "play rejected",
			logger.Int("sequence", p.Sequence),
			logger.Error(err))
		return
	}
	r.seen++
	for _, player := range snap.Touched {
		facts = append(facts, milestone.Detect(player, r.track.Ledger(player))...)
	}
	if p.Scoring {
		if f := milestone.DetectBigLead(r.track, p.Period); f != nil {
			facts = append(facts, *f)
		}
	}
	r.mu.Unlock()

	for _, f := range facts {
		metrics.RecordFactDetected(string(f.Kind))
	}

	msgs := r.comp.Compose(ctx, p, facts, r.info)
	metrics.RecordMessagesComposed(len(msgs))

	if p.Scoring {
		point := model.ScorePoint{
			Home:     p.HomeScore,
			Away:     p.AwayScore,
			Sequence: p.Sequence,
			Period:   p.Period,
			Clock:    p.Clock,
		}
		if err := r.svc.store.RecordScore(ctx, r.gameID, point); err != nil {
			r.log.Warn(ctx, "score point not persisted", logger.Error(err))
		}
	}

	added := 0
	if len(msgs) > 0 {
		var err error
		added, err = r.svc.store.Append(ctx, r.gameID, msgs)
		if err != nil {
			// The in-memory record keeps the messages; the next
			// successful write persists them along with everything else.
			r.log.Warn(ctx, "append not persisted", logger.Error(err))
		}
	}

	status := fmt.Sprintf("In Progress Q%d %s", p.Period, p.Clock)
	if err := r.svc.store.SetStatus(ctx, r.gameID, status, p.Sequence, r.playCount(), snap.LeadChanges); err != nil {
		r.log.Warn(ctx, "status not persisted", logger.Error(err))
	}

	if added > 0 {
		r.svc.hub.Publish(r.gameID, msgs)
	}
}

// finish hands the runner the final game snapshot and closes its queue;
// the run loop drains what is buffered and then finalizes.
func (r *runner) finish(g feed.Game) {
	r.finalMu.Lock()
	if r.finalGame == nil {
		snapshot := g
		r.finalGame = &snapshot
	}
	r.finalMu.Unlock()
	r.close()
}

// finalize writes the closing commentary, box score and final status, then
// releases the runner after the postgame grace period.
func (r *runner) finalize(ctx context.Context, g feed.Game) {
	rec, err := r.svc.store.Get(ctx, r.gameID)
	if err == nil && rec.Final() {
		r.svc.release(r.gameID)
		return
	}

	final := model.FinalScore{Home: g.HomeScore, Away: g.VisitorScore}
	closing := model.Play{
		Sequence:  r.lastSequence() + 1,
		Period:    g.Period,
		Clock:     "0:00",
		HomeScore: g.HomeScore,
		AwayScore: g.VisitorScore,
		Category:  model.CategoryUnknown,
	}
	side := model.SideHome
	margin := g.HomeScore - g.VisitorScore
	if margin < 0 {
		side = model.SideAway
		margin = -margin
	}
	facts := []model.Fact{{Kind: model.FactGameFinal, Side: side, Amount: margin}}
	msgs := r.comp.Compose(ctx, closing, facts, r.info)
	if _, err := r.svc.store.Append(ctx, r.gameID, msgs); err != nil {
		r.log.Warn(ctx, "closing message not persisted", logger.Error(err))
	}

	if stats, err := r.svc.feed.Stats(ctx, r.feedID); err == nil {
		lines := make([]model.PlayerStatLine, 0, len(stats))
		for _, st := range stats {
			lines = append(lines, st.Line())
		}
		if err := r.svc.store.SavePlayerStats(ctx, r.gameID, lines); err != nil {
			r.log.Warn(ctx, "box score not persisted", logger.Error(err))
		}
	} else {
		r.log.Warn(ctx, "box score fetch failed", logger.Error(err))
	}

	if err := r.svc.store.Finalize(ctx, r.gameID, final); err != nil {
		// The record is still non-final, so dropping the runner sends the
		// next poll through the catch-up path, which rebuilds it and
		// re-attempts the terminal write.
		r.log.Error(ctx, "finalize failed", logger.Error(err))
		r.svc.release(r.gameID)
		return
	}
	r.svc.hub.Publish(r.gameID, msgs)

	// Keep serving the record while late readers catch up, then drop the
	// in-memory state.
	select {
	case <-ctx.Done():
	case <-time.After(r.svc.postgameGrace):
	}
	r.svc.release(r.gameID)
	r.log.Info(ctx, "game released",
		logger.Int("home", final.Home),
		logger.Int("away", final.Away))
}

func (r *runner) close() {
	r.closeOnce.Do(func() {
		_ = r.queue.Close()
	})
}

func (r *runner) playCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen
}

func (r *runner) lastSequence() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.track.LastSequence()
}

// status renders the runner's current view for the game listing.
func (r *runner) status(ctx context.Context) api.GameStatus {
	r.mu.Lock()
	snap := r.track.Snapshot()
	r.mu.Unlock()

	n, _ := r.svc.store.MessageCount(ctx, r.gameID)
	st := "In Progress"
	r.finalMu.Lock()
	if r.finalGame != nil {
		st = model.StatusFinal
	}
	r.finalMu.Unlock()

	return api.GameStatus{
		GameID:    r.gameID,
		HomeTeam:  r.info.HomeTeam,
		AwayTeam:  r.info.AwayTeam,
		HomeScore: snap.HomeScore,
		AwayScore: snap.AwayScore,
		Status:    st,
		Messages:  n,
	}
}
