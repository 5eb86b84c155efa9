// Package app runs the commentary service: it polls the score feed on a
// schedule, spins up one runner per live game, and implements the
// dependencies required by the HTTP API.
package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/jasper9/nbastats.fun/internal/adapters/broadcast"
	"github.com/jasper9/nbastats.fun/internal/adapters/feed"
	"github.com/jasper9/nbastats.fun/internal/adapters/history"
	"github.com/jasper9/nbastats.fun/internal/adapters/http/api"
	"github.com/jasper9/nbastats.fun/internal/domain/compose"
	"github.com/jasper9/nbastats.fun/internal/domain/dedupe"
	"github.com/jasper9/nbastats.fun/internal/domain/model"
	"github.com/jasper9/nbastats.fun/pkg/logger"
	"github.com/jasper9/nbastats.fun/pkg/metrics"
)

const (
	defaultPollInterval     = 30 * time.Second
	defaultIdlePollInterval = 60 * time.Second
	defaultPostgameGrace    = 5 * time.Minute
	defaultQueueSize        = 2048
)

// Service coordinates feed polling and per-game commentary runners.
type Service struct {
	mu sync.RWMutex

	feed     *feed.Client
	store    history.Store
	rewriter compose.Rewriter
	hub      *broadcast.Hub
	filter   dedupe.Filter

	runners map[string]*runner

	pollInterval     time.Duration
	idlePollInterval time.Duration
	postgameGrace    time.Duration
	queueSize        int
	minLeadAnnounce  int
	now              func() time.Time

	sched    gocron.Scheduler
	pollJob  gocron.Job
	interval time.Duration

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPollInterval sets the live-game polling cadence.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithIdlePollInterval sets the cadence while no game is live.
func WithIdlePollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.idlePollInterval = d
		}
	}
}

// WithPostgameGrace sets how long a finished game's runner lingers before
// its state is released.
func WithPostgameGrace(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.postgameGrace = d
		}
	}
}

// WithQueueSize bounds each runner's play queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMinLeadAnnounce suppresses largest-lead commentary below this margin.
func WithMinLeadAnnounce(margin int) Option {
	return func(s *Service) {
		if margin > 0 {
			s.minLeadAnnounce = margin
		}
	}
}

// WithClock overrides the time source. Tests pin it.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service around its collaborators.
func New(fc *feed.Client, store history.Store, rewriter compose.Rewriter, hub *broadcast.Hub, opts ...Option) *Service {
	s := &Service{
		feed:             fc,
		store:            store,
		rewriter:         rewriter,
		hub:              hub,
		filter:           dedupe.NewSequenceFilter(),
		runners:          make(map[string]*runner),
		pollInterval:     defaultPollInterval,
		idlePollInterval: defaultIdlePollInterval,
		postgameGrace:    defaultPostgameGrace,
		queueSize:        defaultQueueSize,
		now:              time.Now,
		logger:           logger.Named("app"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the polling schedule. The first poll runs immediately so a
// restart mid-game picks up without waiting a full interval.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.sched = sched
	s.interval = s.idlePollInterval

	job, err := sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.pollOnce(ctx) }),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}
	s.pollJob = job

	sched.Start()
	s.started = true
	s.logger.Info(ctx, "commentary service started",
		logger.Duration("poll_interval", s.pollInterval),
		logger.Duration("idle_poll_interval", s.idlePollInterval),
	)
	return nil
}

// Stop shuts the scheduler down and closes every runner's queue. Runner
// goroutines drain what they have and exit.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.sched != nil {
		_ = s.sched.Shutdown()
	}
	for _, r := range s.runners {
		r.close()
	}
	s.started = false
	s.logger.Info(context.Background(), "commentary service stopped")
}

// pollOnce runs one feed cycle: discover today's games, route plays into
// live runners, and hand final scores to runners whose games ended.
func (s *Service) pollOnce(ctx context.Context) {
	date := s.now().UTC().Format("2006-01-02")
	games, err := s.feed.Games(ctx, date)
	if err != nil {
		s.logger.Warn(ctx, "feed poll failed", logger.Error(err))
		return
	}

	liveCount := 0
	for _, g := range games {
		switch {
		case g.Live():
			liveCount++
			r := s.runnerFor(ctx, g)
			if r == nil {
				continue
			}
			s.feedPlays(ctx, r, g)
		case g.Final():
			s.mu.RLock()
			r := s.runners[g.Key()]
			s.mu.RUnlock()
			if r == nil && s.unseenFinal(ctx, g) {
				// Game ended while we were down; reconstruct from scratch.
				r = s.runnerFor(ctx, g)
			}
			if r != nil {
				s.feedPlays(ctx, r, g)
				r.finish(g)
			}
		}
	}

	metrics.UpdateActiveGames(s.runnerCount())
	s.retune(liveCount)
}

// feedPlays pushes a game's new plays through the sequence filter into its
// runner queue. A play that cannot be queued is un-marked so the next poll
// retries it.
func (s *Service) feedPlays(ctx context.Context, r *runner, g feed.Game) {
	plays, err := s.feed.Plays(ctx, g.ID)
	if err != nil {
		s.logger.Warn(ctx, "play fetch failed",
			logger.String("game_id", g.Key()),
			logger.Error(err))
		return
	}
	for _, wp := range plays {
		if s.filter.SeenAndRecord(ctx, g.Key(), wp.Order) {
			metrics.RecordPlayDuplicate()
			continue
		}
		p, err := r.norm.Normalize(wp.Raw())
		if err != nil {
			metrics.RecordPlayDropped("unparseable")
			continue
		}
		metrics.RecordPlayNormalized()
		if !r.queue.Enqueue(ctx, p) {
			s.filter.Forget(ctx, g.Key(), wp.Order)
			return
		}
	}
}

// runnerFor returns the game's runner, creating and starting one on first
// sight. Returns nil when the runner could not be initialized.
func (s *Service) runnerFor(ctx context.Context, g feed.Game) *runner {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.runners[g.Key()]; ok {
		return r
	}
	r, err := s.newRunner(ctx, g)
	if err != nil {
		s.logger.Error(ctx, "runner setup failed",
			logger.String("game_id", g.Key()),
			logger.Error(err))
		return nil
	}
	s.runners[g.Key()] = r
	go r.run(ctx)
	s.logger.Info(ctx, "tracking game",
		logger.String("game_id", g.Key()),
		logger.String("matchup", g.Info().AwayTeam+" @ "+g.Info().HomeTeam))
	return r
}

// unseenFinal reports whether a final game still needs processing: either
// no record exists or the stored record never reached Final. This is the
// catch-up path for games that ended while the service was down.
func (s *Service) unseenFinal(ctx context.Context, g feed.Game) bool {
	rec, err := s.store.Get(ctx, g.Key())
	if err != nil {
		return true
	}
	return !rec.Final()
}

// release removes a finished game's runner and filter state. Called by the
// runner itself after the postgame grace period.
func (s *Service) release(gameID string) {
	s.mu.Lock()
	delete(s.runners, gameID)
	s.mu.Unlock()
	s.filter.Release(gameID)
	metrics.UpdateActiveGames(s.runnerCount())
}

func (s *Service) runnerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runners)
}

// retune switches the poll cadence between live and idle intervals.
func (s *Service) retune(liveCount int) {
	desired := s.idlePollInterval
	if liveCount > 0 {
		desired = s.pollInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if desired == s.interval || s.sched == nil || s.pollJob == nil {
		return
	}
	job, err := s.sched.Update(s.pollJob.ID(),
		gocron.DurationJob(desired),
		gocron.NewTask(func() { s.pollOnce(context.Background()) }),
	)
	if err != nil {
		s.logger.Warn(context.Background(), "poll retune failed", logger.Error(err))
		return
	}
	s.pollJob = job
	s.interval = desired
}

// History implements api.Dependencies.
func (s *Service) History(ctx context.Context, gameID string) (*model.History, error) {
	return s.store.Get(ctx, gameID)
}

// ActiveGames implements api.Dependencies.
func (s *Service) ActiveGames(ctx context.Context) []api.GameStatus {
	s.mu.RLock()
	runners := make([]*runner, 0, len(s.runners))
	for _, r := range s.runners {
		runners = append(runners, r)
	}
	s.mu.RUnlock()

	out := make([]api.GameStatus, 0, len(runners))
	for _, r := range runners {
		out = append(out, r.status(ctx))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameID < out[j].GameID })
	return out
}
