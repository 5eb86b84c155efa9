package feedsim

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/jasper9/nbastats.fun/pkg/logger"
)

// Server exposes scripted games over the provider's HTTP surface. Every
// poll of the plays endpoint reveals a little more of the script, so a
// commentary service pointed at it sees a game unfold in real time.
type Server struct {
	mu      sync.Mutex
	games   map[int]*Game
	perPoll int
	log     logger.Logger
}

// NewServer wraps scripted games in a provider-shaped HTTP handler.
// perPoll is how many plays each plays request reveals.
func NewServer(perPoll int, games ...*Game) *Server {
	if perPoll <= 0 {
		perPoll = 8
	}
	s := &Server{
		games:   make(map[int]*Game),
		perPoll: perPoll,
		log:     logger.Named("feedsim"),
	}
	for _, g := range games {
		s.games[g.ID] = g
	}
	return s
}

// Handler returns the provider-shaped route set.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /games", s.handleGames)
	mux.HandleFunc("GET /plays", s.handlePlays)
	mux.HandleFunc("GET /stats", s.handleStats)
	return mux
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]any, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, g.Snapshot())
	}
	envelope(w, out)
}

func (s *Server) handlePlays(w http.ResponseWriter, r *http.Request) {
	g := s.lookup(w, r)
	if g == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := g.Advance(s.perPoll)
	if remaining == 0 && !g.Done() {
		s.log.Debug(r.Context(), "script exhausted", logger.Int("game_id", g.ID))
	}
	envelope(w, g.Visible())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	g := s.lookup(w, r)
	if g == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	envelope(w, g.BoxScore())
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) *Game {
	q := r.URL.Query().Get("game_id")
	if q == "" {
		q = r.URL.Query().Get("game_ids[]")
	}
	id, err := strconv.Atoi(q)
	if err != nil {
		http.Error(w, "missing game_id", http.StatusBadRequest)
		return nil
	}
	s.mu.Lock()
	g, ok := s.games[id]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "unknown game", http.StatusNotFound)
		return nil
	}
	return g
}

func envelope(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

// Serve runs the simulator until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	s.log.Info(ctx, "feed simulator listening", logger.String("addr", addr))
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
