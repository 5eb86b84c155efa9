// Command simulate serves a fabricated play-by-play feed so the service
// can be run locally without a provider API key. Point feed_base_url at
// this process and watch a scripted game unfold.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jasper9/nbastats.fun/internal/feedsim"
	"github.com/jasper9/nbastats.fun/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", ":8091", "listen address for the simulated feed")
	perPoll := flag.Int("per-poll", 8, "plays revealed per poll")
	games := flag.Int("games", 1, "number of simultaneous scripted games")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	matchups := [][2]string{
		{"Boston Celtics", "Los Angeles Lakers"},
		{"Denver Nuggets", "Miami Heat"},
		{"Oklahoma City Thunder", "New York Knicks"},
	}
	var scripted []*feedsim.Game
	for i := 0; i < *games && i < len(matchups); i++ {
		scripted = append(scripted, feedsim.NewGame(ctx, 1000+i, matchups[i][0], matchups[i][1]))
	}

	srv := feedsim.NewServer(*perPoll, scripted...)
	if err := srv.Serve(ctx, *addr); err != nil {
		logger.Get().Error(ctx, "simulator failed", logger.Error(err))
	}
}
