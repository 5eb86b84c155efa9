package tracker

// PlayerLedger holds cumulative per-player counters for one game. Counters
// only ever increase; the announced set enforces at-most-once milestone
// emission for the player-game.
type PlayerLedger struct {
	Points      int
	Rebounds    int
	OffRebounds int
	DefRebounds int
	Assists     int
	Steals      int
	Blocks      int
	Turnovers   int
	Fouls       int
	FGAttempts  int
	FGMakes     int
	FTAttempts  int
	FTMakes     int

	announced map[string]struct{}
}

func newPlayerLedger() *PlayerLedger {
	return &PlayerLedger{announced: make(map[string]struct{})}
}

// Announced reports whether a milestone key was already emitted for this
// player-game.
func (l *PlayerLedger) Announced(key string) bool {
	_, ok := l.announced[key]
	return ok
}

// MarkAnnounced records a milestone key so it is never emitted again.
func (l *PlayerLedger) MarkAnnounced(key string) {
	l.announced[key] = struct{}{}
}

// CategoryCounts returns the five double-double categories in a fixed
// order: points, rebounds, assists, steals, blocks.
func (l *PlayerLedger) CategoryCounts() [5]int {
	return [5]int{l.Points, l.Rebounds, l.Assists, l.Steals, l.Blocks}
}
