// Package tracker maintains per-game derived state: score history, largest
// leads, lead-change count, and per-player cumulative ledgers. A Tracker is
// owned exclusively by its game's processing unit and is not safe for
// concurrent use.
package tracker

import (
	"fmt"

	"github.com/jasper9/nbastats.fun/internal/domain/model"
)

// defaultMinLeadAnnounce suppresses largest-lead facts below this margin.
const defaultMinLeadAnnounce = 5

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithMinLeadAnnounce sets the minimum lead size worth a largest-lead fact.
func WithMinLeadAnnounce(minLead int) Option {
	return func(t *Tracker) {
		if minLead > 0 {
			t.minLeadAnnounce = minLead
		}
	}
}

// Snapshot is a read-only view of the game state after a play was applied.
type Snapshot struct {
	HomeScore       int
	AwayScore       int
	Leader          model.Side // empty when tied or scoreless
	LargestLeadHome int
	LargestLeadAway int
	LeadChanges     int
	// Touched lists the players whose ledgers the play mutated, in the
	// order they were credited. The caller runs milestone detection for
	// exactly these.
	Touched []string
}

// Tracker accumulates one game's state play by play.
type Tracker struct {
	lastSequence int
	lastHome     int
	lastAway     int
	leadChanges  int
	largestHome  int
	largestAway  int

	players         map[string]*PlayerLedger
	bigLeadKeys     map[string]struct{}
	minLeadAnnounce int
}

// New creates an empty Tracker for a single game.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		players:         make(map[string]*PlayerLedger),
		bigLeadKeys:     make(map[string]struct{}),
		minLeadAnnounce: defaultMinLeadAnnounce,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Apply folds one play into the game state and returns the resulting
// snapshot plus any newly-crossed lead facts (lead change, tie, largest
// lead only; milestones are the detector's job).
//
// Plays must arrive in ascending sequence order; duplicates and regressions
// are rejected rather than applied, since ledger mutation cannot be rolled
// back.
func (t *Tracker) Apply(p model.Play) (Snapshot, []model.Fact, error) {
	if p.Sequence <= t.lastSequence {
		return Snapshot{}, nil, fmt.Errorf("sequence %d after %d: %w", p.Sequence, t.lastSequence, ErrOutOfOrder)
	}
	if p.HomeScore < t.lastHome || p.AwayScore < t.lastAway {
		return Snapshot{}, nil, fmt.Errorf("score %d-%d after %d-%d: %w",
			p.HomeScore, p.AwayScore, t.lastHome, t.lastAway, ErrScoreRegression)
	}

	var facts []model.Fact
	if p.Scoring {
		facts = t.leadFacts(p)
	}

	touched := t.credit(p)

	t.lastSequence = p.Sequence
	t.lastHome = p.HomeScore
	t.lastAway = p.AwayScore

	snap := t.snapshot()
	snap.Touched = touched
	return snap, facts, nil
}

// leadFacts derives lead change, tie, and largest-lead facts from the score
// delta against the previously applied play.
func (t *Tracker) leadFacts(p model.Play) []model.Fact {
	var facts []model.Fact

	prevDiff := t.lastHome - t.lastAway
	currDiff := p.HomeScore - p.AwayScore

	switch {
	case prevDiff < 0 && currDiff > 0:
		t.leadChanges++
		facts = append(facts, model.Fact{Kind: model.FactLeadChange, Side: model.SideHome})
	case prevDiff > 0 && currDiff < 0:
		t.leadChanges++
		facts = append(facts, model.Fact{Kind: model.FactLeadChange, Side: model.SideAway})
	case currDiff == 0 && prevDiff != 0:
		facts = append(facts, model.Fact{Kind: model.FactTie, Amount: p.HomeScore})
	}

	if homeLead := currDiff; homeLead > t.largestHome {
		if homeLead >= t.minLeadAnnounce {
			facts = append(facts, model.Fact{Kind: model.FactLargestLead, Side: model.SideHome, Amount: homeLead})
		}
		t.largestHome = homeLead
	}
	if awayLead := -currDiff; awayLead > t.largestAway {
		if awayLead >= t.minLeadAnnounce {
			facts = append(facts, model.Fact{Kind: model.FactLargestLead, Side: model.SideAway, Amount: awayLead})
		}
		t.largestAway = awayLead
	}

	return facts
}

// credit applies the play to the acting player's ledger (and the assisting
// player's, for assisted makes). Plays with no resolvable player touch no
// ledger.
func (t *Tracker) credit(p model.Play) []string {
	if p.Player == "" {
		return nil
	}

	led := t.ledger(p.Player)
	touched := []string{p.Player}

	switch p.Category {
	case model.CategoryShot:
		led.FGAttempts++
		if p.Made {
			led.FGMakes++
			led.Points += p.ScoreValue
			if p.Assist != "" && p.Assist != p.Player {
				t.ledger(p.Assist).Assists++
				touched = append(touched, p.Assist)
			}
		}
	case model.CategoryFreeThrow:
		led.FTAttempts++
		if p.Made {
			led.FTMakes++
			led.Points += p.ScoreValue
		}
	case model.CategoryRebound:
		led.Rebounds++
		if p.Offensive {
			led.OffRebounds++
		} else {
			led.DefRebounds++
		}
	case model.CategorySteal:
		led.Steals++
	case model.CategoryBlock:
		led.Blocks++
	case model.CategoryTurnover:
		led.Turnovers++
	case model.CategoryFoul:
		led.Fouls++
	default:
		return nil
	}

	return touched
}

func (t *Tracker) ledger(player string) *PlayerLedger {
	led, ok := t.players[player]
	if !ok {
		led = newPlayerLedger()
		t.players[player] = led
	}
	return led
}

// Ledger returns the cumulative counters for a player, or nil when the
// player has not appeared in this game.
func (t *Tracker) Ledger(player string) *PlayerLedger {
	return t.players[player]
}

// Players returns the names of all players with a ledger.
func (t *Tracker) Players() []string {
	names := make([]string, 0, len(t.players))
	for name := range t.players {
		names = append(names, name)
	}
	return names
}

// LastSequence returns the sequence order of the most recently applied play.
func (t *Tracker) LastSequence() int {
	return t.lastSequence
}

// BigLeadAnnounced reports whether a (side, tier, period) blowout key was
// already announced.
func (t *Tracker) BigLeadAnnounced(key string) bool {
	_, ok := t.bigLeadKeys[key]
	return ok
}

// MarkBigLead records a blowout key for the rest of its period.
func (t *Tracker) MarkBigLead(key string) {
	t.bigLeadKeys[key] = struct{}{}
}

func (t *Tracker) snapshot() Snapshot {
	snap := Snapshot{
		HomeScore:       t.lastHome,
		AwayScore:       t.lastAway,
		LargestLeadHome: t.largestHome,
		LargestLeadAway: t.largestAway,
		LeadChanges:     t.leadChanges,
	}
	switch {
	case t.lastHome > t.lastAway:
		snap.Leader = model.SideHome
	case t.lastAway > t.lastHome:
		snap.Leader = model.SideAway
	}
	return snap
}

// Snapshot returns the current game state without applying anything.
func (t *Tracker) Snapshot() Snapshot {
	return t.snapshot()
}

// Replay rebuilds a fresh Tracker from the full ordered play history. Used
// after a process restart so leads, lead-change counts, and ledgers match
// what incremental processing would have produced. Duplicate sequence
// orders and malformed plays are skipped, mirroring live processing, so
// replaying the same list any number of times yields identical state.
func Replay(plays []model.Play, opts ...Option) *Tracker {
	t := New(opts...)
	for _, p := range plays {
		if p.Sequence <= t.lastSequence {
			continue
		}
		if _, _, err := t.Apply(p); err != nil {
			continue
		}
	}
	return t
}
