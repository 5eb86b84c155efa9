// Package milestone evaluates ledgers and game state for newly-crossed
// statistical thresholds. Every detector consults an announced-key set on
// the underlying state, so each threshold fires at most once per
// player-game (or per side-tier-period for blowout leads) even across
// process restarts, provided the state was rebuilt by replay.
package milestone

import (
	"fmt"

	"github.com/jasper9/nbastats.fun/internal/domain/model"
	"github.com/jasper9/nbastats.fun/internal/domain/tracker"
)

// Tier tables, ascending. The highest newly-true tier wins and marks all
// lower tiers announced without separate messages.
var (
	scoringTiers   = []int{20, 30, 40, 50, 60}
	defensiveTiers = []int{5, 10, 15, 20}
	bigLeadTiers   = []int{20, 25, 30}
)

// doubleCategoryMin is the per-category floor for double/triple-doubles.
const doubleCategoryMin = 10

const (
	keyDoubleDouble = "dd"
	keyTripleDouble = "td"
)

// Detect evaluates a player's ledger after a mutation and returns the
// milestone facts that crossed on this play. Order matters: the
// double/triple-double rule runs first, then scoring, then the defensive
// stats, matching announcement priority.
func Detect(player string, led *tracker.PlayerLedger) []model.Fact {
	if led == nil {
		return nil
	}

	var facts []model.Fact

	if f := detectDoubles(player, led); f != nil {
		facts = append(facts, *f)
	}
	if f := detectTiered(player, led, model.MilestonePoints, led.Points, scoringTiers); f != nil {
		facts = append(facts, *f)
	}
	if f := detectTiered(player, led, model.MilestoneBlocks, led.Blocks, defensiveTiers); f != nil {
		facts = append(facts, *f)
	}
	if f := detectTiered(player, led, model.MilestoneSteals, led.Steals, defensiveTiers); f != nil {
		facts = append(facts, *f)
	}

	return facts
}

// detectDoubles handles the double/triple-double pair. A triple-double
// suppresses the double-double for the rest of the player-game.
func detectDoubles(player string, led *tracker.PlayerLedger) *model.Fact {
	categories := 0
	for _, count := range led.CategoryCounts() {
		if count >= doubleCategoryMin {
			categories++
		}
	}

	switch {
	case categories >= 3 && !led.Announced(keyTripleDouble):
		led.MarkAnnounced(keyTripleDouble)
		led.MarkAnnounced(keyDoubleDouble)
		return &model.Fact{
			Kind:      model.FactMilestone,
			Player:    player,
			Milestone: model.MilestoneTripleDouble,
			Value:     categories,
		}
	case categories >= 2 && !led.Announced(keyDoubleDouble) && !led.Announced(keyTripleDouble):
		led.MarkAnnounced(keyDoubleDouble)
		return &model.Fact{
			Kind:      model.FactMilestone,
			Player:    player,
			Milestone: model.MilestoneDoubleDouble,
			Value:     categories,
		}
	}
	return nil
}

// detectTiered finds the highest newly-crossed tier for one stat and marks
// it plus every lower tier announced, so a player jumping 28 to 41 points
// yields a single 40-point fact and no late 30-point message.
func detectTiered(player string, led *tracker.PlayerLedger, kind model.MilestoneKind, value int, tiers []int) *model.Fact {
	highest := 0
	for _, tier := range tiers {
		if value >= tier {
			highest = tier
		}
	}
	if highest == 0 || led.Announced(tierKey(kind, highest)) {
		return nil
	}

	for _, tier := range tiers {
		if tier <= highest {
			led.MarkAnnounced(tierKey(kind, tier))
		}
	}
	return &model.Fact{
		Kind:      model.FactMilestone,
		Player:    player,
		Milestone: kind,
		Value:     highest,
	}
}

func tierKey(kind model.MilestoneKind, tier int) string {
	return fmt.Sprintf("%s:%d", kind, tier)
}

// DetectBigLead evaluates the current lead against the blowout tiers after
// a score-changing play. Keys are (side, tier, period): a tier never fires
// twice within one period, but may fire again in a later period after the
// lead dipped below the tier and climbed back. Returns nil when nothing
// newly crossed.
func DetectBigLead(t *tracker.Tracker, period int) *model.Fact {
	snap := t.Snapshot()

	lead := snap.HomeScore - snap.AwayScore
	side := model.SideHome
	if lead < 0 {
		lead = -lead
		side = model.SideAway
	}
	if lead == 0 {
		return nil
	}

	highest := 0
	for _, tier := range bigLeadTiers {
		if lead >= tier {
			highest = tier
		}
	}
	if highest == 0 {
		return nil
	}

	key := fmt.Sprintf("%s:%d:p%d", side, highest, period)
	if t.BigLeadAnnounced(key) {
		return nil
	}
	for _, tier := range bigLeadTiers {
		if tier <= highest {
			t.MarkBigLead(fmt.Sprintf("%s:%d:p%d", side, tier, period))
		}
	}

	return &model.Fact{
		Kind:   model.FactBigLead,
		Side:   side,
		Amount: lead,
		Period: period,
	}
}
