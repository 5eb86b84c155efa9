// Package compose turns plays and detected facts into persona-attributed
// commentary messages. Composition is deterministic; the only external
// touch is the optional stylistic rewrite collaborator, which is strictly
// best-effort and can never block or fail the pipeline.
package compose

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jasper9/nbastats.fun/internal/domain/model"
)

// Persona identifiers attached to messages.
const (
	BotPlayByPlay = "play_by_play"
	BotHypeMan    = "hype_man"
	BotStatsNerd  = "stats_nerd"
	BotRefBot     = "ref_bot"
	BotNarrator   = "narrator"
)

// defaultRewriteTimeout bounds a single rewrite call. A slow collaborator
// costs at most this much per eligible message.
const defaultRewriteTimeout = 2 * time.Second

// Rewriter is the narrow seam to the stylistic rewrite collaborator. Any
// error is treated as "not available" and the literal gist is kept.
type Rewriter interface {
	Rewrite(ctx context.Context, persona, gist string, meta map[string]string) (string, error)
}

// Option applies a configuration option to the Composer.
type Option func(*Composer)

// WithRewriteTimeout sets the per-call budget for the rewrite collaborator.
func WithRewriteTimeout(d time.Duration) Option {
	return func(c *Composer) {
		if d > 0 {
			c.rewriteTimeout = d
		}
	}
}

// WithClock overrides the timestamp source. Tests pin it.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) {
		if now != nil {
			c.now = now
		}
	}
}

// Composer renders messages for one or more games; it holds no per-game
// state and is safe for concurrent use by independent game units.
type Composer struct {
	rewriter       Rewriter
	rewriteTimeout time.Duration
	now            func() time.Time
}

// New creates a Composer. A nil rewriter disables rewriting entirely.
func New(rewriter Rewriter, opts ...Option) *Composer {
	c := &Composer{
		rewriter:       rewriter,
		rewriteTimeout: defaultRewriteTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose maps one play plus its detected facts onto zero or more
// messages. Message order within one play is stable: play-by-play first,
// then fact commentary.
func (c *Composer) Compose(ctx context.Context, play model.Play, facts []model.Fact, info model.GameInfo) []model.Message {
	var msgs []model.Message
	msgs = append(msgs, c.playMessages(ctx, play, info)...)
	for _, fact := range facts {
		if m := c.factMessage(ctx, fact, play, info); m != nil {
			msgs = append(msgs, *m)
		}
	}

	for i := range msgs {
		msgs[i].Score = scoreLine(play, info)
		msgs[i].Clock = play.Clock
		msgs[i].Period = play.Period
		msgs[i].Timestamp = c.now()
		msgs[i].Sequence = play.Sequence
	}
	return msgs
}

// playMessages renders the factual narration of the play itself.
func (c *Composer) playMessages(ctx context.Context, play model.Play, info model.GameInfo) []model.Message {
	player := play.Player
	team := play.Team

	switch play.Category {
	case model.CategoryShot:
		if !play.Scoring || play.ScoreValue == 0 {
			return nil
		}
		msgs := []model.Message{{
			Bot:  BotPlayByPlay,
			Type: "score",
			Team: team,
			Text: fmt.Sprintf("💥 %s (%s) hits the %s! %d points.", player, team, shotLabel(play.SubType), play.ScoreValue),
		}}
		if strings.Contains(play.SubType, "dunk") || strings.Contains(play.SubType, "alley oop") {
			hype := model.Message{
				Bot:  BotHypeMan,
				Type: "hype",
				Team: team,
				Text: fmt.Sprintf("🔥🔥🔥 POSTER! %s throws it DOWN!", player),
			}
			hype.Text = c.rewrite(ctx, hype.Bot, hype.Text, map[string]string{
				"player":      player,
				"team":        team,
				"description": play.Description,
			})
			msgs = append(msgs, hype)
		}
		return msgs

	case model.CategoryFreeThrow:
		if !play.Made {
			return nil
		}
		return []model.Message{{
			Bot:  BotPlayByPlay,
			Type: "freethrow",
			Team: team,
			Text: fmt.Sprintf("✓ %s (%s) makes the free throw.", player, team),
		}}

	case model.CategoryBlock:
		return []model.Message{{
			Bot:  BotPlayByPlay,
			Type: "block",
			Team: team,
			Text: fmt.Sprintf("🚫 %s (%s) with the REJECTION!", player, team),
		}}

	case model.CategorySteal:
		return []model.Message{{
			Bot:  BotPlayByPlay,
			Type: "steal",
			Team: team,
			Text: fmt.Sprintf("👋 %s (%s) picks the pocket! Steal!", player, team),
		}}

	case model.CategoryTurnover:
		// Steal-caused turnovers already narrate as steals.
		if strings.Contains(strings.ToLower(play.Description), "steal") {
			return nil
		}
		return []model.Message{{
			Bot:  BotPlayByPlay,
			Type: "turnover",
			Team: team,
			Text: fmt.Sprintf("💨 Turnover by %s (%s)", player, team),
		}}

	case model.CategoryFoul:
		return c.foulMessages(play)

	case model.CategoryChallenge:
		return []model.Message{{
			Bot:  BotRefBot,
			Type: "review",
			Team: team,
			Text: "🖥️ The play goes to review. Officials are taking a look.",
		}}

	case model.CategoryPeriod:
		return c.periodMessages(ctx, play, info)
	}
	return nil
}

// foulMessages routes fouls to the referee voice, with wording escalating
// by severity parsed from the description.
func (c *Composer) foulMessages(play model.Play) []model.Message {
	severity := foulSeverity(play.Description)
	var text string
	switch severity {
	case "ejection":
		text = fmt.Sprintf("🟥 %s has been EJECTED from the game.", play.Player)
	case "flagrant":
		text = fmt.Sprintf("⚠️ Flagrant foul on %s (%s). That one's getting a hard look.", play.Player, play.Team)
	case "technical":
		text = fmt.Sprintf("📣 Technical foul on %s (%s).", play.Player, play.Team)
	default:
		if play.Player == "" {
			return nil
		}
		text = fmt.Sprintf("✋ Foul on %s (%s).", play.Player, play.Team)
	}
	return []model.Message{{
		Bot:  BotRefBot,
		Type: "foul",
		Team: play.Team,
		Text: text,
	}}
}

// periodMessages narrates quarter boundaries; quarter-end adds an
// analytical summary eligible for rewrite.
func (c *Composer) periodMessages(ctx context.Context, play model.Play, info model.GameInfo) []model.Message {
	lower := strings.ToLower(play.SubType + " " + play.Description)
	label := periodLabel(play.Period)

	if strings.Contains(lower, "start") {
		return []model.Message{{
			Bot:  BotPlayByPlay,
			Type: "period",
			Text: fmt.Sprintf("🏀 %s is underway!", label),
		}}
	}
	if !strings.Contains(lower, "end") {
		return nil
	}

	msgs := []model.Message{{
		Bot:  BotPlayByPlay,
		Type: "period",
		Text: fmt.Sprintf("⏱️ End of %s. Score: %s", label, scoreLine(play, info)),
	}}

	lead := play.HomeScore - play.AwayScore
	summary := model.Message{Bot: BotStatsNerd, Type: "summary"}
	switch {
	case lead == 0:
		summary.Text = fmt.Sprintf("📊 %s complete. All square at %d.", label, play.HomeScore)
	default:
		leader, amount := leaderName(lead, info)
		summary.Text = fmt.Sprintf("📊 %s complete. %s leads by %d.", label, leader, amount)
		summary.Text = c.rewrite(ctx, summary.Bot, summary.Text, map[string]string{
			"home_team": info.HomeTeam,
			"away_team": info.AwayTeam,
			"leader":    leader,
			"lead":      fmt.Sprintf("%d", amount),
			"period":    label,
		})
	}
	msgs = append(msgs, summary)
	return msgs
}

// factMessage renders one detected fact into its persona's voice.
func (c *Composer) factMessage(ctx context.Context, fact model.Fact, play model.Play, info model.GameInfo) *model.Message {
	switch fact.Kind {
	case model.FactLeadChange:
		team := teamForSide(fact.Side, info)
		m := model.Message{
			Bot:  BotHypeMan,
			Type: "lead_change",
			Team: team,
			Text: fmt.Sprintf("🔄 LEAD CHANGE! %s takes the lead!", team),
		}
		m.Text = c.rewrite(ctx, m.Bot, m.Text, map[string]string{
			"home_team": info.HomeTeam,
			"away_team": info.AwayTeam,
			"leader":    team,
		})
		return &m

	case model.FactTie:
		m := model.Message{
			Bot:  BotHypeMan,
			Type: "tie",
			Text: fmt.Sprintf("⚖️ TIE GAME! %d-%d", play.AwayScore, play.HomeScore),
		}
		m.Text = c.rewrite(ctx, m.Bot, m.Text, map[string]string{
			"home_team": info.HomeTeam,
			"away_team": info.AwayTeam,
			"score":     fmt.Sprintf("%d", play.HomeScore),
		})
		return &m

	case model.FactLargestLead:
		team := teamForSide(fact.Side, info)
		m := model.Message{
			Bot:  BotStatsNerd,
			Type: "largest_lead",
			Team: team,
			Text: fmt.Sprintf("📈 %s extends to their LARGEST LEAD of the game: +%d!", team, fact.Amount),
		}
		m.Text = c.rewrite(ctx, m.Bot, m.Text, map[string]string{
			"home_team": info.HomeTeam,
			"away_team": info.AwayTeam,
			"leader":    team,
			"lead":      fmt.Sprintf("%d", fact.Amount),
		})
		return &m

	case model.FactBigLead:
		team := teamForSide(fact.Side, info)
		m := model.Message{
			Bot:  BotStatsNerd,
			Type: "big_lead",
			Team: team,
			Text: fmt.Sprintf("🚀 %s is running away with it: up %d in %s.", team, fact.Amount, periodLabel(fact.Period)),
		}
		m.Text = c.rewrite(ctx, m.Bot, m.Text, map[string]string{
			"leader": team,
			"lead":   fmt.Sprintf("%d", fact.Amount),
			"period": periodLabel(fact.Period),
		})
		return &m

	case model.FactMilestone:
		return c.milestoneMessage(fact)

	case model.FactGameFinal:
		winner := teamForSide(fact.Side, info)
		m := model.Message{
			Bot:  BotNarrator,
			Type: "final",
			Team: winner,
			Text: fmt.Sprintf("🏁 That's a wrap. %s takes it by %d. Final: %s", winner, fact.Amount, scoreLine(play, info)),
		}
		m.Text = c.rewrite(ctx, m.Bot, m.Text, map[string]string{
			"winner": winner,
			"margin": fmt.Sprintf("%d", fact.Amount),
			"score":  scoreLine(play, info),
		})
		return &m
	}
	return nil
}

func (c *Composer) milestoneMessage(fact model.Fact) *model.Message {
	var text string
	switch fact.Milestone {
	case model.MilestoneTripleDouble:
		text = fmt.Sprintf("📋 TRIPLE-DOUBLE for %s. Filling every column tonight.", fact.Player)
	case model.MilestoneDoubleDouble:
		text = fmt.Sprintf("📋 Double-double for %s. Quietly stuffing the stat sheet.", fact.Player)
	case model.MilestonePoints:
		text = fmt.Sprintf("🎯 %s crosses %d points on the night!", fact.Player, fact.Value)
	case model.MilestoneBlocks:
		text = fmt.Sprintf("🛡️ %s is up to %d blocks. The paint is closed.", fact.Player, fact.Value)
	case model.MilestoneSteals:
		text = fmt.Sprintf("🧤 %s has %d steals. Passing lanes are not safe.", fact.Player, fact.Value)
	default:
		return nil
	}
	return &model.Message{
		Bot:  BotStatsNerd,
		Type: "milestone",
		Text: text,
	}
}

// rewrite forwards a message through the collaborator under a hard
// timeout; any non-success keeps the literal gist.
func (c *Composer) rewrite(ctx context.Context, persona, gist string, meta map[string]string) string {
	if c.rewriter == nil {
		return gist
	}
	rctx, cancel := context.WithTimeout(ctx, c.rewriteTimeout)
	defer cancel()
	text, err := c.rewriter.Rewrite(rctx, persona, gist, meta)
	if err != nil || strings.TrimSpace(text) == "" {
		return gist
	}
	return text
}

func scoreLine(play model.Play, info model.GameInfo) string {
	return fmt.Sprintf("%s %d - %s %d", info.AwayTeam, play.AwayScore, info.HomeTeam, play.HomeScore)
}

func teamForSide(side model.Side, info model.GameInfo) string {
	if side == model.SideAway {
		return info.AwayTeam
	}
	return info.HomeTeam
}

func leaderName(homeLead int, info model.GameInfo) (string, int) {
	if homeLead < 0 {
		return info.AwayTeam, -homeLead
	}
	return info.HomeTeam, homeLead
}

func periodLabel(period int) string {
	if period <= 4 {
		return fmt.Sprintf("Q%d", period)
	}
	return fmt.Sprintf("OT%d", period-4)
}

func shotLabel(subType string) string {
	label := strings.ReplaceAll(subType, " shot", "")
	label = strings.ReplaceAll(label, " putback", "")
	label = strings.TrimSpace(label)
	if label == "" {
		return "shot"
	}
	return label
}

func foulSeverity(description string) string {
	lower := strings.ToLower(description)
	switch {
	case strings.Contains(lower, "eject"):
		return "ejection"
	case strings.Contains(lower, "flagrant"):
		return "flagrant"
	case strings.Contains(lower, "technical"):
		return "technical"
	default:
		return "personal"
	}
}
