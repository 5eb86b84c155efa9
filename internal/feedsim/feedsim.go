// Package feedsim fabricates a plausible play-by-play feed for local runs
// and load tests, speaking the same wire shapes the real provider does.
// A simulated game reveals a few more plays every time it is polled, so
// the service experiences the same incremental delivery it would live.
package feedsim

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/jasper9/nbastats.fun/internal/adapters/feed"
	"github.com/jasper9/nbastats.fun/pkg/logger"
)

const (
	playsPerPeriod = 40
	periods        = 4
)

var homeRoster = []string{"J. Tatum", "J. Brown", "D. White", "K. Porzingis", "A. Horford"}
var awayRoster = []string{"L. James", "A. Davis", "A. Reaves", "D. Russell", "R. Hachimura"}

// roll returns a random int in [0, n) using crypto/rand.
func roll(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// Game is one scripted matchup. The full play list is generated up front;
// Reveal controls how much of it a poll can see.
type Game struct {
	ID     int
	Home   feed.Team
	Away   feed.Team
	Plays  []feed.Play
	Reveal int
}

// NewGame scripts a complete game between two named teams.
func NewGame(ctx context.Context, id int, home, away string) *Game {
	g := &Game{
		ID:   id,
		Home: feed.Team{ID: id*10 + 1, Abbreviation: abbrev(home), FullName: home},
		Away: feed.Team{ID: id*10 + 2, Abbreviation: abbrev(away), FullName: away},
	}
	g.script()
	logger.Named("feedsim").Info(ctx, "scripted game",
		logger.Int("game_id", id),
		logger.Int("plays", len(g.Plays)))
	return g
}

// script fills the play list with scores, rebounds, steals, blocks, fouls
// and period markers across four quarters.
func (g *Game) script() {
	homeScore, awayScore := 0, 0
	order := 0

	push := func(p feed.Play) {
		order++
		p.Order = order
		p.HomeScore = homeScore
		p.AwayScore = awayScore
		g.Plays = append(g.Plays, p)
	}

	for q := 1; q <= periods; q++ {
		push(feed.Play{Period: q, Clock: "12:00", Type: "period", Text: fmt.Sprintf("Start of Q%d", q)})
		for i := 0; i < playsPerPeriod; i++ {
			clock := fmt.Sprintf("%d:%02d", 11-(i*11)/playsPerPeriod, roll(60))
			homeSide := roll(2) == 0
			team, roster := g.Away, awayRoster
			if homeSide {
				team, roster = g.Home, homeRoster
			}
			player := roster[roll(len(roster))]

			switch roll(10) {
			case 0, 1, 2, 3: // field goal attempt
				value := 2
				label := "jump shot"
				if roll(3) == 0 {
					value = 3
					label = "3pt shot"
				} else if roll(4) == 0 {
					label = "driving dunk"
				}
				if roll(2) == 0 {
					if homeSide {
						homeScore += value
					} else {
						awayScore += value
					}
					text := fmt.Sprintf("%s makes %s", player, label)
					if roll(2) == 0 {
						mate := roster[roll(len(roster))]
						text = fmt.Sprintf("%s makes %s (%s assists)", player, label, mate)
					}
					push(feed.Play{Period: q, Clock: clock, Team: &team, Type: "shot", Text: text, ScoringPlay: true, ScoreValue: value})
				} else {
					push(feed.Play{Period: q, Clock: clock, Team: &team, Type: "shot", Text: fmt.Sprintf("%s misses %s", player, label)})
				}
			case 4:
				ftValue := 1
				if homeSide {
					homeScore += ftValue
				} else {
					awayScore += ftValue
				}
				push(feed.Play{Period: q, Clock: clock, Team: &team, Type: "freethrow", Text: fmt.Sprintf("%s makes free throw 1 of 2", player), ScoringPlay: true, ScoreValue: ftValue})
			case 5:
				push(feed.Play{Period: q, Clock: clock, Team: &team, Type: "rebound", Text: fmt.Sprintf("%s defensive rebound", player)})
			case 6:
				push(feed.Play{Period: q, Clock: clock, Team: &team, Type: "turnover", Text: fmt.Sprintf("%s bad pass turnover", player)})
			case 7:
				push(feed.Play{Period: q, Clock: clock, Team: &team, Type: "steal", Text: fmt.Sprintf("%s steals the ball", player)})
			case 8:
				push(feed.Play{Period: q, Clock: clock, Team: &team, Type: "block", Text: fmt.Sprintf("%s blocks the shot", player)})
			default:
				push(feed.Play{Period: q, Clock: clock, Team: &team, Type: "foul", Text: fmt.Sprintf("%s personal foul", player)})
			}
		}
		push(feed.Play{Period: q, Clock: "0:00", Type: "period", Text: fmt.Sprintf("End of Q%d", q)})
	}
}

// Advance reveals up to n more plays, returning how many remain hidden.
func (g *Game) Advance(n int) int {
	g.Reveal += n
	if g.Reveal > len(g.Plays) {
		g.Reveal = len(g.Plays)
	}
	return len(g.Plays) - g.Reveal
}

// Done reports whether every play has been revealed.
func (g *Game) Done() bool {
	return g.Reveal >= len(g.Plays)
}

// Visible returns the revealed prefix of the play list.
func (g *Game) Visible() []feed.Play {
	return g.Plays[:g.Reveal]
}

// Snapshot renders the provider's game shape at the current reveal point.
func (g *Game) Snapshot() feed.Game {
	home, away, period := 0, 0, 1
	status := "1st Qtr"
	if g.Reveal > 0 {
		last := g.Plays[g.Reveal-1]
		home, away, period = last.HomeScore, last.AwayScore, last.Period
		status = fmt.Sprintf("Q%d %s", last.Period, last.Clock)
	}
	out := feed.Game{
		ID:           g.ID,
		Status:       status,
		Period:       period,
		HomeScore:    home,
		VisitorScore: away,
		HomeTeam:     g.Home,
		VisitorTeam:  g.Away,
	}
	if g.Done() {
		out.Status = "Final"
	}
	return out
}

// BoxScore fabricates a provider stat line per roster player, roughly
// consistent with the scripted team totals.
func (g *Game) BoxScore() []feed.Stat {
	var stats []feed.Stat
	add := func(team feed.Team, roster []string) {
		for _, name := range roster {
			var st feed.Stat
			st.Player.FirstName = name[:1]
			st.Player.LastName = name[3:]
			st.Team = team
			st.Min = fmt.Sprintf("%d", 20+roll(18))
			st.Points = roll(32)
			st.Rebounds = roll(12)
			st.Assists = roll(10)
			st.Steals = roll(4)
			st.Blocks = roll(4)
			stats = append(stats, st)
		}
	}
	add(g.Home, homeRoster)
	add(g.Away, awayRoster)
	return stats
}

func abbrev(name string) string {
	if len(name) >= 3 {
		return name[:3]
	}
	return name
}
