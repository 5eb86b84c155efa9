package feedsim

import (
	"context"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/jasper9/nbastats.fun/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestScriptedGame(t *testing.T) {
	convey.Convey("Given a freshly scripted game", t, func() {
		g := NewGame(context.Background(), 1000, "Boston Celtics", "Los Angeles Lakers")

		convey.Convey("The script is internally consistent", func() {
			convey.So(len(g.Plays), convey.ShouldEqual, periods*(playsPerPeriod+2))

			prevOrder := 0
			prevHome, prevAway := 0, 0
			for _, p := range g.Plays {
				convey.So(p.Order, convey.ShouldEqual, prevOrder+1)
				convey.So(p.HomeScore, convey.ShouldBeGreaterThanOrEqualTo, prevHome)
				convey.So(p.AwayScore, convey.ShouldBeGreaterThanOrEqualTo, prevAway)
				convey.So(p.Period, convey.ShouldBeBetweenOrEqual, 1, periods)
				prevOrder = p.Order
				prevHome, prevAway = p.HomeScore, p.AwayScore
			}

			last := g.Plays[len(g.Plays)-1]
			convey.So(last.Period, convey.ShouldEqual, periods)
			convey.So(last.Clock, convey.ShouldEqual, "0:00")
			convey.So(last.Type, convey.ShouldEqual, "period")
		})

		convey.Convey("Scoring plays carry their value and move the score", func() {
			prevHome, prevAway := 0, 0
			for _, p := range g.Plays {
				delta := (p.HomeScore - prevHome) + (p.AwayScore - prevAway)
				if p.ScoringPlay {
					convey.So(delta, convey.ShouldEqual, p.ScoreValue)
				} else {
					convey.So(delta, convey.ShouldEqual, 0)
				}
				prevHome, prevAway = p.HomeScore, p.AwayScore
			}
		})

		convey.Convey("Nothing is visible before the first poll", func() {
			convey.So(g.Visible(), convey.ShouldBeEmpty)
			convey.So(g.Done(), convey.ShouldBeFalse)
		})

		convey.Convey("Advance reveals plays incrementally", func() {
			remaining := g.Advance(8)
			convey.So(len(g.Visible()), convey.ShouldEqual, 8)
			convey.So(remaining, convey.ShouldEqual, len(g.Plays)-8)

			g.Advance(len(g.Plays)) // overshoot clamps
			convey.So(len(g.Visible()), convey.ShouldEqual, len(g.Plays))
			convey.So(g.Done(), convey.ShouldBeTrue)
		})

		convey.Convey("Snapshot tracks the reveal point", func() {
			snap := g.Snapshot()
			convey.So(snap.ID, convey.ShouldEqual, 1000)
			convey.So(snap.Status, convey.ShouldEqual, "1st Qtr")
			convey.So(snap.HomeTeam.FullName, convey.ShouldEqual, "Boston Celtics")

			g.Advance(len(g.Plays))
			snap = g.Snapshot()
			convey.So(snap.Status, convey.ShouldEqual, "Final")
			convey.So(snap.Final(), convey.ShouldBeTrue)
			last := g.Plays[len(g.Plays)-1]
			convey.So(snap.HomeScore, convey.ShouldEqual, last.HomeScore)
			convey.So(snap.VisitorScore, convey.ShouldEqual, last.AwayScore)
		})

		convey.Convey("BoxScore covers both rosters", func() {
			stats := g.BoxScore()
			convey.So(len(stats), convey.ShouldEqual, len(homeRoster)+len(awayRoster))
			for _, st := range stats {
				convey.So(st.Player.LastName, convey.ShouldNotBeEmpty)
				convey.So(st.Min, convey.ShouldNotBeEmpty)
			}
		})
	})
}
