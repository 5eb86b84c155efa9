package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
)

func TestGameLiveness(t *testing.T) {
	convey.Convey("Given provider game snapshots", t, func() {
		convey.Convey("A scoreless first-period game is already live", func() {
			g := Game{ID: 1, Status: "1st Qtr", Period: 1}
			convey.So(g.Live(), convey.ShouldBeTrue)
		})

		convey.Convey("A game before tip-off is not", func() {
			g := Game{ID: 1, Status: "7:30 PM ET", Period: 0}
			convey.So(g.Live(), convey.ShouldBeFalse)
			convey.So(g.Scheduled(), convey.ShouldBeTrue)
		})

		convey.Convey("A finished game is final, not live", func() {
			g := Game{ID: 1, Status: "Final", Period: 4, HomeScore: 110, VisitorScore: 99}
			convey.So(g.Live(), convey.ShouldBeFalse)
			convey.So(g.Final(), convey.ShouldBeTrue)
		})
	})
}

func TestClient(t *testing.T) {
	convey.Convey("Given a provider-shaped upstream", t, func() {
		var gotAuth atomic.Value
		var playCalls atomic.Int64

		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth.Store(r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/games":
				_, _ = w.Write([]byte(`{"data":[{
					"id": 1001,
					"status": "Q2 5:30",
					"period": 2,
					"home_team_score": 52,
					"visitor_team_score": 48,
					"home_team": {"id": 2, "abbreviation": "BOS", "full_name": "Boston Celtics"},
					"visitor_team": {"id": 14, "abbreviation": "LAL", "full_name": "Los Angeles Lakers"}
				}]}`))
			case "/plays":
				playCalls.Add(1)
				// Deliberately out of order; the client must sort.
				_, _ = w.Write([]byte(`{"data":[
					{"order": 2, "period": 1, "clock": "11:20", "home_score": 2, "away_score": 0,
					 "team": {"id": 2, "abbreviation": "BOS", "full_name": "Boston Celtics"},
					 "type": "shot", "text": "Jayson Tatum makes jump shot", "scoring_play": true, "score_value": 2},
					{"order": 1, "period": 1, "clock": "12:00", "home_score": 0, "away_score": 0,
					 "type": "period", "text": "Start of Q1"}
				]}`))
			case "/stats":
				_, _ = w.Write([]byte(`{"data":[{
					"player": {"first_name": "Jayson", "last_name": "Tatum"},
					"team": {"id": 2, "abbreviation": "BOS", "full_name": "Boston Celtics"},
					"min": "36", "pts": 31, "reb": 9, "ast": 5, "stl": 1, "blk": 1,
					"fgm": 11, "fga": 22, "ftm": 6, "fta": 7, "oreb": 1, "dreb": 8,
					"turnover": 3, "pf": 2
				}]}`))
			default:
				http.NotFound(w, r)
			}
		}))
		defer upstream.Close()

		client := New(upstream.URL, "test-key", WithCacheTTL(time.Hour))
		ctx := context.Background()

		convey.Convey("Games decode from the data envelope", func() {
			games, err := client.Games(ctx, "2026-03-14")
			convey.So(err, convey.ShouldBeNil)
			convey.So(games, convey.ShouldHaveLength, 1)
			convey.So(games[0].Key(), convey.ShouldEqual, "1001")
			convey.So(games[0].Live(), convey.ShouldBeTrue)
			convey.So(games[0].Info().HomeTeam, convey.ShouldEqual, "Boston Celtics")

			convey.Convey("And the API key rides the Authorization header", func() {
				convey.So(gotAuth.Load(), convey.ShouldEqual, "test-key")
			})
		})

		convey.Convey("Plays come back sorted by sequence order", func() {
			plays, err := client.Plays(ctx, 1001)
			convey.So(err, convey.ShouldBeNil)
			convey.So(plays, convey.ShouldHaveLength, 2)
			convey.So(plays[0].Order, convey.ShouldEqual, 1)
			convey.So(plays[1].Order, convey.ShouldEqual, 2)

			convey.Convey("And convert to the normalizer's shape", func() {
				raw := plays[1].Raw()
				convey.So(raw.Order, convey.ShouldEqual, 2)
				convey.So(raw.Team, convey.ShouldEqual, "Boston Celtics")
				convey.So(raw.Scoring, convey.ShouldBeTrue)
				convey.So(raw.ScoreValue, convey.ShouldEqual, 2)
			})

			convey.Convey("And repeat fetches inside the TTL hit the cache", func() {
				_, err := client.Plays(ctx, 1001)
				convey.So(err, convey.ShouldBeNil)
				convey.So(playCalls.Load(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("Stats map onto box-score lines", func() {
			stats, err := client.Stats(ctx, 1001)
			convey.So(err, convey.ShouldBeNil)
			convey.So(stats, convey.ShouldHaveLength, 1)

			line := stats[0].Line()
			convey.So(line.Name, convey.ShouldEqual, "Jayson Tatum")
			convey.So(line.Team, convey.ShouldEqual, "BOS")
			convey.So(line.Points, convey.ShouldEqual, 31)
			convey.So(line.Turnovers, convey.ShouldEqual, 3)
		})

		convey.Convey("Upstream failures surface as ErrUpstream", func() {
			broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusInternalServerError)
			}))
			defer broken.Close()

			badClient := New(broken.URL, "test-key")
			_, err := badClient.Games(ctx, "2026-03-14")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
