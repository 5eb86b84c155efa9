package model

import (
	"encoding/json"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestMessageDedupKey(t *testing.T) {
	convey.Convey("Given persisted messages", t, func() {
		convey.Convey("The dedup key combines order, persona, and kind", func() {
			m := Message{Bot: "hype_man", Type: "score", Sequence: 42}
			convey.So(m.DedupKey(), convey.ShouldEqual, "42|hype_man|score")
		})

		convey.Convey("Keys distinguish personas on the same play", func() {
			a := Message{Bot: "hype_man", Type: "score", Sequence: 42}
			b := Message{Bot: "stats_nerd", Type: "score", Sequence: 42}
			convey.So(a.DedupKey(), convey.ShouldNotEqual, b.DedupKey())
		})

		convey.Convey("Keys distinguish kinds on the same play", func() {
			a := Message{Bot: "hype_man", Type: "score", Sequence: 42}
			b := Message{Bot: "hype_man", Type: "milestone", Sequence: 42}
			convey.So(a.DedupKey(), convey.ShouldNotEqual, b.DedupKey())
		})

		convey.Convey("Text is irrelevant to identity", func() {
			a := Message{Bot: "narrator", Type: "final", Sequence: 9, Text: "one"}
			b := Message{Bot: "narrator", Type: "final", Sequence: 9, Text: "two"}
			convey.So(a.DedupKey(), convey.ShouldEqual, b.DedupKey())
		})
	})
}

func TestHistoryFinal(t *testing.T) {
	convey.Convey("Given a game history", t, func() {
		h := &History{Status: "In Progress Q2 4:31"}
		convey.So(h.Final(), convey.ShouldBeFalse)

		h.Status = StatusFinal
		convey.So(h.Final(), convey.ShouldBeTrue)
	})
}

func TestHistoryJSONShape(t *testing.T) {
	convey.Convey("Given a populated history", t, func() {
		h := History{
			GameInfo: GameInfo{HomeTeam: "Boston Celtics", AwayTeam: "Miami Heat", GameID: "2001"},
			Status:   StatusFinal,
			Messages: []Message{{Bot: "narrator", Type: "final", Text: "Celtics win.", Sequence: 160}},
			Scores:   []ScorePoint{{Home: 2, Away: 0, Sequence: 3, Period: 1, Clock: "11:20"}},
		}

		data, err := json.Marshal(h)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("The wire shape uses the published field names", func() {
			convey.So(string(data), convey.ShouldContainSubstring, `"game_info"`)
			convey.So(string(data), convey.ShouldContainSubstring, `"action_number":160`)
			convey.So(string(data), convey.ShouldContainSubstring, `"home_team":"Boston Celtics"`)
		})

		convey.Convey("Empty player stats are omitted", func() {
			convey.So(string(data), convey.ShouldNotContainSubstring, "player_stats")
		})
	})
}
