package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/jasper9/nbastats.fun/internal/adapters/history"
	"github.com/jasper9/nbastats.fun/internal/domain/model"
)

// stubDeps serves canned records to the handlers.
type stubDeps struct {
	records map[string]*model.History
	games   []GameStatus
}

func (s *stubDeps) History(ctx context.Context, gameID string) (*model.History, error) {
	rec, ok := s.records[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", history.ErrNotFound, gameID)
	}
	return rec, nil
}

func (s *stubDeps) ActiveGames(ctx context.Context) []GameStatus {
	return s.games
}

type stubStreamer struct{ called bool }

func (s *stubStreamer) ServeWS(w http.ResponseWriter, r *http.Request, gameID string) {
	s.called = true
	w.WriteHeader(http.StatusSwitchingProtocols)
}

func newTestMux(deps Dependencies, streamer Streamer) *http.ServeMux {
	mux := http.NewServeMux()
	NewServer(deps, streamer).Register(context.Background(), mux)
	return mux
}

func TestHistoryEndpoint(t *testing.T) {
	convey.Convey("Given a server with one stored game", t, func() {
		deps := &stubDeps{
			records: map[string]*model.History{
				"1001": {
					Messages: []model.Message{{Bot: "play_by_play", Type: "score", Text: "bucket", Sequence: 3}},
					GameInfo: model.GameInfo{HomeTeam: "Boston Celtics", AwayTeam: "Los Angeles Lakers", GameID: "1001"},
					Status:   "In Progress Q2 5:30",
				},
			},
		}
		mux := newTestMux(deps, &stubStreamer{})

		convey.Convey("GET history for a known game returns the record", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/1001/history", nil))

			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(rec.Header().Get("Content-Type"), convey.ShouldContainSubstring, "application/json")

			var got model.History
			convey.So(json.Unmarshal(rec.Body.Bytes(), &got), convey.ShouldBeNil)
			convey.So(got.Messages, convey.ShouldHaveLength, 1)
			convey.So(got.GameInfo.GameID, convey.ShouldEqual, "1001")
		})

		convey.Convey("GET history for an unknown game is a JSON 404", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/9999/history", nil))

			convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)

			var got errorResponse
			convey.So(json.Unmarshal(rec.Body.Bytes(), &got), convey.ShouldBeNil)
			convey.So(got.Code, convey.ShouldEqual, "not_found")
		})

		convey.Convey("POST to the history route is rejected", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/games/1001/history", nil))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestGamesEndpoint(t *testing.T) {
	convey.Convey("Given a server with tracked games", t, func() {
		deps := &stubDeps{
			games: []GameStatus{{
				GameID:    "1001",
				HomeTeam:  "Boston Celtics",
				AwayTeam:  "Los Angeles Lakers",
				HomeScore: 52,
				AwayScore: 48,
				Status:    "In Progress",
				Messages:  40,
			}},
		}
		mux := newTestMux(deps, &stubStreamer{})

		convey.Convey("GET /games lists them", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games", nil))

			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			var got []GameStatus
			convey.So(json.Unmarshal(rec.Body.Bytes(), &got), convey.ShouldBeNil)
			convey.So(got, convey.ShouldHaveLength, 1)
			convey.So(got[0].HomeScore, convey.ShouldEqual, 52)
		})

		convey.Convey("With no games the list is empty JSON, not null", func() {
			mux := newTestMux(&stubDeps{}, &stubStreamer{})
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games", nil))
			convey.So(rec.Body.String(), convey.ShouldStartWith, "[]")
		})
	})
}

func TestHealthAndStream(t *testing.T) {
	convey.Convey("Given a registered server", t, func() {
		streamer := &stubStreamer{}
		mux := newTestMux(&stubDeps{}, streamer)

		convey.Convey("Health reports ok", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(rec.Body.String(), convey.ShouldContainSubstring, "ok")
		})

		convey.Convey("Metrics serve the Prometheus registry", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("The live route delegates to the streamer", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/1001/live", nil))
			convey.So(streamer.called, convey.ShouldBeTrue)
		})
	})
}
