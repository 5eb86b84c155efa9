package broadcast

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/smartystreets/goconvey/convey"

	"github.com/jasper9/nbastats.fun/internal/domain/model"
	"github.com/jasper9/nbastats.fun/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func waitForSubscribers(h *Hub, gameID string, want int) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.Subscribers(gameID) == want {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestHub(t *testing.T) {
	convey.Convey("Given a hub behind a test server", t, func() {
		h := NewHub()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeWS(w, r, r.URL.Query().Get("game"))
		}))
		defer srv.Close()

		wsURL := "ws" + srv.URL[len("http"):]

		convey.Convey("A connected client receives published batches", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			conn, _, err := websocket.Dial(ctx, wsURL+"?game=2001", nil)
			convey.So(err, convey.ShouldBeNil)
			defer conn.Close(websocket.StatusNormalClosure, "")

			convey.So(waitForSubscribers(h, "2001", 1), convey.ShouldBeTrue)

			sent := []model.Message{
				{Bot: "hype_man", Type: "score", Text: "Bucket!", Sequence: 7},
				{Bot: "stats_nerd", Type: "milestone", Text: "20 up.", Sequence: 7},
			}
			h.Publish("2001", sent)

			_, data, err := conn.Read(ctx)
			convey.So(err, convey.ShouldBeNil)

			var got []model.Message
			convey.So(json.Unmarshal(data, &got), convey.ShouldBeNil)
			convey.So(got, convey.ShouldResemble, sent)
		})

		convey.Convey("Subscribers are scoped per game", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			connA, _, err := websocket.Dial(ctx, wsURL+"?game=2001", nil)
			convey.So(err, convey.ShouldBeNil)
			defer connA.Close(websocket.StatusNormalClosure, "")

			connB, _, err := websocket.Dial(ctx, wsURL+"?game=2002", nil)
			convey.So(err, convey.ShouldBeNil)
			defer connB.Close(websocket.StatusNormalClosure, "")

			convey.So(waitForSubscribers(h, "2001", 1), convey.ShouldBeTrue)
			convey.So(waitForSubscribers(h, "2002", 1), convey.ShouldBeTrue)

			h.Publish("2002", []model.Message{{Bot: "narrator", Type: "final", Text: "That's a wrap.", Sequence: 160}})

			_, data, err := connB.Read(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(data), convey.ShouldContainSubstring, "That's a wrap.")

			// The other game's subscriber saw nothing.
			readCtx, readCancel := context.WithTimeout(ctx, 200*time.Millisecond)
			defer readCancel()
			_, _, err = connA.Read(readCtx)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("Disconnecting drops the subscriber", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			conn, _, err := websocket.Dial(ctx, wsURL+"?game=2003", nil)
			convey.So(err, convey.ShouldBeNil)
			convey.So(waitForSubscribers(h, "2003", 1), convey.ShouldBeTrue)

			conn.Close(websocket.StatusNormalClosure, "")
			convey.So(waitForSubscribers(h, "2003", 0), convey.ShouldBeTrue)
		})

		convey.Convey("Publishing an empty batch is a no-op", func() {
			h.Publish("2001", nil)
			convey.So(h.Subscribers("2001"), convey.ShouldEqual, 0)
		})
	})
}
