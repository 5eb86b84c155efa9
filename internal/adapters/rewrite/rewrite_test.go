package rewrite

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
)

func TestHTTPRewriter(t *testing.T) {
	convey.Convey("Given a rewrite collaborator endpoint", t, func() {
		ctx := context.Background()

		convey.Convey("A healthy endpoint rewrites the gist", func() {
			var got struct {
				Persona string            `json:"persona"`
				Gist    string            `json:"gist"`
				Context map[string]string `json:"context"`
			}
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewDecoder(r.Body).Decode(&got)
				_ = json.NewEncoder(w).Encode(map[string]string{"text": "BANG! Tatum from deep!"})
			}))
			defer upstream.Close()

			rw := NewHTTP(upstream.URL)
			text, err := rw.Rewrite(ctx, "hype_man", "Tatum makes 3pt shot", map[string]string{"player": "Jayson Tatum"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(text, convey.ShouldEqual, "BANG! Tatum from deep!")
			convey.So(got.Persona, convey.ShouldEqual, "hype_man")
			convey.So(got.Gist, convey.ShouldEqual, "Tatum makes 3pt shot")
			convey.So(got.Context["player"], convey.ShouldEqual, "Jayson Tatum")
		})

		convey.Convey("A failing endpoint returns ErrUnavailable", func() {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "overloaded", http.StatusServiceUnavailable)
			}))
			defer upstream.Close()

			rw := NewHTTP(upstream.URL)
			_, err := rw.Rewrite(ctx, "hype_man", "gist", nil)
			convey.So(errors.Is(err, ErrUnavailable), convey.ShouldBeTrue)
		})

		convey.Convey("A slow endpoint times out", func() {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(100 * time.Millisecond)
				_ = json.NewEncoder(w).Encode(map[string]string{"text": "late"})
			}))
			defer upstream.Close()

			rw := NewHTTP(upstream.URL, WithTimeout(5*time.Millisecond))
			_, err := rw.Rewrite(ctx, "hype_man", "gist", nil)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("The noop rewriter always declines", func() {
			_, err := Noop{}.Rewrite(ctx, "hype_man", "gist", nil)
			convey.So(errors.Is(err, ErrUnavailable), convey.ShouldBeTrue)
		})
	})
}
