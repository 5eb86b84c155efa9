package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	convey.Convey("Given the configuration loader", t, func() {
		ctx := context.Background()

		convey.Convey("With nothing set, defaults apply", func() {
			cfg, err := Load(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8090")
			convey.So(cfg.PollIntervalSeconds, convey.ShouldEqual, 30)
			convey.So(cfg.IdlePollIntervalSeconds, convey.ShouldEqual, 60)
			convey.So(cfg.PostgameGraceSeconds, convey.ShouldEqual, 300)
			convey.So(cfg.HistoryDir, convey.ShouldEqual, "cache/live_history")
			convey.So(cfg.MinLeadAnnounce, convey.ShouldEqual, 5)
		})

		convey.Convey("Environment variables override defaults", func() {
			_ = os.Setenv("NBASTATS_ADDR", ":9999")
			_ = os.Setenv("NBASTATS_FEED_API_KEY", "secret")
			_ = os.Setenv("NBASTATS_POLL_INTERVAL_SECONDS", "10")
			defer func() {
				_ = os.Unsetenv("NBASTATS_ADDR")
				_ = os.Unsetenv("NBASTATS_FEED_API_KEY")
				_ = os.Unsetenv("NBASTATS_POLL_INTERVAL_SECONDS")
			}()

			cfg, err := Load(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9999")
			convey.So(cfg.FeedAPIKey, convey.ShouldEqual, "secret")
			convey.So(cfg.PollIntervalSeconds, convey.ShouldEqual, 10)
		})

		convey.Convey("A YAML file layers between defaults and env", func() {
			path := filepath.Join(t.TempDir(), "config.yaml")
			yaml := "addr: \":7070\"\nhistory_dir: /var/lib/nbastats\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)

			_ = os.Setenv("NBASTATS_CONFIG", path)
			_ = os.Setenv("NBASTATS_ADDR", ":7071")
			defer func() {
				_ = os.Unsetenv("NBASTATS_CONFIG")
				_ = os.Unsetenv("NBASTATS_ADDR")
			}()

			cfg, err := Load(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":7071") // env wins
			convey.So(cfg.HistoryDir, convey.ShouldEqual, "/var/lib/nbastats")
		})

		convey.Convey("A missing config file is an error", func() {
			_ = os.Setenv("NBASTATS_CONFIG", "/does/not/exist.yaml")
			defer func() { _ = os.Unsetenv("NBASTATS_CONFIG") }()

			_, err := Load(ctx)
			convey.So(errors.Is(err, ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("Invalid values are rejected", func() {
			_ = os.Setenv("NBASTATS_QUEUE_SIZE", "0")
			defer func() { _ = os.Unsetenv("NBASTATS_QUEUE_SIZE") }()

			_, err := Load(ctx)
			convey.So(errors.Is(err, ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
