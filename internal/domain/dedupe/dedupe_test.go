package dedupe

import (
	"context"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestSequenceFilter(t *testing.T) {
	convey.Convey("Given a fresh sequence filter", t, func() {
		f := NewSequenceFilter()
		ctx := context.Background()

		convey.Convey("First sight of a sequence is not seen", func() {
			convey.So(f.SeenAndRecord(ctx, "g1", 1), convey.ShouldBeFalse)
			convey.So(f.SeenAndRecord(ctx, "g1", 2), convey.ShouldBeFalse)

			convey.Convey("Repeats and laggards are seen", func() {
				convey.So(f.SeenAndRecord(ctx, "g1", 2), convey.ShouldBeTrue)
				convey.So(f.SeenAndRecord(ctx, "g1", 1), convey.ShouldBeTrue)
			})
		})

		convey.Convey("Games do not share windows", func() {
			convey.So(f.SeenAndRecord(ctx, "g1", 5), convey.ShouldBeFalse)
			convey.So(f.SeenAndRecord(ctx, "g2", 5), convey.ShouldBeFalse)
			convey.So(f.Size(), convey.ShouldEqual, 2)
		})

		convey.Convey("Forget rolls back only the latest record", func() {
			f.SeenAndRecord(ctx, "g1", 7)
			f.SeenAndRecord(ctx, "g1", 8)
			f.Forget(ctx, "g1", 8)
			convey.So(f.SeenAndRecord(ctx, "g1", 8), convey.ShouldBeFalse)

			f.Forget(ctx, "g1", 7) // not the latest; no effect
			convey.So(f.SeenAndRecord(ctx, "g1", 7), convey.ShouldBeTrue)
		})

		convey.Convey("Reset clears progress for replay", func() {
			f.SeenAndRecord(ctx, "g1", 50)
			f.Reset("g1")
			convey.So(f.SeenAndRecord(ctx, "g1", 1), convey.ShouldBeFalse)
		})

		convey.Convey("Release drops the game entirely", func() {
			f.SeenAndRecord(ctx, "g1", 50)
			f.Release("g1")
			convey.So(f.Size(), convey.ShouldEqual, 0)
			convey.So(f.SeenAndRecord(ctx, "g1", 1), convey.ShouldBeFalse)
		})
	})
}
