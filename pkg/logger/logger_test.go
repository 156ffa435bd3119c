package logger_test

import (
	"context"
	"testing"

	"github.com/seqpond/augpipe/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When retrieving the global logger", func() {
			l := logger.Get()

			Convey("Then it should not be nil", func() {
				So(l, ShouldNotBeNil)
			})

			Convey("And logging should not panic", func() {
				So(func() {
					l.Info(context.Background(), "run starting", logger.String("genome", "hg38"))
					l.Debug(context.Background(), "debug line", logger.Int("chunk", 3))
					l.Warn(context.Background(), "warn line")
					l.Error(context.Background(), "error line", logger.Error(nil))
				}, ShouldNotPanic)
			})
		})

		Convey("When creating a named logger", func() {
			named := logger.Named("scheduler")

			Convey("Then it should not be nil and should log", func() {
				So(named, ShouldNotBeNil)
				So(func() { named.Info(context.Background(), "chunk dispatched") }, ShouldNotPanic)
			})
		})

		Convey("When setting log levels from strings", func() {
			Convey("Then known levels should be accepted", func() {
				So(logger.SetLevelString("debug"), ShouldBeNil)
				So(logger.SetLevelString("info"), ShouldBeNil)
				So(logger.SetLevelString("warning"), ShouldBeNil)
				So(logger.SetLevelString("ERROR"), ShouldBeNil)
				So(logger.SetLevelString(""), ShouldBeNil)
			})

			Convey("Then unknown levels should be rejected", func() {
				So(logger.SetLevelString("verbose"), ShouldNotBeNil)
			})
		})
	})
}
