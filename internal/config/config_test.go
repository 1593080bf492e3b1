package config_test

import (
	"runtime"
	"testing"

	"github.com/ritrovo/ritrovo/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.BaseThreshold, convey.ShouldEqual, 0.2)
			convey.So(cfg.AgeThresholdFactor, convey.ShouldEqual, 0.8)
			convey.So(cfg.CityThresholdFactor, convey.ShouldEqual, 0.95)
			convey.So(cfg.AgeDecayPerYear, convey.ShouldEqual, 0.05)
			convey.So(cfg.AgeDeltaFloor, convey.ShouldEqual, 0.5)
			convey.So(cfg.MaxAgeGapYears, convey.ShouldEqual, 10)
			convey.So(cfg.CityBetaExponent, convey.ShouldEqual, 0.09)
			convey.So(cfg.DefaultCityDistanceKM, convey.ShouldEqual, 573)
			convey.So(cfg.RecommendWorkers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.Categories, convey.ShouldResemble, []string{"Arte", "Cibo", "Festa", "Musica", "Sport"})
			convey.So(cfg.Cities, convey.ShouldResemble, []string{"Roma", "Milano"})
		})
	})
}
