package geo_test

import (
	"testing"

	"github.com/ritrovo/ritrovo/internal/adapters/geo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStaticProvider(t *testing.T) {
	Convey("Given a static distance provider", t, func() {
		provider := geo.NewStaticProvider(
			geo.WithDistance("Roma", "Milano", 573),
			geo.WithDistance("Roma", "Napoli", 225),
		)

		Convey("Then identical cities are at distance zero", func() {
			So(provider.Distance("Roma", "Roma"), ShouldEqual, 0)
		})

		Convey("Then registered pairs resolve in both directions", func() {
			So(provider.Distance("Roma", "Milano"), ShouldEqual, 573)
			So(provider.Distance("Milano", "Roma"), ShouldEqual, 573)
			So(provider.Distance("Napoli", "Roma"), ShouldEqual, 225)
		})

		Convey("Then unknown pairs use the default fallback", func() {
			So(provider.Distance("Torino", "Bari"), ShouldEqual, geo.DefaultFallbackKM)
		})
	})

	Convey("Given a provider with a custom fallback", t, func() {
		provider := geo.NewStaticProvider(geo.WithFallbackKM(100))

		So(provider.Distance("A", "B"), ShouldEqual, 100)
	})
}
