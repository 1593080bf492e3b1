package service_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/ritrovo/ritrovo/internal/adapters/repository"
	app "github.com/ritrovo/ritrovo/internal/app"
	"github.com/ritrovo/ritrovo/internal/domain/feature"
	"github.com/ritrovo/ritrovo/internal/simulation"
	"github.com/ritrovo/ritrovo/pkg/logger"
)

func newSeededService(t *testing.T, ctx context.Context) *app.Service {
	t.Helper()

	if err := logger.Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	svc := app.New(
		app.WithSeedOnStart(true),
		app.WithWorkers(2),
		app.WithSimulation(simulation.Config{
			Users:              12,
			EventsPerCategory:  6,
			AttendancesPerUser: 15,
			Seed:               3,
			Categories:         []string{"Arte", "Cibo", "Festa"},
			Cities:             []string{"Roma", "Milano"},
		}),
	)
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("failed to start service: %v", err)
	}
	return svc
}

func TestService_StartAndRecommend(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service seeded with synthetic data", t, func() {
		svc := newSeededService(t, ctx)
		defer svc.Stop()

		Convey("Then the stores should be populated", func() {
			users, err := svc.ListUsers(ctx)
			So(err, ShouldBeNil)
			So(users, ShouldHaveLength, 12)

			events, err := svc.ListEvents(ctx)
			So(err, ShouldBeNil)
			// 3 categories x 2 cities x 6 events
			So(events, ShouldHaveLength, 36)
		})

		Convey("When recommending for a seeded user", func() {
			users, err := svc.ListUsers(ctx)
			So(err, ShouldBeNil)
			target := users[0]

			rec, err := svc.Recommend(ctx, target.ID, feature.NewSet())

			Convey("Then the result should be well-formed", func() {
				So(err, ShouldBeNil)
				So(rec.TargetUser.ID, ShouldEqual, target.ID)

				for i := 1; i < len(rec.Users); i++ {
					So(rec.Users[i].Similarity, ShouldBeLessThanOrEqualTo, rec.Users[i-1].Similarity)
				}
				for i := 1; i < len(rec.Events); i++ {
					So(rec.Events[i].Support, ShouldBeLessThanOrEqualTo, rec.Events[i-1].Support)
				}
			})

			Convey("And recommended events should be hydrated and unseen by the target", func() {
				So(err, ShouldBeNil)
				for _, es := range rec.Events {
					So(es.Event.ID, ShouldNotBeBlank)
					So(es.Event.Category, ShouldBeIn, "Arte", "Cibo", "Festa")
					So(es.Support, ShouldBeGreaterThan, 0)
				}
			})
		})

		Convey("When recommending with features selected", func() {
			users, err := svc.ListUsers(ctx)
			So(err, ShouldBeNil)

			rec, err := svc.Recommend(ctx, users[0].ID, feature.NewSet(feature.Age, feature.City))

			Convey("Then the computation should still succeed", func() {
				So(err, ShouldBeNil)
				So(rec.TargetUser.ID, ShouldEqual, users[0].ID)
			})
		})

		Convey("When recommending for an unknown user", func() {
			_, err := svc.Recommend(ctx, "ghost", feature.NewSet())

			Convey("Then it should surface the not-found error", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, repository.ErrUserNotFound), ShouldBeTrue)
			})
		})

		Convey("When reading stats", func() {
			stats := svc.GetStats()

			So(stats["started"], ShouldEqual, true)
			So(stats["users"], ShouldEqual, 12)
			So(stats["events"], ShouldEqual, 36)
		})
	})
}

func TestService_StartIsIdempotent(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := newSeededService(t, ctx)
		defer svc.Stop()

		Convey("When starting again", func() {
			So(svc.Start(ctx), ShouldBeNil)

			users, err := svc.ListUsers(ctx)
			So(err, ShouldBeNil)
			So(users, ShouldHaveLength, 12)
		})
	})
}
