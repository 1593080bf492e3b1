package recommend_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ritrovo/ritrovo/internal/domain/feature"
	"github.com/ritrovo/ritrovo/internal/domain/model"
	"github.com/ritrovo/ritrovo/internal/domain/recommend"
	"github.com/ritrovo/ritrovo/internal/domain/similarity"
	. "github.com/smartystreets/goconvey/convey"
)

var errNotFound = errors.New("user not found")

type fakeUsers struct {
	users map[string]model.User
}

func (f *fakeUsers) Get(_ context.Context, id string) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, errNotFound
	}
	return u, nil
}

func (f *fakeUsers) ListOthers(_ context.Context, excludeID string) ([]model.User, error) {
	out := make([]model.User, 0, len(f.users))
	for id, u := range f.users {
		if id != excludeID {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeAttendance struct {
	events map[string][]string
}

func (f *fakeAttendance) EventsFor(_ context.Context, userID string) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	for _, id := range f.events[userID] {
		set[id] = struct{}{}
	}
	return set, nil
}

func categoryLookup(categories map[string]string) similarity.CategoryLookup {
	return func(_ context.Context, eventID string) (string, error) {
		c, ok := categories[eventID]
		if !ok {
			return "", errors.New("event not found")
		}
		return c, nil
	}
}

func fixedDistance(d float64) feature.DistanceFunc {
	return func(a, b string) float64 { return d }
}

func TestEngine_Recommend(t *testing.T) {
	ctx := context.Background()

	Convey("Given a target user and one similar candidate", t, func() {
		// Target attended E1,E2 (both Arte); the candidate attended E2,E3
		// where E3 is Cibo. This mirrors the hand-computable scenario:
		// coverage 1/2, cosine 1, score 0.5.
		users := &fakeUsers{users: map[string]model.User{
			"target": {ID: "target", Age: 30, City: "Roma", CategoryFreq: map[string]float64{"Arte": 2}},
			"other":  {ID: "other", Age: 30, City: "Roma", CategoryFreq: map[string]float64{"Arte": 1, "Cibo": 1}},
		}}
		attendance := &fakeAttendance{events: map[string][]string{
			"target": {"E1", "E2"},
			"other":  {"E2", "E3"},
		}}
		scorer := similarity.NewCosineScorer(categoryLookup(map[string]string{
			"E1": "Arte", "E2": "Arte", "E3": "Cibo",
		}))
		engine := recommend.New(users, attendance, scorer, fixedDistance(573))

		Convey("When recommending with no features", func() {
			result, err := engine.Recommend(ctx, "target", feature.NewSet())

			Convey("Then the candidate is retained with score 0.5", func() {
				So(err, ShouldBeNil)
				So(result.TargetUser.ID, ShouldEqual, "target")
				So(result.Users, ShouldHaveLength, 1)
				So(result.Users[0].User.ID, ShouldEqual, "other")
				So(result.Users[0].Score, ShouldAlmostEqual, 0.5, 1e-9)
			})

			Convey("And the unseen event E3 is recommended with support 1", func() {
				So(err, ShouldBeNil)
				So(result.Events, ShouldHaveLength, 1)
				So(result.Events[0].EventID, ShouldEqual, "E3")
				So(result.Events[0].Support, ShouldEqual, 1)
			})
		})

		Convey("When recommending with the age feature and a large age gap", func() {
			u := users.users["other"]
			u.Age = 55
			users.users["other"] = u

			result, err := engine.Recommend(ctx, "target", feature.NewSet(feature.Age))

			Convey("Then the score is corrected by the age floor", func() {
				So(err, ShouldBeNil)
				So(result.Users, ShouldHaveLength, 1)
				So(result.Users[0].Score, ShouldAlmostEqual, 0.25, 1e-9)
			})
		})

		Convey("When recommending with the city feature across cities", func() {
			u := users.users["other"]
			u.City = "Milano"
			users.users["other"] = u

			result, err := engine.Recommend(ctx, "target", feature.NewSet(feature.City))

			Convey("Then the score is corrected by the distance penalty", func() {
				So(err, ShouldBeNil)
				So(result.Users, ShouldHaveLength, 1)
				// 0.5 * (1/573)^0.09 ≈ 0.2823, above threshold 0.19
				So(result.Users[0].Score, ShouldBeBetween, 0.28, 0.29)
			})
		})
	})

	Convey("Given a candidate below the threshold", t, func() {
		// The candidate shares one of the target's ten events; coverage
		// 0.1 keeps the score under the 0.2 base threshold.
		targetEvents := []string{"E0", "E1", "E2", "E3", "E4", "E5", "E6", "E7", "E8", "E9"}
		categories := map[string]string{"X1": "Arte", "X2": "Arte"}
		for _, id := range targetEvents {
			categories[id] = "Arte"
		}
		users := &fakeUsers{users: map[string]model.User{
			"target": {ID: "target", Age: 30, City: "Roma", CategoryFreq: map[string]float64{"Arte": 10}},
			"weak":   {ID: "weak", Age: 30, City: "Roma", CategoryFreq: map[string]float64{"Arte": 3}},
		}}
		attendance := &fakeAttendance{events: map[string][]string{
			"target": targetEvents,
			"weak":   {"E0", "X1", "X2"},
		}}
		engine := recommend.New(users, attendance,
			similarity.NewCosineScorer(categoryLookup(categories)), fixedDistance(573))

		result, err := engine.Recommend(ctx, "target", feature.NewSet())

		Convey("Then no users and no events are recommended", func() {
			So(err, ShouldBeNil)
			So(result.Users, ShouldBeEmpty)
			So(result.Events, ShouldBeEmpty)
		})
	})

	Convey("Given a target with no recorded events", t, func() {
		users := &fakeUsers{users: map[string]model.User{
			"fresh": {ID: "fresh", Age: 22, City: "Roma", CategoryFreq: map[string]float64{}},
			"other": {ID: "other", Age: 30, City: "Roma", CategoryFreq: map[string]float64{"Arte": 1}},
		}}
		attendance := &fakeAttendance{events: map[string][]string{
			"other": {"E1"},
		}}
		engine := recommend.New(users, attendance,
			similarity.NewCosineScorer(categoryLookup(map[string]string{"E1": "Arte"})), fixedDistance(573))

		result, err := engine.Recommend(ctx, "fresh", feature.NewSet())

		Convey("Then the rankings are empty and there is no error", func() {
			So(err, ShouldBeNil)
			So(result.TargetUser.ID, ShouldEqual, "fresh")
			So(result.Users, ShouldBeEmpty)
			So(result.Events, ShouldBeEmpty)
		})
	})

	Convey("Given an unknown target user", t, func() {
		users := &fakeUsers{users: map[string]model.User{}}
		attendance := &fakeAttendance{events: map[string][]string{}}
		engine := recommend.New(users, attendance,
			similarity.NewCosineScorer(categoryLookup(nil)), fixedDistance(573))

		_, err := engine.Recommend(ctx, "ghost", feature.NewSet())

		Convey("Then the store's not-found error surfaces", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, errNotFound), ShouldBeTrue)
		})
	})

	Convey("Given several equally similar candidates", t, func() {
		// Candidates b, a and c are interchangeable: same profile, same
		// attendance. The ranking must still come out in a fixed order.
		users := &fakeUsers{users: map[string]model.User{
			"target": {ID: "target", Age: 30, City: "Roma", CategoryFreq: map[string]float64{"Arte": 1}},
			"u-b":    {ID: "u-b", Age: 30, City: "Roma", CategoryFreq: map[string]float64{"Arte": 1}},
			"u-a":    {ID: "u-a", Age: 30, City: "Roma", CategoryFreq: map[string]float64{"Arte": 1}},
			"u-c":    {ID: "u-c", Age: 30, City: "Roma", CategoryFreq: map[string]float64{"Arte": 1}},
		}}
		attendance := &fakeAttendance{events: map[string][]string{
			"target": {"E1"},
			"u-b":    {"E1", "E3", "E2"},
			"u-a":    {"E1", "E2", "E3"},
			"u-c":    {"E1", "E2", "E3"},
		}}
		engine := recommend.New(users, attendance,
			similarity.NewCosineScorer(categoryLookup(map[string]string{
				"E1": "Arte", "E2": "Arte", "E3": "Arte",
			})), fixedDistance(573), recommend.WithWorkers(2))

		Convey("When recommending repeatedly", func() {
			first, err := engine.Recommend(ctx, "target", feature.NewSet())
			So(err, ShouldBeNil)

			Convey("Then user ties break on ascending id", func() {
				So(first.Users, ShouldHaveLength, 3)
				So(first.Users[0].User.ID, ShouldEqual, "u-a")
				So(first.Users[1].User.ID, ShouldEqual, "u-b")
				So(first.Users[2].User.ID, ShouldEqual, "u-c")
			})

			Convey("And event ties break on ascending id", func() {
				So(first.Events, ShouldHaveLength, 2)
				So(first.Events[0].EventID, ShouldEqual, "E2")
				So(first.Events[0].Support, ShouldEqual, 3)
				So(first.Events[1].EventID, ShouldEqual, "E3")
				So(first.Events[1].Support, ShouldEqual, 3)
			})

			Convey("And the order is stable across runs", func() {
				for i := 0; i < 10; i++ {
					again, err := engine.Recommend(ctx, "target", feature.NewSet())
					So(err, ShouldBeNil)
					So(again.Users[0].User.ID, ShouldEqual, first.Users[0].User.ID)
					So(again.Events[0].EventID, ShouldEqual, first.Events[0].EventID)
				}
			})
		})
	})
}
