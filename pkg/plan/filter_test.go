package plan

import (
	"testing"
	"time"

	"github.com/corriander/channelhop/pkg/travel"
)

func costOption(cost float64) Option {
	return Option{Cost: cost}
}

func TestFilter_MaxCost(t *testing.T) {
	options := []Option{
		costOption(120),
		costOption(155),
		costOption(160), // exactly at limit + buffer: kept
		costOption(161), // over: removed
		costOption(300),
	}
	f := NewFilter(options)

	n := f.Apply(MaxCost{Limit: 150})
	if n != 3 {
		t.Fatalf("Apply(MaxCost 150) kept %d options, want 3 (limit + £10 buffer)", n)
	}
	for _, o := range f.Options() {
		if o.Cost > 160 {
			t.Errorf("option costing %.2f survived a £150 ceiling", o.Cost)
		}
	}
}

func TestFilter_Monotonic(t *testing.T) {
	f := NewFilter([]Option{costOption(100), costOption(200)})

	if n := f.Apply(MaxCost{Limit: 150}); n != 1 {
		t.Fatalf("first apply kept %d, want 1", n)
	}
	// A looser constraint never re-admits the removed option.
	if n := f.Apply(MaxCost{Limit: 1000}); n != 1 {
		t.Errorf("second apply kept %d, want 1 (no re-admission)", n)
	}
	if got := f.Applied(); len(got) != 2 || got[0] != "cost" {
		t.Errorf("Applied() = %v", got)
	}
}

func TestArrivalWindow(t *testing.T) {
	target := time.Date(2015, 6, 5, 10, 0, 0, 0, time.UTC)
	c := ArrivalWindow{Targets: []time.Time{target}}

	cases := []struct {
		name    string
		arrival *time.Time
		want    bool
	}{
		{"on time", tp(time.Date(2015, 6, 5, 9, 45, 0, 0, time.UTC)), true},
		{"within buffer", tp(time.Date(2015, 6, 5, 11, 30, 0, 0, time.UTC)), true},
		{"past buffer", tp(time.Date(2015, 6, 5, 11, 31, 0, 0, time.UTC)), false},
		{"wrong date", tp(time.Date(2015, 6, 6, 9, 0, 0, 0, time.UTC)), false},
		{"unscheduled", nil, false},
	}
	for _, tc := range cases {
		o := Option{Arrival: tc.arrival}
		if got := c.Keep(o); got != tc.want {
			t.Errorf("%s: Keep() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestArrivalWindow_MultipleDates(t *testing.T) {
	c := ArrivalWindow{Targets: []time.Time{
		time.Date(2015, 6, 5, 10, 0, 0, 0, time.UTC),
		time.Date(2015, 6, 6, 18, 0, 0, 0, time.UTC),
	}}
	o := Option{Arrival: tp(time.Date(2015, 6, 6, 17, 0, 0, 0, time.UTC))}
	if !c.Keep(o) {
		t.Error("arrival matching the second candidate date should be kept")
	}
}

func TestMaxOnwardDrive(t *testing.T) {
	short := 60 * time.Minute
	long := 3 * time.Hour
	mk := func(d *time.Duration) Option {
		links := []travel.Link{
			{Mode: travel.ModeFerry},
			{Mode: travel.ModeRoad, Duration: d},
		}
		return Option{Outward: travel.Itinerary{
			Waypoints: make([]travel.Waypoint, 3),
			Links:     links,
		}}
	}

	c := MaxOnwardDrive{Max: 90 * time.Minute}
	if !c.Keep(mk(&short)) {
		t.Error("60m drive should pass a 90m ceiling")
	}
	if c.Keep(mk(&long)) {
		t.Error("3h drive should fail a 90m ceiling (+30m buffer)")
	}
	if !c.Keep(mk(nil)) {
		t.Error("road leg without a duration is vacuously kept")
	}
	if !c.Keep(Option{Outward: travel.Itinerary{Links: []travel.Link{{Mode: travel.ModeFerry}}}}) {
		t.Error("no road leg at all is vacuously kept")
	}
}

func TestEarliestReturnDeparture(t *testing.T) {
	target := time.Date(2015, 6, 8, 12, 0, 0, 0, time.UTC)
	c := EarliestReturnDeparture{Target: target}
	mk := func(dep *time.Time) Option {
		return Option{Return: itin(quimper, southampton, 0, dep, nil)}
	}

	if !c.Keep(mk(tp(time.Date(2015, 6, 8, 11, 0, 0, 0, time.UTC)))) {
		t.Error("departure within the -60m buffer should be kept")
	}
	if c.Keep(mk(tp(time.Date(2015, 6, 8, 10, 59, 0, 0, time.UTC)))) {
		t.Error("departure before the buffered target should be removed")
	}
	if c.Keep(mk(nil)) {
		t.Error("unscheduled return cannot satisfy a departure constraint")
	}
}

func TestLatestReturnArrival(t *testing.T) {
	target := time.Date(2015, 6, 8, 22, 0, 0, 0, time.UTC)
	c := LatestReturnArrival{Target: target}
	mk := func(arr *time.Time) Option {
		return Option{Return: itin(quimper, southampton, 0, nil, arr)}
	}

	if !c.Keep(mk(tp(time.Date(2015, 6, 8, 23, 0, 0, 0, time.UTC)))) {
		t.Error("arrival within the +60m buffer should be kept")
	}
	if c.Keep(mk(tp(time.Date(2015, 6, 8, 23, 1, 0, 0, time.UTC)))) {
		t.Error("arrival past the buffered target should be removed")
	}
	if c.Keep(mk(nil)) {
		t.Error("unscheduled return should be removed")
	}
}

func TestFilter_ApplyAll(t *testing.T) {
	arr := tp(time.Date(2015, 6, 5, 9, 0, 0, 0, time.UTC))
	options := []Option{
		{Cost: 100, Arrival: arr},
		{Cost: 500, Arrival: arr},
		{Cost: 100, Arrival: nil},
	}
	f := NewFilter(options)
	n := f.ApplyAll([]Constraint{
		MaxCost{Limit: 200},
		ArrivalWindow{Targets: []time.Time{time.Date(2015, 6, 5, 10, 0, 0, 0, time.UTC)}},
	})
	if n != 1 {
		t.Errorf("ApplyAll() kept %d options, want 1", n)
	}
}
