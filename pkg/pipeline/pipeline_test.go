package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/corriander/channelhop/pkg/cache"
	"github.com/corriander/channelhop/pkg/dataset"
	"github.com/corriander/channelhop/pkg/errors"
	"github.com/corriander/channelhop/pkg/place"
	"github.com/corriander/channelhop/pkg/plan"
)

var (
	southampton = place.Location{Town: "Southampton", Country: place.UK}
	portsmouth  = place.Location{Town: "Portsmouth", Country: place.UK}
	cherbourg   = place.Location{Town: "Cherbourg", Country: place.FR}
	quimper     = place.Location{Town: "Quimper", Country: place.FR}
)

func fixtureOptions() Options {
	ts := func(day, hour, min int) time.Time {
		return time.Date(2026, 8, day, hour, min, 0, 0, time.UTC)
	}

	return Options{
		Origin:      southampton,
		Destination: quimper,
		Crossings:   place.CrossingTable{{A: portsmouth, B: cherbourg}},
		Roads: []dataset.RoadLeg{
			{Source: southampton, Destination: portsmouth, Distance: 40, Duration: 45 * time.Minute, Cost: 8.50},
			{Source: portsmouth, Destination: southampton, Distance: 40, Duration: 45 * time.Minute, Cost: 8.50},
			{Source: cherbourg, Destination: quimper, Distance: 250, Duration: 3 * time.Hour, Cost: 12},
			{Source: quimper, Destination: cherbourg, Distance: 250, Duration: 3 * time.Hour, Cost: 12},
		},
		Ferries: []dataset.FerryCrossing{
			{Source: portsmouth, Destination: cherbourg, Operator: "BF", Dep: ts(1, 9, 30), Arr: ts(1, 13, 0), Cost: 170},
			{Source: cherbourg, Destination: portsmouth, Operator: "BF", Dep: ts(8, 14, 0), Arr: ts(8, 14, 30), Cost: 150},
		},
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil)
	defer r.Close()

	p, err := r.Execute(context.Background(), fixtureOptions())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if p.ID == "" {
		t.Error("plan has no ID")
	}
	if p.Stats.OutwardPaths != 1 || p.Stats.ReturnPaths != 1 {
		t.Errorf("paths = %d/%d, want 1/1", p.Stats.OutwardPaths, p.Stats.ReturnPaths)
	}
	if p.Stats.OutwardItineraries != 1 || p.Stats.ReturnItineraries != 1 {
		t.Errorf("itineraries = %d/%d, want 1/1",
			p.Stats.OutwardItineraries, p.Stats.ReturnItineraries)
	}
	if len(p.Options) != 1 {
		t.Fatalf("got %d options, want 1", len(p.Options))
	}

	opt := p.Options[0]
	// 8.50 + 170 + 12 outward, 12 + 150 + 8.50 return.
	if want := 361.0; opt.Cost != want {
		t.Errorf("option cost = %v, want %v", opt.Cost, want)
	}
	if opt.Arrival == nil {
		t.Fatal("option has no arrival")
	}
	if want := time.Date(2026, 8, 1, 16, 0, 0, 0, time.UTC); !opt.Arrival.Equal(want) {
		t.Errorf("arrival = %v, want %v", opt.Arrival, want)
	}
}

func TestExecuteAppliesConstraints(t *testing.T) {
	opts := fixtureOptions()
	opts.Constraints = []plan.Constraint{plan.MaxCost{Limit: 100}}

	r := NewRunner(nil, nil)
	defer r.Close()

	p, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if p.Stats.GeneratedOptions != 1 || p.Stats.KeptOptions != 0 {
		t.Errorf("generated/kept = %d/%d, want 1/0",
			p.Stats.GeneratedOptions, p.Stats.KeptOptions)
	}
	if len(p.Applied) != 1 {
		t.Errorf("applied = %v", p.Applied)
	}
}

func TestExecuteCaches(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(fc, nil)
	defer r.Close()

	ctx := context.Background()
	first, err := r.Execute(ctx, fixtureOptions())
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.Stats.CacheHit {
		t.Error("first run should not hit the cache")
	}

	second, err := r.Execute(ctx, fixtureOptions())
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.Stats.CacheHit {
		t.Error("second run should hit the cache")
	}
	if second.ID != first.ID {
		t.Errorf("cached plan ID = %q, want %q", second.ID, first.ID)
	}
	if len(second.Options) != len(first.Options) {
		t.Errorf("cached options = %d, want %d", len(second.Options), len(first.Options))
	}

	// Refresh bypasses the cache and computes a fresh plan.
	refreshOpts := fixtureOptions()
	refreshOpts.Refresh = true
	third, err := r.Execute(ctx, refreshOpts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if third.Stats.CacheHit {
		t.Error("refresh run should not hit the cache")
	}
	if third.ID == first.ID {
		t.Error("refresh run should produce a new plan")
	}
}

func TestExecuteOptionLimit(t *testing.T) {
	opts := fixtureOptions()
	opts.MaxOptions = -1 // below any product

	r := NewRunner(nil, nil)
	defer r.Close()

	_, err := r.Execute(context.Background(), opts)
	if !errors.Is(err, errors.ErrCodeFanoutExceeded) {
		t.Errorf("err = %v, want fanout exceeded", err)
	}
}

func TestExecuteValidation(t *testing.T) {
	r := NewRunner(nil, nil)
	defer r.Close()

	cases := []Options{
		{},                       // no endpoints
		{Origin: southampton},    // no destination
		{Origin: southampton, Destination: quimper}, // no legs
	}
	for i, opts := range cases {
		if _, err := r.Execute(context.Background(), opts); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestEnumerateRoutes(t *testing.T) {
	r := NewRunner(nil, nil)
	defer r.Close()

	outward, ret, err := r.EnumerateRoutes(fixtureOptions())
	if err != nil {
		t.Fatalf("EnumerateRoutes: %v", err)
	}
	if len(outward) != 1 || len(ret) != 1 {
		t.Fatalf("paths = %d/%d, want 1/1", len(outward), len(ret))
	}
	if got := outward[0][0]; got != southampton {
		t.Errorf("outward starts at %v", got)
	}
	if got := ret[0][0]; got != quimper {
		t.Errorf("return starts at %v", got)
	}
}
