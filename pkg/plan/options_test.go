package plan

import (
	"testing"
	"time"

	"github.com/corriander/channelhop/pkg/place"
	"github.com/corriander/channelhop/pkg/travel"
)

// itin builds a one-leg itinerary literal with the given cost and optional
// departure/arrival times.
func itin(from, to place.Location, cost float64, dep, arr *time.Time) travel.Itinerary {
	return travel.Itinerary{
		Waypoints: []travel.Waypoint{
			{Loc: from, At: dep},
			{Loc: to, At: arr},
		},
		Links: []travel.Link{{Mode: travel.ModeRoad, Cost: cost}},
	}
}

func tp(t time.Time) *time.Time { return &t }

func TestCombine_CrossProduct(t *testing.T) {
	arr1 := tp(time.Date(2015, 6, 5, 14, 0, 0, 0, time.UTC))
	arr2 := tp(time.Date(2015, 6, 5, 18, 0, 0, 0, time.UTC))
	outward := []travel.Itinerary{
		itin(southampton, quimper, 100, nil, arr1),
		itin(southampton, quimper, 150, nil, arr2),
	}
	ret := []travel.Itinerary{
		itin(quimper, southampton, 90, nil, nil),
		itin(quimper, southampton, 110, nil, nil),
		itin(quimper, southampton, 130, nil, nil),
	}

	options := Combine(outward, ret)
	if len(options) != 6 {
		t.Fatalf("Combine() produced %d options, want 2*3 = 6", len(options))
	}
	if options[0].Cost != 190 {
		t.Errorf("cheapest option cost = %.2f, want 190", options[0].Cost)
	}
	for i := 1; i < len(options); i++ {
		if options[i].Cost < options[i-1].Cost {
			t.Fatalf("options not sorted by cost: %.2f before %.2f", options[i-1].Cost, options[i].Cost)
		}
	}
}

func TestCombine_ArrivalFromOutward(t *testing.T) {
	arr := tp(time.Date(2015, 6, 5, 14, 0, 0, 0, time.UTC))
	retArr := tp(time.Date(2015, 6, 8, 20, 0, 0, 0, time.UTC))
	options := Combine(
		[]travel.Itinerary{itin(southampton, quimper, 100, nil, arr)},
		[]travel.Itinerary{itin(quimper, southampton, 90, nil, retArr)},
	)
	if len(options) != 1 {
		t.Fatal("want one option")
	}
	if options[0].Arrival == nil || !options[0].Arrival.Equal(*arr) {
		t.Errorf("option arrival = %v, want the outward arrival %v", options[0].Arrival, arr)
	}
}

func TestCombine_TieBreakByArrival(t *testing.T) {
	early := tp(time.Date(2015, 6, 5, 9, 0, 0, 0, time.UTC))
	late := tp(time.Date(2015, 6, 5, 21, 0, 0, 0, time.UTC))
	outward := []travel.Itinerary{
		itin(southampton, quimper, 100, nil, late),
		itin(southampton, quimper, 100, nil, early),
		itin(southampton, quimper, 100, nil, nil), // unscheduled sorts last
	}
	ret := []travel.Itinerary{itin(quimper, southampton, 50, nil, nil)}

	options := Combine(outward, ret)
	if options[0].Arrival == nil || !options[0].Arrival.Equal(*early) {
		t.Errorf("first option arrival = %v, want earliest %v", options[0].Arrival, early)
	}
	if options[2].Arrival != nil {
		t.Error("unscheduled option should sort last among equal costs")
	}
}

func TestOption_CostPerDirection(t *testing.T) {
	o := Option{Cost: 193.50}
	if got := o.CostPerDirection(); got != 96.75 {
		t.Errorf("CostPerDirection() = %.2f, want 96.75", got)
	}
}
