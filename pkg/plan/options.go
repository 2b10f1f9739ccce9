package plan

import (
	"sort"
	"time"

	"github.com/corriander/channelhop/pkg/travel"
)

// Option is one purchasable round trip: an outward itinerary paired with a
// return itinerary, with an aggregate cost and a derived arrival.
type Option struct {
	Outward travel.Itinerary `json:"outward" bson:"outward"`
	Return  travel.Itinerary `json:"return" bson:"return"`

	// Cost is the straight sum of the two itineraries' costs in GBP. It is
	// the canonical value for ranking and filtering.
	Cost float64 `json:"cost" bson:"cost"`

	// Arrival is the outward itinerary's arrival datetime, nil when the
	// outward itinerary is unscheduled.
	Arrival *time.Time `json:"arrival,omitempty" bson:"arrival,omitempty"`
}

// CostPerDirection is a display transform: half the aggregate cost. It is
// never used in comparisons or filtering.
func (o Option) CostPerDirection() float64 {
	return o.Cost / 2
}

// Combine forms the full cross product of outward and return itineraries,
// one option per pair. The result is sorted ascending by aggregate cost,
// ties broken by earliest arrival (unscheduled arrivals sort last), for a
// deterministic presentation order.
func Combine(outward, ret []travel.Itinerary) []Option {
	options := make([]Option, 0, len(outward)*len(ret))
	for _, out := range outward {
		for _, in := range ret {
			options = append(options, Option{
				Outward: out,
				Return:  in,
				Cost:    out.Cost() + in.Cost(),
				Arrival: out.Arrival(),
			})
		}
	}
	sort.SliceStable(options, func(i, j int) bool {
		if options[i].Cost != options[j].Cost {
			return options[i].Cost < options[j].Cost
		}
		a, b := options[i].Arrival, options[j].Arrival
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return options
}
