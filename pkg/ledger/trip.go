package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/corriander/channelhop/pkg/errors"
	"github.com/corriander/channelhop/pkg/money"
	"github.com/corriander/channelhop/pkg/place"
	"github.com/corriander/channelhop/pkg/travel"
)

// Trip is an ordered event log of waypoints and driven legs, used to
// attribute shared costs to whoever was aboard at each stage.
//
// Participants must be added before the waypoints they are present for
// and removed before the waypoints they are not.
type Trip struct {
	Description string
	Vehicle     *Vehicle

	events []event
	people map[string]*Person
	actual *money.Amount
}

type event interface{ event() }

// stopEvent is a waypoint with a snapshot of who was present.
type stopEvent struct {
	wp     travel.Waypoint
	people []*Person
}

// legEvent is a driven stage between waypoints with its fuel estimate.
type legEvent struct {
	distance float64
	duration *time.Duration
	estimate money.Cost
	people   []*Person
}

func (stopEvent) event() {}
func (legEvent) event()  {}

// NewTrip creates an empty trip for the given vehicle.
func NewTrip(description string, vehicle *Vehicle) *Trip {
	return &Trip{
		Description: description,
		Vehicle:     vehicle,
		people:      make(map[string]*Person),
	}
}

// AddPerson adds a participant. They are associated with every waypoint
// added until they are removed.
func (t *Trip) AddPerson(p *Person) {
	t.people[p.Name] = p
}

// RemovePerson removes a participant from subsequent waypoints.
func (t *Trip) RemovePerson(p *Person) error {
	if _, ok := t.people[p.Name]; !ok {
		return errors.New(errors.ErrCodeConfiguration,
			"%s is not on the trip", p.Name)
	}
	delete(t.people, p.Name)
	return nil
}

// People returns the current participants, sorted by name.
func (t *Trip) People() []*Person {
	out := make([]*Person, 0, len(t.people))
	for _, p := range t.people {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AddWaypoint appends a waypoint associated with the current
// participants.
func (t *Trip) AddWaypoint(loc place.Location, at *time.Time) {
	t.events = append(t.events, stopEvent{
		wp:     travel.Waypoint{Loc: loc, At: at},
		people: t.People(),
	})
}

// AddCost splits a shared cost equally between the people present at the
// most recent waypoint and adds the shares to their bills. Negative
// amounts are treated as positive.
func (t *Trip) AddCost(description string, amount money.Amount) error {
	stop, err := t.lastStop()
	if err != nil {
		return err
	}
	if len(stop.people) == 0 {
		return errors.New(errors.ErrCodeConfiguration,
			"no participants present at %s", stop.wp)
	}

	share := money.NewCost(description, amount.Abs()).Split(len(stop.people))
	for _, p := range stop.people {
		p.AddCost(share.Description, share.Amount)
	}
	return nil
}

// Travel appends a driven leg of the given distance in km. The leg
// carries a fuel cost estimate from the vehicle and is associated with
// the people present at the preceding waypoint.
func (t *Trip) Travel(distance float64, duration *time.Duration) error {
	if len(t.events) == 0 {
		return errors.New(errors.ErrCodeConfiguration, "travel must follow a waypoint")
	}
	stop, ok := t.events[len(t.events)-1].(stopEvent)
	if !ok {
		return errors.New(errors.ErrCodeConfiguration, "travel must follow a waypoint")
	}

	est := t.Vehicle.EstimateFuelCost(distance)
	est.Description = fmt.Sprintf("Fuel; %.0f km, %d people", distance, len(stop.people))
	t.events = append(t.events, legEvent{
		distance: distance,
		duration: duration,
		estimate: est,
		people:   stop.people,
	})
	return nil
}

// Distance sums the driven distance in km.
func (t *Trip) Distance() float64 {
	var total float64
	for _, ev := range t.events {
		if leg, ok := ev.(legEvent); ok {
			total += leg.distance
		}
	}
	return total
}

// EstimatedFuelCost sums the per-leg fuel estimates.
func (t *Trip) EstimatedFuelCost() money.Amount {
	total := money.Pounds(0)
	for _, ev := range t.events {
		if leg, ok := ev.(legEvent); ok {
			total, _ = total.Add(leg.estimate.Amount)
		}
	}
	return total
}

// SetFuelCost records the real fuel spend. Once set, breakdowns scale
// the per-leg estimates so their proportions are kept but their sum
// matches the real figure.
func (t *Trip) SetFuelCost(actual money.Amount) {
	t.actual = &actual
}

// FuelBreakdown itemises fuel costs per driven leg, reconciled against
// the real spend when one has been recorded.
func (t *Trip) FuelBreakdown() []money.Cost {
	estimate := t.EstimatedFuelCost()

	var out []money.Cost
	for _, ev := range t.events {
		leg, ok := ev.(legEvent)
		if !ok {
			continue
		}
		cost := leg.estimate
		if t.actual != nil && estimate.Value != 0 {
			ratio := leg.estimate.Amount.Value / estimate.Value
			cost.Amount = money.Pounds(t.actual.Value * ratio)
		}
		out = append(out, cost)
	}
	return out
}

// AssignFuelCosts splits each leg's fuel cost between the people aboard
// for that leg and adds the shares to their bills. A positive actual
// amount records the real spend first, so shares are reconciled
// proportionally against it.
func (t *Trip) AssignFuelCosts(actual money.Amount) error {
	if actual.Value > 0 {
		t.SetFuelCost(actual)
	}

	costs := t.FuelBreakdown()
	i := 0
	for _, ev := range t.events {
		leg, ok := ev.(legEvent)
		if !ok {
			continue
		}
		cost := costs[i]
		i++

		if len(leg.people) == 0 {
			return errors.New(errors.ErrCodeConfiguration,
				"driven leg has no participants to bill")
		}
		share := cost.Split(len(leg.people))
		for _, p := range leg.people {
			p.AddCost(share.Description, share.Amount)
		}
	}
	return nil
}

func (t *Trip) lastStop() (stopEvent, error) {
	for i := len(t.events) - 1; i >= 0; i-- {
		if stop, ok := t.events[i].(stopEvent); ok {
			return stop, nil
		}
	}
	return stopEvent{}, errors.New(errors.ErrCodeConfiguration, "no waypoints added")
}

// FromItinerary builds a trip from a planned itinerary: each waypoint
// becomes a trip waypoint, road legs with a known distance become driven
// legs, and link fares (ferry tickets, tolls) become shared costs at the
// preceding waypoint.
func FromItinerary(description string, vehicle *Vehicle, people []*Person, itin travel.Itinerary) (*Trip, error) {
	t := NewTrip(description, vehicle)
	for _, p := range people {
		t.AddPerson(p)
	}

	for i, wp := range itin.Waypoints {
		t.AddWaypoint(wp.Loc, wp.At)
		if i >= len(itin.Links) {
			break
		}

		link := itin.Links[i]
		if link.Cost > 0 {
			desc := link.Note
			if desc == "" {
				desc = fmt.Sprintf("%s to %s", wp.Loc, itin.Waypoints[i+1].Loc)
			}
			if err := t.AddCost(desc, money.Pounds(link.Cost)); err != nil {
				return nil, err
			}
		}
		if link.Mode == travel.ModeRoad && link.Distance > 0 {
			if err := t.Travel(link.Distance, link.Duration); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}
