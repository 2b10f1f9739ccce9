package plan

import (
	"fmt"
	"time"

	"github.com/corriander/channelhop/pkg/travel"
)

// Tolerance buffers intrinsic to each constraint kind. They are fixed by
// the constraint's meaning, not user-configurable: a target is a
// preference, and the buffer absorbs the slack a traveler would accept.
const (
	ArrivalBuffer         = 90 * time.Minute
	OnwardDriveBuffer     = 30 * time.Minute
	ReturnDepartureBuffer = 60 * time.Minute
	ReturnArrivalBuffer   = 60 * time.Minute
	CostBuffer            = 10.0 // GBP
)

// Constraint is a named, stateless predicate over options. Keep reports
// whether an option survives.
type Constraint interface {
	Name() string
	Keep(Option) bool
}

// ArrivalWindow keeps options whose outward arrival falls on one of the
// target dates and does not exceed the matching target time by more than
// the arrival buffer. Unscheduled outward itineraries cannot match and are
// removed.
type ArrivalWindow struct {
	Targets []time.Time
}

// Name implements Constraint.
func (c ArrivalWindow) Name() string { return "arrival" }

// Keep implements Constraint.
func (c ArrivalWindow) Keep(o Option) bool {
	if o.Arrival == nil {
		return false
	}
	for _, target := range c.Targets {
		if sameDate(*o.Arrival, target) && !o.Arrival.After(target.Add(ArrivalBuffer)) {
			return true
		}
	}
	return false
}

// MaxOnwardDrive keeps options whose outward itinerary's last road leg does
// not exceed the target duration by more than the drive buffer. Options
// with no outward road leg are vacuously kept.
type MaxOnwardDrive struct {
	Max time.Duration
}

// Name implements Constraint.
func (c MaxOnwardDrive) Name() string { return "onward-drive" }

// Keep implements Constraint.
func (c MaxOnwardDrive) Keep(o Option) bool {
	leg, ok := o.Outward.LastLeg(travel.ModeRoad)
	if !ok || leg.Duration == nil {
		return true
	}
	return *leg.Duration <= c.Max+OnwardDriveBuffer
}

// EarliestReturnDeparture keeps options whose return itinerary departs no
// earlier than the target minus the departure buffer. Unscheduled returns
// cannot satisfy a departure constraint and are removed.
type EarliestReturnDeparture struct {
	Target time.Time
}

// Name implements Constraint.
func (c EarliestReturnDeparture) Name() string { return "return-departure" }

// Keep implements Constraint.
func (c EarliestReturnDeparture) Keep(o Option) bool {
	dep := o.Return.Departure()
	if dep == nil {
		return false
	}
	return !dep.Before(c.Target.Add(-ReturnDepartureBuffer))
}

// LatestReturnArrival keeps options whose return itinerary arrives no later
// than the target plus the arrival buffer. Unscheduled returns are removed.
type LatestReturnArrival struct {
	Target time.Time
}

// Name implements Constraint.
func (c LatestReturnArrival) Name() string { return "return-arrival" }

// Keep implements Constraint.
func (c LatestReturnArrival) Keep(o Option) bool {
	arr := o.Return.Arrival()
	if arr == nil {
		return false
	}
	return !arr.After(c.Target.Add(ReturnArrivalBuffer))
}

// MaxCost keeps options whose aggregate cost does not exceed the limit by
// more than the cost buffer.
type MaxCost struct {
	Limit float64 // GBP
}

// Name implements Constraint.
func (c MaxCost) Name() string { return "cost" }

// Keep implements Constraint.
func (c MaxCost) Keep(o Option) bool {
	return o.Cost <= c.Limit+CostBuffer
}

// Filter holds the current surviving option set and shrinks it
// monotonically: each Apply starts from the current survivors, and a
// removed option is never re-admitted.
type Filter struct {
	options []Option
	applied []string
}

// NewFilter seeds a filter with the initial candidate collection.
func NewFilter(options []Option) *Filter {
	return &Filter{options: append([]Option(nil), options...)}
}

// Apply runs one constraint over the surviving set and returns how many
// options remain.
func (f *Filter) Apply(c Constraint) int {
	kept := f.options[:0]
	for _, o := range f.options {
		if c.Keep(o) {
			kept = append(kept, o)
		}
	}
	f.options = kept
	f.applied = append(f.applied, c.Name())
	return len(f.options)
}

// ApplyAll applies constraints in order and returns the final count.
func (f *Filter) ApplyAll(cs []Constraint) int {
	n := len(f.options)
	for _, c := range cs {
		n = f.Apply(c)
	}
	return n
}

// Options returns the current surviving set.
func (f *Filter) Options() []Option {
	return f.options
}

// Applied returns the names of the constraints applied so far, in order.
func (f *Filter) Applied() []string {
	return f.applied
}

// String summarises the filter state.
func (f *Filter) String() string {
	return fmt.Sprintf("filter(%d options, %d constraints applied)", len(f.options), len(f.applied))
}

// sameDate reports whether two instants fall on the same calendar date.
func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
