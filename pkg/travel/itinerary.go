package travel

import (
	"strings"
	"time"

	"github.com/corriander/channelhop/pkg/errors"
)

// Itinerary is a fully merged, schedule-propagated alternating sequence
// [waypoint, link, waypoint, ..., waypoint] along one path. Immutable once
// built; equality is structural.
type Itinerary struct {
	Waypoints []Waypoint `json:"waypoints" bson:"waypoints"`
	Links     []Link     `json:"links" bson:"links"`
}

// NewItinerary concatenates one segment per hop into an itinerary. The end
// waypoint of each segment is merged with the start waypoint of the next
// (locations are guaranteed to match when segments follow a path; the merge
// still rejects conflicting datetimes). Known datetimes are then propagated
// forward and backward through links with known durations, so a single
// scheduled leg anchors the unscheduled legs on either side of it.
//
// Integrity failures (unmergeable waypoints) are fatal to this candidate
// only; callers enumerate siblings regardless.
func NewItinerary(segments []Segment) (Itinerary, error) {
	if len(segments) == 0 {
		return Itinerary{}, errors.New(errors.ErrCodeIntegrity, "itinerary needs at least one segment")
	}

	it := Itinerary{
		Waypoints: make([]Waypoint, 0, len(segments)+1),
		Links:     make([]Link, 0, len(segments)),
	}
	it.Waypoints = append(it.Waypoints, segments[0].Start)
	for i, seg := range segments {
		if i > 0 {
			merged, err := Merge(it.Waypoints[len(it.Waypoints)-1], seg.Start)
			if err != nil {
				return Itinerary{}, err
			}
			it.Waypoints[len(it.Waypoints)-1] = merged
		}
		it.Links = append(it.Links, seg.Link)
		it.Waypoints = append(it.Waypoints, seg.End)
	}

	it.propagate()
	return it, nil
}

// propagate fills unknown waypoint datetimes from known neighbors: a
// forward left-to-right pass (next = current + duration) then a backward
// right-to-left pass (prev = current − duration). Links without a duration
// are skipped. Propagation uses the raw link duration; border clock offsets
// are already baked into scheduled crossing timestamps.
func (it *Itinerary) propagate() {
	for i := 0; i < len(it.Links); i++ {
		cur, next := it.Waypoints[i], it.Waypoints[i+1]
		if cur.Timed() && !next.Timed() && it.Links[i].Duration != nil {
			t := cur.At.Add(*it.Links[i].Duration)
			it.Waypoints[i+1] = Waypoint{Loc: next.Loc, At: &t}
		}
	}
	for i := len(it.Links) - 1; i >= 0; i-- {
		cur, prev := it.Waypoints[i+1], it.Waypoints[i]
		if cur.Timed() && !prev.Timed() && it.Links[i].Duration != nil {
			t := cur.At.Add(-*it.Links[i].Duration)
			it.Waypoints[i] = Waypoint{Loc: prev.Loc, At: &t}
		}
	}
}

// Cost is the sum of all link costs in GBP, independent of segment order.
func (it Itinerary) Cost() float64 {
	var total float64
	for _, l := range it.Links {
		total += l.Cost
	}
	return total
}

// Arrival is the final waypoint's datetime. Nil when no leg in the
// itinerary carries a known datetime (a purely cost-oriented, unscheduled
// itinerary).
func (it Itinerary) Arrival() *time.Time {
	if len(it.Waypoints) == 0 {
		return nil
	}
	return it.Waypoints[len(it.Waypoints)-1].At
}

// Departure is the first waypoint's datetime, or nil if unknown.
func (it Itinerary) Departure() *time.Time {
	if len(it.Waypoints) == 0 {
		return nil
	}
	return it.Waypoints[0].At
}

// Origin returns the first waypoint.
func (it Itinerary) Origin() Waypoint { return it.Waypoints[0] }

// Terminus returns the last waypoint.
func (it Itinerary) Terminus() Waypoint { return it.Waypoints[len(it.Waypoints)-1] }

// LastLeg returns the final link of the given mode and true, or a zero
// link and false if no link has that mode. Used by constraint predicates
// ("post-crossing drive duration" is the last road leg of the outward
// itinerary).
func (it Itinerary) LastLeg(mode Mode) (Link, bool) {
	for i := len(it.Links) - 1; i >= 0; i-- {
		if it.Links[i].Mode == mode {
			return it.Links[i], true
		}
	}
	return Link{}, false
}

// Equal reports structural equality of the full merged, propagated
// waypoint-and-link sequences.
func (it Itinerary) Equal(other Itinerary) bool {
	if len(it.Waypoints) != len(other.Waypoints) || len(it.Links) != len(other.Links) {
		return false
	}
	for i := range it.Waypoints {
		if !it.Waypoints[i].Equal(other.Waypoints[i]) {
			return false
		}
	}
	for i := range it.Links {
		if !it.Links[i].Equal(other.Links[i]) {
			return false
		}
	}
	return true
}

// Feasible is an advisory check that the propagated schedule is physically
// plausible: waypoint datetimes never decrease along the sequence. The
// builder does not enforce this (independently scheduled legs are not
// cross-validated); presentation layers may surface it as a warning.
func (it Itinerary) Feasible() bool {
	var last *time.Time
	for _, w := range it.Waypoints {
		if !w.Timed() {
			continue
		}
		if last != nil && w.At.Before(*last) {
			return false
		}
		last = w.At
	}
	return true
}

// String renders the itinerary one waypoint/link per line.
func (it Itinerary) String() string {
	var b strings.Builder
	for i, w := range it.Waypoints {
		b.WriteString(w.String())
		if i < len(it.Links) {
			l := it.Links[i]
			b.WriteString("\n  | ")
			b.WriteString(string(l.Mode))
			if l.Note != "" {
				b.WriteString(" - ")
				b.WriteString(l.Note)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
