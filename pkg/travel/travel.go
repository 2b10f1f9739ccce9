// Package travel models the building blocks of an itinerary: waypoints
// (a location with an optional known date/time), links (a priced, possibly
// timed transition), segments (one directed hop) and itineraries (a fully
// merged, schedule-propagated alternating sequence of waypoints and links).
//
// All values are immutable once constructed. Construction is where the
// integrity rules live: a waypoint merge with conflicting datetimes and a
// segment whose timestamps disagree with its declared duration both fail
// with integrity errors, which callers treat as fatal to the candidate
// under construction but not to the enclosing enumeration.
package travel

import (
	"fmt"
	"time"

	"github.com/corriander/channelhop/pkg/errors"
	"github.com/corriander/channelhop/pkg/place"
)

// Mode distinguishes road legs from ferry crossings on a link.
type Mode string

// Link modes.
const (
	ModeRoad  Mode = "road"
	ModeFerry Mode = "ferry"
)

// Waypoint is a node in an itinerary: a location and an optional known
// date/time. A nil At means "unknown, to be inferred" and makes the
// waypoint suitable for merging with a timed waypoint at the same location.
type Waypoint struct {
	Loc place.Location `json:"location" bson:"location"`
	At  *time.Time     `json:"at,omitempty" bson:"at,omitempty"`
}

// Timed reports whether the waypoint has a known date/time.
func (w Waypoint) Timed() bool { return w.At != nil }

// String renders "Town, CC" or "Town, CC (Mon 02 Jan, 1504)".
func (w Waypoint) String() string {
	if w.At == nil {
		return w.Loc.String()
	}
	return fmt.Sprintf("%s (%s)", w.Loc, w.At.Format("Mon 02 Jan, 1504"))
}

// Equal reports structural equality: same location and same instant (or
// both unknown).
func (w Waypoint) Equal(other Waypoint) bool {
	if w.Loc != other.Loc {
		return false
	}
	if (w.At == nil) != (other.At == nil) {
		return false
	}
	return w.At == nil || w.At.Equal(*other.At)
}

// Merge combines two waypoints at the same location into one. The datetime
// of the result is the non-nil side's, in either order. Merging waypoints
// at different locations, or with conflicting non-nil datetimes, fails with
// an integrity error.
func Merge(a, b Waypoint) (Waypoint, error) {
	if a.Loc != b.Loc {
		return Waypoint{}, errors.New(errors.ErrCodeUnmergeableWaypoints,
			"waypoints at different locations: %s vs %s", a.Loc, b.Loc)
	}
	switch {
	case a.At == nil:
		return b, nil
	case b.At == nil:
		return a, nil
	case a.At.Equal(*b.At):
		return a, nil
	}
	return Waypoint{}, errors.New(errors.ErrCodeUnmergeableWaypoints,
		"conflicting datetimes at %s: %s vs %s", a.Loc, a.At, b.At)
}

// Link is a transition between waypoints: a duration (optional, used to
// infer unknown waypoint datetimes), a cost in GBP, a descriptive note, the
// distance covered (road legs; zero for crossings) and the set of trip
// participants present, attached by the ledger downstream.
type Link struct {
	Mode     Mode           `json:"mode" bson:"mode"`
	Duration *time.Duration `json:"duration,omitempty" bson:"duration,omitempty"`
	Cost     float64        `json:"cost" bson:"cost"`
	Note     string         `json:"note,omitempty" bson:"note,omitempty"`
	Distance float64        `json:"distance,omitempty" bson:"distance,omitempty"` // km
	People   []string       `json:"people,omitempty" bson:"people,omitempty"`
}

// Equal reports structural equality of two links.
func (l Link) Equal(other Link) bool {
	if l.Mode != other.Mode || l.Cost != other.Cost || l.Note != other.Note || l.Distance != other.Distance {
		return false
	}
	if (l.Duration == nil) != (other.Duration == nil) {
		return false
	}
	if l.Duration != nil && *l.Duration != *other.Duration {
		return false
	}
	if len(l.People) != len(other.People) {
		return false
	}
	for i := range l.People {
		if l.People[i] != other.People[i] {
			return false
		}
	}
	return true
}

// OffsetTable maps ordered country pairs to the wall-clock shift applied
// when crossing that border. Plain elapsed time between two local
// timestamps either side of a border differs from the link duration by
// exactly this offset.
type OffsetTable map[[2]string]time.Duration

// Between returns the clock offset for travel from one country to another.
// Unlisted pairs (including domestic travel) have no offset.
func (t OffsetTable) Between(from, to string) time.Duration {
	return t[[2]string{from, to}]
}

// ChannelOffsets returns the offset table for the cross-channel network:
// France is one hour ahead of the UK year round (both observe DST on the
// same dates).
func ChannelOffsets() OffsetTable {
	return OffsetTable{
		{place.UK, place.FR}: time.Hour,
		{place.FR, place.UK}: -time.Hour,
	}
}

// Segment is one directed hop of an itinerary: two waypoints and the link
// between them.
type Segment struct {
	Start Waypoint `json:"start" bson:"start"`
	End   Waypoint `json:"end" bson:"end"`
	Link  Link     `json:"link" bson:"link"`
}

// NewSegment constructs a segment, validating consistency when it is fully
// constrained. If both waypoints are timed and the link carries a duration,
// the local-clock difference end−start must equal duration plus the border
// offset for the hop's country pair; anything else is an over-constrained
// segment.
func NewSegment(start, end Waypoint, link Link, offsets OffsetTable) (Segment, error) {
	if start.Timed() && end.Timed() && link.Duration != nil {
		wall := end.At.Sub(*start.At)
		want := *link.Duration + offsets.Between(start.Loc.Country, end.Loc.Country)
		if wall != want {
			return Segment{}, errors.New(errors.ErrCodeOverConstrained,
				"segment %s -> %s: clock difference %s does not match duration %s with border offset",
				start.Loc, end.Loc, wall, *link.Duration)
		}
	}
	return Segment{Start: start, End: end, Link: link}, nil
}

// String renders "A, UK --> B, FR : 1h30 £25.00".
func (s Segment) String() string {
	d := "?"
	if s.Link.Duration != nil {
		h := int(s.Link.Duration.Hours())
		m := int(s.Link.Duration.Minutes()) % 60
		d = fmt.Sprintf("%dh%02d", h, m)
	}
	return fmt.Sprintf("%s --> %s : %s £%.2f", s.Start, s.End, d, s.Link.Cost)
}
