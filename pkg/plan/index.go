// Package plan turns transport records and candidate paths into priced,
// time-stamped round-trip options.
//
// The pieces compose leaf to root: an [Index] groups directional segments
// by location pair, a [Builder] expands each path's per-hop alternatives
// into concrete itineraries, [Combine] cross-products outward and return
// itineraries into [Option] values, and a [Filter] shrinks the option set
// with named constraint predicates.
package plan

import (
	"github.com/corriander/channelhop/pkg/dataset"
	"github.com/corriander/channelhop/pkg/errors"
	"github.com/corriander/channelhop/pkg/place"
	"github.com/corriander/channelhop/pkg/travel"
)

// hop is an ordered location pair, the index key.
type hop struct {
	from, to place.Location
}

// Index groups alternative segments by ordered (source, destination) pair.
// Multiple alternatives per pair (two operators, a toll and a non-toll
// road) are preserved as independent branches for later expansion. Each
// direction is indexed independently.
type Index struct {
	segments map[hop][]travel.Segment
	offsets  travel.OffsetTable
}

// NewIndex creates an empty index using the given border offset table for
// segment validation and ferry duration derivation.
func NewIndex(offsets travel.OffsetTable) *Index {
	return &Index{
		segments: make(map[hop][]travel.Segment),
		offsets:  offsets,
	}
}

// BuildIndex indexes a full dataset. Records are already expanded
// (both directions, fare variants) by the dataset package.
func BuildIndex(offsets travel.OffsetTable, roads []dataset.RoadLeg, ferries []dataset.FerryCrossing) (*Index, error) {
	ix := NewIndex(offsets)
	for _, r := range roads {
		if err := ix.Add(r); err != nil {
			return nil, err
		}
	}
	for _, f := range ferries {
		if err := ix.Add(f); err != nil {
			return nil, err
		}
	}
	return ix, nil
}

// Add constructs a segment from a transport record and files it under the
// record's directed location pair. Road legs become unscheduled segments
// with a known duration; ferry crossings become scheduled segments whose
// duration is derived from the timestamps net of the border clock offset.
func (ix *Index) Add(leg dataset.TransportLeg) error {
	var seg travel.Segment
	var err error

	switch l := leg.(type) {
	case dataset.RoadLeg:
		d := l.Duration
		seg, err = travel.NewSegment(
			travel.Waypoint{Loc: l.Source},
			travel.Waypoint{Loc: l.Destination},
			travel.Link{Mode: travel.ModeRoad, Duration: &d, Cost: l.Cost, Note: l.Note, Distance: l.Distance},
			ix.offsets,
		)
	case dataset.FerryCrossing:
		d := l.Arr.Sub(l.Dep) - ix.offsets.Between(l.Source.Country, l.Destination.Country)
		if d <= 0 {
			return errors.New(errors.ErrCodeInvalidRecord,
				"ferry %s -> %s arrives before it departs", l.Source, l.Destination)
		}
		dep, arr := l.Dep, l.Arr
		note := l.Operator
		if l.Note != "" {
			if note == "" {
				note = l.Note
			} else {
				note += ", " + l.Note
			}
		}
		seg, err = travel.NewSegment(
			travel.Waypoint{Loc: l.Source, At: &dep},
			travel.Waypoint{Loc: l.Destination, At: &arr},
			travel.Link{Mode: travel.ModeFerry, Duration: &d, Cost: l.Cost, Note: note},
			ix.offsets,
		)
	default:
		return errors.New(errors.ErrCodeUnsupported, "unknown transport record type %T", leg)
	}
	if err != nil {
		return err
	}

	from, to := leg.Endpoints()
	key := hop{from: from, to: to}
	ix.segments[key] = append(ix.segments[key], seg)
	return nil
}

// Lookup returns the alternative segments for a directed location pair, in
// insertion order. Nil when the pair has no transport options.
func (ix *Index) Lookup(from, to place.Location) []travel.Segment {
	return ix.segments[hop{from: from, to: to}]
}

// Len returns the number of directed pairs with at least one segment.
func (ix *Index) Len() int {
	return len(ix.segments)
}
