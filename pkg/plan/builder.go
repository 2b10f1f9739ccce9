package plan

import (
	"github.com/corriander/channelhop/pkg/errors"
	"github.com/corriander/channelhop/pkg/routegraph"
	"github.com/corriander/channelhop/pkg/travel"
)

// DefaultMaxItineraries bounds the Cartesian fan-out of a single path.
const DefaultMaxItineraries = 10000

// Builder expands paths into itineraries against a segment index.
type Builder struct {
	Index *Index

	// MaxItineraries caps the per-path Cartesian product size. Zero means
	// DefaultMaxItineraries.
	MaxItineraries int
}

// Build generates one candidate itinerary per element of the Cartesian
// product of the path's per-hop alternative sets: a path with per-hop
// alternative counts a1..an yields Π ai itineraries. A path containing a
// hop with no transport options yields none.
//
// Candidates that fail construction with an integrity error (conflicting
// datetimes at a merge point) are excluded from the result and their
// siblings enumerated regardless; any other error aborts the build.
func (b *Builder) Build(path routegraph.Path) ([]travel.Itinerary, error) {
	if len(path) < 2 {
		return nil, errors.New(errors.ErrCodeConfiguration, "path needs at least two locations")
	}

	alternatives := make([][]travel.Segment, len(path)-1)
	product := 1
	for i := 0; i < len(path)-1; i++ {
		alts := b.Index.Lookup(path[i], path[i+1])
		if len(alts) == 0 {
			return nil, nil
		}
		alternatives[i] = alts
		product *= len(alts)
	}

	limit := b.MaxItineraries
	if limit <= 0 {
		limit = DefaultMaxItineraries
	}
	if product > limit {
		return nil, errors.New(errors.ErrCodeFanoutExceeded,
			"path %v expands to %d itineraries (limit %d)", path, product, limit)
	}

	choice := make([]int, len(alternatives))
	segments := make([]travel.Segment, len(alternatives))
	itineraries := make([]travel.Itinerary, 0, product)

	for {
		for i, c := range choice {
			segments[i] = alternatives[i][c]
		}
		it, err := travel.NewItinerary(segments)
		switch {
		case err == nil:
			itineraries = append(itineraries, it)
		case errors.IsIntegrity(err):
			// Fatal to this combination only.
		default:
			return nil, err
		}

		// Advance the odometer.
		i := len(choice) - 1
		for ; i >= 0; i-- {
			choice[i]++
			if choice[i] < len(alternatives[i]) {
				break
			}
			choice[i] = 0
		}
		if i < 0 {
			return itineraries, nil
		}
	}
}

// BuildAll expands every path and concatenates the results. Per-path
// itinerary construction is independent; ordering within a single
// itinerary's merge and propagation is strictly sequential.
func (b *Builder) BuildAll(paths []routegraph.Path) ([]travel.Itinerary, error) {
	var all []travel.Itinerary
	for _, p := range paths {
		its, err := b.Build(p)
		if err != nil {
			return nil, err
		}
		all = append(all, its...)
	}
	return all, nil
}
