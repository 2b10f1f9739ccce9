// Package pipeline provides the core planning pipeline for channelhop.
//
// This package implements the complete index → route → enumerate →
// combine → filter pipeline that can be used by CLI and API components.
// By centralizing this logic, we ensure consistent behavior across all
// entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of five stages:
//
//  1. Index: Group transport legs by ordered endpoint pair
//  2. Route: Enumerate single-crossing paths through the port network
//  3. Enumerate: Expand each path into concrete itineraries
//  4. Combine: Pair outward and return itineraries into options
//  5. Filter: Apply the trip's constraints to the option set
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, logger)
//	opts := pipeline.Options{
//	    Origin:      place.Location{Town: "Southampton", Country: place.UK},
//	    Destination: place.Location{Town: "Quimper", Country: place.FR},
//	    Roads:       roads,
//	    Ferries:     ferries,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	best := result.Options[0]
package pipeline

import (
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/corriander/channelhop/pkg/dataset"
	"github.com/corriander/channelhop/pkg/errors"
	"github.com/corriander/channelhop/pkg/place"
	"github.com/corriander/channelhop/pkg/plan"
	"github.com/corriander/channelhop/pkg/travel"
)

const (
	// DefaultMaxOptions bounds the outward x return cross product. The
	// enumeration is exhaustive, so a pathological dataset could
	// otherwise produce an unbounded option set.
	DefaultMaxOptions = 50000

	// TTLPlan is how long computed plans stay cached. Plans are keyed by
	// a content hash of their inputs, so a long TTL is safe; the TTL
	// only bounds disk growth.
	TTLPlan = 7 * 24 * time.Hour
)

// Options contains all configuration for a planning run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Origin      place.Location `json:"origin"`
	Destination place.Location `json:"destination"`

	// Crossings defaults to the built-in Channel network.
	Crossings place.CrossingTable `json:"crossings,omitempty"`

	// Offsets defaults to the UK/France border clock offsets.
	Offsets travel.OffsetTable `json:"-"`

	Roads   []dataset.RoadLeg       `json:"roads"`
	Ferries []dataset.FerryCrossing `json:"ferries"`

	Constraints []plan.Constraint `json:"-"`

	// MaxItineraries bounds the per-path enumeration fan-out.
	MaxItineraries int `json:"max_itineraries,omitempty"`

	// MaxOptions bounds the outward x return cross product.
	MaxOptions int `json:"max_options,omitempty"`

	// Refresh bypasses the plan cache.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Origin.IsZero() || o.Destination.IsZero() {
		return errors.New(errors.ErrCodeConfiguration, "origin and destination are required")
	}
	if len(o.Roads) == 0 && len(o.Ferries) == 0 {
		return errors.New(errors.ErrCodeConfiguration, "no transport legs provided")
	}
	if o.Crossings == nil {
		o.Crossings = place.ChannelCrossings()
	}
	if o.Offsets == nil {
		o.Offsets = travel.ChannelOffsets()
	}
	if o.MaxItineraries == 0 {
		o.MaxItineraries = plan.DefaultMaxItineraries
	}
	if o.MaxOptions == 0 {
		o.MaxOptions = DefaultMaxOptions
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// keyInputs is the serializable snapshot of everything that determines a
// plan, used to derive the cache key.
type keyInputs struct {
	Origin      place.Location          `json:"origin"`
	Destination place.Location          `json:"destination"`
	Crossings   place.CrossingTable     `json:"crossings"`
	Roads       []dataset.RoadLeg       `json:"roads"`
	Ferries     []dataset.FerryCrossing `json:"ferries"`
	Constraints []constraintKey         `json:"constraints"`
	MaxOptions  int                     `json:"max_options"`
}

// constraintKey pairs a constraint's name with its parameters so two
// constraint types with identical fields cannot collide in the key.
type constraintKey struct {
	Name   string          `json:"name"`
	Params json.RawMessage `json:"params"`
}

func (o *Options) keyInputs() keyInputs {
	in := keyInputs{
		Origin:      o.Origin,
		Destination: o.Destination,
		Crossings:   o.Crossings,
		Roads:       o.Roads,
		Ferries:     o.Ferries,
		MaxOptions:  o.MaxOptions,
	}
	for _, c := range o.Constraints {
		params, _ := json.Marshal(c)
		in.Constraints = append(in.Constraints, constraintKey{Name: c.Name(), Params: params})
	}
	return in
}

// Plan is the output of a pipeline run.
type Plan struct {
	ID          string         `json:"id" bson:"_id"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
	Origin      place.Location `json:"origin" bson:"origin"`
	Destination place.Location `json:"destination" bson:"destination"`

	// Options is the surviving option set, cheapest first.
	Options []plan.Option `json:"options" bson:"options"`

	// Applied lists the names of the constraints applied, in order.
	Applied []string `json:"applied,omitempty" bson:"applied,omitempty"`

	Stats Stats `json:"stats" bson:"stats"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Segments            int           `json:"segments" bson:"segments"`
	OutwardPaths        int           `json:"outward_paths" bson:"outward_paths"`
	ReturnPaths         int           `json:"return_paths" bson:"return_paths"`
	OutwardItineraries  int           `json:"outward_itineraries" bson:"outward_itineraries"`
	ReturnItineraries   int           `json:"return_itineraries" bson:"return_itineraries"`
	GeneratedOptions    int           `json:"generated_options" bson:"generated_options"`
	KeptOptions         int           `json:"kept_options" bson:"kept_options"`
	IndexTime           time.Duration `json:"index_time" bson:"index_time"`
	EnumerateTime       time.Duration `json:"enumerate_time" bson:"enumerate_time"`
	FilterTime          time.Duration `json:"filter_time" bson:"filter_time"`
	CacheHit            bool          `json:"cache_hit" bson:"cache_hit"`
}
