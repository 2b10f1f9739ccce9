// Package tripfile loads TOML trip definitions: the route endpoints,
// dataset locations, filter constraints, vehicle and participants for a
// planning run.
package tripfile

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/corriander/channelhop/pkg/errors"
	"github.com/corriander/channelhop/pkg/ledger"
	"github.com/corriander/channelhop/pkg/place"
	"github.com/corriander/channelhop/pkg/plan"
)

// TripFile is a parsed trip definition.
type TripFile struct {
	Name        string            `toml:"name"`
	Route       RouteSection      `toml:"route"`
	Data        DataSection       `toml:"data"`
	Constraints ConstraintSection `toml:"constraints"`
	Vehicle     *ledger.Vehicle   `toml:"vehicle"`
	People      []PersonSection   `toml:"people"`
}

// RouteSection names the trip endpoints. They must be in different
// countries.
type RouteSection struct {
	Origin      place.Location `toml:"origin"`
	Destination place.Location `toml:"destination"`
}

// DataSection locates the datasets backing the plan. Crossings is
// optional; the built-in Channel network is used when it is empty.
type DataSection struct {
	Roads     string `toml:"roads"`
	Ferries   string `toml:"ferries"`
	Crossings string `toml:"crossings"`
}

// ConstraintSection holds the optional filter parameters. Absent fields
// leave the corresponding filter off. The section doubles as the API
// request payload, hence the json tags.
type ConstraintSection struct {
	ArrivalTargets          []time.Time `toml:"arrival_targets" json:"arrival_targets,omitempty"`
	MaxOnwardDrive          string      `toml:"max_onward_drive" json:"max_onward_drive,omitempty"`
	EarliestReturnDeparture *time.Time  `toml:"earliest_return_departure" json:"earliest_return_departure,omitempty"`
	LatestReturnArrival     *time.Time  `toml:"latest_return_arrival" json:"latest_return_arrival,omitempty"`
	MaxCost                 *float64    `toml:"max_cost" json:"max_cost,omitempty"`
}

// Constraints builds the filter chain the section declares, in the
// conventional application order: arrival window, onward drive, return
// departure, return arrival, cost ceiling.
func (c ConstraintSection) Constraints() ([]plan.Constraint, error) {
	var out []plan.Constraint

	if len(c.ArrivalTargets) > 0 {
		out = append(out, plan.ArrivalWindow{Targets: c.ArrivalTargets})
	}
	if c.MaxOnwardDrive != "" {
		d, err := time.ParseDuration(c.MaxOnwardDrive)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTripFile, err, "parsing max_onward_drive")
		}
		out = append(out, plan.MaxOnwardDrive{Max: d})
	}
	if c.EarliestReturnDeparture != nil {
		out = append(out, plan.EarliestReturnDeparture{Target: *c.EarliestReturnDeparture})
	}
	if c.LatestReturnArrival != nil {
		out = append(out, plan.LatestReturnArrival{Target: *c.LatestReturnArrival})
	}
	if c.MaxCost != nil {
		out = append(out, plan.MaxCost{Limit: *c.MaxCost})
	}
	return out, nil
}

// PersonSection declares a trip participant.
type PersonSection struct {
	Name string `toml:"name"`
}

// Load reads and validates a trip definition from a TOML file.
func Load(path string) (*TripFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTripFile, err, "reading trip file")
	}
	return Parse(data)
}

// Parse decodes and validates a TOML trip definition.
func Parse(data []byte) (*TripFile, error) {
	var f TripFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTripFile, err, "decoding trip file")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the definition is complete and internally consistent.
func (f *TripFile) Validate() error {
	if f.Route.Origin.IsZero() || f.Route.Destination.IsZero() {
		return errors.New(errors.ErrCodeInvalidTripFile, "route requires an origin and a destination")
	}
	if f.Route.Origin.Country == f.Route.Destination.Country {
		return errors.New(errors.ErrCodeInvalidTripFile,
			"origin and destination are both in %s", f.Route.Origin.Country)
	}
	if f.Data.Roads == "" || f.Data.Ferries == "" {
		return errors.New(errors.ErrCodeInvalidTripFile, "data requires roads and ferries paths")
	}
	if f.Constraints.MaxOnwardDrive != "" {
		if _, err := time.ParseDuration(f.Constraints.MaxOnwardDrive); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidTripFile, err, "parsing max_onward_drive")
		}
	}
	for _, p := range f.People {
		if p.Name == "" {
			return errors.New(errors.ErrCodeInvalidTripFile, "every person needs a name")
		}
	}
	return nil
}

// PlanConstraints builds the filter chain declared by the constraints
// section.
func (f *TripFile) PlanConstraints() ([]plan.Constraint, error) {
	return f.Constraints.Constraints()
}

// Participants materialises the people section as ledger participants.
func (f *TripFile) Participants() []*ledger.Person {
	out := make([]*ledger.Person, 0, len(f.People))
	for _, p := range f.People {
		out = append(out, ledger.NewPerson(p.Name))
	}
	return out
}
