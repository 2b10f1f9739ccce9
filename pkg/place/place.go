// Package place defines the planner's geographic vocabulary: locations
// (town/country pairs used as graph nodes) and the static table of ferry
// crossings connecting them.
//
// Locations are small value types compared and hashed by value, so they can
// be used directly as map keys. The crossing table is injected configuration
// rather than a process-wide global: callers either use [ChannelCrossings]
// or load their own table from a TOML file with [LoadCrossingTable].
package place

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/corriander/channelhop/pkg/errors"
)

// Country codes used by the default network. A country is any opaque tag;
// the planner only ever compares codes for equality.
const (
	UK = "UK"
	FR = "FR"
)

// Location identifies a town in a country. The zero value is not a valid
// location. Equality is by value: two Locations with the same town and
// country are the same node.
type Location struct {
	Town    string `json:"town" bson:"town" toml:"town"`
	Country string `json:"country" bson:"country" toml:"country"`
}

// String returns the "Town, Country" form used in itinerary output.
func (l Location) String() string {
	return fmt.Sprintf("%s, %s", l.Town, l.Country)
}

// IsZero reports whether the location is unset.
func (l Location) IsZero() bool {
	return l.Town == "" && l.Country == ""
}

// Crossing is one bidirectional ferry route between two ports. The pair is
// unordered: a table entry {Portsmouth, Cherbourg} implies sailings both
// ways.
type Crossing struct {
	A Location `json:"a" bson:"a" toml:"a"`
	B Location `json:"b" bson:"b" toml:"b"`
}

// CrossingTable is the static set of ferry routes the graph is built from.
type CrossingTable []Crossing

// Ports returns the distinct port locations referenced by the table, in
// first-appearance order.
func (t CrossingTable) Ports() []Location {
	seen := make(map[Location]bool)
	var ports []Location
	for _, c := range t {
		for _, loc := range []Location{c.A, c.B} {
			if !seen[loc] {
				seen[loc] = true
				ports = append(ports, loc)
			}
		}
	}
	return ports
}

// PortsIn returns the table's ports in the given country, in
// first-appearance order.
func (t CrossingTable) PortsIn(country string) []Location {
	var ports []Location
	for _, loc := range t.Ports() {
		if loc.Country == country {
			ports = append(ports, loc)
		}
	}
	return ports
}

// Validate checks the table is usable: no self-crossings, no crossing
// within a single country, and no empty locations.
func (t CrossingTable) Validate() error {
	for i, c := range t {
		if c.A.IsZero() || c.B.IsZero() {
			return errors.New(errors.ErrCodeConfiguration, "crossing %d has an empty endpoint", i)
		}
		if c.A == c.B {
			return errors.New(errors.ErrCodeConfiguration, "crossing %d is a self-loop at %s", i, c.A)
		}
		if c.A.Country == c.B.Country {
			return errors.New(errors.ErrCodeConfiguration,
				"crossing %d (%s - %s) does not cross a border", i, c.A, c.B)
		}
	}
	return nil
}

// ChannelCrossings returns the default cross-channel ferry network. The
// routes mirror the scheduled car-ferry services between the English south
// coast and northern France.
func ChannelCrossings() CrossingTable {
	return CrossingTable{
		{A: Location{"Portsmouth", UK}, B: Location{"Cherbourg", FR}},
		{A: Location{"Portsmouth", UK}, B: Location{"Caen", FR}},
		{A: Location{"Portsmouth", UK}, B: Location{"St Malo", FR}},
		{A: Location{"Poole", UK}, B: Location{"Cherbourg", FR}},
		{A: Location{"Plymouth", UK}, B: Location{"Roscoff", FR}},
	}
}

// crossingFile is the TOML on-disk form of a crossing table.
type crossingFile struct {
	Crossings []Crossing `toml:"crossings"`
}

// LoadCrossingTable reads a crossing table from a TOML file:
//
//	[[crossings]]
//	a = { town = "Portsmouth", country = "UK" }
//	b = { town = "Cherbourg", country = "FR" }
func LoadCrossingTable(path string) (CrossingTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "reading crossing table %s", path)
	}
	var f crossingFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "parsing crossing table %s", path)
	}
	table := CrossingTable(f.Crossings)
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}
