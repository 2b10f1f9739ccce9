// Package dataset defines the externally sourced transport records the
// planner consumes and the CSV decoding that materializes them.
//
// Records arrive as spreadsheet-style CSV rows describing road routes and
// ferry sailings. Decoding also performs expansion: a road row yields a
// record in each direction, and a ferry row with a positive accommodation
// cost yields an extra cabin variant. Downstream components (the segment
// index) consume records uniformly through the [TransportLeg] interface and
// never see raw rows.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/corriander/channelhop/pkg/errors"
	"github.com/corriander/channelhop/pkg/place"
)

// TransportLeg is the tagged variant over road and ferry records. It is a
// sealed interface: only [RoadLeg] and [FerryCrossing] implement it.
type TransportLeg interface {
	// Endpoints returns the directed (source, destination) pair the record
	// describes.
	Endpoints() (from, to place.Location)

	transportLeg()
}

// RoadLeg is one directional priced road route between two locations.
// Road legs are unscheduled: they carry a duration but no timestamps.
type RoadLeg struct {
	Source      place.Location `json:"source" bson:"source"`
	Destination place.Location `json:"destination" bson:"destination"`
	Distance    float64        `json:"distance" bson:"distance"` // km
	Duration    time.Duration  `json:"duration" bson:"duration"`
	Cost        float64        `json:"cost" bson:"cost"` // GBP
	Note        string         `json:"note,omitempty" bson:"note,omitempty"`
}

// Endpoints implements TransportLeg.
func (r RoadLeg) Endpoints() (place.Location, place.Location) {
	return r.Source, r.Destination
}

func (RoadLeg) transportLeg() {}

// FerryCrossing is one scheduled directional sailing between two ports.
// Departure and arrival are local wall-clock timestamps in the respective
// ports' countries.
type FerryCrossing struct {
	Source      place.Location `json:"source" bson:"source"`
	Destination place.Location `json:"destination" bson:"destination"`
	Operator    string         `json:"operator" bson:"operator"`
	Dep         time.Time      `json:"dep" bson:"dep"`
	Arr         time.Time      `json:"arr" bson:"arr"`
	Cost        float64        `json:"cost" bson:"cost"` // GBP
	Note        string         `json:"note,omitempty" bson:"note,omitempty"`
}

// Endpoints implements TransportLeg.
func (f FerryCrossing) Endpoints() (place.Location, place.Location) {
	return f.Source, f.Destination
}

func (FerryCrossing) transportLeg() {}

// Gazetteer resolves town names from external records to full locations.
type Gazetteer map[string]place.Location

// NewGazetteer indexes locations by town name.
func NewGazetteer(locs ...place.Location) Gazetteer {
	g := make(Gazetteer, len(locs))
	for _, l := range locs {
		g[l.Town] = l
	}
	return g
}

// resolve looks up a town, failing with a data error when unknown.
func (g Gazetteer) resolve(town string) (place.Location, error) {
	loc, ok := g[strings.TrimSpace(town)]
	if !ok {
		return place.Location{}, errors.New(errors.ErrCodeInvalidRecord, "unknown town %q", town)
	}
	return loc, nil
}

// ParseRoads decodes road route rows and expands each into a record per
// direction. Row format:
//
//	source,destination,distance_km,duration(H:MM),cost,note
func ParseRoads(r io.Reader, gaz Gazetteer) ([]RoadLeg, error) {
	rows, err := readRows(r, 6)
	if err != nil {
		return nil, err
	}
	var legs []RoadLeg
	for i, row := range rows {
		src, err := gaz.resolve(row[0])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "road row %d", i+1)
		}
		dst, err := gaz.resolve(row[1])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "road row %d", i+1)
		}
		distance, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "road row %d: distance", i+1)
		}
		duration, err := parseClockDuration(row[3])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "road row %d: duration", i+1)
		}
		cost, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "road row %d: cost", i+1)
		}
		note := strings.TrimSpace(row[5])

		legs = append(legs,
			RoadLeg{Source: src, Destination: dst, Distance: distance, Duration: duration, Cost: cost, Note: note},
			RoadLeg{Source: dst, Destination: src, Distance: distance, Duration: duration, Cost: cost, Note: note},
		)
	}
	return legs, nil
}

// ParseFerries decodes ferry sailing rows. Rows with a positive
// accommodation cost expand into two variants: the plain fare and a cabin
// fare with the accommodation cost folded in. Row format:
//
//	source,destination,operator,dep_date,dep_time,arr_date,arr_time,cost,accom_cost,note
//
// with dates as 2006-01-02 and times as 15:04, local to each port.
func ParseFerries(r io.Reader, gaz Gazetteer) ([]FerryCrossing, error) {
	rows, err := readRows(r, 10)
	if err != nil {
		return nil, err
	}
	var crossings []FerryCrossing
	for i, row := range rows {
		src, err := gaz.resolve(row[0])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "ferry row %d", i+1)
		}
		dst, err := gaz.resolve(row[1])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "ferry row %d", i+1)
		}
		operator := strings.TrimSpace(row[2])
		dep, err := parseLocalTimestamp(row[3], row[4])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "ferry row %d: departure", i+1)
		}
		arr, err := parseLocalTimestamp(row[5], row[6])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "ferry row %d: arrival", i+1)
		}
		cost, err := strconv.ParseFloat(strings.TrimSpace(row[7]), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "ferry row %d: cost", i+1)
		}
		accom, err := strconv.ParseFloat(strings.TrimSpace(row[8]), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "ferry row %d: accommodation cost", i+1)
		}
		note := strings.TrimSpace(row[9])

		crossings = append(crossings, FerryCrossing{
			Source: src, Destination: dst, Operator: operator,
			Dep: dep, Arr: arr, Cost: cost, Note: note,
		})
		if accom > 0 {
			cabinNote := strings.TrimSpace(note + " Cabin")
			crossings = append(crossings, FerryCrossing{
				Source: src, Destination: dst, Operator: operator,
				Dep: dep, Arr: arr, Cost: cost + accom, Note: cabinNote,
			})
		}
	}
	return crossings, nil
}

// readRows reads all CSV rows, skipping blank lines and enforcing a fixed
// field count.
func readRows(r io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "reading records")
	}
	return rows, nil
}

// parseClockDuration parses "H:MM" into a duration.
func parseClockDuration(s string) (time.Duration, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed duration %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed duration %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed duration %q", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

// parseLocalTimestamp combines a date and a time field.
func parseLocalTimestamp(date, clock string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04", strings.TrimSpace(date)+" "+strings.TrimSpace(clock))
}
