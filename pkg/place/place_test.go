package place

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/corriander/channelhop/pkg/errors"
)

func TestLocation_Equality(t *testing.T) {
	a := Location{"Portsmouth", UK}
	b := Location{"Portsmouth", UK}
	if a != b {
		t.Error("identical locations should compare equal")
	}
	set := map[Location]bool{a: true}
	if !set[b] {
		t.Error("locations should hash by value")
	}
}

func TestLocation_String(t *testing.T) {
	l := Location{"Cherbourg", FR}
	if got := l.String(); got != "Cherbourg, FR" {
		t.Errorf("String() = %q, want %q", got, "Cherbourg, FR")
	}
}

func TestCrossingTable_Ports(t *testing.T) {
	table := ChannelCrossings()
	ports := table.Ports()

	// Five routes over seven distinct ports, no duplicates.
	if len(ports) != 7 {
		t.Fatalf("Ports() returned %d ports, want 7", len(ports))
	}
	seen := make(map[Location]bool)
	for _, p := range ports {
		if seen[p] {
			t.Errorf("duplicate port %s", p)
		}
		seen[p] = true
	}
}

func TestCrossingTable_PortsIn(t *testing.T) {
	table := ChannelCrossings()
	if got := len(table.PortsIn(UK)); got != 3 {
		t.Errorf("PortsIn(UK) returned %d ports, want 3", got)
	}
	if got := len(table.PortsIn(FR)); got != 4 {
		t.Errorf("PortsIn(FR) returned %d ports, want 4", got)
	}
	if got := len(table.PortsIn("DE")); got != 0 {
		t.Errorf("PortsIn(DE) returned %d ports, want 0", got)
	}
}

func TestCrossingTable_Validate(t *testing.T) {
	if err := ChannelCrossings().Validate(); err != nil {
		t.Errorf("default table should validate, got %v", err)
	}

	selfLoop := CrossingTable{{A: Location{"Dover", UK}, B: Location{"Dover", UK}}}
	if err := selfLoop.Validate(); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("self-loop should fail validation, got %v", err)
	}

	domestic := CrossingTable{{A: Location{"Dover", UK}, B: Location{"Hull", UK}}}
	if err := domestic.Validate(); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("same-country crossing should fail validation, got %v", err)
	}

	empty := CrossingTable{{A: Location{}, B: Location{"Hull", UK}}}
	if err := empty.Validate(); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("empty endpoint should fail validation, got %v", err)
	}
}

func TestLoadCrossingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crossings.toml")
	content := `
[[crossings]]
a = { town = "Portsmouth", country = "UK" }
b = { town = "Cherbourg", country = "FR" }

[[crossings]]
a = { town = "Plymouth", country = "UK" }
b = { town = "Roscoff", country = "FR" }
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadCrossingTable(path)
	if err != nil {
		t.Fatalf("LoadCrossingTable() error: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("loaded %d crossings, want 2", len(table))
	}
	want := Location{"Roscoff", FR}
	if table[1].B != want {
		t.Errorf("table[1].B = %v, want %v", table[1].B, want)
	}
}

func TestLoadCrossingTable_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCrossingTable(path); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("invalid TOML should yield a configuration error, got %v", err)
	}

	if _, err := LoadCrossingTable(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file should error")
	}
}
