// Package routegraph builds the undirected location graph for a trip and
// enumerates candidate paths through it.
//
// The graph covers a fixed set of ferry ports (from a [place.CrossingTable])
// plus two dynamic endpoints: the domestic origin and the international
// destination. Adjacency follows three rules:
//
//   - each port connects to its paired port(s) from the crossing table
//   - each port connects to the endpoint sharing its country
//   - each endpoint connects to every port of its own country
//
// Path enumeration is exhaustive: every simple path between two nodes is
// found with an iterative depth-first search, then filtered down to paths
// whose country sequence changes exactly once (the single-crossing rule).
// The graph is tiny (under a dozen nodes) so full enumeration is cheap.
package routegraph

import (
	"slices"

	"github.com/corriander/channelhop/pkg/errors"
	"github.com/corriander/channelhop/pkg/place"
)

// Path is an ordered sequence of distinct locations from one endpoint to
// the other.
type Path []place.Location

// Crossings counts the country transitions along the path.
func (p Path) Crossings() int {
	n := 0
	for i := 1; i < len(p); i++ {
		if p[i].Country != p[i-1].Country {
			n++
		}
	}
	return n
}

// SingleCrossing reports whether the path changes country exactly once.
func (p Path) SingleCrossing() bool {
	return p.Crossings() == 1
}

// Graph is an undirected simple graph over locations. Nodes are held in an
// arena and referenced by index internally; the public API speaks
// [place.Location] values. Immutable once built.
type Graph struct {
	nodes []place.Location       // arena, index = node ID
	index map[place.Location]int // location -> arena index
	adj   [][]int                // adjacency lists, sorted for determinism

	origin      place.Location
	destination place.Location
}

// New builds the trip graph from a crossing table and the two trip
// endpoints. The origin must be in a different country from the
// destination, and the table must offer ports in both countries.
func New(table place.CrossingTable, origin, destination place.Location) (*Graph, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if origin.Country == destination.Country {
		return nil, errors.New(errors.ErrCodeConfiguration,
			"origin %s and destination %s share a country; no crossing is possible", origin, destination)
	}

	g := &Graph{
		index:       make(map[place.Location]int),
		origin:      origin,
		destination: destination,
	}
	g.add(origin)
	g.add(destination)
	for _, port := range table.Ports() {
		g.add(port)
	}
	g.adj = make([][]int, len(g.nodes))

	// Port-to-port edges from the crossing table.
	for _, c := range table {
		g.connect(g.index[c.A], g.index[c.B])
	}
	// Endpoint-to-port edges by shared country.
	for _, endpoint := range []place.Location{origin, destination} {
		for _, port := range table.PortsIn(endpoint.Country) {
			g.connect(g.index[endpoint], g.index[port])
		}
	}
	if len(table.PortsIn(origin.Country)) == 0 {
		return nil, errors.New(errors.ErrCodeConfiguration,
			"no ports in %s reachable from origin %s", origin.Country, origin)
	}
	if len(table.PortsIn(destination.Country)) == 0 {
		return nil, errors.New(errors.ErrCodeConfiguration,
			"no ports in %s reachable from destination %s", destination.Country, destination)
	}

	for i := range g.adj {
		slices.Sort(g.adj[i])
	}
	return g, nil
}

// add interns a location into the arena if not already present.
func (g *Graph) add(loc place.Location) {
	if _, ok := g.index[loc]; ok {
		return
	}
	g.index[loc] = len(g.nodes)
	g.nodes = append(g.nodes, loc)
}

// connect adds an undirected edge, ignoring duplicates and self-loops.
func (g *Graph) connect(a, b int) {
	if a == b {
		return
	}
	if !slices.Contains(g.adj[a], b) {
		g.adj[a] = append(g.adj[a], b)
		g.adj[b] = append(g.adj[b], a)
	}
}

// Origin returns the domestic endpoint the graph was built with.
func (g *Graph) Origin() place.Location { return g.origin }

// Destination returns the international endpoint the graph was built with.
func (g *Graph) Destination() place.Location { return g.destination }

// Locations returns all nodes in arena order: origin, destination, then
// ports in table order.
func (g *Graph) Locations() []place.Location {
	return slices.Clone(g.nodes)
}

// Neighbors returns the locations adjacent to loc, in deterministic order.
func (g *Graph) Neighbors(loc place.Location) []place.Location {
	i, ok := g.index[loc]
	if !ok {
		return nil
	}
	out := make([]place.Location, len(g.adj[i]))
	for j, n := range g.adj[i] {
		out[j] = g.nodes[n]
	}
	return out
}

// Contains reports whether loc is a node of the graph.
func (g *Graph) Contains(loc place.Location) bool {
	_, ok := g.index[loc]
	return ok
}

// dfsFrame is one level of the explicit DFS stack: a node and a cursor into
// its adjacency list.
type dfsFrame struct {
	node int
	next int
}

// FindPaths enumerates every simple path from start to end and returns the
// subset that crosses a country border exactly once. Unknown start or end
// locations are a configuration error.
//
// The search is an explicit-stack depth-first walk with visited-node
// exclusion, so cycles are impossible and the worst case is bounded by the
// (small) fixed node count rather than recursion depth.
func (g *Graph) FindPaths(start, end place.Location) ([]Path, error) {
	s, ok := g.index[start]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownLocation, "start location %s is not in the graph", start)
	}
	e, ok := g.index[end]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownLocation, "end location %s is not in the graph", end)
	}

	var paths []Path
	onPath := make([]bool, len(g.nodes))
	stack := []dfsFrame{{node: s}}
	onPath[s] = true

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		if top.node == e {
			p := make(Path, len(stack))
			for i, f := range stack {
				p[i] = g.nodes[f.node]
			}
			if p.SingleCrossing() {
				paths = append(paths, p)
			}
			onPath[top.node] = false
			stack = stack[:len(stack)-1]
			continue
		}

		advanced := false
		for top.next < len(g.adj[top.node]) {
			n := g.adj[top.node][top.next]
			top.next++
			if onPath[n] {
				continue
			}
			onPath[n] = true
			stack = append(stack, dfsFrame{node: n})
			advanced = true
			break
		}
		if !advanced {
			onPath[top.node] = false
			stack = stack[:len(stack)-1]
		}
	}
	return paths, nil
}

// OutwardPaths enumerates single-crossing paths from origin to destination.
func (g *Graph) OutwardPaths() ([]Path, error) {
	return g.FindPaths(g.origin, g.destination)
}

// ReturnPaths enumerates single-crossing paths from destination to origin.
// The return set is computed independently of the outward set: available
// transport differs by direction, so the two are not mirror images.
func (g *Graph) ReturnPaths() ([]Path, error) {
	return g.FindPaths(g.destination, g.origin)
}
