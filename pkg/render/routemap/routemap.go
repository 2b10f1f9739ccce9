// Package routemap renders the port network as a map: locations grouped
// by country, crossings between them, and optionally a highlighted
// route.
package routemap

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/corriander/channelhop/pkg/place"
	"github.com/corriander/channelhop/pkg/routegraph"
)

// Options configures route map rendering.
type Options struct {
	// Highlight marks a route through the network. Its edges are drawn
	// bold and its waypoints filled.
	Highlight routegraph.Path
}

// ToDOT converts the port network to Graphviz DOT format. Each country
// becomes a cluster and each connection an undirected edge. The
// resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
func ToDOT(g *routegraph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph routemap {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	onRoute := routeNodes(opts.Highlight)

	for _, country := range countries(g) {
		fmt.Fprintf(&buf, "  subgraph \"cluster_%s\" {\n", country)
		fmt.Fprintf(&buf, "    label=%q;\n", country)
		buf.WriteString("    style=dashed;\n")
		for _, loc := range g.Locations() {
			if loc.Country != country {
				continue
			}
			attrs := []string{fmt.Sprintf("label=%q", loc.Town)}
			if onRoute[loc] {
				attrs = append(attrs, "fillcolor=lightblue")
			}
			fmt.Fprintf(&buf, "    %q [%s];\n", nodeID(loc), strings.Join(attrs, ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	highlighted := routeEdges(opts.Highlight)
	for _, e := range edges(g) {
		if highlighted[e] {
			fmt.Fprintf(&buf, "  %q -- %q [color=blue, penwidth=2];\n", nodeID(e.a), nodeID(e.b))
		} else {
			fmt.Fprintf(&buf, "  %q -- %q;\n", nodeID(e.a), nodeID(e.b))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(loc place.Location) string {
	return loc.Town + "/" + loc.Country
}

func countries(g *routegraph.Graph) []string {
	seen := make(map[string]bool)
	var out []string
	for _, loc := range g.Locations() {
		if !seen[loc.Country] {
			seen[loc.Country] = true
			out = append(out, loc.Country)
		}
	}
	sort.Strings(out)
	return out
}

// edge is an undirected connection with a canonical endpoint order.
type edge struct {
	a, b place.Location
}

func canonical(a, b place.Location) edge {
	if nodeID(b) < nodeID(a) {
		a, b = b, a
	}
	return edge{a: a, b: b}
}

func edges(g *routegraph.Graph) []edge {
	seen := make(map[edge]bool)
	var out []edge
	for _, loc := range g.Locations() {
		for _, other := range g.Neighbors(loc) {
			e := canonical(loc, other)
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].a != out[j].a {
			return nodeID(out[i].a) < nodeID(out[j].a)
		}
		return nodeID(out[i].b) < nodeID(out[j].b)
	})
	return out
}

func routeNodes(p routegraph.Path) map[place.Location]bool {
	out := make(map[place.Location]bool, len(p))
	for _, loc := range p {
		out[loc] = true
	}
	return out
}

func routeEdges(p routegraph.Path) map[edge]bool {
	out := make(map[edge]bool)
	for i := 1; i < len(p); i++ {
		out[canonical(p[i-1], p[i])] = true
	}
	return out
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
