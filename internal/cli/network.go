package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corriander/channelhop/pkg/errors"
	"github.com/corriander/channelhop/pkg/place"
	"github.com/corriander/channelhop/pkg/render/routemap"
	"github.com/corriander/channelhop/pkg/routegraph"
)

// networkOpts holds the command-line flags for the network command.
type networkOpts struct {
	format    string // dot, svg, or png
	output    string // output file path (stdout if empty)
	crossings string // crossing table TOML path
}

// newNetworkCmd creates the network command.
func newNetworkCmd() *cobra.Command {
	opts := networkOpts{format: "dot"}

	cmd := &cobra.Command{
		Use:   "network <origin> <destination>",
		Short: "Render the port network as DOT, SVG, or PNG",
		Long: `Render the port network connecting two endpoints.

Endpoints are given as "Town,CC" (e.g. "Southampton,UK"). The built-in
Channel network is used unless --crossings names a TOML table.

Examples:
  channelhop network Southampton,UK Quimper,FR
  channelhop network Southampton,UK Quimper,FR --format svg -o map.svg`,
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return runNetwork(args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, png")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.crossings, "crossings", "", "crossing table TOML file")

	return cmd
}

func runNetwork(origin, destination string, opts networkOpts) error {
	from, err := parseLocation(origin)
	if err != nil {
		return err
	}
	to, err := parseLocation(destination)
	if err != nil {
		return err
	}

	table := place.ChannelCrossings()
	if opts.crossings != "" {
		table, err = place.LoadCrossingTable(opts.crossings)
		if err != nil {
			return err
		}
	}

	g, err := routegraph.New(table, from, to)
	if err != nil {
		return err
	}
	dot := routemap.ToDOT(g, routemap.Options{})

	var data []byte
	switch opts.format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = routemap.RenderSVG(dot)
	case "png":
		data, err = routemap.RenderPNG(dot)
	default:
		return errors.New(errors.ErrCodeConfiguration,
			"invalid format %q (must be one of: dot, svg, png)", opts.format)
	}
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return err
	}
	printSuccess("Rendered port network")
	printFile(opts.output)
	return nil
}

// parseLocation parses a "Town,CC" argument.
func parseLocation(s string) (place.Location, error) {
	town, country, ok := strings.Cut(s, ",")
	town = strings.TrimSpace(town)
	country = strings.TrimSpace(country)
	if !ok || town == "" || country == "" {
		return place.Location{}, errors.New(errors.ErrCodeConfiguration,
			"invalid location %q (expected \"Town,CC\")", s)
	}
	return place.Location{Town: town, Country: country}, nil
}
