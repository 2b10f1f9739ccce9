package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/corriander/channelhop/pkg/cache"
	"github.com/corriander/channelhop/pkg/dataset"
	"github.com/corriander/channelhop/pkg/ledger"
	"github.com/corriander/channelhop/pkg/money"
	"github.com/corriander/channelhop/pkg/pipeline"
	"github.com/corriander/channelhop/pkg/place"
	"github.com/corriander/channelhop/pkg/plan"
	"github.com/corriander/channelhop/pkg/travel"
	"github.com/corriander/channelhop/pkg/tripfile"
)

// planOpts holds the command-line flags for the plan command.
type planOpts struct {
	limit       int    // options to display
	output      string // JSON output file path
	refresh     bool   // bypass the plan cache
	noCache     bool   // disable the plan cache entirely
	interactive bool   // browse options in a TUI
	bill        bool   // split the best option's costs between participants
}

// newPlanCmd creates the plan command.
func newPlanCmd() *cobra.Command {
	opts := planOpts{limit: 10}

	cmd := &cobra.Command{
		Use:   "plan <trip.toml>",
		Short: "Generate and filter trip options from a trip definition",
		Long: `Plan a two-leg trip from a TOML trip definition.

The command enumerates every ferry and road combination between the
trip's endpoints, prices each round trip, filters the set against the
definition's constraints, and prints the survivors cheapest first.

Examples:
  channelhop plan trip.toml                # Top 10 options
  channelhop plan trip.toml --limit 3      # Top 3
  channelhop plan trip.toml --bill         # Split the best option's costs
  channelhop plan trip.toml -o plan.json   # Full plan as JSON`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runPlan(c.Context(), args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.limit, "limit", opts.limit, "options to display")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the full plan as JSON to a file ('-' for stdout)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the plan cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the plan cache")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse options interactively")
	cmd.Flags().BoolVar(&opts.bill, "bill", false, "split the best option's costs between participants")

	return cmd
}

func runPlan(ctx context.Context, path string, opts planOpts) error {
	logger := loggerFromContext(ctx)

	trip, err := tripfile.Load(path)
	if err != nil {
		return err
	}

	crossings := place.ChannelCrossings()
	if trip.Data.Crossings != "" {
		crossings, err = place.LoadCrossingTable(trip.Data.Crossings)
		if err != nil {
			return err
		}
	}

	roads, ferries, err := loadDatasets(trip, crossings)
	if err != nil {
		return err
	}

	constraints, err := trip.PlanConstraints()
	if err != nil {
		return err
	}

	planCache, err := openCache(opts.noCache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(planCache, logger)
	defer runner.Close()

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		Origin:      trip.Route.Origin,
		Destination: trip.Route.Destination,
		Crossings:   crossings,
		Roads:       roads,
		Ferries:     ferries,
		Constraints: constraints,
		Refresh:     opts.refresh,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Planned %s to %s", trip.Route.Origin, trip.Route.Destination))

	if opts.output != "" {
		if err := writePlanJSON(result, opts.output); err != nil {
			return err
		}
	}

	printPlanSummary(trip, result, opts.limit)

	if opts.interactive && len(result.Options) > 0 {
		model := NewOptionListModel(result.Options)
		if _, err := tea.NewProgram(model).Run(); err != nil {
			return err
		}
	}

	if opts.bill && len(result.Options) > 0 {
		return printBill(trip, result.Options[0])
	}
	return nil
}

// loadDatasets reads the road and ferry CSV files named by the trip,
// resolving towns against the crossing table and the trip endpoints.
func loadDatasets(trip *tripfile.TripFile, crossings place.CrossingTable) ([]dataset.RoadLeg, []dataset.FerryCrossing, error) {
	locs := append(crossings.Ports(), trip.Route.Origin, trip.Route.Destination)
	gaz := dataset.NewGazetteer(locs...)

	rf, err := os.Open(trip.Data.Roads)
	if err != nil {
		return nil, nil, err
	}
	defer rf.Close()
	roads, err := dataset.ParseRoads(rf, gaz)
	if err != nil {
		return nil, nil, err
	}

	ff, err := os.Open(trip.Data.Ferries)
	if err != nil {
		return nil, nil, err
	}
	defer ff.Close()
	ferries, err := dataset.ParseFerries(ff, gaz)
	if err != nil {
		return nil, nil, err
	}

	return roads, ferries, nil
}

func openCache(disabled bool) (cache.Cache, error) {
	if disabled {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	return cache.NewFileCache(dir)
}

func writePlanJSON(p *pipeline.Plan, path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	printFile(path)
	return nil
}

func printPlanSummary(trip *tripfile.TripFile, p *pipeline.Plan, limit int) {
	printNewline()
	fmt.Println(StyleTitle.Render(trip.Name))
	printKeyValue("route", fmt.Sprintf("%s %s %s", p.Origin, iconArrow, p.Destination))
	if len(p.Applied) > 0 {
		printKeyValue("filters", strings.Join(p.Applied, ", "))
	}
	printStats(p.Stats.GeneratedOptions, p.Stats.KeptOptions, p.Stats.CacheHit)
	printNewline()

	if len(p.Options) == 0 {
		printWarning("No options satisfy the constraints")
		return
	}

	shown := len(p.Options)
	if limit > 0 && shown > limit {
		shown = limit
	}
	for i := 0; i < shown; i++ {
		opt := p.Options[i]
		fmt.Printf("%s %s\n",
			StyleHighlight.Render(fmt.Sprintf("%2d.", i+1)),
			describeOption(opt))
	}
	if shown < len(p.Options) {
		printDetail("… and %d more", len(p.Options)-shown)
	}
}

// describeOption renders a one-line option summary: cost, outward route
// and arrival.
func describeOption(opt plan.Option) string {
	arrival := "unscheduled"
	if opt.Arrival != nil {
		arrival = opt.Arrival.Format("Mon 02 Jan 15:04")
	}
	return fmt.Sprintf("£%.2f  %s  %s",
		opt.Cost,
		routeSummary(opt.Outward),
		StyleDim.Render("arrives "+arrival))
}

// routeSummary joins an itinerary's towns with arrows.
func routeSummary(itin travel.Itinerary) string {
	towns := make([]string, len(itin.Waypoints))
	for i, wp := range itin.Waypoints {
		towns[i] = wp.Loc.Town
	}
	return strings.Join(towns, " "+iconArrow+" ")
}

// printBill splits the best option's costs between the trip's
// participants using the trip's vehicle for fuel estimates.
func printBill(trip *tripfile.TripFile, opt plan.Option) error {
	if trip.Vehicle == nil {
		printWarning("Trip has no vehicle; cannot estimate fuel")
		return nil
	}
	people := trip.Participants()
	if len(people) == 0 {
		printWarning("Trip has no participants; nothing to split")
		return nil
	}

	for _, leg := range []struct {
		name string
		itin travel.Itinerary
	}{
		{"outward", opt.Outward},
		{"return", opt.Return},
	} {
		t, err := ledger.FromItinerary(leg.name, trip.Vehicle, people, leg.itin)
		if err != nil {
			return err
		}
		if err := t.AssignFuelCosts(money.Pounds(0)); err != nil {
			return err
		}
	}

	printNewline()
	fmt.Println(StyleTitle.Render("Cost split"))
	for _, p := range people {
		bill, err := p.FormatBill(money.Rates{})
		if err != nil {
			return err
		}
		fmt.Println(bill)
		printNewline()
	}
	return nil
}
