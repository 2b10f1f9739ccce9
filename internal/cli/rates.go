package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/corriander/channelhop/pkg/money"
)

// ratesOpts holds the command-line flags for the rates command.
type ratesOpts struct {
	refresh bool // bypass the cached snapshot
	base    string
}

// newRatesCmd creates the rates command.
func newRatesCmd() *cobra.Command {
	opts := ratesOpts{base: money.GBP}

	cmd := &cobra.Command{
		Use:   "rates [currency...]",
		Short: "Show ECB exchange rates",
		Long: `Show exchange rates from the European Central Bank daily feed.

Without arguments all known currencies are listed. Rates are cached for
a day; --refresh forces a fetch.

Examples:
  channelhop rates
  channelhop rates EUR USD
  channelhop rates --base EUR`,
		RunE: func(c *cobra.Command, args []string) error {
			return runRates(c.Context(), args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cached snapshot")
	cmd.Flags().StringVar(&opts.base, "base", opts.base, "base currency")

	return cmd
}

func runRates(ctx context.Context, currencies []string, opts ratesOpts) error {
	planCache, err := openCache(false)
	if err != nil {
		return err
	}
	defer planCache.Close()

	spin := newSpinner(ctx, "Fetching exchange rates")
	spin.Start()
	rates, err := money.NewRatesClient(planCache).Rates(ctx, opts.refresh)
	spin.Stop()
	if err != nil {
		return err
	}

	if len(currencies) == 0 {
		currencies = rates.Currencies()
		sort.Strings(currencies)
	}

	fmt.Println(StyleTitle.Render("ECB reference rates") + " " + StyleDim.Render(rates.Date))

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("CURRENCY", fmt.Sprintf("PER 1 %s", opts.base))
	for _, code := range currencies {
		if code == opts.base {
			continue
		}
		amt, err := rates.Convert(money.Amount{Value: 1, Currency: opts.base}, code)
		if err != nil {
			printWarning("%s: %v", code, err)
			continue
		}
		t.Row(code, fmt.Sprintf("%.4f", amt.Value))
	}
	fmt.Println(t.Render())
	return nil
}
