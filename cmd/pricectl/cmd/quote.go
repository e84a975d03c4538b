package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"trykkeri-admin/pricing"
)

var (
	quoteAnchors []string
	quoteAt      []int
	quoteMaster  float64
	quoteRound   int
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Interpolate prices from anchors given on the command line",
	Long: `Quote previews the curve between anchors without touching the database.

Anchors are quantity=price, optionally with a local markup: quantity=price@markup.
Prices accept a decimal comma.

Example:
  pricectl quote --anchor 100=45 --anchor 500=40@10 --at 250 --at 1000 --master 20 --round 5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(quoteAnchors) == 0 {
			return fmt.Errorf("at least one --anchor is required")
		}
		anchors := make([]pricing.Anchor, 0, len(quoteAnchors))
		for _, raw := range quoteAnchors {
			a, err := parseAnchor(raw)
			if err != nil {
				return err
			}
			anchors = append(anchors, a)
		}
		unit, err := pricing.ParseRoundingUnit(quoteRound)
		if err != nil {
			return err
		}

		targets := quoteAt
		if len(targets) == 0 {
			for _, a := range anchors {
				targets = append(targets, a.Quantity)
			}
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "Quantity\tBase\tFinal\t")
		for _, q := range targets {
			base := pricing.Interpolate(q, anchors)
			final := pricing.FinalPrice(base, 0, 0, quoteMaster, unit)
			fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t\n", q, base, final)
		}
		return tw.Flush()
	},
}

// parseAnchor reads quantity=price[@markup]
func parseAnchor(raw string) (pricing.Anchor, error) {
	qty, rest, ok := strings.Cut(strings.TrimSpace(raw), "=")
	if !ok {
		return pricing.Anchor{}, fmt.Errorf("invalid anchor %q: expected quantity=price", raw)
	}
	q, err := strconv.Atoi(strings.TrimSpace(qty))
	if err != nil || q <= 0 {
		return pricing.Anchor{}, fmt.Errorf("invalid anchor %q: quantity must be a positive integer", raw)
	}
	price, markup, hasMarkup := strings.Cut(rest, "@")
	p, err := pricing.ParseNumber(price)
	if err != nil {
		return pricing.Anchor{}, fmt.Errorf("invalid anchor %q: %w", raw, err)
	}
	a := pricing.Anchor{Quantity: q, Price: p}
	if hasMarkup {
		m, err := pricing.ParseNumber(markup)
		if err != nil {
			return pricing.Anchor{}, fmt.Errorf("invalid anchor %q: %w", raw, err)
		}
		a.Markup = m
	}
	return a, nil
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().StringArrayVar(&quoteAnchors, "anchor", nil, "Anchor as quantity=price[@markup] (repeatable)")
	quoteCmd.Flags().IntSliceVar(&quoteAt, "at", nil, "Quantities to price (default: the anchor quantities)")
	quoteCmd.Flags().Float64Var(&quoteMaster, "master", 0, "Master markup in percent")
	quoteCmd.Flags().IntVar(&quoteRound, "round", 1, "Round final prices to 1, 5 or 10")
}
