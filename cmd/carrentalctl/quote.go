// README: quote subcommand; prices a rental from flags.
package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"carrental/internal/modules/pricing"
)

type quoteFlags struct {
	price    float64
	duration int
	unit     string
	distance float64
	driver   bool
	addOns   []string
	asJSON   bool
}

var qf quoteFlags

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Print the price breakdown for a rental",
	Example: `  carrentalctl quote --price 1500 --duration 2 --unit weeks --distance 1800 --driver --addon gps --addon insurance
  carrentalctl quote --price 1000 --duration 10 --json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runQuote(cmd.OutOrStdout(), qf)
	},
}

func init() {
	f := quoteCmd.Flags()
	f.Float64Var(&qf.price, "price", 0, "base price per day in rupees")
	f.IntVar(&qf.duration, "duration", 1, "rental length in --unit")
	f.StringVar(&qf.unit, "unit", string(pricing.UnitDays), "duration unit: days, weeks or months")
	f.Float64Var(&qf.distance, "distance", 0, "expected distance in km")
	f.BoolVar(&qf.driver, "driver", false, "include a driver")
	f.StringArrayVar(&qf.addOns, "addon", nil, "add-on id, repeatable")
	f.BoolVar(&qf.asJSON, "json", false, "print the breakdown as JSON")
	_ = quoteCmd.MarkFlagRequired("price")
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(w io.Writer, f quoteFlags) error {
	b, err := pricing.ComputeQuote(f.price, pricing.QuoteOptions{
		Duration:      f.duration,
		Unit:          pricing.DurationUnit(f.unit),
		DistanceKm:    f.distance,
		IncludeDriver: f.driver,
		AddOns:        f.addOns,
	})
	if err != nil {
		return err
	}
	if f.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	}

	fmt.Fprintf(w, "Base (%d days x %s)\t%s\n", b.TotalDays, rupeeRate(b.BasePricePerDay), rupees(b.BaseSubtotal))
	if b.DiscountAmount > 0 {
		fmt.Fprintf(w, "%s\t-%s\n", b.DiscountLabel, rupees(b.DiscountAmount))
	}
	if b.DistanceSurcharge > 0 {
		fmt.Fprintf(w, "Extra distance (%.0f km)\t%s\n", b.ExcessDistanceKm, rupees(b.DistanceSurcharge))
	}
	if b.DriverSurcharge > 0 {
		fmt.Fprintf(w, "Driver\t%s\n", rupees(b.DriverSurcharge))
	}
	for _, a := range b.AddOns {
		fmt.Fprintf(w, "%s\t%s\n", a.Name, rupees(a.Price))
	}
	fmt.Fprintf(w, "Total\t%s\n", rupees(b.GrandTotal))
	return nil
}
