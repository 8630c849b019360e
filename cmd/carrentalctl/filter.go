// README: filter subcommand; runs the fleet filter over a JSON file.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"carrental/internal/modules/fleet"
)

var (
	filterFile     string
	filterCriteria = fleet.FilterCriteria{MinPrice: 500, MaxPrice: 10000}
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter a JSON fleet file and print the matching cars",
	Long: `Reads a JSON array of cars and prints those matching the criteria.
When nothing matches a text search, cars from the category the query most
likely meant are suggested instead.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		raw, err := os.ReadFile(filterFile)
		if err != nil {
			return fmt.Errorf("read fleet file: %w", err)
		}
		var vehicles []fleet.Vehicle
		if err := json.Unmarshal(raw, &vehicles); err != nil {
			return fmt.Errorf("decode fleet file %s: %w", filterFile, err)
		}
		return runFilter(cmd.OutOrStdout(), vehicles, filterCriteria)
	},
}

func init() {
	f := filterCmd.Flags()
	f.StringVarP(&filterFile, "file", "f", "", "JSON file holding an array of cars")
	f.StringVarP(&filterCriteria.Query, "query", "q", "", "text matched against name, brand and model")
	f.StringVar(&filterCriteria.Category, "category", fleet.All, "category or All")
	f.StringVar(&filterCriteria.FuelType, "fuel", fleet.All, "fuel type or All")
	f.StringVar(&filterCriteria.Transmission, "transmission", fleet.All, "Manual, Automatic or All")
	f.StringVar(&filterCriteria.Seating, "seating", fleet.All, "seat count, 7 for seven and up, or All")
	f.Float64Var(&filterCriteria.MinPrice, "min-price", filterCriteria.MinPrice, "lowest daily price")
	f.Float64Var(&filterCriteria.MaxPrice, "max-price", filterCriteria.MaxPrice, "highest daily price")
	_ = filterCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(filterCmd)
}

func runFilter(w io.Writer, vehicles []fleet.Vehicle, c fleet.FilterCriteria) error {
	matches, err := fleet.FilterFleet(vehicles, c)
	if err != nil {
		return err
	}
	if len(matches) > 0 {
		printVehicles(w, matches)
		return nil
	}
	fmt.Fprintln(w, "No cars match.")
	if c.Query == "" {
		return nil
	}
	if alt := fleet.SuggestAlternatives(vehicles, c.Query); len(alt) > 0 {
		fmt.Fprintf(w, "You might like these %s cars:\n", fleet.InferCategory(c.Query))
		printVehicles(w, alt)
	}
	return nil
}

func printVehicles(w io.Writer, vehicles []fleet.Vehicle) {
	for _, v := range vehicles {
		fmt.Fprintf(w, "%s\t%s\t%s/day\n", v.Name, v.Category, rupees(int64(v.PricePerDay)))
	}
}
