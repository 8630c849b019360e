// README: Root cobra command and shared output helpers.
package main

import (
	"math"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rootCmd = &cobra.Command{
	Use:          "carrentalctl",
	Short:        "Rental desk tools: quote a trip, filter a fleet file, smoke-check a deployment",
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// rupees formats whole rupees with digit grouping.
func rupees(amount int64) string {
	return message.NewPrinter(language.English).Sprintf("₹%d", amount)
}

// rupeeRate keeps the paise of a fractional daily rate.
func rupeeRate(rate float64) string {
	if rate == math.Trunc(rate) {
		return rupees(int64(rate))
	}
	return message.NewPrinter(language.English).Sprintf("₹%.2f", rate)
}
