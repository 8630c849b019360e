// README: Fleet filter pipeline, no-match suggestions and category derivation.
package fleet

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// seatingOrMore is the selector that matches any car with at least that many seats.
const seatingOrMore = 7

const maxSuggestions = 3

// FilterFleet returns the vehicles matching every active predicate in c, in
// their original order. It never modifies vehicles.
func FilterFleet(vehicles []Vehicle, c FilterCriteria) ([]Vehicle, error) {
	seats, err := c.seating()
	if err != nil {
		return nil, err
	}
	if c.MinPrice < 0 || c.MaxPrice < 0 || c.MinPrice > c.MaxPrice {
		return nil, fmt.Errorf("%w: price [%v, %v]", ErrInvalidRange, c.MinPrice, c.MaxPrice)
	}

	query := fold(c.Query)
	out := make([]Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if query != "" && !matchesQuery(v, query) {
			continue
		}
		if active(c.Category) && v.Category != c.Category {
			continue
		}
		if active(c.FuelType) && string(v.FuelType) != c.FuelType {
			continue
		}
		if active(c.Transmission) && string(v.Transmission) != c.Transmission {
			continue
		}
		if seats > 0 && !matchesSeating(v, seats) {
			continue
		}
		if v.PricePerDay < c.MinPrice || v.PricePerDay > c.MaxPrice {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// seating parses the selector; 0 means no seating filter.
func (c FilterCriteria) seating() (int, error) {
	if !active(c.Seating) {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(c.Seating))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: seating %q", ErrInvalidRange, c.Seating)
	}
	return n, nil
}

func active(selector string) bool {
	return selector != "" && selector != All
}

func matchesSeating(v Vehicle, seats int) bool {
	if v.SeatingCapacity == nil {
		return false
	}
	if seats == seatingOrMore {
		return *v.SeatingCapacity >= seatingOrMore
	}
	return *v.SeatingCapacity == seats
}

func matchesQuery(v Vehicle, query string) bool {
	for _, field := range []string{v.Name, v.Brand, v.Model, string(v.FuelType), string(v.Transmission)} {
		if field != "" && strings.Contains(fold(field), query) {
			return true
		}
	}
	return false
}

// fold lowercases without full case folding, so "ss" does not match "ß".
func fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// categoryKeywords maps model names people search for to the category offered
// instead when that model is not in the fleet. Checked in order.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"SUV", []string{"fortuner", "xuv", "creta"}},
	{"Sedan", []string{"city", "verna"}},
	{"Hatchback", []string{"swift", "baleno"}},
}

const defaultSuggestedCategory = "SUV"

// InferCategory guesses the category a failed search was after.
func InferCategory(query string) string {
	q := strings.ToLower(query)
	for _, rule := range categoryKeywords {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				return rule.category
			}
		}
	}
	return defaultSuggestedCategory
}

// SuggestAlternatives returns up to three available vehicles from the category
// InferCategory picks for failedQuery, in input order.
func SuggestAlternatives(vehicles []Vehicle, failedQuery string) []Vehicle {
	category := InferCategory(failedQuery)
	out := make([]Vehicle, 0, maxSuggestions)
	for _, v := range vehicles {
		if len(out) == maxSuggestions {
			break
		}
		if v.Available && v.Category == category {
			out = append(out, v)
		}
	}
	return out
}

// Categories lists All followed by each category present in vehicles, in order
// of first appearance.
func Categories(vehicles []Vehicle) []string {
	out := []string{All}
	seen := make(map[string]bool)
	for _, v := range vehicles {
		if seen[v.Category] {
			continue
		}
		seen[v.Category] = true
		out = append(out, v.Category)
	}
	return out
}
