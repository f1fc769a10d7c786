package bookings

import (
	"fmt"
	"sort"

	"bookingsdash/internal/errors"
)

// ApplyPeriodFixups drops the brands a period reports elsewhere
func ApplyPeriodFixups(layout PeriodLayout, rows []NormalizedRow) []NormalizedRow {
	if len(layout.ExcludedBrands) == 0 {
		return rows
	}
	excluded := make(map[string]bool, len(layout.ExcludedBrands))
	for _, b := range layout.ExcludedBrands {
		excluded[b] = true
	}

	out := make([]NormalizedRow, 0, len(rows))
	for _, row := range rows {
		if !excluded[row.Brand] {
			out = append(out, row)
		}
	}
	return out
}

type groupKey struct {
	brand    string
	category Category
}

// Aggregate sums figures per (brand, category) and returns the groups
// sorted by brand, then category.
func Aggregate(rows []NormalizedRow) []NormalizedRow {
	sums := make(map[groupKey]Figures)
	for _, row := range rows {
		k := groupKey{row.Brand, row.Category}
		sums[k] = sums[k].Add(row.Figures)
	}

	keys := make([]groupKey, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].brand != keys[j].brand {
			return keys[i].brand < keys[j].brand
		}
		return keys[i].category < keys[j].category
	})

	out := make([]NormalizedRow, len(keys))
	for i, k := range keys {
		out[i] = NormalizedRow{Brand: k.brand, Category: k.category, Figures: sums[k]}
	}
	return out
}

// Validate checks that every brand has exactly one row per category.
func Validate(rows []NormalizedRow) error {
	seen := make(map[string]map[Category]int)
	for _, row := range rows {
		if row.Category.index() < 0 {
			return errors.InvalidInput(fmt.Sprintf("brand %q has unknown category %q", row.Brand, row.Category))
		}
		if seen[row.Brand] == nil {
			seen[row.Brand] = make(map[Category]int, categoryCount)
		}
		seen[row.Brand][row.Category]++
	}

	for brand, counts := range seen {
		for _, c := range Categories {
			switch n := counts[c]; {
			case n == 0:
				return errors.InvalidInput(fmt.Sprintf("brand %q is missing category %s", brand, c))
			case n > 1:
				return errors.InvalidInput(fmt.Sprintf("brand %q has %d rows for category %s", brand, n, c))
			}
		}
	}
	return nil
}
