package services

import (
	"fmt"

	"github.com/scout-hq/scout-system/models"
)

// ComputeTotalCents returns the registration fee plus the line totals of every
// selected optional item. All arithmetic stays in integer cents so repeated
// recomputation cannot drift; dollars exist only at presentation boundaries.
func ComputeTotalCents(feeCents int64, items []models.OptionalItem, quantities map[int]int) int64 {
	total := feeCents
	for _, item := range items {
		qty := quantities[item.ID]
		if qty <= 0 {
			continue
		}
		total += item.PriceCents * int64(qty)
	}
	return total
}

// FormatCents renders cents as a two-decimal dollar string, e.g. 4500 -> "45.00".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
