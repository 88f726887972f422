// Package pricing computes deterministic totals for an order being
// composed or displayed. Internal arithmetic stays in floating point;
// user-facing amounts are formatted to exactly two decimals at display
// time. Currency conversion and tax are out of scope.
package pricing

import (
	"fmt"

	"github.com/washbook/washbook-api/models"
)

// LineTotal returns quantity * unit cost for a single service line
func LineTotal(line models.ServiceLine) float64 {
	return float64(line.Quantity) * line.UnitCost
}

// OrderTotal sums the line totals. An empty line list yields 0; form
// validation rejects zero-line orders before they reach submission.
func OrderTotal(lines []models.ServiceLine) float64 {
	var total float64
	for _, line := range lines {
		total += LineTotal(line)
	}
	return total
}

// FormatAmount renders an amount with exactly two decimal places
func FormatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// NewLine returns a service line with safe defaults: quantity 1, unit
// cost 0 and the first enum value for each type.
func NewLine() models.ServiceLine {
	return models.ServiceLine{
		ServiceType: models.ServiceTypes[0],
		ClothType:   models.ClothTypes[0],
		Quantity:    1,
		UnitCost:    0,
	}
}

// AddLine appends a defaulted line, returning a fresh slice
func AddLine(lines []models.ServiceLine) []models.ServiceLine {
	out := make([]models.ServiceLine, 0, len(lines)+1)
	out = append(out, lines...)
	return append(out, NewLine())
}

// RemoveLine removes the line at index, preserving the relative order of
// the remaining lines. An out-of-range index returns the slice unchanged.
func RemoveLine(lines []models.ServiceLine, index int) []models.ServiceLine {
	if index < 0 || index >= len(lines) {
		return lines
	}
	out := make([]models.ServiceLine, 0, len(lines)-1)
	out = append(out, lines[:index]...)
	return append(out, lines[index+1:]...)
}

// UpdateLine applies update to the line at index and returns a fresh
// slice; no line is mutated in place, so change detection by reference in
// the UI layer stays reliable. The line's total cost is recomputed after
// the update so it can never drift from quantity and unit cost.
func UpdateLine(lines []models.ServiceLine, index int, update func(models.ServiceLine) models.ServiceLine) []models.ServiceLine {
	if index < 0 || index >= len(lines) || update == nil {
		return lines
	}
	out := make([]models.ServiceLine, len(lines))
	copy(out, lines)
	line := update(out[index])
	line.TotalCost = LineTotal(line)
	out[index] = line
	return out
}

// Recalculate returns a copy of the lines with every total cost
// recomputed from quantity and unit cost. Persisted totals are always
// derived this way, never trusted from the client.
func Recalculate(lines []models.ServiceLine) []models.ServiceLine {
	out := make([]models.ServiceLine, len(lines))
	for i, line := range lines {
		line.TotalCost = LineTotal(line)
		out[i] = line
	}
	return out
}
