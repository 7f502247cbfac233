// Package compute holds the pricing formulas shared by the section editor
// path and the document renderer. Everything here is a pure function of its
// inputs: both paths must agree on every total, so there is exactly one
// implementation of each formula.
package compute

import (
	"math"

	"github.com/wudworks/fitquote/internal/models"
)

// Round2 rounds to two decimal places. Applied at totals and display
// boundaries only, never to intermediate products, so rounding error does
// not compound across aggregation levels.
func Round2(v float64) float64 {
	return math.Round(safe(v)*100) / 100
}

// Area computes nos * width * length for a squareNet item.
func Area(nos, width, length float64) float64 {
	return safe(nos) * safe(width) * safe(length)
}

// LineTotal returns the priced total of one work item. For squareNet items
// it is area * pricePerSqFt rounded to two decimals; description items carry
// their price directly.
func LineTotal(it models.WorkItem) float64 {
	if it.Variant == models.SectionTypeDescription {
		return safe(it.Price.Float())
	}
	area := Area(it.Nos.Float(), it.Width.Float(), it.Length.Float())
	return Round2(area * safe(it.PricePerSqFt.Float()))
}

// SectionTotal sums the line totals of a section's items. Item order does
// not affect the result.
func SectionTotal(sec models.Section) float64 {
	var sum float64
	for _, it := range sec.Items {
		sum += LineTotal(it)
	}
	return Round2(sum)
}

// PackageTotal sums section totals across the package.
func PackageTotal(sections []models.Section) float64 {
	var sum float64
	for _, sec := range sections {
		sum += SectionTotal(sec)
	}
	return Round2(sum)
}

// PackageArea sums the derived sqFt of every squareNet item in the package.
func PackageArea(sections []models.Section) float64 {
	var sum float64
	for _, sec := range sections {
		if sec.Type != models.SectionTypeSquareNet {
			continue
		}
		for _, it := range sec.Items {
			sum += Area(it.Nos.Float(), it.Width.Float(), it.Length.Float())
		}
	}
	return Round2(sum)
}

// Recalculate rewrites the derived fields (sqFt, total) of every squareNet
// item in place and returns the section total. Description items have no
// derived fields and pass through untouched.
func Recalculate(sec *models.Section) float64 {
	sec.Normalize()
	for i := range sec.Items {
		it := &sec.Items[i]
		if it.Variant != models.SectionTypeSquareNet {
			continue
		}
		area := Area(it.Nos.Float(), it.Width.Float(), it.Length.Float())
		it.SqFt = models.Number(area)
		it.Total = models.Number(Round2(area * safe(it.PricePerSqFt.Float())))
	}
	return SectionTotal(*sec)
}

// safe maps NaN and infinities to zero so a malformed input degrades to a
// zero contribution instead of poisoning every aggregate above it.
func safe(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
