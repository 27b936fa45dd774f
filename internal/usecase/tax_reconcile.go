package usecase

import (
	"fmt"
	"math"

	"github.com/floriangamillscheg/ReceiptOCRAzure/internal/domain"
)

// standardTaxRates are the VAT rates in use in the de/at locales the service
// processes receipts for
var standardTaxRates = []float64{0, 5, 7, 10, 13, 19, 20}

const (
	// rateSnapTolerance is the maximum distance (in percentage points) at
	// which a recognized rate is snapped to a standard rate
	rateSnapTolerance = 0.5

	// totalTolerance is the acceptable difference in currency units between
	// the summed tax breakdown and the receipt total
	totalTolerance = 0.05
)

// reconcileTaxes applies the v3 heuristics to the tax breakdown: derive a
// missing rate from the net and tax amounts, snap near-miss rates to the
// standard set, and compare the summed gross amounts against the receipt
// total. Returns the adjusted breakdown and the warnings produced.
func reconcileTaxes(taxes []domain.TaxDetail, total *float64) ([]domain.TaxDetail, []string) {
	if len(taxes) == 0 {
		return taxes, nil
	}

	out := make([]domain.TaxDetail, len(taxes))
	copy(out, taxes)

	var warnings []string

	for i := range out {
		detail := &out[i]

		if detail.Rate == nil {
			if detail.Netto != nil && detail.TaxAmount != nil && *detail.Netto > 0 {
				derived := round1(*detail.TaxAmount / *detail.Netto * 100)
				if snapped, ok := snapToStandardRate(derived); ok {
					derived = snapped
				}
				detail.Rate = &derived
				warnings = append(warnings, fmt.Sprintf("tax rate derived from amounts: %g%%", derived))
			}
			continue
		}

		if snapped, ok := snapToStandardRate(*detail.Rate); ok && snapped != *detail.Rate {
			warnings = append(warnings, fmt.Sprintf("tax rate %g%% adjusted to standard rate %g%%", *detail.Rate, snapped))
			detail.Rate = &snapped
		}
	}

	if warning := checkTotal(out, total); warning != "" {
		warnings = append(warnings, warning)
	}

	return out, warnings
}

// checkTotal compares the summed gross amounts against the receipt total.
// The check is skipped unless the total and every gross amount are known.
func checkTotal(taxes []domain.TaxDetail, total *float64) string {
	if total == nil {
		return ""
	}

	var sum float64
	for _, detail := range taxes {
		if detail.Brutto == nil {
			return ""
		}
		sum += *detail.Brutto
	}

	if math.Abs(sum-*total) > totalTolerance {
		return fmt.Sprintf("tax breakdown sums to %.2f but receipt total is %.2f", sum, *total)
	}
	return ""
}

// snapToStandardRate returns the closest standard rate when it is within
// tolerance of the given rate
func snapToStandardRate(rate float64) (float64, bool) {
	for _, standard := range standardTaxRates {
		if math.Abs(rate-standard) <= rateSnapTolerance {
			return standard, true
		}
	}
	return 0, false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
