package usecase

// Profile selects the behavior of one endpoint iteration. The three versions
// share the extraction core and differ only in error formatting, warning
// fallbacks and tax reconciliation.
type Profile struct {
	Version int

	// StructuredErrors switches validation failures from the legacy single
	// detail string to a structured problem list.
	StructuredErrors bool

	// FallbackDepartureDate substitutes the departure date (hotel receipts)
	// when the transaction date is absent, with a warning.
	FallbackDepartureDate bool

	// ReconcileTaxRates enables the tax-rate reconciliation heuristics.
	ReconcileTaxRates bool

	// IncludeUID adds the formatted merchant VAT/UID number to the payload.
	IncludeUID bool

	// LegacyTaxFallback replaces an absent tax breakdown with the literal
	// "No tax information found" string instead of an empty list.
	LegacyTaxFallback bool
}

var (
	// ProfileV1 is the original strict endpoint
	ProfileV1 = Profile{
		Version:           1,
		LegacyTaxFallback: true,
	}

	// ProfileV2 adds warnings and the departure-date fallback
	ProfileV2 = Profile{
		Version:               2,
		StructuredErrors:      true,
		FallbackDepartureDate: true,
	}

	// ProfileV3 adds tax reconciliation and the UID field on top of v2
	ProfileV3 = Profile{
		Version:               3,
		StructuredErrors:      true,
		FallbackDepartureDate: true,
		ReconcileTaxRates:     true,
		IncludeUID:            true,
	}
)
