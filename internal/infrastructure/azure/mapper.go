package azure

import (
	"math"
	"regexp"
	"time"

	"github.com/floriangamillscheg/ReceiptOCRAzure/internal/domain"
)

// Field names of the prebuilt receipt model read by the mapper
const (
	fieldReceiptType     = "ReceiptType"
	fieldCountryRegion   = "CountryRegion"
	fieldTransactionDate = "TransactionDate"
	fieldTransactionTime = "TransactionTime"
	fieldDepartureDate   = "DepartureDate"
	fieldTotal           = "Total"
	fieldTip             = "Tip"
	fieldTaxDetails      = "TaxDetails"
	fieldMerchantTaxID   = "MerchantTaxId"
)

// vatPattern matches EU VAT identification numbers (e.g. ATU12345678)
var vatPattern = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{8,12}`)

// Extraction is the reshaped receipt plus the per-field metadata the
// validation rules and version profiles need.
type Extraction struct {
	Receipt domain.Receipt
	Taxes   []domain.TaxDetail // nil when the document carries no TaxDetails

	TotalConfidence float64
	DateConfidence  float64

	// DepartureDate is the fallback transaction date for hotel receipts
	DepartureDate     *string
	DepartureDateConf float64

	UID string
}

// ExtractReceipt reshapes one analyzed document into the simplified receipt
// payload. All lookups are null-safe; absent fields become nulls.
func ExtractReceipt(doc *domain.AnalyzedDocument, filename string) *Extraction {
	dateField := doc.GetField(fieldTransactionDate)
	totalField := doc.GetField(fieldTotal)
	departureField := doc.GetField(fieldDepartureDate)

	ext := &Extraction{
		Taxes:             MapTaxDetails(doc.GetField(fieldTaxDetails)),
		TotalConfidence:   totalField.ConfidenceOrZero(),
		DateConfidence:    dateField.ConfidenceOrZero(),
		DepartureDate:     formatDate(departureField),
		DepartureDateConf: departureField.ConfidenceOrZero(),
		UID:               FormatVATNumber(doc.GetField(fieldMerchantTaxID)),
	}

	ext.Receipt = domain.Receipt{
		Filename:    filename,
		Confidence:  AverageConfidence(doc),
		Country:     countryValue(doc.GetField(fieldCountryRegion)),
		Date:        formatDate(dateField),
		Time:        timeValue(doc.GetField(fieldTransactionTime)),
		Type:        receiptType(doc.GetField(fieldReceiptType)),
		BruttoTotal: totalField.CurrencyAmount(),
		Tip:         doc.GetField(fieldTip).CurrencyAmount(),
	}

	return ext
}

// MapTaxDetails converts the TaxDetails array into the per-rate breakdown.
// The fractional rate is converted to a percentage and the gross amount is
// derived from net plus tax when both are present. Returns nil when the
// field is absent or empty.
func MapTaxDetails(field *domain.Field) []domain.TaxDetail {
	if field == nil || len(field.ValueArray) == 0 {
		return nil
	}

	taxes := make([]domain.TaxDetail, 0, len(field.ValueArray))
	for _, entry := range field.ValueArray {
		obj := entry.ValueObject

		detail := domain.TaxDetail{}

		if rateField, ok := obj["Rate"]; ok && rateField.ValueNumber != nil {
			rate := *rateField.ValueNumber * 100
			detail.Rate = &rate
		}
		if netField, ok := obj["NetAmount"]; ok {
			detail.Netto = netField.CurrencyAmount()
		}
		if taxField, ok := obj["Amount"]; ok {
			detail.TaxAmount = taxField.CurrencyAmount()
			detail.Currency = taxField.CurrencyCode()
		}
		if detail.Netto != nil && detail.TaxAmount != nil {
			brutto := round2(*detail.Netto + *detail.TaxAmount)
			detail.Brutto = &brutto
		}

		taxes = append(taxes, detail)
	}

	return taxes
}

// AverageConfidence computes the mean confidence over all fields that carry
// one, rounded to 4 decimals. Documents without fields score 0.
func AverageConfidence(doc *domain.AnalyzedDocument) float64 {
	if doc == nil || len(doc.Fields) == 0 {
		return 0
	}

	var sum float64
	var count int
	for _, field := range doc.Fields {
		if field.Confidence != nil {
			sum += *field.Confidence
			count++
		}
	}

	if count == 0 {
		return 0
	}

	return round4(sum / float64(count))
}

// FormatVATNumber validates a recognized VAT/UID number. Values below 0.7
// confidence are treated as not found; values that do not look like an EU
// VAT id are flagged as invalid.
func FormatVATNumber(field *domain.Field) string {
	if field != nil && field.ConfidenceOrZero() > 0.7 {
		if field.ValueString != "" {
			if vatPattern.MatchString(field.ValueString) {
				return field.ValueString
			}
			return "UID format invalid"
		}
	}
	return "UID not found"
}

// formatDate reformats the wire date (YYYY-MM-DD) into the legacy DD-MM-YYYY
// contract. Unparseable dates are treated as absent.
func formatDate(field *domain.Field) *string {
	if field == nil || field.ValueDate == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", field.ValueDate)
	if err != nil {
		return nil
	}
	formatted := parsed.Format("02-01-2006")
	return &formatted
}

func timeValue(field *domain.Field) *string {
	if field == nil || field.ValueTime == "" {
		return nil
	}
	value := field.ValueTime
	return &value
}

func countryValue(field *domain.Field) *string {
	if field == nil || field.ValueCountryRegion == "" {
		return nil
	}
	value := field.ValueCountryRegion
	return &value
}

func receiptType(field *domain.Field) *string {
	if field == nil || field.ValueString == "" {
		return nil
	}
	value := field.ValueString
	return &value
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
