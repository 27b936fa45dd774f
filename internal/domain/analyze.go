package domain

// Wire types for the Azure Document Intelligence REST API. Only the parts of
// the analyze response the service actually reads are modeled; everything
// else is ignored during decoding.

// AnalyzeOperation is the polling envelope returned by the analyzeResults
// endpoint while an analysis is in flight.
type AnalyzeOperation struct {
	Status        string         `json:"status"` // notStarted, running, succeeded, failed
	AnalyzeResult *AnalyzeResult `json:"analyzeResult,omitempty"`
	Error         *APIError      `json:"error,omitempty"`
}

// APIError is the error payload of a failed analyze operation.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AnalyzeResult is the completed analysis of one uploaded document.
type AnalyzeResult struct {
	APIVersion string             `json:"apiVersion,omitempty"`
	ModelID    string             `json:"modelId,omitempty"`
	Content    string             `json:"content,omitempty"`
	Documents  []AnalyzedDocument `json:"documents,omitempty"`
}

// AnalyzedDocument is a single recognized document (one receipt) with its
// extracted fields.
type AnalyzedDocument struct {
	DocType    string           `json:"docType,omitempty"`
	Fields     map[string]Field `json:"fields,omitempty"`
	Confidence float64          `json:"confidence,omitempty"`
}

// Field is a polymorphic document field. Exactly one of the Value* members
// is populated depending on Type; absent members stay at their zero value so
// lookups are null-safe.
type Field struct {
	Type               string           `json:"type,omitempty"`
	ValueString        string           `json:"valueString,omitempty"`
	ValueNumber        *float64         `json:"valueNumber,omitempty"`
	ValueDate          string           `json:"valueDate,omitempty"` // YYYY-MM-DD
	ValueTime          string           `json:"valueTime,omitempty"` // HH:MM:SS
	ValueCountryRegion string           `json:"valueCountryRegion,omitempty"`
	ValueCurrency      *CurrencyValue   `json:"valueCurrency,omitempty"`
	ValueArray         []Field          `json:"valueArray,omitempty"`
	ValueObject        map[string]Field `json:"valueObject,omitempty"`
	Content            string           `json:"content,omitempty"`
	Confidence         *float64         `json:"confidence,omitempty"`
}

// CurrencyValue is a currency-typed field value.
type CurrencyValue struct {
	Amount       *float64 `json:"amount,omitempty"`
	CurrencyCode string   `json:"currencyCode,omitempty"`
}

// GetField returns the named field of the document, or nil when absent.
func (d *AnalyzedDocument) GetField(name string) *Field {
	if d == nil || d.Fields == nil {
		return nil
	}
	f, ok := d.Fields[name]
	if !ok {
		return nil
	}
	return &f
}

// CurrencyAmount returns the currency amount of the field, or nil when the
// field or its currency value is absent.
func (f *Field) CurrencyAmount() *float64 {
	if f == nil || f.ValueCurrency == nil {
		return nil
	}
	return f.ValueCurrency.Amount
}

// CurrencyCode returns the currency code of the field, or nil when absent.
func (f *Field) CurrencyCode() *string {
	if f == nil || f.ValueCurrency == nil || f.ValueCurrency.CurrencyCode == "" {
		return nil
	}
	code := f.ValueCurrency.CurrencyCode
	return &code
}

// ConfidenceOrZero returns the field confidence, treating absent fields or
// confidences as 0.
func (f *Field) ConfidenceOrZero() float64 {
	if f == nil || f.Confidence == nil {
		return 0
	}
	return *f.Confidence
}
