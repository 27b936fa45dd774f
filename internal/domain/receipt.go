package domain

import "time"

// Receipt is the simplified payload returned to clients after a receipt
// document has been analyzed and reshaped. Field names follow the legacy
// JSON contract consumed by the expense tooling downstream.
type Receipt struct {
	Filename    string      `json:"Filename"`
	Confidence  float64     `json:"Confidence"` // average field confidence 0-1, 4 decimals
	Country     *string     `json:"Country"`
	Date        *string     `json:"Date"` // DD-MM-YYYY
	Time        *string     `json:"Time"` // HH:MM:SS
	Type        *string     `json:"Type"`
	BruttoTotal *float64    `json:"BruttoTotal"`
	Tip         *float64    `json:"Tip"`
	UID         string      `json:"UID,omitempty"`
	Taxes       interface{} `json:"Taxes"` // []TaxDetail, or a legacy fallback string on v1
	Warnings    []string    `json:"Warnings,omitempty"`
}

// TaxDetail is one entry of the per-rate tax breakdown.
type TaxDetail struct {
	Rate      *float64 `json:"Rate"` // percentage, e.g. 20 for 20%
	Netto     *float64 `json:"Netto"`
	TaxAmount *float64 `json:"TaxAmount"`
	Brutto    *float64 `json:"Brutto"` // Netto + TaxAmount, rounded to cents
	Currency  *string  `json:"Currency"`
}

// Upload carries a received receipt document through the processing pipeline.
type Upload struct {
	Filename    string
	ContentType string // as declared by the client
	Data        []byte
}

// HistoryEntry is a processed receipt as persisted in the history store.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Digest    string    `json:"digest"` // sha256 of the uploaded document
	CreatedAt time.Time `json:"createdAt"`
	Receipt   *Receipt  `json:"receipt"`
}
