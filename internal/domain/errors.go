package domain

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidDocument is returned when the uploaded file is not a readable image or PDF
	ErrInvalidDocument = errors.New("invalid document upload")

	// ErrNoReceiptFound is returned when the analysis recognized no receipt in the document
	ErrNoReceiptFound = errors.New("no receipt recognized in document")

	// ErrAzureAPIFailure is returned when the Document Intelligence request fails
	ErrAzureAPIFailure = errors.New("document intelligence request failed")

	// ErrAnalysisFailed is returned when the service reports a failed analysis
	ErrAnalysisFailed = errors.New("document analysis failed")

	// ErrAnalysisTimeout is returned when polling for the analysis result times out
	ErrAnalysisTimeout = errors.New("document analysis timed out")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrHistoryNotFound is returned when a history entry does not exist
	ErrHistoryNotFound = errors.New("receipt not found in history")
)

// ValidationError carries all acceptance problems found on an otherwise
// successfully analyzed receipt.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, ", ")
}
