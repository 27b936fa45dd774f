package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/floriangamillscheg/ReceiptOCRAzure/internal/domain"
	"github.com/floriangamillscheg/ReceiptOCRAzure/internal/infrastructure/azure"
)

// legacyNoTaxInfo is the v1 substitute for an absent tax breakdown
const legacyNoTaxInfo = "No tax information found"

// ReceiptServiceConfig holds configuration for the receipt service
type ReceiptServiceConfig struct {
	CacheTTL           time.Duration
	MinConfidence      float64 // average confidence threshold
	MinFieldConfidence float64 // per-field threshold for total and date
	MaxUploadBytes     int64
}

// ReceiptService orchestrates the processing pipeline: verify the upload,
// analyze it (through the cache), reshape the result, apply the version
// profile and run the acceptance rules.
type ReceiptService struct {
	client  domain.DocumentClient
	cache   domain.CacheRepository
	history domain.HistoryRepository // nil when history is disabled

	cacheTTL           time.Duration
	minConfidence      float64
	minFieldConfidence float64
	maxUploadBytes     int64
}

// NewReceiptService creates a new receipt service with dependencies
func NewReceiptService(
	client domain.DocumentClient,
	cache domain.CacheRepository,
	history domain.HistoryRepository,
	config ReceiptServiceConfig,
) *ReceiptService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}
	minConfidence := config.MinConfidence
	if minConfidence == 0 {
		minConfidence = 0.5
	}
	minFieldConfidence := config.MinFieldConfidence
	if minFieldConfidence == 0 {
		minFieldConfidence = minConfidence
	}
	maxUploadBytes := config.MaxUploadBytes
	if maxUploadBytes == 0 {
		maxUploadBytes = 20 << 20
	}

	return &ReceiptService{
		client:             client,
		cache:              cache,
		history:            history,
		cacheTTL:           cacheTTL,
		minConfidence:      minConfidence,
		minFieldConfidence: minFieldConfidence,
		maxUploadBytes:     maxUploadBytes,
	}
}

// Process runs one uploaded document through the pipeline.
// Flow: verify upload -> check cache -> analyze -> reshape -> validate -> record
func (s *ReceiptService) Process(ctx context.Context, upload *domain.Upload, profile Profile) (*domain.Receipt, error) {
	if upload == nil || len(upload.Data) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	contentType, err := CheckDocument(upload, s.maxUploadBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}

	digest := contentDigest(upload.Data)

	result, err := s.analyzeWithCache(ctx, upload.Data, contentType, digest)
	if err != nil {
		return nil, err
	}

	if len(result.Documents) == 0 {
		return nil, domain.ErrNoReceiptFound
	}

	// The legacy contract returns a single payload; additional recognized
	// documents on multi-receipt scans are ignored.
	ext := azure.ExtractReceipt(&result.Documents[0], upload.Filename)

	receipt := s.shapeReceipt(ext, profile)

	if err := s.validate(receipt, ext); err != nil {
		log.Printf("[receipts] validation failed for %s: %v", upload.Filename, err)
		return nil, err
	}

	s.recordHistory(ctx, digest, receipt)

	log.Printf("[receipts] processed %s (confidence %.4f)", upload.Filename, receipt.Confidence)
	return receipt, nil
}

// History returns up to limit processed receipts, newest first
func (s *ReceiptService) History(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	if s.history == nil {
		return []*domain.HistoryEntry{}, nil
	}
	return s.history.List(ctx, limit)
}

// HistoryEntry returns one processed receipt by id
func (s *ReceiptService) HistoryEntry(ctx context.Context, id string) (*domain.HistoryEntry, error) {
	if s.history == nil {
		return nil, domain.ErrHistoryNotFound
	}
	return s.history.Get(ctx, id)
}

// analyzeWithCache returns the cached analyze result for the digest, or calls
// the document client and caches the outcome.
func (s *ReceiptService) analyzeWithCache(ctx context.Context, content []byte, contentType, digest string) (*domain.AnalyzeResult, error) {
	cacheKey := "analyze:" + digest

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cached domain.AnalyzeResult
			if err := json.Unmarshal(data, &cached); err == nil {
				log.Printf("[receipts] cache hit for digest %s", digest[:12])
				return &cached, nil
			}
			// Corrupt entry; drop it and analyze again
			_ = s.cache.Delete(ctx, cacheKey)
		}
	}

	result, err := s.client.AnalyzeReceipt(ctx, content, contentType)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, s.cacheTTL); err != nil {
				log.Printf("[receipts] cache write failed: %v", err)
			}
		}
	}

	return result, nil
}

// shapeReceipt applies the version profile to the extraction: date fallback,
// tax shaping and reconciliation, UID, warnings.
func (s *ReceiptService) shapeReceipt(ext *azure.Extraction, profile Profile) *domain.Receipt {
	receipt := ext.Receipt
	var warnings []string

	if profile.FallbackDepartureDate && receipt.Date == nil && ext.DepartureDate != nil {
		receipt.Date = ext.DepartureDate
		ext.DateConfidence = ext.DepartureDateConf
		warnings = append(warnings, "transaction date not found; using departure date")
	}

	taxes := ext.Taxes
	if profile.ReconcileTaxRates && taxes != nil {
		reconciled, taxWarnings := reconcileTaxes(taxes, receipt.BruttoTotal)
		taxes = reconciled
		warnings = append(warnings, taxWarnings...)
	}

	switch {
	case taxes != nil:
		receipt.Taxes = taxes
	case profile.LegacyTaxFallback:
		receipt.Taxes = legacyNoTaxInfo
	default:
		receipt.Taxes = []domain.TaxDetail{}
		warnings = append(warnings, "no tax information found")
	}

	if profile.IncludeUID {
		receipt.UID = ext.UID
	}

	if profile.Version >= 2 {
		receipt.Warnings = warnings
	}

	return &receipt
}

// validate runs the acceptance rules against the shaped receipt. The rule
// ordering and messages follow the legacy contract: the average-confidence
// problem shadows the total checks, while the date checks report separately.
func (s *ReceiptService) validate(receipt *domain.Receipt, ext *azure.Extraction) error {
	var problems []string

	if receipt.Confidence < s.minConfidence {
		problems = append(problems, fmt.Sprintf("Average confidence is too low (%.2f < %g).", receipt.Confidence, s.minConfidence))
	} else if receipt.BruttoTotal == nil {
		problems = append(problems, "BruttoTotal is missing.")
	} else if ext.TotalConfidence < s.minFieldConfidence {
		problems = append(problems, fmt.Sprintf("BruttoTotal confidence is too low (%.2f < %g).", ext.TotalConfidence, s.minFieldConfidence))
	}

	if receipt.Date == nil {
		problems = append(problems, "Date is missing.")
	} else if ext.DateConfidence < s.minFieldConfidence {
		problems = append(problems, fmt.Sprintf("Date confidence is too low (%.2f < %g).", ext.DateConfidence, s.minFieldConfidence))
	}

	if len(problems) > 0 {
		return &domain.ValidationError{Problems: problems}
	}
	return nil
}

// recordHistory persists the accepted receipt; failures are logged, never
// surfaced to the client.
func (s *ReceiptService) recordHistory(ctx context.Context, digest string, receipt *domain.Receipt) {
	if s.history == nil {
		return
	}

	entry := &domain.HistoryEntry{
		Filename: receipt.Filename,
		Digest:   digest,
		Receipt:  receipt,
	}
	if err := s.history.Save(ctx, entry); err != nil {
		log.Printf("[receipts] history write failed: %v", err)
	}
}

// contentDigest returns the hex sha256 of the uploaded bytes
func contentDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
