package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/floriangamillscheg/ReceiptOCRAzure/internal/domain"
	"github.com/floriangamillscheg/ReceiptOCRAzure/internal/usecase"
	"github.com/gin-gonic/gin"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	service *usecase.ReceiptService
}

// NewHandler creates a new HTTP handler
func NewHandler(service *usecase.ReceiptService) *Handler {
	return &Handler{service: service}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "receipt-ocr-azure",
		"version": "1.0.0",
	})
}

// ProcessReceiptV1 handles POST /api/v1/receipts/process (legacy contract)
func (h *Handler) ProcessReceiptV1(c *gin.Context) {
	h.processReceipt(c, usecase.ProfileV1)
}

// ProcessReceiptV2 handles POST /api/v2/receipts/process
func (h *Handler) ProcessReceiptV2(c *gin.Context) {
	h.processReceipt(c, usecase.ProfileV2)
}

// ProcessReceiptV3 handles POST /api/v3/receipts/process
func (h *Handler) ProcessReceiptV3(c *gin.Context) {
	h.processReceipt(c, usecase.ProfileV3)
}

// processReceipt reads the multipart upload and runs it through the service
// with the version profile of the calling endpoint.
func (h *Handler) processReceipt(c *gin.Context, profile usecase.Profile) {
	if h.service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "receipt service not configured"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.sendError(c, profile, http.StatusBadRequest, "upload_missing", "No file provided. Upload a receipt under the 'file' form field.")
		return
	}
	defer file.Close()

	declared := header.Header.Get("Content-Type")
	if !strings.HasPrefix(declared, "image/") && !strings.HasPrefix(declared, "application/pdf") {
		h.sendError(c, profile, http.StatusBadRequest, "invalid_file_type", "Invalid file type. Please upload an image or PDF.")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.sendError(c, profile, http.StatusBadRequest, "upload_unreadable", "Could not read uploaded file: "+err.Error())
		return
	}

	upload := &domain.Upload{
		Filename:    header.Filename,
		ContentType: declared,
		Data:        data,
	}

	receipt, err := h.service.Process(c.Request.Context(), upload, profile)
	if err != nil {
		h.sendProcessError(c, profile, err)
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// ListHistory handles GET /api/v1/receipts/history
func (h *Handler) ListHistory(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	entries, err := h.service.History(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"receipts": entries,
		"count":    len(entries),
	})
}

// GetHistoryEntry handles GET /api/v1/receipts/history/:id
func (h *Handler) GetHistoryEntry(c *gin.Context) {
	entry, err := h.service.HistoryEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrHistoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read history"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// sendProcessError maps pipeline errors to HTTP responses in the error
// format of the endpoint version.
func (h *Handler) sendProcessError(c *gin.Context, profile usecase.Profile, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		if profile.StructuredErrors {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    "validation_failed",
				"problems": validationErr.Problems,
			})
			return
		}
		// Legacy single-string format
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": "Validation errors: " + strings.Join(validationErr.Problems, ", "),
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidDocument), errors.Is(err, domain.ErrInvalidRequest):
		h.sendError(c, profile, http.StatusBadRequest, "invalid_document", err.Error())
	case errors.Is(err, domain.ErrNoReceiptFound):
		h.sendError(c, profile, http.StatusBadRequest, "no_receipt_found", err.Error())
	case errors.Is(err, domain.ErrAnalysisTimeout):
		h.sendError(c, profile, http.StatusGatewayTimeout, "analysis_timeout", err.Error())
	case errors.Is(err, domain.ErrAzureAPIFailure), errors.Is(err, domain.ErrAnalysisFailed):
		h.sendError(c, profile, http.StatusBadGateway, "analysis_failed", err.Error())
	default:
		h.sendError(c, profile, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// sendError writes an error response in the version's format: v1 keeps the
// legacy {"detail": ...} body, later versions use {"error", "message"}.
func (h *Handler) sendError(c *gin.Context, profile usecase.Profile, status int, code, message string) {
	if profile.StructuredErrors {
		c.JSON(status, gin.H{
			"error":   code,
			"message": message,
		})
		return
	}
	c.JSON(status, gin.H{"detail": message})
}
