package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/floriangamillscheg/ReceiptOCRAzure/internal/domain"
	"golang.org/x/time/rate"
)

// ClientConfig holds the settings for the Document Intelligence client
type ClientConfig struct {
	Endpoint     string
	APIKey       string
	APIVersion   string
	ModelID      string
	Locale       string
	PollInterval time.Duration
	PollTimeout  time.Duration
	// RequestsPerMinute bounds outbound calls; 0 keeps the default.
	RequestsPerMinute int
}

// Client handles communication with the Azure Document Intelligence REST API
type Client struct {
	httpClient   *http.Client
	endpoint     string
	apiKey       string
	apiVersion   string
	modelID      string
	locale       string
	pollInterval time.Duration
	pollTimeout  time.Duration
	rateLimiter  *rate.Limiter
	debug        bool
}

// NewClient creates a new Document Intelligence client
func NewClient(cfg ClientConfig) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-11-30"
	}
	if cfg.ModelID == "" {
		cfg.ModelID = "prebuilt-receipt"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 60 * time.Second
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 15 // S0 tier default: 15 transactions per second is far above this
	}
	limiter := rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		endpoint:     cfg.Endpoint,
		apiKey:       cfg.APIKey,
		apiVersion:   cfg.APIVersion,
		modelID:      cfg.ModelID,
		locale:       cfg.Locale,
		pollInterval: cfg.PollInterval,
		pollTimeout:  cfg.PollTimeout,
		rateLimiter:  limiter,
	}
}

// SetDebug toggles verbose request/response logging
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[azure] "+format, args...)
	}
}

// retryBackoff returns the sleep duration before retry attempt n
func retryBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * 500 * time.Millisecond
}

// analyzeURL builds the submit URL for the configured model
func (c *Client) analyzeURL() string {
	endpoint := fmt.Sprintf("%s/documentintelligence/documentModels/%s:analyze", c.endpoint, c.modelID)
	params := url.Values{}
	params.Add("api-version", c.apiVersion)
	if c.locale != "" {
		params.Add("locale", c.locale)
	}
	return fmt.Sprintf("%s?%s", endpoint, params.Encode())
}

// AnalyzeReceipt submits the document to the prebuilt receipt model and polls
// until the analysis completes. The content is sent as-is; contentType must be
// the sniffed MIME type of the bytes.
func (c *Client) AnalyzeReceipt(ctx context.Context, content []byte, contentType string) (*domain.AnalyzeResult, error) {
	operationURL, err := c.submit(ctx, content, contentType)
	if err != nil {
		return nil, err
	}
	return c.poll(ctx, operationURL)
}

// submit starts the analysis and returns the Operation-Location to poll.
// Transient failures (5xx, 429) are retried up to 3 times with backoff.
func (c *Client) submit(ctx context.Context, content []byte, contentType string) (string, error) {
	reqURL := c.analyzeURL()
	c.debugLog("submitting %d bytes (%s) to %s", len(content), contentType, reqURL)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(content))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
		req.Header.Set("Content-Type", contentType)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[azure] submit error (attempt %d): %v", attempt, err)
			lastErr = fmt.Errorf("%w: %v", domain.ErrAzureAPIFailure, err)
			time.Sleep(retryBackoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusAccepted {
			operationURL := resp.Header.Get("Operation-Location")
			if operationURL == "" {
				return "", fmt.Errorf("%w: missing Operation-Location header", domain.ErrAzureAPIFailure)
			}
			return operationURL, nil
		}

		// Retry on 5xx and 429, fail fast on other 4xx
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			log.Printf("[azure] submit failed (attempt %d) - status: %d, body: %s", attempt, resp.StatusCode, string(body))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrAzureAPIFailure, resp.StatusCode)
			time.Sleep(retryBackoff(attempt))
			continue
		}

		return "", fmt.Errorf("%w: status %d, body: %s", domain.ErrAzureAPIFailure, resp.StatusCode, string(body))
	}

	log.Printf("[azure] all submit attempts failed")
	return "", lastErr
}

// poll fetches the operation status until it reports succeeded or failed, or
// until the poll timeout elapses.
func (c *Client) poll(ctx context.Context, operationURL string) (*domain.AnalyzeResult, error) {
	deadline := time.Now().Add(c.pollTimeout)

	for {
		op, err := c.fetchOperation(ctx, operationURL)
		if err != nil {
			return nil, err
		}

		switch op.Status {
		case "succeeded":
			if op.AnalyzeResult == nil {
				return nil, fmt.Errorf("%w: succeeded without analyzeResult", domain.ErrAzureAPIFailure)
			}
			return op.AnalyzeResult, nil
		case "failed":
			if op.Error != nil {
				return nil, fmt.Errorf("%w: %s: %s", domain.ErrAnalysisFailed, op.Error.Code, op.Error.Message)
			}
			return nil, domain.ErrAnalysisFailed
		}

		c.debugLog("operation status %q, polling again in %s", op.Status, c.pollInterval)

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: no result after %s", domain.ErrAnalysisTimeout, c.pollTimeout)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

// fetchOperation retrieves the current state of an analyze operation
func (c *Client) fetchOperation(ctx context.Context, operationURL string) (*domain.AnalyzeOperation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAzureAPIFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrAzureAPIFailure, resp.StatusCode, string(body))
	}

	var op domain.AnalyzeOperation
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &op, nil
}
