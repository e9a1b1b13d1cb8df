// Package scan is the client for the external receipt-scan service: submit
// an image, receive candidate items or a single failure. The engine never
// interprets the image itself; candidates enter the session through the
// ordinary bulk add path.
package scan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/bayadbuddy/server/internal/models"
)

// ErrScanFailed marks any failure of the receipt-scan collaborator: network,
// bad status, or malformed payload. Nothing partial ever comes back.
var ErrScanFailed = errors.New("receipt scan failed")

// Client talks to the configured OCR endpoint.
type Client struct {
	http     *retryablehttp.Client
	endpoint string
	apiKey   string
}

// NewClient creates a scan client with bounded retries.
func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	rc := retryablehttp.NewClient()
	rc.Logger = log.New(io.Discard, "", 0)
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = timeout

	return &Client{
		http:     rc,
		endpoint: endpoint,
		apiKey:   apiKey,
	}
}

// ParseReceipt submits an image payload and returns the ordered candidate
// list. Any failure maps to ErrScanFailed; either all candidates are
// returned or none.
func (c *Client) ParseReceipt(ctx context.Context, image []byte, mimeType string) ([]models.ScannedItem, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("%w: no scanner endpoint configured", ErrScanFailed)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanFailed, err)
	}
	req.Header.Set("Content-Type", mimeType)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: scanner returned status %d", ErrScanFailed, resp.StatusCode)
	}

	var candidates []models.ScannedItem
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrScanFailed, err)
	}

	for _, cand := range candidates {
		if strings.TrimSpace(cand.Name) == "" {
			return nil, fmt.Errorf("%w: candidate with blank name", ErrScanFailed)
		}
		if math.IsNaN(cand.Price) || math.IsInf(cand.Price, 0) || cand.Price < 0 {
			return nil, fmt.Errorf("%w: candidate %q has invalid price", ErrScanFailed, cand.Name)
		}
	}

	return candidates, nil
}
