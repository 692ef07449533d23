// Package offerapi talks to the partner endpoint that registers a prize
// with an offer.
package offerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrDisabled is returned when no endpoint is configured.
var ErrDisabled = errors.New("offer api is not configured")

// AddOfferRequest is the body of POST /api/add-offer.
type AddOfferRequest struct {
	OfferID string `json:"offerId"`
	PrizeID string `json:"prizeId"`
}

// AddOfferResponse is the reply of POST /api/add-offer.
type AddOfferResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Client calls the partner offer API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for baseURL. An empty baseURL yields a client
// whose calls return ErrDisabled.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// AddOffer registers prizeID with offerID. A non-2xx status or success=false
// is an error. There is no retry.
func (c *Client) AddOffer(ctx context.Context, offerID, prizeID string) error {
	if c.baseURL == "" {
		return ErrDisabled
	}

	body, err := json.Marshal(AddOfferRequest{OfferID: offerID, PrizeID: prizeID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/add-offer", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build add-offer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("add-offer request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read add-offer response: %w", err)
	}

	var out AddOfferResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode/100 != 2 {
			return fmt.Errorf("add-offer returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("failed to decode add-offer response: %w", err)
	}
	if resp.StatusCode/100 != 2 || !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "unknown error"
		}
		return fmt.Errorf("add-offer rejected (status %d): %s", resp.StatusCode, msg)
	}
	return nil
}
