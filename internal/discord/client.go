package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/osse101/PullBot_Go/internal/domain"
)

// APIClient handles communication with the PullBot HTTP API
type APIClient struct {
	BaseURL string
	Client  *http.Client
	APIKey  string
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL, apiKey string) *APIClient {
	return &APIClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client: &http.Client{
			Timeout: APIRequestTimeout,
		},
		APIKey: apiKey,
	}
}

// BalanceDetails is attached to a refused pull
type BalanceDetails struct {
	Requested      int   `json:"requested"`
	Shortfall      int   `json:"shortfall"`
	Timed          int   `json:"timed"`
	Event          int   `json:"event"`
	Named          int   `json:"named"`
	NextRefillInMS int64 `json:"next_refill_in_ms"`
}

// APIError is a non-2xx answer from the API
type APIError struct {
	Status  int
	Message string
	Balance *BalanceDetails
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Message)
}

// doRequest performs an HTTP request. Only GET is retried on transport
// errors and 5xx answers; pulls and burns are not idempotent.
func (c *APIClient) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
	}

	attempts := 1
	if method == http.MethodGet {
		attempts += APIMaxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			// Exponential backoff with jitter
			delay := APIRetryDelay*time.Duration(1<<uint(attempt-1)) + rand.N(100*time.Millisecond)
			slog.Info(LogMsgRetryingRequest, "attempt", attempt, "path", path, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(reqBody))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.APIKey != "" {
			req.Header.Set("X-API-Key", c.APIKey)
		}

		resp, err := c.Client.Do(req)
		if err != nil {
			lastErr = err
			slog.Warn(LogMsgRequestFailed, "error", err, "attempt", attempt, "path", path)
			continue
		}
		if resp.StatusCode < http.StatusInternalServerError || attempt == attempts-1 {
			return resp, nil
		}
		resp.Body.Close()
		lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// call sends the request and decodes a 2xx body into out
func (c *APIClient) call(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
		BalanceDetails
	}
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Error != "" {
			apiErr.Message = body.Error
		}
		if resp.StatusCode == http.StatusConflict && body.Requested > 0 {
			details := body.BalanceDetails
			apiErr.Balance = &details
		}
	}
	return apiErr
}

// Pull draws one packet for userID
func (c *APIClient) Pull(ctx context.Context, userID, policy, grant string) (*domain.PullResult, error) {
	req := map[string]string{
		"user_id": userID,
		"policy":  policy,
		"source":  "discord",
	}
	if grant != "" {
		req["grant"] = grant
	}
	var res domain.PullResult
	if err := c.call(ctx, http.MethodPost, APIPrefix+"/pull", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetAllowance returns the user's pool balances
func (c *APIClient) GetAllowance(ctx context.Context, userID string) (*domain.AllowanceView, error) {
	params := url.Values{}
	params.Set("user_id", userID)

	var view domain.AllowanceView
	if err := c.call(ctx, http.MethodGet, APIPrefix+"/allowance?"+params.Encode(), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// GetInventory lists the user's stacks, optionally limited to one rarity
func (c *APIClient) GetInventory(ctx context.Context, userID, rarity string) ([]domain.InventoryStack, error) {
	params := url.Values{}
	params.Set("user_id", userID)
	if rarity != "" {
		params.Set("rarity", rarity)
	}

	var inv struct {
		Stacks []domain.InventoryStack `json:"stacks"`
	}
	if err := c.call(ctx, http.MethodGet, APIPrefix+"/inventory?"+params.Encode(), nil, &inv); err != nil {
		return nil, err
	}
	return inv.Stacks, nil
}

// GetProgression returns the leveling state for one character
func (c *APIClient) GetProgression(ctx context.Context, userID, character string) (*domain.ProgressionState, error) {
	params := url.Values{}
	params.Set("user_id", userID)
	params.Set("character", character)

	var out struct {
		Progression *domain.ProgressionState `json:"progression"`
	}
	if err := c.call(ctx, http.MethodGet, APIPrefix+"/progression?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if out.Progression == nil {
		return nil, fmt.Errorf("empty progression response")
	}
	return out.Progression, nil
}

// BurnFilter mirrors the API's filter-driven burn selection
type BurnFilter struct {
	Rarities  []string `json:"rarities,omitempty"`
	Op        string   `json:"op,omitempty"`
	Threshold int      `json:"threshold,omitempty"`
}

// PreviewBurn asks for an uncommitted conversion preview
func (c *APIClient) PreviewBurn(ctx context.Context, userID, character string, filter BurnFilter, keep int) (*domain.BurnPreview, error) {
	req := map[string]interface{}{
		"user_id":   userID,
		"character": character,
		"filter":    filter,
		"keep":      keep,
	}
	var preview domain.BurnPreview
	if err := c.call(ctx, http.MethodPost, APIPrefix+"/burn/preview", req, &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

// ConfirmBurn commits a preview
func (c *APIClient) ConfirmBurn(ctx context.Context, userID, token string) (*domain.BurnResult, error) {
	req := map[string]string{"user_id": userID, "token": token}
	var res domain.BurnResult
	if err := c.call(ctx, http.MethodPost, APIPrefix+"/burn/confirm", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CancelBurn drops a preview
func (c *APIClient) CancelBurn(ctx context.Context, userID, token string) error {
	req := map[string]string{"user_id": userID, "token": token}
	return c.call(ctx, http.MethodPost, APIPrefix+"/burn/cancel", req, nil)
}

// Healthy reports whether the API answers its liveness probe
func (c *APIClient) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
