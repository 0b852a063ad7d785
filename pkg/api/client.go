package api

// ORDER ENDPOINT CLIENT

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrTransport marks failures where no HTTP response was received.
var ErrTransport = errors.New("order endpoint unreachable")

// SubmitError is a non-2xx answer from the order endpoint. Message is the
// "error" field of the response body, empty when the body had none.
type SubmitError struct {
	Status  int
	Message string
}

func (e *SubmitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("order endpoint returned status %d", e.Status)
	}
	return fmt.Sprintf("order endpoint returned status %d: %s", e.Status, e.Message)
}

type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(url string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SubmitOrder posts payload as JSON once. It returns nil on a 2xx status,
// *SubmitError on any other status and an error wrapping ErrTransport when
// the request could not be made.
func (c *Client) SubmitOrder(ctx context.Context, payload any) error {
	const operation = "api.SubmitOrder"

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Order endpoint request failed",
			zap.String("url", c.url),
			zap.Error(err))
		return fmt.Errorf("%s: %w: %w", operation, ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var result struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &result); err != nil {
		result.Error = ""
	}

	c.logger.Warn("Order endpoint rejected order",
		zap.Int("status", resp.StatusCode),
		zap.String("error", result.Error))

	return &SubmitError{Status: resp.StatusCode, Message: result.Error}
}
