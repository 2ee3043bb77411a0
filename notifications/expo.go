package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

// MaxBatchSize is the most messages the Expo push API accepts per request
const MaxBatchSize = 100

// Ticket statuses and the error detail of an unregistered device
const (
	TicketOK                  = "ok"
	TicketError               = "error"
	DetailDeviceNotRegistered = "DeviceNotRegistered"
)

var tokenPattern = regexp.MustCompile(`^(Exponent|Expo)PushToken\[.+\]$`)

// IsValidToken reports whether token looks like an Expo push token
func IsValidToken(token string) bool {
	return tokenPattern.MatchString(token)
}

// Message is one push notification addressed to a single device
type Message struct {
	To       string            `json:"to"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	Sound    string            `json:"sound,omitempty"`
	Priority string            `json:"priority,omitempty"`
}

// TicketDetails carries the machine-readable reason of an error ticket
type TicketDetails struct {
	Error string `json:"error"`
}

// Ticket is the push provider's receipt for one message
type Ticket struct {
	Status  string         `json:"status"`
	ID      string         `json:"id,omitempty"`
	Message string         `json:"message,omitempty"`
	Details *TicketDetails `json:"details,omitempty"`
}

// DeviceNotRegistered reports whether the ticket says the device is gone for good
func (t Ticket) DeviceNotRegistered() bool {
	return t.Details != nil && t.Details.Error == DetailDeviceNotRegistered
}

// PushSender delivers a batch of messages and returns one ticket per message, in order
type PushSender interface {
	Send(ctx context.Context, messages []Message) ([]Ticket, error)
}

// ExpoClient sends messages through the Expo push HTTP API
type ExpoClient struct {
	url         string
	accessToken string
	httpClient  *http.Client
}

// NewExpoClient creates a client posting to url. accessToken is optional.
func NewExpoClient(url, accessToken string) *ExpoClient {
	return &ExpoClient{
		url:         url,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type expoResponse struct {
	Data   []Ticket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Send posts messages as one request
func (c *ExpoClient) Send(ctx context.Context, messages []Message) ([]Ticket, error) {
	if len(messages) > MaxBatchSize {
		return nil, fmt.Errorf("batch of %d exceeds the limit of %d", len(messages), MaxBatchSize)
	}

	payload, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to encode messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call push endpoint: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("push endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var decoded expoResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode push response: %w", err)
	}
	if len(decoded.Errors) > 0 && len(decoded.Data) == 0 {
		return nil, fmt.Errorf("push request rejected: %s: %s", decoded.Errors[0].Code, decoded.Errors[0].Message)
	}
	if len(decoded.Data) != len(messages) {
		return nil, fmt.Errorf("push endpoint returned %d tickets for %d messages", len(decoded.Data), len(messages))
	}

	return decoded.Data, nil
}
