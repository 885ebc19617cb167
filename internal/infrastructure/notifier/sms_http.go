package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SMSClient communicates with the SMS gateway's HTTP send API.
type SMSClient struct {
	baseURL    string
	apiKey     string
	sender     string
	httpClient *http.Client
}

// NewSMSClient creates an SMS gateway client. The sender is the
// provider-registered originator shown to recipients.
func NewSMSClient(baseURL, apiKey, sender string) *SMSClient {
	return &SMSClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		sender:     sender,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type smsRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
}

// SendSMS delivers one text message through the gateway.
func (c *SMSClient) SendSMS(ctx context.Context, to, message string) error {
	payload, err := json.Marshal(smsRequest{From: c.sender, To: to, Message: message})
	if err != nil {
		return fmt.Errorf("failed to encode SMS payload: %w", err)
	}

	url := fmt.Sprintf("%s/v1/messages", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("SMS gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("SMS gateway returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
