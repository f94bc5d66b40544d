// Package vapi is the HTTP client for the conversational voice gateway.
package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"showings_backend/platform/config"
	"showings_backend/platform/logger"
)

// Call is the gateway's view of an outbound call. Only the fields the
// backend acts on are decoded; the raw payload carries much more.
type Call struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	EndedReason string `json:"endedReason,omitempty"`
	Transcript  string `json:"transcript,omitempty"`
}

// Assistant identifies the configured voice assistant.
type Assistant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlaceCallParams describes one outbound call. Number must already be in
// international format.
type PlaceCallParams struct {
	Number       string
	FirstMessage string
	// AssistantID overrides the configured assistant when set.
	AssistantID string
}

type Client struct {
	baseURL       string
	privateKey    string
	assistantID   string
	phoneNumberID string
	client        *http.Client
	log           *logger.Logger
}

func NewClient(cfg config.VapiConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL:       cfg.GetVapiBaseURL(),
		privateKey:    cfg.GetVapiPrivateKey(),
		assistantID:   cfg.GetVapiAssistantID(),
		phoneNumberID: cfg.GetVapiPhoneNumberID(),
		client:        &http.Client{Timeout: cfg.GetVapiTimeout()},
		log:           log,
	}
}

// PlaceCall asks the gateway to dial a number. A nil error means the call
// was accepted for dialing, not that it completed.
func (c *Client) PlaceCall(ctx context.Context, params PlaceCallParams) (*Call, error) {
	assistantID := params.AssistantID
	if assistantID == "" {
		assistantID = c.assistantID
	}

	body := map[string]any{
		"assistantId": assistantID,
		"customer":    map[string]string{"number": params.Number},
	}
	if c.phoneNumberID != "" {
		body["phoneNumberId"] = c.phoneNumberID
	}
	if params.FirstMessage != "" {
		body["assistantOverrides"] = map[string]string{"firstMessage": params.FirstMessage}
	}

	var call Call
	if err := c.do(ctx, http.MethodPost, "/call/phone", body, &call); err != nil {
		return nil, err
	}

	c.log.CallEvent(params.Number, true, call.ID, "")
	return &call, nil
}

// GetCall fetches the current state of a call.
func (c *Client) GetCall(ctx context.Context, callID string) (*Call, error) {
	if callID == "" {
		return nil, fmt.Errorf("call id is required")
	}
	var call Call
	if err := c.do(ctx, http.MethodGet, "/call/"+callID, nil, &call); err != nil {
		return nil, err
	}
	return &call, nil
}

// EndCall hangs up an in-flight call.
func (c *Client) EndCall(ctx context.Context, callID string) error {
	if callID == "" {
		return fmt.Errorf("call id is required")
	}
	return c.do(ctx, http.MethodDelete, "/call/"+callID, nil, nil)
}

// GetAssistant fetches the configured assistant, used by health checks to
// verify the credentials actually work.
func (c *Client) GetAssistant(ctx context.Context) (*Assistant, error) {
	if c.assistantID == "" {
		return nil, fmt.Errorf("assistant id not configured")
	}
	var assistant Assistant
	if err := c.do(ctx, http.MethodGet, "/assistant/"+c.assistantID, nil, &assistant); err != nil {
		return nil, err
	}
	return &assistant, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode gateway request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.privateKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Error("gateway request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("gateway request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("gateway error: %s", upstreamMessage(resp))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}

// upstreamMessage pulls a human-readable error out of a gateway failure
// response, falling back to the status code.
func upstreamMessage(resp *http.Response) string {
	var payload struct {
		Message any    `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		switch msg := payload.Message.(type) {
		case string:
			if msg != "" {
				return msg
			}
		case []any:
			if len(msg) > 0 {
				if s, ok := msg[0].(string); ok && s != "" {
					return s
				}
			}
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
