package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrSMSDisabled signals that SMS delivery is disabled via configuration.
var ErrSMSDisabled = errors.New("sms: delivery disabled")

// Sender defines behaviour for dispatching short messages.
type Sender interface {
	Send(ctx context.Context, mobile, body string) error
}

// GatewaySettings capture the configuration for the HTTP SMS gateway.
type GatewaySettings struct {
	Enabled  bool
	Endpoint string
	APIKey   string
	SenderID string
	Timeout  time.Duration
}

type gatewaySender struct {
	cfg    GatewaySettings
	client *http.Client
}

// NewGatewaySender builds a Sender that posts messages to an HTTP SMS gateway.
func NewGatewaySender(cfg GatewaySettings) (Sender, error) {
	if cfg.Enabled && strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("sms: endpoint is required when enabled")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &gatewaySender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (s *gatewaySender) Send(ctx context.Context, mobile, body string) error {
	if !s.cfg.Enabled {
		return ErrSMSDisabled
	}

	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return errors.New("sms: mobile number is required")
	}

	payload, err := json.Marshal(map[string]string{
		"sender": s.cfg.SenderID,
		"to":     mobile,
		"body":   body,
	})
	if err != nil {
		return fmt.Errorf("sms: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("sms: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms: gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms: gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// OTPBody renders the short-message body carrying a one-time code.
func OTPBody(code string) string {
	return fmt.Sprintf("%s is your one time password. It expires in 5 minutes.", code)
}
