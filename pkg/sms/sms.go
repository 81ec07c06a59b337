package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Sender delivers one-time codes and notifications to a phone number.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

type Config struct {
	BaseURL string
	APIKey  string
	From    string
	Timeout time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		BaseURL: strings.TrimSpace(os.Getenv("SMS_API_URL")),
		APIKey:  strings.TrimSpace(os.Getenv("SMS_API_KEY")),
		From:    strings.TrimSpace(os.Getenv("SMS_FROM")),
		Timeout: 10 * time.Second,
	}
}

type gatewaySender struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) (Sender, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("missing SMS_API_URL")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing SMS_API_KEY")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &gatewaySender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type sendRequest struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Message string `json:"message"`
}

func (s *gatewaySender) Send(ctx context.Context, phone, message string) error {
	payload, err := json.Marshal(sendRequest{
		To:      phone,
		From:    s.cfg.From,
		Message: message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}
