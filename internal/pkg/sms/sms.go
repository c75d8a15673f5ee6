// Package sms talks to the SMS/WhatsApp provider over its HTTP API. The
// same provider account exposes a form-encoded SMS endpoint and a JSON
// WhatsApp endpoint; both attempts for a number are independent sends.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rescue-chip/core/internal/config"
)

// Gateway is the provider client.
type Gateway struct {
	cfg    config.SMSOptions
	client *http.Client
}

// NewGateway returns nil when the provider channel is disabled; callers
// treat a nil gateway as "no phone channels configured".
func NewGateway(cfg config.SMSOptions) *Gateway {
	if !cfg.Enable {
		return nil
	}
	return &Gateway{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendSMS sends a plain text SMS to one normalized number.
func (g *Gateway) SendSMS(ctx context.Context, number, body string) error {
	if g.cfg.BaseURL == "" {
		return fmt.Errorf("sms: base_url not configured")
	}

	form := url.Values{}
	form.Set("userid", g.cfg.UserID)
	form.Set("password", g.cfg.Password)
	form.Set("senderid", g.cfg.SenderID)
	form.Set("sendMethod", "quick")
	form.Set("msgType", "text")
	form.Set("msg", body)
	form.Set("mobile", number)
	form.Set("duplicatecheck", "true")
	form.Set("output", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(g.cfg.BaseURL, "/")+"/send", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sms: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if g.cfg.APIKey != "" {
		req.Header.Set("apikey", g.cfg.APIKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms: send to %s: %w", number, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms: provider status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}

type waPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendWhatsApp sends a text message to one normalized number over the
// WhatsApp channel.
func (g *Gateway) SendWhatsApp(ctx context.Context, number, body string) error {
	if g.cfg.WhatsAppURL == "" {
		return fmt.Errorf("whatsapp: url not configured")
	}

	payload, err := json.Marshal(waPayload{
		From: g.cfg.WhatsAppSender,
		To:   number,
		Type: "text",
		Text: body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.WhatsAppURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("whatsapp: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.WhatsAppKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.WhatsAppKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: send to %s: %w", number, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp: provider status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}
