// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relay forwards research findings to a Telegram chat through the
// Bot API sendMessage method.
//
// Messages are sent as plain text. Model output routinely contains
// underscores and asterisks that the Bot API's Markdown parser rejects.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/zld-agent/internal/httputil"
	"github.com/pdiddy/zld-agent/internal/locale"
	"github.com/pdiddy/zld-agent/pkg/types"
)

// DefaultAPIBase is the Telegram Bot API root.
const DefaultAPIBase = "https://api.telegram.org"

const (
	// MaxMessageLength is the Bot API limit on text, in UTF-16 code units.
	MaxMessageLength = 4096

	// truncationSlack is kept free below the body budget when cutting.
	truncationSlack = 100

	truncationMarker = "...\n[ادامه متن حذف شد]"
	footer           = "\n\n🤖 ارسال خودکار توسط ZLD Agent"

	testMessage       = "✅ اتصال سیستم ZLD به ربات تلگرام برقرار شد.\nاین یک پیام آزمایشی است."
	testCorrelationID = "TEST"
)

// ErrMissingToken is returned when no bot token is configured.
var ErrMissingToken = errors.New("Telegram bot token configuration missing")

// DeliveryError is an application-level rejection (ok=false) from the Bot API.
type DeliveryError struct {
	Code        int
	Description string
}

func (e *DeliveryError) Error() string {
	return "خطای تلگرام: " + e.Description
}

// Client sends messages to one bot.
type Client struct {
	cfg    types.RelayConfig
	http   *http.Client
	clock  *locale.Clock
	now    func() time.Time
	logger *zap.Logger
}

// New returns a Client for cfg. A nil clock formats header times in the
// default locale; a nil logger discards log output.
func New(cfg types.RelayConfig, clock *locale.Clock, logger *zap.Logger) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	if clock == nil {
		clock = locale.MustClock(locale.DefaultTag)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		clock:  clock,
		now:    time.Now,
		logger: logger,
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// Send composes text with the report header and footer and posts it to
// destination. An empty destination means relaying is not configured: Send
// logs and returns nil. Each call posts one message; correlationID only
// labels the header.
func (c *Client) Send(ctx context.Context, text, destination, correlationID string) error {
	if destination == "" {
		c.logger.Warn("telegram chat id is missing, skipping relay", zap.String("report_id", correlationID))
		return nil
	}
	if c.cfg.BotToken == "" {
		return ErrMissingToken
	}

	msg := Compose(text, correlationID, c.clock.Time(c.now()))

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                destination,
		Text:                  msg,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshaling sendMessage request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.cfg.APIBase, c.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries, c.logger)
	if err != nil {
		return fmt.Errorf("sending to Telegram: %w", err)
	}
	defer resp.Body.Close()

	var ar apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return fmt.Errorf("decoding Telegram response (HTTP %d): %w", resp.StatusCode, err)
	}

	if !ar.OK {
		c.logger.Error("telegram rejected message",
			zap.String("report_id", correlationID),
			zap.Int("error_code", ar.ErrorCode),
			zap.String("description", ar.Description))
		return &DeliveryError{Code: ar.ErrorCode, Description: ar.Description}
	}

	c.logger.Info("telegram message sent",
		zap.String("report_id", correlationID),
		zap.Int("length", utf16Len(msg)))
	return nil
}

// TestConnection sends a fixed probe message to destination.
func (c *Client) TestConnection(ctx context.Context, destination string) error {
	if destination == "" {
		return fmt.Errorf("no Telegram chat id configured")
	}
	return c.Send(ctx, testMessage, destination, testCorrelationID)
}
