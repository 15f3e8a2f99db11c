package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Template identifies a transactional email template on the provider side.
type Template string

const (
	TemplateTeamInvitation Template = "team-invitation"
	TemplateEmailVerify    Template = "email-verify"
	TemplateWelcome        Template = "welcome"
)

// Sender delivers transactional emails. Implementations must be safe for
// concurrent use; delivery is best-effort from the caller's perspective.
type Sender interface {
	Send(ctx context.Context, to string, template Template, params map[string]string) error
}

// APIMailer posts send requests to a transactional email provider.
type APIMailer struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
}

func NewAPIMailer(endpoint, apiKey, from string) *APIMailer {
	return &APIMailer{
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type sendRequest struct {
	From     string            `json:"from"`
	To       string            `json:"to"`
	Template string            `json:"template"`
	Params   map[string]string `json:"params,omitempty"`
}

func (m *APIMailer) Send(ctx context.Context, to string, template Template, params map[string]string) error {
	body, err := json.Marshal(sendRequest{
		From:     m.from,
		To:       to,
		Template: string(template),
		Params:   params,
	})
	if err != nil {
		return fmt.Errorf("mailer: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mailer: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mailer: provider returned %d for %s", resp.StatusCode, to)
	}
	return nil
}

// NoopMailer discards everything. Used in development and tests.
type NoopMailer struct{}

func (NoopMailer) Send(context.Context, string, Template, map[string]string) error { return nil }

// SendAsync fires the send in a goroutine. Failures are logged and swallowed:
// email must never block or fail the operation that triggered it.
func SendAsync(sender Sender, log *zap.Logger, to string, template Template, params map[string]string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := sender.Send(ctx, to, template, params); err != nil {
			log.Warn("email send failed",
				zap.String("to", to),
				zap.String("template", string(template)),
				zap.Error(err),
			)
		}
	}()
}
