package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/harborlight-org/harborlight-backend/pkg/config"
)

const defaultSendGridURL = "https://api.sendgrid.com/v3/mail/send"

// Sender delivers a single email message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a flattened outbound email.
type Message struct {
	ToAddress string
	ToName    string
	Subject   string
	Body      string
}

// SendGridSender talks to the SendGrid v3 mail send API.
type SendGridSender struct {
	httpClient  *http.Client
	apiKey      string
	fromAddress string
	fromName    string
	endpoint    string
}

// NewSendGridSender builds a sender from the mail configuration.
func NewSendGridSender(cfg config.MailConfig) (*SendGridSender, error) {
	if strings.TrimSpace(cfg.SendgridAPIKey) == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	if strings.TrimSpace(cfg.FromAddress) == "" {
		return nil, fmt.Errorf("mail from address is required")
	}
	return &SendGridSender{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		apiKey:      cfg.SendgridAPIKey,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		endpoint:    defaultSendGridURL,
	}, nil
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridPayload struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

// Send posts the message to SendGrid. Any non-2xx response is an error.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.ToAddress) == "" {
		return fmt.Errorf("recipient address is required")
	}
	payload := sendGridPayload{
		Personalizations: []sendGridPersonalization{
			{To: []sendGridAddress{{Email: msg.ToAddress, Name: msg.ToName}}},
		},
		From:    sendGridAddress{Email: s.fromAddress, Name: s.fromName},
		Subject: msg.Subject,
		Content: []sendGridContent{{Type: "text/plain", Value: msg.Body}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if len(detail) > 0 {
		return fmt.Errorf("sendgrid returned %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}
	return fmt.Errorf("sendgrid returned %s", resp.Status)
}
