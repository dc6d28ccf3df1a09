package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBrevoEndpoint = "https://api.brevo.com/v3/smtp/email"

type BrevoClient struct {
	apiKey      string
	senderEmail string
	senderName  string
	sandbox     bool
	endpoint    string
	httpClient  *http.Client
}

func NewBrevoClient(apiKey, senderEmail, senderName string, sandbox bool) *BrevoClient {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(senderEmail) == "" {
		return nil
	}
	if strings.TrimSpace(senderName) == "" {
		senderName = senderEmail
	}
	return &BrevoClient{
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  senderName,
		sandbox:     sandbox,
		endpoint:    defaultBrevoEndpoint,
		httpClient:  &http.Client{Timeout: 8 * time.Second},
	}
}

var (
	ErrNoRecipient = errors.New("missing recipient email")
	ErrEmptyBody   = errors.New("missing html body")
)

// SendError is a non-2xx answer from the Brevo API.
type SendError struct {
	StatusCode int
	Body       string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("brevo send failed: status=%d body=%s", e.StatusCode, e.Body)
}

// SendProposal mails the cover letter of a sent proposal to the customer
// contact and returns the Brevo message id. The plain-text part carries the
// letter as written.
func (c *BrevoClient) SendProposal(ctx context.Context, mail ProposalMail) (string, error) {
	if c == nil {
		return "", errors.New("brevo client is nil")
	}
	if strings.TrimSpace(mail.ToEmail) == "" {
		return "", ErrNoRecipient
	}
	htmlBody, err := buildProposalHTML(mail, c.senderName)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(htmlBody) == "" {
		return "", ErrEmptyBody
	}

	payload := brevoSendRequest{
		Sender:      brevoSender{Name: c.senderName, Email: c.senderEmail},
		To:          []brevoRecipient{{Email: mail.ToEmail, Name: mail.ToName}},
		ReplyTo:     &brevoSender{Name: c.senderName, Email: c.senderEmail},
		Subject:     fmt.Sprintf("Unser Angebot: %s", mail.ProjectName),
		HtmlContent: htmlBody,
		TextContent: strings.ReplaceAll(mail.CoverLetter, "**", ""),
		Tags:        []string{"proposal"},
	}
	if c.sandbox {
		payload.Headers = map[string]string{"X-Sib-Sandbox": "drop"}
	}
	return c.send(ctx, payload)
}

func (c *BrevoClient) send(ctx context.Context, payload brevoSendRequest) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("brevo marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("brevo create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("brevo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &SendError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out brevoSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("brevo decode response: %w", err)
	}
	if strings.TrimSpace(out.MessageID) == "" {
		return "", errors.New("brevo response missing messageId")
	}
	return out.MessageID, nil
}

type brevoSendRequest struct {
	Sender      brevoSender       `json:"sender"`
	To          []brevoRecipient  `json:"to"`
	ReplyTo     *brevoSender      `json:"replyTo,omitempty"`
	Subject     string            `json:"subject"`
	HtmlContent string            `json:"htmlContent,omitempty"`
	TextContent string            `json:"textContent,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

type brevoSender struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type brevoRecipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoSendResponse struct {
	MessageID string `json:"messageId"`
}
