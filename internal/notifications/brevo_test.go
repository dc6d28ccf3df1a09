package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewBrevoClientDisabledWithoutKey(t *testing.T) {
	if c := NewBrevoClient("", "sales@example.com", "", false); c != nil {
		t.Fatalf("expected nil client without api key")
	}
	if c := NewBrevoClient("key", " ", "", false); c != nil {
		t.Fatalf("expected nil client without sender")
	}
}

func TestSendProposal(t *testing.T) {
	var got brevoSendRequest
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<msg-1@brevo>"}`))
	}))
	defer srv.Close()

	c := NewBrevoClient("key-1", "sales@example.com", "Vertrieb", true)
	c.endpoint = srv.URL

	id, err := c.SendProposal(context.Background(), ProposalMail{
		ToEmail:     "eva@acme.de",
		ToName:      "Eva Berger",
		CompanyName: "ACME GmbH",
		ProjectName: "Cloud-Migration",
		CoverLetter: "Sehr geehrte Frau Berger,\n\n**Highlights** <b>inklusive</b>\n\nMit freundlichen Grüßen",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "<msg-1@brevo>" {
		t.Fatalf("unexpected message id %q", id)
	}
	if apiKey != "key-1" {
		t.Fatalf("missing api key header")
	}
	if got.Subject != "Unser Angebot: Cloud-Migration" {
		t.Fatalf("unexpected subject %q", got.Subject)
	}
	if got.Headers["X-Sib-Sandbox"] != "drop" {
		t.Fatalf("expected sandbox header")
	}
	if len(got.To) != 1 || got.To[0].Email != "eva@acme.de" {
		t.Fatalf("unexpected recipients %+v", got.To)
	}
	if strings.Count(got.HtmlContent, "<p>") < 3 {
		t.Fatalf("expected one paragraph per block: %s", got.HtmlContent)
	}
	if strings.Contains(got.HtmlContent, "<b>inklusive</b>") || strings.Contains(got.HtmlContent, "**") {
		t.Fatalf("letter text must be escaped and unformatted: %s", got.HtmlContent)
	}
	if !strings.HasPrefix(got.TextContent, "Sehr geehrte Frau Berger") || strings.Contains(got.TextContent, "**") {
		t.Fatalf("unexpected text part %q", got.TextContent)
	}
	if got.ReplyTo == nil || got.ReplyTo.Email != "sales@example.com" {
		t.Fatalf("expected reply-to sender, got %+v", got.ReplyTo)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "proposal" {
		t.Fatalf("unexpected tags %v", got.Tags)
	}
}

func TestSendProposalUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad sender", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewBrevoClient("key", "sales@example.com", "", false)
	c.endpoint = srv.URL
	_, err := c.SendProposal(context.Background(), ProposalMail{ToEmail: "a@b.de", CoverLetter: "x"})
	var sendErr *SendError
	if !errors.As(err, &sendErr) || sendErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected send error, got %v", err)
	}
}

func TestSendProposalRequiresRecipient(t *testing.T) {
	c := NewBrevoClient("key", "sales@example.com", "", false)
	if _, err := c.SendProposal(context.Background(), ProposalMail{CoverLetter: "x"}); !errors.Is(err, ErrNoRecipient) {
		t.Fatalf("expected ErrNoRecipient, got %v", err)
	}
}
