package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wneessen/go-mail"

	"github.com/kindanddivine/kndweb/api"
)

var sample = api.ContactRequest{
	Name:    "Ada",
	Email:   "ada@example.com",
	Subject: "AR module quote",
	Message: "Need <100> units.",
}

func TestNewMailerRequiresSettings(t *testing.T) {
	if _, err := NewMailer(SMTPConfig{Host: "smtp.example.com"}, "KND", nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
	m, err := NewMailer(SMTPConfig{Host: "smtp.example.com", From: "site@example.com", To: "owner@example.com"}, "KND", nil)
	if err != nil {
		t.Fatalf("NewMailer: %v", err)
	}
	if m.cfg.Port != 587 {
		t.Errorf("port = %d, want 587", m.cfg.Port)
	}
}

func TestContactReceivedBuildsMessage(t *testing.T) {
	m, err := NewMailer(SMTPConfig{Host: "smtp.example.com", From: "site@example.com", To: "owner@example.com"}, "KND", nil)
	if err != nil {
		t.Fatalf("NewMailer: %v", err)
	}
	var sent *mail.Msg
	m.dial = func(_ context.Context, msg *mail.Msg) error {
		sent = msg
		return nil
	}
	if err := m.ContactReceived(context.Background(), sample); err != nil {
		t.Fatalf("ContactReceived: %v", err)
	}
	if sent == nil {
		t.Fatal("nothing sent")
	}
	if got := sent.GetGenHeader(mail.HeaderSubject); len(got) != 1 || got[0] != "[KND] AR module quote" {
		t.Errorf("subject = %v", got)
	}
	rcpts, err := sent.GetRecipients()
	if err != nil || len(rcpts) != 1 || rcpts[0] != "owner@example.com" {
		t.Errorf("recipients = %v, %v", rcpts, err)
	}
	var buf bytes.Buffer
	if _, err := sent.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if !strings.Contains(buf.String(), "ada@example.com") {
		t.Error("message missing reply-to address")
	}
}

func TestContactReceivedPropagatesSendError(t *testing.T) {
	m, _ := NewMailer(SMTPConfig{Host: "smtp.example.com", From: "site@example.com", To: "owner@example.com"}, "", nil)
	boom := errors.New("connection reset")
	m.dial = func(context.Context, *mail.Msg) error { return boom }
	if err := m.ContactReceived(context.Background(), sample); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestContactReceivedRejectsBadReplyTo(t *testing.T) {
	m, _ := NewMailer(SMTPConfig{Host: "smtp.example.com", From: "site@example.com", To: "owner@example.com"}, "", nil)
	m.dial = func(context.Context, *mail.Msg) error {
		t.Fatal("should not send")
		return nil
	}
	bad := sample
	bad.Email = "not an address"
	if err := m.ContactReceived(context.Background(), bad); err == nil {
		t.Error("expected error for invalid reply-to")
	}
}

func TestSubject(t *testing.T) {
	tests := []struct {
		site string
		c    api.ContactRequest
		want string
	}{
		{"KND", sample, "[KND] AR module quote"},
		{"KND", api.ContactRequest{Subject: "  "}, "[KND] New message"},
		{"", sample, "[Contact] AR module quote"},
	}
	for _, tt := range tests {
		if got := Subject(tt.site, tt.c); got != tt.want {
			t.Errorf("Subject(%q, %q) = %q, want %q", tt.site, tt.c.Subject, got, tt.want)
		}
	}
}

func TestBodiesEscapeAndInclude(t *testing.T) {
	plain := PlainBody(sample)
	for _, want := range []string{"Name: Ada", "Email: ada@example.com", "Need <100> units."} {
		if !strings.Contains(plain, want) {
			t.Errorf("plain body missing %q", want)
		}
	}
	h := HTMLBody(sample)
	if strings.Contains(h, "<100>") || !strings.Contains(h, "&lt;100&gt;") {
		t.Errorf("html body not escaped: %q", h)
	}
}

func TestNoop(t *testing.T) {
	var n Notifier = Noop{}
	if err := n.ContactReceived(context.Background(), sample); err != nil {
		t.Errorf("Noop err = %v", err)
	}
}
