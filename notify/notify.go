// Package notify delivers contact form submissions to the site owner.
package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/kindanddivine/kndweb/api"
)

// ErrNotConfigured is returned by NewMailer when SMTP settings are missing.
var ErrNotConfigured = errors.New("notify: smtp not configured")

// Notifier is told about every accepted contact submission.
type Notifier interface {
	ContactReceived(ctx context.Context, c api.ContactRequest) error
}

// Noop discards notifications.
type Noop struct{}

func (Noop) ContactReceived(context.Context, api.ContactRequest) error { return nil }

// SMTPConfig configures Mailer.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
	// Insecure allows plain SMTP, for local relays such as mailpit.
	Insecure bool `mapstructure:"insecure"`
}

// Enabled reports whether enough is set to send mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != "" && c.To != ""
}

// Mailer sends notifications over SMTP.
type Mailer struct {
	cfg    SMTPConfig
	site   string
	logger *zap.Logger
	dial   func(ctx context.Context, m *mail.Msg) error
}

// NewMailer returns a Mailer for cfg. site names the sender in the subject.
func NewMailer(cfg SMTPConfig, site string, logger *zap.Logger) (*Mailer, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Mailer{cfg: cfg, site: site, logger: logger}
	m.dial = m.dialAndSend
	return m, nil
}

func (m *Mailer) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(15 * time.Second),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	if m.cfg.Insecure {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	} else {
		opts = append(opts,
			mail.WithTLSPolicy(mail.TLSMandatory),
			mail.WithTLSConfig(&tls.Config{ServerName: m.cfg.Host}),
		)
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client (host=%s port=%d): %w", m.cfg.Host, m.cfg.Port, err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail (host=%s port=%d): %w", m.cfg.Host, m.cfg.Port, err)
	}
	return nil
}

// ContactReceived mails the submission to the configured recipient, with
// Reply-To set to the visitor.
func (m *Mailer) ContactReceived(ctx context.Context, c api.ContactRequest) error {
	msg, err := m.message(c)
	if err != nil {
		return err
	}
	if err := m.dial(ctx, msg); err != nil {
		return err
	}
	m.logger.Info("contact notification sent", zap.String("to", m.cfg.To), zap.String("from", c.Email))
	return nil
}

func (m *Mailer) message(c api.ContactRequest) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.cfg.To); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	if err := msg.ReplyTo(c.Email); err != nil {
		return nil, fmt.Errorf("set reply-to: %w", err)
	}
	msg.Subject(Subject(m.site, c))
	msg.SetBodyString(mail.TypeTextPlain, PlainBody(c))
	msg.AddAlternativeString(mail.TypeTextHTML, HTMLBody(c))
	return msg, nil
}

// Subject is the notification subject line.
func Subject(site string, c api.ContactRequest) string {
	subject := strings.TrimSpace(c.Subject)
	if subject == "" {
		subject = "New message"
	}
	if site == "" {
		return fmt.Sprintf("[Contact] %s", subject)
	}
	return fmt.Sprintf("[%s] %s", site, subject)
}

func PlainBody(c api.ContactRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", c.Name)
	fmt.Fprintf(&b, "Email: %s\n", c.Email)
	if c.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", c.Subject)
	}
	b.WriteString("\n")
	b.WriteString(c.Message)
	b.WriteString("\n")
	return b.String()
}

func HTMLBody(c api.ContactRequest) string {
	var b strings.Builder
	b.WriteString(`<table cellpadding="6" style="font-family: Arial, sans-serif; font-size: 14px;">`)
	row := func(k, v string) {
		fmt.Fprintf(&b, `<tr><td><strong>%s</strong></td><td>%s</td></tr>`, k, html.EscapeString(v))
	}
	row("Name", c.Name)
	row("Email", c.Email)
	if c.Subject != "" {
		row("Subject", c.Subject)
	}
	b.WriteString(`</table>`)
	b.WriteString(`<p style="white-space: pre-wrap; font-family: Arial, sans-serif;">`)
	b.WriteString(html.EscapeString(c.Message))
	b.WriteString(`</p>`)
	return b.String()
}
