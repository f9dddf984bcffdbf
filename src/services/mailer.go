package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"regexp"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/rs/zerolog/log"
)

// Mailer sends a single HTML email message
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, altBody string) error
}

// mailTransport is one way of getting a message out the door
type mailTransport interface {
	name() string
	send(ctx context.Context, to, subject, htmlBody, altBody string) error
}

// SMTPConfig configures the primary SMTP transport
type SMTPConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	FromAddress string
	FromName    string
	// Secure selects the encryption mode: ssl/smtps, tls/starttls,
	// none, or empty for the port heuristic (465 implicit TLS,
	// 587/2525 STARTTLS).
	Secure string
}

// FallbackMailer tries the primary transport first and degrades to the
// fallback so a missing or misconfigured SMTP server never aborts the
// caller. The first transport that reports success wins.
type FallbackMailer struct {
	primary  mailTransport
	fallback mailTransport
}

// NewMailer builds the mailer from SMTP settings plus an optional
// Mailgun fallback (skipped when domain/key are empty).
func NewMailer(smtpCfg SMTPConfig, mailgunDomain, mailgunAPIKey string) *FallbackMailer {
	m := &FallbackMailer{
		primary: &smtpTransport{cfg: smtpCfg},
	}
	if mailgunDomain != "" && mailgunAPIKey != "" {
		m.fallback = &mailgunTransport{
			mg:          mailgun.NewMailgun(mailgunDomain, mailgunAPIKey),
			fromAddress: smtpCfg.FromAddress,
			fromName:    smtpCfg.FromName,
		}
	}
	return m
}

// NewMailerWithTransports wires explicit transports (for testing)
func NewMailerWithTransports(primary, fallback mailTransport) *FallbackMailer {
	return &FallbackMailer{primary: primary, fallback: fallback}
}

// Send delivers one message, falling back on primary-transport failure
func (m *FallbackMailer) Send(ctx context.Context, to, subject, htmlBody, altBody string) error {
	if altBody == "" {
		altBody = stripTags(htmlBody)
	}

	err := m.primary.send(ctx, to, subject, htmlBody, altBody)
	if err == nil {
		return nil
	}
	log.Error().Err(err).
		Str("transport", m.primary.name()).
		Str("to", to).
		Msg("primary mail transport failed")

	if m.fallback == nil {
		return err
	}
	if err := m.fallback.send(ctx, to, subject, htmlBody, altBody); err != nil {
		log.Error().Err(err).
			Str("transport", m.fallback.name()).
			Str("to", to).
			Msg("fallback mail transport failed")
		return err
	}
	return nil
}

/* ---------------------------------------------------------------- */
/* SMTP transport                                                    */
/* ---------------------------------------------------------------- */

type smtpTransport struct {
	cfg SMTPConfig
}

func (t *smtpTransport) name() string { return "smtp" }

// encryption modes
const (
	encNone     = "none"
	encImplicit = "smtps"
	encStartTLS = "starttls"
)

// encryptionMode honours the explicit Secure setting and otherwise
// falls back to the port heuristic.
func (t *smtpTransport) encryptionMode() string {
	switch strings.ToLower(t.cfg.Secure) {
	case "ssl", "smtps":
		return encImplicit
	case "tls", "starttls":
		return encStartTLS
	case "none":
		return encNone
	}
	switch t.cfg.Port {
	case 465:
		return encImplicit
	case 587, 2525:
		return encStartTLS
	}
	return encNone
}

func (t *smtpTransport) send(ctx context.Context, to, subject, htmlBody, altBody string) error {
	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)
	tlsConfig := &tls.Config{ServerName: t.cfg.Host}

	var client *smtp.Client
	var err error

	switch t.encryptionMode() {
	case encImplicit:
		conn, dialErr := tls.Dial("tcp", addr, tlsConfig)
		if dialErr != nil {
			return fmt.Errorf("failed to dial SMTP server: %w", dialErr)
		}
		client, err = smtp.NewClient(conn, t.cfg.Host)
		if err != nil {
			conn.Close()
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
	case encStartTLS:
		client, err = smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("failed to dial SMTP server: %w", err)
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	default:
		client, err = smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("failed to dial SMTP server: %w", err)
		}
	}
	defer client.Close()

	if t.cfg.User != "" {
		auth := smtp.PlainAuth("", t.cfg.User, t.cfg.Password, t.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := client.Mail(t.cfg.FromAddress); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := wc.Write([]byte(t.buildMessage(to, subject, htmlBody, altBody))); err != nil {
		wc.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	return client.Quit()
}

// buildMessage assembles a multipart/alternative MIME message
func (t *smtpTransport) buildMessage(to, subject, htmlBody, altBody string) string {
	from := fmt.Sprintf("%s <%s>", t.cfg.FromName, t.cfg.FromAddress)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	b.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: multipart/alternative; boundary=BOUNDARY\r\n")
	b.WriteString("\r\n")

	b.WriteString("--BOUNDARY\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(altBody)
	b.WriteString("\r\n")

	b.WriteString("--BOUNDARY\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")

	b.WriteString("--BOUNDARY--\r\n")
	return b.String()
}

/* ---------------------------------------------------------------- */
/* Mailgun fallback transport                                        */
/* ---------------------------------------------------------------- */

type mailgunTransport struct {
	mg          *mailgun.MailgunImpl
	fromAddress string
	fromName    string
}

func (t *mailgunTransport) name() string { return "mailgun" }

func (t *mailgunTransport) send(ctx context.Context, to, subject, htmlBody, altBody string) error {
	message := t.mg.NewMessage(
		fmt.Sprintf("%s <%s>", t.fromName, t.fromAddress),
		subject,
		altBody,
		to,
	)
	message.SetHtml(htmlBody)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, _, err := t.mg.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send via mailgun: %w", err)
	}
	return nil
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripTags produces a rough plain-text rendering of an HTML body
func stripTags(html string) string {
	text := tagPattern.ReplaceAllString(html, "")
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}
