// Package mailer sends transactional email over SMTP.
//
// Any SMTP relay works; Mailtrap (smtp.mailtrap.io:2525) is convenient for
// development and is the default port in configuration.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strconv"
	"strings"
)

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends email through one SMTP relay.
type Mailer struct {
	cfg  Config
	send sendFunc
}

// New validates cfg and returns a Mailer.
func New(cfg Config) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host cannot be empty")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("sender email address cannot be empty")
	}
	if cfg.Port == "" {
		cfg.Port = "2525"
	}
	return &Mailer{cfg: cfg, send: smtp.SendMail}, nil
}

// SendEmail sends one message. The Content-Type is inferred from the body:
// bodies containing <html> or <p> are sent as HTML, anything else as plain text.
func (m *Mailer) SendEmail(recipient, subject, body string) error {
	if recipient == "" {
		return fmt.Errorf("recipient email address cannot be empty")
	}
	if subject == "" {
		return fmt.Errorf("email subject cannot be empty")
	}

	contentType := "text/plain; charset=UTF-8"
	lower := strings.ToLower(body)
	if strings.Contains(lower, "<html>") || strings.Contains(lower, "<p>") {
		contentType = "text/html; charset=UTF-8"
	}

	message := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: %s\r\n"+
		"\r\n"+
		"%s\r\n", recipient, m.cfg.From, subject, contentType, body))

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	if err := m.send(addr, auth, m.cfg.From, []string{recipient}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// DonationReceipt is the data shown in a donation confirmation.
type DonationReceipt struct {
	Recipient string
	Name      string
	Amount    float64 // major currency unit
	Currency  string
	Reference string
}

var donationTemplate = template.Must(template.New("donation").Parse(`<html>
  <body>
    <p>Dear {{if .Name}}{{.Name}}{{else}}friend{{end}},</p>
    <p>Thank you for pouring into the ministry. We have received your gift of <strong>{{.Currency}} {{.Amount}}</strong>.</p>
    <p>Payment reference: <code>{{.Reference}}</code></p>
    <p>Keep this email as your receipt.</p>
  </body>
</html>`))

// SendDonationConfirmation emails a receipt for a donation.
func (m *Mailer) SendDonationConfirmation(ctx context.Context, receipt DonationReceipt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if receipt.Reference == "" {
		return fmt.Errorf("donation reference cannot be empty")
	}

	var body bytes.Buffer
	data := struct {
		Name      string
		Amount    string
		Currency  string
		Reference string
	}{
		Name:      receipt.Name,
		Amount:    strconv.FormatFloat(receipt.Amount, 'f', 2, 64),
		Currency:  receipt.Currency,
		Reference: receipt.Reference,
	}
	if err := donationTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("render donation confirmation: %w", err)
	}

	return m.SendEmail(receipt.Recipient, "Thank you for your donation", body.String())
}
