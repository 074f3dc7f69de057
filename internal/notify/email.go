package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"github.com/sentrascan/sentrascan/internal/config"
)

// EmailDriver delivers alerts over SMTP with implicit TLS (port 465).
type EmailDriver struct {
	host      string
	port      int
	sender    string
	password  string
	recipient string
}

// NewEmailDriver creates the SMTP channel driver. Missing sender, password,
// or recipient leaves the driver unconfigured.
func NewEmailDriver(cfg config.AlertConfig) *EmailDriver {
	return &EmailDriver{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		sender:    cfg.EmailSender,
		password:  cfg.EmailPassword,
		recipient: cfg.EmailRecipient,
	}
}

func (d *EmailDriver) Kind() string { return "email" }

func (d *EmailDriver) Configured() bool {
	return d.sender != "" && d.password != "" && d.recipient != ""
}

// Send delivers the alert email. The context bounds the dial; SMTP
// conversation errors surface as ordinary errors.
func (d *EmailDriver) Send(ctx context.Context, alert Alert) error {
	addr := net.JoinHostPort(d.host, strconv.Itoa(d.port))

	dialer := &tls.Dialer{NetDialer: &net.Dialer{}, Config: &tls.Config{ServerName: d.host}}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}

	client, err := smtp.NewClient(conn, d.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", d.sender, d.password, d.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(d.sender); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(d.recipient); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Security Alert: Suspicious IP Detected\r\n\r\n%s\r\n",
		d.sender, d.recipient, summarize(alert))
	if _, err := wc.Write([]byte(msg)); err != nil {
		wc.Close()
		return fmt.Errorf("smtp write body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp close body: %w", err)
	}
	return client.Quit()
}
