package outbound

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// DeliveryError indicates that a composed reply could not be delivered.
// It is reported to the operator and isolated: the read-state of the
// original message is left unchanged and the batch continues.
type DeliveryError struct {
	To      string
	Message string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %s", e.To, e.Message)
}

// IsDeliveryError reports whether err (or any error in its chain) is a
// DeliveryError.
func IsDeliveryError(err error) bool {
	var deliveryErr *DeliveryError
	return errors.As(err, &deliveryErr)
}

// Config holds the SMTP server settings for outbound mail.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string

	// TLS selects implicit TLS; otherwise STARTTLS is used.
	TLS bool
}

// Mailer sends plain-text replies over SMTP.
type Mailer struct {
	cfg Config
}

// NewMailer creates a mailer for the given SMTP configuration.
func NewMailer(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send composes and delivers a reply. The subject of the outgoing
// message is always the original subject prefixed with "Re: ". Any
// failure is wrapped in a DeliveryError.
func (m *Mailer) Send(_ context.Context, to, subject, body string) error {
	from := m.cfg.Username

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: Re: %s\r\n", subject))
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := m.cfg.Host + ":" + m.cfg.Port

	var err error
	if m.cfg.TLS {
		err = sendWithTLS(addr, m.cfg, from, to, msg.String())
	} else {
		err = sendWithStartTLS(addr, m.cfg, from, to, msg.String())
	}
	if err != nil {
		return &DeliveryError{To: to, Message: err.Error()}
	}

	return nil
}

// sendWithTLS sends an email over an implicit TLS connection.
func sendWithTLS(addr string, cfg Config, from, to, body string) error {
	tlsConfig := &tls.Config{ServerName: cfg.Host}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("TLS dial to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	return sendViaClient(client, from, to, body)
}

// sendWithStartTLS sends an email using STARTTLS.
func sendWithStartTLS(addr string, cfg Config, from, to, body string) error {
	conn, err := net.DialTimeout("tcp", addr, 30*time.Second)
	if err != nil {
		return fmt.Errorf("dial to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: cfg.Host}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("SMTP STARTTLS: %w", err)
	}

	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	return sendViaClient(client, from, to, body)
}

// sendViaClient sends a message using an already-authenticated SMTP
// client.
func sendViaClient(client *smtp.Client, from, to, body string) error {
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("SMTP MAIL FROM: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("SMTP RCPT TO: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA: %w", err)
	}

	if _, err := writer.Write([]byte(body)); err != nil {
		return fmt.Errorf("writing email body: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing email body: %w", err)
	}

	return client.Quit()
}
