// Package notify delivers account notices over an out-of-band channel.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// ErrNoChannel is returned when no delivery channel is configured.
var ErrNoChannel = errors.New("no delivery channel configured")

// TemporaryPassword is the notice sent after an administrative password reset.
type TemporaryPassword struct {
	Name     string
	Email    string
	Password string
}

// Notifier delivers account notices.
type Notifier interface {
	SendTemporaryPassword(ctx context.Context, msg TemporaryPassword) error
}

// Sender abstracts gomail's dialer so delivery can be stubbed.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPConfig configures SMTPNotifier.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier sends notices by email.
type SMTPNotifier struct {
	from   string
	sender Sender
}

// NewSMTPNotifier builds a notifier using a gomail dialer.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{
		from:   cfg.From,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// NewSMTPNotifierWithSender builds a notifier around an existing sender.
func NewSMTPNotifierWithSender(from string, sender Sender) *SMTPNotifier {
	return &SMTPNotifier{from: from, sender: sender}
}

// SendTemporaryPassword emails the temporary credential to the account owner.
func (n *SMTPNotifier) SendTemporaryPassword(ctx context.Context, msg TemporaryPassword) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", msg.Email)
	m.SetHeader("Subject", "Your password has been reset")
	m.SetBody("text/html", fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>An administrator reset your password. Your temporary password is:</p>
		<p><strong>%s</strong></p>
		<p>You will be asked to choose a new password the next time you sign in.</p>
	`, html.EscapeString(msg.Name), html.EscapeString(msg.Password)))

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// Disabled is used when no channel is configured; every send fails with ErrNoChannel.
type Disabled struct{}

// SendTemporaryPassword always fails.
func (Disabled) SendTemporaryPassword(context.Context, TemporaryPassword) error {
	return ErrNoChannel
}
