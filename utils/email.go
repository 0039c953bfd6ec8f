package utils

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

var resetTemplate = template.Must(template.New("reset").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Password Reset Request</h2>
  <p>Click the button below to reset your password:</p>
  <a href="{{.URL}}" style="display: inline-block; background: #3b82f6; color: white; padding: 12px 24px; text-decoration: none; border-radius: 8px; margin: 20px 0;">Reset Password</a>
  <p style="color: #666; font-size: 14px;">This link expires in 1 hour.</p>
  <p style="color: #666; font-size: 14px;">If you didn't request this, ignore this email.</p>
  <hr style="margin: 30px 0; border: none; border-top: 1px solid #eee;">
  <p style="color: #999; font-size: 12px;">FindAm - Find trusted service providers in {{.City}}</p>
</div>`))

// Dialer is the part of gomail.Dialer the mailer needs.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends transactional mail over SMTP.
type SMTPMailer struct {
	dialer Dialer
	from   string
	city   string
}

func NewSMTPMailer(host string, port int, user, pass, from, city string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
		city:   city,
	}
}

// NewMailerWithDialer is used to substitute the SMTP connection.
func NewMailerWithDialer(d Dialer, from, city string) *SMTPMailer {
	return &SMTPMailer{dialer: d, from: from, city: city}
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	var body bytes.Buffer
	if err := resetTemplate.Execute(&body, struct{ URL, City string }{resetURL, m.city}); err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}
	return m.send(ctx, to, "Reset Your FindAm Password", body.String())
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(m.from, "FindAm"))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}
