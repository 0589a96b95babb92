package mail

import (
	"fmt"
	"net/smtp"

	"techmart/internal/config"
)

// Mailer sends transactional mail.
type Mailer interface {
	SendOTP(to, otp string) error
	SendPasswordReset(to, link string) error
}

type smtpMailer struct {
	host string
	port string
	from string
}

// NewSMTPMailer builds a Mailer backed by plain SMTP (no auth, MailHog-style
// relays in dev).
func NewSMTPMailer(cfg *config.Config) Mailer {
	return &smtpMailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		from: cfg.SMTPFrom,
	}
}

func (m *smtpMailer) send(to, subject, body string) error {
	addr := m.host + ":" + m.port

	msg := "From: " + m.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n" +
		body

	return smtp.SendMail(addr, nil, m.from, []string{to}, []byte(msg))
}

// SendOTP mails the verification code.
func (m *smtpMailer) SendOTP(to, otp string) error {
	body := fmt.Sprintf("Your OTP: %s\nValid for 10 minutes.", otp)
	return m.send(to, "Your OTP Code", body)
}

// SendPasswordReset mails the reset link.
func (m *smtpMailer) SendPasswordReset(to, link string) error {
	body := fmt.Sprintf("Click the link below to reset your password:\n%s\nThis link expires in 15 minutes.", link)
	return m.send(to, "Reset your password", body)
}
